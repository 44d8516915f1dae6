package cmd

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/rudder/internal/complexity"
	"github.com/Iron-Ham/rudder/internal/config"
	"github.com/Iron-Ham/rudder/internal/routing"
	"github.com/spf13/cobra"
)

var routeCmd = &cobra.Command{
	Use:   "route <description>",
	Short: "Route a task to an execution tier",
	Long: `Score a task and route it to an execution tier.

Scores at or below the low threshold route low, at or below the medium
threshold route medium, and anything above routes high. A --tier override
wins unconditionally and skips scoring. With routing disabled in config,
everything routes to the default tier.

Examples:
  rudder route "Fix typo in README"
  rudder route "Migrate the session store" --criteria 6
  rudder route "Anything at all" --tier high`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRoute,
}

var (
	routeCriteria int
	routeFiles    []string
	routeOverride string
	routeJSON     bool
)

func init() {
	rootCmd.AddCommand(routeCmd)

	routeCmd.Flags().IntVar(&routeCriteria, "criteria", 0, "Number of acceptance criteria")
	routeCmd.Flags().StringArrayVar(&routeFiles, "file", nil, "File the task declares it touches (repeatable)")
	routeCmd.Flags().StringVar(&routeOverride, "tier", "", "Force a tier (low/medium/high), bypassing scoring")
	routeCmd.Flags().BoolVar(&routeJSON, "json", false, "Output as JSON")
}

func runRoute(cmd *cobra.Command, args []string) error {
	w, err := loadWorkspace()
	if err != nil {
		return err
	}

	description := strings.Join(args, " ")
	score := complexity.NewScorer().Score(description, complexity.Hints{
		CriteriaCount: routeCriteria,
		DeclaredFiles: routeFiles,
	})

	decision := routing.NewRouter(w.Config.Routing).Route(&score, routeOverride)

	if routeJSON {
		return printJSON(struct {
			Decision routing.Decision `json:"decision"`
			Score    complexity.Score `json:"score"`
		}{decision, score})
	}

	printDecision(decision, score, w.Config.Routing.Models)
	return nil
}

func printDecision(decision routing.Decision, score complexity.Score, models config.TierModels) {
	fmt.Println()
	fmt.Println(sectionHeader("Routing Decision"))
	fmt.Printf("Tier: %s", renderTier(decision.Tier))
	if model := modelFor(decision.Tier, models); model != "" {
		fmt.Printf(" (%s)", mutedStyle.Render(model))
	}
	fmt.Println()
	if decision.Score != nil {
		fmt.Printf("Score: %.1f/10 (%s)\n", *decision.Score, score.Level)
	}
	fmt.Printf("Reason: %s\n", decision.Reason)
	if decision.IsOverride {
		fmt.Println(warnStyle.Render("Manual override: scoring was bypassed"))
	}
	fmt.Println()
}

// modelFor resolves the configured model binding for a tier, if any.
func modelFor(tier routing.Tier, models config.TierModels) string {
	switch tier {
	case routing.TierLow:
		return models.Low
	case routing.TierMedium:
		return models.Medium
	case routing.TierHigh:
		return models.High
	default:
		return ""
	}
}
