package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/Iron-Ham/rudder/internal/complexity"
	"github.com/Iron-Ham/rudder/internal/errors"
	"github.com/Iron-Ham/rudder/internal/estimate"
	"github.com/Iron-Ham/rudder/internal/routing"
	"github.com/Iron-Ham/rudder/internal/story"
	"github.com/spf13/cobra"
)

var estimateCmd = &cobra.Command{
	Use:   "estimate [description]",
	Short: "Predict a task's duration, tokens, and cost",
	Long: `Predict how long a task will take, how many tokens it will consume,
and what it will cost on its routed tier.

The prediction starts from a fixed budget per acceptance criterion and
blends in the ledger history of similar runs as it accumulates. With a
--prd file, every story in the plan is estimated and totals are shown
for the pending ones.

Examples:
  # Ad-hoc estimate
  rudder estimate "Add retry logic to the fetch helper" --criteria 3

  # Estimate a whole plan, persisting the snapshot for accuracy tracking
  rudder estimate --prd prd.md --snapshot`,
	RunE: runEstimate,
}

var (
	estimatePRD        string
	estimateTaskID     string
	estimateCriteria   int
	estimateMultiplier float64
	estimateTier       string
	estimateSnapshot   bool
	estimateJSON       bool
)

func init() {
	rootCmd.AddCommand(estimateCmd)

	estimateCmd.Flags().StringVar(&estimatePRD, "prd", "", "Estimate every story in a PRD markdown file")
	estimateCmd.Flags().StringVar(&estimateTaskID, "task", "task", "Task ID for an ad-hoc estimate")
	estimateCmd.Flags().IntVar(&estimateCriteria, "criteria", 0, "Number of acceptance criteria")
	estimateCmd.Flags().Float64Var(&estimateMultiplier, "multiplier", 0, "Complexity multiplier (default: derived from scoring)")
	estimateCmd.Flags().StringVar(&estimateTier, "tier", "", "Force a tier (low/medium/high) instead of routing by score")
	estimateCmd.Flags().BoolVar(&estimateSnapshot, "snapshot", false, "Persist the predictions as an estimate snapshot")
	estimateCmd.Flags().BoolVar(&estimateJSON, "json", false, "Output as JSON")
}

func runEstimate(cmd *cobra.Command, args []string) error {
	if estimatePRD == "" && len(args) == 0 {
		return errors.NewValidationError("provide a task description or --prd <file>")
	}

	w, err := loadWorkspace()
	if err != nil {
		return err
	}
	entries, err := w.loadEntries()
	if err != nil {
		return err
	}

	scorer := complexity.NewScorer()
	router := routing.NewRouter(w.Config.Routing)
	estimator := estimate.NewEstimator(w.Config.Estimation, w.Config.Pricing)

	plan := func(id, description string, criteria int) (estimate.Estimate, routing.Decision) {
		score := scorer.Score(description, complexity.Hints{CriteriaCount: criteria})
		decision := router.Route(&score, estimateTier)

		multiplier := estimateMultiplier
		if multiplier == 0 {
			multiplier = score.Breakdown.Multiplier
		}
		est := estimator.Estimate(estimate.Task{
			ID:            id,
			CriteriaCount: criteria,
			Multiplier:    multiplier,
		}, decision.Tier.String(), entries)
		return est, decision
	}

	if estimatePRD == "" {
		est, decision := plan(estimateTaskID, strings.Join(args, " "), estimateCriteria)
		if estimateJSON {
			return printJSON(struct {
				Estimate estimate.Estimate `json:"estimate"`
				Decision routing.Decision  `json:"decision"`
			}{est, decision})
		}
		printEstimate(est, decision)
		return nil
	}

	doc, err := story.ParseFile(estimatePRD)
	if err != nil {
		return err
	}
	if doc.Total() == 0 {
		return errors.NewStoryError("no stories found", errors.ErrStoryNotFound).WithSource(estimatePRD)
	}

	var predictions []estimate.TaskPrediction
	type storyPlan struct {
		Story    story.Story       `json:"story"`
		Tier     routing.Tier      `json:"tier"`
		Estimate estimate.Estimate `json:"estimate"`
	}
	plans := make([]storyPlan, 0, doc.Total())
	for _, s := range doc.Stories {
		est, decision := plan(s.ID, s.Description(), s.CriteriaCount)
		prediction := est.Prediction()
		prediction.Completed = s.Completed
		predictions = append(predictions, prediction)
		plans = append(plans, storyPlan{Story: s, Tier: decision.Tier, Estimate: est})
	}

	snapshot := estimate.NewSnapshot(predictions, time.Now())
	if estimateSnapshot {
		if err := w.snapshots().Append(snapshot); err != nil {
			return errors.Wrap(err, "write estimate snapshot")
		}
	}

	if estimateJSON {
		return printJSON(struct {
			Plans    []storyPlan             `json:"plans"`
			Totals   estimate.SnapshotTotals `json:"totals"`
			Snapshot string                  `json:"snapshot_id,omitempty"`
		}{plans, snapshot.Totals, savedSnapshotID(snapshot)})
	}

	fmt.Println()
	fmt.Println(sectionHeader(fmt.Sprintf("Plan Estimate (%s)", estimatePRD)))
	for _, p := range plans {
		if p.Story.Completed {
			fmt.Printf("%-8s %s\n", p.Story.ID, mutedStyle.Render("done"))
			continue
		}
		fmt.Printf("%-8s %-8s %-10s %-8s %s\n",
			p.Story.ID,
			p.Tier,
			estimate.FormatDurationSeconds(p.Estimate.DurationSeconds),
			estimate.FormatTokens(p.Estimate.Tokens),
			estimate.FormatCost(p.Estimate.Cost))
	}

	fmt.Println()
	fmt.Println(sectionHeader(fmt.Sprintf("Totals (%d pending)", doc.Remaining())))
	fmt.Printf("Duration: %s\n", estimate.FormatDurationSeconds(snapshot.Totals.DurationSeconds))
	fmt.Printf("Tokens:   %s\n", estimate.FormatTokens(snapshot.Totals.Tokens))
	fmt.Printf("Cost:     %s\n", estimate.FormatCost(snapshot.Totals.Cost))
	if estimateSnapshot {
		fmt.Printf("\nSnapshot saved: %s\n", snapshot.ID)
	}
	fmt.Println()
	return nil
}

func savedSnapshotID(snapshot estimate.Snapshot) string {
	if estimateSnapshot {
		return snapshot.ID
	}
	return ""
}

func printEstimate(est estimate.Estimate, decision routing.Decision) {
	fmt.Println()
	fmt.Println(sectionHeader("Estimate"))
	fmt.Printf("Task: %s\n", est.TaskID)
	fmt.Printf("Tier: %s\n", renderTier(decision.Tier))
	fmt.Printf("Duration: %s  (%s - %s)\n",
		estimate.FormatDurationSeconds(est.DurationSeconds),
		estimate.FormatDurationSeconds(est.DurationRange.Optimistic),
		estimate.FormatDurationSeconds(est.DurationRange.Pessimistic))
	fmt.Printf("Tokens: %s  (%s - %s)\n",
		estimate.FormatTokens(est.Tokens),
		estimate.FormatTokens(int(est.TokensRange.Optimistic)),
		estimate.FormatTokens(int(est.TokensRange.Pessimistic)))
	fmt.Printf("Cost: %s\n", estimate.FormatCost(est.Cost))
	fmt.Printf("Confidence: %s (%d samples)\n", est.Confidence, est.SamplesUsed)
	fmt.Println()
}
