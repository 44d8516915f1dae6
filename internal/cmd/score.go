package cmd

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/rudder/internal/complexity"
	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score <description>",
	Short: "Score a task's complexity",
	Long: `Score a task description on the 1-10 complexity scale.

The score combines description depth, acceptance-criteria count, and the
file footprint, adjusted by signal phrases ("simple fix" scales it down,
"refactor architecture" scales it up).

Examples:
  # Score a one-line task
  rudder score "Fix typo in README"

  # Include structural hints from the PRD
  rudder score "Add retry logic to the fetch helper" --criteria 3 --file internal/fetch/fetch.go`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScore,
}

var (
	scoreCriteria int
	scoreFiles    []string
	scoreTags     []string
	scoreJSON     bool
)

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().IntVar(&scoreCriteria, "criteria", 0, "Number of acceptance criteria")
	scoreCmd.Flags().StringArrayVar(&scoreFiles, "file", nil, "File the task declares it touches (repeatable)")
	scoreCmd.Flags().StringArrayVar(&scoreTags, "tag", nil, "Free-form task tag (repeatable)")
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "Output as JSON")
}

func runScore(cmd *cobra.Command, args []string) error {
	description := strings.Join(args, " ")
	hints := complexity.Hints{
		CriteriaCount: scoreCriteria,
		DeclaredFiles: scoreFiles,
		Tags:          scoreTags,
	}

	score := complexity.NewScorer().Score(description, hints)

	if scoreJSON {
		return printJSON(score)
	}

	printScore(score)
	return nil
}

func printScore(score complexity.Score) {
	fmt.Println()
	fmt.Println(sectionHeader("Complexity Score"))
	fmt.Printf("Score: %.1f/10 (%s)\n", score.Value, score.Level)
	fmt.Println()

	fmt.Println("Breakdown:")
	fmt.Printf("  Text depth:  %.1f\n", score.Breakdown.TextDepth)
	fmt.Printf("  Criteria:    %.1f\n", score.Breakdown.CriteriaScore)
	fmt.Printf("  Scope:       %.1f\n", score.Breakdown.ScopeScore)
	fmt.Printf("  Multiplier:  %.2fx\n", score.Breakdown.Multiplier)

	if len(score.Scope.DetectedFiles) > 0 {
		fmt.Println()
		fmt.Printf("Files (%d):\n", score.Scope.EstimatedFileCount)
		for _, file := range score.Scope.DetectedFiles {
			fmt.Printf("  - %s\n", file)
		}
	}
	fmt.Println()
}
