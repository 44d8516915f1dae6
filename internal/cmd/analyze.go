package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/rudder/internal/analysis"
	"github.com/Iron-Ham/rudder/internal/routing"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Mine recorded runs for routing problems",
	Long: `Analyze groups runs by tier and complexity range, reports the
success rate of each cell, and flags cells that fail too often or
receive work outside their expected range.

With --write-guardrails, detected patterns are appended to the guardrail
file as markdown notes for future planning sessions.

Examples:
  rudder analyze
  rudder analyze --write-guardrails
  rudder analyze --json`,
	RunE: runAnalyze,
}

var (
	analyzeWriteGuardrails bool
	analyzeJSON            bool
)

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeWriteGuardrails, "write-guardrails", false, "Append detected patterns to the guardrail file")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	w, err := loadWorkspace()
	if err != nil {
		return err
	}

	entries, err := w.loadEntries()
	if err != nil {
		return err
	}

	result := analysis.NewAnalyzer(w.Config.Routing).Analyze(entries)

	var guardrailPath string
	if analyzeWriteGuardrails && len(result.Patterns) > 0 {
		guardrails := make([]analysis.GuardrailEntry, 0, len(result.Patterns))
		for _, p := range result.Patterns {
			guardrails = append(guardrails, analysis.GuardrailFromPattern(p))
		}
		writer := analysis.NewGuardrailWriter(w.Config.Paths.GuardrailPath(w.BaseDir))
		if err := writer.Append(guardrails); err != nil {
			return fmt.Errorf("failed to write guardrails: %w", err)
		}
		guardrailPath = writer.Path()
	}

	if analyzeJSON {
		if guardrailPath != "" {
			fmt.Fprintf(os.Stderr, "note: wrote %d guardrail(s) to %s\n", len(result.Patterns), guardrailPath)
		}
		return printJSON(result)
	}

	printAnalysis(result)
	if analyzeWriteGuardrails {
		fmt.Println()
		if guardrailPath != "" {
			fmt.Printf("Wrote %d guardrail(s) to %s\n", len(result.Patterns), guardrailPath)
		} else {
			fmt.Println("No patterns detected; guardrails unchanged.")
		}
	}
	return nil
}

func printAnalysis(result analysis.Analysis) {
	fmt.Println(sectionHeader("Routing Analysis"))
	fmt.Println()

	if result.AnalyzedCount == 0 {
		fmt.Println("No scored runs to analyze.")
		if result.SkippedCount > 0 {
			fmt.Printf("%d run(s) were skipped: analysis needs entries recorded with --score and a tier.\n", result.SkippedCount)
		} else {
			fmt.Println("Record runs with 'rudder record <task-id> --tier <tier> --score <score>' first.")
		}
		return
	}

	fmt.Printf("Analyzed %d run(s)", result.AnalyzedCount)
	if result.SkippedCount > 0 {
		fmt.Printf(", skipped %d without a score or known tier", result.SkippedCount)
	}
	fmt.Println(".")
	fmt.Println()

	printSuccessGrid(result.SuccessRates)

	if len(result.Patterns) > 0 {
		fmt.Println()
		fmt.Println(sectionHeader(fmt.Sprintf("Patterns (%d)", len(result.Patterns))))
		fmt.Println()
		for _, p := range result.Patterns {
			fmt.Printf("%s %s\n", renderSeverity(p.Severity), p.Description)
		}
	}

	if len(result.Recommendations) > 0 {
		fmt.Println()
		fmt.Println(sectionHeader("Recommendations"))
		fmt.Println()
		for _, r := range result.Recommendations {
			fmt.Printf("- %s: %s max %.1f -> %.1f\n", r.Tier, actionVerb(r.Action), r.CurrentMax, r.ProposedMax)
			fmt.Printf("  %s\n", mutedStyle.Render(r.Reason))
		}
	}

	if len(result.Patterns) == 0 && len(result.Recommendations) == 0 {
		fmt.Println()
		fmt.Println(goodStyle.Render("No routing problems detected."))
	}
}

// printSuccessGrid renders the tier-by-bucket grid with tiers as rows.
// Cells with no samples show a dash.
func printSuccessGrid(rates []analysis.SuccessRate) {
	cells := make(map[routing.Tier]map[analysis.Bucket]analysis.SuccessRate)
	for _, r := range rates {
		if cells[r.Tier] == nil {
			cells[r.Tier] = make(map[analysis.Bucket]analysis.SuccessRate)
		}
		cells[r.Tier][r.Bucket] = r
	}

	fmt.Println(sectionHeader("Success Rates"))
	fmt.Println()
	fmt.Println(mutedStyle.Render(fmt.Sprintf("%-8s %14s %14s %14s", "TIER", "SCORE 0-3", "SCORE 3-7", "SCORE 7-10")))
	for _, tier := range []routing.Tier{routing.TierLow, routing.TierMedium, routing.TierHigh} {
		fmt.Printf("%-8s %14s %14s %14s\n",
			tier,
			gridCell(cells[tier][analysis.BucketLow]),
			gridCell(cells[tier][analysis.BucketMedium]),
			gridCell(cells[tier][analysis.BucketHigh]),
		)
	}
}

func gridCell(rate analysis.SuccessRate) string {
	if rate.Rate == nil {
		return "-"
	}
	return fmt.Sprintf("%.0f%% (%d)", *rate.Rate*100, rate.Total)
}

func renderSeverity(severity analysis.Severity) string {
	tag := fmt.Sprintf("[%s]", severity)
	switch severity {
	case analysis.SeverityHigh:
		return alertStyle.Render(tag)
	case analysis.SeverityMedium:
		return warnStyle.Render(tag)
	default:
		return tag
	}
}

func actionVerb(action analysis.Action) string {
	switch action {
	case analysis.ActionLowerThreshold:
		return "lower"
	case analysis.ActionExpandRange:
		return "raise"
	default:
		return string(action)
	}
}
