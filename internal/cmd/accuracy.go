package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/rudder/internal/accuracy"
	"github.com/Iron-Ham/rudder/internal/estimate"
)

var accuracyCmd = &cobra.Command{
	Use:   "accuracy",
	Short: "Compare recorded estimates against actual runs",
	Long: `Accuracy pairs every estimate snapshot with the runs recorded after
it and reports how far off the predictions were.

MAPE is the mean absolute deviation. Bias is the signed mean: positive
means estimates run low (tasks take longer than predicted). The trend
compares recent deviations against older ones.

Examples:
  rudder accuracy
  rudder accuracy --limit 0
  rudder accuracy --json`,
	RunE: runAccuracy,
}

var (
	accuracyLimit int
	accuracyJSON  bool
)

func init() {
	accuracyCmd.Flags().IntVar(&accuracyLimit, "limit", 10, "Maximum comparisons to show (0 shows all)")
	accuracyCmd.Flags().BoolVar(&accuracyJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(accuracyCmd)
}

func runAccuracy(cmd *cobra.Command, args []string) error {
	w, err := loadWorkspace()
	if err != nil {
		return err
	}

	snapResult, err := w.snapshots().Load()
	if err != nil {
		return fmt.Errorf("failed to read estimate snapshots: %w", err)
	}
	if snapResult.SkippedCount > 0 {
		fmt.Fprintf(os.Stderr, "note: skipped %d corrupt snapshot line(s)\n", snapResult.SkippedCount)
	}

	entries, err := w.loadEntries()
	if err != nil {
		return err
	}

	report := accuracy.GenerateReport(snapResult.Snapshots, entries)

	if accuracyJSON {
		return printJSON(report)
	}

	printAccuracy(report, len(snapResult.Snapshots))
	return nil
}

func printAccuracy(report accuracy.Report, snapshotCount int) {
	fmt.Println(sectionHeader("Estimate Accuracy"))
	fmt.Println()

	if snapshotCount == 0 {
		fmt.Println("No estimate snapshots found.")
		fmt.Println("Run 'rudder estimate --prd prd.md --snapshot' to record predictions first.")
		return
	}
	if len(report.Comparisons) == 0 {
		fmt.Printf("No completed runs match the %d recorded snapshot(s) yet.\n", snapshotCount)
		fmt.Println("Record runs with 'rudder record' and check back.")
		return
	}

	if report.Summary.MAPE != nil {
		fmt.Printf("MAPE:  %.1f%%\n", *report.Summary.MAPE)
	}
	if report.Summary.SignedBias != nil {
		fmt.Printf("Bias:  %+.1f%%%s\n", *report.Summary.SignedBias, biasNote(*report.Summary.SignedBias))
	}
	fmt.Printf("Trend: %s\n", renderTrend(report.Summary.Trend))

	shown := report.Comparisons
	if accuracyLimit > 0 && len(shown) > accuracyLimit {
		shown = shown[len(shown)-accuracyLimit:]
	}

	fmt.Println()
	fmt.Println(sectionHeader(fmt.Sprintf("Recent Comparisons (%d of %d)", len(shown), len(report.Comparisons))))
	fmt.Println()
	fmt.Println(mutedStyle.Render(fmt.Sprintf("%-14s %10s %10s %10s", "TASK", "ESTIMATED", "ACTUAL", "DEVIATION")))
	for _, c := range shown {
		fmt.Printf("%-14s %10s %10s %s\n",
			truncateANSI(c.TaskID, 14),
			estimate.FormatDurationSeconds(c.Estimated),
			estimate.FormatDurationSeconds(c.Actual),
			renderDeviation(c.SignedDeviationPct),
		)
	}
}

func biasNote(bias float64) string {
	switch {
	case bias > 0:
		return " (estimates run low)"
	case bias < 0:
		return " (estimates run high)"
	default:
		return ""
	}
}

func renderTrend(trend accuracy.Trend) string {
	switch trend {
	case accuracy.TrendImproving:
		return goodStyle.Render(string(trend))
	case accuracy.TrendDegrading:
		return alertStyle.Render(string(trend))
	case accuracy.TrendInsufficientData:
		return mutedStyle.Render(string(trend))
	default:
		return string(trend)
	}
}

// renderDeviation pads before styling so the ANSI codes cannot skew the
// column alignment.
func renderDeviation(pct float64) string {
	cell := fmt.Sprintf("%10s", fmt.Sprintf("%+.1f%%", pct))
	switch {
	case pct >= 50 || pct <= -50:
		return alertStyle.Render(cell)
	case pct >= 25 || pct <= -25:
		return warnStyle.Render(cell)
	default:
		return cell
	}
}
