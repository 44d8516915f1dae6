package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/rudder/internal/estimate"
	"github.com/Iron-Ham/rudder/internal/ledger"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded runs",
	Long: `List runs from the ledger, newest first.

Examples:
  rudder runs
  rudder runs --limit 50
  rudder runs --task US-001
  rudder runs --tier high --json`,
	RunE: runRuns,
}

var (
	runsLimit int
	runsTask  string
	runsTier  string
	runsJSON  bool
)

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "Maximum runs to show (0 shows all)")
	runsCmd.Flags().StringVar(&runsTask, "task", "", "Only show runs for this task ID")
	runsCmd.Flags().StringVar(&runsTier, "tier", "", "Only show runs on this tier")
	runsCmd.Flags().BoolVar(&runsJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	w, err := loadWorkspace()
	if err != nil {
		return err
	}

	entries, err := w.loadEntries()
	if err != nil {
		return err
	}

	filtered := filterRuns(entries, runsTask, runsTier)
	shown := limitRuns(filtered, runsLimit)

	if runsJSON {
		return printJSON(shown)
	}

	printRuns(shown, len(filtered))
	return nil
}

// filterRuns keeps entries matching the task and tier filters. Empty
// filters match everything.
func filterRuns(entries []ledger.Entry, task, tier string) []ledger.Entry {
	filtered := make([]ledger.Entry, 0, len(entries))
	for _, e := range entries {
		if task != "" && e.TaskID != task {
			continue
		}
		if tier != "" && e.Tier != tier {
			continue
		}
		filtered = append(filtered, e)
	}
	return filtered
}

// limitRuns returns at most limit entries, newest first. The ledger is
// append-only, so newest means the tail read backwards.
func limitRuns(entries []ledger.Entry, limit int) []ledger.Entry {
	reversed := make([]ledger.Entry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		reversed = append(reversed, entries[i])
	}
	if limit > 0 && len(reversed) > limit {
		reversed = reversed[:limit]
	}
	return reversed
}

func printRuns(shown []ledger.Entry, total int) {
	fmt.Println(sectionHeader("Recorded Runs"))
	fmt.Println()

	if total == 0 {
		fmt.Println("No runs recorded.")
		fmt.Println("Run 'rudder record <task-id> --tier <tier> --duration <seconds>' after completing a task.")
		return
	}

	// The status glyph is rendered outside the padded columns so its ANSI
	// codes cannot skew the printf alignment.
	const rowFormat = "%-14s %-8s %8s %10s %9s  %s"
	fmt.Println(mutedStyle.Render(fmt.Sprintf("  "+rowFormat, "TASK", "TIER", "TIME", "TOKENS", "COST", "WHEN")))
	for _, e := range shown {
		cost := "-"
		if e.Cost != nil {
			cost = estimate.FormatCost(*e.Cost)
		}
		fmt.Printf("%s "+rowFormat+"\n",
			statusGlyph(e.Status == ledger.StatusSuccess),
			truncateANSI(e.TaskID, 14),
			e.Tier,
			estimate.FormatDurationSeconds(e.DurationSeconds),
			estimate.FormatTokens(e.InputTokens+e.OutputTokens),
			cost,
			humanize.Time(e.Timestamp),
		)
	}

	fmt.Println()
	fmt.Printf("Showing %d of %d run(s)\n", len(shown), total)
}
