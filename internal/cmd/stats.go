package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/rudder/internal/config"
	"github.com/Iron-Ham/rudder/internal/estimate"
	"github.com/Iron-Ham/rudder/internal/ledger"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the run ledger",
	Long: `Stats aggregates the full ledger: run counts, success rate, token
totals, and spend, with a per-tier breakdown.

Examples:
  rudder stats
  rudder stats --json`,
	RunE: runStats,
}

var statsJSON bool

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(statsCmd)
}

// ledgerStats is the aggregate view of every recorded run.
type ledgerStats struct {
	Runs         int         `json:"runs"`
	Successes    int         `json:"successes"`
	Failures     int         `json:"failures"`
	InputTokens  int         `json:"input_tokens"`
	OutputTokens int         `json:"output_tokens"`
	CacheTokens  int         `json:"cache_tokens"`
	TotalCost    float64     `json:"total_cost"`
	FirstRun     time.Time   `json:"first_run"`
	LastRun      time.Time   `json:"last_run"`
	Tiers        []tierStats `json:"tiers"`
}

type tierStats struct {
	Tier         string  `json:"tier"`
	Runs         int     `json:"runs"`
	Successes    int     `json:"successes"`
	Tokens       int     `json:"tokens"`
	Cost         float64 `json:"cost"`
	TotalSeconds float64 `json:"total_seconds"`
}

func runStats(cmd *cobra.Command, args []string) error {
	w, err := loadWorkspace()
	if err != nil {
		return err
	}

	entries, err := w.loadEntries()
	if err != nil {
		return err
	}

	stats := computeStats(entries, w.Config.Pricing)

	if statsJSON {
		return printJSON(stats)
	}

	printStats(stats)
	return nil
}

// computeStats aggregates ledger entries. Entries recorded without a
// cost are priced from their token counts, matching the budget
// governor's view of spend.
func computeStats(entries []ledger.Entry, pricing config.PricingConfig) ledgerStats {
	stats := ledgerStats{Runs: len(entries)}
	byTier := make(map[string]*tierStats)

	for _, e := range entries {
		cost := pricing.ForTier(e.Tier).CostFor(e.InputTokens, e.OutputTokens)
		if e.Cost != nil {
			cost = *e.Cost
		}

		if e.Status == ledger.StatusSuccess {
			stats.Successes++
		} else {
			stats.Failures++
		}
		stats.InputTokens += e.InputTokens
		stats.OutputTokens += e.OutputTokens
		if e.CacheTokens != nil {
			stats.CacheTokens += *e.CacheTokens
		}
		stats.TotalCost += cost
		if stats.FirstRun.IsZero() || e.Timestamp.Before(stats.FirstRun) {
			stats.FirstRun = e.Timestamp
		}
		if e.Timestamp.After(stats.LastRun) {
			stats.LastRun = e.Timestamp
		}

		t := byTier[e.Tier]
		if t == nil {
			t = &tierStats{Tier: e.Tier}
			byTier[e.Tier] = t
		}
		t.Runs++
		if e.Status == ledger.StatusSuccess {
			t.Successes++
		}
		t.Tokens += e.InputTokens + e.OutputTokens
		t.Cost += cost
		t.TotalSeconds += e.DurationSeconds
	}

	for _, t := range byTier {
		stats.Tiers = append(stats.Tiers, *t)
	}
	sort.Slice(stats.Tiers, func(i, j int) bool {
		return tierRank(stats.Tiers[i].Tier) < tierRank(stats.Tiers[j].Tier)
	})

	return stats
}

// tierRank orders the known tiers cheapest first; anything else (legacy
// model-name tiers) sorts after them alphabetically.
func tierRank(tier string) string {
	switch tier {
	case "low":
		return "0"
	case "medium":
		return "1"
	case "high":
		return "2"
	default:
		return "3" + tier
	}
}

func printStats(stats ledgerStats) {
	fmt.Println(sectionHeader("Ledger Statistics"))
	fmt.Println()

	if stats.Runs == 0 {
		fmt.Println("No runs recorded.")
		fmt.Println("Run 'rudder record <task-id> --tier <tier> --duration <seconds>' after completing a task.")
		return
	}

	successRate := float64(stats.Successes) / float64(stats.Runs) * 100
	fmt.Printf("Runs:         %d (%d succeeded, %d failed)\n", stats.Runs, stats.Successes, stats.Failures)
	fmt.Printf("Success rate: %.0f%%\n", successRate)
	fmt.Printf("First run:    %s (%s)\n", stats.FirstRun.Format("2006-01-02"), humanize.Time(stats.FirstRun))
	fmt.Printf("Last run:     %s (%s)\n", stats.LastRun.Format("2006-01-02"), humanize.Time(stats.LastRun))
	fmt.Println()

	tokenLine := fmt.Sprintf("Tokens:       %s input, %s output", estimate.FormatTokens(stats.InputTokens), estimate.FormatTokens(stats.OutputTokens))
	if stats.CacheTokens > 0 {
		tokenLine += fmt.Sprintf(", %s cache reads", estimate.FormatTokens(stats.CacheTokens))
	}
	fmt.Println(tokenLine)
	fmt.Printf("Total spend:  %s\n", estimate.FormatCost(stats.TotalCost))

	fmt.Println()
	fmt.Println(sectionHeader("By Tier"))
	fmt.Println()
	fmt.Println(mutedStyle.Render(fmt.Sprintf("%-8s %6s %9s %10s %9s %10s", "TIER", "RUNS", "SUCCESS", "TOKENS", "COST", "AVG TIME")))
	for _, t := range stats.Tiers {
		rate := float64(t.Successes) / float64(t.Runs) * 100
		avg := t.TotalSeconds / float64(t.Runs)
		fmt.Printf("%-8s %6d %8.0f%% %10s %9s %10s\n",
			t.Tier,
			t.Runs,
			rate,
			estimate.FormatTokens(t.Tokens),
			estimate.FormatCost(t.Cost),
			estimate.FormatDurationSeconds(avg),
		)
	}
}
