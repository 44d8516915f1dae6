package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/rudder/internal/budget"
	"github.com/Iron-Ham/rudder/internal/estimate"
)

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Show spend against the configured budget windows",
	Long: `Budget sums the cost of recorded runs over the current day and
month and compares each window against its configured limit. Runs
recorded without a cost are priced from their token counts.

A limit of zero means the window is unlimited. Set limits with:
  rudder config set budget.daily_limit 10
  rudder config set budget.monthly_limit 200

Examples:
  rudder budget
  rudder budget --json`,
	RunE: runBudget,
}

var budgetJSON bool

func init() {
	budgetCmd.Flags().BoolVar(&budgetJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(budgetCmd)
}

func runBudget(cmd *cobra.Command, args []string) error {
	w, err := loadWorkspace()
	if err != nil {
		return err
	}

	entries, err := w.loadEntries()
	if err != nil {
		return err
	}

	governor := budget.NewGovernor(w.Config.Budget, w.Config.Pricing)
	now := time.Now()
	status := governor.Check(entries, now)
	decision := governor.CanStart(entries, now)

	if budgetJSON {
		return printJSON(struct {
			Status   budget.Status        `json:"status"`
			Decision budget.StartDecision `json:"decision"`
		}{status, decision})
	}

	printBudget(status, decision)
	return nil
}

func printBudget(status budget.Status, decision budget.StartDecision) {
	fmt.Println(sectionHeader("Budget"))
	fmt.Println()
	printWindow("Today", status.Daily)
	fmt.Println()
	printWindow("This month", status.Monthly)
	fmt.Println()
	if decision.Allowed {
		fmt.Printf("%s %s\n", goodStyle.Render("✓"), decision.Reason)
	} else {
		fmt.Printf("%s %s\n", alertStyle.Render("✗"), decision.Reason)
	}
}

func printWindow(label string, window budget.WindowStatus) {
	if window.Limit <= 0 {
		fmt.Printf("%s: %s spent (no limit)\n", label, estimate.FormatCost(window.Spent))
		return
	}

	line := fmt.Sprintf("%s: %s of %s", label, estimate.FormatCost(window.Spent), estimate.FormatCost(window.Limit))
	if window.Percentage != nil {
		line += fmt.Sprintf(" (%d%%)", *window.Percentage)
	}
	fmt.Println(line)

	if window.Exceeded {
		fmt.Println(alertStyle.Render("  limit exceeded"))
		return
	}
	// Alerts accumulate in threshold order; only the highest crossed one
	// is worth a line.
	if len(window.Alerts) > 0 {
		fmt.Println(warnStyle.Render(fmt.Sprintf("  over %d%% of the limit", window.Alerts[len(window.Alerts)-1])))
	}
}
