package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/rudder/internal/config"
	"github.com/Iron-Ham/rudder/internal/errors"
	"github.com/Iron-Ham/rudder/internal/ledger"
	"github.com/Iron-Ham/rudder/internal/run"
)

var recordCmd = &cobra.Command{
	Use:   "record <task-id>",
	Short: "Record a completed run in the ledger",
	Long: `Record appends a completed run to the ledger and prints a markdown
summary of it.

Token counts and duration come from whatever executed the task. Cost is
computed from the configured pricing table when not given explicitly.
When an estimate snapshot covers the task, the summary compares the
prediction against what actually happened.

Examples:
  rudder record US-001 --tier medium --duration 312 --input-tokens 48200 --output-tokens 9100
  rudder record US-002 --tier high --status error --duration 95 --retries 2
  rudder record US-003 --tier low --duration 60 --cost 0.04 --tests-passed`,
	Args: cobra.ExactArgs(1),
	RunE: runRecord,
}

var (
	recordTier         string
	recordStatus       string
	recordDuration     float64
	recordInputTokens  int
	recordOutputTokens int
	recordCacheTokens  int
	recordCost         float64
	recordScore        float64
	recordReason       string
	recordRetries      int
	recordSwitches     int
	recordTestsPassed  bool
	recordCompletedAt  string
	recordJSON         bool
)

func init() {
	recordCmd.Flags().StringVar(&recordTier, "tier", "", "Tier the run executed on (low, medium, high)")
	recordCmd.Flags().StringVar(&recordStatus, "status", ledger.StatusSuccess, "Run status (success or error)")
	recordCmd.Flags().Float64Var(&recordDuration, "duration", 0, "Run duration in seconds")
	recordCmd.Flags().IntVar(&recordInputTokens, "input-tokens", 0, "Input tokens consumed")
	recordCmd.Flags().IntVar(&recordOutputTokens, "output-tokens", 0, "Output tokens produced")
	recordCmd.Flags().IntVar(&recordCacheTokens, "cache-tokens", 0, "Cache read tokens")
	recordCmd.Flags().Float64Var(&recordCost, "cost", 0, "Cost in USD (computed from pricing when omitted)")
	recordCmd.Flags().Float64Var(&recordScore, "score", 0, "Complexity score the task routed on")
	recordCmd.Flags().StringVar(&recordReason, "reason", "", "Routing reason for the tier choice")
	recordCmd.Flags().IntVar(&recordRetries, "retries", 0, "Retry count")
	recordCmd.Flags().IntVar(&recordSwitches, "switches", 0, "Agent switch count")
	recordCmd.Flags().BoolVar(&recordTestsPassed, "tests-passed", false, "Whether the task's tests passed")
	recordCmd.Flags().StringVar(&recordCompletedAt, "completed-at", "", "Completion time in RFC 3339 (defaults to now)")
	recordCmd.Flags().BoolVar(&recordJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(recordCmd)
}

func runRecord(cmd *cobra.Command, args []string) error {
	w, err := loadWorkspace()
	if err != nil {
		return err
	}

	log := w.logger()
	defer log.Close()

	pipeline, err := run.NewPipeline(run.Config{
		Provider:  config.NewStaticProvider(w.Config),
		Ledger:    w.ledger(),
		Snapshots: w.snapshots(),
	}, run.WithLogger(log))
	if err != nil {
		return err
	}

	outcome := run.Outcome{
		TaskID:          args[0],
		Tier:            recordTier,
		Status:          recordStatus,
		DurationSeconds: recordDuration,
		InputTokens:     recordInputTokens,
		OutputTokens:    recordOutputTokens,
		RoutingReason:   recordReason,
	}

	flags := cmd.Flags()
	if flags.Changed("cache-tokens") {
		outcome.CacheTokens = &recordCacheTokens
	}
	if flags.Changed("cost") {
		outcome.Cost = &recordCost
	}
	if flags.Changed("score") {
		outcome.ComplexityScore = &recordScore
	}
	if flags.Changed("retries") {
		outcome.RetryCount = &recordRetries
	}
	if flags.Changed("switches") {
		outcome.SwitchCount = &recordSwitches
	}
	if flags.Changed("tests-passed") {
		outcome.TestsPassed = &recordTestsPassed
	}
	if recordCompletedAt != "" {
		at, parseErr := time.Parse(time.RFC3339, recordCompletedAt)
		if parseErr != nil {
			return errors.NewValidationError(fmt.Sprintf("invalid --completed-at %q: use RFC 3339, e.g. 2026-03-15T12:00:00Z", recordCompletedAt))
		}
		outcome.CompletedAt = at
	}

	result, err := pipeline.Record(cmd.Context(), outcome)
	if err != nil {
		return err
	}

	if recordJSON {
		return printJSON(result)
	}

	fmt.Print(result.Summary)
	fmt.Println()
	fmt.Println(mutedStyle.Render("Appended to " + w.Config.Paths.LedgerPath(w.BaseDir)))
	return nil
}
