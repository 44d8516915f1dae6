package run

import (
	"fmt"
	"math"
	"strings"

	"github.com/Iron-Ham/rudder/internal/estimate"
	"github.com/Iron-Ham/rudder/internal/ledger"
)

// Summary renders one recorded run as a markdown block: identity,
// token usage, retry and switch stats, the routing decision, and how
// the run compared to its prediction. Sections with nothing to say are
// omitted. prediction may be nil.
func Summary(entry ledger.Entry, prediction *estimate.TaskPrediction) string {
	var b strings.Builder

	b.WriteString("## Run Summary\n\n")
	fmt.Fprintf(&b, "- Task: %s\n", entry.TaskID)
	fmt.Fprintf(&b, "- Tier: %s\n", entry.Tier)
	fmt.Fprintf(&b, "- Duration: %s\n", estimate.FormatDurationSeconds(entry.DurationSeconds))
	fmt.Fprintf(&b, "- Status: %s\n", entry.Status)

	b.WriteString("\n## Token Usage\n\n")
	fmt.Fprintf(&b, "- Input tokens: %s\n", estimate.FormatTokens(entry.InputTokens))
	fmt.Fprintf(&b, "- Output tokens: %s\n", estimate.FormatTokens(entry.OutputTokens))
	if entry.CacheTokens != nil {
		fmt.Fprintf(&b, "- Cache tokens: %s\n", estimate.FormatTokens(*entry.CacheTokens))
	}
	actualTokens := entry.InputTokens + entry.OutputTokens
	fmt.Fprintf(&b, "- Total tokens: %s\n", estimate.FormatTokens(actualTokens))
	if entry.Cost != nil {
		fmt.Fprintf(&b, "- Cost: %s\n", estimate.FormatCost(*entry.Cost))
	}

	if entry.RetryCount != nil {
		b.WriteString("\n## Retry Statistics\n\n")
		fmt.Fprintf(&b, "- Retry count: %d\n", *entry.RetryCount)
	}

	if entry.SwitchCount != nil {
		b.WriteString("\n## Agent Switches\n\n")
		fmt.Fprintf(&b, "- Switch count: %d\n", *entry.SwitchCount)
	}

	if entry.ComplexityScore != nil || entry.RoutingReason != "" {
		b.WriteString("\n## Routing Decision\n\n")
		if entry.ComplexityScore != nil {
			fmt.Fprintf(&b, "- Complexity score: %.1f/10\n", *entry.ComplexityScore)
		}
		if entry.RoutingReason != "" {
			fmt.Fprintf(&b, "- Reason: %s\n", entry.RoutingReason)
		}
	}

	if prediction != nil {
		b.WriteString("\n## Estimate vs Actual\n\n")
		fmt.Fprintf(&b, "- Estimated duration: %s\n", estimate.FormatDurationSeconds(prediction.PredictedDuration))
		fmt.Fprintf(&b, "- Actual duration: %s\n", estimate.FormatDurationSeconds(entry.DurationSeconds))
		fmt.Fprintf(&b, "- Estimated cost: %s\n", estimate.FormatCost(prediction.PredictedCost))
		if entry.Cost != nil {
			fmt.Fprintf(&b, "- Actual cost: %s\n", estimate.FormatCost(*entry.Cost))
		}
		if prediction.PredictedTokens > 0 {
			variance := tokenVariance(prediction.PredictedTokens, actualTokens)
			fmt.Fprintf(&b, "- Token variance: %.1f%% (estimated: %d, actual: %d)\n",
				variance, prediction.PredictedTokens, actualTokens)
		}
	}

	return b.String()
}

// tokenVariance is the percentage deviation of actual token usage from
// the estimate, rounded to one decimal. Positive means the run used
// more than predicted.
func tokenVariance(estimated, actual int) float64 {
	variance := (float64(actual) - float64(estimated)) / float64(estimated) * 100
	return math.Round(variance*10) / 10
}
