package run

import (
	"strings"
	"testing"

	"github.com/Iron-Ham/rudder/internal/estimate"
	"github.com/Iron-Ham/rudder/internal/ledger"
)

func baseEntry() ledger.Entry {
	cost := 1.25
	return ledger.Entry{
		TaskID:          "US-001",
		Tier:            "medium",
		DurationSeconds: 240,
		InputTokens:     12000,
		OutputTokens:    3000,
		Status:          ledger.StatusSuccess,
		Cost:            &cost,
	}
}

func TestSummary_Basic(t *testing.T) {
	got := Summary(baseEntry(), nil)

	want := `## Run Summary

- Task: US-001
- Tier: medium
- Duration: 4m 0s
- Status: success

## Token Usage

- Input tokens: 12.0K
- Output tokens: 3.0K
- Total tokens: 15.0K
- Cost: $1.25
`
	if got != want {
		t.Errorf("Summary() =\n%s\nwant:\n%s", got, want)
	}
}

func TestSummary_OmitsEmptySections(t *testing.T) {
	got := Summary(baseEntry(), nil)

	for _, header := range []string{
		"## Retry Statistics",
		"## Agent Switches",
		"## Routing Decision",
		"## Estimate vs Actual",
	} {
		if strings.Contains(got, header) {
			t.Errorf("Summary() contains %q with nothing to report:\n%s", header, got)
		}
	}
}

func TestSummary_RetryAndSwitchSections(t *testing.T) {
	entry := baseEntry()
	retries := 3
	switches := 1
	entry.RetryCount = &retries
	entry.SwitchCount = &switches

	got := Summary(entry, nil)

	if !strings.Contains(got, "## Retry Statistics\n\n- Retry count: 3") {
		t.Errorf("Summary() missing retry section:\n%s", got)
	}
	if !strings.Contains(got, "## Agent Switches\n\n- Switch count: 1") {
		t.Errorf("Summary() missing switch section:\n%s", got)
	}
}

func TestSummary_RoutingDecision(t *testing.T) {
	entry := baseEntry()
	score := 6.5
	entry.ComplexityScore = &score
	entry.RoutingReason = "score 6.5 within medium band"

	got := Summary(entry, nil)

	if !strings.Contains(got, "- Complexity score: 6.5/10") {
		t.Errorf("Summary() missing complexity score:\n%s", got)
	}
	if !strings.Contains(got, "- Reason: score 6.5 within medium band") {
		t.Errorf("Summary() missing routing reason:\n%s", got)
	}
}

func TestSummary_CacheTokensExcludedFromTotal(t *testing.T) {
	entry := baseEntry()
	entry.InputTokens = 1000
	entry.OutputTokens = 500
	cache := 2000
	entry.CacheTokens = &cache

	got := Summary(entry, nil)

	if !strings.Contains(got, "- Cache tokens: 2.0K") {
		t.Errorf("Summary() missing cache tokens:\n%s", got)
	}
	if !strings.Contains(got, "- Total tokens: 1.5K") {
		t.Errorf("Summary() total should exclude cache reads:\n%s", got)
	}
}

func TestSummary_EstimateComparison(t *testing.T) {
	entry := baseEntry()
	entry.DurationSeconds = 360
	entry.InputTokens = 8000
	entry.OutputTokens = 4500
	cost := 0.75
	entry.Cost = &cost

	prediction := &estimate.TaskPrediction{
		TaskID:            "US-001",
		PredictedDuration: 300,
		PredictedTokens:   10000,
		PredictedCost:     0.5,
	}

	got := Summary(entry, prediction)

	for _, line := range []string{
		"- Estimated duration: 5m 0s",
		"- Actual duration: 6m 0s",
		"- Estimated cost: $0.50",
		"- Actual cost: $0.75",
		"- Token variance: 25.0% (estimated: 10000, actual: 12500)",
	} {
		if !strings.Contains(got, line) {
			t.Errorf("Summary() missing %q:\n%s", line, got)
		}
	}
}

func TestSummary_NegativeVariance(t *testing.T) {
	entry := baseEntry()
	entry.InputTokens = 4000
	entry.OutputTokens = 1000

	prediction := &estimate.TaskPrediction{
		TaskID:            "US-001",
		PredictedDuration: 300,
		PredictedTokens:   8000,
		PredictedCost:     0.5,
	}

	got := Summary(entry, prediction)

	if !strings.Contains(got, "- Token variance: -37.5% (estimated: 8000, actual: 5000)") {
		t.Errorf("Summary() wrong variance:\n%s", got)
	}
}

func TestSummary_NoVarianceWithoutTokenPrediction(t *testing.T) {
	prediction := &estimate.TaskPrediction{
		TaskID:            "US-001",
		PredictedDuration: 300,
	}

	got := Summary(baseEntry(), prediction)

	if !strings.Contains(got, "## Estimate vs Actual") {
		t.Errorf("Summary() missing comparison section:\n%s", got)
	}
	if strings.Contains(got, "Token variance:") {
		t.Errorf("Summary() has a variance with no token prediction:\n%s", got)
	}
}
