package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/Iron-Ham/rudder/internal/config"
	"github.com/Iron-Ham/rudder/internal/ledger"
	"github.com/Iron-Ham/rudder/internal/routing"
)

func defaultRoutingConfig() config.RoutingConfig {
	return config.RoutingConfig{
		Enabled:     true,
		LowMax:      3,
		MediumMax:   7,
		DefaultTier: "medium",
	}
}

func scoredEntry(tier string, score float64, success bool) ledger.Entry {
	status := ledger.StatusSuccess
	if !success {
		status = ledger.StatusError
	}
	return ledger.Entry{
		TaskID:          "US-1",
		Tier:            tier,
		DurationSeconds: 100,
		Status:          status,
		ComplexityScore: &score,
	}
}

func repeat(entry ledger.Entry, n int) []ledger.Entry {
	entries := make([]ledger.Entry, n)
	for i := range entries {
		entries[i] = entry
	}
	return entries
}

func cellFor(t *testing.T, analysis Analysis, tier routing.Tier, bucket Bucket) SuccessRate {
	t.Helper()
	for _, cell := range analysis.SuccessRates {
		if cell.Tier == tier && cell.Bucket == bucket {
			return cell
		}
	}
	t.Fatalf("no cell for tier %s bucket %s", tier, bucket)
	return SuccessRate{}
}

func TestBucketFor(t *testing.T) {
	tests := []struct {
		score float64
		want  Bucket
	}{
		{1, BucketLow},
		{3, BucketLow},
		{3.1, BucketMedium},
		{5, BucketMedium},
		{7, BucketMedium},
		{7.1, BucketHigh},
		{10, BucketHigh},
	}

	for _, tt := range tests {
		if got := BucketFor(tt.score); got != tt.want {
			t.Errorf("BucketFor(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestAnalyzer_GridShape(t *testing.T) {
	analyzer := NewAnalyzer(defaultRoutingConfig())

	analysis := analyzer.Analyze(nil)

	if len(analysis.SuccessRates) != 9 {
		t.Fatalf("grid has %d cells, want 9", len(analysis.SuccessRates))
	}
	first, last := analysis.SuccessRates[0], analysis.SuccessRates[8]
	if first.Tier != routing.TierLow || first.Bucket != BucketLow {
		t.Errorf("first cell = %s/%s, want low/low", first.Tier, first.Bucket)
	}
	if last.Tier != routing.TierHigh || last.Bucket != BucketHigh {
		t.Errorf("last cell = %s/%s, want high/high", last.Tier, last.Bucket)
	}
	for _, cell := range analysis.SuccessRates {
		if cell.Total != 0 || cell.Rate != nil {
			t.Errorf("cell %s/%s = %+v, want empty with nil rate", cell.Tier, cell.Bucket, cell)
		}
	}
	if len(analysis.Patterns) != 0 || len(analysis.Recommendations) != 0 {
		t.Errorf("empty ledger produced patterns %v recommendations %v",
			analysis.Patterns, analysis.Recommendations)
	}
}

func TestAnalyzer_SuccessRates(t *testing.T) {
	analyzer := NewAnalyzer(defaultRoutingConfig())
	entries := append(
		repeat(scoredEntry("medium", 5, true), 3),
		scoredEntry("medium", 5, false),
	)
	entries = append(entries, scoredEntry("low", 2, true))

	analysis := analyzer.Analyze(entries)

	cell := cellFor(t, analysis, routing.TierMedium, BucketMedium)
	if cell.Total != 4 || cell.Successes != 3 {
		t.Errorf("medium/medium = %d/%d, want 3 of 4", cell.Successes, cell.Total)
	}
	if cell.Rate == nil || math.Abs(*cell.Rate-0.75) > 0.001 {
		t.Errorf("medium/medium rate = %v, want 0.75", cell.Rate)
	}

	low := cellFor(t, analysis, routing.TierLow, BucketLow)
	if low.Rate == nil || *low.Rate != 1 {
		t.Errorf("low/low rate = %v, want 1", low.Rate)
	}
	if analysis.AnalyzedCount != 5 {
		t.Errorf("AnalyzedCount = %d, want 5", analysis.AnalyzedCount)
	}
}

func TestAnalyzer_SkipsUnbucketableEntries(t *testing.T) {
	analyzer := NewAnalyzer(defaultRoutingConfig())
	noScore := ledger.Entry{TaskID: "US-2", Tier: "medium", Status: ledger.StatusSuccess}
	legacyTier := scoredEntry("sonnet", 5, true)

	analysis := analyzer.Analyze([]ledger.Entry{
		noScore,
		legacyTier,
		scoredEntry("medium", 5, true),
	})

	if analysis.AnalyzedCount != 1 {
		t.Errorf("AnalyzedCount = %d, want 1", analysis.AnalyzedCount)
	}
	if analysis.SkippedCount != 2 {
		t.Errorf("SkippedCount = %d, want 2", analysis.SkippedCount)
	}
}

func TestAnalyzer_HighFailurePattern(t *testing.T) {
	analyzer := NewAnalyzer(defaultRoutingConfig())

	// 1 of 3 at 33%: below both floors.
	entries := append(repeat(scoredEntry("medium", 5, false), 2), scoredEntry("medium", 5, true))
	analysis := analyzer.Analyze(entries)

	if len(analysis.Patterns) != 1 {
		t.Fatalf("got %d patterns, want 1: %+v", len(analysis.Patterns), analysis.Patterns)
	}
	p := analysis.Patterns[0]
	if p.Type != PatternHighFailureRate || p.Severity != SeverityHigh {
		t.Errorf("pattern = %+v, want high_failure_rate/high", p)
	}
	if p.SampleCount != 3 {
		t.Errorf("SampleCount = %d, want 3", p.SampleCount)
	}
	if !strings.Contains(p.Description, "medium tier") {
		t.Errorf("Description = %q, want tier named", p.Description)
	}
}

func TestAnalyzer_HighFailureSeverityBoundary(t *testing.T) {
	analyzer := NewAnalyzer(defaultRoutingConfig())

	// 3 of 5 at 60%: failing but not severely.
	entries := append(repeat(scoredEntry("medium", 5, true), 3), repeat(scoredEntry("medium", 5, false), 2)...)
	analysis := analyzer.Analyze(entries)

	if len(analysis.Patterns) != 1 {
		t.Fatalf("got %d patterns, want 1", len(analysis.Patterns))
	}
	if analysis.Patterns[0].Severity != SeverityMedium {
		t.Errorf("Severity = %q, want %q at 60%%", analysis.Patterns[0].Severity, SeverityMedium)
	}
}

func TestAnalyzer_SingleFailureIsNotAPattern(t *testing.T) {
	analyzer := NewAnalyzer(defaultRoutingConfig())

	analysis := analyzer.Analyze([]ledger.Entry{scoredEntry("medium", 5, false)})

	if len(analysis.Patterns) != 0 {
		t.Errorf("patterns = %+v, want none below the sample floor", analysis.Patterns)
	}
}

func TestAnalyzer_MisroutedPattern(t *testing.T) {
	analyzer := NewAnalyzer(defaultRoutingConfig())

	// Low tier handling high-complexity work at 75%: outside its range
	// and under the misroute floor, but not a failure-rate pattern.
	entries := append(repeat(scoredEntry("low", 8, true), 3), scoredEntry("low", 8, false))
	analysis := analyzer.Analyze(entries)

	if len(analysis.Patterns) != 1 {
		t.Fatalf("got %d patterns, want 1: %+v", len(analysis.Patterns), analysis.Patterns)
	}
	p := analysis.Patterns[0]
	if p.Type != PatternMisrouted {
		t.Errorf("Type = %q, want %q", p.Type, PatternMisrouted)
	}
	if p.Tier != routing.TierLow || p.Bucket != BucketHigh {
		t.Errorf("pattern cell = %s/%s, want low/high", p.Tier, p.Bucket)
	}
}

func TestAnalyzer_OwnRangeBelowMisrouteFloorIsFine(t *testing.T) {
	analyzer := NewAnalyzer(defaultRoutingConfig())

	// 75% inside the tier's own range: not misrouted, not failing.
	entries := append(repeat(scoredEntry("medium", 5, true), 3), scoredEntry("medium", 5, false))

	if got := analyzer.Analyze(entries).Patterns; len(got) != 0 {
		t.Errorf("patterns = %+v, want none", got)
	}
}

func TestAnalyzer_FailingOffRangeCellReportsBothPatterns(t *testing.T) {
	analyzer := NewAnalyzer(defaultRoutingConfig())

	// Low tier failing badly on high-complexity work trips both
	// detectors: the cell fails, and the tier is out of its range.
	entries := append(repeat(scoredEntry("low", 9, false), 3), scoredEntry("low", 9, true))
	analysis := analyzer.Analyze(entries)

	if len(analysis.Patterns) != 2 {
		t.Fatalf("got %d patterns, want 2: %+v", len(analysis.Patterns), analysis.Patterns)
	}
	types := map[PatternType]bool{}
	for _, p := range analysis.Patterns {
		types[p.Type] = true
	}
	if !types[PatternHighFailureRate] || !types[PatternMisrouted] {
		t.Errorf("pattern types = %v, want both kinds", types)
	}
}

func TestAnalyzer_LowerThresholdRecommendation(t *testing.T) {
	analyzer := NewAnalyzer(defaultRoutingConfig())

	entries := append(repeat(scoredEntry("medium", 5, false), 3), scoredEntry("medium", 5, true))
	analysis := analyzer.Analyze(entries)

	if len(analysis.Recommendations) != 1 {
		t.Fatalf("got %d recommendations, want 1: %+v",
			len(analysis.Recommendations), analysis.Recommendations)
	}
	rec := analysis.Recommendations[0]
	if rec.Action != ActionLowerThreshold || rec.Tier != routing.TierMedium {
		t.Errorf("recommendation = %+v, want lower_threshold for medium", rec)
	}
	if rec.CurrentMax != 7 || rec.ProposedMax != 6 {
		t.Errorf("thresholds = %v -> %v, want 7 -> 6", rec.CurrentMax, rec.ProposedMax)
	}
}

func TestAnalyzer_HighTierFailureHasNoThresholdToLower(t *testing.T) {
	analyzer := NewAnalyzer(defaultRoutingConfig())

	entries := repeat(scoredEntry("high", 9, false), 3)
	analysis := analyzer.Analyze(entries)

	if len(analysis.Patterns) != 1 {
		t.Fatalf("got %d patterns, want 1", len(analysis.Patterns))
	}
	if len(analysis.Recommendations) != 0 {
		t.Errorf("recommendations = %+v, want none for the high tier", analysis.Recommendations)
	}
}

func TestAnalyzer_ExpandRecommendation(t *testing.T) {
	analyzer := NewAnalyzer(defaultRoutingConfig())

	analysis := analyzer.Analyze(repeat(scoredEntry("low", 2, true), 5))

	if len(analysis.Recommendations) != 1 {
		t.Fatalf("got %d recommendations, want 1: %+v",
			len(analysis.Recommendations), analysis.Recommendations)
	}
	rec := analysis.Recommendations[0]
	if rec.Action != ActionExpandRange || rec.Tier != routing.TierLow {
		t.Errorf("recommendation = %+v, want expand_range for low", rec)
	}
	if rec.CurrentMax != 3 || rec.ProposedMax != 7 {
		t.Errorf("thresholds = %v -> %v, want 3 -> 7", rec.CurrentMax, rec.ProposedMax)
	}
}

func TestAnalyzer_ExpandMediumProposesFullRange(t *testing.T) {
	analyzer := NewAnalyzer(defaultRoutingConfig())

	analysis := analyzer.Analyze(repeat(scoredEntry("medium", 5, true), 6))

	if len(analysis.Recommendations) != 1 {
		t.Fatalf("got %d recommendations, want 1", len(analysis.Recommendations))
	}
	rec := analysis.Recommendations[0]
	if rec.Tier != routing.TierMedium || rec.ProposedMax != 10 {
		t.Errorf("recommendation = %+v, want medium expanded to 10", rec)
	}
}

func TestAnalyzer_ExpandNeedsFiveCleanSamples(t *testing.T) {
	analyzer := NewAnalyzer(defaultRoutingConfig())

	// Four clean runs: under the sample floor.
	if got := analyzer.Analyze(repeat(scoredEntry("low", 2, true), 4)).Recommendations; len(got) != 0 {
		t.Errorf("recommendations = %+v, want none at 4 samples", got)
	}

	// Five runs with one failure: not a perfect record.
	entries := append(repeat(scoredEntry("low", 2, true), 4), scoredEntry("low", 2, false))
	if got := analyzer.Analyze(entries).Recommendations; len(got) != 0 {
		t.Errorf("recommendations = %+v, want none at 80%%", got)
	}
}

func TestAnalyzer_TierNeverGetsBothRecommendations(t *testing.T) {
	analyzer := NewAnalyzer(defaultRoutingConfig())

	// Low tier is perfect in its own range but failing on misrouted
	// medium work: only the ceiling cut survives.
	entries := append(repeat(scoredEntry("low", 2, true), 5), repeat(scoredEntry("low", 5, false), 2)...)
	analysis := analyzer.Analyze(entries)

	if len(analysis.Recommendations) != 1 {
		t.Fatalf("got %d recommendations, want 1: %+v",
			len(analysis.Recommendations), analysis.Recommendations)
	}
	if analysis.Recommendations[0].Action != ActionLowerThreshold {
		t.Errorf("Action = %q, want %q", analysis.Recommendations[0].Action, ActionLowerThreshold)
	}
}
