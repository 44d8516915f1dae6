package analysis

import (
	"fmt"

	"github.com/Iron-Ham/rudder/internal/config"
	"github.com/Iron-Ham/rudder/internal/ledger"
	"github.com/Iron-Ham/rudder/internal/routing"
)

// Bucket is a fixed complexity range used to frame routing outcomes.
// The ranges do not move with router thresholds: the grid stays
// comparable across config changes.
type Bucket string

const (
	BucketLow    Bucket = "low"    // scores up to 3
	BucketMedium Bucket = "medium" // scores above 3 up to 7
	BucketHigh   Bucket = "high"   // scores above 7
)

// BucketFor maps a complexity score onto its range.
func BucketFor(score float64) Bucket {
	switch {
	case score <= 3:
		return BucketLow
	case score <= 7:
		return BucketMedium
	default:
		return BucketHigh
	}
}

// SuccessRate is one cell of the tier-by-bucket outcome grid. All nine
// cells are always present; Rate is nil for cells with no samples.
type SuccessRate struct {
	Tier      routing.Tier `json:"tier"`
	Bucket    Bucket       `json:"bucket"`
	Total     int          `json:"total"`
	Successes int          `json:"successes"`
	Rate      *float64     `json:"rate"`
}

// PatternType classifies a detected routing problem.
type PatternType string

const (
	// PatternHighFailureRate marks a cell where runs fail too often to
	// be routing noise.
	PatternHighFailureRate PatternType = "high_failure_rate"

	// PatternMisrouted marks a tier receiving work outside its expected
	// complexity range and struggling with it.
	PatternMisrouted PatternType = "misrouted"
)

// Severity grades how urgent a pattern is.
type Severity string

const (
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Pattern is one detected problem cell.
type Pattern struct {
	Type        PatternType  `json:"type"`
	Tier        routing.Tier `json:"tier"`
	Bucket      Bucket       `json:"bucket"`
	Severity    Severity     `json:"severity"`
	SampleCount int          `json:"sample_count"`
	SuccessRate float64      `json:"success_rate"`
	Description string       `json:"description"`
}

// Action is the kind of threshold change a recommendation proposes.
type Action string

const (
	ActionLowerThreshold Action = "lower_threshold"
	ActionExpandRange    Action = "expand_range"
)

// Recommendation proposes a routing threshold change. Recommendations
// are advisory text for an operator; nothing applies them to the
// router's configuration.
type Recommendation struct {
	Action      Action       `json:"action"`
	Tier        routing.Tier `json:"tier"`
	CurrentMax  float64      `json:"current_max"`
	ProposedMax float64      `json:"proposed_max"`
	Reason      string       `json:"reason"`
}

// Analysis is the full result of mining routing outcomes.
type Analysis struct {
	SuccessRates    []SuccessRate    `json:"success_rates"`
	Patterns        []Pattern        `json:"patterns"`
	Recommendations []Recommendation `json:"recommendations"`

	// AnalyzedCount is the number of entries that carried both a known
	// tier and a complexity score. SkippedCount is the rest; legacy
	// entries with model-name tiers or no score land there.
	AnalyzedCount int `json:"analyzed_count"`
	SkippedCount  int `json:"skipped_count"`
}

const (
	failureRateFloor   = 0.70
	severeFailureFloor = 0.50
	misroutedFloor     = 0.80
	patternMinSamples  = 2
	expandMinSamples   = 5
	maxScore           = 10
)

var (
	gridTiers   = []routing.Tier{routing.TierLow, routing.TierMedium, routing.TierHigh}
	gridBuckets = []Bucket{BucketLow, BucketMedium, BucketHigh}
)

// Analyzer mines ledger entries for routing outcome patterns. The
// routing config is only consulted when phrasing recommendations; the
// grid itself uses the fixed bucket ranges.
type Analyzer struct {
	cfg config.RoutingConfig
}

// NewAnalyzer returns an Analyzer that frames recommendations against
// the given routing thresholds.
func NewAnalyzer(cfg config.RoutingConfig) *Analyzer {
	return &Analyzer{cfg: cfg}
}

type cellKey struct {
	tier   routing.Tier
	bucket Bucket
}

type cellCount struct {
	total     int
	successes int
}

// Analyze buckets entries into the tier-by-bucket grid, detects failure
// and misrouting patterns, and derives threshold recommendations.
func (a *Analyzer) Analyze(entries []ledger.Entry) Analysis {
	counts := make(map[cellKey]cellCount)
	analyzed, skipped := 0, 0

	for _, entry := range entries {
		tier, ok := routing.ParseTier(entry.Tier)
		if !ok || entry.ComplexityScore == nil {
			skipped++
			continue
		}
		analyzed++

		key := cellKey{tier: tier, bucket: BucketFor(*entry.ComplexityScore)}
		c := counts[key]
		c.total++
		if entry.Succeeded() {
			c.successes++
		}
		counts[key] = c
	}

	rates := a.successRates(counts)
	patterns := a.detectPatterns(rates)

	return Analysis{
		SuccessRates:    rates,
		Patterns:        patterns,
		Recommendations: a.recommend(rates, patterns),
		AnalyzedCount:   analyzed,
		SkippedCount:    skipped,
	}
}

func (a *Analyzer) successRates(counts map[cellKey]cellCount) []SuccessRate {
	rates := make([]SuccessRate, 0, len(gridTiers)*len(gridBuckets))
	for _, tier := range gridTiers {
		for _, bucket := range gridBuckets {
			c := counts[cellKey{tier: tier, bucket: bucket}]
			cell := SuccessRate{
				Tier:      tier,
				Bucket:    bucket,
				Total:     c.total,
				Successes: c.successes,
			}
			if c.total > 0 {
				rate := float64(c.successes) / float64(c.total)
				cell.Rate = &rate
			}
			rates = append(rates, cell)
		}
	}
	return rates
}

func (a *Analyzer) detectPatterns(rates []SuccessRate) []Pattern {
	var patterns []Pattern
	for _, cell := range rates {
		if cell.Total < patternMinSamples || cell.Rate == nil {
			continue
		}
		rate := *cell.Rate

		if rate < failureRateFloor {
			severity := SeverityMedium
			if rate < severeFailureFloor {
				severity = SeverityHigh
			}
			patterns = append(patterns, Pattern{
				Type:        PatternHighFailureRate,
				Tier:        cell.Tier,
				Bucket:      cell.Bucket,
				Severity:    severity,
				SampleCount: cell.Total,
				SuccessRate: rate,
				Description: fmt.Sprintf("%s tier succeeded on %d of %d %s-complexity runs (%.0f%%)",
					cell.Tier, cell.Successes, cell.Total, cell.Bucket, rate*100),
			})
		}

		if cell.Bucket != expectedBucket(cell.Tier) && rate < misroutedFloor {
			severity := SeverityMedium
			if rate < severeFailureFloor {
				severity = SeverityHigh
			}
			patterns = append(patterns, Pattern{
				Type:        PatternMisrouted,
				Tier:        cell.Tier,
				Bucket:      cell.Bucket,
				Severity:    severity,
				SampleCount: cell.Total,
				SuccessRate: rate,
				Description: fmt.Sprintf("%s tier received %s-complexity work outside its expected range and succeeded on %d of %d runs (%.0f%%)",
					cell.Tier, cell.Bucket, cell.Successes, cell.Total, rate*100),
			})
		}
	}
	return patterns
}

// recommend turns patterns into threshold proposals. A failing low or
// medium tier gets a one-point ceiling cut; a tier clearing everything
// in its own range with enough samples gets an expansion into the next
// range. A tier never receives both in the same analysis.
func (a *Analyzer) recommend(rates []SuccessRate, patterns []Pattern) []Recommendation {
	var recommendations []Recommendation
	lowered := make(map[routing.Tier]bool)

	for _, p := range patterns {
		if p.Type != PatternHighFailureRate || lowered[p.Tier] {
			continue
		}
		current, ok := a.tierMax(p.Tier)
		if !ok {
			continue
		}
		lowered[p.Tier] = true
		recommendations = append(recommendations, Recommendation{
			Action:      ActionLowerThreshold,
			Tier:        p.Tier,
			CurrentMax:  current,
			ProposedMax: current - 1,
			Reason: fmt.Sprintf("%s tier is failing %s-complexity work; lowering its ceiling from %v to %v routes borderline tasks up a tier",
				p.Tier, p.Bucket, current, current-1),
		})
	}

	for _, cell := range rates {
		if cell.Bucket != expectedBucket(cell.Tier) || lowered[cell.Tier] {
			continue
		}
		if cell.Total < expandMinSamples || cell.Successes != cell.Total {
			continue
		}
		current, ok := a.tierMax(cell.Tier)
		if !ok {
			continue
		}
		proposed := a.nextRangeMax(cell.Tier)
		recommendations = append(recommendations, Recommendation{
			Action:      ActionExpandRange,
			Tier:        cell.Tier,
			CurrentMax:  current,
			ProposedMax: proposed,
			Reason: fmt.Sprintf("%s tier completed all %d runs in its range; raising its ceiling from %v to %v absorbs %s-complexity work at lower cost",
				cell.Tier, cell.Total, current, proposed, nextBucket(cell.Bucket)),
		})
	}

	return recommendations
}

// tierMax returns the configured ceiling for a tier. The high tier has
// no ceiling to move, so it never produces a recommendation.
func (a *Analyzer) tierMax(tier routing.Tier) (float64, bool) {
	switch tier {
	case routing.TierLow:
		return a.cfg.LowMax, true
	case routing.TierMedium:
		return a.cfg.MediumMax, true
	default:
		return 0, false
	}
}

func (a *Analyzer) nextRangeMax(tier routing.Tier) float64 {
	if tier == routing.TierLow {
		return a.cfg.MediumMax
	}
	return maxScore
}

func expectedBucket(tier routing.Tier) Bucket {
	switch tier {
	case routing.TierLow:
		return BucketLow
	case routing.TierMedium:
		return BucketMedium
	default:
		return BucketHigh
	}
}

func nextBucket(b Bucket) Bucket {
	if b == BucketLow {
		return BucketMedium
	}
	return BucketHigh
}
