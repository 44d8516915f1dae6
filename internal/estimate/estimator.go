package estimate

import (
	"math"

	"github.com/Iron-Ham/rudder/internal/config"
	"github.com/Iron-Ham/rudder/internal/ledger"
)

// Confidence labels how much history backs an estimate.
type Confidence string

const (
	// ConfidenceLow means no historical samples informed the estimate.
	ConfidenceLow Confidence = "low"

	// ConfidenceMedium means a handful of samples informed the estimate.
	ConfidenceMedium Confidence = "medium"

	// ConfidenceHigh means five or more samples informed the estimate.
	ConfidenceHigh Confidence = "high"
)

// Task is the estimation input for a single task.
type Task struct {
	// ID identifies the task for history matching.
	ID string `json:"id"`

	// CriteriaCount is the number of acceptance criteria.
	CriteriaCount int `json:"criteria_count"`

	// Multiplier is the complexity multiplier from scoring.
	// Zero is treated as neutral (1.0).
	Multiplier float64 `json:"multiplier"`
}

// Range bounds an estimate between an optimistic and a pessimistic value.
type Range struct {
	Optimistic  float64 `json:"optimistic"`
	Pessimistic float64 `json:"pessimistic"`
}

// Estimate is a predicted duration, token volume, and cost for one task.
type Estimate struct {
	// TaskID identifies the estimated task.
	TaskID string `json:"task_id"`

	// DurationSeconds is the predicted wall-clock duration.
	DurationSeconds float64 `json:"duration_seconds"`

	// Tokens is the predicted total token volume.
	Tokens int `json:"tokens"`

	// DurationRange bounds the duration prediction.
	DurationRange Range `json:"duration_range"`

	// TokensRange bounds the token prediction.
	TokensRange Range `json:"tokens_range"`

	// Cost is the predicted dollar cost at the routed tier's rates.
	Cost float64 `json:"cost"`

	// Confidence labels how much history backs the estimate.
	Confidence Confidence `json:"confidence"`

	// SamplesUsed is the number of historical samples blended in.
	SamplesUsed int `json:"samples_used"`
}

// Predicted token volume splits 80% input / 20% output when priced.
const (
	inputTokenShare  = 0.8
	outputTokenShare = 0.2
)

// Estimator predicts task duration, tokens, and cost from a base heuristic
// blended with ledger history. An Estimator is stateless and safe for
// concurrent use.
type Estimator struct {
	cfg     config.EstimationConfig
	pricing config.PricingConfig
}

// NewEstimator creates an Estimator with the given estimation constants
// and pricing table.
func NewEstimator(cfg config.EstimationConfig, pricing config.PricingConfig) *Estimator {
	return &Estimator{cfg: cfg, pricing: pricing}
}

// Estimate predicts the task's duration, token volume, and cost were it to
// run on the given tier.
//
// The base heuristic budgets a fixed amount per acceptance criterion,
// scaled by the complexity multiplier. History (successful runs of the
// same task, or all successful runs when the task has none) is blended
// in with weight growing by sample count: none at 0 samples, half at 1-2,
// 70% at 3 or more. The confidence band narrows the same way, switching
// to one derived from the history's coefficient of variation once 3
// samples exist.
//
// Estimate never fails; with no usable history it returns the pure base
// estimate.
func (e *Estimator) Estimate(task Task, tier string, history []ledger.Entry) Estimate {
	multiplier := task.Multiplier
	if multiplier == 0 {
		multiplier = 1.0
	}

	baseDuration := float64(task.CriteriaCount) * float64(e.cfg.PerCriterionSeconds) * multiplier
	baseTokens := float64(task.CriteriaCount) * float64(e.cfg.PerCriterionTokens) * multiplier

	samples := relevantHistory(task.ID, history)
	n := len(samples)

	duration := baseDuration
	tokens := baseTokens
	if n > 0 {
		historyWeight, baseWeight := blendWeights(n)
		duration = historyWeight*meanDuration(samples) + baseWeight*baseDuration
		tokens = historyWeight*meanTokens(samples) + baseWeight*baseTokens
	}

	optimistic, pessimistic := band(samples)

	return Estimate{
		TaskID:          task.ID,
		DurationSeconds: duration,
		Tokens:          int(math.Round(tokens)),
		DurationRange: Range{
			Optimistic:  duration * optimistic,
			Pessimistic: duration * pessimistic,
		},
		TokensRange: Range{
			Optimistic:  math.Round(tokens * optimistic),
			Pessimistic: math.Round(tokens * pessimistic),
		},
		Cost:        e.cost(tokens, tier),
		Confidence:  confidenceFor(n),
		SamplesUsed: n,
	}
}

// cost prices a predicted token volume at the tier's rates, assuming the
// standard input/output split.
func (e *Estimator) cost(tokens float64, tier string) float64 {
	pricing := e.pricing.ForTier(tier)
	inputTokens := int(math.Round(tokens * inputTokenShare))
	outputTokens := int(math.Round(tokens * outputTokenShare))
	return pricing.CostFor(inputTokens, outputTokens)
}

// relevantHistory picks the sample set the blend uses: successful runs of
// this exact task, or all successful runs as a coarse baseline.
func relevantHistory(taskID string, entries []ledger.Entry) []ledger.Entry {
	successful := ledger.Successful(entries)
	if exact := ledger.ForTask(successful, taskID); len(exact) > 0 {
		return exact
	}
	return successful
}

// blendWeights returns the history and base weights for a sample count.
func blendWeights(n int) (history, base float64) {
	switch {
	case n == 0:
		return 0, 1.0
	case n <= 2:
		return 0.5, 0.5
	default:
		return 0.7, 0.3
	}
}

// band returns the optimistic and pessimistic range multipliers.
//
// With 3 or more samples the band is derived from the coefficient of
// variation of historical durations, so erratic history widens the range
// and consistent history narrows it. Below that, and when the history is
// degenerate (zero mean), fixed defaults by sample count apply.
func band(samples []ledger.Entry) (optimistic, pessimistic float64) {
	n := len(samples)
	switch {
	case n == 0:
		return 0.6, 1.8
	case n <= 2:
		return 0.7, 1.5
	}

	mean, stddev := durationStats(samples)
	if mean > 0 {
		cv := stddev / mean
		return math.Max(0.5, 1-cv), math.Min(2.0, 1+cv*1.5)
	}

	if n >= 5 {
		return 0.8, 1.3
	}
	return 0.7, 1.5
}

// confidenceFor labels a sample count.
func confidenceFor(n int) Confidence {
	switch {
	case n == 0:
		return ConfidenceLow
	case n < 5:
		return ConfidenceMedium
	default:
		return ConfidenceHigh
	}
}

func meanDuration(samples []ledger.Entry) float64 {
	var sum float64
	for _, s := range samples {
		sum += s.DurationSeconds
	}
	return sum / float64(len(samples))
}

func meanTokens(samples []ledger.Entry) float64 {
	var sum float64
	for _, s := range samples {
		sum += float64(s.InputTokens + s.OutputTokens)
	}
	return sum / float64(len(samples))
}

// durationStats returns the mean and population standard deviation of the
// samples' durations.
func durationStats(samples []ledger.Entry) (mean, stddev float64) {
	mean = meanDuration(samples)

	var sumSquares float64
	for _, s := range samples {
		diff := s.DurationSeconds - mean
		sumSquares += diff * diff
	}
	return mean, math.Sqrt(sumSquares / float64(len(samples)))
}
