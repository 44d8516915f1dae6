package run

import (
	"time"

	"github.com/Iron-Ham/rudder/internal/budget"
	"github.com/Iron-Ham/rudder/internal/complexity"
	"github.com/Iron-Ham/rudder/internal/estimate"
	"github.com/Iron-Ham/rudder/internal/ledger"
	"github.com/Iron-Ham/rudder/internal/routing"
)

// Task is one unit of work entering the pipeline.
type Task struct {
	ID          string           `json:"id"`
	Description string           `json:"description"`
	Hints       complexity.Hints `json:"hints"`

	// Multiplier adjusts the base estimate. Zero defers to the scored
	// multiplier, or neutral when the task was not scored.
	Multiplier float64 `json:"multiplier,omitempty"`

	// Override forces a tier, bypassing scoring. Empty means route by
	// score.
	Override string `json:"override,omitempty"`
}

// TaskPlan is the per-task outcome of Prepare: what the task scored,
// where it routed, and what it is expected to cost.
type TaskPlan struct {
	TaskID   string            `json:"task_id"`
	Score    *complexity.Score `json:"score"`
	Decision routing.Decision  `json:"decision"`
	Estimate estimate.Estimate `json:"estimate"`
}

// Preparation is everything decided before work is handed to the
// executor. Snapshot is nil when the budget gate refused; plans are
// still populated so the refusal can be explained.
type Preparation struct {
	Plans    []TaskPlan           `json:"plans"`
	Budget   budget.StartDecision `json:"budget"`
	Snapshot *estimate.Snapshot   `json:"snapshot,omitempty"`
}

// Outcome is the executor's completion report for one run.
type Outcome struct {
	TaskID          string
	Tier            string
	Status          string
	DurationSeconds float64
	InputTokens     int
	OutputTokens    int
	CacheTokens     *int

	// Cost in USD. Nil means price it from the token counts.
	Cost *float64

	ComplexityScore *float64
	RoutingReason   string
	RetryCount      *int
	SwitchCount     *int
	TestsPassed     *bool

	// CompletedAt stamps the ledger entry; zero means now.
	CompletedAt time.Time
}

// RecordResult is what Record hands back: the entry as written and a
// rendered markdown summary of the run.
type RecordResult struct {
	Entry   ledger.Entry `json:"entry"`
	Summary string       `json:"summary"`
}

// RiskAnalyzer scores task complexity before routing. It is a
// capability seam: the default wraps the built-in scorer, and
// NopRiskAnalyzer reports no score, which routes every task to the
// configured default tier.
type RiskAnalyzer interface {
	Analyze(description string, hints complexity.Hints) *complexity.Score
}

type scorerAnalyzer struct {
	scorer *complexity.Scorer
}

func (a scorerAnalyzer) Analyze(description string, hints complexity.Hints) *complexity.Score {
	score := a.scorer.Score(description, hints)
	return &score
}

// NopRiskAnalyzer is the RiskAnalyzer used when no scoring capability
// is wanted; it returns no score for every task.
type NopRiskAnalyzer struct{}

// Analyze always reports that no score is available.
func (NopRiskAnalyzer) Analyze(string, complexity.Hints) *complexity.Score {
	return nil
}
