package run

import (
	"context"
	"time"

	"github.com/Iron-Ham/rudder/internal/budget"
	"github.com/Iron-Ham/rudder/internal/complexity"
	"github.com/Iron-Ham/rudder/internal/config"
	"github.com/Iron-Ham/rudder/internal/errors"
	"github.com/Iron-Ham/rudder/internal/estimate"
	"github.com/Iron-Ham/rudder/internal/ledger"
	"github.com/Iron-Ham/rudder/internal/logging"
	"github.com/Iron-Ham/rudder/internal/routing"
)

// configStaleness bounds how old a cached configuration may be when a
// pipeline operation reads it.
const configStaleness = 5 * time.Second

// Pipeline is the seam the executor calls: Prepare decides what a run
// should look like, Record captures what it actually did.
type Pipeline struct {
	provider  config.Provider
	ledger    *ledger.Ledger
	snapshots *estimate.SnapshotStore
	analyzer  RiskAnalyzer
	logger    *logging.Logger
	now       func() time.Time
}

// Config carries the Pipeline's required collaborators.
type Config struct {
	Provider  config.Provider
	Ledger    *ledger.Ledger
	Snapshots *estimate.SnapshotStore
}

// NewPipeline creates a Pipeline with the given collaborators and options.
func NewPipeline(cfg Config, opts ...Option) (*Pipeline, error) {
	if cfg.Provider == nil {
		return nil, errors.New("run: Provider is required")
	}
	if cfg.Ledger == nil {
		return nil, errors.New("run: Ledger is required")
	}
	if cfg.Snapshots == nil {
		return nil, errors.New("run: Snapshots is required")
	}

	po := &pipelineOptions{}
	for _, opt := range opts {
		opt(po)
	}
	if po.analyzer == nil {
		po.analyzer = scorerAnalyzer{scorer: complexity.NewScorer()}
	}
	if po.logger == nil {
		po.logger = logging.NopLogger()
	}
	if po.now == nil {
		po.now = time.Now
	}

	return &Pipeline{
		provider:  cfg.Provider,
		ledger:    cfg.Ledger,
		snapshots: cfg.Snapshots,
		analyzer:  po.analyzer,
		logger:    po.logger.WithComponent("pipeline"),
		now:       po.now,
	}, nil
}

// Prepare scores, routes, and estimates each task, gates the batch
// against the budget, and records the predictions as a snapshot. A
// budget refusal is not an error: the preparation comes back with
// Budget.Allowed false, no snapshot written, and the plans populated so
// the refusal can be explained to the user.
func (p *Pipeline) Prepare(ctx context.Context, tasks []Task) (*Preparation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, errors.NewValidationError("no tasks to prepare")
	}

	cfg := p.provider.Config(p.now().Add(-configStaleness))
	entries := p.loadEntries()
	router := routing.NewRouter(cfg.Routing)
	estimator := estimate.NewEstimator(cfg.Estimation, cfg.Pricing)

	plans := make([]TaskPlan, 0, len(tasks))
	predictions := make([]estimate.TaskPrediction, 0, len(tasks))
	for _, task := range tasks {
		score := p.analyzer.Analyze(task.Description, task.Hints)
		decision := router.Route(score, task.Override)

		multiplier := task.Multiplier
		if multiplier == 0 && score != nil {
			multiplier = score.Breakdown.Multiplier
		}
		est := estimator.Estimate(estimate.Task{
			ID:            task.ID,
			CriteriaCount: task.Hints.CriteriaCount,
			Multiplier:    multiplier,
		}, decision.Tier.String(), entries)

		plans = append(plans, TaskPlan{
			TaskID:   task.ID,
			Score:    score,
			Decision: decision,
			Estimate: est,
		})
		predictions = append(predictions, est.Prediction())

		p.logger.WithTask(task.ID).Debug("task prepared",
			"tier", decision.Tier,
			"estimated_duration", est.DurationSeconds,
			"estimated_cost", est.Cost)
	}

	gate := budget.NewGovernor(cfg.Budget, cfg.Pricing).CanStart(entries, p.now())
	preparation := &Preparation{Plans: plans, Budget: gate}
	if !gate.Allowed {
		p.logger.Warn("budget gate refused run", "reason", gate.Reason)
		return preparation, nil
	}

	snapshot := estimate.NewSnapshot(predictions, p.now())
	if err := p.snapshots.Append(snapshot); err != nil {
		return nil, errors.Wrap(err, "write estimate snapshot")
	}
	preparation.Snapshot = &snapshot

	return preparation, nil
}

// Record builds the typed ledger entry for a completed run, pricing it
// from token counts when the executor did not report a cost, appends
// it, and renders the run summary.
func (p *Pipeline) Record(ctx context.Context, outcome Outcome) (*RecordResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if outcome.TaskID == "" {
		return nil, errors.NewValidationError("outcome is missing a task id")
	}
	if outcome.Tier == "" {
		return nil, errors.NewValidationError("outcome is missing a tier")
	}
	if outcome.Status != ledger.StatusSuccess && outcome.Status != ledger.StatusError {
		return nil, errors.NewValidationError("outcome status must be success or error")
	}
	if outcome.DurationSeconds < 0 {
		return nil, errors.NewValidationError("outcome duration cannot be negative")
	}

	cfg := p.provider.Config(p.now().Add(-configStaleness))

	completedAt := outcome.CompletedAt
	if completedAt.IsZero() {
		completedAt = p.now()
	}
	cost := outcome.Cost
	if cost == nil {
		priced := cfg.Pricing.ForTier(outcome.Tier).CostFor(outcome.InputTokens, outcome.OutputTokens)
		cost = &priced
	}

	entry := ledger.Entry{
		TaskID:          outcome.TaskID,
		Tier:            outcome.Tier,
		DurationSeconds: outcome.DurationSeconds,
		InputTokens:     outcome.InputTokens,
		OutputTokens:    outcome.OutputTokens,
		CacheTokens:     outcome.CacheTokens,
		Timestamp:       completedAt,
		Status:          outcome.Status,
		Cost:            cost,
		ComplexityScore: outcome.ComplexityScore,
		RoutingReason:   outcome.RoutingReason,
		RetryCount:      outcome.RetryCount,
		SwitchCount:     outcome.SwitchCount,
		TestsPassed:     outcome.TestsPassed,
	}

	if err := p.ledger.Append(entry); err != nil {
		return nil, err
	}

	p.logger.WithTask(entry.TaskID).WithTier(entry.Tier).Info("run recorded",
		"status", entry.Status,
		"duration_seconds", entry.DurationSeconds,
		"cost", *cost)

	return &RecordResult{
		Entry:   entry,
		Summary: Summary(entry, p.latestPrediction(entry.TaskID)),
	}, nil
}

// loadEntries reads the ledger, degrading to an empty history when the
// read fails. Estimation and the budget gate keep working either way.
func (p *Pipeline) loadEntries() []ledger.Entry {
	result, err := p.ledger.Load()
	if err != nil {
		p.logger.Warn("ledger unreadable, continuing without history", "error", err)
		return nil
	}
	if result.SkippedCount > 0 {
		p.logger.Debug("ledger contains corrupt lines", "skipped", result.SkippedCount)
	}
	return result.Entries
}

// latestPrediction finds the task's prediction in the most recent
// snapshot, if any.
func (p *Pipeline) latestPrediction(taskID string) *estimate.TaskPrediction {
	snapshot, err := p.snapshots.Latest()
	if err != nil {
		p.logger.Warn("snapshots unreadable, summary omits estimate", "error", err)
		return nil
	}
	if snapshot == nil {
		return nil
	}
	for i := range snapshot.Tasks {
		if snapshot.Tasks[i].TaskID == taskID {
			return &snapshot.Tasks[i]
		}
	}
	return nil
}
