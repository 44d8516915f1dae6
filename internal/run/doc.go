// Package run wires scoring, routing, estimation, budget gating, and the
// ledger into one pipeline around a task's lifecycle.
//
// [Pipeline.Prepare] is the before side: each task is scored, routed to a
// tier, and estimated against ledger history; the batch is then checked
// against budget limits and, when allowed to proceed, persisted as an
// estimate snapshot. [Pipeline.Record] is the after side: it turns a task
// outcome into a ledger entry, pricing the cost from token counts when the
// executor did not report one, and renders a markdown summary comparing
// the run to its prediction.
//
// The pipeline holds no state between calls beyond its stores; config is
// re-read through a [config.Provider] on every Prepare so edits to
// thresholds or budgets take effect without a restart.
//
// # Usage
//
//	p, err := run.NewPipeline(run.Config{
//	    Provider:  provider,
//	    Ledger:    led,
//	    Snapshots: snapshots,
//	})
//	if err != nil {
//	    return err
//	}
//
//	prep, err := p.Prepare(ctx, tasks)
//	if err != nil {
//	    return err
//	}
//	if !prep.Budget.Allowed {
//	    return errors.ErrBudgetExceeded
//	}
package run
