// Package estimate predicts task duration, token volume, and cost.
//
// Every prediction starts from a base heuristic (a fixed time and token
// budget per acceptance criterion, scaled by the task's complexity
// multiplier) and blends in ledger history when it exists:
//
//   - 0 samples: pure base estimate, wide confidence band
//   - 1-2 samples: half history, half base
//   - 3+ samples: 70% history, 30% base, band derived from the
//     coefficient of variation of historical durations
//
// History prefers successful runs of the same task and falls back to all
// successful runs as a coarse baseline.
//
// # Snapshots
//
// Each estimation run can be persisted as a [Snapshot]: per-task
// predictions plus totals, appended to a JSONL file. Snapshots are the
// "estimated" side of accuracy tracking; the ledger supplies the
// "actual" side.
//
// # Usage
//
//	estimator := estimate.NewEstimator(cfg.Estimation, cfg.Pricing)
//	est := estimator.Estimate(task, string(decision.Tier), entries)
//
//	store := estimate.NewSnapshotStore(cfg.Paths.SnapshotPath(baseDir))
//	snapshot := estimate.NewSnapshot([]estimate.TaskPrediction{est.Prediction()}, time.Now())
//	err := store.Append(snapshot)
package estimate
