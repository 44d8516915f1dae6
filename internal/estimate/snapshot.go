package estimate

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Iron-Ham/rudder/internal/errors"
	"github.com/Iron-Ham/rudder/internal/filelock"
	"github.com/google/uuid"
)

// TaskPrediction is one task's predicted outcome inside a snapshot.
// The JSON keys match the snapshot files written by earlier tooling.
type TaskPrediction struct {
	// TaskID identifies the predicted task.
	TaskID string `json:"taskId"`

	// PredictedDuration is the predicted wall-clock duration in seconds.
	PredictedDuration float64 `json:"predictedDuration"`

	// PredictedTokens is the predicted total token volume.
	PredictedTokens int `json:"predictedTokens"`

	// PredictedCost is the predicted dollar cost.
	PredictedCost float64 `json:"predictedCost"`

	// Confidence labels how much history backed the prediction.
	Confidence Confidence `json:"confidence"`

	// Completed marks tasks already done at snapshot time. Completed
	// predictions are informational: accuracy pairing and totals skip them.
	Completed bool `json:"completed"`
}

// SnapshotTotals aggregates a snapshot's pending predictions.
type SnapshotTotals struct {
	DurationSeconds float64 `json:"duration"`
	Tokens          int     `json:"tokens"`
	Cost            float64 `json:"cost"`
}

// Snapshot is a point-in-time prediction for a set of tasks.
// Snapshots are immutable once saved.
type Snapshot struct {
	// ID uniquely identifies the estimation run.
	ID string `json:"id"`

	// Timestamp records when the prediction was made. Accuracy pairing
	// only considers ledger entries strictly after this instant.
	Timestamp time.Time `json:"timestamp"`

	// Tasks are the per-task predictions.
	Tasks []TaskPrediction `json:"tasks"`

	// Totals sums the predictions for tasks not yet completed.
	Totals SnapshotTotals `json:"totals"`
}

// Prediction converts an estimate into a snapshot prediction.
func (est Estimate) Prediction() TaskPrediction {
	return TaskPrediction{
		TaskID:            est.TaskID,
		PredictedDuration: est.DurationSeconds,
		PredictedTokens:   est.Tokens,
		PredictedCost:     est.Cost,
		Confidence:        est.Confidence,
	}
}

// NewSnapshot assembles a snapshot from predictions, stamping a fresh ID
// and computing totals over the tasks not yet completed.
func NewSnapshot(predictions []TaskPrediction, at time.Time) Snapshot {
	var totals SnapshotTotals
	for _, p := range predictions {
		if p.Completed {
			continue
		}
		totals.DurationSeconds += p.PredictedDuration
		totals.Tokens += p.PredictedTokens
		totals.Cost += p.PredictedCost
	}

	return Snapshot{
		ID:        uuid.New().String(),
		Timestamp: at,
		Tasks:     predictions,
		Totals:    totals,
	}
}

// SnapshotStore reads and appends snapshots stored as append-only JSONL,
// one snapshot per line.
type SnapshotStore struct {
	path string
}

// NewSnapshotStore creates a store backed by the JSONL file at path.
func NewSnapshotStore(path string) *SnapshotStore {
	return &SnapshotStore{path: path}
}

// Path returns the backing file's path.
func (s *SnapshotStore) Path() string {
	return s.path
}

// SnapshotLoadResult is the outcome of a tolerant snapshot load.
type SnapshotLoadResult struct {
	// Snapshots are the parsed records in file order.
	Snapshots []Snapshot

	// SkippedCount is the number of malformed lines dropped.
	SkippedCount int
}

// Append adds one snapshot to the end of the store. An exclusive flock is
// held for the duration of the write.
func (s *SnapshotStore) Append(snapshot Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return errors.Wrap(err, "marshal snapshot")
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return errors.Wrap(err, "create snapshot directory")
	}

	fl := filelock.New(s.path)
	if err := fl.Lock(); err != nil {
		return errors.Wrap(err, "acquire snapshot lock")
	}
	defer func() { _ = fl.Unlock() }()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return errors.Wrap(err, "open snapshot file")
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		_ = f.Close()
		return errors.Wrap(err, "append snapshot")
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "close snapshot file")
	}
	return nil
}

// Load reads every snapshot from the store. A missing file yields an
// empty result; blank lines are ignored; malformed lines are counted in
// SkippedCount and never fail the rest of the file.
func (s *SnapshotStore) Load() (SnapshotLoadResult, error) {
	var result SnapshotLoadResult

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		return result, errors.Wrap(err, "open snapshot file")
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)

	// Snapshots hold a whole estimation run per line, so lines run long.
	const maxScanTokenSize = 1024 * 1024 // 1MB
	buf := make([]byte, maxScanTokenSize)
	scanner.Buffer(buf, maxScanTokenSize)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		var snapshot Snapshot
		if err := json.Unmarshal([]byte(line), &snapshot); err != nil {
			result.SkippedCount++
			continue
		}
		result.Snapshots = append(result.Snapshots, snapshot)
	}

	if err := scanner.Err(); err != nil {
		return result, errors.Wrap(err, "read snapshot file")
	}

	return result, nil
}

// Latest returns the most recent snapshot by timestamp, or nil when the
// store is empty.
func (s *SnapshotStore) Latest() (*Snapshot, error) {
	result, err := s.Load()
	if err != nil {
		return nil, err
	}
	if len(result.Snapshots) == 0 {
		return nil, nil
	}

	latest := result.Snapshots[0]
	for _, snapshot := range result.Snapshots[1:] {
		if !snapshot.Timestamp.Before(latest.Timestamp) {
			latest = snapshot
		}
	}
	return &latest, nil
}
