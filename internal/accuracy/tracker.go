package accuracy

import (
	"sort"
	"time"

	"github.com/Iron-Ham/rudder/internal/estimate"
	"github.com/Iron-Ham/rudder/internal/ledger"
)

// Trend labels the direction estimate accuracy is moving in.
type Trend string

const (
	// TrendImproving means recent estimates land closer to actuals than
	// older ones (error dropped by more than 10%).
	TrendImproving Trend = "improving"

	// TrendStable means recent error is within 10% of the older error.
	TrendStable Trend = "stable"

	// TrendDegrading means recent estimates are worse than older ones
	// (error grew by more than 10%).
	TrendDegrading Trend = "degrading"

	// TrendInsufficientData means too few comparisons exist to call a
	// direction: fewer than 3 total, or one of the windows is empty.
	TrendInsufficientData Trend = "insufficient_data"
)

// Comparison pairs one predicted duration with the run that followed it.
// Positive deviations mean the run took longer than predicted.
type Comparison struct {
	TaskID             string  `json:"task_id"`
	Estimated          float64 `json:"estimated"`
	Actual             float64 `json:"actual"`
	SignedDeviationPct float64 `json:"signed_deviation_pct"`
	AbsDeviationPct    float64 `json:"abs_deviation_pct"`
}

// Summary aggregates a set of comparisons. MAPE and SignedBias are nil
// when there is nothing to aggregate; they are never NaN.
type Summary struct {
	// MAPE is the mean of absolute deviation percentages.
	MAPE *float64 `json:"mape"`

	// SignedBias is the mean of signed deviation percentages. Positive
	// means predictions run low (tasks take longer than estimated).
	SignedBias *float64 `json:"signed_bias"`

	Trend Trend `json:"trend"`
}

// Report bundles the comparisons across every recorded prediction with
// their summary, which is what the accuracy command renders.
type Report struct {
	Comparisons []Comparison `json:"comparisons"`
	Summary     Summary      `json:"summary"`
}

type match struct {
	comparison  Comparison
	completedAt time.Time
}

// Compare pairs each pending task in a snapshot with the first ledger
// entry for that task recorded after the snapshot was written. Tasks
// already completed at snapshot time, tasks with no later entry, and
// predictions of zero or negative duration are skipped. Results are
// ordered by completion time, oldest first.
func Compare(snapshot estimate.Snapshot, entries []ledger.Entry) []Comparison {
	matches := matchSnapshot(snapshot, entries)
	sortMatches(matches)

	comparisons := make([]Comparison, 0, len(matches))
	for _, m := range matches {
		comparisons = append(comparisons, m.comparison)
	}
	return comparisons
}

// GenerateReport compares every snapshot against the ledger and
// summarizes the combined result. Comparisons from all snapshots are
// merged into one chronological sequence so the trend reflects actual
// completion order, not snapshot order.
func GenerateReport(snapshots []estimate.Snapshot, entries []ledger.Entry) Report {
	var matches []match
	for _, snapshot := range snapshots {
		matches = append(matches, matchSnapshot(snapshot, entries)...)
	}
	sortMatches(matches)

	comparisons := make([]Comparison, 0, len(matches))
	for _, m := range matches {
		comparisons = append(comparisons, m.comparison)
	}

	return Report{
		Comparisons: comparisons,
		Summary:     Summarize(comparisons),
	}
}

// Summarize reduces comparisons to MAPE, signed bias, and a trend.
// Comparisons must be ordered oldest first; Compare and GenerateReport
// return them that way.
func Summarize(comparisons []Comparison) Summary {
	if len(comparisons) == 0 {
		return Summary{Trend: TrendInsufficientData}
	}

	var absSum, signedSum float64
	for _, c := range comparisons {
		absSum += c.AbsDeviationPct
		signedSum += c.SignedDeviationPct
	}
	mape := absSum / float64(len(comparisons))
	bias := signedSum / float64(len(comparisons))

	return Summary{
		MAPE:       &mape,
		SignedBias: &bias,
		Trend:      trendOf(comparisons),
	}
}

func matchSnapshot(snapshot estimate.Snapshot, entries []ledger.Entry) []match {
	var matches []match
	for _, task := range snapshot.Tasks {
		if task.Completed {
			continue
		}
		entry, ok := firstAfter(entries, task.TaskID, snapshot.Timestamp)
		if !ok {
			continue
		}
		// A zero-base prediction would divide to infinity; it carries
		// no usable signal either way.
		if task.PredictedDuration <= 0 {
			continue
		}

		deviation := (entry.DurationSeconds - task.PredictedDuration) / task.PredictedDuration * 100
		matches = append(matches, match{
			comparison: Comparison{
				TaskID:             task.TaskID,
				Estimated:          task.PredictedDuration,
				Actual:             entry.DurationSeconds,
				SignedDeviationPct: deviation,
				AbsDeviationPct:    abs(deviation),
			},
			completedAt: entry.Timestamp,
		})
	}
	return matches
}

// firstAfter returns the earliest-positioned entry for taskID recorded
// strictly after the cutoff. Ledger files are append-only, so slice
// order is recording order.
func firstAfter(entries []ledger.Entry, taskID string, cutoff time.Time) (ledger.Entry, bool) {
	for _, entry := range entries {
		if entry.TaskID == taskID && entry.Timestamp.After(cutoff) {
			return entry, true
		}
	}
	return ledger.Entry{}, false
}

func sortMatches(matches []match) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].completedAt.Before(matches[j].completedAt)
	})
}

// trendOf compares error in an older window against a recent window.
// The recent window is the last 5 comparisons, or half the data when 5
// or fewer exist.
func trendOf(comparisons []Comparison) Trend {
	total := len(comparisons)
	if total < 3 {
		return TrendInsufficientData
	}

	recentN := 5
	if total <= 5 {
		recentN = total / 2
	}
	olderN := total - recentN
	if olderN == 0 || recentN == 0 {
		return TrendInsufficientData
	}

	olderMape := meanAbs(comparisons[:olderN])
	recentMape := meanAbs(comparisons[olderN:])

	if olderMape == 0 {
		if recentMape == 0 {
			return TrendStable
		}
		return TrendDegrading
	}

	improvement := (olderMape - recentMape) / olderMape * 100
	switch {
	case improvement > 10:
		return TrendImproving
	case improvement < -10:
		return TrendDegrading
	default:
		return TrendStable
	}
}

func meanAbs(comparisons []Comparison) float64 {
	var sum float64
	for _, c := range comparisons {
		sum += c.AbsDeviationPct
	}
	return sum / float64(len(comparisons))
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
