package ledger

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Iron-Ham/rudder/internal/errors"
	"github.com/spf13/cast"
)

// Entry statuses. Anything else is preserved as-is but flagged by Validate.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Entry is one completed task outcome in the ledger.
//
// Entries are written once by the executor's completion hook and never
// mutated. The canonical wire keys are the JSON tags below; legacy writers
// used a handful of alternate keys (storyId, duration, model, estCost),
// which parseEntry accepts and normalizes on read.
type Entry struct {
	// TaskID identifies the task this outcome belongs to.
	TaskID string `json:"taskId"`

	// Tier is the execution tier the task ran on.
	Tier string `json:"tier"`

	// DurationSeconds is the wall-clock duration of the run.
	DurationSeconds float64 `json:"durationSeconds"`

	// InputTokens and OutputTokens are the token counts consumed.
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`

	// CacheTokens counts cache-read tokens, when the executor reports them.
	CacheTokens *int `json:"cacheTokens,omitempty"`

	// Timestamp records when the run completed.
	Timestamp time.Time `json:"timestamp"`

	// Status is "success" or "error".
	Status string `json:"status"`

	// Cost is the run's cost in dollars, when the executor reports it.
	// Absent cost is derived from token counts at read sites that need it.
	Cost *float64 `json:"cost,omitempty"`

	// ComplexityScore is the score the task was routed with.
	ComplexityScore *float64 `json:"complexityScore,omitempty"`

	// RoutingReason is the routing decision's human-readable explanation.
	RoutingReason string `json:"routingReason,omitempty"`

	// RetryCount is how many times the run was retried.
	RetryCount *int `json:"retryCount,omitempty"`

	// SwitchCount is how many times the run switched tiers mid-flight.
	SwitchCount *int `json:"switchCount,omitempty"`

	// TestsPassed reports whether the run's verification suite passed.
	TestsPassed *bool `json:"testsPassed,omitempty"`
}

// Succeeded reports whether the entry recorded a successful run.
func (e Entry) Succeeded() bool {
	return e.Status == StatusSuccess
}

// Validate returns advisory warnings for missing or suspect fields.
// Validation never rejects an entry; old ledgers stay loadable.
func (e Entry) Validate() []string {
	var warnings []string

	if e.TaskID == "" {
		warnings = append(warnings, "missing taskId")
	}
	if e.Tier == "" {
		warnings = append(warnings, "missing tier")
	}
	if e.Timestamp.IsZero() {
		warnings = append(warnings, "missing or unparseable timestamp")
	}
	if e.Status == "" {
		warnings = append(warnings, "missing status")
	} else if e.Status != StatusSuccess && e.Status != StatusError {
		warnings = append(warnings, fmt.Sprintf("unknown status %q", e.Status))
	}
	if e.DurationSeconds < 0 {
		warnings = append(warnings, fmt.Sprintf("negative durationSeconds %v", e.DurationSeconds))
	}

	return warnings
}

// parseEntry parses a single JSONL line, accepting legacy key aliases.
// Normalization happens here and only here; everything downstream sees
// canonical field names.
func parseEntry(line string) (Entry, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Entry{}, errors.Wrap(err, "invalid JSON")
	}

	var entry Entry

	if v, ok := pick(raw, "taskId", "storyId"); ok {
		entry.TaskID = cast.ToString(v)
	}
	if v, ok := pick(raw, "tier", "model"); ok {
		entry.Tier = cast.ToString(v)
	}
	if v, ok := pick(raw, "durationSeconds", "duration"); ok {
		entry.DurationSeconds = cast.ToFloat64(v)
	}
	if v, ok := pick(raw, "inputTokens"); ok {
		entry.InputTokens = cast.ToInt(v)
	}
	if v, ok := pick(raw, "outputTokens"); ok {
		entry.OutputTokens = cast.ToInt(v)
	}
	if v, ok := pick(raw, "cacheTokens"); ok {
		n := cast.ToInt(v)
		entry.CacheTokens = &n
	}
	if v, ok := pick(raw, "timestamp"); ok {
		if t, err := time.Parse(time.RFC3339Nano, cast.ToString(v)); err == nil {
			entry.Timestamp = t
		}
	}
	if v, ok := pick(raw, "status"); ok {
		entry.Status = cast.ToString(v)
	}
	if v, ok := pick(raw, "cost", "estCost"); ok {
		c := cast.ToFloat64(v)
		entry.Cost = &c
	}
	if v, ok := pick(raw, "complexityScore"); ok {
		s := cast.ToFloat64(v)
		entry.ComplexityScore = &s
	}
	if v, ok := pick(raw, "routingReason"); ok {
		entry.RoutingReason = cast.ToString(v)
	}
	if v, ok := pick(raw, "retryCount"); ok {
		n := cast.ToInt(v)
		entry.RetryCount = &n
	}
	if v, ok := pick(raw, "switchCount"); ok {
		n := cast.ToInt(v)
		entry.SwitchCount = &n
	}
	if v, ok := pick(raw, "testsPassed"); ok {
		b := cast.ToBool(v)
		entry.TestsPassed = &b
	}

	return entry, nil
}

// pick returns the first non-null value among the given keys.
// JSON null is treated the same as an absent key.
func pick(raw map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}
