package routing

import "strings"

// Tier identifies an execution tier.
type Tier string

const (
	// TierLow is the cheapest tier, for trivial tasks.
	TierLow Tier = "low"

	// TierMedium is the mid-range tier, the default for most work.
	TierMedium Tier = "medium"

	// TierHigh is the most capable tier, for complex or risky tasks.
	TierHigh Tier = "high"
)

// String returns the string representation of the tier.
func (t Tier) String() string {
	return string(t)
}

// ParseTier normalizes a tier name, tolerating case and surrounding
// whitespace. The second return is false for anything that is not one of
// low, medium, or high.
func ParseTier(s string) (Tier, bool) {
	switch Tier(strings.ToLower(strings.TrimSpace(s))) {
	case TierLow:
		return TierLow, true
	case TierMedium:
		return TierMedium, true
	case TierHigh:
		return TierHigh, true
	default:
		return "", false
	}
}

// Decision is the result of routing a single task to a tier.
type Decision struct {
	// Tier is the selected execution tier.
	Tier Tier `json:"tier"`

	// Score is the complexity value available at decision time. Nil when
	// the scorer was unavailable or an override bypassed scoring.
	Score *float64 `json:"score"`

	// Reason explains the decision in plain language. It is descriptive
	// metadata only and is never parsed back.
	Reason string `json:"reason"`

	// IsOverride reports whether an explicit override chose the tier.
	IsOverride bool `json:"is_override"`
}
