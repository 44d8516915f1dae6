package routing

import (
	"fmt"

	"github.com/Iron-Ham/rudder/internal/complexity"
	"github.com/Iron-Ham/rudder/internal/config"
)

// Router maps complexity scores to execution tiers using the configured
// thresholds. A Router is stateless and safe for concurrent use.
type Router struct {
	cfg config.RoutingConfig
}

// NewRouter creates a Router with the given routing configuration.
func NewRouter(cfg config.RoutingConfig) *Router {
	return &Router{cfg: cfg}
}

// Route selects an execution tier for a task.
//
// A valid override wins unconditionally and bypasses scoring. Otherwise the
// score's value is compared against the low and medium thresholds; anything
// above the medium threshold routes high. When routing is disabled or no
// score is available, the configured default tier is used.
//
// Route never fails: an invalid override is ignored (and noted in Reason),
// and every degraded path resolves to a usable tier.
func (r *Router) Route(score *complexity.Score, override string) Decision {
	if tier, ok := ParseTier(override); ok {
		return Decision{
			Tier:       tier,
			Reason:     fmt.Sprintf("manual override to %s", tier),
			IsOverride: true,
		}
	}

	var note string
	if override != "" {
		note = fmt.Sprintf("unknown override %q ignored; ", override)
	}

	fallback := r.defaultTier()

	if !r.cfg.Enabled {
		return Decision{
			Tier:   fallback,
			Score:  scoreValue(score),
			Reason: note + fmt.Sprintf("routing disabled, using default tier %s", fallback),
		}
	}

	if score == nil {
		return Decision{
			Tier:   fallback,
			Reason: note + fmt.Sprintf("complexity score unavailable, using default tier %s", fallback),
		}
	}

	value := score.Value
	switch {
	case value <= r.cfg.LowMax:
		return Decision{
			Tier:   TierLow,
			Score:  &value,
			Reason: note + fmt.Sprintf("score %.1f within low band (threshold: %v)", value, r.cfg.LowMax),
		}
	case value <= r.cfg.MediumMax:
		return Decision{
			Tier:   TierMedium,
			Score:  &value,
			Reason: note + fmt.Sprintf("score %.1f within medium band (threshold: %v)", value, r.cfg.MediumMax),
		}
	default:
		return Decision{
			Tier:   TierHigh,
			Score:  &value,
			Reason: note + fmt.Sprintf("score %.1f above medium threshold %v", value, r.cfg.MediumMax),
		}
	}
}

// defaultTier resolves the configured default, falling back to medium when
// the configuration holds an unknown name.
func (r *Router) defaultTier() Tier {
	if tier, ok := ParseTier(r.cfg.DefaultTier); ok {
		return tier
	}
	return TierMedium
}

func scoreValue(score *complexity.Score) *float64 {
	if score == nil {
		return nil
	}
	v := score.Value
	return &v
}
