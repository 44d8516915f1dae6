// Package budget tracks spend against daily and monthly limits and
// gates new runs when a limit is exhausted.
package budget

import (
	"fmt"
	"math"
	"time"

	"github.com/Iron-Ham/rudder/internal/config"
	"github.com/Iron-Ham/rudder/internal/estimate"
	"github.com/Iron-Ham/rudder/internal/ledger"
)

// WindowStatus reports spend against one budget window. Percentage is
// nil when the window has no configured limit.
type WindowStatus struct {
	Window     string  `json:"window"`
	Spent      float64 `json:"spent"`
	Limit      float64 `json:"limit"`
	Percentage *int    `json:"percentage"`
	Alerts     []int   `json:"alerts"`
	Exceeded   bool    `json:"exceeded"`
}

// Status is the full budget picture at one point in time.
type Status struct {
	Daily   WindowStatus `json:"daily"`
	Monthly WindowStatus `json:"monthly"`
}

// StartDecision is the pre-flight gate result. Reason is always set;
// when Allowed it carries the current spend as advisory information.
type StartDecision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

// Governor computes spend windows over the ledger and gates new runs.
// Entries without a recorded cost are priced from their token counts at
// the configured tier rates, so older ledgers still count.
type Governor struct {
	cfg     config.BudgetConfig
	pricing config.PricingConfig
}

// NewGovernor returns a Governor using the given limits and pricing.
func NewGovernor(cfg config.BudgetConfig, pricing config.PricingConfig) *Governor {
	return &Governor{cfg: cfg, pricing: pricing}
}

// Check sums spend over [start-of-day, now] and [start-of-month, now]
// and reports each window against its limit. Window boundaries follow
// now's location.
func (g *Governor) Check(entries []ledger.Entry, now time.Time) Status {
	year, month, day := now.Date()
	startOfDay := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	startOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, now.Location())

	return Status{
		Daily:   g.windowStatus("daily", entries, startOfDay, now, g.cfg.DailyLimit),
		Monthly: g.windowStatus("monthly", entries, startOfMonth, now, g.cfg.MonthlyLimit),
	}
}

// CanStart is the pre-flight gate. It refuses only when PauseOnExceeded
// is set and a window is over its limit; otherwise it allows and
// surfaces current spend.
func (g *Governor) CanStart(entries []ledger.Entry, now time.Time) StartDecision {
	status := g.Check(entries, now)

	if g.cfg.PauseOnExceeded {
		for _, window := range []WindowStatus{status.Daily, status.Monthly} {
			if window.Exceeded {
				return StartDecision{
					Allowed: false,
					Reason: fmt.Sprintf("%s budget exceeded: %s spent of %s limit",
						window.Window, estimate.FormatCost(window.Spent), estimate.FormatCost(window.Limit)),
				}
			}
		}
	}

	return StartDecision{
		Allowed: true,
		Reason: fmt.Sprintf("daily spend %s, monthly spend %s",
			estimate.FormatCost(status.Daily.Spent), estimate.FormatCost(status.Monthly.Spent)),
	}
}

func (g *Governor) windowStatus(name string, entries []ledger.Entry, start, now time.Time, limit float64) WindowStatus {
	var spent float64
	for _, entry := range entries {
		if entry.Timestamp.Before(start) || entry.Timestamp.After(now) {
			continue
		}
		spent += g.entryCost(entry)
	}

	status := WindowStatus{
		Window: name,
		Spent:  spent,
		Limit:  limit,
	}
	if limit <= 0 {
		return status
	}

	percentage := int(math.Round(spent / limit * 100))
	status.Percentage = &percentage
	status.Exceeded = spent >= limit
	for _, threshold := range g.cfg.AlertThresholds {
		if percentage >= threshold {
			status.Alerts = append(status.Alerts, threshold)
		}
	}
	return status
}

func (g *Governor) entryCost(entry ledger.Entry) float64 {
	if entry.Cost != nil {
		return *entry.Cost
	}
	return g.pricing.ForTier(entry.Tier).CostFor(entry.InputTokens, entry.OutputTokens)
}
