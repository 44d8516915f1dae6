package estimate

import (
	"fmt"
	"strconv"
	"time"
)

// FormatTokens formats a token count for display (e.g., "45.2K").
func FormatTokens(tokens int) string {
	if tokens >= 1000000 {
		return strconv.FormatFloat(float64(tokens)/1000000.0, 'f', 1, 64) + "M"
	}
	if tokens >= 1000 {
		return strconv.FormatFloat(float64(tokens)/1000.0, 'f', 1, 64) + "K"
	}
	return strconv.Itoa(tokens)
}

// FormatCost formats a cost value for display (e.g., "$0.42").
func FormatCost(cost float64) string {
	if cost < 0.01 {
		return "$0.00"
	}
	return "$" + strconv.FormatFloat(cost, 'f', 2, 64)
}

// FormatDurationSeconds formats a duration given in seconds for display
// (e.g., "45s", "3m 20s", "2h 5m").
func FormatDurationSeconds(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second))
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}
