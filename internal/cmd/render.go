package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/Iron-Ham/rudder/internal/routing"
)

const dividerWidth = 50

var (
	// Tier colors: green is the cheap tier, amber the default band, red
	// the expensive one.
	lowColor    = lipgloss.Color("#10B981") // Green
	mediumColor = lipgloss.Color("#F59E0B") // Amber
	highColor   = lipgloss.Color("#F87171") // Red
	mutedColor  = lipgloss.Color("#9CA3AF") // Gray
	titleColor  = lipgloss.Color("#A78BFA") // Purple

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(titleColor)
	mutedStyle = lipgloss.NewStyle().Foreground(mutedColor)
	goodStyle  = lipgloss.NewStyle().Foreground(lowColor)
	warnStyle  = lipgloss.NewStyle().Bold(true).Foreground(mediumColor)
	alertStyle = lipgloss.NewStyle().Bold(true).Foreground(highColor)
)

// sectionHeader renders an uppercase section title over a divider line.
func sectionHeader(title string) string {
	return titleStyle.Render(strings.ToUpper(title)) + "\n" + mutedStyle.Render(strings.Repeat("─", dividerWidth))
}

// tierStyle returns the style for an execution tier.
func tierStyle(tier routing.Tier) lipgloss.Style {
	switch tier {
	case routing.TierLow:
		return goodStyle
	case routing.TierHigh:
		return alertStyle
	default:
		return warnStyle
	}
}

// renderTier renders a tier name in its color.
func renderTier(tier routing.Tier) string {
	return tierStyle(tier).Render(string(tier))
}

// statusGlyph renders a colored pass/fail marker for a run status.
func statusGlyph(succeeded bool) string {
	if succeeded {
		return goodStyle.Render("✓")
	}
	return alertStyle.Render("✗")
}

// truncateANSI truncates a string to maxWidth visual columns, adding "..."
// if truncated. Handles ANSI escape codes and wide characters, so styled
// task descriptions stay aligned in tables.
func truncateANSI(s string, maxWidth int) string {
	if maxWidth <= 3 {
		return "..."
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	// ansi.Truncate includes the tail in the final width calculation
	return ansi.Truncate(s, maxWidth, "...")
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
