package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/rudder/internal/errors"
	"github.com/Iron-Ham/rudder/internal/logging"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View structured debug logs",
	Long: `View and filter Rudder's structured debug logs.

Commands log their decisions (scores, routes, estimates, budget gates)
as JSON lines under the data directory. This command reads those files
back, including rotated backups, and renders them for humans.

Examples:
  # Show the last 50 entries
  rudder logs

  # Show every entry for one task
  rudder logs --task US-012 -n 0

  # Only warnings and errors from the last hour
  rudder logs --level warn --since 1h

  # Entries mentioning the budget gate
  rudder logs --grep budget

  # Export matching entries for a bug report
  rudder logs --level debug --export rudder-logs.csv --format csv

  # Follow new entries as other rudder commands write them
  rudder logs -f`,
	RunE: runLogs,
}

var (
	logsTail      int
	logsFollow    bool
	logsLevel     string
	logsTask      string
	logsComponent string
	logsSince     string
	logsGrep      string
	logsExport    string
	logsFormat    string
)

func init() {
	logsCmd.Flags().IntVarP(&logsTail, "tail", "n", 50, "Number of entries to show (0 for all)")
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Follow log output (like tail -f)")
	logsCmd.Flags().StringVar(&logsLevel, "level", "", "Filter by minimum level (debug/info/warn/error)")
	logsCmd.Flags().StringVar(&logsTask, "task", "", "Filter by task ID")
	logsCmd.Flags().StringVar(&logsComponent, "component", "", "Filter by component")
	logsCmd.Flags().StringVar(&logsSince, "since", "", "Show entries since duration ago (e.g., 1h, 30m)")
	logsCmd.Flags().StringVar(&logsGrep, "grep", "", "Filter entries whose message contains a substring")
	logsCmd.Flags().StringVar(&logsExport, "export", "", "Write matching entries to a file instead of the terminal")
	logsCmd.Flags().StringVar(&logsFormat, "format", "text", "Export format: json, text, or csv")
	rootCmd.AddCommand(logsCmd)
}

func runLogs(cmd *cobra.Command, args []string) error {
	w, err := loadWorkspace()
	if err != nil {
		return err
	}

	logDir := w.logDir()
	if _, err := os.Stat(filepath.Join(logDir, "rudder.log")); os.IsNotExist(err) {
		fmt.Println("No log file found.")
		fmt.Println("Logs are written under " + logDir + " once commands run with logging enabled.")
		return nil
	}

	filter, err := buildLogFilter()
	if err != nil {
		return err
	}

	if logsFollow {
		return followLogs(filepath.Join(logDir, "rudder.log"), filter)
	}

	entries, err := logging.AggregateLogs(logDir)
	if err != nil {
		return fmt.Errorf("failed to read logs: %w", err)
	}
	entries = logging.FilterLogs(entries, filter)

	if logsExport != "" {
		if err := logging.ExportLogEntries(entries, logsExport, logsFormat); err != nil {
			return err
		}
		fmt.Printf("Exported %d log entries to %s\n", len(entries), logsExport)
		return nil
	}

	shown := entries
	if logsTail > 0 && len(shown) > logsTail {
		shown = shown[len(shown)-logsTail:]
	}
	if len(shown) == 0 {
		fmt.Println("No matching log entries found.")
		return nil
	}
	for i := range shown {
		fmt.Println(formatLogEntry(&shown[i]))
	}
	return nil
}

// buildLogFilter validates the filter flags and assembles the filter.
func buildLogFilter() (logging.LogFilter, error) {
	filter := logging.LogFilter{
		TaskID:          logsTask,
		Component:       logsComponent,
		MessageContains: logsGrep,
	}

	if logsLevel != "" {
		if !validLogLevel(logsLevel) {
			return filter, errors.NewValidationError(
				fmt.Sprintf("invalid --level %q: use debug, info, warn, or error", logsLevel))
		}
		filter.Level = logging.ParseLevel(logsLevel)
	}

	if logsSince != "" {
		duration, err := time.ParseDuration(logsSince)
		if err != nil {
			return filter, errors.NewValidationError(
				fmt.Sprintf("invalid --since %q: use a duration like 1h or 30m", logsSince))
		}
		filter.StartTime = time.Now().Add(-duration)
	}

	if logsExport != "" {
		switch strings.ToLower(logsFormat) {
		case "json", "text", "csv":
		default:
			return filter, errors.NewValidationError(
				fmt.Sprintf("invalid --format %q: use json, text, or csv", logsFormat))
		}
	}

	return filter, nil
}

// validLogLevel reports whether the flag names a known level, any case.
func validLogLevel(level string) bool {
	for _, known := range logging.ValidLevels() {
		if strings.EqualFold(known, level) {
			return true
		}
	}
	return false
}

// followLogs implements tail -f behavior for the active log file.
func followLogs(logPath string, filter logging.LogFilter) error {
	file, err := os.Open(logPath)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer file.Close()

	// Seek to end of file
	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to end: %w", err)
	}

	fmt.Printf("Following logs... (Ctrl+C to stop)\n\n")

	reader := bufio.NewReader(file)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				// No new data, wait briefly and try again
				time.Sleep(100 * time.Millisecond)
				continue
			}
			return fmt.Errorf("error reading log file: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		entry, err := logging.ParseEntry(line)
		if err != nil {
			// If we can't parse as JSON, display raw line
			fmt.Println(line)
			continue
		}

		if filter.Matches(entry) {
			fmt.Println(formatLogEntry(&entry))
		}
	}
}

// formatLogEntry renders one log entry for terminal output.
func formatLogEntry(entry *logging.LogEntry) string {
	var sb strings.Builder

	sb.WriteString(mutedStyle.Render("[" + entry.Timestamp.Format("15:04:05.000") + "]"))
	sb.WriteString(" ")
	level := strings.ToUpper(entry.Level)
	sb.WriteString(levelStyle(level).Render("[" + level + "]"))
	sb.WriteString(" ")
	sb.WriteString(entry.Message)

	for _, field := range contextFields(entry) {
		sb.WriteString(" ")
		sb.WriteString(mutedStyle.Render(field))
	}

	return sb.String()
}

// levelStyle returns the style for a log level tag.
func levelStyle(level string) lipgloss.Style {
	switch level {
	case logging.LevelDebug:
		return mutedStyle
	case logging.LevelWarn:
		return warnStyle
	case logging.LevelError:
		return alertStyle
	default:
		return lipgloss.NewStyle()
	}
}

// contextFields returns an entry's structured fields as key=value pairs,
// standard fields first, then the extra attrs in sorted order.
func contextFields(entry *logging.LogEntry) []string {
	var fields []string
	if entry.TaskID != "" {
		fields = append(fields, "task="+entry.TaskID)
	}
	if entry.Tier != "" {
		fields = append(fields, "tier="+entry.Tier)
	}
	if entry.Component != "" {
		fields = append(fields, "component="+entry.Component)
	}

	keys := make([]string, 0, len(entry.Attrs))
	for k := range entry.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, fmt.Sprintf("%s=%v", k, entry.Attrs[k]))
	}
	return fields
}
