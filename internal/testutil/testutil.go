// Package testutil provides testing utilities for rudder tests.
package testutil

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/Iron-Ham/rudder/internal/ledger"
)

// SetupDataDir creates a temporary rudder data directory for testing.
// Returns the path to the directory. The directory is automatically
// cleaned up when the test completes.
func SetupDataDir(t *testing.T) string {
	t.Helper()

	dir := filepath.Join(t.TempDir(), ".rudder")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create data dir: %v", err)
	}
	return dir
}

// WriteLedger writes entries as a JSONL ledger file inside dir and
// returns the file's path.
func WriteLedger(t *testing.T, dir string, entries ...ledger.Entry) string {
	t.Helper()

	path := filepath.Join(dir, "ledger.jsonl")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		t.Fatalf("failed to open ledger file: %v", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for i, entry := range entries {
		if err := enc.Encode(entry); err != nil {
			t.Fatalf("failed to write ledger entry %d: %v", i, err)
		}
	}
	return path
}

// AppendRawLine appends one raw line to a JSONL file, bypassing
// serialization. Useful for planting corrupt or legacy-format lines.
func AppendRawLine(t *testing.T, path, line string) {
	t.Helper()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(line + "\n"); err != nil {
		t.Fatalf("failed to append raw line: %v", err)
	}
}

// WriteConfig writes a project-local config file under dir and returns
// its path.
func WriteConfig(t *testing.T, dir, content string) string {
	t.Helper()

	cfgDir := filepath.Join(dir, ".rudder")
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	path := filepath.Join(cfgDir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// WritePRD writes a PRD markdown file into dir and returns its path.
func WritePRD(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, "prd.md")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write PRD: %v", err)
	}
	return path
}

// SuccessEntry returns a successful ledger entry with typical token
// volumes, completed at the given time.
func SuccessEntry(taskID, tier string, at time.Time) ledger.Entry {
	return ledger.Entry{
		TaskID:          taskID,
		Tier:            tier,
		DurationSeconds: 300,
		InputTokens:     20000,
		OutputTokens:    5000,
		Timestamp:       at,
		Status:          ledger.StatusSuccess,
	}
}

// FailedEntry returns a failed ledger entry completed at the given time.
func FailedEntry(taskID, tier string, at time.Time) ledger.Entry {
	entry := SuccessEntry(taskID, tier, at)
	entry.Status = ledger.StatusError
	return entry
}

// Costed returns a copy of entry with an explicit cost.
func Costed(entry ledger.Entry, cost float64) ledger.Entry {
	entry.Cost = &cost
	return entry
}

// Scored returns a copy of entry with a complexity score and routing
// reason attached.
func Scored(entry ledger.Entry, score float64) ledger.Entry {
	entry.ComplexityScore = &score
	entry.RoutingReason = "scored for test"
	return entry
}

// SkipIfNoGolangciLint skips the test if golangci-lint is not installed.
func SkipIfNoGolangciLint(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath("golangci-lint"); err != nil {
		t.Skip("golangci-lint not found in PATH, skipping test")
	}
}
