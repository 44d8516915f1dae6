package ledger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testEntry(taskID string, ts time.Time) Entry {
	return Entry{
		TaskID:          taskID,
		Tier:            "medium",
		DurationSeconds: 120,
		InputTokens:     50000,
		OutputTokens:    3000,
		Timestamp:       ts,
		Status:          StatusSuccess,
	}
}

func TestLedger_AppendThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.jsonl")
	led := New(path)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		entry := testEntry(fmt.Sprintf("US-%d", i+1), base.Add(time.Duration(i)*time.Minute))
		if err := led.Append(entry); err != nil {
			t.Fatalf("Append #%d: %v", i+1, err)
		}
	}

	result, err := led.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(result.Entries) != 3 {
		t.Fatalf("loaded %d entries, want 3", len(result.Entries))
	}
	if result.SkippedCount != 0 {
		t.Errorf("SkippedCount = %d, want 0", result.SkippedCount)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", result.Warnings)
	}
	for i, entry := range result.Entries {
		want := fmt.Sprintf("US-%d", i+1)
		if entry.TaskID != want {
			t.Errorf("Entries[%d].TaskID = %q, want %q (file order)", i, entry.TaskID, want)
		}
	}
}

func TestLedger_Load_MissingFile(t *testing.T) {
	led := New(filepath.Join(t.TempDir(), "ledger.jsonl"))

	result, err := led.Load()
	if err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}
	if len(result.Entries) != 0 || result.SkippedCount != 0 {
		t.Errorf("Load on missing file = %+v, want empty result", result)
	}
}

func TestLedger_Load_BlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.jsonl")
	lines := []string{
		`{"taskId":"US-1","tier":"low","durationSeconds":10,"timestamp":"2026-03-01T12:00:00Z","status":"success"}`,
		"",
		"   ",
		`{"taskId":"US-2","tier":"low","durationSeconds":20,"timestamp":"2026-03-01T12:05:00Z","status":"success"}`,
		"",
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	result, err := New(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(result.Entries) != 2 {
		t.Errorf("loaded %d entries, want 2", len(result.Entries))
	}
	if result.SkippedCount != 0 {
		t.Errorf("SkippedCount = %d, want 0 (blank lines are not corruption)", result.SkippedCount)
	}
}

func TestLedger_Load_SkipsCorruptLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.jsonl")
	led := New(path)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 10; i++ {
		if err := led.Append(testEntry(fmt.Sprintf("US-%02d", i+1), base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	// Simulate a writer crashing mid-line
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString(`{"taskId":"US-11","tier":"low","durat` + "\n"); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	for i := 10; i < 15; i++ {
		if err := led.Append(testEntry(fmt.Sprintf("US-%02d", i+2), base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	result, err := led.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(result.Entries) != 15 {
		t.Errorf("loaded %d entries, want 15", len(result.Entries))
	}
	if result.SkippedCount != 1 {
		t.Errorf("SkippedCount = %d, want 1", result.SkippedCount)
	}
	// Entries before and after the corrupt line both survive, in order
	if result.Entries[0].TaskID != "US-01" {
		t.Errorf("first entry = %q, want US-01", result.Entries[0].TaskID)
	}
	if result.Entries[14].TaskID != "US-16" {
		t.Errorf("last entry = %q, want US-16", result.Entries[14].TaskID)
	}
}

func TestLedger_Load_AdvisoryWarnings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.jsonl")
	lines := []string{
		`{"taskId":"US-1","tier":"low","durationSeconds":10,"timestamp":"2026-03-01T12:00:00Z","status":"success"}`,
		`{"taskId":"US-2","durationSeconds":20,"timestamp":"2026-03-01T12:05:00Z"}`,
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	result, err := New(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// The incomplete record is still returned
	if len(result.Entries) != 2 {
		t.Fatalf("loaded %d entries, want 2 (validation is advisory)", len(result.Entries))
	}
	if result.SkippedCount != 0 {
		t.Errorf("SkippedCount = %d, want 0", result.SkippedCount)
	}

	// Missing tier and missing status on line 2
	if len(result.Warnings) != 2 {
		t.Fatalf("Warnings = %v, want 2", result.Warnings)
	}
	for _, w := range result.Warnings {
		if w.Line != 2 {
			t.Errorf("Warning.Line = %d, want 2", w.Line)
		}
		if w.TaskID != "US-2" {
			t.Errorf("Warning.TaskID = %q, want US-2", w.TaskID)
		}
	}
}

func TestLedger_Load_LegacyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.jsonl")
	lines := []string{
		`{"storyId":"US-1","model":"sonnet","duration":90,"timestamp":"2026-03-01T12:00:00Z","status":"success","estCost":0.5}`,
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	result, err := New(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(result.Entries) != 1 {
		t.Fatalf("loaded %d entries, want 1", len(result.Entries))
	}

	entry := result.Entries[0]
	if entry.TaskID != "US-1" || entry.Tier != "sonnet" || entry.DurationSeconds != 90 {
		t.Errorf("normalized entry = %+v, want aliases mapped to canonical fields", entry)
	}
	if entry.Cost == nil || *entry.Cost != 0.5 {
		t.Errorf("Cost = %v, want 0.5 from estCost", entry.Cost)
	}
}

func TestLedger_Append_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "ledger.jsonl")
	led := New(path)

	if err := led.Append(testEntry("US-1", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("ledger file should exist: %v", err)
	}
}

func TestLedger_AppendIsAddOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.jsonl")
	led := New(path)
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := led.Append(testEntry("US-1", ts)); err != nil {
		t.Fatal(err)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := led.Append(testEntry("US-2", ts.Add(time.Minute))); err != nil {
		t.Fatal(err)
	}
	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(string(after), string(before)) {
		t.Error("existing ledger bytes changed; append must never rewrite prior lines")
	}
}

func TestSuccessful(t *testing.T) {
	entries := []Entry{
		{TaskID: "US-1", Status: StatusSuccess},
		{TaskID: "US-2", Status: StatusError},
		{TaskID: "US-3", Status: StatusSuccess},
	}

	matched := Successful(entries)
	if len(matched) != 2 {
		t.Fatalf("Successful() returned %d entries, want 2", len(matched))
	}
	if matched[0].TaskID != "US-1" || matched[1].TaskID != "US-3" {
		t.Errorf("Successful() = %v, want order preserved", matched)
	}

	if got := Successful(nil); len(got) != 0 {
		t.Errorf("Successful(nil) = %v, want empty", got)
	}
}

func TestForTask(t *testing.T) {
	entries := []Entry{
		{TaskID: "US-1", Status: StatusSuccess},
		{TaskID: "US-2", Status: StatusSuccess},
		{TaskID: "US-1", Status: StatusError},
	}

	matched := ForTask(entries, "US-1")
	if len(matched) != 2 {
		t.Fatalf("ForTask() returned %d entries, want 2", len(matched))
	}

	if got := ForTask(entries, "US-9"); len(got) != 0 {
		t.Errorf("ForTask() = %v, want empty for unknown task", got)
	}
}

func TestWarning_String(t *testing.T) {
	w := Warning{Line: 14, TaskID: "US-3", Message: "missing status"}
	if got := w.String(); got != "line 14 (task US-3): missing status" {
		t.Errorf("String() = %q", got)
	}

	anon := Warning{Line: 2, Message: "missing taskId"}
	if got := anon.String(); got != "line 2: missing taskId" {
		t.Errorf("String() = %q", got)
	}
}
