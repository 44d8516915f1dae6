package ledger

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Iron-Ham/rudder/internal/errors"
	"github.com/Iron-Ham/rudder/internal/filelock"
)

// Ledger reads and appends task outcomes stored as append-only JSONL.
// Entries are never updated or deleted; the file is the system's
// permanent memory.
type Ledger struct {
	path string
}

// New creates a Ledger backed by the JSONL file at path. The file and its
// parent directory are created on first append.
func New(path string) *Ledger {
	return &Ledger{path: path}
}

// Path returns the backing file's path.
func (l *Ledger) Path() string {
	return l.path
}

// Warning attributes an advisory validation finding to a ledger line.
type Warning struct {
	// Line is the 1-based line number in the ledger file.
	Line int

	// TaskID is the task the record claims to belong to. May be empty.
	TaskID string

	// Message describes the finding.
	Message string
}

func (w Warning) String() string {
	if w.TaskID != "" {
		return fmt.Sprintf("line %d (task %s): %s", w.Line, w.TaskID, w.Message)
	}
	return fmt.Sprintf("line %d: %s", w.Line, w.Message)
}

// LoadResult is the outcome of a tolerant ledger read.
type LoadResult struct {
	// Entries are the parsed records in file order.
	Entries []Entry

	// SkippedCount is the number of malformed lines dropped.
	SkippedCount int

	// Warnings are advisory validation findings for returned entries.
	// An entry with warnings is still present in Entries.
	Warnings []Warning
}

// Append adds one entry to the end of the ledger. An exclusive flock is
// held for the duration of the write so concurrent appenders never
// interleave bytes mid-line.
func (l *Ledger) Append(entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return errors.NewLedgerError("marshal entry", err).WithPath(l.path)
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return errors.NewLedgerError("create ledger directory", err).WithPath(l.path)
	}

	fl := filelock.New(l.path)
	if err := fl.Lock(); err != nil {
		return errors.NewLedgerError("acquire lock", err).WithPath(l.path)
	}
	defer func() { _ = fl.Unlock() }()

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return errors.NewLedgerError("open ledger", err).WithPath(l.path)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		_ = f.Close()
		return errors.NewLedgerError("append entry", err).WithPath(l.path)
	}
	if err := f.Close(); err != nil {
		return errors.NewLedgerError("close ledger", err).WithPath(l.path)
	}
	return nil
}

// Load reads every entry from the ledger. A missing file yields an empty
// result; blank lines are ignored; malformed lines are counted in
// SkippedCount and never fail the rest of the file.
func (l *Ledger) Load() (LoadResult, error) {
	var result LoadResult

	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		return result, errors.NewLedgerError("open ledger", err).WithPath(l.path)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)

	// Increase buffer size for potentially long lines
	const maxScanTokenSize = 1024 * 1024 // 1MB
	buf := make([]byte, maxScanTokenSize)
	scanner.Buffer(buf, maxScanTokenSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		entry, err := parseEntry(line)
		if err != nil {
			// Partial recovery: one corrupt line never poisons the file.
			// A writer crashing mid-line lands here on the next read.
			result.SkippedCount++
			continue
		}

		for _, msg := range entry.Validate() {
			result.Warnings = append(result.Warnings, Warning{
				Line:    lineNum,
				TaskID:  entry.TaskID,
				Message: msg,
			})
		}
		result.Entries = append(result.Entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return result, errors.NewLedgerError("read ledger", err).WithPath(l.path)
	}

	return result, nil
}

// Successful returns the entries that recorded a successful run,
// preserving order.
func Successful(entries []Entry) []Entry {
	var matched []Entry
	for _, e := range entries {
		if e.Succeeded() {
			matched = append(matched, e)
		}
	}
	return matched
}

// ForTask returns the entries recorded for the given task, preserving order.
func ForTask(entries []Entry, taskID string) []Entry {
	var matched []Entry
	for _, e := range entries {
		if e.TaskID == taskID {
			matched = append(matched, e)
		}
	}
	return matched
}
