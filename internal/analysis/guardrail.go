package analysis

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Iron-Ham/rudder/internal/errors"
	"github.com/Iron-Ham/rudder/internal/routing"
)

// GuardrailHeading is the markdown section generated guardrails live
// under. Hand-written policy above it is never touched.
const GuardrailHeading = "## Generated Guardrails"

// GuardrailEntry is one behavioral rule derived from a detected
// pattern, phrased for the agent prompt that consumes the policy file.
type GuardrailEntry struct {
	Title             string   `json:"title"`
	Trigger           string   `json:"trigger"`
	Instruction       string   `json:"instruction"`
	SourceSeverity    Severity `json:"source_severity"`
	SupportingMetrics string   `json:"supporting_metrics"`
}

// GuardrailFromPattern phrases a detected pattern as a guardrail.
func GuardrailFromPattern(p Pattern) GuardrailEntry {
	metrics := fmt.Sprintf("success rate %.0f%% over %d runs", p.SuccessRate*100, p.SampleCount)

	if p.Type == PatternMisrouted {
		return GuardrailEntry{
			Title:             fmt.Sprintf("Misrouted work: %s-complexity tasks on the %s tier", p.Bucket, p.Tier),
			Trigger:           fmt.Sprintf("before accepting a %s-tier routing decision for %s-complexity work", p.Tier, p.Bucket),
			Instruction:       "Check the complexity score against the tier's expected range and re-route or override before starting.",
			SourceSeverity:    p.Severity,
			SupportingMetrics: metrics,
		}
	}

	instruction := "Route this complexity band to a higher tier, or split the task into smaller stories first."
	if p.Tier == routing.TierHigh {
		instruction = "Split tasks in this band into smaller stories before running them; no higher tier exists."
	}
	return GuardrailEntry{
		Title:             fmt.Sprintf("High failure rate: %s tier on %s-complexity work", p.Tier, p.Bucket),
		Trigger:           fmt.Sprintf("before routing %s-complexity work to the %s tier", p.Bucket, p.Tier),
		Instruction:       instruction,
		SourceSeverity:    p.Severity,
		SupportingMetrics: metrics,
	}
}

// markdown renders the entry as one section block.
func (e GuardrailEntry) markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "### %s\n\n", e.Title)
	fmt.Fprintf(&b, "- Severity: %s\n", e.SourceSeverity)
	fmt.Fprintf(&b, "- Trigger: %s\n", e.Trigger)
	fmt.Fprintf(&b, "- Instruction: %s\n", e.Instruction)
	fmt.Fprintf(&b, "- Metrics: %s\n", e.SupportingMetrics)
	return b.String()
}

// GuardrailWriter appends generated guardrails to a markdown policy
// file, keeping whatever else the file contains intact.
type GuardrailWriter struct {
	path string
}

// NewGuardrailWriter returns a writer for the policy file at path.
func NewGuardrailWriter(path string) *GuardrailWriter {
	return &GuardrailWriter{path: path}
}

// Path returns the policy file location.
func (w *GuardrailWriter) Path() string {
	return w.path
}

// Append inserts the entries directly under the generated-guardrails
// heading, newest first. A missing file or missing heading gets the
// structure created. The file is rewritten atomically.
func (w *GuardrailWriter) Append(entries []GuardrailEntry) error {
	if len(entries) == 0 {
		return nil
	}

	existing, err := os.ReadFile(w.path)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "read guardrails file")
	}

	var blocks []string
	for _, entry := range entries {
		blocks = append(blocks, entry.markdown())
	}
	inserted := strings.Join(blocks, "\n")

	updated := insertUnderHeading(string(existing), inserted)

	if err := os.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		return errors.Wrap(err, "create guardrails directory")
	}
	if err := atomicWriteFile(w.path, []byte(updated), 0644); err != nil {
		return errors.Wrap(err, "write guardrails file")
	}
	return nil
}

// insertUnderHeading places the block right after the generated
// heading. When the heading is absent it is appended at the end of the
// document so hand-written policy stays on top.
func insertUnderHeading(doc, block string) string {
	lines := strings.Split(doc, "\n")
	var out []string
	found := false

	for _, line := range lines {
		out = append(out, line)
		if !found && strings.TrimSpace(line) == GuardrailHeading {
			out = append(out, "", block)
			found = true
		}
	}

	if !found {
		trimmed := strings.TrimRight(strings.Join(out, "\n"), "\n")
		if trimmed == "" {
			return GuardrailHeading + "\n\n" + block
		}
		return trimmed + "\n\n" + GuardrailHeading + "\n\n" + block
	}

	return strings.TrimRight(strings.Join(out, "\n"), "\n") + "\n"
}

// atomicWriteFile writes by way of a temp file in the same directory
// and a rename, so readers never see a half-written policy file.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return err
	}

	success = true
	return nil
}
