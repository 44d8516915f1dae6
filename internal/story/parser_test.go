package story

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Iron-Ham/rudder/internal/errors"
)

const samplePRD = `# Product Requirements

Some preamble describing the project.

## Stories

### [x] US-001: Set up the ledger schema

As a developer, I want outcomes recorded.

**Acceptance Criteria:**
- [x] Entries append as JSONL
- [x] Corrupt lines are skipped

### [ ] US-002: Add complexity scoring

As an operator, I want tasks scored before routing.

**Acceptance Criteria:**
- [ ] Score combines text depth and criteria
- [ ] Value stays within bounds
- [ ] Works from internal/complexity/scorer.go

### US-003: Stretch goal

One-liner without a checkbox.
`

func TestParse(t *testing.T) {
	doc := Parse(samplePRD)

	if doc.Total() != 3 {
		t.Fatalf("Total = %d, want 3", doc.Total())
	}

	first := doc.Stories[0]
	if first.ID != "US-001" || first.Title != "Set up the ledger schema" {
		t.Errorf("first story = %q %q, want US-001 with title", first.ID, first.Title)
	}
	if !first.Completed {
		t.Error("US-001 not marked completed")
	}
	if !strings.Contains(first.Body, "As a developer") {
		t.Errorf("US-001 body = %q, want narrative text", first.Body)
	}
	if strings.Contains(first.Body, "US-002") {
		t.Error("US-001 body bleeds into the next story")
	}

	second := doc.Stories[1]
	if second.Completed {
		t.Error("US-002 marked completed, want pending")
	}
	if second.CriteriaCount != 3 {
		t.Errorf("US-002 CriteriaCount = %d, want 3", second.CriteriaCount)
	}

	third := doc.Stories[2]
	if third.Completed {
		t.Error("US-003 without a checkbox marked completed, want pending")
	}
	if third.CriteriaCount != 0 {
		t.Errorf("US-003 CriteriaCount = %d, want 0", third.CriteriaCount)
	}
}

func TestParse_UppercaseCheckbox(t *testing.T) {
	doc := Parse("### [X] US-010: Shouting done marker\n\nBody.\n")

	if len(doc.Stories) != 1 || !doc.Stories[0].Completed {
		t.Errorf("stories = %+v, want one completed story", doc.Stories)
	}
}

func TestParse_NoStories(t *testing.T) {
	doc := Parse("# Notes\n\nNothing here matches the story format.\n")

	if doc.Total() != 0 {
		t.Errorf("Total = %d, want 0", doc.Total())
	}
	if _, ok := doc.NextPending(); ok {
		t.Error("NextPending found a story in an empty document")
	}
}

func TestParse_StarBullets(t *testing.T) {
	doc := Parse("### [ ] US-020: Star criteria\n\n* [ ] first\n* [x] second\n* plain bullet\n")

	if got := doc.Stories[0].CriteriaCount; got != 2 {
		t.Errorf("CriteriaCount = %d, want 2 (plain bullets excluded)", got)
	}
}

func TestDocument_NextPending(t *testing.T) {
	doc := Parse(samplePRD)

	next, ok := doc.NextPending()
	if !ok {
		t.Fatal("NextPending = none, want US-002")
	}
	if next.ID != "US-002" {
		t.Errorf("NextPending = %s, want US-002 (first pending, not first overall)", next.ID)
	}
}

func TestDocument_Remaining(t *testing.T) {
	doc := Parse(samplePRD)

	if got := doc.Remaining(); got != 2 {
		t.Errorf("Remaining = %d, want 2", got)
	}
}

func TestDocument_AllComplete(t *testing.T) {
	doc := Parse("### [x] US-001: Done\n\nBody.\n\n### [X] US-002: Also done\n\nBody.\n")

	if doc.Remaining() != 0 {
		t.Errorf("Remaining = %d, want 0", doc.Remaining())
	}
	if _, ok := doc.NextPending(); ok {
		t.Error("NextPending found a story in a completed document")
	}
}

func TestStory_Description(t *testing.T) {
	doc := Parse(samplePRD)
	next, _ := doc.NextPending()

	description := next.Description()
	if !strings.HasPrefix(description, "Add complexity scoring") {
		t.Errorf("Description starts %q, want the title first", firstLine(description))
	}
	if !strings.Contains(description, "scored before routing") {
		t.Error("Description missing the body")
	}

	bare := Story{ID: "US-9", Title: "Just a title"}
	if bare.Description() != "Just a title" {
		t.Errorf("Description = %q, want bare title", bare.Description())
	}
}

func TestStory_Hints(t *testing.T) {
	doc := Parse(samplePRD)
	next, _ := doc.NextPending()

	if got := next.Hints().CriteriaCount; got != 3 {
		t.Errorf("Hints().CriteriaCount = %d, want 3", got)
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "PRD.md")
	if err := os.WriteFile(path, []byte(samplePRD), 0644); err != nil {
		t.Fatal(err)
	}

	doc, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if doc.Total() != 3 {
		t.Errorf("Total = %d, want 3", doc.Total())
	}
}

func TestParseFile_Missing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "absent.md"))

	if err == nil {
		t.Fatal("ParseFile on a missing file succeeded")
	}
	if !errors.Is(err, errors.ErrPRDNotFound) {
		t.Errorf("err = %v, want ErrPRDNotFound", err)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
