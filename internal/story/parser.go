// Package story extracts user stories from a PRD markdown file.
//
// Stories are `### US-NNN: Title` headings, optionally carrying a
// completion checkbox (`### [x] US-NNN: Title`). Everything between one
// heading and the next belongs to the story's body. The parser reads
// only; marking stories complete is the executor's side of the file.
package story

import (
	"os"
	"regexp"
	"strings"

	"github.com/Iron-Ham/rudder/internal/complexity"
	"github.com/Iron-Ham/rudder/internal/errors"
)

var (
	headingPattern  = regexp.MustCompile(`^###\s+(?:\[([ xX])\]\s+)?(US-\d+):\s*(.+)$`)
	checkboxPattern = regexp.MustCompile(`^\s*[-*]\s+\[[ xX]\]`)
)

// Story is one user story block from a PRD.
type Story struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`

	// Body is the text under the heading, up to the next story.
	Body string `json:"body,omitempty"`

	// CriteriaCount is the number of checklist items in the body.
	CriteriaCount int `json:"criteria_count"`
}

// Description returns the text the scorer should rate: the title plus
// the full body. File references in either are detected downstream.
func (s Story) Description() string {
	if s.Body == "" {
		return s.Title
	}
	return s.Title + "\n\n" + s.Body
}

// Hints returns the structural hints extracted for the scorer.
func (s Story) Hints() complexity.Hints {
	return complexity.Hints{CriteriaCount: s.CriteriaCount}
}

// Document is a parsed PRD.
type Document struct {
	Stories []Story `json:"stories"`
}

// Total returns the number of stories in the PRD.
func (d Document) Total() int {
	return len(d.Stories)
}

// Remaining returns the number of stories not yet completed.
func (d Document) Remaining() int {
	count := 0
	for _, s := range d.Stories {
		if !s.Completed {
			count++
		}
	}
	return count
}

// NextPending returns the first uncompleted story in document order.
func (d Document) NextPending() (Story, bool) {
	for _, s := range d.Stories {
		if !s.Completed {
			return s, true
		}
	}
	return Story{}, false
}

// ParseFile reads and parses a PRD markdown file.
func ParseFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Document{}, errors.NewStoryError("read PRD", errors.ErrPRDNotFound).WithSource(path)
		}
		return Document{}, errors.NewStoryError("read PRD", err).WithSource(path)
	}
	return Parse(string(data)), nil
}

// Parse extracts stories from PRD markdown. Text before the first
// heading is ignored; a document with no story headings parses to an
// empty Document.
func Parse(text string) Document {
	var doc Document
	var current *Story
	var body []string

	flush := func() {
		if current == nil {
			return
		}
		current.Body = strings.TrimSpace(strings.Join(body, "\n"))
		current.CriteriaCount = countCriteria(body)
		doc.Stories = append(doc.Stories, *current)
		current = nil
		body = nil
	}

	for _, line := range strings.Split(text, "\n") {
		m := headingPattern.FindStringSubmatch(line)
		if m == nil {
			if current != nil {
				body = append(body, line)
			}
			continue
		}
		flush()
		current = &Story{
			ID:        m[2],
			Title:     strings.TrimSpace(m[3]),
			Completed: strings.EqualFold(m[1], "x"),
		}
	}
	flush()

	return doc
}

// countCriteria counts checklist bullets, the PRD convention for
// acceptance criteria.
func countCriteria(lines []string) int {
	count := 0
	for _, line := range lines {
		if checkboxPattern.MatchString(line) {
			count++
		}
	}
	return count
}
