package complexity

import (
	"math"
	"strings"
)

// -----------------------------------------------------------------------------
// Score Types
// -----------------------------------------------------------------------------

// Level categorizes a composite score.
type Level string

const (
	// LevelLow covers scores up to and including 3.
	LevelLow Level = "low"

	// LevelMedium covers scores above 3 up to and including 6.
	LevelMedium Level = "medium"

	// LevelHigh covers scores above 6.
	LevelHigh Level = "high"
)

// Level boundaries for the composite score.
const (
	lowLevelMax    = 3.0
	mediumLevelMax = 6.0
)

// Hints carries the structural metadata an upstream parser extracted
// alongside the task description.
type Hints struct {
	// CriteriaCount is the number of acceptance criteria or sub-tasks.
	CriteriaCount int `json:"criteria_count"`

	// DeclaredFiles are file paths the task explicitly names.
	DeclaredFiles []string `json:"declared_files,omitempty"`

	// Tags are free-form keywords attached to the task.
	Tags []string `json:"tags,omitempty"`
}

// Score is the composite 1-10 complexity rating for one task.
type Score struct {
	// Value is the final score, clamped to [1, 10].
	Value float64 `json:"value"`

	// Level is the qualitative band for Value (low/medium/high).
	Level Level `json:"level"`

	// Breakdown itemizes how Value was computed.
	Breakdown Breakdown `json:"breakdown"`

	// Scope describes the file footprint detected for the task.
	Scope Scope `json:"scope"`
}

// Breakdown holds the additive factors and the multiplier behind a score.
// Value = clamp(round((TextDepth + CriteriaScore + ScopeScore) * Multiplier), 1, 10).
type Breakdown struct {
	// TextDepth scores description length (0-3).
	TextDepth float64 `json:"text_depth"`

	// CriteriaScore scores the acceptance-criteria count (0-3).
	CriteriaScore float64 `json:"criteria_score"`

	// ScopeScore scores the file footprint (0-4).
	ScopeScore float64 `json:"scope_score"`

	// Multiplier is the signal-phrase adjustment, clamped to [0.5, 2.0].
	Multiplier float64 `json:"multiplier"`
}

// Scope describes how many files a task appears to touch.
type Scope struct {
	// EstimatedFileCount is the number of unique file references seen.
	EstimatedFileCount int `json:"estimated_file_count"`

	// DetectedFiles lists those references, declared and detected, sorted.
	DetectedFiles []string `json:"detected_files,omitempty"`
}

// -----------------------------------------------------------------------------
// Scorer
// -----------------------------------------------------------------------------

// Scorer turns a task description plus structural hints into a composite
// score. It is a pure function of its inputs and the signal dictionary it
// was constructed with; scoring never touches disk or network.
type Scorer struct {
	signals Signals
}

// NewScorer creates a Scorer with the built-in signal dictionary.
func NewScorer() *Scorer {
	return &Scorer{signals: DefaultSignals()}
}

// NewScorerWithSignals creates a Scorer with a custom signal dictionary.
func NewScorerWithSignals(signals Signals) *Scorer {
	return &Scorer{signals: signals}
}

// Scope classes, ordered so a larger class always wins.
const (
	scopeSingle = iota
	scopeMulti
	scopeWide
)

// File-count overrides: two files force at least multi scope, five force wide.
const (
	multiFileThreshold = 2
	wideFileThreshold  = 5
)

// Score rates the given task description and hints.
func (s *Scorer) Score(description string, hints Hints) Score {
	matchText := buildMatchText(description, hints.Tags)
	files := detectFiles(description, hints.DeclaredFiles)

	textDepth := scoreTextDepth(description)
	criteriaScore := scoreCriteria(hints.CriteriaCount)
	scopeScore := s.scoreScope(matchText, len(files))
	multiplier := s.multiplier(matchText)

	value := (textDepth + criteriaScore + scopeScore) * multiplier
	value = math.Round(value*10) / 10
	value = clamp(value, 1, 10)

	return Score{
		Value: value,
		Level: levelFor(value),
		Breakdown: Breakdown{
			TextDepth:     textDepth,
			CriteriaScore: criteriaScore,
			ScopeScore:    scopeScore,
			Multiplier:    multiplier,
		},
		Scope: Scope{
			EstimatedFileCount: len(files),
			DetectedFiles:      files,
		},
	}
}

// scoreTextDepth rates description length by word count.
func scoreTextDepth(description string) float64 {
	words := len(strings.Fields(description))
	switch {
	case words < 50:
		return 1
	case words < 150:
		return 2
	default:
		return 3
	}
}

// scoreCriteria rates the acceptance-criteria count in buckets.
func scoreCriteria(count int) float64 {
	switch {
	case count <= 1:
		return 0.5
	case count <= 3:
		return 1.5
	case count <= 5:
		return 2.5
	default:
		return 3
	}
}

// scoreScope rates the file footprint. Keyword classification sets a
// baseline and the file count can only widen it, never narrow it.
func (s *Scorer) scoreScope(matchText string, fileCount int) float64 {
	class := scopeSingle
	if containsAny(matchText, s.signals.WideScopeKeywords) {
		class = scopeWide
	} else if containsAny(matchText, s.signals.MultiScopeKeywords) {
		class = scopeMulti
	}

	if fileCount >= wideFileThreshold {
		class = scopeWide
	} else if fileCount >= multiFileThreshold && class < scopeMulti {
		class = scopeMulti
	}

	switch class {
	case scopeWide:
		return 4
	case scopeMulti:
		return 2.5
	default:
		return 1
	}
}

// multiplier applies the signal dictionary to the match text.
// Each phrase counts once; the result is clamped to [0.5, 2.0].
func (s *Scorer) multiplier(matchText string) float64 {
	m := 1.0
	for _, phrase := range s.signals.Phrases {
		if strings.Contains(matchText, strings.ToLower(phrase.Text)) {
			m += phrase.Weight
		}
	}
	return clamp(m, 0.5, 2.0)
}

// buildMatchText lowercases the description and tags into one searchable blob.
func buildMatchText(description string, tags []string) string {
	if len(tags) == 0 {
		return strings.ToLower(description)
	}
	return strings.ToLower(description + " " + strings.Join(tags, " "))
}

// levelFor buckets a final score value.
func levelFor(value float64) Level {
	switch {
	case value <= lowLevelMax:
		return LevelLow
	case value <= mediumLevelMax:
		return LevelMedium
	default:
		return LevelHigh
	}
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
