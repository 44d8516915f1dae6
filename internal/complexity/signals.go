package complexity

import (
	"regexp"
	"sort"
	"strings"
)

// Phrase is a weighted signal phrase matched against task text.
// Positive weights push the multiplier up, negative weights pull it down.
type Phrase struct {
	Text   string  `json:"text"`
	Weight float64 `json:"weight"`
}

// Signals is the dictionary a Scorer consults: weighted phrases for the
// multiplier and keyword lists for scope classification. The dictionary is
// data, not behavior, so callers can supply a custom one per project.
type Signals struct {
	// Phrases adjust the multiplier. Each phrase counts once per task no
	// matter how often it occurs.
	Phrases []Phrase `json:"phrases"`

	// MultiScopeKeywords mark work that spans a handful of files.
	MultiScopeKeywords []string `json:"multi_scope_keywords"`

	// WideScopeKeywords mark work that cuts across the codebase.
	WideScopeKeywords []string `json:"wide_scope_keywords"`
}

// DefaultSignals returns the built-in signal dictionary.
func DefaultSignals() Signals {
	return Signals{
		Phrases: []Phrase{
			// Raising signals
			{Text: "refactor", Weight: 0.3},
			{Text: "rewrite", Weight: 0.35},
			{Text: "migration", Weight: 0.3},
			{Text: "migrate", Weight: 0.25},
			{Text: "architecture", Weight: 0.3},
			{Text: "race condition", Weight: 0.35},
			{Text: "concurrency", Weight: 0.3},
			{Text: "concurrent", Weight: 0.2},
			{Text: "breaking change", Weight: 0.3},
			{Text: "backward compat", Weight: 0.2},
			{Text: "security", Weight: 0.25},
			{Text: "authentication", Weight: 0.2},
			{Text: "performance", Weight: 0.2},
			{Text: "optimize", Weight: 0.15},
			{Text: "integration", Weight: 0.15},
			{Text: "edge case", Weight: 0.15},

			// Lowering signals
			{Text: "typo", Weight: -0.4},
			{Text: "documentation", Weight: -0.3},
			{Text: "readme", Weight: -0.3},
			{Text: "docs", Weight: -0.25},
			{Text: "comment", Weight: -0.2},
			{Text: "rename", Weight: -0.2},
			{Text: "fix", Weight: -0.15},
			{Text: "bump", Weight: -0.25},
			{Text: "trivial", Weight: -0.3},
		},
		MultiScopeKeywords: []string{
			"multiple files",
			"several files",
			"both files",
			"across modules",
			"multiple packages",
			"several packages",
			"and its tests",
		},
		WideScopeKeywords: []string{
			"across the codebase",
			"codebase-wide",
			"project-wide",
			"repo-wide",
			"all files",
			"every file",
			"all packages",
			"every package",
			"throughout the",
		},
	}
}

// fileRefPattern matches path-like tokens with a recognizable source or
// config extension, e.g. "internal/ledger/ledger.go" or "schema.sql".
var fileRefPattern = regexp.MustCompile(`\b[\w./-]+\.(?:go|py|js|jsx|ts|tsx|rs|java|rb|c|h|cpp|md|json|yaml|yml|toml|sql|proto|sh|css|html)\b`)

// detectFiles returns the unique file references found in the text plus the
// declared list, sorted for determinism.
func detectFiles(text string, declared []string) []string {
	seen := make(map[string]bool)
	var files []string

	add := func(f string) {
		f = strings.TrimSpace(f)
		if f == "" || seen[f] {
			return
		}
		seen[f] = true
		files = append(files, f)
	}

	for _, f := range declared {
		add(f)
	}
	for _, f := range fileRefPattern.FindAllString(text, -1) {
		add(f)
	}

	sort.Strings(files)
	return files
}

// containsAny reports whether text contains any of the keywords.
// Callers pass text already lowercased; keywords are stored lowercase.
func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
