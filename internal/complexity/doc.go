// Package complexity rates tasks on a composite 1-10 scale before routing.
//
// A score is built from three additive factors and one multiplier:
//
//   - text depth: how much description there is to act on (0-3)
//   - criteria score: how many acceptance criteria the task carries (0-3)
//   - scope score: how many files the work appears to touch (0-4)
//   - multiplier: weighted signal phrases such as "refactor" (raising) or
//     "typo" (lowering), clamped to [0.5, 2.0]
//
// The final value is clamp(round((depth + criteria + scope) * multiplier), 1, 10)
// and is banded into low (3 and under), medium (up to 6), and high levels.
// The full breakdown travels with the score so downstream consumers can
// explain a routing decision instead of just asserting it.
//
// Scoring is pure: no disk, no network, no clock. The signal dictionary is
// injectable for projects whose vocabulary differs from the default.
//
// Usage:
//
//	scorer := complexity.NewScorer()
//	score := scorer.Score(task.Description, complexity.Hints{CriteriaCount: 4})
package complexity
