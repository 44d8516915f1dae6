// Package ledger persists task outcomes as append-only JSONL.
//
// Every completed run produces one [Entry]: which task ran, on which tier,
// how long it took, what it consumed, and whether it succeeded. The ledger
// is the input to everything rudder learns: estimation history, accuracy
// reports, routing analysis, and budget windows all read from it.
//
// # File Format
//
// One UTF-8 JSON record per line. The file is only ever appended to;
// records are never rewritten. Readers are deliberately forgiving:
//
//   - a missing file is an empty ledger, not an error
//   - blank lines are ignored
//   - a malformed line is counted in [LoadResult.SkippedCount] and skipped
//     without failing the surrounding lines
//
// Legacy key aliases (storyId, duration, model, estCost) are accepted on
// read and normalized to the canonical names, so ledgers written by older
// tooling keep working.
//
// # Validation
//
// Schema validation is advisory. An entry missing required fields is still
// returned alongside a [Warning] naming the line and the problem, which
// keeps old or hand-edited ledgers loadable.
//
// # Usage
//
//	led := ledger.New(cfg.Paths.LedgerPath(baseDir))
//	if err := led.Append(entry); err != nil {
//	    return err
//	}
//
//	result, err := led.Load()
//	for _, w := range result.Warnings {
//	    log.Warn("ledger", "warning", w.String())
//	}
package ledger
