// Package accuracy measures how well duration predictions held up
// against recorded runs.
//
// Pairing works off timestamps: a prediction matches the first ledger
// entry for the same task recorded after the prediction's snapshot was
// written. Predictions already marked completed at snapshot time are
// skipped, as are predictions no run ever followed.
//
// Summarize reduces the paired comparisons to MAPE (mean absolute
// percentage error), signed bias (positive means tasks run longer than
// predicted), and a trend computed by comparing error in the older
// comparisons against the most recent window. All three are advisory;
// nothing here feeds back into routing or estimation automatically.
package accuracy
