// Package analysis mines recorded runs for routing problems.
//
// Analyze buckets ledger entries into a fixed complexity grid (low 1-3,
// medium 4-7, high 8-10) crossed with the tier that ran them, then
// flags cells that fail too often and tiers operating outside their
// expected range. Recommendations propose threshold changes for an
// operator to act on; the router's configuration is never modified
// here.
//
// Findings can also be phrased as guardrail entries and appended to a
// markdown policy file that downstream agent prompts include.
package analysis
