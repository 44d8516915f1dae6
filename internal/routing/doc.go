// Package routing maps complexity scores to execution tiers.
//
// A task's complexity value is compared against two configurable thresholds:
// at or below the low threshold routes to the low tier, at or below the
// medium threshold routes to medium, and anything above routes to high. An
// explicit override skips the comparison entirely.
//
// The core types are:
//
//   - [Router]: applies thresholds and overrides to produce a decision
//   - [Decision]: the selected tier plus the reasoning behind it
//   - [Tier]: one of low, medium, or high
//
// # Usage
//
//	router := routing.NewRouter(cfg.Routing)
//	decision := router.Route(&score, "")
//	fmt.Printf("tier=%s reason=%s\n", decision.Tier, decision.Reason)
//
// Routing never fails. An invalid override is ignored, a missing score falls
// back to the configured default tier, and in both cases the cause is noted
// in the decision's Reason.
package routing
