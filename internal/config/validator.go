package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "routing.low_max")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Valid complexity scores span [1, 10]; routing thresholds must stay inside
// that range to be reachable.
const (
	minComplexityScore = 1
	maxComplexityScore = 10
)

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate Routing config
	errors = append(errors, c.validateRouting()...)

	// Validate Estimation config
	errors = append(errors, c.validateEstimation()...)

	// Validate Pricing config
	errors = append(errors, c.validatePricing()...)

	// Validate Budget config
	errors = append(errors, c.validateBudget()...)

	// Validate Logging config
	errors = append(errors, c.validateLogging()...)

	// Validate Paths config
	errors = append(errors, c.validatePaths()...)

	return errors
}

// validateRouting validates the RoutingConfig
func (c *Config) validateRouting() []ValidationError {
	var errors []ValidationError

	if c.Routing.LowMax < minComplexityScore {
		errors = append(errors, ValidationError{
			Field:   "routing.low_max",
			Value:   c.Routing.LowMax,
			Message: fmt.Sprintf("must be at least %d", minComplexityScore),
		})
	}
	if c.Routing.LowMax > maxComplexityScore {
		errors = append(errors, ValidationError{
			Field:   "routing.low_max",
			Value:   c.Routing.LowMax,
			Message: fmt.Sprintf("exceeds maximum score of %d", maxComplexityScore),
		})
	}

	if c.Routing.MediumMax > maxComplexityScore {
		errors = append(errors, ValidationError{
			Field:   "routing.medium_max",
			Value:   c.Routing.MediumMax,
			Message: fmt.Sprintf("exceeds maximum score of %d", maxComplexityScore),
		})
	}
	if c.Routing.MediumMax <= c.Routing.LowMax {
		errors = append(errors, ValidationError{
			Field:   "routing.medium_max",
			Value:   c.Routing.MediumMax,
			Message: fmt.Sprintf("must be greater than low_max (%v)", c.Routing.LowMax),
		})
	}

	if c.Routing.DefaultTier != "" && !IsValidTier(c.Routing.DefaultTier) {
		errors = append(errors, ValidationError{
			Field:   "routing.default_tier",
			Value:   c.Routing.DefaultTier,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidTiers(), ", ")),
		})
	}

	return errors
}

// validateEstimation validates the EstimationConfig
func (c *Config) validateEstimation() []ValidationError {
	var errors []ValidationError

	// Per-criterion duration must be positive and bounded
	const maxPerCriterionSeconds = 86400 // one day per criterion is already absurd

	if c.Estimation.PerCriterionSeconds <= 0 {
		errors = append(errors, ValidationError{
			Field:   "estimation.per_criterion_seconds",
			Value:   c.Estimation.PerCriterionSeconds,
			Message: "must be positive",
		})
	}
	if c.Estimation.PerCriterionSeconds > maxPerCriterionSeconds {
		errors = append(errors, ValidationError{
			Field:   "estimation.per_criterion_seconds",
			Value:   c.Estimation.PerCriterionSeconds,
			Message: fmt.Sprintf("exceeds maximum of %d seconds", maxPerCriterionSeconds),
		})
	}

	// Per-criterion token budget must be positive and bounded
	const maxPerCriterionTokens = 10_000_000

	if c.Estimation.PerCriterionTokens <= 0 {
		errors = append(errors, ValidationError{
			Field:   "estimation.per_criterion_tokens",
			Value:   c.Estimation.PerCriterionTokens,
			Message: "must be positive",
		})
	}
	if c.Estimation.PerCriterionTokens > maxPerCriterionTokens {
		errors = append(errors, ValidationError{
			Field:   "estimation.per_criterion_tokens",
			Value:   c.Estimation.PerCriterionTokens,
			Message: fmt.Sprintf("exceeds maximum of %d tokens", maxPerCriterionTokens),
		})
	}

	return errors
}

// validatePricing validates the PricingConfig
func (c *Config) validatePricing() []ValidationError {
	var errors []ValidationError

	errors = append(errors, validateTierPricing("pricing.low", c.Pricing.Low)...)
	errors = append(errors, validateTierPricing("pricing.medium", c.Pricing.Medium)...)
	errors = append(errors, validateTierPricing("pricing.high", c.Pricing.High)...)

	return errors
}

// validateTierPricing validates a single tier's pricing rates
func validateTierPricing(fieldPrefix string, p TierPricing) []ValidationError {
	var errors []ValidationError

	if p.Input < 0 {
		errors = append(errors, ValidationError{
			Field:   fieldPrefix + ".input",
			Value:   p.Input,
			Message: "must be non-negative",
		})
	}
	if p.Output < 0 {
		errors = append(errors, ValidationError{
			Field:   fieldPrefix + ".output",
			Value:   p.Output,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validateBudget validates the BudgetConfig
func (c *Config) validateBudget() []ValidationError {
	var errors []ValidationError

	// Limits must be non-negative (0 disables the window)
	if c.Budget.DailyLimit < 0 {
		errors = append(errors, ValidationError{
			Field:   "budget.daily_limit",
			Value:   c.Budget.DailyLimit,
			Message: "must be non-negative (0 disables limit)",
		})
	}
	if c.Budget.MonthlyLimit < 0 {
		errors = append(errors, ValidationError{
			Field:   "budget.monthly_limit",
			Value:   c.Budget.MonthlyLimit,
			Message: "must be non-negative (0 disables limit)",
		})
	}

	// If both are set, the daily limit should fit inside the monthly one
	if c.Budget.DailyLimit > 0 && c.Budget.MonthlyLimit > 0 && c.Budget.DailyLimit > c.Budget.MonthlyLimit {
		errors = append(errors, ValidationError{
			Field:   "budget.daily_limit",
			Value:   c.Budget.DailyLimit,
			Message: fmt.Sprintf("should not exceed monthly_limit (%v)", c.Budget.MonthlyLimit),
		})
	}

	// Alert thresholds are percentages; spend can legitimately pass 100%
	const maxAlertThreshold = 1000

	prev := 0
	for i, threshold := range c.Budget.AlertThresholds {
		fieldName := fmt.Sprintf("budget.alert_thresholds[%d]", i)

		if threshold <= 0 {
			errors = append(errors, ValidationError{
				Field:   fieldName,
				Value:   threshold,
				Message: "must be positive",
			})
			continue
		}
		if threshold > maxAlertThreshold {
			errors = append(errors, ValidationError{
				Field:   fieldName,
				Value:   threshold,
				Message: fmt.Sprintf("exceeds maximum of %d", maxAlertThreshold),
			})
		}
		if threshold <= prev {
			errors = append(errors, ValidationError{
				Field:   fieldName,
				Value:   threshold,
				Message: "must be in ascending order without duplicates",
			})
		}
		prev = threshold
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	// Validate log level
	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	// Max size must be non-negative; 0 disables rotation
	if c.Logging.MaxSizeMB < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be non-negative",
		})
	}

	// Reasonable upper bound for log file size
	const maxLogSizeMB = 1000 // 1GB
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	// Max backups must be non-negative
	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validatePaths validates the PathsConfig
func (c *Config) validatePaths() []ValidationError {
	var errors []ValidationError

	// DataDir validation - if set, check for invalid characters
	if c.Paths.DataDir != "" {
		path := c.Paths.DataDir

		// Check for null bytes which are invalid in paths
		if strings.ContainsRune(path, '\x00') {
			errors = append(errors, ValidationError{
				Field:   "paths.data_dir",
				Value:   path,
				Message: "path contains invalid null character",
			})
		}

		// Reasonable path length limit (most filesystems have limits around 4096)
		const maxPathLength = 4096
		if len(path) > maxPathLength {
			errors = append(errors, ValidationError{
				Field:   "paths.data_dir",
				Value:   path,
				Message: fmt.Sprintf("path exceeds maximum length of %d characters", maxPathLength),
			})
		}
	}

	return errors
}
