// Package errors provides centralized error definitions and error handling
// utilities for the Rudder codebase. It defines domain-specific errors,
// semantic error types, error constructors with context wrapping, and error
// classification helpers.
//
// # Error Types
//
// The package provides two categories of errors:
//
// Domain-specific errors represent errors from specific subsystems:
//   - LedgerError: errors related to the outcome ledger file
//   - ConfigError: errors related to configuration loading/validation
//   - BudgetError: errors related to budget window accounting
//   - RoutingError: errors related to tier routing
//   - StoryError: errors related to PRD story extraction
//
// Semantic errors represent common error conditions:
//   - NotFoundError: resource not found
//   - ValidationError: invalid input or state
//
// # Usage
//
// Creating errors:
//
//	// Domain-specific error
//	err := errors.NewLedgerError("failed to append entry", errors.ErrLedgerLocked)
//
//	// With context
//	err := errors.NewLedgerError("parse failed", cause).WithPath(path).WithLine(14)
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrBudgetExceeded) { ... }
//
//	var ledgerErr *errors.LedgerError
//	if errors.As(err, &ledgerErr) { ... }
//
//	if errors.IsRetryable(err) { ... }
//	if errors.IsUserFacing(err) { ... }
//
// # Error Classification
//
// Errors can be classified by severity and behavior:
//   - Retryable: transient errors that may succeed on retry
//   - UserFacing: errors safe to display to users (vs internal errors)
//   - Severity: Debug, Info, Warning, Error, Critical
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Ledger-related sentinel errors
var (
	// ErrLedgerLocked indicates that the ledger file is locked by another writer.
	ErrLedgerLocked = New("ledger is locked by another process")
	// ErrEntryInvalid indicates that a ledger entry failed required-field validation.
	ErrEntryInvalid = New("ledger entry is invalid")
	// ErrSnapshotNotFound indicates that no estimate snapshot could be found.
	ErrSnapshotNotFound = New("estimate snapshot not found")
)

// Configuration-related sentinel errors
var (
	// ErrConfigInvalid indicates that configuration failed validation.
	ErrConfigInvalid = New("configuration is invalid")
	// ErrUnknownTier indicates a tier name outside low/medium/high.
	ErrUnknownTier = New("unknown tier")
)

// Budget-related sentinel errors
var (
	// ErrBudgetExceeded indicates that a budget window limit has been reached.
	ErrBudgetExceeded = New("budget limit exceeded")
)

// Story-related sentinel errors
var (
	// ErrStoryNotFound indicates that no uncompleted story is available.
	ErrStoryNotFound = New("no uncompleted story found")
	// ErrPRDNotFound indicates that the PRD file does not exist.
	ErrPRDNotFound = New("PRD file not found")
)

// General sentinel errors
var (
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
	// ErrOperationFailed indicates a general operation failure.
	ErrOperationFailed = New("operation failed")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// RudderError is the base interface for all Rudder errors.
// It extends the standard error interface with additional methods for
// error handling and classification.
type RudderError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	// This is used by errors.Is() for error comparison.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the error is transient and the operation
	// may succeed on retry.
	IsRetryable() bool

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// LedgerError represents errors related to the outcome ledger.
//
// Example:
//
//	err := errors.NewLedgerError("failed to append entry", cause)
//	err = err.WithPath(".rudder/ledger.jsonl").WithLine(14)
//	fmt.Println(err) // "ledger error [path=.rudder/ledger.jsonl, line=14]: failed to append entry: ..."
type LedgerError struct {
	baseError
	Path string
	Line int
}

// NewLedgerError creates a new LedgerError.
func NewLedgerError(message string, cause error) *LedgerError {
	return &LedgerError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
		Line: -1, // -1 indicates not set
	}
}

// WithPath adds the ledger file path to the error context.
func (e *LedgerError) WithPath(path string) *LedgerError {
	e.Path = path
	return e
}

// WithLine adds a 1-based line number to the error context.
func (e *LedgerError) WithLine(line int) *LedgerError {
	e.Line = line
	return e
}

// WithSeverity sets the error severity.
func (e *LedgerError) WithSeverity(s Severity) *LedgerError {
	e.severity = s
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *LedgerError) WithRetryable(r bool) *LedgerError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *LedgerError) Error() string {
	var parts []string
	if e.Path != "" {
		parts = append(parts, fmt.Sprintf("path=%s", e.Path))
	}
	if e.Line >= 0 {
		parts = append(parts, fmt.Sprintf("line=%d", e.Line))
	}

	prefix := "ledger error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("ledger error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *LedgerError) Is(target error) bool {
	if _, ok := target.(*LedgerError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ConfigError represents errors related to configuration.
//
// Example:
//
//	err := errors.NewConfigError("threshold out of range", errors.ErrConfigInvalid)
//	err = err.WithKey("routing.low_max")
type ConfigError struct {
	baseError
	Key  string
	File string
}

// NewConfigError creates a new ConfigError.
func NewConfigError(message string, cause error) *ConfigError {
	return &ConfigError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithKey adds a configuration key to the error context.
func (e *ConfigError) WithKey(key string) *ConfigError {
	e.Key = key
	return e
}

// WithFile adds the config file path to the error context.
func (e *ConfigError) WithFile(file string) *ConfigError {
	e.File = file
	return e
}

// WithSeverity sets the error severity.
func (e *ConfigError) WithSeverity(s Severity) *ConfigError {
	e.severity = s
	return e
}

// Error returns the formatted error message.
func (e *ConfigError) Error() string {
	var parts []string
	if e.Key != "" {
		parts = append(parts, fmt.Sprintf("key=%s", e.Key))
	}
	if e.File != "" {
		parts = append(parts, fmt.Sprintf("file=%s", e.File))
	}

	prefix := "config error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("config error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ConfigError) Is(target error) bool {
	if _, ok := target.(*ConfigError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// BudgetError represents errors related to budget accounting and gating.
//
// Example:
//
//	err := errors.NewBudgetError("execution denied", errors.ErrBudgetExceeded)
//	err = err.WithPeriod("daily").WithSpend(10.40, 10.00)
type BudgetError struct {
	baseError
	Period string
	Spent  float64
	Limit  float64
}

// NewBudgetError creates a new BudgetError.
func NewBudgetError(message string, cause error) *BudgetError {
	return &BudgetError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
		Spent: -1,
		Limit: -1,
	}
}

// WithPeriod adds the budget period (daily/monthly) to the error context.
func (e *BudgetError) WithPeriod(period string) *BudgetError {
	e.Period = period
	return e
}

// WithSpend adds the spent amount and limit to the error context.
func (e *BudgetError) WithSpend(spent, limit float64) *BudgetError {
	e.Spent = spent
	e.Limit = limit
	return e
}

// WithSeverity sets the error severity.
func (e *BudgetError) WithSeverity(s Severity) *BudgetError {
	e.severity = s
	return e
}

// Error returns the formatted error message.
func (e *BudgetError) Error() string {
	var parts []string
	if e.Period != "" {
		parts = append(parts, fmt.Sprintf("period=%s", e.Period))
	}
	if e.Spent >= 0 && e.Limit >= 0 {
		parts = append(parts, fmt.Sprintf("spent=$%.2f/$%.2f", e.Spent, e.Limit))
	}

	prefix := "budget error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("budget error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *BudgetError) Is(target error) bool {
	if _, ok := target.(*BudgetError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// RoutingError represents errors related to tier routing.
//
// Example:
//
//	err := errors.NewRoutingError("override rejected", errors.ErrUnknownTier)
//	err = err.WithTier("ultra").WithScore(5.5)
type RoutingError struct {
	baseError
	Tier  string
	Score float64
}

// NewRoutingError creates a new RoutingError.
func NewRoutingError(message string, cause error) *RoutingError {
	return &RoutingError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
		Score: -1,
	}
}

// WithTier adds a tier name to the error context.
func (e *RoutingError) WithTier(tier string) *RoutingError {
	e.Tier = tier
	return e
}

// WithScore adds a complexity score to the error context.
func (e *RoutingError) WithScore(score float64) *RoutingError {
	e.Score = score
	return e
}

// Error returns the formatted error message.
func (e *RoutingError) Error() string {
	var parts []string
	if e.Tier != "" {
		parts = append(parts, fmt.Sprintf("tier=%s", e.Tier))
	}
	if e.Score >= 0 {
		parts = append(parts, fmt.Sprintf("score=%.1f", e.Score))
	}

	prefix := "routing error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("routing error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *RoutingError) Is(target error) bool {
	if _, ok := target.(*RoutingError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// StoryError represents errors related to PRD story extraction.
//
// Example:
//
//	err := errors.NewStoryError("no open stories", errors.ErrStoryNotFound)
//	err = err.WithSource("PRD.md").WithStoryID("US-004")
type StoryError struct {
	baseError
	Source  string
	StoryID string
}

// NewStoryError creates a new StoryError.
func NewStoryError(message string, cause error) *StoryError {
	return &StoryError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithSource adds the PRD file path to the error context.
func (e *StoryError) WithSource(source string) *StoryError {
	e.Source = source
	return e
}

// WithStoryID adds a story ID to the error context.
func (e *StoryError) WithStoryID(id string) *StoryError {
	e.StoryID = id
	return e
}

// Error returns the formatted error message.
func (e *StoryError) Error() string {
	var parts []string
	if e.Source != "" {
		parts = append(parts, fmt.Sprintf("source=%s", e.Source))
	}
	if e.StoryID != "" {
		parts = append(parts, fmt.Sprintf("story=%s", e.StoryID))
	}

	prefix := "story error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("story error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *StoryError) Is(target error) bool {
	if _, ok := target.(*StoryError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// NotFoundError represents a resource that could not be found.
//
// Example:
//
//	err := errors.NewNotFoundError("snapshot", "c71be9")
//	fmt.Println(err) // "snapshot 'c71be9' not found"
type NotFoundError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			message:    fmt.Sprintf("%s '%s' not found", resourceType, resourceID),
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// WithCause adds a cause to the error.
func (e *NotFoundError) WithCause(cause error) *NotFoundError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *NotFoundError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s '%s' not found: %v", e.ResourceType, e.ResourceID, e.cause)
	}
	return fmt.Sprintf("%s '%s' not found", e.ResourceType, e.ResourceID)
}

// Is checks if this error matches the target.
func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ValidationError represents invalid input or state.
//
// Example:
//
//	err := errors.NewValidationError("criteria count cannot be negative")
//	err = err.WithField("criteriaCount").WithValue(-3)
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	prefix := "validation error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("validation error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if errors.Is(target, ErrInvalidInput) {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error represents a transient condition
// that may succeed on retry. This checks for:
//   - Errors implementing RudderError with IsRetryable() returning true
//   - Errors wrapping ErrLedgerLocked (lock contention clears quickly)
//
// Example:
//
//	if errors.IsRetryable(err) {
//	    time.Sleep(backoff)
//	    return retry(operation)
//	}
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var rudderErr RudderError
	if As(err, &rudderErr) {
		return rudderErr.IsRetryable()
	}

	// Lock contention on the ledger is transient by construction.
	if Is(err, ErrLedgerLocked) {
		return true
	}

	return false
}

// IsUserFacing returns true if the error message is safe to display to end
// users. This checks for:
//   - Errors implementing RudderError with IsUserFacing() returning true
//   - Semantic errors (NotFoundError, ValidationError)
//
// Example:
//
//	if errors.IsUserFacing(err) {
//	    displayToUser(err.Error())
//	} else {
//	    displayToUser("An internal error occurred")
//	    log.Error("internal error", "err", err)
//	}
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var rudderErr RudderError
	if As(err, &rudderErr) {
		return rudderErr.IsUserFacing()
	}

	var notFound *NotFoundError
	var validation *ValidationError
	if As(err, &notFound) || As(err, &validation) {
		return true
	}

	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement RudderError.
//
// Example:
//
//	switch errors.GetSeverity(err) {
//	case errors.SeverityCritical:
//	    alertOperator(err)
//	case errors.SeverityError:
//	    log.Error("error occurred", "err", err)
//	case errors.SeverityWarning:
//	    log.Warn("warning", "err", err)
//	}
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var rudderErr RudderError
	if As(err, &rudderErr) {
		return rudderErr.Severity()
	}

	return SeverityError
}

// IsDomainError returns true if the error is a domain-specific error
// (LedgerError, ConfigError, BudgetError, RoutingError, or StoryError).
func IsDomainError(err error) bool {
	if err == nil {
		return false
	}

	var ledgerErr *LedgerError
	var configErr *ConfigError
	var budgetErr *BudgetError
	var routingErr *RoutingError
	var storyErr *StoryError

	return As(err, &ledgerErr) || As(err, &configErr) ||
		As(err, &budgetErr) || As(err, &routingErr) || As(err, &storyErr)
}

// IsSemanticError returns true if the error is a semantic error
// (NotFoundError or ValidationError).
func IsSemanticError(err error) bool {
	if err == nil {
		return false
	}

	var notFound *NotFoundError
	var validation *ValidationError

	return As(err, &notFound) || As(err, &validation)
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
//
// Example:
//
//	err := errors.Wrap(baseErr, "failed to prepare run")
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
//
// Example:
//
//	err := errors.Wrapf(baseErr, "failed to record outcome for %s", taskID)
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
