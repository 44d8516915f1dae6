// Package logging provides structured logging for Rudder.
//
// This package wraps Go's log/slog to provide JSON-formatted logs with
// context propagation support for debugging and post-hoc analysis. It is
// designed to help troubleshoot routing and estimation decisions by
// providing structured, filterable logs that can be analyzed after the
// fact.
//
// # Features
//
//   - JSON-formatted structured logging via slog
//   - Configurable log levels (DEBUG, INFO, WARN, ERROR)
//   - Context propagation (task ID, tier, component)
//
// # Thread Safety
//
// All types in this package are safe for concurrent use. The [Logger] type
// uses Go's slog internally which is designed for concurrent access. Child
// loggers created via With* methods share the underlying writer safely.
//
// # Basic Usage
//
// Create a logger for a state directory:
//
//	logger, err := logging.NewLogger(".rudder", "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	// Log messages at various levels
//	logger.Debug("detailed info", "key", "value")
//	logger.Info("routing decided", "tier", "medium")
//	logger.Warn("budget threshold crossed", "threshold", 80)
//	logger.Error("ledger append failed", "error", err.Error())
//
// # Context Propagation
//
// Create child loggers with persistent context attributes:
//
//	taskLogger := logger.WithTask("US-012")
//	tierLogger := taskLogger.WithTier("high")
//	estLogger := tierLogger.WithComponent("estimator")
//
//	// All logs from estLogger will include task_id, tier, and component
//	estLogger.Info("estimate blended", "samples", 4)
//
// Output:
//
//	{"time":"...","level":"INFO","msg":"estimate blended","task_id":"US-012","tier":"high","component":"estimator","samples":4}
//
// # Testing
//
// For testing, use [NopLogger] to discard all log output:
//
//	func TestSomething(t *testing.T) {
//	    logger := logging.NopLogger()
//	    // Use logger in tests without creating files
//	}
//
// # Log Levels
//
// The package defines four log levels:
//
//   - [LevelDebug]: Detailed information for debugging
//   - [LevelInfo]: General operational information (default)
//   - [LevelWarn]: Warning conditions that may need attention
//   - [LevelError]: Error conditions that affect functionality
//
// Use [ValidLevels] to get the list of valid level strings, and [ParseLevel]
// to normalize user-provided level strings.
package logging
