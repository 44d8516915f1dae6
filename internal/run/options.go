package run

import (
	"time"

	"github.com/Iron-Ham/rudder/internal/logging"
)

type pipelineOptions struct {
	analyzer RiskAnalyzer
	logger   *logging.Logger
	now      func() time.Time
}

// Option customizes a Pipeline.
type Option func(*pipelineOptions)

// WithRiskAnalyzer replaces the built-in scorer-backed analyzer.
func WithRiskAnalyzer(a RiskAnalyzer) Option {
	return func(o *pipelineOptions) { o.analyzer = a }
}

// WithLogger sets the pipeline's logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *pipelineOptions) { o.logger = l }
}

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *pipelineOptions) { o.now = now }
}
