package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete Rudder configuration
type Config struct {
	Routing    RoutingConfig    `mapstructure:"routing"`
	Estimation EstimationConfig `mapstructure:"estimation"`
	Pricing    PricingConfig    `mapstructure:"pricing"`
	Budget     BudgetConfig     `mapstructure:"budget"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Paths      PathsConfig      `mapstructure:"paths"`
}

// RoutingConfig controls how complexity scores map to execution tiers
type RoutingConfig struct {
	// Enabled controls whether score-based routing is active (default: true)
	// When false, every task is routed to DefaultTier.
	Enabled bool `mapstructure:"enabled"`
	// LowMax is the highest complexity score still routed to the low tier (default: 3)
	LowMax float64 `mapstructure:"low_max"`
	// MediumMax is the highest complexity score still routed to the medium tier (default: 7)
	// Scores above MediumMax are routed to the high tier.
	MediumMax float64 `mapstructure:"medium_max"`
	// DefaultTier is used when routing is disabled or no score is available (default: "medium")
	// Options: "low", "medium", "high"
	DefaultTier string `mapstructure:"default_tier"`
	// Models binds each tier to the executor model it runs on
	Models TierModels `mapstructure:"models"`
}

// TierModels maps each execution tier to a model name.
// The names are opaque to Rudder; they are recorded in ledger entries and
// handed to the external executor verbatim.
type TierModels struct {
	Low    string `mapstructure:"low"`
	Medium string `mapstructure:"medium"`
	High   string `mapstructure:"high"`
}

// ForTier returns the model bound to the given tier name.
// Unknown tier names fall back to the medium binding.
func (m TierModels) ForTier(tier string) string {
	switch tier {
	case "low":
		return m.Low
	case "high":
		return m.High
	default:
		return m.Medium
	}
}

// EstimationConfig controls the base estimate computed per task
type EstimationConfig struct {
	// PerCriterionSeconds is the base duration budgeted per acceptance criterion (default: 180)
	PerCriterionSeconds int `mapstructure:"per_criterion_seconds"`
	// PerCriterionTokens is the base token budget per acceptance criterion (default: 15000)
	PerCriterionTokens int `mapstructure:"per_criterion_tokens"`
}

// PricingConfig holds the per-tier cost rates used to price runs
type PricingConfig struct {
	Low    TierPricing `mapstructure:"low"`
	Medium TierPricing `mapstructure:"medium"`
	High   TierPricing `mapstructure:"high"`
}

// TierPricing is the cost of one execution tier in USD per million tokens
type TierPricing struct {
	// Input is the cost per million input tokens
	Input float64 `mapstructure:"input"`
	// Output is the cost per million output tokens
	Output float64 `mapstructure:"output"`
}

// ForTier returns the pricing for the given tier name.
// Unknown tier names fall back to the medium rates.
func (p PricingConfig) ForTier(tier string) TierPricing {
	switch tier {
	case "low":
		return p.Low
	case "high":
		return p.High
	default:
		return p.Medium
	}
}

// CostFor returns the dollar cost of the given token counts at this
// tier's rates.
func (t TierPricing) CostFor(inputTokens, outputTokens int) float64 {
	inputCost := float64(inputTokens) / 1000000.0 * t.Input
	outputCost := float64(outputTokens) / 1000000.0 * t.Output
	return inputCost + outputCost
}

// BudgetConfig controls spend limits and alerting
type BudgetConfig struct {
	// DailyLimit is the maximum spend per calendar day in USD (default: 0, 0 = no limit)
	DailyLimit float64 `mapstructure:"daily_limit"`
	// MonthlyLimit is the maximum spend per calendar month in USD (default: 0, 0 = no limit)
	MonthlyLimit float64 `mapstructure:"monthly_limit"`
	// AlertThresholds are the spend percentages that raise alerts, in ascending
	// order (default: [80, 90, 100]). Every crossed threshold is reported.
	AlertThresholds []int `mapstructure:"alert_thresholds"`
	// PauseOnExceeded blocks new executions while a budget window is exceeded (default: false)
	// When false, exceeded budgets are surfaced as advisory information only.
	PauseOnExceeded bool `mapstructure:"pause_on_exceeded"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether debug logging is enabled (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	// A value of 0 disables rotation.
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of rotated log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups"`
}

// PathsConfig controls where Rudder stores data
type PathsConfig struct {
	// DataDir is the directory holding the ledger, estimate snapshots, and
	// generated guardrails. If empty, defaults to ".rudder" relative to the
	// project root. Can be an absolute path to store data outside the project.
	// Supports ~ for home directory expansion.
	DataDir string `mapstructure:"data_dir"`
}

// File names inside the resolved data directory.
const (
	LedgerFileName    = "ledger.jsonl"
	SnapshotFileName  = "estimates.jsonl"
	GuardrailFileName = "guardrails.md"
)

// ResolveDataDir returns the resolved data directory path.
// If DataDir is empty, it returns the default path relative to baseDir.
// If DataDir starts with ~, it expands to the user's home directory.
// If DataDir is a relative path, it's resolved relative to baseDir.
func (p *PathsConfig) ResolveDataDir(baseDir string) string {
	if p.DataDir == "" {
		return filepath.Join(baseDir, ".rudder")
	}

	path := p.DataDir

	// Expand ~ to home directory
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	// If relative path, resolve relative to baseDir
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}

	return path
}

// LedgerPath returns the path to the run ledger file
func (p *PathsConfig) LedgerPath(baseDir string) string {
	return filepath.Join(p.ResolveDataDir(baseDir), LedgerFileName)
}

// SnapshotPath returns the path to the estimate snapshot file
func (p *PathsConfig) SnapshotPath(baseDir string) string {
	return filepath.Join(p.ResolveDataDir(baseDir), SnapshotFileName)
}

// GuardrailPath returns the path to the generated guardrails file
func (p *PathsConfig) GuardrailPath(baseDir string) string {
	return filepath.Join(p.ResolveDataDir(baseDir), GuardrailFileName)
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Routing: RoutingConfig{
			Enabled:     true,
			LowMax:      3,
			MediumMax:   7,
			DefaultTier: "medium",
			Models: TierModels{
				Low:    "claude-3-5-haiku-latest",
				Medium: "claude-3-5-sonnet-latest",
				High:   "claude-3-opus-latest",
			},
		},
		Estimation: EstimationConfig{
			PerCriterionSeconds: 180,   // 3 minutes per acceptance criterion
			PerCriterionTokens:  15000, // 15k tokens per acceptance criterion
		},
		Pricing: PricingConfig{
			Low:    TierPricing{Input: 0.80, Output: 4.00},
			Medium: TierPricing{Input: 3.00, Output: 15.00},
			High:   TierPricing{Input: 15.00, Output: 75.00},
		},
		Budget: BudgetConfig{
			DailyLimit:      0, // No limit by default
			MonthlyLimit:    0, // No limit by default
			AlertThresholds: []int{80, 90, 100},
			PauseOnExceeded: false, // Advisory by default
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Paths: PathsConfig{
			DataDir: "", // Empty means use default: .rudder
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Routing defaults
	viper.SetDefault("routing.enabled", defaults.Routing.Enabled)
	viper.SetDefault("routing.low_max", defaults.Routing.LowMax)
	viper.SetDefault("routing.medium_max", defaults.Routing.MediumMax)
	viper.SetDefault("routing.default_tier", defaults.Routing.DefaultTier)
	viper.SetDefault("routing.models.low", defaults.Routing.Models.Low)
	viper.SetDefault("routing.models.medium", defaults.Routing.Models.Medium)
	viper.SetDefault("routing.models.high", defaults.Routing.Models.High)

	// Estimation defaults
	viper.SetDefault("estimation.per_criterion_seconds", defaults.Estimation.PerCriterionSeconds)
	viper.SetDefault("estimation.per_criterion_tokens", defaults.Estimation.PerCriterionTokens)

	// Pricing defaults
	viper.SetDefault("pricing.low.input", defaults.Pricing.Low.Input)
	viper.SetDefault("pricing.low.output", defaults.Pricing.Low.Output)
	viper.SetDefault("pricing.medium.input", defaults.Pricing.Medium.Input)
	viper.SetDefault("pricing.medium.output", defaults.Pricing.Medium.Output)
	viper.SetDefault("pricing.high.input", defaults.Pricing.High.Input)
	viper.SetDefault("pricing.high.output", defaults.Pricing.High.Output)

	// Budget defaults
	viper.SetDefault("budget.daily_limit", defaults.Budget.DailyLimit)
	viper.SetDefault("budget.monthly_limit", defaults.Budget.MonthlyLimit)
	viper.SetDefault("budget.alert_thresholds", defaults.Budget.AlertThresholds)
	viper.SetDefault("budget.pause_on_exceeded", defaults.Budget.PauseOnExceeded)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)

	// Paths defaults
	viper.SetDefault("paths.data_dir", defaults.Paths.DataDir)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate the configuration
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "rudder")
	}
	// Fall back to ~/.config/rudder
	home, err := os.UserHomeDir()
	if err != nil {
		return ".rudder"
	}
	return filepath.Join(home, ".config", "rudder")
}

// ConfigFile returns the path to the user-level config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// ProjectConfigFile returns the path to the project-local config file.
// When present it takes precedence over the user-level config file.
func ProjectConfigFile(baseDir string) string {
	return filepath.Join(baseDir, ".rudder", "config.yaml")
}

// ValidTiers returns the list of valid execution tier names.
// These values must match the tier constants in the routing package
// (defined separately to avoid a circular import).
func ValidTiers() []string {
	return []string{"low", "medium", "high"}
}

// IsValidTier checks if the given tier name is valid
func IsValidTier(tier string) bool {
	for _, valid := range ValidTiers() {
		if tier == valid {
			return true
		}
	}
	return false
}

// DefaultRefreshInterval is how long a cached configuration stays fresh
// before a caller should ask a Provider to re-read it (see Provider).
const DefaultRefreshInterval = 5 * time.Second
