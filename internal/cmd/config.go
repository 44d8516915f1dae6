package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/rudder/internal/config"
	"github.com/Iron-Ham/rudder/internal/routing"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify Rudder configuration",
	Long: `View or modify Rudder configuration.

Without arguments, displays the current configuration.
Use subcommands to modify settings or create a config file.

Configuration is read from .rudder/config.yaml in the project first,
then from the user-level config file. Environment variables with the
RUDDER_ prefix override both.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file, or in the
project-local .rudder/config.yaml with --local.

Keys use dot notation, e.g.:
  rudder config set routing.medium_max 6.5
  rudder config set budget.daily_limit 10
  rudder config set --local routing.default_tier high

Valid keys:
  routing.enabled                  - Route by complexity score (true/false)
  routing.low_max                  - Highest score still routed to the low tier
  routing.medium_max               - Highest score still routed to the medium tier
  routing.default_tier             - Tier when routing is disabled or unscored
                                     Options: low, medium, high
  routing.models.low               - Model bound to the low tier
  routing.models.medium            - Model bound to the medium tier
  routing.models.high              - Model bound to the high tier
  estimation.per_criterion_seconds - Base seconds per acceptance criterion
  estimation.per_criterion_tokens  - Base tokens per acceptance criterion
  budget.daily_limit               - Max USD per day (0 = no limit)
  budget.monthly_limit             - Max USD per month (0 = no limit)
  budget.pause_on_exceeded         - Block runs over budget (true/false)
  logging.enabled                  - Write debug logs (true/false)
  logging.level                    - Log level: debug, info, warn, error
  paths.data_dir                   - Where ledger and snapshots live`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long: `Create a commented config file with all available options: the
user-level file by default, or .rudder/config.yaml with --local.`,
	RunE: runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

var (
	configLocal bool
	configJSON  bool
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)

	configCmd.Flags().BoolVar(&configJSON, "json", false, "Output as JSON")
	configShowCmd.Flags().BoolVar(&configJSON, "json", false, "Output as JSON")
	configSetCmd.Flags().BoolVar(&configLocal, "local", false, "Write to the project-local .rudder/config.yaml")
	configInitCmd.Flags().BoolVar(&configLocal, "local", false, "Create the project-local .rudder/config.yaml")
}

// targetConfigFile resolves where set and init should write: the
// project-local file with --local, the user-level file otherwise.
func targetConfigFile() (string, error) {
	if configLocal {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
		return config.ProjectConfigFile(cwd), nil
	}
	return config.ConfigFile(), nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	if configJSON {
		return printJSON(cfg)
	}

	fmt.Println("Current configuration:")
	fmt.Println()

	// Show where config is being read from
	if viper.ConfigFileUsed() != "" {
		fmt.Printf("Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Printf("Config file: (none - using defaults)\n")
	}
	fmt.Println()

	fmt.Println("routing:")
	fmt.Printf("  enabled: %v\n", cfg.Routing.Enabled)
	fmt.Printf("  low_max: %g\n", cfg.Routing.LowMax)
	fmt.Printf("  medium_max: %g\n", cfg.Routing.MediumMax)
	fmt.Printf("  default_tier: %s\n", cfg.Routing.DefaultTier)
	fmt.Println("  models:")
	fmt.Printf("    low: %s\n", cfg.Routing.Models.Low)
	fmt.Printf("    medium: %s\n", cfg.Routing.Models.Medium)
	fmt.Printf("    high: %s\n", cfg.Routing.Models.High)

	fmt.Println("estimation:")
	fmt.Printf("  per_criterion_seconds: %d\n", cfg.Estimation.PerCriterionSeconds)
	fmt.Printf("  per_criterion_tokens: %d\n", cfg.Estimation.PerCriterionTokens)

	fmt.Println("pricing:")
	for _, tier := range []struct {
		name string
		t    config.TierPricing
	}{
		{"low", cfg.Pricing.Low},
		{"medium", cfg.Pricing.Medium},
		{"high", cfg.Pricing.High},
	} {
		fmt.Printf("  %s:\n", tier.name)
		fmt.Printf("    input: %g\n", tier.t.Input)
		fmt.Printf("    output: %g\n", tier.t.Output)
	}

	fmt.Println("budget:")
	fmt.Printf("  daily_limit: %g\n", cfg.Budget.DailyLimit)
	fmt.Printf("  monthly_limit: %g\n", cfg.Budget.MonthlyLimit)
	fmt.Printf("  alert_thresholds: %v\n", cfg.Budget.AlertThresholds)
	fmt.Printf("  pause_on_exceeded: %v\n", cfg.Budget.PauseOnExceeded)

	fmt.Println("logging:")
	fmt.Printf("  enabled: %v\n", cfg.Logging.Enabled)
	fmt.Printf("  level: %s\n", cfg.Logging.Level)

	fmt.Println("paths:")
	fmt.Printf("  data_dir: %q\n", cfg.Paths.DataDir)

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	// Validate the key exists
	validKeys := map[string]string{
		"routing.enabled":                  "bool",
		"routing.low_max":                  "float",
		"routing.medium_max":               "float",
		"routing.default_tier":             "tier",
		"routing.models.low":               "string",
		"routing.models.medium":            "string",
		"routing.models.high":              "string",
		"estimation.per_criterion_seconds": "int",
		"estimation.per_criterion_tokens":  "int",
		"budget.daily_limit":               "float",
		"budget.monthly_limit":             "float",
		"budget.pause_on_exceeded":         "bool",
		"logging.enabled":                  "bool",
		"logging.level":                    "level",
		"paths.data_dir":                   "string",
	}

	keyType, ok := validKeys[key]
	if !ok {
		return fmt.Errorf("unknown configuration key: %s\nRun 'rudder config set --help' to see valid keys", key)
	}

	// Validate the value based on type
	var typedValue interface{}
	switch keyType {
	case "string":
		typedValue = value
	case "bool":
		if value != "true" && value != "false" {
			return fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		typedValue = value == "true"
	case "int":
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: expected integer", key)
		}
		if intVal < 0 {
			return fmt.Errorf("invalid value for %s: must be non-negative", key)
		}
		typedValue = intVal
	case "float":
		floatVal, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid value for %s: expected number", key)
		}
		if floatVal < 0 {
			return fmt.Errorf("invalid value for %s: must be non-negative", key)
		}
		typedValue = floatVal
	case "tier":
		tier, ok := routing.ParseTier(value)
		if !ok {
			return fmt.Errorf("invalid value for %s: %s\nValid options: low, medium, high", key, value)
		}
		typedValue = tier.String()
	case "level":
		level := strings.ToLower(value)
		switch level {
		case "debug", "info", "warn", "error":
			typedValue = level
		default:
			return fmt.Errorf("invalid value for %s: %s\nValid options: debug, info, warn, error", key, value)
		}
	}

	configFile, err := targetConfigFile()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set the value in viper
	viper.Set(key, typedValue)

	// Write to config file
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Set %s = %v\n", key, typedValue)
	fmt.Printf("Config saved to %s\n", configFile)

	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configFile, err := targetConfigFile()
	if err != nil {
		return err
	}

	// Check if config file already exists
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'rudder config set' to modify values", configFile)
	}

	// Create config directory
	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Generate a commented config file
	configContent := `# Rudder configuration
# Project-local .rudder/config.yaml takes precedence over the user file.
# Environment variables with the RUDDER_ prefix override both.

# Complexity-based tier routing
routing:
  # Route by score (false sends everything to default_tier)
  enabled: true
  # Highest score still routed to the low tier
  low_max: 3
  # Highest score still routed to the medium tier; above it is high
  medium_max: 7
  # Tier used when routing is disabled or a task has no score
  # Options: low, medium, high
  default_tier: medium
  # Model bound to each tier; recorded in the ledger and handed to the
  # executor verbatim
  models:
    low: claude-3-5-haiku-latest
    medium: claude-3-5-sonnet-latest
    high: claude-3-opus-latest

# Base estimate per acceptance criterion
estimation:
  per_criterion_seconds: 180
  per_criterion_tokens: 15000

# Cost rates in USD per million tokens
pricing:
  low:
    input: 0.80
    output: 4.00
  medium:
    input: 3.00
    output: 15.00
  high:
    input: 15.00
    output: 75.00

# Spend limits in USD (0 = no limit)
budget:
  daily_limit: 0
  monthly_limit: 0
  # Spend percentages that raise alerts
  alert_thresholds: [80, 90, 100]
  # Block new runs while a window is over its limit
  pause_on_exceeded: false

# Debug logging, written under the data directory
logging:
  enabled: true
  level: info

# Where the ledger, estimate snapshots, and guardrails live.
# Empty means .rudder relative to the project root.
paths:
  data_dir: ""
`

	if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Created config file at %s\n", configFile)
	fmt.Println("Edit this file to customize Rudder's behavior.")

	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	configFile := config.ConfigFile()

	if viper.ConfigFileUsed() != "" {
		fmt.Printf("Active config: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Printf("Default path: %s (not created)\n", configFile)
	}

	// Also show config search paths
	fmt.Println("\nSearch paths:")
	fmt.Printf("  1. ./.rudder/config.yaml (project-local)\n")
	fmt.Printf("  2. %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
	fmt.Printf("  3. $HOME/.config/rudder/config.yaml\n")
	fmt.Println("\nEnvironment variables: RUDDER_* (e.g., RUDDER_BUDGET_DAILY_LIMIT)")

	return nil
}
