package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	// Verify default routing config
	if !cfg.Routing.Enabled {
		t.Error("Routing.Enabled should be true by default")
	}
	if cfg.Routing.LowMax != 3 {
		t.Errorf("Routing.LowMax = %v, want 3", cfg.Routing.LowMax)
	}
	if cfg.Routing.MediumMax != 7 {
		t.Errorf("Routing.MediumMax = %v, want 7", cfg.Routing.MediumMax)
	}
	if cfg.Routing.DefaultTier != "medium" {
		t.Errorf("Routing.DefaultTier = %q, want %q", cfg.Routing.DefaultTier, "medium")
	}
	if cfg.Routing.Models.Low == "" || cfg.Routing.Models.Medium == "" || cfg.Routing.Models.High == "" {
		t.Error("all tier model bindings should be non-empty by default")
	}

	// Verify default estimation config
	if cfg.Estimation.PerCriterionSeconds != 180 {
		t.Errorf("Estimation.PerCriterionSeconds = %d, want 180", cfg.Estimation.PerCriterionSeconds)
	}
	if cfg.Estimation.PerCriterionTokens != 15000 {
		t.Errorf("Estimation.PerCriterionTokens = %d, want 15000", cfg.Estimation.PerCriterionTokens)
	}

	// Verify default pricing config
	if cfg.Pricing.Medium.Input != 3.00 {
		t.Errorf("Pricing.Medium.Input = %v, want 3.00", cfg.Pricing.Medium.Input)
	}
	if cfg.Pricing.Medium.Output != 15.00 {
		t.Errorf("Pricing.Medium.Output = %v, want 15.00", cfg.Pricing.Medium.Output)
	}
	if cfg.Pricing.Low.Input >= cfg.Pricing.Medium.Input {
		t.Error("low tier input pricing should be cheaper than medium")
	}
	if cfg.Pricing.High.Output <= cfg.Pricing.Medium.Output {
		t.Error("high tier output pricing should be more expensive than medium")
	}

	// Verify default budget config
	if cfg.Budget.DailyLimit != 0 {
		t.Errorf("Budget.DailyLimit = %v, want 0", cfg.Budget.DailyLimit)
	}
	if cfg.Budget.MonthlyLimit != 0 {
		t.Errorf("Budget.MonthlyLimit = %v, want 0", cfg.Budget.MonthlyLimit)
	}
	wantThresholds := []int{80, 90, 100}
	if len(cfg.Budget.AlertThresholds) != len(wantThresholds) {
		t.Fatalf("Budget.AlertThresholds = %v, want %v", cfg.Budget.AlertThresholds, wantThresholds)
	}
	for i, want := range wantThresholds {
		if cfg.Budget.AlertThresholds[i] != want {
			t.Errorf("Budget.AlertThresholds[%d] = %d, want %d", i, cfg.Budget.AlertThresholds[i], want)
		}
	}
	if cfg.Budget.PauseOnExceeded {
		t.Error("Budget.PauseOnExceeded should be false by default")
	}

	// Verify default logging config
	if !cfg.Logging.Enabled {
		t.Error("Logging.Enabled should be true by default")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}

	// Verify default paths config
	if cfg.Paths.DataDir != "" {
		t.Errorf("Paths.DataDir = %q, want empty (use default)", cfg.Paths.DataDir)
	}
}

func TestTierModels_ForTier(t *testing.T) {
	models := TierModels{
		Low:    "model-a",
		Medium: "model-b",
		High:   "model-c",
	}

	tests := []struct {
		tier     string
		expected string
	}{
		{"low", "model-a"},
		{"medium", "model-b"},
		{"high", "model-c"},
		{"", "model-b"},        // Unknown falls back to medium
		{"unknown", "model-b"}, // Unknown falls back to medium
	}

	for _, tt := range tests {
		result := models.ForTier(tt.tier)
		if result != tt.expected {
			t.Errorf("ForTier(%q) = %q, want %q", tt.tier, result, tt.expected)
		}
	}
}

func TestPricingConfig_ForTier(t *testing.T) {
	pricing := PricingConfig{
		Low:    TierPricing{Input: 1, Output: 2},
		Medium: TierPricing{Input: 3, Output: 4},
		High:   TierPricing{Input: 5, Output: 6},
	}

	tests := []struct {
		tier     string
		expected TierPricing
	}{
		{"low", TierPricing{Input: 1, Output: 2}},
		{"medium", TierPricing{Input: 3, Output: 4}},
		{"high", TierPricing{Input: 5, Output: 6}},
		{"", TierPricing{Input: 3, Output: 4}},
		{"nonsense", TierPricing{Input: 3, Output: 4}},
	}

	for _, tt := range tests {
		result := pricing.ForTier(tt.tier)
		if result != tt.expected {
			t.Errorf("ForTier(%q) = %+v, want %+v", tt.tier, result, tt.expected)
		}
	}
}

func TestTierPricing_CostFor(t *testing.T) {
	pricing := TierPricing{Input: 3.00, Output: 15.00}

	tests := []struct {
		name         string
		inputTokens  int
		outputTokens int
		expected     float64
	}{
		{"zero tokens", 0, 0, 0},
		{"one million input", 1000000, 0, 3.00},
		{"one million output", 0, 1000000, 15.00},
		{"mixed", 500000, 100000, 3.00},
		{"small run", 100000, 20000, 0.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cost := pricing.CostFor(tt.inputTokens, tt.outputTokens)
			if diff := cost - tt.expected; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("CostFor(%d, %d) = %v, want %v",
					tt.inputTokens, tt.outputTokens, cost, tt.expected)
			}
		})
	}
}

func TestValidTiers(t *testing.T) {
	tiers := ValidTiers()

	expected := []string{"low", "medium", "high"}
	if len(tiers) != len(expected) {
		t.Errorf("ValidTiers() length = %d, want %d", len(tiers), len(expected))
	}

	for i, tier := range expected {
		if tiers[i] != tier {
			t.Errorf("ValidTiers()[%d] = %q, want %q", i, tiers[i], tier)
		}
	}
}

func TestIsValidTier(t *testing.T) {
	tests := []struct {
		tier  string
		valid bool
	}{
		{"low", true},
		{"medium", true},
		{"high", true},
		{"invalid", false},
		{"", false},
		{"LOW", false}, // Case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.tier, func(t *testing.T) {
			result := IsValidTier(tt.tier)
			if result != tt.valid {
				t.Errorf("IsValidTier(%q) = %v, want %v", tt.tier, result, tt.valid)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	// Test with XDG_CONFIG_HOME set
	t.Run("with XDG_CONFIG_HOME", func(t *testing.T) {
		original := os.Getenv("XDG_CONFIG_HOME")
		defer func() { _ = os.Setenv("XDG_CONFIG_HOME", original) }()

		_ = os.Setenv("XDG_CONFIG_HOME", "/custom/config")
		result := ConfigDir()
		expected := "/custom/config/rudder"
		if result != expected {
			t.Errorf("ConfigDir() = %q, want %q", result, expected)
		}
	})

	// Test without XDG_CONFIG_HOME
	t.Run("without XDG_CONFIG_HOME", func(t *testing.T) {
		original := os.Getenv("XDG_CONFIG_HOME")
		defer func() { _ = os.Setenv("XDG_CONFIG_HOME", original) }()

		_ = os.Setenv("XDG_CONFIG_HOME", "")
		result := ConfigDir()

		// Should be based on home directory
		home, _ := os.UserHomeDir()
		expected := filepath.Join(home, ".config", "rudder")
		if result != expected {
			t.Errorf("ConfigDir() = %q, want %q", result, expected)
		}
	})
}

func TestConfigFile(t *testing.T) {
	original := os.Getenv("XDG_CONFIG_HOME")
	defer func() { _ = os.Setenv("XDG_CONFIG_HOME", original) }()

	_ = os.Setenv("XDG_CONFIG_HOME", "/custom/config")
	result := ConfigFile()
	expected := "/custom/config/rudder/config.yaml"
	if result != expected {
		t.Errorf("ConfigFile() = %q, want %q", result, expected)
	}
}

func TestProjectConfigFile(t *testing.T) {
	result := ProjectConfigFile("/work/project")
	expected := filepath.Join("/work/project", ".rudder", "config.yaml")
	if result != expected {
		t.Errorf("ProjectConfigFile() = %q, want %q", result, expected)
	}
}

func TestGet(t *testing.T) {
	// Set defaults in viper first (normally done by cmd init)
	SetDefaults()

	// Get() should return defaults when no config file exists
	cfg := Get()
	if cfg == nil {
		t.Fatal("Get() returned nil")
	}

	// Should have default values
	if cfg.Routing.DefaultTier != "medium" {
		t.Errorf("Get().Routing.DefaultTier = %q, want %q", cfg.Routing.DefaultTier, "medium")
	}
	if cfg.Routing.LowMax != 3 {
		t.Errorf("Get().Routing.LowMax = %v, want 3", cfg.Routing.LowMax)
	}
}

func TestPathsConfig_ResolveDataDir(t *testing.T) {
	tests := []struct {
		name     string
		dataDir  string
		baseDir  string
		expected string
	}{
		{
			name:     "empty uses default",
			dataDir:  "",
			baseDir:  "/work/project",
			expected: filepath.Join("/work/project", ".rudder"),
		},
		{
			name:     "absolute path used as-is",
			dataDir:  "/var/lib/rudder",
			baseDir:  "/work/project",
			expected: "/var/lib/rudder",
		},
		{
			name:     "relative path resolved against base",
			dataDir:  "state/rudder",
			baseDir:  "/work/project",
			expected: filepath.Join("/work/project", "state", "rudder"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PathsConfig{DataDir: tt.dataDir}
			result := p.ResolveDataDir(tt.baseDir)
			if result != tt.expected {
				t.Errorf("ResolveDataDir(%q) = %q, want %q", tt.baseDir, result, tt.expected)
			}
		})
	}

	t.Run("tilde expands to home", func(t *testing.T) {
		home, err := os.UserHomeDir()
		if err != nil {
			t.Skipf("no home directory: %v", err)
		}

		p := PathsConfig{DataDir: "~/rudder-data"}
		result := p.ResolveDataDir("/work/project")
		expected := filepath.Join(home, "rudder-data")
		if result != expected {
			t.Errorf("ResolveDataDir() = %q, want %q", result, expected)
		}
	})
}

func TestPathsConfig_FilePaths(t *testing.T) {
	p := PathsConfig{}
	base := "/work/project"

	if got := p.LedgerPath(base); got != filepath.Join(base, ".rudder", "ledger.jsonl") {
		t.Errorf("LedgerPath() = %q", got)
	}
	if got := p.SnapshotPath(base); got != filepath.Join(base, ".rudder", "estimates.jsonl") {
		t.Errorf("SnapshotPath() = %q", got)
	}
	if got := p.GuardrailPath(base); got != filepath.Join(base, ".rudder", "guardrails.md") {
		t.Errorf("GuardrailPath() = %q", got)
	}
}
