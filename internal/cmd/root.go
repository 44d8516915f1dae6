package cmd

import (
	"strings"

	"github.com/Iron-Ham/rudder/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "rudder",
	Short: "Complexity-aware task routing, estimation, and budget tracking",
	Long: `Rudder scores task complexity, routes work to an execution tier,
and predicts duration, tokens, and cost from past runs. Completed runs
are appended to a local ledger that feeds accuracy reports, routing
analysis, and budget enforcement.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (default is $HOME/.config/rudder/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	rootCmd.PersistentFlags().String("data-dir", "", "Data directory (default is ./.rudder)")
	_ = viper.BindPFlag("paths.data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		// Project-local config wins over the user-level one
		viper.AddConfigPath(".rudder")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/rudder")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("RUDDER")
	// Replace dots with underscores for nested keys in env vars
	// e.g., RUDDER_ROUTING_LOW_MAX for routing.low_max
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
