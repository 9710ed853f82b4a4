package cmd

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"
)

// envConfig holds the environment overrides. A flag set on the command line
// beats the environment, which beats the built-in default.
type envConfig struct {
	ResultsDir string `env:"SPSSIM_RESULTS_DIR"`
	Workers    int    `env:"SPSSIM_WORKERS"`
	LogLevel   string `env:"SPSSIM_LOG_LEVEL"`
}

// parseEnv loads envConfig from the process environment.
func parseEnv() (envConfig, error) {
	var cfg envConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// resolveString returns the flag value when the flag was set explicitly or
// the environment value is empty, and the environment value otherwise.
func resolveString(cmd *cobra.Command, flag, flagValue, envValue string) string {
	if cmd.Flags().Changed(flag) || envValue == "" {
		return flagValue
	}
	return envValue
}

// resolveInt is resolveString for positive integers; zero means unset.
func resolveInt(cmd *cobra.Command, flag string, flagValue, envValue int) int {
	if cmd.Flags().Changed(flag) || envValue <= 0 {
		return flagValue
	}
	return envValue
}
