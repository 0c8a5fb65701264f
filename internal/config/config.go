// Package config loads CLI configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the environment-driven defaults for the claim binaries.
// Command-line flags override these per invocation.
type Config struct {
	// DBPath is the SQLite database holding cases and the decision log.
	DBPath string `env:"CLAIMS_DB" envDefault:"claims.db"`

	// Role is the default acting party for claimctl.
	Role string `env:"CLAIMS_ROLE" envDefault:"claimant"`

	// JSONOutput switches inspect output from tables to JSON.
	JSONOutput bool `env:"CLAIMS_JSON" envDefault:"false"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
