package cli

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds environment-variable defaults for the command flags, so
// deployments can pin store locations without repeating flags.
type Config struct {
	DB        string `env:"LOGMART_DB" envDefault:"logmart.db"`
	Warehouse string `env:"LOGMART_WAREHOUSE" envDefault:"warehouse.db"`
	Rules     string `env:"LOGMART_RULES"`
}

// ConfigFromEnv loads flag defaults from the environment.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
