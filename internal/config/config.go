package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config is the process configuration, populated from the environment.
type Config struct {
	Port      string `env:"AIMASTER_PORT" envDefault:"8080"`
	DBPath    string `env:"AIMASTER_DB_PATH" envDefault:"aimaster.db"`
	StaticDir string `env:"AIMASTER_STATIC_DIR" envDefault:"web/static"`
	BaseURL   string `env:"AIMASTER_BASE_URL" envDefault:""`
	LogLevel  string `env:"AIMASTER_LOG_LEVEL" envDefault:"info"`
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
