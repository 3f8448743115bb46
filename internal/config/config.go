// Package config loads chronicle settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds settings shared by every command. Flags override these.
type Config struct {
	Seed      int64  `env:"SEED" envDefault:"42"`
	DataDir   string `env:"DATA_DIR"`
	DBPath    string `env:"DB_PATH" envDefault:"data/chronicle.db"`
	Realms    int    `env:"REALMS" envDefault:"8"`
	Years     int    `env:"YEARS" envDefault:"400"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

const prefix = "BACKSTORY_"

// Load reads an optional .env file, then the BACKSTORY_* variables.
// Variables already set in the environment win over the file.
func Load(dotenv ...string) (*Config, error) {
	if err := godotenv.Load(dotenv...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}
	return Parse(env.Options{Prefix: prefix})
}

// Parse reads settings with the given options, without touching .env files.
func Parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Realms < 1 {
		return fmt.Errorf("config: %sREALMS must be at least 1, got %d", prefix, c.Realms)
	}
	if c.Years < 2 {
		return fmt.Errorf("config: %sYEARS must be at least 2, got %d", prefix, c.Years)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("config: %sLOG_FORMAT must be text or json, got %q", prefix, c.LogFormat)
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("config: %sDB_PATH is required", prefix)
	}
	return nil
}
