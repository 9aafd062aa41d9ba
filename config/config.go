// Package config loads server configuration from the environment.
// Defaults keep the server runnable with nothing set.
package config

import (
	"github.com/caarlos0/env/v11"
)

type Config struct {
	Server struct {
		Port         int `env:"PORT" envDefault:"8080"`
		ReadTimeout  int `env:"READ_TIMEOUT" envDefault:"15"`
		WriteTimeout int `env:"WRITE_TIMEOUT" envDefault:"15"`
		IdleTimeout  int `env:"IDLE_TIMEOUT" envDefault:"60"`
	} `envPrefix:"SERVER_"`
	Database struct {
		// Path to the SQLite database file; ":memory:" for ephemeral runs.
		Path string `env:"PATH" envDefault:"vacation.db"`
	} `envPrefix:"DATABASE_"`
	SMTP struct {
		// Notices are disabled while Host is empty.
		Host     string `env:"HOST"`
		Port     int    `env:"PORT" envDefault:"465"`
		Username string `env:"USERNAME"`
		Password string `env:"PASSWORD"`
		From     string `env:"FROM" envDefault:"hr@localhost"`
	} `envPrefix:"SMTP_"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
