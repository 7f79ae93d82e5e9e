// internal/config/config.go

// Package config resolves server settings from the environment. A .env file
// in the working directory is folded in automatically via godotenv.
package config

import (
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

// Config is everything the process needs to come up.
type Config struct {
	// GameAddr is the TCP listen address for the game protocol.
	GameAddr string
	// StatusAddr is the HTTP listen address for the diagnostics surface.
	// Empty disables it.
	StatusAddr string
	// LogLevel is the logrus level name, e.g. "debug" or "info".
	LogLevel logrus.Level
}

// FromEnv reads PORT, DIAG_PORT, and LOG_LEVEL, falling back to the
// defaults the mod ships with. Diagnostics stay off unless a port is set.
func FromEnv() Config {
	cfg := Config{
		GameAddr: ":" + getenv("PORT", "8788"),
		LogLevel: logrus.InfoLevel,
	}
	if port := os.Getenv("DIAG_PORT"); port != "" && port != "0" {
		cfg.StatusAddr = ":" + port
	}
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if level, err := logrus.ParseLevel(raw); err == nil {
			cfg.LogLevel = level
		}
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
