package config

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

const (
	defaultServerPort        = "8080"
	defaultPasswordMinLength = 8
)

// AppConfig holds the HTTP, hashing and logging settings
type AppConfig struct {
	ServerPort        string
	GinMode           string
	BcryptCost        int
	PasswordMinLength int
	LogLevel          string
	LogFormat         string

	// Warnings collects values that were invalid and replaced by defaults.
	Warnings []string
}

// LoadAppConfig reads application settings from environment variables,
// falling back to defaults for anything unset or invalid
func LoadAppConfig() *AppConfig {
	cfg := &AppConfig{
		ServerPort:        os.Getenv("SERVER_PORT"),
		GinMode:           os.Getenv("GIN_MODE"),
		BcryptCost:        bcrypt.DefaultCost,
		PasswordMinLength: defaultPasswordMinLength,
		LogLevel:          os.Getenv("LOG_LEVEL"),
		LogFormat:         os.Getenv("LOG_FORMAT"),
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = defaultServerPort
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "json"
	}

	if v := os.Getenv("BCRYPT_COST"); v != "" {
		cost, err := strconv.Atoi(v)
		if err != nil || cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
			cfg.Warnings = append(cfg.Warnings,
				fmt.Sprintf("invalid BCRYPT_COST %q, defaulting to %d", v, bcrypt.DefaultCost))
		} else {
			cfg.BcryptCost = cost
		}
	}

	if v := os.Getenv("PASSWORD_MIN_LENGTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			cfg.Warnings = append(cfg.Warnings,
				fmt.Sprintf("invalid PASSWORD_MIN_LENGTH %q, defaulting to %d", v, defaultPasswordMinLength))
		} else {
			cfg.PasswordMinLength = n
		}
	}

	return cfg
}
