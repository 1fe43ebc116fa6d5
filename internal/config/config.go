// Package config provides configuration management for the weekgrid demo
// daemon. It loads settings from environment variables with sensible
// defaults and validates them before anything starts.
//
// Environment Variables:
//
// Application Settings:
//   - PORT: Server port (default: 8080)
//   - LOG_LEVEL: Logging level (default: info)
//   - DATABASE_PATH: SQLite database file path (default: ./weekgrid.db)
//
// Grid Settings:
//   - MIN_HOUR: First visible hour of the day, 0-23 (default: 0)
//   - MAX_HOUR: Last visible hour boundary, 1-24 (default: 24)
//   - VISIBLE_DAYS: Number of day columns in the viewport (default: 7)
//
// Feed Settings:
//   - ICS_FEED_URL: Optional ICS feed to mirror into the grid
//   - REFRESH_SCHEDULE: Cron expression for feed refresh (default: @every 15m)
package config

import (
	"fmt"
	"os"
	"strconv"

	"weekgrid/internal/common/errors"
)

// Config holds all configuration values for the weekgrid daemon. Load()
// populates it from the environment; Validate() must pass before use.
type Config struct {
	Port         string // Server port number
	LogLevel     string // Logging level (debug, info, warn, error)
	DatabasePath string // Path to the SQLite database file

	MinHour     int // First visible hour of the day
	MaxHour     int // Exclusive last visible hour boundary
	VisibleDays int // Day columns in the viewport

	ICSFeedURL      string // Optional ICS feed URL
	RefreshSchedule string // Cron expression for feed refresh
}

// Load reads the configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:            getEnv("PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		DatabasePath:    getEnv("DATABASE_PATH", "./weekgrid.db"),
		MinHour:         getEnvInt("MIN_HOUR", 0),
		MaxHour:         getEnvInt("MAX_HOUR", 24),
		VisibleDays:     getEnvInt("VISIBLE_DAYS", 7),
		ICSFeedURL:      getEnv("ICS_FEED_URL", ""),
		RefreshSchedule: getEnv("REFRESH_SCHEDULE", "@every 15m"),
	}
}

// Validate checks the configuration for values that would put the grid into
// a broken state. Hour window violations are rejected here, at the
// configuration boundary, rather than deep inside the layout pipeline.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.ConfigError("PORT must not be empty")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return errors.ConfigError(fmt.Sprintf("PORT must be numeric, got %q", c.Port))
	}
	if err := ValidateHourRange(c.MinHour, c.MaxHour); err != nil {
		return err
	}
	if c.VisibleDays < 1 || c.VisibleDays > 31 {
		return errors.ConfigError(fmt.Sprintf("VISIBLE_DAYS must be between 1 and 31, got %d", c.VisibleDays))
	}
	return nil
}

// ValidateHourRange enforces 0 <= minHour < maxHour <= 24. Violating this
// is a caller configuration error and is surfaced synchronously.
func ValidateHourRange(minHour, maxHour int) error {
	if minHour < 0 || minHour > 23 {
		return errors.ValidationError(fmt.Sprintf("minHour must be between 0 and 23, got %d", minHour))
	}
	if maxHour < 1 || maxHour > 24 {
		return errors.ValidationError(fmt.Sprintf("maxHour must be between 1 and 24, got %d", maxHour))
	}
	if minHour >= maxHour {
		return errors.ValidationError(fmt.Sprintf("minHour (%d) must be less than maxHour (%d)", minHour, maxHour))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
