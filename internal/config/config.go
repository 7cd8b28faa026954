// Package config loads process settings from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"mangashelf/internal/ndl"
)

// Settings holds everything the process needs at boot.
type Settings struct {
	Addr           string
	DBPath         string
	NDLBaseURL     string
	RequestPolicy  ndl.RequestPolicy
	AllowedOrigins []string
}

// Load reads settings from environment variables, applying defaults for
// anything unset, and validates the result.
func Load() (Settings, error) {
	settings := Settings{
		Addr:          getEnv("APP_ADDR", ":8080"),
		DBPath:        getEnv("DB_PATH", "data/library.db"),
		NDLBaseURL:    getEnv("NDL_BASE_URL", "https://ndlsearch.ndl.go.jp/api/opensearch"),
		RequestPolicy: ndl.DefaultRequestPolicy(),
	}

	if raw := os.Getenv("NDL_TIMEOUT_SECONDS"); raw != "" {
		timeout, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Settings{}, fmt.Errorf("invalid NDL_TIMEOUT_SECONDS %q: %w", raw, err)
		}
		settings.RequestPolicy.TimeoutSeconds = timeout
	}
	if raw := os.Getenv("NDL_MAX_RETRIES"); raw != "" {
		retries, err := strconv.Atoi(raw)
		if err != nil {
			return Settings{}, fmt.Errorf("invalid NDL_MAX_RETRIES %q: %w", raw, err)
		}
		settings.RequestPolicy.MaxRetries = retries
	}
	if raw := os.Getenv("ALLOWED_ORIGINS"); raw != "" {
		for _, origin := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				settings.AllowedOrigins = append(settings.AllowedOrigins, trimmed)
			}
		}
	}

	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// Validate ensures the settings are coherent.
func (s Settings) Validate() error {
	if s.Addr == "" {
		return fmt.Errorf("listen address cannot be empty")
	}
	if s.DBPath == "" {
		return fmt.Errorf("db path cannot be empty")
	}
	parsed, err := url.Parse(s.NDLBaseURL)
	if err != nil {
		return fmt.Errorf("invalid NDL base URL: %w", err)
	}
	if parsed.Host == "" {
		return fmt.Errorf("NDL base URL must include a host")
	}
	if s.RequestPolicy.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if s.RequestPolicy.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
