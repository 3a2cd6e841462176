// Package config provides configuration loading for the stock dashboard.
// It loads settings from environment variables, optionally seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Quote source names accepted by QUOTE_SOURCE.
const (
	SourceFinnhub  = "finnhub"
	SourceMock     = "mock"
	SourcePostgres = "postgres"
)

// MaxSymbols caps the tracked symbol set.
const MaxSymbols = 10

// Config holds all application configuration
type Config struct {
	// Quote source selection
	Source  string
	Symbols []string

	// Finnhub (from environment)
	FinnhubAPIKey  string
	FinnhubBaseURL string
	RequestTimeout time.Duration

	// Mock source
	MockDelay time.Duration

	// Postgres source
	DatabaseURL string

	// Dashboard behaviour
	HistoryLength   int
	RefreshInterval time.Duration

	Logging LoggingConfig
}

// LoggingConfig controls the zerolog sink
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, pretty
	Dir    string // rotated log files live here; empty disables the file sink
}

// LoadDotEnv reads a .env file into the process environment if one exists.
// Variables already set in the environment win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}

	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		FinnhubAPIKey:  os.Getenv("FINNHUB_API_KEY"),
		FinnhubBaseURL: getEnv("FINNHUB_BASE_URL", "https://finnhub.io/api/v1"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			Dir:    "logs",
		},
	}
	if dir, ok := os.LookupEnv("LOG_DIR"); ok {
		cfg.Logging.Dir = dir
	}

	cfg.Source = strings.ToLower(strings.TrimSpace(os.Getenv("QUOTE_SOURCE")))
	if cfg.Source == "" {
		cfg.Source = SourceMock
		if cfg.FinnhubAPIKey != "" {
			cfg.Source = SourceFinnhub
		}
	}

	symbols, err := ParseSymbols(getEnv("STOCK_SYMBOLS", "AAPL,MSFT,GOOGL"))
	if err != nil {
		return nil, fmt.Errorf("parse STOCK_SYMBOLS: %w", err)
	}
	cfg.Symbols = symbols

	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.MockDelay, err = getDuration("MOCK_DELAY", time.Second); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getDuration("REFRESH_INTERVAL", 0); err != nil {
		return nil, err
	}

	cfg.HistoryLength = 10
	if v := os.Getenv("HISTORY_LENGTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("HISTORY_LENGTH must be a non-negative integer, got %q", v)
		}
		cfg.HistoryLength = n
	}

	return cfg, nil
}

// Validate checks that the selected source has what it needs
func (c *Config) Validate() error {
	switch c.Source {
	case SourceFinnhub:
		if c.FinnhubAPIKey == "" {
			return fmt.Errorf("FINNHUB_API_KEY is not set")
		}
	case SourcePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is not set")
		}
	case SourceMock:
	default:
		return fmt.Errorf("unknown quote source %q (want %s, %s or %s)",
			c.Source, SourceFinnhub, SourceMock, SourcePostgres)
	}

	if len(c.Symbols) == 0 {
		return fmt.Errorf("no symbols configured")
	}
	if len(c.Symbols) > MaxSymbols {
		return fmt.Errorf("too many symbols: %d (max %d)", len(c.Symbols), MaxSymbols)
	}
	if c.RefreshInterval < 0 {
		return fmt.Errorf("refresh interval must not be negative")
	}

	return nil
}

// ParseSymbols splits a comma separated list into trimmed, upper-cased,
// de-duplicated tickers. Order of first appearance is kept.
func ParseSymbols(s string) ([]string, error) {
	seen := make(map[string]bool)
	var symbols []string

	for _, part := range strings.Split(s, ",") {
		sym := strings.ToUpper(strings.TrimSpace(part))
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		symbols = append(symbols, sym)
	}

	if len(symbols) > MaxSymbols {
		return nil, fmt.Errorf("too many symbols: %d (max %d)", len(symbols), MaxSymbols)
	}

	return symbols, nil
}

// getEnv gets environment variable with fallback
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}
