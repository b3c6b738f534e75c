package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const defaultDSN = "host=localhost user=postgres password=postgres dbname=vibeapps port=5432 sslmode=disable TimeZone=UTC"

// Config is read once at startup.
type Config struct {
	DatabaseURL   string
	Port          string
	SessionSecret string
	LogLevel      slog.Level

	CommentMinLength int

	RateLimitPerMinute int
	RateLimitBurst     int

	// Google OAuth; login routes are only mounted when GoogleClientID is set.
	GoogleClientID     string
	GoogleClientSecret string
	SiteURL            string
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using process environment")
	}

	cfg := &Config{
		DatabaseURL:   getenv("DATABASE_URL", defaultDSN),
		Port:          getenv("PORT", "8080"),
		SessionSecret: getenv("SESSION_SECRET", "secret_key_change_me"),

		GoogleClientID:     getenv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getenv("GOOGLE_CLIENT_SECRET", ""),
		SiteURL:            getenv("SITE_URL", "http://localhost:8080"),
	}

	var err error
	if cfg.CommentMinLength, err = getint("COMMENT_MIN_LENGTH", 10); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMinute, err = getint("RATE_LIMIT_PER_MINUTE", 60); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = getint("RATE_LIMIT_BURST", 10); err != nil {
		return nil, err
	}
	if cfg.LogLevel, err = parseLevel(getenv("LOG_LEVEL", "info")); err != nil {
		return nil, err
	}

	if cfg.CommentMinLength < 1 {
		return nil, fmt.Errorf("COMMENT_MIN_LENGTH must be positive, got %d", cfg.CommentMinLength)
	}
	if cfg.RateLimitPerMinute < 1 || cfg.RateLimitBurst < 1 {
		return nil, fmt.Errorf("rate limit settings must be positive")
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}
