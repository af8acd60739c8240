// Package config centralises configuration parsing for the sync engine and
// the synctl binary.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures runtime configuration values for the sync engine.
type Config struct {
	APIBaseURL     string        `yaml:"api_base_url"`
	DatabasePath   string        `yaml:"database_path"`
	UserID         string        `yaml:"user_id"`
	JWTSecret      string        `yaml:"jwt_secret"`
	JWTIssuer      string        `yaml:"jwt_issuer"`
	HTTPTimeout    time.Duration `yaml:"http_timeout"`
	FlushBatchSize int           `yaml:"flush_batch_size"`
	FlushMaxRounds int           `yaml:"flush_max_rounds"`
}

// Load reads environment variables into Config, applying sensible defaults
// for local dev.
func Load() Config {
	return Config{
		APIBaseURL:     getEnv("SYNC_API_BASE_URL", "http://localhost:8000"),
		DatabasePath:   getEnv("SYNC_DATABASE_PATH", defaultDatabasePath()),
		UserID:         getEnv("SYNC_USER_ID", ""),
		JWTSecret:      getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTIssuer:      getEnv("JWT_ISSUER", "workoutsync.local"),
		HTTPTimeout:    getDurationEnv("SYNC_HTTP_TIMEOUT", 10*time.Second),
		FlushBatchSize: getIntEnv("SYNC_FLUSH_BATCH_SIZE", 20),
		FlushMaxRounds: getIntEnv("SYNC_FLUSH_MAX_ROUNDS", 5),
	}
}

// LoadFile layers a YAML config file over the environment-derived defaults.
// Zero values in the file leave the corresponding field untouched.
func LoadFile(path string) (Config, error) {
	cfg := Load()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("parse config file: %w", err)
	}
	cfg.merge(file)
	return cfg, nil
}

func (c *Config) merge(other Config) {
	if other.APIBaseURL != "" {
		c.APIBaseURL = other.APIBaseURL
	}
	if other.DatabasePath != "" {
		c.DatabasePath = other.DatabasePath
	}
	if other.UserID != "" {
		c.UserID = other.UserID
	}
	if other.JWTSecret != "" {
		c.JWTSecret = other.JWTSecret
	}
	if other.JWTIssuer != "" {
		c.JWTIssuer = other.JWTIssuer
	}
	if other.HTTPTimeout > 0 {
		c.HTTPTimeout = other.HTTPTimeout
	}
	if other.FlushBatchSize > 0 {
		c.FlushBatchSize = other.FlushBatchSize
	}
	if other.FlushMaxRounds > 0 {
		c.FlushMaxRounds = other.FlushMaxRounds
	}
}

func defaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "workoutsync.db"
	}
	return home + "/.workoutsync/workoutsync.db"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
