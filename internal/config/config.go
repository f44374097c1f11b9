// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// the HTTP server, reference data sources, and optional integrations.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Reference source kinds.
const (
	SourceFile = "file"
	SourceR2   = "r2"
)

// Recommendation defaults.
const (
	DefaultMajorCap        = 5
	DefaultModulesPerMajor = 2
)

// Config holds all application configuration
type Config struct {
	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Data Configuration
	DataDir string // Data directory for the SQLite database

	// Reference data
	Reference ReferenceConfig

	// Recommendation
	MajorCap        int
	ModulesPerMajor int

	// Redis (optional shared cache, empty address disables it)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration

	// Assistant
	Assistant AssistantConfig

	// Sentry
	SentryDSN         string
	SentryEnvironment string
	SentrySampleRate  float64

	// Better Stack
	BetterStackToken    string
	BetterStackEndpoint string

	// Metrics Authentication
	MetricsUsername string // Username for /metrics endpoint Basic Auth (default: "prometheus")
	MetricsPassword string // Password for /metrics endpoint Basic Auth (empty = no auth)
}

// ReferenceConfig selects where occupation mappings, prefix maps, catalogs
// and question banks are read from.
type ReferenceConfig struct {
	Source      string        // "file" or "r2"
	Dir         string        // Root directory when Source is "file"
	CacheTTL    time.Duration // In-process cache lifetime
	LoadTimeout time.Duration // Bound for one recommendation's loads

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2KeyPrefix       string
}

// AssistantConfig configures the OpenAI-compatible chat passthrough.
type AssistantConfig struct {
	APIKey        string
	BaseURL       string
	Model         string
	BurstTokens   float64
	RefillPerHour float64
	DailyLimit    int
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv(EnvPort, "10000"),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, GracefulShutdown),

		DataDir: getEnv(EnvDataDir, getDefaultDataDir()),

		Reference: ReferenceConfig{
			Source:            strings.ToLower(getEnv(EnvReferenceSource, SourceFile)),
			Dir:               getEnv(EnvReferenceDir, "./reference"),
			CacheTTL:          getDurationEnv(EnvReferenceTTL, time.Hour),
			LoadTimeout:       getDurationEnv(EnvReferenceTimeout, ReferenceLoad),
			R2AccountID:       getEnv(EnvR2AccountID, ""),
			R2AccessKeyID:     getEnv(EnvR2AccessKeyID, ""),
			R2SecretAccessKey: getEnv(EnvR2SecretAccessKey, ""),
			R2BucketName:      getEnv(EnvR2BucketName, ""),
			R2KeyPrefix:       getEnv(EnvR2KeyPrefix, ""),
		},

		MajorCap:        getIntEnv(EnvMajorCap, DefaultMajorCap),
		ModulesPerMajor: getIntEnv(EnvModulesPerMajor, DefaultModulesPerMajor),

		RedisAddr:     getEnv(EnvRedisAddr, ""),
		RedisPassword: getEnv(EnvRedisPassword, ""),
		RedisDB:       getIntEnv(EnvRedisDB, 0),
		RedisTTL:      getDurationEnv(EnvRedisTTL, 6*time.Hour),

		Assistant: AssistantConfig{
			APIKey:        getEnv(EnvAssistantAPIKey, ""),
			BaseURL:       getEnv(EnvAssistantBaseURL, "https://api.deepseek.com/v1"),
			Model:         getEnv(EnvAssistantModel, "deepseek-chat"),
			BurstTokens:   getFloatEnv(EnvAssistantBurst, 20),
			RefillPerHour: getFloatEnv(EnvAssistantRefillPerHr, 10),
			DailyLimit:    getIntEnv(EnvAssistantDailyLimit, 50),
		},

		SentryDSN:         getEnv(EnvSentryDSN, ""),
		SentryEnvironment: getEnv(EnvSentryEnvironment, "production"),
		SentrySampleRate:  getFloatEnv(EnvSentrySampleRate, 1.0),

		BetterStackToken:    getEnv(EnvBetterStackToken, ""),
		BetterStackEndpoint: getEnv(EnvBetterStackEndpoint, ""),

		MetricsUsername: getEnv(EnvMetricsUsername, "prometheus"),
		MetricsPassword: getEnv(EnvMetricsPassword, ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New(EnvPort+" is required"))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New(EnvDataDir+" is required"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvShutdownTimeout, c.ShutdownTimeout))
	}
	if err := c.Reference.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("reference config: %w", err))
	}
	if c.MajorCap <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %d", EnvMajorCap, c.MajorCap))
	}
	if c.ModulesPerMajor <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %d", EnvModulesPerMajor, c.ModulesPerMajor))
	}
	if c.RedisAddr != "" && c.RedisTTL <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive when Redis is enabled, got %v", EnvRedisTTL, c.RedisTTL))
	}
	if c.SentrySampleRate < 0 || c.SentrySampleRate > 1 {
		errs = append(errs, fmt.Errorf("%s must be within [0,1], got %v", EnvSentrySampleRate, c.SentrySampleRate))
	}
	if c.Assistant.APIKey != "" {
		if c.Assistant.BurstTokens <= 0 || c.Assistant.RefillPerHour <= 0 {
			errs = append(errs, errors.New("assistant rate limits must be positive"))
		}
		if c.Assistant.DailyLimit < 0 {
			errs = append(errs, fmt.Errorf("%s cannot be negative, got %d", EnvAssistantDailyLimit, c.Assistant.DailyLimit))
		}
	}

	return errors.Join(errs...)
}

// Validate checks the reference source settings.
func (r ReferenceConfig) Validate() error {
	var errs []error

	switch r.Source {
	case SourceFile:
		if r.Dir == "" {
			errs = append(errs, errors.New(EnvReferenceDir+" is required for the file source"))
		}
	case SourceR2:
		if r.R2AccountID == "" || r.R2AccessKeyID == "" || r.R2SecretAccessKey == "" || r.R2BucketName == "" {
			errs = append(errs, errors.New("R2 account id, access key, secret key and bucket are required for the r2 source"))
		}
	default:
		errs = append(errs, fmt.Errorf("%s must be %q or %q, got %q", EnvReferenceSource, SourceFile, SourceR2, r.Source))
	}
	if r.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvReferenceTTL, r.CacheTTL))
	}
	if r.LoadTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvReferenceTimeout, r.LoadTimeout))
	}

	return errors.Join(errs...)
}

// R2Endpoint returns the S3-compatible endpoint for the configured account.
func (r ReferenceConfig) R2Endpoint() string {
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r.R2AccountID)
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getDefaultDataDir returns platform-specific default data directory
func getDefaultDataDir() string {
	if runtime.GOOS == "windows" {
		return "./data"
	}
	return "/data"
}

// SQLitePath returns the full path to the SQLite database file
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "programme-matcher.db")
}

// HasAssistant reports whether the assistant passthrough is configured.
func (c *Config) HasAssistant() bool {
	return c.Assistant.APIKey != ""
}

// HasRedis reports whether the shared reference cache is configured.
func (c *Config) HasRedis() bool {
	return c.RedisAddr != ""
}
