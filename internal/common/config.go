package common

import (
	"os"
	"strconv"
	"time"
)

// Baseline and legacy operating points for evaluation success. Both are
// observed acceptable; the active one comes from configuration.
const (
	DefaultSuccessThreshold = 0.3
	LegacySuccessThreshold  = 0.5
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Match    MatchConfig
	Export   ExportConfig
}

// DatabaseConfig holds store-related configuration
type DatabaseConfig struct {
	DSN             string
	SQLitePath      string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// MatchConfig holds matching-engine configuration
type MatchConfig struct {
	SuccessThreshold float64 // fraction of fields that must match for success
	MinSelectScore   float64 // floor for template auto-selection
	DebugSampleLen   int     // chars of raw text kept in debug info
}

// ExportConfig holds export-related configuration
type ExportConfig struct {
	SheetName string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", ""),
			SQLitePath:      getEnv("SQLITE_PATH", "./templates.db"),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Match: MatchConfig{
			SuccessThreshold: getEnvAsFloat64("MATCH_SUCCESS_THRESHOLD", DefaultSuccessThreshold),
			MinSelectScore:   getEnvAsFloat64("MATCH_MIN_SCORE", 0.3),
			DebugSampleLen:   getEnvAsInt("DEBUG_SAMPLE_LEN", 500),
		},
		Export: ExportConfig{
			SheetName: getEnv("EXPORT_SHEET_NAME", "Test Results"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Match.SuccessThreshold < 0 || c.Match.SuccessThreshold > 1 {
		return NewAppError("CONFIG_ERROR", "MATCH_SUCCESS_THRESHOLD must be in [0,1]", ErrInvalidInput)
	}
	if c.Match.MinSelectScore < 0 || c.Match.MinSelectScore > 1 {
		return NewAppError("CONFIG_ERROR", "MATCH_MIN_SCORE must be in [0,1]", ErrInvalidInput)
	}
	if c.Match.DebugSampleLen < 0 {
		return NewAppError("CONFIG_ERROR", "DEBUG_SAMPLE_LEN must be >= 0", ErrInvalidInput)
	}
	return nil
}
