// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/aristath/turnips/internal/modules/ingestion"
	"github.com/aristath/turnips/internal/modules/patterns"
	"github.com/aristath/turnips/internal/scheduler"
)

// Config holds application configuration
type Config struct {
	DataDir   string // Base directory for the records database (always absolute)
	LogLevel  string
	LogPretty bool
	Port      int
	DevMode   bool

	SourcePath   string // Spreadsheet re-ingested on schedule; empty disables /api/ingest/run
	SourceSheet  string
	SourceLayout string

	MinPrices          int
	MaxPatternDistance int
	UseDistanceMetric  bool
	VerboseParse       bool

	IngestSchedule      string // cron spec; empty disables
	MaintenanceSchedule string
	KeepBatches         int
	KeepSnapshots       int

	Export ExportConfig
}

// ExportConfig configures snapshot upload to an S3 compatible bucket.
type ExportConfig struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// Enabled reports whether a bucket is configured.
func (e ExportConfig) Enabled() bool {
	return e.Bucket != ""
}

// Load reads configuration from the environment, after loading .env if present
func Load() (*Config, error) {
	_ = godotenv.Load()

	absDataDir, err := filepath.Abs(getEnv("TURNIPS_DATA_DIR", "./data"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:   absDataDir,
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getEnvAsBool("LOG_PRETTY", true),
		Port:      getEnvAsInt("PORT", 8080),
		DevMode:   getEnvAsBool("DEV_MODE", false),

		SourcePath:   getEnv("SOURCE_PATH", ""),
		SourceSheet:  getEnv("SOURCE_SHEET", "Archive"),
		SourceLayout: strings.ToLower(getEnv("SOURCE_LAYOUT", string(ingestion.LayoutCommunity))),

		MinPrices:          getEnvAsInt("MIN_NUM_PRICES", 4),
		MaxPatternDistance: getEnvAsInt("MAX_PATTERN_DISTANCE", patterns.DefaultMaxDistance),
		UseDistanceMetric:  getEnvAsBool("USE_DISTANCE_METRIC", true),
		VerboseParse:       getEnvAsBool("VERBOSE_PARSE", false),

		IngestSchedule:      getEnv("INGEST_SCHEDULE", ""),
		MaintenanceSchedule: getEnv("MAINTENANCE_SCHEDULE", "0 0 3 * * *"),
		KeepBatches:         getEnvAsInt("KEEP_BATCHES", 50),
		KeepSnapshots:       getEnvAsInt("KEEP_SNAPSHOTS", 10),

		Export: ExportConfig{
			Bucket:          getEnv("EXPORT_BUCKET", ""),
			Prefix:          getEnv("EXPORT_PREFIX", "snapshots"),
			Region:          getEnv("AWS_REGION", ""),
			Endpoint:        getEnv("EXPORT_ENDPOINT", ""),
			AccessKeyID:     getEnv("EXPORT_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("EXPORT_SECRET_ACCESS_KEY", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d: must be between 1 and 65535", c.Port)
	}
	if _, err := ingestion.ParseLayout(c.SourceLayout); err != nil {
		return fmt.Errorf("invalid SOURCE_LAYOUT: %w", err)
	}
	if c.MinPrices < 0 {
		return fmt.Errorf("invalid MIN_NUM_PRICES %d: must not be negative", c.MinPrices)
	}
	if c.MaxPatternDistance < 0 {
		return fmt.Errorf("invalid MAX_PATTERN_DISTANCE %d: must not be negative", c.MaxPatternDistance)
	}
	if c.KeepBatches < 0 || c.KeepSnapshots < 0 {
		return fmt.Errorf("retention counts must not be negative")
	}

	for name, spec := range map[string]string{
		"INGEST_SCHEDULE":      c.IngestSchedule,
		"MAINTENANCE_SCHEDULE": c.MaintenanceSchedule,
	} {
		if spec == "" {
			continue
		}
		if _, err := scheduler.Parser.Parse(spec); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, spec, err)
		}
	}
	if c.IngestSchedule != "" && c.SourcePath == "" {
		return fmt.Errorf("INGEST_SCHEDULE requires SOURCE_PATH")
	}

	return nil
}

// Layout returns the validated source layout.
func (c *Config) Layout() ingestion.Layout {
	layout, _ := ingestion.ParseLayout(c.SourceLayout)
	return layout
}

// DatabasePath is the records database file.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "records.db")
}

// Helper functions
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
