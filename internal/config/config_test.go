package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/turnips/internal/modules/ingestion"
)

func TestLoad_Defaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	t.Setenv("TURNIPS_DATA_DIR", dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.DirExists(t, dir)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.LogPretty)
	assert.Equal(t, "Archive", cfg.SourceSheet)
	assert.Equal(t, ingestion.LayoutCommunity, cfg.Layout())
	assert.Equal(t, 4, cfg.MinPrices)
	assert.Equal(t, 4, cfg.MaxPatternDistance)
	assert.True(t, cfg.UseDistanceMetric)
	assert.False(t, cfg.VerboseParse)
	assert.Empty(t, cfg.IngestSchedule)
	assert.False(t, cfg.Export.Enabled())
	assert.Equal(t, filepath.Join(dir, "records.db"), cfg.DatabasePath())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("TURNIPS_DATA_DIR", t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("SOURCE_PATH", "/sheets/turnips.xlsx")
	t.Setenv("SOURCE_LAYOUT", "Personal")
	t.Setenv("MIN_NUM_PRICES", "6")
	t.Setenv("USE_DISTANCE_METRIC", "false")
	t.Setenv("INGEST_SCHEDULE", "@every 1h")
	t.Setenv("EXPORT_BUCKET", "turnip-snapshots")
	t.Setenv("EXPORT_ENDPOINT", "http://localhost:9000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, ingestion.LayoutPersonal, cfg.Layout())
	assert.Equal(t, 6, cfg.MinPrices)
	assert.False(t, cfg.UseDistanceMetric)
	assert.Equal(t, "@every 1h", cfg.IngestSchedule)
	assert.True(t, cfg.Export.Enabled())
	assert.Equal(t, "http://localhost:9000", cfg.Export.Endpoint)
}

func TestLoad_MalformedNumbersFallBack(t *testing.T) {
	t.Setenv("TURNIPS_DATA_DIR", t.TempDir())
	t.Setenv("PORT", "eighty")
	t.Setenv("LOG_PRETTY", "maybe")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.True(t, cfg.LogPretty)
}

func validConfig() Config {
	return Config{
		Port:                8080,
		SourceLayout:        "community",
		MinPrices:           4,
		MaxPatternDistance:  4,
		MaintenanceSchedule: "0 0 3 * * *",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"port too low", func(c *Config) { c.Port = 0 }, "invalid PORT"},
		{"port too high", func(c *Config) { c.Port = 70000 }, "invalid PORT"},
		{"unknown layout", func(c *Config) { c.SourceLayout = "diagonal" }, "invalid SOURCE_LAYOUT"},
		{"negative min prices", func(c *Config) { c.MinPrices = -1 }, "MIN_NUM_PRICES"},
		{"negative distance", func(c *Config) { c.MaxPatternDistance = -2 }, "MAX_PATTERN_DISTANCE"},
		{"negative retention", func(c *Config) { c.KeepBatches = -1 }, "retention"},
		{"bad schedule", func(c *Config) { c.MaintenanceSchedule = "every tuesday" }, "MAINTENANCE_SCHEDULE"},
		{"schedule without source", func(c *Config) { c.IngestSchedule = "@hourly" }, "requires SOURCE_PATH"},
		{"five field schedule", func(c *Config) { c.MaintenanceSchedule = "0 3 * * *" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
