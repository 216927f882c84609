package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "descstats/internal/errors"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("STATS_CONFIG", path)
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Output)
	assert.Equal(t, 3, cfg.Report.PreviewGroups)
	assert.True(t, cfg.Report.Workbook)
	assert.Equal(t, 10, cfg.Charts.TopN)
	assert.Equal(t, 50, cfg.Charts.Bins)
	assert.Equal(t, 0.99, cfg.Charts.ClipQuantile)
	assert.Equal(t, 1, cfg.Runner.Parallelism)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "none", cfg.Telemetry.TraceExporter)
	assert.Len(t, cfg.Datasets, 3)

	require.NoError(t, cfg.Validate())
}

func TestDefaultDatasets(t *testing.T) {
	datasets := DefaultDatasets()

	names := make([]string, 0, len(datasets))
	for _, ds := range datasets {
		names = append(names, ds.Name)
		assert.Len(t, ds.GroupKeys, 2, ds.Name)
		assert.Len(t, ds.NumericColumns, 2, ds.Name)
		assert.Len(t, ds.CategoricalColumns, 2, ds.Name)
	}
	assert.Equal(t, []string{"fb_ads", "fb_posts", "tw_posts"}, names)

	cfg := Default()
	ds, ok := cfg.Dataset("tw_posts")
	require.True(t, ok)
	assert.Equal(t, "2024_tw_posts_president_scored_anon.csv", ds.File)
	assert.Equal(t, [][]string{{"twitter_handle"}, {"twitter_handle", "post_id"}}, ds.GroupKeys)

	_, ok = cfg.Dataset("missing")
	assert.False(t, ok)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("STATS_CONFIG", "")
	t.Setenv("STATS_LOGGING_LEVEL", "debug")
	t.Setenv("STATS_RUNNER_PARALLELISM", "3")
	t.Setenv("STATS_SERVER_PORT", "9090")
	t.Setenv("STATS_SERVER_RATE_LIMIT_RPS", "12.5")
	t.Setenv("STATS_SERVER_READ_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 3, cfg.Runner.Parallelism)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 12.5, cfg.Server.RateLimit.RPS)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	// untouched values keep their defaults
	assert.Equal(t, 10, cfg.Charts.TopN)
	assert.Len(t, cfg.Datasets, 3)
}

func TestLoad_FileOverlay(t *testing.T) {
	writeConfigFile(t, `
charts:
  top_n: 5
report:
  preview_groups: 1
datasets:
  - name: sample
    file: sample.csv
    group_keys: [[id]]
    numeric_columns: [value]
    categorical_columns: [kind]
`)
	t.Setenv("STATS_CHARTS_TOP_N", "7")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Charts.TopN, "env wins over file")
	assert.Equal(t, 1, cfg.Report.PreviewGroups)
	assert.Equal(t, 50, cfg.Charts.Bins)
	require.Len(t, cfg.Datasets, 1)
	assert.Equal(t, "sample", cfg.Datasets[0].Name)
	assert.Equal(t, "sample", cfg.Datasets[0].DisplayName())
}

func TestLoad_InvalidFile(t *testing.T) {
	writeConfigFile(t, "charts: [unclosed")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config from file")
	assert.Equal(t, apperrors.ErrTypeConfig, apperrors.TypeOf(err))
}

func TestLoad_ErrorsAreConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		message string
	}{
		{"unparsable env", map[string]string{"STATS_RUNNER_PARALLELISM": "many"}, "failed to load config from env"},
		{"invalid value", map[string]string{"STATS_RUNNER_PARALLELISM": "0"}, "config validation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("STATS_CONFIG", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"bad output", func(c *Config) { c.Logging.Output = "syslog" }},
		{"zero parallelism", func(c *Config) { c.Runner.Parallelism = 0 }},
		{"clip above one", func(c *Config) { c.Charts.ClipQuantile = 1.5 }},
		{"bad exporter", func(c *Config) { c.Telemetry.TraceExporter = "jaeger" }},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
		{"no datasets", func(c *Config) { c.Datasets = nil }},
		{"duplicate dataset", func(c *Config) { c.Datasets = append(c.Datasets, c.Datasets[0]) }},
		{"dataset without file", func(c *Config) { c.Datasets[0].File = "" }},
		{"three numeric columns", func(c *Config) {
			c.Datasets[0].NumericColumns = []string{"a", "b", "c"}
		}},
		{"empty group key set", func(c *Config) { c.Datasets[0].GroupKeys = [][]string{{}} }},
		{"duplicate group keys", func(c *Config) {
			c.Datasets[0].GroupKeys = [][]string{{"a"}, {"a"}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_FillsLoggingDefaults(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = ""
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "logs/descstats.log", cfg.Logging.FilePath)
}

func TestDatasetConfig_ResolvePath(t *testing.T) {
	ds := DatasetConfig{File: "a.csv"}
	assert.Equal(t, filepath.Join("data", "a.csv"), ds.ResolvePath("data"))

	abs := filepath.Join(t.TempDir(), "b.csv")
	ds.File = abs
	assert.Equal(t, abs, ds.ResolvePath("data"))
}
