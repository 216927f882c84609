package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"descstats/internal/cli"
	apperrors "descstats/internal/errors"
	"descstats/internal/infrastructure"
	"descstats/internal/report"
)

const configYAML = `logging:
  level: error
telemetry:
  metrics: false
report:
  workbook: false
datasets:
  - name: tw_posts
    file: tweets.csv
    group_keys: [[twitter_handle]]
    numeric_columns: [likeCount]
    categorical_columns: [lang]
`

const tweetsCSV = `twitter_handle,post_id,lang,likeCount
h1,t1,en,4
h1,t2,fr,8
h2,t3,en,12
`

func TestRun(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "data"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "data", "tweets.csv"), []byte(tweetsCSV), 0644))
	cfgPath := filepath.Join(base, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configYAML), 0644))

	t.Setenv("STATS_CONFIG", cfgPath)
	t.Setenv("STATS_PATHS_BASE_DIR", base)
	infrastructure.ResetLoggerForTesting()
	t.Cleanup(infrastructure.ResetLoggerForTesting)

	require.NoError(t, run(context.Background(), &cli.Flags{}, cli.StatsOptions{}))

	rep, err := report.ReadJSON(filepath.Join(base, "output", "pure_stats_output.json"))
	require.NoError(t, err)
	assert.Equal(t, []string{"tw_posts"}, rep.Keys())
	assert.NoFileExists(t, filepath.Join(base, "output", "pure_stats_output.xlsx"))
}

func TestRun_UnknownDataset(t *testing.T) {
	t.Setenv("STATS_CONFIG", "")
	err := run(context.Background(), &cli.Flags{Datasets: "ig_posts"}, cli.StatsOptions{})
	assert.ErrorContains(t, err, "unknown dataset")
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig), "Exit prints the usage hint for %v", err)
}
