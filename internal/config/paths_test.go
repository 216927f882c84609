package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPaths(t *testing.T) {
	t.Run("relative entries join the base directory", func(t *testing.T) {
		base := t.TempDir()
		paths, err := GetPaths(PathsConfig{
			BaseDir:    base,
			DataDir:    "data",
			OutputDir:  "out",
			FiguresDir: "figures",
			LogsDir:    "logs",
		})
		require.NoError(t, err)

		assert.Equal(t, base, paths.BaseDir)
		assert.Equal(t, filepath.Join(base, "data"), paths.DataDir)
		assert.Equal(t, filepath.Join(base, "out"), paths.OutputDir)
		assert.Equal(t, filepath.Join(base, "figures"), paths.FiguresDir)
		assert.Equal(t, filepath.Join(base, "logs"), paths.LogsDir)
	})

	t.Run("absolute entries are kept", func(t *testing.T) {
		abs := t.TempDir()
		paths, err := GetPaths(PathsConfig{BaseDir: t.TempDir(), DataDir: abs, OutputDir: "o", FiguresDir: "f", LogsDir: "l"})
		require.NoError(t, err)
		assert.Equal(t, abs, paths.DataDir)
	})

	t.Run("empty base uses the working directory", func(t *testing.T) {
		wd, err := os.Getwd()
		require.NoError(t, err)

		paths, err := GetPaths(Default().Paths)
		require.NoError(t, err)
		assert.Equal(t, wd, paths.BaseDir)
		assert.True(t, filepath.IsAbs(paths.OutputDir))
	})
}

func TestPaths_EnsureDirectories(t *testing.T) {
	base := t.TempDir()
	paths, err := GetPaths(PathsConfig{BaseDir: base, DataDir: "data", OutputDir: "output", FiguresDir: "figures", LogsDir: "logs"})
	require.NoError(t, err)

	require.NoError(t, paths.EnsureDirectories())

	for _, dir := range []string{paths.OutputDir, paths.FiguresDir, paths.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err, dir)
		assert.True(t, info.IsDir())
	}
	assert.False(t, FileExists(paths.DataDir), "data directory is input only")
}

func TestPaths_ReportFiles(t *testing.T) {
	paths, err := GetPaths(PathsConfig{BaseDir: t.TempDir(), DataDir: "data", OutputDir: "output", FiguresDir: "figures", LogsDir: "logs"})
	require.NoError(t, err)

	tests := []struct {
		engine string
		stem   string
	}{
		{"pure", "pure_stats_output"},
		{"frame", "frame_stats_output"},
		{"columnar", "columnar_stats_output"},
	}
	for _, tt := range tests {
		t.Run(tt.engine, func(t *testing.T) {
			jsonPath, err := paths.GetReportJSONPath(tt.engine)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(paths.OutputDir, tt.stem+".json"), jsonPath)

			xlsxPath, err := paths.GetReportWorkbookPath(tt.engine)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(paths.OutputDir, tt.stem+".xlsx"), xlsxPath)
		})
	}

	_, err = paths.GetReportJSONPath("pandas")
	assert.Error(t, err)
	_, err = paths.GetReportWorkbookPath("")
	assert.Error(t, err)

	assert.Equal(t, filepath.Join(paths.FiguresDir, "fb_ads"), paths.GetDatasetFiguresDir("fb_ads"))
	assert.Equal(t, filepath.Join(paths.LogsDir, "run.log"), paths.GetLogPath("run.log"))
	assert.Equal(t, filepath.Join(paths.DataDir, "x.csv"), paths.GetDatasetPath(DatasetConfig{File: "x.csv"}))
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "present.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	assert.True(t, FileExists(file))
	assert.False(t, FileExists(filepath.Join(dir, "absent.txt")))
}
