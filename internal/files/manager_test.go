package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"descstats/internal/config"
)

func testPaths(t *testing.T) *config.Paths {
	t.Helper()
	paths, err := config.GetPaths(config.PathsConfig{
		BaseDir:    t.TempDir(),
		DataDir:    "data",
		OutputDir:  "output",
		FiguresDir: "figures",
		LogsDir:    "logs",
	})
	require.NoError(t, err)
	return paths
}

func TestNewManager(t *testing.T) {
	paths := testPaths(t)

	manager := NewManager(paths, nil)
	assert.NotNil(t, manager)
	assert.Equal(t, paths, manager.paths)
	assert.NotNil(t, manager.logger)
}

func TestManager_ResolvePath(t *testing.T) {
	paths := testPaths(t)
	manager := NewManager(paths, nil)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"output prefix", "output/pure_stats_output.json", filepath.Join(paths.OutputDir, "pure_stats_output.json")},
		{"figures prefix", "figures/fb_ads/a.png", filepath.Join(paths.FiguresDir, "fb_ads", "a.png")},
		{"logs prefix", "logs/run.log", filepath.Join(paths.LogsDir, "run.log")},
		{"data default", "ads.csv", filepath.Join(paths.DataDir, "ads.csv")},
		{"absolute", paths.BaseDir, paths.BaseDir},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, manager.resolvePath(tt.in))
		})
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output")
	path := filepath.Join(dir, "report.json")

	require.NoError(t, WriteFileAtomic(path, []byte(`{"a":1}`)))
	require.NoError(t, WriteFileAtomic(path, []byte(`{"a":2}`)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"a":2}`, string(data))

	// overwrite leaves no temp files behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "report.json", entries[0].Name())
}

func TestWriteFileAtomic_Mode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.json")
	require.NoError(t, WriteFileAtomic(path, []byte("{}")))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
}

func TestManager_ResetDirectory(t *testing.T) {
	paths := testPaths(t)
	manager := NewManager(paths, nil)

	stale := filepath.Join(paths.FiguresDir, "fb_ads", "old", "stale.png")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0755))
	require.NoError(t, os.WriteFile(stale, []byte("x"), 0644))

	require.NoError(t, manager.ResetDirectory("figures/fb_ads"))

	entries, err := os.ReadDir(filepath.Join(paths.FiguresDir, "fb_ads"))
	require.NoError(t, err)
	assert.Empty(t, entries)

	// a missing directory is simply created
	require.NoError(t, manager.ResetDirectory("figures/tw_posts"))
	assert.DirExists(t, filepath.Join(paths.FiguresDir, "tw_posts"))
}
