package charts

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"descstats/internal/config"
	apperrors "descstats/internal/errors"
	"descstats/internal/files"
	"descstats/internal/table"
)

func TestHasData(t *testing.T) {
	assert.False(t, HasData([]float64{}))
	assert.False(t, HasData([]float64{3}))
	assert.False(t, HasData([]float64{3, 3, 3}))
	assert.True(t, HasData([]float64{3, 3, 4}))
	assert.False(t, HasData([]string{"en", "en"}))
	assert.True(t, HasData([]string{"en", "fr"}))
}

func TestQuantile(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		q      float64
		want   float64
	}{
		{"median odd", []float64{3, 1, 2}, 0.5, 2},
		{"median even", []float64{4, 1, 3, 2}, 0.5, 2.5},
		{"interpolates", []float64{0, 10}, 0.99, 9.9},
		{"lower bound", []float64{5, 1, 9}, 0, 1},
		{"upper bound", []float64{5, 1, 9}, 1, 9},
		{"single value", []float64{7}, 0.99, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Quantile(tt.values, tt.q), 1e-12)
		})
	}

	assert.True(t, math.IsNaN(Quantile(nil, 0.5)))
}

func TestQuantile_DoesNotReorderInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Quantile(values, 0.5)
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestClipAbove(t *testing.T) {
	values := make([]float64, 0, 101)
	for i := 0; i <= 100; i++ {
		values = append(values, float64(i))
	}
	values = append(values, 10000)

	clipped := ClipAbove(values, Quantile(values, 0.99))
	assert.Len(t, clipped, 100)
	assert.NotContains(t, clipped, 10000.0)
}

func TestPrimitives_WritePNG(t *testing.T) {
	dir := t.TempDir()
	size := Size{Width: 4, Height: 3}

	hist := filepath.Join(dir, "h.png")
	require.NoError(t, Histogram([]float64{1, 2, 2, 3, 3, 3, 50}, "x distribution", hist, 10, 0.99, size))

	box := filepath.Join(dir, "b.png")
	require.NoError(t, BoxPlot([]float64{1, 2, 3, 4, 5}, "x boxplot", box, size))

	bar := filepath.Join(dir, "c.png")
	require.NoError(t, TopBar([]string{"en", "fr", "en", strings.Repeat("long", 20)}, 10, "Top 10 lang", bar, size))

	for _, path := range []string{hist, box, bar} {
		assertPNG(t, path)
	}
}

func TestPrimitives_RejectEmptyInput(t *testing.T) {
	dir := t.TempDir()
	size := Size{Width: 4, Height: 3}

	err := Histogram(nil, "t", filepath.Join(dir, "h.png"), 10, 0.99, size)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeRender))

	err = BoxPlot(nil, "t", filepath.Join(dir, "b.png"), size)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeRender))

	err = TopBar(nil, 10, "t", filepath.Join(dir, "c.png"), size)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeRender))
}

func TestShorten(t *testing.T) {
	assert.Equal(t, "en", shorten("en"))
	long := shorten(strings.Repeat("é", 60))
	assert.Equal(t, maxLabelRunes, len([]rune(long)))
	assert.True(t, strings.HasSuffix(long, "…"))
}

func TestFigurePath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "Page Category_bar.png"), figurePath("out", "Page Category", KindBar))
	assert.Equal(t, filepath.Join("out", "a_b_hist.png"), figurePath("out", "a/b", KindHistogram))
}

const postsCSV = `Likes,Overperforming Score,Type,Page Category,Flat
10,1.5,Photo,POLITICIAN,same
20,-2.0,Link,POLITICIAN,same
,3.25,Photo,NEWS_SITE,same
40,n/a,Status,,same
`

func newRenderer(t *testing.T, base string) *Renderer {
	t.Helper()
	paths, err := config.GetPaths(config.PathsConfig{
		BaseDir:    base,
		DataDir:    "data",
		OutputDir:  "output",
		FiguresDir: "figures",
		LogsDir:    "logs",
	})
	require.NoError(t, err)
	cfg := config.Default().Charts
	cfg.WidthInches, cfg.HeightInches = 3, 2
	return NewRenderer(cfg, files.NewManager(paths, nil), nil)
}

func TestRenderer_RenderDataset(t *testing.T) {
	base := t.TempDir()
	r := newRenderer(t, base)

	tbl, err := table.Read(strings.NewReader(postsCSV), "fb_posts", LoadOptions)
	require.NoError(t, err)

	outDir := filepath.Join(base, "figures", "fb_posts")
	require.NoError(t, os.MkdirAll(outDir, 0755))
	stale := filepath.Join(outDir, "stale.png")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0644))

	ds := config.DatasetConfig{
		Name:               "fb_posts",
		NumericColumns:     []string{"Likes", "Overperforming Score"},
		CategoricalColumns: []string{"Type", "Page Category", "Flat", "Missing"},
	}

	figures, err := r.RenderDataset(context.Background(), ds, tbl, outDir)
	require.NoError(t, err)

	var names []string
	for _, fig := range figures {
		names = append(names, filepath.Base(fig.Path))
		assertPNG(t, fig.Path)
	}
	assert.Equal(t, []string{
		"Likes_hist.png",
		"Overperforming Score_box.png",
		"Type_bar.png",
		"Page Category_bar.png",
	}, names)

	assert.NoFileExists(t, stale)
}

func TestRenderer_SkipsColumnsWithoutData(t *testing.T) {
	base := t.TempDir()
	r := newRenderer(t, base)

	tbl, err := table.Read(strings.NewReader("a,b\n1,x\n1,x\n"), "flat", LoadOptions)
	require.NoError(t, err)

	ds := config.DatasetConfig{
		Name:               "flat",
		NumericColumns:     []string{"a", "nope"},
		CategoricalColumns: []string{"b"},
	}
	outDir := filepath.Join(base, "figures", "flat")

	figures, err := r.RenderDataset(context.Background(), ds, tbl, outDir)
	require.NoError(t, err)
	assert.Empty(t, figures)
	assert.DirExists(t, outDir)
}

func assertPNG(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 8)
	assert.Equal(t, "\x89PNG\r\n\x1a\n", string(data[:8]))
}
