package charts

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"descstats/internal/config"
	"descstats/internal/files"
	"descstats/internal/table"
)

// Figure kinds, also used as the metric label.
const (
	KindHistogram = "hist"
	KindBoxPlot   = "box"
	KindBar       = "bar"
)

// LoadOptions reads chart inputs with headers kept verbatim.
var LoadOptions = table.LoadOptions{TrimSpace: true}

// Figure is one written PNG
type Figure struct {
	Kind   string
	Column string
	Path   string
}

// Renderer writes the figures of one dataset at a time.
type Renderer struct {
	cfg    config.ChartsConfig
	files  *files.Manager
	logger *slog.Logger
}

// NewRenderer creates a renderer
func NewRenderer(cfg config.ChartsConfig, manager *files.Manager, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		cfg:    cfg,
		files:  manager,
		logger: logger.With(slog.String("component", "charts")),
	}
}

func (r *Renderer) size() Size {
	return Size{Width: r.cfg.WidthInches, Height: r.cfg.HeightInches}
}

// RenderDataset resets outDir and renders the dataset's figures into it: a
// histogram of the first numeric column, a box plot of the second and a
// top-N bar chart per categorical column. Columns without data are skipped.
func (r *Renderer) RenderDataset(ctx context.Context, ds config.DatasetConfig, t *table.Table, outDir string) ([]Figure, error) {
	if err := r.files.ResetDirectory(outDir); err != nil {
		return nil, fmt.Errorf("failed to reset %s: %w", outDir, err)
	}

	var figures []Figure
	for i, col := range ds.NumericColumns {
		values, ok := r.numeric(ctx, ds, t, col)
		if !ok || !HasData(values) {
			continue
		}

		var fig Figure
		var err error
		switch i {
		case 0:
			fig = Figure{Kind: KindHistogram, Column: col, Path: figurePath(outDir, col, KindHistogram)}
			err = Histogram(values, col+" distribution", fig.Path, r.cfg.Bins, r.cfg.ClipQuantile, r.size())
		case 1:
			fig = Figure{Kind: KindBoxPlot, Column: col, Path: figurePath(outDir, col, KindBoxPlot)}
			err = BoxPlot(values, col+" boxplot", fig.Path, r.size())
		default:
			continue
		}
		if err != nil {
			return figures, err
		}
		figures = append(figures, fig)
	}

	for _, col := range ds.CategoricalColumns {
		values, ok := r.categorical(ctx, ds, t, col)
		if !ok || !HasData(values) {
			continue
		}
		fig := Figure{Kind: KindBar, Column: col, Path: figurePath(outDir, col, KindBar)}
		if err := TopBar(values, r.cfg.TopN, fmt.Sprintf("Top %d %s", r.cfg.TopN, col), fig.Path, r.size()); err != nil {
			return figures, err
		}
		figures = append(figures, fig)
	}

	r.logger.InfoContext(ctx, "Figures rendered",
		slog.String("dataset", ds.Name),
		slog.String("dir", outDir),
		slog.Int("figures", len(figures)))

	return figures, nil
}

func (r *Renderer) column(ctx context.Context, ds config.DatasetConfig, t *table.Table, col string) ([]table.Value, bool) {
	values, ok := t.Column(col)
	if !ok {
		r.logger.WarnContext(ctx, "Chart column not found",
			slog.String("dataset", ds.Name),
			slog.String("column", col))
	}
	return values, ok
}

func (r *Renderer) numeric(ctx context.Context, ds config.DatasetConfig, t *table.Table, col string) ([]float64, bool) {
	values, ok := r.column(ctx, ds, t, col)
	if !ok {
		return nil, false
	}
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v.Numeric {
			out = append(out, v.Num)
		}
	}
	return out, true
}

func (r *Renderer) categorical(ctx context.Context, ds config.DatasetConfig, t *table.Table, col string) ([]string, bool) {
	values, ok := r.column(ctx, ds, t, col)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v.Present && v.Raw != "" {
			out = append(out, v.Raw)
		}
	}
	return out, true
}

// figurePath names a figure after its column; path separators in the
// column name are replaced.
func figurePath(dir, column, kind string) string {
	name := strings.NewReplacer("/", "_", `\`, "_").Replace(column)
	return filepath.Join(dir, name+"_"+kind+".png")
}
