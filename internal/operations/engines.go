package operations

import (
	"context"
	"log/slog"

	"descstats/internal/columnar"
	"descstats/internal/config"
	"descstats/internal/frame"
	"descstats/internal/stats"
	"descstats/internal/table"
	"descstats/pkg/contracts/domain"
)

// PureLoadOptions reads input for the manual engine. Group keys are matched
// against the normalized headers.
var PureLoadOptions = table.LoadOptions{NormalizeHeaders: true}

// PureEngine is the manual engine with overall and grouped statistics
type PureEngine struct {
	analyzer *stats.Analyzer
}

// NewPureEngine creates the manual engine. previewGroups bounds the groups
// kept per grouping; 0 keeps all.
func NewPureEngine(logger *slog.Logger, previewGroups int) *PureEngine {
	return &PureEngine{analyzer: stats.NewAnalyzer(logger, previewGroups)}
}

// Name implements Engine
func (e *PureEngine) Name() string { return "pure" }

// Analyze implements Engine
func (e *PureEngine) Analyze(ctx context.Context, ds config.DatasetConfig, path string) (*Result, error) {
	t, err := table.Load(ctx, path, PureLoadOptions)
	if err != nil {
		return nil, err
	}

	section, _, err := e.analyzer.Analyse(ctx, t, ds.GroupKeys)
	if err != nil {
		return nil, err
	}
	return &Result{Section: section, Rows: t.Len()}, nil
}

// FrameEngine describes datasets with gota dataframes
type FrameEngine struct {
	describer *frame.Describer
}

// NewFrameEngine creates the dataframe engine
func NewFrameEngine(logger *slog.Logger) *FrameEngine {
	return &FrameEngine{describer: frame.NewDescriber(logger)}
}

// Name implements Engine
func (e *FrameEngine) Name() string { return "frame" }

// Analyze implements Engine
func (e *FrameEngine) Analyze(ctx context.Context, _ config.DatasetConfig, path string) (*Result, error) {
	set, rows, err := e.describer.Describe(ctx, path)
	if err != nil {
		return nil, err
	}
	return &Result{Section: &domain.Section{Columns: set}, Rows: rows}, nil
}

// ColumnarEngine summarizes datasets as typed columns
type ColumnarEngine struct {
	summarizer *columnar.Summarizer
}

// NewColumnarEngine creates the typed-column engine
func NewColumnarEngine(logger *slog.Logger) *ColumnarEngine {
	return &ColumnarEngine{summarizer: columnar.NewSummarizer(logger)}
}

// Name implements Engine
func (e *ColumnarEngine) Name() string { return "columnar" }

// Analyze implements Engine
func (e *ColumnarEngine) Analyze(ctx context.Context, _ config.DatasetConfig, path string) (*Result, error) {
	t, err := table.Load(ctx, path, columnar.LoadOptions)
	if err != nil {
		return nil, err
	}
	set := e.summarizer.Summarize(ctx, t)
	return &Result{Section: &domain.Section{Columns: set}, Rows: t.Len()}, nil
}

// DefaultRegistry registers the three engines
func DefaultRegistry(logger *slog.Logger, previewGroups int) *Registry {
	r := NewRegistry()
	for _, e := range []Engine{
		NewPureEngine(logger, previewGroups),
		NewFrameEngine(logger),
		NewColumnarEngine(logger),
	} {
		// names are distinct and non-empty
		_ = r.Register(e)
	}
	return r
}
