package operations

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"descstats/internal/charts"
	"descstats/internal/config"
	"descstats/internal/infrastructure"
	"descstats/internal/report"
	"descstats/internal/table"
	"descstats/internal/validation"
	"descstats/pkg/contracts/domain"
)

// RunnerOptions carries the dependencies shared by Runner and PlotRunner.
// Only Paths is required.
type RunnerOptions struct {
	Paths       *config.Paths
	Parallelism int
	Tracer      trace.Tracer
	Metrics     *infrastructure.Metrics
	// Console receives the human readable previews; nil disables them.
	Console *report.Console
	Logger  *slog.Logger
}

// scheduler runs one function per dataset with bounded concurrency
type scheduler struct {
	opts      RunnerOptions
	validator *validation.FileValidator
	outputDir string
	tracer    *datasetTracer
	logger    *slog.Logger

	// console output of concurrent datasets must not interleave
	consoleMu sync.Mutex
}

func newScheduler(opts RunnerOptions, outputDir string) *scheduler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}
	return &scheduler{
		opts:      opts,
		validator: validation.NewFileValidator(opts.Logger),
		outputDir: outputDir,
		tracer:    newDatasetTracer(opts.Tracer, opts.Metrics),
		logger:    opts.Logger,
	}
}

// each validates every input file and the output directory, then calls fn
// for each dataset. The first error cancels the context handed to the
// remaining calls.
func (s *scheduler) each(ctx context.Context, stage string, datasets []config.DatasetConfig,
	fn func(ctx context.Context, i int, ds config.DatasetConfig, path string) error) error {

	if err := s.validator.ValidateDatasets(datasets, s.opts.Paths.DataDir); err != nil {
		return err
	}
	if err := s.validator.ValidateOutputDirectory(s.outputDir); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Parallelism)

	for i, ds := range datasets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			spanCtx, span := s.tracer.start(gctx, stage, ds.Name)
			started := time.Now()
			path := s.opts.Paths.GetDatasetPath(ds)

			s.logger.InfoContext(spanCtx, "Dataset started",
				slog.String("stage", stage),
				slog.String("dataset", ds.Name),
				slog.String("path", path))

			err := fn(spanCtx, i, ds, path)
			s.tracer.finish(spanCtx, span, stage, ds.Name, started, err)
			if err != nil {
				s.logger.ErrorContext(spanCtx, "Dataset failed",
					slog.String("stage", stage),
					slog.String("dataset", ds.Name),
					slog.String("error", err.Error()))
				return fmt.Errorf("dataset %s: %w", ds.Name, err)
			}

			s.logger.InfoContext(spanCtx, "Dataset completed",
				slog.String("stage", stage),
				slog.String("dataset", ds.Name),
				slog.Duration("duration", time.Since(started)))
			return nil
		})
	}

	return g.Wait()
}

func (s *scheduler) print(fn func(c *report.Console)) {
	if s.opts.Console == nil {
		return
	}
	s.consoleMu.Lock()
	defer s.consoleMu.Unlock()
	fn(s.opts.Console)
}

// Runner runs one engine over the datasets
type Runner struct {
	engine Engine
	*scheduler
}

// NewRunner creates a runner for engine
func NewRunner(engine Engine, opts RunnerOptions) *Runner {
	return &Runner{engine: engine, scheduler: newScheduler(opts, opts.Paths.OutputDir)}
}

// Run analyses every dataset and returns the report keyed by dataset name
// in the order given.
func (r *Runner) Run(ctx context.Context, datasets []config.DatasetConfig) (*domain.Report, error) {
	name := r.engine.Name()
	sections := make([]*domain.Section, len(datasets))

	err := r.each(ctx, name, datasets, func(ctx context.Context, i int, ds config.DatasetConfig, path string) error {
		result, err := r.engine.Analyze(ctx, ds, path)
		if err != nil {
			return err
		}
		sections[i] = result.Section

		r.opts.Metrics.AddRows(ctx, name, ds.Name, result.Rows)
		r.opts.Metrics.AddColumns(ctx, name, ds.Name, len(result.Section.ColumnNames()))

		r.print(func(c *report.Console) { preview(c, ds, result.Section) })
		return nil
	})
	if err != nil {
		return nil, err
	}

	rep := domain.NewReport()
	for i, ds := range datasets {
		rep.Set(ds.Name, sections[i])
	}
	return rep, nil
}

// preview prints the grouped sections of a grouped dataset, or every column
// of a flat one.
func preview(c *report.Console, ds config.DatasetConfig, section *domain.Section) {
	c.Analyzing(ds.DisplayName())
	if !section.Grouped() {
		c.Columns(section.Columns)
		return
	}
	section.Groups.Range(func(name string, groups *domain.GroupSet) bool {
		c.Groups(fmt.Sprintf("%s - %s", ds.DisplayName(), name), groups)
		return true
	})
}

// PlotRunner renders the figures of every dataset
type PlotRunner struct {
	renderer *charts.Renderer
	*scheduler
}

// NewPlotRunner creates a plot runner
func NewPlotRunner(renderer *charts.Renderer, opts RunnerOptions) *PlotRunner {
	return &PlotRunner{renderer: renderer, scheduler: newScheduler(opts, opts.Paths.FiguresDir)}
}

// Run renders each dataset into its figures directory and returns the
// written figures in dataset order.
func (r *PlotRunner) Run(ctx context.Context, datasets []config.DatasetConfig) ([]charts.Figure, error) {
	perDataset := make([][]charts.Figure, len(datasets))

	err := r.each(ctx, "plots", datasets, func(ctx context.Context, i int, ds config.DatasetConfig, path string) error {
		t, err := table.Load(ctx, path, charts.LoadOptions)
		if err != nil {
			return err
		}
		r.opts.Metrics.AddRows(ctx, "plots", ds.Name, t.Len())

		outDir := r.opts.Paths.GetDatasetFiguresDir(ds.Name)
		figures, err := r.renderer.RenderDataset(ctx, ds, t, outDir)
		if err != nil {
			return err
		}
		perDataset[i] = figures

		kinds := make(map[string]int)
		for _, fig := range figures {
			kinds[fig.Kind]++
		}
		for _, kind := range []string{charts.KindHistogram, charts.KindBoxPlot, charts.KindBar} {
			r.opts.Metrics.AddCharts(ctx, ds.Name, kind, kinds[kind])
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	var all []charts.Figure
	for _, figures := range perDataset {
		all = append(all, figures...)
	}
	return all, nil
}
