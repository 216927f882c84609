// Package operations runs a statistics engine or the chart renderer over the
// configured datasets.
//
// Core Components:
//
// Engine: one statistics implementation. PureEngine wraps the manual
// engine in internal/stats, FrameEngine the gota dataframe engine and
// ColumnarEngine the typed-column engine.
//
// Registry: engines by name, in registration order.
//
// Runner: validates the input files and the output directory, runs an engine per dataset with a
// bounded number of datasets in flight and assembles the report in dataset
// order. The first failure cancels the remaining datasets.
//
// PlotRunner: the same schedule for chart rendering.
//
// Example usage:
//
//	runner := operations.NewRunner(operations.NewPureEngine(logger, 3), operations.RunnerOptions{
//	    Paths:       paths,
//	    Parallelism: cfg.Runner.Parallelism,
//	    Metrics:     providers.Metrics,
//	    Logger:      logger,
//	})
//	rep, err := runner.Run(ctx, cfg.Datasets)
package operations
