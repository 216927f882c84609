package cli

import (
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"descstats/internal/operations"
	"descstats/internal/report"
)

// StatsOptions select the extra artifacts of a statistics run.
type StatsOptions struct {
	// CSV also writes the report as a flat CSV next to the JSON.
	CSV bool
	// NoWorkbook skips the .xlsx export even when the config enables it.
	NoWorkbook bool
}

// RunStats analyses every configured dataset with engine and writes the
// JSON report, plus the workbook and CSV exports when enabled.
func RunStats(env *Env, engine string, opts StatsOptions) error {
	registry := operations.DefaultRegistry(env.Logger, env.Config.Report.PreviewGroups)
	eng, err := registry.Get(engine)
	if err != nil {
		return err
	}

	started := time.Now()
	rep, err := operations.NewRunner(eng, env.RunnerOptions()).Run(env.Ctx, env.Config.Datasets)
	if err != nil {
		return err
	}

	console := report.NewConsole(env.Stdout)

	jsonPath, err := env.Paths.GetReportJSONPath(engine)
	if err != nil {
		return err
	}
	if err := report.WriteJSON(jsonPath, rep, env.Config.Report.Indent); err != nil {
		return err
	}
	console.Saved("Statistics", display(env, jsonPath))

	if env.Config.Report.Workbook && !opts.NoWorkbook {
		xlsxPath, err := env.Paths.GetReportWorkbookPath(engine)
		if err != nil {
			return err
		}
		if err := report.WriteWorkbook(xlsxPath, rep); err != nil {
			return err
		}
		console.Saved("Workbook", display(env, xlsxPath))
	}

	if opts.CSV {
		csvPath := strings.TrimSuffix(jsonPath, filepath.Ext(jsonPath)) + ".csv"
		if err := report.WriteCSV(csvPath, rep); err != nil {
			return err
		}
		console.Saved("CSV", display(env, csvPath))
	}

	env.Logger.InfoContext(env.Ctx, "Run completed",
		slog.String("engine", engine),
		slog.Int("datasets", rep.Len()),
		slog.String("report", jsonPath),
		slog.Duration("duration", time.Since(started)),
	)
	return nil
}

// display shortens path relative to the base directory for console output.
func display(env *Env, path string) string {
	if rel, err := filepath.Rel(env.Paths.BaseDir, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return path
}
