// Package cli holds the startup sequence shared by the batch binaries:
// configuration, logging, telemetry, paths and the run context.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"descstats/internal/config"
	apperrors "descstats/internal/errors"
	"descstats/internal/infrastructure"
	"descstats/internal/operations"
	"descstats/internal/report"
	"descstats/pkg/contracts"
)

// Flags are the command-line overrides common to every batch binary. Zero
// values leave the configured setting alone.
type Flags struct {
	DataDir     string
	OutputDir   string
	Parallelism int
	Datasets    string
	Version     bool
}

// Register binds the common flags to fs.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.DataDir, "data", "", "directory holding the dataset CSV files (default from config)")
	fs.StringVar(&f.OutputDir, "out", "", "output directory (default from config)")
	fs.IntVar(&f.Parallelism, "parallel", 0, "datasets processed concurrently (default from config)")
	fs.StringVar(&f.Datasets, "datasets", "", "comma-separated dataset names to process (default all)")
	fs.BoolVar(&f.Version, "version", false, "print version and exit")
}

// Apply overlays the flags onto cfg. A bad -datasets selection is a CONFIG
// AppError.
func (f *Flags) Apply(cfg *config.Config) error {
	if f.DataDir != "" {
		cfg.Paths.DataDir = f.DataDir
	}
	if f.OutputDir != "" {
		cfg.Paths.OutputDir = f.OutputDir
	}
	if f.Parallelism > 0 {
		cfg.Runner.Parallelism = f.Parallelism
	}
	if f.Datasets == "" {
		return nil
	}

	var selected []config.DatasetConfig
	for _, name := range strings.Split(f.Datasets, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		ds, ok := cfg.Dataset(name)
		if !ok {
			return apperrors.NewConfigError(fmt.Sprintf("unknown dataset %q", name), nil)
		}
		selected = append(selected, ds)
	}
	if len(selected) == 0 {
		return apperrors.NewConfigError(fmt.Sprintf("no dataset selected by %q", f.Datasets), nil)
	}
	cfg.Datasets = selected
	return nil
}

// Env is the initialized environment of one batch run.
type Env struct {
	Binary    string
	Config    *config.Config
	Paths     *config.Paths
	Logger    *slog.Logger
	Providers *infrastructure.OTelProviders
	Ctx       context.Context
	RunID     string
	Stdout    io.Writer
}

// Setup loads the configuration, applies flags, initializes logging and
// telemetry and creates the output directories.
func Setup(ctx context.Context, binary string, flags *Flags) (*Env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := flags.Apply(cfg); err != nil {
		return nil, err
	}
	return SetupWithConfig(ctx, binary, cfg)
}

// SetupWithConfig is Setup for an already loaded configuration.
func SetupWithConfig(ctx context.Context, binary string, cfg *config.Config) (*Env, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	paths, err := config.GetPaths(cfg.Paths)
	if err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	runCtx, runID := infrastructure.NewRun(ctx)
	logger.InfoContext(runCtx, "Starting run",
		slog.String("binary", binary),
		slog.String("version", contracts.Version),
		slog.String("data_dir", paths.DataDir),
		slog.String("output_dir", paths.OutputDir),
		slog.Int("datasets", len(cfg.Datasets)),
		slog.Int("parallelism", cfg.Runner.Parallelism),
	)

	return &Env{
		Binary:    binary,
		Config:    cfg,
		Paths:     paths,
		Logger:    logger,
		Providers: providers,
		Ctx:       runCtx,
		RunID:     runID,
		Stdout:    os.Stdout,
	}, nil
}

// RunnerOptions returns the runner dependencies of this environment.
func (e *Env) RunnerOptions() operations.RunnerOptions {
	return operations.RunnerOptions{
		Paths:       e.Paths,
		Parallelism: e.Config.Runner.Parallelism,
		Tracer:      e.Providers.Tracer,
		Metrics:     e.Providers.Metrics,
		Console:     report.NewConsole(e.Stdout),
		Logger:      e.Logger,
	}
}

// Close flushes telemetry and the log file.
func (e *Env) Close() {
	if err := e.Providers.Shutdown(context.WithoutCancel(e.Ctx)); err != nil {
		e.Logger.WarnContext(e.Ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
	}
	_ = infrastructure.CloseLogFile()
}

// Exit logs err and terminates the process with status 1. A nil err is a no-op.
func Exit(binary string, err error) {
	if err == nil {
		return
	}
	infrastructure.GetLogger().Error("Run failed",
		slog.String("binary", binary),
		slog.String("error_type", string(apperrors.TypeOf(err))),
		slog.String("error", err.Error()))
	fmt.Fprintf(os.Stderr, "%s: %v\n", binary, err)
	if apperrors.IsType(err, apperrors.ErrTypeConfig) || apperrors.IsType(err, apperrors.ErrTypeValidation) {
		fmt.Fprintf(os.Stderr, "Run '%s -h' for usage.\n", binary)
	}
	os.Exit(1)
}
