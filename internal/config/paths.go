package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Report file names, one per engine.
const (
	PureReport     = "pure_stats_output"
	FrameReport    = "frame_stats_output"
	ColumnarReport = "columnar_stats_output"
)

// ReportEngines lists the engines whose reports the binaries write, in display order.
var ReportEngines = []string{"pure", "frame", "columnar"}

// Paths contains all the application paths
// This is the single source of truth for ALL file paths in the application
type Paths struct {
	BaseDir    string
	DataDir    string
	OutputDir  string
	FiguresDir string
	LogsDir    string
}

// GetPaths resolves the configured directories. Relative entries are joined
// to BaseDir; an empty BaseDir means the current working directory.
func GetPaths(cfg PathsConfig) (*Paths, error) {
	base := cfg.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}

	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	resolve := func(dir string) string {
		if filepath.IsAbs(dir) {
			return filepath.Clean(dir)
		}
		return filepath.Join(base, dir)
	}

	return &Paths{
		BaseDir:    base,
		DataDir:    resolve(cfg.DataDir),
		OutputDir:  resolve(cfg.OutputDir),
		FiguresDir: resolve(cfg.FiguresDir),
		LogsDir:    resolve(cfg.LogsDir),
	}, nil
}

// EnsureDirectories creates the output, figures and logs directories.
// The data directory is input only and is never created.
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.OutputDir,
		p.FiguresDir,
		p.LogsDir,
	}

	logger := slog.Default()

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		logger.Debug("Ensured directory exists",
			slog.String("directory", dir))
	}

	return nil
}

// ReportName maps an engine name to its report file stem.
func ReportName(engine string) (string, bool) {
	switch engine {
	case "pure":
		return PureReport, true
	case "frame":
		return FrameReport, true
	case "columnar":
		return ColumnarReport, true
	}
	return "", false
}

// GetReportJSONPath returns the JSON report path for an engine
func (p *Paths) GetReportJSONPath(engine string) (string, error) {
	name, ok := ReportName(engine)
	if !ok {
		return "", fmt.Errorf("unknown engine %q", engine)
	}
	return filepath.Join(p.OutputDir, name+".json"), nil
}

// GetReportWorkbookPath returns the workbook path for an engine
func (p *Paths) GetReportWorkbookPath(engine string) (string, error) {
	name, ok := ReportName(engine)
	if !ok {
		return "", fmt.Errorf("unknown engine %q", engine)
	}
	return filepath.Join(p.OutputDir, name+".xlsx"), nil
}

// GetDatasetFiguresDir returns figures/<dataset>
func (p *Paths) GetDatasetFiguresDir(dataset string) string {
	return filepath.Join(p.FiguresDir, dataset)
}

// GetDatasetPath returns the CSV path of a dataset
func (p *Paths) GetDatasetPath(ds DatasetConfig) string {
	return ds.ResolvePath(p.DataDir)
}

// GetLogPath returns the log file path
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// LogPathResolution logs the resolved directories at debug level.
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Debug("Path resolution summary",
		slog.Group("directories",
			slog.String("base", p.BaseDir),
			slog.String("data", p.DataDir),
			slog.String("output", p.OutputDir),
			slog.String("figures", p.FiguresDir),
			slog.String("logs", p.LogsDir),
		))
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
