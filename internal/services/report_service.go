package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"descstats/internal/config"
	apperrors "descstats/internal/errors"
	"descstats/internal/files"
	"descstats/internal/report"
	"descstats/pkg/contracts/domain"
)

// ReportSummary describes one engine's JSON output.
type ReportSummary struct {
	Engine    string    `json:"engine"`
	Datasets  []string  `json:"datasets"`
	UpdatedAt time.Time `json:"updated_at"`
	SizeBytes int64     `json:"size_bytes"`
}

// ColumnResult is one column's statistics and where they were found.
type ColumnResult struct {
	Engine  string             `json:"engine"`
	Dataset string             `json:"dataset"`
	Column  string             `json:"column"`
	Kind    string             `json:"kind"`
	Stats   domain.ColumnStats `json:"stats"`
}

// columnKind is "numeric" or "categorical" after the block present in st,
// "empty" when a column had no usable values.
func columnKind(st domain.ColumnStats) string {
	switch {
	case st.HasNumeric():
		return "numeric"
	case st.HasCategorical():
		return "categorical"
	default:
		return "empty"
	}
}

type cachedReport struct {
	modTime time.Time
	size    int64
	report  *domain.Report
}

// ReportService reads engine reports from the output directory. Parsed
// reports are cached until the file's modification time or size changes.
type ReportService struct {
	paths     *config.Paths
	engines   []string
	discovery *files.Discovery
	logger    *slog.Logger

	mu    sync.RWMutex
	cache map[string]cachedReport
}

// NewReportService creates a report service over paths.
func NewReportService(paths *config.Paths, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{
		paths:     paths,
		engines:   config.ReportEngines,
		discovery: files.NewDiscovery(paths.BaseDir),
		logger:    logger.With(slog.String("service", "reports")),
		cache:     make(map[string]cachedReport),
	}
}

// ListReports returns the engines whose JSON output exists, in engine order.
func (s *ReportService) ListReports(ctx context.Context) ([]ReportSummary, error) {
	summaries := make([]ReportSummary, 0, len(s.engines))
	for _, engine := range s.engines {
		rep, info, err := s.load(ctx, engine)
		if errors.Is(err, ErrReportMissing) {
			continue
		}
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, ReportSummary{
			Engine:    engine,
			Datasets:  rep.Keys(),
			UpdatedAt: info.ModTime(),
			SizeBytes: info.Size(),
		})
	}
	return summaries, nil
}

// GetReport returns the full report of engine.
func (s *ReportService) GetReport(ctx context.Context, engine string) (*domain.Report, error) {
	rep, _, err := s.load(ctx, engine)
	return rep, err
}

// GetDataset returns one dataset section of engine's report.
func (s *ReportService) GetDataset(ctx context.Context, engine, dataset string) (*domain.Section, error) {
	rep, _, err := s.load(ctx, engine)
	if err != nil {
		return nil, err
	}
	section, ok := rep.Get(dataset)
	if !ok || section == nil {
		return nil, apperrors.NewNotFoundError("dataset").
			WithContext("engine", engine).
			WithContext("dataset", dataset)
	}
	return section, nil
}

// GetColumn returns one column's statistics, taken from the flat column set
// or the overall section of a grouped dataset.
func (s *ReportService) GetColumn(ctx context.Context, engine, dataset, column string) (*ColumnResult, error) {
	section, err := s.GetDataset(ctx, engine, dataset)
	if err != nil {
		return nil, err
	}
	st, ok := section.Column(column)
	if !ok {
		return nil, apperrors.NewNotFoundError("column").
			WithContext("engine", engine).
			WithContext("dataset", dataset).
			WithContext("column", column)
	}
	return &ColumnResult{Engine: engine, Dataset: dataset, Column: column, Kind: columnKind(st), Stats: st}, nil
}

// ListFigures returns the PNG files below the figures directory, relative
// and slash-separated. A missing directory yields an empty list.
func (s *ReportService) ListFigures(ctx context.Context) ([]string, error) {
	if _, err := os.Stat(s.paths.FiguresDir); os.IsNotExist(err) {
		return []string{}, nil
	}
	figures, err := s.discovery.WalkFiles(s.paths.FiguresDir, ".png")
	if err != nil {
		return nil, apperrors.NewStorageError("failed to list figures", err)
	}
	if figures == nil {
		figures = []string{}
	}
	s.logger.DebugContext(ctx, "listed figures", slog.Int("count", len(figures)))
	return figures, nil
}

func (s *ReportService) load(ctx context.Context, engine string) (*domain.Report, os.FileInfo, error) {
	path, err := s.paths.GetReportJSONPath(engine)
	if err != nil {
		return nil, nil, apperrors.NewNotFoundError("engine").
			WithContext("engine", engine)
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("%w: %s", ErrReportMissing, engine)
	}
	if err != nil {
		return nil, nil, apperrors.NewStorageError("failed to stat report", err).WithContext("path", path)
	}

	s.mu.RLock()
	cached, ok := s.cache[engine]
	s.mu.RUnlock()
	if ok && cached.modTime.Equal(info.ModTime()) && cached.size == info.Size() {
		return cached.report, info, nil
	}

	rep, err := report.ReadJSON(path)
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	s.cache[engine] = cachedReport{modTime: info.ModTime(), size: info.Size(), report: rep}
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "report loaded",
		slog.String("engine", engine),
		slog.String("path", path),
		slog.Int("datasets", rep.Len()),
	)
	return rep, info, nil
}
