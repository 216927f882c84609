package http

import (
	"context"

	"descstats/internal/services"
	"descstats/pkg/contracts/domain"
)

// ReportServiceInterface defines the read operations over generated reports
type ReportServiceInterface interface {
	ListReports(ctx context.Context) ([]services.ReportSummary, error)
	GetReport(ctx context.Context, engine string) (*domain.Report, error)
	GetDataset(ctx context.Context, engine, dataset string) (*domain.Section, error)
	GetColumn(ctx context.Context, engine, dataset, column string) (*services.ColumnResult, error)
	ListFigures(ctx context.Context) ([]string, error)
}
