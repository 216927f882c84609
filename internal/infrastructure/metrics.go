package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the batch instruments. The Prometheus exporter adds the
// _total and _seconds suffixes.
type Metrics struct {
	RowsLoaded        metric.Int64Counter
	ColumnsSummarized metric.Int64Counter
	ChartsRendered    metric.Int64Counter
	DatasetDuration   metric.Float64Histogram
}

// NewMetrics creates the instruments on meter
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	rowsLoaded, err := meter.Int64Counter(
		"descstats_rows_loaded",
		metric.WithDescription("Total number of CSV rows loaded"),
	)
	if err != nil {
		return nil, err
	}

	columnsSummarized, err := meter.Int64Counter(
		"descstats_columns_summarized",
		metric.WithDescription("Total number of column statistics computed"),
	)
	if err != nil {
		return nil, err
	}

	chartsRendered, err := meter.Int64Counter(
		"descstats_charts_rendered",
		metric.WithDescription("Total number of figures written"),
	)
	if err != nil {
		return nil, err
	}

	datasetDuration, err := meter.Float64Histogram(
		"descstats_dataset_duration",
		metric.WithDescription("Time spent on one dataset by one engine"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		RowsLoaded:        rowsLoaded,
		ColumnsSummarized: columnsSummarized,
		ChartsRendered:    chartsRendered,
		DatasetDuration:   datasetDuration,
	}, nil
}

// RecordDataset records one finished dataset stage. A nil receiver is a no-op.
func (m *Metrics) RecordDataset(ctx context.Context, engine, dataset string, duration time.Duration, err error) {
	if m == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "failure"
	}
	m.DatasetDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("engine", engine),
		attribute.String("dataset", dataset),
		attribute.String("status", status),
	))
}

// AddRows counts loaded rows
func (m *Metrics) AddRows(ctx context.Context, engine, dataset string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.RowsLoaded.Add(ctx, int64(n), metric.WithAttributes(
		attribute.String("engine", engine),
		attribute.String("dataset", dataset),
	))
}

// AddColumns counts summarized columns
func (m *Metrics) AddColumns(ctx context.Context, engine, dataset string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.ColumnsSummarized.Add(ctx, int64(n), metric.WithAttributes(
		attribute.String("engine", engine),
		attribute.String("dataset", dataset),
	))
}

// AddCharts counts written figures by kind (hist, box, bar)
func (m *Metrics) AddCharts(ctx context.Context, dataset, kind string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.ChartsRendered.Add(ctx, int64(n), metric.WithAttributes(
		attribute.String("dataset", dataset),
		attribute.String("kind", kind),
	))
}
