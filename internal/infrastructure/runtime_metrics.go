package infrastructure

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RuntimeStats is a snapshot of the process's Go runtime.
type RuntimeStats struct {
	Goroutines    int64         `json:"goroutines"`
	HeapAlloc     int64         `json:"heap_alloc_bytes"`
	HeapSys       int64         `json:"heap_sys_bytes"`
	GCCount       int64         `json:"gc_count"`
	LastGCPause   time.Duration `json:"last_gc_pause_ns"`
	ProcessUptime time.Duration `json:"uptime_ns"`
}

// ReadRuntimeStats samples the runtime.
func ReadRuntimeStats(startTime time.Time) RuntimeStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return RuntimeStats{
		Goroutines:    int64(runtime.NumGoroutine()),
		HeapAlloc:     int64(mem.HeapAlloc),
		HeapSys:       int64(mem.HeapSys),
		GCCount:       int64(mem.NumGC),
		LastGCPause:   time.Duration(mem.PauseNs[(mem.NumGC+255)%256]),
		ProcessUptime: time.Since(startTime),
	}
}

// RegisterRuntimeMetrics registers observable gauges for the long-running
// server. Values are sampled on every collection, so no goroutine is needed.
// The returned registration is released on provider shutdown.
func RegisterRuntimeMetrics(meter metric.Meter, startTime time.Time) (metric.Registration, error) {
	goroutines, err := meter.Int64ObservableGauge(
		"descstats_runtime_goroutines",
		metric.WithDescription("Number of active goroutines"),
	)
	if err != nil {
		return nil, err
	}

	heap, err := meter.Int64ObservableGauge(
		"descstats_runtime_heap_alloc",
		metric.WithDescription("Bytes of allocated heap objects"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	gcCount, err := meter.Int64ObservableCounter(
		"descstats_runtime_gc",
		metric.WithDescription("Completed garbage collection cycles"),
	)
	if err != nil {
		return nil, err
	}

	uptime, err := meter.Float64ObservableGauge(
		"descstats_process_uptime",
		metric.WithDescription("Process uptime"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	reg, err := meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := ReadRuntimeStats(startTime)
		o.ObserveInt64(goroutines, stats.Goroutines)
		o.ObserveInt64(heap, stats.HeapAlloc)
		o.ObserveInt64(gcCount, stats.GCCount)
		o.ObserveFloat64(uptime, stats.ProcessUptime.Seconds())
		return nil
	}, goroutines, heap, gcCount, uptime)
	if err != nil {
		return nil, fmt.Errorf("failed to register runtime metrics callback: %w", err)
	}
	return reg, nil
}
