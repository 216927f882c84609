package services

import (
	"context"
	"log/slog"
	"os"
	"time"

	"descstats/internal/config"
)

// Report change events published by ReportWatcher
const (
	EventReportUpdated = "report:updated"
	EventReportRemoved = "report:removed"
)

// EventPublisher delivers events to subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, data any) error
}

// ReportEvent is the payload of a report change event.
type ReportEvent struct {
	Engine    string    `json:"engine"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
	SizeBytes int64     `json:"size_bytes,omitempty"`
}

type fileStamp struct {
	modTime time.Time
	size    int64
}

func (s fileStamp) same(o fileStamp) bool {
	return s.size == o.size && s.modTime.Equal(o.modTime)
}

// ReportWatcher polls the engine JSON outputs and publishes an event when
// one is written, rewritten or removed.
type ReportWatcher struct {
	paths     *config.Paths
	engines   []string
	publisher EventPublisher
	interval  time.Duration
	logger    *slog.Logger

	seen map[string]fileStamp
}

// NewReportWatcher creates a watcher. The first Poll records the current
// state without publishing.
func NewReportWatcher(paths *config.Paths, publisher EventPublisher, interval time.Duration, logger *slog.Logger) *ReportWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportWatcher{
		paths:     paths,
		engines:   config.ReportEngines,
		publisher: publisher,
		interval:  interval,
		logger:    logger.With(slog.String("service", "report_watcher")),
	}
}

// Run polls every interval until ctx is done.
func (w *ReportWatcher) Run(ctx context.Context) {
	w.Poll(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Poll(ctx)
		}
	}
}

// Poll compares the outputs against the previous poll and publishes the
// differences in engine order. It returns the number of events published.
func (w *ReportWatcher) Poll(ctx context.Context) int {
	current := w.snapshot()
	if w.seen == nil {
		w.seen = current
		return 0
	}

	published := 0
	for _, engine := range w.engines {
		prev, had := w.seen[engine]
		cur, has := current[engine]

		var (
			eventType string
			event     = ReportEvent{Engine: engine}
		)
		switch {
		case has && (!had || !cur.same(prev)):
			eventType = EventReportUpdated
			event.UpdatedAt = cur.modTime.UTC()
			event.SizeBytes = cur.size
		case had && !has:
			eventType = EventReportRemoved
		default:
			continue
		}

		if err := w.publisher.Publish(ctx, eventType, event); err != nil {
			w.logger.WarnContext(ctx, "failed to publish report event",
				slog.String("engine", engine),
				slog.String("event", eventType),
				slog.String("error", err.Error()))
			continue
		}
		w.logger.InfoContext(ctx, "report changed",
			slog.String("engine", engine),
			slog.String("event", eventType))
		published++
	}

	w.seen = current
	return published
}

func (w *ReportWatcher) snapshot() map[string]fileStamp {
	stamps := make(map[string]fileStamp, len(w.engines))
	for _, engine := range w.engines {
		path, err := w.paths.GetReportJSONPath(engine)
		if err != nil {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		stamps[engine] = fileStamp{modTime: info.ModTime(), size: info.Size()}
	}
	return stamps
}
