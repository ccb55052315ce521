package events

import (
	"context"
	"log/slog"
)

// LogHandler writes one structured record per event. It is the analytics
// logger consumers of the engine attach to the publisher.
type LogHandler struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLogHandler creates a LogHandler that logs at info level.
func NewLogHandler(logger *slog.Logger) *LogHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogHandler{
		logger: logger.With("component", "event_log"),
		level:  slog.LevelInfo,
	}
}

// WithLevel returns a copy of the handler that logs at level.
func (h *LogHandler) WithLevel(level slog.Level) *LogHandler {
	return &LogHandler{logger: h.logger, level: level}
}

// HandleEvent implements Handler.
func (h *LogHandler) HandleEvent(ctx context.Context, event Event) error {
	h.logger.LogAttrs(ctx, h.level, "domain event",
		slog.String("event_type", string(event.EventType())),
		slog.String("event_id", event.EventID().String()),
		slog.String("aggregate_id", event.AggregateID()),
		slog.Time("occurred_at", event.OccurredAt()),
		slog.Any("payload", event),
	)
	return nil
}
