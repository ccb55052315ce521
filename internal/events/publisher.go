package events

import (
	"context"
	"log/slog"
	"sync"
)

// InMemoryPublisher is a simple implementation of the Publisher interface
// that stores registered handlers in memory and dispatches events to them.
type InMemoryPublisher struct {
	handlers []Handler
	mu       sync.RWMutex
	logger   *slog.Logger
}

// NewInMemoryPublisher creates a new instance of InMemoryPublisher.
func NewInMemoryPublisher(logger *slog.Logger, handlers ...Handler) *InMemoryPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	p := &InMemoryPublisher{
		handlers: make([]Handler, 0, len(handlers)),
		logger:   logger.With("component", "in_memory_event_publisher"),
	}
	for _, h := range handlers {
		p.RegisterHandler(h)
	}
	return p
}

// RegisterHandler adds a new event handler to receive events.
func (p *InMemoryPublisher) RegisterHandler(handler Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers = append(p.handlers, handler)
	p.logger.Debug("registered new event handler", "handler_count", len(p.handlers))
}

// Publish delivers each event, in order, to all registered handlers.
// If any handler returns an error, the remaining handlers and events are still
// processed, and the first error encountered is returned.
func (p *InMemoryPublisher) Publish(ctx context.Context, events ...Event) error {
	p.mu.RLock()
	handlers := make([]Handler, len(p.handlers))
	copy(handlers, p.handlers)
	p.mu.RUnlock()

	if len(events) == 0 {
		return nil
	}

	if len(handlers) == 0 {
		p.logger.Warn("no handlers registered for events", "event_count", len(events))
		return nil
	}

	var firstErr error
	for _, event := range events {
		p.logger.Debug("publishing event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"handler_count", len(handlers))

		for i, handler := range handlers {
			if err := handler.HandleEvent(ctx, event); err != nil {
				p.logger.Error("handler failed to process event",
					"error", err,
					"handler_index", i,
					"event_id", event.EventID(),
					"event_type", event.EventType())
				if firstErr == nil {
					firstErr = err
				}
			}
		}
	}

	return firstErr
}
