package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/scry-progression/internal/events"
)

// MockEventHandler implements events.Handler for testing.
// It records every event it receives.
type MockEventHandler struct {
	HandleEventFn func(ctx context.Context, event events.Event) error

	// Err is returned when HandleEventFn is not set
	Err error

	mu       sync.Mutex
	received []events.Event
}

// Ensure MockEventHandler implements events.Handler interface
var _ events.Handler = (*MockEventHandler)(nil)

// HandleEvent implements the events.Handler interface
func (m *MockEventHandler) HandleEvent(ctx context.Context, event events.Event) error {
	m.mu.Lock()
	m.received = append(m.received, event)
	m.mu.Unlock()

	if m.HandleEventFn != nil {
		return m.HandleEventFn(ctx, event)
	}
	return m.Err
}

// Received returns a copy of the events handled so far.
func (m *MockEventHandler) Received() []events.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]events.Event(nil), m.received...)
}

// Types returns the types of the events handled so far, in order.
func (m *MockEventHandler) Types() []events.Type {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]events.Type, len(m.received))
	for i, e := range m.received {
		out[i] = e.EventType()
	}
	return out
}

// Reset clears the recorded events.
func (m *MockEventHandler) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.received = nil
}

// MockPublisher implements events.Publisher for testing
type MockPublisher struct {
	PublishFn func(ctx context.Context, evts ...events.Event) error

	// Err is returned when PublishFn is not set
	Err error

	PublishCalls struct {
		mu      sync.Mutex
		Count   int
		Batches [][]events.Event
	}
}

// Ensure MockPublisher implements events.Publisher interface
var _ events.Publisher = (*MockPublisher)(nil)

// Publish implements the events.Publisher interface
func (m *MockPublisher) Publish(ctx context.Context, evts ...events.Event) error {
	m.PublishCalls.mu.Lock()
	m.PublishCalls.Count++
	m.PublishCalls.Batches = append(m.PublishCalls.Batches, append([]events.Event(nil), evts...))
	m.PublishCalls.mu.Unlock()

	if m.PublishFn != nil {
		return m.PublishFn(ctx, evts...)
	}
	return m.Err
}

// Published returns every published event, flattened in order.
func (m *MockPublisher) Published() []events.Event {
	m.PublishCalls.mu.Lock()
	defer m.PublishCalls.mu.Unlock()
	var out []events.Event
	for _, batch := range m.PublishCalls.Batches {
		out = append(out, batch...)
	}
	return out
}
