package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/phrazzld/scry-progression/internal/domain"
	"github.com/phrazzld/scry-progression/internal/domain/progress"
	"github.com/phrazzld/scry-progression/internal/events"
)

// Record kinds written by replay
const (
	kindEvent         = "event"
	kindExpectedError = "expected_error"
	kindProgress      = "progress"
)

// record is one JSON line of replay output.
type record struct {
	Kind        string             `json:"kind"`
	Type        events.Type        `json:"type,omitempty"`
	AggregateID string             `json:"aggregate_id,omitempty"`
	OccurredAt  *time.Time         `json:"occurred_at,omitempty"`
	Payload     events.Event       `json:"payload,omitempty"`
	Step        int                `json:"step,omitempty"`
	Action      string             `json:"action,omitempty"`
	Code        domain.ErrorCode   `json:"code,omitempty"`
	Error       string             `json:"error,omitempty"`
	Progress    *progress.Snapshot `json:"progress,omitempty"`
}

// recordWriter writes replay records as JSON lines. It doubles as an event
// handler so published events are written as they happen.
type recordWriter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

var _ events.Handler = (*recordWriter)(nil)

func newRecordWriter(w io.Writer) *recordWriter {
	return &recordWriter{enc: json.NewEncoder(w)}
}

func (w *recordWriter) write(r record) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.enc.Encode(r); err != nil {
		return fmt.Errorf("failed to write %s record: %w", r.Kind, err)
	}
	return nil
}

// HandleEvent implements events.Handler.
func (w *recordWriter) HandleEvent(_ context.Context, event events.Event) error {
	at := event.OccurredAt()
	return w.write(record{
		Kind:        kindEvent,
		Type:        event.EventType(),
		AggregateID: event.AggregateID(),
		OccurredAt:  &at,
		Payload:     event,
	})
}

func (w *recordWriter) writeExpectedError(step int, action string, err error) error {
	return w.write(record{
		Kind:   kindExpectedError,
		Step:   step,
		Action: action,
		Code:   domain.CodeOf(err),
		Error:  err.Error(),
	})
}

func (w *recordWriter) writeProgress(s progress.Snapshot) error {
	return w.write(record{Kind: kindProgress, Progress: &s})
}
