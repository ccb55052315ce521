package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Type is the dotted name of a domain event, e.g. "progress.level_up".
type Type string

// UserProgress event types
const (
	TypeProgressStarted         Type = "progress.started"
	TypeXPEarned                Type = "progress.xp_earned"
	TypeXPSpent                 Type = "progress.xp_spent"
	TypeLevelUp                 Type = "progress.level_up"
	TypeHeartsRefilled          Type = "progress.hearts_refilled"
	TypeHeartLost               Type = "progress.heart_lost"
	TypeStreakUpdated           Type = "progress.streak_updated"
	TypeStreakBroken            Type = "progress.streak_broken"
	TypeProgressLessonCompleted Type = "progress.lesson_completed"
	TypeProgressLessonFailed    Type = "progress.lesson_failed"
	TypePositionAdvanced        Type = "progress.position_advanced"
	TypePathCompleted           Type = "progress.path_completed"
)

// ReviewSession event types
const (
	TypeCardMastered           Type = "review.card_mastered"
	TypeCardStruggled          Type = "review.card_struggled"
	TypeCardMarkedStruggling   Type = "review.card_marked_struggling"
	TypeReviewSessionCompleted Type = "review.session_completed"
)

// LessonSession event types
const (
	TypeCardAdvanced    Type = "lesson.card_advanced"
	TypeLessonCompleted Type = "lesson.completed"
	TypeLessonFailed    Type = "lesson.failed"
)

// Event is an immutable record of something that happened inside an aggregate.
type Event interface {
	// EventID uniquely identifies this occurrence.
	EventID() uuid.UUID
	// EventType returns the dotted event name.
	EventType() Type
	// AggregateID identifies the aggregate instance that raised the event.
	AggregateID() string
	// OccurredAt is the domain time the event happened, not the time it was published.
	OccurredAt() time.Time
}

// Base carries the envelope fields shared by every event. Concrete events
// embed it and add their payload.
type Base struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is the dotted event name
	Type Type `json:"type"`

	// Aggregate identifies the aggregate that raised the event
	Aggregate string `json:"aggregate_id"`

	// At is when the event happened
	At time.Time `json:"occurred_at"`
}

// NewBase creates the envelope for an event raised at the given time.
func NewBase(eventType Type, aggregateID string, at time.Time) Base {
	return Base{
		ID:        uuid.New(),
		Type:      eventType,
		Aggregate: aggregateID,
		At:        at,
	}
}

// EventID implements Event.
func (b Base) EventID() uuid.UUID { return b.ID }

// EventType implements Event.
func (b Base) EventType() Type { return b.Type }

// AggregateID implements Event.
func (b Base) AggregateID() string { return b.Aggregate }

// OccurredAt implements Event.
func (b Base) OccurredAt() time.Time { return b.At }

// Handler defines an interface for components that consume domain events.
type Handler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event Event) error
}

// HandlerFunc adapts an ordinary function to the Handler interface.
type HandlerFunc func(ctx context.Context, event Event) error

// HandleEvent calls f(ctx, event).
func (f HandlerFunc) HandleEvent(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Publisher defines an interface for components that forward drained events
// to their consumers. Use cases publish only after a successful save.
type Publisher interface {
	// Publish delivers the events, in order, to every registered handler.
	Publish(ctx context.Context, events ...Event) error
}
