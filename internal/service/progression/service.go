// Package progression orchestrates the learning progression use cases.
//
// Every change to a learner's progress runs as a load, mutate, save cycle
// against store.ProgressStore, retried on version conflicts. Events raised by
// the aggregates are drained only after a successful save and then handed to
// an events.Publisher.
package progression

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phrazzld/scry-progression/internal/domain"
	"github.com/phrazzld/scry-progression/internal/domain/lesson"
	"github.com/phrazzld/scry-progression/internal/domain/progress"
	"github.com/phrazzld/scry-progression/internal/domain/review"
	"github.com/phrazzld/scry-progression/internal/events"
)

// Service provides the learning progression use cases.
type Service interface {
	// StartPath creates progress for a learner on a path.
	// Returns ErrAlreadyStarted if the learner already has progress on it.
	StartPath(
		ctx context.Context,
		userID domain.UserID,
		pathID domain.PathID,
		groupID *domain.GroupID,
		now time.Time,
	) (progress.Snapshot, error)

	// GetProgress returns the stored progress.
	// Returns an error matching store.ErrProgressNotFound if the path was not started.
	GetProgress(ctx context.Context, userID domain.UserID, pathID domain.PathID) (progress.Snapshot, error)

	// ListProgress returns every path the learner has started.
	ListProgress(ctx context.Context, userID domain.UserID) ([]progress.Snapshot, error)

	// RefillHearts applies time-based heart regeneration.
	RefillHearts(ctx context.Context, userID domain.UserID, pathID domain.PathID, now time.Time) (progress.Snapshot, error)

	// PurchaseHeartRefill restores all hearts for the configured XP cost.
	// Returns domain.ErrHeartsFull or domain.ErrInsufficientXP when refused.
	PurchaseHeartRefill(ctx context.Context, userID domain.UserID, pathID domain.PathID, now time.Time) (progress.Snapshot, error)

	// AdvancePosition moves the learner to a lesson within a unit.
	AdvancePosition(
		ctx context.Context,
		userID domain.UserID,
		pathID domain.PathID,
		unitID domain.UnitID,
		lessonID domain.LessonID,
		now time.Time,
	) (progress.Snapshot, error)

	// CompletePath marks the path completed.
	// Returns domain.ErrPathAlreadyCompleted on a second call.
	CompletePath(ctx context.Context, userID domain.UserID, pathID domain.PathID, now time.Time) (progress.Snapshot, error)

	// StartLesson begins a lesson attempt. Hearts are regenerated first; the
	// attempt is refused with domain.ErrNoHearts when none remain.
	StartLesson(
		ctx context.Context,
		userID domain.UserID,
		pathID domain.PathID,
		lessonID domain.LessonID,
		now time.Time,
	) (*LessonAttempt, error)

	// SubmitLessonAnswer answers the current card of an attempt. When the
	// answer ends the attempt, the outcome is folded into the learner's
	// progress: a completed lesson whose accuracy meets the pass threshold
	// counts as completed, anything else as failed.
	//
	// If events cannot be published after the state was saved, the result is
	// returned together with the publish error.
	SubmitLessonAnswer(
		ctx context.Context,
		attempt *LessonAttempt,
		isCorrect bool,
		timeSpent time.Duration,
		now time.Time,
	) (*LessonAnswerResult, error)

	// StartReview begins a review of up to limit due cards. A limit of zero or
	// less reviews every due card. Returns domain.ErrReviewNoDueCards when
	// nothing is due.
	StartReview(
		ctx context.Context,
		userID domain.UserID,
		mode domain.ReviewMode,
		limit int,
		now time.Time,
	) (*review.Session, error)

	// SubmitReview answers the current card of a review session and appends
	// the outcome, with its new interval, to the card's history.
	//
	// If events cannot be published after the history was saved, the result
	// is returned together with the publish error.
	SubmitReview(ctx context.Context, session *review.Session, isCorrect bool, now time.Time) (*ReviewAnswerResult, error)
}

// LessonAttempt is a lesson session bound to the path it counts toward.
type LessonAttempt struct {
	PathID  domain.PathID
	Session *lesson.Session
}

// LessonAnswerResult describes the effect of one lesson answer.
type LessonAnswerResult struct {
	// Event is the session transition: CardAdvanced, LessonCompleted or LessonFailed.
	Event events.Event
	// Status is the session status after the answer.
	Status lesson.Status
	// Passed is true when the attempt ended and counted as a completed lesson.
	Passed bool
	// Progress is the saved progress once the attempt has ended, nil before.
	Progress *progress.Snapshot
	// Events lists everything published for this answer, in order.
	Events []events.Event
}

// ReviewAnswerResult describes the effect of one review answer.
type ReviewAnswerResult struct {
	Result   domain.ReviewResult
	Complete bool
	Events   []events.Event
}

// Common error types for the progression service
var (
	// ErrAlreadyStarted indicates the learner already has progress on the path.
	ErrAlreadyStarted = errors.New("path already started")

	// ErrPublishFailed indicates state was saved but its events could not all be published.
	ErrPublishFailed = errors.New("failed to publish events")
)

// ServiceError wraps errors from the progression service with additional context.
// This allows consumers to differentiate between different types of service errors
// using errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "start_path", "submit_review")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError returns a new ServiceError for the given operation.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
