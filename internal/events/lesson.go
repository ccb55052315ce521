package events

import (
	"time"

	"github.com/phrazzld/scry-progression/internal/domain"
)

// CardAdvanced is raised when a lesson answer moves on to the next card.
type CardAdvanced struct {
	Base
	UserID          domain.UserID   `json:"user_id"`
	LessonID        domain.LessonID `json:"lesson_id"`
	NextIndex       int             `json:"next_index"`
	HeartsRemaining int             `json:"hearts_remaining"`
	WasCorrect      bool            `json:"was_correct"`
}

// NewCardAdvanced creates a CardAdvanced event.
func NewCardAdvanced(
	sessionID string,
	userID domain.UserID,
	lessonID domain.LessonID,
	nextIndex, hearts int,
	wasCorrect bool,
	at time.Time,
) CardAdvanced {
	return CardAdvanced{
		Base:            NewBase(TypeCardAdvanced, sessionID, at),
		UserID:          userID,
		LessonID:        lessonID,
		NextIndex:       nextIndex,
		HeartsRemaining: hearts,
		WasCorrect:      wasCorrect,
	}
}

// LessonOutcome is the summary carried by terminal lesson events.
type LessonOutcome struct {
	UserID          domain.UserID   `json:"user_id"`
	LessonID        domain.LessonID `json:"lesson_id"`
	CardsAnswered   int             `json:"cards_answered"`
	CorrectCount    int             `json:"correct_count"`
	AccuracyPercent int             `json:"accuracy_percent"`
	HeartsRemaining int             `json:"hearts_remaining"`
	TimeSpent       time.Duration   `json:"time_spent_ns"`
}

// LessonCompleted is raised when every card of a lesson has been answered.
type LessonCompleted struct {
	Base
	LessonOutcome
	XPEarned int  `json:"xp_earned"`
	Perfect  bool `json:"perfect"`
}

// NewLessonCompleted creates a LessonCompleted event.
func NewLessonCompleted(sessionID string, outcome LessonOutcome, xp int, perfect bool, at time.Time) LessonCompleted {
	return LessonCompleted{
		Base:          NewBase(TypeLessonCompleted, sessionID, at),
		LessonOutcome: outcome,
		XPEarned:      xp,
		Perfect:       perfect,
	}
}

// LessonFailed is raised when hearts run out before the lesson is finished.
type LessonFailed struct {
	Base
	LessonOutcome
}

// NewLessonFailed creates a LessonFailed event.
func NewLessonFailed(sessionID string, outcome LessonOutcome, at time.Time) LessonFailed {
	return LessonFailed{Base: NewBase(TypeLessonFailed, sessionID, at), LessonOutcome: outcome}
}
