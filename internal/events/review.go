package events

import (
	"time"

	"github.com/phrazzld/scry-progression/internal/domain"
)

// CardMastered is raised when a card is answered correctly during review.
type CardMastered struct {
	Base
	UserID       domain.UserID         `json:"user_id"`
	FlashcardID  domain.FlashcardID    `json:"flashcard_id"`
	Mode         domain.ReviewMode     `json:"mode"`
	Interval     domain.ReviewInterval `json:"interval_days"`
	NextReviewAt time.Time             `json:"next_review_at"`
}

// NewCardMastered creates a CardMastered event.
func NewCardMastered(
	sessionID string,
	userID domain.UserID,
	cardID domain.FlashcardID,
	mode domain.ReviewMode,
	interval domain.ReviewInterval,
	nextReviewAt time.Time,
	at time.Time,
) CardMastered {
	return CardMastered{
		Base:         NewBase(TypeCardMastered, sessionID, at),
		UserID:       userID,
		FlashcardID:  cardID,
		Mode:         mode,
		Interval:     interval,
		NextReviewAt: nextReviewAt,
	}
}

// CardStruggled is raised when a card is answered incorrectly during review.
type CardStruggled struct {
	Base
	UserID              domain.UserID      `json:"user_id"`
	FlashcardID         domain.FlashcardID `json:"flashcard_id"`
	Mode                domain.ReviewMode  `json:"mode"`
	ConsecutiveFailures int                `json:"consecutive_failures"`
	IsStruggling        bool               `json:"is_struggling"`
}

// NewCardStruggled creates a CardStruggled event.
func NewCardStruggled(
	sessionID string,
	userID domain.UserID,
	cardID domain.FlashcardID,
	mode domain.ReviewMode,
	failures int,
	struggling bool,
	at time.Time,
) CardStruggled {
	return CardStruggled{
		Base:                NewBase(TypeCardStruggled, sessionID, at),
		UserID:              userID,
		FlashcardID:         cardID,
		Mode:                mode,
		ConsecutiveFailures: failures,
		IsStruggling:        struggling,
	}
}

// CardMarkedAsStruggling is raised when a card first crosses the struggling threshold.
type CardMarkedAsStruggling struct {
	Base
	UserID        domain.UserID      `json:"user_id"`
	FlashcardID   domain.FlashcardID `json:"flashcard_id"`
	FailureCount  int                `json:"failure_count"`
	TotalAttempts int                `json:"total_attempts"`
}

// NewCardMarkedAsStruggling creates a CardMarkedAsStruggling event.
func NewCardMarkedAsStruggling(
	sessionID string,
	userID domain.UserID,
	cardID domain.FlashcardID,
	failures, attempts int,
	at time.Time,
) CardMarkedAsStruggling {
	return CardMarkedAsStruggling{
		Base:          NewBase(TypeCardMarkedStruggling, sessionID, at),
		UserID:        userID,
		FlashcardID:   cardID,
		FailureCount:  failures,
		TotalAttempts: attempts,
	}
}

// ReviewSessionCompleted is raised once, after the last due card is reviewed.
type ReviewSessionCompleted struct {
	Base
	UserID          domain.UserID     `json:"user_id"`
	Mode            domain.ReviewMode `json:"mode"`
	TotalReviewed   int               `json:"total_reviewed"`
	CorrectCount    int               `json:"correct_count"`
	AccuracyPercent int               `json:"accuracy_percent"`
}

// NewReviewSessionCompleted creates a ReviewSessionCompleted event.
func NewReviewSessionCompleted(
	sessionID string,
	userID domain.UserID,
	mode domain.ReviewMode,
	total, correct, accuracy int,
	at time.Time,
) ReviewSessionCompleted {
	return ReviewSessionCompleted{
		Base:            NewBase(TypeReviewSessionCompleted, sessionID, at),
		UserID:          userID,
		Mode:            mode,
		TotalReviewed:   total,
		CorrectCount:    correct,
		AccuracyPercent: accuracy,
	}
}
