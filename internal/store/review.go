package store

import (
	"context"
	"time"

	"github.com/phrazzld/scry-progression/internal/domain"
)

// ReviewStore defines the interface for review history persistence.
// Version: 1.0
type ReviewStore interface {
	// DueFlashcards returns up to limit cards due for review at now, each with
	// its history oldest first. Cards that have never been reviewed are due.
	// A limit of zero or less means no limit. Returns an empty slice, not an
	// error, when nothing is due.
	DueFlashcards(ctx context.Context, userID domain.UserID, now time.Time, limit int) ([]domain.ReviewFlashcard, error)

	// History returns the review history of one card, oldest first.
	// Returns ErrFlashcardNotFound if the card is not tracked for the user.
	History(ctx context.Context, userID domain.UserID, cardID domain.FlashcardID) ([]domain.ReviewHistoryRecord, error)

	// AppendHistory records a completed review.
	// Returns ErrFlashcardNotFound if the card is not tracked for the user.
	AppendHistory(ctx context.Context, userID domain.UserID, record domain.ReviewHistoryRecord) error
}
