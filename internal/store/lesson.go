package store

import (
	"context"

	"github.com/phrazzld/scry-progression/internal/domain"
)

// LessonStore defines the interface for reading lesson content.
// Version: 1.0
type LessonStore interface {
	// Flashcards returns the cards of a lesson in presentation order.
	// Returns ErrLessonNotFound if the lesson does not exist.
	Flashcards(ctx context.Context, lessonID domain.LessonID) ([]domain.SessionFlashcard, error)
}
