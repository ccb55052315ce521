package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/scry-progression/internal/domain"
	"github.com/phrazzld/scry-progression/internal/store"
)

// MockLessonStore implements store.LessonStore for testing
type MockLessonStore struct {
	FlashcardsFn func(ctx context.Context, lessonID domain.LessonID) ([]domain.SessionFlashcard, error)

	// Default response values
	Cards []domain.SessionFlashcard
	Err   error

	FlashcardsCalls struct {
		mu        sync.Mutex
		Count     int
		LessonIDs []domain.LessonID
	}
}

// Ensure MockLessonStore implements store.LessonStore interface
var _ store.LessonStore = (*MockLessonStore)(nil)

// Flashcards implements the store.LessonStore interface
func (m *MockLessonStore) Flashcards(ctx context.Context, lessonID domain.LessonID) ([]domain.SessionFlashcard, error) {
	m.FlashcardsCalls.mu.Lock()
	m.FlashcardsCalls.Count++
	m.FlashcardsCalls.LessonIDs = append(m.FlashcardsCalls.LessonIDs, lessonID)
	m.FlashcardsCalls.mu.Unlock()

	if m.FlashcardsFn != nil {
		return m.FlashcardsFn(ctx, lessonID)
	}
	return m.Cards, m.Err
}
