package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/scry-progression/internal/domain"
	"github.com/phrazzld/scry-progression/internal/platform/logger"
	"github.com/phrazzld/scry-progression/internal/store"
)

// LessonStore implements store.LessonStore over a fixed lesson catalog.
type LessonStore struct {
	mu      sync.RWMutex
	lessons map[domain.LessonID][]domain.SessionFlashcard
	logger  *slog.Logger
}

// NewLessonStore creates an empty LessonStore.
// If logger is nil, a default logger will be used.
func NewLessonStore(logger *slog.Logger) *LessonStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &LessonStore{
		lessons: make(map[domain.LessonID][]domain.SessionFlashcard),
		logger:  logger.With(slog.String("component", "lesson_store")),
	}
}

// Ensure LessonStore implements store.LessonStore interface
var _ store.LessonStore = (*LessonStore)(nil)

// AddLesson registers or replaces a lesson's cards, in presentation order.
func (s *LessonStore) AddLesson(lessonID domain.LessonID, cards ...domain.SessionFlashcard) error {
	if lessonID.IsZero() {
		return fmt.Errorf("%w: lesson id is required", store.ErrInvalidEntity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lessons[lessonID] = append([]domain.SessionFlashcard(nil), cards...)
	return nil
}

// Flashcards implements store.LessonStore.Flashcards
func (s *LessonStore) Flashcards(ctx context.Context, lessonID domain.LessonID) ([]domain.SessionFlashcard, error) {
	s.mu.RLock()
	cards, ok := s.lessons[lessonID]
	s.mu.RUnlock()

	if !ok {
		logger.FromContextOrDefault(ctx, s.logger).Debug("lesson not found",
			slog.String("lesson_id", lessonID.String()))
		return nil, store.ErrLessonNotFound
	}
	return append([]domain.SessionFlashcard(nil), cards...), nil
}
