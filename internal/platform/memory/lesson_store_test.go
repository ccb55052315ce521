package memory

import (
	"context"
	"testing"

	"github.com/phrazzld/scry-progression/internal/domain"
	"github.com/phrazzld/scry-progression/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLessonStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewLessonStore(nil)
	lessonID := domain.NewLessonID()
	cards := []domain.SessionFlashcard{
		{ID: domain.NewFlashcardID(), Front: "hola", Back: "hello"},
		{ID: domain.NewFlashcardID(), Front: "adiós", Back: "goodbye"},
	}
	require.NoError(t, s.AddLesson(lessonID, cards...))

	got, err := s.Flashcards(ctx, lessonID)
	require.NoError(t, err)
	assert.Equal(t, cards, got)

	got[0].Front = "changed"
	again, err := s.Flashcards(ctx, lessonID)
	require.NoError(t, err)
	assert.Equal(t, "hola", again[0].Front)

	_, err = s.Flashcards(ctx, domain.NewLessonID())
	assert.ErrorIs(t, err, store.ErrLessonNotFound)

	assert.ErrorIs(t, s.AddLesson(domain.LessonID{}), store.ErrInvalidEntity)
}
