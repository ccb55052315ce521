package memory

import (
	"context"
	"testing"
	"time"

	"github.com/phrazzld/scry-progression/internal/domain"
	"github.com/phrazzld/scry-progression/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reviewed(at time.Time, intervalDays int, correct bool) domain.ReviewHistoryRecord {
	return domain.ReviewHistoryRecord{
		IsCorrect:    correct,
		Mode:         domain.ReviewModeFlashcard,
		ReviewedAt:   at,
		IntervalDays: intervalDays,
	}
}

func TestReviewStoreDueFlashcards(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewReviewStore(nil)
	userID := domain.NewUserID()

	fresh := domain.NewFlashcardID()
	dueToday := domain.NewFlashcardID()
	overdue := domain.NewFlashcardID()
	notYet := domain.NewFlashcardID()

	require.NoError(t, s.AddFlashcard(userID, dueToday, reviewed(now.AddDate(0, 0, -3), 3, true)))
	require.NoError(t, s.AddFlashcard(userID, notYet, reviewed(now.AddDate(0, 0, -1), 7, true)))
	require.NoError(t, s.AddFlashcard(userID, overdue, reviewed(now.AddDate(0, 0, -10), 1, false)))
	require.NoError(t, s.AddFlashcard(userID, fresh))
	require.NoError(t, s.AddFlashcard(domain.NewUserID(), domain.NewFlashcardID()))

	due, err := s.DueFlashcards(ctx, userID, now, 0)
	require.NoError(t, err)
	require.Len(t, due, 3)
	assert.Equal(t, fresh, due[0].ID)
	assert.Empty(t, due[0].History)
	assert.Equal(t, overdue, due[1].ID)
	assert.Equal(t, dueToday, due[2].ID, "a card due exactly now is due")
	require.Len(t, due[2].History, 1)
	assert.Equal(t, dueToday, due[2].History[0].FlashcardID)

	limited, err := s.DueFlashcards(ctx, userID, now, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	none, err := s.DueFlashcards(ctx, domain.NewUserID(), now, 0)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestReviewStoreZeroIntervalFallsBackToOneDay(t *testing.T) {
	t.Parallel()
	s := NewReviewStore(nil)
	userID := domain.NewUserID()
	cardID := domain.NewFlashcardID()
	require.NoError(t, s.AddFlashcard(userID, cardID, reviewed(now.Add(-23*time.Hour), 0, true)))

	due, err := s.DueFlashcards(context.Background(), userID, now, 0)
	require.NoError(t, err)
	assert.Empty(t, due)

	due, err = s.DueFlashcards(context.Background(), userID, now.Add(time.Hour), 0)
	require.NoError(t, err)
	assert.Len(t, due, 1)
}

func TestReviewStoreHistory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewReviewStore(nil)
	userID := domain.NewUserID()
	cardID := domain.NewFlashcardID()
	require.NoError(t, s.AddFlashcard(userID, cardID))

	record := reviewed(now, 3, true)
	record.FlashcardID = cardID
	require.NoError(t, s.AppendHistory(ctx, userID, record))

	history, err := s.History(ctx, userID, cardID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, record, history[0])

	history[0].IsCorrect = false
	again, err := s.History(ctx, userID, cardID)
	require.NoError(t, err)
	assert.True(t, again[0].IsCorrect, "returned history is a copy")

	_, err = s.History(ctx, userID, domain.NewFlashcardID())
	assert.ErrorIs(t, err, store.ErrFlashcardNotFound)

	unknown := reviewed(now, 1, false)
	unknown.FlashcardID = domain.NewFlashcardID()
	assert.ErrorIs(t, s.AppendHistory(ctx, userID, unknown), store.ErrFlashcardNotFound)
}

func TestReviewStoreAddFlashcardErrors(t *testing.T) {
	t.Parallel()
	s := NewReviewStore(nil)
	userID := domain.NewUserID()
	cardID := domain.NewFlashcardID()

	require.NoError(t, s.AddFlashcard(userID, cardID))
	assert.ErrorIs(t, s.AddFlashcard(userID, cardID), store.ErrDuplicate)
	assert.ErrorIs(t, s.AddFlashcard(domain.UserID{}, cardID), store.ErrInvalidEntity)
}
