package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/phrazzld/scry-progression/internal/domain"
	"github.com/phrazzld/scry-progression/internal/store"
)

// MockReviewStore implements store.ReviewStore for testing
type MockReviewStore struct {
	// Custom behavior functions
	DueFlashcardsFn func(ctx context.Context, userID domain.UserID, now time.Time, limit int) ([]domain.ReviewFlashcard, error)
	HistoryFn       func(ctx context.Context, userID domain.UserID, cardID domain.FlashcardID) ([]domain.ReviewHistoryRecord, error)
	AppendHistoryFn func(ctx context.Context, userID domain.UserID, record domain.ReviewHistoryRecord) error

	// Default response values
	DueCards []domain.ReviewFlashcard
	Err      error

	// Call tracking for verification
	DueCalls struct {
		mu     sync.Mutex
		Count  int
		Limits []int
	}

	AppendCalls struct {
		mu      sync.Mutex
		Count   int
		UserIDs []domain.UserID
		Records []domain.ReviewHistoryRecord
	}
}

// Ensure MockReviewStore implements store.ReviewStore interface
var _ store.ReviewStore = (*MockReviewStore)(nil)

// DueFlashcards implements the store.ReviewStore interface
func (m *MockReviewStore) DueFlashcards(
	ctx context.Context,
	userID domain.UserID,
	now time.Time,
	limit int,
) ([]domain.ReviewFlashcard, error) {
	m.DueCalls.mu.Lock()
	m.DueCalls.Count++
	m.DueCalls.Limits = append(m.DueCalls.Limits, limit)
	m.DueCalls.mu.Unlock()

	if m.DueFlashcardsFn != nil {
		return m.DueFlashcardsFn(ctx, userID, now, limit)
	}
	return m.DueCards, m.Err
}

// History implements the store.ReviewStore interface.
// By default it returns the history of the matching card in DueCards.
func (m *MockReviewStore) History(
	ctx context.Context,
	userID domain.UserID,
	cardID domain.FlashcardID,
) ([]domain.ReviewHistoryRecord, error) {
	if m.HistoryFn != nil {
		return m.HistoryFn(ctx, userID, cardID)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	for _, card := range m.DueCards {
		if card.ID == cardID {
			return card.History, nil
		}
	}
	return nil, store.ErrFlashcardNotFound
}

// AppendHistory implements the store.ReviewStore interface
func (m *MockReviewStore) AppendHistory(ctx context.Context, userID domain.UserID, record domain.ReviewHistoryRecord) error {
	m.AppendCalls.mu.Lock()
	m.AppendCalls.Count++
	m.AppendCalls.UserIDs = append(m.AppendCalls.UserIDs, userID)
	m.AppendCalls.Records = append(m.AppendCalls.Records, record)
	m.AppendCalls.mu.Unlock()

	if m.AppendHistoryFn != nil {
		return m.AppendHistoryFn(ctx, userID, record)
	}
	return m.Err
}

// AppendedRecords returns a copy of the records passed to AppendHistory.
func (m *MockReviewStore) AppendedRecords() []domain.ReviewHistoryRecord {
	m.AppendCalls.mu.Lock()
	defer m.AppendCalls.mu.Unlock()
	return append([]domain.ReviewHistoryRecord(nil), m.AppendCalls.Records...)
}
