package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/phrazzld/scry-progression/internal/domain"
	"github.com/phrazzld/scry-progression/internal/platform/logger"
	"github.com/phrazzld/scry-progression/internal/store"
)

type trackedCard struct {
	seq     int
	history []domain.ReviewHistoryRecord
}

// ReviewStore implements store.ReviewStore over per-user card histories.
type ReviewStore struct {
	mu     sync.RWMutex
	cards  map[domain.UserID]map[domain.FlashcardID]*trackedCard
	seq    int
	logger *slog.Logger
}

// NewReviewStore creates an empty ReviewStore.
// If logger is nil, a default logger will be used.
func NewReviewStore(logger *slog.Logger) *ReviewStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewStore{
		cards:  make(map[domain.UserID]map[domain.FlashcardID]*trackedCard),
		logger: logger.With(slog.String("component", "review_store")),
	}
}

// Ensure ReviewStore implements store.ReviewStore interface
var _ store.ReviewStore = (*ReviewStore)(nil)

// AddFlashcard starts tracking a card for a user with an optional prior
// history, oldest first. Returns ErrDuplicate if the card is already tracked.
func (s *ReviewStore) AddFlashcard(
	userID domain.UserID,
	cardID domain.FlashcardID,
	history ...domain.ReviewHistoryRecord,
) error {
	if userID.IsZero() || cardID.IsZero() {
		return fmt.Errorf("%w: user and card ids are required", store.ErrInvalidEntity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	userCards, ok := s.cards[userID]
	if !ok {
		userCards = make(map[domain.FlashcardID]*trackedCard)
		s.cards[userID] = userCards
	}
	if _, exists := userCards[cardID]; exists {
		return fmt.Errorf("%w: flashcard %s", store.ErrDuplicate, cardID)
	}

	s.seq++
	records := make([]domain.ReviewHistoryRecord, len(history))
	for i, r := range history {
		r.FlashcardID = cardID
		records[i] = r
	}
	userCards[cardID] = &trackedCard{seq: s.seq, history: records}
	return nil
}

// dueAt returns when a card next falls due. Never-reviewed cards are due
// from the zero time.
func dueAt(history []domain.ReviewHistoryRecord) time.Time {
	if len(history) == 0 {
		return time.Time{}
	}
	last := history[len(history)-1]
	interval, err := domain.NewReviewInterval(last.IntervalDays)
	if err != nil {
		interval = domain.InitialInterval()
	}
	return interval.NextReviewDate(last.ReviewedAt)
}

// DueFlashcards implements store.ReviewStore.DueFlashcards
// Cards are returned most overdue first; never-reviewed cards lead, in the
// order they were added.
func (s *ReviewStore) DueFlashcards(
	ctx context.Context,
	userID domain.UserID,
	now time.Time,
	limit int,
) ([]domain.ReviewFlashcard, error) {
	type candidate struct {
		due  time.Time
		seq  int
		card domain.ReviewFlashcard
	}

	s.mu.RLock()
	var due []candidate
	for id, tracked := range s.cards[userID] {
		at := dueAt(tracked.history)
		if at.After(now) {
			continue
		}
		due = append(due, candidate{
			due:  at,
			seq:  tracked.seq,
			card: domain.ReviewFlashcard{ID: id, History: copyHistory(tracked.history)},
		})
	}
	s.mu.RUnlock()

	sort.Slice(due, func(i, j int) bool {
		if !due[i].due.Equal(due[j].due) {
			return due[i].due.Before(due[j].due)
		}
		return due[i].seq < due[j].seq
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}

	out := make([]domain.ReviewFlashcard, len(due))
	for i, c := range due {
		out[i] = c.card
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("loaded due flashcards",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(out)),
		slog.Int("limit", limit))
	return out, nil
}

// History implements store.ReviewStore.History
func (s *ReviewStore) History(
	ctx context.Context,
	userID domain.UserID,
	cardID domain.FlashcardID,
) ([]domain.ReviewHistoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tracked, ok := s.cards[userID][cardID]
	if !ok {
		return nil, store.ErrFlashcardNotFound
	}
	return copyHistory(tracked.history), nil
}

// AppendHistory implements store.ReviewStore.AppendHistory
func (s *ReviewStore) AppendHistory(
	ctx context.Context,
	userID domain.UserID,
	record domain.ReviewHistoryRecord,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	s.mu.Lock()
	defer s.mu.Unlock()

	tracked, ok := s.cards[userID][record.FlashcardID]
	if !ok {
		log.Warn("review recorded for untracked flashcard",
			slog.String("user_id", userID.String()),
			slog.String("flashcard_id", record.FlashcardID.String()))
		return store.ErrFlashcardNotFound
	}
	tracked.history = append(tracked.history, record)

	log.Debug("review history appended",
		slog.String("user_id", userID.String()),
		slog.String("flashcard_id", record.FlashcardID.String()),
		slog.Bool("is_correct", record.IsCorrect),
		slog.Int("interval_days", record.IntervalDays))
	return nil
}

func copyHistory(history []domain.ReviewHistoryRecord) []domain.ReviewHistoryRecord {
	out := make([]domain.ReviewHistoryRecord, len(history))
	copy(out, history)
	return out
}
