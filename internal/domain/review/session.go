// Package review implements the review session aggregate: one pass over a
// batch of flashcards that are due for spaced-repetition review.
package review

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-progression/internal/domain"
	"github.com/phrazzld/scry-progression/internal/domain/srs"
	"github.com/phrazzld/scry-progression/internal/events"
)

// Session is an in-progress review of due flashcards.
//
// The cursor only moves forward, so each card is reviewed exactly once. The
// session is complete once every card has a result. A Session is not safe for
// concurrent use.
type Session struct {
	id        uuid.UUID
	userID    domain.UserID
	mode      domain.ReviewMode
	cards     []domain.ReviewFlashcard
	srs       srs.Service
	startedAt time.Time

	currentIndex int
	results      map[domain.FlashcardID]domain.ReviewResult
	correct      int

	events events.Buffer
}

// Start begins a review of dueCards. The cards are reviewed in the order
// given. A nil policy falls back to the default spaced-repetition service.
func Start(
	userID domain.UserID,
	dueCards []domain.ReviewFlashcard,
	mode domain.ReviewMode,
	policy srs.Service,
	now time.Time,
) (*Session, error) {
	if userID.IsZero() {
		return nil, domain.NewValidationError(domain.CodeInvalidID, "user id is required")
	}
	if !mode.Valid() {
		return nil, domain.NewValidationError(domain.CodeInvalidReviewMode, "unknown review mode %q", mode)
	}
	if len(dueCards) == 0 {
		return nil, domain.NewDomainError(domain.CodeReviewNoDueCards, "no cards are due for review")
	}
	if policy == nil {
		policy = srs.NewDefaultService()
	}

	seen := make(map[domain.FlashcardID]struct{}, len(dueCards))
	cards := make([]domain.ReviewFlashcard, len(dueCards))
	for i, card := range dueCards {
		if card.ID.IsZero() {
			return nil, domain.NewValidationError(domain.CodeInvalidID, "card %d has no id", i)
		}
		if _, dup := seen[card.ID]; dup {
			return nil, domain.NewValidationError(domain.CodeInvalidID, "card %s is listed twice", card.ID)
		}
		seen[card.ID] = struct{}{}

		history := make([]domain.ReviewHistoryRecord, len(card.History))
		copy(history, card.History)
		cards[i] = domain.ReviewFlashcard{ID: card.ID, History: history}
	}

	return &Session{
		id:        uuid.New(),
		userID:    userID,
		mode:      mode,
		cards:     cards,
		srs:       policy,
		startedAt: now,
		results:   make(map[domain.FlashcardID]domain.ReviewResult, len(cards)),
	}, nil
}

// Answer is the evaluated outcome of one review that has not yet been
// applied to the session.
type Answer struct {
	Result domain.ReviewResult
	Events []events.Event

	index int
}

// SubmitReview records the answer for the current card. It is Evaluate
// followed by Commit.
//
// A correct answer raises CardMastered with the next interval. An incorrect
// one raises CardStruggled, plus CardMarkedAsStruggling when this answer tips
// the card into the struggling classification. Answering the last card also
// raises ReviewSessionCompleted.
func (s *Session) SubmitReview(isCorrect bool, now time.Time) ([]events.Event, error) {
	answer, err := s.Evaluate(isCorrect, now)
	if err != nil {
		return nil, err
	}
	if err := s.Commit(answer); err != nil {
		return nil, err
	}
	return answer.Events, nil
}

// Evaluate computes the result and events for answering the current card
// without changing the session. Callers that persist the result first call
// Commit once persistence succeeds.
func (s *Session) Evaluate(isCorrect bool, now time.Time) (Answer, error) {
	if s.IsComplete() {
		return Answer{}, domain.NewDomainError(domain.CodeReviewSessionComplete,
			"all %d cards have been reviewed", len(s.cards))
	}

	card := s.cards[s.currentIndex]
	sessionID := s.id.String()
	interval := s.srs.CalculateNextInterval(card.History, isCorrect)

	var out []events.Event
	if isCorrect {
		out = append(out, events.NewCardMastered(sessionID, s.userID, card.ID, s.mode,
			interval, s.srs.NextReviewDate(interval, now), now))
	} else {
		after := append(append(make([]domain.ReviewHistoryRecord, 0, len(card.History)+1), card.History...),
			domain.ReviewHistoryRecord{FlashcardID: card.ID, IsCorrect: false, Mode: s.mode, ReviewedAt: now})

		wasStruggling := s.srs.IsStruggling(card.History)
		struggling := s.srs.IsStruggling(after)

		out = append(out, events.NewCardStruggled(sessionID, s.userID, card.ID, s.mode,
			s.srs.ConsecutiveFailures(after), struggling, now))
		if struggling && !wasStruggling {
			out = append(out, events.NewCardMarkedAsStruggling(sessionID, s.userID, card.ID,
				s.srs.TotalFailures(after), len(after), now))
		}
	}

	correct := s.correct
	if isCorrect {
		correct++
	}
	reviewed := len(s.results) + 1
	if reviewed == len(s.cards) {
		out = append(out, events.NewReviewSessionCompleted(sessionID, s.userID, s.mode,
			reviewed, correct, accuracyPercent(correct, reviewed), now))
	}

	return Answer{
		Result: domain.ReviewResult{
			FlashcardID: card.ID,
			IsCorrect:   isCorrect,
			Mode:        s.mode,
			ReviewedAt:  now,
			Interval:    interval,
		},
		Events: out,
		index:  s.currentIndex,
	}, nil
}

// Commit applies an answer produced by Evaluate: it records the result,
// buffers the events and moves the cursor. An answer evaluated for another
// card is rejected.
func (s *Session) Commit(answer Answer) error {
	if s.IsComplete() {
		return domain.NewDomainError(domain.CodeReviewSessionComplete,
			"all %d cards have been reviewed", len(s.cards))
	}
	if answer.index != s.currentIndex || answer.Result.FlashcardID != s.cards[s.currentIndex].ID {
		return domain.NewValidationError(domain.CodeInvalidID,
			"answer for card %s does not match the current card", answer.Result.FlashcardID)
	}

	if answer.Result.IsCorrect {
		s.correct++
	}
	s.results[answer.Result.FlashcardID] = answer.Result
	if s.currentIndex < len(s.cards)-1 {
		s.currentIndex++
	}

	s.events.Record(answer.Events...)
	return nil
}

// ID identifies the session.
func (s *Session) ID() uuid.UUID { return s.id }

// UserID returns the learner reviewing.
func (s *Session) UserID() domain.UserID { return s.userID }

// Mode returns the review mode.
func (s *Session) Mode() domain.ReviewMode { return s.mode }

// StartedAt returns when the session began.
func (s *Session) StartedAt() time.Time { return s.startedAt }

// IsComplete reports whether every card has been reviewed.
func (s *Session) IsComplete() bool { return len(s.results) == len(s.cards) }

// CurrentCard returns the card awaiting an answer. ok is false once the
// session is complete.
func (s *Session) CurrentCard() (card domain.ReviewFlashcard, ok bool) {
	if s.IsComplete() {
		return domain.ReviewFlashcard{}, false
	}
	return s.cards[s.currentIndex], true
}

// CurrentIndex returns the cursor position. It stays on the last card once
// the session is complete.
func (s *Session) CurrentIndex() int { return s.currentIndex }

// TotalCards returns the number of cards in the session.
func (s *Session) TotalCards() int { return len(s.cards) }

// ReviewedCount returns the number of cards answered so far.
func (s *Session) ReviewedCount() int { return len(s.results) }

// CorrectCount returns the number of correct answers so far.
func (s *Session) CorrectCount() int { return s.correct }

// AccuracyPercent returns the rounded share of correct answers among the
// cards reviewed so far, or 0 before the first answer.
func (s *Session) AccuracyPercent() int {
	return accuracyPercent(s.correct, len(s.results))
}

func accuracyPercent(correct, reviewed int) int {
	if reviewed == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(reviewed) * 100))
}

// Result returns the result recorded for a card, if it has been reviewed.
func (s *Session) Result(cardID domain.FlashcardID) (domain.ReviewResult, bool) {
	r, ok := s.results[cardID]
	return r, ok
}

// Results returns the recorded results in review order.
func (s *Session) Results() []domain.ReviewResult {
	out := make([]domain.ReviewResult, 0, len(s.results))
	for _, card := range s.cards {
		if r, ok := s.results[card.ID]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Events returns a copy of the events raised since the last drain.
func (s *Session) Events() []events.Event { return s.events.Events() }

// ClearEvents discards the buffered events.
func (s *Session) ClearEvents() { s.events.Clear() }

// PullEvents returns the buffered events and clears the buffer.
func (s *Session) PullEvents() []events.Event { return s.events.Drain() }
