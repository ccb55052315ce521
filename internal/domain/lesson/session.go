// Package lesson implements the lesson session aggregate: a single attempt at
// a lesson, answered card by card until it is completed or hearts run out.
package lesson

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-progression/internal/domain"
	"github.com/phrazzld/scry-progression/internal/events"
)

// Status is the state of a lesson session.
type Status string

// Possible session statuses
const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// IsTerminal reports whether no more answers are accepted.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Session is an in-progress lesson attempt. It is not safe for concurrent use.
type Session struct {
	id       uuid.UUID
	lessonID domain.LessonID
	userID   domain.UserID
	cards    []domain.SessionFlashcard
	rewards  RewardParams

	status       Status
	currentIndex int
	hearts       domain.Hearts
	answered     int
	correct      int
	perfect      bool
	timeSpent    time.Duration
	startedAt    time.Time

	events events.Buffer
}

// Option configures a Session at start.
type Option func(*Session)

// WithRewards overrides the XP reward policy.
func WithRewards(p RewardParams) Option {
	return func(s *Session) { s.rewards = p }
}

// Start begins a lesson attempt with the learner's current hearts.
func Start(
	lessonID domain.LessonID,
	userID domain.UserID,
	cards []domain.SessionFlashcard,
	hearts domain.Hearts,
	now time.Time,
	opts ...Option,
) (*Session, error) {
	if lessonID.IsZero() || userID.IsZero() {
		return nil, domain.NewValidationError(domain.CodeInvalidID, "lesson and user ids are required")
	}
	if len(cards) == 0 {
		return nil, domain.NewDomainError(domain.CodeLessonNoCards, "lesson %s has no cards", lessonID)
	}
	if hearts.IsEmpty() {
		return nil, domain.NewDomainError(domain.CodeNoHearts, "cannot start a lesson without hearts")
	}

	s := &Session{
		id:        uuid.New(),
		lessonID:  lessonID,
		userID:    userID,
		cards:     append([]domain.SessionFlashcard(nil), cards...),
		rewards:   DefaultRewardParams(),
		status:    StatusActive,
		hearts:    hearts,
		perfect:   true,
		startedAt: now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.rewards.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Answer is the evaluated effect of one lesson answer that has not yet been
// applied to the session.
type Answer struct {
	// Event is the transition taken: CardAdvanced, LessonCompleted or LessonFailed.
	Event events.Event
	// Status is the session status once the answer is committed.
	Status Status

	answeredBefore int
	currentIndex   int
	hearts         domain.Hearts
	answered       int
	correct        int
	perfect        bool
	timeSpent      time.Duration
	xp             domain.XP
}

// HeartsRemaining returns the attempt's hearts after the answer.
func (a Answer) HeartsRemaining() domain.Hearts { return a.hearts }

// AccuracyPercent returns the attempt's accuracy after the answer.
func (a Answer) AccuracyPercent() int { return accuracyPercent(a.correct, a.answered) }

// TimeSpent returns the attempt's total answer time after the answer.
func (a Answer) TimeSpent() time.Duration { return a.timeSpent }

// XPReward returns the completion reward for the answers so far.
func (a Answer) XPReward() domain.XP { return a.xp }

// SubmitAnswer records the answer to the current card and returns the single
// event describing the transition taken: CardAdvanced, LessonCompleted or
// LessonFailed. It is Evaluate followed by Commit.
//
// An incorrect answer costs a heart. Losing the last heart fails the lesson,
// even on the final card.
func (s *Session) SubmitAnswer(isCorrect bool, timeSpent time.Duration, now time.Time) (events.Event, error) {
	answer, err := s.Evaluate(isCorrect, timeSpent, now)
	if err != nil {
		return nil, err
	}
	if err := s.Commit(answer); err != nil {
		return nil, err
	}
	return answer.Event, nil
}

// Evaluate computes the effect of answering the current card without
// changing the session.
func (s *Session) Evaluate(isCorrect bool, timeSpent time.Duration, now time.Time) (Answer, error) {
	if s.status.IsTerminal() {
		return Answer{}, domain.NewDomainError(domain.CodeLessonSessionEnded, "lesson session is %s", s.status)
	}
	if timeSpent < 0 {
		return Answer{}, domain.NewValidationError(domain.CodeInvalidTimeSpent,
			"time spent cannot be negative, got %s", timeSpent)
	}

	a := Answer{
		answeredBefore: s.answered,
		currentIndex:   s.currentIndex,
		hearts:         s.hearts,
		answered:       s.answered + 1,
		correct:        s.correct,
		perfect:        s.perfect,
		timeSpent:      s.timeSpent + timeSpent,
	}
	if !isCorrect {
		remaining, err := s.hearts.Deduct()
		if err != nil {
			// An active session always holds at least one heart.
			return Answer{}, err
		}
		a.hearts = remaining
		a.perfect = false
	} else {
		a.correct++
	}
	a.xp = s.rewards.Reward(a.perfect)

	sessionID := s.id.String()
	outcome := events.LessonOutcome{
		UserID:          s.userID,
		LessonID:        s.lessonID,
		CardsAnswered:   a.answered,
		CorrectCount:    a.correct,
		AccuracyPercent: a.AccuracyPercent(),
		HeartsRemaining: a.hearts.Remaining(),
		TimeSpent:       a.timeSpent,
	}
	switch {
	case a.hearts.IsEmpty():
		a.Status = StatusFailed
		a.Event = events.NewLessonFailed(sessionID, outcome, now)
	case a.answered == len(s.cards):
		a.Status = StatusCompleted
		a.Event = events.NewLessonCompleted(sessionID, outcome, a.xp.Amount(), a.perfect, now)
	default:
		a.Status = StatusActive
		a.currentIndex++
		a.Event = events.NewCardAdvanced(sessionID, s.userID, s.lessonID, a.currentIndex,
			a.hearts.Remaining(), isCorrect, now)
	}
	return a, nil
}

// Commit applies an answer produced by Evaluate. An answer evaluated before
// another answer was committed is rejected.
func (s *Session) Commit(answer Answer) error {
	if s.status.IsTerminal() {
		return domain.NewDomainError(domain.CodeLessonSessionEnded, "lesson session is %s", s.status)
	}
	if answer.Event == nil || answer.answeredBefore != s.answered {
		return domain.NewValidationError(domain.CodeInvalidID,
			"answer does not follow answer %d of lesson session %s", s.answered, s.id)
	}

	s.status = answer.Status
	s.currentIndex = answer.currentIndex
	s.hearts = answer.hearts
	s.answered = answer.answered
	s.correct = answer.correct
	s.perfect = answer.perfect
	s.timeSpent = answer.timeSpent

	s.events.Record(answer.Event)
	return nil
}

// XPReward returns the XP earned for completing the lesson with the answers
// given so far: the base reward plus the perfect bonus when no answer was wrong.
func (s *Session) XPReward() domain.XP {
	return s.rewards.Reward(s.perfect)
}

// ID identifies the session.
func (s *Session) ID() uuid.UUID { return s.id }

// LessonID returns the lesson being attempted.
func (s *Session) LessonID() domain.LessonID { return s.lessonID }

// UserID returns the learner.
func (s *Session) UserID() domain.UserID { return s.userID }

// Status returns the session state.
func (s *Session) Status() Status { return s.status }

// StartedAt returns when the attempt began.
func (s *Session) StartedAt() time.Time { return s.startedAt }

// CurrentCard returns the card awaiting an answer. ok is false once the
// session has ended.
func (s *Session) CurrentCard() (card domain.SessionFlashcard, ok bool) {
	if s.status.IsTerminal() {
		return domain.SessionFlashcard{}, false
	}
	return s.cards[s.currentIndex], true
}

// CurrentIndex returns the position of the current card.
func (s *Session) CurrentIndex() int { return s.currentIndex }

// TotalCards returns the number of cards in the lesson.
func (s *Session) TotalCards() int { return len(s.cards) }

// AnsweredCount returns the number of answers submitted.
func (s *Session) AnsweredCount() int { return s.answered }

// CorrectCount returns the number of correct answers.
func (s *Session) CorrectCount() int { return s.correct }

// HeartsRemaining returns the hearts left in this attempt.
func (s *Session) HeartsRemaining() domain.Hearts { return s.hearts }

// AccuracyPercent returns the rounded share of correct answers, or 0 before
// the first answer.
func (s *Session) AccuracyPercent() int {
	return accuracyPercent(s.correct, s.answered)
}

func accuracyPercent(correct, answered int) int {
	if answered == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(answered) * 100))
}

// IsPerfect reports whether every answer so far was correct.
func (s *Session) IsPerfect() bool { return s.perfect }

// TimeSpent returns the total answer time recorded.
func (s *Session) TimeSpent() time.Duration { return s.timeSpent }

// Events returns a copy of the events raised since the last drain.
func (s *Session) Events() []events.Event { return s.events.Events() }

// ClearEvents discards the buffered events.
func (s *Session) ClearEvents() { s.events.Clear() }

// PullEvents returns the buffered events and clears the buffer.
func (s *Session) PullEvents() []events.Event { return s.events.Drain() }
