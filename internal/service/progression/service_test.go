package progression

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/phrazzld/scry-progression/internal/domain"
	"github.com/phrazzld/scry-progression/internal/domain/lesson"
	"github.com/phrazzld/scry-progression/internal/domain/progress"
	"github.com/phrazzld/scry-progression/internal/events"
	"github.com/phrazzld/scry-progression/internal/mocks"
	"github.com/phrazzld/scry-progression/internal/platform/logger"
	"github.com/phrazzld/scry-progression/internal/platform/memory"
	"github.com/phrazzld/scry-progression/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

type harness struct {
	svc      Service
	progress *memory.ProgressStore
	reviews  *memory.ReviewStore
	lessons  *memory.LessonStore
	handler  *mocks.MockEventHandler
	userID   domain.UserID
	pathID   domain.PathID
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	log, _ := logger.NewTestLogger(t)

	h := &harness{
		progress: memory.NewProgressStore(log),
		reviews:  memory.NewReviewStore(log),
		lessons:  memory.NewLessonStore(log),
		handler:  &mocks.MockEventHandler{},
		userID:   domain.NewUserID(),
		pathID:   domain.NewPathID(),
	}
	svc, err := NewService(Deps{
		Progress:  h.progress,
		Reviews:   h.reviews,
		Lessons:   h.lessons,
		Publisher: events.NewInMemoryPublisher(log, h.handler),
		Logger:    log,
	}, opts)
	require.NoError(t, err)
	h.svc = svc
	return h
}

// started returns a harness whose learner has started the path, with the
// start events already cleared.
func started(t *testing.T, opts Options) *harness {
	t.Helper()
	h := newHarness(t, opts)
	_, err := h.svc.StartPath(context.Background(), h.userID, h.pathID, nil, now)
	require.NoError(t, err)
	h.handler.Reset()
	return h
}

func (h *harness) addLesson(t *testing.T, n int) domain.LessonID {
	t.Helper()
	lessonID := domain.NewLessonID()
	cards := make([]domain.SessionFlashcard, n)
	for i := range cards {
		cards[i] = domain.SessionFlashcard{ID: domain.NewFlashcardID(), Front: "q", Back: "a"}
	}
	require.NoError(t, h.lessons.AddLesson(lessonID, cards...))
	return lessonID
}

// playLesson starts a lesson and submits answers until the attempt ends or
// the answers run out, returning the last result.
func (h *harness) playLesson(t *testing.T, lessonID domain.LessonID, at time.Time, answers ...bool) *LessonAnswerResult {
	t.Helper()
	ctx := context.Background()
	attempt, err := h.svc.StartLesson(ctx, h.userID, h.pathID, lessonID, at)
	require.NoError(t, err)

	var last *LessonAnswerResult
	for _, correct := range answers {
		last, err = h.svc.SubmitLessonAnswer(ctx, attempt, correct, 10*time.Second, at)
		require.NoError(t, err)
		if last.Status.IsTerminal() {
			break
		}
	}
	return last
}

func TestNewService(t *testing.T) {
	t.Parallel()

	deps := Deps{
		Progress: &mocks.MockProgressStore{},
		Reviews:  &mocks.MockReviewStore{},
		Lessons:  &mocks.MockLessonStore{},
	}

	svc, err := NewService(deps, DefaultOptions())
	require.NoError(t, err)
	assert.NotNil(t, svc)

	invalid := []Options{
		{Rewards: lesson.RewardParams{BaseXP: -1}, MaxSaveAttempts: 1},
		{Rewards: lesson.DefaultRewardParams(), PassThreshold: 101, MaxSaveAttempts: 1},
		{Rewards: lesson.DefaultRewardParams(), HeartRefillCost: -5, MaxSaveAttempts: 1},
		{Rewards: lesson.DefaultRewardParams(), MaxSaveAttempts: 0},
	}
	for _, opts := range invalid {
		_, err := NewService(deps, opts)
		assert.Error(t, err, "options %+v", opts)
	}

	assert.Panics(t, func() {
		_, _ = NewService(Deps{Reviews: deps.Reviews, Lessons: deps.Lessons}, DefaultOptions())
	})
}

func TestStartPath(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, DefaultOptions())
	groupID := domain.NewGroupID()

	snapshot, err := h.svc.StartPath(ctx, h.userID, h.pathID, &groupID, now)
	require.NoError(t, err)
	assert.Equal(t, domain.MaxHearts, snapshot.Hearts)
	assert.Equal(t, 0, snapshot.XP)
	assert.Equal(t, 1, snapshot.Version)
	require.NotNil(t, snapshot.GroupID)
	assert.Equal(t, groupID, *snapshot.GroupID)
	assert.Equal(t, []events.Type{events.TypeProgressStarted}, h.handler.Types())

	_, err = h.svc.StartPath(ctx, h.userID, h.pathID, nil, now)
	assert.ErrorIs(t, err, ErrAlreadyStarted)

	_, err = h.svc.StartPath(ctx, domain.UserID{}, h.pathID, nil, now)
	assert.Equal(t, domain.CodeInvalidID, domain.CodeOf(err))

	list, err := h.svc.ListProgress(ctx, h.userID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestGetProgressNotStarted(t *testing.T) {
	t.Parallel()
	h := newHarness(t, DefaultOptions())

	_, err := h.svc.GetProgress(context.Background(), h.userID, h.pathID)

	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrProgressNotFound)
	var serviceErr *ServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, "get_progress", serviceErr.Operation)
}

func TestPerfectLessonUpdatesProgress(t *testing.T) {
	t.Parallel()
	h := started(t, DefaultOptions())
	lessonID := h.addLesson(t, 3)

	result := h.playLesson(t, lessonID, now, true, true, true)

	require.NotNil(t, result)
	assert.Equal(t, lesson.StatusCompleted, result.Status)
	assert.True(t, result.Passed)
	assert.Equal(t, events.TypeLessonCompleted, result.Event.EventType())
	require.NotNil(t, result.Progress)
	assert.Equal(t, 15, result.Progress.XP)
	assert.Equal(t, domain.MaxHearts, result.Progress.Hearts)
	assert.Equal(t, 1, result.Progress.StreakCount)
	assert.Equal(t, 30, result.Progress.TimeSpentSeconds)
	require.NotNil(t, result.Progress.CurrentLessonID)
	assert.Equal(t, lessonID, *result.Progress.CurrentLessonID)

	assert.Equal(t, []events.Type{
		events.TypeCardAdvanced,
		events.TypeCardAdvanced,
		events.TypeLessonCompleted,
		events.TypeXPEarned,
		events.TypeStreakUpdated,
		events.TypeProgressLessonCompleted,
	}, h.handler.Types())

	stored, err := h.svc.GetProgress(context.Background(), h.userID, h.pathID)
	require.NoError(t, err)
	assert.Equal(t, *result.Progress, stored)
}

func TestLessonFailsWhenHeartsRunOut(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := started(t, DefaultOptions())
	lessonID := h.addLesson(t, 6)

	result := h.playLesson(t, lessonID, now, false, false, false, false, false)

	assert.Equal(t, lesson.StatusFailed, result.Status)
	assert.False(t, result.Passed)
	assert.Equal(t, 0, result.Progress.Hearts)
	assert.Equal(t, 0, result.Progress.XP)
	assert.Equal(t, 1, result.Progress.StreakCount, "a failed attempt still counts as activity")
	assert.Contains(t, h.handler.Types(), events.TypeProgressLessonFailed)

	_, err := h.svc.StartLesson(ctx, h.userID, h.pathID, lessonID, now.Add(time.Hour))
	assert.ErrorIs(t, err, domain.ErrNoHearts)

	h.handler.Reset()
	attempt, err := h.svc.StartLesson(ctx, h.userID, h.pathID, lessonID, now.Add(progress.HeartRegenInterval))
	require.NoError(t, err)
	assert.Equal(t, 1, attempt.Session.HeartsRemaining().Remaining())
	assert.Equal(t, []events.Type{events.TypeHeartsRefilled}, h.handler.Types())
}

func TestPassThreshold(t *testing.T) {
	t.Parallel()
	opts := DefaultOptions()
	opts.PassThreshold = 80
	h := started(t, opts)
	lessonID := h.addLesson(t, 4)

	result := h.playLesson(t, lessonID, now, true, false, true, true)

	assert.Equal(t, lesson.StatusCompleted, result.Status, "the session itself completed")
	assert.False(t, result.Passed, "75 percent is below the threshold")
	assert.Equal(t, 0, result.Progress.XP)
	assert.Equal(t, 4, result.Progress.Hearts)
	assert.Contains(t, h.handler.Types(), events.TypeProgressLessonFailed)
	assert.NotContains(t, h.handler.Types(), events.TypeProgressLessonCompleted)
}

func TestStartLessonErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := started(t, DefaultOptions())

	_, err := h.svc.StartLesson(ctx, h.userID, h.pathID, domain.NewLessonID(), now)
	assert.ErrorIs(t, err, store.ErrLessonNotFound)

	empty := h.addLesson(t, 0)
	_, err = h.svc.StartLesson(ctx, h.userID, h.pathID, empty, now)
	assert.ErrorIs(t, err, domain.ErrLessonNoCards)

	_, err = h.svc.StartLesson(ctx, h.userID, domain.NewPathID(), empty, now)
	assert.ErrorIs(t, err, store.ErrProgressNotFound)

	_, err = h.svc.SubmitLessonAnswer(ctx, nil, true, 0, now)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestHeartRefills(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	opts := DefaultOptions()
	opts.HeartRefillCost = 20
	h := started(t, opts)

	_, err := h.svc.PurchaseHeartRefill(ctx, h.userID, h.pathID, now)
	assert.ErrorIs(t, err, domain.ErrHeartsFull)

	// A perfect lesson earns 15 XP; a finished one with two mistakes earns
	// the 10 XP base and costs two hearts.
	h.playLesson(t, h.addLesson(t, 1), now, true)
	result := h.playLesson(t, h.addLesson(t, 2), now, false, false)
	require.Equal(t, 3, result.Progress.Hearts)
	require.Equal(t, 25, result.Progress.XP)

	snapshot, err := h.svc.RefillHearts(ctx, h.userID, h.pathID, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 3, snapshot.Hearts, "no heart has regenerated yet")

	h.handler.Reset()
	snapshot, err = h.svc.PurchaseHeartRefill(ctx, h.userID, h.pathID, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, domain.MaxHearts, snapshot.Hearts)
	assert.Equal(t, 5, snapshot.XP)
	assert.Equal(t, []events.Type{events.TypeXPSpent, events.TypeHeartsRefilled}, h.handler.Types())

	// One more mistake leaves 15 XP, short of another refill.
	result = h.playLesson(t, h.addLesson(t, 2), now.Add(2*time.Hour), false, true)
	require.Equal(t, 15, result.Progress.XP)
	_, err = h.svc.PurchaseHeartRefill(ctx, h.userID, h.pathID, now.Add(2*time.Hour))
	assert.ErrorIs(t, err, domain.ErrInsufficientXP)
}

func TestRefillHeartsWithoutChangeSkipsSave(t *testing.T) {
	t.Parallel()
	h := started(t, DefaultOptions())

	snapshot, err := h.svc.RefillHearts(context.Background(), h.userID, h.pathID, now.Add(time.Hour))

	require.NoError(t, err)
	assert.Equal(t, 1, snapshot.Version)
	assert.Empty(t, h.handler.Received())
}

func TestAdvanceAndCompletePath(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := started(t, DefaultOptions())
	unitID, lessonID := domain.NewUnitID(), domain.NewLessonID()

	snapshot, err := h.svc.AdvancePosition(ctx, h.userID, h.pathID, unitID, lessonID, now)
	require.NoError(t, err)
	require.NotNil(t, snapshot.CurrentUnitID)
	assert.Equal(t, unitID, *snapshot.CurrentUnitID)

	snapshot, err = h.svc.CompletePath(ctx, h.userID, h.pathID, now.Add(time.Hour))
	require.NoError(t, err)
	require.NotNil(t, snapshot.CompletedAt)

	_, err = h.svc.CompletePath(ctx, h.userID, h.pathID, now.Add(2*time.Hour))
	assert.ErrorIs(t, err, domain.ErrPathAlreadyCompleted)

	assert.Equal(t, []events.Type{events.TypePositionAdvanced, events.TypePathCompleted}, h.handler.Types())
}

func TestReviewFlow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, DefaultOptions())

	mastered := domain.NewFlashcardID()
	fresh := domain.NewFlashcardID()
	require.NoError(t, h.reviews.AddFlashcard(h.userID, mastered,
		domain.ReviewHistoryRecord{IsCorrect: true, Mode: domain.ReviewModeQuiz, ReviewedAt: now.AddDate(0, 0, -4), IntervalDays: 1},
		domain.ReviewHistoryRecord{IsCorrect: true, Mode: domain.ReviewModeQuiz, ReviewedAt: now.AddDate(0, 0, -3), IntervalDays: 3},
	))
	require.NoError(t, h.reviews.AddFlashcard(h.userID, fresh))

	session, err := h.svc.StartReview(ctx, h.userID, domain.ReviewModeQuiz, 0, now)
	require.NoError(t, err)
	require.Equal(t, 2, session.TotalCards())

	first, err := h.svc.SubmitReview(ctx, session, false, now)
	require.NoError(t, err)
	assert.Equal(t, fresh, first.Result.FlashcardID, "never-reviewed cards come first")
	assert.Equal(t, 1, first.Result.Interval.Days())
	assert.False(t, first.Complete)

	second, err := h.svc.SubmitReview(ctx, session, true, now)
	require.NoError(t, err)
	assert.Equal(t, mastered, second.Result.FlashcardID)
	assert.Equal(t, 7, second.Result.Interval.Days())
	assert.True(t, second.Complete)

	assert.Equal(t, []events.Type{
		events.TypeCardStruggled,
		events.TypeCardMastered,
		events.TypeReviewSessionCompleted,
	}, h.handler.Types())

	history, err := h.reviews.History(ctx, h.userID, mastered)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, 7, history[2].IntervalDays)
	assert.Equal(t, domain.ReviewModeQuiz, history[2].Mode)

	_, err = h.svc.SubmitReview(ctx, session, true, now)
	assert.ErrorIs(t, err, domain.ErrReviewSessionComplete)

	_, err = h.svc.StartReview(ctx, h.userID, domain.ReviewModeQuiz, 0, now)
	assert.ErrorIs(t, err, domain.ErrReviewNoDueCards)

	_, err = h.svc.StartReview(ctx, h.userID, domain.ReviewModeQuiz, 0, now.AddDate(0, 0, 1))
	require.NoError(t, err, "the failed card is due again tomorrow")

	_, err = h.svc.StartReview(ctx, h.userID, "cram", 0, now)
	assert.Equal(t, domain.CodeInvalidReviewMode, domain.CodeOf(err))
}

func TestSubmitReviewHistoryFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	boom := errors.New("disk full")
	reviews := &mocks.MockReviewStore{
		DueCards:        []domain.ReviewFlashcard{{ID: domain.NewFlashcardID()}},
		AppendHistoryFn: func(context.Context, domain.UserID, domain.ReviewHistoryRecord) error { return boom },
	}
	publisher := &mocks.MockPublisher{}
	svc, err := NewService(Deps{
		Progress:  &mocks.MockProgressStore{},
		Reviews:   reviews,
		Lessons:   &mocks.MockLessonStore{},
		Publisher: publisher,
	}, DefaultOptions())
	require.NoError(t, err)

	session, err := svc.StartReview(ctx, domain.NewUserID(), domain.ReviewModeFlashcard, 5, now)
	require.NoError(t, err)
	assert.Equal(t, []int{5}, reviews.DueCalls.Limits)

	_, err = svc.SubmitReview(ctx, session, true, now)

	assert.ErrorIs(t, err, boom)
	var serviceErr *ServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, "submit_review", serviceErr.Operation)
	assert.Equal(t, 0, publisher.PublishCalls.Count)
	assert.Len(t, reviews.AppendedRecords(), 1)

	assert.False(t, session.IsComplete(), "the answer is not kept when its history is lost")
	assert.Equal(t, 0, session.ReviewedCount())
	assert.Empty(t, session.Events())

	reviews.AppendHistoryFn = nil
	answer, err := svc.SubmitReview(ctx, session, true, now)
	require.NoError(t, err)
	assert.True(t, answer.Complete)
	assert.True(t, answer.Result.IsCorrect)
	assert.Len(t, reviews.AppendedRecords(), 2)
	assert.Equal(t, 1, publisher.PublishCalls.Count)
}
