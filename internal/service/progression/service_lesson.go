package progression

import (
	"context"
	"log/slog"
	"time"

	"github.com/phrazzld/scry-progression/internal/domain"
	"github.com/phrazzld/scry-progression/internal/domain/lesson"
	"github.com/phrazzld/scry-progression/internal/domain/progress"
	"github.com/phrazzld/scry-progression/internal/platform/logger"
)

// StartLesson implements Service.StartLesson.
func (s *serviceImpl) StartLesson(
	ctx context.Context,
	userID domain.UserID,
	pathID domain.PathID,
	lessonID domain.LessonID,
	now time.Time,
) (*LessonAttempt, error) {
	const op = "start_lesson"
	log := logger.FromContextOrDefault(ctx, s.logger)

	p, evts, err := s.mutate(ctx, userID, pathID, func(p *progress.UserProgress) error {
		p.RefillHearts(now)
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, op, "failed to load progress", err)
	}
	if err := s.publish(ctx, op, evts); err != nil {
		return nil, err
	}

	if p.Hearts().IsEmpty() {
		log.Debug("lesson refused, no hearts",
			slog.String("user_id", userID.String()),
			slog.String("lesson_id", lessonID.String()),
			slog.Time("next_heart_at", p.HeartsRefillAt()))
		return nil, domain.NewDomainError(domain.CodeNoHearts,
			"no hearts remaining, next heart at %s", p.HeartsRefillAt().Format(time.RFC3339))
	}

	cards, err := s.lessons.Flashcards(ctx, lessonID)
	if err != nil {
		return nil, s.fail(ctx, op, "failed to load lesson cards", err)
	}

	session, err := lesson.Start(lessonID, userID, cards, p.Hearts(), now, lesson.WithRewards(s.opts.Rewards))
	if err != nil {
		return nil, err
	}

	log.Info("lesson started",
		slog.String("user_id", userID.String()),
		slog.String("path_id", pathID.String()),
		slog.String("lesson_id", lessonID.String()),
		slog.String("session_id", session.ID().String()),
		slog.Int("cards", session.TotalCards()),
		slog.Int("hearts", p.Hearts().Remaining()))
	return &LessonAttempt{PathID: pathID, Session: session}, nil
}

// SubmitLessonAnswer implements Service.SubmitLessonAnswer.
func (s *serviceImpl) SubmitLessonAnswer(
	ctx context.Context,
	attempt *LessonAttempt,
	isCorrect bool,
	timeSpent time.Duration,
	now time.Time,
) (*LessonAnswerResult, error) {
	const op = "submit_lesson_answer"

	if attempt == nil || attempt.Session == nil {
		return nil, domain.NewValidationError(domain.CodeInvalidID, "lesson attempt is required")
	}
	session := attempt.Session

	answer, err := session.Evaluate(isCorrect, timeSpent, now)
	if err != nil {
		return nil, err
	}

	result := &LessonAnswerResult{Event: answer.Event, Status: answer.Status}
	if !answer.Status.IsTerminal() {
		if err := session.Commit(answer); err != nil {
			return nil, err
		}
		result.Events = session.PullEvents()
		return result, s.publish(ctx, op, result.Events)
	}

	result.Passed = answer.Status == lesson.StatusCompleted &&
		answer.AccuracyPercent() >= s.opts.PassThreshold

	// The session stays active until the outcome is saved.
	p, evts, err := s.mutate(ctx, session.UserID(), attempt.PathID, func(p *progress.UserProgress) error {
		if err := p.AddTimeSpent(int(answer.TimeSpent() / time.Second)); err != nil {
			return err
		}
		if result.Passed {
			_, err := p.CompleteLesson(session.LessonID(), answer.AccuracyPercent(),
				answer.XPReward(), answer.HeartsRemaining(), now)
			return err
		}
		_, err := p.FailLesson(session.LessonID(), answer.HeartsRemaining(), now)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, op, "failed to record lesson outcome", err)
	}
	if err := session.Commit(answer); err != nil {
		return nil, err
	}

	snapshot := p.Snapshot()
	result.Progress = &snapshot
	result.Events = append(session.PullEvents(), evts...)

	logger.FromContextOrDefault(ctx, s.logger).Info("lesson finished",
		slog.String("user_id", session.UserID().String()),
		slog.String("lesson_id", session.LessonID().String()),
		slog.String("status", string(session.Status())),
		slog.Bool("passed", result.Passed),
		slog.Int("accuracy_percent", session.AccuracyPercent()),
		slog.Int("hearts_remaining", session.HeartsRemaining().Remaining()))
	return result, s.publish(ctx, op, result.Events)
}
