package progression

import (
	"context"
	"log/slog"
	"time"

	"github.com/phrazzld/scry-progression/internal/domain"
	"github.com/phrazzld/scry-progression/internal/domain/review"
	"github.com/phrazzld/scry-progression/internal/platform/logger"
)

// StartReview implements Service.StartReview.
func (s *serviceImpl) StartReview(
	ctx context.Context,
	userID domain.UserID,
	mode domain.ReviewMode,
	limit int,
	now time.Time,
) (*review.Session, error) {
	const op = "start_review"
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !mode.Valid() {
		return nil, domain.NewValidationError(domain.CodeInvalidReviewMode, "unknown review mode %q", mode)
	}

	due, err := s.reviews.DueFlashcards(ctx, userID, now, limit)
	if err != nil {
		return nil, s.fail(ctx, op, "failed to load due cards", err)
	}

	session, err := review.Start(userID, due, mode, s.srs, now)
	if err != nil {
		log.Debug("review not started",
			slog.String("user_id", userID.String()),
			slog.String("reason", err.Error()))
		return nil, err
	}

	log.Info("review started",
		slog.String("user_id", userID.String()),
		slog.String("session_id", session.ID().String()),
		slog.String("mode", string(mode)),
		slog.Int("cards", session.TotalCards()))
	return session, nil
}

// SubmitReview implements Service.SubmitReview.
func (s *serviceImpl) SubmitReview(
	ctx context.Context,
	session *review.Session,
	isCorrect bool,
	now time.Time,
) (*ReviewAnswerResult, error) {
	const op = "submit_review"

	if session == nil {
		return nil, domain.NewValidationError(domain.CodeInvalidID, "review session is required")
	}

	evaluated, err := session.Evaluate(isCorrect, now)
	if err != nil {
		return nil, err
	}
	result := evaluated.Result

	// The session only moves on once the history is stored.
	if err := s.reviews.AppendHistory(ctx, session.UserID(), result.HistoryRecord()); err != nil {
		return nil, s.fail(ctx, op, "failed to append review history", err)
	}
	if err := session.Commit(evaluated); err != nil {
		return nil, err
	}

	answer := &ReviewAnswerResult{
		Result:   result,
		Complete: session.IsComplete(),
		Events:   session.PullEvents(),
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("review recorded",
		slog.String("user_id", session.UserID().String()),
		slog.String("flashcard_id", result.FlashcardID.String()),
		slog.Bool("is_correct", isCorrect),
		slog.Int("interval_days", result.Interval.Days()),
		slog.Bool("session_complete", answer.Complete))
	return answer, s.publish(ctx, op, answer.Events)
}
