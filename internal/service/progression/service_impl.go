package progression

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/scry-progression/internal/domain"
	"github.com/phrazzld/scry-progression/internal/domain/lesson"
	"github.com/phrazzld/scry-progression/internal/domain/progress"
	"github.com/phrazzld/scry-progression/internal/domain/srs"
	"github.com/phrazzld/scry-progression/internal/events"
	"github.com/phrazzld/scry-progression/internal/platform/logger"
	"github.com/phrazzld/scry-progression/internal/store"
)

// Deps holds the collaborators of the service.
type Deps struct {
	Progress store.ProgressStore
	Reviews  store.ReviewStore
	Lessons  store.LessonStore
	// Publisher receives events after state is saved. Defaults to an
	// InMemoryPublisher without handlers.
	Publisher events.Publisher
	// SRS is the spaced-repetition policy. Defaults to srs.NewDefaultService.
	SRS    srs.Service
	Logger *slog.Logger
}

// Options tunes the service's policies.
type Options struct {
	Rewards lesson.RewardParams
	// PassThreshold is the minimum accuracy, in percent, for a finished
	// lesson to count as completed.
	PassThreshold int
	// HeartRefillCost is the XP price of PurchaseHeartRefill.
	HeartRefillCost int
	// MaxSaveAttempts bounds the load-mutate-save cycles per operation.
	MaxSaveAttempts int
}

// DefaultOptions returns the default policies: 10 XP per lesson plus a 5 XP
// perfect bonus, no pass threshold, 50 XP per heart refill, three save attempts.
func DefaultOptions() Options {
	return Options{
		Rewards:         lesson.DefaultRewardParams(),
		PassThreshold:   0,
		HeartRefillCost: 50,
		MaxSaveAttempts: 3,
	}
}

// Validate checks the options for out-of-range values.
func (o Options) Validate() error {
	if err := o.Rewards.Validate(); err != nil {
		return err
	}
	if o.PassThreshold < 0 || o.PassThreshold > 100 {
		return domain.NewValidationError(domain.CodeInvalidAccuracy,
			"pass threshold must be between 0 and 100, got %d", o.PassThreshold)
	}
	if o.HeartRefillCost < 0 {
		return domain.NewValidationError(domain.CodeInvalidXP,
			"heart refill cost cannot be negative, got %d", o.HeartRefillCost)
	}
	if o.MaxSaveAttempts < 1 {
		return fmt.Errorf("max save attempts must be at least 1, got %d", o.MaxSaveAttempts)
	}
	return nil
}

// Verify interface compliance at compile time
var _ Service = (*serviceImpl)(nil)

type serviceImpl struct {
	progress  store.ProgressStore
	reviews   store.ReviewStore
	lessons   store.LessonStore
	publisher events.Publisher
	srs       srs.Service
	opts      Options
	refill    domain.XP
	logger    *slog.Logger
}

// NewService creates a new Service implementation.
// It panics if a store is missing and returns an error for invalid options.
func NewService(deps Deps, opts Options) (Service, error) {
	// Validate inputs
	if deps.Progress == nil {
		panic("progress store cannot be nil")
	}
	if deps.Reviews == nil {
		panic("review store cannot be nil")
	}
	if deps.Lessons == nil {
		panic("lesson store cannot be nil")
	}

	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid service options: %w", err)
	}
	refill, err := domain.NewXP(opts.HeartRefillCost)
	if err != nil {
		return nil, fmt.Errorf("invalid service options: %w", err)
	}

	// Use provided logger or create default
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	publisher := deps.Publisher
	if publisher == nil {
		publisher = events.NewInMemoryPublisher(log)
	}
	policy := deps.SRS
	if policy == nil {
		policy = srs.NewDefaultService()
	}

	return &serviceImpl{
		progress:  deps.Progress,
		reviews:   deps.Reviews,
		lessons:   deps.Lessons,
		publisher: publisher,
		srs:       policy,
		opts:      opts,
		refill:    refill,
		logger:    log.With(slog.String("component", "progression_service")),
	}, nil
}

// mutateFn changes a loaded aggregate. It runs once per attempt against a
// freshly loaded copy.
type mutateFn func(p *progress.UserProgress) error

// mutate runs a load, mutate, save cycle, retrying on version conflicts.
// It returns the saved aggregate and the events it raised. Every state change
// raises an event, so nothing is saved when fn raised none.
func (s *serviceImpl) mutate(
	ctx context.Context,
	userID domain.UserID,
	pathID domain.PathID,
	fn mutateFn,
) (*progress.UserProgress, []events.Event, error) {
	ctx = logger.WithLogger(ctx, logger.FromContextOrDefault(ctx, s.logger))

	var saved *progress.UserProgress
	err := store.RetryOnConflict(ctx, s.opts.MaxSaveAttempts, func(ctx context.Context) error {
		p, err := s.progress.FindByUserAndPath(ctx, userID, pathID)
		if err != nil {
			return err
		}
		if err := fn(p); err != nil {
			return err
		}
		if len(p.Events()) == 0 {
			saved = p
			return nil
		}
		if err := s.progress.Save(ctx, p); err != nil {
			return err
		}
		saved = p
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return saved, saved.PullEvents(), nil
}

// publish hands events to the publisher. Failures are logged and returned
// wrapped in ErrPublishFailed.
func (s *serviceImpl) publish(ctx context.Context, op string, evts []events.Event) error {
	if len(evts) == 0 {
		return nil
	}
	if err := s.publisher.Publish(ctx, evts...); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to publish events",
			slog.String("operation", op),
			slog.Int("event_count", len(evts)),
			slog.String("error", err.Error()))
		return NewServiceError(op, "state was saved", fmt.Errorf("%w: %w", ErrPublishFailed, err))
	}
	return nil
}

// fail converts an error for return. Engine errors and already wrapped
// service errors pass through; anything else is logged and wrapped.
func (s *serviceImpl) fail(ctx context.Context, op, message string, err error) error {
	if domain.CodeOf(err) != "" {
		return err
	}
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return err
	}

	log := logger.FromContextOrDefault(ctx, s.logger)
	if store.IsNotFoundError(err) || store.IsConflictError(err) {
		log.Warn(message, slog.String("operation", op), slog.String("error", err.Error()))
	} else {
		log.Error(message, slog.String("operation", op), slog.String("error", err.Error()))
	}
	return NewServiceError(op, message, err)
}

// StartPath implements Service.StartPath.
func (s *serviceImpl) StartPath(
	ctx context.Context,
	userID domain.UserID,
	pathID domain.PathID,
	groupID *domain.GroupID,
	now time.Time,
) (progress.Snapshot, error) {
	const op = "start_path"
	log := logger.FromContextOrDefault(ctx, s.logger)

	p, err := progress.Start(userID, pathID, groupID, now)
	if err != nil {
		return progress.Snapshot{}, err
	}
	if err := s.progress.Save(ctx, p); err != nil {
		if store.IsDuplicateError(err) {
			log.Debug("path already started",
				slog.String("user_id", userID.String()),
				slog.String("path_id", pathID.String()))
			return progress.Snapshot{}, ErrAlreadyStarted
		}
		return progress.Snapshot{}, s.fail(ctx, op, "failed to save new progress", err)
	}

	log.Info("path started",
		slog.String("user_id", userID.String()),
		slog.String("path_id", pathID.String()))
	return p.Snapshot(), s.publish(ctx, op, p.PullEvents())
}

// GetProgress implements Service.GetProgress.
func (s *serviceImpl) GetProgress(
	ctx context.Context,
	userID domain.UserID,
	pathID domain.PathID,
) (progress.Snapshot, error) {
	p, err := s.progress.FindByUserAndPath(ctx, userID, pathID)
	if err != nil {
		return progress.Snapshot{}, s.fail(ctx, "get_progress", "failed to load progress", err)
	}
	return p.Snapshot(), nil
}

// ListProgress implements Service.ListProgress.
func (s *serviceImpl) ListProgress(ctx context.Context, userID domain.UserID) ([]progress.Snapshot, error) {
	list, err := s.progress.ListByUser(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, "list_progress", "failed to list progress", err)
	}
	return list, nil
}

// update runs a progress mutation and publishes its events.
func (s *serviceImpl) update(
	ctx context.Context,
	op string,
	userID domain.UserID,
	pathID domain.PathID,
	fn mutateFn,
) (progress.Snapshot, error) {
	p, evts, err := s.mutate(ctx, userID, pathID, fn)
	if err != nil {
		return progress.Snapshot{}, s.fail(ctx, op, "failed to update progress", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("progress updated",
		slog.String("operation", op),
		slog.String("user_id", userID.String()),
		slog.String("path_id", pathID.String()),
		slog.Int("event_count", len(evts)),
		slog.Int("version", p.Version()))
	return p.Snapshot(), s.publish(ctx, op, evts)
}

// RefillHearts implements Service.RefillHearts.
func (s *serviceImpl) RefillHearts(
	ctx context.Context,
	userID domain.UserID,
	pathID domain.PathID,
	now time.Time,
) (progress.Snapshot, error) {
	return s.update(ctx, "refill_hearts", userID, pathID, func(p *progress.UserProgress) error {
		p.RefillHearts(now)
		return nil
	})
}

// PurchaseHeartRefill implements Service.PurchaseHeartRefill.
func (s *serviceImpl) PurchaseHeartRefill(
	ctx context.Context,
	userID domain.UserID,
	pathID domain.PathID,
	now time.Time,
) (progress.Snapshot, error) {
	return s.update(ctx, "purchase_heart_refill", userID, pathID, func(p *progress.UserProgress) error {
		_, err := p.PurchaseHeartRefill(s.refill, now)
		return err
	})
}

// AdvancePosition implements Service.AdvancePosition.
func (s *serviceImpl) AdvancePosition(
	ctx context.Context,
	userID domain.UserID,
	pathID domain.PathID,
	unitID domain.UnitID,
	lessonID domain.LessonID,
	now time.Time,
) (progress.Snapshot, error) {
	return s.update(ctx, "advance_position", userID, pathID, func(p *progress.UserProgress) error {
		_, err := p.AdvancePosition(unitID, lessonID, now)
		return err
	})
}

// CompletePath implements Service.CompletePath.
func (s *serviceImpl) CompletePath(
	ctx context.Context,
	userID domain.UserID,
	pathID domain.PathID,
	now time.Time,
) (progress.Snapshot, error) {
	return s.update(ctx, "complete_path", userID, pathID, func(p *progress.UserProgress) error {
		_, err := p.CompletePath(now)
		return err
	})
}
