package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/scry-progression/internal/platform/logger"
)

// AttemptFn is one load-mutate-save cycle. It must re-read any state it
// depends on, since a previous attempt may have lost a version race.
type AttemptFn func(ctx context.Context) error

// RetryOnConflict runs fn until it succeeds, fails with an error other than
// ErrConflict, or maxAttempts cycles have lost a version race.
// A maxAttempts below one runs fn once.
// The context is checked before every retry.
func RetryOnConflict(ctx context.Context, maxAttempts int, fn AttemptFn) error {
	log := logger.FromContext(ctx)

	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if ctxErr := ctx.Err(); ctxErr != nil {
				log.Debug("abandoning retries, context done",
					slog.Int("attempt", attempt),
					slog.String("error", ctxErr.Error()))
				return fmt.Errorf("retry abandoned after %d attempts: %w", attempt-1, ctxErr)
			}
		}

		err = fn(ctx)
		if err == nil {
			if attempt > 1 {
				log.Debug("save succeeded after retry", slog.Int("attempt", attempt))
			}
			return nil
		}
		if !IsConflictError(err) {
			return err
		}

		log.Debug("version conflict, retrying",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", maxAttempts))
	}

	log.Warn("giving up after repeated version conflicts",
		slog.Int("attempts", maxAttempts),
		slog.String("error", err.Error()))
	return fmt.Errorf("still conflicting after %d attempts: %w", maxAttempts, err)
}
