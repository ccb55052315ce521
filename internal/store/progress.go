package store

import (
	"context"

	"github.com/phrazzld/scry-progression/internal/domain"
	"github.com/phrazzld/scry-progression/internal/domain/progress"
)

// ProgressStore defines the interface for UserProgress persistence.
// Version: 1.0
type ProgressStore interface {
	// FindByUserAndPath retrieves the learner's progress on a path.
	// Returns ErrProgressNotFound if the learner has not started the path.
	// The returned aggregate carries the stored version and no pending events.
	FindByUserAndPath(ctx context.Context, userID domain.UserID, pathID domain.PathID) (*progress.UserProgress, error)

	// Save persists the aggregate's snapshot.
	// An aggregate at version 0 is inserted; ErrProgressExists is returned if
	// progress already exists for the same user and path.
	// Otherwise the stored version must equal the aggregate's version or
	// ErrConflict is returned. On success the aggregate's version is advanced.
	// Save never touches the aggregate's pending events.
	Save(ctx context.Context, p *progress.UserProgress) error

	// Delete removes the learner's progress on a path.
	// Returns ErrProgressNotFound if it does not exist.
	Delete(ctx context.Context, userID domain.UserID, pathID domain.PathID) error

	// ListByUser returns snapshots of every path the learner has started.
	ListByUser(ctx context.Context, userID domain.UserID) ([]progress.Snapshot, error)
}
