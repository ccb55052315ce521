package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/phrazzld/scry-progression/internal/domain"
	"github.com/phrazzld/scry-progression/internal/domain/progress"
	"github.com/phrazzld/scry-progression/internal/events"
	"github.com/phrazzld/scry-progression/internal/platform/logger"
	"github.com/phrazzld/scry-progression/internal/store"
)

// ProgressStore implements store.ProgressStore with optimistic versioning over
// a map of snapshots.
type ProgressStore struct {
	mu      sync.RWMutex
	records map[events.ProgressKey]progress.Snapshot
	logger  *slog.Logger
}

// NewProgressStore creates an empty ProgressStore.
// If logger is nil, a default logger will be used.
func NewProgressStore(logger *slog.Logger) *ProgressStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressStore{
		records: make(map[events.ProgressKey]progress.Snapshot),
		logger:  logger.With(slog.String("component", "progress_store")),
	}
}

// Ensure ProgressStore implements store.ProgressStore interface
var _ store.ProgressStore = (*ProgressStore)(nil)

// FindByUserAndPath implements store.ProgressStore.FindByUserAndPath
func (s *ProgressStore) FindByUserAndPath(
	ctx context.Context,
	userID domain.UserID,
	pathID domain.PathID,
) (*progress.UserProgress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	s.mu.RLock()
	snapshot, ok := s.records[events.ProgressKey{UserID: userID, PathID: pathID}]
	s.mu.RUnlock()

	if !ok {
		log.Debug("progress not found",
			slog.String("user_id", userID.String()),
			slog.String("path_id", pathID.String()))
		return nil, store.ErrProgressNotFound
	}

	p, err := progress.Reconstitute(snapshot)
	if err != nil {
		log.Error("stored progress failed validation",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("path_id", pathID.String()))
		return nil, store.NewStoreError("user_progress", "find", "stored snapshot is invalid", err)
	}
	return p, nil
}

// Save implements store.ProgressStore.Save
func (s *ProgressStore) Save(ctx context.Context, p *progress.UserProgress) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if p == nil {
		return fmt.Errorf("%w: nil progress", store.ErrInvalidEntity)
	}

	key := p.Key()
	snapshot := p.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.records[key]
	switch {
	case p.Version() == 0 && exists:
		log.Warn("progress already exists",
			slog.String("user_id", key.UserID.String()),
			slog.String("path_id", key.PathID.String()))
		return store.ErrProgressExists
	case p.Version() != 0 && !exists:
		return store.ErrProgressNotFound
	case exists && stored.Version != p.Version():
		log.Debug("version conflict on save",
			slog.String("user_id", key.UserID.String()),
			slog.String("path_id", key.PathID.String()),
			slog.Int("stored_version", stored.Version),
			slog.Int("aggregate_version", p.Version()))
		return store.NewStoreError("user_progress", "save",
			fmt.Sprintf("version %d is stale, stored version is %d", p.Version(), stored.Version),
			store.ErrConflict)
	}

	snapshot.Version = p.Version() + 1
	s.records[key] = snapshot
	p.SetVersion(snapshot.Version)

	log.Debug("progress saved",
		slog.String("user_id", key.UserID.String()),
		slog.String("path_id", key.PathID.String()),
		slog.Int("version", snapshot.Version))
	return nil
}

// Delete implements store.ProgressStore.Delete
func (s *ProgressStore) Delete(ctx context.Context, userID domain.UserID, pathID domain.PathID) error {
	key := events.ProgressKey{UserID: userID, PathID: pathID}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[key]; !ok {
		return store.ErrProgressNotFound
	}
	delete(s.records, key)

	logger.FromContextOrDefault(ctx, s.logger).Info("progress deleted",
		slog.String("user_id", userID.String()),
		slog.String("path_id", pathID.String()))
	return nil
}

// ListByUser implements store.ProgressStore.ListByUser
// Snapshots are ordered by start time, then path id.
func (s *ProgressStore) ListByUser(ctx context.Context, userID domain.UserID) ([]progress.Snapshot, error) {
	s.mu.RLock()
	out := make([]progress.Snapshot, 0)
	for key, snapshot := range s.records {
		if key.UserID != userID {
			continue
		}
		p, err := progress.Reconstitute(snapshot)
		if err != nil {
			s.mu.RUnlock()
			return nil, store.NewStoreError("user_progress", "list", "stored snapshot is invalid", err)
		}
		out = append(out, p.Snapshot())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.Before(out[j].StartedAt)
		}
		return out[i].PathID.String() < out[j].PathID.String()
	})

	logger.FromContextOrDefault(ctx, s.logger).Debug("listed progress",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(out)))
	return out, nil
}
