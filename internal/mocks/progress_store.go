package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/scry-progression/internal/domain"
	"github.com/phrazzld/scry-progression/internal/domain/progress"
	"github.com/phrazzld/scry-progression/internal/store"
)

// MockProgressStore implements store.ProgressStore for testing
type MockProgressStore struct {
	// Custom behavior functions
	FindByUserAndPathFn func(ctx context.Context, userID domain.UserID, pathID domain.PathID) (*progress.UserProgress, error)
	SaveFn              func(ctx context.Context, p *progress.UserProgress) error
	DeleteFn            func(ctx context.Context, userID domain.UserID, pathID domain.PathID) error
	ListByUserFn        func(ctx context.Context, userID domain.UserID) ([]progress.Snapshot, error)

	// Default response values
	Snapshot  *progress.Snapshot
	Snapshots []progress.Snapshot
	Err       error

	// Call tracking for verification
	FindCalls struct {
		mu      sync.Mutex
		Count   int
		UserIDs []domain.UserID
		PathIDs []domain.PathID
	}

	SaveCalls struct {
		mu       sync.Mutex
		Count    int
		Versions []int
		Saved    []progress.Snapshot
	}

	DeleteCalls struct {
		mu    sync.Mutex
		Count int
	}

	ListCalls struct {
		mu      sync.Mutex
		Count   int
		UserIDs []domain.UserID
	}
}

// Ensure MockProgressStore implements store.ProgressStore interface
var _ store.ProgressStore = (*MockProgressStore)(nil)

// FindByUserAndPath implements the store.ProgressStore interface.
// By default it rebuilds a fresh aggregate from Snapshot on every call.
func (m *MockProgressStore) FindByUserAndPath(
	ctx context.Context,
	userID domain.UserID,
	pathID domain.PathID,
) (*progress.UserProgress, error) {
	m.FindCalls.mu.Lock()
	m.FindCalls.Count++
	m.FindCalls.UserIDs = append(m.FindCalls.UserIDs, userID)
	m.FindCalls.PathIDs = append(m.FindCalls.PathIDs, pathID)
	m.FindCalls.mu.Unlock()

	if m.FindByUserAndPathFn != nil {
		return m.FindByUserAndPathFn(ctx, userID, pathID)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Snapshot == nil {
		return nil, store.ErrProgressNotFound
	}
	return progress.Reconstitute(*m.Snapshot)
}

// Save implements the store.ProgressStore interface.
// By default it records the snapshot and advances the aggregate version.
func (m *MockProgressStore) Save(ctx context.Context, p *progress.UserProgress) error {
	m.SaveCalls.mu.Lock()
	m.SaveCalls.Count++
	m.SaveCalls.Versions = append(m.SaveCalls.Versions, p.Version())
	m.SaveCalls.Saved = append(m.SaveCalls.Saved, p.Snapshot())
	m.SaveCalls.mu.Unlock()

	if m.SaveFn != nil {
		return m.SaveFn(ctx, p)
	}
	if m.Err != nil {
		return m.Err
	}
	p.SetVersion(p.Version() + 1)
	return nil
}

// Delete implements the store.ProgressStore interface
func (m *MockProgressStore) Delete(ctx context.Context, userID domain.UserID, pathID domain.PathID) error {
	m.DeleteCalls.mu.Lock()
	m.DeleteCalls.Count++
	m.DeleteCalls.mu.Unlock()

	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, userID, pathID)
	}
	return m.Err
}

// ListByUser implements the store.ProgressStore interface
func (m *MockProgressStore) ListByUser(ctx context.Context, userID domain.UserID) ([]progress.Snapshot, error) {
	m.ListCalls.mu.Lock()
	m.ListCalls.Count++
	m.ListCalls.UserIDs = append(m.ListCalls.UserIDs, userID)
	m.ListCalls.mu.Unlock()

	if m.ListByUserFn != nil {
		return m.ListByUserFn(ctx, userID)
	}
	return m.Snapshots, m.Err
}

// SaveCount returns the number of Save calls so far.
func (m *MockProgressStore) SaveCount() int {
	m.SaveCalls.mu.Lock()
	defer m.SaveCalls.mu.Unlock()
	return m.SaveCalls.Count
}

// FindCount returns the number of FindByUserAndPath calls so far.
func (m *MockProgressStore) FindCount() int {
	m.FindCalls.mu.Lock()
	defer m.FindCalls.mu.Unlock()
	return m.FindCalls.Count
}
