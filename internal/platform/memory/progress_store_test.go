package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/scry-progression/internal/domain"
	"github.com/phrazzld/scry-progression/internal/domain/progress"
	"github.com/phrazzld/scry-progression/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 14, 9, 30, 0, 0, time.UTC)

func xp(t *testing.T, n int) domain.XP {
	t.Helper()
	v, err := domain.NewXP(n)
	require.NoError(t, err)
	return v
}

func startProgress(t *testing.T) *progress.UserProgress {
	t.Helper()
	p, err := progress.Start(domain.NewUserID(), domain.NewPathID(), nil, now)
	require.NoError(t, err)
	return p
}

func TestProgressStoreSaveAndFind(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewProgressStore(nil)
	p := startProgress(t)

	require.NoError(t, s.Save(ctx, p))
	assert.Equal(t, 1, p.Version())
	assert.NotEmpty(t, p.Events(), "saving leaves pending events alone")

	found, err := s.FindByUserAndPath(ctx, p.UserID(), p.PathID())
	require.NoError(t, err)
	assert.Equal(t, 1, found.Version())
	assert.Empty(t, found.Events())
	assert.Equal(t, p.Snapshot(), found.Snapshot())
}

func TestProgressStoreFindMissing(t *testing.T) {
	t.Parallel()
	s := NewProgressStore(nil)

	_, err := s.FindByUserAndPath(context.Background(), domain.NewUserID(), domain.NewPathID())
	assert.ErrorIs(t, err, store.ErrProgressNotFound)
	assert.True(t, store.IsNotFoundError(err))
}

func TestProgressStoreInsertTwice(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewProgressStore(nil)
	p := startProgress(t)
	require.NoError(t, s.Save(ctx, p))

	again, err := progress.Start(p.UserID(), p.PathID(), nil, now)
	require.NoError(t, err)

	err = s.Save(ctx, again)
	assert.ErrorIs(t, err, store.ErrProgressExists)
	assert.Equal(t, 0, again.Version())
}

func TestProgressStoreVersionConflict(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewProgressStore(nil)
	p := startProgress(t)
	require.NoError(t, s.Save(ctx, p))

	first, err := s.FindByUserAndPath(ctx, p.UserID(), p.PathID())
	require.NoError(t, err)
	second, err := s.FindByUserAndPath(ctx, p.UserID(), p.PathID())
	require.NoError(t, err)

	first.AwardXP(xp(t, 10), domain.XPSourceBonus, now)
	require.NoError(t, s.Save(ctx, first))
	assert.Equal(t, 2, first.Version())

	second.AwardXP(xp(t, 20), domain.XPSourceBonus, now)
	err = s.Save(ctx, second)
	assert.ErrorIs(t, err, store.ErrConflict)
	assert.True(t, store.IsConflictError(err))
	assert.Equal(t, 1, second.Version())

	stored, err := s.FindByUserAndPath(ctx, p.UserID(), p.PathID())
	require.NoError(t, err)
	assert.Equal(t, 10, stored.XP().Amount())
}

func TestProgressStoreSaveAfterDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewProgressStore(nil)
	p := startProgress(t)
	require.NoError(t, s.Save(ctx, p))

	require.NoError(t, s.Delete(ctx, p.UserID(), p.PathID()))
	assert.ErrorIs(t, s.Delete(ctx, p.UserID(), p.PathID()), store.ErrProgressNotFound)
	assert.ErrorIs(t, s.Save(ctx, p), store.ErrProgressNotFound)
	assert.ErrorIs(t, s.Save(ctx, nil), store.ErrInvalidEntity)
}

func TestProgressStoreListByUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewProgressStore(nil)
	userID := domain.NewUserID()

	later, err := progress.Start(userID, domain.NewPathID(), nil, now.Add(time.Hour))
	require.NoError(t, err)
	earlier, err := progress.Start(userID, domain.NewPathID(), nil, now)
	require.NoError(t, err)
	other := startProgress(t)

	for _, p := range []*progress.UserProgress{later, earlier, other} {
		require.NoError(t, s.Save(ctx, p))
	}

	list, err := s.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, earlier.PathID(), list[0].PathID)
	assert.Equal(t, later.PathID(), list[1].PathID)

	empty, err := s.ListByUser(ctx, domain.NewUserID())
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestProgressStoreConcurrentSaves(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewProgressStore(nil)
	p := startProgress(t)
	require.NoError(t, s.Save(ctx, p))

	const writers = 8
	one := xp(t, 1)
	var wg sync.WaitGroup
	results := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			loaded, err := s.FindByUserAndPath(ctx, p.UserID(), p.PathID())
			if err != nil {
				results <- err
				return
			}
			loaded.AwardXP(one, domain.XPSourceBonus, now)
			results <- s.Save(ctx, loaded)
		}()
	}
	wg.Wait()
	close(results)

	saved := 0
	for err := range results {
		if err == nil {
			saved++
			continue
		}
		assert.ErrorIs(t, err, store.ErrConflict)
	}

	stored, err := s.FindByUserAndPath(ctx, p.UserID(), p.PathID())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, saved, 1)
	assert.Equal(t, saved, stored.XP().Amount(), "every successful save is reflected exactly once")
	assert.Equal(t, 1+saved, stored.Version())
}
