package progress

import (
	"testing"
	"time"

	"github.com/phrazzld/scry-progression/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	groupID := domain.NewGroupID()
	p, err := Start(domain.NewUserID(), domain.NewPathID(), &groupID, t0)
	require.NoError(t, err)
	p.AwardXP(mustXP(t, 230), domain.XPSourceLesson, t0)
	p.UpdateStreak(t0)
	_, err = p.AdvancePosition(domain.NewUnitID(), domain.NewLessonID(), t0)
	require.NoError(t, err)
	_, err = p.DeductHeart(t0)
	require.NoError(t, err)
	require.NoError(t, p.AddTimeSpent(120))
	_, err = p.CompletePath(t0.Add(time.Hour))
	require.NoError(t, err)
	p.SetVersion(4)

	snap := p.Snapshot()
	assert.Equal(t, 2, snap.Level())

	restored, err := Reconstitute(snap)
	require.NoError(t, err)
	assert.Equal(t, snap, restored.Snapshot())
	assert.Empty(t, restored.Events(), "reconstitution raises no events")
}

func TestSnapshotIsDetached(t *testing.T) {
	t.Parallel()
	p := newProgress(t)
	_, err := p.AdvancePosition(domain.NewUnitID(), domain.NewLessonID(), t0)
	require.NoError(t, err)

	snap := p.Snapshot()
	original, _ := p.CurrentLessonID()
	*snap.CurrentLessonID = domain.NewLessonID()

	current, _ := p.CurrentLessonID()
	assert.Equal(t, original, current)
}

func TestReconstituteValidation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		mutate func(s *Snapshot)
		code   domain.ErrorCode
	}{
		{name: "missing user", mutate: func(s *Snapshot) { s.UserID = domain.UserID{} }, code: domain.CodeInvalidID},
		{name: "negative xp", mutate: func(s *Snapshot) { s.XP = -1 }, code: domain.CodeInvalidXP},
		{name: "too many hearts", mutate: func(s *Snapshot) { s.Hearts = 6 }, code: domain.CodeInvalidHearts},
		{name: "streak without activity", mutate: func(s *Snapshot) { s.StreakCount = 3 }, code: domain.CodeInvalidStreak},
		{name: "negative time spent", mutate: func(s *Snapshot) { s.TimeSpentSeconds = -5 }, code: domain.CodeInvalidTimeSpent},
		{name: "missing start", mutate: func(s *Snapshot) { s.StartedAt = time.Time{} }, code: domain.CodeInvalidProgress},
		{
			name: "completed before started",
			mutate: func(s *Snapshot) {
				before := s.StartedAt.Add(-time.Hour)
				s.CompletedAt = &before
			},
			code: domain.CodeInvalidProgress,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			snap := newProgress(t).Snapshot()
			tc.mutate(&snap)

			_, err := Reconstitute(snap)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Equal(t, tc.code, domain.CodeOf(err))
		})
	}
}
