package observability

import (
	"context"
	"testing"
	"time"

	"github.com/phrazzld/scry-progression/internal/domain"
	"github.com/phrazzld/scry-progression/internal/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics(t *testing.T) *Metrics {
	t.Helper()
	m, err := NewMetrics("test", prometheus.NewRegistry())
	require.NoError(t, err)
	return m
}

func mustInterval(t *testing.T, days int) domain.ReviewInterval {
	t.Helper()
	iv, err := domain.NewReviewInterval(days)
	require.NoError(t, err)
	return iv
}

func TestNewMetrics(t *testing.T) {
	t.Parallel()

	t.Run("nil registerer", func(t *testing.T) {
		t.Parallel()
		_, err := NewMetrics("test", nil)
		assert.Error(t, err)
	})

	t.Run("duplicate registration", func(t *testing.T) {
		t.Parallel()
		reg := prometheus.NewRegistry()
		_, err := NewMetrics("dup", reg)
		require.NoError(t, err)
		_, err = NewMetrics("dup", reg)
		assert.Error(t, err)
	})

	t.Run("empty namespace uses default", func(t *testing.T) {
		t.Parallel()
		reg := prometheus.NewRegistry()
		m, err := NewMetrics("", reg)
		require.NoError(t, err)
		m.LevelUps.Inc()

		families, err := reg.Gather()
		require.NoError(t, err)
		var found bool
		for _, f := range families {
			if f.GetName() == "progression_xp_level_ups_total" {
				found = true
			}
		}
		assert.True(t, found, "expected default namespace on level up counter")
	})
}

func TestHandleEvent_ProgressEvents(t *testing.T) {
	t.Parallel()

	m := newTestMetrics(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	key := events.ProgressKey{UserID: domain.NewUserID(), PathID: domain.NewPathID()}

	evs := []events.Event{
		events.NewXPEarned(key, 15, domain.XPSourceLesson, 15, now),
		events.NewXPEarned(key, 10, domain.XPSourceLesson, 25, now),
		events.NewXPEarned(key, 4, domain.XPSourceReview, 29, now),
		events.NewXPSpent(key, 20, "heart_refill", 9, now),
		events.NewLevelUp(key, 1, 2, 110, now),
		events.NewHeartsRefilled(key, 2, 5, domain.HeartRefillPurchase, now),
		events.NewHeartsRefilled(key, 4, 5, domain.HeartRefillRegeneration, now),
		events.NewHeartLost(key, 4, now),
		events.NewStreakBroken(key, 6, now),
		events.NewPathCompleted(key, 500, 3600, now),
	}
	for _, e := range evs {
		require.NoError(t, m.HandleEvent(ctx, e))
	}

	assert.Equal(t, 25.0, testutil.ToFloat64(m.XPAwarded.WithLabelValues(string(domain.XPSourceLesson))))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.XPAwarded.WithLabelValues(string(domain.XPSourceReview))))
	assert.Equal(t, 20.0, testutil.ToFloat64(m.XPSpent.WithLabelValues("heart_refill")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LevelUps))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.HeartsRefilled.WithLabelValues(string(domain.HeartRefillPurchase))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HeartsRefilled.WithLabelValues(string(domain.HeartRefillRegeneration))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HeartsLost))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StreaksBroken))
	assert.Equal(t, 1, testutil.CollectAndCount(m.StreakLengthAtBreak))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PathsCompleted))

	assert.Equal(t, 3.0, testutil.ToFloat64(m.EventsTotal.WithLabelValues(string(events.TypeXPEarned))))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.EventsTotal.WithLabelValues(string(events.TypeHeartsRefilled))))
}

func TestHandleEvent_SessionEvents(t *testing.T) {
	t.Parallel()

	m := newTestMetrics(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	userID := domain.NewUserID()
	card := domain.NewFlashcardID()

	evs := []events.Event{
		events.NewCardMastered("s1", userID, card, domain.ReviewModeQuiz, mustInterval(t, 3), now.Add(72*time.Hour), now),
		events.NewCardStruggled("s1", userID, card, domain.ReviewModeQuiz, 3, true, now),
		events.NewCardStruggled("s1", userID, card, domain.ReviewModeRecall, 1, false, now),
		events.NewCardMarkedAsStruggling("s1", userID, card, 3, 4, now),
		events.NewReviewSessionCompleted("s1", userID, domain.ReviewModeQuiz, 2, 1, 50, now),
		events.NewLessonCompleted("l1", events.LessonOutcome{UserID: userID, AccuracyPercent: 100}, 15, true, now),
		events.NewLessonFailed("l2", events.LessonOutcome{UserID: userID, AccuracyPercent: 20}, now),
		events.NewLessonFailed("l3", events.LessonOutcome{UserID: userID, AccuracyPercent: 0}, now),
	}
	for _, e := range evs {
		require.NoError(t, m.HandleEvent(ctx, e))
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CardsMastered.WithLabelValues(string(domain.ReviewModeQuiz))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CardsStruggled.WithLabelValues(string(domain.ReviewModeQuiz))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CardsStruggled.WithLabelValues(string(domain.ReviewModeRecall))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CardsMarkedStruggling))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ReviewAccuracy))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Lessons.WithLabelValues(OutcomeCompleted)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Lessons.WithLabelValues(OutcomeFailed)))
	assert.Equal(t, 2, testutil.CollectAndCount(m.LessonAccuracy))
}

func TestHandleEvent_UntrackedEventStillCounted(t *testing.T) {
	t.Parallel()

	m := newTestMetrics(t)
	key := events.ProgressKey{UserID: domain.NewUserID(), PathID: domain.NewPathID()}
	e := events.NewStreakUpdated(key, 1, 2, time.Now())

	require.NoError(t, m.HandleEvent(context.Background(), e))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsTotal.WithLabelValues(string(events.TypeStreakUpdated))))
}

func TestMetricsAsPublisherHandler(t *testing.T) {
	t.Parallel()

	m := newTestMetrics(t)
	pub := events.NewInMemoryPublisher(nil, m)
	key := events.ProgressKey{UserID: domain.NewUserID(), PathID: domain.NewPathID()}

	err := pub.Publish(context.Background(),
		events.NewXPEarned(key, 10, domain.XPSourceLesson, 10, time.Now()),
		events.NewLevelUp(key, 1, 2, 100, time.Now()),
	)
	require.NoError(t, err)
	assert.Equal(t, 10.0, testutil.ToFloat64(m.XPAwarded.WithLabelValues(string(domain.XPSourceLesson))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LevelUps))
}
