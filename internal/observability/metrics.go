// Package observability turns domain events into Prometheus metrics.
//
// Metrics is an events.Handler: attach it to a publisher and every event the
// engine raises is counted. Nothing in the domain packages imports this one.
package observability

import (
	"context"
	"fmt"

	"github.com/phrazzld/scry-progression/internal/events"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultNamespace is used when NewMetrics is given an empty namespace.
const DefaultNamespace = "progression"

// Metrics holds the collectors fed by domain events.
type Metrics struct {
	EventsTotal *prometheus.CounterVec

	XPAwarded *prometheus.CounterVec
	XPSpent   *prometheus.CounterVec
	LevelUps  prometheus.Counter

	HeartsRefilled *prometheus.CounterVec
	HeartsLost     prometheus.Counter

	StreaksBroken       prometheus.Counter
	StreakLengthAtBreak prometheus.Histogram

	CardsMastered         *prometheus.CounterVec
	CardsStruggled        *prometheus.CounterVec
	CardsMarkedStruggling prometheus.Counter
	ReviewAccuracy        *prometheus.HistogramVec

	Lessons        *prometheus.CounterVec
	LessonAccuracy *prometheus.HistogramVec
	PathsCompleted prometheus.Counter
}

// accuracyBuckets covers 10, 20, ..., 100 percent.
var accuracyBuckets = prometheus.LinearBuckets(10, 10, 10)

// NewMetrics creates the collectors and registers them with reg.
// Registering twice under the same namespace returns the registry's error.
func NewMetrics(namespace string, reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		return nil, fmt.Errorf("metrics registerer cannot be nil")
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}

	m := &Metrics{
		EventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Domain events handled, by event type.",
		}, []string{"type"}),

		XPAwarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "xp",
			Name:      "awarded_total",
			Help:      "Experience points awarded, by source.",
		}, []string{"source"}),
		XPSpent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "xp",
			Name:      "spent_total",
			Help:      "Experience points spent, by reason.",
		}, []string{"reason"}),
		LevelUps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "xp",
			Name:      "level_ups_total",
			Help:      "Level up events.",
		}),

		HeartsRefilled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "hearts",
			Name:      "refilled_total",
			Help:      "Hearts restored, by refill source.",
		}, []string{"source"}),
		HeartsLost: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "hearts",
			Name:      "lost_total",
			Help:      "Hearts deducted outside lesson sessions.",
		}),

		StreaksBroken: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "streak",
			Name:      "broken_total",
			Help:      "Streaks ended by a gap of two or more days.",
		}),
		StreakLengthAtBreak: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "streak",
			Name:      "length_at_break_days",
			Help:      "Streak length when it was broken.",
			Buckets:   []float64{1, 2, 3, 7, 14, 30, 60, 100, 365},
		}),

		CardsMastered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "review",
			Name:      "cards_mastered_total",
			Help:      "Cards answered correctly in review, by mode.",
		}, []string{"mode"}),
		CardsStruggled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "review",
			Name:      "cards_struggled_total",
			Help:      "Cards answered incorrectly in review, by mode.",
		}, []string{"mode"}),
		CardsMarkedStruggling: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "review",
			Name:      "cards_marked_struggling_total",
			Help:      "Cards that crossed the struggling threshold.",
		}),
		ReviewAccuracy: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "review",
			Name:      "session_accuracy_percent",
			Help:      "Accuracy of completed review sessions, by mode.",
			Buckets:   accuracyBuckets,
		}, []string{"mode"}),

		Lessons: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lesson",
			Name:      "sessions_total",
			Help:      "Finished lesson sessions, by outcome.",
		}, []string{"outcome"}),
		LessonAccuracy: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "lesson",
			Name:      "accuracy_percent",
			Help:      "Accuracy of finished lesson sessions, by outcome.",
			Buckets:   accuracyBuckets,
		}, []string{"outcome"}),
		PathsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "path",
			Name:      "completed_total",
			Help:      "Learning paths completed.",
		}),
	}

	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.EventsTotal,
		m.XPAwarded,
		m.XPSpent,
		m.LevelUps,
		m.HeartsRefilled,
		m.HeartsLost,
		m.StreaksBroken,
		m.StreakLengthAtBreak,
		m.CardsMastered,
		m.CardsStruggled,
		m.CardsMarkedStruggling,
		m.ReviewAccuracy,
		m.Lessons,
		m.LessonAccuracy,
		m.PathsCompleted,
	}
}

// Lesson outcome label values.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
)

// HandleEvent implements events.Handler. It never fails.
func (m *Metrics) HandleEvent(_ context.Context, event events.Event) error {
	m.EventsTotal.WithLabelValues(string(event.EventType())).Inc()

	switch e := event.(type) {
	case events.XPEarned:
		m.XPAwarded.WithLabelValues(string(e.Source)).Add(float64(e.Amount))
	case events.XPSpent:
		m.XPSpent.WithLabelValues(e.Reason).Add(float64(e.Amount))
	case events.LevelUp:
		m.LevelUps.Inc()
	case events.HeartsRefilled:
		m.HeartsRefilled.WithLabelValues(string(e.Source)).Add(float64(e.Added()))
	case events.HeartLost:
		m.HeartsLost.Inc()
	case events.StreakBroken:
		m.StreaksBroken.Inc()
		m.StreakLengthAtBreak.Observe(float64(e.PreviousCount))
	case events.CardMastered:
		m.CardsMastered.WithLabelValues(string(e.Mode)).Inc()
	case events.CardStruggled:
		m.CardsStruggled.WithLabelValues(string(e.Mode)).Inc()
	case events.CardMarkedAsStruggling:
		m.CardsMarkedStruggling.Inc()
	case events.ReviewSessionCompleted:
		m.ReviewAccuracy.WithLabelValues(string(e.Mode)).Observe(float64(e.AccuracyPercent))
	case events.LessonCompleted:
		m.Lessons.WithLabelValues(OutcomeCompleted).Inc()
		m.LessonAccuracy.WithLabelValues(OutcomeCompleted).Observe(float64(e.AccuracyPercent))
	case events.LessonFailed:
		m.Lessons.WithLabelValues(OutcomeFailed).Inc()
		m.LessonAccuracy.WithLabelValues(OutcomeFailed).Observe(float64(e.AccuracyPercent))
	case events.PathCompleted:
		m.PathsCompleted.Inc()
	}
	return nil
}
