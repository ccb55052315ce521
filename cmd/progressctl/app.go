package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/phrazzld/scry-progression/internal/config"
	"github.com/phrazzld/scry-progression/internal/domain/srs"
	"github.com/phrazzld/scry-progression/internal/events"
	"github.com/phrazzld/scry-progression/internal/observability"
	"github.com/phrazzld/scry-progression/internal/platform/memory"
	"github.com/phrazzld/scry-progression/internal/service/progression"
	"github.com/prometheus/client_golang/prometheus"
)

// application holds the wired engine for one command invocation.
type application struct {
	config    *config.Config
	logger    *slog.Logger
	srs       srs.Service
	progress  *memory.ProgressStore
	reviews   *memory.ReviewStore
	lessons   *memory.LessonStore
	publisher *events.InMemoryPublisher
	registry  *prometheus.Registry
	metrics   *observability.Metrics
	service   progression.Service
}

// newApplication wires in-memory stores, the SRS policy, metrics and the
// progression service from cfg. Every published event is also handed to the
// extra handlers, in order.
func newApplication(cfg *config.Config, logger *slog.Logger, handlers ...events.Handler) (*application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	policy, err := srs.NewServiceWithParams(cfg.SRS.Params())
	if err != nil {
		return nil, fmt.Errorf("failed to create srs service: %w", err)
	}

	registry := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(cfg.Metrics.Namespace, registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	publisher := events.NewInMemoryPublisher(logger, metrics, events.NewLogHandler(logger).WithLevel(slog.LevelDebug))
	for _, h := range handlers {
		publisher.RegisterHandler(h)
	}

	app := &application{
		config:    cfg,
		logger:    logger,
		srs:       policy,
		progress:  memory.NewProgressStore(logger),
		reviews:   memory.NewReviewStore(logger),
		lessons:   memory.NewLessonStore(logger),
		publisher: publisher,
		registry:  registry,
		metrics:   metrics,
	}

	app.service, err = progression.NewService(progression.Deps{
		Progress:  app.progress,
		Reviews:   app.reviews,
		Lessons:   app.lessons,
		Publisher: publisher,
		SRS:       policy,
		Logger:    logger,
	}, serviceOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create progression service: %w", err)
	}

	logger.Debug("application initialized",
		slog.String("metrics_namespace", cfg.Metrics.Namespace),
		slog.Int("pass_threshold", cfg.Lesson.PassThreshold))
	return app, nil
}

// serviceOptions maps configuration onto the service's policy options.
func serviceOptions(cfg *config.Config) progression.Options {
	return progression.Options{
		Rewards:         cfg.Lesson.Rewards(),
		PassThreshold:   cfg.Lesson.PassThreshold,
		HeartRefillCost: cfg.Hearts.RefillCostXP,
		MaxSaveAttempts: cfg.Service.MaxSaveAttempts,
	}
}

// writeMetrics prints every non-empty counter and histogram sample count as
// "name{labels} value" lines.
func (app *application) writeMetrics(w io.Writer) error {
	families, err := app.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, family := range families {
		for _, m := range family.GetMetric() {
			labels := ""
			for i, lp := range m.GetLabel() {
				if i > 0 {
					labels += ","
				}
				labels += fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue())
			}
			if labels != "" {
				labels = "{" + labels + "}"
			}

			switch {
			case m.GetCounter() != nil:
				_, err = fmt.Fprintf(w, "%s%s %g\n", family.GetName(), labels, m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				_, err = fmt.Fprintf(w, "%s_count%s %d\n%s_sum%s %g\n",
					family.GetName(), labels, h.GetSampleCount(),
					family.GetName(), labels, h.GetSampleSum())
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}
