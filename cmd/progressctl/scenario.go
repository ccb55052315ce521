package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/scry-progression/internal/domain"
	"gopkg.in/yaml.v3"
)

// Replay actions
const (
	actionStartPath      = "start_path"
	actionLesson         = "lesson"
	actionReview         = "review"
	actionRefillHearts   = "refill_hearts"
	actionPurchaseRefill = "purchase_refill"
	actionAdvance        = "advance"
	actionCompletePath   = "complete_path"
)

// scenario is a scripted sequence of learner actions for one user on one path.
// Lessons, units and review cards are referred to by name; ids are generated
// unless given.
type scenario struct {
	User    string       `yaml:"user" validate:"omitempty,uuid"`
	Path    string       `yaml:"path" validate:"omitempty,uuid"`
	Group   string       `yaml:"group" validate:"omitempty,uuid"`
	Lessons []lessonSpec `yaml:"lessons" validate:"dive"`
	Cards   []cardSpec   `yaml:"review_cards" validate:"dive"`
	Steps   []step       `yaml:"steps" validate:"required,min=1,dive"`
}

type lessonSpec struct {
	Name  string `yaml:"name" validate:"required"`
	Cards int    `yaml:"cards" validate:"gte=0"`
}

type cardSpec struct {
	Name    string        `yaml:"name" validate:"required"`
	History []historySpec `yaml:"history" validate:"dive"`
}

type historySpec struct {
	Correct      bool      `yaml:"correct"`
	Mode         string    `yaml:"mode" validate:"omitempty,oneof=flashcard quiz recall"`
	At           time.Time `yaml:"at" validate:"required"`
	IntervalDays int       `yaml:"interval_days" validate:"gte=0"`
}

type step struct {
	At            time.Time `yaml:"at" validate:"required"`
	Action        string    `yaml:"action" validate:"required,oneof=start_path lesson review refill_hearts purchase_refill advance complete_path"`
	Lesson        string    `yaml:"lesson" validate:"required_if=Action lesson,required_if=Action advance"`
	Unit          string    `yaml:"unit" validate:"required_if=Action advance"`
	Answers       []bool    `yaml:"answers"`
	AnswerSeconds int       `yaml:"answer_seconds" validate:"gte=0"`
	Mode          string    `yaml:"mode" validate:"omitempty,oneof=flashcard quiz recall"`
	Limit         int       `yaml:"limit"`
	// ExpectError is the error code the step must fail with, e.g. NO_HEARTS.
	ExpectError string `yaml:"expect_error"`
}

// loadScenario reads and validates a YAML scenario file.
func loadScenario(path string) (*scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening scenario: %w", err)
	}
	defer func() { _ = f.Close() }()
	return parseScenario(f)
}

func parseScenario(r io.Reader) (*scenario, error) {
	var sc scenario
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("error parsing scenario: %w", err)
	}
	if err := validator.New().Struct(&sc); err != nil {
		return nil, fmt.Errorf("scenario validation failed: %w", err)
	}
	return &sc, nil
}

// replayer runs a scenario against the application's service.
type replayer struct {
	app     *application
	out     *recordWriter
	userID  domain.UserID
	pathID  domain.PathID
	groupID *domain.GroupID
	lessons map[string]domain.LessonID
	units   map[string]domain.UnitID
}

func newReplayer(app *application, sc *scenario, out *recordWriter) (*replayer, error) {
	r := &replayer{
		app:     app,
		out:     out,
		userID:  domain.NewUserID(),
		pathID:  domain.NewPathID(),
		lessons: make(map[string]domain.LessonID, len(sc.Lessons)),
		units:   make(map[string]domain.UnitID),
	}

	var err error
	if sc.User != "" {
		if r.userID, err = domain.ParseUserID(sc.User); err != nil {
			return nil, err
		}
	}
	if sc.Path != "" {
		if r.pathID, err = domain.ParsePathID(sc.Path); err != nil {
			return nil, err
		}
	}
	if sc.Group != "" {
		g, err := domain.ParseGroupID(sc.Group)
		if err != nil {
			return nil, err
		}
		r.groupID = &g
	}

	for _, spec := range sc.Lessons {
		if _, dup := r.lessons[spec.Name]; dup {
			return nil, fmt.Errorf("duplicate lesson name %q", spec.Name)
		}
		id := domain.NewLessonID()
		cards := make([]domain.SessionFlashcard, spec.Cards)
		for i := range cards {
			cards[i] = domain.SessionFlashcard{
				ID:    domain.NewFlashcardID(),
				Front: fmt.Sprintf("%s card %d front", spec.Name, i+1),
				Back:  fmt.Sprintf("%s card %d back", spec.Name, i+1),
			}
		}
		if err := app.lessons.AddLesson(id, cards...); err != nil {
			return nil, fmt.Errorf("failed to add lesson %q: %w", spec.Name, err)
		}
		r.lessons[spec.Name] = id
	}

	seen := make(map[string]bool, len(sc.Cards))
	for _, spec := range sc.Cards {
		if seen[spec.Name] {
			return nil, fmt.Errorf("duplicate review card name %q", spec.Name)
		}
		seen[spec.Name] = true

		history := make([]domain.ReviewHistoryRecord, len(spec.History))
		for i, h := range spec.History {
			mode := domain.ReviewMode(h.Mode)
			if mode == "" {
				mode = domain.ReviewModeFlashcard
			}
			history[i] = domain.ReviewHistoryRecord{
				IsCorrect:    h.Correct,
				Mode:         mode,
				ReviewedAt:   h.At,
				IntervalDays: h.IntervalDays,
			}
		}
		if err := app.reviews.AddFlashcard(r.userID, domain.NewFlashcardID(), history...); err != nil {
			return nil, fmt.Errorf("failed to add review card %q: %w", spec.Name, err)
		}
	}
	return r, nil
}

// run executes every step in order. A step that fails with its expected error
// code is recorded and the replay continues; any other failure stops it.
func (r *replayer) run(ctx context.Context, steps []step) error {
	for i, st := range steps {
		err := r.runStep(ctx, st)
		switch {
		case err == nil && st.ExpectError != "":
			return fmt.Errorf("step %d (%s): expected error %s, got none", i+1, st.Action, st.ExpectError)
		case err == nil:
			continue
		case st.ExpectError != "" && string(domain.CodeOf(err)) == st.ExpectError:
			r.app.logger.Debug("step failed as expected",
				slog.Int("step", i+1),
				slog.String("action", st.Action),
				slog.String("code", st.ExpectError))
			if werr := r.out.writeExpectedError(i+1, st.Action, err); werr != nil {
				return werr
			}
		default:
			return fmt.Errorf("step %d (%s): %w", i+1, st.Action, err)
		}
	}

	snapshots, err := r.app.service.ListProgress(ctx, r.userID)
	if err != nil {
		return fmt.Errorf("failed to list progress: %w", err)
	}
	for _, s := range snapshots {
		if err := r.out.writeProgress(s); err != nil {
			return err
		}
	}
	return nil
}

func (r *replayer) runStep(ctx context.Context, st step) error {
	svc := r.app.service

	switch st.Action {
	case actionStartPath:
		_, err := svc.StartPath(ctx, r.userID, r.pathID, r.groupID, st.At)
		return err
	case actionRefillHearts:
		_, err := svc.RefillHearts(ctx, r.userID, r.pathID, st.At)
		return err
	case actionPurchaseRefill:
		_, err := svc.PurchaseHeartRefill(ctx, r.userID, r.pathID, st.At)
		return err
	case actionCompletePath:
		_, err := svc.CompletePath(ctx, r.userID, r.pathID, st.At)
		return err
	case actionAdvance:
		lessonID, err := r.lesson(st.Lesson)
		if err != nil {
			return err
		}
		_, err = svc.AdvancePosition(ctx, r.userID, r.pathID, r.unit(st.Unit), lessonID, st.At)
		return err
	case actionLesson:
		return r.runLesson(ctx, st)
	case actionReview:
		return r.runReview(ctx, st)
	default:
		return fmt.Errorf("unknown action %q", st.Action)
	}
}

func (r *replayer) runLesson(ctx context.Context, st step) error {
	lessonID, err := r.lesson(st.Lesson)
	if err != nil {
		return err
	}
	attempt, err := r.app.service.StartLesson(ctx, r.userID, r.pathID, lessonID, st.At)
	if err != nil {
		return err
	}

	per := time.Duration(st.AnswerSeconds) * time.Second
	now := st.At
	for _, correct := range st.Answers {
		now = now.Add(per)
		res, err := r.app.service.SubmitLessonAnswer(ctx, attempt, correct, per, now)
		if err != nil {
			return err
		}
		if res.Status.IsTerminal() {
			return nil
		}
	}
	return nil
}

func (r *replayer) runReview(ctx context.Context, st step) error {
	mode := domain.ReviewModeFlashcard
	if st.Mode != "" {
		mode = domain.ReviewMode(st.Mode)
	}
	session, err := r.app.service.StartReview(ctx, r.userID, mode, st.Limit, st.At)
	if err != nil {
		return err
	}
	for _, correct := range st.Answers {
		res, err := r.app.service.SubmitReview(ctx, session, correct, st.At)
		if err != nil {
			return err
		}
		if res.Complete {
			return nil
		}
	}
	return nil
}

func (r *replayer) lesson(name string) (domain.LessonID, error) {
	id, ok := r.lessons[name]
	if !ok {
		return domain.LessonID{}, fmt.Errorf("unknown lesson %q", name)
	}
	return id, nil
}

func (r *replayer) unit(name string) domain.UnitID {
	id, ok := r.units[name]
	if !ok {
		id = domain.NewUnitID()
		r.units[name] = id
	}
	return id
}
