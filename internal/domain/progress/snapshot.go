package progress

import (
	"time"

	"github.com/phrazzld/scry-progression/internal/domain"
	"github.com/phrazzld/scry-progression/internal/events"
)

// Snapshot is a plain, detached copy of a UserProgress. Stores persist
// snapshots and rebuild aggregates from them with Reconstitute.
type Snapshot struct {
	UserID           domain.UserID    `json:"user_id" yaml:"user_id"`
	PathID           domain.PathID    `json:"path_id" yaml:"path_id"`
	GroupID          *domain.GroupID  `json:"group_id,omitempty" yaml:"group_id,omitempty"`
	XP               int              `json:"xp" yaml:"xp"`
	Hearts           int              `json:"hearts" yaml:"hearts"`
	StreakCount      int              `json:"streak_count" yaml:"streak_count"`
	LastActivityAt   *time.Time       `json:"last_activity_at,omitempty" yaml:"last_activity_at,omitempty"`
	LastHeartRefill  time.Time        `json:"last_heart_refill" yaml:"last_heart_refill"`
	CurrentUnitID    *domain.UnitID   `json:"current_unit_id,omitempty" yaml:"current_unit_id,omitempty"`
	CurrentLessonID  *domain.LessonID `json:"current_lesson_id,omitempty" yaml:"current_lesson_id,omitempty"`
	StartedAt        time.Time        `json:"started_at" yaml:"started_at"`
	CompletedAt      *time.Time       `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	TimeSpentSeconds int              `json:"time_spent_seconds" yaml:"time_spent_seconds"`
	Version          int              `json:"version" yaml:"version"`
}

// Level returns the level derived from the snapshot's XP.
func (s Snapshot) Level() int { return s.XP / domain.XPPerLevel }

// Snapshot returns a copy of the aggregate state. Pointer fields are cloned,
// so changing the snapshot never changes the aggregate.
func (p *UserProgress) Snapshot() Snapshot {
	s := Snapshot{
		UserID:           p.key.UserID,
		PathID:           p.key.PathID,
		GroupID:          cloneGroupID(p.groupID),
		XP:               p.xp.Amount(),
		Hearts:           p.hearts.Remaining(),
		StreakCount:      p.streak.Count(),
		LastHeartRefill:  p.lastHeartRefill,
		StartedAt:        p.startedAt,
		TimeSpentSeconds: p.timeSpentSeconds,
		Version:          p.version,
	}
	if last, ok := p.streak.LastActivity(); ok {
		s.LastActivityAt = &last
	}
	if p.currentUnitID != nil {
		unit := *p.currentUnitID
		s.CurrentUnitID = &unit
	}
	if p.currentLessonID != nil {
		lesson := *p.currentLessonID
		s.CurrentLessonID = &lesson
	}
	if p.completedAt != nil {
		completed := *p.completedAt
		s.CompletedAt = &completed
	}
	return s
}

// Reconstitute rebuilds a UserProgress from a snapshot, validating every
// invariant. No events are raised.
func Reconstitute(s Snapshot) (*UserProgress, error) {
	if s.UserID.IsZero() || s.PathID.IsZero() {
		return nil, domain.NewValidationError(domain.CodeInvalidID, "user and path ids are required")
	}
	xp, err := domain.NewXP(s.XP)
	if err != nil {
		return nil, err
	}
	hearts, err := domain.NewHearts(s.Hearts)
	if err != nil {
		return nil, err
	}
	var lastActivity time.Time
	if s.LastActivityAt != nil {
		lastActivity = *s.LastActivityAt
	}
	streak, err := domain.RestoreStreak(s.StreakCount, lastActivity)
	if err != nil {
		return nil, err
	}
	if s.TimeSpentSeconds < 0 {
		return nil, domain.NewValidationError(domain.CodeInvalidTimeSpent,
			"time spent cannot be negative, got %d", s.TimeSpentSeconds)
	}
	if s.StartedAt.IsZero() {
		return nil, domain.NewValidationError(domain.CodeInvalidProgress, "started at is required")
	}
	if s.CompletedAt != nil && s.CompletedAt.Before(s.StartedAt) {
		return nil, domain.NewValidationError(domain.CodeInvalidProgress, "completed before it was started")
	}
	if s.Version < 0 {
		return nil, domain.NewValidationError(domain.CodeInvalidProgress, "version cannot be negative")
	}

	p := &UserProgress{
		key:              events.ProgressKey{UserID: s.UserID, PathID: s.PathID},
		groupID:          cloneGroupID(s.GroupID),
		xp:               xp,
		hearts:           hearts,
		streak:           streak,
		lastHeartRefill:  s.LastHeartRefill,
		startedAt:        s.StartedAt,
		timeSpentSeconds: s.TimeSpentSeconds,
		version:          s.Version,
	}
	if s.CurrentUnitID != nil {
		unit := *s.CurrentUnitID
		p.currentUnitID = &unit
	}
	if s.CurrentLessonID != nil {
		lesson := *s.CurrentLessonID
		p.currentLessonID = &lesson
	}
	if s.CompletedAt != nil {
		completed := *s.CompletedAt
		p.completedAt = &completed
	}
	return p, nil
}
