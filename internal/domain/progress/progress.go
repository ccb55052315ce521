// Package progress implements the UserProgress aggregate: a learner's XP,
// hearts, streak and position within one learning path.
package progress

import (
	"time"

	"github.com/phrazzld/scry-progression/internal/domain"
	"github.com/phrazzld/scry-progression/internal/events"
)

const (
	// HeartRegenInterval is how long it takes to regenerate one heart.
	HeartRegenInterval = 4 * time.Hour

	// FullRefillAfter is the idle time after which hearts refill completely.
	FullRefillAfter = 24 * time.Hour

	// SpendReasonHeartRefill is the XPSpent reason used by PurchaseHeartRefill.
	SpendReasonHeartRefill = "heart_refill"
)

// UserProgress is the aggregate root for a learner's progress on a path.
//
// All state changes go through its methods. Each mutator returns the events
// it raised and also records them in an internal buffer that the use case
// drains after saving. A UserProgress is owned by a single request and is not
// safe for concurrent use.
type UserProgress struct {
	key     events.ProgressKey
	groupID *domain.GroupID

	xp              domain.XP
	hearts          domain.Hearts
	streak          domain.Streak
	lastHeartRefill time.Time

	currentUnitID   *domain.UnitID
	currentLessonID *domain.LessonID

	startedAt        time.Time
	completedAt      *time.Time
	timeSpentSeconds int

	version int
	events  events.Buffer
}

// Start creates progress for a learner beginning a path: full hearts, zero XP
// and no streak. groupID is optional.
func Start(userID domain.UserID, pathID domain.PathID, groupID *domain.GroupID, now time.Time) (*UserProgress, error) {
	if userID.IsZero() {
		return nil, domain.NewValidationError(domain.CodeInvalidID, "user id is required")
	}
	if pathID.IsZero() {
		return nil, domain.NewValidationError(domain.CodeInvalidID, "path id is required")
	}

	p := &UserProgress{
		key:             events.ProgressKey{UserID: userID, PathID: pathID},
		groupID:         cloneGroupID(groupID),
		xp:              domain.ZeroXP(),
		hearts:          domain.FullHearts(),
		streak:          domain.NewStreak(),
		lastHeartRefill: now,
		startedAt:       now,
	}
	p.record(events.NewProgressStarted(p.key, cloneGroupID(groupID), now))
	return p, nil
}

// Key returns the identity of the aggregate.
func (p *UserProgress) Key() events.ProgressKey { return p.key }

// UserID returns the learner.
func (p *UserProgress) UserID() domain.UserID { return p.key.UserID }

// PathID returns the path.
func (p *UserProgress) PathID() domain.PathID { return p.key.PathID }

// GroupID returns the group scoping this progress, if any.
func (p *UserProgress) GroupID() (domain.GroupID, bool) {
	if p.groupID == nil {
		return domain.GroupID{}, false
	}
	return *p.groupID, true
}

// XP returns the total XP earned on the path.
func (p *UserProgress) XP() domain.XP { return p.xp }

// Level returns the level derived from total XP.
func (p *UserProgress) Level() int { return p.xp.Level() }

// Hearts returns the hearts currently available.
func (p *UserProgress) Hearts() domain.Hearts { return p.hearts }

// Streak returns the current streak.
func (p *UserProgress) Streak() domain.Streak { return p.streak }

// LastHeartRefill returns the reference time for heart regeneration.
func (p *UserProgress) LastHeartRefill() time.Time { return p.lastHeartRefill }

// StartedAt returns when the path was started.
func (p *UserProgress) StartedAt() time.Time { return p.startedAt }

// CompletedAt returns when the path was completed, if it has been.
func (p *UserProgress) CompletedAt() (time.Time, bool) {
	if p.completedAt == nil {
		return time.Time{}, false
	}
	return *p.completedAt, true
}

// IsCompleted reports whether the path has been completed.
func (p *UserProgress) IsCompleted() bool { return p.completedAt != nil }

// CurrentLessonID returns the lesson the learner is positioned on, if any.
func (p *UserProgress) CurrentLessonID() (domain.LessonID, bool) {
	if p.currentLessonID == nil {
		return domain.LessonID{}, false
	}
	return *p.currentLessonID, true
}

// CurrentUnitID returns the unit the learner is positioned on, if any.
func (p *UserProgress) CurrentUnitID() (domain.UnitID, bool) {
	if p.currentUnitID == nil {
		return domain.UnitID{}, false
	}
	return *p.currentUnitID, true
}

// TimeSpentSeconds returns the cumulative time spent on the path.
func (p *UserProgress) TimeSpentSeconds() int { return p.timeSpentSeconds }

// Version returns the stored version this aggregate was loaded at.
func (p *UserProgress) Version() int { return p.version }

// SetVersion records the version assigned by a store after a successful save.
func (p *UserProgress) SetVersion(v int) { p.version = v }

// Events returns a copy of the events raised since the last drain.
func (p *UserProgress) Events() []events.Event { return p.events.Events() }

// ClearEvents discards the buffered events.
func (p *UserProgress) ClearEvents() { p.events.Clear() }

// PullEvents returns the buffered events and clears the buffer.
func (p *UserProgress) PullEvents() []events.Event { return p.events.Drain() }

func (p *UserProgress) record(evts ...events.Event) []events.Event {
	p.events.Record(evts...)
	return evts
}

func cloneGroupID(id *domain.GroupID) *domain.GroupID {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}
