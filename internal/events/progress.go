package events

import (
	"time"

	"github.com/phrazzld/scry-progression/internal/domain"
)

// ProgressKey identifies a UserProgress aggregate.
type ProgressKey struct {
	UserID domain.UserID `json:"user_id"`
	PathID domain.PathID `json:"path_id"`
}

// ProgressAggregateID returns the aggregate id used on progress events.
func ProgressAggregateID(key ProgressKey) string {
	return key.UserID.String() + "/" + key.PathID.String()
}

func progressBase(t Type, key ProgressKey, at time.Time) Base {
	return NewBase(t, ProgressAggregateID(key), at)
}

// ProgressStarted is raised when a learner starts a path.
type ProgressStarted struct {
	Base
	ProgressKey
	GroupID *domain.GroupID `json:"group_id,omitempty"`
}

// NewProgressStarted creates a ProgressStarted event.
func NewProgressStarted(key ProgressKey, groupID *domain.GroupID, at time.Time) ProgressStarted {
	return ProgressStarted{Base: progressBase(TypeProgressStarted, key, at), ProgressKey: key, GroupID: groupID}
}

// XPEarned is raised on every XP award.
type XPEarned struct {
	Base
	ProgressKey
	Amount  int             `json:"amount"`
	Source  domain.XPSource `json:"source"`
	TotalXP int             `json:"total_xp"`
}

// NewXPEarned creates an XPEarned event.
func NewXPEarned(key ProgressKey, amount int, source domain.XPSource, total int, at time.Time) XPEarned {
	return XPEarned{
		Base:        progressBase(TypeXPEarned, key, at),
		ProgressKey: key,
		Amount:      amount,
		Source:      source,
		TotalXP:     total,
	}
}

// XPSpent is raised when XP is exchanged for something.
type XPSpent struct {
	Base
	ProgressKey
	Amount  int    `json:"amount"`
	Reason  string `json:"reason"`
	TotalXP int    `json:"total_xp"`
}

// NewXPSpent creates an XPSpent event.
func NewXPSpent(key ProgressKey, amount int, reason string, total int, at time.Time) XPSpent {
	return XPSpent{
		Base:        progressBase(TypeXPSpent, key, at),
		ProgressKey: key,
		Amount:      amount,
		Reason:      reason,
		TotalXP:     total,
	}
}

// LevelUp is raised when an award crosses one or more level boundaries.
type LevelUp struct {
	Base
	ProgressKey
	PreviousLevel int `json:"previous_level"`
	NewLevel      int `json:"new_level"`
	TotalXP       int `json:"total_xp"`
}

// NewLevelUp creates a LevelUp event.
func NewLevelUp(key ProgressKey, previous, next, total int, at time.Time) LevelUp {
	return LevelUp{
		Base:          progressBase(TypeLevelUp, key, at),
		ProgressKey:   key,
		PreviousLevel: previous,
		NewLevel:      next,
		TotalXP:       total,
	}
}

// HeartsRefilled is raised when hearts actually increased.
type HeartsRefilled struct {
	Base
	ProgressKey
	Previous int                      `json:"previous"`
	Current  int                      `json:"current"`
	Source   domain.HeartRefillSource `json:"source"`
}

// NewHeartsRefilled creates a HeartsRefilled event.
func NewHeartsRefilled(
	key ProgressKey,
	previous, current int,
	source domain.HeartRefillSource,
	at time.Time,
) HeartsRefilled {
	return HeartsRefilled{
		Base:        progressBase(TypeHeartsRefilled, key, at),
		ProgressKey: key,
		Previous:    previous,
		Current:     current,
		Source:      source,
	}
}

// Added returns the number of hearts restored.
func (e HeartsRefilled) Added() int { return e.Current - e.Previous }

// HeartLost is raised when a heart is deducted outside a lesson session.
type HeartLost struct {
	Base
	ProgressKey
	Remaining int `json:"remaining"`
}

// NewHeartLost creates a HeartLost event.
func NewHeartLost(key ProgressKey, remaining int, at time.Time) HeartLost {
	return HeartLost{Base: progressBase(TypeHeartLost, key, at), ProgressKey: key, Remaining: remaining}
}

// StreakUpdated is raised when the streak count changes.
type StreakUpdated struct {
	Base
	ProgressKey
	PreviousCount int `json:"previous_count"`
	NewCount      int `json:"new_count"`
}

// NewStreakUpdated creates a StreakUpdated event.
func NewStreakUpdated(key ProgressKey, previous, next int, at time.Time) StreakUpdated {
	return StreakUpdated{
		Base:          progressBase(TypeStreakUpdated, key, at),
		ProgressKey:   key,
		PreviousCount: previous,
		NewCount:      next,
	}
}

// StreakBroken is raised when a gap of two or more days ends a run.
type StreakBroken struct {
	Base
	ProgressKey
	PreviousCount int `json:"previous_count"`
}

// NewStreakBroken creates a StreakBroken event.
func NewStreakBroken(key ProgressKey, previous int, at time.Time) StreakBroken {
	return StreakBroken{Base: progressBase(TypeStreakBroken, key, at), ProgressKey: key, PreviousCount: previous}
}

// ProgressLessonCompleted is raised when a lesson outcome is folded into progress.
type ProgressLessonCompleted struct {
	Base
	ProgressKey
	LessonID        domain.LessonID `json:"lesson_id"`
	AccuracyPercent int             `json:"accuracy_percent"`
	XPEarned        int             `json:"xp_earned"`
}

// NewProgressLessonCompleted creates a ProgressLessonCompleted event.
func NewProgressLessonCompleted(
	key ProgressKey,
	lessonID domain.LessonID,
	accuracy, xp int,
	at time.Time,
) ProgressLessonCompleted {
	return ProgressLessonCompleted{
		Base:            progressBase(TypeProgressLessonCompleted, key, at),
		ProgressKey:     key,
		LessonID:        lessonID,
		AccuracyPercent: accuracy,
		XPEarned:        xp,
	}
}

// ProgressLessonFailed is raised when a failed attempt is folded into progress.
type ProgressLessonFailed struct {
	Base
	ProgressKey
	LessonID        domain.LessonID `json:"lesson_id"`
	HeartsRemaining int             `json:"hearts_remaining"`
}

// NewProgressLessonFailed creates a ProgressLessonFailed event.
func NewProgressLessonFailed(key ProgressKey, lessonID domain.LessonID, hearts int, at time.Time) ProgressLessonFailed {
	return ProgressLessonFailed{
		Base:            progressBase(TypeProgressLessonFailed, key, at),
		ProgressKey:     key,
		LessonID:        lessonID,
		HeartsRemaining: hearts,
	}
}

// PositionAdvanced is raised when the learner moves to another lesson.
type PositionAdvanced struct {
	Base
	ProgressKey
	UnitID   domain.UnitID   `json:"unit_id"`
	LessonID domain.LessonID `json:"lesson_id"`
}

// NewPositionAdvanced creates a PositionAdvanced event.
func NewPositionAdvanced(key ProgressKey, unitID domain.UnitID, lessonID domain.LessonID, at time.Time) PositionAdvanced {
	return PositionAdvanced{
		Base:        progressBase(TypePositionAdvanced, key, at),
		ProgressKey: key,
		UnitID:      unitID,
		LessonID:    lessonID,
	}
}

// PathCompleted is raised once, when the learner finishes the path.
type PathCompleted struct {
	Base
	ProgressKey
	TotalXP          int `json:"total_xp"`
	TimeSpentSeconds int `json:"time_spent_seconds"`
}

// NewPathCompleted creates a PathCompleted event.
func NewPathCompleted(key ProgressKey, totalXP, timeSpent int, at time.Time) PathCompleted {
	return PathCompleted{
		Base:             progressBase(TypePathCompleted, key, at),
		ProgressKey:      key,
		TotalXP:          totalXP,
		TimeSpentSeconds: timeSpent,
	}
}
