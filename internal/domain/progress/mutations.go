package progress

import (
	"time"

	"github.com/phrazzld/scry-progression/internal/domain"
	"github.com/phrazzld/scry-progression/internal/events"
)

// AwardXP adds XP. XPEarned is always raised; LevelUp follows when the award
// crosses a level boundary.
func (p *UserProgress) AwardXP(amount domain.XP, source domain.XPSource, now time.Time) []events.Event {
	return p.record(p.awardXP(amount, source, now)...)
}

func (p *UserProgress) awardXP(amount domain.XP, source domain.XPSource, now time.Time) []events.Event {
	oldLevel := p.xp.Level()
	p.xp = p.xp.Add(amount)

	out := []events.Event{events.NewXPEarned(p.key, amount.Amount(), source, p.xp.Amount(), now)}
	if newLevel := p.xp.Level(); newLevel > oldLevel {
		out = append(out, events.NewLevelUp(p.key, oldLevel, newLevel, p.xp.Amount(), now))
	}
	return out
}

// SpendXP removes XP for the given reason. It fails with INSUFFICIENT_XP when
// the learner does not have enough.
func (p *UserProgress) SpendXP(amount domain.XP, reason string, now time.Time) ([]events.Event, error) {
	remaining, err := p.xp.Subtract(amount)
	if err != nil {
		return nil, err
	}
	p.xp = remaining
	return p.record(events.NewXPSpent(p.key, amount.Amount(), reason, p.xp.Amount(), now)), nil
}

// PurchaseHeartRefill exchanges cost XP for a full set of hearts.
func (p *UserProgress) PurchaseHeartRefill(cost domain.XP, now time.Time) ([]events.Event, error) {
	if p.hearts.IsFull() {
		return nil, domain.NewDomainError(domain.CodeHeartsFull, "hearts are already full")
	}
	remaining, err := p.xp.Subtract(cost)
	if err != nil {
		return nil, err
	}

	previous := p.hearts.Remaining()
	p.xp = remaining
	p.hearts = domain.FullHearts()
	p.lastHeartRefill = now

	return p.record(
		events.NewXPSpent(p.key, cost.Amount(), SpendReasonHeartRefill, p.xp.Amount(), now),
		events.NewHeartsRefilled(p.key, previous, p.hearts.Remaining(), domain.HeartRefillPurchase, now),
	), nil
}

// DeductHeart removes one heart. It fails with NO_HEARTS when none remain.
func (p *UserProgress) DeductHeart(now time.Time) ([]events.Event, error) {
	next, err := p.hearts.Deduct()
	if err != nil {
		return nil, err
	}
	p.setHearts(next, now)
	return p.record(events.NewHeartLost(p.key, next.Remaining(), now)), nil
}

// setHearts replaces the heart count. Losing the first heart starts the
// regeneration clock.
func (p *UserProgress) setHearts(h domain.Hearts, now time.Time) {
	if p.hearts.IsFull() && !h.IsFull() {
		p.lastHeartRefill = now
	}
	p.hearts = h
}

// RefillHearts applies time-based heart regeneration.
//
// After FullRefillAfter since the last refill, hearts are restored completely
// and the refill time becomes now. Otherwise one heart is restored per
// elapsed HeartRegenInterval and the refill time moves forward by exactly the
// ticks consumed, so partial progress toward the next heart is kept.
// HeartsRefilled is raised only if hearts increased.
func (p *UserProgress) RefillHearts(now time.Time) []events.Event {
	if p.hearts.IsFull() {
		return nil
	}

	elapsed := now.Sub(p.lastHeartRefill)
	previous := p.hearts.Remaining()

	switch {
	case elapsed >= FullRefillAfter:
		p.hearts = domain.FullHearts()
		p.lastHeartRefill = now
	case elapsed >= HeartRegenInterval:
		ticks := int(elapsed / HeartRegenInterval)
		refilled, err := p.hearts.Refill(ticks)
		if err != nil {
			return nil
		}
		p.hearts = refilled
		p.lastHeartRefill = p.lastHeartRefill.Add(time.Duration(ticks) * HeartRegenInterval)
	default:
		return nil
	}

	if p.hearts.Remaining() <= previous {
		return nil
	}
	return p.record(events.NewHeartsRefilled(p.key, previous, p.hearts.Remaining(),
		domain.HeartRefillRegeneration, now))
}

// HeartsRefillAt returns when the next heart regenerates, or the zero time
// when hearts are full.
func (p *UserProgress) HeartsRefillAt() time.Time {
	if p.hearts.IsFull() {
		return time.Time{}
	}
	return p.lastHeartRefill.Add(HeartRegenInterval)
}

// UpdateStreak records activity at now.
//
// Activity on the same calendar day changes nothing. The next day extends the
// streak. A longer gap raises StreakBroken with the lost count and starts a
// new streak today. The first activity ever starts a streak without a break.
// StreakUpdated is raised only when the count changed.
func (p *UserProgress) UpdateStreak(now time.Time) []events.Event {
	return p.record(p.updateStreak(now)...)
}

func (p *UserProgress) updateStreak(now time.Time) []events.Event {
	if last, ok := p.streak.LastActivity(); ok && domain.CalendarDaysBetween(last, now) <= 0 {
		return nil
	}

	next, change := p.streak.Increment(now)
	p.streak = next

	var out []events.Event
	if change.Broken {
		out = append(out, events.NewStreakBroken(p.key, change.PreviousCount, now))
	}
	if next.Count() != change.PreviousCount {
		out = append(out, events.NewStreakUpdated(p.key, change.PreviousCount, next.Count(), now))
	}
	return out
}

// CompleteLesson folds a finished lesson into progress.
//
// In order: XP is awarded (XPEarned, LevelUp), hearts are overwritten with the
// session's final count, the lesson becomes the current one, the streak is
// updated, and ProgressLessonCompleted is raised.
func (p *UserProgress) CompleteLesson(
	lessonID domain.LessonID,
	accuracyPercent int,
	xpEarned domain.XP,
	heartsRemaining domain.Hearts,
	now time.Time,
) ([]events.Event, error) {
	if lessonID.IsZero() {
		return nil, domain.NewValidationError(domain.CodeInvalidID, "lesson id is required")
	}
	if accuracyPercent < 0 || accuracyPercent > 100 {
		return nil, domain.NewValidationError(domain.CodeInvalidAccuracy,
			"accuracy must be between 0 and 100, got %d", accuracyPercent)
	}

	out := p.awardXP(xpEarned, domain.XPSourceLesson, now)
	p.setHearts(heartsRemaining, now)
	lesson := lessonID
	p.currentLessonID = &lesson
	out = append(out, p.updateStreak(now)...)
	out = append(out, events.NewProgressLessonCompleted(p.key, lessonID, accuracyPercent, xpEarned.Amount(), now))

	return p.record(out...), nil
}

// FailLesson folds a failed lesson attempt into progress. The attempt still
// counts as activity for the streak.
func (p *UserProgress) FailLesson(
	lessonID domain.LessonID,
	heartsRemaining domain.Hearts,
	now time.Time,
) ([]events.Event, error) {
	if lessonID.IsZero() {
		return nil, domain.NewValidationError(domain.CodeInvalidID, "lesson id is required")
	}

	p.setHearts(heartsRemaining, now)
	out := p.updateStreak(now)
	out = append(out, events.NewProgressLessonFailed(p.key, lessonID, heartsRemaining.Remaining(), now))

	return p.record(out...), nil
}

// AdvancePosition moves the learner to a lesson within a unit.
func (p *UserProgress) AdvancePosition(unitID domain.UnitID, lessonID domain.LessonID, now time.Time) ([]events.Event, error) {
	if unitID.IsZero() || lessonID.IsZero() {
		return nil, domain.NewValidationError(domain.CodeInvalidID, "unit and lesson ids are required")
	}

	unit, lesson := unitID, lessonID
	p.currentUnitID = &unit
	p.currentLessonID = &lesson
	return p.record(events.NewPositionAdvanced(p.key, unitID, lessonID, now)), nil
}

// AddTimeSpent adds to the cumulative time spent on the path.
func (p *UserProgress) AddTimeSpent(seconds int) error {
	if seconds < 0 {
		return domain.NewValidationError(domain.CodeInvalidTimeSpent,
			"time spent cannot be negative, got %d", seconds)
	}
	p.timeSpentSeconds += seconds
	return nil
}

// CompletePath marks the path completed. It can happen only once.
func (p *UserProgress) CompletePath(now time.Time) ([]events.Event, error) {
	if p.completedAt != nil {
		return nil, domain.NewDomainError(domain.CodePathAlreadyCompleted,
			"path was already completed at %s", p.completedAt.Format(time.RFC3339))
	}
	completed := now
	p.completedAt = &completed
	return p.record(events.NewPathCompleted(p.key, p.xp.Amount(), p.timeSpentSeconds, now)), nil
}
