package domain

import (
	"time"
)

// Streak counts consecutive calendar days of activity.
type Streak struct {
	count        int
	lastActivity time.Time // zero when the learner has never been active
}

// StreakChange describes what Streak.Increment did.
type StreakChange struct {
	// Broken is set when a gap of two or more calendar days discarded the previous run.
	Broken bool
	// PreviousCount is the count before the increment.
	PreviousCount int
}

// NewStreak returns an empty streak with no recorded activity.
func NewStreak() Streak { return Streak{} }

// RestoreStreak rebuilds a streak from stored state.
func RestoreStreak(count int, lastActivity time.Time) (Streak, error) {
	if count < 0 {
		return Streak{}, NewValidationError(CodeInvalidStreak, "streak cannot be negative, got %d", count)
	}
	if count > 0 && lastActivity.IsZero() {
		return Streak{}, NewValidationError(CodeInvalidStreak,
			"streak of %d requires a last activity time", count)
	}
	return Streak{count: count, lastActivity: lastActivity}, nil
}

// Count returns the number of consecutive active days.
func (s Streak) Count() int { return s.count }

// LastActivity returns the time of the last counted activity, if any.
func (s Streak) LastActivity() (time.Time, bool) {
	return s.lastActivity, !s.lastActivity.IsZero()
}

// DaysSince returns the calendar days between the last activity and now, or
// -1 when there has been no activity.
func (s Streak) DaysSince(now time.Time) int {
	if s.lastActivity.IsZero() {
		return -1
	}
	return CalendarDaysBetween(s.lastActivity, now)
}

// Increment records activity at now.
//
// The first activity ever starts a run of one. Activity on the same calendar
// day as the last one changes nothing. Activity on the next calendar day
// extends the run. A gap of two or more days breaks the run: the old count is
// discarded and today starts a new run of one. The count does not rest at
// zero after a break, because the activity being recorded is itself the first
// day of the new run; a learner who stops entirely keeps the stale count until
// their next activity.
func (s Streak) Increment(now time.Time) (Streak, StreakChange) {
	change := StreakChange{PreviousCount: s.count}
	if s.lastActivity.IsZero() {
		return Streak{count: 1, lastActivity: now}, change
	}

	days := CalendarDaysBetween(s.lastActivity, now)
	switch {
	case days <= 0:
		// Same day, or a last activity stamped in the future.
		return s, change
	case days == 1:
		return Streak{count: s.count + 1, lastActivity: now}, change
	default:
		change.Broken = true
		return Streak{count: 1, lastActivity: now}, change
	}
}

// CalendarDaysBetween returns the number of calendar-day boundaries between
// from and to, comparing year/month/day in to's location. Two times 30 hours
// apart on consecutive dates are one day apart; 23:00 and 01:00 the next
// morning are also one day apart.
func CalendarDaysBetween(from, to time.Time) int {
	f := from.In(to.Location())
	fromDate := time.Date(f.Year(), f.Month(), f.Day(), 0, 0, 0, 0, time.UTC)
	toDate := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(toDate.Sub(fromDate).Hours() / 24)
}
