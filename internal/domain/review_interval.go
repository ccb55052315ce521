package domain

import (
	"encoding/json"
	"time"
)

// MinIntervalDays is the shortest review interval.
const MinIntervalDays = 1

// ReviewInterval is a spaced-repetition interval in whole days.
type ReviewInterval struct {
	days int
}

// NewReviewInterval creates an interval of at least MinIntervalDays.
func NewReviewInterval(days int) (ReviewInterval, error) {
	if days < MinIntervalDays {
		return ReviewInterval{}, NewValidationError(CodeInvalidInterval,
			"interval must be at least %d day, got %d", MinIntervalDays, days)
	}
	return ReviewInterval{days: days}, nil
}

// InitialInterval returns the one-day interval every reset falls back to.
func InitialInterval() ReviewInterval { return ReviewInterval{days: MinIntervalDays} }

// Days returns the interval length in days.
func (i ReviewInterval) Days() int {
	if i.days < MinIntervalDays {
		return MinIntervalDays
	}
	return i.days
}

// Duration returns the interval as a fixed 24-hour-per-day duration.
func (i ReviewInterval) Duration() time.Duration {
	return time.Duration(i.Days()) * 24 * time.Hour
}

// NextReviewDate returns from shifted by the interval in calendar days.
func (i ReviewInterval) NextReviewDate(from time.Time) time.Time {
	return from.AddDate(0, 0, i.Days())
}

// IsDue reports whether a card last reviewed at lastReview is due at now.
// The boundary is inclusive.
func (i ReviewInterval) IsDue(lastReview, now time.Time) bool {
	return !now.Before(i.NextReviewDate(lastReview))
}

// MarshalJSON encodes the interval as a bare day count.
func (i ReviewInterval) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.Days())
}
