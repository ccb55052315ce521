package srs

import (
	"fmt"
	"time"

	"github.com/phrazzld/scry-progression/internal/domain"
)

// Service defines the interface for SRS algorithm operations
type Service interface {
	// CalculateNextInterval computes the interval that follows a review given
	// the card's prior history (oldest first).
	CalculateNextInterval(history []domain.ReviewHistoryRecord, wasCorrect bool) domain.ReviewInterval

	// CalculateWithEaseFactor grows previous by a clamped ease factor.
	CalculateWithEaseFactor(previous domain.ReviewInterval, easeFactor float64) domain.ReviewInterval

	// ShouldMarkAsStruggling classifies a card from its failure counts.
	ShouldMarkAsStruggling(failureCount, totalAttempts int) bool

	// IsDueForReview reports whether a card is due at now (inclusive boundary).
	IsDueForReview(lastReviewDate time.Time, interval domain.ReviewInterval, now time.Time) bool

	// NextReviewDate returns the date a card reviewed at now is next due.
	NextReviewDate(interval domain.ReviewInterval, now time.Time) time.Time

	// ConsecutiveCorrect counts the trailing correct reviews in history.
	ConsecutiveCorrect(history []domain.ReviewHistoryRecord) int

	// ConsecutiveFailures counts the trailing incorrect reviews in history.
	ConsecutiveFailures(history []domain.ReviewHistoryRecord) int

	// TotalFailures counts every incorrect review in history.
	TotalFailures(history []domain.ReviewHistoryRecord) int

	// IsStruggling classifies a card from its history, latest answer last.
	// Consecutive failures feed the threshold rule and total failures feed
	// the ratio rule.
	IsStruggling(history []domain.ReviewHistoryRecord) bool
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new SRS service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new SRS service with custom parameters.
// Returns an error if the parameters fail validation.
func NewServiceWithParams(params *Params) (Service, error) {
	if params == nil {
		return nil, fmt.Errorf("%w: params cannot be nil", ErrInvalidParams)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &defaultService{
		params: params,
	}, nil
}

// CalculateNextInterval implements Service.
func (s *defaultService) CalculateNextInterval(
	history []domain.ReviewHistoryRecord,
	wasCorrect bool,
) domain.ReviewInterval {
	return calculateNextInterval(history, wasCorrect, s.params)
}

// CalculateWithEaseFactor implements Service.
func (s *defaultService) CalculateWithEaseFactor(
	previous domain.ReviewInterval,
	easeFactor float64,
) domain.ReviewInterval {
	return calculateWithEaseFactor(previous, easeFactor, s.params)
}

// ShouldMarkAsStruggling implements Service.
func (s *defaultService) ShouldMarkAsStruggling(failureCount, totalAttempts int) bool {
	return shouldMarkAsStruggling(failureCount, totalAttempts, s.params)
}

// IsDueForReview implements Service.
func (s *defaultService) IsDueForReview(
	lastReviewDate time.Time,
	interval domain.ReviewInterval,
	now time.Time,
) bool {
	return interval.IsDue(lastReviewDate, now)
}

// NextReviewDate implements Service.
func (s *defaultService) NextReviewDate(interval domain.ReviewInterval, now time.Time) time.Time {
	return interval.NextReviewDate(now)
}

// ConsecutiveCorrect implements Service.
func (s *defaultService) ConsecutiveCorrect(history []domain.ReviewHistoryRecord) int {
	return consecutiveCorrect(history)
}

// ConsecutiveFailures implements Service.
func (s *defaultService) ConsecutiveFailures(history []domain.ReviewHistoryRecord) int {
	return consecutiveFailures(history)
}

// TotalFailures implements Service.
func (s *defaultService) TotalFailures(history []domain.ReviewHistoryRecord) int {
	return totalFailures(history)
}

// IsStruggling implements Service.
func (s *defaultService) IsStruggling(history []domain.ReviewHistoryRecord) bool {
	return isStrugglingHistory(history, s.params)
}
