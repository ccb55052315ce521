package srs

import (
	"math"

	"github.com/phrazzld/scry-progression/internal/domain"
)

// consecutiveCorrect counts the trailing run of correct reviews in history.
//
// History is ordered oldest first, so the scan runs from the end and stops at
// the first incorrect review.
func consecutiveCorrect(history []domain.ReviewHistoryRecord) int {
	count := 0
	for i := len(history) - 1; i >= 0; i-- {
		if !history[i].IsCorrect {
			break
		}
		count++
	}
	return count
}

// consecutiveFailures counts the trailing run of incorrect reviews in history.
func consecutiveFailures(history []domain.ReviewHistoryRecord) int {
	count := 0
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].IsCorrect {
			break
		}
		count++
	}
	return count
}

// totalFailures counts every incorrect review in history.
func totalFailures(history []domain.ReviewHistoryRecord) int {
	count := 0
	for _, record := range history {
		if !record.IsCorrect {
			count++
		}
	}
	return count
}

// ladderInterval maps a run of consecutive correct answers to a ladder rung.
//
// Parameters:
//   - streak: consecutive correct reviews before the current one
//   - params: configuration parameters for the SRS algorithm
//
// With the default ladder the mapping is {0:1, 1:3, 2:7, 3:14, >=4:30} days.
func ladderInterval(streak int, params *Params) int {
	if streak < 0 {
		streak = 0
	}
	if streak >= len(params.Ladder) {
		return params.Ladder[len(params.Ladder)-1]
	}
	return params.Ladder[streak]
}

// calculateNextInterval returns the interval following a review.
//
// Algorithm behavior:
//   - An incorrect answer resets to the one-day interval with no partial credit
//   - A correct answer climbs the ladder by the trailing run of correct answers
//     already in history
//
// This is a simplified SM-2 variant without a continuous ease factor.
func calculateNextInterval(
	history []domain.ReviewHistoryRecord,
	wasCorrect bool,
	params *Params,
) domain.ReviewInterval {
	if !wasCorrect {
		return domain.InitialInterval()
	}

	interval, err := domain.NewReviewInterval(ladderInterval(consecutiveCorrect(history), params))
	if err != nil {
		// Validated params never produce a rung below one day.
		return domain.InitialInterval()
	}
	return interval
}

// clampEaseFactor keeps the ease factor within the configured bounds.
func clampEaseFactor(easeFactor float64, params *Params) float64 {
	if math.IsNaN(easeFactor) || easeFactor < params.MinEaseFactor {
		return params.MinEaseFactor
	}
	if easeFactor > params.MaxEaseFactor {
		return params.MaxEaseFactor
	}
	return easeFactor
}

// calculateWithEaseFactor grows an interval by an ease factor.
//
// Algorithm behavior:
//   - 1 day always becomes 3 days and 3 days always becomes 7 days
//   - Otherwise next = ceil(previous * easeFactor), with the ease factor
//     clamped to [MinEaseFactor, MaxEaseFactor]
func calculateWithEaseFactor(
	previous domain.ReviewInterval,
	easeFactor float64,
	params *Params,
) domain.ReviewInterval {
	ef := clampEaseFactor(easeFactor, params)

	var days int
	switch previous.Days() {
	case 1:
		days = 3
	case 3:
		days = 7
	default:
		days = int(math.Ceil(float64(previous.Days()) * ef))
	}

	interval, err := domain.NewReviewInterval(days)
	if err != nil {
		return previous
	}
	return interval
}

// shouldMarkAsStruggling applies the dual struggling criterion.
//
// A card is struggling after failureCount reaches the failure threshold, or
// once there are enough attempts and the failure rate exceeds the ratio. The
// second rule catches cards failed more often than not over a longer history
// without flagging a single unlucky attempt.
func shouldMarkAsStruggling(failureCount, totalAttempts int, params *Params) bool {
	if failureCount >= params.StrugglingFailureThreshold {
		return true
	}
	if totalAttempts >= params.StrugglingMinAttempts && totalAttempts > 0 {
		return float64(failureCount)/float64(totalAttempts) > params.StrugglingFailureRatio
	}
	return false
}

// isStrugglingHistory classifies a card from its full review history, latest
// answer included. The threshold rule looks at the trailing run of failures,
// while the ratio rule looks at every failure in the history.
func isStrugglingHistory(history []domain.ReviewHistoryRecord, params *Params) bool {
	attempts := len(history)
	if shouldMarkAsStruggling(consecutiveFailures(history), attempts, params) {
		return true
	}
	return attempts >= params.StrugglingMinAttempts &&
		float64(totalFailures(history))/float64(attempts) > params.StrugglingFailureRatio
}
