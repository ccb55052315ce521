package srs

import (
	"testing"
	"time"

	"github.com/phrazzld/scry-progression/internal/domain"
	"github.com/stretchr/testify/assert"
)

// history builds a review history from a pattern such as "ccx" where
// 'c' is a correct review and 'x' an incorrect one, oldest first.
func history(pattern string) []domain.ReviewHistoryRecord {
	card := domain.NewFlashcardID()
	start := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	records := make([]domain.ReviewHistoryRecord, 0, len(pattern))
	for i, r := range pattern {
		records = append(records, domain.ReviewHistoryRecord{
			FlashcardID: card,
			IsCorrect:   r == 'c',
			Mode:        domain.ReviewModeFlashcard,
			ReviewedAt:  start.AddDate(0, 0, i),
		})
	}
	return records
}

func TestCalculateNextInterval(t *testing.T) {
	t.Parallel() // Enable parallel execution
	params := NewDefaultParams()

	testCases := []struct {
		name       string
		history    string
		wasCorrect bool
		expected   int
	}{
		{name: "first correct review", history: "", wasCorrect: true, expected: 1},
		{name: "one prior correct", history: "c", wasCorrect: true, expected: 3},
		{name: "two prior correct", history: "cc", wasCorrect: true, expected: 7},
		{name: "three prior correct", history: "ccc", wasCorrect: true, expected: 14},
		{name: "four prior correct", history: "cccc", wasCorrect: true, expected: 30},
		{name: "long correct run stays on the last rung", history: "cccccccccc", wasCorrect: true, expected: 30},
		{name: "run counted only after the last failure", history: "cccxc", wasCorrect: true, expected: 3},
		{name: "correct right after a failure", history: "cccx", wasCorrect: true, expected: 1},
		{name: "incorrect with empty history", history: "", wasCorrect: false, expected: 1},
		{name: "incorrect after a long run", history: "cccccc", wasCorrect: false, expected: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := calculateNextInterval(history(tc.history), tc.wasCorrect, params)
			if got.Days() != tc.expected {
				t.Errorf("Expected interval %d, got %d", tc.expected, got.Days())
			}
		})
	}
}

func TestCalculateWithEaseFactor(t *testing.T) {
	t.Parallel() // Enable parallel execution
	params := NewDefaultParams()

	testCases := []struct {
		name     string
		previous int
		ef       float64
		expected int
	}{
		{name: "1 day is a fixed step", previous: 1, ef: 1.3, expected: 3},
		{name: "3 days is a fixed step", previous: 3, ef: 2.5, expected: 7},
		{name: "grows by ease factor", previous: 7, ef: 2.0, expected: 14},
		{name: "rounds up", previous: 7, ef: 2.5, expected: 18},      // 17.5
		{name: "clamped above", previous: 10, ef: 4.0, expected: 25}, // 2.5
		{name: "clamped below", previous: 7, ef: 0.5, expected: 10},  // 9.1
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			prev, err := domain.NewReviewInterval(tc.previous)
			if err != nil {
				t.Fatalf("invalid previous interval: %v", err)
			}
			got := calculateWithEaseFactor(prev, tc.ef, params)
			assert.Equal(t, tc.expected, got.Days())
		})
	}
}

func TestShouldMarkAsStruggling(t *testing.T) {
	t.Parallel() // Enable parallel execution
	params := NewDefaultParams()

	testCases := []struct {
		failures, attempts int
		expected           bool
	}{
		{failures: 3, attempts: 3, expected: true},
		{failures: 2, attempts: 10, expected: false},
		{failures: 6, attempts: 10, expected: true},
		{failures: 1, attempts: 1, expected: false},
		{failures: 2, attempts: 2, expected: false},
		{failures: 0, attempts: 0, expected: false},
	}

	for _, tc := range testCases {
		got := shouldMarkAsStruggling(tc.failures, tc.attempts, params)
		assert.Equal(t, tc.expected, got, "failures=%d attempts=%d", tc.failures, tc.attempts)
	}
}

func TestShouldMarkAsStrugglingRatioRule(t *testing.T) {
	t.Parallel()
	// A higher failure threshold exposes the ratio criterion on its own.
	params := NewParams(ParamsConfig{StrugglingFailureThreshold: 10})

	assert.True(t, shouldMarkAsStruggling(3, 5, params), "60% over five attempts")
	assert.False(t, shouldMarkAsStruggling(2, 4, params), "not enough attempts")
	assert.False(t, shouldMarkAsStruggling(5, 10, params), "exactly half is not more than half")
}

func TestConsecutiveCounts(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, consecutiveCorrect(history("")))
	assert.Equal(t, 2, consecutiveCorrect(history("xcc")))
	assert.Equal(t, 0, consecutiveCorrect(history("ccx")))
	assert.Equal(t, 3, consecutiveFailures(history("cxxx")))
	assert.Equal(t, 0, consecutiveFailures(history("xxc")))
	assert.Equal(t, 3, totalFailures(history("xcxcx")))
	assert.Equal(t, 0, totalFailures(history("")))
}

func TestIsStrugglingHistory(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	testCases := []struct {
		name    string
		pattern string
		want    bool
	}{
		{name: "three failures in a row", pattern: "cccxxx", want: true},
		{name: "three scattered failures over many attempts", pattern: "xccxccxcc", want: false},
		{name: "mostly failing without a run of three", pattern: "xxcxxcxxcx", want: true},
		{name: "exactly half over six attempts", pattern: "xcxcxc", want: false},
		{name: "mostly failing but too few attempts", pattern: "xcxx", want: false},
		{name: "empty history", pattern: "", want: false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, isStrugglingHistory(history(tc.pattern), params))
		})
	}
}
