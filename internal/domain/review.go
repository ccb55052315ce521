package domain

import (
	"time"
)

// ReviewMode is the presentation used when a card is reviewed.
type ReviewMode string

// Possible review mode values
const (
	ReviewModeFlashcard ReviewMode = "flashcard"
	ReviewModeQuiz      ReviewMode = "quiz"
	ReviewModeRecall    ReviewMode = "recall"
)

// Valid reports whether m is a known review mode.
func (m ReviewMode) Valid() bool {
	switch m {
	case ReviewModeFlashcard, ReviewModeQuiz, ReviewModeRecall:
		return true
	default:
		return false
	}
}

// ParseReviewMode converts s to a ReviewMode, rejecting unknown modes.
func ParseReviewMode(s string) (ReviewMode, error) {
	m := ReviewMode(s)
	if !m.Valid() {
		return "", NewValidationError(CodeInvalidReviewMode, "unknown review mode %q", s)
	}
	return m, nil
}

// ReviewHistoryRecord is one past review of a flashcard, supplied read-only by
// the review repository. Histories are ordered oldest first.
type ReviewHistoryRecord struct {
	FlashcardID  FlashcardID `json:"flashcard_id" yaml:"flashcard_id"`
	IsCorrect    bool        `json:"is_correct" yaml:"is_correct"`
	Mode         ReviewMode  `json:"mode" yaml:"mode"`
	ReviewedAt   time.Time   `json:"reviewed_at" yaml:"reviewed_at"`
	IntervalDays int         `json:"interval_days" yaml:"interval_days"`
}

// ReviewFlashcard is a card due for review together with its history.
type ReviewFlashcard struct {
	ID      FlashcardID           `json:"id"`
	History []ReviewHistoryRecord `json:"history"`
}

// LastReview returns the most recent history record, if any.
func (c ReviewFlashcard) LastReview() (ReviewHistoryRecord, bool) {
	if len(c.History) == 0 {
		return ReviewHistoryRecord{}, false
	}
	return c.History[len(c.History)-1], true
}

// SessionFlashcard is a card presented during a lesson.
type SessionFlashcard struct {
	ID    FlashcardID `json:"id"`
	Front string      `json:"front"`
	Back  string      `json:"back"`
}

// ReviewResult is the outcome of reviewing one card within a session.
type ReviewResult struct {
	FlashcardID FlashcardID    `json:"flashcard_id"`
	IsCorrect   bool           `json:"is_correct"`
	Mode        ReviewMode     `json:"mode"`
	ReviewedAt  time.Time      `json:"reviewed_at"`
	Interval    ReviewInterval `json:"interval_days"`
}

// HistoryRecord converts the result into the history row stores append.
func (r ReviewResult) HistoryRecord() ReviewHistoryRecord {
	return ReviewHistoryRecord{
		FlashcardID:  r.FlashcardID,
		IsCorrect:    r.IsCorrect,
		Mode:         r.Mode,
		ReviewedAt:   r.ReviewedAt,
		IntervalDays: r.Interval.Days(),
	}
}
