// Package domain defines the core value objects, identifiers and errors.
package domain

import (
	"errors"
	"fmt"
)

// Root errors for the two failure kinds raised by the engine.
var (
	// ErrValidation is matched by every ValidationError.
	// A value or aggregate was asked to hold state that breaks one of its invariants.
	ErrValidation = errors.New("validation failed")

	// ErrDomain is matched by every DomainError.
	// The operation is not permitted in the current state.
	ErrDomain = errors.New("domain rule violated")
)

// ErrorCode is a stable, machine-readable identifier carried by engine errors.
type ErrorCode string

// Validation codes
const (
	CodeInvalidID         ErrorCode = "INVALID_ID"
	CodeInvalidXP         ErrorCode = "INVALID_XP"
	CodeInsufficientXP    ErrorCode = "INSUFFICIENT_XP"
	CodeInvalidHearts     ErrorCode = "INVALID_HEARTS"
	CodeInvalidStreak     ErrorCode = "INVALID_STREAK"
	CodeInvalidInterval   ErrorCode = "INVALID_INTERVAL"
	CodeInvalidReviewMode ErrorCode = "INVALID_REVIEW_MODE"
	CodeInvalidAccuracy   ErrorCode = "INVALID_ACCURACY"
	CodeInvalidTimeSpent  ErrorCode = "INVALID_TIME_SPENT"
	CodeInvalidProgress   ErrorCode = "INVALID_PROGRESS"
)

// Domain rule codes
const (
	CodeNoHearts              ErrorCode = "NO_HEARTS"
	CodeHeartsFull            ErrorCode = "HEARTS_FULL"
	CodeReviewSessionComplete ErrorCode = "REVIEW_SESSION_COMPLETE"
	CodeReviewNoDueCards      ErrorCode = "REVIEW_NO_DUE_CARDS"
	CodeLessonNoCards         ErrorCode = "LESSON_NO_CARDS"
	CodeLessonSessionEnded    ErrorCode = "LESSON_SESSION_ENDED"
	CodePathAlreadyCompleted  ErrorCode = "PATH_ALREADY_COMPLETED"
)

// Code-specific sentinels for use with errors.Is. Matching is by code, so an
// error built with NewDomainError(CodeNoHearts, "...") matches ErrNoHearts
// regardless of its message.
var (
	ErrNoHearts              = &DomainError{Code: CodeNoHearts, Message: "no hearts remaining"}
	ErrHeartsFull            = &DomainError{Code: CodeHeartsFull, Message: "hearts are already full"}
	ErrReviewSessionComplete = &DomainError{Code: CodeReviewSessionComplete, Message: "review session is complete"}
	ErrReviewNoDueCards      = &DomainError{Code: CodeReviewNoDueCards, Message: "no cards due for review"}
	ErrLessonNoCards         = &DomainError{Code: CodeLessonNoCards, Message: "lesson has no cards"}
	ErrLessonSessionEnded    = &DomainError{Code: CodeLessonSessionEnded, Message: "lesson session has ended"}
	ErrPathAlreadyCompleted  = &DomainError{Code: CodePathAlreadyCompleted, Message: "path already completed"}

	ErrInsufficientXP = &ValidationError{Code: CodeInsufficientXP, Message: "not enough XP"}
)

// ValidationError reports an invariant violation on construction or mutation.
type ValidationError struct {
	Code    ErrorCode
	Message string
}

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(code ErrorCode, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is reports whether target is ErrValidation or a ValidationError with the same code.
func (e *ValidationError) Is(target error) bool {
	if target == ErrValidation {
		return true
	}
	t, ok := target.(*ValidationError)
	return ok && t.Code == e.Code
}

// DomainError reports an operation that is illegal given the current state.
type DomainError struct {
	Code    ErrorCode
	Message string
}

// NewDomainError builds a DomainError with a formatted message.
func NewDomainError(code ErrorCode, format string, args ...any) *DomainError {
	return &DomainError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Error implements the error interface for DomainError.
func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is reports whether target is ErrDomain or a DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	if target == ErrDomain {
		return true
	}
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// CodeOf extracts the ErrorCode from a ValidationError or DomainError anywhere
// in err's chain. It returns an empty code for any other error.
func CodeOf(err error) ErrorCode {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Code
	}
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
