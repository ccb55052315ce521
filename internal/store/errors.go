package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// This is a generic version of the entity-specific not found errors
	// (e.g., ErrProgressNotFound, ErrLessonNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a second progress record for the same path).
	ErrDuplicate = errors.New("entity already exists")

	// ErrConflict is returned when a save loses an optimistic concurrency race:
	// the stored version moved on since the aggregate was loaded. Callers should
	// re-fetch and re-apply the operation.
	ErrConflict = errors.New("version conflict")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// Entity-specific "not found" errors

	// ErrProgressNotFound indicates that the learner has not started the path.
	ErrProgressNotFound = fmt.Errorf("%w: user progress", ErrNotFound)

	// ErrLessonNotFound indicates that the requested lesson does not exist in the store.
	ErrLessonNotFound = fmt.Errorf("%w: lesson", ErrNotFound)

	// ErrFlashcardNotFound indicates that the requested flashcard does not exist in the store.
	ErrFlashcardNotFound = fmt.Errorf("%w: flashcard", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrProgressExists indicates that the learner already started the path.
	ErrProgressExists = fmt.Errorf("%w: user progress", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
// Entity-specific errors wrap ErrNotFound, so one check covers them all.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// IsConflictError checks if the error is an optimistic concurrency conflict.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrConflict)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "user_progress", "review_history")
	Operation string // The operation that failed (e.g., "save", "delete")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
