package store

import (
	"errors"
	"fmt"
	"testing"
)

// TestErrorClassification checks every sentinel against the three predicates,
// bare and wrapped.
func TestErrorClassification(t *testing.T) {
	t.Parallel()

	type class struct{ notFound, duplicate, conflict bool }

	tests := []struct {
		name string
		err  error
		want class
	}{
		{"nil", nil, class{}},
		{"unrelated", errors.New("disk full"), class{}},
		{"ErrInvalidEntity", ErrInvalidEntity, class{}},
		{"ErrNotFound", ErrNotFound, class{notFound: true}},
		{"ErrProgressNotFound", ErrProgressNotFound, class{notFound: true}},
		{"ErrLessonNotFound", ErrLessonNotFound, class{notFound: true}},
		{"ErrFlashcardNotFound", ErrFlashcardNotFound, class{notFound: true}},
		{"ErrDuplicate", ErrDuplicate, class{duplicate: true}},
		{"ErrProgressExists", ErrProgressExists, class{duplicate: true}},
		{"ErrConflict", ErrConflict, class{conflict: true}},
		{
			"store error around ErrConflict",
			NewStoreError("user_progress", "save", "version 3 is stale", ErrConflict),
			class{conflict: true},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			for _, err := range []error{tt.err, wrap(tt.err)} {
				got := class{
					notFound:  IsNotFoundError(err),
					duplicate: IsDuplicateError(err),
					conflict:  IsConflictError(err),
				}
				if got != tt.want {
					t.Errorf("classification of %v = %+v, want %+v", err, got, tt.want)
				}
			}
		})
	}
}

func wrap(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("loading progress: %w", err)
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := NewStoreError("review_history", "append", "write failed", cause)

	if got, want := err.Error(), "append operation on review_history failed: write failed: connection reset"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, cause) {
		t.Errorf("errors.Is did not find the wrapped cause")
	}
	var target *StoreError
	if !errors.As(fmt.Errorf("outer: %w", err), &target) || target.Entity != "review_history" {
		t.Errorf("errors.As did not recover the StoreError")
	}

	bare := NewStoreError("lesson", "load", "no cards", nil)
	if got, want := bare.Error(), "load operation on lesson failed: no cards"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if bare.Unwrap() != nil {
		t.Errorf("Unwrap() on a bare error should be nil")
	}
}
