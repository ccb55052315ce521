package domain

import (
	"github.com/google/uuid"
)

// Identifiers are distinct named types so that a PathID can never be passed
// where a UserID is expected. Each embeds uuid.UUID for String and text
// (un)marshalling.

// UserID identifies a learner.
type UserID struct{ uuid.UUID }

// PathID identifies a learning path.
type PathID struct{ uuid.UUID }

// GroupID identifies a study group scoping a learner's progress.
type GroupID struct{ uuid.UUID }

// UnitID identifies a unit within a path.
type UnitID struct{ uuid.UUID }

// LessonID identifies a lesson within a unit.
type LessonID struct{ uuid.UUID }

// FlashcardID identifies a flashcard.
type FlashcardID struct{ uuid.UUID }

// NewUserID returns a random UserID.
func NewUserID() UserID { return UserID{uuid.New()} }

// NewPathID returns a random PathID.
func NewPathID() PathID { return PathID{uuid.New()} }

// NewGroupID returns a random GroupID.
func NewGroupID() GroupID { return GroupID{uuid.New()} }

// NewUnitID returns a random UnitID.
func NewUnitID() UnitID { return UnitID{uuid.New()} }

// NewLessonID returns a random LessonID.
func NewLessonID() LessonID { return LessonID{uuid.New()} }

// NewFlashcardID returns a random FlashcardID.
func NewFlashcardID() FlashcardID { return FlashcardID{uuid.New()} }

// IsZero reports whether the id is unset.
func (id UserID) IsZero() bool { return id.UUID == uuid.Nil }

// IsZero reports whether the id is unset.
func (id PathID) IsZero() bool { return id.UUID == uuid.Nil }

// IsZero reports whether the id is unset.
func (id GroupID) IsZero() bool { return id.UUID == uuid.Nil }

// IsZero reports whether the id is unset.
func (id UnitID) IsZero() bool { return id.UUID == uuid.Nil }

// IsZero reports whether the id is unset.
func (id LessonID) IsZero() bool { return id.UUID == uuid.Nil }

// IsZero reports whether the id is unset.
func (id FlashcardID) IsZero() bool { return id.UUID == uuid.Nil }

func parseID(kind, s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, NewValidationError(CodeInvalidID, "invalid %s id %q", kind, s)
	}
	return id, nil
}

// ParseUserID parses a UserID from its string form.
func ParseUserID(s string) (UserID, error) {
	id, err := parseID("user", s)
	return UserID{id}, err
}

// ParsePathID parses a PathID from its string form.
func ParsePathID(s string) (PathID, error) {
	id, err := parseID("path", s)
	return PathID{id}, err
}

// ParseGroupID parses a GroupID from its string form.
func ParseGroupID(s string) (GroupID, error) {
	id, err := parseID("group", s)
	return GroupID{id}, err
}

// ParseUnitID parses a UnitID from its string form.
func ParseUnitID(s string) (UnitID, error) {
	id, err := parseID("unit", s)
	return UnitID{id}, err
}

// ParseLessonID parses a LessonID from its string form.
func ParseLessonID(s string) (LessonID, error) {
	id, err := parseID("lesson", s)
	return LessonID{id}, err
}

// ParseFlashcardID parses a FlashcardID from its string form.
func ParseFlashcardID(s string) (FlashcardID, error) {
	id, err := parseID("flashcard", s)
	return FlashcardID{id}, err
}
