package timetable

import (
	"fmt"

	"github.com/anjiri1684/timetable/catalog"
	"github.com/anjiri1684/timetable/models"
	"github.com/google/uuid"
)

// Kind identifies one member of the closed set of timetable errors. Every
// Kind is itself an error, so callers match with errors.Is(err, ErrRoomTooSmall).
type Kind string

func (k Kind) Error() string { return string(k) }

const (
	ErrIncompleteEntry        Kind = "incomplete entry"
	ErrRoomTooSmall           Kind = "room too small"
	ErrYearMismatch           Kind = "year mismatch"
	ErrCourseOverlap          Kind = "course overlap"
	ErrInstructorConflict     Kind = "instructor conflict"
	ErrDualWeekConflict       Kind = "dual week conflict"
	ErrInstructorSelfConflict Kind = "instructor self conflict"
	ErrRoomSelfConflict       Kind = "room self conflict"

	ErrNotFound       Kind = "schedule entry not found"
	ErrStaleReference Kind = "stale reference"
)

// ValidationError is a rejected candidate. Only the fields relevant to Kind
// are populated.
type ValidationError struct {
	Kind       Kind
	Field      string
	ClassType  models.ClassType
	Group      *models.Group
	Room       *models.Room
	Course     *models.Course
	Instructor *models.Instructor
	// PeerID is the existing entry the candidate collided with.
	PeerID  uuid.UUID
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// NotFoundError is returned by update and delete for an unknown entry id.
type NotFoundError struct {
	ID uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("schedule entry %s not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// StaleReferenceError means an entry points at a catalog record that no
// longer exists.
type StaleReferenceError struct {
	Field string
	Kind  catalog.Kind
	ID    uuid.UUID
}

func (e *StaleReferenceError) Error() string {
	if e.ID == uuid.Nil {
		return fmt.Sprintf("%s references a record that no longer exists", e.Field)
	}
	return fmt.Sprintf("%s references %s %s which no longer exists", e.Field, e.Kind, e.ID)
}

func (e *StaleReferenceError) Is(target error) bool {
	return target == ErrStaleReference
}

func incomplete(field string, classType models.ClassType, msg string) *ValidationError {
	return &ValidationError{Kind: ErrIncompleteEntry, Field: field, ClassType: classType, Message: msg}
}
