// Package catalog holds the reference data a timetable entry points at:
// instructors, rooms, courses, student groups and hour slots.
//
// The validator only ever reads from a Catalog. Editing the catalog is the
// job of whoever owns the records (the catalog HTTP handlers, seeding).
package catalog

import (
	"context"
	"errors"

	"github.com/anjiri1684/timetable/models"
	"github.com/google/uuid"
)

// ErrNotFound is returned by every lookup whose id is unknown.
var ErrNotFound = errors.New("catalog: record not found")

// Kind names a catalog record type. It doubles as the cache key prefix.
type Kind string

const (
	KindInstructor Kind = "instructor"
	KindRoom       Kind = "room"
	KindCourse     Kind = "course"
	KindGroup      Kind = "group"
	KindHourSlot   Kind = "hour_slot"
)

type Catalog interface {
	GetInstructor(ctx context.Context, id uuid.UUID) (*models.Instructor, error)
	GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error)
	GetCourse(ctx context.Context, id uuid.UUID) (*models.Course, error)
	GetGroup(ctx context.Context, id uuid.UUID) (*models.Group, error)
	GetHourSlot(ctx context.Context, id uuid.UUID) (*models.HourSlot, error)
}
