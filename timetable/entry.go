package timetable

import (
	"context"
	"errors"
	"log"

	"github.com/anjiri1684/timetable/catalog"
	"github.com/anjiri1684/timetable/models"
	"github.com/google/uuid"
)

// Assignment is one class of an entry with its catalog references resolved.
type Assignment struct {
	Course     *models.Course
	CourseType models.CourseType
	Instructor *models.Instructor
	Room       *models.Room
	WeekType   models.WeekType
}

// Entry is a ScheduleEntry whose references were looked up in the catalog.
// A nil pointer means the column was left empty.
type Entry struct {
	ID        uuid.UUID
	ClassType models.ClassType
	Group     *models.Group
	Day       models.Day
	HourSlot  *models.HourSlot
	Primary   Assignment
	Secondary Assignment
}

func (e *Entry) assignments() [2]*Assignment {
	return [2]*Assignment{&e.Primary, &e.Secondary}
}

// activeYear is the year of the primary course, or of the second course
// when the primary one is empty.
func (e *Entry) activeYear() (int, bool) {
	if e.Primary.Course != nil {
		return e.Primary.Course.Year, true
	}
	if e.Secondary.Course != nil {
		return e.Secondary.Course.Year, true
	}
	return 0, false
}

// courseInYear returns the first of the entry's courses taught in year.
func (e *Entry) courseInYear(year int) *models.Course {
	for _, a := range e.assignments() {
		if a.Course != nil && a.Course.Year == year {
			return a.Course
		}
	}
	return nil
}

func sameInstructor(a, b *models.Instructor) bool {
	return a != nil && b != nil && a.ID == b.ID
}

func sameRoom(a, b *models.Room) bool {
	return a != nil && b != nil && a.ID == b.ID
}

// Resolve looks up every reference of e in cat. A reference that is set but
// unknown to the catalog fails with *StaleReferenceError.
func Resolve(ctx context.Context, cat catalog.Catalog, e *models.ScheduleEntry) (Entry, error) {
	r := &resolver{ctx: ctx, cat: cat, strict: true}
	out := r.entry(e)
	return out, r.err
}

// ResolveStored resolves an already stored entry. References that vanished
// from the catalog are left empty instead of failing.
func ResolveStored(ctx context.Context, cat catalog.Catalog, e *models.ScheduleEntry) (Entry, error) {
	r := &resolver{ctx: ctx, cat: cat}
	out := r.entry(e)
	return out, r.err
}

type resolver struct {
	ctx     context.Context
	cat     catalog.Catalog
	strict  bool
	entryID uuid.UUID
	err     error
}

func (r *resolver) entry(e *models.ScheduleEntry) Entry {
	r.entryID = e.ID
	group, hour := e.GroupID, e.HourSlotID
	return Entry{
		ID:        e.ID,
		ClassType: e.ClassType,
		Day:       e.Day,
		Group:     fetch(r, "group", catalog.KindGroup, &group, r.cat.GetGroup),
		HourSlot:  fetch(r, "hour_slot", catalog.KindHourSlot, &hour, r.cat.GetHourSlot),
		Primary:   r.assignment("", e.Primary()),
		Secondary: r.assignment("second_", e.Secondary()),
	}
}

func (r *resolver) assignment(prefix string, refs models.SlotRefs) Assignment {
	return Assignment{
		Course:     fetch(r, prefix+"course", catalog.KindCourse, refs.CourseID, r.cat.GetCourse),
		CourseType: refs.CourseType,
		Instructor: fetch(r, prefix+"instructor", catalog.KindInstructor, refs.InstructorID, r.cat.GetInstructor),
		Room:       fetch(r, prefix+"room", catalog.KindRoom, refs.RoomID, r.cat.GetRoom),
		WeekType:   refs.WeekType,
	}
}

func fetch[T any](r *resolver, field string, kind catalog.Kind, id *uuid.UUID, get func(context.Context, uuid.UUID) (*T, error)) *T {
	if r.err != nil || id == nil || *id == uuid.Nil {
		return nil
	}
	record, err := get(r.ctx, *id)
	switch {
	case err == nil:
		return record
	case errors.Is(err, catalog.ErrNotFound) && r.strict:
		r.err = &StaleReferenceError{Field: field, Kind: kind, ID: *id}
	case errors.Is(err, catalog.ErrNotFound):
		log.Printf("⚠️ Entry %s: %s %s no longer exists, ignoring it", r.entryID, kind, *id)
	default:
		r.err = err
	}
	return nil
}
