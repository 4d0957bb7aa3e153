package timetable

import (
	"context"
	"testing"

	"github.com/anjiri1684/timetable/catalog"
	"github.com/anjiri1684/timetable/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// fixture is a small faculty: two year-1 groups, one year-2 group, rooms
// of 15 and 30 seats, and courses for both years.
type fixture struct {
	cat *catalog.Memory

	g1, g2, g3      models.Group
	small, big, lab models.Room
	algebra, logic  models.Course
	physics         models.Course
	i1, i2          models.Instructor
	nine, ten       models.HourSlot
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cat := catalog.NewMemory()
	f := &fixture{cat: cat}

	f.g1 = cat.PutGroup(models.Group{Name: "G1", StudentCount: 20, AssignedYear: 1})
	f.g2 = cat.PutGroup(models.Group{Name: "G2", StudentCount: 25, AssignedYear: 1})
	f.g3 = cat.PutGroup(models.Group{Name: "G3", StudentCount: 18, AssignedYear: 2})

	f.small = cat.PutRoom(models.Room{Name: "R1", Capacity: 15})
	f.big = cat.PutRoom(models.Room{Name: "R2", Capacity: 30})
	f.lab = cat.PutRoom(models.Room{Name: "Lab", Capacity: 40})

	f.algebra = cat.PutCourse(models.Course{Name: "Algebra", Year: 1})
	f.logic = cat.PutCourse(models.Course{Name: "Logic", Year: 1})
	f.physics = cat.PutCourse(models.Course{Name: "Physics", Year: 2})

	f.i1 = cat.PutInstructor(models.Instructor{Name: "Ionescu"})
	f.i2 = cat.PutInstructor(models.Instructor{Name: "Popescu"})

	var err error
	if f.nine, err = cat.PutHourSlot(models.HourSlot{StartTime: datatypes.NewTime(9, 0, 0, 0), EndTime: datatypes.NewTime(10, 0, 0, 0)}); err != nil {
		t.Fatalf("hour slot: %v", err)
	}
	if f.ten, err = cat.PutHourSlot(models.HourSlot{StartTime: datatypes.NewTime(10, 0, 0, 0), EndTime: datatypes.NewTime(11, 0, 0, 0)}); err != nil {
		t.Fatalf("hour slot: %v", err)
	}
	return f
}

func ref(id uuid.UUID) *uuid.UUID { return &id }

// single is a complete Single Class entry for group g on Monday at nine.
func (f *fixture) single(g models.Group, c models.Course, i models.Instructor, r models.Room, w models.WeekType) models.ScheduleEntry {
	return models.ScheduleEntry{
		ClassType:    models.ClassSingle,
		GroupID:      g.ID,
		Day:          models.Monday,
		HourSlotID:   f.nine.ID,
		CourseID:     ref(c.ID),
		CourseType:   models.Lecture,
		InstructorID: ref(i.ID),
		RoomID:       ref(r.ID),
		WeekType:     w,
	}
}

// dual is a complete Dual Class entry for G1 on Monday at nine.
func (f *fixture) dual(first, second models.WeekType) models.ScheduleEntry {
	e := f.single(f.g1, f.algebra, f.i1, f.big, first)
	e.ClassType = models.ClassDual
	e.SecondCourseID = ref(f.logic.ID)
	e.SecondCourseType = models.Seminar
	e.SecondInstructorID = ref(f.i2.ID)
	e.SecondRoomID = ref(f.lab.ID)
	e.SecondWeekType = second
	return e
}

func (f *fixture) resolved(t *testing.T, e models.ScheduleEntry) Entry {
	t.Helper()
	out, err := Resolve(context.Background(), f.cat, &e)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	return out
}
