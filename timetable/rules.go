package timetable

import (
	"fmt"
	"strings"

	"github.com/anjiri1684/timetable/models"
)

// emitFunc receives each violation in rule order. It returns false once the
// caller has seen enough, which stops the run.
type emitFunc func(*ValidationError) bool

// A rule reports violations through emit and returns false when emit asked
// it to stop.
type rule struct {
	name  string
	check func(c *Entry, peers []Entry, emit emitFunc) bool
}

// defaultRules is the fixed evaluation order. Callers and tests rely on
// which violation comes first, so do not reorder.
func defaultRules() []rule {
	return []rule{
		{name: "completeness", check: checkCompleteness},
		{name: "capacity", check: checkCapacity},
		{name: "year agreement", check: checkYearAgreement},
		{name: "peer conflicts", check: checkPeers},
		{name: "intra-entry consistency", check: checkIntraEntry},
	}
}

type slotField struct {
	name  string
	label string
	set   func(*Assignment) bool
}

var slotFields = []slotField{
	{name: "course", label: "Course", set: func(a *Assignment) bool { return a.Course != nil }},
	{name: "course_type", label: "Course type", set: func(a *Assignment) bool { return a.CourseType != "" }},
	{name: "instructor", label: "Instructor", set: func(a *Assignment) bool { return a.Instructor != nil }},
	{name: "room", label: "Room", set: func(a *Assignment) bool { return a.Room != nil }},
	{name: "week_type", label: "Week type", set: func(a *Assignment) bool { return a.WeekType != "" }},
}

func checkCompleteness(c *Entry, _ []Entry, emit emitFunc) bool {
	ct := c.ClassType
	missing := func(field, label string) bool {
		return emit(incomplete(field, ct, fmt.Sprintf("%s must be provided for '%s'", label, ct)))
	}

	if c.Group == nil && !missing("group", "Group") {
		return false
	}
	if c.Day == "" && !missing("day", "Day") {
		return false
	}
	if c.HourSlot == nil && !missing("hour_slot", "Hour slot") {
		return false
	}

	switch ct {
	case models.ClassSingle:
		for _, f := range slotFields {
			if !f.set(&c.Primary) && !missing(f.name, f.label) {
				return false
			}
		}
	case models.ClassDual:
		for _, f := range slotFields {
			if !f.set(&c.Primary) && !missing(f.name, f.label) {
				return false
			}
			if !f.set(&c.Secondary) && !missing("second_"+f.name, "Second "+strings.ToLower(f.label)) {
				return false
			}
		}
	case models.ClassSplitSubgroups:
		if c.Primary.Course == nil && c.Secondary.Course == nil {
			msg := fmt.Sprintf("At least one of the course fields (course or second_course) must be filled for '%s'", ct)
			if !emit(incomplete("course", ct, msg)) {
				return false
			}
		}
	default:
		if !emit(incomplete("class_type", ct, fmt.Sprintf("Unknown class type '%s'", ct))) {
			return false
		}
	}

	return checkEnumValues(c, emit)
}

// checkEnumValues rejects populated enum columns holding unknown labels.
func checkEnumValues(c *Entry, emit emitFunc) bool {
	invalid := func(field string, value any) bool {
		return emit(incomplete(field, c.ClassType, fmt.Sprintf("'%v' is not a valid %s", value, strings.ReplaceAll(field, "_", " "))))
	}
	if c.Day != "" && !c.Day.Valid() && !invalid("day", c.Day) {
		return false
	}
	for i, a := range c.assignments() {
		prefix := ""
		if i == 1 {
			prefix = "second_"
		}
		if a.CourseType != "" && !a.CourseType.Valid() && !invalid(prefix+"course_type", a.CourseType) {
			return false
		}
		if a.WeekType != "" && !a.WeekType.Valid() && !invalid(prefix+"week_type", a.WeekType) {
			return false
		}
	}
	return true
}

func checkCapacity(c *Entry, _ []Entry, emit emitFunc) bool {
	if c.Group == nil {
		return true
	}
	for i, a := range c.assignments() {
		if a.Room == nil || c.Group.StudentCount <= a.Room.Capacity {
			continue
		}
		err := &ValidationError{
			Kind:    ErrRoomTooSmall,
			Field:   fieldName(i, "room"),
			Room:    a.Room,
			Group:   c.Group,
			Message: fmt.Sprintf("Room %s is too small for group %s", a.Room, c.Group),
		}
		if !emit(err) {
			return false
		}
	}
	return true
}

func checkYearAgreement(c *Entry, _ []Entry, emit emitFunc) bool {
	if c.Group == nil {
		return true
	}
	for i, a := range c.assignments() {
		if a.Course == nil || a.Course.Year == c.Group.AssignedYear {
			continue
		}
		err := &ValidationError{
			Kind:    ErrYearMismatch,
			Field:   fieldName(i, "course"),
			Group:   c.Group,
			Course:  a.Course,
			Message: fmt.Sprintf("Group %s is not assigned to the same year as course %s", c.Group, a.Course),
		}
		if !emit(err) {
			return false
		}
	}
	return true
}

// checkPeers compares the candidate with every entry already booked on the
// same day and hour slot, in peer order.
//
// Only Single candidates are checked for same-year overlap, and rooms are
// never compared across entries. Both gaps are long-standing behaviour that
// product has not signed off on changing.
func checkPeers(c *Entry, peers []Entry, emit emitFunc) bool {
	for i := range peers {
		p := &peers[i]
		if err := courseOverlap(c, p); err != nil && !emit(err) {
			return false
		}
		for _, err := range instructorConflicts(c, p) {
			if !emit(err) {
				return false
			}
		}
	}
	return true
}

func courseOverlap(c, p *Entry) *ValidationError {
	if c.ClassType != models.ClassSingle {
		return nil
	}
	year, ok := p.activeYear()
	if !ok {
		return nil
	}
	course := c.courseInYear(year)
	if course == nil || c.Primary.WeekType != p.Primary.WeekType {
		return nil
	}
	return &ValidationError{
		Kind:    ErrCourseOverlap,
		Field:   "course",
		Course:  course,
		PeerID:  p.ID,
		Message: fmt.Sprintf("Course %s overlaps with another course on %s (%s) from %s", course, c.Day, c.Primary.WeekType, c.HourSlot),
	}
}

// instructorConflicts flags an instructor teaching two different years in
// the same slot on weeks that can coincide. Each class of the candidate is
// matched against both classes of the peer.
func instructorConflicts(c, p *Entry) []*ValidationError {
	var errs []*ValidationError
	for i, ca := range c.assignments() {
		if ca.Instructor == nil || ca.Course == nil {
			continue
		}
		for _, pa := range p.assignments() {
			if !sameInstructor(ca.Instructor, pa.Instructor) || pa.Course == nil {
				continue
			}
			if ca.Course.Year == pa.Course.Year || !ca.WeekType.Overlaps(pa.WeekType) {
				continue
			}
			errs = append(errs, &ValidationError{
				Kind:       ErrInstructorConflict,
				Field:      fieldName(i, "instructor"),
				Instructor: ca.Instructor,
				Course:     ca.Course,
				PeerID:     p.ID,
				Message: fmt.Sprintf("Instructor %s is already assigned to another course on %s from %s in a different year",
					ca.Instructor, c.Day, c.HourSlot),
			})
		}
	}
	return errs
}

func checkIntraEntry(c *Entry, _ []Entry, emit emitFunc) bool {
	first, second := c.Primary.WeekType, c.Secondary.WeekType
	sameWeek := first == second && (first == models.WeekAny || second == models.WeekAny)

	switch c.ClassType {
	case models.ClassDual:
		if sameWeek {
			return emit(&ValidationError{
				Kind:      ErrDualWeekConflict,
				Field:     "second_week_type",
				ClassType: c.ClassType,
				Message:   "Both classes must be in different weeks",
			})
		}
	case models.ClassSplitSubgroups:
		if sameWeek && sameInstructor(c.Primary.Instructor, c.Secondary.Instructor) {
			err := &ValidationError{
				Kind:       ErrInstructorSelfConflict,
				Field:      "second_instructor",
				ClassType:  c.ClassType,
				Instructor: c.Primary.Instructor,
				Message:    fmt.Sprintf("Instructor %s cannot teach both classes at the same time", c.Primary.Instructor),
			}
			if !emit(err) {
				return false
			}
		}
		if sameWeek && sameRoom(c.Primary.Room, c.Secondary.Room) {
			return emit(&ValidationError{
				Kind:      ErrRoomSelfConflict,
				Field:     "second_room",
				ClassType: c.ClassType,
				Room:      c.Primary.Room,
				Message:   fmt.Sprintf("Room %s cannot be used for both classes at the same time", c.Primary.Room),
			})
		}
	}
	return true
}

func fieldName(slot int, name string) string {
	if slot == 1 {
		return "second_" + name
	}
	return name
}
