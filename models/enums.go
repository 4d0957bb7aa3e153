package models

// ClassType describes how many classes a single timetable row carries.
type ClassType string

const (
	ClassSingle         ClassType = "Single Class"
	ClassDual           ClassType = "Dual Class"
	ClassSplitSubgroups ClassType = "Different Subgroups"
)

func (c ClassType) Valid() bool {
	switch c {
	case ClassSingle, ClassDual, ClassSplitSubgroups:
		return true
	}
	return false
}

// Paired reports whether the row carries a second class.
func (c ClassType) Paired() bool {
	return c == ClassDual || c == ClassSplitSubgroups
}

// Day is a weekday name as stored in the timetable.
type Day string

const (
	Monday    Day = "Monday"
	Tuesday   Day = "Tuesday"
	Wednesday Day = "Wednesday"
	Thursday  Day = "Thursday"
	Friday    Day = "Friday"
	Saturday  Day = "Saturday"
	Sunday    Day = "Sunday"
)

// Days lists every Day in calendar order.
func Days() []Day {
	return []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
}

func (d Day) Valid() bool {
	for _, day := range Days() {
		if d == day {
			return true
		}
	}
	return false
}

// WeekType selects the weeks of the semester a class runs in.
type WeekType string

const (
	WeekOdd  WeekType = "Odd Weeks"
	WeekEven WeekType = "Even Weeks"
	WeekAny  WeekType = "Any Week"
)

func (w WeekType) Valid() bool {
	switch w {
	case WeekOdd, WeekEven, WeekAny:
		return true
	}
	return false
}

// Overlaps reports whether two week types can fall on the same real week.
// An unset week type only overlaps another unset one.
func (w WeekType) Overlaps(other WeekType) bool {
	return w == other || w == WeekAny || other == WeekAny
}

type CourseType string

const (
	Lecture    CourseType = "Lecture"
	Laboratory CourseType = "Laboratory"
	Seminar    CourseType = "Seminar"
)

func (c CourseType) Valid() bool {
	switch c {
	case Lecture, Laboratory, Seminar:
		return true
	}
	return false
}
