package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScheduleEntry is one timetable row. The second_ columns carry the paired
// class of a Dual or Different Subgroups row.
type ScheduleEntry struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ClassType  ClassType `gorm:"size:20;not null;default:'Single Class'" json:"class_type"`
	GroupID    uuid.UUID `gorm:"type:uuid;not null;index" json:"group_id"`
	Day        Day       `gorm:"size:9;not null;index:idx_schedule_entries_slot" json:"day"`
	HourSlotID uuid.UUID `gorm:"type:uuid;not null;index:idx_schedule_entries_slot" json:"hour_slot_id"`

	CourseID     *uuid.UUID `gorm:"type:uuid" json:"course_id"`
	CourseType   CourseType `gorm:"size:10" json:"course_type,omitempty"`
	InstructorID *uuid.UUID `gorm:"type:uuid;index" json:"instructor_id"`
	RoomID       *uuid.UUID `gorm:"type:uuid;index" json:"room_id"`
	WeekType     WeekType   `gorm:"size:10" json:"week_type,omitempty"`

	SecondCourseID     *uuid.UUID `gorm:"type:uuid" json:"second_course_id"`
	SecondCourseType   CourseType `gorm:"size:10" json:"second_course_type,omitempty"`
	SecondInstructorID *uuid.UUID `gorm:"type:uuid;index" json:"second_instructor_id"`
	SecondRoomID       *uuid.UUID `gorm:"type:uuid;index" json:"second_room_id"`
	SecondWeekType     WeekType   `gorm:"size:10" json:"second_week_type,omitempty"`

	Group            *Group      `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
	HourSlot         *HourSlot   `gorm:"foreignKey:HourSlotID;constraint:OnDelete:CASCADE" json:"-"`
	Course           *Course     `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
	Instructor       *Instructor `gorm:"foreignKey:InstructorID;constraint:OnDelete:CASCADE" json:"-"`
	Room             *Room       `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE" json:"-"`
	SecondCourse     *Course     `gorm:"foreignKey:SecondCourseID;constraint:OnDelete:CASCADE" json:"-"`
	SecondInstructor *Instructor `gorm:"foreignKey:SecondInstructorID;constraint:OnDelete:CASCADE" json:"-"`
	SecondRoom       *Room       `gorm:"foreignKey:SecondRoomID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e *ScheduleEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// SlotRefs is the reference half of one class inside an entry.
type SlotRefs struct {
	CourseID     *uuid.UUID
	CourseType   CourseType
	InstructorID *uuid.UUID
	RoomID       *uuid.UUID
	WeekType     WeekType
}

func (e *ScheduleEntry) Primary() SlotRefs {
	return SlotRefs{
		CourseID:     e.CourseID,
		CourseType:   e.CourseType,
		InstructorID: e.InstructorID,
		RoomID:       e.RoomID,
		WeekType:     e.WeekType,
	}
}

func (e *ScheduleEntry) Secondary() SlotRefs {
	return SlotRefs{
		CourseID:     e.SecondCourseID,
		CourseType:   e.SecondCourseType,
		InstructorID: e.SecondInstructorID,
		RoomID:       e.SecondRoomID,
		WeekType:     e.SecondWeekType,
	}
}

// Clone returns a copy that shares no pointers with e.
func (e ScheduleEntry) Clone() ScheduleEntry {
	c := e
	c.CourseID = cloneID(e.CourseID)
	c.InstructorID = cloneID(e.InstructorID)
	c.RoomID = cloneID(e.RoomID)
	c.SecondCourseID = cloneID(e.SecondCourseID)
	c.SecondInstructorID = cloneID(e.SecondInstructorID)
	c.SecondRoomID = cloneID(e.SecondRoomID)
	c.Group, c.HourSlot = nil, nil
	c.Course, c.Instructor, c.Room = nil, nil, nil
	c.SecondCourse, c.SecondInstructor, c.SecondRoom = nil, nil, nil
	return c
}

func cloneID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
