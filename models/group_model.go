package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Group is the student cohort attending a class.
type Group struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name         string    `gorm:"size:5;not null" json:"name" validate:"required,max=5"`
	StudentCount int       `gorm:"not null" json:"student_count" validate:"gte=0"`
	AssignedYear int       `gorm:"not null;index" json:"assigned_year" validate:"gte=1"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

func (Group) TableName() string { return "student_groups" }

func (g *Group) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

func (g Group) String() string {
	return fmt.Sprintf("%s (%d students, year %d)", g.Name, g.StudentCount, g.AssignedYear)
}
