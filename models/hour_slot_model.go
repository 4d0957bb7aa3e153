package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrHourSlotOrder = errors.New("hour slot start time must be before end time")

type HourSlot struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	StartTime datatypes.Time `gorm:"not null;index" json:"start_time"`
	EndTime   datatypes.Time `gorm:"not null" json:"end_time"`
	CreatedAt time.Time      `json:"-"`
	UpdatedAt time.Time      `json:"-"`
}

func (h *HourSlot) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return h.Validate()
}

// Validate enforces start < end.
func (h HourSlot) Validate() error {
	if h.StartTime >= h.EndTime {
		return ErrHourSlotOrder
	}
	return nil
}

func (h HourSlot) String() string {
	return fmt.Sprintf("%s - %s", h.StartTime, h.EndTime)
}
