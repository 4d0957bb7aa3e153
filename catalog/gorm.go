package catalog

import (
	"context"
	"errors"

	"github.com/anjiri1684/timetable/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Gorm reads the catalog tables through gorm.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (g *Gorm) GetInstructor(ctx context.Context, id uuid.UUID) (*models.Instructor, error) {
	return first[models.Instructor](ctx, g.db, id)
}

func (g *Gorm) GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	return first[models.Room](ctx, g.db, id)
}

func (g *Gorm) GetCourse(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	return first[models.Course](ctx, g.db, id)
}

func (g *Gorm) GetGroup(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	return first[models.Group](ctx, g.db, id)
}

func (g *Gorm) GetHourSlot(ctx context.Context, id uuid.UUID) (*models.HourSlot, error) {
	return first[models.HourSlot](ctx, g.db, id)
}

func first[T any](ctx context.Context, db *gorm.DB, id uuid.UUID) (*T, error) {
	var record T
	if err := db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}
