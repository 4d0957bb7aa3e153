package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anjiri1684/timetable/catalog"
	"github.com/anjiri1684/timetable/models"
	"github.com/anjiri1684/timetable/timetable"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const pgForeignKeyViolation = "23503"

type txKey struct{}

// EntryRepository stores schedule entries in the schedule_entries table.
type EntryRepository struct {
	db *gorm.DB
}

func NewEntryRepository(db *gorm.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

// conn returns the transaction WithSlotLock put in ctx, or a plain session.
func (r *EntryRepository) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return r.db.WithContext(ctx)
}

// WithSlotLock runs fn in one transaction. On postgres it first takes a
// transaction-scoped advisory lock per slot, so API instances sharing the
// database serialise their writes to the same day and hour slot.
func (r *EntryRepository) WithSlotLock(ctx context.Context, slots []timetable.Slot, fn func(ctx context.Context) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			for _, s := range slots {
				if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", slotLockName(s)).Error; err != nil {
					return err
				}
			}
		}
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func slotLockName(s timetable.Slot) string {
	return fmt.Sprintf("schedule_entries:%s:%s", s.Day, s.HourSlot)
}

func (r *EntryRepository) Create(ctx context.Context, e *models.ScheduleEntry) error {
	err := r.conn(ctx).Omit(clause.Associations).Create(e).Error
	return translate(err)
}

func (r *EntryRepository) Update(ctx context.Context, e *models.ScheduleEntry) error {
	res := r.conn(ctx).
		Model(e).
		Select("*").
		Omit("id", "created_at", clause.Associations).
		Updates(e)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return &timetable.NotFoundError{ID: e.ID}
	}
	return nil
}

func (r *EntryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.conn(ctx).Delete(&models.ScheduleEntry{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &timetable.NotFoundError{ID: id}
	}
	return nil
}

func (r *EntryRepository) Get(ctx context.Context, id uuid.UUID) (*models.ScheduleEntry, error) {
	var e models.ScheduleEntry
	if err := r.conn(ctx).First(&e, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &timetable.NotFoundError{ID: id}
		}
		return nil, err
	}
	return &e, nil
}

// Find orders by creation time so peers come back in the order they were
// accepted. Filter.Year is left to the store.
func (r *EntryRepository) Find(ctx context.Context, f timetable.Filter) ([]models.ScheduleEntry, error) {
	q := r.conn(ctx).Model(&models.ScheduleEntry{})
	if f.Day != nil {
		q = q.Where("day = ?", *f.Day)
	}
	if f.HourSlotID != nil {
		q = q.Where("hour_slot_id = ?", *f.HourSlotID)
	}
	if f.InstructorID != nil {
		q = q.Where("(instructor_id = ? OR second_instructor_id = ?)", *f.InstructorID, *f.InstructorID)
	}
	if f.RoomID != nil {
		q = q.Where("(room_id = ? OR second_room_id = ?)", *f.RoomID, *f.RoomID)
	}
	if f.WeekType != nil {
		q = q.Where("(week_type = ? OR second_week_type = ?)", *f.WeekType, *f.WeekType)
	}
	if f.CourseType != nil {
		q = q.Where("(course_type = ? OR second_course_type = ?)", *f.CourseType, *f.CourseType)
	}

	var entries []models.ScheduleEntry
	if err := q.Order("created_at, id").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

var constraintKinds = map[string]catalog.Kind{
	"group":             catalog.KindGroup,
	"hour_slot":         catalog.KindHourSlot,
	"course":            catalog.KindCourse,
	"instructor":        catalog.KindInstructor,
	"room":              catalog.KindRoom,
	"second_course":     catalog.KindCourse,
	"second_instructor": catalog.KindInstructor,
	"second_room":       catalog.KindRoom,
}

// translate turns a foreign key violation into a StaleReferenceError. The
// constraint names follow gorm's fk_<table>_<relation> scheme.
func translate(err error) error {
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation:
		field := strings.TrimPrefix(pgErr.ConstraintName, "fk_schedule_entries_")
		return &timetable.StaleReferenceError{Field: field, Kind: constraintKinds[field]}
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return &timetable.StaleReferenceError{Field: "entry"}
	}
	return err
}
