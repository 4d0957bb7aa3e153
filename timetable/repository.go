package timetable

import (
	"context"
	"sync"
	"time"

	"github.com/anjiri1684/timetable/models"
	"github.com/google/uuid"
)

// Filter narrows a listing. Nil fields match everything. The instructor,
// room, week type and course type filters match either class of an entry.
type Filter struct {
	Day          *models.Day
	HourSlotID   *uuid.UUID
	Year         *int
	InstructorID *uuid.UUID
	RoomID       *uuid.UUID
	WeekType     *models.WeekType
	CourseType   *models.CourseType
}

// Repository persists accepted entries. It does no validation of its own.
// Find returns entries in insertion order and ignores Filter.Year, which
// needs the catalog and is applied by the Store.
type Repository interface {
	Create(ctx context.Context, e *models.ScheduleEntry) error
	Update(ctx context.Context, e *models.ScheduleEntry) error
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.ScheduleEntry, error)
	Find(ctx context.Context, f Filter) ([]models.ScheduleEntry, error)
}

// SlotLocker is implemented by repositories shared between processes.
// WithSlotLock holds the given slots against writers in every process
// while fn runs, and the repository calls made with fn's context commit
// or roll back together with fn's result. Slots arrive deduplicated and
// in a fixed order.
type SlotLocker interface {
	WithSlotLock(ctx context.Context, slots []Slot, fn func(ctx context.Context) error) error
}

// MemoryRepository keeps entries in a slice, which is also the peer order.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries []models.ScheduleEntry
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Create(_ context.Context, e *models.ScheduleEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	now := time.Now()
	e.CreatedAt, e.UpdatedAt = now, now
	r.entries = append(r.entries, e.Clone())
	return nil
}

func (r *MemoryRepository) Update(_ context.Context, e *models.ScheduleEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(e.ID)
	if i < 0 {
		return &NotFoundError{ID: e.ID}
	}
	e.CreatedAt = r.entries[i].CreatedAt
	e.UpdatedAt = time.Now()
	r.entries[i] = e.Clone()
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(id)
	if i < 0 {
		return &NotFoundError{ID: id}
	}
	r.entries = append(r.entries[:i], r.entries[i+1:]...)
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id uuid.UUID) (*models.ScheduleEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.index(id)
	if i < 0 {
		return nil, &NotFoundError{ID: id}
	}
	e := r.entries[i].Clone()
	return &e, nil
}

func (r *MemoryRepository) Find(_ context.Context, f Filter) ([]models.ScheduleEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.ScheduleEntry
	for i := range r.entries {
		if f.matches(&r.entries[i]) {
			out = append(out, r.entries[i].Clone())
		}
	}
	return out, nil
}

func (r *MemoryRepository) index(id uuid.UUID) int {
	for i := range r.entries {
		if r.entries[i].ID == id {
			return i
		}
	}
	return -1
}

// matches applies every column filter. Year is not a column and is skipped.
func (f Filter) matches(e *models.ScheduleEntry) bool {
	if f.Day != nil && e.Day != *f.Day {
		return false
	}
	if f.HourSlotID != nil && e.HourSlotID != *f.HourSlotID {
		return false
	}
	if f.InstructorID != nil && !idIs(e.InstructorID, *f.InstructorID) && !idIs(e.SecondInstructorID, *f.InstructorID) {
		return false
	}
	if f.RoomID != nil && !idIs(e.RoomID, *f.RoomID) && !idIs(e.SecondRoomID, *f.RoomID) {
		return false
	}
	if f.WeekType != nil && e.WeekType != *f.WeekType && e.SecondWeekType != *f.WeekType {
		return false
	}
	if f.CourseType != nil && e.CourseType != *f.CourseType && e.SecondCourseType != *f.CourseType {
		return false
	}
	return true
}

func idIs(id *uuid.UUID, want uuid.UUID) bool {
	return id != nil && *id == want
}
