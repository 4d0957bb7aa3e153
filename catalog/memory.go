package catalog

import (
	"context"
	"sync"

	"github.com/anjiri1684/timetable/models"
	"github.com/google/uuid"
)

// Memory is a Catalog kept in process memory. Lookups hand out copies.
type Memory struct {
	mu          sync.RWMutex
	instructors map[uuid.UUID]models.Instructor
	rooms       map[uuid.UUID]models.Room
	courses     map[uuid.UUID]models.Course
	groups      map[uuid.UUID]models.Group
	hourSlots   map[uuid.UUID]models.HourSlot
}

func NewMemory() *Memory {
	return &Memory{
		instructors: map[uuid.UUID]models.Instructor{},
		rooms:       map[uuid.UUID]models.Room{},
		courses:     map[uuid.UUID]models.Course{},
		groups:      map[uuid.UUID]models.Group{},
		hourSlots:   map[uuid.UUID]models.HourSlot{},
	}
}

func (m *Memory) PutInstructor(v models.Instructor) models.Instructor {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	m.instructors[v.ID] = v
	return v
}

func (m *Memory) PutRoom(v models.Room) models.Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	m.rooms[v.ID] = v
	return v
}

func (m *Memory) PutCourse(v models.Course) models.Course {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	m.courses[v.ID] = v
	return v
}

func (m *Memory) PutGroup(v models.Group) models.Group {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	m.groups[v.ID] = v
	return v
}

func (m *Memory) PutHourSlot(v models.HourSlot) (models.HourSlot, error) {
	if err := v.Validate(); err != nil {
		return v, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	m.hourSlots[v.ID] = v
	return v, nil
}

// Remove drops id from whichever collection holds it.
func (m *Memory) Remove(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.instructors, id)
	delete(m.rooms, id)
	delete(m.courses, id)
	delete(m.groups, id)
	delete(m.hourSlots, id)
}

func (m *Memory) GetInstructor(_ context.Context, id uuid.UUID) (*models.Instructor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return lookup(m.instructors, id)
}

func (m *Memory) GetRoom(_ context.Context, id uuid.UUID) (*models.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return lookup(m.rooms, id)
}

func (m *Memory) GetCourse(_ context.Context, id uuid.UUID) (*models.Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return lookup(m.courses, id)
}

func (m *Memory) GetGroup(_ context.Context, id uuid.UUID) (*models.Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return lookup(m.groups, id)
}

func (m *Memory) GetHourSlot(_ context.Context, id uuid.UUID) (*models.HourSlot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return lookup(m.hourSlots, id)
}

func lookup[T any](records map[uuid.UUID]T, id uuid.UUID) (*T, error) {
	v, ok := records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &v, nil
}
