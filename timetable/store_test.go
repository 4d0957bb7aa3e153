package timetable

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/anjiri1684/timetable/catalog"
	"github.com/anjiri1684/timetable/models"
	"github.com/google/uuid"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Notify(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func newStore(t *testing.T, opts ...Option) (*fixture, *Store) {
	t.Helper()
	f := newFixture(t)
	return f, NewStore(NewMemoryRepository(), f.cat, opts...)
}

func mustInsert(t *testing.T, s *Store, e models.ScheduleEntry) uuid.UUID {
	t.Helper()
	id, err := s.Insert(context.Background(), &e)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	return id
}

func count(t *testing.T, s *Store, f Filter) int {
	t.Helper()
	entries, err := s.Query(context.Background(), f)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	return len(entries)
}

func TestStoreInsert(t *testing.T) {
	ctx := context.Background()
	f, s := newStore(t)

	e := f.single(f.g1, f.algebra, f.i1, f.big, models.WeekAny)
	id, err := s.Insert(ctx, &e)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if id == uuid.Nil || e.ID != id {
		t.Fatalf("expected entry to carry the new id, got %s and %s", id, e.ID)
	}

	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.GroupID != f.g1.ID || *got.RoomID != f.big.ID {
		t.Errorf("stored entry differs from the inserted one: %+v", got)
	}
}

func TestStoreRoomTooSmallLeavesStoreUnchanged(t *testing.T) {
	f, s := newStore(t)

	e := f.single(f.g1, f.algebra, f.i1, f.small, models.WeekAny)
	_, err := s.Insert(context.Background(), &e)
	ve := assertKind(t, err, ErrRoomTooSmall)
	if ve.Room.Name != "R1" || ve.Group.Name != "G1" {
		t.Errorf("expected R1 and G1, got %s and %s", ve.Room.Name, ve.Group.Name)
	}
	if e.ID != uuid.Nil {
		t.Errorf("rejected entry should not receive an id, got %s", e.ID)
	}
	if n := count(t, s, Filter{}); n != 0 {
		t.Fatalf("expected empty store, got %d entries", n)
	}
}

func TestStoreCourseOverlapAcrossGroups(t *testing.T) {
	ctx := context.Background()
	f, s := newStore(t)

	first := mustInsert(t, s, f.single(f.g1, f.algebra, f.i1, f.big, models.WeekAny))

	e := f.single(f.g2, f.logic, f.i2, f.lab, models.WeekAny)
	_, err := s.Insert(ctx, &e)
	ve := assertKind(t, err, ErrCourseOverlap)
	if ve.PeerID != first {
		t.Errorf("expected collision with %s, got %s", first, ve.PeerID)
	}

	e = f.single(f.g2, f.logic, f.i2, f.lab, models.WeekAny)
	e.Day = models.Tuesday
	mustInsert(t, s, e)

	if n := count(t, s, Filter{}); n != 2 {
		t.Fatalf("expected 2 entries, got %d", n)
	}
}

func TestStoreDualWeekConflict(t *testing.T) {
	f, s := newStore(t)
	e := f.dual(models.WeekAny, models.WeekAny)
	_, err := s.Insert(context.Background(), &e)
	assertKind(t, err, ErrDualWeekConflict)
}

func TestStoreStaleReference(t *testing.T) {
	f, s := newStore(t)

	e := f.single(f.g1, f.algebra, f.i1, f.big, models.WeekAny)
	e.SecondCourseID = ref(uuid.New())
	_, err := s.Insert(context.Background(), &e)
	if !errors.Is(err, ErrStaleReference) {
		t.Fatalf("expected stale reference, got %v", err)
	}
	var stale *StaleReferenceError
	if !errors.As(err, &stale) || stale.Field != "second_course" {
		t.Fatalf("expected second_course to be reported, got %v", err)
	}
}

// vanishingRoom drops its room from the catalog right after the first
// lookup, the way a concurrent catalog delete would.
type vanishingRoom struct {
	*catalog.Memory
	once sync.Once
}

func (v *vanishingRoom) GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	room, err := v.Memory.GetRoom(ctx, id)
	v.once.Do(func() { v.Memory.Remove(id) })
	return room, err
}

func TestStoreStaleReferenceBeforeCommit(t *testing.T) {
	f := newFixture(t)
	s := NewStore(NewMemoryRepository(), &vanishingRoom{Memory: f.cat})

	e := f.single(f.g1, f.algebra, f.i1, f.big, models.WeekAny)
	_, err := s.Insert(context.Background(), &e)
	if !errors.Is(err, ErrStaleReference) {
		t.Fatalf("expected stale reference, got %v", err)
	}
	var stale *StaleReferenceError
	if !errors.As(err, &stale) || stale.Field != "room" || stale.ID != f.big.ID {
		t.Errorf("expected room %s to be reported, got %v", f.big.ID, err)
	}
	if n := count(t, s, Filter{}); n != 0 {
		t.Fatalf("expected empty store, got %d entries", n)
	}
}

func TestStoreUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("entry does not conflict with itself", func(t *testing.T) {
		f, s := newStore(t)
		id := mustInsert(t, s, f.single(f.g1, f.algebra, f.i1, f.big, models.WeekAny))

		e := f.single(f.g1, f.algebra, f.i1, f.big, models.WeekAny)
		e.CourseType = models.Seminar
		if err := s.Update(ctx, id, &e); err != nil {
			t.Fatalf("update: %v", err)
		}
		got, _ := s.Get(ctx, id)
		if got.CourseType != models.Seminar {
			t.Errorf("expected Seminar, got %s", got.CourseType)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		f, s := newStore(t)
		e := f.single(f.g1, f.algebra, f.i1, f.big, models.WeekAny)
		if err := s.Update(ctx, uuid.New(), &e); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("rejected update keeps the stored version", func(t *testing.T) {
		f, s := newStore(t)
		mustInsert(t, s, f.single(f.g1, f.algebra, f.i1, f.big, models.WeekAny))
		id := mustInsert(t, s, f.single(f.g3, f.physics, f.i2, f.lab, models.WeekAny))

		e := f.single(f.g3, f.physics, f.i1, f.lab, models.WeekAny)
		assertKind(t, s.Update(ctx, id, &e), ErrInstructorConflict)

		got, _ := s.Get(ctx, id)
		if *got.InstructorID != f.i2.ID {
			t.Errorf("stored entry changed after a rejected update")
		}
	})

	t.Run("move to another slot", func(t *testing.T) {
		f, s := newStore(t)
		id := mustInsert(t, s, f.single(f.g1, f.algebra, f.i1, f.big, models.WeekAny))
		mustInsert(t, s, func() models.ScheduleEntry {
			e := f.single(f.g2, f.logic, f.i2, f.lab, models.WeekAny)
			e.HourSlotID = f.ten.ID
			return e
		}())

		// the ten o'clock slot already has a year-1 course in any week
		e := f.single(f.g1, f.algebra, f.i1, f.big, models.WeekAny)
		e.HourSlotID = f.ten.ID
		assertKind(t, s.Update(ctx, id, &e), ErrCourseOverlap)

		e = f.single(f.g1, f.algebra, f.i1, f.big, models.WeekAny)
		e.Day = models.Friday
		if err := s.Update(ctx, id, &e); err != nil {
			t.Fatalf("update: %v", err)
		}
		friday := models.Friday
		if n := count(t, s, Filter{Day: &friday}); n != 1 {
			t.Errorf("expected the entry on Friday, got %d", n)
		}
	})
}

func TestStoreDelete(t *testing.T) {
	ctx := context.Background()
	f, s := newStore(t)
	id := mustInsert(t, s, f.single(f.g1, f.algebra, f.i1, f.big, models.WeekAny))

	if err := s.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}

	// the slot is free again
	mustInsert(t, s, f.single(f.g2, f.logic, f.i2, f.lab, models.WeekAny))
}

func TestStoreQueryFilters(t *testing.T) {
	f, s := newStore(t)
	mustInsert(t, s, f.single(f.g1, f.algebra, f.i1, f.big, models.WeekOdd))
	mustInsert(t, s, f.single(f.g3, f.physics, f.i2, f.lab, models.WeekAny))
	dual := f.dual(models.WeekOdd, models.WeekEven)
	dual.GroupID = f.g2.ID
	dual.Day = models.Wednesday
	mustInsert(t, s, dual)

	year1, year2 := 1, 2
	even := models.WeekEven
	seminar := models.Seminar
	monday := models.Monday
	ten := f.ten.ID

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"all", Filter{}, 3},
		{"year 1", Filter{Year: &year1}, 2},
		{"year 2", Filter{Year: &year2}, 1},
		{"day", Filter{Day: &monday}, 2},
		{"empty hour slot", Filter{HourSlotID: &ten}, 0},
		{"instructor in second class", Filter{InstructorID: ref(f.i2.ID)}, 2},
		{"room in second class", Filter{RoomID: ref(f.lab.ID)}, 2},
		{"week type", Filter{WeekType: &even}, 1},
		{"course type", Filter{CourseType: &seminar}, 1},
		{"combined", Filter{Day: &monday, Year: &year1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if n := count(t, s, tt.filter); n != tt.want {
				t.Errorf("expected %d entries, got %d", tt.want, n)
			}
		})
	}
}

func TestStoreQueryKeepsInsertionOrder(t *testing.T) {
	f, s := newStore(t)
	var ids []uuid.UUID
	for _, d := range models.Days() {
		e := f.single(f.g1, f.algebra, f.i1, f.big, models.WeekAny)
		e.Day = d
		ids = append(ids, mustInsert(t, s, e))
	}

	entries, err := s.Query(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	for i, e := range entries {
		if e.ID != ids[i] {
			t.Fatalf("entry %d: expected %s, got %s", i, ids[i], e.ID)
		}
	}
}

func TestStoreConcurrentInsertsOnOneSlot(t *testing.T) {
	f, s := newStore(t)

	const writers = 16
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		overlaps int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e := f.single(f.g1, f.algebra, f.i1, f.big, models.WeekAny)
			_, err := s.Insert(context.Background(), &e)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				accepted++
			case errors.Is(err, ErrCourseOverlap):
				overlaps++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if accepted != 1 || overlaps != writers-1 {
		t.Fatalf("expected 1 accepted and %d overlaps, got %d and %d", writers-1, accepted, overlaps)
	}
	if n := count(t, s, Filter{}); n != 1 {
		t.Fatalf("expected 1 stored entry, got %d", n)
	}
}

func TestStoreConcurrentInsertsOnDisjointSlots(t *testing.T) {
	f, s := newStore(t)

	var wg sync.WaitGroup
	errs := make(chan error, len(models.Days())*2)
	for _, d := range models.Days() {
		for _, h := range []uuid.UUID{f.nine.ID, f.ten.ID} {
			wg.Add(1)
			go func(d models.Day, h uuid.UUID) {
				defer wg.Done()
				e := f.single(f.g1, f.algebra, f.i1, f.big, models.WeekAny)
				e.Day, e.HourSlotID = d, h
				_, err := s.Insert(context.Background(), &e)
				errs <- err
			}(d, h)
		}
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("insert on a free slot failed: %v", err)
		}
	}
	if n := count(t, s, Filter{}); n != len(models.Days())*2 {
		t.Fatalf("expected %d entries, got %d", len(models.Days())*2, n)
	}
	if n := s.locks.size(); n != 0 {
		t.Errorf("expected all slot locks released, %d left", n)
	}
}

func TestStoreValidateDryRun(t *testing.T) {
	ctx := context.Background()
	f, s := newStore(t)
	id := mustInsert(t, s, f.single(f.g1, f.algebra, f.i1, f.big, models.WeekAny))

	e := f.single(f.g2, f.logic, f.i2, f.lab, models.WeekAny)
	assertKind(t, s.Validate(ctx, &e, uuid.Nil), ErrCourseOverlap)

	// validating the stored entry as an edit of itself passes
	self := f.single(f.g1, f.algebra, f.i1, f.big, models.WeekAny)
	assertValid(t, s.Validate(ctx, &self, id))

	bad := f.single(f.g1, f.physics, f.i2, f.small, models.WeekAny)
	errs, err := s.ValidateAll(ctx, &bad, uuid.Nil)
	if err != nil {
		t.Fatalf("validate all: %v", err)
	}
	if len(errs) != 2 {
		t.Fatalf("expected room and year violations, got %v", errs)
	}
	if n := count(t, s, Filter{}); n != 1 {
		t.Errorf("validation must not store anything, got %d entries", n)
	}
}

func TestStoreNotifies(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	f, s := newStore(t, WithNotifier(rec))

	id := mustInsert(t, s, f.single(f.g1, f.algebra, f.i1, f.big, models.WeekAny))
	bad := f.single(f.g1, f.algebra, f.i1, f.small, models.WeekAny)
	if _, err := s.Insert(ctx, &bad); err == nil {
		t.Fatal("expected rejection")
	}
	e := f.dual(models.WeekOdd, models.WeekEven)
	if err := s.Update(ctx, id, &e); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := s.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}

	want := []Action{ActionCreated, ActionUpdated, ActionDeleted}
	if len(rec.events) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(rec.events))
	}
	for i, a := range want {
		ev := rec.events[i]
		if ev.Action != a || ev.Entry.ID != id {
			t.Errorf("event %d: expected %s of %s, got %s of %s", i, a, id, ev.Action, ev.Entry.ID)
		}
		if len(ev.Years) != 1 || ev.Years[0] != 1 {
			t.Errorf("event %d: expected years [1], got %v", i, ev.Years)
		}
	}
}

func TestStoreAudit(t *testing.T) {
	ctx := context.Background()

	t.Run("clean timetable", func(t *testing.T) {
		f, s := newStore(t)
		mustInsert(t, s, f.single(f.g1, f.algebra, f.i1, f.big, models.WeekAny))
		findings, err := s.Audit(ctx)
		if err != nil {
			t.Fatalf("audit: %v", err)
		}
		if len(findings) != 0 {
			t.Fatalf("expected no findings, got %v", findings)
		}
	})

	t.Run("room shrank", func(t *testing.T) {
		f, s := newStore(t)
		id := mustInsert(t, s, f.single(f.g1, f.algebra, f.i1, f.big, models.WeekAny))
		f.cat.PutRoom(models.Room{ID: f.big.ID, Name: f.big.Name, Capacity: 10})

		findings, err := s.Audit(ctx)
		if err != nil {
			t.Fatalf("audit: %v", err)
		}
		if len(findings) != 1 || findings[0].Entry.ID != id {
			t.Fatalf("expected one finding for %s, got %v", id, findings)
		}
		if !errors.Is(findings[0].Problems[0], ErrRoomTooSmall) {
			t.Errorf("expected room too small, got %v", findings[0].Problems)
		}
	})

	t.Run("course removed", func(t *testing.T) {
		f, s := newStore(t)
		mustInsert(t, s, f.single(f.g1, f.algebra, f.i1, f.big, models.WeekAny))
		f.cat.Remove(f.algebra.ID)

		findings, err := s.Audit(ctx)
		if err != nil {
			t.Fatalf("audit: %v", err)
		}
		if len(findings) != 1 || !errors.Is(findings[0].Problems[0], ErrStaleReference) {
			t.Fatalf("expected a stale reference finding, got %v", findings)
		}
	})
}

// lockingRepository records the slots the store asks it to hold.
type lockingRepository struct {
	*MemoryRepository
	mu    sync.Mutex
	calls [][]Slot
}

func (r *lockingRepository) WithSlotLock(ctx context.Context, slots []Slot, fn func(ctx context.Context) error) error {
	r.mu.Lock()
	r.calls = append(r.calls, slots)
	r.mu.Unlock()
	return fn(ctx)
}

func TestStoreTakesRepositorySlotLock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	repo := &lockingRepository{MemoryRepository: NewMemoryRepository()}
	s := NewStore(repo, f.cat)

	id := mustInsert(t, s, f.single(f.g1, f.algebra, f.i1, f.big, models.WeekAny))

	rejected := f.single(f.g2, f.logic, f.i2, f.lab, models.WeekAny)
	_, err := s.Insert(ctx, &rejected)
	assertKind(t, err, ErrCourseOverlap)

	moved := f.single(f.g1, f.algebra, f.i1, f.big, models.WeekAny)
	moved.HourSlotID = f.ten.ID
	if err := s.Update(ctx, id, &moved); err != nil {
		t.Fatalf("update: %v", err)
	}

	if len(repo.calls) != 3 {
		t.Fatalf("expected 3 locked writes, got %d", len(repo.calls))
	}
	nine := Slot{Day: models.Monday, HourSlot: f.nine.ID}
	if got := repo.calls[0]; len(got) != 1 || got[0] != nine {
		t.Errorf("insert locked %v, expected %v", got, nine)
	}
	if got := repo.calls[2]; len(got) != 2 || !got[0].less(got[1]) {
		t.Errorf("update must lock both slots in order, got %v", got)
	}
	if n := count(t, s, Filter{}); n != 1 {
		t.Fatalf("expected 1 entry, got %d", n)
	}
}
