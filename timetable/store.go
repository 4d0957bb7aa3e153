package timetable

import (
	"context"
	"errors"
	"log"
	"slices"

	"github.com/anjiri1684/timetable/catalog"
	"github.com/anjiri1684/timetable/models"
	"github.com/google/uuid"
)

type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Event describes an accepted change. Years lists the academic years of
// the entry's courses so subscribers can filter without a catalog.
type Event struct {
	Action Action               `json:"action"`
	Entry  models.ScheduleEntry `json:"entry"`
	Years  []int                `json:"years"`
}

// Notifier receives accepted changes after they are committed. Notify must
// not block.
type Notifier interface {
	Notify(Event)
}

type Option func(*Store)

func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

// Store holds accepted entries. Every insert and update runs the Validator
// against the entry's peers while holding the lock of its day and hour slot,
// so two writers can never both pass against a peer set missing the other.
// Writes to different slots run in parallel. A Repository that implements
// SlotLocker extends the same guarantee to writers in other processes.
type Store struct {
	repo      Repository
	catalog   catalog.Catalog
	validator *Validator
	locks     *keyLocks
	notifier  Notifier
}

func NewStore(repo Repository, cat catalog.Catalog, opts ...Option) *Store {
	s := &Store{
		repo:      repo,
		catalog:   cat,
		validator: NewValidator(),
		locks:     newKeyLocks(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Insert validates e against every entry on its day and hour slot and stores
// it under a new id. On success e carries the stored id and timestamps; on
// failure the store is unchanged.
func (s *Store) Insert(ctx context.Context, e *models.ScheduleEntry) (uuid.UUID, error) {
	candidate := e.Clone()
	candidate.ID = uuid.New()

	unlock := s.locks.lock(keyOf(&candidate))
	defer unlock()

	var resolved Entry
	err := s.withSlotLock(ctx, []Slot{keyOf(&candidate)}, func(ctx context.Context) error {
		var err error
		if resolved, err = s.check(ctx, &candidate); err != nil {
			return err
		}
		return s.repo.Create(ctx, &candidate)
	})
	if err != nil {
		return uuid.Nil, err
	}

	*e = candidate
	s.publish(ActionCreated, candidate, resolved)
	return candidate.ID, nil
}

// Update replaces the entry stored under id. The stored version is left out
// of the peer set, so an entry never conflicts with itself.
func (s *Store) Update(ctx context.Context, id uuid.UUID, e *models.ScheduleEntry) error {
	for {
		current, err := s.repo.Get(ctx, id)
		if err != nil {
			return err
		}

		candidate := e.Clone()
		candidate.ID = id
		candidate.CreatedAt = current.CreatedAt

		retry, resolved, err := s.updateLocked(ctx, current, &candidate)
		if retry {
			continue
		}
		if err != nil {
			return err
		}

		*e = candidate
		s.publish(ActionUpdated, candidate, resolved)
		return nil
	}
}

// updateLocked holds the locks of both the old and the new slot. It asks
// for a retry when a concurrent update moved the entry in the meantime.
func (s *Store) updateLocked(ctx context.Context, current, candidate *models.ScheduleEntry) (bool, Entry, error) {
	keys := []Slot{keyOf(current), keyOf(candidate)}
	unlock := s.locks.lock(keys...)
	defer unlock()

	var (
		retry    bool
		resolved Entry
	)
	err := s.withSlotLock(ctx, keys, func(ctx context.Context) error {
		latest, err := s.repo.Get(ctx, current.ID)
		if err != nil {
			return err
		}
		if keyOf(latest) != keyOf(current) {
			retry = true
			return nil
		}
		if resolved, err = s.check(ctx, candidate); err != nil {
			return err
		}
		return s.repo.Update(ctx, candidate)
	})
	return retry, resolved, err
}

// withSlotLock runs fn under the repository's cross-process slot lock when
// it has one. The in-process key locks are already held.
func (s *Store) withSlotLock(ctx context.Context, keys []Slot, fn func(ctx context.Context) error) error {
	locker, ok := s.repo.(SlotLocker)
	if !ok {
		return fn(ctx)
	}
	return locker.WithSlotLock(ctx, ordered(keys), fn)
}

// Delete removes an entry. Removing an entry can never create a conflict,
// so nothing is validated.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	resolved, err := ResolveStored(ctx, s.catalog, current)
	if err != nil {
		log.Printf("⚠️ Could not resolve deleted entry %s for the change feed: %v", id, err)
	}
	s.publish(ActionDeleted, *current, resolved)
	return nil
}

// Get returns one stored entry.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*models.ScheduleEntry, error) {
	return s.repo.Get(ctx, id)
}

// Query lists stored entries in insertion order.
func (s *Store) Query(ctx context.Context, f Filter) ([]models.ScheduleEntry, error) {
	entries, err := s.repo.Find(ctx, f)
	if err != nil || f.Year == nil {
		return entries, err
	}

	years := map[uuid.UUID]int{}
	out := entries[:0]
	for i := range entries {
		ok, err := s.taughtInYear(ctx, &entries[i], *f.Year, years)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, entries[i])
		}
	}
	return out, nil
}

func (s *Store) taughtInYear(ctx context.Context, e *models.ScheduleEntry, year int, years map[uuid.UUID]int) (bool, error) {
	for _, id := range []*uuid.UUID{e.CourseID, e.SecondCourseID} {
		if id == nil {
			continue
		}
		y, ok := years[*id]
		if !ok {
			course, err := s.catalog.GetCourse(ctx, *id)
			if errors.Is(err, catalog.ErrNotFound) {
				continue
			}
			if err != nil {
				return false, err
			}
			y = course.Year
			years[*id] = y
		}
		if y == year {
			return true, nil
		}
	}
	return false, nil
}

// Validate runs the full check without storing anything. exclude is the id
// of the stored version being edited, or uuid.Nil for a new entry.
func (s *Store) Validate(ctx context.Context, e *models.ScheduleEntry, exclude uuid.UUID) error {
	candidate := e.Clone()
	candidate.ID = exclude
	resolved, err := Resolve(ctx, s.catalog, &candidate)
	if err != nil {
		return err
	}
	peers, err := s.peers(ctx, &candidate)
	if err != nil {
		return err
	}
	return s.validator.Validate(resolved, peers)
}

// ValidateAll is Validate reporting every violation instead of the first.
func (s *Store) ValidateAll(ctx context.Context, e *models.ScheduleEntry, exclude uuid.UUID) ([]*ValidationError, error) {
	candidate := e.Clone()
	candidate.ID = exclude
	resolved, err := Resolve(ctx, s.catalog, &candidate)
	if err != nil {
		return nil, err
	}
	peers, err := s.peers(ctx, &candidate)
	if err != nil {
		return nil, err
	}
	return s.validator.ValidateAll(resolved, peers), nil
}

// check resolves and validates a candidate. Callers hold the slot lock.
func (s *Store) check(ctx context.Context, candidate *models.ScheduleEntry) (Entry, error) {
	resolved, err := Resolve(ctx, s.catalog, candidate)
	if err != nil {
		return Entry{}, err
	}
	peers, err := s.peers(ctx, candidate)
	if err != nil {
		return Entry{}, err
	}
	if err := s.validator.Validate(resolved, peers); err != nil {
		log.Printf("Rejected %s entry on %s: %v", candidate.ClassType, candidate.Day, err)
		return Entry{}, err
	}

	// The catalog is not locked; make sure nothing vanished while we validated.
	if _, err := Resolve(ctx, s.catalog, candidate); err != nil {
		return Entry{}, err
	}
	return resolved, nil
}

// peers returns the resolved entries sharing the candidate's day and hour
// slot, without the candidate's own stored version.
func (s *Store) peers(ctx context.Context, candidate *models.ScheduleEntry) ([]Entry, error) {
	if candidate.Day == "" || candidate.HourSlotID == uuid.Nil {
		return nil, nil
	}
	day, hour := candidate.Day, candidate.HourSlotID
	stored, err := s.repo.Find(ctx, Filter{Day: &day, HourSlotID: &hour})
	if err != nil {
		return nil, err
	}

	peers := make([]Entry, 0, len(stored))
	for i := range stored {
		if candidate.ID != uuid.Nil && stored[i].ID == candidate.ID {
			continue
		}
		p, err := ResolveStored(ctx, s.catalog, &stored[i])
		if err != nil {
			return nil, err
		}
		peers = append(peers, p)
	}
	return peers, nil
}

func (s *Store) publish(action Action, e models.ScheduleEntry, resolved Entry) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(Event{Action: action, Entry: e, Years: resolved.years()})
}

func (e *Entry) years() []int {
	var years []int
	for _, a := range e.assignments() {
		if a.Course != nil && !slices.Contains(years, a.Course.Year) {
			years = append(years, a.Course.Year)
		}
	}
	return years
}
