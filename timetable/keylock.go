package timetable

import (
	"sort"
	"sync"

	"github.com/anjiri1684/timetable/models"
	"github.com/google/uuid"
)

// Slot is the unit of serialisation: every write touching the same day
// and hour slot runs one at a time.
type Slot struct {
	Day      models.Day
	HourSlot uuid.UUID
}

func keyOf(e *models.ScheduleEntry) Slot {
	return Slot{Day: e.Day, HourSlot: e.HourSlotID}
}

func (k Slot) less(o Slot) bool {
	if k.Day != o.Day {
		return k.Day < o.Day
	}
	return k.HourSlot.String() < o.HourSlot.String()
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// keyLocks hands out one mutex per slot key and forgets it once nobody
// holds or waits for it.
type keyLocks struct {
	mu    sync.Mutex
	locks map[Slot]*keyLock
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: map[Slot]*keyLock{}}
}

// lock acquires every distinct key in a fixed order and returns the
// matching unlock.
func (l *keyLocks) lock(keys ...Slot) (unlock func()) {
	keys = ordered(keys)

	held := make([]*keyLock, 0, len(keys))
	for _, k := range keys {
		kl := l.acquire(k)
		kl.mu.Lock()
		held = append(held, kl)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].mu.Unlock()
			l.release(keys[i])
		}
	}
}

func (l *keyLocks) acquire(k Slot) *keyLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl, ok := l.locks[k]
	if !ok {
		kl = &keyLock{}
		l.locks[k] = kl
	}
	kl.refs++
	return kl
}

func (l *keyLocks) release(k Slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl := l.locks[k]
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, k)
	}
}

func (l *keyLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

// ordered deduplicates keys and sorts them into the one order every
// multi-slot lock is taken in.
func ordered(keys []Slot) []Slot {
	keys = distinct(keys)
	sort.Slice(keys, func(i, j int) bool { return keys[i].less(keys[j]) })
	return keys
}

func distinct(keys []Slot) []Slot {
	out := make([]Slot, 0, len(keys))
	seen := make(map[Slot]bool, len(keys))
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}
