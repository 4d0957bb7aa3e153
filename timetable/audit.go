package timetable

import (
	"context"
	"errors"

	"github.com/anjiri1684/timetable/models"
)

// Finding is a stored entry that would no longer be accepted.
type Finding struct {
	Entry    models.ScheduleEntry
	Problems []error
}

// Audit re-checks every stored entry against today's catalog. Each entry is
// compared with the peers stored before it, the same set it was accepted
// against, so findings only appear after the catalog changed underneath.
func (s *Store) Audit(ctx context.Context) ([]Finding, error) {
	entries, err := s.repo.Find(ctx, Filter{})
	if err != nil {
		return nil, err
	}

	earlier := map[Slot][]Entry{}
	var findings []Finding
	for i := range entries {
		e := &entries[i]
		key := keyOf(e)

		resolved, err := Resolve(ctx, s.catalog, e)
		var stale *StaleReferenceError
		switch {
		case errors.As(err, &stale):
			findings = append(findings, Finding{Entry: *e, Problems: []error{stale}})
		case err != nil:
			return nil, err
		default:
			if errs := s.validator.ValidateAll(resolved, earlier[key]); len(errs) > 0 {
				f := Finding{Entry: *e}
				for _, ve := range errs {
					f.Problems = append(f.Problems, ve)
				}
				findings = append(findings, f)
			}
		}

		peer, err := ResolveStored(ctx, s.catalog, e)
		if err != nil {
			return nil, err
		}
		earlier[key] = append(earlier[key], peer)
	}
	return findings, nil
}
