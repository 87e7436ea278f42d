package topology

import (
	"github.com/rotisserie/eris"
)

// Store is an immutable drainage topology: a forward map from unit id to
// unit, plus a reverse index from a unit to the units that drain into it.
// Build it once with NewStore; any number of queries may then run against
// it concurrently.
type Store struct {
	units    map[string]DrainageUnit
	upstream map[string][]string
}

// NewStore indexes the given drainage units. Unit ids must be unique.
// A ToHUC that does not resolve to a loaded unit is expected (edge-of-dataset
// truncation) and is not an error.
func NewStore(units []DrainageUnit) (*Store, error) {
	s := &Store{
		units:    make(map[string]DrainageUnit, len(units)),
		upstream: make(map[string][]string),
	}

	for _, u := range units {
		if u.ID == "" {
			return nil, eris.New("topology: drainage unit with empty id")
		}
		if _, dup := s.units[u.ID]; dup {
			return nil, eris.Errorf("topology: duplicate drainage unit id %q", u.ID)
		}
		s.units[u.ID] = u
	}

	for _, u := range units {
		if u.IsSink() {
			continue
		}
		s.upstream[u.ToHUC] = append(s.upstream[u.ToHUC], u.ID)
	}

	return s, nil
}

// Len returns the number of loaded drainage units.
func (s *Store) Len() int {
	return len(s.units)
}

// Unit returns the drainage unit with the given id.
func (s *Store) Unit(id string) (DrainageUnit, bool) {
	u, ok := s.units[id]
	return u, ok
}

// Upstream returns the ids of the units that drain directly into the given
// unit. The returned slice must not be modified.
func (s *Store) Upstream(id string) []string {
	return s.upstream[id]
}
