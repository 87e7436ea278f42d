package topology

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// HUC8Len is the length of a valid boundary query prefix.
const HUC8Len = 8

// ErrInvalidPrefix is returned when a boundary query prefix is not exactly
// eight characters. Check with errors.Is.
var ErrInvalidPrefix = eris.New("topology: boundary prefix must be exactly 8 characters")

// ContributingArea computes, for every external inflow point of the given
// HUC8 boundary, the total upstream contributing area and the set of unit
// ids it covers.
//
// A unit is an external inflow when its ToHUC starts with the prefix but its
// own id does not. Results are keyed by the internal destination unit the
// flow enters; multiple external units draining into the same destination
// are merged into one entry. The destination's own area is never counted.
//
// A prefix matching no units returns an empty map, not an error.
func (s *Store) ContributingArea(prefix string) (map[string]Contribution, error) {
	if len(prefix) != HUC8Len {
		return nil, eris.Wrapf(ErrInvalidPrefix, "prefix %q (%d characters)", prefix, len(prefix))
	}

	// Boundary-crossing edge detection: group external inflow units by the
	// destination unit receiving the flow.
	inflows := make(map[string][]string)
	for id, u := range s.units {
		if strings.HasPrefix(u.ToHUC, prefix) && !strings.HasPrefix(id, prefix) {
			inflows[u.ToHUC] = append(inflows[u.ToHUC], id)
		}
	}

	results := make(map[string]Contribution, len(inflows))
	for dest, seeds := range inflows {
		results[dest] = s.accumulate(dest, seeds)
	}

	zap.L().Debug("topology: contributing area resolved",
		zap.String("prefix", prefix),
		zap.Int("destinations", len(results)),
	)

	return results, nil
}

// accumulate walks the reverse index upstream from the seed units with an
// explicit work list. The visited set guards against both confluences
// (a unit reachable by two paths counts once) and cycles in untrusted data.
// Seeds are sorted so the float accumulation order, and therefore the exact
// result, is identical across repeated queries.
func (s *Store) accumulate(dest string, seeds []string) Contribution {
	visited := make(map[string]bool)
	stack := append([]string(nil), seeds...)
	sort.Strings(stack)

	var area float64
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[id] {
			continue
		}
		visited[id] = true

		area += s.units[id].AreaSqKm
		for _, up := range s.upstream[id] {
			if !visited[up] {
				stack = append(stack, up)
			}
		}
	}

	ids := make([]string, 0, len(visited))
	for id := range visited {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return Contribution{Destination: dest, AreaSqKm: area, Units: ids}
}
