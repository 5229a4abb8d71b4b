package affinity

import (
	"github.com/davidmreed/monitor-affinity/internal/monitor"
)

// Select narrows a monitor snapshot through the criteria in order. Each
// criterion's predicate is evaluated against the current candidate set, ties
// included, and a negated criterion keeps the complement within that set.
// An empty intermediate set is not an error; it simply stays empty.
func Select(monitors []monitor.Monitor, criteria []Criterion) []monitor.Monitor {
	candidates := append([]monitor.Monitor(nil), monitors...)
	for _, c := range criteria {
		matched := match(candidates, c.Kind)
		if c.Negated {
			matched = subtract(candidates, matched)
		}
		candidates = matched
	}
	return candidates
}

// Resolve orders the selected monitors for dispatch: alphabetically by name,
// truncated to a single monitor unless allowMultiple is set. An empty input
// yields zero dispatches, not an error.
func Resolve(candidates []monitor.Monitor, allowMultiple bool) []monitor.Monitor {
	resolved := append([]monitor.Monitor(nil), candidates...)
	monitor.SortByName(resolved)
	if !allowMultiple && len(resolved) > 1 {
		resolved = resolved[:1]
	}
	return resolved
}

func match(candidates []monitor.Monitor, kind Kind) []monitor.Monitor {
	switch kind {
	case Primary:
		return filter(candidates, func(m monitor.Monitor) bool { return m.Primary })
	case Portrait:
		return filter(candidates, func(m monitor.Monitor) bool { return m.Height > m.Width })
	case Landscape:
		return filter(candidates, func(m monitor.Monitor) bool { return m.Width >= m.Height })
	case Largest:
		return extremes(candidates, func(m monitor.Monitor) int { return m.Area() }, false)
	case Smallest:
		return extremes(candidates, func(m monitor.Monitor) int { return m.Area() }, true)
	case Leftmost:
		return extremes(candidates, func(m monitor.Monitor) int { return m.X }, true)
	case Rightmost:
		return extremes(candidates, func(m monitor.Monitor) int { return m.Right() }, false)
	case Topmost:
		return extremes(candidates, func(m monitor.Monitor) int { return m.Y }, true)
	case Bottommost:
		return extremes(candidates, func(m monitor.Monitor) int { return m.Bottom() }, false)
	default:
		return nil
	}
}

func filter(candidates []monitor.Monitor, keep func(monitor.Monitor) bool) []monitor.Monitor {
	var out []monitor.Monitor
	for _, m := range candidates {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}

// extremes keeps every candidate whose key equals the minimum (or maximum)
// key in the set. Equal keys are all kept, so ties survive for a later
// criterion to break.
func extremes(candidates []monitor.Monitor, key func(monitor.Monitor) int, min bool) []monitor.Monitor {
	if len(candidates) == 0 {
		return nil
	}
	best := key(candidates[0])
	for _, m := range candidates[1:] {
		k := key(m)
		if (min && k < best) || (!min && k > best) {
			best = k
		}
	}
	return filter(candidates, func(m monitor.Monitor) bool { return key(m) == best })
}

// subtract returns the candidates not present in exclude, preserving order.
// Monitor names are unique within a snapshot.
func subtract(candidates, exclude []monitor.Monitor) []monitor.Monitor {
	excluded := make(map[string]struct{}, len(exclude))
	for _, m := range exclude {
		excluded[m.Name] = struct{}{}
	}
	return filter(candidates, func(m monitor.Monitor) bool {
		_, ok := excluded[m.Name]
		return !ok
	})
}
