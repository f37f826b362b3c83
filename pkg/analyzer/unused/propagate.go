package unused

import (
	"context"
	"strings"
)

// Propagate grows the seen set of reg to a fixed point.
//
// Each sweep first runs method discovery: an unseen method whose owning
// class is seen becomes seen when name+"(" starts inside the body of a
// method that was seen when the sweep began. Class discovery follows: an
// unseen class becomes seen when "new "+name starts inside the body of any
// currently seen method, and a comparator-like class immediately marks all
// of its methods seen. Sweeps repeat until one changes nothing.
//
// Matching is plain substring search; a call pattern may match inside a
// longer identifier.
func Propagate(ctx context.Context, working string, reg *Registry) ([]Sweep, error) {
	var sweeps []Sweep
	// Every productive sweep marks at least one entity, so this bound is
	// never reached by a correct loop.
	maxSweeps := reg.Len() + 1

	for n := 1; n <= maxSweeps; n++ {
		if err := ctx.Err(); err != nil {
			return sweeps, err
		}

		changed := discoverMethods(working, reg)
		if discoverClasses(working, reg) {
			changed = true
		}

		seenClasses, seenMethods := reg.SeenCount()
		sweeps = append(sweeps, Sweep{
			Index:       n,
			SeenClasses: seenClasses,
			SeenMethods: seenMethods,
			Changed:     changed,
		})
		if !changed {
			break
		}
	}
	return sweeps, nil
}

func discoverMethods(working string, reg *Registry) bool {
	callers := reg.SeenMethods()
	methods := reg.Methods()
	changed := false

	for _, m := range methods {
		if reg.MethodSeen(m.ID) || !reg.ClassNameSeen(m.Class) {
			continue
		}
		pattern := m.Name + "("
		for _, id := range callers {
			caller := methods[id]
			if occursIn(working, pattern, caller.Start, caller.End) {
				reg.MarkMethod(m.ID)
				changed = true
				break
			}
		}
	}
	return changed
}

func discoverClasses(working string, reg *Registry) bool {
	methods := reg.Methods()
	changed := false

	for _, c := range reg.Classes() {
		if reg.ClassSeen(c.ID) {
			continue
		}
		pattern := "new " + c.Name
		for _, id := range reg.SeenMethods() {
			caller := methods[id]
			if !occursIn(working, pattern, caller.Start, caller.End) {
				continue
			}
			reg.MarkClass(c.ID)
			changed = true
			if c.Comparator {
				for _, m := range methods {
					if m.Class == c.Name {
						reg.MarkMethod(m.ID)
					}
				}
			}
			break
		}
	}
	return changed
}

// occursIn reports whether pattern starts at some offset in [start, end].
// The match itself may extend past end.
func occursIn(buf, pattern string, start, end int) bool {
	if start < 0 {
		start = 0
	}
	if start >= len(buf) || start > end {
		return false
	}
	idx := strings.Index(buf[start:], pattern)
	return idx >= 0 && start+idx <= end
}
