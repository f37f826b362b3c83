package unused

import "strings"

// Measure computes the used and total character counts for a registry that
// has been propagated to its fixed point.
func Measure(buf Buffers, reg *Registry, importMarker string) Usage {
	u := Usage{
		FromClasses: usedFromClasses(buf.Working, reg),
		FromMethods: usedFromMethods(buf.Working, reg),
		FromImports: usedFromImports(buf.Working, importMarker),
		Total:       countNonSpace(buf.Original),
	}
	u.Used = u.FromClasses + u.FromMethods + u.FromImports
	if u.Total == 0 {
		// Nothing to measure; an empty submission is fully used.
		u.Fraction = 1
	} else {
		u.Fraction = float64(u.Used) / float64(u.Total)
	}
	return u
}

// Decide applies the two thresholds. Both must trip for a flagged verdict.
func Decide(u Usage, t Thresholds) (Verdict, string) {
	if u.Total == 0 {
		return VerdictPass, ""
	}
	if u.Unused() > t.CodeLimit && u.Fraction < 1-t.CodePercentLimit {
		return VerdictFlagged, InvalidMessage
	}
	return VerdictPass, ""
}

// usedFromClasses counts the bodies of seen classes, excluding every class
// nested inside them and every method they own, so that seen methods are
// only counted once and unseen methods are not counted at all.
func usedFromClasses(working string, reg *Registry) int {
	classes := reg.Classes()
	methods := reg.Methods()
	total := 0

	for _, c := range classes {
		if !reg.ClassSeen(c.ID) {
			continue
		}
		count := countRange(working, c.Start, c.End)
		for _, inner := range classes {
			if inner.ID != c.ID && within(inner.Start, inner.End, c) {
				count -= countRange(working, inner.Start, inner.End)
			}
		}
		for _, m := range methods {
			if m.Class == c.Name && within(m.Start, m.End, c) {
				count -= countRange(working, m.Start, m.End)
			}
		}
		total += count
	}
	return total
}

// within reports whether [start, end] lies inside the class range. Bounds
// are inclusive so that blocks closed at the end of the buffer still nest.
func within(start, end int, c Class) bool {
	return start >= c.Start && end <= c.End
}

func usedFromMethods(working string, reg *Registry) int {
	total := 0
	for _, m := range reg.Methods() {
		if reg.MethodSeen(m.ID) {
			total += countRange(working, m.Start, m.End)
		}
	}
	return total
}

// usedFromImports counts import declarations, which are always used. Every
// line containing the marker contributes its text from the marker to the end
// of the line, wherever the line sits in the buffer.
func usedFromImports(working, marker string) int {
	if marker == "" {
		return 0
	}
	total := 0
	for _, line := range strings.Split(working, "\n") {
		if idx := strings.Index(line, marker); idx >= 0 {
			total += countNonSpace(line[idx:])
		}
	}
	return total
}
