package unused

import "strings"

// Buffers holds the two views of a submission the analysis works on.
type Buffers struct {
	// Original is the case-folded source with comments intact. It defines
	// the total size of the submission.
	Original string
	// Working is the case-folded source with comments removed. All entity
	// offsets index into it.
	Working string
}

// Normalize lowercases source and strips comments. A comment runs from the
// marker to the next newline; the newline that ends a comment is dropped
// along with it. Markers inside string or character literals are not
// recognized as such and still start a comment.
func Normalize(source, commentMarker string) Buffers {
	original := strings.ToLower(source)
	return Buffers{
		Original: original,
		Working:  stripComments(original, commentMarker),
	}
}

func stripComments(s, marker string) string {
	if marker == "" || !strings.Contains(s, marker) {
		return s
	}
	m := []rune(marker)[0]

	var b strings.Builder
	b.Grow(len(s))
	inComment := false
	for _, r := range s {
		switch {
		case r == m && !inComment:
			inComment = true
		case r == '\n' && inComment:
			inComment = false
		case !inComment:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// isSpace matches the characters excluded from every size count.
func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// countNonSpace counts non-whitespace characters of s.
func countNonSpace(s string) int {
	n := 0
	for _, r := range s {
		if !isSpace(r) {
			n++
		}
	}
	return n
}

// countRange counts non-whitespace characters of buf[start..end] inclusive.
// The range is clamped to the buffer.
func countRange(buf string, start, end int) int {
	if start < 0 {
		start = 0
	}
	if end >= len(buf) {
		end = len(buf) - 1
	}
	if start > end {
		return 0
	}
	return countNonSpace(buf[start : end+1])
}
