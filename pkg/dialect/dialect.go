// Package dialect provides the lexical marker sets used by the unused code
// analyzer. A dialect names the tokens that open and close classes and
// methods, the single-character comment marker, the marker names that make a
// class comparator-like, and the import declaration keyword.
package dialect

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ErrUnknownDialect is returned when a dialect name or file extension has no
// registered marker set.
var ErrUnknownDialect = errors.New("unknown dialect")

// ErrInvalidDialect is returned by Validate for incomplete marker sets.
var ErrInvalidDialect = errors.New("invalid dialect")

// Dialect is the lexical configuration for one source grammar.
// All markers are case-folded; the analyzer lowercases the source before
// matching.
type Dialect struct {
	Name              string   `json:"name" toml:"name" koanf:"name"`
	Extensions        []string `json:"extensions" toml:"extensions" koanf:"extensions"`
	CommentMarker     string   `json:"comment_marker" toml:"comment_marker" koanf:"comment_marker"`
	ClassStart        string   `json:"class_start" toml:"class_start" koanf:"class_start"`
	ClassEnd          string   `json:"class_end" toml:"class_end" koanf:"class_end"`
	MethodStarts      []string `json:"method_starts" toml:"method_starts" koanf:"method_starts"`
	MethodEnds        []string `json:"method_ends" toml:"method_ends" koanf:"method_ends"`
	ComparatorMarkers []string `json:"comparator_markers" toml:"comparator_markers" koanf:"comparator_markers"`
	ImportMarker      string   `json:"import_marker" toml:"import_marker" koanf:"import_marker"`
}

// VisualBasic is the marker set for VB.NET submissions.
func VisualBasic() Dialect {
	return Dialect{
		Name:          "vb",
		Extensions:    []string{".vb", ".bas"},
		CommentMarker: "'",
		ClassStart:    "class",
		ClassEnd:      "end class",
		MethodStarts:  []string{"function", "sub"},
		MethodEnds:    []string{"end function", "end sub"},
		ComparatorMarkers: []string{
			"icomparer",
			"icomparable",
			"comparator",
			"comparable",
		},
		ImportMarker: "imports",
	}
}

// Normalized returns a copy with every marker and extension lowercased.
func (d Dialect) Normalized() Dialect {
	out := Dialect{
		Name:          strings.ToLower(strings.TrimSpace(d.Name)),
		CommentMarker: strings.ToLower(d.CommentMarker),
		ClassStart:    strings.ToLower(d.ClassStart),
		ClassEnd:      strings.ToLower(d.ClassEnd),
		ImportMarker:  strings.ToLower(d.ImportMarker),
	}
	out.Extensions = lowerAll(d.Extensions)
	out.MethodStarts = lowerAll(d.MethodStarts)
	out.MethodEnds = lowerAll(d.MethodEnds)
	out.ComparatorMarkers = lowerAll(d.ComparatorMarkers)
	return out
}

// Validate reports missing or malformed markers.
func (d Dialect) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidDialect)
	}
	if len([]rune(d.CommentMarker)) != 1 {
		return fmt.Errorf("%w: %s: comment marker must be a single character, got %q", ErrInvalidDialect, d.Name, d.CommentMarker)
	}
	if d.ClassStart == "" || d.ClassEnd == "" {
		return fmt.Errorf("%w: %s: class start and end markers are required", ErrInvalidDialect, d.Name)
	}
	if len(d.MethodStarts) == 0 || len(d.MethodEnds) == 0 {
		return fmt.Errorf("%w: %s: at least one method start and end marker is required", ErrInvalidDialect, d.Name)
	}
	for _, m := range append(append([]string{}, d.MethodStarts...), d.MethodEnds...) {
		if m == "" {
			return fmt.Errorf("%w: %s: empty method marker", ErrInvalidDialect, d.Name)
		}
	}
	if d.ImportMarker == "" {
		return fmt.Errorf("%w: %s: import marker is required", ErrInvalidDialect, d.Name)
	}
	return nil
}

// IsComparator reports whether a class declaration line names one of the
// comparator markers.
func (d Dialect) IsComparator(declaration string) bool {
	for _, m := range d.ComparatorMarkers {
		if m != "" && strings.Contains(declaration, m) {
			return true
		}
	}
	return false
}

// Fingerprint returns a stable hash of the marker set. Two dialects with the
// same markers produce the same fingerprint regardless of name.
func (d Dialect) Fingerprint() uint64 {
	var b strings.Builder
	b.WriteString(d.CommentMarker)
	b.WriteByte(0)
	b.WriteString(d.ClassStart)
	b.WriteByte(0)
	b.WriteString(d.ClassEnd)
	b.WriteByte(0)
	b.WriteString(strings.Join(d.MethodStarts, "\x01"))
	b.WriteByte(0)
	b.WriteString(strings.Join(d.MethodEnds, "\x01"))
	b.WriteByte(0)
	b.WriteString(strings.Join(d.ComparatorMarkers, "\x01"))
	b.WriteByte(0)
	b.WriteString(d.ImportMarker)
	return xxhash.Sum64String(b.String())
}

func lowerAll(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
