package unused

import (
	"errors"
	"fmt"
)

var (
	// ErrCapacityExceeded is returned when the scan discovers more classes or
	// methods than the configured capacity allows. The run is aborted.
	ErrCapacityExceeded = errors.New("entity capacity exceeded")

	// ErrMalformedInput is returned when a class or method header lacks the
	// token the scanner needs to name it.
	ErrMalformedInput = errors.New("malformed input")

	// ErrInvalidThresholds is returned for limits outside their valid range.
	ErrInvalidThresholds = errors.New("invalid thresholds")

	// ErrSourceTooLarge is returned when the source exceeds the configured
	// maximum size.
	ErrSourceTooLarge = errors.New("source too large")
)

// InvalidMessage is the fixed diagnostic carried by a flagged verdict.
const InvalidMessage = "Your submission appears to contain more than 30% unused code. " +
	"Submissions with large amounts of unreachable code violate the unused code rule. " +
	"Remove code that is never called from the entry method before submitting."

// Verdict is the outcome of an analysis.
type Verdict string

const (
	VerdictPass    Verdict = "pass"
	VerdictFlagged Verdict = "flagged"
)

// String returns the string representation.
func (v Verdict) String() string {
	return string(v)
}

// Thresholds holds the two limits that must both trip for a flagged verdict.
type Thresholds struct {
	// CodeLimit is the absolute number of unused non-whitespace characters
	// tolerated.
	CodeLimit int `json:"code_limit" toon:"code_limit"`
	// CodePercentLimit is the tolerated unused fraction in [0,1].
	CodePercentLimit float64 `json:"code_percent_limit" toon:"code_percent_limit"`
}

// DefaultThresholds returns the limits used when none are configured.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CodeLimit:        300,
		CodePercentLimit: 0.3,
	}
}

// Validate checks that both limits are in range.
func (t Thresholds) Validate() error {
	if t.CodeLimit < 0 {
		return fmt.Errorf("%w: code limit must be >= 0, got %d", ErrInvalidThresholds, t.CodeLimit)
	}
	if t.CodePercentLimit < 0 || t.CodePercentLimit > 1 {
		return fmt.Errorf("%w: code percent limit must be in [0,1], got %g", ErrInvalidThresholds, t.CodePercentLimit)
	}
	return nil
}

// Capacity bounds the number of entities a single run may record.
// Zero means unbounded.
type Capacity struct {
	MaxClasses int `json:"max_classes" toon:"max_classes"`
	MaxMethods int `json:"max_methods" toon:"max_methods"`
}

// DefaultCapacity returns the entity limits used when none are configured.
func DefaultCapacity() Capacity {
	return Capacity{
		MaxClasses: 20,
		MaxMethods: 100,
	}
}

// Class is a class block discovered by the scanner. Offsets are inclusive
// positions in the working buffer.
type Class struct {
	ID         int
	Name       string
	Start      int
	End        int
	Comparator bool
}

// Method is a method block discovered by the scanner. Methods are identified
// by name only; two methods with the same name in different classes are not
// told apart by the propagator.
type Method struct {
	ID    int
	Name  string
	Class string
	Start int
	End   int
}

// EntityKind distinguishes rows of the entity table.
type EntityKind string

const (
	KindClass  EntityKind = "class"
	KindMethod EntityKind = "method"
)

// Entity is one row of the diagnostic entity table.
type Entity struct {
	Kind       EntityKind `json:"kind" toon:"kind"`
	Name       string     `json:"name" toon:"name"`
	Class      string     `json:"class,omitempty" toon:"class"`
	Start      int        `json:"start" toon:"start"`
	End        int        `json:"end" toon:"end"`
	Seen       bool       `json:"seen" toon:"seen"`
	Comparator bool       `json:"comparator,omitempty" toon:"comparator"`
}

// Usage holds the character counts behind a verdict.
type Usage struct {
	FromClasses int     `json:"from_classes" toon:"from_classes"`
	FromMethods int     `json:"from_methods" toon:"from_methods"`
	FromImports int     `json:"from_imports" toon:"from_imports"`
	Used        int     `json:"used" toon:"used"`
	Total       int     `json:"total" toon:"total"`
	Fraction    float64 `json:"fraction" toon:"fraction"`
}

// Unused returns the number of non-whitespace characters not counted as used.
func (u Usage) Unused() int {
	return u.Total - u.Used
}

// Sweep records the seen counts after one propagation pass.
type Sweep struct {
	Index       int  `json:"index" toon:"index"`
	SeenClasses int  `json:"seen_classes" toon:"seen_classes"`
	SeenMethods int  `json:"seen_methods" toon:"seen_methods"`
	Changed     bool `json:"changed" toon:"changed"`
}

// Submission is the input to a single analysis run.
type Submission struct {
	Path        string
	Source      string
	EntryClass  string
	EntryMethod string
}

// Analysis is the result of a single run.
type Analysis struct {
	Path        string     `json:"path,omitempty" toon:"path"`
	Dialect     string     `json:"dialect" toon:"dialect"`
	EntryClass  string     `json:"entry_class" toon:"entry_class"`
	EntryMethod string     `json:"entry_method" toon:"entry_method"`
	Verdict     Verdict    `json:"verdict" toon:"verdict"`
	Message     string     `json:"message,omitempty" toon:"message"`
	Usage       Usage      `json:"usage" toon:"usage"`
	Thresholds  Thresholds `json:"thresholds" toon:"thresholds"`
	Entities    []Entity   `json:"entities,omitempty" toon:"entities"`
	Sweeps      []Sweep    `json:"sweeps,omitempty" toon:"sweeps"`
}

// Flagged reports whether the verdict is flagged.
func (a *Analysis) Flagged() bool {
	return a.Verdict == VerdictFlagged
}
