// Package unused estimates how much of a submission is reachable from its
// entry point.
//
// The analysis is textual. Comments are stripped, class and method blocks
// are located by their start and end markers, and reachability spreads from
// the entry class and method by searching seen method bodies for call sites
// ("name(") and instantiations ("new name"). The verdict compares the
// non-whitespace size of the reachable code against the whole submission.
//
// Phases: normalize -> scan -> propagate -> measure -> decide.
package unused

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/panbanda/ucr/pkg/dialect"
	"github.com/sirupsen/logrus"
)

// Analyzer checks submissions for unused code. An Analyzer holds only
// configuration; every call to Analyze owns its buffers and registry, so a
// single Analyzer may be shared across goroutines.
type Analyzer struct {
	dialect       dialect.Dialect
	thresholds    Thresholds
	capacity      Capacity
	maxSourceSize int
	logger        logrus.FieldLogger
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithDialect sets the lexical marker set.
func WithDialect(d dialect.Dialect) Option {
	return func(a *Analyzer) {
		a.dialect = d.Normalized()
	}
}

// WithThresholds sets the verdict limits.
func WithThresholds(t Thresholds) Option {
	return func(a *Analyzer) {
		a.thresholds = t
	}
}

// WithCapacity sets the entity capacity (0 = unbounded).
func WithCapacity(c Capacity) Option {
	return func(a *Analyzer) {
		a.capacity = c
	}
}

// WithMaxSourceSize rejects sources larger than n bytes (0 = no limit).
func WithMaxSourceSize(n int) Option {
	return func(a *Analyzer) {
		a.maxSourceSize = n
	}
}

// WithLogger sets the logger that receives diagnostic traces at debug level.
func WithLogger(l logrus.FieldLogger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an analyzer for the VB dialect with default limits.
func New(opts ...Option) *Analyzer {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	a := &Analyzer{
		dialect:    dialect.VisualBasic(),
		thresholds: DefaultThresholds(),
		capacity:   DefaultCapacity(),
		logger:     quiet,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Dialect returns the configured dialect.
func (a *Analyzer) Dialect() dialect.Dialect {
	return a.dialect
}

// Thresholds returns the configured limits.
func (a *Analyzer) Thresholds() Thresholds {
	return a.thresholds
}

// Capacity returns the configured entity capacity.
func (a *Analyzer) Capacity() Capacity {
	return a.capacity
}

// Admit checks the analyzer settings and the submission size without
// running the pipeline.
func (a *Analyzer) Admit(sub Submission) error {
	if err := a.dialect.Validate(); err != nil {
		return err
	}
	if err := a.thresholds.Validate(); err != nil {
		return err
	}
	if a.maxSourceSize > 0 && len(sub.Source) > a.maxSourceSize {
		return fmt.Errorf("%w: %d bytes (limit: %d)", ErrSourceTooLarge, len(sub.Source), a.maxSourceSize)
	}
	return nil
}

// Analyze runs the full pipeline on one submission.
func (a *Analyzer) Analyze(ctx context.Context, sub Submission) (*Analysis, error) {
	if err := a.Admit(sub); err != nil {
		return nil, err
	}

	entryClass := strings.ToLower(strings.TrimSpace(sub.EntryClass))
	entryMethod := strings.ToLower(strings.TrimSpace(sub.EntryMethod))
	log := a.logger.WithFields(logrus.Fields{
		"dialect": a.dialect.Name,
		"entry":   entryClass + "." + entryMethod,
	})
	if sub.Path != "" {
		log = log.WithField("path", sub.Path)
	}

	// Phase 1: normalize
	buf := Normalize(sub.Source, a.dialect.CommentMarker)

	// Phase 2: scan boundaries
	reg := NewRegistry(entryClass, entryMethod, a.capacity)
	if err := Scan(buf.Working, a.dialect, reg); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	// Phase 3: propagate reachability
	sweeps, err := Propagate(ctx, buf.Working, reg)
	if err != nil {
		return nil, fmt.Errorf("propagate: %w", err)
	}

	// Phase 4: measure and decide
	usage := Measure(buf, reg, a.dialect.ImportMarker)
	verdict, message := Decide(usage, a.thresholds)

	analysis := &Analysis{
		Path:        sub.Path,
		Dialect:     a.dialect.Name,
		EntryClass:  entryClass,
		EntryMethod: entryMethod,
		Verdict:     verdict,
		Message:     message,
		Usage:       usage,
		Thresholds:  a.thresholds,
		Entities:    reg.Entities(),
		Sweeps:      sweeps,
	}
	a.trace(log, analysis)
	return analysis, nil
}

// trace writes the entity table and counts at debug level.
func (a *Analyzer) trace(log logrus.FieldLogger, analysis *Analysis) {
	for _, e := range analysis.Entities {
		log.WithFields(logrus.Fields{
			"kind":       e.Kind,
			"class":      e.Class,
			"start":      e.Start,
			"end":        e.End,
			"seen":       e.Seen,
			"comparator": e.Comparator,
		}).Debug(e.Name)
	}
	log.WithFields(logrus.Fields{
		"sweeps":   len(analysis.Sweeps),
		"used":     analysis.Usage.Used,
		"total":    analysis.Usage.Total,
		"fraction": analysis.Usage.Fraction,
		"verdict":  analysis.Verdict,
	}).Debug("used code")
}
