// Package analysis orchestrates unused-code checks: it reads submissions,
// resolves their dialect, consults the verdict cache, and runs batches on
// a worker pool.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/panbanda/ucr/internal/cache"
	"github.com/panbanda/ucr/internal/fileproc"
	"github.com/panbanda/ucr/internal/manifest"
	"github.com/panbanda/ucr/internal/scanner"
	"github.com/panbanda/ucr/internal/vcs"
	"github.com/panbanda/ucr/pkg/analyzer/unused"
	"github.com/panbanda/ucr/pkg/config"
	"github.com/panbanda/ucr/pkg/dialect"
	"github.com/panbanda/ucr/pkg/source"
	"github.com/panbanda/ucr/pkg/stats"
	"github.com/sirupsen/logrus"
)

// ErrNoEntryPoint is returned when a request lacks the entry class or method.
var ErrNoEntryPoint = errors.New("entry class and method are required")

// Service orchestrates unused-code analysis.
type Service struct {
	config   *config.Config
	opener   vcs.Opener
	dialects *dialect.Registry
	cache    *cache.Cache
	logger   logrus.FieldLogger
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithOpener sets the VCS opener (for testing).
func WithOpener(opener vcs.Opener) Option {
	return func(s *Service) {
		s.opener = opener
	}
}

// WithCache sets the verdict cache. Without it nothing is cached.
func WithCache(c *cache.Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithLogger sets the logger handed to every analyzer.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// New creates a new analysis service. The dialect registry is built from
// the configuration, so an invalid custom dialect fails here.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		config: config.DefaultConfig(),
		opener: vcs.DefaultOpener(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		quiet := logrus.New()
		quiet.SetOutput(io.Discard)
		s.logger = quiet
	}
	if s.cache == nil {
		s.cache, _ = cache.New("", 0, false)
	}

	reg, err := s.config.Registry()
	if err != nil {
		return nil, fmt.Errorf("build dialect registry: %w", err)
	}
	s.dialects = reg
	return s, nil
}

// Config returns the effective configuration.
func (s *Service) Config() *config.Config {
	return s.config
}

// Dialects returns the dialect registry.
func (s *Service) Dialects() *dialect.Registry {
	return s.dialects
}

// CheckRequest names one submission. When Source is set it is analyzed
// directly and Path is used only for dialect detection and reporting.
// Otherwise Path is read from the working tree, or from Rev when set.
type CheckRequest struct {
	Path    string
	Source  string
	Class   string
	Method  string
	Dialect string
	Rev     string
}

// Check analyzes a single submission.
func (s *Service) Check(ctx context.Context, req CheckRequest) (*unused.Analysis, error) {
	if req.Class == "" || req.Method == "" {
		return nil, ErrNoEntryPoint
	}

	content := req.Source
	if content == "" {
		src, err := s.contentSource(req.Path, req.Rev)
		if err != nil {
			return nil, err
		}
		data, err := src.Read(req.Path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", req.Path, err)
		}
		content = string(data)
	}

	d, err := s.dialects.Resolve(req.Dialect, req.Path)
	if err != nil {
		return nil, err
	}

	return s.analyze(ctx, d, unused.Submission{
		Path:        req.Path,
		Source:      content,
		EntryClass:  req.Class,
		EntryMethod: req.Method,
	})
}

// contentSource picks the working tree, or the tree at rev.
func (s *Service) contentSource(path, rev string) (source.ContentSource, error) {
	if rev == "" {
		return source.NewFilesystem(), nil
	}
	dir := filepath.Dir(path)
	if path == "" {
		dir = "."
	}
	return source.Open(s.opener, dir, rev)
}

// analyze runs one submission through the cache and the analyzer.
func (s *Service) analyze(ctx context.Context, d dialect.Dialect, sub unused.Submission) (*unused.Analysis, error) {
	thresholds := s.config.UnusedThresholds()
	capacity := s.config.UnusedCapacity()
	a := unused.New(
		unused.WithDialect(d),
		unused.WithThresholds(thresholds),
		unused.WithCapacity(capacity),
		unused.WithMaxSourceSize(s.config.Analysis.MaxFileSize),
		unused.WithLogger(s.logger),
	)
	if err := a.Admit(sub); err != nil {
		return nil, err
	}

	key := cache.Key(sub, d, thresholds, capacity)
	if cached, ok := s.cache.GetAnalysis(key); ok {
		cached.Path = sub.Path
		s.logger.WithField("path", sub.Path).Debug("cache hit")
		return cached, nil
	}

	result, err := a.Analyze(ctx, sub)
	if err != nil {
		return nil, err
	}

	if err := s.cache.PutAnalysis(key, result); err != nil {
		s.logger.WithError(err).WithField("path", sub.Path).Warn("cache write failed")
	}
	return result, nil
}

// BatchOptions configures a batch run.
type BatchOptions struct {
	// Workers caps concurrency. 0 uses the configured worker count.
	Workers int
	// Rev reads every submission from this git revision.
	Rev        string
	OnProgress func()
}

// BatchResult holds the outcome of a batch. Results keep manifest order;
// failed items appear only in Errors.
type BatchResult struct {
	Results []*unused.Analysis
	Errors  *fileproc.ProcessingErrors
	Summary stats.Summary
	// Skipped counts files left out of a directory batch for size.
	Skipped int
}

// Batch analyzes every manifest item independently.
func (s *Service) Batch(ctx context.Context, items []manifest.Item, opts BatchOptions) (*BatchResult, error) {
	var src source.ContentSource = source.NewFilesystem()
	if opts.Rev != "" && len(items) > 0 {
		ts, err := s.contentSource(items[0].Path, opts.Rev)
		if err != nil {
			return nil, err
		}
		src = ts
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = s.config.Analysis.Workers
	}

	results, errs := fileproc.ForEachWithContext(ctx, items,
		func(it manifest.Item) string { return it.Path },
		func(ctx context.Context, it manifest.Item) (*unused.Analysis, error) {
			if it.Class == "" || it.Method == "" {
				return nil, ErrNoEntryPoint
			}
			data, err := src.Read(it.Path)
			if err != nil {
				return nil, err
			}
			d, err := s.dialects.Resolve(it.Dialect, it.Path)
			if err != nil {
				return nil, err
			}
			return s.analyze(ctx, d, unused.Submission{
				Path:        it.Path,
				Source:      string(data),
				EntryClass:  it.Class,
				EntryMethod: it.Method,
			})
		},
		fileproc.Options{Workers: workers, OnProgress: opts.OnProgress},
	)

	return &BatchResult{
		Results: results,
		Errors:  errs,
		Summary: summarize(results, errs),
	}, ctx.Err()
}

// DirRequest describes a directory batch: every supported file under Root
// shares one entry point.
type DirRequest struct {
	Root    string
	Class   string
	Method  string
	Dialect string
}

// Collect lists the manifest items a directory batch would analyze and how
// many files were dropped for exceeding the size limit.
func (s *Service) Collect(req DirRequest) ([]manifest.Item, int, error) {
	files, err := scanner.New(s.config, s.dialects).ScanDir(req.Root)
	if err != nil {
		return nil, 0, fmt.Errorf("scan %s: %w", req.Root, err)
	}
	files, skipped := scanner.FilterBySize(files, int64(s.config.Analysis.MaxFileSize))

	items := make([]manifest.Item, len(files))
	for i, f := range files {
		items[i] = manifest.Item{Path: f, Class: req.Class, Method: req.Method, Dialect: req.Dialect}
	}
	return items, skipped, nil
}

// BatchDir scans a directory and analyzes every supported file.
func (s *Service) BatchDir(ctx context.Context, req DirRequest, opts BatchOptions) (*BatchResult, error) {
	items, skipped, err := s.Collect(req)
	if err != nil {
		return nil, err
	}
	result, err := s.Batch(ctx, items, opts)
	if result != nil {
		result.Skipped = skipped
	}
	return result, err
}

func summarize(results []*unused.Analysis, errs *fileproc.ProcessingErrors) stats.Summary {
	fractions := make([]float64, len(results))
	counts := make([]int, len(results))
	flagged := 0
	for i, a := range results {
		fractions[i] = a.Usage.Fraction
		counts[i] = a.Usage.Unused()
		if a.Flagged() {
			flagged++
		}
	}
	failed := 0
	if errs != nil {
		failed = errs.Len()
	}
	return stats.Summarize(fractions, counts, flagged, failed)
}
