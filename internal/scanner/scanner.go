// Package scanner discovers submission files for directory batches.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/panbanda/ucr/pkg/config"
	"github.com/panbanda/ucr/pkg/dialect"
)

// Scanner finds files whose extension belongs to a registered dialect.
type Scanner struct {
	config   *config.Config
	dialects *dialect.Registry
	matcher  gitignore.Matcher
}

// New creates a scanner. Nil arguments fall back to the defaults.
func New(cfg *config.Config, dialects *dialect.Registry) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if dialects == nil {
		dialects = dialect.NewRegistry()
	}
	return &Scanner{config: cfg, dialects: dialects}
}

// findGitRoot walks up from start looking for a .git directory.
func findGitRoot(start string) string {
	dir := start
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadMatcher combines the configured exclude patterns with every .gitignore
// under the enclosing repository.
func (s *Scanner) loadMatcher(root string) {
	var patterns []gitignore.Pattern
	for _, p := range s.config.Exclude.Patterns {
		patterns = append(patterns, gitignore.ParsePattern(p, nil))
	}

	if s.config.Exclude.Gitignore {
		if gitRoot := findGitRoot(root); gitRoot != "" {
			if gitPatterns, err := gitignore.ReadPatterns(osfs.New(gitRoot), nil); err == nil {
				patterns = append(patterns, gitPatterns...)
			}
		}
	}

	if len(patterns) > 0 {
		s.matcher = gitignore.NewMatcher(patterns)
	}
}

func (s *Scanner) excluded(rel string, isDir bool) bool {
	if isDir && slices.Contains(s.config.Exclude.Dirs, filepath.Base(rel)) {
		return true
	}
	if s.matcher == nil {
		return false
	}
	return s.matcher.Match(strings.Split(rel, string(filepath.Separator)), isDir)
}

// Supported reports whether path has a registered dialect extension.
func (s *Scanner) Supported(path string) bool {
	_, err := s.dialects.ForPath(path)
	return err == nil
}

// ScanDir walks root and returns every supported, non-excluded file in walk
// order. Symlinks resolving outside root are skipped.
func (s *Scanner) ScanDir(root string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	absRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, err
	}

	s.loadMatcher(absRoot)

	var files []string
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, _ := filepath.Rel(root, path)
		if rel == "." {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil || !isWithinRoot(resolved, absRoot) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		if d.IsDir() {
			if s.excluded(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if !s.excluded(rel, false) && s.Supported(path) {
			files = append(files, path)
		}
		return nil
	})

	return files, walkErr
}

// isWithinRoot reports whether path is root or lies beneath it.
func isWithinRoot(path, root string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	absPath = filepath.Clean(absPath)
	root = filepath.Clean(root)
	return absPath == root || strings.HasPrefix(absPath, root+string(filepath.Separator))
}

// FilterBySize drops files larger than maxSize and returns how many were
// dropped. A maxSize of 0 disables the filter.
func FilterBySize(files []string, maxSize int64) ([]string, int) {
	if maxSize <= 0 {
		return files, 0
	}

	filtered := make([]string, 0, len(files))
	skipped := 0
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil || info.Size() > maxSize {
			skipped++
			continue
		}
		filtered = append(filtered, f)
	}
	return filtered, skipped
}
