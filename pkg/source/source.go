// Package source reads submission content from the working tree or from a
// git revision.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/panbanda/ucr/internal/vcs"
)

// ContentSource provides file content from a specific source.
type ContentSource interface {
	// Read returns the content of the file at path.
	Read(path string) ([]byte, error)
}

// FilesystemSource reads files from the local filesystem.
type FilesystemSource struct{}

// NewFilesystem creates a source that reads from the filesystem.
func NewFilesystem() *FilesystemSource {
	return &FilesystemSource{}
}

// Read implements ContentSource.
func (f *FilesystemSource) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// TreeSource reads files from a git tree. Paths may be absolute or relative
// to the working directory; they are mapped onto the repository root.
// It is safe for concurrent use by multiple goroutines.
type TreeSource struct {
	tree vcs.Tree
	root string
	rev  string
	mu   sync.Mutex
}

// NewTree creates a source that reads from a git tree rooted at root.
func NewTree(tree vcs.Tree, root string) *TreeSource {
	return &TreeSource{tree: tree, root: root}
}

// Open resolves rev in the repository enclosing dir and returns a source
// for that revision's tree.
func Open(opener vcs.Opener, dir, rev string) (*TreeSource, error) {
	if opener == nil {
		opener = vcs.DefaultOpener()
	}
	repo, err := opener.PlainOpenWithDetect(dir)
	if err != nil {
		return nil, fmt.Errorf("open repository at %s: %w", dir, err)
	}
	commit, err := repo.Resolve(rev)
	if err != nil {
		return nil, err
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, err
	}
	ts := NewTree(tree, repo.RepoPath())
	ts.rev = commit.Hash().String()
	return ts, nil
}

// Revision returns the resolved commit hash, when known.
func (t *TreeSource) Revision() string {
	return t.rev
}

// Read implements ContentSource.
// It is safe for concurrent use.
func (t *TreeSource) Read(path string) ([]byte, error) {
	rel, err := t.relative(path)
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tree.File(rel)
}

// relative maps path onto the tree, resolving symlinks on both sides so
// temp directories behind symlinked prefixes still line up.
func (t *TreeSource) relative(path string) (string, error) {
	if t.root == "" {
		return filepath.ToSlash(filepath.Clean(path)), nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	root := t.root
	if r, err := filepath.EvalSymlinks(root); err == nil {
		root = r
	}
	if dir, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		abs = filepath.Join(dir, filepath.Base(abs))
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside repository %s", path, t.root)
	}
	return filepath.ToSlash(rel), nil
}
