// Package vcs provides the version control access used to read submissions
// at a past revision.
package vcs

import (
	"errors"

	"github.com/go-git/go-git/v5/plumbing"
)

// ErrNotInTree is returned when a path is absent from a revision.
var ErrNotInTree = errors.New("file not found at revision")

// Repository provides access to git repository operations.
type Repository interface {
	// Resolve returns the commit a revision expression (branch, tag, hash,
	// HEAD~n) points at.
	Resolve(rev string) (Commit, error)
	// RepoPath returns the root path of the repository's worktree.
	RepoPath() string
}

// Commit represents a git commit.
type Commit interface {
	// Hash returns the commit hash.
	Hash() plumbing.Hash
	// Tree returns the tree object for this commit.
	Tree() (Tree, error)
}

// TreeEntry represents a file in a git tree.
type TreeEntry struct {
	Path string
	Size int64
}

// Tree represents a git tree object.
type Tree interface {
	// File returns the contents of the file at path, relative to the
	// repository root with forward slashes.
	File(path string) ([]byte, error)
	// Entries returns all files in the tree (recursively).
	Entries() ([]TreeEntry, error)
}

// Opener opens git repositories.
type Opener interface {
	// PlainOpen opens an existing git repository.
	PlainOpen(path string) (Repository, error)
	// PlainOpenWithDetect opens a git repository, detecting .git in parent directories.
	PlainOpenWithDetect(path string) (Repository, error)
}
