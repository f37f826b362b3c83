// Package manifest reads batch manifests listing submissions and their
// entry points.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidManifest is returned for manifests missing required fields.
var ErrInvalidManifest = errors.New("invalid manifest")

// Item is one submission to check.
type Item struct {
	Path    string `yaml:"path"`
	Class   string `yaml:"class"`
	Method  string `yaml:"method"`
	Dialect string `yaml:"dialect,omitempty"`
}

// Defaults fill fields an item leaves empty.
type Defaults struct {
	Class   string `yaml:"class"`
	Method  string `yaml:"method"`
	Dialect string `yaml:"dialect,omitempty"`
}

// Manifest is the decoded batch file.
type Manifest struct {
	Defaults    Defaults `yaml:"defaults,omitempty"`
	Submissions []Item   `yaml:"submissions"`
}

// Load reads and resolves a manifest file. Relative submission paths are
// resolved against the manifest's directory.
func Load(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	items, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	base := filepath.Dir(path)
	for i := range items {
		if !filepath.IsAbs(items[i].Path) {
			items[i].Path = filepath.Join(base, filepath.FromSlash(items[i].Path))
		}
	}
	return items, nil
}

// Parse decodes a manifest, applies defaults, and validates every item.
// Unknown keys are rejected.
func Parse(data []byte) ([]Item, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}

	if len(m.Submissions) == 0 {
		return nil, fmt.Errorf("%w: no submissions", ErrInvalidManifest)
	}

	items := make([]Item, len(m.Submissions))
	for i, it := range m.Submissions {
		it.Path = strings.TrimSpace(it.Path)
		if it.Class == "" {
			it.Class = m.Defaults.Class
		}
		if it.Method == "" {
			it.Method = m.Defaults.Method
		}
		if it.Dialect == "" {
			it.Dialect = m.Defaults.Dialect
		}

		switch {
		case it.Path == "":
			return nil, fmt.Errorf("%w: submission %d: path is required", ErrInvalidManifest, i+1)
		case it.Class == "":
			return nil, fmt.Errorf("%w: %s: class is required", ErrInvalidManifest, it.Path)
		case it.Method == "":
			return nil, fmt.Errorf("%w: %s: method is required", ErrInvalidManifest, it.Path)
		}
		items[i] = it
	}
	return items, nil
}

// Encode writes items as a manifest.
func Encode(items []Item) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(Manifest{Submissions: items}); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
