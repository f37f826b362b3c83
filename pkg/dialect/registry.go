package dialect

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Registry maps dialect names and file extensions to marker sets.
// It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	byName   map[string]Dialect
	byExt    map[string]string
	fallback string
}

// NewRegistry creates a registry preloaded with the built-in dialects.
func NewRegistry() *Registry {
	r := &Registry{
		byName:   make(map[string]Dialect),
		byExt:    make(map[string]string),
		fallback: "vb",
	}
	// Built-ins always validate.
	_ = r.Register(VisualBasic())
	return r
}

// Register adds or replaces a dialect. Markers are normalized first.
func (r *Registry) Register(d Dialect) error {
	d = d.Normalized()
	if err := d.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[d.Name] = d
	for _, ext := range d.Extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		r.byExt[ext] = d.Name
	}
	return nil
}

// SetDefault selects the dialect returned by Default.
func (r *Registry) SetDefault(name string) error {
	name = strings.ToLower(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[name]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDialect, name)
	}
	r.fallback = name
	return nil
}

// Default returns the default dialect.
func (r *Registry) Default() Dialect {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[r.fallback]
}

// Lookup returns the dialect registered under name.
func (r *Registry) Lookup(name string) (Dialect, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Dialect{}, fmt.Errorf("%w: %s", ErrUnknownDialect, name)
	}
	return d, nil
}

// ForPath picks a dialect by file extension.
func (r *Registry) ForPath(path string) (Dialect, error) {
	ext := strings.ToLower(filepath.Ext(path))
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.byExt[ext]
	if !ok {
		return Dialect{}, fmt.Errorf("%w: no dialect for %q", ErrUnknownDialect, filepath.Base(path))
	}
	return r.byName[name], nil
}

// Resolve returns the named dialect, or the one matching path when name is
// empty, or the default when neither identifies one.
func (r *Registry) Resolve(name, path string) (Dialect, error) {
	if name != "" {
		return r.Lookup(name)
	}
	if path != "" {
		if d, err := r.ForPath(path); err == nil {
			return d, nil
		}
	}
	return r.Default(), nil
}

// Names returns registered dialect names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Extensions returns every registered file extension in sorted order.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make([]string, 0, len(r.byExt))
	for e := range r.byExt {
		exts = append(exts, e)
	}
	sort.Strings(exts)
	return exts
}
