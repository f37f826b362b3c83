package watch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/panbanda/ucr/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWatcher(t *testing.T, path string, debounce time.Duration) *Watcher {
	t.Helper()
	w, err := NewWatcher(path, config.DefaultConfig(), nil, debounce)
	require.NoError(t, err)
	w.SetOutput(&bytes.Buffer{})
	t.Cleanup(func() { _ = w.Stop() })
	return w
}

func TestNewWatcher(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name     string
		debounce time.Duration
		want     time.Duration
	}{
		{"default debounce", 0, DefaultDebounce},
		{"custom debounce", time.Second, time.Second},
		{"negative debounce defaults", -time.Second, DefaultDebounce},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWatcher(t, tmpDir, tt.debounce)
			assert.Equal(t, tt.want, w.debounce)
			assert.Equal(t, tmpDir, w.root)
			assert.Empty(t, w.only)
			assert.NotNil(t, w.pending)
		})
	}
}

func TestNewWatcher_SingleFile(t *testing.T) {
	tmpDir := t.TempDir()
	file := filepath.Join(tmpDir, "Program.vb")
	require.NoError(t, os.WriteFile(file, []byte("class p\nend class\n"), 0644))

	w := newTestWatcher(t, file, 0)
	assert.Equal(t, tmpDir, w.root)
	assert.Equal(t, file, w.only)
}

func TestNewWatcher_MissingPath(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "missing"), nil, nil, 0)
	assert.Error(t, err)
}

func TestWatcher_handleEvent(t *testing.T) {
	tmpDir := t.TempDir()
	w := newTestWatcher(t, tmpDir, time.Second)

	tests := []struct {
		name        string
		event       fsnotify.Event
		wantPending bool
	}{
		{"write vb file", fsnotify.Event{Name: filepath.Join(tmpDir, "Program.vb"), Op: fsnotify.Write}, true},
		{"create bas file", fsnotify.Event{Name: filepath.Join(tmpDir, "Module.bas"), Op: fsnotify.Create}, true},
		{"remove ignored", fsnotify.Event{Name: filepath.Join(tmpDir, "Gone.vb"), Op: fsnotify.Remove}, false},
		{"chmod ignored", fsnotify.Event{Name: filepath.Join(tmpDir, "Mode.vb"), Op: fsnotify.Chmod}, false},
		{"unsupported extension", fsnotify.Event{Name: filepath.Join(tmpDir, "notes.txt"), Op: fsnotify.Write}, false},
		{"excluded directory", fsnotify.Event{Name: filepath.Join(tmpDir, "bin", "Gen.vb"), Op: fsnotify.Write}, false},
		{"excluded pattern", fsnotify.Event{Name: filepath.Join(tmpDir, "Form1.Designer.vb"), Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w.mu.Lock()
			w.pending = make(map[string]time.Time)
			w.mu.Unlock()

			w.handleEvent(tt.event)

			w.mu.Lock()
			_, ok := w.pending[tt.event.Name]
			w.mu.Unlock()
			assert.Equal(t, tt.wantPending, ok)
		})
	}
}

func TestWatcher_handleEvent_SingleFile(t *testing.T) {
	tmpDir := t.TempDir()
	file := filepath.Join(tmpDir, "Program.vb")
	require.NoError(t, os.WriteFile(file, []byte("class p\nend class\n"), 0644))
	w := newTestWatcher(t, file, time.Second)

	w.handleEvent(fsnotify.Event{Name: filepath.Join(tmpDir, "Other.vb"), Op: fsnotify.Write})
	w.handleEvent(fsnotify.Event{Name: file, Op: fsnotify.Write})

	assert.Len(t, w.pending, 1)
	assert.Contains(t, w.pending, file)
}

func TestWatcher_processPending(t *testing.T) {
	tmpDir := t.TempDir()
	w := newTestWatcher(t, tmpDir, time.Second)

	var mu sync.Mutex
	var called []string
	w.SetCallback(func(path string) {
		mu.Lock()
		called = append(called, path)
		mu.Unlock()
	})

	now := time.Now()
	stable := filepath.Join(tmpDir, "Stable.vb")
	fresh := filepath.Join(tmpDir, "Fresh.vb")
	w.pending[stable] = now.Add(-2 * time.Second)
	w.pending[fresh] = now

	ready := w.processPending(now)

	assert.Equal(t, []string{stable}, ready)
	assert.Equal(t, []string{stable}, called)
	assert.Contains(t, w.pending, fresh)
	assert.NotContains(t, w.pending, stable)
}

func TestWatcher_Start_TriggersCallback(t *testing.T) {
	tmpDir := t.TempDir()
	file := filepath.Join(tmpDir, "Program.vb")
	require.NoError(t, os.WriteFile(file, []byte("class p\nend class\n"), 0644))

	w := newTestWatcher(t, tmpDir, 50*time.Millisecond)
	changed := make(chan string, 1)
	w.SetCallback(func(path string) {
		select {
		case changed <- path:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	// Give the watcher time to register directories.
	require.Eventually(t, func() bool { return len(w.WatchedPaths()) > 0 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, os.WriteFile(file, []byte("class p\n  sub main()\n  end sub\nend class\n"), 0644))

	select {
	case got := <-changed:
		assert.Equal(t, file, got)
	case <-time.After(5 * time.Second):
		t.Fatal("callback not triggered")
	}

	cancel()
	err := <-done
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestWatcher_Start_SkipsExcludedDirs(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "bin", "Debug"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "src"), 0755))

	w := newTestWatcher(t, tmpDir, time.Second)
	require.NoError(t, w.addDirs())

	watched := w.WatchedPaths()
	assert.Contains(t, watched, tmpDir)
	assert.Contains(t, watched, filepath.Join(tmpDir, "src"))
	assert.NotContains(t, watched, filepath.Join(tmpDir, "bin"))
}

func TestWatcher_Stop(t *testing.T) {
	w, err := NewWatcher(t.TempDir(), nil, nil, time.Second)
	require.NoError(t, err)
	assert.NoError(t, w.Stop())
}
