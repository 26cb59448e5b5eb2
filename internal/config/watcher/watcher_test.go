package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const settingsName = ".sublime-settings"

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) handle(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

func startWatcher(t *testing.T, opts ...Option) (*Watcher, *recorder) {
	t.Helper()

	w, err := New(settingsName, opts...)
	require.NoError(t, err)

	rec := &recorder{}
	w.OnChange(rec.handle)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		<-done
		_ = w.Close()
	})
	return w, rec
}

func TestWatcher_SettingsFileWrite(t *testing.T) {
	dir := t.TempDir()
	w, rec := startWatcher(t, WithDebounce(20*time.Millisecond))
	require.NoError(t, w.WatchTree(dir))

	path := filepath.Join(dir, settingsName)
	require.NoError(t, os.WriteFile(path, []byte(`{"a": 1}`), 0o644))

	require.Eventually(t, func() bool { return len(rec.snapshot()) > 0 }, 2*time.Second, 10*time.Millisecond)

	events := rec.snapshot()
	assert.Equal(t, path, events[0].Path)
	assert.True(t, events[0].Op.Has(OpCreate) || events[0].Op.Has(OpWrite))
	assert.False(t, events[0].Time.IsZero())
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	w, rec := startWatcher(t, WithDebounce(10*time.Millisecond))
	require.NoError(t, w.WatchTree(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main"), 0o644))
	settings := filepath.Join(dir, settingsName)
	require.NoError(t, os.WriteFile(settings, []byte(`{}`), 0o644))

	require.Eventually(t, func() bool { return len(rec.snapshot()) > 0 }, 2*time.Second, 10*time.Millisecond)
	for _, e := range rec.snapshot() {
		assert.Equal(t, settings, e.Path)
	}
}

func TestWatcher_Debounce(t *testing.T) {
	dir := t.TempDir()
	w, rec := startWatcher(t, WithDebounce(200*time.Millisecond))
	require.NoError(t, w.WatchTree(dir))

	path := filepath.Join(dir, settingsName)
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte(`{"n": 1}`), 0o644))
	}

	require.Eventually(t, func() bool { return len(rec.snapshot()) > 0 }, 3*time.Second, 10*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Len(t, rec.snapshot(), 1)
}

func TestWatcher_WatchTreeSeesNewDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a", "b"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git", "objects"), 0o755))

	w, rec := startWatcher(t, WithDebounce(10*time.Millisecond))
	require.NoError(t, w.WatchTree(root))

	dirs := w.WatchedDirs()
	assert.Contains(t, dirs, root)
	assert.Contains(t, dirs, filepath.Join(root, "a", "b"))
	assert.NotContains(t, dirs, filepath.Join(root, ".git"))

	sub := filepath.Join(root, "new")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.Eventually(t, func() bool {
		for _, d := range w.WatchedDirs() {
			if d == sub {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)

	path := filepath.Join(sub, settingsName)
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))
	require.Eventually(t, func() bool {
		for _, e := range rec.snapshot() {
			if e.Path == path {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_WatchMissingDir(t *testing.T) {
	w, err := New(settingsName)
	require.NoError(t, err)
	defer w.Close()

	assert.Error(t, w.WatchTree(filepath.Join(t.TempDir(), "missing")))
}

func TestWatcher_Close(t *testing.T) {
	w, err := New(settingsName)
	require.NoError(t, err)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.WatchTree(t.TempDir()), ErrWatcherClosed)
}

func TestWatcher_RunStopsOnCancel(t *testing.T) {
	w, err := New(settingsName)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, w.Run(ctx), context.Canceled)
}

func TestOp_String(t *testing.T) {
	assert.Equal(t, "none", Op(0).String())
	assert.Equal(t, "write", OpWrite.String())
	assert.Equal(t, "create|write", (OpCreate | OpWrite).String())
	assert.Equal(t, "remove|rename", (OpRemove | OpRename).String())
}

func TestConvertOp(t *testing.T) {
	assert.Equal(t, OpCreate|OpWrite, convertOp(fsnotify.Create|fsnotify.Write))
	assert.Equal(t, OpRemove, convertOp(fsnotify.Remove))
	assert.Equal(t, OpRename, convertOp(fsnotify.Rename))
	assert.Equal(t, Op(0), convertOp(fsnotify.Chmod))
}
