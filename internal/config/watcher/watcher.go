// Package watcher reports changes to settings files on disk.
//
// Directories are watched rather than files, so settings files that are
// created after watching starts are seen too. Events for one path that
// arrive within the debounce window are coalesced into a single Event.
package watcher

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ErrWatcherClosed is returned when using a closed watcher.
var ErrWatcherClosed = errors.New("watcher closed")

// Op is a set of file operations.
type Op uint8

const (
	// OpCreate indicates the file was created.
	OpCreate Op = 1 << iota
	// OpWrite indicates the file was modified.
	OpWrite
	// OpRemove indicates the file was deleted.
	OpRemove
	// OpRename indicates the file was renamed away.
	OpRename
)

// Has reports whether op includes o.
func (op Op) Has(o Op) bool {
	return op&o != 0
}

// String returns the operation names joined by "|".
func (op Op) String() string {
	var names []string
	if op.Has(OpCreate) {
		names = append(names, "create")
	}
	if op.Has(OpWrite) {
		names = append(names, "write")
	}
	if op.Has(OpRemove) {
		names = append(names, "remove")
	}
	if op.Has(OpRename) {
		names = append(names, "rename")
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// Event represents a settings file change.
type Event struct {
	// Path is the absolute path to the settings file.
	Path string

	// Op combines every operation seen during the debounce window.
	Op Op

	// Time is when the last operation was seen.
	Time time.Time
}

// Handler is called when a settings file changes.
type Handler func(event Event)

// Watcher monitors directories for settings file changes.
type Watcher struct {
	mu sync.Mutex

	fsw      *fsnotify.Watcher
	filename string
	debounce time.Duration
	logger   *zap.Logger

	dirs     map[string]bool
	trees    []string // roots whose new subdirectories are watched too
	handlers []Handler
	pending  map[string]*pendingEvent
	closed   bool
}

type pendingEvent struct {
	event Event
	timer *time.Timer
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce duration for rapid changes.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New creates a watcher for files named filename.
func New(filename string, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		filename: filename,
		debounce: 100 * time.Millisecond,
		logger:   zap.NewNop(),
		dirs:     make(map[string]bool),
		pending:  make(map[string]*pendingEvent),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named("watcher")

	return w, nil
}

// OnChange registers a handler for settings file changes.
func (w *Watcher) OnChange(handler Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, handler)
}

// WatchTree watches root and every directory below it, including ones
// created later. Directories named ".git" are skipped.
func (w *Watcher) WatchTree(root string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	w.trees = append(w.trees, absRoot)
	return w.walkLocked(absRoot)
}

func (w *Watcher) walkLocked(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil // unreadable subdirectory
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == ".git" && path != root {
			return filepath.SkipDir
		}
		return w.addLocked(path)
	})
}

func (w *Watcher) addLocked(dir string) error {
	if w.closed {
		return ErrWatcherClosed
	}
	if w.dirs[dir] {
		return nil
	}
	if err := w.fsw.Add(dir); err != nil {
		return err
	}
	w.dirs[dir] = true
	return nil
}

// WatchedDirs returns the watched directories, sorted.
func (w *Watcher) WatchedDirs() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	dirs := make([]string, 0, len(w.dirs))
	for d := range w.dirs {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	return dirs
}

// Run processes file system events until ctx is done or the watcher is
// closed. Handlers are called from timer goroutines after the debounce delay.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case fsEvent, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleFSEvent(fsEvent)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))
		}
	}
}

// Close stops watching and cancels pending events.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for path, p := range w.pending {
		p.timer.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()

	return w.fsw.Close()
}

// handleFSEvent converts and dispatches an fsnotify event.
func (w *Watcher) handleFSEvent(fsEvent fsnotify.Event) {
	op := convertOp(fsEvent.Op)
	if op == 0 {
		return
	}

	if op.Has(OpCreate) && w.inTree(fsEvent.Name) {
		w.mu.Lock()
		_ = w.walkLocked(fsEvent.Name) // not a directory: WalkDir visits only the file
		w.mu.Unlock()
	}

	if filepath.Base(fsEvent.Name) != w.filename {
		return
	}

	w.queue(Event{Path: fsEvent.Name, Op: op, Time: time.Now()})
}

func (w *Watcher) inTree(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, root := range w.trees {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// queue coalesces events per path and emits them after the debounce delay.
func (w *Watcher) queue(event Event) {
	if w.debounce == 0 {
		w.emit(event)
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	if p, ok := w.pending[event.Path]; ok {
		p.event.Op |= event.Op
		p.event.Time = event.Time
		p.timer.Reset(w.debounce)
		return
	}

	path := event.Path
	p := &pendingEvent{event: event}
	p.timer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		current, ok := w.pending[path]
		if ok {
			delete(w.pending, path)
		}
		w.mu.Unlock()
		if ok {
			w.emit(current.event)
		}
	})
	w.pending[path] = p
}

func (w *Watcher) emit(event Event) {
	w.mu.Lock()
	handlers := make([]Handler, len(w.handlers))
	copy(handlers, w.handlers)
	w.mu.Unlock()

	w.logger.Debug("settings file changed",
		zap.String("file", event.Path),
		zap.String("op", event.Op.String()))

	for _, h := range handlers {
		h(event)
	}
}

// convertOp converts fsnotify.Op to Op. Chmod is ignored.
func convertOp(fsOp fsnotify.Op) Op {
	var op Op
	if fsOp.Has(fsnotify.Create) {
		op |= OpCreate
	}
	if fsOp.Has(fsnotify.Write) {
		op |= OpWrite
	}
	if fsOp.Has(fsnotify.Remove) {
		op |= OpRemove
	}
	if fsOp.Has(fsnotify.Rename) {
		op |= OpRename
	}
	return op
}
