package session

import (
	"errors"
	"path/filepath"
	"sort"
	"sync"
)

// ErrSessionNotFound indicates a session id is not open.
var ErrSessionNotFound = errors.New("session not found")

// Workspace tracks open sessions across windows. It implements Host.
type Workspace struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	order    []string // open order
}

// NewWorkspace creates an empty workspace.
func NewWorkspace() *Workspace {
	return &Workspace{
		sessions: make(map[string]*Session),
	}
}

// Open opens a session for path in window. An empty path opens an unsaved
// buffer; other paths are made absolute. initial seeds the session settings.
func (w *Workspace) Open(path, project string, window int, initial map[string]any) (*Session, error) {
	var err error
	if path != "" {
		if path, err = filepath.Abs(path); err != nil {
			return nil, err
		}
	}
	if project != "" {
		if project, err = filepath.Abs(project); err != nil {
			return nil, err
		}
	}

	s := NewSession(path, project, window, initial)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.sessions[s.id] = s
	w.order = append(w.order, s.id)

	return s, nil
}

// Close closes a session by id.
func (w *Workspace) Close(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.sessions[id]; !exists {
		return ErrSessionNotFound
	}
	delete(w.sessions, id)

	for i, sid := range w.order {
		if sid == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	return nil
}

// Get returns the session with id.
func (w *Workspace) Get(id string) (*Session, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	s, ok := w.sessions[id]
	return s, ok
}

// Sessions returns all open sessions in open order.
func (w *Workspace) Sessions() []*Session {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]*Session, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.sessions[id])
	}
	return out
}

// Targets returns all open sessions as targets, window by window.
func (w *Workspace) Targets() []Target {
	var out []Target
	for _, win := range w.Windows() {
		for _, s := range w.InWindow(win) {
			out = append(out, s)
		}
	}
	return out
}

// Windows returns the windows with open sessions, in ascending order.
func (w *Workspace) Windows() []int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	seen := make(map[int]bool)
	var windows []int
	for _, s := range w.sessions {
		if !seen[s.window] {
			seen[s.window] = true
			windows = append(windows, s.window)
		}
	}
	sort.Ints(windows)
	return windows
}

// InWindow returns the sessions of one window in open order.
func (w *Workspace) InWindow(window int) []*Session {
	var out []*Session
	for _, s := range w.Sessions() {
		if s.window == window {
			out = append(out, s)
		}
	}
	return out
}

// Len returns the number of open sessions.
func (w *Workspace) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.sessions)
}
