package session

import (
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// Target is an open file that settings can be applied to.
type Target interface {
	// Path is the absolute file path, or "" for an unsaved buffer.
	Path() string
	// ProjectPath is the associated project file, or "" without a project.
	ProjectPath() string
	// Settings is the session's own settings object.
	Settings() Settings
}

// Host enumerates the open targets across all windows.
type Host interface {
	Targets() []Target
}

// Session is an in-memory Target.
type Session struct {
	id       string
	window   int
	settings *MapSettings

	mu      sync.RWMutex
	path    string
	project string
}

// NewSession creates a session for path. An empty path is an unsaved buffer.
func NewSession(path, project string, window int, initial map[string]any) *Session {
	return &Session{
		id:       uuid.NewString(),
		window:   window,
		settings: NewMapSettings(initial),
		path:     path,
		project:  project,
	}
}

// ID returns the session's unique id.
func (s *Session) ID() string {
	return s.id
}

// Window returns the window the session belongs to.
func (s *Session) Window() int {
	return s.window
}

// Path returns the file path, or "" if the buffer was never saved.
func (s *Session) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path
}

// SetPath changes the file path, as a save-as does.
func (s *Session) SetPath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.path = path
}

// ProjectPath returns the project file path, if any.
func (s *Session) ProjectPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.project
}

// Settings returns the session settings.
func (s *Session) Settings() Settings {
	return s.settings
}

// MapSettings returns the concrete settings object.
func (s *Session) MapSettings() *MapSettings {
	return s.settings
}

// Name returns the display name.
func (s *Session) Name() string {
	if p := s.Path(); p != "" {
		return filepath.Base(p)
	}
	return "Untitled"
}
