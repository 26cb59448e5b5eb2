// Package session defines the editing sessions directory settings are applied to.
//
// A Target is one open file with its own mutable Settings. A Host enumerates
// every open Target. The in-memory Workspace implements Host for the CLI and
// tests; an editor integration supplies its own implementations.
package session

import (
	"sort"
	"sync"

	"github.com/dshills/dirsettings/internal/config/layer"
)

// Settings is a per-session settings object.
type Settings interface {
	// Get returns the value for key and whether it is set.
	Get(key string) (any, bool)
	// Set sets key to value.
	Set(key string, value any)
	// Has reports whether key is set.
	Has(key string) bool
	// Erase removes key. Erasing a missing key is a no-op.
	Erase(key string)
}

// MapSettings is an in-memory Settings.
type MapSettings struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewMapSettings creates settings holding a deep copy of initial.
func NewMapSettings(initial map[string]any) *MapSettings {
	values := layer.Clone(initial)
	if values == nil {
		values = make(map[string]any)
	}
	return &MapSettings{values: values}
}

// Get returns the value for key and whether it is set.
func (s *MapSettings) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Set sets key to value.
func (s *MapSettings) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Has reports whether key is set.
func (s *MapSettings) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.values[key]
	return ok
}

// Erase removes key.
func (s *MapSettings) Erase(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

// Len returns the number of keys set.
func (s *MapSettings) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// Keys returns the set keys in sorted order.
func (s *MapSettings) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns a deep copy of the current values.
func (s *MapSettings) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return layer.Clone(s.values)
}
