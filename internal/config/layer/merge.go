package layer

import (
	"reflect"
	"sort"
)

// Overlay returns a new map holding base's entries with top's top-level
// entries written over them. Neither argument is modified. Nested values
// are shared with the inputs, not merged: a mapping in top replaces the
// mapping in base for the same key.
func Overlay(base, top Settings) Settings {
	merged := make(Settings, len(base)+len(top))
	for key, val := range base {
		merged[key] = val
	}
	for key, val := range top {
		merged[key] = val
	}
	return merged
}

// Keys returns the top-level keys of data in sorted order.
func Keys(data Settings) []string {
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// DiffMaps returns the top-level keys that differ between two maps.
// Returns added, modified, and removed keys, each sorted.
func DiffMaps(old, new Settings) (added, modified, removed []string) {
	for key, newVal := range new {
		if oldVal, exists := old[key]; exists {
			if !Equal(oldVal, newVal) {
				modified = append(modified, key)
			}
		} else {
			added = append(added, key)
		}
	}

	for key := range old {
		if _, exists := new[key]; !exists {
			removed = append(removed, key)
		}
	}

	sort.Strings(added)
	sort.Strings(modified)
	sort.Strings(removed)
	return added, modified, removed
}

// Equal compares two settings values structurally.
func Equal(a, b any) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}

	switch va := a.(type) {
	case map[string]any:
		vb, ok := b.(map[string]any)
		if !ok {
			return false
		}
		return mapsEqual(va, vb)
	case []any:
		vb, ok := b.([]any)
		if !ok {
			return false
		}
		return slicesEqual(va, vb)
	default:
		// == panics on non-comparable dynamic types.
		ta := reflect.TypeOf(a)
		return ta == reflect.TypeOf(b) && ta.Comparable() && a == b
	}
}

func mapsEqual(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, va := range a {
		vb, ok := b[k]
		if !ok || !Equal(va, vb) {
			return false
		}
	}
	return true
}

func slicesEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
