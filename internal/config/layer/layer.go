// Package layer provides the settings maps that directory settings are built from.
//
// A Layer is one directory's own settings document. Resolved settings are
// produced by overlaying a directory's layer on top of its parent's resolved
// settings. The overlay is shallow: a child's top-level key replaces the
// parent's value for that key outright, nested mappings included.
package layer

// Settings is a settings mapping. Values are scalars, []any or map[string]any.
type Settings = map[string]any

// Layer represents the settings document of a single directory.
type Layer struct {
	// Dir is the directory the layer belongs to.
	Dir string

	// Path is the settings file path (if one was found).
	Path string

	// Data holds the directory's own top-level settings.
	Data Settings
}

// NewLayer creates an empty layer for dir.
func NewLayer(dir string) *Layer {
	return &Layer{
		Dir:  dir,
		Data: make(Settings),
	}
}

// NewLayerWithData creates a layer with initial data.
// A nil data map is replaced by an empty one.
func NewLayerWithData(dir, path string, data Settings) *Layer {
	if data == nil {
		data = make(Settings)
	}
	return &Layer{
		Dir:  dir,
		Path: path,
		Data: data,
	}
}

// Clone creates a deep copy of a settings map.
func Clone(src Settings) Settings {
	if src == nil {
		return nil
	}

	dst := make(Settings, len(src))
	for key, val := range src {
		dst[key] = cloneValue(val)
	}

	return dst
}

// cloneSlice creates a deep copy of a slice.
func cloneSlice(src []any) []any {
	if src == nil {
		return nil
	}

	dst := make([]any, len(src))
	for i, val := range src {
		dst[i] = cloneValue(val)
	}

	return dst
}

// cloneValue creates a deep copy of a value.
func cloneValue(val any) any {
	switch v := val.(type) {
	case map[string]any:
		return Clone(v)
	case []any:
		return cloneSlice(v)
	default:
		return val
	}
}
