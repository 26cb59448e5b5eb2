package resolver

import (
	"path/filepath"

	"github.com/dshills/dirsettings/internal/config/layer"
)

// RootDir is the default cache seed: the file system root, whose settings
// are always empty.
var RootDir = string(filepath.Separator)

// entry is one resolved directory.
type entry struct {
	settings layer.Settings
	own      *layer.Layer
}

// Cache maps a directory to its resolved settings.
//
// Entries are added lazily and only removed by Reset. Directory counts are
// bounded by the part of the tree actually visited, so there is no eviction.
// Cache is not safe for concurrent use.
type Cache struct {
	root    string
	entries map[string]entry
}

// NewCache creates a cache seeded with an empty entry for root.
func NewCache(root string) *Cache {
	if root == "" {
		root = RootDir
	}
	c := &Cache{root: root}
	c.Reset()
	return c
}

// Lookup returns the resolved settings cached for dir.
func (c *Cache) Lookup(dir string) (layer.Settings, bool) {
	e, ok := c.entries[dir]
	return e.settings, ok
}

// Layer returns the directory's own settings layer cached for dir.
func (c *Cache) Layer(dir string) (*layer.Layer, bool) {
	e, ok := c.entries[dir]
	return e.own, ok
}

// Store records the resolved settings and own layer for dir.
func (c *Cache) Store(dir string, settings layer.Settings, own *layer.Layer) {
	c.entries[dir] = entry{settings: settings, own: own}
}

// Reset drops every entry and reseeds the root.
func (c *Cache) Reset() {
	c.entries = map[string]entry{
		c.root: {settings: layer.Settings{}, own: layer.NewLayer(c.root)},
	}
}

// Len returns the number of cached directories, root included.
func (c *Cache) Len() int {
	return len(c.entries)
}
