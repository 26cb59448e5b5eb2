// Package resolver computes the effective directory settings for a path.
//
// The settings of a directory are its own settings document laid over the
// resolved settings of its parent, all the way up to the file system root.
// Results are cached per directory until Invalidate is called.
//
// Loading never fails: a missing document, an unreadable one, or one that
// does not parse contributes no settings. Parse failures are reported through
// the logger and the optional diagnostics callback.
//
// A Resolver is not safe for concurrent use; callers serialize access.
package resolver

import (
	"errors"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/dshills/dirsettings/internal/config/layer"
	"github.com/dshills/dirsettings/internal/config/loader"
	"github.com/dshills/dirsettings/internal/config/placeholder"
)

// DiagnosticFunc receives settings documents that could not be used.
type DiagnosticFunc func(path string, err error)

// Stats reports resolver activity since creation.
type Stats struct {
	Entries     int
	Hits        int64
	Misses      int64
	Loads       int64
	ReadErrors  int64
	ParseErrors int64
}

// Resolver resolves and caches directory settings.
type Resolver struct {
	loader      *loader.Loader
	cache       *Cache
	logger      *zap.Logger
	diagnostics DiagnosticFunc
	stats       Stats
}

type options struct {
	filename    string
	fs          loader.FileSystem
	root        string
	logger      *zap.Logger
	diagnostics DiagnosticFunc
}

// Option configures a Resolver.
type Option func(*options)

// WithFilename sets the settings file name looked up in each directory.
func WithFilename(name string) Option {
	return func(o *options) {
		o.filename = name
	}
}

// WithFileSystem sets the file system settings are read from.
func WithFileSystem(fsys loader.FileSystem) Option {
	return func(o *options) {
		o.fs = fsys
	}
}

// WithRoot overrides the directory the cache is seeded with.
func WithRoot(root string) Option {
	return func(o *options) {
		o.root = root
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithDiagnostics sets a callback for malformed settings documents.
func WithDiagnostics(fn DiagnosticFunc) Option {
	return func(o *options) {
		o.diagnostics = fn
	}
}

// New creates a Resolver with an empty cache.
func New(opts ...Option) *Resolver {
	o := options{
		filename: loader.DefaultFilename,
		root:     RootDir,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	// The document may refer to its own directory as $settings_path.
	transform := func(dir string, data []byte) []byte {
		return placeholder.ExpandBytes(data, placeholder.ForSettingsDir(dir))
	}

	return &Resolver{
		loader:      loader.New(o.filename, loader.WithFileSystem(o.fs), loader.WithTransform(transform)),
		cache:       NewCache(o.root),
		logger:      o.logger.Named("resolver"),
		diagnostics: o.diagnostics,
	}
}

// Filename returns the settings file name.
func (r *Resolver) Filename() string {
	return r.loader.Filename()
}

// LoadSettingsFile returns the settings defined strictly in dir.
// It returns an empty map if dir has no usable settings document.
func (r *Resolver) LoadSettingsFile(dir string) layer.Settings {
	return r.loadLayer(normalize(dir)).Data
}

// Resolve returns the merged settings for dir, from the root down.
// The result is shared with the cache and must not be modified.
func (r *Resolver) Resolve(dir string) layer.Settings {
	return r.resolve(normalize(dir))
}

// ResolveFile returns the merged settings for the directory containing path.
func (r *Resolver) ResolveFile(path string) layer.Settings {
	return r.Resolve(filepath.Dir(normalize(path)))
}

// Invalidate clears the cache so the next Resolve re-reads from disk.
func (r *Resolver) Invalidate() {
	r.cache.Reset()
	r.logger.Debug("cache invalidated")
}

// Explain reports, for each key resolved for dir, the settings file that
// supplied its value.
func (r *Resolver) Explain(dir string) map[string]string {
	dir = normalize(dir)
	settings := r.resolve(dir)

	origins := make(map[string]string, len(settings))
	for current := dir; ; {
		if own, ok := r.cache.Layer(current); ok {
			for key := range own.Data {
				if _, seen := origins[key]; !seen {
					origins[key] = own.Path
				}
			}
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	return origins
}

// Stats returns a snapshot of resolver counters.
func (r *Resolver) Stats() Stats {
	s := r.stats
	s.Entries = r.cache.Len()
	return s
}

func (r *Resolver) resolve(dir string) layer.Settings {
	if settings, ok := r.cache.Lookup(dir); ok {
		r.stats.Hits++
		return settings
	}
	r.stats.Misses++

	own := r.loadLayer(dir)
	settings := own.Data

	if parent := filepath.Dir(dir); parent != dir {
		settings = layer.Overlay(r.resolve(parent), own.Data)
	}

	r.cache.Store(dir, settings, own)
	return settings
}

// loadLayer reads the settings document of dir. Read and parse failures
// yield an empty layer.
func (r *Resolver) loadLayer(dir string) *layer.Layer {
	data, err := r.loader.LoadDir(dir)
	if err != nil {
		r.report(err)
		return layer.NewLayer(dir)
	}
	if data == nil {
		return layer.NewLayer(dir)
	}

	r.stats.Loads++
	r.logger.Debug("loaded settings file",
		zap.String("file", r.loader.Path(dir)),
		zap.Stringer("format", r.loader.Format()),
		zap.Int("keys", len(data)))
	return layer.NewLayerWithData(dir, r.loader.Path(dir), data)
}

func (r *Resolver) report(err error) {
	var (
		parseErr *loader.ParseError
		readErr  *loader.ReadError
	)
	switch {
	case errors.As(err, &parseErr):
		r.stats.ParseErrors++
		r.logger.Warn("ignoring malformed settings file",
			zap.String("file", parseErr.Path),
			zap.Error(err))
		if r.diagnostics != nil {
			r.diagnostics(parseErr.Path, err)
		}
	case errors.As(err, &readErr):
		r.stats.ReadErrors++
		r.logger.Debug("settings file unreadable",
			zap.String("file", readErr.Path),
			zap.Error(readErr.Err))
	default:
		r.stats.ReadErrors++
		r.logger.Error("loading settings file", zap.Error(err))
	}
}

// normalize makes path absolute and clean. If the working directory is
// unavailable the path is only cleaned.
func normalize(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}
