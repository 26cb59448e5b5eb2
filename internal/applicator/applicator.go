// Package applicator applies resolved directory settings to editing sessions.
//
// Apply looks up the merged settings for a session's directory, expands the
// file and project placeholders, and writes every key to the session's own
// settings. A value equal to the erase marker removes the key instead.
// Sessions that set the opt-out key to false are left alone.
package applicator

import (
	"path/filepath"

	"go.uber.org/zap"

	"github.com/dshills/dirsettings/internal/config/layer"
	"github.com/dshills/dirsettings/internal/config/notify"
	"github.com/dshills/dirsettings/internal/config/placeholder"
	"github.com/dshills/dirsettings/internal/session"
)

const (
	// DefaultEraseMarker is the value that means "unset this key".
	DefaultEraseMarker = "#ERASE#"

	// DefaultOptOutKey is the session setting that disables directory
	// settings when set to false.
	DefaultOptOutKey = "directory_settings"
)

// Resolver provides merged settings. *resolver.Resolver implements it.
type Resolver interface {
	// ResolveFile returns the merged settings for the directory of path.
	ResolveFile(path string) layer.Settings
	// Invalidate clears cached settings.
	Invalidate()
	// Filename returns the settings file name.
	Filename() string
}

// Applicator applies directory settings to sessions.
type Applicator struct {
	resolver    Resolver
	notifier    *notify.Notifier
	logger      *zap.Logger
	eraseMarker string
	optOutKey   string
}

// Option configures an Applicator.
type Option func(*Applicator)

// WithNotifier publishes every applied change to n.
func WithNotifier(n *notify.Notifier) Option {
	return func(a *Applicator) {
		a.notifier = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Applicator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithEraseMarker overrides the erase marker literal.
func WithEraseMarker(marker string) Option {
	return func(a *Applicator) {
		if marker != "" {
			a.eraseMarker = marker
		}
	}
}

// WithOptOutKey overrides the opt-out setting key.
func WithOptOutKey(key string) Option {
	return func(a *Applicator) {
		if key != "" {
			a.optOutKey = key
		}
	}
}

// New creates an Applicator backed by r.
func New(r Resolver, opts ...Option) *Applicator {
	a := &Applicator{
		resolver:    r,
		logger:      zap.NewNop(),
		eraseMarker: DefaultEraseMarker,
		optOutKey:   DefaultOptOutKey,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.Named("applicator")
	return a
}

// Apply applies the directory settings for t's path to t's settings.
func (a *Applicator) Apply(t session.Target) Report {
	path := t.Path()
	report := Report{Target: path}

	if path == "" {
		report.Skipped = SkipNoPath
		return report
	}

	settings := t.Settings()
	if a.optedOut(settings) {
		report.Skipped = SkipOptOut
		a.logger.Debug("session opted out", zap.String("file", path))
		return report
	}

	resolved := a.resolver.ResolveFile(path)
	if len(resolved) == 0 {
		report.Skipped = SkipEmpty
		return report
	}

	vars := placeholder.ForTarget(absPath(path), absPath(t.ProjectPath()))
	expanded := placeholder.WalkMap(resolved, vars)

	var batch *notify.Batch
	if a.notifier != nil {
		batch = a.notifier.NewBatch()
	}

	for _, key := range layer.Keys(expanded) {
		value := expanded[key]
		old, had := settings.Get(key)

		if a.isEraseMarker(value) {
			if !had {
				continue
			}
			settings.Erase(key)
			report.Erased = append(report.Erased, key)
			if batch != nil {
				batch.Add(notify.Change{Type: notify.ChangeErase, Target: path, Key: key, OldValue: old})
			}
			continue
		}

		settings.Set(key, value)
		report.Set = append(report.Set, key)
		if batch != nil {
			batch.Add(notify.Change{Type: notify.ChangeSet, Target: path, Key: key, OldValue: old, NewValue: value})
		}
	}

	if batch != nil {
		batch.Commit()
	}

	a.logger.Debug("applied directory settings",
		zap.String("file", path),
		zap.Int("set", len(report.Set)),
		zap.Int("erased", len(report.Erased)))

	return report
}

// ReloadAll applies settings to every target that has a path.
func (a *Applicator) ReloadAll(targets []session.Target) []Report {
	reports := make([]Report, 0, len(targets))
	for _, t := range targets {
		if t.Path() == "" {
			continue
		}
		reports = append(reports, a.Apply(t))
	}
	return reports
}

// OnOpened handles a target being opened.
func (a *Applicator) OnOpened(t session.Target) Report {
	return a.Apply(t)
}

// OnSaved handles a target being saved. Saving a settings file invalidates
// the cache and re-applies settings to every open target; saving any other
// file does nothing and returns nil.
func (a *Applicator) OnSaved(t session.Target, host session.Host) []Report {
	if !a.IsSettingsFile(t.Path()) {
		return nil
	}
	a.logger.Info("settings file saved", zap.String("file", t.Path()))
	return a.Reload(host)
}

// Reload clears the cache and re-applies settings to every open target.
func (a *Applicator) Reload(host session.Host) []Report {
	a.ClearCache()
	reports := a.ReloadAll(host.Targets())
	if a.notifier != nil {
		a.notifier.NotifyReload()
	}
	return reports
}

// ClearCache clears the resolved settings cache without re-applying.
func (a *Applicator) ClearCache() {
	a.resolver.Invalidate()
	if a.notifier != nil {
		a.notifier.NotifyInvalidate()
	}
}

// IsSettingsFile reports whether path names a directory settings file.
func (a *Applicator) IsSettingsFile(path string) bool {
	return path != "" && filepath.Base(path) == a.resolver.Filename()
}

// optedOut reports whether settings explicitly disable directory settings.
// Only a boolean false counts; an absent key means apply.
func (a *Applicator) optedOut(settings session.Settings) bool {
	v, ok := settings.Get(a.optOutKey)
	if !ok {
		return false
	}
	enabled, isBool := v.(bool)
	return isBool && !enabled
}

// absPath makes path absolute the way the resolver does. Empty stays empty.
func absPath(path string) string {
	if path == "" {
		return ""
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

func (a *Applicator) isEraseMarker(value any) bool {
	s, ok := value.(string)
	return ok && s == a.eraseMarker
}
