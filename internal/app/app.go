// Package app wires the directory settings engine to a host: it owns the
// resolver, the applicator, the open sessions and an optional watcher, and
// serializes every entry point the way an editor serializes its callbacks.
package app

import (
	"context"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/dshills/dirsettings/internal/applicator"
	"github.com/dshills/dirsettings/internal/config"
	"github.com/dshills/dirsettings/internal/config/loader"
	"github.com/dshills/dirsettings/internal/config/notify"
	"github.com/dshills/dirsettings/internal/config/resolver"
	"github.com/dshills/dirsettings/internal/config/watcher"
	"github.com/dshills/dirsettings/internal/session"
)

// App is the host facade around the settings engine.
type App struct {
	mu sync.Mutex

	opts       config.Options
	logger     *zap.Logger
	resolver   *resolver.Resolver
	applicator *applicator.Applicator
	workspace  *session.Workspace
	notifier   *notify.Notifier
	commands   map[string]Command

	watcher  *watcher.Watcher
	cancel   context.CancelFunc
	watchErr chan error
	closed   bool
}

// Option configures an App.
type Option func(*settings)

type settings struct {
	fs          loader.FileSystem
	logger      *zap.Logger
	diagnostics resolver.DiagnosticFunc
}

// WithFileSystem sets the file system settings files are read from.
func WithFileSystem(fsys loader.FileSystem) Option {
	return func(s *settings) {
		s.fs = fsys
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDiagnostics sets a callback for malformed settings files.
func WithDiagnostics(fn resolver.DiagnosticFunc) Option {
	return func(s *settings) {
		s.diagnostics = fn
	}
}

// New creates an App from validated options.
func New(opts config.Options, appOpts ...Option) (*App, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	s := settings{logger: zap.NewNop()}
	for _, opt := range appOpts {
		opt(&s)
	}

	notifier := notify.New()
	res := resolver.New(
		resolver.WithFilename(opts.SettingsFile),
		resolver.WithFileSystem(s.fs),
		resolver.WithLogger(s.logger),
		resolver.WithDiagnostics(s.diagnostics),
	)

	a := &App{
		opts:     opts,
		logger:   s.logger.Named("app"),
		resolver: res,
		applicator: applicator.New(res,
			applicator.WithNotifier(notifier),
			applicator.WithLogger(s.logger),
			applicator.WithEraseMarker(opts.EraseMarker),
			applicator.WithOptOutKey(opts.OptOutKey),
		),
		workspace: session.NewWorkspace(),
		notifier:  notifier,
	}
	a.registerCommands()

	return a, nil
}

// Options returns the options the app was built with.
func (a *App) Options() config.Options {
	return a.opts
}

// Notifier returns the change notifier.
func (a *App) Notifier() *notify.Notifier {
	return a.notifier
}

// Workspace returns the open sessions.
func (a *App) Workspace() *session.Workspace {
	return a.workspace
}

// Resolve returns the resolved settings for dir.
func (a *App) Resolve(dir string) map[string]any {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.resolver.Resolve(dir)
}

// Explain reports which settings file supplied each resolved key of dir.
func (a *App) Explain(dir string) map[string]string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.resolver.Explain(dir)
}

// Stats returns resolver counters.
func (a *App) Stats() resolver.Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.resolver.Stats()
}

// Open opens a session and applies its directory settings.
func (a *App) Open(path, project string, window int) (*session.Session, applicator.Report, error) {
	return a.OpenWithSettings(path, project, window, nil)
}

// OpenWithSettings is Open with initial session settings.
func (a *App) OpenWithSettings(path, project string, window int, initial map[string]any) (*session.Session, applicator.Report, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, err := a.workspace.Open(path, project, window, initial)
	if err != nil {
		return nil, applicator.Report{}, NewOperationError("open", path, err).WithContext("resolving path")
	}

	report := a.applicator.OnOpened(s)
	a.logger.Debug("session opened",
		zap.String("id", s.ID()),
		zap.String("file", s.Path()),
		zap.Stringer("skipped", report.Skipped))

	return s, report, nil
}

// Save fires the saved trigger for a session.
func (a *App) Save(id string) ([]applicator.Report, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, ok := a.workspace.Get(id)
	if !ok {
		return nil, NewOperationError("save", id, session.ErrSessionNotFound)
	}
	return a.applicator.OnSaved(s, a.workspace), nil
}

// SaveAs changes a session's path and fires the saved trigger.
func (a *App) SaveAs(id, path string) ([]applicator.Report, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, ok := a.workspace.Get(id)
	if !ok {
		return nil, NewOperationError("save as", id, session.ErrSessionNotFound)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, NewOperationError("save as", id, err).WithContext("resolving path")
	}
	s.SetPath(abs)
	return a.applicator.OnSaved(s, a.workspace), nil
}

// Close closes a session.
func (a *App) Close(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.workspace.Close(id); err != nil {
		return NewOperationError("close", id, err)
	}
	return nil
}
