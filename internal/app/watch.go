package app

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/dshills/dirsettings/internal/config/watcher"
)

// StartWatching watches dirs, and everything below them, for settings files
// changed by other programs. A change is handled like saving a settings file.
func (a *App) StartWatching(ctx context.Context, dirs ...string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrShutdown
	}
	if a.watcher != nil {
		return ErrAlreadyWatching
	}

	w, err := watcher.New(a.opts.SettingsFile,
		watcher.WithDebounce(a.opts.Debounce),
		watcher.WithLogger(a.logger))
	if err != nil {
		return NewOperationError("watch", "", err).WithContext("creating watcher")
	}
	for _, dir := range dirs {
		if err := w.WatchTree(dir); err != nil {
			_ = w.Close()
			return NewOperationError("watch", dir, err).WithContext("adding directory tree")
		}
	}
	w.OnChange(a.onSettingsChanged)

	runCtx, cancel := context.WithCancel(ctx)
	a.watcher = w
	a.cancel = cancel
	a.watchErr = make(chan error, 1)

	go func() {
		a.watchErr <- w.Run(runCtx)
	}()

	a.logger.Info("watching for settings changes", zap.Strings("dirs", w.WatchedDirs()))
	return nil
}

func (a *App) onSettingsChanged(event watcher.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return
	}
	a.logger.Info("settings file changed on disk",
		zap.String("file", event.Path),
		zap.Stringer("op", event.Op))
	a.reload()
}

// Shutdown stops the watcher, if any, and closes the notifier.
// It is safe to call more than once.
func (a *App) Shutdown() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	w, cancel, errCh := a.watcher, a.cancel, a.watchErr
	a.mu.Unlock()

	var err error
	if w != nil {
		cancel()
		if runErr := <-errCh; runErr != nil && !errors.Is(runErr, context.Canceled) {
			err = runErr
		}
		err = errors.Join(err, w.Close())
	}
	a.notifier.Close()
	return err
}
