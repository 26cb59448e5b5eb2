package app

import (
	"sort"

	"go.uber.org/zap"
)

// Command names.
const (
	CommandReload     = "reload_directory_settings"
	CommandClearCache = "clear_directory_settings_cache"
)

// Command is a named host command. It runs with the app lock held.
type Command func(a *App)

func (a *App) registerCommands() {
	a.commands = map[string]Command{
		CommandReload: func(a *App) {
			diffs := a.reload()
			a.logger.Info("directory settings reloaded", zap.Int("changed", len(diffs)))
		},
		CommandClearCache: func(a *App) {
			a.applicator.ClearCache()
			a.logger.Info("directory settings cache cleared")
		},
	}
}

// Commands returns the registered command names, sorted.
func (a *App) Commands() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	names := make([]string, 0, len(a.commands))
	for name := range a.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute runs the named command.
func (a *App) Execute(name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	cmd, ok := a.commands[name]
	if !ok {
		return NewOperationError("execute", name, ErrUnknownCommand)
	}
	cmd(a)
	return nil
}
