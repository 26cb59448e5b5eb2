package app

import (
	"go.uber.org/zap"

	"github.com/dshills/dirsettings/internal/config/layer"
)

// SettingsDiff lists the keys a reload changed on one session.
type SettingsDiff struct {
	ID       string
	Path     string
	Added    []string
	Modified []string
	Removed  []string
}

// Changed reports whether any key changed.
func (d SettingsDiff) Changed() bool {
	return len(d.Added)+len(d.Modified)+len(d.Removed) > 0
}

// Reload clears the cache, re-applies settings to every open session and
// returns the sessions whose settings changed, in open order.
func (a *App) Reload() []SettingsDiff {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reload()
}

// reload runs with a.mu held.
func (a *App) reload() []SettingsDiff {
	sessions := a.workspace.Sessions()
	before := make([]map[string]any, len(sessions))
	for i, s := range sessions {
		before[i] = s.MapSettings().Snapshot()
	}

	a.applicator.Reload(a.workspace)

	var diffs []SettingsDiff
	for i, s := range sessions {
		added, modified, removed := layer.DiffMaps(before[i], s.MapSettings().Snapshot())
		d := SettingsDiff{
			ID:       s.ID(),
			Path:     s.Path(),
			Added:    added,
			Modified: modified,
			Removed:  removed,
		}
		if !d.Changed() {
			continue
		}
		a.logger.Info("session settings changed",
			zap.String("file", d.Path),
			zap.Strings("added", d.Added),
			zap.Strings("modified", d.Modified),
			zap.Strings("removed", d.Removed))
		diffs = append(diffs, d)
	}
	return diffs
}
