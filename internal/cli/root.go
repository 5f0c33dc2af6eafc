// Package cli holds the kong command tree. Commands receive a shared
// Context and do their work through the app state container, keeping the
// presentation layer thin.
package cli

import (
	"fmt"
	"strings"

	"github.com/julianstephens/seedjournal/internal/app"
	"github.com/julianstephens/seedjournal/internal/backup"
	"github.com/julianstephens/seedjournal/internal/logger"
	"github.com/julianstephens/seedjournal/internal/models"
	"github.com/julianstephens/seedjournal/internal/storage"
)

type Context struct {
	Store storage.Provider
	App   *app.App
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	path := c.Store.GetConfigPath()
	if strings.HasPrefix(path, "postgres://") || strings.HasPrefix(path, "postgresql://") ||
		strings.HasSuffix(path, ".json") {
		// File backups only make sense for the SQLite backend.
		return
	}

	mgr := backup.NewManager(path)
	if _, err := mgr.Create(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// ResolveHabit finds an active habit by name (case-insensitive) or id.
func (c *Context) ResolveHabit(nameOrID string) (models.Habit, error) {
	habits, err := c.Store.GetHabits()
	if err != nil {
		return models.Habit{}, err
	}

	for _, h := range habits {
		if h.ID == nameOrID || strings.EqualFold(h.Name, nameOrID) {
			return h, nil
		}
	}

	return models.Habit{}, fmt.Errorf("habit %q not found", nameOrID)
}
