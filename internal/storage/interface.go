package storage

import "github.com/julianstephens/seedjournal/internal/models"

// Provider is the storage contract shared by every backend. Callers pick a
// backend at construction time and never branch on it afterwards: each
// operation behaves observably the same on SQLite, JSON, and Postgres.
//
// Failure semantics: writes propagate wrapped errors after a single attempt;
// bulk reads log the underlying error and degrade to an empty collection so a
// damaged store still renders an empty-but-working application.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Habits
	SaveHabit(models.Habit) error
	GetHabit(id string) (models.Habit, error)
	// GetHabits returns active, non-deleted habits in creation order.
	GetHabits() ([]models.Habit, error)
	// GetAllHabits returns every habit, optionally including soft-deleted ones.
	GetAllHabits(includeDeleted bool) ([]models.Habit, error)
	// DeleteHabit soft-deletes: the row is retained with deleted_at set and
	// is_active cleared. Deleting a missing or already-deleted id is a no-op.
	DeleteHabit(id string) error

	// Completions. At most one completion may exist per (habit, date) pair;
	// the backends enforce this, not just the callers.
	SaveCompletion(models.Completion) error
	// DeleteCompletion removes a completion permanently. Missing ids are a no-op.
	DeleteCompletion(id string) error
	// ToggleCompletion atomically flips the completion state for a habit on a
	// date: it records a completion if none exists, otherwise removes the
	// existing one. It returns the stored completion and true when the habit
	// is now completed on that date.
	ToggleCompletion(habitID, date string) (models.Completion, bool, error)
	// GetCompletions returns a habit's completions within the inclusive
	// [startDate, endDate] range, most recent first.
	GetCompletions(habitID, startDate, endDate string) ([]models.Completion, error)
	// GetCompletionsForDate returns all habits' completions on a single date.
	GetCompletionsForDate(date string) ([]models.Completion, error)
	GetAllCompletions() ([]models.Completion, error)

	// Settings
	SaveSetting(key string, value any) error
	// GetSetting returns the stored value for key, or fallback when the key
	// is absent or unreadable.
	GetSetting(key string, fallback any) (any, error)
	GetAllSettings() ([]models.Setting, error)

	// Templates are read-only seed data.
	GetTemplates() ([]models.HabitTemplate, error)

	// Bulk
	ExportData() (models.Export, error)
	// ImportData replaces only the collections present in the payload;
	// collections absent from the payload are left untouched.
	ImportData(models.Export) error
	// ClearData removes all habits, completions, and settings.
	ClearData() error

	// Utils
	GetConfigPath() string
}
