package models

import (
	"time"

	"github.com/julianstephens/seedjournal/internal/constants"
)

// Setting is a single named configuration value. Values are arbitrary
// JSON-serializable scalars or objects.
type Setting struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// Export is the on-disk backup payload. Habits includes soft-deleted
// records; Settings is the full key/value list.
type Export struct {
	Habits      []Habit      `json:"habits"`
	Completions []Completion `json:"completions"`
	Settings    []Setting    `json:"settings"`
	ExportedAt  time.Time    `json:"exportedAt"`
	Version     int          `json:"version"`
}

// NewExport assembles an export payload stamped with the current time and
// payload version.
func NewExport(habits []Habit, completions []Completion, settings []Setting) Export {
	if habits == nil {
		habits = []Habit{}
	}
	if completions == nil {
		completions = []Completion{}
	}
	if settings == nil {
		settings = []Setting{}
	}
	return Export{
		Habits:      habits,
		Completions: completions,
		Settings:    settings,
		ExportedAt:  time.Now(),
		Version:     constants.SchemaVersion,
	}
}

// HasAnyCollection reports whether the payload carries at least one of the
// recognized collections. Payloads with none are rejected as malformed.
func (e Export) HasAnyCollection() bool {
	return e.Habits != nil || e.Completions != nil || e.Settings != nil
}

// DefaultSettings returns the documented defaults applied when a key is
// absent from storage.
func DefaultSettings() map[string]any {
	return map[string]any{
		constants.SettingTheme:          constants.DefaultTheme,
		constants.SettingNotifications:  constants.DefaultNotifications,
		constants.SettingFirstDayOfWeek: constants.DefaultFirstDayOfWeek,
		constants.SettingReminderTime:   constants.DefaultReminderTime,
	}
}

// SettingsToMap flattens a settings list to a key/value map.
func SettingsToMap(settings []Setting) map[string]any {
	m := make(map[string]any, len(settings))
	for _, s := range settings {
		m[s.Key] = s.Value
	}
	return m
}

// ApplyDefaultSettings fills in documented defaults for any missing keys.
func ApplyDefaultSettings(settings map[string]any) map[string]any {
	merged := DefaultSettings()
	for k, v := range settings {
		merged[k] = v
	}
	return merged
}
