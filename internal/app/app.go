// Package app owns the in-memory application state: the active habit list,
// today's completions, and the merged settings map. Storage and stats stay
// stateless; every mutation goes through the store and then refreshes the
// snapshot.
package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/julianstephens/seedjournal/internal/errors"
	"github.com/julianstephens/seedjournal/internal/models"
	"github.com/julianstephens/seedjournal/internal/stats"
	"github.com/julianstephens/seedjournal/internal/storage"
	"github.com/julianstephens/seedjournal/internal/utils"
	"github.com/julianstephens/seedjournal/internal/validation"
)

// statsWindowDays bounds the completion history consulted when recomputing
// a habit's cached streak counters.
const statsWindowDays = 365

type App struct {
	Store storage.Provider

	Habits           []models.Habit
	TodayCompletions []models.Completion
	Settings         map[string]any
}

func New(store storage.Provider) *App {
	return &App{
		Store:    store,
		Settings: models.DefaultSettings(),
	}
}

// Load refreshes the full in-memory snapshot from storage.
func (a *App) Load() error {
	habits, err := a.Store.GetHabits()
	if err != nil {
		return err
	}
	a.Habits = habits

	completions, err := a.Store.GetCompletionsForDate(utils.Today())
	if err != nil {
		return err
	}
	a.TodayCompletions = completions

	settings, err := a.Store.GetAllSettings()
	if err != nil {
		return err
	}
	a.Settings = models.ApplyDefaultSettings(models.SettingsToMap(settings))

	return nil
}

// CreateHabit validates and persists a new habit. The id, timestamps, and
// zeroed stat counters are assigned here, not by the caller.
func (a *App) CreateHabit(habit models.Habit) (models.Habit, error) {
	habit.Name = strings.TrimSpace(habit.Name)
	if habit.Target == 0 {
		habit.Target = 1
	}
	if err := validation.CheckHabit(habit); err != nil {
		return models.Habit{}, err
	}

	now := time.Now()
	habit.ID = uuid.NewString()
	habit.CreatedAt = now
	habit.UpdatedAt = now
	habit.IsActive = true
	habit.DeletedAt = nil
	habit.StreakCount = 0
	habit.TotalCompletions = 0
	habit.BestStreak = 0

	if err := a.Store.SaveHabit(habit); err != nil {
		return models.Habit{}, err
	}

	return habit, a.refreshHabits()
}

// CreateHabitFromTemplate copies a template's fields into a new habit.
func (a *App) CreateHabitFromTemplate(template models.HabitTemplate) (models.Habit, error) {
	return a.CreateHabit(models.Habit{
		Name:        template.Name,
		Description: template.Description,
		Category:    template.Category,
		Icon:        template.Icon,
		Color:       template.Color,
		Frequency:   template.Frequency,
		Target:      template.Target,
		Unit:        template.Unit,
	})
}

// UpdateHabit validates and persists changes to an existing habit. The
// creation timestamp and cached stat counters are preserved from the stored
// record; updating a missing habit fails with a not-found error.
func (a *App) UpdateHabit(habit models.Habit) (models.Habit, error) {
	habit.Name = strings.TrimSpace(habit.Name)
	if err := validation.CheckHabit(habit); err != nil {
		return models.Habit{}, err
	}

	existing, err := a.Store.GetHabit(habit.ID)
	if err != nil {
		return models.Habit{}, err
	}

	habit.CreatedAt = existing.CreatedAt
	habit.IsActive = existing.IsActive
	habit.DeletedAt = existing.DeletedAt
	habit.StreakCount = existing.StreakCount
	habit.TotalCompletions = existing.TotalCompletions
	habit.BestStreak = existing.BestStreak
	habit.UpdatedAt = time.Now()

	if err := a.Store.SaveHabit(habit); err != nil {
		return models.Habit{}, err
	}

	return habit, a.refreshHabits()
}

// DeleteHabit soft-deletes a habit. Unknown ids are a no-op.
func (a *App) DeleteHabit(id string) error {
	if err := a.Store.DeleteHabit(id); err != nil {
		return err
	}
	return a.refreshHabits()
}

// ToggleCompletion flips a habit's completion for a date and recomputes the
// habit's cached streak counters. It returns true when the habit is now
// completed on that date.
func (a *App) ToggleCompletion(habitID, date string) (bool, error) {
	if _, err := a.Store.GetHabit(habitID); err != nil {
		return false, err
	}

	_, completed, err := a.Store.ToggleCompletion(habitID, date)
	if err != nil {
		return false, err
	}

	if err := a.updateHabitStats(habitID); err != nil {
		return completed, err
	}

	completions, err := a.Store.GetCompletionsForDate(utils.Today())
	if err != nil {
		return completed, err
	}
	a.TodayCompletions = completions

	return completed, a.refreshHabits()
}

// updateHabitStats recomputes a habit's cached counters from the trailing
// year of completions and persists them.
func (a *App) updateHabitStats(habitID string) error {
	habit, err := a.Store.GetHabit(habitID)
	if err != nil {
		return err
	}

	today := time.Now()
	start, end := utils.DateRange(today, statsWindowDays)
	completions, err := a.Store.GetCompletions(habitID, start, end)
	if err != nil {
		return err
	}

	habit.TotalCompletions = len(completions)
	habit.StreakCount = stats.Streak(completions, habitID, today)
	if habit.StreakCount > habit.BestStreak {
		habit.BestStreak = habit.StreakCount
	}
	habit.UpdatedAt = today

	return a.Store.SaveHabit(habit)
}

// UpdateSettings persists the given keys and refreshes the merged map.
func (a *App) UpdateSettings(values map[string]any) error {
	for key, value := range values {
		if err := a.Store.SaveSetting(key, value); err != nil {
			return err
		}
	}

	settings, err := a.Store.GetAllSettings()
	if err != nil {
		return err
	}
	a.Settings = models.ApplyDefaultSettings(models.SettingsToMap(settings))

	return nil
}

// Export returns the full dataset as a portable payload.
func (a *App) Export() (models.Export, error) {
	return a.Store.ExportData()
}

// Import replaces the collections present in the payload and reloads the
// snapshot. Payloads carrying none of the recognized collections are
// rejected before anything is touched.
func (a *App) Import(payload models.Export) error {
	if !payload.HasAnyCollection() {
		return apperrors.ErrMalformedImport
	}

	if err := a.Store.ImportData(payload); err != nil {
		return fmt.Errorf("failed to import data: %w", err)
	}

	return a.Load()
}

// Reset wipes all habits, completions, and settings.
func (a *App) Reset() error {
	if err := a.Store.ClearData(); err != nil {
		return err
	}
	return a.Load()
}

func (a *App) refreshHabits() error {
	habits, err := a.Store.GetHabits()
	if err != nil {
		return err
	}
	a.Habits = habits
	return nil
}
