package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/julianstephens/seedjournal/internal/errors"
	"github.com/julianstephens/seedjournal/internal/models"
)

func setupTestSQLiteStore(t *testing.T) (*SQLiteStore, func()) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store := NewSQLiteStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize test store: %v", err)
	}

	cleanup := func() {
		store.Close()
	}

	return store, cleanup
}

func setupTestJSONStore(t *testing.T) (*JSONStore, func()) {
	path := filepath.Join(t.TempDir(), "test.json")

	store := NewJSONStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize test store: %v", err)
	}

	cleanup := func() {
		store.Close()
	}

	return store, cleanup
}

type backendFactory struct {
	name  string
	setup func(t *testing.T) (Provider, func())
}

// backends returns one factory per file-based backend. Every behavior test
// runs against all of them: the backends must be observably interchangeable.
func backends() []backendFactory {
	return []backendFactory{
		{
			name: "sqlite",
			setup: func(t *testing.T) (Provider, func()) {
				return setupTestSQLiteStore(t)
			},
		},
		{
			name: "json",
			setup: func(t *testing.T) (Provider, func()) {
				return setupTestJSONStore(t)
			},
		},
	}
}

func testHabit(name string, createdAt time.Time) models.Habit {
	return models.Habit{
		ID:        uuid.New().String(),
		Name:      name,
		Category:  "Academic",
		Frequency: "daily",
		Target:    1,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
		IsActive:  true,
	}
}

func TestHabitCRUD(t *testing.T) {
	for _, backend := range backends() {
		t.Run(backend.name, func(t *testing.T) {
			store, cleanup := backend.setup(t)
			defer cleanup()

			now := time.Now()
			first := testHabit("Morning reading", now.Add(-time.Hour))
			second := testHabit("Evening review", now)

			if err := store.SaveHabit(first); err != nil {
				t.Fatalf("failed to save habit: %v", err)
			}
			if err := store.SaveHabit(second); err != nil {
				t.Fatalf("failed to save habit: %v", err)
			}

			retrieved, err := store.GetHabit(first.ID)
			if err != nil {
				t.Fatalf("failed to get habit: %v", err)
			}
			if retrieved.Name != first.Name {
				t.Errorf("expected name %q, got %q", first.Name, retrieved.Name)
			}

			// Active habits come back in creation order
			habits, err := store.GetHabits()
			if err != nil {
				t.Fatalf("failed to list habits: %v", err)
			}
			if len(habits) != 2 {
				t.Fatalf("expected 2 habits, got %d", len(habits))
			}
			if habits[0].ID != first.ID || habits[1].ID != second.ID {
				t.Errorf("habits not in creation order: got %q, %q", habits[0].Name, habits[1].Name)
			}

			// SaveHabit is an upsert
			first.Name = "Morning deep reading"
			first.Target = 2
			if err := store.SaveHabit(first); err != nil {
				t.Fatalf("failed to update habit: %v", err)
			}
			updated, err := store.GetHabit(first.ID)
			if err != nil {
				t.Fatalf("failed to get updated habit: %v", err)
			}
			if updated.Name != "Morning deep reading" || updated.Target != 2 {
				t.Errorf("update not persisted: got name %q target %d", updated.Name, updated.Target)
			}

			habits, _ = store.GetHabits()
			if len(habits) != 2 {
				t.Errorf("upsert created a duplicate: got %d habits", len(habits))
			}

			// Missing ids surface a typed not-found error
			if _, err := store.GetHabit("no-such-id"); !apperrors.IsNotFound(err) {
				t.Errorf("expected not-found error, got %v", err)
			}
		})
	}
}

func TestHabitSoftDelete(t *testing.T) {
	for _, backend := range backends() {
		t.Run(backend.name, func(t *testing.T) {
			store, cleanup := backend.setup(t)
			defer cleanup()

			habit := testHabit("Journal", time.Now())
			if err := store.SaveHabit(habit); err != nil {
				t.Fatalf("failed to save habit: %v", err)
			}

			if err := store.DeleteHabit(habit.ID); err != nil {
				t.Fatalf("failed to delete habit: %v", err)
			}

			// Gone from the active list
			habits, _ := store.GetHabits()
			for _, h := range habits {
				if h.ID == habit.ID {
					t.Error("deleted habit should not appear in active list")
				}
			}
			if _, err := store.GetHabit(habit.ID); !apperrors.IsNotFound(err) {
				t.Errorf("expected not-found error for deleted habit, got %v", err)
			}

			// Retained with its tombstone
			all, _ := store.GetAllHabits(true)
			found := false
			for _, h := range all {
				if h.ID == habit.ID {
					found = true
					if h.DeletedAt == nil {
						t.Error("deleted habit should carry a deleted_at timestamp")
					}
					if h.IsActive {
						t.Error("deleted habit should not be active")
					}
				}
			}
			if !found {
				t.Error("deleted habit should be retained in the full list")
			}

			// Excluded when deleted records are not requested
			visible, _ := store.GetAllHabits(false)
			for _, h := range visible {
				if h.ID == habit.ID {
					t.Error("deleted habit should be excluded without includeDeleted")
				}
			}

			// Deleting again, or deleting an unknown id, is a no-op
			if err := store.DeleteHabit(habit.ID); err != nil {
				t.Errorf("repeat delete should be a no-op, got %v", err)
			}
			if err := store.DeleteHabit("no-such-id"); err != nil {
				t.Errorf("deleting a missing id should be a no-op, got %v", err)
			}
		})
	}
}

func TestCompletionUniquePerDay(t *testing.T) {
	for _, backend := range backends() {
		t.Run(backend.name, func(t *testing.T) {
			store, cleanup := backend.setup(t)
			defer cleanup()

			habit := testHabit("Stretch", time.Now())
			if err := store.SaveHabit(habit); err != nil {
				t.Fatalf("failed to save habit: %v", err)
			}

			first := models.Completion{
				ID:        uuid.New().String(),
				HabitID:   habit.ID,
				Date:      "2026-08-30",
				Value:     1,
				CreatedAt: time.Now(),
			}
			if err := store.SaveCompletion(first); err != nil {
				t.Fatalf("failed to save completion: %v", err)
			}

			// A second completion for the same day replaces the first
			second := first
			second.ID = uuid.New().String()
			second.Value = 3
			if err := store.SaveCompletion(second); err != nil {
				t.Fatalf("failed to save replacement completion: %v", err)
			}

			completions, err := store.GetCompletions(habit.ID, "2026-08-30", "2026-08-30")
			if err != nil {
				t.Fatalf("failed to get completions: %v", err)
			}
			if len(completions) != 1 {
				t.Fatalf("expected 1 completion per day, got %d", len(completions))
			}
			if completions[0].ID != second.ID || completions[0].Value != 3 {
				t.Errorf("expected replacement completion to win, got id %q value %d",
					completions[0].ID, completions[0].Value)
			}
		})
	}
}

func TestToggleCompletion(t *testing.T) {
	for _, backend := range backends() {
		t.Run(backend.name, func(t *testing.T) {
			store, cleanup := backend.setup(t)
			defer cleanup()

			habit := testHabit("Meditate", time.Now())
			if err := store.SaveHabit(habit); err != nil {
				t.Fatalf("failed to save habit: %v", err)
			}
			date := "2026-08-31"

			completion, completed, err := store.ToggleCompletion(habit.ID, date)
			if err != nil {
				t.Fatalf("failed to toggle on: %v", err)
			}
			if !completed {
				t.Error("first toggle should mark the habit completed")
			}
			if completion.HabitID != habit.ID || completion.Date != date {
				t.Errorf("unexpected completion: %+v", completion)
			}
			if completion.Value != 1 {
				t.Errorf("expected toggle value 1, got %d", completion.Value)
			}

			stored, _ := store.GetCompletionsForDate(date)
			if len(stored) != 1 {
				t.Fatalf("expected 1 stored completion, got %d", len(stored))
			}

			_, completed, err = store.ToggleCompletion(habit.ID, date)
			if err != nil {
				t.Fatalf("failed to toggle off: %v", err)
			}
			if completed {
				t.Error("second toggle should unmark the habit")
			}

			stored, _ = store.GetCompletionsForDate(date)
			if len(stored) != 0 {
				t.Fatalf("expected no stored completions after untoggle, got %d", len(stored))
			}

			// Toggling again flips it back on
			_, completed, err = store.ToggleCompletion(habit.ID, date)
			if err != nil {
				t.Fatalf("failed to toggle back on: %v", err)
			}
			if !completed {
				t.Error("third toggle should mark the habit completed again")
			}
		})
	}
}

func TestDeleteCompletionIdempotent(t *testing.T) {
	for _, backend := range backends() {
		t.Run(backend.name, func(t *testing.T) {
			store, cleanup := backend.setup(t)
			defer cleanup()

			habit := testHabit("Walk", time.Now())
			if err := store.SaveHabit(habit); err != nil {
				t.Fatalf("failed to save habit: %v", err)
			}

			completion := models.Completion{
				ID:        uuid.New().String(),
				HabitID:   habit.ID,
				Date:      "2026-08-29",
				Value:     1,
				CreatedAt: time.Now(),
			}
			if err := store.SaveCompletion(completion); err != nil {
				t.Fatalf("failed to save completion: %v", err)
			}

			if err := store.DeleteCompletion(completion.ID); err != nil {
				t.Fatalf("failed to delete completion: %v", err)
			}
			remaining, _ := store.GetAllCompletions()
			if len(remaining) != 0 {
				t.Errorf("expected completion to be removed, got %d", len(remaining))
			}

			if err := store.DeleteCompletion(completion.ID); err != nil {
				t.Errorf("repeat delete should be a no-op, got %v", err)
			}
			if err := store.DeleteCompletion("no-such-id"); err != nil {
				t.Errorf("deleting a missing id should be a no-op, got %v", err)
			}
		})
	}
}

func TestGetCompletionsRange(t *testing.T) {
	for _, backend := range backends() {
		t.Run(backend.name, func(t *testing.T) {
			store, cleanup := backend.setup(t)
			defer cleanup()

			habit := testHabit("Read", time.Now())
			other := testHabit("Run", time.Now())
			if err := store.SaveHabit(habit); err != nil {
				t.Fatalf("failed to save habit: %v", err)
			}
			if err := store.SaveHabit(other); err != nil {
				t.Fatalf("failed to save habit: %v", err)
			}

			dates := []string{"2026-08-25", "2026-08-27", "2026-08-29", "2026-08-31"}
			for _, d := range dates {
				c := models.Completion{
					ID:        uuid.New().String(),
					HabitID:   habit.ID,
					Date:      d,
					Value:     1,
					CreatedAt: time.Now(),
				}
				if err := store.SaveCompletion(c); err != nil {
					t.Fatalf("failed to save completion for %s: %v", d, err)
				}
			}
			// Same-range completion for a different habit must not leak in
			noise := models.Completion{
				ID:        uuid.New().String(),
				HabitID:   other.ID,
				Date:      "2026-08-27",
				Value:     1,
				CreatedAt: time.Now(),
			}
			if err := store.SaveCompletion(noise); err != nil {
				t.Fatalf("failed to save completion: %v", err)
			}

			// Bounds are inclusive, order is most recent first
			completions, err := store.GetCompletions(habit.ID, "2026-08-27", "2026-08-29")
			if err != nil {
				t.Fatalf("failed to get completions: %v", err)
			}
			if len(completions) != 2 {
				t.Fatalf("expected 2 completions in range, got %d", len(completions))
			}
			if completions[0].Date != "2026-08-29" || completions[1].Date != "2026-08-27" {
				t.Errorf("expected descending dates, got %q, %q", completions[0].Date, completions[1].Date)
			}

			forDate, err := store.GetCompletionsForDate("2026-08-27")
			if err != nil {
				t.Fatalf("failed to get completions for date: %v", err)
			}
			if len(forDate) != 2 {
				t.Errorf("expected 2 completions on 2026-08-27 across habits, got %d", len(forDate))
			}
		})
	}
}

func TestSettings(t *testing.T) {
	for _, backend := range backends() {
		t.Run(backend.name, func(t *testing.T) {
			store, cleanup := backend.setup(t)
			defer cleanup()

			// Defaults are seeded at init
			theme, err := store.GetSetting("theme", "")
			if err != nil {
				t.Fatalf("failed to get setting: %v", err)
			}
			if theme != "system" {
				t.Errorf("expected default theme %q, got %v", "system", theme)
			}

			// Missing keys fall back
			value, err := store.GetSetting("no-such-key", "fallback")
			if err != nil {
				t.Fatalf("failed to get missing setting: %v", err)
			}
			if value != "fallback" {
				t.Errorf("expected fallback value, got %v", value)
			}

			// Writes overwrite
			if err := store.SaveSetting("theme", "dark"); err != nil {
				t.Fatalf("failed to save setting: %v", err)
			}
			theme, _ = store.GetSetting("theme", "")
			if theme != "dark" {
				t.Errorf("expected updated theme %q, got %v", "dark", theme)
			}

			settings, err := store.GetAllSettings()
			if err != nil {
				t.Fatalf("failed to list settings: %v", err)
			}
			if len(settings) < 4 {
				t.Errorf("expected at least the 4 seeded settings, got %d", len(settings))
			}
			for i := 1; i < len(settings); i++ {
				if settings[i-1].Key >= settings[i].Key {
					t.Errorf("settings not sorted by key: %q before %q", settings[i-1].Key, settings[i].Key)
				}
			}
		})
	}
}

func TestTemplates(t *testing.T) {
	for _, backend := range backends() {
		t.Run(backend.name, func(t *testing.T) {
			store, cleanup := backend.setup(t)
			defer cleanup()

			templates, err := store.GetTemplates()
			if err != nil {
				t.Fatalf("failed to get templates: %v", err)
			}

			want := models.DefaultTemplates()
			if len(templates) != len(want) {
				t.Fatalf("expected %d templates, got %d", len(want), len(templates))
			}
			for i := range want {
				if templates[i].ID != want[i].ID || templates[i].Name != want[i].Name {
					t.Errorf("template %d mismatch: got %q/%q, want %q/%q",
						i, templates[i].ID, templates[i].Name, want[i].ID, want[i].Name)
				}
			}
		})
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	for _, backend := range backends() {
		t.Run(backend.name, func(t *testing.T) {
			store, cleanup := backend.setup(t)
			defer cleanup()

			kept := testHabit("Keep", time.Now().Add(-time.Hour))
			removed := testHabit("Remove", time.Now())
			if err := store.SaveHabit(kept); err != nil {
				t.Fatalf("failed to save habit: %v", err)
			}
			if err := store.SaveHabit(removed); err != nil {
				t.Fatalf("failed to save habit: %v", err)
			}
			if err := store.DeleteHabit(removed.ID); err != nil {
				t.Fatalf("failed to delete habit: %v", err)
			}
			if _, _, err := store.ToggleCompletion(kept.ID, "2026-08-31"); err != nil {
				t.Fatalf("failed to toggle completion: %v", err)
			}
			if err := store.SaveSetting("theme", "dark"); err != nil {
				t.Fatalf("failed to save setting: %v", err)
			}

			payload, err := store.ExportData()
			if err != nil {
				t.Fatalf("failed to export: %v", err)
			}
			// Exports carry soft-deleted habits and are stamped
			if len(payload.Habits) != 2 {
				t.Errorf("expected 2 habits in export (including deleted), got %d", len(payload.Habits))
			}
			if len(payload.Completions) != 1 {
				t.Errorf("expected 1 completion in export, got %d", len(payload.Completions))
			}
			if payload.Version == 0 || payload.ExportedAt.IsZero() {
				t.Error("export should be stamped with version and timestamp")
			}

			if err := store.ClearData(); err != nil {
				t.Fatalf("failed to clear: %v", err)
			}
			habits, _ := store.GetAllHabits(true)
			if len(habits) != 0 {
				t.Fatalf("expected empty store after clear, got %d habits", len(habits))
			}

			if err := store.ImportData(payload); err != nil {
				t.Fatalf("failed to import: %v", err)
			}

			habits, _ = store.GetAllHabits(true)
			if len(habits) != 2 {
				t.Errorf("expected 2 habits after import, got %d", len(habits))
			}
			active, _ := store.GetHabits()
			if len(active) != 1 || active[0].ID != kept.ID {
				t.Errorf("expected only the kept habit to be active after import")
			}
			completions, _ := store.GetAllCompletions()
			if len(completions) != 1 {
				t.Errorf("expected 1 completion after import, got %d", len(completions))
			}
			theme, _ := store.GetSetting("theme", "")
			if theme != "dark" {
				t.Errorf("expected imported theme %q, got %v", "dark", theme)
			}
		})
	}
}

func TestPartialImport(t *testing.T) {
	for _, backend := range backends() {
		t.Run(backend.name, func(t *testing.T) {
			store, cleanup := backend.setup(t)
			defer cleanup()

			habit := testHabit("Existing", time.Now())
			if err := store.SaveHabit(habit); err != nil {
				t.Fatalf("failed to save habit: %v", err)
			}
			if _, _, err := store.ToggleCompletion(habit.ID, "2026-08-31"); err != nil {
				t.Fatalf("failed to toggle completion: %v", err)
			}
			if err := store.SaveSetting("theme", "dark"); err != nil {
				t.Fatalf("failed to save setting: %v", err)
			}

			// A payload carrying only habits replaces habits and leaves the
			// other collections alone.
			replacement := testHabit("Imported", time.Now())
			payload := models.Export{
				Habits: []models.Habit{replacement},
			}
			if err := store.ImportData(payload); err != nil {
				t.Fatalf("failed to import: %v", err)
			}

			habits, _ := store.GetAllHabits(true)
			if len(habits) != 1 || habits[0].ID != replacement.ID {
				t.Errorf("expected habits to be replaced by the payload")
			}
			completions, _ := store.GetAllCompletions()
			if len(completions) != 1 {
				t.Errorf("expected completions to be preserved, got %d", len(completions))
			}
			theme, _ := store.GetSetting("theme", "")
			if theme != "dark" {
				t.Errorf("expected settings to be preserved, got theme %v", theme)
			}

			// An explicitly empty collection clears it
			if err := store.ImportData(models.Export{Completions: []models.Completion{}}); err != nil {
				t.Fatalf("failed to import empty completions: %v", err)
			}
			completions, _ = store.GetAllCompletions()
			if len(completions) != 0 {
				t.Errorf("expected completions cleared by empty collection, got %d", len(completions))
			}
		})
	}
}

func TestClearData(t *testing.T) {
	for _, backend := range backends() {
		t.Run(backend.name, func(t *testing.T) {
			store, cleanup := backend.setup(t)
			defer cleanup()

			habit := testHabit("Ephemeral", time.Now())
			if err := store.SaveHabit(habit); err != nil {
				t.Fatalf("failed to save habit: %v", err)
			}
			if _, _, err := store.ToggleCompletion(habit.ID, "2026-08-31"); err != nil {
				t.Fatalf("failed to toggle completion: %v", err)
			}

			if err := store.ClearData(); err != nil {
				t.Fatalf("failed to clear: %v", err)
			}

			habits, _ := store.GetAllHabits(true)
			completions, _ := store.GetAllCompletions()
			settings, _ := store.GetAllSettings()
			if len(habits) != 0 || len(completions) != 0 || len(settings) != 0 {
				t.Errorf("expected empty store after clear: %d habits, %d completions, %d settings",
					len(habits), len(completions), len(settings))
			}
		})
	}
}
