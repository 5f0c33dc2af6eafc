package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/julianstephens/seedjournal/internal/errors"
	"github.com/julianstephens/seedjournal/internal/logger"
	"github.com/julianstephens/seedjournal/internal/models"
)

// document is the whole-file JSON layout of the fallback store. Every write
// rewrites the full document.
type document struct {
	Version     int                          `json:"version"`
	Habits      map[string]models.Habit      `json:"habits"`
	Completions map[string]models.Completion `json:"completions"` // keyed by completion id
	Settings    map[string]any               `json:"settings"`
}

// JSONStore is the key-value fallback backend, used when the configured
// storage path ends in .json. It holds the full dataset in memory and
// persists it as one JSON document per write.
type JSONStore struct {
	path  string
	store *document
}

func NewJSONStore(configPath string) *JSONStore {
	return &JSONStore{
		path: configPath,
	}
}

func (s *JSONStore) Init() error {
	// Create config directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}

	s.store = &document{
		Version:     1,
		Habits:      make(map[string]models.Habit),
		Completions: make(map[string]models.Completion),
		Settings:    models.DefaultSettings(),
	}

	return s.save()
}

func (s *JSONStore) Load() error {
	if s.store != nil {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run 'seedjournal init' first")
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	s.store = &document{}
	if err := json.Unmarshal(data, s.store); err != nil {
		s.store = nil
		return fmt.Errorf("failed to parse storage: %w", err)
	}

	// Ensure maps are initialized
	if s.store.Habits == nil {
		s.store.Habits = make(map[string]models.Habit)
	}
	if s.store.Completions == nil {
		s.store.Completions = make(map[string]models.Completion)
	}
	if s.store.Settings == nil {
		s.store.Settings = make(map[string]any)
	}

	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}

func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(s.store, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}

	return nil
}

func (s *JSONStore) notLoaded() bool {
	if s.store == nil {
		logger.Error("Storage not loaded", "path", s.path)
		return true
	}
	return false
}

// --- Habits ---

func (s *JSONStore) SaveHabit(habit models.Habit) error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}

	s.store.Habits[habit.ID] = habit
	return s.save()
}

func (s *JSONStore) GetHabit(id string) (models.Habit, error) {
	if s.store == nil {
		return models.Habit{}, fmt.Errorf("storage not loaded")
	}

	habit, ok := s.store.Habits[id]
	if !ok || habit.DeletedAt != nil {
		return models.Habit{}, fmt.Errorf("habit %s: %w", id, apperrors.ErrNotFound)
	}

	return habit, nil
}

func (s *JSONStore) GetHabits() ([]models.Habit, error) {
	if s.notLoaded() {
		return []models.Habit{}, nil
	}

	habits := []models.Habit{}
	for _, h := range s.store.Habits {
		if h.DeletedAt == nil && h.IsActive {
			habits = append(habits, h)
		}
	}
	sortHabitsByCreation(habits)

	return habits, nil
}

func (s *JSONStore) GetAllHabits(includeDeleted bool) ([]models.Habit, error) {
	if s.notLoaded() {
		return []models.Habit{}, nil
	}

	habits := []models.Habit{}
	for _, h := range s.store.Habits {
		if !includeDeleted && h.DeletedAt != nil {
			continue
		}
		habits = append(habits, h)
	}
	sortHabitsByCreation(habits)

	return habits, nil
}

func sortHabitsByCreation(habits []models.Habit) {
	sort.SliceStable(habits, func(i, j int) bool {
		return habits[i].CreatedAt.Before(habits[j].CreatedAt)
	})
}

func (s *JSONStore) DeleteHabit(id string) error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}

	habit, ok := s.store.Habits[id]
	if !ok || habit.DeletedAt != nil {
		// Deleting a missing or already-deleted habit is a no-op.
		return nil
	}

	now := time.Now()
	habit.DeletedAt = &now
	habit.IsActive = false
	habit.UpdatedAt = now
	s.store.Habits[id] = habit

	return s.save()
}

// --- Completions ---

func (s *JSONStore) SaveCompletion(completion models.Completion) error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}

	// One completion per (habit, date): drop any stale entry for the same
	// day carrying a different id.
	for id, c := range s.store.Completions {
		if c.HabitID == completion.HabitID && c.Date == completion.Date && id != completion.ID {
			delete(s.store.Completions, id)
		}
	}

	s.store.Completions[completion.ID] = completion
	return s.save()
}

func (s *JSONStore) DeleteCompletion(id string) error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}

	if _, ok := s.store.Completions[id]; !ok {
		return nil
	}
	delete(s.store.Completions, id)

	return s.save()
}

func (s *JSONStore) ToggleCompletion(habitID, date string) (models.Completion, bool, error) {
	if s.store == nil {
		return models.Completion{}, false, fmt.Errorf("storage not loaded")
	}

	for id, c := range s.store.Completions {
		if c.HabitID == habitID && c.Date == date {
			delete(s.store.Completions, id)
			if err := s.save(); err != nil {
				return models.Completion{}, false, err
			}
			return models.Completion{}, false, nil
		}
	}

	completion := models.Completion{
		ID:        uuid.NewString(),
		HabitID:   habitID,
		Date:      date,
		Value:     1,
		CreatedAt: time.Now(),
	}
	s.store.Completions[completion.ID] = completion
	if err := s.save(); err != nil {
		return models.Completion{}, false, err
	}

	return completion, true, nil
}

func (s *JSONStore) GetCompletions(habitID, startDate, endDate string) ([]models.Completion, error) {
	if s.notLoaded() {
		return []models.Completion{}, nil
	}

	completions := []models.Completion{}
	for _, c := range s.store.Completions {
		if c.HabitID == habitID && c.Date >= startDate && c.Date <= endDate {
			completions = append(completions, c)
		}
	}
	sort.SliceStable(completions, func(i, j int) bool {
		return completions[i].Date > completions[j].Date
	})

	return completions, nil
}

func (s *JSONStore) GetCompletionsForDate(date string) ([]models.Completion, error) {
	if s.notLoaded() {
		return []models.Completion{}, nil
	}

	completions := []models.Completion{}
	for _, c := range s.store.Completions {
		if c.Date == date {
			completions = append(completions, c)
		}
	}
	sort.SliceStable(completions, func(i, j int) bool {
		return completions[i].CreatedAt.Before(completions[j].CreatedAt)
	})

	return completions, nil
}

func (s *JSONStore) GetAllCompletions() ([]models.Completion, error) {
	if s.notLoaded() {
		return []models.Completion{}, nil
	}

	completions := make([]models.Completion, 0, len(s.store.Completions))
	for _, c := range s.store.Completions {
		completions = append(completions, c)
	}
	sort.SliceStable(completions, func(i, j int) bool {
		return completions[i].Date > completions[j].Date
	})

	return completions, nil
}

// --- Settings ---

func (s *JSONStore) SaveSetting(key string, value any) error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}

	s.store.Settings[key] = value
	return s.save()
}

func (s *JSONStore) GetSetting(key string, fallback any) (any, error) {
	if s.notLoaded() {
		return fallback, nil
	}

	value, ok := s.store.Settings[key]
	if !ok {
		return fallback, nil
	}
	return value, nil
}

func (s *JSONStore) GetAllSettings() ([]models.Setting, error) {
	if s.notLoaded() {
		return []models.Setting{}, nil
	}

	keys := make([]string, 0, len(s.store.Settings))
	for k := range s.store.Settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	settings := make([]models.Setting, 0, len(keys))
	for _, k := range keys {
		settings = append(settings, models.Setting{Key: k, Value: s.store.Settings[k]})
	}

	return settings, nil
}

// --- Templates ---

func (s *JSONStore) GetTemplates() ([]models.HabitTemplate, error) {
	// Templates are static seed data; the JSON document does not store them.
	return models.DefaultTemplates(), nil
}

// --- Bulk ---

func (s *JSONStore) ExportData() (models.Export, error) {
	if s.store == nil {
		return models.Export{}, fmt.Errorf("storage not loaded")
	}

	habits, err := s.GetAllHabits(true)
	if err != nil {
		return models.Export{}, fmt.Errorf("failed to export habits: %w", err)
	}
	completions, err := s.GetAllCompletions()
	if err != nil {
		return models.Export{}, fmt.Errorf("failed to export completions: %w", err)
	}
	settings, err := s.GetAllSettings()
	if err != nil {
		return models.Export{}, fmt.Errorf("failed to export settings: %w", err)
	}

	return models.NewExport(habits, completions, settings), nil
}

func (s *JSONStore) ImportData(payload models.Export) error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}

	// Replace only the collections the payload actually carries.
	if payload.Habits != nil {
		s.store.Habits = make(map[string]models.Habit, len(payload.Habits))
		for _, h := range payload.Habits {
			s.store.Habits[h.ID] = h
		}
	}
	if payload.Completions != nil {
		s.store.Completions = make(map[string]models.Completion, len(payload.Completions))
		for _, c := range payload.Completions {
			s.store.Completions[c.ID] = c
		}
	}
	if payload.Settings != nil {
		s.store.Settings = make(map[string]any, len(payload.Settings))
		for _, setting := range payload.Settings {
			s.store.Settings[setting.Key] = setting.Value
		}
	}

	return s.save()
}

func (s *JSONStore) ClearData() error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}

	s.store.Habits = make(map[string]models.Habit)
	s.store.Completions = make(map[string]models.Completion)
	s.store.Settings = make(map[string]any)

	return s.save()
}
