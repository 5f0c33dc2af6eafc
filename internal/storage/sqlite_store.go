package storage

import (
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/julianstephens/seedjournal/internal/constants"
	apperrors "github.com/julianstephens/seedjournal/internal/errors"
	"github.com/julianstephens/seedjournal/internal/logger"
	"github.com/julianstephens/seedjournal/internal/migration"
	"github.com/julianstephens/seedjournal/internal/models"
	"github.com/julianstephens/seedjournal/migrations"
	_ "modernc.org/sqlite"
)

// SQLiteStore is the primary durable backend, a single-file SQLite database.
type SQLiteStore struct {
	path string
	db   *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{
		path: path,
	}
}

func (s *SQLiteStore) Init() error {
	// Create config directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	if _, err := s.db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := s.runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return s.seedDefaultSettings()
}

func (s *SQLiteStore) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'seedjournal init' first")
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	runner := migration.NewRunner(s.db, s.migrationFS())
	return runner.ValidateVersion()
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) GetConfigPath() string {
	return s.path
}

func (s *SQLiteStore) migrationFS() fs.FS {
	sub, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		// The subtree is embedded at compile time; this cannot fail at runtime.
		panic(err)
	}
	return sub
}

func (s *SQLiteStore) runMigrations() error {
	runner := migration.NewRunner(s.db, s.migrationFS())
	_, err := runner.ApplyMigrations(func(msg string) {
		logger.Debug(msg)
	})
	return err
}

// seedDefaultSettings fills in documented defaults for any setting key not
// yet present, without overwriting user values.
func (s *SQLiteStore) seedDefaultSettings() error {
	for key, value := range models.DefaultSettings() {
		var exists int
		err := s.db.QueryRow("SELECT count(*) FROM settings WHERE key = ?", key).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check setting %s: %w", key, err)
		}
		if exists == 0 {
			if err := s.SaveSetting(key, value); err != nil {
				return err
			}
		}
	}
	return nil
}

// --- Habits ---

const habitColumns = "id, name, description, category, icon, color, frequency, target, unit, reminder_time, created_at, updated_at, is_active, deleted_at, streak_count, total_completions, best_streak"

func (s *SQLiteStore) SaveHabit(habit models.Habit) error {
	var deletedAt sql.NullString
	if habit.DeletedAt != nil {
		deletedAt = sql.NullString{String: habit.DeletedAt.Format(time.RFC3339), Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO habits (`+habitColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			category = excluded.category,
			icon = excluded.icon,
			color = excluded.color,
			frequency = excluded.frequency,
			target = excluded.target,
			unit = excluded.unit,
			reminder_time = excluded.reminder_time,
			updated_at = excluded.updated_at,
			is_active = excluded.is_active,
			deleted_at = excluded.deleted_at,
			streak_count = excluded.streak_count,
			total_completions = excluded.total_completions,
			best_streak = excluded.best_streak`,
		habit.ID, habit.Name, habit.Description, habit.Category, habit.Icon, habit.Color,
		string(habit.Frequency), habit.Target, habit.Unit, habit.ReminderTime,
		habit.CreatedAt.Format(time.RFC3339), habit.UpdatedAt.Format(time.RFC3339),
		boolToInt(habit.IsActive), deletedAt,
		habit.StreakCount, habit.TotalCompletions, habit.BestStreak)
	if err != nil {
		return fmt.Errorf("failed to save habit: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetHabit(id string) (models.Habit, error) {
	row := s.db.QueryRow(`SELECT `+habitColumns+` FROM habits WHERE id = ? AND deleted_at IS NULL`, id)

	h, err := scanHabit(row)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return models.Habit{}, fmt.Errorf("habit %s: %w", id, apperrors.ErrNotFound)
		}
		return models.Habit{}, err
	}
	return h, nil
}

func (s *SQLiteStore) GetHabits() ([]models.Habit, error) {
	return s.queryHabits("SELECT " + habitColumns + " FROM habits WHERE deleted_at IS NULL AND is_active = 1 ORDER BY created_at")
}

func (s *SQLiteStore) GetAllHabits(includeDeleted bool) ([]models.Habit, error) {
	query := "SELECT " + habitColumns + " FROM habits"
	if !includeDeleted {
		query += " WHERE deleted_at IS NULL"
	}
	query += " ORDER BY created_at"
	return s.queryHabits(query)
}

func (s *SQLiteStore) queryHabits(query string, args ...any) ([]models.Habit, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		logger.Error("Failed to read habits", "error", err)
		return []models.Habit{}, nil
	}
	defer rows.Close()

	habits := []models.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			logger.Error("Failed to read habits", "error", err)
			return []models.Habit{}, nil
		}
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Failed to read habits", "error", err)
		return []models.Habit{}, nil
	}

	return habits, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHabit(row rowScanner) (models.Habit, error) {
	var h models.Habit
	var frequency, createdAt, updatedAt string
	var deletedAt sql.NullString
	var isActive int

	err := row.Scan(&h.ID, &h.Name, &h.Description, &h.Category, &h.Icon, &h.Color,
		&frequency, &h.Target, &h.Unit, &h.ReminderTime,
		&createdAt, &updatedAt, &isActive, &deletedAt,
		&h.StreakCount, &h.TotalCompletions, &h.BestStreak)
	if err != nil {
		return models.Habit{}, err
	}

	h.Frequency = constants.Frequency(frequency)
	h.IsActive = isActive != 0

	h.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse created_at for habit %s: %w", h.ID, err)
	}
	h.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse updated_at for habit %s: %w", h.ID, err)
	}
	if deletedAt.Valid {
		t, err := time.Parse(time.RFC3339, deletedAt.String)
		if err != nil {
			return models.Habit{}, fmt.Errorf("failed to parse deleted_at for habit %s: %w", h.ID, err)
		}
		h.DeletedAt = &t
	}

	return h, nil
}

func (s *SQLiteStore) DeleteHabit(id string) error {
	// Soft delete; already-deleted or unknown ids are a no-op.
	_, err := s.db.Exec(`
		UPDATE habits SET deleted_at = ?, is_active = 0, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		time.Now().Format(time.RFC3339), time.Now().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	return nil
}

// --- Completions ---

func (s *SQLiteStore) SaveCompletion(completion models.Completion) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to save completion: %w", err)
	}
	defer tx.Rollback()

	// One completion per (habit, date): drop any stale row for the same day
	// carrying a different id before upserting.
	if _, err := tx.Exec(`DELETE FROM completions WHERE habit_id = ? AND date = ? AND id <> ?`,
		completion.HabitID, completion.Date, completion.ID); err != nil {
		return fmt.Errorf("failed to save completion: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT INTO completions (id, habit_id, date, value, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			habit_id = excluded.habit_id,
			date = excluded.date,
			value = excluded.value`,
		completion.ID, completion.HabitID, completion.Date, completion.Value,
		completion.CreatedAt.Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to save completion: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to save completion: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteCompletion(id string) error {
	if _, err := s.db.Exec("DELETE FROM completions WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete completion: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ToggleCompletion(habitID, date string) (models.Completion, bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return models.Completion{}, false, fmt.Errorf("failed to toggle completion: %w", err)
	}
	defer tx.Rollback()

	var existingID string
	err = tx.QueryRow("SELECT id FROM completions WHERE habit_id = ? AND date = ?", habitID, date).Scan(&existingID)
	switch {
	case err == nil:
		if _, err := tx.Exec("DELETE FROM completions WHERE id = ?", existingID); err != nil {
			return models.Completion{}, false, fmt.Errorf("failed to toggle completion: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return models.Completion{}, false, fmt.Errorf("failed to toggle completion: %w", err)
		}
		return models.Completion{}, false, nil

	case stderrors.Is(err, sql.ErrNoRows):
		completion := models.Completion{
			ID:        uuid.NewString(),
			HabitID:   habitID,
			Date:      date,
			Value:     1,
			CreatedAt: time.Now(),
		}
		if _, err := tx.Exec(`
			INSERT INTO completions (id, habit_id, date, value, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			completion.ID, completion.HabitID, completion.Date, completion.Value,
			completion.CreatedAt.Format(time.RFC3339)); err != nil {
			return models.Completion{}, false, fmt.Errorf("failed to toggle completion: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return models.Completion{}, false, fmt.Errorf("failed to toggle completion: %w", err)
		}
		return completion, true, nil

	default:
		return models.Completion{}, false, fmt.Errorf("failed to toggle completion: %w", err)
	}
}

func (s *SQLiteStore) GetCompletions(habitID, startDate, endDate string) ([]models.Completion, error) {
	return s.queryCompletions(`
		SELECT id, habit_id, date, value, created_at FROM completions
		WHERE habit_id = ? AND date >= ? AND date <= ?
		ORDER BY date DESC`, habitID, startDate, endDate)
}

func (s *SQLiteStore) GetCompletionsForDate(date string) ([]models.Completion, error) {
	return s.queryCompletions(`
		SELECT id, habit_id, date, value, created_at FROM completions
		WHERE date = ? ORDER BY created_at`, date)
}

func (s *SQLiteStore) GetAllCompletions() ([]models.Completion, error) {
	return s.queryCompletions("SELECT id, habit_id, date, value, created_at FROM completions ORDER BY date DESC")
}

func (s *SQLiteStore) queryCompletions(query string, args ...any) ([]models.Completion, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		logger.Error("Failed to read completions", "error", err)
		return []models.Completion{}, nil
	}
	defer rows.Close()

	completions := []models.Completion{}
	for rows.Next() {
		var c models.Completion
		var createdAt string
		if err := rows.Scan(&c.ID, &c.HabitID, &c.Date, &c.Value, &createdAt); err != nil {
			logger.Error("Failed to read completions", "error", err)
			return []models.Completion{}, nil
		}
		c.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			logger.Error("Failed to read completions", "error", err)
			return []models.Completion{}, nil
		}
		completions = append(completions, c)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Failed to read completions", "error", err)
		return []models.Completion{}, nil
	}

	return completions, nil
}

// --- Settings ---

func (s *SQLiteStore) SaveSetting(key string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode setting %s: %w", key, err)
	}

	_, err = s.db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, string(encoded))
	if err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) GetSetting(key string, fallback any) (any, error) {
	var raw string
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&raw)
	if err != nil {
		if !stderrors.Is(err, sql.ErrNoRows) {
			logger.Error("Failed to read setting", "key", key, "error", err)
		}
		return fallback, nil
	}

	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		logger.Error("Failed to decode setting", "key", key, "error", err)
		return fallback, nil
	}
	return value, nil
}

func (s *SQLiteStore) GetAllSettings() ([]models.Setting, error) {
	rows, err := s.db.Query("SELECT key, value FROM settings ORDER BY key")
	if err != nil {
		logger.Error("Failed to read settings", "error", err)
		return []models.Setting{}, nil
	}
	defer rows.Close()

	settings := []models.Setting{}
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			logger.Error("Failed to read settings", "error", err)
			return []models.Setting{}, nil
		}
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			logger.Error("Failed to decode setting", "key", key, "error", err)
			continue
		}
		settings = append(settings, models.Setting{Key: key, Value: value})
	}
	if err := rows.Err(); err != nil {
		logger.Error("Failed to read settings", "error", err)
		return []models.Setting{}, nil
	}

	return settings, nil
}

// --- Templates ---

func (s *SQLiteStore) GetTemplates() ([]models.HabitTemplate, error) {
	rows, err := s.db.Query(`
		SELECT id, name, description, category, icon, color, frequency, target, unit
		FROM templates ORDER BY rowid`)
	if err != nil {
		logger.Error("Failed to read templates", "error", err)
		return models.DefaultTemplates(), nil
	}
	defer rows.Close()

	templates := []models.HabitTemplate{}
	for rows.Next() {
		var t models.HabitTemplate
		var frequency string
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.Category, &t.Icon, &t.Color,
			&frequency, &t.Target, &t.Unit); err != nil {
			logger.Error("Failed to read templates", "error", err)
			return models.DefaultTemplates(), nil
		}
		t.Frequency = constants.Frequency(frequency)
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Failed to read templates", "error", err)
		return models.DefaultTemplates(), nil
	}

	return templates, nil
}

// --- Bulk ---

func (s *SQLiteStore) ExportData() (models.Export, error) {
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

func (s *SQLiteStore) ImportData(payload models.Export) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to import data: %w", err)
	}
	defer tx.Rollback()

	// Replace only the collections the payload actually carries.
	if payload.Habits != nil {
		if _, err := tx.Exec("DELETE FROM habits"); err != nil {
			return fmt.Errorf("failed to import habits: %w", err)
		}
	}
	if payload.Completions != nil {
		if _, err := tx.Exec("DELETE FROM completions"); err != nil {
			return fmt.Errorf("failed to import completions: %w", err)
		}
	}
	if payload.Settings != nil {
		if _, err := tx.Exec("DELETE FROM settings"); err != nil {
			return fmt.Errorf("failed to import settings: %w", err)
		}
	}

	for _, h := range payload.Habits {
		var deletedAt sql.NullString
		if h.DeletedAt != nil {
			deletedAt = sql.NullString{String: h.DeletedAt.Format(time.RFC3339), Valid: true}
		}
		if _, err := tx.Exec(`
			INSERT INTO habits (`+habitColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			h.ID, h.Name, h.Description, h.Category, h.Icon, h.Color,
			string(h.Frequency), h.Target, h.Unit, h.ReminderTime,
			h.CreatedAt.Format(time.RFC3339), h.UpdatedAt.Format(time.RFC3339),
			boolToInt(h.IsActive), deletedAt,
			h.StreakCount, h.TotalCompletions, h.BestStreak); err != nil {
			return fmt.Errorf("failed to import habit %s: %w", h.ID, err)
		}
	}

	for _, c := range payload.Completions {
		if _, err := tx.Exec(`
			INSERT INTO completions (id, habit_id, date, value, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			c.ID, c.HabitID, c.Date, c.Value, c.CreatedAt.Format(time.RFC3339)); err != nil {
			return fmt.Errorf("failed to import completion %s: %w", c.ID, err)
		}
	}

	for _, setting := range payload.Settings {
		encoded, err := json.Marshal(setting.Value)
		if err != nil {
			return fmt.Errorf("failed to import setting %s: %w", setting.Key, err)
		}
		if _, err := tx.Exec("INSERT INTO settings (key, value) VALUES (?, ?)",
			setting.Key, string(encoded)); err != nil {
			return fmt.Errorf("failed to import setting %s: %w", setting.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to import data: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ClearData() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to clear data: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"completions", "habits", "settings"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to clear data: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
