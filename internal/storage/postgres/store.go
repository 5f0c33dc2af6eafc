// Package postgres implements the storage contract on top of a PostgreSQL
// database, selected when the configured storage value is a postgres://
// connection string. Credentials must not be embedded in the connection
// string; use the OS keyring, environment variables, or .pgpass instead.
package postgres

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	pq "github.com/lib/pq"

	"github.com/julianstephens/seedjournal/internal/constants"
	apperrors "github.com/julianstephens/seedjournal/internal/errors"
	"github.com/julianstephens/seedjournal/internal/logger"
	"github.com/julianstephens/seedjournal/internal/migration"
	"github.com/julianstephens/seedjournal/internal/models"
	"github.com/julianstephens/seedjournal/migrations"
)

type Store struct {
	connStr string
	db      *sql.DB
}

var (
	ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")
	ErrEmbeddedCredentials     = errors.New("connection string must not contain a password")
)

func New(connStr string) *Store {
	s := &Store{
		connStr: connStr,
	}
	s.ensureSearchPath()
	return s
}

func (s *Store) ensureSearchPath() {
	// All application tables live in a dedicated schema.
	if strings.HasPrefix(s.connStr, "postgres://") || strings.HasPrefix(s.connStr, "postgresql://") {
		u, err := url.Parse(s.connStr)
		if err != nil {
			logger.Warn("Failed to parse Postgres connection string", "error", err)
			return
		}
		q := u.Query()
		if q.Get("search_path") == "" {
			q.Set("search_path", constants.AppName)
			u.RawQuery = q.Encode()
			s.connStr = u.String()
		}
	} else {
		if !hasSearchPathParam(s.connStr) {
			s.connStr = strings.TrimSpace(s.connStr) + " search_path=" + constants.AppName
		}
	}
}

// hasSearchPathParam returns true if the given DSN-style connection string
// contains a search_path parameter key (case-insensitive).
func hasSearchPathParam(connStr string) bool {
	parts := strings.Fields(connStr)
	for _, part := range parts {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		if strings.EqualFold(kv[0], "search_path") {
			return true
		}
	}
	return false
}

// hasSSLMode checks if the connection string contains an sslmode parameter
// key, in either URL or DSN form.
func hasSSLMode(connStr string) bool {
	if u, err := url.Parse(connStr); err == nil && u.Scheme != "" {
		for key := range u.Query() {
			if strings.EqualFold(key, "sslmode") {
				return true
			}
		}
	}

	parts := strings.Fields(connStr)
	for _, part := range parts {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		if strings.EqualFold(kv[0], "sslmode") {
			return true
		}
	}

	return false
}

// ValidateConnString checks if a connection string is a valid PostgreSQL
// connection string (URI or DSN) and ensures it does not contain a password.
func ValidateConnString(connStr string) (bool, error) {
	if strings.TrimSpace(connStr) == "" {
		return false, fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}

	_, err := pq.NewConnector(connStr)
	if err != nil {
		return false, fmt.Errorf("%w: invalid connection string format: %v", ErrInvalidConnectionString, err)
	}

	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		parsedURL, err := url.Parse(connStr)
		if err != nil {
			return false, fmt.Errorf("%w: failed to parse connection URL: %v", ErrInvalidConnectionString, err)
		}

		if _, isSet := parsedURL.User.Password(); isSet {
			return false, ErrEmbeddedCredentials
		}

		if parsedURL.Host == "" && parsedURL.User == nil && (parsedURL.Path == "" || parsedURL.Path == "/") {
			return false, fmt.Errorf("%w: connection URL is incomplete", ErrInvalidConnectionString)
		}
	} else {
		pairs := strings.Fields(connStr)
		for _, pair := range pairs {
			parts := strings.SplitN(pair, "=", 2)
			if len(parts) == 2 && strings.ToLower(strings.TrimSpace(parts[0])) == "password" {
				return false, ErrEmbeddedCredentials
			}
		}
	}

	return true, nil
}

func (s *Store) Init() error {
	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.Exec("CREATE SCHEMA IF NOT EXISTS " + constants.AppName); err != nil {
		db.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	s.db = db

	if err := s.db.Ping(); err != nil {
		if strings.Contains(err.Error(), "SSL is not enabled on the server") && !hasSSLMode(s.connStr) {
			return fmt.Errorf("failed to connect to database: %w (hint: try adding ?sslmode=disable to your connection string)", err)
		}
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := s.runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return s.seedDefaultSettings()
}

func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	if err := s.db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	runner := migration.NewRunner(s.db, s.migrationFS())
	return runner.ValidateVersion()
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) GetConfigPath() string {
	return s.connStr
}

func (s *Store) migrationFS() fs.FS {
	sub, err := fs.Sub(migrations.FS, "postgres")
	if err != nil {
		panic(err)
	}
	return sub
}

func (s *Store) runMigrations() error {
	runner := migration.NewRunner(s.db, s.migrationFS())
	_, err := runner.ApplyMigrations(func(msg string) {
		logger.Debug(msg)
	})
	return err
}

func (s *Store) seedDefaultSettings() error {
	for key, value := range models.DefaultSettings() {
		var exists int
		err := s.db.QueryRow("SELECT count(*) FROM settings WHERE key = $1", key).Scan(&exists)
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

func (s *Store) SaveHabit(habit models.Habit) error {
	var deletedAt sql.NullTime
	if habit.DeletedAt != nil {
		deletedAt = sql.NullTime{Time: *habit.DeletedAt, Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO habits (`+habitColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			icon = EXCLUDED.icon,
			color = EXCLUDED.color,
			frequency = EXCLUDED.frequency,
			target = EXCLUDED.target,
			unit = EXCLUDED.unit,
			reminder_time = EXCLUDED.reminder_time,
			updated_at = EXCLUDED.updated_at,
			is_active = EXCLUDED.is_active,
			deleted_at = EXCLUDED.deleted_at,
			streak_count = EXCLUDED.streak_count,
			total_completions = EXCLUDED.total_completions,
			best_streak = EXCLUDED.best_streak`,
		habit.ID, habit.Name, habit.Description, habit.Category, habit.Icon, habit.Color,
		string(habit.Frequency), habit.Target, habit.Unit, habit.ReminderTime,
		habit.CreatedAt, habit.UpdatedAt, habit.IsActive, deletedAt,
		habit.StreakCount, habit.TotalCompletions, habit.BestStreak)
	if err != nil {
		return fmt.Errorf("failed to save habit: %w", err)
	}
	return nil
}

func (s *Store) GetHabit(id string) (models.Habit, error) {
	row := s.db.QueryRow(`SELECT `+habitColumns+` FROM habits WHERE id = $1 AND deleted_at IS NULL`, id)

	h, err := scanHabit(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Habit{}, fmt.Errorf("habit %s: %w", id, apperrors.ErrNotFound)
		}
		return models.Habit{}, err
	}
	return h, nil
}

func (s *Store) GetHabits() ([]models.Habit, error) {
	return s.queryHabits("SELECT " + habitColumns + " FROM habits WHERE deleted_at IS NULL AND is_active ORDER BY created_at")
}

func (s *Store) GetAllHabits(includeDeleted bool) ([]models.Habit, error) {
	query := "SELECT " + habitColumns + " FROM habits"
	if !includeDeleted {
		query += " WHERE deleted_at IS NULL"
	}
	query += " ORDER BY created_at"
	return s.queryHabits(query)
}

func (s *Store) queryHabits(query string, args ...any) ([]models.Habit, error) {
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
	var frequency string
	var deletedAt sql.NullTime

	err := row.Scan(&h.ID, &h.Name, &h.Description, &h.Category, &h.Icon, &h.Color,
		&frequency, &h.Target, &h.Unit, &h.ReminderTime,
		&h.CreatedAt, &h.UpdatedAt, &h.IsActive, &deletedAt,
		&h.StreakCount, &h.TotalCompletions, &h.BestStreak)
	if err != nil {
		return models.Habit{}, err
	}

	h.Frequency = constants.Frequency(frequency)
	if deletedAt.Valid {
		t := deletedAt.Time
		h.DeletedAt = &t
	}

	return h, nil
}

func (s *Store) DeleteHabit(id string) error {
	// Soft delete; already-deleted or unknown ids are a no-op.
	_, err := s.db.Exec(`
		UPDATE habits SET deleted_at = NOW(), is_active = FALSE, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	return nil
}

// --- Completions ---

func (s *Store) SaveCompletion(completion models.Completion) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to save completion: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM completions WHERE habit_id = $1 AND date = $2 AND id <> $3`,
		completion.HabitID, completion.Date, completion.ID); err != nil {
		return fmt.Errorf("failed to save completion: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT INTO completions (id, habit_id, date, value, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			habit_id = EXCLUDED.habit_id,
			date = EXCLUDED.date,
			value = EXCLUDED.value`,
		completion.ID, completion.HabitID, completion.Date, completion.Value,
		completion.CreatedAt); err != nil {
		return fmt.Errorf("failed to save completion: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to save completion: %w", err)
	}
	return nil
}

func (s *Store) DeleteCompletion(id string) error {
	if _, err := s.db.Exec("DELETE FROM completions WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete completion: %w", err)
	}
	return nil
}

func (s *Store) ToggleCompletion(habitID, date string) (models.Completion, bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return models.Completion{}, false, fmt.Errorf("failed to toggle completion: %w", err)
	}
	defer tx.Rollback()

	var existingID string
	err = tx.QueryRow("SELECT id FROM completions WHERE habit_id = $1 AND date = $2 FOR UPDATE", habitID, date).Scan(&existingID)
	switch {
	case err == nil:
		if _, err := tx.Exec("DELETE FROM completions WHERE id = $1", existingID); err != nil {
			return models.Completion{}, false, fmt.Errorf("failed to toggle completion: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return models.Completion{}, false, fmt.Errorf("failed to toggle completion: %w", err)
		}
		return models.Completion{}, false, nil

	case errors.Is(err, sql.ErrNoRows):
		completion := models.Completion{
			ID:        uuid.NewString(),
			HabitID:   habitID,
			Date:      date,
			Value:     1,
			CreatedAt: time.Now(),
		}
		if _, err := tx.Exec(`
			INSERT INTO completions (id, habit_id, date, value, created_at)
			VALUES ($1, $2, $3, $4, $5)`,
			completion.ID, completion.HabitID, completion.Date, completion.Value,
			completion.CreatedAt); err != nil {
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

func (s *Store) GetCompletions(habitID, startDate, endDate string) ([]models.Completion, error) {
	return s.queryCompletions(`
		SELECT id, habit_id, date, value, created_at FROM completions
		WHERE habit_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date DESC`, habitID, startDate, endDate)
}

func (s *Store) GetCompletionsForDate(date string) ([]models.Completion, error) {
	return s.queryCompletions(`
		SELECT id, habit_id, date, value, created_at FROM completions
		WHERE date = $1 ORDER BY created_at`, date)
}

func (s *Store) GetAllCompletions() ([]models.Completion, error) {
	return s.queryCompletions("SELECT id, habit_id, date, value, created_at FROM completions ORDER BY date DESC")
}

func (s *Store) queryCompletions(query string, args ...any) ([]models.Completion, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		logger.Error("Failed to read completions", "error", err)
		return []models.Completion{}, nil
	}
	defer rows.Close()

	completions := []models.Completion{}
	for rows.Next() {
		var c models.Completion
		if err := rows.Scan(&c.ID, &c.HabitID, &c.Date, &c.Value, &c.CreatedAt); err != nil {
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

func (s *Store) SaveSetting(key string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode setting %s: %w", key, err)
	}

	_, err = s.db.Exec(`
		INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		key, string(encoded))
	if err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	return nil
}

func (s *Store) GetSetting(key string, fallback any) (any, error) {
	var raw string
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = $1", key).Scan(&raw)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
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

func (s *Store) GetAllSettings() ([]models.Setting, error) {
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

func (s *Store) GetTemplates() ([]models.HabitTemplate, error) {
	rows, err := s.db.Query(`
		SELECT id, name, description, category, icon, color, frequency, target, unit
		FROM templates ORDER BY ctid`)
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

func (s *Store) ExportData() (models.Export, error) {
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

func (s *Store) ImportData(payload models.Export) error {
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
		var deletedAt sql.NullTime
		if h.DeletedAt != nil {
			deletedAt = sql.NullTime{Time: *h.DeletedAt, Valid: true}
		}
		if _, err := tx.Exec(`
			INSERT INTO habits (`+habitColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
			h.ID, h.Name, h.Description, h.Category, h.Icon, h.Color,
			string(h.Frequency), h.Target, h.Unit, h.ReminderTime,
			h.CreatedAt, h.UpdatedAt, h.IsActive, deletedAt,
			h.StreakCount, h.TotalCompletions, h.BestStreak); err != nil {
			return fmt.Errorf("failed to import habit %s: %w", h.ID, err)
		}
	}

	for _, c := range payload.Completions {
		if _, err := tx.Exec(`
			INSERT INTO completions (id, habit_id, date, value, created_at)
			VALUES ($1, $2, $3, $4, $5)`,
			c.ID, c.HabitID, c.Date, c.Value, c.CreatedAt); err != nil {
			return fmt.Errorf("failed to import completion %s: %w", c.ID, err)
		}
	}

	for _, setting := range payload.Settings {
		encoded, err := json.Marshal(setting.Value)
		if err != nil {
			return fmt.Errorf("failed to import setting %s: %w", setting.Key, err)
		}
		if _, err := tx.Exec("INSERT INTO settings (key, value) VALUES ($1, $2)",
			setting.Key, string(encoded)); err != nil {
			return fmt.Errorf("failed to import setting %s: %w", setting.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to import data: %w", err)
	}
	return nil
}

func (s *Store) ClearData() error {
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
