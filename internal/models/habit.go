package models

import (
	"time"

	"github.com/julianstephens/seedjournal/internal/constants"
)

// Habit represents a recurring practice to track
type Habit struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Description  string              `json:"description,omitempty"`
	Category     string              `json:"category"`
	Icon         string              `json:"icon,omitempty"`
	Color        string              `json:"color,omitempty"`
	Frequency    constants.Frequency `json:"frequency"`
	Target       int                 `json:"target,omitempty"`
	Unit         string              `json:"unit,omitempty"`
	ReminderTime string              `json:"reminder_time,omitempty"` // HH:MM format
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
	IsActive     bool                `json:"is_active"`
	DeletedAt    *time.Time          `json:"deleted_at,omitempty"`

	// Cached statistics, recomputed after every completion toggle.
	StreakCount      int `json:"streak_count"`
	TotalCompletions int `json:"total_completions"`
	BestStreak       int `json:"best_streak"`
}

// Completion represents a single day's record that a habit was performed.
// At most one completion exists per (HabitID, Date) pair.
type Completion struct {
	ID        string    `json:"id"`
	HabitID   string    `json:"habit_id"`
	Date      string    `json:"date"` // YYYY-MM-DD format
	Value     int       `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}
