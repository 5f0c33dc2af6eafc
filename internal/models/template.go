package models

import "github.com/julianstephens/seedjournal/internal/constants"

// HabitTemplate is read-only seed data describing a pre-built habit
// suggestion. Templates are never user-mutable.
type HabitTemplate struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Category    string              `json:"category"`
	Frequency   constants.Frequency `json:"frequency"`
	Target      int                 `json:"target"`
	Unit        string              `json:"unit"`
	Icon        string              `json:"icon"`
	Color       string              `json:"color"`
}

// DefaultTemplates returns the built-in habit suggestions. The SQLite and
// Postgres backends seed these into the templates table at migration time;
// the JSON fallback serves them directly from here.
func DefaultTemplates() []HabitTemplate {
	return []HabitTemplate{
		{
			ID:          "study-math",
			Name:        "Study Mathematics",
			Description: "Practice differential equations or algebra",
			Category:    "Academic",
			Frequency:   constants.FrequencyDaily,
			Target:      1,
			Unit:        "session",
			Icon:        "📊",
			Color:       "#3b82f6",
		},
		{
			ID:          "code-practice",
			Name:        "Programming Practice",
			Description: "Code for at least 30 minutes",
			Category:    "Skills",
			Frequency:   constants.FrequencyDaily,
			Target:      30,
			Unit:        "minute",
			Icon:        "💻",
			Color:       "#10b981",
		},
		{
			ID:          "read-tech",
			Name:        "Technical Reading",
			Description: "Read technical articles or documentation",
			Category:    "Learning",
			Frequency:   constants.FrequencyDaily,
			Target:      1,
			Unit:        "article",
			Icon:        "📚",
			Color:       "#8b5cf6",
		},
		{
			ID:          "exercise",
			Name:        "Physical Exercise",
			Description: "Any form of physical activity",
			Category:    "Health",
			Frequency:   constants.FrequencyDaily,
			Target:      30,
			Unit:        "minute",
			Icon:        "🏃‍♂️",
			Color:       "#f59e0b",
		},
		{
			ID:          "meditation",
			Name:        "Meditation/Mindfulness",
			Description: "Practice mindfulness or meditation",
			Category:    "Wellness",
			Frequency:   constants.FrequencyDaily,
			Target:      10,
			Unit:        "minute",
			Icon:        "🧘‍♂️",
			Color:       "#ec4899",
		},
	}
}
