package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/julianstephens/seedjournal/internal/constants"
	"github.com/julianstephens/seedjournal/internal/models"
	"github.com/julianstephens/seedjournal/internal/utils"
)

// Error reports structural invariant violations on a caller-supplied
// entity, keyed by field name. It is raised before persistence is
// attempted; invalid values are never silently coerced.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "invalid habit: " + strings.Join(parts, "; ")
}

// CheckHabit validates a habit's structural invariants. It returns nil when
// the habit is valid, or an *Error describing every violated field.
func CheckHabit(habit models.Habit) error {
	fields := make(map[string]string)

	name := strings.TrimSpace(habit.Name)
	if name == "" {
		fields["name"] = "name must not be empty"
	} else if len([]rune(name)) > constants.MaxHabitNameLen {
		fields["name"] = fmt.Sprintf("name must be at most %d characters", constants.MaxHabitNameLen)
	}

	if len([]rune(habit.Description)) > constants.MaxHabitDescriptionLen {
		fields["description"] = fmt.Sprintf("description must be at most %d characters", constants.MaxHabitDescriptionLen)
	}

	if habit.Category == "" {
		fields["category"] = "category is required"
	}

	if habit.Frequency == "" {
		fields["frequency"] = "frequency is required"
	} else if !constants.IsValidFrequency(habit.Frequency) {
		fields["frequency"] = fmt.Sprintf("unknown frequency %q", habit.Frequency)
	}

	if habit.Target < 0 {
		fields["target"] = "target must not be negative"
	}

	if habit.ReminderTime != "" && !utils.ValidateTimeFormat(habit.ReminderTime) {
		fields["reminder_time"] = fmt.Sprintf("invalid reminder time %q (expected HH:MM)", habit.ReminderTime)
	}

	if len(fields) == 0 {
		return nil
	}
	return &Error{Fields: fields}
}
