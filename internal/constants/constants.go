package constants

const (
	AppName            = "seedjournal"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/seedjournal/seedjournal.db"
	Version            = "v0.1.0"

	// SchemaVersion is the export/import payload version.
	SchemaVersion = 1

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "seedjournal-"
	BackupFileSuffix = ".db"

	// Habit field limits
	MaxHabitNameLen        = 50
	MaxHabitDescriptionLen = 200
)

// Setting keys
const (
	SettingTheme          = "theme"
	SettingNotifications  = "notifications"
	SettingFirstDayOfWeek = "firstDayOfWeek"
	SettingReminderTime   = "reminderTime"
)

// Setting defaults applied when a key is absent from storage.
const (
	DefaultTheme          = "system"
	DefaultNotifications  = true
	DefaultFirstDayOfWeek = "monday"
	DefaultReminderTime   = "09:00"
)

// Frequency determines on which days a habit is expected to be completed.
type Frequency string

const (
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyWeekdays Frequency = "weekdays"
	FrequencyWeekends Frequency = "weekends"
	FrequencyCustom   Frequency = "custom"
)

// Frequencies lists the selectable frequency options in display order.
var Frequencies = []Frequency{
	FrequencyDaily,
	FrequencyWeekly,
	FrequencyWeekdays,
	FrequencyWeekends,
	FrequencyCustom,
}

// IsValidFrequency reports whether f is one of the known frequency values.
func IsValidFrequency(f Frequency) bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyWeekdays, FrequencyWeekends, FrequencyCustom:
		return true
	}
	return false
}

// Category describes a habit category together with its cosmetic defaults.
type Category struct {
	Name  string
	Icon  string
	Color string
}

// Categories lists the built-in habit categories. Free-text categories are
// accepted everywhere; this set only drives suggestions and default icons.
var Categories = []Category{
	{Name: "Academic", Icon: "🎓", Color: "#3b82f6"},
	{Name: "Health", Icon: "💪", Color: "#10b981"},
	{Name: "Skills", Icon: "🔧", Color: "#f59e0b"},
	{Name: "Learning", Icon: "📚", Color: "#8b5cf6"},
	{Name: "Wellness", Icon: "🌱", Color: "#ec4899"},
	{Name: "Social", Icon: "👥", Color: "#06b6d4"},
	{Name: "Creative", Icon: "🎨", Color: "#ef4444"},
	{Name: "Work", Icon: "💼", Color: "#6b7280"},
}

// Units lists common target units. The unit field is free text in practice.
var Units = []string{"time", "minute", "hour", "page", "cup", "km", "step"}

// ReportPeriods are the day-count windows offered by the analytics report.
var ReportPeriods = []int{7, 14, 30, 90}
