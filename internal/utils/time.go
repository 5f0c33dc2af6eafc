package utils

import (
	"time"

	"github.com/julianstephens/seedjournal/internal/constants"
)

// Today returns today's date string (YYYY-MM-DD) using the local device
// calendar, independent of time-of-day.
func Today() string {
	return time.Now().Format(constants.DateFormat)
}

// FormatDate formats a time as the standard storage date string.
func FormatDate(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// ParseDate parses a YYYY-MM-DD date string in the local timezone.
func ParseDate(dateStr string) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, dateStr)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local), nil
}

// Midnight truncates t to midnight in its own location.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DiffDays returns the number of whole calendar days between two times,
// both normalized to midnight. Positive when a is after b.
func DiffDays(a, b time.Time) int {
	am := Midnight(a)
	bm := Midnight(b)
	return int(am.Sub(bm).Hours() / 24)
}

// DateRange returns the inclusive [start, end] date strings for a window
// ending at end and spanning days calendar days.
func DateRange(end time.Time, days int) (string, string) {
	start := end.AddDate(0, 0, -(days - 1))
	return FormatDate(start), FormatDate(end)
}

// ValidateTimeFormat checks if the string matches the standard time format.
func ValidateTimeFormat(timeStr string) bool {
	_, err := time.Parse(constants.TimeFormat, timeStr)
	return err == nil
}

// ValidateDateFormat checks if the string matches the standard date format.
func ValidateDateFormat(dateStr string) bool {
	_, err := time.Parse(constants.DateFormat, dateStr)
	return err == nil
}
