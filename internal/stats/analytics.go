package stats

import (
	"math"
	"time"

	"github.com/julianstephens/seedjournal/internal/models"
	"github.com/julianstephens/seedjournal/internal/utils"
)

// DayCount is one day of the overall completion series.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// DayMark is one day of a single habit's completion series.
type DayMark struct {
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
	Value     int    `json:"value"`
}

// Overall aggregates completion activity across all habits over a trailing
// window of days ending today.
type Overall struct {
	Days             int        `json:"days"`
	Daily            []DayCount `json:"daily"`
	TotalCompletions int        `json:"total_completions"`
	TotalPossible    int        `json:"total_possible"`
	CompletionRate   int        `json:"completion_rate"` // integer percent
	AveragePerDay    float64    `json:"average_per_day"` // one decimal place
}

// HabitSummary aggregates a single habit's activity over a trailing window
// of days ending today.
type HabitSummary struct {
	HabitID        string    `json:"habit_id"`
	Days           int       `json:"days"`
	Daily          []DayMark `json:"daily"`
	CompletedDays  int       `json:"completed_days"`
	CompletionRate int       `json:"completion_rate"` // integer percent
	CurrentStreak  int       `json:"current_streak"`
	BestStreak     int       `json:"best_streak"`
}

// OverallReport builds the all-habits aggregate for the trailing window of
// days ending today. Zero habits or zero days yield zeroed rates, never a
// division by zero.
func OverallReport(habits []models.Habit, completions []models.Completion, days int, today time.Time) Overall {
	report := Overall{Days: days, Daily: []DayCount{}}
	if days <= 0 {
		return report
	}

	perDate := make(map[string]int)
	for _, c := range completions {
		perDate[c.Date]++
	}

	start := utils.Midnight(today).AddDate(0, 0, -(days - 1))
	for i := 0; i < days; i++ {
		date := utils.FormatDate(start.AddDate(0, 0, i))
		count := perDate[date]
		report.Daily = append(report.Daily, DayCount{Date: date, Count: count})
		report.TotalCompletions += count
	}

	report.TotalPossible = len(habits) * days
	if report.TotalPossible > 0 {
		report.CompletionRate = int(math.Round(float64(report.TotalCompletions) / float64(report.TotalPossible) * 100))
	}
	report.AveragePerDay = math.Round(float64(report.TotalCompletions)/float64(days)*10) / 10

	return report
}

// HabitReport builds a single habit's aggregate for the trailing window of
// days ending today. Streak figures come from the habit's cached counters.
func HabitReport(habit models.Habit, completions []models.Completion, days int, today time.Time) HabitSummary {
	report := HabitSummary{
		HabitID:       habit.ID,
		Days:          days,
		Daily:         []DayMark{},
		CurrentStreak: habit.StreakCount,
		BestStreak:    habit.BestStreak,
	}
	if days <= 0 {
		return report
	}

	perDate := make(map[string]int)
	for _, c := range completions {
		if c.HabitID == habit.ID {
			perDate[c.Date] = c.Value
		}
	}

	start := utils.Midnight(today).AddDate(0, 0, -(days - 1))
	for i := 0; i < days; i++ {
		date := utils.FormatDate(start.AddDate(0, 0, i))
		value, ok := perDate[date]
		report.Daily = append(report.Daily, DayMark{Date: date, Completed: ok, Value: value})
		if ok {
			report.CompletedDays++
		}
	}

	report.CompletionRate = int(math.Round(float64(report.CompletedDays) / float64(days) * 100))

	return report
}
