// Package stats holds the pure derivation functions over habits and
// completions: streaks, daily status, sorting, and analytics aggregates.
// Nothing here touches storage; "today" is always an explicit parameter so
// the results are reproducible in tests.
package stats

import (
	"sort"
	"time"

	"github.com/julianstephens/seedjournal/internal/constants"
	"github.com/julianstephens/seedjournal/internal/models"
	"github.com/julianstephens/seedjournal/internal/utils"
)

// Streak returns the current consecutive-day run for a habit, counting
// backwards from today. A completion today or yesterday starts the run;
// the first gap ends it. Duplicate completions on one day count once.
func Streak(completions []models.Completion, habitID string, today time.Time) int {
	own := make([]models.Completion, 0, len(completions))
	for _, c := range completions {
		if c.HabitID == habitID {
			own = append(own, c)
		}
	}
	sort.SliceStable(own, func(i, j int) bool {
		return own[i].Date > own[j].Date
	})

	streak := 0
	anchor := 0 // distance of the run's newest day: 0 for today, 1 for yesterday
	for _, c := range own {
		date, err := utils.ParseDate(c.Date)
		if err != nil {
			continue
		}
		diff := utils.DiffDays(today, date)
		if diff < 0 {
			// future-dated entries never extend the current run
			continue
		}
		if streak == 0 {
			if diff > 1 {
				break
			}
			streak = 1
			anchor = diff
			continue
		}
		if diff == anchor+streak {
			streak++
		} else if diff > anchor+streak {
			break
		}
		// diff < anchor+streak is a duplicate entry for an already-counted day.
	}

	return streak
}

// ShouldCompleteOn reports whether a habit is expected to be completed on
// the given day, based on its frequency.
func ShouldCompleteOn(habit models.Habit, day time.Time) bool {
	switch habit.Frequency {
	case constants.FrequencyDaily, constants.FrequencyWeekly:
		return true
	case constants.FrequencyWeekdays:
		wd := day.Weekday()
		return wd >= time.Monday && wd <= time.Friday
	case constants.FrequencyWeekends:
		wd := day.Weekday()
		return wd == time.Saturday || wd == time.Sunday
	default:
		// custom and unknown frequencies are always eligible
		return true
	}
}

// Status describes a habit's standing on a single day.
type Status struct {
	Completed      bool
	ShouldComplete bool
	Completion     *models.Completion
	Streak         int
}

// HabitStatus derives a habit's status for today from its completion history.
func HabitStatus(habit models.Habit, completions []models.Completion, today time.Time) Status {
	status := Status{
		ShouldComplete: ShouldCompleteOn(habit, today),
		Streak:         Streak(completions, habit.ID, today),
	}

	todayStr := utils.FormatDate(today)
	for i, c := range completions {
		if c.HabitID == habit.ID && c.Date == todayStr {
			status.Completed = true
			status.Completion = &completions[i]
			break
		}
	}

	return status
}

// Sort keys accepted by SortHabits.
const (
	SortByName     = "name"
	SortByCategory = "category"
	SortByStreak   = "streak"
	SortByCreated  = "created"
)

// SortHabits returns a sorted copy of habits. Name and category sort
// lexicographically, streak sorts by cached streak count descending, and
// created sorts newest first. An unknown key returns the input order.
func SortHabits(habits []models.Habit, sortBy string) []models.Habit {
	sorted := make([]models.Habit, len(habits))
	copy(sorted, habits)

	switch sortBy {
	case SortByName:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Name < sorted[j].Name
		})
	case SortByCategory:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Category < sorted[j].Category
		})
	case SortByStreak:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].StreakCount > sorted[j].StreakCount
		})
	case SortByCreated:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		})
	}

	return sorted
}
