package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/seedjournal/internal/constants"
	"github.com/julianstephens/seedjournal/internal/stats"
	"github.com/julianstephens/seedjournal/internal/utils"
)

type ReportCmd struct {
	Days  int    `help:"Report window in days (7, 14, 30, or 90)." default:"30"`
	Habit string `help:"Report on a specific habit only." default:""`
}

func (c *ReportCmd) Run(ctx *Context) error {
	if !validPeriod(c.Days) {
		return fmt.Errorf("invalid report window: %d (expected one of %v)", c.Days, constants.ReportPeriods)
	}

	today := time.Now()

	if c.Habit != "" {
		habit, err := ctx.ResolveHabit(c.Habit)
		if err != nil {
			return err
		}

		start, end := utils.DateRange(today, c.Days)
		completions, err := ctx.Store.GetCompletions(habit.ID, start, end)
		if err != nil {
			return err
		}

		report := stats.HabitReport(habit, completions, c.Days, today)

		fmt.Printf("Report for %q (last %d days):\n\n", habit.Name, c.Days)
		fmt.Printf("  Completed days:   %d/%d\n", report.CompletedDays, report.Days)
		fmt.Printf("  Completion rate:  %d%%\n", report.CompletionRate)
		fmt.Printf("  Current streak:   %d\n", report.CurrentStreak)
		fmt.Printf("  Best streak:      %d\n", report.BestStreak)
		fmt.Printf("\n  %s\n", sparkline(report))
		return nil
	}

	habits, err := ctx.Store.GetHabits()
	if err != nil {
		return err
	}
	completions, err := ctx.Store.GetAllCompletions()
	if err != nil {
		return err
	}

	report := stats.OverallReport(habits, completions, c.Days, today)

	fmt.Printf("Overall report (last %d days):\n\n", c.Days)
	fmt.Printf("  Habits tracked:    %d\n", len(habits))
	fmt.Printf("  Completions:       %d of %d possible\n", report.TotalCompletions, report.TotalPossible)
	fmt.Printf("  Completion rate:   %d%%\n", report.CompletionRate)
	fmt.Printf("  Average per day:   %.1f\n", report.AveragePerDay)

	return nil
}

func validPeriod(days int) bool {
	for _, p := range constants.ReportPeriods {
		if days == p {
			return true
		}
	}
	return false
}

// sparkline renders a habit's daily series as a compact x/. strip.
func sparkline(report stats.HabitSummary) string {
	var b strings.Builder
	for _, day := range report.Daily {
		if day.Completed {
			b.WriteByte('x')
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}
