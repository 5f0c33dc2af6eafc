package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/seedjournal/internal/models"
	"github.com/julianstephens/seedjournal/internal/utils"
)

type LogCmd struct {
	Days  int    `help:"Number of days to show." default:"14"`
	Habit string `help:"Show log for a specific habit only." default:""`
}

func (c *LogCmd) Run(ctx *Context) error {
	habits, err := ctx.Store.GetHabits()
	if err != nil {
		return err
	}

	if len(habits) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	var selected []models.Habit
	if c.Habit != "" {
		habit, err := ctx.ResolveHabit(c.Habit)
		if err != nil {
			return err
		}
		selected = []models.Habit{habit}
	} else {
		selected = habits
	}

	end := time.Now()
	start := end.AddDate(0, 0, -(c.Days - 1))

	fmt.Printf("Habit log (last %d days):\n\n", c.Days)

	const maxNameLen = 20
	fmt.Print("Habit               ")
	for i := 0; i < c.Days; i++ {
		day := start.AddDate(0, 0, i)
		fmt.Printf(" %5s", day.Format("01/02"))
	}
	fmt.Println()

	fmt.Print(strings.Repeat("-", maxNameLen))
	for i := 0; i < c.Days; i++ {
		fmt.Print("------")
	}
	fmt.Println()

	startStr, endStr := utils.DateRange(end, c.Days)
	for _, habit := range selected {
		name := habit.Name
		if len(name) > maxNameLen {
			name = name[:maxNameLen-3] + "..."
		} else {
			name = name + strings.Repeat(" ", maxNameLen-len(name))
		}
		fmt.Print(name)

		completions, err := ctx.Store.GetCompletions(habit.ID, startStr, endStr)
		if err != nil {
			return err
		}

		completedDays := make(map[string]bool)
		for _, completion := range completions {
			completedDays[completion.Date] = true
		}

		for i := 0; i < c.Days; i++ {
			day := start.AddDate(0, 0, i)
			if completedDays[utils.FormatDate(day)] {
				fmt.Print("  x   ")
			} else {
				fmt.Print("  .   ")
			}
		}
		fmt.Println()
	}

	return nil
}
