package cli

import (
	"fmt"
	"time"

	"github.com/julianstephens/seedjournal/internal/stats"
	"github.com/julianstephens/seedjournal/internal/utils"
)

type TodayCmd struct{}

func (c *TodayCmd) Run(ctx *Context) error {
	habits, err := ctx.Store.GetHabits()
	if err != nil {
		return err
	}

	if len(habits) == 0 {
		fmt.Println("No habits found. Add one with 'seedjournal habit add'.")
		return nil
	}

	today := time.Now()
	completions, err := ctx.Store.GetCompletionsForDate(utils.FormatDate(today))
	if err != nil {
		return err
	}

	fmt.Printf("Habits for %s:\n\n", utils.FormatDate(today))
	done := 0
	due := 0
	for _, habit := range habits {
		status := stats.HabitStatus(habit, completions, today)

		marker := "[ ]"
		if status.Completed {
			marker = "[x]"
			done++
		}
		if status.ShouldComplete {
			due++
		} else if !status.Completed {
			marker = "[-]" // not scheduled today
		}

		streak := ""
		if status.Streak > 0 {
			streak = fmt.Sprintf("  🔥 %d", status.Streak)
		}
		fmt.Printf("%s %s %s%s\n", marker, habit.Icon, habit.Name, streak)
	}

	fmt.Printf("\nCompleted: %d/%d due today\n", done, due)
	return nil
}
