package cli

import (
	"fmt"

	"github.com/julianstephens/seedjournal/internal/constants"
	"github.com/julianstephens/seedjournal/internal/models"
	"github.com/julianstephens/seedjournal/internal/stats"
	"github.com/julianstephens/seedjournal/internal/utils"
)

type HabitCmd struct {
	Add       HabitAddCmd       `cmd:"" help:"Add a new habit."`
	List      HabitListCmd      `cmd:"" help:"List habits."`
	Edit      HabitEditCmd      `cmd:"" help:"Edit an existing habit."`
	Delete    HabitDeleteCmd    `cmd:"" help:"Delete a habit (soft delete)."`
	Toggle    HabitToggleCmd    `cmd:"" help:"Toggle a habit's completion for a day."`
	Templates HabitTemplatesCmd `cmd:"" help:"List habit templates or create a habit from one."`
}

type HabitAddCmd struct {
	Name         string `arg:"" help:"Habit name."`
	Category     string `help:"Habit category." default:"Academic"`
	Description  string `help:"Habit description." default:""`
	Frequency    string `help:"Frequency: daily, weekly, weekdays, weekends, custom." default:"daily"`
	Target       int    `help:"Daily target amount." default:"1"`
	Unit         string `help:"Target unit (e.g. minute, page)." default:""`
	Icon         string `help:"Display icon." default:""`
	Color        string `help:"Display color (hex)." default:""`
	ReminderTime string `help:"Reminder time in HH:MM format." default:""`
}

func (c *HabitAddCmd) Run(ctx *Context) error {
	habit, err := ctx.App.CreateHabit(models.Habit{
		Name:         c.Name,
		Description:  c.Description,
		Category:     c.Category,
		Icon:         c.Icon,
		Color:        c.Color,
		Frequency:    constants.Frequency(c.Frequency),
		Target:       c.Target,
		Unit:         c.Unit,
		ReminderTime: c.ReminderTime,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Added habit: %s\n", habit.Name)
	return nil
}

type HabitListCmd struct {
	Deleted bool   `help:"Include deleted habits."`
	Sort    string `help:"Sort order: name, category, streak, created." default:""`
}

func (c *HabitListCmd) Run(ctx *Context) error {
	var habits []models.Habit
	var err error
	if c.Deleted {
		habits, err = ctx.Store.GetAllHabits(true)
	} else {
		habits, err = ctx.Store.GetHabits()
	}
	if err != nil {
		return err
	}

	if len(habits) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	habits = stats.SortHabits(habits, c.Sort)

	for _, habit := range habits {
		status := ""
		if habit.DeletedAt != nil {
			status = " [DELETED]"
		}
		streak := ""
		if habit.StreakCount > 0 {
			streak = fmt.Sprintf("  (streak: %d)", habit.StreakCount)
		}
		fmt.Printf("%s %s [%s]%s%s\n", habit.Icon, habit.Name, habit.Category, streak, status)
	}

	return nil
}

type HabitEditCmd struct {
	Habit string `arg:"" help:"Habit name or id."`

	Name         *string `help:"New habit name."`
	Description  *string `help:"New description."`
	Category     *string `help:"New category."`
	Frequency    *string `help:"New frequency."`
	Target       *int    `help:"New target amount."`
	Unit         *string `help:"New target unit."`
	Icon         *string `help:"New display icon."`
	Color        *string `help:"New display color."`
	ReminderTime *string `help:"New reminder time (HH:MM)."`
}

func (c *HabitEditCmd) Run(ctx *Context) error {
	habit, err := ctx.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}

	if c.Name != nil {
		habit.Name = *c.Name
	}
	if c.Description != nil {
		habit.Description = *c.Description
	}
	if c.Category != nil {
		habit.Category = *c.Category
	}
	if c.Frequency != nil {
		habit.Frequency = constants.Frequency(*c.Frequency)
	}
	if c.Target != nil {
		habit.Target = *c.Target
	}
	if c.Unit != nil {
		habit.Unit = *c.Unit
	}
	if c.Icon != nil {
		habit.Icon = *c.Icon
	}
	if c.Color != nil {
		habit.Color = *c.Color
	}
	if c.ReminderTime != nil {
		habit.ReminderTime = *c.ReminderTime
	}

	if _, err := ctx.App.UpdateHabit(habit); err != nil {
		return err
	}

	fmt.Printf("Updated habit: %s\n", habit.Name)
	return nil
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit name or id to delete."`
}

func (c *HabitDeleteCmd) Run(ctx *Context) error {
	habit, err := ctx.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}

	if err := ctx.App.DeleteHabit(habit.ID); err != nil {
		return err
	}

	fmt.Printf("Deleted habit: %s\n", habit.Name)
	fmt.Println("(This is a soft delete; the habit's history is retained.)")
	return nil
}

type HabitToggleCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
	Date  string `help:"Date in YYYY-MM-DD format (default: today)." default:""`
}

func (c *HabitToggleCmd) Run(ctx *Context) error {
	habit, err := ctx.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}

	day := c.Date
	if day == "" {
		day = utils.Today()
	} else if !utils.ValidateDateFormat(day) {
		return fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", day)
	}

	completed, err := ctx.App.ToggleCompletion(habit.ID, day)
	if err != nil {
		return err
	}

	if completed {
		fmt.Printf("Marked habit %q done for %s\n", habit.Name, day)
	} else {
		fmt.Printf("Unmarked habit %q for %s\n", habit.Name, day)
	}
	return nil
}

type HabitTemplatesCmd struct {
	Use string `help:"Create a habit from the template with this id." default:""`
}

func (c *HabitTemplatesCmd) Run(ctx *Context) error {
	templates, err := ctx.Store.GetTemplates()
	if err != nil {
		return err
	}

	if c.Use != "" {
		for _, t := range templates {
			if t.ID == c.Use {
				habit, err := ctx.App.CreateHabitFromTemplate(t)
				if err != nil {
					return err
				}
				fmt.Printf("Added habit from template: %s\n", habit.Name)
				return nil
			}
		}
		return fmt.Errorf("template %q not found", c.Use)
	}

	if len(templates) == 0 {
		fmt.Println("No templates available.")
		return nil
	}

	fmt.Println("Available templates:")
	for _, t := range templates {
		fmt.Printf("  %-14s %s %s [%s] — %d %s %s\n",
			t.ID, t.Icon, t.Name, t.Category, t.Target, t.Unit, t.Frequency)
	}
	fmt.Println("\nUse 'seedjournal habit templates --use <id>' to create a habit from a template.")
	return nil
}
