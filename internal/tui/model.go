package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/seedjournal/internal/app"
	"github.com/julianstephens/seedjournal/internal/constants"
	"github.com/julianstephens/seedjournal/internal/tui/components/habitlist"
)

type SessionState int

const (
	StateDashboard SessionState = iota
	StateAddHabit
	StateConfirmDelete
)

// HabitFormModel holds the add-habit form inputs
type HabitFormModel struct {
	Name        string
	Description string
	Category    string
	Frequency   string
}

type Model struct {
	app           *app.App
	state         SessionState
	keys          KeyMap
	help          help.Model
	habitList     habitlist.Model
	form          *huh.Form
	habitForm     *HabitFormModel
	habitToDelete habitlist.Item
	quitting      bool
	width         int
	height        int
}

func NewModel(a *app.App) Model {
	return Model{
		app:       a,
		state:     StateDashboard,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		habitList: habitlist.New(a.Habits, a.TodayCompletions, 0, 0),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func newHabitForm(fm *HabitFormModel) *huh.Form {
	categoryOptions := make([]huh.Option[string], len(constants.Categories))
	for i, c := range constants.Categories {
		categoryOptions[i] = huh.NewOption(c.Icon+" "+c.Name, c.Name)
	}
	frequencyOptions := make([]huh.Option[string], len(constants.Frequencies))
	for i, f := range constants.Frequencies {
		frequencyOptions[i] = huh.NewOption(string(f), string(f))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit Name").
				Value(&fm.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("habit name cannot be empty")
					}
					if len(s) > constants.MaxHabitNameLen {
						return fmt.Errorf("habit name must be %d characters or fewer", constants.MaxHabitNameLen)
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Category").
				Options(categoryOptions...).
				Value(&fm.Category),
			huh.NewSelect[string]().
				Title("Frequency").
				Options(frequencyOptions...).
				Value(&fm.Frequency),
			huh.NewInput().
				Title("Description (optional)").
				Value(&fm.Description).
				Validate(func(s string) error {
					if len(s) > constants.MaxHabitDescriptionLen {
						return fmt.Errorf("description must be %d characters or fewer", constants.MaxHabitDescriptionLen)
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeDracula())
}
