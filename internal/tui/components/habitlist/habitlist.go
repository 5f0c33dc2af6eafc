package habitlist

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/seedjournal/internal/models"
	"github.com/julianstephens/seedjournal/internal/stats"
)

type AddHabitMsg struct{}

type ToggleHabitMsg struct {
	ID string
}

type DeleteHabitMsg struct {
	ID string
}

type Item struct {
	Habit  models.Habit
	Status stats.Status
}

func (i Item) Title() string {
	marker := "○"
	if i.Status.Completed {
		marker = "✓"
	} else if !i.Status.ShouldComplete {
		marker = "·"
	}
	title := marker + " " + i.Habit.Name
	if i.Habit.Icon != "" {
		title = marker + " " + i.Habit.Icon + " " + i.Habit.Name
	}
	return title
}

func (i Item) Description() string {
	desc := i.Habit.Category
	if i.Status.Streak > 0 {
		desc = fmt.Sprintf("%s · 🔥 %d day streak", desc, i.Status.Streak)
	}
	if !i.Status.ShouldComplete {
		return desc + " · not scheduled today"
	}
	if i.Status.Completed {
		return desc + " · completed today"
	}
	return desc + " · due today"
}

func (i Item) FilterValue() string { return i.Habit.Name }

type KeyMap struct {
	Add    key.Binding
	Toggle key.Binding
	Delete key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "toggle done"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(habits []models.Habit, completions []models.Completion, width, height int) Model {
	l := list.New(buildItems(habits, completions), list.NewDefaultDelegate(), width, height)
	l.Title = "Habits"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Toggle, keys.Delete}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Toggle, keys.Delete}
	}

	return Model{
		list: l,
		keys: keys,
	}
}

func buildItems(habits []models.Habit, completions []models.Completion) []list.Item {
	today := time.Now()
	items := make([]list.Item, len(habits))
	for i, h := range habits {
		items[i] = Item{
			Habit:  h,
			Status: stats.HabitStatus(h, completions, today),
		}
	}
	return items
}

func (m *Model) SetHabits(habits []models.Habit, completions []models.Completion) {
	m.list.SetItems(buildItems(habits, completions))
}

func (m Model) Selected() (Item, bool) {
	i, ok := m.list.SelectedItem().(Item)
	return i, ok
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddHabitMsg{} }
		case key.Matches(msg, m.keys.Toggle):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return ToggleHabitMsg{ID: i.Habit.ID} }
			}
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return DeleteHabitMsg{ID: i.Habit.ID} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No habits yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
