package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/seedjournal/internal/constants"
	"github.com/julianstephens/seedjournal/internal/models"
	"github.com/julianstephens/seedjournal/internal/tui/components/habitlist"
	"github.com/julianstephens/seedjournal/internal/utils"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		h, v := docStyle.GetFrameSize()
		m.habitList.SetSize(msg.Width-h, msg.Height-v-4)
		return m, nil

	case habitlist.AddHabitMsg:
		m.habitForm = &HabitFormModel{
			Category:  constants.Categories[0].Name,
			Frequency: string(constants.FrequencyDaily),
		}
		m.form = newHabitForm(m.habitForm)
		m.state = StateAddHabit
		return m, m.form.Init()

	case habitlist.ToggleHabitMsg:
		if _, err := m.app.ToggleCompletion(msg.ID, utils.Today()); err == nil {
			m.habitList.SetHabits(m.app.Habits, m.app.TodayCompletions)
		}
		return m, nil

	case habitlist.DeleteHabitMsg:
		if item, ok := m.habitList.Selected(); ok && item.Habit.ID == msg.ID {
			m.habitToDelete = item
			m.state = StateConfirmDelete
		}
		return m, nil
	}

	switch m.state {
	case StateAddHabit:
		return m.updateAddHabit(msg)
	case StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	return m.updateDashboard(msg)
}

func (m Model) updateDashboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.habitList, cmd = m.habitList.Update(msg)
	return m, cmd
}

func (m Model) updateAddHabit(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = StateDashboard
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	cmds = append(cmds, cmd)

	switch m.form.State {
	case huh.StateCompleted:
		habit := models.Habit{
			Name:        m.habitForm.Name,
			Description: m.habitForm.Description,
			Category:    m.habitForm.Category,
			Frequency:   constants.Frequency(m.habitForm.Frequency),
			Target:      1,
		}
		for _, c := range constants.Categories {
			if c.Name == habit.Category {
				habit.Icon = c.Icon
				habit.Color = c.Color
				break
			}
		}
		if _, err := m.app.CreateHabit(habit); err == nil {
			m.habitList.SetHabits(m.app.Habits, m.app.TodayCompletions)
			m.state = StateDashboard
		} else {
			// Stay in form state on error to allow retry
			m.form.State = huh.StateNormal
		}
	case huh.StateAborted:
		m.state = StateDashboard
	}
	return m, tea.Batch(cmds...)
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "y", "Y":
			if err := m.app.DeleteHabit(m.habitToDelete.Habit.ID); err == nil {
				m.habitList.SetHabits(m.app.Habits, m.app.TodayCompletions)
			}
			m.state = StateDashboard
		case "n", "N", "esc":
			m.state = StateDashboard
		}
	}
	return m, nil
}
