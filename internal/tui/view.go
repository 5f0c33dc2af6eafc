package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/seedjournal/internal/stats"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateAddHabit:
		content = m.form.View()
	case StateConfirmDelete:
		content = m.viewConfirmDelete()
	default:
		content = docStyle.Render(m.habitList.View())
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewHeader(),
		content,
		m.help.View(m.keys),
	)
}

func (m Model) viewHeader() string {
	today := time.Now()
	done, due := 0, 0
	for _, h := range m.app.Habits {
		status := stats.HabitStatus(h, m.app.TodayCompletions, today)
		if status.ShouldComplete {
			due++
			if status.Completed {
				done++
			}
		}
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		headerStyle.Render(today.Format("Monday, Jan 2")),
		summaryStyle.Render(fmt.Sprintf("%d/%d due today", done, due)),
	)
}

func (m Model) viewConfirmDelete() string {
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(fmt.Sprintf("Delete habit %q?", m.habitToDelete.Habit.Name)),
			"Its completion history is kept.",
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
