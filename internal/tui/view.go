package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string

	switch m.state {
	case StateHabits:
		content = m.habitsModel.View()
	case StateBadges:
		content = docStyle.Render(m.badgesModel.View())
	case StateStats:
		content = docStyle.Render(m.viewStats())
	case StateAddHabit:
		content = docStyle.Render(m.form.View())
	}

	ui := lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		m.viewLevel(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
	return ui
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range []string{"Habits", "Badges", "Stats"} {
		if m.state == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewLevel() string {
	header := levelStyle.Render(fmt.Sprintf("Level %d · %s", m.level.Level, m.level.Title))
	var detail string
	if m.level.MaxLevel {
		detail = mutedStyle.Render(fmt.Sprintf("%d XP (max level)", m.level.XP))
	} else {
		detail = mutedStyle.Render(fmt.Sprintf("%d / %d XP", m.level.XP, m.level.NextLevelXP))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		"",
		header+"  "+detail,
		m.xpBar.View(),
		"",
	)
}

func (m Model) viewStats() string {
	s := m.stats
	if len(s.Points) == 0 {
		return "No stats yet."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s → %s (%s)\n\n", s.Range.From, s.Range.To, s.Granularity)
	for _, p := range s.Points {
		filled := int(p.Percentage / 10)
		bar := strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
		fmt.Fprintf(&b, "%-10s %s %3.0f%% (%d/%d)\n", p.Label, bar, p.Percentage, p.Completed, p.Total)
	}
	fmt.Fprintf(&b, "\nAverage: %.1f%%  Completed: %d/%d\n", s.AveragePercentage, s.TotalCompleted, s.TotalPossible)
	if s.BestPeriod != nil {
		fmt.Fprintf(&b, "Best:  %s (%.0f%%)\n", s.BestPeriod.Label, s.BestPeriod.Percentage)
	}
	if s.WorstPeriod != nil {
		fmt.Fprintf(&b, "Worst: %s (%.0f%%)\n", s.WorstPeriod.Label, s.WorstPeriod.Percentage)
	}
	fmt.Fprintf(&b, "Change: %+.0f%% (%d vs %d)\n", s.Comparison.ChangePercent, s.Comparison.Current, s.Comparison.Previous)
	return b.String()
}

func (m Model) viewStatus() string {
	if m.err != nil {
		return dangerStyle.Render("Error: " + m.err.Error())
	}
	return statusStyle.Render(m.status)
}
