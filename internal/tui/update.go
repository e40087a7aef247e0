package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/progression"
	"github.com/julianstephens/habitlit/internal/tui/components/habits"
)

// chromeHeight is the space taken by the tab bar, level header and help line.
const chromeHeight = 8

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == StateAddHabit {
		return m.updateForm(msg)
	}

	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.xpBar.Width = min(msg.Width-4, 60)
		h := max(msg.Height-chromeHeight, 1)
		m.habitsModel.SetSize(msg.Width, h)
		m.badgesModel.SetSize(msg.Width, h)
		return m, nil

	case dataMsg:
		m.today = msg.today
		m.level = msg.level
		m.stats = msg.stats
		m.habitsModel.SetHabits(msg.habits, msg.today)
		m.badgesModel.SetBadges(msg.badges)
		m.err = nil
		return m, m.xpBar.SetPercent(msg.level.ProgressPercent / 100)

	case outcomeMsg:
		m.status = msg.status
		return m, m.load()

	case errMsg:
		m.err = msg.err
		return m, nil

	case progress.FrameMsg:
		pm, cmd := m.xpBar.Update(msg)
		m.xpBar = pm.(progress.Model)
		return m, cmd

	case habits.AddHabitMsg:
		return m.startAddHabit()

	case habits.CompleteHabitMsg:
		return m, m.complete(msg.ID)

	case habits.UndoHabitMsg:
		return m, m.undo(msg.ID)

	case tea.KeyMsg:
		if m.state == StateHabits && m.habitsModel.Filtering() {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.status = ""
			return m, m.load()
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + tabCount) % tabCount
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StateHabits:
		m.habitsModel, cmd = m.habitsModel.Update(msg)
	case StateBadges:
		m.badgesModel, cmd = m.badgesModel.Update(msg)
	}
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) startAddHabit() (tea.Model, tea.Cmd) {
	m.habitForm = &HabitFormModel{}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&m.habitForm.Title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("title cannot be empty")
					}
					return nil
				}),
			huh.NewInput().Title("Icon").Value(&m.habitForm.Icon),
			huh.NewInput().
				Title("Daily target").
				Placeholder("optional").
				Value(&m.habitForm.Target).
				Validate(validateTarget),
			huh.NewInput().Title("Unit").Value(&m.habitForm.Unit),
		),
	).WithShowHelp(false)
	m.state = StateAddHabit
	return m, m.form.Init()
}

func validateTarget(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return fmt.Errorf("target must be a non-negative number")
	}
	return nil
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		m.state = StateHabits
		m.form = nil
		return m, nil
	}

	fm, cmd := m.form.Update(msg)
	if f, ok := fm.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateAborted:
		m.state = StateHabits
		m.form = nil
		return m, nil
	case huh.StateCompleted:
		in := progression.HabitInput{
			UserID: m.userID,
			Title:  strings.TrimSpace(m.habitForm.Title),
			Icon:   strings.TrimSpace(m.habitForm.Icon),
			Unit:   strings.TrimSpace(m.habitForm.Unit),
		}
		if t := strings.TrimSpace(m.habitForm.Target); t != "" {
			in.Target, _ = strconv.ParseFloat(t, 64)
		}
		m.state = StateHabits
		m.form = nil
		return m, m.createHabit(in)
	}

	return m, cmd
}

// summarize renders a completion outcome as a single status line.
func summarize(out progression.Outcome) string {
	parts := []string{fmt.Sprintf("Streak %d", out.Streak.Current)}
	if out.XPGranted > 0 {
		parts = append(parts, fmt.Sprintf("+%d XP", out.XPGranted))
	}
	for _, b := range out.NewBadges {
		parts = append(parts, "unlocked "+b.Name)
	}
	for _, e := range out.Events {
		if e.Type == models.EventLevelUp {
			parts = append(parts, fmt.Sprintf("level %d!", e.To))
		}
	}
	if out.RewardsPending {
		parts = append(parts, "rewards pending")
	}
	return strings.Join(parts, " | ")
}
