package habits

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitlit/internal/models"
)

type AddHabitMsg struct{}

type CompleteHabitMsg struct {
	ID string
}

type UndoHabitMsg struct {
	ID string
}

type Item struct {
	Habit     models.Habit
	DoneToday bool
}

func (i Item) Title() string {
	mark := "[ ]"
	if i.DoneToday {
		mark = "[x]"
	}
	title := i.Habit.Title
	if i.Habit.Icon != "" {
		title = i.Habit.Icon + " " + title
	}
	return mark + " " + title
}

func (i Item) Description() string {
	desc := fmt.Sprintf("streak %d | best %d | %d done", i.Habit.Streak, i.Habit.LongestStreak, i.Habit.TotalCompletions)
	if i.Habit.Goal.Unit != "" {
		desc += fmt.Sprintf(" | goal %g %s", i.Habit.Goal.Target, i.Habit.Goal.Unit)
	}
	return desc
}

func (i Item) FilterValue() string { return i.Habit.Title }

type KeyMap struct {
	Add      key.Binding
	Complete key.Binding
	Undo     key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Complete: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "complete"),
		),
		Undo: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "undo"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Habits"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Complete, keys.Undo}
	}

	return Model{list: l, keys: keys}
}

// SetHabits replaces the list. A habit is done today when its last
// successful day is today.
func (m *Model) SetHabits(habits []models.Habit, today string) {
	items := make([]list.Item, len(habits))
	for i, h := range habits {
		items[i] = Item{Habit: h, DoneToday: h.LastCompleted == today}
	}
	m.list.SetItems(items)
}

// Selected returns the highlighted habit, if any.
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
		case key.Matches(msg, m.keys.Complete):
			if i, ok := m.Selected(); ok {
				return m, func() tea.Msg { return CompleteHabitMsg{ID: i.Habit.ID} }
			}
		case key.Matches(msg, m.keys.Undo):
			if i, ok := m.Selected(); ok {
				return m, func() tea.Msg { return UndoHabitMsg{ID: i.Habit.ID} }
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

// Filtering reports whether the list is capturing keystrokes for its filter.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}
