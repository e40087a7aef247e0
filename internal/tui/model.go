package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/progression"
	"github.com/julianstephens/habitlit/internal/tui/components/badges"
	"github.com/julianstephens/habitlit/internal/tui/components/habits"
	"github.com/julianstephens/habitlit/internal/utils"
)

type SessionState int

const (
	StateHabits SessionState = iota
	StateBadges
	StateStats
	StateAddHabit
)

// tabCount is the number of states reachable with tab.
const tabCount = 3

const loadTimeout = 5 * time.Second

type HabitFormModel struct {
	Title  string
	Icon   string
	Target string
	Unit   string
}

// dataMsg carries a full refresh of everything the dashboard shows.
type dataMsg struct {
	today  string
	habits []models.Habit
	level  models.LevelInfo
	badges []progression.BadgeStatus
	stats  models.PeriodStats
}

// outcomeMsg reports a completed write with a one-line summary.
type outcomeMsg struct {
	status string
}

type errMsg struct {
	err error
}

type Model struct {
	engine      *progression.Engine
	userID      string
	state       SessionState
	keys        KeyMap
	help        help.Model
	habitsModel habits.Model
	badgesModel badges.Model
	xpBar       progress.Model
	form        *huh.Form
	habitForm   *HabitFormModel
	today       string
	level       models.LevelInfo
	stats       models.PeriodStats
	status      string
	err         error
	quitting    bool
	width       int
	height      int
}

func NewModel(engine *progression.Engine, userID string) Model {
	return Model{
		engine:      engine,
		userID:      userID,
		state:       StateHabits,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		habitsModel: habits.New(0, 0),
		badgesModel: badges.New(0, 0),
		xpBar:       progress.New(progress.WithDefaultGradient()),
	}
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Refresh, m.keys.Quit, m.keys.Help}
	if m.state == StateHabits {
		keys = append(keys, m.keys.Add, m.keys.Complete, m.keys.Undo)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Refresh, m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down}

	var actions []key.Binding
	if m.state == StateHabits {
		actions = []key.Binding{m.keys.Add, m.keys.Complete, m.keys.Undo}
	}

	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return m.load()
}

// load fetches habits, level, badges and the last 30 days of stats.
func (m Model) load() tea.Cmd {
	engine, userID := m.engine, m.userID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		today, err := engine.Today(ctx)
		if err != nil {
			return errMsg{err}
		}
		if _, err := engine.GetProfile(ctx, userID); err != nil {
			return errMsg{err}
		}
		hs, err := engine.ListHabits(ctx, userID, false)
		if err != nil {
			return errMsg{err}
		}
		level, err := engine.GetLevel(ctx, userID)
		if err != nil {
			return errMsg{err}
		}
		bs, err := engine.ListBadges(ctx, userID)
		if err != nil {
			return errMsg{err}
		}
		from, err := utils.AddDays(today, -29)
		if err != nil {
			return errMsg{err}
		}
		stats, err := engine.Aggregate(ctx, userID, models.DateRange{From: from, To: today}, models.GranularityAuto)
		if err != nil {
			return errMsg{err}
		}
		return dataMsg{today: today, habits: hs, level: level, badges: bs, stats: stats}
	}
}

func (m Model) complete(habitID string) tea.Cmd {
	engine, userID, today := m.engine, m.userID, m.today
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		out, err := engine.RecordCompletion(ctx, habitID, userID, today, 100)
		if err != nil {
			return errMsg{err}
		}
		return outcomeMsg{status: summarize(out)}
	}
}

func (m Model) undo(habitID string) tea.Cmd {
	engine, today := m.engine, m.today
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		if _, err := engine.RemoveCompletion(ctx, habitID, today); err != nil {
			return errMsg{err}
		}
		return outcomeMsg{status: "Completion removed for " + today}
	}
}

func (m Model) createHabit(in progression.HabitInput) tea.Cmd {
	engine := m.engine
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		h, err := engine.CreateHabit(ctx, in)
		if err != nil {
			return errMsg{err}
		}
		return outcomeMsg{status: "Added habit: " + h.Title}
	}
}
