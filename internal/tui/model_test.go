package tui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/progression"
	"github.com/julianstephens/habitlit/internal/storage/sqlite"
	"github.com/julianstephens/habitlit/internal/tui/components/habits"
	"github.com/julianstephens/habitlit/internal/utils"
)

func setupTestModel(t *testing.T) (Model, *progression.Engine) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	bg := context.Background()
	if err := store.SaveSettings(bg, models.Settings{Timezone: "UTC"}); err != nil {
		t.Fatalf("failed to save settings: %v", err)
	}
	if _, err := progression.SyncCatalog(bg, store); err != nil {
		t.Fatalf("failed to sync catalog: %v", err)
	}

	engine := progression.New(store, progression.Options{Clock: utils.NewFakeClockOn("2024-03-10")})
	return NewModel(engine, "local"), engine
}

// run executes cmd and feeds its message back into the model.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	next, _ := m.Update(cmd())
	return next.(Model)
}

func TestModel_LoadAndComplete(t *testing.T) {
	m, engine := setupTestModel(t)
	h, err := engine.CreateHabit(context.Background(), progression.HabitInput{UserID: "local", Title: "Read"})
	if err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}

	m = run(t, m, m.Init())
	if m.err != nil {
		t.Fatalf("load failed: %v", m.err)
	}
	if m.today != "2024-03-10" {
		t.Errorf("expected today 2024-03-10, got %s", m.today)
	}
	if m.level.Level != 1 {
		t.Errorf("expected level 1, got %d", m.level.Level)
	}

	next, cmd := m.Update(habits.CompleteHabitMsg{ID: h.ID})
	m = run(t, next.(Model), cmd)
	if !strings.Contains(m.status, "+10 XP") {
		t.Errorf("expected XP in status, got %q", m.status)
	}

	streak, err := engine.GetStreak(context.Background(), h.ID)
	if err != nil {
		t.Fatalf("streak failed: %v", err)
	}
	if streak.Current != 1 {
		t.Errorf("expected streak 1, got %d", streak.Current)
	}

	next, cmd = m.Update(habits.UndoHabitMsg{ID: h.ID})
	m = run(t, next.(Model), cmd)
	if !strings.Contains(m.status, "removed") {
		t.Errorf("expected undo status, got %q", m.status)
	}
}

func TestModel_TabsWrap(t *testing.T) {
	m, _ := setupTestModel(t)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m = next.(Model)
	if m.state != StateStats {
		t.Errorf("expected shift+tab from habits to wrap to stats, got %d", m.state)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	if m.state != StateHabits {
		t.Errorf("expected tab from stats to wrap to habits, got %d", m.state)
	}
}

func TestModel_ErrorIsShown(t *testing.T) {
	m, _ := setupTestModel(t)

	next, _ := m.Update(errMsg{err: context.DeadlineExceeded})
	m = next.(Model)
	if !strings.Contains(m.View(), "Error:") {
		t.Error("expected error line in view")
	}
}

func TestSummarize(t *testing.T) {
	out := progression.Outcome{
		XPGranted: 35,
		NewBadges: []models.Badge{{ID: "streak-7", Name: "Week Warrior"}},
		Events:    []models.Event{{Type: models.EventLevelUp, From: 1, To: 2}},
	}
	out.Streak.Current = 7

	got := summarize(out)
	for _, want := range []string{"Streak 7", "+35 XP", "unlocked Week Warrior", "level 2!"} {
		if !strings.Contains(got, want) {
			t.Errorf("summarize() = %q, missing %q", got, want)
		}
	}
}
