package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/habitlit/internal/backup"
	"github.com/julianstephens/habitlit/internal/config"
	"github.com/julianstephens/habitlit/internal/logger"
	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/progression"
	"github.com/julianstephens/habitlit/internal/storage"
	"github.com/julianstephens/habitlit/internal/storage/sqlite"
	"github.com/julianstephens/habitlit/internal/utils"
)

type Context struct {
	Store  storage.Provider
	Engine *progression.Engine
	Config config.Config
	Clock  utils.Clock
	// User is the profile every command acts on.
	User string
}

// NewContext builds the engine for store using the XP tunables of cfg.
func NewContext(store storage.Provider, cfg config.Config, clock utils.Clock) *Context {
	if clock == nil {
		clock = utils.RealClock{}
	}
	return &Context{
		Store:  store,
		Engine: progression.New(store, progression.Options{Clock: clock, XP: cfg.XP, CacheTTL: cfg.Redis.TTL}),
		Config: cfg,
		Clock:  clock,
		User:   cfg.User,
	}
}

// PerformAutomaticBackup backs up SQLite stores and only logs failures.
func (c *Context) PerformAutomaticBackup() {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.Create(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// resolveDate defaults an empty date to the store's today.
func (c *Context) resolveDate(ctx context.Context, date string) (string, error) {
	if date != "" {
		if !utils.ValidateDate(date) {
			return "", fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", date)
		}
		return date, nil
	}
	return c.Engine.Today(ctx)
}

// findHabit accepts a habit ID, an ID prefix or an exact title.
func (c *Context) findHabit(ctx context.Context, ref string) (models.Habit, error) {
	habits, err := c.Engine.ListHabits(ctx, c.User, true)
	if err != nil {
		return models.Habit{}, err
	}
	var matches []models.Habit
	for _, h := range habits {
		if h.ID == ref || strings.EqualFold(h.Title, ref) {
			return h, nil
		}
		if len(ref) >= 4 && strings.HasPrefix(h.ID, ref) {
			matches = append(matches, h)
		}
	}
	switch len(matches) {
	case 0:
		return models.Habit{}, fmt.Errorf("habit %q not found", ref)
	case 1:
		return matches[0], nil
	default:
		return models.Habit{}, fmt.Errorf("habit prefix %q is ambiguous (%d matches)", ref, len(matches))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func printEvents(events []models.Event) {
	for _, ev := range events {
		switch ev.Type {
		case models.EventStreakExtended:
			fmt.Printf("🔥 Streak extended: %d → %d days\n", ev.From, ev.To)
		case models.EventStreakBroken:
			fmt.Printf("💔 Streak of %d days broken\n", ev.From)
		case models.EventStreakResumed:
			fmt.Printf("💪 Back on track after losing a %d-day streak\n", ev.From)
		case models.EventLevelUp:
			fmt.Printf("⭐ Level up! %d → %d (%s)\n", ev.From, ev.To, progression.LevelTitle(ev.To))
		case models.EventBadgeUnlocked:
			fmt.Printf("🏅 Badge unlocked: %s\n", ev.BadgeID)
		}
	}
}

func printLevel(level models.LevelInfo) {
	if level.MaxLevel {
		fmt.Printf("Level %d %s  %d XP (max level)\n", level.Level, level.Title, level.XP)
		return
	}
	fmt.Printf("Level %d %s  %d XP  [%s] %.0f%% to level %d (%d XP)\n",
		level.Level, level.Title, level.XP, bar(level.ProgressPercent, 20), level.ProgressPercent,
		level.Level+1, level.NextLevelXP)
}

// bar renders pct (0-100) as a fixed-width text bar.
func bar(pct float64, width int) string {
	filled := int(pct / 100 * float64(width))
	filled = max(0, min(width, filled))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
