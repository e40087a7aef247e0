package progression

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitlit/internal/cache"
	"github.com/julianstephens/habitlit/internal/config"
	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/storage/sqlite"
	"github.com/julianstephens/habitlit/internal/utils"
)

const testUser = "u1"

type fixture struct {
	ctx    context.Context
	store  *sqlite.Store
	clock  *utils.FakeClock
	cache  *cache.Memory
	engine *Engine
}

func setupTestSQLiteStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, store.Init())
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.SaveSettings(context.Background(), models.Settings{Timezone: "UTC"}))
	return store
}

func newFixture(t *testing.T, today string) *fixture {
	t.Helper()
	store := setupTestSQLiteStore(t)
	clock := utils.NewFakeClockOn(today)
	mem := cache.NewMemory()
	cfg := config.Default().XP
	return &fixture{
		ctx:    context.Background(),
		store:  store,
		clock:  clock,
		cache:  mem,
		engine: New(store, Options{Clock: clock, XP: cfg, Cache: mem}),
	}
}

// addHabit creates a habit whose creation date is created.
func (f *fixture) addHabit(t *testing.T, title, created string) models.Habit {
	t.Helper()
	saved := f.clock.Now()
	f.clock.Set(utils.NewFakeClockOn(created).Now())
	h, err := f.engine.CreateHabit(f.ctx, HabitInput{UserID: testUser, Title: title, Target: 10, Unit: "min"})
	f.clock.Set(saved)
	require.NoError(t, err)
	return h
}

// complete records a completion and fails the test on error or pending rewards.
func (f *fixture) complete(t *testing.T, habitID, date string, pct int) Outcome {
	t.Helper()
	out, err := f.engine.RecordCompletion(f.ctx, habitID, testUser, date, pct)
	require.NoError(t, err)
	require.False(t, out.RewardsPending, out.PendingReason)
	return out
}

func hasEvent(events []models.Event, typ models.EventType) bool {
	for _, ev := range events {
		if ev.Type == typ {
			return true
		}
	}
	return false
}
