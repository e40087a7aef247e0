package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitlit/internal/config"
	"github.com/julianstephens/habitlit/internal/models"
)

func TestLedgerGrantIsIdempotent(t *testing.T) {
	f := newFixture(t, "2024-03-10")
	_, err := f.store.EnsureProfile(f.ctx, testUser)
	require.NoError(t, err)
	l := NewLedger(f.store, f.clock, config.Default().XP)

	got, err := l.GrantCompletion(f.ctx, testUser, "h1", "2024-03-10", "2024-03-10")
	require.NoError(t, err)
	assert.Equal(t, 10, got)

	got, err = l.GrantCompletion(f.ctx, testUser, "h1", "2024-03-10", "2024-03-10")
	require.NoError(t, err)
	assert.Zero(t, got)

	profile, err := f.store.GetProfile(f.ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, 10, profile.XP)
}

func TestLedgerDailyCapTrimsGrants(t *testing.T) {
	f := newFixture(t, "2024-03-10")
	_, err := f.store.EnsureProfile(f.ctx, testUser)
	require.NoError(t, err)
	l := NewLedger(f.store, f.clock, config.XP{PerCompletion: 10, StreakBonus: 25, StreakBonusEvery: 7, DailyCap: 25})

	var granted []int
	for _, h := range []string{"a", "b", "c"} {
		g, err := l.GrantCompletion(f.ctx, testUser, h, "2024-03-10", "2024-03-10")
		require.NoError(t, err)
		granted = append(granted, g)
	}
	assert.Equal(t, []int{10, 10, 5}, granted)

	g, err := l.GrantCompletion(f.ctx, testUser, "d", "2024-03-10", "2024-03-10")
	require.NoError(t, err)
	assert.Zero(t, g, "cap exhausted")

	g, err = l.GrantCompletion(f.ctx, testUser, "d", "2024-03-10", "2024-03-11")
	require.NoError(t, err)
	assert.Equal(t, 10, g, "cap is per day")
}

func TestLedgerBooksBackfillOnGrantDay(t *testing.T) {
	f := newFixture(t, "2024-03-10")
	_, err := f.store.EnsureProfile(f.ctx, testUser)
	require.NoError(t, err)
	l := NewLedger(f.store, f.clock, config.XP{PerCompletion: 10, StreakBonus: 25, StreakBonusEvery: 7, DailyCap: 25})

	var total int
	for _, date := range []string{"2024-03-10", "2024-03-09", "2024-03-08", "2024-03-07"} {
		g, err := l.GrantCompletion(f.ctx, testUser, "h1", date, "2024-03-10")
		require.NoError(t, err)
		total += g
	}
	assert.Equal(t, 25, total)

	old, err := f.store.GetXPForDay(f.ctx, testUser, "2024-03-07")
	require.NoError(t, err)
	assert.Zero(t, old, "backfilled days do not get their own cap")
}

func TestLedgerStreakMilestones(t *testing.T) {
	f := newFixture(t, "2024-03-14")
	_, err := f.store.EnsureProfile(f.ctx, testUser)
	require.NoError(t, err)
	l := NewLedger(f.store, f.clock, config.Default().XP)

	streak := StreakResult{HabitID: "h1", Current: 14, RunStart: "2024-03-01"}
	got, err := l.GrantStreakMilestones(f.ctx, testUser, streak, "2024-03-14")
	require.NoError(t, err)
	assert.Equal(t, 50, got)

	got, err = l.GrantStreakMilestones(f.ctx, testUser, streak, "2024-03-14")
	require.NoError(t, err)
	assert.Zero(t, got, "milestones are granted once per run")

	today, err := f.store.GetXPForDay(f.ctx, testUser, "2024-03-14")
	require.NoError(t, err)
	assert.Equal(t, 50, today)
}

func TestSyncLevelEmitsLevelUp(t *testing.T) {
	f := newFixture(t, "2024-03-10")
	_, err := f.store.EnsureProfile(f.ctx, testUser)
	require.NoError(t, err)
	l := NewLedger(f.store, f.clock, config.Default().XP)

	_, err = l.Grant(f.ctx, testUser, "manual:1", "2024-03-10", 120)
	require.NoError(t, err)

	info, ev, err := l.SyncLevel(f.ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, 2, info.Level)
	require.NotNil(t, ev)
	assert.Equal(t, models.EventLevelUp, ev.Type)
	assert.Equal(t, 1, ev.From)
	assert.Equal(t, 2, ev.To)

	_, ev, err = l.SyncLevel(f.ctx, testUser)
	require.NoError(t, err)
	assert.Nil(t, ev)
}
