package progression

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/julianstephens/habitlit/internal/errors"
	"github.com/julianstephens/habitlit/internal/models"
)

func TestResolveGranularity(t *testing.T) {
	assert.Equal(t, models.GranularityDay, ResolveGranularity(models.GranularityAuto, 7))
	assert.Equal(t, models.GranularityDay, ResolveGranularity(models.GranularityAuto, 31))
	assert.Equal(t, models.GranularityWeek, ResolveGranularity(models.GranularityAuto, 32))
	assert.Equal(t, models.GranularityMonth, ResolveGranularity("", 365))
	assert.Equal(t, models.GranularityMonth, ResolveGranularity(models.GranularityMonth, 3))
}

func TestBuildBuckets(t *testing.T) {
	t.Run("days", func(t *testing.T) {
		b, err := BuildBuckets("2024-03-01", "2024-03-03", models.GranularityDay)
		require.NoError(t, err)
		require.Len(t, b, 3)
		assert.Equal(t, Bucket{Label: "2024-03-01", Start: "2024-03-01", End: "2024-03-01"}, b[0])
	})

	t.Run("weeks start on monday and are clipped", func(t *testing.T) {
		// 2024-03-06 is a Wednesday
		b, err := BuildBuckets("2024-03-06", "2024-03-20", models.GranularityWeek)
		require.NoError(t, err)
		require.Len(t, b, 3)
		assert.Equal(t, "2024-03-06", b[0].Start)
		assert.Equal(t, "2024-03-10", b[0].End)
		assert.Equal(t, "2024-03-11", b[1].Start)
		assert.Equal(t, "2024-03-17", b[1].End)
		assert.Equal(t, "2024-03-18", b[2].Start)
		assert.Equal(t, "2024-03-20", b[2].End)
		assert.Equal(t, "2024-W10", b[0].Label)
	})

	t.Run("months", func(t *testing.T) {
		b, err := BuildBuckets("2024-01-15", "2024-03-02", models.GranularityMonth)
		require.NoError(t, err)
		require.Len(t, b, 3)
		assert.Equal(t, "2024-01", b[0].Label)
		assert.Equal(t, "2024-01-31", b[0].End)
		assert.Equal(t, "2024-02-01", b[1].Start)
		assert.Equal(t, "2024-02-29", b[1].End)
		assert.Equal(t, "2024-03-02", b[2].End)
	})

	t.Run("unknown granularity", func(t *testing.T) {
		_, err := BuildBuckets("2024-01-01", "2024-01-02", "hour")
		assert.Error(t, err)
	})
}

func TestPercentChange(t *testing.T) {
	tests := []struct {
		name              string
		previous, current int
		want              float64
	}{
		{"both zero", 0, 0, 0},
		{"from zero", 0, 4, 100},
		{"doubled", 5, 10, 100},
		{"halved", 10, 5, -50},
		{"unchanged", 3, 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, PercentChange(tt.previous, tt.current), 0.0001)
		})
	}
}

func TestAggregateCountsDistinctActiveHabits(t *testing.T) {
	f := newFixture(t, "2024-03-10")
	h1 := f.addHabit(t, "Read", "2024-03-01")
	h2 := f.addHabit(t, "Run", "2024-03-01")
	f.complete(t, h1.ID, "2024-03-09", 100)
	f.complete(t, h2.ID, "2024-03-09", 0)

	stats, err := f.engine.Aggregate(f.ctx, testUser, models.DateRange{From: "2024-03-09", To: "2024-03-09"}, models.GranularityDay)
	require.NoError(t, err)
	require.Len(t, stats.Points, 1)
	assert.Equal(t, 1, stats.Points[0].Completed)
	assert.Equal(t, 2, stats.Points[0].Total)
	assert.InDelta(t, 50, stats.Points[0].Percentage, 0.0001)
	assert.InDelta(t, 50, stats.AveragePercentage, 0.0001)
}

func TestAggregateHabitActivityWindow(t *testing.T) {
	f := newFixture(t, "2024-03-10")
	early := f.addHabit(t, "Read", "2024-03-01")
	late := f.addHabit(t, "Run", "2024-03-05")
	f.addHabit(t, "Swim", "2024-03-01") // never completed, stays pending

	f.complete(t, early.ID, "2024-03-04", 100)
	f.complete(t, late.ID, "2024-03-06", 100)

	f.clock.AdvanceDays(-2) // archive on 2024-03-08
	_, err := f.engine.ArchiveHabit(f.ctx, early.ID)
	require.NoError(t, err)
	f.clock.AdvanceDays(2)

	stats, err := f.engine.Aggregate(f.ctx, testUser, models.DateRange{From: "2024-03-04", To: "2024-03-12"}, models.GranularityDay)
	require.NoError(t, err)

	byDay := map[string]models.StatPoint{}
	for _, p := range stats.Points {
		byDay[p.Start] = p
	}
	assert.Equal(t, 1, byDay["2024-03-04"].Total, "late habit not created yet, pending never counts")
	assert.Equal(t, 1, byDay["2024-03-04"].Completed)
	assert.Equal(t, 2, byDay["2024-03-06"].Total)
	assert.Equal(t, 1, byDay["2024-03-08"].Total, "archived habit stops counting")
	assert.Equal(t, 0, byDay["2024-03-11"].Total, "future days contribute nothing")
	assert.True(t, byDay["2024-03-10"].Current)
	assert.False(t, byDay["2024-03-09"].Current)
}

func TestAggregateBestWorstAndComparison(t *testing.T) {
	f := newFixture(t, "2024-03-10")
	h1 := f.addHabit(t, "Read", "2024-03-01")
	h2 := f.addHabit(t, "Run", "2024-03-01")

	// previous range 2024-03-04..2024-03-06: one completion
	f.complete(t, h1.ID, "2024-03-05", 100)
	// current range 2024-03-07..2024-03-09
	f.complete(t, h1.ID, "2024-03-07", 100)
	f.complete(t, h2.ID, "2024-03-07", 100)
	f.complete(t, h1.ID, "2024-03-08", 100)

	stats, err := f.engine.Aggregate(f.ctx, testUser, models.DateRange{From: "2024-03-07", To: "2024-03-09"}, models.GranularityDay)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalCompleted)
	assert.Equal(t, 6, stats.TotalPossible)
	require.NotNil(t, stats.BestPeriod)
	assert.Equal(t, "2024-03-07", stats.BestPeriod.Start)
	require.NotNil(t, stats.WorstPeriod)
	assert.Equal(t, "2024-03-09", stats.WorstPeriod.Start)
	assert.Equal(t, 1, stats.Comparison.Previous)
	assert.Equal(t, 3, stats.Comparison.Current)
	assert.InDelta(t, 200, stats.Comparison.ChangePercent, 0.0001)
}

func TestAggregateWorstExcludesToday(t *testing.T) {
	f := newFixture(t, "2024-03-10")
	h := f.addHabit(t, "Read", "2024-03-01")
	f.complete(t, h.ID, "2024-03-09", 100)

	stats, err := f.engine.Aggregate(f.ctx, testUser, models.DateRange{From: "2024-03-09", To: "2024-03-10"}, models.GranularityDay)
	require.NoError(t, err)
	require.NotNil(t, stats.WorstPeriod)
	assert.Equal(t, "2024-03-09", stats.WorstPeriod.Start, "today's 0% is not the worst day")
}

func TestAggregateWorstFallsBackToBest(t *testing.T) {
	f := newFixture(t, "2024-03-10")
	h := f.addHabit(t, "Read", "2024-03-01")
	f.complete(t, h.ID, "2024-03-10", 100)

	stats, err := f.engine.Aggregate(f.ctx, testUser, models.DateRange{From: "2024-03-10", To: "2024-03-10"}, models.GranularityDay)
	require.NoError(t, err)
	require.NotNil(t, stats.BestPeriod)
	require.NotNil(t, stats.WorstPeriod)
	assert.Equal(t, *stats.BestPeriod, *stats.WorstPeriod)
}

func TestAggregateEmptyHistoryIsZeroSafe(t *testing.T) {
	f := newFixture(t, "2024-03-10")
	stats, err := f.engine.Aggregate(f.ctx, testUser, models.DateRange{From: "2024-03-01", To: "2024-03-07"}, models.GranularityAuto)
	require.NoError(t, err)
	assert.Equal(t, models.GranularityDay, stats.Granularity)
	assert.Zero(t, stats.AveragePercentage)
	assert.Nil(t, stats.BestPeriod)
	assert.Nil(t, stats.WorstPeriod)
	assert.Zero(t, stats.Comparison.ChangePercent)
}

func TestAggregateValidation(t *testing.T) {
	f := newFixture(t, "2024-03-10")
	_, err := f.engine.Aggregate(f.ctx, testUser, models.DateRange{From: "2024-03-10", To: "2024-03-01"}, models.GranularityDay)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = f.engine.Aggregate(f.ctx, testUser, models.DateRange{From: "bad", To: "2024-03-01"}, models.GranularityDay)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = f.engine.Aggregate(f.ctx, testUser, models.DateRange{From: "2024-03-01", To: "2024-03-02"}, "hour")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	// too long to walk day by day
	_, err = f.engine.Aggregate(f.ctx, testUser, models.DateRange{From: "1990-01-01", To: "2024-03-01"}, models.GranularityAuto)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	// the previous period would start before the first calendar day
	_, err = f.engine.Aggregate(f.ctx, testUser, models.DateRange{From: "0001-01-02", To: "0001-01-05"}, models.GranularityDay)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestAggregateReadsHabitDatesInConfiguredTimezone(t *testing.T) {
	f := newFixture(t, "2026-03-01")
	require.NoError(t, f.store.SaveSettings(f.ctx, models.Settings{Timezone: "America/Los_Angeles"}))
	la, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	// 20:00 local is already the next day in UTC
	f.clock.Set(time.Date(2026, 3, 1, 20, 0, 0, 0, la))
	h, err := f.engine.CreateHabit(f.ctx, HabitInput{UserID: testUser, Title: "Read"})
	require.NoError(t, err)
	f.complete(t, h.ID, "2026-03-01", 100)

	stats, err := f.engine.Aggregate(f.ctx, testUser, models.DateRange{From: "2026-03-01", To: "2026-03-01"}, models.GranularityDay)
	require.NoError(t, err)
	require.Len(t, stats.Points, 1)
	assert.Equal(t, 1, stats.Points[0].Completed)
	assert.Equal(t, 1, stats.Points[0].Total)

	// archived on the evening of 03-02 local, so 03-02 no longer counts
	f.clock.AdvanceDays(1)
	_, err = f.engine.ArchiveHabit(f.ctx, h.ID)
	require.NoError(t, err)
	f.clock.AdvanceDays(1)

	stats, err = f.engine.Aggregate(f.ctx, testUser, models.DateRange{From: "2026-03-01", To: "2026-03-03"}, models.GranularityDay)
	require.NoError(t, err)
	require.Len(t, stats.Points, 3)
	assert.Equal(t, 1, stats.Points[0].Total)
	assert.Equal(t, 0, stats.Points[1].Total)
	assert.Equal(t, 0, stats.Points[2].Total)
}

func TestAggregateCacheInvalidatedByWrites(t *testing.T) {
	f := newFixture(t, "2024-03-10")
	h := f.addHabit(t, "Read", "2024-03-01")
	r := models.DateRange{From: "2024-03-10", To: "2024-03-10"}

	before, err := f.engine.Aggregate(f.ctx, testUser, r, models.GranularityDay)
	require.NoError(t, err)
	assert.Zero(t, before.TotalCompleted)

	f.complete(t, h.ID, "2024-03-10", 100)

	after, err := f.engine.Aggregate(f.ctx, testUser, r, models.GranularityDay)
	require.NoError(t, err)
	assert.Equal(t, 1, after.TotalCompleted)
}

func TestCompareWeeks(t *testing.T) {
	f := newFixture(t, "2024-03-14")
	h := f.addHabit(t, "Read", "2024-02-01")
	f.complete(t, h.ID, "2024-03-01", 100)
	f.complete(t, h.ID, "2024-03-08", 100)
	f.complete(t, h.ID, "2024-03-09", 100)

	cmp, err := f.engine.CompareWeeks(f.ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, 2, cmp.Current)
	assert.Equal(t, 1, cmp.Previous)
	assert.InDelta(t, 100, cmp.ChangePercent, 0.0001)
}
