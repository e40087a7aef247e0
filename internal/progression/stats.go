package progression

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/habitlit/internal/cache"
	"github.com/julianstephens/habitlit/internal/constants"
	apperrors "github.com/julianstephens/habitlit/internal/errors"
	"github.com/julianstephens/habitlit/internal/logger"
	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/storage"
	"github.com/julianstephens/habitlit/internal/utils"
)

// Bucket is one reporting period of an aggregation, clipped to the range.
type Bucket struct {
	Label string
	Start string
	End   string
}

// ResolveGranularity picks the bucket size for auto ranges.
func ResolveGranularity(g models.Granularity, days int) models.Granularity {
	if g != models.GranularityAuto && g != "" {
		return g
	}
	switch {
	case days <= constants.AutoDayMaxDays:
		return models.GranularityDay
	case days <= constants.AutoWeekMaxDays:
		return models.GranularityWeek
	default:
		return models.GranularityMonth
	}
}

func bucketLabel(start string, g models.Granularity) string {
	t, _ := utils.ParseDate(start)
	switch g {
	case models.GranularityWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case models.GranularityMonth:
		return t.Format(constants.MonthLabelFormat)
	default:
		return start
	}
}

// BuildBuckets splits [from, to] into day, week (Monday-based) or month
// buckets. The first and last buckets are clipped to the range.
func BuildBuckets(from, to string, g models.Granularity) ([]Bucket, error) {
	if !utils.ValidateDate(from) || !utils.ValidateDate(to) {
		return nil, fmt.Errorf("invalid range %s..%s", from, to)
	}
	var buckets []Bucket
	for day := from; day <= to; {
		var periodStart, next string
		var err error
		switch g {
		case models.GranularityDay:
			periodStart, next = day, utils.MustAddDays(day, 1)
		case models.GranularityWeek:
			if periodStart, err = utils.StartOfWeek(day); err != nil {
				return nil, err
			}
			next = utils.MustAddDays(periodStart, 7)
		case models.GranularityMonth:
			if periodStart, err = utils.StartOfMonth(day); err != nil {
				return nil, err
			}
			t, _ := utils.ParseDate(periodStart)
			next = t.AddDate(0, 1, 0).Format(constants.DateFormat)
		default:
			return nil, fmt.Errorf("unknown granularity %q", g)
		}
		end := utils.MinDate(utils.MustAddDays(next, -1), to)
		buckets = append(buckets, Bucket{Label: bucketLabel(periodStart, g), Start: day, End: end})
		day = next
	}
	return buckets, nil
}

// PercentChange compares two counts. A zero baseline reports +100 when
// current is positive and 0 otherwise.
func PercentChange(previous, current int) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return float64(current-previous) / float64(previous) * 100
}

func percentage(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}

// dayCounter answers per-day completed/total questions over a loaded history.
type dayCounter struct {
	habits  []models.Habit
	success map[string]map[string]bool // day -> habit id set
	today   string
	loc     *time.Location
}

func newDayCounter(habits []models.Habit, completions []models.Completion, today string, loc *time.Location) *dayCounter {
	byID := make(map[string]models.Habit, len(habits))
	for _, h := range habits {
		byID[h.ID] = h
	}
	success := make(map[string]map[string]bool)
	for _, c := range completions {
		if !c.Successful() {
			continue
		}
		h, ok := byID[c.HabitID]
		if !ok || !h.ActiveOn(c.Date, loc) {
			continue
		}
		if success[c.Date] == nil {
			success[c.Date] = make(map[string]bool)
		}
		success[c.Date][c.HabitID] = true
	}
	return &dayCounter{habits: habits, success: success, today: today, loc: loc}
}

// count returns the distinct habits completed on day and the habits active
// that day. Days after today contribute nothing.
func (d *dayCounter) count(day string) (completed, total int) {
	if day > d.today {
		return 0, 0
	}
	for _, h := range d.habits {
		if h.ActiveOn(day, d.loc) {
			total++
		}
	}
	return len(d.success[day]), total
}

func (d *dayCounter) sum(from, to string) (completed, total int) {
	for day := from; day <= to; day = utils.MustAddDays(day, 1) {
		c, t := d.count(day)
		completed += c
		total += t
	}
	return completed, total
}

// buildPeriodStats aggregates the counter over buckets. Worst excludes the
// bucket holding today (or later) and falls back to best when nothing else
// qualifies.
func buildPeriodStats(counter *dayCounter, buckets []Bucket) models.PeriodStats {
	stats := models.PeriodStats{Points: make([]models.StatPoint, 0, len(buckets))}
	for _, b := range buckets {
		completed, total := counter.sum(b.Start, b.End)
		stats.Points = append(stats.Points, models.StatPoint{
			Label:      b.Label,
			Start:      b.Start,
			End:        b.End,
			Completed:  completed,
			Total:      total,
			Percentage: percentage(completed, total),
			Current:    b.End >= counter.today,
		})
		stats.TotalCompleted += completed
		stats.TotalPossible += total
	}
	stats.AveragePercentage = percentage(stats.TotalCompleted, stats.TotalPossible)

	for i := range stats.Points {
		p := &stats.Points[i]
		if p.Total == 0 {
			continue
		}
		if stats.BestPeriod == nil || p.Percentage > stats.BestPeriod.Percentage {
			best := *p
			stats.BestPeriod = &best
		}
		if p.Current {
			continue
		}
		if stats.WorstPeriod == nil || p.Percentage < stats.WorstPeriod.Percentage {
			worst := *p
			stats.WorstPeriod = &worst
		}
	}
	if stats.WorstPeriod == nil && stats.BestPeriod != nil {
		worst := *stats.BestPeriod
		stats.WorstPeriod = &worst
	}
	return stats
}

// Aggregator summarizes completions over date ranges. It is read-only.
type Aggregator struct {
	store storage.Provider
	cal   calendar
	cache cache.Cache
	ttl   time.Duration
}

func NewAggregator(store storage.Provider, clock utils.Clock, c cache.Cache, ttl time.Duration) *Aggregator {
	if c == nil {
		c = cache.Noop{}
	}
	return &Aggregator{store: store, cal: calendar{store: store, clock: clock}, cache: c, ttl: ttl}
}

// Aggregate reports per-bucket completion percentages for userID over r,
// the best and worst buckets, and a comparison against the preceding range
// of equal length.
func (a *Aggregator) Aggregate(ctx context.Context, userID string, r models.DateRange, g models.Granularity) (models.PeriodStats, error) {
	const op = "aggregate"

	if !utils.ValidateDate(r.From) || !utils.ValidateDate(r.To) {
		return models.PeriodStats{}, apperrors.Validation(op, "invalid range %q..%q (expected YYYY-MM-DD)", r.From, r.To)
	}
	if r.From > r.To {
		return models.PeriodStats{}, apperrors.Validation(op, "range start %s is after end %s", r.From, r.To)
	}
	switch g {
	case "", models.GranularityAuto, models.GranularityDay, models.GranularityWeek, models.GranularityMonth:
	default:
		return models.PeriodStats{}, apperrors.Validation(op, "unknown granularity %q", g)
	}

	days, _ := utils.DaysBetween(r.From, r.To)
	days++
	if days > constants.MaxStatsRangeDays {
		return models.PeriodStats{}, apperrors.Validation(op, "range %s..%s spans %d days, at most %d allowed",
			r.From, r.To, days, constants.MaxStatsRangeDays)
	}
	// the comparison window must stay on the calendar too
	prevFrom, err := utils.AddDays(r.From, -days)
	if err != nil || prevFrom < constants.EarliestDate {
		return models.PeriodStats{}, apperrors.Validation(op, "range start %s leaves no room for the previous period", r.From)
	}
	prevTo := utils.MustAddDays(r.From, -1)
	g = ResolveGranularity(g, days)

	today, loc, err := a.cal.resolve(ctx)
	if err != nil {
		return models.PeriodStats{}, err
	}

	// today is part of the key since it decides which days count
	key := fmt.Sprintf("%s:%s:%s:%s", r.From, r.To, g, today)
	var cached models.PeriodStats
	if hit, err := a.cache.Get(ctx, userID, key, &cached); err != nil {
		logger.Warn("Stats cache read failed", "user", userID, "error", err)
	} else if hit {
		logger.Debug("Stats cache hit", "user", userID, "key", key)
		return cached, nil
	}

	habits, err := a.store.GetHabitsForUser(ctx, userID, true)
	if err != nil {
		return models.PeriodStats{}, err
	}
	completions, err := a.store.GetCompletionsForUser(ctx, userID, prevFrom, r.To)
	if err != nil {
		return models.PeriodStats{}, err
	}

	buckets, err := BuildBuckets(r.From, r.To, g)
	if err != nil {
		return models.PeriodStats{}, apperrors.Validation(op, "%v", err)
	}
	counter := newDayCounter(habits, completions, today, loc)
	stats := buildPeriodStats(counter, buckets)
	stats.UserID = userID
	stats.Range = r
	stats.Granularity = g

	previous, _ := counter.sum(prevFrom, prevTo)
	stats.Comparison = models.Comparison{
		Current:       stats.TotalCompleted,
		Previous:      previous,
		ChangePercent: PercentChange(previous, stats.TotalCompleted),
	}

	if err := a.cache.Set(ctx, userID, key, stats, a.ttl); err != nil {
		logger.Warn("Stats cache write failed", "user", userID, "error", err)
	}
	return stats, nil
}

// Invalidate drops cached aggregations for userID after a write.
func (a *Aggregator) Invalidate(ctx context.Context, userID string) {
	if err := a.cache.Invalidate(ctx, userID); err != nil {
		logger.Warn("Stats cache invalidation failed", "user", userID, "error", err)
	}
}
