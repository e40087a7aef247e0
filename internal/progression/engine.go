package progression

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/habitlit/internal/cache"
	"github.com/julianstephens/habitlit/internal/config"
	"github.com/julianstephens/habitlit/internal/constants"
	apperrors "github.com/julianstephens/habitlit/internal/errors"
	"github.com/julianstephens/habitlit/internal/logger"
	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/storage"
	"github.com/julianstephens/habitlit/internal/utils"
)

// Options configure an Engine. Zero values fall back to defaults.
type Options struct {
	Clock    utils.Clock
	XP       config.XP
	Cache    cache.Cache
	CacheTTL time.Duration
}

// Engine turns completion events into streaks, XP, levels and badges. It
// holds no per-request state; everything durable lives in the store.
type Engine struct {
	store    storage.Provider
	cal      calendar
	recorder *Recorder
	streaks  *StreakCalculator
	ledger   *Ledger
	badges   *BadgeEngine
	stats    *Aggregator
}

func New(store storage.Provider, opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = utils.RealClock{}
	}
	if opts.XP == (config.XP{}) {
		opts.XP = config.Default().XP
	}
	if opts.CacheTTL == 0 {
		opts.CacheTTL = constants.DefaultCacheTTL
	}
	return &Engine{
		store:    store,
		cal:      calendar{store: store, clock: opts.Clock},
		recorder: NewRecorder(store, opts.Clock),
		streaks:  NewStreakCalculator(store, opts.Clock),
		ledger:   NewLedger(store, opts.Clock, opts.XP),
		badges:   NewBadgeEngine(store, opts.Clock),
		stats:    NewAggregator(store, opts.Clock, opts.Cache, opts.CacheTTL),
	}
}

// Outcome is everything a completion write produced. When RewardsPending is
// set the completion was stored but a later step failed; Reconcile repairs it.
type Outcome struct {
	Completion       models.Completion `json:"completion"`
	BecameSuccessful bool              `json:"became_successful"`
	Streak           StreakResult      `json:"streak"`
	XPGranted        int               `json:"xp_granted"`
	Level            models.LevelInfo  `json:"level"`
	NewBadges        []models.Badge    `json:"new_badges,omitempty"`
	Events           []models.Event    `json:"events,omitempty"`
	RewardsPending   bool              `json:"rewards_pending"`
	PendingReason    string            `json:"pending_reason,omitempty"`
}

func (o *Outcome) pending(stage string, err error) {
	o.RewardsPending = true
	o.PendingReason = stage + ": " + err.Error()
}

func streakEvents(userID string, s StreakResult) []models.Event {
	var events []models.Event
	if s.Broken {
		events = append(events, models.Event{Type: models.EventStreakBroken, UserID: userID, HabitID: s.HabitID, From: s.BrokenLength, To: 0})
	}
	if s.Resumed {
		events = append(events, models.Event{Type: models.EventStreakResumed, UserID: userID, HabitID: s.HabitID, From: s.ResumedFrom, To: s.Current})
	}
	if s.Extended {
		events = append(events, models.Event{Type: models.EventStreakExtended, UserID: userID, HabitID: s.HabitID, From: s.Previous, To: s.Current})
	}
	return events
}

func badgeEvents(userID string, unlocked []models.Badge) []models.Event {
	events := make([]models.Event, 0, len(unlocked))
	for _, b := range unlocked {
		events = append(events, models.Event{Type: models.EventBadgeUnlocked, UserID: userID, BadgeID: b.ID, To: b.Target})
	}
	return events
}

func logEvents(events []models.Event) {
	for _, ev := range events {
		logger.Info("Progression event", "type", ev.Type, "user", ev.UserID, "habit", ev.HabitID,
			"badge", ev.BadgeID, "from", ev.From, "to", ev.To)
	}
}

// RecordCompletion stores a completion and applies its rewards. The write is
// never rolled back: failures after it are reported through RewardsPending.
func (e *Engine) RecordCompletion(ctx context.Context, habitID, userID, date string, percentage int) (Outcome, error) {
	res, err := e.recorder.Record(ctx, habitID, userID, date, percentage)
	if err != nil {
		return Outcome{}, err
	}
	e.stats.Invalidate(ctx, userID)

	out := Outcome{Completion: res.Completion, BecameSuccessful: res.BecameSuccessful}
	if err := e.applyRewards(ctx, userID, res, &out); err != nil {
		logger.Error("Rewards pending after completion", "habit", habitID, "date", date, "error", err)
	}
	logEvents(out.Events)
	return out, nil
}

func (e *Engine) applyRewards(ctx context.Context, userID string, res RecordResult, out *Outcome) error {
	if _, err := e.store.EnsureProfile(ctx, userID); err != nil {
		out.pending("profile", err)
		return err
	}

	streak, err := e.streaks.Recalculate(ctx, res.Habit.ID)
	if err != nil {
		out.pending("streak", err)
		return err
	}
	out.Streak = streak
	out.Events = append(out.Events, streakEvents(userID, streak)...)

	if res.BecameSuccessful {
		granted, err := e.ledger.GrantCompletion(ctx, userID, res.Habit.ID, res.Completion.Date, res.Today)
		if err != nil {
			out.pending("xp", err)
			return err
		}
		out.XPGranted += granted
	}
	bonus, err := e.ledger.GrantStreakMilestones(ctx, userID, streak, res.Today)
	if err != nil {
		out.pending("xp", err)
		return err
	}
	out.XPGranted += bonus

	level, levelUp, err := e.ledger.SyncLevel(ctx, userID)
	if err != nil {
		out.pending("level", err)
		return err
	}
	out.Level = level
	if levelUp != nil {
		out.Events = append(out.Events, *levelUp)
	}

	total, err := e.store.CountUserSuccessfulCompletions(ctx, userID)
	if err != nil {
		out.pending("badges", err)
		return err
	}
	best, err := e.bestStreak(ctx, userID, res.Today, streak)
	if err != nil {
		out.pending("badges", err)
		return err
	}
	signal := BadgeSignal{CurrentStreak: &best, TotalCompletions: &total}
	if streak.Resumed {
		signal.Events = map[string]bool{EventComeback: true}
	}
	eval, err := e.badges.Evaluate(ctx, userID, signal)
	if err != nil {
		out.pending("badges", err)
		return err
	}
	out.NewBadges = eval.NewlyUnlocked
	out.Events = append(out.Events, badgeEvents(userID, eval.NewlyUnlocked)...)
	return nil
}

// bestStreak is the longest live run over the user's active habits. touched
// is the freshly recalculated streak of the habit that was just written.
func (e *Engine) bestStreak(ctx context.Context, userID, today string, touched StreakResult) (int, error) {
	habits, err := e.store.GetHabitsForUser(ctx, userID, false)
	if err != nil {
		return 0, err
	}
	best := touched.Current
	for _, h := range habits {
		if h.ID == touched.HabitID {
			continue
		}
		current, err := e.streaks.Current(ctx, h.ID, today)
		if err != nil {
			return 0, err
		}
		best = max(best, current)
	}
	return best, nil
}

// RemoveCompletion deletes a completion and recomputes the habit's streak.
// XP already granted is kept; the ledger prevents it being granted twice.
func (e *Engine) RemoveCompletion(ctx context.Context, habitID, date string) (Outcome, error) {
	habit, err := e.store.GetHabit(ctx, habitID)
	if err != nil {
		return Outcome{}, err
	}
	if err := e.recorder.Remove(ctx, habitID, date); err != nil {
		return Outcome{}, err
	}
	e.stats.Invalidate(ctx, habit.UserID)

	out := Outcome{Completion: models.Completion{HabitID: habitID, UserID: habit.UserID, Date: date}}
	streak, err := e.streaks.Recalculate(ctx, habitID)
	if err != nil {
		logger.Error("Streak recompute failed after undo", "habit", habitID, "date", date, "error", err)
		out.pending("streak", err)
		return out, nil
	}
	out.Streak = streak
	out.Events = streakEvents(habit.UserID, streak)
	logEvents(out.Events)
	return out, nil
}

// GetStreak recomputes and returns the habit's streak.
func (e *Engine) GetStreak(ctx context.Context, habitID string) (StreakResult, error) {
	return e.streaks.Recalculate(ctx, habitID)
}

// GetLevel resolves the level of a user's current XP.
func (e *Engine) GetLevel(ctx context.Context, userID string) (models.LevelInfo, error) {
	profile, err := e.store.GetProfile(ctx, userID)
	if err != nil {
		return models.LevelInfo{}, err
	}
	return ResolveLevel(profile.XP), nil
}

// GetProfile returns the user's XP totals, creating an empty profile if needed.
func (e *Engine) GetProfile(ctx context.Context, userID string) (models.Profile, error) {
	return e.store.EnsureProfile(ctx, userID)
}

// EvaluateBadges applies an explicit signal to the user's badges.
func (e *Engine) EvaluateBadges(ctx context.Context, userID string, signal BadgeSignal) (BadgeEvaluation, error) {
	if _, err := e.store.EnsureProfile(ctx, userID); err != nil {
		return BadgeEvaluation{}, err
	}
	eval, err := e.badges.Evaluate(ctx, userID, signal)
	if err != nil {
		return BadgeEvaluation{}, err
	}
	logEvents(badgeEvents(userID, eval.NewlyUnlocked))
	return eval, nil
}

// ListBadges returns every catalog badge with the user's progress.
func (e *Engine) ListBadges(ctx context.Context, userID string) ([]BadgeStatus, error) {
	eval, err := e.EvaluateBadges(ctx, userID, BadgeSignal{})
	if err != nil {
		return nil, err
	}
	return eval.Badges, nil
}

// Aggregate summarizes the user's completions over a date range.
func (e *Engine) Aggregate(ctx context.Context, userID string, r models.DateRange, g models.Granularity) (models.PeriodStats, error) {
	return e.stats.Aggregate(ctx, userID, r, g)
}

// CompareWeeks compares the last 7 days, today included, with the 7 before.
func (e *Engine) CompareWeeks(ctx context.Context, userID string) (models.Comparison, error) {
	today, err := e.cal.today(ctx)
	if err != nil {
		return models.Comparison{}, err
	}
	r := models.DateRange{From: utils.MustAddDays(today, -6), To: today}
	stats, err := e.stats.Aggregate(ctx, userID, r, models.GranularityDay)
	if err != nil {
		return models.Comparison{}, err
	}
	return stats.Comparison, nil
}

// XPAward is the result of a manual XP grant.
type XPAward struct {
	Granted int              `json:"granted"`
	Level   models.LevelInfo `json:"level"`
	Events  []models.Event   `json:"events,omitempty"`
}

// AwardXP grants amount XP to a user under a fresh ledger source, subject to
// the daily cap.
func (e *Engine) AwardXP(ctx context.Context, userID string, amount int) (XPAward, error) {
	if amount <= 0 {
		return XPAward{}, apperrors.Validation("award xp", "amount must be positive, got %d", amount)
	}
	if _, err := e.store.EnsureProfile(ctx, userID); err != nil {
		return XPAward{}, err
	}
	today, err := e.cal.today(ctx)
	if err != nil {
		return XPAward{}, err
	}
	granted, err := e.ledger.Grant(ctx, userID, manualSource(), today, amount)
	if err != nil {
		return XPAward{}, err
	}
	level, levelUp, err := e.ledger.SyncLevel(ctx, userID)
	if err != nil {
		return XPAward{}, err
	}
	award := XPAward{Granted: granted, Level: level}
	if levelUp != nil {
		award.Events = append(award.Events, *levelUp)
	}
	logEvents(award.Events)
	return award, nil
}

// ReconcileReport summarizes a reconciliation pass.
type ReconcileReport struct {
	UserID    string           `json:"user_id"`
	Habits    int              `json:"habits"`
	XPGranted int              `json:"xp_granted"`
	Level     models.LevelInfo `json:"level"`
	NewBadges []models.Badge   `json:"new_badges,omitempty"`
	Events    []models.Event   `json:"events,omitempty"`
}

// Reconcile re-derives every reward of a user from the completion history.
// It is idempotent: the ledger and the badge upserts absorb replays.
func (e *Engine) Reconcile(ctx context.Context, userID string) (ReconcileReport, error) {
	report := ReconcileReport{UserID: userID}
	if _, err := e.store.EnsureProfile(ctx, userID); err != nil {
		return report, err
	}
	today, err := e.cal.today(ctx)
	if err != nil {
		return report, err
	}

	habits, err := e.store.GetHabitsForUser(ctx, userID, true)
	if err != nil {
		return report, err
	}
	completions, err := e.store.GetCompletionsForUser(ctx, userID, constants.EarliestDate, today)
	if err != nil {
		return report, err
	}
	for _, c := range completions {
		if !c.Successful() {
			continue
		}
		granted, err := e.ledger.GrantCompletion(ctx, userID, c.HabitID, c.Date, today)
		if err != nil {
			return report, err
		}
		report.XPGranted += granted
	}

	bestStreak := 0
	for _, h := range habits {
		report.Habits++
		if h.Status == models.HabitStatusArchived {
			continue
		}
		streak, err := e.streaks.Recalculate(ctx, h.ID)
		if err != nil {
			return report, err
		}
		report.Events = append(report.Events, streakEvents(userID, streak)...)
		bestStreak = max(bestStreak, streak.Current)

		bonus, err := e.ledger.GrantStreakMilestones(ctx, userID, streak, today)
		if err != nil {
			return report, err
		}
		report.XPGranted += bonus
	}

	level, levelUp, err := e.ledger.SyncLevel(ctx, userID)
	if err != nil {
		return report, err
	}
	report.Level = level
	if levelUp != nil {
		report.Events = append(report.Events, *levelUp)
	}

	total, err := e.store.CountUserSuccessfulCompletions(ctx, userID)
	if err != nil {
		return report, err
	}
	eval, err := e.badges.Evaluate(ctx, userID, BadgeSignal{CurrentStreak: &bestStreak, TotalCompletions: &total})
	if err != nil {
		return report, err
	}
	report.NewBadges = eval.NewlyUnlocked
	report.Events = append(report.Events, badgeEvents(userID, eval.NewlyUnlocked)...)

	e.stats.Invalidate(ctx, userID)
	logEvents(report.Events)
	logger.Info("Reconciled progression", "user", userID, "habits", report.Habits, "xp_granted", report.XPGranted)
	return report, nil
}

// HabitInput describes a new habit.
type HabitInput struct {
	UserID string
	Title  string
	Icon   string
	Target float64
	Unit   string
}

// CreateHabit adds a pending habit. It becomes active on its first completion.
func (e *Engine) CreateHabit(ctx context.Context, in HabitInput) (models.Habit, error) {
	const op = "create habit"
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return models.Habit{}, apperrors.Validation(op, "title must not be empty")
	}
	if strings.TrimSpace(in.UserID) == "" {
		return models.Habit{}, apperrors.Validation(op, "user must not be empty")
	}
	if in.Target < 0 {
		return models.Habit{}, apperrors.Validation(op, "goal target must not be negative")
	}
	if in.Target == 0 {
		in.Target = 1
	}
	if _, err := e.store.EnsureProfile(ctx, in.UserID); err != nil {
		return models.Habit{}, err
	}

	now := e.cal.clock.Now()
	habit := models.Habit{
		ID:        uuid.New().String(),
		UserID:    in.UserID,
		Title:     title,
		Icon:      in.Icon,
		Status:    models.HabitStatusPending,
		Goal:      models.Goal{Target: in.Target, Unit: in.Unit},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.store.AddHabit(ctx, habit); err != nil {
		return models.Habit{}, err
	}
	e.stats.Invalidate(ctx, in.UserID)
	logger.Debug("Created habit", "habit", habit.ID, "user", in.UserID)
	return habit, nil
}

func (e *Engine) GetHabit(ctx context.Context, habitID string) (models.Habit, error) {
	return e.store.GetHabit(ctx, habitID)
}

func (e *Engine) ListHabits(ctx context.Context, userID string, includeArchived bool) ([]models.Habit, error) {
	return e.store.GetHabitsForUser(ctx, userID, includeArchived)
}

// ArchiveHabit hides a habit from new completions. Its history still counts
// for the days it was active.
func (e *Engine) ArchiveHabit(ctx context.Context, habitID string) (models.Habit, error) {
	habit, err := e.store.GetHabit(ctx, habitID)
	if err != nil {
		return models.Habit{}, err
	}
	if habit.Status == models.HabitStatusArchived {
		return habit, nil
	}
	now := e.cal.clock.Now()
	habit.Status = models.HabitStatusArchived
	habit.ArchivedAt = &now
	habit.UpdatedAt = now
	if err := e.store.UpdateHabit(ctx, habit); err != nil {
		return models.Habit{}, err
	}
	e.stats.Invalidate(ctx, habit.UserID)
	return habit, nil
}

// DeleteHabit permanently removes a habit and its completions.
func (e *Engine) DeleteHabit(ctx context.Context, habitID string) error {
	habit, err := e.store.GetHabit(ctx, habitID)
	if err != nil {
		return err
	}
	if err := e.store.DeleteHabit(ctx, habitID); err != nil {
		return err
	}
	e.stats.Invalidate(ctx, habit.UserID)
	logger.Info("Deleted habit", "habit", habitID, "user", habit.UserID)
	return nil
}

// Today returns the authoritative calendar date.
func (e *Engine) Today(ctx context.Context) (string, error) {
	return e.cal.today(ctx)
}
