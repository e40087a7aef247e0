package progression

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/julianstephens/habitlit/internal/config"
	"github.com/julianstephens/habitlit/internal/logger"
	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/storage"
	"github.com/julianstephens/habitlit/internal/utils"
)

// Ledger grants XP through the append-only xp_events table. Every grant
// carries a source that is unique per user, so replays are no-ops.
type Ledger struct {
	store storage.Provider
	clock utils.Clock
	cfg   config.XP
}

func NewLedger(store storage.Provider, clock utils.Clock, cfg config.XP) *Ledger {
	return &Ledger{store: store, clock: clock, cfg: cfg}
}

func completionSource(habitID, date string) string {
	return fmt.Sprintf("completion:%s:%s", habitID, date)
}

// streakSource identifies the n-th milestone of the run that started on runStart.
func streakSource(habitID, runStart string, n int) string {
	return fmt.Sprintf("streak:%s:%s:%d", habitID, runStart, n)
}

func manualSource() string {
	return "manual:" + uuid.New().String()
}

// Grant records amount XP for source, trimmed to what is left of the daily
// cap for day. It returns the XP actually added, 0 for a replayed source or
// an exhausted cap.
func (l *Ledger) Grant(ctx context.Context, userID, source, day string, amount int) (int, error) {
	if amount <= 0 {
		return 0, nil
	}
	if l.cfg.DailyCap > 0 {
		used, err := l.store.GetXPForDay(ctx, userID, day)
		if err != nil {
			return 0, err
		}
		remaining := l.cfg.DailyCap - used
		if remaining <= 0 {
			logger.Debug("Daily XP cap reached", "user", userID, "day", day, "source", source)
			return 0, nil
		}
		amount = min(amount, remaining)
	}

	applied, err := l.store.AppendXPEvent(ctx, models.XPEvent{
		ID:        uuid.New().String(),
		UserID:    userID,
		Source:    source,
		Day:       day,
		Amount:    amount,
		CreatedAt: l.clock.Now(),
	})
	if err != nil {
		return 0, err
	}
	if !applied {
		logger.Debug("XP already granted", "user", userID, "source", source)
		return 0, nil
	}
	logger.Debug("Granted XP", "user", userID, "source", source, "amount", amount)
	return amount, nil
}

// GrantCompletion grants the per-completion reward for a habit-day. The grant
// is booked on today, the day it is paid, so backfilling old days still
// draws from today's cap.
func (l *Ledger) GrantCompletion(ctx context.Context, userID, habitID, date, today string) (int, error) {
	return l.Grant(ctx, userID, completionSource(habitID, date), today, l.cfg.PerCompletion)
}

// GrantStreakMilestones grants the streak bonus for every milestone of the
// current run up to its length. Like completions, bonuses are booked on today.
// Milestones already granted are skipped by the ledger.
func (l *Ledger) GrantStreakMilestones(ctx context.Context, userID string, streak StreakResult, today string) (int, error) {
	if streak.Current == 0 || l.cfg.StreakBonusEvery < 1 {
		return 0, nil
	}
	granted := 0
	for n := 1; n <= streak.Current/l.cfg.StreakBonusEvery; n++ {
		g, err := l.Grant(ctx, userID, streakSource(streak.HabitID, streak.RunStart, n), today, l.cfg.StreakBonus)
		if err != nil {
			return granted, err
		}
		granted += g
	}
	return granted, nil
}

// SyncLevel recomputes the cached level from the profile's XP. It returns a
// LevelUp event when the level increased.
func (l *Ledger) SyncLevel(ctx context.Context, userID string) (models.LevelInfo, *models.Event, error) {
	profile, err := l.store.GetProfile(ctx, userID)
	if err != nil {
		return models.LevelInfo{}, nil, err
	}
	info := ResolveLevel(profile.XP)
	if info.Level <= profile.Level {
		return info, nil, nil
	}
	if err := l.store.UpdateProfileLevel(ctx, userID, info.Level); err != nil {
		return info, nil, err
	}
	logger.Info("Level up", "user", userID, "from", profile.Level, "to", info.Level)
	return info, &models.Event{
		Type:   models.EventLevelUp,
		UserID: userID,
		From:   profile.Level,
		To:     info.Level,
	}, nil
}
