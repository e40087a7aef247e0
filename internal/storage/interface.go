package storage

import (
	"context"

	"github.com/julianstephens/habitlit/internal/models"
)

// Provider is the narrow query interface the progression engine consumes.
// Implementations must enforce uniqueness of (habit_id, date) completions,
// (user_id, badge_id) user badges and (user_id, source) XP events, and must
// return errors classified by the internal/errors kinds.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error
	GetConfigPath() string

	// Settings
	GetSettings(ctx context.Context) (models.Settings, error)
	SaveSettings(ctx context.Context, settings models.Settings) error

	// Habits
	AddHabit(ctx context.Context, habit models.Habit) error
	GetHabit(ctx context.Context, id string) (models.Habit, error)
	GetHabitsForUser(ctx context.Context, userID string, includeArchived bool) ([]models.Habit, error)
	UpdateHabit(ctx context.Context, habit models.Habit) error
	// DeleteHabit removes a habit and its completions. Only called on explicit user action.
	DeleteHabit(ctx context.Context, id string) error

	// Completions
	GetCompletion(ctx context.Context, habitID, date string) (models.Completion, error)
	// UpsertCompletion inserts or overwrites the completion keyed by (habit_id, date).
	UpsertCompletion(ctx context.Context, completion models.Completion) error
	DeleteCompletion(ctx context.Context, habitID, date string) error
	// GetCompletionsForHabit returns completions in [startDay, endDay], newest first.
	GetCompletionsForHabit(ctx context.Context, habitID, startDay, endDay string) ([]models.Completion, error)
	// GetCompletionsForUser returns completions in [startDay, endDay], oldest first.
	GetCompletionsForUser(ctx context.Context, userID, startDay, endDay string) ([]models.Completion, error)
	CountSuccessfulCompletions(ctx context.Context, habitID string) (int, error)
	CountUserSuccessfulCompletions(ctx context.Context, userID string) (int, error)

	// Badges
	SaveBadge(ctx context.Context, badge models.Badge) error
	GetBadges(ctx context.Context) ([]models.Badge, error)
	GetUserBadges(ctx context.Context, userID string) ([]models.UserBadge, error)
	// UpsertUserBadge writes progress for a (user, badge) pair. An unlocked row
	// is never re-locked and its progress is frozen.
	UpsertUserBadge(ctx context.Context, userBadge models.UserBadge) error

	// Profiles
	EnsureProfile(ctx context.Context, userID string) (models.Profile, error)
	GetProfile(ctx context.Context, userID string) (models.Profile, error)
	UpdateProfileLevel(ctx context.Context, userID string, level int) error
	// RaiseLongestStreak sets longest_streak to max(longest_streak, streak).
	RaiseLongestStreak(ctx context.Context, userID string, streak int) error

	// XP ledger
	// AppendXPEvent records the event and adds its amount to the profile in one
	// transaction. It returns false without changing anything when an event
	// with the same (user_id, source) already exists.
	AppendXPEvent(ctx context.Context, event models.XPEvent) (bool, error)
	GetXPForDay(ctx context.Context, userID, day string) (int, error)
}
