package models

type EventType string

const (
	EventStreakExtended EventType = "streak_extended"
	EventStreakBroken   EventType = "streak_broken"
	EventStreakResumed  EventType = "streak_resumed"
	EventLevelUp        EventType = "level_up"
	EventBadgeUnlocked  EventType = "badge_unlocked"
)

// Event is emitted by the engine when progression state changes in a way a
// presentation layer may want to celebrate or warn about.
type Event struct {
	Type    EventType `json:"type"`
	UserID  string    `json:"user_id"`
	HabitID string    `json:"habit_id,omitempty"`
	BadgeID string    `json:"badge_id,omitempty"`
	From    int       `json:"from"`
	To      int       `json:"to"`
}
