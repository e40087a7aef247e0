package models

import "time"

type BadgeCategory string

const (
	BadgeCategoryStreak      BadgeCategory = "streak"
	BadgeCategoryCompletions BadgeCategory = "completions"
	BadgeCategoryResilience  BadgeCategory = "resilience"
)

// Badge is a static catalog definition
type Badge struct {
	ID          string        `json:"id" yaml:"id"`
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description" yaml:"description"`
	Category    BadgeCategory `json:"category" yaml:"category"`
	Target      int           `json:"target" yaml:"target"`
	Tier        int           `json:"tier" yaml:"tier"`
	Event       string        `json:"event,omitempty" yaml:"event,omitempty"` // resilience badges only
}

// UserBadge is a user's progress toward one badge
type UserBadge struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	BadgeID    string     `json:"badge_id"`
	Progress   int        `json:"progress"`
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
}
