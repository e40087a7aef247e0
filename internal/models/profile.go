package models

import "time"

// Profile holds a user's XP ledger totals
type Profile struct {
	ID            string    `json:"id"`
	XP            int       `json:"xp"`
	Level         int       `json:"level"`
	LongestStreak int       `json:"longest_streak"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// XPEvent is one append-only entry of the XP ledger. Source is unique per
// user so replaying the same grant is a no-op.
type XPEvent struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Source    string    `json:"source"`
	Day       string    `json:"day"` // YYYY-MM-DD format
	Amount    int       `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// LevelInfo is the resolved position of an XP total on the level ladder
type LevelInfo struct {
	Level           int     `json:"level"`
	Title           string  `json:"title"`
	XP              int     `json:"xp"`
	CurrentLevelXP  int     `json:"current_level_xp"`
	NextLevelXP     int     `json:"next_level_xp"`
	ProgressPercent float64 `json:"progress_percent"`
	MaxLevel        bool    `json:"max_level"`
}
