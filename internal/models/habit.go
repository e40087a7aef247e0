package models

import "time"

type HabitStatus string

const (
	HabitStatusPending  HabitStatus = "pending"
	HabitStatusActive   HabitStatus = "active"
	HabitStatusArchived HabitStatus = "archived"
)

// Goal is the daily target of a habit and today's progress toward it.
type Goal struct {
	Target  float64 `json:"target"`
	Unit    string  `json:"unit"`
	Current float64 `json:"current"`
}

// Habit represents a recurring practice owned by one user
type Habit struct {
	ID               string      `json:"id"`
	UserID           string      `json:"user_id"`
	Title            string      `json:"title"`
	Icon             string      `json:"icon,omitempty"`
	Status           HabitStatus `json:"status"`
	Goal             Goal        `json:"goal"`
	Streak           int         `json:"streak"`
	LongestStreak    int         `json:"longest_streak"`
	LastBrokenStreak int         `json:"last_broken_streak"`
	TotalCompletions int         `json:"total_completions"`
	LastCompleted    string      `json:"last_completed,omitempty"` // YYYY-MM-DD format
	ArchivedAt       *time.Time  `json:"archived_at,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// ActiveOn reports whether the habit counts toward the possible total of a day.
// The creation and archive stamps are read as calendar days in loc, the same
// calendar day is measured in.
func (h Habit) ActiveOn(day string, loc *time.Location) bool {
	if h.Status == HabitStatusPending {
		return false
	}
	if h.CreatedAt.In(loc).Format("2006-01-02") > day {
		return false
	}
	if h.ArchivedAt != nil && h.ArchivedAt.In(loc).Format("2006-01-02") <= day {
		return false
	}
	return true
}

// Completion is the fraction of a habit's goal achieved on one calendar day
type Completion struct {
	ID          string    `json:"id"`
	HabitID     string    `json:"habit_id"`
	UserID      string    `json:"user_id"`
	Date        string    `json:"date"` // YYYY-MM-DD format
	Percentage  int       `json:"percentage"`
	CompletedAt time.Time `json:"completed_at"`
}

// Successful reports whether the completion counts toward a streak.
func (c Completion) Successful() bool {
	return c.Percentage >= 100
}
