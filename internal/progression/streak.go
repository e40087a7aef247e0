package progression

import (
	"context"

	"github.com/julianstephens/habitlit/internal/constants"
	"github.com/julianstephens/habitlit/internal/logger"
	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/storage"
	"github.com/julianstephens/habitlit/internal/utils"
)

// StreakResult is the outcome of recomputing one habit's streak.
type StreakResult struct {
	HabitID       string `json:"habit_id"`
	Current       int    `json:"current"`
	Longest       int    `json:"longest"`
	Previous      int    `json:"previous"`
	LastCompleted string `json:"last_completed,omitempty"`
	Total         int    `json:"total_completions"`
	Extended      bool   `json:"extended"`

	// RunStart is the first day of the current run, empty when Current is 0.
	RunStart string `json:"run_start,omitempty"`

	// Broken is set when the previously stored run ended. BrokenLength is its length.
	Broken       bool `json:"broken"`
	BrokenLength int  `json:"broken_length,omitempty"`

	// Resumed is set when a new run started after a broken run of at least
	// ComebackMinBrokenStreak days. ResumedFrom is that broken length.
	Resumed     bool `json:"resumed"`
	ResumedFrom int  `json:"resumed_from,omitempty"`
}

// streakWalker consumes successful completion dates newest first and counts
// the run anchored at today or yesterday.
type streakWalker struct {
	today     string
	yesterday string
	started   bool
	done      bool
	count     int
	start     string
	latest    string

	// next is the day the run needs to continue
	next string
}

func newStreakWalker(today string) *streakWalker {
	return &streakWalker{today: today, yesterday: utils.MustAddDays(today, -1)}
}

// feed walks one page of successful dates in descending order. windowStart
// is the oldest day the page covers; an empty windowStart means the page is
// the complete history. It reports whether the walk is finished.
func (w *streakWalker) feed(days []string, windowStart string) bool {
	for _, d := range days {
		if w.done {
			break
		}
		if d > w.today {
			continue
		}
		if w.latest == "" {
			w.latest = d
		}
		if !w.started {
			if d != w.today && d != w.yesterday {
				w.done = true
				break
			}
			w.started = true
			w.count = 1
			w.start = d
			w.next = utils.MustAddDays(d, -1)
			continue
		}
		if d == w.next {
			w.count++
			w.start = d
			w.next = utils.MustAddDays(d, -1)
			continue
		}
		w.done = true
	}
	if w.done || !w.started || windowStart == "" {
		w.done = true
		return true
	}
	// The expected day lies inside the page but was missing: the run ended.
	if w.next >= windowStart {
		w.done = true
	}
	return w.done
}

// computeStreak counts consecutive successful days ending today or
// yesterday. days must be successful completion dates sorted newest first.
func computeStreak(days []string, today string) int {
	w := newStreakWalker(today)
	w.feed(days, "")
	return w.count
}

// StreakCalculator recomputes and persists habit streaks.
type StreakCalculator struct {
	store storage.Provider
	cal   calendar
}

func NewStreakCalculator(store storage.Provider, clock utils.Clock) *StreakCalculator {
	return &StreakCalculator{store: store, cal: calendar{store: store, clock: clock}}
}

func successfulDays(completions []models.Completion) []string {
	days := make([]string, 0, len(completions))
	for _, c := range completions {
		if c.Successful() {
			days = append(days, c.Date)
		}
	}
	return days
}

// walk pages backwards through the habit's history in lookback windows so
// each query stays bounded while long runs are still counted exactly.
func (s *StreakCalculator) walk(ctx context.Context, habitID, today string) (*streakWalker, error) {
	w := newStreakWalker(today)
	end := today
	for {
		start := utils.MustAddDays(end, -(constants.StreakLookbackDays - 1))
		completions, err := s.store.GetCompletionsForHabit(ctx, habitID, start, end)
		if err != nil {
			return nil, err
		}
		if w.feed(successfulDays(completions), start) {
			return w, nil
		}
		end = utils.MustAddDays(start, -1)
	}
}

// lastSuccessful finds the most recent successful day on or before end.
func (s *StreakCalculator) lastSuccessful(ctx context.Context, habitID, end string) (string, error) {
	completions, err := s.store.GetCompletionsForHabit(ctx, habitID, constants.EarliestDate, end)
	if err != nil {
		return "", err
	}
	for _, c := range completions {
		if c.Successful() {
			return c.Date, nil
		}
	}
	return "", nil
}

// Current returns the length of the habit's live run without persisting
// anything.
func (s *StreakCalculator) Current(ctx context.Context, habitID, today string) (int, error) {
	w, err := s.walk(ctx, habitID, today)
	if err != nil {
		return 0, err
	}
	return w.count, nil
}

// Recalculate recomputes the habit's current and longest streak from its
// completion history and persists the result.
func (s *StreakCalculator) Recalculate(ctx context.Context, habitID string) (StreakResult, error) {
	habit, err := s.store.GetHabit(ctx, habitID)
	if err != nil {
		return StreakResult{}, err
	}
	today, err := s.cal.today(ctx)
	if err != nil {
		return StreakResult{}, err
	}

	w, err := s.walk(ctx, habitID, today)
	if err != nil {
		return StreakResult{}, err
	}
	total, err := s.store.CountSuccessfulCompletions(ctx, habitID)
	if err != nil {
		return StreakResult{}, err
	}

	lastCompleted := w.latest
	if lastCompleted == "" && total > 0 {
		if lastCompleted, err = s.lastSuccessful(ctx, habitID, today); err != nil {
			return StreakResult{}, err
		}
	}

	result := StreakResult{
		HabitID:       habitID,
		Current:       w.count,
		Previous:      habit.Streak,
		LastCompleted: lastCompleted,
		Total:         total,
	}
	if w.count > 0 {
		result.RunStart = w.start
	}
	result.Longest = max(habit.LongestStreak, result.Current)

	// The stored run ended if the streak fell to zero, or if the day it was
	// last extended is older than the current run.
	previousRunEnded := result.Current == 0 ||
		(habit.LastCompleted != "" && habit.LastCompleted < result.RunStart)
	lastBroken := habit.LastBrokenStreak
	if result.Previous > 0 && previousRunEnded {
		result.Broken = true
		result.BrokenLength = result.Previous
		lastBroken = result.Previous
	}
	if result.Current > 0 && (result.Previous == 0 || result.Broken) {
		if lastBroken >= constants.ComebackMinBrokenStreak {
			result.Resumed = true
			result.ResumedFrom = lastBroken
		}
		lastBroken = 0
	}
	result.Extended = !result.Broken && result.Current > result.Previous

	habit.Streak = result.Current
	habit.LongestStreak = result.Longest
	habit.LastBrokenStreak = lastBroken
	habit.TotalCompletions = total
	habit.LastCompleted = lastCompleted
	habit.UpdatedAt = s.cal.clock.Now()
	if err := s.store.UpdateHabit(ctx, habit); err != nil {
		return StreakResult{}, err
	}
	if _, err := s.store.EnsureProfile(ctx, habit.UserID); err != nil {
		return StreakResult{}, err
	}
	if err := s.store.RaiseLongestStreak(ctx, habit.UserID, result.Longest); err != nil {
		return StreakResult{}, err
	}

	logger.Debug("Recalculated streak", "habit", habitID, "current", result.Current,
		"longest", result.Longest, "previous", result.Previous, "broken", result.Broken, "resumed", result.Resumed)
	return result, nil
}
