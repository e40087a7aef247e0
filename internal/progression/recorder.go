package progression

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/julianstephens/habitlit/internal/constants"
	apperrors "github.com/julianstephens/habitlit/internal/errors"
	"github.com/julianstephens/habitlit/internal/logger"
	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/storage"
	"github.com/julianstephens/habitlit/internal/utils"
)

// RecordResult describes what a completion write changed.
type RecordResult struct {
	Habit      models.Habit
	Completion models.Completion
	Today      string

	// Previous is the percentage stored for the day before this write, nil
	// when the day had no completion.
	Previous *int

	// BecameSuccessful is true only when this write turned the day from
	// non-successful into successful. Completion XP is keyed on it.
	BecameSuccessful bool
}

// Recorder persists one day's completion percentage for a habit. It never
// touches XP or badges so that recomputation can be replayed safely.
type Recorder struct {
	store storage.Provider
	cal   calendar
}

func NewRecorder(store storage.Provider, clock utils.Clock) *Recorder {
	return &Recorder{store: store, cal: calendar{store: store, clock: clock}}
}

// Record upserts the completion keyed by (habitID, date). Calling it twice
// with the same arguments leaves a single row.
func (r *Recorder) Record(ctx context.Context, habitID, userID, date string, percentage int) (RecordResult, error) {
	const op = "record completion"

	if percentage < 0 || percentage > 100 {
		return RecordResult{}, apperrors.Validation(op, "percentage must be between 0 and 100, got %d", percentage)
	}
	if !utils.ValidateDate(date) {
		return RecordResult{}, apperrors.Validation(op, "invalid date %q (expected YYYY-MM-DD)", date)
	}
	today, err := r.cal.today(ctx)
	if err != nil {
		return RecordResult{}, err
	}
	if date > today {
		return RecordResult{}, apperrors.Validation(op, "cannot record a completion for %s, today is %s", date, today)
	}

	habit, err := r.store.GetHabit(ctx, habitID)
	if err != nil {
		return RecordResult{}, err
	}
	if habit.UserID != userID {
		return RecordResult{}, apperrors.NotFound(op, "habit %s not found", habitID)
	}
	if habit.Status == models.HabitStatusArchived {
		return RecordResult{}, apperrors.Validation(op, "habit %q is archived", habit.Title)
	}

	result := RecordResult{Habit: habit, Today: today}

	prev, err := r.store.GetCompletion(ctx, habitID, date)
	switch {
	case err == nil:
		p := prev.Percentage
		result.Previous = &p
	case errors.Is(err, apperrors.ErrNotFound):
	default:
		return RecordResult{}, err
	}

	now := r.cal.clock.Now()
	completion := models.Completion{
		ID:          uuid.New().String(),
		HabitID:     habitID,
		UserID:      userID,
		Date:        date,
		Percentage:  percentage,
		CompletedAt: now,
	}
	if err := r.store.UpsertCompletion(ctx, completion); err != nil {
		return RecordResult{}, err
	}
	if result.Previous != nil {
		// the upsert keeps the original row id
		completion.ID = prev.ID
	}
	result.Completion = completion
	result.BecameSuccessful = percentage >= constants.SuccessPercentage &&
		(result.Previous == nil || *result.Previous < constants.SuccessPercentage)

	changed := false
	if habit.Status == models.HabitStatusPending {
		habit.Status = models.HabitStatusActive
		changed = true
	}
	if date == today {
		habit.Goal.Current = float64(percentage) * habit.Goal.Target / 100
		changed = true
	}
	if changed {
		habit.UpdatedAt = now
		if err := r.store.UpdateHabit(ctx, habit); err != nil {
			return RecordResult{}, err
		}
	}
	result.Habit = habit

	logger.Debug("Recorded completion", "habit", habitID, "date", date, "percentage", percentage,
		"became_successful", result.BecameSuccessful)
	return result, nil
}

// Remove deletes the completion for (habitID, date), enabling undo.
func (r *Recorder) Remove(ctx context.Context, habitID, date string) error {
	const op = "remove completion"

	if !utils.ValidateDate(date) {
		return apperrors.Validation(op, "invalid date %q (expected YYYY-MM-DD)", date)
	}
	if err := r.store.DeleteCompletion(ctx, habitID, date); err != nil {
		return err
	}

	today, err := r.cal.today(ctx)
	if err != nil {
		return err
	}
	if date == today {
		habit, err := r.store.GetHabit(ctx, habitID)
		if err != nil {
			return err
		}
		habit.Goal.Current = 0
		habit.UpdatedAt = r.cal.clock.Now()
		if err := r.store.UpdateHabit(ctx, habit); err != nil {
			return err
		}
	}

	logger.Debug("Removed completion", "habit", habitID, "date", date)
	return nil
}
