package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/storage"
)

const habitColumns = `id, user_id, title, icon, status, goal_target, goal_current, goal_unit,
	streak, longest_streak, last_broken_streak, total_completions, last_completed,
	archived_at, created_at, updated_at`

func scanHabit(row rowScanner) (models.Habit, error) {
	var h models.Habit
	var status string
	var lastCompleted, archivedAt sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&h.ID, &h.UserID, &h.Title, &h.Icon, &status,
		&h.Goal.Target, &h.Goal.Current, &h.Goal.Unit,
		&h.Streak, &h.LongestStreak, &h.LastBrokenStreak, &h.TotalCompletions,
		&lastCompleted, &archivedAt, &createdAt, &updatedAt)
	if err != nil {
		return models.Habit{}, err
	}
	h.Status = models.HabitStatus(status)
	h.LastCompleted = lastCompleted.String

	if h.ArchivedAt, err = parseNullTime("archived_at", archivedAt); err != nil {
		return models.Habit{}, err
	}
	if h.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return models.Habit{}, err
	}
	if h.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return models.Habit{}, err
	}
	return h, nil
}

func (s *Store) AddHabit(ctx context.Context, habit models.Habit) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO habits (`+habitColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		habit.ID, habit.UserID, habit.Title, habit.Icon, string(habit.Status),
		habit.Goal.Target, habit.Goal.Current, habit.Goal.Unit,
		habit.Streak, habit.LongestStreak, habit.LastBrokenStreak, habit.TotalCompletions,
		nullString(habit.LastCompleted), nullTime(habit.ArchivedAt),
		formatTime(habit.CreatedAt), formatTime(habit.UpdatedAt))
	return wrap("add habit", err)
}

func (s *Store) GetHabit(ctx context.Context, id string) (models.Habit, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+habitColumns+` FROM habits WHERE id = ?`, id)
	h, err := scanHabit(row)
	if err != nil {
		return models.Habit{}, wrap(fmt.Sprintf("get habit %s", id), err)
	}
	return h, nil
}

func (s *Store) GetHabitsForUser(ctx context.Context, userID string, includeArchived bool) ([]models.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE user_id = ?`
	if !includeArchived {
		query += ` AND status != 'archived'`
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, wrap("list habits", err)
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, wrap("list habits", err)
		}
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list habits", err)
	}
	return habits, nil
}

func (s *Store) UpdateHabit(ctx context.Context, habit models.Habit) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE habits SET
			title = ?, icon = ?, status = ?, goal_target = ?, goal_current = ?, goal_unit = ?,
			streak = ?, longest_streak = ?, last_broken_streak = ?, total_completions = ?,
			last_completed = ?, archived_at = ?, updated_at = ?
		WHERE id = ?`,
		habit.Title, habit.Icon, string(habit.Status), habit.Goal.Target, habit.Goal.Current, habit.Goal.Unit,
		habit.Streak, habit.LongestStreak, habit.LastBrokenStreak, habit.TotalCompletions,
		nullString(habit.LastCompleted), nullTime(habit.ArchivedAt), formatTime(habit.UpdatedAt),
		habit.ID)
	if err != nil {
		return wrap("update habit", err)
	}
	return storage.RequireAffected("update habit", result, "habit "+habit.ID)
}

func (s *Store) DeleteHabit(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap("delete habit", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM habit_completions WHERE habit_id = ?`, id); err != nil {
		return wrap("delete habit", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM habits WHERE id = ?`, id)
	if err != nil {
		return wrap("delete habit", err)
	}
	if err := storage.RequireAffected("delete habit", result, "habit "+id); err != nil {
		return err
	}
	return wrap("delete habit", tx.Commit())
}
