package postgres

import (
	"context"
	"fmt"

	"github.com/julianstephens/habitlit/internal/constants"
	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/storage"
)

const completionColumns = `id, habit_id, user_id, date, percentage, completed_at`

func scanCompletion(row rowScanner) (models.Completion, error) {
	var c models.Completion
	if err := row.Scan(&c.ID, &c.HabitID, &c.UserID, &c.Date, &c.Percentage, &c.CompletedAt); err != nil {
		return models.Completion{}, err
	}
	return c, nil
}

func (s *Store) GetCompletion(ctx context.Context, habitID, date string) (models.Completion, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+completionColumns+`
		FROM habit_completions WHERE habit_id = $1 AND date = $2`, habitID, date)
	c, err := scanCompletion(row)
	if err != nil {
		return models.Completion{}, wrap(fmt.Sprintf("get completion %s/%s", habitID, date), err)
	}
	return c, nil
}

func (s *Store) UpsertCompletion(ctx context.Context, completion models.Completion) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO habit_completions (`+completionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (habit_id, date) DO UPDATE SET
			percentage = EXCLUDED.percentage,
			completed_at = EXCLUDED.completed_at`,
		completion.ID, completion.HabitID, completion.UserID, completion.Date,
		completion.Percentage, completion.CompletedAt)
	return wrap("upsert completion", err)
}

func (s *Store) DeleteCompletion(ctx context.Context, habitID, date string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM habit_completions WHERE habit_id = $1 AND date = $2`, habitID, date)
	if err != nil {
		return wrap("delete completion", err)
	}
	return storage.RequireAffected("delete completion", result, fmt.Sprintf("completion for %s on %s", habitID, date))
}

func (s *Store) queryCompletions(ctx context.Context, op, query string, args ...any) ([]models.Completion, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	var completions []models.Completion
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, wrap(op, err)
		}
		completions = append(completions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return completions, nil
}

func (s *Store) GetCompletionsForHabit(ctx context.Context, habitID, startDay, endDay string) ([]models.Completion, error) {
	return s.queryCompletions(ctx, "list habit completions", `
		SELECT `+completionColumns+`
		FROM habit_completions
		WHERE habit_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date DESC`, habitID, startDay, endDay)
}

func (s *Store) GetCompletionsForUser(ctx context.Context, userID, startDay, endDay string) ([]models.Completion, error) {
	return s.queryCompletions(ctx, "list user completions", `
		SELECT `+completionColumns+`
		FROM habit_completions
		WHERE user_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date, habit_id`, userID, startDay, endDay)
}

func (s *Store) CountSuccessfulCompletions(ctx context.Context, habitID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM habit_completions WHERE habit_id = $1 AND percentage >= $2`,
		habitID, constants.SuccessPercentage).Scan(&count)
	if err != nil {
		return 0, wrap("count completions", err)
	}
	return count, nil
}

func (s *Store) CountUserSuccessfulCompletions(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM habit_completions WHERE user_id = $1 AND percentage >= $2`,
		userID, constants.SuccessPercentage).Scan(&count)
	if err != nil {
		return 0, wrap("count user completions", err)
	}
	return count, nil
}
