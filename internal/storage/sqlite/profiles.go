package sqlite

import (
	"context"
	"time"

	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/storage"
)

func (s *Store) GetProfile(ctx context.Context, userID string) (models.Profile, error) {
	var p models.Profile
	var createdAt, updatedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, xp, level, longest_streak, created_at, updated_at
		FROM profiles WHERE id = ?`, userID).
		Scan(&p.ID, &p.XP, &p.Level, &p.LongestStreak, &createdAt, &updatedAt)
	if err != nil {
		return models.Profile{}, wrap("get profile "+userID, err)
	}
	if p.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return models.Profile{}, wrap("get profile "+userID, err)
	}
	if p.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return models.Profile{}, wrap("get profile "+userID, err)
	}
	return p, nil
}

func (s *Store) EnsureProfile(ctx context.Context, userID string) (models.Profile, error) {
	now := formatTime(time.Now())
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, xp, level, longest_streak, created_at, updated_at)
		VALUES (?, 0, 1, 0, ?, ?)
		ON CONFLICT(id) DO NOTHING`, userID, now, now)
	if err != nil {
		return models.Profile{}, wrap("ensure profile", err)
	}
	return s.GetProfile(ctx, userID)
}

func (s *Store) UpdateProfileLevel(ctx context.Context, userID string, level int) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE profiles SET level = ?, updated_at = ? WHERE id = ?`,
		level, formatTime(time.Now()), userID)
	if err != nil {
		return wrap("update profile level", err)
	}
	return storage.RequireAffected("update profile level", result, "profile "+userID)
}

func (s *Store) RaiseLongestStreak(ctx context.Context, userID string, streak int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE profiles SET longest_streak = MAX(longest_streak, ?), updated_at = ?
		WHERE id = ? AND longest_streak < ?`,
		streak, formatTime(time.Now()), userID, streak)
	return wrap("raise longest streak", err)
}

func (s *Store) AppendXPEvent(ctx context.Context, event models.XPEvent) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, wrap("append xp event", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO xp_events (id, user_id, source, day, amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, source) DO NOTHING`,
		event.ID, event.UserID, event.Source, event.Day, event.Amount, formatTime(event.CreatedAt))
	if err != nil {
		return false, wrap("append xp event", err)
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return false, wrap("append xp event", err)
	}
	if inserted == 0 {
		return false, nil
	}

	result, err = tx.ExecContext(ctx, `
		UPDATE profiles SET xp = xp + ?, updated_at = ? WHERE id = ?`,
		event.Amount, formatTime(time.Now()), event.UserID)
	if err != nil {
		return false, wrap("append xp event", err)
	}
	if err := storage.RequireAffected("append xp event", result, "profile "+event.UserID); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, wrap("append xp event", err)
	}
	return true, nil
}

func (s *Store) GetXPForDay(ctx context.Context, userID, day string) (int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM xp_events WHERE user_id = ? AND day = ?`,
		userID, day).Scan(&total)
	if err != nil {
		return 0, wrap("sum xp for day", err)
	}
	return total, nil
}
