package sqlite

import (
	"context"
	"database/sql"

	"github.com/julianstephens/habitlit/internal/models"
)

func (s *Store) SaveBadge(ctx context.Context, badge models.Badge) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO badges (id, name, description, category, target, tier, event)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			category = excluded.category,
			target = excluded.target,
			tier = excluded.tier,
			event = excluded.event`,
		badge.ID, badge.Name, badge.Description, string(badge.Category), badge.Target, badge.Tier, badge.Event)
	return wrap("save badge", err)
}

func (s *Store) GetBadges(ctx context.Context) ([]models.Badge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, category, target, tier, event
		FROM badges ORDER BY category, tier, target, id`)
	if err != nil {
		return nil, wrap("list badges", err)
	}
	defer rows.Close()

	var badges []models.Badge
	for rows.Next() {
		var b models.Badge
		var category string
		if err := rows.Scan(&b.ID, &b.Name, &b.Description, &category, &b.Target, &b.Tier, &b.Event); err != nil {
			return nil, wrap("list badges", err)
		}
		b.Category = models.BadgeCategory(category)
		badges = append(badges, b)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list badges", err)
	}
	return badges, nil
}

func (s *Store) GetUserBadges(ctx context.Context, userID string) ([]models.UserBadge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, badge_id, progress, unlocked, unlocked_at
		FROM user_badges WHERE user_id = ? ORDER BY badge_id`, userID)
	if err != nil {
		return nil, wrap("list user badges", err)
	}
	defer rows.Close()

	var result []models.UserBadge
	for rows.Next() {
		var ub models.UserBadge
		var unlocked int
		var unlockedAt sql.NullString
		if err := rows.Scan(&ub.ID, &ub.UserID, &ub.BadgeID, &ub.Progress, &unlocked, &unlockedAt); err != nil {
			return nil, wrap("list user badges", err)
		}
		ub.Unlocked = unlocked != 0
		if ub.UnlockedAt, err = parseNullTime("unlocked_at", unlockedAt); err != nil {
			return nil, wrap("list user badges", err)
		}
		result = append(result, ub)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list user badges", err)
	}
	return result, nil
}

// UpsertUserBadge never clears an unlock and freezes progress once unlocked,
// even if two evaluations race.
func (s *Store) UpsertUserBadge(ctx context.Context, ub models.UserBadge) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_badges (id, user_id, badge_id, progress, unlocked, unlocked_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, badge_id) DO UPDATE SET
			progress = CASE WHEN user_badges.unlocked = 1 THEN user_badges.progress ELSE excluded.progress END,
			unlocked = MAX(user_badges.unlocked, excluded.unlocked),
			unlocked_at = COALESCE(user_badges.unlocked_at, excluded.unlocked_at)`,
		ub.ID, ub.UserID, ub.BadgeID, ub.Progress, boolToInt(ub.Unlocked), nullTime(ub.UnlockedAt))
	return wrap("upsert user badge", err)
}
