package sqlite

import (
	"context"

	"github.com/julianstephens/habitlit/internal/constants"
	"github.com/julianstephens/habitlit/internal/models"
)

func (s *Store) GetSettings(ctx context.Context) (models.Settings, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM settings")
	if err != nil {
		return models.Settings{}, wrap("get settings", err)
	}
	defer rows.Close()

	settings := models.Settings{Timezone: constants.DefaultTimezone}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return models.Settings{}, wrap("get settings", err)
		}
		switch key {
		case constants.SettingTimezone:
			settings.Timezone = value
		}
	}
	if err := rows.Err(); err != nil {
		return models.Settings{}, wrap("get settings", err)
	}

	return settings, nil
}

func (s *Store) SaveSettings(ctx context.Context, settings models.Settings) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		constants.SettingTimezone, settings.Timezone)
	return wrap("save settings", err)
}
