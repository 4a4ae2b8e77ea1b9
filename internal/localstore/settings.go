package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hray3182/DoseLine/internal/models"
	"github.com/hray3182/DoseLine/internal/storage"
)

func (s *Store) GetSettings(ctx context.Context, userID int64) (*models.UserSettings, error) {
	settings := &models.UserSettings{UserID: userID}
	var updated string
	err := s.db.QueryRowContext(ctx,
		`SELECT timezone, sleep_start, sleep_end, updated_at FROM settings WHERE user_id = ?`, userID,
	).Scan(&settings.Timezone, &settings.SleepStart, &settings.SleepEnd, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFound("settings for user %d not found", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	settings.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return settings, nil
}

func (s *Store) SaveSettings(ctx context.Context, settings *models.UserSettings) error {
	settings.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (user_id, timezone, sleep_start, sleep_end, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			timezone = excluded.timezone,
			sleep_start = excluded.sleep_start,
			sleep_end = excluded.sleep_end,
			updated_at = excluded.updated_at`,
		settings.UserID, settings.Timezone, settings.SleepStart, settings.SleepEnd,
		settings.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
