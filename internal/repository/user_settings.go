package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hray3182/DoseLine/internal/database"
	"github.com/hray3182/DoseLine/internal/models"
	"github.com/hray3182/DoseLine/internal/storage"
	"github.com/jackc/pgx/v5"
)

type UserSettingsRepository struct {
	db *database.DB
}

func NewUserSettingsRepository(db *database.DB) *UserSettingsRepository {
	return &UserSettingsRepository{db: db}
}

// GetByUserID retrieves user settings by user ID
func (r *UserSettingsRepository) GetByUserID(ctx context.Context, userID int64) (*models.UserSettings, error) {
	settings := &models.UserSettings{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT user_id, timezone, sleep_start, sleep_end, updated_at
		 FROM user_settings WHERE user_id = $1`,
		userID,
	).Scan(
		&settings.UserID,
		&settings.Timezone,
		&settings.SleepStart,
		&settings.SleepEnd,
		&settings.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.NotFound("settings for user %d not found", userID)
	}
	if err != nil {
		return nil, err
	}
	return settings, nil
}

// Upsert writes the whole settings row.
func (r *UserSettingsRepository) Upsert(ctx context.Context, settings *models.UserSettings) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO user_settings (user_id, timezone, sleep_start, sleep_end, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id) DO UPDATE SET
		    timezone = EXCLUDED.timezone,
		    sleep_start = EXCLUDED.sleep_start,
		    sleep_end = EXCLUDED.sleep_end,
		    updated_at = EXCLUDED.updated_at`,
		settings.UserID,
		settings.Timezone,
		settings.SleepStart,
		settings.SleepEnd,
		time.Now(),
	)
	return err
}
