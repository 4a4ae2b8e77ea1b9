package repository

import (
	"context"
	"time"

	"github.com/hray3182/DoseLine/internal/database"
	"github.com/hray3182/DoseLine/internal/models"
)

type HistoryRepository struct {
	db *database.DB
}

func NewHistoryRepository(db *database.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) Create(ctx context.Context, userID int64, e *models.HistoryEntry) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO reminder_history
		    (history_id, user_id, reminder_id, instance_key, title, type, status, date, taken_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8::date, $9)
		 ON CONFLICT (history_id) DO NOTHING`,
		e.ID, userID, string(e.ReminderID), e.InstanceKey, e.Title, e.Type, string(e.Status), e.Date, e.Timestamp,
	)
	return err
}

func (r *HistoryRepository) GetByDateRange(ctx context.Context, userID int64, from, to string) ([]models.HistoryEntry, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT history_id, reminder_id, instance_key, title, type, status, date::text, taken_at
		 FROM reminder_history
		 WHERE user_id = $1 AND date BETWEEN $2::date AND $3::date
		 ORDER BY taken_at ASC`,
		userID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		var (
			e                  models.HistoryEntry
			reminderID, status string
			takenAt            time.Time
		)
		if err := rows.Scan(&e.ID, &reminderID, &e.InstanceKey, &e.Title, &e.Type, &status, &e.Date, &takenAt); err != nil {
			return nil, err
		}
		e.ReminderID = models.ID(reminderID)
		e.Status = models.Status(status)
		e.Timestamp = takenAt
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

