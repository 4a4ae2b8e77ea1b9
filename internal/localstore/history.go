package localstore

import (
	"context"
	"fmt"
	"time"

	"github.com/hray3182/DoseLine/internal/models"
)

// AppendHistory inserts the entry; an entry with an existing id is ignored.
func (s *Store) AppendHistory(ctx context.Context, userID int64, e *models.HistoryEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO history
			(id, user_id, reminder_id, instance_key, title, type, status, date, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, userID, string(e.ReminderID), e.InstanceKey, e.Title, e.Type,
		string(e.Status), e.Date, e.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

func (s *Store) ListHistory(ctx context.Context, userID int64, from, to string) ([]models.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, reminder_id, instance_key, title, type, status, date, timestamp
		FROM history
		WHERE user_id = ? AND date >= ? AND date <= ?
		ORDER BY timestamp, rowid`,
		userID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		var (
			e                  models.HistoryEntry
			reminderID, status string
			ts                 string
		)
		if err := rows.Scan(&e.ID, &reminderID, &e.InstanceKey, &e.Title, &e.Type, &status, &e.Date, &ts); err != nil {
			return nil, err
		}
		e.ReminderID = models.ID(reminderID)
		e.Status = models.Status(status)
		if e.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("parse history timestamp %q: %w", ts, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
