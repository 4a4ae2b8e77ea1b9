package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hray3182/DoseLine/internal/models"
	"github.com/hray3182/DoseLine/internal/storage"
)

func (s *Store) ListUsers(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id FROM reminders UNION SELECT user_id FROM settings ORDER BY 1`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		users = append(users, id)
	}
	return users, rows.Err()
}

func (s *Store) ListReminders(ctx context.Context, userID int64) ([]models.ReminderDefinition, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc FROM reminders WHERE user_id = ? ORDER BY rowid`, userID)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	defer rows.Close()

	defs := []models.ReminderDefinition{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var def models.ReminderDefinition
		if err := json.Unmarshal([]byte(doc), &def); err != nil {
			return nil, fmt.Errorf("decode reminder: %w", err)
		}
		defs = append(defs, def)
	}
	return defs, rows.Err()
}

func (s *Store) GetReminder(ctx context.Context, userID int64, id models.ID) (*models.ReminderDefinition, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM reminders WHERE user_id = ? AND id = ?`, userID, string(id)).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFound("reminder %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get reminder %s: %w", id, err)
	}

	var def models.ReminderDefinition
	if err := json.Unmarshal([]byte(doc), &def); err != nil {
		return nil, fmt.Errorf("decode reminder %s: %w", id, err)
	}
	return &def, nil
}

func (s *Store) SaveReminder(ctx context.Context, userID int64, def *models.ReminderDefinition) error {
	if def.ID == "" {
		return &storage.Error{Type: storage.ErrInvalidInput, Message: "reminder id is empty"}
	}
	doc, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("encode reminder %s: %w", def.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reminders (user_id, id, doc) VALUES (?, ?, ?)
		ON CONFLICT(user_id, id) DO UPDATE SET
			doc = excluded.doc,
			updated_at = strftime('%Y-%m-%dT%H:%M:%SZ','now')`,
		userID, string(def.ID), string(doc),
	)
	if err != nil {
		return fmt.Errorf("save reminder %s: %w", def.ID, err)
	}
	return nil
}

func (s *Store) DeleteReminder(ctx context.Context, userID int64, id models.ID) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM reminders WHERE user_id = ? AND id = ?`, userID, string(id))
	if err != nil {
		return fmt.Errorf("delete reminder %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.NotFound("reminder %s not found", id)
	}
	return nil
}
