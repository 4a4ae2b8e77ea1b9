package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hray3182/DoseLine/internal/database"
	"github.com/hray3182/DoseLine/internal/models"
	"github.com/hray3182/DoseLine/internal/storage"
	"github.com/jackc/pgx/v5"
)

// ReminderRepository stores each definition as one JSONB document.
type ReminderRepository struct {
	db *database.DB
}

func NewReminderRepository(db *database.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

func (r *ReminderRepository) Save(ctx context.Context, userID int64, def *models.ReminderDefinition) error {
	doc, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("failed to encode reminder %s: %w", def.ID, err)
	}
	_, err = r.db.Pool.Exec(ctx,
		`INSERT INTO reminder_documents (user_id, reminder_id, doc)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, reminder_id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`,
		userID, string(def.ID), doc,
	)
	return err
}

func (r *ReminderRepository) GetByUserID(ctx context.Context, userID int64) ([]models.ReminderDefinition, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT doc FROM reminder_documents WHERE user_id = $1 ORDER BY created_at, reminder_id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	defs := []models.ReminderDefinition{}
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var def models.ReminderDefinition
		if err := json.Unmarshal(doc, &def); err != nil {
			return nil, fmt.Errorf("failed to decode reminder: %w", err)
		}
		defs = append(defs, def)
	}
	return defs, rows.Err()
}

func (r *ReminderRepository) GetByID(ctx context.Context, userID int64, id models.ID) (*models.ReminderDefinition, error) {
	var doc []byte
	err := r.db.Pool.QueryRow(ctx,
		`SELECT doc FROM reminder_documents WHERE user_id = $1 AND reminder_id = $2`,
		userID, string(id),
	).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.NotFound("reminder %s not found", id)
	}
	if err != nil {
		return nil, err
	}

	var def models.ReminderDefinition
	if err := json.Unmarshal(doc, &def); err != nil {
		return nil, fmt.Errorf("failed to decode reminder %s: %w", id, err)
	}
	return &def, nil
}

func (r *ReminderRepository) Delete(ctx context.Context, userID int64, id models.ID) error {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM reminder_documents WHERE user_id = $1 AND reminder_id = $2`,
		userID, string(id),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.NotFound("reminder %s not found", id)
	}
	return nil
}

// GetUserIDs lists users that own documents or settings.
func (r *ReminderRepository) GetUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT user_id FROM reminder_documents
		 UNION SELECT user_id FROM user_settings
		 ORDER BY 1`,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}
