// Package history keeps the append-only completion ledger and computes
// adherence reports from it.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hray3182/DoseLine/internal/clock"
	"github.com/hray3182/DoseLine/internal/models"
	"github.com/hray3182/DoseLine/internal/storage"
)

// Ledger appends completion events. Entries are never updated or removed.
type Ledger struct {
	store storage.HistoryStore
	newID func() string
}

func NewLedger(store storage.HistoryStore) *Ledger {
	return &Ledger{store: store, newID: uuid.NewString}
}

// RecordTaken appends one taken entry for the occurrence key of def. The
// entry is dated by the occurrence, not by when it was taken.
func (l *Ledger) RecordTaken(ctx context.Context, userID int64, def *models.ReminderDefinition, key string, at time.Time) (*models.HistoryEntry, error) {
	date, _, ok := models.SplitInstanceKey(key)
	if !ok {
		date = clock.FormatDate(at)
	}

	title := def.Title
	if exc, ok := def.Exceptions[key]; ok && exc.Title != "" {
		title = exc.Title
	}

	entry := &models.HistoryEntry{
		ID:          l.newID(),
		ReminderID:  def.ID,
		InstanceKey: key,
		Title:       title,
		Type:        def.Type,
		Status:      models.StatusTaken,
		Date:        date,
		Timestamp:   at,
	}
	if err := l.store.AppendHistory(ctx, userID, entry); err != nil {
		return nil, fmt.Errorf("failed to append history: %w", err)
	}
	return entry, nil
}

// Entries lists ledger entries dated within [from, to].
func (l *Ledger) Entries(ctx context.Context, userID int64, from, to string) ([]models.HistoryEntry, error) {
	return l.store.ListHistory(ctx, userID, from, to)
}
