package repository

import (
	"context"

	"github.com/hray3182/DoseLine/internal/database"
	"github.com/hray3182/DoseLine/internal/models"
	"github.com/hray3182/DoseLine/internal/storage"
)

// Store adapts the Postgres repositories to storage.Store so the database
// can serve as the remote side of a storage.Mirror.
type Store struct {
	Reminders *ReminderRepository
	History   *HistoryRepository
	Settings  *UserSettingsRepository
}

var _ storage.Store = (*Store)(nil)

func NewStore(db *database.DB) *Store {
	return &Store{
		Reminders: NewReminderRepository(db),
		History:   NewHistoryRepository(db),
		Settings:  NewUserSettingsRepository(db),
	}
}

func (s *Store) ListUsers(ctx context.Context) ([]int64, error) {
	return s.Reminders.GetUserIDs(ctx)
}

func (s *Store) ListReminders(ctx context.Context, userID int64) ([]models.ReminderDefinition, error) {
	return s.Reminders.GetByUserID(ctx, userID)
}

func (s *Store) GetReminder(ctx context.Context, userID int64, id models.ID) (*models.ReminderDefinition, error) {
	return s.Reminders.GetByID(ctx, userID, id)
}

func (s *Store) SaveReminder(ctx context.Context, userID int64, def *models.ReminderDefinition) error {
	return s.Reminders.Save(ctx, userID, def)
}

func (s *Store) DeleteReminder(ctx context.Context, userID int64, id models.ID) error {
	return s.Reminders.Delete(ctx, userID, id)
}

func (s *Store) AppendHistory(ctx context.Context, userID int64, entry *models.HistoryEntry) error {
	return s.History.Create(ctx, userID, entry)
}

func (s *Store) ListHistory(ctx context.Context, userID int64, from, to string) ([]models.HistoryEntry, error) {
	return s.History.GetByDateRange(ctx, userID, from, to)
}

func (s *Store) GetSettings(ctx context.Context, userID int64) (*models.UserSettings, error) {
	return s.Settings.GetByUserID(ctx, userID)
}

func (s *Store) SaveSettings(ctx context.Context, settings *models.UserSettings) error {
	return s.Settings.Upsert(ctx, settings)
}
