package storage

import (
	"context"
	"fmt"
	"log"

	"github.com/hray3182/DoseLine/internal/models"
)

// Mirror is a local-first Store. Reads are served from Local; writes go to
// Local and are then copied to Remote. Remote failures are logged and do not
// fail the write, so the device keeps working offline. Last write wins.
type Mirror struct {
	Local  Store
	Remote Store // optional
}

var _ Store = (*Mirror)(nil)

func NewMirror(local, remote Store) *Mirror {
	return &Mirror{Local: local, Remote: remote}
}

func (m *Mirror) ListUsers(ctx context.Context) ([]int64, error) {
	return m.Local.ListUsers(ctx)
}

func (m *Mirror) ListReminders(ctx context.Context, userID int64) ([]models.ReminderDefinition, error) {
	return m.Local.ListReminders(ctx, userID)
}

func (m *Mirror) GetReminder(ctx context.Context, userID int64, id models.ID) (*models.ReminderDefinition, error) {
	return m.Local.GetReminder(ctx, userID, id)
}

func (m *Mirror) SaveReminder(ctx context.Context, userID int64, def *models.ReminderDefinition) error {
	if err := m.Local.SaveReminder(ctx, userID, def); err != nil {
		return err
	}
	if m.Remote != nil {
		if err := m.Remote.SaveReminder(ctx, userID, def); err != nil {
			log.Printf("Mirror: failed to save reminder %s for user %d remotely: %v", def.ID, userID, err)
		}
	}
	return nil
}

func (m *Mirror) DeleteReminder(ctx context.Context, userID int64, id models.ID) error {
	if err := m.Local.DeleteReminder(ctx, userID, id); err != nil {
		return err
	}
	if m.Remote != nil {
		if err := m.Remote.DeleteReminder(ctx, userID, id); err != nil && !IsNotFound(err) {
			log.Printf("Mirror: failed to delete reminder %s for user %d remotely: %v", id, userID, err)
		}
	}
	return nil
}

func (m *Mirror) AppendHistory(ctx context.Context, userID int64, entry *models.HistoryEntry) error {
	if err := m.Local.AppendHistory(ctx, userID, entry); err != nil {
		return err
	}
	if m.Remote != nil {
		if err := m.Remote.AppendHistory(ctx, userID, entry); err != nil {
			log.Printf("Mirror: failed to append history %s for user %d remotely: %v", entry.ID, userID, err)
		}
	}
	return nil
}

func (m *Mirror) ListHistory(ctx context.Context, userID int64, from, to string) ([]models.HistoryEntry, error) {
	return m.Local.ListHistory(ctx, userID, from, to)
}

func (m *Mirror) GetSettings(ctx context.Context, userID int64) (*models.UserSettings, error) {
	return m.Local.GetSettings(ctx, userID)
}

func (m *Mirror) SaveSettings(ctx context.Context, settings *models.UserSettings) error {
	if err := m.Local.SaveSettings(ctx, settings); err != nil {
		return err
	}
	if m.Remote != nil {
		if err := m.Remote.SaveSettings(ctx, settings); err != nil {
			log.Printf("Mirror: failed to save settings for user %d remotely: %v", settings.UserID, err)
		}
	}
	return nil
}

// Hydrate copies remote data for users the local store has never seen. It
// is meant to run once at startup on a fresh device.
func (m *Mirror) Hydrate(ctx context.Context) (int, error) {
	if m.Remote == nil {
		return 0, nil
	}

	remoteUsers, err := m.Remote.ListUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list remote users: %w", err)
	}
	localUsers, err := m.Local.ListUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list local users: %w", err)
	}
	known := make(map[int64]bool, len(localUsers))
	for _, id := range localUsers {
		known[id] = true
	}

	hydrated := 0
	for _, userID := range remoteUsers {
		if known[userID] {
			continue
		}
		if err := m.hydrateUser(ctx, userID); err != nil {
			return hydrated, err
		}
		hydrated++
	}
	return hydrated, nil
}

func (m *Mirror) hydrateUser(ctx context.Context, userID int64) error {
	defs, err := m.Remote.ListReminders(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list remote reminders for user %d: %w", userID, err)
	}
	for i := range defs {
		if err := m.Local.SaveReminder(ctx, userID, &defs[i]); err != nil {
			return fmt.Errorf("failed to store reminder %s locally: %w", defs[i].ID, err)
		}
	}

	settings, err := m.Remote.GetSettings(ctx, userID)
	switch {
	case IsNotFound(err):
	case err != nil:
		return fmt.Errorf("failed to get remote settings for user %d: %w", userID, err)
	default:
		if err := m.Local.SaveSettings(ctx, settings); err != nil {
			return fmt.Errorf("failed to store settings locally: %w", err)
		}
	}

	entries, err := m.Remote.ListHistory(ctx, userID, "0001-01-01", "9999-12-31")
	if err != nil {
		return fmt.Errorf("failed to list remote history for user %d: %w", userID, err)
	}
	for i := range entries {
		if err := m.Local.AppendHistory(ctx, userID, &entries[i]); err != nil {
			return fmt.Errorf("failed to store history locally: %w", err)
		}
	}
	return nil
}
