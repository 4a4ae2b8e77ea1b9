// Package storage defines the persistence contracts the reminder service
// depends on. Definitions are documents keyed by user; the engine only ever
// sees a snapshot returned by ListReminders.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/hray3182/DoseLine/internal/models"
)

// Error types
type ErrorType string

const (
	ErrNotFound     ErrorType = "not_found"
	ErrInvalidInput ErrorType = "invalid_input"
	ErrBackend      ErrorType = "backend"
)

// Error represents a storage-related error
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound builds an ErrNotFound error.
func NotFound(format string, args ...any) error {
	return &Error{Type: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

// IsNotFound reports whether err, or anything it wraps, is an ErrNotFound.
func IsNotFound(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Type == ErrNotFound
}

type ReminderStore interface {
	// ListUsers returns every user that owns at least one definition or
	// has saved settings.
	ListUsers(ctx context.Context) ([]int64, error)
	ListReminders(ctx context.Context, userID int64) ([]models.ReminderDefinition, error)
	GetReminder(ctx context.Context, userID int64, id models.ID) (*models.ReminderDefinition, error)
	// SaveReminder inserts or replaces the whole document.
	SaveReminder(ctx context.Context, userID int64, def *models.ReminderDefinition) error
	DeleteReminder(ctx context.Context, userID int64, id models.ID) error
}

// HistoryStore is append-only.
type HistoryStore interface {
	AppendHistory(ctx context.Context, userID int64, entry *models.HistoryEntry) error
	// ListHistory returns entries whose Date lies in [from, to], oldest first.
	ListHistory(ctx context.Context, userID int64, from, to string) ([]models.HistoryEntry, error)
}

type SettingsStore interface {
	GetSettings(ctx context.Context, userID int64) (*models.UserSettings, error)
	SaveSettings(ctx context.Context, settings *models.UserSettings) error
}

// Store is the full persistence surface.
type Store interface {
	ReminderStore
	HistoryStore
	SettingsStore
}

// SettingsOrDefault returns the stored settings, or defaults when the user
// has never saved any.
func SettingsOrDefault(ctx context.Context, s SettingsStore, userID int64) (*models.UserSettings, error) {
	settings, err := s.GetSettings(ctx, userID)
	if IsNotFound(err) {
		return models.NewDefaultUserSettings(userID), nil
	}
	if err != nil {
		return nil, err
	}
	return settings, nil
}

// Defaulted serves Settings to users who never saved their own, in place
// of the built-in sleep window.
type Defaulted struct {
	Store
	Settings models.Settings
}

func (d Defaulted) GetSettings(ctx context.Context, userID int64) (*models.UserSettings, error) {
	settings, err := d.Store.GetSettings(ctx, userID)
	if IsNotFound(err) {
		settings = models.NewDefaultUserSettings(userID)
		settings.Settings = d.Settings.WithDefaults()
		return settings, nil
	}
	return settings, err
}
