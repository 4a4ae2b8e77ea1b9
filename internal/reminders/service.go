// Package reminders is the mutation API over stored reminder definitions.
// Instances are never stored: every read re-expands the definitions and
// every successful write notifies the registered listeners so they can do
// the same.
package reminders

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hray3182/DoseLine/internal/clock"
	"github.com/hray3182/DoseLine/internal/history"
	"github.com/hray3182/DoseLine/internal/models"
	"github.com/hray3182/DoseLine/internal/storage"
)

// ErrInvalidArgument wraps errors caused by bad caller input.
var ErrInvalidArgument = errors.New("invalid argument")

// Listener is told which user's definitions changed.
type Listener func(userID int64)

type Service struct {
	store  storage.Store
	ledger *history.Ledger
	now    func() time.Time
	newID  func() string

	// mu serialises read-modify-write cycles on definitions.
	mu        sync.Mutex
	listeners []Listener
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces the uuid-based id generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func NewService(store storage.Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		ledger: history.NewLedger(store),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnChange registers fn to run after every successful mutation.
func (s *Service) OnChange(fn Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Broadcast notifies listeners without a mutation, e.g. after an external
// change to the underlying store.
func (s *Service) Broadcast(userID int64) {
	s.mu.Lock()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(userID)
	}
}

// Now is the service clock.
func (s *Service) Now() time.Time {
	return s.now()
}

// AddReminder stores def under a fresh id and returns the stored copy.
func (s *Service) AddReminder(ctx context.Context, userID int64, def models.ReminderDefinition) (*models.ReminderDefinition, error) {
	def = def.Clone()
	def.ID = models.ID(s.newID())

	s.mu.Lock()
	err := s.store.SaveReminder(ctx, userID, &def)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to add reminder: %w", err)
	}

	s.Broadcast(userID)
	return &def, nil
}

// Import stores definitions as they are, assigning ids only where missing.
func (s *Service) Import(ctx context.Context, userID int64, defs []models.ReminderDefinition) (int, error) {
	s.mu.Lock()
	n := 0
	for i := range defs {
		def := defs[i].Clone()
		if def.ID == "" {
			def.ID = models.ID(s.newID())
		}
		if err := s.store.SaveReminder(ctx, userID, &def); err != nil {
			s.mu.Unlock()
			return n, fmt.Errorf("failed to import reminder %q: %w", def.Title, err)
		}
		n++
	}
	s.mu.Unlock()

	if n > 0 {
		s.Broadcast(userID)
	}
	return n, nil
}

// mutate loads id, applies fn and saves the result. A missing id is a
// no-op. fn may return false to skip the save.
func (s *Service) mutate(ctx context.Context, userID int64, id models.ID, fn func(*models.ReminderDefinition) (bool, error)) error {
	s.mu.Lock()
	changed, err := s.mutateLocked(ctx, userID, id, fn)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if changed {
		s.Broadcast(userID)
	}
	return nil
}

func (s *Service) mutateLocked(ctx context.Context, userID int64, id models.ID, fn func(*models.ReminderDefinition) (bool, error)) (bool, error) {
	def, err := s.store.GetReminder(ctx, userID, id)
	if storage.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get reminder %s: %w", id, err)
	}

	save, err := fn(def)
	if err != nil || !save {
		return false, err
	}
	if err := s.store.SaveReminder(ctx, userID, def); err != nil {
		return false, fmt.Errorf("failed to save reminder %s: %w", id, err)
	}
	return true, nil
}

// UpdateReminder merges patch into the series, or into the single
// occurrence named by instanceKey when it is non-empty.
func (s *Service) UpdateReminder(ctx context.Context, userID int64, id models.ID, patch models.Patch, instanceKey string) error {
	return s.mutate(ctx, userID, id, func(def *models.ReminderDefinition) (bool, error) {
		if instanceKey == "" {
			patch.ApplyTo(def)
			return true, nil
		}
		if def.Exceptions == nil {
			def.Exceptions = make(map[string]models.Exception)
		}
		exc := def.Exceptions[instanceKey]
		patch.ApplyToException(&exc)
		def.Exceptions[instanceKey] = exc
		return true, nil
	})
}

// CancelInstance removes one occurrence without touching the series.
func (s *Service) CancelInstance(ctx context.Context, userID int64, id models.ID, instanceKey string) error {
	if instanceKey == "" {
		return fmt.Errorf("%w: cancel needs an instance key", ErrInvalidArgument)
	}
	cancelled := models.StatusCancelled
	return s.UpdateReminder(ctx, userID, id, models.Patch{Status: &cancelled}, instanceKey)
}

// LogReminderStatus records status for one occurrence at the current time.
func (s *Service) LogReminderStatus(ctx context.Context, userID int64, id models.ID, instanceKey string, status models.Status) error {
	return s.LogReminderStatusWithTime(ctx, userID, id, instanceKey, status, s.now())
}

// LogReminderStatusWithTime is LogReminderStatus with a caller-supplied
// completion time, used to back-date corrections. Marking an occurrence
// taken also appends a ledger entry. Only SnoozeReminder re-opens an
// occurrence, so upcoming is not a loggable status.
func (s *Service) LogReminderStatusWithTime(ctx context.Context, userID int64, id models.ID, instanceKey string, status models.Status, at time.Time) error {
	switch status {
	case models.StatusTaken, models.StatusMissed, models.StatusSnoozed:
	default:
		return fmt.Errorf("%w: unsupported log status %q", ErrInvalidArgument, status)
	}
	if instanceKey == "" {
		return fmt.Errorf("%w: log needs an instance key", ErrInvalidArgument)
	}

	var logged *models.ReminderDefinition
	err := s.mutate(ctx, userID, id, func(def *models.ReminderDefinition) (bool, error) {
		now := s.now()
		entry := models.LogEntry{Status: status, Timestamp: &now}
		if status == models.StatusTaken {
			entry.TakenAt = &at
		}
		if def.Logs == nil {
			def.Logs = make(map[string]models.LogEntry)
		}
		def.Logs[instanceKey] = entry
		logged = def
		return true, nil
	})
	if err != nil || logged == nil || status != models.StatusTaken {
		return err
	}
	_, err = s.ledger.RecordTaken(ctx, userID, logged, instanceKey, at)
	return err
}

// SnoozeReminder pushes an occurrence minutes into the future. Without an
// instance key the whole series' time is moved instead, which recurring
// schedules do not support.
func (s *Service) SnoozeReminder(ctx context.Context, userID int64, id models.ID, instanceKey string, minutes int) error {
	if minutes <= 0 {
		return fmt.Errorf("%w: snooze minutes must be positive, got %d", ErrInvalidArgument, minutes)
	}

	return s.mutate(ctx, userID, id, func(def *models.ReminderDefinition) (bool, error) {
		now := s.now()
		until := now.Add(time.Duration(minutes) * time.Minute)

		if instanceKey == "" {
			if _, ok := def.Schedule.(*models.RecurringSchedule); ok {
				return false, fmt.Errorf("%w: %s has per-slot times, snooze an occurrence instead", ErrInvalidArgument, def.ID)
			}
			// TODO: for multi-slot interval series this moves the anchor
			// shared by every slot; decide whether a series snooze should
			// only shift the next slot.
			hhmm := clock.FormatClock(clock.MinutesOf(until))
			def.Time = hhmm
			if b, ok := def.Schedule.(*models.BasicSchedule); ok && b.Time != "" {
				b.Time = hhmm
			}
			def.Status = models.StatusUpcoming
			return true, nil
		}

		if def.Logs == nil {
			def.Logs = make(map[string]models.LogEntry)
		}
		def.Logs[instanceKey] = models.LogEntry{
			Status:       models.StatusSnoozed,
			SnoozedUntil: until.Format(time.RFC3339),
			Timestamp:    &now,
		}
		return true, nil
	})
}

// DeleteReminder removes the series. Missing ids are ignored.
func (s *Service) DeleteReminder(ctx context.Context, userID int64, id models.ID) error {
	s.mu.Lock()
	err := s.store.DeleteReminder(ctx, userID, id)
	s.mu.Unlock()

	if storage.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete reminder %s: %w", id, err)
	}
	s.Broadcast(userID)
	return nil
}

func (s *Service) Reminders(ctx context.Context, userID int64) ([]models.ReminderDefinition, error) {
	return s.store.ListReminders(ctx, userID)
}

func (s *Service) Reminder(ctx context.Context, userID int64, id models.ID) (*models.ReminderDefinition, error) {
	return s.store.GetReminder(ctx, userID, id)
}
