// memory based implementation for testing purposes
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/hray3182/DoseLine/internal/models"
	"github.com/hray3182/DoseLine/internal/storage"
)

// Store implements storage.Store using in-memory maps. Values are cloned on
// the way in and out so callers never share maps with the store.
type Store struct {
	mu        sync.RWMutex
	reminders map[int64]map[models.ID]models.ReminderDefinition
	order     map[int64][]models.ID
	history   map[int64][]models.HistoryEntry
	settings  map[int64]models.UserSettings
}

var _ storage.Store = (*Store)(nil)

// New creates a new in-memory storage
func New() *Store {
	return &Store{
		reminders: make(map[int64]map[models.ID]models.ReminderDefinition),
		order:     make(map[int64][]models.ID),
		history:   make(map[int64][]models.HistoryEntry),
		settings:  make(map[int64]models.UserSettings),
	}
}

func (s *Store) ListUsers(_ context.Context) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var users []int64
	for id, defs := range s.reminders {
		if len(defs) > 0 {
			users = append(users, id)
		}
	}
	for id := range s.settings {
		if !slices.Contains(users, id) {
			users = append(users, id)
		}
	}
	slices.Sort(users)
	return users, nil
}

// Reminder operations

func (s *Store) ListReminders(_ context.Context, userID int64) ([]models.ReminderDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	defs := make([]models.ReminderDefinition, 0, len(s.order[userID]))
	for _, id := range s.order[userID] {
		def := s.reminders[userID][id]
		defs = append(defs, def.Clone())
	}
	return defs, nil
}

func (s *Store) GetReminder(_ context.Context, userID int64, id models.ID) (*models.ReminderDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	def, ok := s.reminders[userID][id]
	if !ok {
		return nil, storage.NotFound("reminder %s not found", id)
	}
	c := def.Clone()
	return &c, nil
}

func (s *Store) SaveReminder(_ context.Context, userID int64, def *models.ReminderDefinition) error {
	if def.ID == "" {
		return &storage.Error{Type: storage.ErrInvalidInput, Message: "reminder id is empty"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reminders[userID] == nil {
		s.reminders[userID] = make(map[models.ID]models.ReminderDefinition)
	}
	if _, exists := s.reminders[userID][def.ID]; !exists {
		s.order[userID] = append(s.order[userID], def.ID)
	}
	s.reminders[userID][def.ID] = def.Clone()
	return nil
}

func (s *Store) DeleteReminder(_ context.Context, userID int64, id models.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reminders[userID][id]; !ok {
		return storage.NotFound("reminder %s not found", id)
	}
	delete(s.reminders[userID], id)
	s.order[userID] = slices.DeleteFunc(s.order[userID], func(x models.ID) bool { return x == id })
	return nil
}

// History operations

func (s *Store) AppendHistory(_ context.Context, userID int64, entry *models.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.ContainsFunc(s.history[userID], func(e models.HistoryEntry) bool { return e.ID == entry.ID }) {
		return nil
	}
	s.history[userID] = append(s.history[userID], *entry)
	return nil
}

func (s *Store) ListHistory(_ context.Context, userID int64, from, to string) ([]models.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.HistoryEntry
	for _, e := range s.history[userID] {
		if e.Date >= from && e.Date <= to {
			out = append(out, e)
		}
	}
	slices.SortStableFunc(out, func(a, b models.HistoryEntry) int {
		return cmp.Compare(a.Timestamp.UnixNano(), b.Timestamp.UnixNano())
	})
	return out, nil
}

// Settings operations

func (s *Store) GetSettings(_ context.Context, userID int64) (*models.UserSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	settings, ok := s.settings[userID]
	if !ok {
		return nil, storage.NotFound("settings for user %d not found", userID)
	}
	return &settings, nil
}

func (s *Store) SaveSettings(_ context.Context, settings *models.UserSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings[settings.UserID] = *settings
	return nil
}
