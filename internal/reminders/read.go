package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/hray3182/DoseLine/internal/clock"
	"github.com/hray3182/DoseLine/internal/engine"
	"github.com/hray3182/DoseLine/internal/models"
	"github.com/hray3182/DoseLine/internal/storage"
)

// Settings returns the user's settings, or defaults.
func (s *Service) Settings(ctx context.Context, userID int64) (*models.UserSettings, error) {
	return storage.SettingsOrDefault(ctx, s.store, userID)
}

// SetSleepWindow stores the user's sleep start and wake times (HH:MM).
func (s *Service) SetSleepWindow(ctx context.Context, userID int64, sleepStart, sleepEnd string) error {
	if _, ok := clock.ParseClock(sleepStart); !ok {
		return fmt.Errorf("%w: sleep start %q", ErrInvalidArgument, sleepStart)
	}
	if _, ok := clock.ParseClock(sleepEnd); !ok {
		return fmt.Errorf("%w: sleep end %q", ErrInvalidArgument, sleepEnd)
	}

	settings, err := s.Settings(ctx, userID)
	if err != nil {
		return err
	}
	settings.SleepStart = sleepStart
	settings.SleepEnd = sleepEnd
	if err := s.store.SaveSettings(ctx, settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	s.Broadcast(userID)
	return nil
}

// LocalNow is the service clock in the user's time zone.
func (s *Service) LocalNow(ctx context.Context, userID int64) (time.Time, *models.UserSettings, error) {
	settings, err := s.Settings(ctx, userID)
	if err != nil {
		return time.Time{}, nil, err
	}
	return s.now().In(settings.Location()), settings, nil
}

// Instances expands the user's definitions for date (YYYY-MM-DD). An empty
// date means today.
func (s *Service) Instances(ctx context.Context, userID int64, date string) ([]models.Instance, error) {
	now, settings, err := s.LocalNow(ctx, userID)
	if err != nil {
		return nil, err
	}
	if date == "" {
		date = clock.FormatDate(now)
	}
	defs, err := s.store.ListReminders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	return engine.Expand(date, defs, settings.Settings, now), nil
}

// Upcoming returns actionable instances whose moment falls between the
// start of their two-hour window and now+horizon, across today and the
// following days the horizon reaches.
func (s *Service) Upcoming(ctx context.Context, userID int64, horizon time.Duration) ([]models.Instance, error) {
	now, settings, err := s.LocalNow(ctx, userID)
	if err != nil {
		return nil, err
	}
	defs, err := s.store.ListReminders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}

	until := now.Add(horizon)
	var out []models.Instance
	for day := clock.StartOfDay(now); !day.After(until); day = day.AddDate(0, 0, 1) {
		for _, inst := range engine.Expand(clock.FormatDate(day), defs, settings.Settings, now) {
			if !inst.Actionable() || inst.At.After(until) {
				continue
			}
			if now.Sub(inst.At) > engine.MissedAfter {
				continue
			}
			out = append(out, inst)
		}
	}
	return out, nil
}

// Find locates one instance by its unique id on date.
func (s *Service) Find(ctx context.Context, userID int64, date, uniqueID string) (*models.Instance, error) {
	insts, err := s.Instances(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	for i := range insts {
		if insts[i].UniqueID == uniqueID {
			return &insts[i], nil
		}
	}
	return nil, storage.NotFound("instance %s not found on %s", uniqueID, date)
}

// Users lists every user with stored definitions or settings.
func (s *Service) Users(ctx context.Context) ([]int64, error) {
	return s.store.ListUsers(ctx)
}
