package models

import (
	"time"

	"github.com/hray3182/DoseLine/internal/clock"
)

const (
	DefaultSleepStart = "22:00"
	DefaultSleepEnd   = "08:00"
)

// Settings carries the user's sleep window. Interval reminders are only
// scheduled between SleepEnd (wake) and SleepStart.
type Settings struct {
	SleepStart string `json:"sleepStart"`
	SleepEnd   string `json:"sleepEnd"`
}

func DefaultSettings() Settings {
	return Settings{SleepStart: DefaultSleepStart, SleepEnd: DefaultSleepEnd}
}

// WithDefaults fills empty fields from DefaultSettings.
func (s Settings) WithDefaults() Settings {
	if s.SleepStart == "" {
		s.SleepStart = DefaultSleepStart
	}
	if s.SleepEnd == "" {
		s.SleepEnd = DefaultSleepEnd
	}
	return s
}

// IsSleepTime checks if t's local clock reading is within the sleep window
func (s Settings) IsSleepTime(t time.Time) bool {
	s = s.WithDefaults()
	current := clock.MinutesOf(t)
	start, _ := clock.ParseClock(s.SleepStart)
	end, _ := clock.ParseClock(s.SleepEnd)

	// Overnight window, e.g. 22:00 - 08:00
	if start > end {
		return current >= start || current < end
	}
	return current >= start && current < end
}

// UserSettings is the persisted per-user record.
type UserSettings struct {
	UserID   int64  `json:"user_id"`
	Timezone string `json:"timezone"`
	Settings
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDefaultUserSettings creates a UserSettings with default values
func NewDefaultUserSettings(userID int64) *UserSettings {
	return &UserSettings{
		UserID:    userID,
		Timezone:  "Local",
		Settings:  DefaultSettings(),
		UpdatedAt: time.Now(),
	}
}

// Location resolves Timezone, falling back to the process's local zone.
func (s *UserSettings) Location() *time.Location {
	if s.Timezone == "" || s.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
