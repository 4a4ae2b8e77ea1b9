package ai

import (
	"errors"
	"fmt"

	"github.com/hray3182/DoseLine/internal/clock"
	"github.com/hray3182/DoseLine/internal/models"
	"github.com/hray3182/DoseLine/internal/rrule"
)

const ActionCreateReminder = "create_reminder"

type Slot struct {
	Name string `json:"name"`
	Time string `json:"time"`
}

// Draft is the model's structured reading of a free-text request.
type Draft struct {
	Action       string `json:"action"`
	Title        string `json:"title"`
	Type         string `json:"type"`
	Instructions string `json:"instructions"`
	IsImportant  bool   `json:"is_important"`
	StartDate    string `json:"start_date"`
	DurationDays int    `json:"duration_days"`
	Time         string `json:"time"`
	Frequency    string `json:"frequency"`
	Slots        []Slot `json:"slots"`
	Reply        string `json:"reply"`
	RawResponse  string `json:"-"`
}

var ErrNotAReminder = errors.New("draft does not describe a reminder")

// ToDefinition validates the draft and builds a definition without an id.
// Multi-slot drafts become recurring courses, the rest basic schedules.
func (d *Draft) ToDefinition() (models.ReminderDefinition, error) {
	if d.Action != ActionCreateReminder {
		return models.ReminderDefinition{}, ErrNotAReminder
	}
	if d.Title == "" {
		return models.ReminderDefinition{}, fmt.Errorf("reminder title is empty")
	}
	if _, err := clock.ParseDate(d.StartDate, nil); err != nil {
		return models.ReminderDefinition{}, err
	}

	def := models.ReminderDefinition{
		Title:        d.Title,
		Type:         d.Type,
		Instructions: d.Instructions,
		IsImportant:  d.IsImportant,
	}
	window := models.Window{StartDate: d.StartDate}
	if d.DurationDays > 0 {
		n := d.DurationDays
		window.DurationDays = &n
	}

	if len(d.Slots) > 0 {
		rec := &models.RecurringSchedule{Window: window, Times: make(map[string]string)}
		for _, s := range d.Slots {
			if _, ok := clock.ParseClock(s.Time); !ok || s.Name == "" {
				return models.ReminderDefinition{}, fmt.Errorf("invalid slot %q at %q", s.Name, s.Time)
			}
			if _, dup := rec.Times[s.Name]; !dup {
				rec.Slots = append(rec.Slots, s.Name)
			}
			rec.Times[s.Name] = s.Time
		}
		def.Schedule = rec
		return def, nil
	}

	if d.Time != "" {
		if _, ok := clock.ParseClock(d.Time); !ok {
			return models.ReminderDefinition{}, fmt.Errorf("invalid time %q", d.Time)
		}
	}
	if rrule.ParseFrequency(d.Frequency).Kind == rrule.KindUnknown {
		return models.ReminderDefinition{}, fmt.Errorf("unsupported frequency %q", d.Frequency)
	}
	def.Date = d.StartDate
	def.Time = d.Time
	def.Frequency = d.Frequency
	def.Schedule = &models.BasicSchedule{Window: window, Frequency: d.Frequency, Time: d.Time}
	return def, nil
}
