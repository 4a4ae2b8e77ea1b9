package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"strings"
	"time"
)

// DefaultStartDate anchors definitions that carry neither a schedule start
// nor a legacy date.
const DefaultStartDate = "2000-01-01"

type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusSnoozed   Status = "snoozed"
	StatusTaken     Status = "taken"
	StatusMissed    Status = "missed"
	StatusCancelled Status = "cancelled"
)

// ID identifies a reminder within one user's set. Older documents stored
// numeric ids, so both JSON strings and numbers decode into it.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("reminder id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// LogEntry records what the user did with one instance.
type LogEntry struct {
	Status  Status     `json:"status"`
	TakenAt *time.Time `json:"takenAt"`
	// SnoozedUntil is an RFC 3339 timestamp, or a bare HH:MM in documents
	// written before snoozes became absolute.
	SnoozedUntil string     `json:"snoozedUntil,omitempty"`
	Timestamp    *time.Time `json:"timestamp,omitempty"`
}

// Exception is a one-off edit to a single occurrence of a series.
type Exception struct {
	Time         string `json:"time,omitempty"`
	Date         string `json:"date,omitempty"`
	Status       Status `json:"status,omitempty"`
	Title        string `json:"title,omitempty"`
	Instructions string `json:"instructions,omitempty"`
	IsException  bool   `json:"isException,omitempty"`
}

func (e Exception) Cancelled() bool {
	return e.Status == StatusCancelled
}

type ReminderDefinition struct {
	ID           ID     `json:"id"`
	Title        string `json:"title"`
	Type         string `json:"type,omitempty"`
	Instructions string `json:"instructions,omitempty"`
	IsImportant  bool   `json:"isImportant,omitempty"`

	// Legacy single-occurrence / interval fields.
	Date      string `json:"date,omitempty"`
	Time      string `json:"time,omitempty"`
	Frequency string `json:"frequency,omitempty"`
	Status    Status `json:"status,omitempty"`

	Schedule Schedule `json:"-"`

	Logs       map[string]LogEntry  `json:"logs,omitempty"`
	Exceptions map[string]Exception `json:"exceptions,omitempty"`
}

// StartDate resolves the first eligible date: schedule start, then the
// legacy date, then DefaultStartDate.
func (r *ReminderDefinition) StartDate() string {
	if r.Schedule != nil {
		if s := r.Schedule.Bounds().StartDate; s != "" {
			return s
		}
	}
	if r.Date != "" {
		return r.Date
	}
	return DefaultStartDate
}

func (r *ReminderDefinition) DurationDays() *int {
	if r.Schedule == nil {
		return nil
	}
	return r.Schedule.Bounds().DurationDays
}

// EffectiveFrequency prefers a basic schedule's frequency over the legacy field.
func (r *ReminderDefinition) EffectiveFrequency() string {
	if b, ok := r.Schedule.(*BasicSchedule); ok && b.Frequency != "" {
		return b.Frequency
	}
	return r.Frequency
}

// EffectiveTime prefers a basic schedule's time over the legacy field.
func (r *ReminderDefinition) EffectiveTime() string {
	if b, ok := r.Schedule.(*BasicSchedule); ok && b.Time != "" {
		return b.Time
	}
	return r.Time
}

// Clone returns a copy whose maps and schedule can be mutated without
// touching r.
func (r *ReminderDefinition) Clone() ReminderDefinition {
	c := *r
	c.Logs = maps.Clone(r.Logs)
	c.Exceptions = maps.Clone(r.Exceptions)
	if r.Schedule != nil {
		c.Schedule = r.Schedule.clone()
	}
	return c
}

func (r ReminderDefinition) MarshalJSON() ([]byte, error) {
	type alias ReminderDefinition
	return json.Marshal(struct {
		alias
		Schedule *scheduleWire `json:"schedule,omitempty"`
	}{
		alias:    alias(r),
		Schedule: encodeSchedule(r.Schedule),
	})
}

func (r *ReminderDefinition) UnmarshalJSON(data []byte) error {
	type alias ReminderDefinition
	aux := struct {
		*alias
		Schedule *scheduleWire `json:"schedule,omitempty"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Schedule = decodeSchedule(aux.Schedule)
	return nil
}

// InstanceKey builds the stable handle for one occurrence.
func InstanceKey(date, slot string) string {
	if slot == "" {
		slot = "default"
	}
	return date + "_" + slot
}

// SplitInstanceKey is the inverse of InstanceKey.
func SplitInstanceKey(key string) (date, slot string, ok bool) {
	date, slot, ok = strings.Cut(key, "_")
	if !ok || len(date) != len("2006-01-02") {
		return "", "", false
	}
	return date, slot, true
}

// Patch is a partial update. Nil fields are left alone.
type Patch struct {
	Title        *string  `json:"title,omitempty"`
	Type         *string  `json:"type,omitempty"`
	Instructions *string  `json:"instructions,omitempty"`
	IsImportant  *bool    `json:"isImportant,omitempty"`
	Date         *string  `json:"date,omitempty"`
	Time         *string  `json:"time,omitempty"`
	Frequency    *string  `json:"frequency,omitempty"`
	Status       *Status  `json:"status,omitempty"`
	Schedule     Schedule `json:"-"`
}

// ApplyTo merges the patch into a series definition.
func (p Patch) ApplyTo(r *ReminderDefinition) {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Type != nil {
		r.Type = *p.Type
	}
	if p.Instructions != nil {
		r.Instructions = *p.Instructions
	}
	if p.IsImportant != nil {
		r.IsImportant = *p.IsImportant
	}
	if p.Date != nil {
		r.Date = *p.Date
	}
	if p.Time != nil {
		r.Time = *p.Time
	}
	if p.Frequency != nil {
		r.Frequency = *p.Frequency
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.Schedule != nil {
		r.Schedule = p.Schedule.clone()
	}
}

// ApplyToException merges the fields that make sense for a single
// occurrence and tags the result as an exception.
func (p Patch) ApplyToException(e *Exception) {
	if p.Time != nil {
		e.Time = *p.Time
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Instructions != nil {
		e.Instructions = *p.Instructions
	}
	e.IsException = true
}
