package models

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"
)

type ScheduleKind string

const (
	ScheduleBasic     ScheduleKind = "basic"
	ScheduleRecurring ScheduleKind = "recurring"
)

// Window bounds when a schedule may produce instances.
type Window struct {
	StartDate    string
	DurationDays *int
}

func (w Window) Bounds() Window { return w }

// Schedule is either a *BasicSchedule or a *RecurringSchedule.
type Schedule interface {
	Kind() ScheduleKind
	Bounds() Window
	clone() Schedule
}

// BasicSchedule is a single time on a day pattern. Empty Frequency and Time
// fall back to the definition's legacy fields.
type BasicSchedule struct {
	Window
	Frequency string
	Time      string
}

func (*BasicSchedule) Kind() ScheduleKind { return ScheduleBasic }

func (s *BasicSchedule) clone() Schedule {
	c := *s
	c.DurationDays = cloneInt(s.DurationDays)
	return &c
}

// RecurringSchedule is a course of named daily slots, e.g. breakfast and dinner.
type RecurringSchedule struct {
	Window
	Slots []string
	Times map[string]string
}

func (*RecurringSchedule) Kind() ScheduleKind { return ScheduleRecurring }

func (s *RecurringSchedule) clone() Schedule {
	c := *s
	c.DurationDays = cloneInt(s.DurationDays)
	c.Slots = slices.Clone(s.Slots)
	c.Times = maps.Clone(s.Times)
	return &c
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

type scheduleWire struct {
	Type         ScheduleKind      `json:"type"`
	StartDate    string            `json:"startDate,omitempty"`
	DurationDays *int              `json:"durationDays,omitempty"`
	Frequency    json.RawMessage   `json:"frequency,omitempty"`
	Time         string            `json:"time,omitempty"`
	Times        map[string]string `json:"times,omitempty"`
}

func encodeSchedule(s Schedule) *scheduleWire {
	switch s := s.(type) {
	case *BasicSchedule:
		w := &scheduleWire{Type: ScheduleBasic, StartDate: s.StartDate, DurationDays: s.DurationDays, Time: s.Time}
		if s.Frequency != "" {
			w.Frequency, _ = json.Marshal(s.Frequency)
		}
		return w
	case *RecurringSchedule:
		w := &scheduleWire{Type: ScheduleRecurring, StartDate: s.StartDate, DurationDays: s.DurationDays, Times: s.Times}
		w.Frequency, _ = json.Marshal(s.Slots)
		return w
	default:
		return nil
	}
}

// decodeSchedule never fails: a malformed frequency just yields no slots.
func decodeSchedule(w *scheduleWire) Schedule {
	if w == nil {
		return nil
	}
	win := Window{StartDate: w.StartDate, DurationDays: w.DurationDays}

	var list []string
	var single string
	if len(w.Frequency) > 0 {
		if err := json.Unmarshal(w.Frequency, &list); err != nil {
			_ = json.Unmarshal(w.Frequency, &single)
		}
	}

	if w.Type == ScheduleRecurring {
		if single != "" {
			for _, part := range strings.Split(single, ",") {
				if part = strings.TrimSpace(part); part != "" {
					list = append(list, part)
				}
			}
		}
		return &RecurringSchedule{Window: win, Slots: list, Times: w.Times}
	}
	if single == "" && len(list) > 0 {
		single = strings.Join(list, ", ")
	}
	return &BasicSchedule{Window: win, Frequency: single, Time: w.Time}
}
