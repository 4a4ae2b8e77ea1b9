// Package rrule classifies the legacy frequency strings stored on reminder
// definitions and answers "does this pattern fall on that date" using RFC 5545
// recurrence rules.
package rrule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

type Kind int

const (
	KindOnce Kind = iota
	KindDaily
	KindWeekly
	KindWeekdays
	KindInterval
	KindUnknown
)

// Frequency is a parsed frequency string.
type Frequency struct {
	Kind          Kind
	Weekdays      []time.Weekday // KindWeekdays
	IntervalHours int            // KindInterval
	Raw           string
}

var intervalRe = regexp.MustCompile(`(?i)^every\s+(\d+)\s+hours?(?:\(s\))?$`)

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tues": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// ParseFrequency classifies s. An empty string means a one-off reminder.
func ParseFrequency(s string) Frequency {
	raw := strings.TrimSpace(s)
	f := Frequency{Raw: raw}

	switch strings.ToLower(raw) {
	case "", "once":
		f.Kind = KindOnce
		return f
	case "daily":
		f.Kind = KindDaily
		return f
	case "weekly":
		f.Kind = KindWeekly
		return f
	}

	if m := intervalRe.FindStringSubmatch(raw); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			f.Kind = KindUnknown
			return f
		}
		f.Kind = KindInterval
		f.IntervalHours = n
		return f
	}

	seen := make(map[time.Weekday]bool)
	for _, part := range strings.Split(raw, ",") {
		day, ok := weekdayNames[strings.ToLower(strings.TrimSpace(part))]
		if !ok {
			f.Kind = KindUnknown
			f.Weekdays = nil
			return f
		}
		if !seen[day] {
			seen[day] = true
			f.Weekdays = append(f.Weekdays, day)
		}
	}
	f.Kind = KindWeekdays
	return f
}

var rruleWeekdays = [...]rrule.Weekday{
	time.Sunday:    rrule.SU,
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
}

// OccursOn reports whether the pattern anchored at start has an occurrence
// on date's calendar day. Only calendar dates are compared.
func (f Frequency) OccursOn(start, date time.Time) bool {
	s := calendarDate(start)
	d := calendarDate(date)
	if d.Before(s) {
		return false
	}

	switch f.Kind {
	case KindOnce:
		return d.Equal(s)
	case KindInterval:
		return true
	case KindDaily, KindWeekly, KindWeekdays:
	default:
		return false
	}

	rule, err := f.rule(s, d)
	if err != nil {
		return false
	}
	return len(rule.Between(d, d.Add(12*time.Hour), true)) > 0
}

// rule builds a day-level RRULE. Every supported pattern repeats within a
// week, so dtstart is pulled up to a week before d to keep iteration short.
func (f Frequency) rule(start, d time.Time) (*rrule.RRule, error) {
	dtstart := start
	if floor := d.AddDate(0, 0, -7); floor.After(dtstart) {
		dtstart = floor
	}

	opt := rrule.ROption{Freq: rrule.DAILY, Interval: 1, Dtstart: dtstart}
	switch f.Kind {
	case KindWeekly:
		opt.Freq = rrule.WEEKLY
		opt.Byweekday = []rrule.Weekday{rruleWeekdays[start.Weekday()]}
	case KindWeekdays:
		opt.Freq = rrule.WEEKLY
		for _, wd := range f.Weekdays {
			opt.Byweekday = append(opt.Byweekday, rruleWeekdays[wd])
		}
	}
	return rrule.NewRRule(opt)
}

func calendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Describe returns a short English label for the frequency.
func (f Frequency) Describe() string {
	switch f.Kind {
	case KindOnce:
		return "once"
	case KindDaily:
		return "every day"
	case KindWeekly:
		return "every week"
	case KindInterval:
		if f.IntervalHours == 1 {
			return "every hour"
		}
		return fmt.Sprintf("every %d hours", f.IntervalHours)
	case KindWeekdays:
		days := make([]string, len(f.Weekdays))
		for i, wd := range f.Weekdays {
			days[i] = wd.String()[:3]
		}
		return "on " + strings.Join(days, ", ")
	default:
		return f.Raw
	}
}
