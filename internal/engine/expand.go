// Package engine turns persisted reminder definitions into the concrete
// instances due on a calendar date. Expand is a pure function of its
// arguments: it reads no clock, touches no storage and never fails.
package engine

import (
	"cmp"
	"maps"
	"slices"
	"time"

	"github.com/hray3182/DoseLine/internal/clock"
	"github.com/hray3182/DoseLine/internal/models"
	"github.com/hray3182/DoseLine/internal/rrule"
	"github.com/samber/mo"
)

// Expand returns every instance that belongs on date (YYYY-MM-DD, in now's
// location), sorted by display time with untimed instances last.
func Expand(date string, reminders []models.ReminderDefinition, settings models.Settings, now time.Time) []models.Instance {
	out := []models.Instance{}

	day, err := clock.ParseDate(date, now.Location())
	if err != nil {
		return out
	}
	settings = settings.WithDefaults()

	for i := range reminders {
		e := expander{
			def:      &reminders[i],
			day:      day,
			date:     clock.FormatDate(day),
			settings: settings,
			now:      now,
		}
		out = append(out, e.expand()...)
	}

	slices.SortStableFunc(out, compareInstances)
	return out
}

func compareInstances(a, b models.Instance) int {
	switch {
	case a.DisplayTime == b.DisplayTime:
		return 0
	case a.DisplayTime == "":
		return 1
	case b.DisplayTime == "":
		return -1
	}
	return cmp.Compare(a.DisplayTime, b.DisplayTime)
}

// candidate is an occurrence before exceptions and snoozes are applied.
type candidate struct {
	key     string
	minutes int
	hasTime bool
}

type expander struct {
	def      *models.ReminderDefinition
	day      time.Time
	date     string
	settings models.Settings
	now      time.Time
	start    time.Time
}

func (e *expander) expand() []models.Instance {
	if !e.inWindow() {
		return nil
	}

	var out []models.Instance
	present := make(map[string]bool)
	for _, c := range e.natural() {
		if inst, ok := e.resolve(c); ok {
			out = append(out, inst)
			present[c.key] = true
		}
	}

	for _, key := range e.movedInKeys() {
		if present[key] {
			continue
		}
		if inst, ok := e.resolve(e.candidateFromKey(key)); ok {
			out = append(out, inst)
			present[key] = true
		}
	}
	return out
}

// inWindow applies the start-date and duration gates.
func (e *expander) inWindow() bool {
	loc := e.day.Location()
	start, err := clock.ParseDate(e.def.StartDate(), loc)
	if err != nil {
		start, _ = clock.ParseDate(models.DefaultStartDate, loc)
	}
	e.start = start

	if e.day.Before(start) {
		return false
	}
	if d := e.def.DurationDays(); d != nil {
		diff := clock.DaysBetween(start, e.day)
		if diff < 0 || diff >= *d {
			return false
		}
	}
	return true
}

// natural lists the occurrences the schedule itself puts on the target day.
func (e *expander) natural() []candidate {
	if rec, ok := e.def.Schedule.(*models.RecurringSchedule); ok {
		var out []candidate
		for _, slot := range rec.Slots {
			t, ok := rec.Times[slot]
			if !ok {
				continue
			}
			m, hasTime := clock.ParseClock(t)
			out = append(out, candidate{key: models.InstanceKey(e.date, slot), minutes: m, hasTime: hasTime})
		}
		return out
	}

	freq := rrule.ParseFrequency(e.def.EffectiveFrequency())
	if !freq.OccursOn(e.start, e.day) {
		return nil
	}

	anchor := e.def.EffectiveTime()
	if freq.Kind == rrule.KindInterval {
		first, limit := intervalBounds(anchor, clock.SameDay(e.start, e.day), e.settings)
		var out []candidate
		for _, m := range IntervalSlots(first, freq.IntervalHours, limit) {
			out = append(out, candidate{key: models.InstanceKey(e.date, clock.FormatClock(m)), minutes: m, hasTime: true})
		}
		return out
	}

	m, hasTime := clock.ParseClock(anchor)
	return []candidate{{key: models.InstanceKey(e.date, anchor), minutes: m, hasTime: hasTime}}
}

// movedInKeys finds occurrences from other dates that now land on the
// target day, either through a date exception or a snooze past midnight.
func (e *expander) movedInKeys() []string {
	var keys []string
	for _, key := range slices.Sorted(maps.Keys(e.def.Exceptions)) {
		if e.def.Exceptions[key].Date == e.date {
			keys = append(keys, key)
		}
	}
	for _, key := range slices.Sorted(maps.Keys(e.def.Logs)) {
		log := e.def.Logs[key]
		if log.Status != models.StatusSnoozed {
			continue
		}
		if at, ok := e.snoozedMoment(key, log).Get(); ok && clock.FormatDate(at) == e.date {
			keys = append(keys, key)
		}
	}
	return keys
}

// candidateFromKey recovers the series time of an occurrence from its key.
func (e *expander) candidateFromKey(key string) candidate {
	c := candidate{key: key}
	_, slot, ok := models.SplitInstanceKey(key)
	if !ok {
		return c
	}

	if m, ok := clock.ParseClock(slot); ok {
		c.minutes, c.hasTime = m, true
		return c
	}
	if rec, ok := e.def.Schedule.(*models.RecurringSchedule); ok {
		if t, ok := rec.Times[slot]; ok {
			c.minutes, c.hasTime = clock.ParseClock(t)
		}
		return c
	}
	if slot == "default" {
		c.minutes, c.hasTime = clock.ParseClock(e.def.EffectiveTime())
	}
	return c
}

// placementDate is the date an occurrence shows up on once a date
// exception has been applied.
func (e *expander) placementDate(key string) string {
	if exc, ok := e.def.Exceptions[key]; ok && exc.Date != "" {
		return exc.Date
	}
	date, _, _ := models.SplitInstanceKey(key)
	return date
}

// snoozedMoment resolves a snooze to an absolute moment. Bare HH:MM values
// from older documents are read on the occurrence's own date.
func (e *expander) snoozedMoment(key string, log models.LogEntry) mo.Option[time.Time] {
	if log.SnoozedUntil == "" {
		return mo.None[time.Time]()
	}
	loc := e.day.Location()
	if t, err := time.Parse(time.RFC3339, log.SnoozedUntil); err == nil {
		return mo.Some(t.In(loc))
	}
	m, ok := clock.ParseClock(log.SnoozedUntil)
	if !ok {
		return mo.None[time.Time]()
	}
	base, err := clock.ParseDate(e.placementDate(key), loc)
	if err != nil {
		return mo.None[time.Time]()
	}
	return mo.Some(clock.At(base, m))
}

// exceptionTime is the occurrence's time after a single-instance edit.
func exceptionTime(exc models.Exception, c candidate) mo.Option[int] {
	if exc.Time == "" {
		if !c.hasTime {
			return mo.None[int]()
		}
		return mo.Some(c.minutes)
	}
	if m, ok := clock.ParseClock(exc.Time); ok {
		return mo.Some(m)
	}
	return mo.None[int]()
}

// resolve applies exceptions, snoozes and status to a candidate. It reports
// false when the occurrence is cancelled or belongs on another date.
func (e *expander) resolve(c candidate) (models.Instance, bool) {
	exc, hasExc := e.def.Exceptions[c.key]
	if hasExc && exc.Cancelled() {
		return models.Instance{}, false
	}

	minutes, hasTime := exceptionTime(exc, c).Get()
	at := clock.At(e.day, minutes)
	placement := e.placementDate(c.key)
	if placement == "" {
		placement = e.date
	}

	var logPtr *models.LogEntry
	if log, ok := e.def.Logs[c.key]; ok {
		logPtr = &log
		if log.Status == models.StatusSnoozed {
			if t, ok := e.snoozedMoment(c.key, log).Get(); ok {
				at, hasTime = t, true
				placement = clock.FormatDate(t)
			}
		}
	}
	if placement != e.date {
		return models.Instance{}, false
	}

	status := DeriveStatus(e.now, at, logPtr)
	explicitMiss := logPtr != nil && logPtr.Status == models.StatusMissed
	if status == models.StatusMissed && !explicitMiss && e.day.After(clock.StartOfDay(e.now)) {
		status = models.StatusUpcoming
	}

	inst := models.Instance{
		UniqueID:       string(e.def.ID) + "_" + c.key,
		InstanceKey:    c.key,
		Date:           e.date,
		Status:         status,
		Title:          e.def.Title,
		At:             at,
		HasTime:        hasTime,
		SourceReminder: e.def,
	}
	if hasTime {
		inst.DisplayTime = clock.FormatClock(clock.MinutesOf(at))
	}
	if hasExc && exc.Title != "" {
		inst.Title = exc.Title
	}
	if status == models.StatusTaken && logPtr != nil {
		inst.TakenAt = logPtr.TakenAt
	}
	return inst, true
}
