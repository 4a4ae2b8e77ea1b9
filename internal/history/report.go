package history

import (
	"context"
	"fmt"
	"time"

	"github.com/hray3182/DoseLine/internal/clock"
	"github.com/hray3182/DoseLine/internal/engine"
	"github.com/hray3182/DoseLine/internal/models"
	"github.com/hray3182/DoseLine/internal/storage"
)

// DayStats counts one day's instances by status.
type DayStats struct {
	Date     string
	Taken    int
	Missed   int
	Upcoming int
	Snoozed  int
}

type Report struct {
	From, To string
	// Counts come from expanding each day from From up to today. Taken
	// also includes ledger entries of deleted definitions.
	Taken    int
	Missed   int
	Upcoming int
	Snoozed  int
	Days     []DayStats
}

// Adherence is taken / (taken + missed). ok is false when there is
// nothing to score yet.
func (r Report) Adherence() (pct float64, ok bool) {
	denom := r.Taken + r.Missed
	if denom == 0 {
		return 0, false
	}
	return float64(r.Taken) * 100 / float64(denom), true
}

// Reporter builds adherence reports. Missed instances are never logged,
// so every past day in range is re-expanded.
type Reporter struct {
	store storage.Store
}

func NewReporter(store storage.Store) *Reporter {
	return &Reporter{store: store}
}

// Build reports on [from, to] (YYYY-MM-DD) as seen at now. Days after
// today are skipped.
func (r *Reporter) Build(ctx context.Context, userID int64, from, to string, now time.Time) (*Report, error) {
	settings, err := storage.SettingsOrDefault(ctx, r.store, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	now = now.In(settings.Location())

	start, err := clock.ParseDate(from, now.Location())
	if err != nil {
		return nil, fmt.Errorf("invalid report start %q: %w", from, err)
	}
	end, err := clock.ParseDate(to, now.Location())
	if err != nil {
		return nil, fmt.Errorf("invalid report end %q: %w", to, err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("report end %s is before start %s", to, from)
	}

	defs, err := r.store.ListReminders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	entries, err := r.store.ListHistory(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	// Live definitions are scored from their expanded instances, so repeat
	// takes and later corrections count once. The ledger only vouches for
	// occurrences whose definition has since been deleted.
	live := make(map[models.ID]bool, len(defs))
	for _, def := range defs {
		live[def.ID] = true
	}
	orphaned := make(map[string]map[string]bool)
	for _, e := range entries {
		if e.Status != models.StatusTaken || live[e.ReminderID] {
			continue
		}
		key := e.InstanceKey
		if key == "" {
			key = e.ID
		}
		if orphaned[e.Date] == nil {
			orphaned[e.Date] = make(map[string]bool)
		}
		orphaned[e.Date][string(e.ReminderID)+"_"+key] = true
	}

	rep := &Report{From: from, To: to}
	today := clock.StartOfDay(now)
	for day := start; !day.After(end) && !day.After(today); day = day.AddDate(0, 0, 1) {
		date := clock.FormatDate(day)
		stats := DayStats{Date: date, Taken: len(orphaned[date])}
		for _, inst := range engine.Expand(date, defs, settings.Settings, now) {
			switch inst.Status {
			case models.StatusTaken:
				stats.Taken++
			case models.StatusMissed:
				stats.Missed++
			case models.StatusUpcoming:
				stats.Upcoming++
			case models.StatusSnoozed:
				stats.Snoozed++
			}
		}
		rep.Days = append(rep.Days, stats)
		rep.Taken += stats.Taken
		rep.Missed += stats.Missed
		rep.Upcoming += stats.Upcoming
		rep.Snoozed += stats.Snoozed
	}
	return rep, nil
}

// MonthRange returns the first and last date of month (YYYY-MM).
func MonthRange(month string) (from, to string, err error) {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return "", "", fmt.Errorf("invalid month %q: %w", month, err)
	}
	last := t.AddDate(0, 1, -1)
	return clock.FormatDate(t), clock.FormatDate(last), nil
}
