package engine

import (
	"github.com/hray3182/DoseLine/internal/clock"
	"github.com/hray3182/DoseLine/internal/models"
)

// IntervalSlots lists the clock minutes of an every-N-hours reminder within
// one day, starting at first and stopping before limit. Nothing rolls past
// midnight.
func IntervalSlots(first, everyHours, limit int) []int {
	if everyHours <= 0 || first < 0 {
		return nil
	}
	if limit > clock.MinutesPerDay {
		limit = clock.MinutesPerDay
	}

	var slots []int
	for m := first; m < limit; m += everyHours * 60 {
		slots = append(slots, m)
	}
	return slots
}

// intervalBounds picks the first slot and the exclusive end of the dosing
// day. The start day begins at the reminder's own anchor time, later days at
// wake time. A sleep start at or before the first slot means the window
// runs past midnight, so the day is capped at 24:00 instead.
func intervalBounds(anchor string, onStartDay bool, settings models.Settings) (first, limit int) {
	if onStartDay {
		first, _ = clock.ParseClock(anchor)
	} else {
		first, _ = clock.ParseClock(settings.SleepEnd)
	}

	limit, ok := clock.ParseClock(settings.SleepStart)
	if !ok || limit <= first {
		limit = clock.MinutesPerDay
	}
	return first, limit
}
