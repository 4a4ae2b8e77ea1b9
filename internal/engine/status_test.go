package engine

import (
	"testing"
	"time"

	"github.com/hray3182/DoseLine/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestDeriveStatus(t *testing.T) {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	log := func(s models.Status) *models.LogEntry { return &models.LogEntry{Status: s} }

	tests := []struct {
		name string
		now  time.Time
		log  *models.LogEntry
		want models.Status
	}{
		{"before moment", at.Add(-time.Hour), nil, models.StatusUpcoming},
		{"within window", at.Add(time.Hour), nil, models.StatusUpcoming},
		{"exactly two hours", at.Add(MissedAfter), nil, models.StatusUpcoming},
		{"past window", at.Add(MissedAfter + time.Minute), nil, models.StatusMissed},
		{"taken wins over elapsed", at.Add(10 * time.Hour), log(models.StatusTaken), models.StatusTaken},
		{"explicit missed before moment", at.Add(-time.Hour), log(models.StatusMissed), models.StatusMissed},
		{"snoozed in window", at.Add(30 * time.Minute), log(models.StatusSnoozed), models.StatusSnoozed},
		{"snoozed ahead of moment", at.Add(-30 * time.Minute), log(models.StatusSnoozed), models.StatusSnoozed},
		{"snoozed expired", at.Add(3 * time.Hour), log(models.StatusSnoozed), models.StatusMissed},
		{"reopened falls back to clock", at.Add(30 * time.Minute), log(models.StatusUpcoming), models.StatusUpcoming},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(tt.now, at, tt.log))
		})
	}
}

func TestIntervalSlots(t *testing.T) {
	assert.Equal(t, []int{480, 720, 960, 1200}, IntervalSlots(480, 4, 22*60))
	assert.Equal(t, []int{1380}, IntervalSlots(1380, 4, 24*60))
	assert.Nil(t, IntervalSlots(480, 0, 22*60))
	assert.Nil(t, IntervalSlots(23*60, 2, 22*60))
}

func TestIntervalBounds(t *testing.T) {
	s := models.Settings{SleepStart: "22:00", SleepEnd: "07:00"}

	first, limit := intervalBounds("09:30", true, s)
	assert.Equal(t, 9*60+30, first)
	assert.Equal(t, 22*60, limit)

	first, limit = intervalBounds("09:30", false, s)
	assert.Equal(t, 7*60, first)
	assert.Equal(t, 22*60, limit)

	// Sleep starting after midnight caps the day at 24:00.
	first, limit = intervalBounds("", false, models.Settings{SleepStart: "01:00", SleepEnd: "09:00"})
	assert.Equal(t, 9*60, first)
	assert.Equal(t, 24*60, limit)
}
