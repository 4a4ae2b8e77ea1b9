package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		minutes int
		ok      bool
	}{
		{"00:00", 0, true},
		{"08:00", 480, true},
		{"8:05", 485, true},
		{"23:59", 1439, true},
		{"24:00", 0, false},
		{"noon", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseClock(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.minutes, got)
		})
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "00:00", FormatClock(0))
	assert.Equal(t, "08:05", FormatClock(485))
	assert.Equal(t, "23:59", FormatClock(1439))
	assert.Equal(t, "00:30", FormatClock(MinutesPerDay+30))
	assert.Equal(t, "23:00", FormatClock(-60))
}

func TestDaysBetween(t *testing.T) {
	loc := time.Local
	start, err := ParseDate("2024-01-01", loc)
	require.NoError(t, err)

	sameDayEvening := time.Date(2024, 1, 1, 23, 30, 0, 0, loc)
	assert.Equal(t, 0, DaysBetween(start, sameDayEvening))

	later, _ := ParseDate("2024-01-04", loc)
	assert.Equal(t, 3, DaysBetween(start, later))
	assert.Equal(t, -3, DaysBetween(later, start))

	leap, _ := ParseDate("2024-03-01", loc)
	feb, _ := ParseDate("2024-02-28", loc)
	assert.Equal(t, 2, DaysBetween(feb, leap))
}

func TestDaysBetweenIgnoresDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	before, _ := ParseDate("2024-03-09", loc)
	after, _ := ParseDate("2024-03-11", loc)
	assert.Equal(t, 2, DaysBetween(before, after))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", FormatDate(d))

	_, err = ParseDate("2024-13-01", time.UTC)
	assert.Error(t, err)
}

func TestAtAndMinutesOf(t *testing.T) {
	day, _ := ParseDate("2024-01-01", time.UTC)
	at := At(day, 20*60+15)
	assert.Equal(t, time.Date(2024, 1, 1, 20, 15, 0, 0, time.UTC), at)
	assert.Equal(t, 20*60+15, MinutesOf(at))
	assert.True(t, SameDay(day, at))
	assert.Equal(t, day, StartOfDay(at))
}
