package rrule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		panic(err)
	}
	return t
}

func TestParseFrequency(t *testing.T) {
	tests := []struct {
		in    string
		kind  Kind
		hours int
		days  []time.Weekday
	}{
		{in: "", kind: KindOnce},
		{in: "Once", kind: KindOnce},
		{in: "Daily", kind: KindDaily},
		{in: "weekly", kind: KindWeekly},
		{in: "Every 4 Hours", kind: KindInterval, hours: 4},
		{in: "Every 1 Hour", kind: KindInterval, hours: 1},
		{in: "Every 6 Hour(s)", kind: KindInterval, hours: 6},
		{in: "Every 0 Hours", kind: KindUnknown},
		{in: "Mon, Wed, Fri", kind: KindWeekdays, days: []time.Weekday{time.Monday, time.Wednesday, time.Friday}},
		{in: "Sunday", kind: KindWeekdays, days: []time.Weekday{time.Sunday}},
		{in: "Mon, Funday", kind: KindUnknown},
		{in: "fortnightly", kind: KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			f := ParseFrequency(tt.in)
			assert.Equal(t, tt.kind, f.Kind)
			assert.Equal(t, tt.hours, f.IntervalHours)
			assert.Equal(t, tt.days, f.Weekdays)
		})
	}
}

func TestOccursOn(t *testing.T) {
	// 2024-01-01 is a Monday.
	start := date("2024-01-01")

	tests := []struct {
		name string
		freq string
		day  string
		want bool
	}{
		{"once on start", "Once", "2024-01-01", true},
		{"once after start", "Once", "2024-01-02", false},
		{"daily before start", "Daily", "2023-12-31", false},
		{"daily far later", "Daily", "2025-06-17", true},
		{"weekly same weekday", "Weekly", "2024-01-15", true},
		{"weekly other weekday", "Weekly", "2024-01-16", false},
		{"weekday list match", "Mon, Wed, Fri", "2024-01-10", true},
		{"weekday list miss", "Mon, Wed, Fri", "2024-01-11", false},
		{"interval every day", "Every 4 Hours", "2024-02-20", true},
		{"unknown never", "sometimes", "2024-01-01", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseFrequency(tt.freq).OccursOn(start, date(tt.day)))
		})
	}
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "every day", ParseFrequency("Daily").Describe())
	assert.Equal(t, "every 4 hours", ParseFrequency("Every 4 Hours").Describe())
	assert.Equal(t, "on Mon, Fri", ParseFrequency("Mon, Fri").Describe())
	assert.Equal(t, "once", ParseFrequency("").Describe())
}
