package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const multivitamin = `{
	"id": 1,
	"title": "Multivitamin",
	"schedule": {
		"type": "recurring",
		"startDate": "2024-01-01",
		"durationDays": 30,
		"frequency": ["breakfast", "dinner"],
		"times": {"breakfast": "08:00", "dinner": "20:00"}
	},
	"logs": {"2024-01-01_breakfast": {"status": "taken", "takenAt": "2024-01-01T08:05:00Z"}},
	"exceptions": {"2024-01-02_dinner": {"status": "cancelled"}}
}`

func TestDecodeRecurringDefinition(t *testing.T) {
	var def ReminderDefinition
	require.NoError(t, json.Unmarshal([]byte(multivitamin), &def))

	assert.Equal(t, ID("1"), def.ID)
	assert.Equal(t, "2024-01-01", def.StartDate())
	require.NotNil(t, def.DurationDays())
	assert.Equal(t, 30, *def.DurationDays())

	rec, ok := def.Schedule.(*RecurringSchedule)
	require.True(t, ok, "expected recurring schedule, got %T", def.Schedule)
	assert.Equal(t, []string{"breakfast", "dinner"}, rec.Slots)
	assert.Equal(t, "20:00", rec.Times["dinner"])

	assert.Equal(t, StatusTaken, def.Logs["2024-01-01_breakfast"].Status)
	assert.True(t, def.Exceptions["2024-01-02_dinner"].Cancelled())

	out, err := json.Marshal(def)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"type":"recurring"`)
	assert.Contains(t, string(out), `"frequency":["breakfast","dinner"]`)
}

func TestDecodeLegacyDefinition(t *testing.T) {
	var def ReminderDefinition
	require.NoError(t, json.Unmarshal([]byte(`{"id":"abc","title":"Water","time":"08:00","frequency":"Every 4 Hours","date":"2024-03-01"}`), &def))

	assert.Nil(t, def.Schedule)
	assert.Equal(t, "2024-03-01", def.StartDate())
	assert.Equal(t, "Every 4 Hours", def.EffectiveFrequency())
	assert.Equal(t, "08:00", def.EffectiveTime())
}

func TestBasicScheduleOverridesLegacyFields(t *testing.T) {
	var def ReminderDefinition
	raw := `{"id":"b","time":"07:00","frequency":"Daily","schedule":{"type":"basic","startDate":"2024-05-01","frequency":"Mon, Wed","time":"09:30"}}`
	require.NoError(t, json.Unmarshal([]byte(raw), &def))

	assert.Equal(t, "Mon, Wed", def.EffectiveFrequency())
	assert.Equal(t, "09:30", def.EffectiveTime())
	assert.Equal(t, "2024-05-01", def.StartDate())
}

func TestStartDateFallback(t *testing.T) {
	def := ReminderDefinition{}
	assert.Equal(t, DefaultStartDate, def.StartDate())

	def.Schedule = &BasicSchedule{}
	def.Date = "2024-02-02"
	assert.Equal(t, "2024-02-02", def.StartDate())
}

func TestCloneIsIndependent(t *testing.T) {
	def := ReminderDefinition{
		ID:       "x",
		Logs:     map[string]LogEntry{"k": {Status: StatusTaken}},
		Schedule: &RecurringSchedule{Slots: []string{"a"}, Times: map[string]string{"a": "08:00"}},
	}
	c := def.Clone()
	c.Logs["k2"] = LogEntry{Status: StatusMissed}
	c.Schedule.(*RecurringSchedule).Times["a"] = "09:00"

	assert.Len(t, def.Logs, 1)
	assert.Equal(t, "08:00", def.Schedule.(*RecurringSchedule).Times["a"])
}

func TestSplitInstanceKey(t *testing.T) {
	date, slot, ok := SplitInstanceKey("2024-01-01_breakfast")
	require.True(t, ok)
	assert.Equal(t, "2024-01-01", date)
	assert.Equal(t, "breakfast", slot)

	date, slot, ok = SplitInstanceKey(InstanceKey("2024-01-01", ""))
	require.True(t, ok)
	assert.Equal(t, "default", slot)
	assert.Equal(t, "2024-01-01", date)

	_, _, ok = SplitInstanceKey("nonsense")
	assert.False(t, ok)
}

func TestPatchApplyToException(t *testing.T) {
	moved := "2024-01-03"
	at := "09:15"
	var exc Exception
	Patch{Date: &moved, Time: &at}.ApplyToException(&exc)

	assert.Equal(t, Exception{Date: moved, Time: at, IsException: true}, exc)
}
