package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/hray3182/DoseLine/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteICS(t *testing.T) {
	at := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	src := &models.ReminderDefinition{ID: "1", Title: "Multivitamin", Type: "supplement", Instructions: "with food", IsImportant: true}
	insts := []models.Instance{
		{UniqueID: "1_2024-01-01_breakfast", Title: "Multivitamin", Status: models.StatusTaken, At: at, HasTime: true, SourceReminder: src},
		{UniqueID: "2_2024-01-01", Title: "Check-up", Status: models.StatusUpcoming, At: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteICS(&buf, insts, at))

	cal, err := ical.NewDecoder(&buf).Decode()
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 2)

	first := events[0]
	uid, err := first.Props.Text(ical.PropUID)
	require.NoError(t, err)
	assert.Equal(t, "1_2024-01-01_breakfast@doseline", uid)
	start, err := first.DateTimeStart(time.UTC)
	require.NoError(t, err)
	assert.True(t, at.Equal(start))
	end, err := first.DateTimeEnd(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, end.Sub(start))
	desc, err := first.Props.Text(ical.PropDescription)
	require.NoError(t, err)
	assert.Equal(t, "with food", desc)
	status, err := first.Props.Text(PropStatus)
	require.NoError(t, err)
	assert.Equal(t, "taken", status)

	allDay := events[1].Props.Get(ical.PropDateTimeStart)
	require.NotNil(t, allDay)
	assert.Equal(t, ical.ValueDate, allDay.ValueType())
	assert.Equal(t, "20240101", allDay.Value)
}

func TestWriteICSEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteICS(&buf, nil, time.Now()))
	assert.Contains(t, buf.String(), "BEGIN:VCALENDAR")
	assert.Contains(t, buf.String(), "PRODID:"+productID)
}
