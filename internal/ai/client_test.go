package ai

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hray3182/DoseLine/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeCompletions(t *testing.T, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req map[string]any
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "test-model", req["model"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 0,
			"model":   "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestParseReminder(t *testing.T) {
	srv := fakeCompletions(t, `{"action":"create_reminder","title":"維他命","type":"supplement","instructions":"飯後",
		"is_important":false,"start_date":"2024-01-01","duration_days":7,"time":"","frequency":"",
		"slots":[{"name":"breakfast","time":"08:00"},{"name":"dinner","time":"20:00"}],"reply":"好的"}`)

	c := New("key", srv.URL, "test-model")
	draft, err := c.ParseReminder(t.Context(), "每天早晚飯後吃維他命，吃一週", time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, ActionCreateReminder, draft.Action)
	assert.Len(t, draft.Slots, 2)
	assert.NotEmpty(t, draft.RawResponse)

	def, err := draft.ToDefinition()
	require.NoError(t, err)
	rec, ok := def.Schedule.(*models.RecurringSchedule)
	require.True(t, ok)
	assert.Equal(t, []string{"breakfast", "dinner"}, rec.Slots)
	assert.Equal(t, "20:00", rec.Times["dinner"])
	require.NotNil(t, rec.DurationDays)
	assert.Equal(t, 7, *rec.DurationDays)
	assert.Empty(t, def.ID)
}

func TestParseReminderRejectsGarbage(t *testing.T) {
	srv := fakeCompletions(t, `not json`)
	_, err := New("key", srv.URL, "test-model").ParseReminder(t.Context(), "hi", time.Now())
	assert.ErrorContains(t, err, "failed to parse AI response")
}

func TestDraftToDefinition(t *testing.T) {
	base := Draft{Action: ActionCreateReminder, Title: "Antibiotic", StartDate: "2024-03-01", Time: "08:00", Frequency: "Every 8 Hours"}

	def, err := base.ToDefinition()
	require.NoError(t, err)
	assert.Equal(t, "Every 8 Hours", def.EffectiveFrequency())
	assert.Equal(t, "08:00", def.EffectiveTime())
	assert.Equal(t, "2024-03-01", def.StartDate())
	assert.Nil(t, def.DurationDays())

	tests := []struct {
		name   string
		mutate func(*Draft)
	}{
		{"not a reminder", func(d *Draft) { d.Action = "unknown" }},
		{"no title", func(d *Draft) { d.Title = "" }},
		{"bad start", func(d *Draft) { d.StartDate = "tomorrow" }},
		{"bad time", func(d *Draft) { d.Time = "8am" }},
		{"bad frequency", func(d *Draft) { d.Frequency = "Fortnightly" }},
		{"bad slot", func(d *Draft) { d.Slots = []Slot{{Name: "lunch", Time: "noon"}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := base
			tt.mutate(&d)
			_, err := d.ToDefinition()
			assert.Error(t, err)
		})
	}

	_, err = (&Draft{Action: "unknown"}).ToDefinition()
	assert.ErrorIs(t, err, ErrNotAReminder)
}
