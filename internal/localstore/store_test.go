package localstore

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hray3182/DoseLine/internal/models"
	"github.com/hray3182/DoseLine/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewMemory(t *testing.T) {
	s := newTestStore(t)

	var version int
	require.NoError(t, s.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, currentVersion, version)
}

func TestNewWithPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "doseline.db")
	s, err := New(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = os.Stat(path)
	require.NoError(t, err)

	// Reopening an up-to-date database is a no-op migration.
	s, err = New(path)
	require.NoError(t, err)
	s.Close()
}

func TestReminderDocumentsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var def models.ReminderDefinition
	require.NoError(t, def.UnmarshalJSON([]byte(`{
		"id": 1,
		"title": "Multivitamin",
		"schedule": {"type": "recurring", "startDate": "2024-01-01", "durationDays": 10,
			"frequency": ["breakfast", "dinner"], "times": {"breakfast": "08:00", "dinner": "20:00"}},
		"logs": {"2024-01-01_breakfast": {"status": "snoozed", "snoozedUntil": "2024-01-01T08:15:00Z"}},
		"exceptions": {"2024-01-02_dinner": {"status": "cancelled", "isException": true}}
	}`)))
	require.NoError(t, s.SaveReminder(ctx, 42, &def))
	require.NoError(t, s.SaveReminder(ctx, 42, &models.ReminderDefinition{ID: "b", Title: "Iron", Time: "09:00"}))

	got, err := s.GetReminder(ctx, 42, "1")
	require.NoError(t, err)
	assert.Equal(t, "Multivitamin", got.Title)
	rec, ok := got.Schedule.(*models.RecurringSchedule)
	require.True(t, ok)
	assert.Equal(t, []string{"breakfast", "dinner"}, rec.Slots)
	require.NotNil(t, rec.DurationDays)
	assert.Equal(t, 10, *rec.DurationDays)
	assert.Equal(t, "2024-01-01T08:15:00Z", got.Logs["2024-01-01_breakfast"].SnoozedUntil)
	assert.True(t, got.Exceptions["2024-01-02_dinner"].Cancelled())

	// Upsert keeps insertion order.
	got.Title = "Multivitamin D"
	require.NoError(t, s.SaveReminder(ctx, 42, got))
	defs, err := s.ListReminders(ctx, 42)
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "Multivitamin D", defs[0].Title)
	assert.Equal(t, models.ID("b"), defs[1].ID)

	require.NoError(t, s.DeleteReminder(ctx, 42, "b"))
	assert.True(t, storage.IsNotFound(s.DeleteReminder(ctx, 42, "b")))
	_, err = s.GetReminder(ctx, 42, "b")
	assert.True(t, storage.IsNotFound(err))
}

func TestHistoryLedger(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ts := time.Date(2024, 1, 1, 8, 3, 0, 0, time.UTC)

	entry := &models.HistoryEntry{
		ID: "h1", ReminderID: "1", InstanceKey: "2024-01-01_breakfast",
		Title: "Multivitamin", Status: models.StatusTaken, Date: "2024-01-01", Timestamp: ts,
	}
	require.NoError(t, s.AppendHistory(ctx, 42, entry))
	require.NoError(t, s.AppendHistory(ctx, 42, entry))
	require.NoError(t, s.AppendHistory(ctx, 42, &models.HistoryEntry{
		ID: "h2", ReminderID: "1", Status: models.StatusTaken, Date: "2024-02-01", Timestamp: ts.AddDate(0, 1, 0),
	}))

	got, err := s.ListHistory(ctx, 42, "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2024-01-01_breakfast", got[0].InstanceKey)
	assert.True(t, ts.Equal(got[0].Timestamp))

	other, err := s.ListHistory(ctx, 7, "2024-01-01", "2024-12-31")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSettings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetSettings(ctx, 42)
	assert.True(t, storage.IsNotFound(err))

	settings := models.NewDefaultUserSettings(42)
	settings.SleepStart = "23:15"
	require.NoError(t, s.SaveSettings(ctx, settings))

	got, err := s.GetSettings(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "23:15", got.SleepStart)
	assert.Equal(t, models.DefaultSleepEnd, got.SleepEnd)
	assert.Equal(t, "Local", got.Timezone)

	require.NoError(t, s.SaveReminder(ctx, 7, &models.ReminderDefinition{ID: "x"}))
	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 42}, users)
}

func TestWatcherReportsExternalWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doseline.db")
	s, err := New(path)
	require.NoError(t, err)
	defer s.Close()

	var calls atomic.Int32
	w, err := Watch(path, func() { calls.Add(1) })
	require.NoError(t, err)
	defer w.Close()

	other, err := New(path)
	require.NoError(t, err)
	defer other.Close()
	require.NoError(t, other.SaveReminder(context.Background(), 1, &models.ReminderDefinition{ID: "a"}))

	assert.Eventually(t, func() bool { return calls.Load() > 0 }, 2*time.Second, 20*time.Millisecond)

	// Unrelated files in the same directory are ignored.
	time.Sleep(3 * debounceDelay)
	before := calls.Load()
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "notes.txt"), []byte("x"), 0o644))
	time.Sleep(3 * debounceDelay)
	assert.Equal(t, before, calls.Load())
}
