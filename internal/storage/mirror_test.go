package storage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/hray3182/DoseLine/internal/models"
	"github.com/hray3182/DoseLine/internal/storage"
	"github.com/hray3182/DoseLine/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// failingRemote is a remote store whose writes always fail.
type failingRemote struct {
	*memory.Store
	mock.Mock
}

func (f *failingRemote) SaveReminder(ctx context.Context, userID int64, def *models.ReminderDefinition) error {
	args := f.Called(userID, def.ID)
	return args.Error(0)
}

func TestMirror_WritesThrough(t *testing.T) {
	ctx := context.Background()
	local, remote := memory.New(), memory.New()
	m := storage.NewMirror(local, remote)

	def := &models.ReminderDefinition{ID: "a", Title: "Aspirin"}
	require.NoError(t, m.SaveReminder(ctx, 1, def))
	require.NoError(t, m.SaveSettings(ctx, &models.UserSettings{UserID: 1, Settings: models.DefaultSettings()}))
	require.NoError(t, m.AppendHistory(ctx, 1, &models.HistoryEntry{ID: "h", Date: "2024-01-01"}))

	got, err := remote.GetReminder(ctx, 1, "a")
	require.NoError(t, err)
	assert.Equal(t, "Aspirin", got.Title)

	_, err = remote.GetSettings(ctx, 1)
	require.NoError(t, err)

	hist, err := remote.ListHistory(ctx, 1, "2024-01-01", "2024-01-01")
	require.NoError(t, err)
	assert.Len(t, hist, 1)

	require.NoError(t, m.DeleteReminder(ctx, 1, "a"))
	_, err = remote.GetReminder(ctx, 1, "a")
	assert.True(t, storage.IsNotFound(err))
}

func TestMirror_RemoteFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	local := memory.New()
	remote := &failingRemote{Store: memory.New()}
	remote.On("SaveReminder", int64(1), models.ID("a")).Return(errors.New("connection refused"))

	m := storage.NewMirror(local, remote)
	require.NoError(t, m.SaveReminder(ctx, 1, &models.ReminderDefinition{ID: "a"}))

	_, err := local.GetReminder(ctx, 1, "a")
	require.NoError(t, err)
	remote.AssertExpectations(t)
}

func TestMirror_WorksWithoutRemote(t *testing.T) {
	ctx := context.Background()
	m := storage.NewMirror(memory.New(), nil)

	require.NoError(t, m.SaveReminder(ctx, 1, &models.ReminderDefinition{ID: "a"}))
	n, err := m.Hydrate(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMirror_Hydrate(t *testing.T) {
	ctx := context.Background()
	local, remote := memory.New(), memory.New()

	require.NoError(t, remote.SaveReminder(ctx, 1, &models.ReminderDefinition{ID: "a"}))
	require.NoError(t, remote.SaveReminder(ctx, 2, &models.ReminderDefinition{ID: "b"}))
	require.NoError(t, remote.SaveSettings(ctx, &models.UserSettings{UserID: 2, Settings: models.Settings{SleepStart: "23:30"}}))
	require.NoError(t, remote.AppendHistory(ctx, 2, &models.HistoryEntry{ID: "h", Date: "2024-03-01"}))
	// User 1 already exists locally with different data and must be left alone.
	require.NoError(t, local.SaveReminder(ctx, 1, &models.ReminderDefinition{ID: "local"}))

	n, err := storage.NewMirror(local, remote).Hydrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	defs, err := local.ListReminders(ctx, 1)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, models.ID("local"), defs[0].ID)

	_, err = local.GetReminder(ctx, 2, "b")
	require.NoError(t, err)
	s, err := local.GetSettings(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "23:30", s.SleepStart)
	hist, err := local.ListHistory(ctx, 2, "2024-03-01", "2024-03-31")
	require.NoError(t, err)
	assert.Len(t, hist, 1)
}

func TestIsNotFound(t *testing.T) {
	err := storage.NotFound("reminder %s not found", "x")
	assert.True(t, storage.IsNotFound(err))
	assert.True(t, storage.IsNotFound(errors.Join(errors.New("ctx"), err)))
	assert.False(t, storage.IsNotFound(errors.New("boom")))
	assert.False(t, storage.IsNotFound(nil))
	assert.EqualError(t, err, "not_found: reminder x not found")
}

func TestDefaulted(t *testing.T) {
	ctx := context.Background()
	base := memory.New()
	s := storage.Defaulted{Store: base, Settings: models.Settings{SleepStart: "23:30"}}

	got, err := storage.SettingsOrDefault(ctx, s, 5)
	require.NoError(t, err)
	assert.Equal(t, "23:30", got.SleepStart)
	assert.Equal(t, models.DefaultSleepEnd, got.SleepEnd)

	require.NoError(t, s.SaveSettings(ctx, &models.UserSettings{UserID: 5, Settings: models.Settings{SleepStart: "21:00", SleepEnd: "05:00"}}))
	got, err = s.GetSettings(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "21:00", got.SleepStart)
}
