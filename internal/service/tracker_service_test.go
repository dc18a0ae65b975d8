package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errorvalues "github.com/saati/saati/internal/error_values"
	"github.com/saati/saati/internal/repository"
	"github.com/saati/saati/internal/service"
	"github.com/saati/saati/pkg/entity"
)

func intPtr(v int) *int {
	return &v
}

func TestTrackerService(t *testing.T) {
	local := repository.NewLocalStoreInMemory()
	store := repository.NewAdapter(nil, local)
	ts := service.NewTrackerService(store, local)
	owner := entity.GuestIdentity(uuid.New())
	ctx := context.Background()
	t.Run("no shift by default", func(t *testing.T) {
		shift, err := ts.Status(ctx, owner)
		assert.NoError(t, err)
		assert.Nil(t, shift)
	})
	t.Run("started with explicit break", func(t *testing.T) {
		shift, err := ts.Start(ctx, owner, &service.StartShiftRequest{
			BreakMinutes: intPtr(45),
			Notes:        "on site",
		})
		require.NoError(t, err)
		assert.Equal(t, 45, shift.BreakMinutes)
		assert.Equal(t, "on site", shift.Notes)
		assert.False(t, shift.StartTime.IsZero())
	})
	t.Run("second start fails", func(t *testing.T) {
		_, err := ts.Start(ctx, owner, &service.StartShiftRequest{})
		assert.ErrorIs(t, err, errorvalues.ErrShiftRunning)
	})
	t.Run("status reflects running shift", func(t *testing.T) {
		shift, err := ts.Status(ctx, owner)
		require.NoError(t, err)
		require.NotNil(t, shift)
		assert.Equal(t, 45, shift.BreakMinutes)
	})
	t.Run("stop records the work entry", func(t *testing.T) {
		id, err := ts.Stop(ctx, owner)
		require.NoError(t, err)
		assert.NotEmpty(t, id)
		logs, err := local.Logs(ctx, owner)
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, id, logs[0].ID)
		assert.Equal(t, entity.LogTypeWork, logs[0].Type)
		assert.Equal(t, 45, logs[0].BreakMinutes)
		assert.NotNil(t, logs[0].StartTime)
		assert.NotNil(t, logs[0].EndTime)
	})
	t.Run("stop without a running shift fails", func(t *testing.T) {
		_, err := ts.Stop(ctx, owner)
		assert.ErrorIs(t, err, errorvalues.ErrShiftNotRunning)
	})
	t.Run("break defaults from profile", func(t *testing.T) {
		shift, err := ts.Start(ctx, owner, &service.StartShiftRequest{})
		require.NoError(t, err)
		assert.Equal(t, entity.DefaultProfile().DefaultBreakMinutes, shift.BreakMinutes)
	})
	t.Run("rejected negative break", func(t *testing.T) {
		fresh := entity.GuestIdentity(uuid.New())
		_, err := ts.Start(ctx, fresh, &service.StartShiftRequest{
			BreakMinutes: intPtr(-10),
		})
		assert.ErrorIs(t, err, errorvalues.ErrValidation)
	})
}

func TestTrackerServiceUnconfiguredRemote(t *testing.T) {
	local := repository.NewLocalStoreInMemory()
	store := repository.NewAdapter(nil, local)
	ts := service.NewTrackerService(store, local)
	user := entity.UserIdentity(uuid.New(), "test_user")
	ctx := context.Background()
	t.Run("start without explicit break needs the profile", func(t *testing.T) {
		_, err := ts.Start(ctx, user, &service.StartShiftRequest{})
		assert.ErrorIs(t, err, errorvalues.ErrStoreNotConfigured)
		shift, err := ts.Status(ctx, user)
		require.NoError(t, err)
		assert.Nil(t, shift)
	})
	// With an explicit break the shift is device-local so it starts fine
	// even when the account backend is missing.
	_, err := ts.Start(ctx, user, &service.StartShiftRequest{BreakMinutes: intPtr(0)})
	require.NoError(t, err)
	// Stopping needs the remote store to record the entry; the shift must
	// survive the failure.
	_, err = ts.Stop(ctx, user)
	assert.ErrorIs(t, err, errorvalues.ErrStoreNotConfigured)
	shift, err := ts.Status(ctx, user)
	require.NoError(t, err)
	assert.NotNil(t, shift)
}
