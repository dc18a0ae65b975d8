package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	errorvalues "github.com/saati/saati/internal/error_values"
	"github.com/saati/saati/internal/repository"
	"github.com/saati/saati/internal/service"
	"github.com/saati/saati/pkg/entity"
)

func TestMain(m *testing.M) {
	service.InitValidator()
	m.Run()
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestLogsService(t *testing.T) {
	ls := service.NewLogsService(repository.NewLocalStoreInMemory())
	owner := entity.GuestIdentity(uuid.New())
	ctx := context.Background()
	start := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(8*time.Hour + 30*time.Minute)
	var id string
	t.Run("saved work entry", func(t *testing.T) {
		var err error
		id, err = ls.Save(ctx, owner, &service.SaveLogRequest{
			Date:         "2024-06-01",
			Type:         "work",
			StartTime:    timePtr(start),
			EndTime:      timePtr(end),
			BreakMinutes: 30,
		})
		assert.NoError(t, err)
		assert.NotEmpty(t, id)
	})
	t.Run("listed", func(t *testing.T) {
		logs, err := ls.List(ctx, owner)
		assert.NoError(t, err)
		assert.Len(t, logs, 1)
		assert.Equal(t, id, logs[0].ID)
	})
	t.Run("updated in place", func(t *testing.T) {
		updated, err := ls.Save(ctx, owner, &service.SaveLogRequest{
			ID:           id,
			Date:         "2024-06-01",
			Type:         "work",
			StartTime:    timePtr(start),
			EndTime:      timePtr(end),
			BreakMinutes: 60,
			Notes:        "long lunch",
		})
		assert.NoError(t, err)
		assert.Equal(t, id, updated)
		logs, err := ls.List(ctx, owner)
		assert.NoError(t, err)
		assert.Len(t, logs, 1)
		assert.Equal(t, 60, logs[0].BreakMinutes)
	})
	t.Run("rejected bad date format", func(t *testing.T) {
		_, err := ls.Save(ctx, owner, &service.SaveLogRequest{
			Date:      "06/01/2024",
			Type:      "work",
			StartTime: timePtr(start),
		})
		assert.ErrorIs(t, err, errorvalues.ErrValidation)
	})
	t.Run("rejected unknown type", func(t *testing.T) {
		_, err := ls.Save(ctx, owner, &service.SaveLogRequest{
			Date: "2024-06-01",
			Type: "holiday",
		})
		assert.ErrorIs(t, err, errorvalues.ErrValidation)
	})
	t.Run("rejected work entry without start time", func(t *testing.T) {
		_, err := ls.Save(ctx, owner, &service.SaveLogRequest{
			Date: "2024-06-01",
			Type: "work",
		})
		assert.ErrorIs(t, err, errorvalues.ErrValidation)
	})
	t.Run("rejected end before start", func(t *testing.T) {
		_, err := ls.Save(ctx, owner, &service.SaveLogRequest{
			Date:      "2024-06-01",
			Type:      "work",
			StartTime: timePtr(end),
			EndTime:   timePtr(start),
		})
		assert.ErrorIs(t, err, errorvalues.ErrValidation)
	})
	t.Run("vacation entry drops timestamps", func(t *testing.T) {
		vid, err := ls.Save(ctx, owner, &service.SaveLogRequest{
			Date:         "2024-06-02",
			Type:         "vacation",
			StartTime:    timePtr(start),
			EndTime:      timePtr(end),
			BreakMinutes: 30,
		})
		assert.NoError(t, err)
		logs, err := ls.List(ctx, owner)
		assert.NoError(t, err)
		for _, l := range logs {
			if l.ID == vid {
				assert.Nil(t, l.StartTime)
				assert.Nil(t, l.EndTime)
				assert.Zero(t, l.BreakMinutes)
			}
		}
	})
	t.Run("update of unknown id", func(t *testing.T) {
		_, err := ls.Save(ctx, owner, &service.SaveLogRequest{
			ID:        uuid.NewString(),
			Date:      "2024-06-01",
			Type:      "work",
			StartTime: timePtr(start),
		})
		assert.ErrorIs(t, err, errorvalues.ErrLogNotFound)
	})
	t.Run("deleted", func(t *testing.T) {
		err := ls.Delete(ctx, owner, id)
		assert.NoError(t, err)
		logs, err := ls.List(ctx, owner)
		assert.NoError(t, err)
		assert.Len(t, logs, 1)
	})
}
