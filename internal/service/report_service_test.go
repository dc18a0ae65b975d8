package service_test

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errorvalues "github.com/saati/saati/internal/error_values"
	"github.com/saati/saati/internal/repository"
	"github.com/saati/saati/internal/service"
	"github.com/saati/saati/internal/timecalc"
	"github.com/saati/saati/pkg/entity"
)

// A Wednesday, so the surrounding Sunday-started week is 2024-06-09..15.
var reportNow = time.Date(2024, 6, 12, 15, 0, 0, 0, time.UTC)

func seedWorkEntry(t *testing.T, store *repository.LocalStore, owner entity.Identity, date string, hours float64, breakMinutes int) string {
	t.Helper()
	start := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Duration(hours * float64(time.Hour)))
	id, err := store.AddLog(context.Background(), owner, entity.LogEntry{
		Date:         date,
		Type:         entity.LogTypeWork,
		StartTime:    &start,
		EndTime:      &end,
		BreakMinutes: breakMinutes,
	})
	require.NoError(t, err)
	return id
}

func seedDayEntry(t *testing.T, store *repository.LocalStore, owner entity.Identity, date string, logType entity.LogType) {
	t.Helper()
	_, err := store.AddLog(context.Background(), owner, entity.LogEntry{
		Date: date,
		Type: logType,
	})
	require.NoError(t, err)
}

func TestBuildReport(t *testing.T) {
	store := repository.NewLocalStoreInMemory()
	owner := entity.GuestIdentity(uuid.New())
	rs := service.NewReportServiceWithClock(store, func() time.Time { return reportNow })
	ctx := context.Background()

	// 9.5h span minus 30m break = 9h, 1h over the default 8h day.
	seedWorkEntry(t, store, owner, "2024-06-10", 9.5, 30)
	// 8h span minus 30m break = 7h30m, no overtime.
	seedWorkEntry(t, store, owner, "2024-06-11", 8, 30)
	// 1h span with a 2h break goes negative and must not reduce totals.
	seedWorkEntry(t, store, owner, "2024-06-12", 1, 120)
	seedDayEntry(t, store, owner, "2024-06-13", entity.LogTypeSickLeave)
	seedDayEntry(t, store, owner, "2024-06-14", entity.LogTypeVacation)
	// Outside the requested week: must not appear in rows, but vacation
	// still reduces the remaining allowance.
	seedDayEntry(t, store, owner, "2024-05-20", entity.LogTypeVacation)

	report, err := rs.Build(ctx, owner, &service.ReportRequest{Period: "thisWeek"})
	require.NoError(t, err)

	assert.Equal(t, "2024-06-09", report.StartDate)
	assert.Equal(t, "2024-06-15", report.EndDate)
	assert.Equal(t, "Guest", report.UserName)
	assert.Len(t, report.Rows, 5)
	assert.Equal(t, timecalc.Millis(16*time.Hour+30*time.Minute), report.TotalWork)
	assert.Equal(t, timecalc.Millis(time.Hour), report.TotalOvertime)
	assert.Equal(t, 1, report.SickDays)
	assert.Equal(t, 1, report.VacationDays)
	assert.Equal(t, 18, report.VacationRemaining)

	t.Run("rows sorted by date", func(t *testing.T) {
		for i := 1; i < len(report.Rows); i++ {
			assert.LessOrEqual(t, report.Rows[i-1].Entry.Date, report.Rows[i].Entry.Date)
		}
	})
}

func TestReportMarshalsMilliseconds(t *testing.T) {
	store := repository.NewLocalStoreInMemory()
	owner := entity.GuestIdentity(uuid.New())
	rs := service.NewReportServiceWithClock(store, func() time.Time { return reportNow })
	// 9h span minus 30m break = 8h30m worked, 30m over the default day.
	seedWorkEntry(t, store, owner, "2024-06-10", 9, 30)

	report, err := rs.Build(context.Background(), owner, &service.ReportRequest{Period: "thisWeek"})
	require.NoError(t, err)
	raw, err := sonic.Marshal(report)
	require.NoError(t, err)

	var decoded struct {
		TotalWorkMs     int64 `json:"totalWorkMs"`
		TotalOvertimeMs int64 `json:"totalOvertimeMs"`
		Rows            []struct {
			DurationMs int64 `json:"durationMs"`
			OvertimeMs int64 `json:"overtimeMs"`
		} `json:"rows"`
	}
	require.NoError(t, sonic.Unmarshal(raw, &decoded))
	assert.Equal(t, int64(30600000), decoded.TotalWorkMs)
	assert.Equal(t, int64(1800000), decoded.TotalOvertimeMs)
	require.Len(t, decoded.Rows, 1)
	assert.Equal(t, int64(30600000), decoded.Rows[0].DurationMs)
	assert.Equal(t, int64(1800000), decoded.Rows[0].OvertimeMs)
}

func TestBuildReportOrderIndependence(t *testing.T) {
	// The same entries inserted in shuffled order must yield the same
	// aggregates and the same date-ordered rows.
	start := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(9 * time.Hour)
	entries := []entity.LogEntry{
		{Date: "2024-06-10", Type: entity.LogTypeWork, StartTime: &start, EndTime: &end},
		{Date: "2024-06-11", Type: entity.LogTypeSickLeave},
		{Date: "2024-06-11", Type: entity.LogTypeVacation},
		{Date: "2024-06-12", Type: entity.LogTypeWork, StartTime: &start, EndTime: &end},
	}
	build := func(seed int64) *service.Report {
		store := repository.NewLocalStoreInMemory()
		owner := entity.GuestIdentity(uuid.New())
		rs := service.NewReportServiceWithClock(store, func() time.Time { return reportNow })
		shuffled := make([]entity.LogEntry, len(entries))
		copy(shuffled, entries)
		r := rand.New(rand.NewSource(seed))
		r.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		for _, e := range shuffled {
			_, err := store.AddLog(context.Background(), owner, e)
			require.NoError(t, err)
		}
		report, err := rs.Build(context.Background(), owner, &service.ReportRequest{Period: "thisWeek"})
		require.NoError(t, err)
		return report
	}
	first := build(1)
	for seed := int64(2); seed <= 5; seed++ {
		report := build(seed)
		assert.Equal(t, first.TotalWork, report.TotalWork)
		assert.Equal(t, first.TotalOvertime, report.TotalOvertime)
		assert.Equal(t, first.SickDays, report.SickDays)
		assert.Equal(t, first.VacationDays, report.VacationDays)
		assert.Equal(t, first.VacationRemaining, report.VacationRemaining)
		require.Len(t, report.Rows, len(first.Rows))
		for i := range report.Rows {
			assert.Equal(t, first.Rows[i].Entry.Date, report.Rows[i].Entry.Date)
		}
	}
}

func TestBuildReportValidation(t *testing.T) {
	store := repository.NewLocalStoreInMemory()
	rs := service.NewReportServiceWithClock(store, func() time.Time { return reportNow })
	owner := entity.GuestIdentity(uuid.New())
	ctx := context.Background()
	t.Run("unknown period", func(t *testing.T) {
		_, err := rs.Build(ctx, owner, &service.ReportRequest{Period: "fortnight"})
		assert.ErrorIs(t, err, errorvalues.ErrValidation)
	})
	t.Run("malformed custom bound", func(t *testing.T) {
		_, err := rs.Build(ctx, owner, &service.ReportRequest{
			Period:    "custom",
			StartDate: "01-06-2024",
		})
		assert.ErrorIs(t, err, errorvalues.ErrValidation)
	})
	t.Run("today preset collapses display range", func(t *testing.T) {
		report, err := rs.Build(ctx, owner, &service.ReportRequest{Period: "today"})
		assert.NoError(t, err)
		assert.Equal(t, "June 12, 2024", report.DisplayDateRange)
	})
}
