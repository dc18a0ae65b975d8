package service

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"

	errorvalues "github.com/saati/saati/internal/error_values"
	"github.com/saati/saati/internal/repository"
	"github.com/saati/saati/internal/timecalc"
	"github.com/saati/saati/pkg/entity"
)

type ReportService struct {
	store repository.UserDataStore
	now   func() time.Time
}

func NewReportService(store repository.UserDataStore) *ReportService {
	if store == nil {
		log.Fatal("provided nil store to report service")
	}
	return &ReportService{
		store: store,
		now:   time.Now,
	}
}

// NewReportServiceWithClock pins "now" for preset resolution in tests.
func NewReportServiceWithClock(store repository.UserDataStore, now func() time.Time) *ReportService {
	rs := NewReportService(store)
	rs.now = now
	return rs
}

// Build aggregates the owner's logs over the resolved date range. Work
// entries with a non-positive duration contribute nothing to the totals;
// sick leave and vacation entries are counted per day. Totals do not
// depend on the order entries come back from the store.
func (rs *ReportService) Build(ctx context.Context, owner entity.Identity, req *ReportRequest) (*Report, error) {
	err := validate.Struct(*req)
	if err != nil {
		if validationError, ok := err.(validator.ValidationErrors); ok {
			err = errorvalues.ErrValidation
			for _, fieldErr := range validationError {
				err = errors.Join(err, fieldErr)
			}
			return nil, err
		}
		return nil, errors.New("validation unexpected error: " + err.Error())
	}

	logs, err := rs.store.Logs(ctx, owner)
	if err != nil {
		if errors.Is(err, errorvalues.ErrStoreNotConfigured) {
			return nil, err
		}
		return nil, errors.New("store error: " + err.Error())
	}
	profile, err := rs.store.Profile(ctx, owner)
	if err != nil {
		if errors.Is(err, errorvalues.ErrStoreNotConfigured) {
			return nil, err
		}
		return nil, errors.New("store error: " + err.Error())
	}

	startDate, endDate := timecalc.RangeFor(timecalc.Period(req.Period), rs.now(), req.StartDate, req.EndDate)

	report := Report{
		StartDate:        startDate,
		EndDate:          endDate,
		DisplayDateRange: timecalc.DisplayRange(startDate, endDate),
		UserName:         owner.DisplayName(),
		Rows:             make([]ReportRow, 0, len(logs)),
	}

	vacationTaken := 0
	for _, logEntry := range logs {
		if logEntry.Type == entity.LogTypeVacation {
			vacationTaken++
		}
		if logEntry.Date < startDate || logEntry.Date > endDate {
			continue
		}
		duration := timecalc.Duration(logEntry)
		overtime := timecalc.Overtime(duration, *profile)
		report.Rows = append(report.Rows, ReportRow{
			Entry:    logEntry,
			Duration: timecalc.Millis(duration),
			Overtime: timecalc.Millis(overtime),
		})
		switch logEntry.Type {
		case entity.LogTypeWork:
			if duration > 0 {
				report.TotalWork += timecalc.Millis(duration)
				report.TotalOvertime += timecalc.Millis(overtime)
			}
		case entity.LogTypeSickLeave:
			report.SickDays++
		case entity.LogTypeVacation:
			report.VacationDays++
		}
	}
	report.VacationRemaining = profile.TotalVacationDays - vacationTaken

	// Zero-padded ISO dates order correctly as strings. Id breaks ties so
	// row order never depends on store iteration order.
	sort.Slice(report.Rows, func(i, j int) bool {
		if report.Rows[i].Entry.Date != report.Rows[j].Entry.Date {
			return report.Rows[i].Entry.Date < report.Rows[j].Entry.Date
		}
		return report.Rows[i].Entry.ID < report.Rows[j].Entry.ID
	})
	return &report, nil
}
