package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/go-playground/validator/v10"

	errorvalues "github.com/saati/saati/internal/error_values"
	"github.com/saati/saati/internal/repository"
	"github.com/saati/saati/internal/timecalc"
	"github.com/saati/saati/pkg/entity"
)

// TrackerService runs the clock-in/clock-out flow. The in-progress shift is
// held in the device-local store regardless of who is logged in; only the
// finished work entry goes through the adapter to the owner's backend.
type TrackerService struct {
	store repository.UserDataStore
	local *repository.LocalStore
	now   func() time.Time
}

func NewTrackerService(store repository.UserDataStore, local *repository.LocalStore) *TrackerService {
	if store == nil || local == nil {
		log.Fatal("provided nil dependencies to tracker service")
	}
	return &TrackerService{
		store: store,
		local: local,
		now:   time.Now,
	}
}

func (ts *TrackerService) Start(ctx context.Context, owner entity.Identity, req *StartShiftRequest) (*entity.ShiftState, error) {
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
	running, err := ts.local.ShiftState(ctx, owner)
	if err != nil {
		return nil, errors.New("store error: " + err.Error())
	}
	if running != nil {
		return nil, errorvalues.ErrShiftRunning
	}
	breakMinutes := 0
	if req.BreakMinutes != nil {
		breakMinutes = *req.BreakMinutes
	} else {
		profile, err := ts.store.Profile(ctx, owner)
		if err != nil {
			if errors.Is(err, errorvalues.ErrStoreNotConfigured) {
				return nil, err
			}
			return nil, errors.New("store error: " + err.Error())
		}
		breakMinutes = profile.DefaultBreakMinutes
	}
	shift := entity.ShiftState{
		StartTime:    ts.now(),
		BreakMinutes: breakMinutes,
		Notes:        req.Notes,
	}
	if err = ts.local.SaveShiftState(ctx, owner, &shift); err != nil {
		return nil, errors.New("store error: " + err.Error())
	}
	return &shift, nil
}

// Stop records the work entry first and clears the shift only once the
// entry is confirmed, so a failed save leaves the shift running.
func (ts *TrackerService) Stop(ctx context.Context, owner entity.Identity) (string, error) {
	shift, err := ts.local.ShiftState(ctx, owner)
	if err != nil {
		return "", errors.New("store error: " + err.Error())
	}
	if shift == nil {
		return "", errorvalues.ErrShiftNotRunning
	}
	endTime := ts.now()
	id, err := ts.store.AddLog(ctx, owner, entity.LogEntry{
		Date:         shift.StartTime.Format(timecalc.ISODate),
		Type:         entity.LogTypeWork,
		StartTime:    &shift.StartTime,
		EndTime:      &endTime,
		BreakMinutes: shift.BreakMinutes,
		Notes:        shift.Notes,
	})
	if err != nil {
		if errors.Is(err, errorvalues.ErrStoreNotConfigured) {
			return "", err
		}
		return "", errors.New("store error: " + err.Error())
	}
	if err = ts.local.ClearShiftState(ctx, owner); err != nil {
		return "", errors.New("store error: " + err.Error())
	}
	return id, nil
}

func (ts *TrackerService) Status(ctx context.Context, owner entity.Identity) (*entity.ShiftState, error) {
	shift, err := ts.local.ShiftState(ctx, owner)
	if err != nil {
		return nil, errors.New("store error: " + err.Error())
	}
	return shift, nil
}
