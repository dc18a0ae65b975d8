package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"

	errorvalues "github.com/saati/saati/internal/error_values"
	"github.com/saati/saati/internal/repository"
	"github.com/saati/saati/pkg/entity"
)

type LogsService struct {
	store repository.UserDataStore
}

func NewLogsService(store repository.UserDataStore) *LogsService {
	if store == nil {
		log.Fatal("provided nil store to logs service")
	}
	return &LogsService{
		store: store,
	}
}

func (ls *LogsService) List(ctx context.Context, owner entity.Identity) ([]entity.LogEntry, error) {
	logs, err := ls.store.Logs(ctx, owner)
	if err != nil {
		if errors.Is(err, errorvalues.ErrStoreNotConfigured) {
			return nil, err
		}
		return nil, errors.New("store error: " + err.Error())
	}
	return logs, nil
}

// Save validates and then creates or updates depending on req.ID. Nothing
// reaches the store on a validation failure.
func (ls *LogsService) Save(ctx context.Context, owner entity.Identity, req *SaveLogRequest) (string, error) {
	logEntry, err := logEntryFromRequest(req)
	if err != nil {
		return "", err
	}
	id, err := ls.store.SaveLog(ctx, owner, *logEntry)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrLogNotFound), errors.Is(err, errorvalues.ErrStoreNotConfigured):
			return "", err
		}
		return "", errors.New("store error: " + err.Error())
	}
	return id, nil
}

func (ls *LogsService) Delete(ctx context.Context, owner entity.Identity, id string) error {
	err := ls.store.DeleteLog(ctx, owner, id)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrLogNotFound), errors.Is(err, errorvalues.ErrStoreNotConfigured):
			return err
		}
		return errors.New("store error: " + err.Error())
	}
	return nil
}

func logEntryFromRequest(req *SaveLogRequest) (*entity.LogEntry, error) {
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
	logEntry := entity.LogEntry{
		ID:    req.ID,
		Date:  req.Date,
		Type:  entity.LogType(req.Type),
		Notes: req.Notes,
	}
	if logEntry.Type != entity.LogTypeWork {
		// Timestamps and break carry no meaning outside work entries.
		return &logEntry, nil
	}
	if req.StartTime == nil {
		return nil, fmt.Errorf("%w: start time is required for work entries", errorvalues.ErrValidation)
	}
	if req.EndTime != nil && !req.EndTime.After(*req.StartTime) {
		return nil, fmt.Errorf("%w: end time must be after start time", errorvalues.ErrValidation)
	}
	logEntry.StartTime = req.StartTime
	logEntry.EndTime = req.EndTime
	logEntry.BreakMinutes = req.BreakMinutes
	return &logEntry, nil
}
