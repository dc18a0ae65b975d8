package service

import (
	"context"
	"errors"
	"log"

	"github.com/go-playground/validator/v10"

	errorvalues "github.com/saati/saati/internal/error_values"
	"github.com/saati/saati/internal/repository"
	"github.com/saati/saati/pkg/entity"
)

type TasksService struct {
	store     repository.UserDataStore
	scheduler TaskRescheduler
}

func NewTasksService(store repository.UserDataStore, scheduler TaskRescheduler) *TasksService {
	if store == nil || scheduler == nil {
		log.Fatal("provided nil dependencies to tasks service")
	}
	return &TasksService{
		store:     store,
		scheduler: scheduler,
	}
}

func (ts *TasksService) List(ctx context.Context, owner entity.Identity) ([]entity.Task, error) {
	tasks, err := ts.store.Tasks(ctx, owner)
	if err != nil {
		if errors.Is(err, errorvalues.ErrStoreNotConfigured) {
			return nil, err
		}
		return nil, errors.New("store error: " + err.Error())
	}
	return tasks, nil
}

func (ts *TasksService) Save(ctx context.Context, owner entity.Identity, req *SaveTaskRequest) (string, error) {
	err := validate.Struct(*req)
	if err != nil {
		if validationError, ok := err.(validator.ValidationErrors); ok {
			err = errorvalues.ErrValidation
			for _, fieldErr := range validationError {
				err = errors.Join(err, fieldErr)
			}
			return "", err
		}
		return "", errors.New("validation unexpected error: " + err.Error())
	}
	id, err := ts.store.SaveTask(ctx, owner, entity.Task{
		ID:              req.ID,
		Title:           req.Title,
		DueDate:         req.DueDate,
		ReminderMinutes: req.ReminderMinutes,
		IsCompleted:     req.IsCompleted,
	})
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrTaskNotFound), errors.Is(err, errorvalues.ErrStoreNotConfigured):
			return "", err
		}
		return "", errors.New("store error: " + err.Error())
	}
	ts.rebuildReminders(ctx, owner)
	return id, nil
}

func (ts *TasksService) Delete(ctx context.Context, owner entity.Identity, id string) error {
	err := ts.store.DeleteTask(ctx, owner, id)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrTaskNotFound), errors.Is(err, errorvalues.ErrStoreNotConfigured):
			return err
		}
		return errors.New("store error: " + err.Error())
	}
	ts.rebuildReminders(ctx, owner)
	return nil
}

// rebuildReminders hands the full current collection to the scheduler,
// which cancels and reschedules everything. Failing to re-read the
// collection only delays the rebuild until the next change.
func (ts *TasksService) rebuildReminders(ctx context.Context, owner entity.Identity) {
	tasks, err := ts.store.Tasks(ctx, owner)
	if err != nil {
		return
	}
	ts.scheduler.Reschedule(owner.Key(), tasks)
}
