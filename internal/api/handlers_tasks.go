package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"

	errorvalues "github.com/saati/saati/internal/error_values"
	"github.com/saati/saati/internal/service"
	"github.com/saati/saati/pkg/httputil"
)

type saveTaskBody struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	DueDate         time.Time `json:"dueDate"`
	ReminderMinutes int       `json:"reminderMinutes"`
	IsCompleted     bool      `json:"isCompleted"`
}

func (s *Server) GetTasks(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	owner, err := GetIdentityFromContext(r)
	if err != nil {
		logger.Error("tasks list error: no identity")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	tasks, err := s.tasksService.List(ctx, owner)
	if err != nil {
		s.writeStoreError(w, logger, "tasks list error", err)
		return
	}
	// Loading the collection re-arms its reminders, so timers survive a
	// process restart once the owner comes back.
	s.scheduler.Reschedule(owner.Key(), tasks)
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{
		"tasks": tasks,
	})
}

func (s *Server) SaveTask(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	owner, err := GetIdentityFromContext(r)
	if err != nil {
		logger.Error("task save error: no identity")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var body saveTaskBody
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		logger.Error("task save error: invalid body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	id, err := s.tasksService.Save(ctx, owner, &service.SaveTaskRequest{
		ID:              body.ID,
		Title:           body.Title,
		DueDate:         body.DueDate,
		ReminderMinutes: body.ReminderMinutes,
		IsCompleted:     body.IsCompleted,
	})
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrValidation):
			logger.Error("task save error: validation failed")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid task", err)
		case errors.Is(err, errorvalues.ErrTaskNotFound):
			logger.Error("task save error: unknown id")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "task doesn't exist", nil)
		default:
			s.writeStoreError(w, logger, "task save error", err)
		}
		return
	}
	status := http.StatusOK
	if body.ID == "" {
		status = http.StatusCreated
	}
	httputil.WriteJSONResponse(w, status, map[string]any{
		"id": id,
	})
	logger.Info("task saved", slog.String("task_id", id))
}

func (s *Server) DeleteTask(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	owner, err := GetIdentityFromContext(r)
	if err != nil {
		logger.Error("task delete error: no identity")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	id := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err = s.tasksService.Delete(ctx, owner, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrTaskNotFound) {
			logger.Error("task delete error: unknown id")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "task doesn't exist", nil)
			return
		}
		s.writeStoreError(w, logger, "task delete error", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	logger.Info("task deleted", slog.String("task_id", id))
}
