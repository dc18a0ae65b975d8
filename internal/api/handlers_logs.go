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

type saveLogBody struct {
	ID           string     `json:"id"`
	Date         string     `json:"date"`
	Type         string     `json:"type"`
	StartTime    *time.Time `json:"startTime"`
	EndTime      *time.Time `json:"endTime"`
	BreakMinutes int        `json:"breakMinutes"`
	Notes        string     `json:"notes"`
}

func (s *Server) GetLogs(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	owner, err := GetIdentityFromContext(r)
	if err != nil {
		logger.Error("logs list error: no identity")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	logs, err := s.logsService.List(ctx, owner)
	if err != nil {
		s.writeStoreError(w, logger, "logs list error", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{
		"logs": logs,
	})
}

func (s *Server) SaveLog(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	owner, err := GetIdentityFromContext(r)
	if err != nil {
		logger.Error("log save error: no identity")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var body saveLogBody
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		logger.Error("log save error: invalid body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	id, err := s.logsService.Save(ctx, owner, &service.SaveLogRequest{
		ID:           body.ID,
		Date:         body.Date,
		Type:         body.Type,
		StartTime:    body.StartTime,
		EndTime:      body.EndTime,
		BreakMinutes: body.BreakMinutes,
		Notes:        body.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrValidation):
			logger.Error("log save error: validation failed")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid log entry", err)
		case errors.Is(err, errorvalues.ErrLogNotFound):
			logger.Error("log save error: unknown id")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "log entry doesn't exist", nil)
		default:
			s.writeStoreError(w, logger, "log save error", err)
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
	logger.Info("log entry saved", slog.String("log_id", id))
}

func (s *Server) DeleteLog(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	owner, err := GetIdentityFromContext(r)
	if err != nil {
		logger.Error("log delete error: no identity")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	id := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err = s.logsService.Delete(ctx, owner, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrLogNotFound) {
			logger.Error("log delete error: unknown id")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "log entry doesn't exist", nil)
			return
		}
		s.writeStoreError(w, logger, "log delete error", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	logger.Info("log entry deleted", slog.String("log_id", id))
}

// writeStoreError maps backend failures shared by every data handler:
// a missing remote configuration is the operator's problem and reported
// as such, everything else is an opaque internal error.
func (s *Server) writeStoreError(w http.ResponseWriter, logger *slog.Logger, scope string, err error) {
	if errors.Is(err, errorvalues.ErrStoreNotConfigured) {
		logger.Error(scope + ": remote store not configured")
		httputil.WriteErrorResponse(w, http.StatusServiceUnavailable, "account data is unavailable: remote store is not configured", nil)
		return
	}
	logger.Error(scope+": service error", slog.String("error", err.Error()))
	httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error", nil)
}
