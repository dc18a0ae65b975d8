package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/bytedance/sonic"

	errorvalues "github.com/saati/saati/internal/error_values"
	"github.com/saati/saati/internal/service"
	"github.com/saati/saati/pkg/httputil"
)

type startShiftBody struct {
	BreakMinutes *int   `json:"breakMinutes"`
	Notes        string `json:"notes"`
}

func (s *Server) StartShift(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	owner, err := GetIdentityFromContext(r)
	if err != nil {
		logger.Error("shift start error: no identity")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var body startShiftBody
	if r.Body != nil {
		defer r.Body.Close()
		// An empty body means defaults; anything else has to parse.
		err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&body)
		if err != nil && !errors.Is(err, io.EOF) {
			logger.Error("shift start error: invalid body")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
			return
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	state, err := s.trackerService.Start(ctx, owner, &service.StartShiftRequest{
		BreakMinutes: body.BreakMinutes,
		Notes:        body.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrShiftRunning):
			logger.Error("shift start error: already running")
			httputil.WriteErrorResponse(w, http.StatusConflict, "a shift is already running", nil)
		case errors.Is(err, errorvalues.ErrValidation):
			logger.Error("shift start error: validation failed")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid shift parameters", err)
		default:
			s.writeStoreError(w, logger, "shift start error", err)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, state)
	logger.Info("shift started")
}

func (s *Server) StopShift(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	owner, err := GetIdentityFromContext(r)
	if err != nil {
		logger.Error("shift stop error: no identity")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	id, err := s.trackerService.Stop(ctx, owner)
	if err != nil {
		if errors.Is(err, errorvalues.ErrShiftNotRunning) {
			logger.Error("shift stop error: not running")
			httputil.WriteErrorResponse(w, http.StatusConflict, "no shift is running", nil)
			return
		}
		s.writeStoreError(w, logger, "shift stop error", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{
		"id": id,
	})
	logger.Info("shift stopped", slog.String("log_id", id))
}

func (s *Server) ShiftStatus(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	owner, err := GetIdentityFromContext(r)
	if err != nil {
		logger.Error("shift status error: no identity")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	state, err := s.trackerService.Status(ctx, owner)
	if err != nil {
		s.writeStoreError(w, logger, "shift status error", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{
		"running": state != nil,
		"shift":   state,
	})
}
