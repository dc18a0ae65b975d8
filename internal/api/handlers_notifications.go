package api

import (
	"net/http"

	"github.com/bytedance/sonic"

	"github.com/saati/saati/internal/scheduler"
	"github.com/saati/saati/pkg/httputil"
)

type permissionBody struct {
	Permission string `json:"permission"`
}

func (s *Server) GetNotificationPermission(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	owner, err := GetIdentityFromContext(r)
	if err != nil {
		logger.Error("permission get error: no identity")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{
		"permission": s.scheduler.PermissionFor(owner.Key()),
	})
}

func (s *Server) SetNotificationPermission(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	owner, err := GetIdentityFromContext(r)
	if err != nil {
		logger.Error("permission set error: no identity")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var body permissionBody
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		logger.Error("permission set error: invalid body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	p := scheduler.Permission(body.Permission)
	if !p.Valid() {
		logger.Error("permission set error: unknown value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "permission must be one of default, granted, denied", nil)
		return
	}
	s.scheduler.SetPermission(owner.Key(), p)
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{
		"permission": p,
	})
	logger.Info("notification permission updated")
}

// NotificationStream pushes fired reminders to the owner over SSE until
// the client disconnects.
func (s *Server) NotificationStream(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	owner, err := GetIdentityFromContext(r)
	if err != nil {
		logger.Error("notification stream error: no identity")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	if _, ok := w.(http.Flusher); !ok {
		logger.Error("notification stream error: streaming unsupported")
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "streaming unsupported", nil)
		return
	}
	ch, teardown := s.notifications.Subscribe(owner.Key())
	defer teardown()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	logger.Info("notification stream opened")

	for {
		select {
		case <-r.Context().Done():
			logger.Info("notification stream closed")
			return
		case n := <-ch:
			if err := httputil.WriteSSEEvent(w, "notification", n); err != nil {
				logger.Error("notification stream error: write failed")
				return
			}
		}
	}
}
