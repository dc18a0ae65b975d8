package api

import (
	"net/http"

	"github.com/saati/saati/pkg/httputil"
)

// Watch streams confirmed store snapshots for the owner over SSE. Every
// mutation to the owner's logs, tasks or profile pushes the full updated
// collection; the client replaces its local copy wholesale.
func (s *Server) Watch(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	owner, err := GetIdentityFromContext(r)
	if err != nil {
		logger.Error("watch error: no identity")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	if _, ok := w.(http.Flusher); !ok {
		logger.Error("watch error: streaming unsupported")
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "streaming unsupported", nil)
		return
	}
	ch, teardown, err := s.store.Watch(owner)
	if err != nil {
		s.writeStoreError(w, logger, "watch error", err)
		return
	}
	defer teardown()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	logger.Info("watch stream opened")

	for {
		select {
		case <-r.Context().Done():
			logger.Info("watch stream closed")
			return
		case snapshot, ok := <-ch:
			if !ok {
				logger.Info("watch stream ended by store")
				return
			}
			if err := httputil.WriteSSEEvent(w, "snapshot", snapshot); err != nil {
				logger.Error("watch error: write failed")
				return
			}
		}
	}
}
