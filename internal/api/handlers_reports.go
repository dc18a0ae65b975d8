package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	errorvalues "github.com/saati/saati/internal/error_values"
	"github.com/saati/saati/internal/export"
	"github.com/saati/saati/internal/service"
	"github.com/saati/saati/pkg/httputil"
)

func reportRequestFromQuery(r *http.Request) *service.ReportRequest {
	q := r.URL.Query()
	period := q.Get("period")
	if period == "" {
		period = "thisWeek"
	}
	return &service.ReportRequest{
		Period:    period,
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
	}
}

func (s *Server) GetReport(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	owner, err := GetIdentityFromContext(r)
	if err != nil {
		logger.Error("report error: no identity")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	report, err := s.reportService.Build(ctx, owner, reportRequestFromQuery(r))
	if err != nil {
		if errors.Is(err, errorvalues.ErrValidation) {
			logger.Error("report error: validation failed")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid report parameters", err)
			return
		}
		s.writeStoreError(w, logger, "report error", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, report)
}

// ExportReport streams the report as a CSV attachment using the
// Saati_Report naming convention.
func (s *Server) ExportReport(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	owner, err := GetIdentityFromContext(r)
	if err != nil {
		logger.Error("report export error: no identity")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	report, err := s.reportService.Build(ctx, owner, reportRequestFromQuery(r))
	if err != nil {
		if errors.Is(err, errorvalues.ErrValidation) {
			logger.Error("report export error: validation failed")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid report parameters", err)
			return
		}
		s.writeStoreError(w, logger, "report export error", err)
		return
	}
	fileName := export.FileName(owner.DisplayName(), "csv", time.Now())
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+fileName+`"`)
	if err = export.WriteCSV(w, report); err != nil {
		logger.Error("report export error: writing csv", slog.String("error", err.Error()))
		return
	}
	logger.Info("report exported", slog.String("file", fileName))
}
