package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bytedance/sonic"

	errorvalues "github.com/saati/saati/internal/error_values"
	"github.com/saati/saati/internal/service"
	"github.com/saati/saati/pkg/httputil"
)

type saveProfileBody struct {
	WorkDaysPerWeek     int  `json:"workDaysPerWeek"`
	WorkHoursPerDay     int  `json:"workHoursPerDay"`
	DefaultBreakMinutes int  `json:"defaultBreakMinutes"`
	TotalVacationDays   int  `json:"totalVacationDays"`
	EnableSound         bool `json:"enableSound"`
}

func (s *Server) GetProfile(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	owner, err := GetIdentityFromContext(r)
	if err != nil {
		logger.Error("profile get error: no identity")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	profile, err := s.profileService.Get(ctx, owner)
	if err != nil {
		s.writeStoreError(w, logger, "profile get error", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, profile)
}

func (s *Server) SaveProfile(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	owner, err := GetIdentityFromContext(r)
	if err != nil {
		logger.Error("profile save error: no identity")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var body saveProfileBody
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		logger.Error("profile save error: invalid body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	profile, err := s.profileService.Save(ctx, owner, &service.SaveProfileRequest{
		WorkDaysPerWeek:     body.WorkDaysPerWeek,
		WorkHoursPerDay:     body.WorkHoursPerDay,
		DefaultBreakMinutes: body.DefaultBreakMinutes,
		TotalVacationDays:   body.TotalVacationDays,
		EnableSound:         body.EnableSound,
	})
	if err != nil {
		if errors.Is(err, errorvalues.ErrValidation) {
			logger.Error("profile save error: validation failed")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid profile settings", err)
			return
		}
		s.writeStoreError(w, logger, "profile save error", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, profile)
	logger.Info("profile saved")
}
