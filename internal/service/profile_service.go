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

type ProfileService struct {
	store repository.UserDataStore
}

func NewProfileService(store repository.UserDataStore) *ProfileService {
	if store == nil {
		log.Fatal("provided nil store to profile service")
	}
	return &ProfileService{
		store: store,
	}
}

func (ps *ProfileService) Get(ctx context.Context, owner entity.Identity) (*entity.ProfileSettings, error) {
	profile, err := ps.store.Profile(ctx, owner)
	if err != nil {
		if errors.Is(err, errorvalues.ErrStoreNotConfigured) {
			return nil, err
		}
		return nil, errors.New("store error: " + err.Error())
	}
	return profile, nil
}

func (ps *ProfileService) Save(ctx context.Context, owner entity.Identity, req *SaveProfileRequest) (*entity.ProfileSettings, error) {
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
	settings := entity.ProfileSettings{
		WorkDaysPerWeek:     req.WorkDaysPerWeek,
		WorkHoursPerDay:     req.WorkHoursPerDay,
		DefaultBreakMinutes: req.DefaultBreakMinutes,
		TotalVacationDays:   req.TotalVacationDays,
		EnableSound:         req.EnableSound,
	}
	if err = ps.store.SaveProfile(ctx, owner, &settings); err != nil {
		if errors.Is(err, errorvalues.ErrStoreNotConfigured) {
			return nil, err
		}
		return nil, errors.New("store error: " + err.Error())
	}
	return &settings, nil
}
