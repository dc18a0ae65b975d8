package api

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/saati/saati/internal/scheduler"
	"github.com/saati/saati/pkg/entity"
)

type JWTServiceI interface {
	GenerateToken(user *entity.User) (string, error)
	ParseToken(tokenString string) (*JWTClaims, error)
}

type JWTClaims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// ReminderSchedulerI is the slice of the scheduler the HTTP layer touches:
// permission state and manual rebuilds. Timer wiring stays internal.
type ReminderSchedulerI interface {
	SetPermission(ownerKey string, p scheduler.Permission)
	PermissionFor(ownerKey string) scheduler.Permission
	Reschedule(ownerKey string, tasks []entity.Task)
}
