package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/saati/saati/internal/timecalc"
	"github.com/saati/saati/pkg/entity"
)

type RegisterRequest struct {
	Name     string `validate:"required,alphanum_underscore,min=3,max=100"`
	Password string `validate:"required,min=8,max=72"`
}

type UserServiceI interface {
	// Validates user's credentials, creates new row in database. Returns user's data with ID
	Register(ctx context.Context, req *RegisterRequest) (*entity.User, error)
	// Compares given credentials. If ok, give back user's data with ID.
	Login(ctx context.Context, name, password string) (*entity.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	DeleteAccount(ctx context.Context, id uuid.UUID, password string) error
}

// SaveLogRequest covers both create (empty ID) and update (ID set).
type SaveLogRequest struct {
	ID           string
	Date         string `validate:"required,iso_date"`
	Type         string `validate:"required,oneof=work sickLeave vacation"`
	StartTime    *time.Time
	EndTime      *time.Time
	BreakMinutes int `validate:"min=0"`
	Notes        string
}

type LogsServiceI interface {
	List(ctx context.Context, owner entity.Identity) ([]entity.LogEntry, error)
	Save(ctx context.Context, owner entity.Identity, req *SaveLogRequest) (string, error)
	Delete(ctx context.Context, owner entity.Identity, id string) error
}

type SaveTaskRequest struct {
	ID              string
	Title           string    `validate:"required,max=200"`
	DueDate         time.Time `validate:"required"`
	ReminderMinutes int       `validate:"min=0"`
	IsCompleted     bool
}

type TasksServiceI interface {
	List(ctx context.Context, owner entity.Identity) ([]entity.Task, error)
	Save(ctx context.Context, owner entity.Identity, req *SaveTaskRequest) (string, error)
	Delete(ctx context.Context, owner entity.Identity, id string) error
}

type SaveProfileRequest struct {
	WorkDaysPerWeek     int `validate:"min=1,max=7"`
	WorkHoursPerDay     int `validate:"min=1,max=24"`
	DefaultBreakMinutes int `validate:"min=0"`
	TotalVacationDays   int `validate:"min=0"`
	EnableSound         bool
}

type ProfileServiceI interface {
	Get(ctx context.Context, owner entity.Identity) (*entity.ProfileSettings, error)
	Save(ctx context.Context, owner entity.Identity, req *SaveProfileRequest) (*entity.ProfileSettings, error)
}

type ReportRequest struct {
	Period    string `validate:"required,oneof=today thisWeek thisMonth thisYear custom"`
	StartDate string `validate:"omitempty,iso_date"`
	EndDate   string `validate:"omitempty,iso_date"`
}

type ReportRow struct {
	Entry    entity.LogEntry `json:"entry"`
	Duration timecalc.Millis `json:"durationMs"`
	Overtime timecalc.Millis `json:"overtimeMs"`
}

type Report struct {
	StartDate         string          `json:"startDate"`
	EndDate           string          `json:"endDate"`
	DisplayDateRange  string          `json:"displayDateRange"`
	UserName          string          `json:"userName"`
	Rows              []ReportRow     `json:"rows"`
	TotalWork         timecalc.Millis `json:"totalWorkMs"`
	TotalOvertime     timecalc.Millis `json:"totalOvertimeMs"`
	SickDays          int             `json:"sickDays"`
	VacationDays      int             `json:"vacationDays"`
	VacationRemaining int             `json:"vacationRemaining"`
}

type ReportServiceI interface {
	Build(ctx context.Context, owner entity.Identity, req *ReportRequest) (*Report, error)
}

type StartShiftRequest struct {
	BreakMinutes *int `validate:"omitempty,min=0"`
	Notes        string
}

type TrackerServiceI interface {
	// Start clocks in; fails if a shift is already running.
	Start(ctx context.Context, owner entity.Identity, req *StartShiftRequest) (*entity.ShiftState, error)
	// Stop clocks out and records the work entry, returning its id.
	Stop(ctx context.Context, owner entity.Identity) (string, error)
	Status(ctx context.Context, owner entity.Identity) (*entity.ShiftState, error)
}

// TaskRescheduler is notified whenever an owner's task collection changes
// so pending reminders can be rebuilt.
type TaskRescheduler interface {
	Reschedule(ownerKey string, tasks []entity.Task)
}
