package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Name         string
	PasswordHash string
}

type LogType string

const (
	LogTypeWork      LogType = "work"
	LogTypeSickLeave LogType = "sickLeave"
	LogTypeVacation  LogType = "vacation"
)

// LogEntry is one logged day. StartTime, EndTime and BreakMinutes carry
// meaning only for work entries; sick leave and vacation keep them empty.
type LogEntry struct {
	ID           string     `json:"id"`
	Date         string     `json:"date"` // YYYY-MM-DD
	Type         LogType    `json:"type"`
	StartTime    *time.Time `json:"startTime"`
	EndTime      *time.Time `json:"endTime"`
	BreakMinutes int        `json:"breakMinutes"`
	Notes        string     `json:"notes"`
}

type ProfileSettings struct {
	WorkDaysPerWeek     int  `json:"workDaysPerWeek"`
	WorkHoursPerDay     int  `json:"workHoursPerDay"`
	DefaultBreakMinutes int  `json:"defaultBreakMinutes"`
	TotalVacationDays   int  `json:"totalVacationDays"`
	EnableSound         bool `json:"enableSound"`
}

// DefaultProfile is the profile created for every owner on first access.
func DefaultProfile() ProfileSettings {
	return ProfileSettings{
		WorkDaysPerWeek:     5,
		WorkHoursPerDay:     8,
		DefaultBreakMinutes: 30,
		TotalVacationDays:   20,
		EnableSound:         true,
	}
}

type Task struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	DueDate         time.Time `json:"dueDate"`
	ReminderMinutes int       `json:"reminderMinutes"`
	IsCompleted     bool      `json:"isCompleted"`
}

// ShiftState is an in-progress clock-in, persisted so a running shift
// survives restarts. It lives in the device-local store for every owner.
type ShiftState struct {
	StartTime    time.Time `json:"startTime"`
	BreakMinutes int       `json:"breakMinutes"`
	Notes        string    `json:"notes"`
}

// Identity is the acting owner of a request: either an authenticated user
// or a guest session. Exactly one of UserID/GuestID is set.
type Identity struct {
	UserID  uuid.UUID
	GuestID uuid.UUID
	Name    string
}

func UserIdentity(uid uuid.UUID, name string) Identity {
	return Identity{UserID: uid, Name: name}
}

func GuestIdentity(gid uuid.UUID) Identity {
	return Identity{GuestID: gid}
}

func (id Identity) IsGuest() bool {
	return id.UserID == uuid.Nil
}

// Key is the storage owner key. Guest and user keys never collide, which is
// what keeps guest-held data separate from account data.
func (id Identity) Key() string {
	if id.IsGuest() {
		return "guest:" + id.GuestID.String()
	}
	return "user:" + id.UserID.String()
}

func (id Identity) DisplayName() string {
	if id.IsGuest() || id.Name == "" {
		return "Guest"
	}
	return id.Name
}
