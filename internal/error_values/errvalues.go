package errorvalues

import "errors"

var (
	ErrUserExists       = errors.New("such user already exists")
	ErrUserNotFound     = errors.New("user doesn't exists")
	ErrWrongCredentials = errors.New("wrong name or password")
	ErrInvalidToken     = errors.New("invalid token")

	ErrLogNotFound  = errors.New("log entry doesn't exist")
	ErrTaskNotFound = errors.New("task doesn't exist")

	// ErrValidation marks requests rejected before any backend call.
	ErrValidation = errors.New("validation failed")

	// ErrStoreNotConfigured means the remote backend is missing its
	// configuration. Surfaced separately from auth failures so the
	// operator is pointed at setup, not at credentials.
	ErrStoreNotConfigured = errors.New("remote store is not configured")

	ErrShiftRunning    = errors.New("a shift is already running")
	ErrShiftNotRunning = errors.New("no shift is running")
)
