package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/saati/saati/pkg/entity"
)

type UsersRepositoryI interface {
	// Creates new user in database
	Create(ctx context.Context, user *entity.User) error
	// Looks up user by name. Can be used for login
	FindByName(ctx context.Context, name string) (*entity.User, error)
	// Looks up user by uid. Can be used for authorization middleware
	FindByID(ctx context.Context, uid uuid.UUID) (*entity.User, error)
	// Deletes user and all owned data
	Delete(ctx context.Context, uid uuid.UUID) error
}

// Snapshot is one push of confirmed store state for a single collection.
type Snapshot struct {
	Collection string                  `json:"collection"` // "logs" | "tasks" | "profile"
	Logs       []entity.LogEntry       `json:"logs,omitempty"`
	Tasks      []entity.Task           `json:"tasks,omitempty"`
	Profile    *entity.ProfileSettings `json:"profile,omitempty"`
}

// UserDataStore is the uniform CRUD contract over an owner's logs, tasks
// and profile. Both backends implement it; callers never learn which one is
// active. Save operations create when the record carries no id and update
// in place otherwise, returning the record id either way.
type UserDataStore interface {
	Logs(ctx context.Context, owner entity.Identity) ([]entity.LogEntry, error)
	AddLog(ctx context.Context, owner entity.Identity, log entity.LogEntry) (string, error)
	SaveLog(ctx context.Context, owner entity.Identity, log entity.LogEntry) (string, error)
	DeleteLog(ctx context.Context, owner entity.Identity, id string) error

	Tasks(ctx context.Context, owner entity.Identity) ([]entity.Task, error)
	SaveTask(ctx context.Context, owner entity.Identity, task entity.Task) (string, error)
	DeleteTask(ctx context.Context, owner entity.Identity, id string) error

	// Profile creates the owner's profile with defaults on first access.
	Profile(ctx context.Context, owner entity.Identity) (*entity.ProfileSettings, error)
	// SaveProfile is a full upsert.
	SaveProfile(ctx context.Context, owner entity.Identity, settings *entity.ProfileSettings) error

	// Watch subscribes to snapshot pushes for the owner. The returned
	// teardown must be called when the session ends; it never leaks across
	// identity changes because subscriptions are scoped per owner key.
	Watch(owner entity.Identity) (<-chan Snapshot, func(), error)
}

type DBConfig interface {
	ConnString() string
}

type PgConnection interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PGCfg struct {
	Address  string
	Username string
	Password string
	DB       string
}

func (pgcfg *PGCfg) ConnString() string {
	return fmt.Sprintf("postgresql://%s:%s@%s/%s", pgcfg.Username, pgcfg.Password, pgcfg.Address, pgcfg.DB)
}
