package repository

import (
	"context"

	errorvalues "github.com/saati/saati/internal/error_values"
	"github.com/saati/saati/pkg/entity"
)

// Adapter routes every UserDataStore call to the backend matching the
// owner's authentication state: authenticated identities go to the remote
// store, guests to the local one. Callers hold only the interface and never
// branch on which variant is active. A nil remote store (service running
// without Postgres configuration) is reported as a distinct configuration
// error instead of a generic failure.
type Adapter struct {
	remote UserDataStore
	local  UserDataStore
}

func NewAdapter(remote, local UserDataStore) *Adapter {
	return &Adapter{
		remote: remote,
		local:  local,
	}
}

func (a *Adapter) storeFor(owner entity.Identity) (UserDataStore, error) {
	if owner.IsGuest() {
		return a.local, nil
	}
	if a.remote == nil {
		return nil, errorvalues.ErrStoreNotConfigured
	}
	return a.remote, nil
}

func (a *Adapter) Logs(ctx context.Context, owner entity.Identity) ([]entity.LogEntry, error) {
	store, err := a.storeFor(owner)
	if err != nil {
		return nil, err
	}
	return store.Logs(ctx, owner)
}

func (a *Adapter) AddLog(ctx context.Context, owner entity.Identity, log entity.LogEntry) (string, error) {
	store, err := a.storeFor(owner)
	if err != nil {
		return "", err
	}
	return store.AddLog(ctx, owner, log)
}

func (a *Adapter) SaveLog(ctx context.Context, owner entity.Identity, log entity.LogEntry) (string, error) {
	store, err := a.storeFor(owner)
	if err != nil {
		return "", err
	}
	return store.SaveLog(ctx, owner, log)
}

func (a *Adapter) DeleteLog(ctx context.Context, owner entity.Identity, id string) error {
	store, err := a.storeFor(owner)
	if err != nil {
		return err
	}
	return store.DeleteLog(ctx, owner, id)
}

func (a *Adapter) Tasks(ctx context.Context, owner entity.Identity) ([]entity.Task, error) {
	store, err := a.storeFor(owner)
	if err != nil {
		return nil, err
	}
	return store.Tasks(ctx, owner)
}

func (a *Adapter) SaveTask(ctx context.Context, owner entity.Identity, task entity.Task) (string, error) {
	store, err := a.storeFor(owner)
	if err != nil {
		return "", err
	}
	return store.SaveTask(ctx, owner, task)
}

func (a *Adapter) DeleteTask(ctx context.Context, owner entity.Identity, id string) error {
	store, err := a.storeFor(owner)
	if err != nil {
		return err
	}
	return store.DeleteTask(ctx, owner, id)
}

func (a *Adapter) Profile(ctx context.Context, owner entity.Identity) (*entity.ProfileSettings, error) {
	store, err := a.storeFor(owner)
	if err != nil {
		return nil, err
	}
	return store.Profile(ctx, owner)
}

func (a *Adapter) SaveProfile(ctx context.Context, owner entity.Identity, settings *entity.ProfileSettings) error {
	store, err := a.storeFor(owner)
	if err != nil {
		return err
	}
	return store.SaveProfile(ctx, owner, settings)
}

func (a *Adapter) Watch(owner entity.Identity) (<-chan Snapshot, func(), error) {
	store, err := a.storeFor(owner)
	if err != nil {
		return nil, nil, err
	}
	return store.Watch(owner)
}
