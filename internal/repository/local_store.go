package repository

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	errorvalues "github.com/saati/saati/internal/error_values"
	"github.com/saati/saati/pkg/cleanup"
	"github.com/saati/saati/pkg/entity"
)

const (
	keyLogs    = "logs"
	keyTasks   = "tasks"
	keyProfile = "profile"
	keyShift   = "shift"
)

// LocalStore is the device-local backend used for guest sessions and for
// per-device state (the in-progress shift). Collections are serialized as
// JSON under fixed keys per owner and rewritten wholesale on mutation,
// which keeps every operation a single atomic write. Ids for new records
// are generated here since there is no server to assign them.
type LocalStore struct {
	db  *sql.DB
	hub *watchHub
	mu  sync.Mutex
}

func NewLocalStore(path string) *LocalStore {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Fatal("creating local store directory error: " + err.Error())
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		log.Fatal("opening local store error: " + err.Error())
	}
	db.SetMaxOpenConns(1)
	if _, err = db.Exec(`PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;`); err != nil {
		log.Fatal("configuring local store error: " + err.Error())
	}
	if _, err = db.Exec(`CREATE TABLE IF NOT EXISTS collections (
		owner TEXT NOT NULL,
		key   TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (owner, key)
	);`); err != nil {
		log.Fatal("migrating local store error: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing local store",
		F:    db.Close,
	})
	return &LocalStore{
		db:  db,
		hub: newWatchHub(),
	}
}

// NewLocalStoreInMemory is used by tests.
func NewLocalStoreInMemory() *LocalStore {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		log.Fatal("opening in-memory local store error: " + err.Error())
	}
	db.SetMaxOpenConns(1)
	if _, err = db.Exec(`CREATE TABLE IF NOT EXISTS collections (
		owner TEXT NOT NULL,
		key   TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (owner, key)
	);`); err != nil {
		log.Fatal("migrating in-memory local store error: " + err.Error())
	}
	return &LocalStore{
		db:  db,
		hub: newWatchHub(),
	}
}

func readCollection[T any](ls *LocalStore, ctx context.Context, owner entity.Identity, key string) ([]T, error) {
	var raw string
	err := ls.db.QueryRowContext(ctx,
		`SELECT value FROM collections WHERE owner = ? AND key = ?;`,
		owner.Key(), key,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return []T{}, nil
	}
	if err != nil {
		return nil, errors.New("reading local collection error: " + err.Error())
	}
	var items []T
	if err = sonic.Unmarshal([]byte(raw), &items); err != nil {
		return nil, errors.New("parsing local collection error: " + err.Error())
	}
	return items, nil
}

func writeCollection[T any](ls *LocalStore, ctx context.Context, owner entity.Identity, key string, items []T) error {
	raw, err := sonic.Marshal(items)
	if err != nil {
		return errors.New("encoding local collection error: " + err.Error())
	}
	_, err = ls.db.ExecContext(ctx,
		`INSERT INTO collections (owner, key, value) VALUES (?, ?, ?)
		 ON CONFLICT (owner, key) DO UPDATE SET value = excluded.value;`,
		owner.Key(), key, string(raw),
	)
	if err != nil {
		return errors.New("writing local collection error: " + err.Error())
	}
	return nil
}

func (ls *LocalStore) Logs(ctx context.Context, owner entity.Identity) ([]entity.LogEntry, error) {
	return readCollection[entity.LogEntry](ls, ctx, owner, keyLogs)
}

func (ls *LocalStore) AddLog(ctx context.Context, owner entity.Identity, logEntry entity.LogEntry) (string, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	logs, err := readCollection[entity.LogEntry](ls, ctx, owner, keyLogs)
	if err != nil {
		return "", err
	}
	logEntry.ID = uuid.NewString()
	logs = append(logs, logEntry)
	if err = writeCollection(ls, ctx, owner, keyLogs, logs); err != nil {
		return "", err
	}
	ls.hub.publish(owner.Key(), Snapshot{Collection: "logs", Logs: logs})
	return logEntry.ID, nil
}

func (ls *LocalStore) SaveLog(ctx context.Context, owner entity.Identity, logEntry entity.LogEntry) (string, error) {
	if logEntry.ID == "" {
		return ls.AddLog(ctx, owner, logEntry)
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	logs, err := readCollection[entity.LogEntry](ls, ctx, owner, keyLogs)
	if err != nil {
		return "", err
	}
	for i := range logs {
		if logs[i].ID == logEntry.ID {
			logs[i] = logEntry
			if err = writeCollection(ls, ctx, owner, keyLogs, logs); err != nil {
				return "", err
			}
			ls.hub.publish(owner.Key(), Snapshot{Collection: "logs", Logs: logs})
			return logEntry.ID, nil
		}
	}
	return "", errorvalues.ErrLogNotFound
}

// DeleteLog of an unknown id is a no-op: the collection is rewritten
// unchanged and no error is reported.
func (ls *LocalStore) DeleteLog(ctx context.Context, owner entity.Identity, id string) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	logs, err := readCollection[entity.LogEntry](ls, ctx, owner, keyLogs)
	if err != nil {
		return err
	}
	kept := logs[:0]
	for _, l := range logs {
		if l.ID != id {
			kept = append(kept, l)
		}
	}
	if err = writeCollection(ls, ctx, owner, keyLogs, kept); err != nil {
		return err
	}
	ls.hub.publish(owner.Key(), Snapshot{Collection: "logs", Logs: kept})
	return nil
}

func (ls *LocalStore) Tasks(ctx context.Context, owner entity.Identity) ([]entity.Task, error) {
	return readCollection[entity.Task](ls, ctx, owner, keyTasks)
}

func (ls *LocalStore) SaveTask(ctx context.Context, owner entity.Identity, task entity.Task) (string, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	tasks, err := readCollection[entity.Task](ls, ctx, owner, keyTasks)
	if err != nil {
		return "", err
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
		tasks = append(tasks, task)
	} else {
		found := false
		for i := range tasks {
			if tasks[i].ID == task.ID {
				tasks[i] = task
				found = true
				break
			}
		}
		if !found {
			return "", errorvalues.ErrTaskNotFound
		}
	}
	if err = writeCollection(ls, ctx, owner, keyTasks, tasks); err != nil {
		return "", err
	}
	ls.hub.publish(owner.Key(), Snapshot{Collection: "tasks", Tasks: tasks})
	return task.ID, nil
}

func (ls *LocalStore) DeleteTask(ctx context.Context, owner entity.Identity, id string) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	tasks, err := readCollection[entity.Task](ls, ctx, owner, keyTasks)
	if err != nil {
		return err
	}
	kept := tasks[:0]
	for _, t := range tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if err = writeCollection(ls, ctx, owner, keyTasks, kept); err != nil {
		return err
	}
	ls.hub.publish(owner.Key(), Snapshot{Collection: "tasks", Tasks: kept})
	return nil
}

func (ls *LocalStore) Profile(ctx context.Context, owner entity.Identity) (*entity.ProfileSettings, error) {
	var raw string
	err := ls.db.QueryRowContext(ctx,
		`SELECT value FROM collections WHERE owner = ? AND key = ?;`,
		owner.Key(), keyProfile,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		defaults := entity.DefaultProfile()
		if saveErr := ls.SaveProfile(ctx, owner, &defaults); saveErr != nil {
			return nil, saveErr
		}
		return &defaults, nil
	}
	if err != nil {
		return nil, errors.New("reading local profile error: " + err.Error())
	}
	var profile entity.ProfileSettings
	if err = sonic.Unmarshal([]byte(raw), &profile); err != nil {
		return nil, errors.New("parsing local profile error: " + err.Error())
	}
	return &profile, nil
}

func (ls *LocalStore) SaveProfile(ctx context.Context, owner entity.Identity, settings *entity.ProfileSettings) error {
	raw, err := sonic.Marshal(settings)
	if err != nil {
		return errors.New("encoding local profile error: " + err.Error())
	}
	_, err = ls.db.ExecContext(ctx,
		`INSERT INTO collections (owner, key, value) VALUES (?, ?, ?)
		 ON CONFLICT (owner, key) DO UPDATE SET value = excluded.value;`,
		owner.Key(), keyProfile, string(raw),
	)
	if err != nil {
		return errors.New("writing local profile error: " + err.Error())
	}
	ls.hub.publish(owner.Key(), Snapshot{Collection: "profile", Profile: settings})
	return nil
}

func (ls *LocalStore) Watch(owner entity.Identity) (<-chan Snapshot, func(), error) {
	ch, teardown := ls.hub.subscribe(owner.Key())
	return ch, teardown, nil
}

// Shift state is device-local for any owner, guests and users alike, so it
// lives here and not behind the adapter.

func (ls *LocalStore) ShiftState(ctx context.Context, owner entity.Identity) (*entity.ShiftState, error) {
	var raw string
	err := ls.db.QueryRowContext(ctx,
		`SELECT value FROM collections WHERE owner = ? AND key = ?;`,
		owner.Key(), keyShift,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.New("reading shift state error: " + err.Error())
	}
	var shift entity.ShiftState
	if err = sonic.Unmarshal([]byte(raw), &shift); err != nil {
		return nil, errors.New("parsing shift state error: " + err.Error())
	}
	return &shift, nil
}

func (ls *LocalStore) SaveShiftState(ctx context.Context, owner entity.Identity, shift *entity.ShiftState) error {
	raw, err := sonic.Marshal(shift)
	if err != nil {
		return errors.New("encoding shift state error: " + err.Error())
	}
	_, err = ls.db.ExecContext(ctx,
		`INSERT INTO collections (owner, key, value) VALUES (?, ?, ?)
		 ON CONFLICT (owner, key) DO UPDATE SET value = excluded.value;`,
		owner.Key(), keyShift, string(raw),
	)
	if err != nil {
		return errors.New("writing shift state error: " + err.Error())
	}
	return nil
}

func (ls *LocalStore) ClearShiftState(ctx context.Context, owner entity.Identity) error {
	_, err := ls.db.ExecContext(ctx,
		`DELETE FROM collections WHERE owner = ? AND key = ?;`,
		owner.Key(), keyShift,
	)
	if err != nil {
		return errors.New("clearing shift state error: " + err.Error())
	}
	return nil
}
