package repository

import (
	"context"
	"errors"
	"log"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	errorvalues "github.com/saati/saati/internal/error_values"
	"github.com/saati/saati/pkg/cleanup"
	"github.com/saati/saati/pkg/entity"
)

// RemoteStore keeps authenticated users' data in Postgres: one profile row
// and two sub-collections (logs, tasks) per user id, ids generated by the
// server on insert. After every confirmed mutation the touched collection
// is re-read and pushed to watchers, which is the round-trip behaviour
// subscribers observe from a live-sync document store.
type RemoteStore struct {
	conn PgConnection
	hub  *watchHub
}

func NewRemoteStore(cfg DBConfig) *RemoteStore {
	pool, err := pgxpool.New(context.Background(), cfg.ConnString())
	if err != nil {
		log.Fatal("creating connection for remote store error: " + err.Error())
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for remote store: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing pgxpool",
		F: func() error {
			pool.Close()
			return nil
		},
	})
	return &RemoteStore{
		conn: pool,
		hub:  newWatchHub(),
	}
}

func NewRemoteStoreWithConn(conn PgConnection) *RemoteStore {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for remote store: " + err.Error())
	}
	return &RemoteStore{
		conn: conn,
		hub:  newWatchHub(),
	}
}

func (rs *RemoteStore) Logs(ctx context.Context, owner entity.Identity) ([]entity.LogEntry, error) {
	rows, err := rs.conn.Query(
		ctx,
		`SELECT id, date, type, start_time, end_time, break_minutes, notes FROM logs WHERE user_id = $1;`,
		owner.UserID,
	)
	if err != nil {
		return nil, errors.New("getting logs error: " + err.Error())
	}
	defer rows.Close()
	result := make([]entity.LogEntry, 0, 8)
	for rows.Next() {
		var (
			id      uuid.UUID
			logType string
			log     entity.LogEntry
		)
		err = rows.Scan(&id, &log.Date, &logType, &log.StartTime, &log.EndTime, &log.BreakMinutes, &log.Notes)
		if err != nil {
			return nil, errors.New("log row parsing error: " + err.Error())
		}
		log.ID = id.String()
		log.Type = entity.LogType(logType)
		result = append(result, log)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected log rows error: " + rows.Err().Error())
	}
	return result, nil
}

func (rs *RemoteStore) AddLog(ctx context.Context, owner entity.Identity, logEntry entity.LogEntry) (string, error) {
	var id uuid.UUID
	row := rs.conn.QueryRow(
		ctx,
		`INSERT INTO logs (user_id, date, type, start_time, end_time, break_minutes, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id;`,
		owner.UserID, logEntry.Date, string(logEntry.Type), logEntry.StartTime, logEntry.EndTime, logEntry.BreakMinutes, logEntry.Notes,
	)
	if err := row.Scan(&id); err != nil {
		return "", errors.New("creating log error: " + err.Error())
	}
	rs.publishLogs(ctx, owner)
	return id.String(), nil
}

func (rs *RemoteStore) SaveLog(ctx context.Context, owner entity.Identity, logEntry entity.LogEntry) (string, error) {
	if logEntry.ID == "" {
		return rs.AddLog(ctx, owner, logEntry)
	}
	logID, err := uuid.Parse(logEntry.ID)
	if err != nil {
		return "", errorvalues.ErrLogNotFound
	}
	ct, err := rs.conn.Exec(
		ctx,
		`UPDATE logs SET date = $1, type = $2, start_time = $3, end_time = $4, break_minutes = $5, notes = $6
		 WHERE id = $7 AND user_id = $8;`,
		logEntry.Date, string(logEntry.Type), logEntry.StartTime, logEntry.EndTime, logEntry.BreakMinutes, logEntry.Notes,
		logID, owner.UserID,
	)
	if err != nil {
		return "", errors.New("updating log error: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return "", errorvalues.ErrLogNotFound
	}
	rs.publishLogs(ctx, owner)
	return logEntry.ID, nil
}

func (rs *RemoteStore) DeleteLog(ctx context.Context, owner entity.Identity, id string) error {
	logID, err := uuid.Parse(id)
	if err != nil {
		return errorvalues.ErrLogNotFound
	}
	ct, err := rs.conn.Exec(ctx, `DELETE FROM logs WHERE id = $1 AND user_id = $2;`, logID, owner.UserID)
	if err != nil {
		return errors.New("deleting log error: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrLogNotFound
	}
	rs.publishLogs(ctx, owner)
	return nil
}

func (rs *RemoteStore) Tasks(ctx context.Context, owner entity.Identity) ([]entity.Task, error) {
	rows, err := rs.conn.Query(
		ctx,
		`SELECT id, title, due_date, reminder_minutes, is_completed FROM tasks WHERE user_id = $1;`,
		owner.UserID,
	)
	if err != nil {
		return nil, errors.New("getting tasks error: " + err.Error())
	}
	defer rows.Close()
	result := make([]entity.Task, 0, 4)
	for rows.Next() {
		var (
			id   uuid.UUID
			task entity.Task
		)
		err = rows.Scan(&id, &task.Title, &task.DueDate, &task.ReminderMinutes, &task.IsCompleted)
		if err != nil {
			return nil, errors.New("task row parsing error: " + err.Error())
		}
		task.ID = id.String()
		result = append(result, task)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected task rows error: " + rows.Err().Error())
	}
	return result, nil
}

func (rs *RemoteStore) SaveTask(ctx context.Context, owner entity.Identity, task entity.Task) (string, error) {
	if task.ID == "" {
		var id uuid.UUID
		row := rs.conn.QueryRow(
			ctx,
			`INSERT INTO tasks (user_id, title, due_date, reminder_minutes, is_completed)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id;`,
			owner.UserID, task.Title, task.DueDate, task.ReminderMinutes, task.IsCompleted,
		)
		if err := row.Scan(&id); err != nil {
			return "", errors.New("creating task error: " + err.Error())
		}
		rs.publishTasks(ctx, owner)
		return id.String(), nil
	}
	taskID, err := uuid.Parse(task.ID)
	if err != nil {
		return "", errorvalues.ErrTaskNotFound
	}
	ct, err := rs.conn.Exec(
		ctx,
		`UPDATE tasks SET title = $1, due_date = $2, reminder_minutes = $3, is_completed = $4
		 WHERE id = $5 AND user_id = $6;`,
		task.Title, task.DueDate, task.ReminderMinutes, task.IsCompleted, taskID, owner.UserID,
	)
	if err != nil {
		return "", errors.New("updating task error: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return "", errorvalues.ErrTaskNotFound
	}
	rs.publishTasks(ctx, owner)
	return task.ID, nil
}

func (rs *RemoteStore) DeleteTask(ctx context.Context, owner entity.Identity, id string) error {
	taskID, err := uuid.Parse(id)
	if err != nil {
		return errorvalues.ErrTaskNotFound
	}
	ct, err := rs.conn.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2;`, taskID, owner.UserID)
	if err != nil {
		return errors.New("deleting task error: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrTaskNotFound
	}
	rs.publishTasks(ctx, owner)
	return nil
}

func (rs *RemoteStore) Profile(ctx context.Context, owner entity.Identity) (*entity.ProfileSettings, error) {
	var profile entity.ProfileSettings
	row := rs.conn.QueryRow(
		ctx,
		`SELECT work_days_per_week, work_hours_per_day, default_break_minutes, total_vacation_days, enable_sound
		 FROM profiles WHERE user_id = $1;`,
		owner.UserID,
	)
	err := row.Scan(&profile.WorkDaysPerWeek, &profile.WorkHoursPerDay, &profile.DefaultBreakMinutes, &profile.TotalVacationDays, &profile.EnableSound)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// First access creates the profile with defaults.
			defaults := entity.DefaultProfile()
			if saveErr := rs.SaveProfile(ctx, owner, &defaults); saveErr != nil {
				return nil, saveErr
			}
			return &defaults, nil
		}
		return nil, errors.New("getting profile error: " + err.Error())
	}
	return &profile, nil
}

func (rs *RemoteStore) SaveProfile(ctx context.Context, owner entity.Identity, settings *entity.ProfileSettings) error {
	_, err := rs.conn.Exec(
		ctx,
		`INSERT INTO profiles (user_id, work_days_per_week, work_hours_per_day, default_break_minutes, total_vacation_days, enable_sound)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (user_id) DO UPDATE SET
			work_days_per_week = EXCLUDED.work_days_per_week,
			work_hours_per_day = EXCLUDED.work_hours_per_day,
			default_break_minutes = EXCLUDED.default_break_minutes,
			total_vacation_days = EXCLUDED.total_vacation_days,
			enable_sound = EXCLUDED.enable_sound;`,
		owner.UserID, settings.WorkDaysPerWeek, settings.WorkHoursPerDay, settings.DefaultBreakMinutes, settings.TotalVacationDays, settings.EnableSound,
	)
	if err != nil {
		return errors.New("saving profile error: " + err.Error())
	}
	rs.hub.publish(owner.Key(), Snapshot{Collection: "profile", Profile: settings})
	return nil
}

func (rs *RemoteStore) Watch(owner entity.Identity) (<-chan Snapshot, func(), error) {
	ch, teardown := rs.hub.subscribe(owner.Key())
	return ch, teardown, nil
}

func (rs *RemoteStore) publishLogs(ctx context.Context, owner entity.Identity) {
	logs, err := rs.Logs(ctx, owner)
	if err != nil {
		slog.Error("refetching logs after mutation failed", slog.String("error", err.Error()))
		return
	}
	rs.hub.publish(owner.Key(), Snapshot{Collection: "logs", Logs: logs})
}

func (rs *RemoteStore) publishTasks(ctx context.Context, owner entity.Identity) {
	tasks, err := rs.Tasks(ctx, owner)
	if err != nil {
		slog.Error("refetching tasks after mutation failed", slog.String("error", err.Error()))
		return
	}
	rs.hub.publish(owner.Key(), Snapshot{Collection: "tasks", Tasks: tasks})
}
