package scheduler_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/saati/saati/internal/scheduler"
	"github.com/saati/saati/pkg/entity"
)

type delivered struct {
	ownerKey string
	title    string
	body     string
}

type notifierMock struct {
	ch chan delivered
}

func newNotifierMock() *notifierMock {
	return &notifierMock{ch: make(chan delivered, 8)}
}

func (nm *notifierMock) Notify(ownerKey, title, body string) {
	nm.ch <- delivered{ownerKey: ownerKey, title: title, body: body}
}

func (nm *notifierMock) wait(t *testing.T) delivered {
	t.Helper()
	select {
	case d := <-nm.ch:
		return d
	case <-time.After(2 * time.Second):
		t.Fatal("no notification delivered")
		return delivered{}
	}
}

func (nm *notifierMock) expectNone(t *testing.T, within time.Duration) {
	t.Helper()
	select {
	case d := <-nm.ch:
		t.Fatalf("unexpected notification: %+v", d)
	case <-time.After(within):
	}
}

const ownerKey = "guest:test"

func TestRescheduleFireTime(t *testing.T) {
	// Due at 09:30 with a 15 minute lead arms a timer for 09:45 relative
	// to a pinned 09:44:59.95 clock, so it fires almost immediately.
	now := time.Date(2024, 7, 1, 9, 44, 59, 950000000, time.UTC)
	nm := newNotifierMock()
	s := scheduler.NewWithClock(nm, func() time.Time { return now })
	defer s.Stop()
	s.SetPermission(ownerKey, scheduler.PermissionGranted)
	s.Reschedule(ownerKey, []entity.Task{{
		ID:              "t1",
		Title:           "submit timesheet",
		DueDate:         time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC),
		ReminderMinutes: 15,
	}})
	assert.Equal(t, 1, s.PendingCount(ownerKey))
	d := nm.wait(t)
	assert.Equal(t, ownerKey, d.ownerKey)
	assert.Equal(t, "Task Reminder", d.title)
	assert.Equal(t, "submit timesheet", d.body)
	assert.Equal(t, 0, s.PendingCount(ownerKey))
}

func TestRescheduleSkipsIneligibleTasks(t *testing.T) {
	now := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)
	nm := newNotifierMock()
	s := scheduler.NewWithClock(nm, func() time.Time { return now })
	defer s.Stop()
	s.SetPermission(ownerKey, scheduler.PermissionGranted)
	s.Reschedule(ownerKey, []entity.Task{
		{
			ID:      "completed",
			Title:   "done already",
			DueDate: now.Add(time.Hour), IsCompleted: true,
		},
		{
			ID:      "past",
			Title:   "missed it",
			DueDate: now.Add(-time.Hour),
		},
		{
			ID:              "fires now",
			Title:           "due exactly at fire time",
			DueDate:         now.Add(15 * time.Minute),
			ReminderMinutes: 15,
		},
		{
			ID:      "future",
			Title:   "still ahead",
			DueDate: now.Add(time.Hour),
		},
	})
	// Anything already due fires never, not immediately.
	assert.Equal(t, 1, s.PendingCount(ownerKey))
	nm.expectNone(t, 100*time.Millisecond)
}

func TestRescheduleCancelsAndRebuilds(t *testing.T) {
	now := time.Now()
	nm := newNotifierMock()
	s := scheduler.NewWithClock(nm, func() time.Time { return now })
	defer s.Stop()
	s.SetPermission(ownerKey, scheduler.PermissionGranted)
	s.Reschedule(ownerKey, []entity.Task{
		{ID: "t1", Title: "one", DueDate: now.Add(time.Hour)},
		{ID: "t2", Title: "two", DueDate: now.Add(2 * time.Hour)},
	})
	assert.Equal(t, 2, s.PendingCount(ownerKey))
	// Completing a task drops its reminder on the next rebuild.
	s.Reschedule(ownerKey, []entity.Task{
		{ID: "t1", Title: "one", DueDate: now.Add(time.Hour), IsCompleted: true},
		{ID: "t2", Title: "two", DueDate: now.Add(2 * time.Hour)},
	})
	assert.Equal(t, 1, s.PendingCount(ownerKey))
	s.Reschedule(ownerKey, nil)
	assert.Equal(t, 0, s.PendingCount(ownerKey))
}

func TestPermissionGatesDelivery(t *testing.T) {
	now := time.Now()
	nm := newNotifierMock()
	s := scheduler.NewWithClock(nm, func() time.Time { return now })
	defer s.Stop()
	tasks := []entity.Task{{
		ID:      "t1",
		Title:   "quiet",
		DueDate: now.Add(20 * time.Millisecond),
	}}
	t.Run("default permission suppresses", func(t *testing.T) {
		s.Reschedule(ownerKey, tasks)
		nm.expectNone(t, 200*time.Millisecond)
	})
	t.Run("denied after scheduling suppresses", func(t *testing.T) {
		s.SetPermission(ownerKey, scheduler.PermissionGranted)
		s.Reschedule(ownerKey, []entity.Task{{
			ID:      "t2",
			Title:   "revoked",
			DueDate: now.Add(50 * time.Millisecond),
		}})
		s.SetPermission(ownerKey, scheduler.PermissionDenied)
		nm.expectNone(t, 200*time.Millisecond)
	})
}

func TestPermissionState(t *testing.T) {
	s := scheduler.New(newNotifierMock())
	defer s.Stop()
	assert.Equal(t, scheduler.PermissionDefault, s.PermissionFor(ownerKey))
	s.SetPermission(ownerKey, scheduler.PermissionGranted)
	assert.Equal(t, scheduler.PermissionGranted, s.PermissionFor(ownerKey))
	assert.True(t, scheduler.PermissionDenied.Valid())
	assert.False(t, scheduler.Permission("maybe").Valid())
}

func TestStopCancelsEverything(t *testing.T) {
	now := time.Now()
	nm := newNotifierMock()
	s := scheduler.NewWithClock(nm, func() time.Time { return now })
	s.SetPermission(ownerKey, scheduler.PermissionGranted)
	s.Reschedule(ownerKey, []entity.Task{{
		ID:      "t1",
		Title:   "never delivered",
		DueDate: now.Add(50 * time.Millisecond),
	}})
	assert.NoError(t, s.Stop())
	assert.Equal(t, 0, s.PendingCount(ownerKey))
	nm.expectNone(t, 200*time.Millisecond)
	// Rebuilds after shutdown are ignored.
	s.Reschedule(ownerKey, []entity.Task{{
		ID:      "t2",
		Title:   "late",
		DueDate: now.Add(time.Hour),
	}})
	assert.Equal(t, 0, s.PendingCount(ownerKey))
}
