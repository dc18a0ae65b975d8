// Package scheduler turns an owner's task collection into pending one-shot
// reminder timers. The strategy is cancel-and-rebuild: every change to the
// collection throws away all pending timers for that owner and schedules
// the current state from scratch. At tens of tasks per owner that is the
// simplest correct approach.
package scheduler

import (
	"log/slog"
	"sync"
	"time"

	"github.com/saati/saati/pkg/entity"
)

type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

func (p Permission) Valid() bool {
	switch p {
	case PermissionDefault, PermissionGranted, PermissionDenied:
		return true
	}
	return false
}

// Notifier delivers one alert. Delivery is fire-and-forget: the scheduler
// neither retries nor learns whether anything was shown.
type Notifier interface {
	Notify(ownerKey, title, body string)
}

type Scheduler struct {
	mu       sync.Mutex
	timers   map[string]map[string]*time.Timer // owner key -> task id -> timer
	perms    map[string]Permission
	notifier Notifier
	now      func() time.Time
	stopped  bool
}

func New(notifier Notifier) *Scheduler {
	return &Scheduler{
		timers:   make(map[string]map[string]*time.Timer),
		perms:    make(map[string]Permission),
		notifier: notifier,
		now:      time.Now,
	}
}

// NewWithClock pins the scheduler's clock for tests.
func NewWithClock(notifier Notifier, now func() time.Time) *Scheduler {
	s := New(notifier)
	s.now = now
	return s
}

// SetPermission records the platform notification permission for an owner.
// The scheduler never asks for permission itself; this is only ever called
// from an explicit user action.
func (s *Scheduler) SetPermission(ownerKey string, p Permission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.perms[ownerKey] = p
}

func (s *Scheduler) PermissionFor(ownerKey string) Permission {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.perms[ownerKey]; ok {
		return p
	}
	return PermissionDefault
}

// Reschedule cancels every pending reminder for the owner and rebuilds the
// schedule from the given collection. A reminder is scheduled only for an
// incomplete task whose fire time (due date minus lead time) is strictly in
// the future; anything already due fires never, not immediately.
func (s *Scheduler) Reschedule(ownerKey string, tasks []entity.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.cancelLocked(ownerKey)
	pending := make(map[string]*time.Timer)
	now := s.now()
	for _, task := range tasks {
		if task.IsCompleted {
			continue
		}
		fireAt := task.DueDate.Add(-time.Duration(task.ReminderMinutes) * time.Minute)
		if !fireAt.After(now) {
			continue
		}
		task := task
		pending[task.ID] = time.AfterFunc(fireAt.Sub(now), func() {
			s.fire(ownerKey, task)
		})
	}
	if len(pending) > 0 {
		s.timers[ownerKey] = pending
	}
}

// Stop cancels every pending reminder for every owner. Used on shutdown so
// no timer outlives its store.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for ownerKey := range s.timers {
		s.cancelLocked(ownerKey)
	}
	return nil
}

// PendingCount reports the number of armed reminders for an owner.
func (s *Scheduler) PendingCount(ownerKey string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers[ownerKey])
}

func (s *Scheduler) cancelLocked(ownerKey string) {
	for _, timer := range s.timers[ownerKey] {
		timer.Stop()
	}
	delete(s.timers, ownerKey)
}

// fire checks permission at delivery time, not at scheduling time, so a
// permission revoked after scheduling still suppresses the alert.
func (s *Scheduler) fire(ownerKey string, task entity.Task) {
	s.mu.Lock()
	if pending, ok := s.timers[ownerKey]; ok {
		delete(pending, task.ID)
		if len(pending) == 0 {
			delete(s.timers, ownerKey)
		}
	}
	granted := s.perms[ownerKey] == PermissionGranted
	s.mu.Unlock()
	if !granted {
		slog.Debug("reminder suppressed: notifications not granted", slog.String("task", task.ID))
		return
	}
	s.notifier.Notify(ownerKey, "Task Reminder", task.Title)
}
