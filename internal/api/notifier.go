package api

import (
	"sync"
	"time"
)

// Notification is one delivered reminder, shaped like the payload a
// platform notification would carry.
type Notification struct {
	Title string    `json:"title"`
	Body  string    `json:"body"`
	At    time.Time `json:"at"`
}

// NotificationHub fans reminder deliveries out to the owner's open
// notification streams. It implements scheduler.Notifier. Channels are
// buffered and a slow consumer loses the oldest pending notification
// rather than blocking the scheduler's timer goroutine.
type NotificationHub struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]chan Notification
}

func NewNotificationHub() *NotificationHub {
	return &NotificationHub{
		subs: make(map[string]map[int]chan Notification),
	}
}

func (h *NotificationHub) Notify(ownerKey, title, body string) {
	n := Notification{Title: title, Body: body, At: time.Now()}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs[ownerKey] {
		select {
		case ch <- n:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- n
		}
	}
}

// Subscribe opens a notification channel for the owner. The teardown must
// be called when the stream closes.
func (h *NotificationHub) Subscribe(ownerKey string) (<-chan Notification, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	id := h.nextID
	ch := make(chan Notification, 8)
	if h.subs[ownerKey] == nil {
		h.subs[ownerKey] = make(map[int]chan Notification)
	}
	h.subs[ownerKey][id] = ch
	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if pending, ok := h.subs[ownerKey]; ok {
			delete(pending, id)
			if len(pending) == 0 {
				delete(h.subs, ownerKey)
			}
		}
	}
}
