package repository

import "sync"

// watchHub fans snapshot pushes out to per-owner subscribers. Channels are
// buffered with capacity one and stale pushes are dropped before the fresh
// one is queued, so a slow reader always observes the latest confirmed
// state (last write wins, same as the live-sync store it models).
type watchHub struct {
	mu   sync.Mutex
	subs map[string]map[int]chan Snapshot
	next int
}

func newWatchHub() *watchHub {
	return &watchHub{
		subs: make(map[string]map[int]chan Snapshot),
	}
}

func (h *watchHub) subscribe(ownerKey string) (<-chan Snapshot, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[ownerKey] == nil {
		h.subs[ownerKey] = make(map[int]chan Snapshot)
	}
	id := h.next
	h.next++
	ch := make(chan Snapshot, 1)
	h.subs[ownerKey][id] = ch
	teardown := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[ownerKey][id]; ok {
			delete(h.subs[ownerKey], id)
			if len(h.subs[ownerKey]) == 0 {
				delete(h.subs, ownerKey)
			}
			close(sub)
		}
	}
	return ch, teardown
}

func (h *watchHub) publish(ownerKey string, snap Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs[ownerKey] {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}
