// Package throttle serializes and rate-limits sends per destination.
package throttle

import (
	"sync"
	"time"
)

// Throttle guards outbound sends: concurrent sends to the same JID are
// serialized so the gateway sees them in order, and a fixed-window
// counter caps sends per destination per minute.
type Throttle struct {
	mu       sync.Mutex
	locks    map[string]*destLock
	counters map[string]*rateBucket
	limit    int
	window   time.Duration
}

type destLock struct {
	mu       sync.Mutex
	lastUsed time.Time
}

type rateBucket struct {
	count  int
	window time.Time
}

// New builds a throttle allowing limit sends per destination per minute.
func New(limit int) *Throttle {
	return &Throttle{
		locks:    make(map[string]*destLock),
		counters: make(map[string]*rateBucket),
		limit:    limit,
		window:   time.Minute,
	}
}

// WithLock executes fn while holding the per-destination mutex.
// Concurrent sends to the same JID are serialized; different JIDs run in
// parallel.
func (t *Throttle) WithLock(jid string, fn func() error) error {
	t.mu.Lock()
	dl, ok := t.locks[jid]
	if !ok {
		dl = &destLock{}
		t.locks[jid] = dl
	}
	t.mu.Unlock()

	dl.mu.Lock()
	defer dl.mu.Unlock()

	dl.lastUsed = time.Now()
	return fn()
}

// Allow reports whether another send to jid fits in the current window,
// counting it when it does.
func (t *Throttle) Allow(jid string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	b, ok := t.counters[jid]
	if !ok || now.Sub(b.window) > t.window {
		t.counters[jid] = &rateBucket{count: 1, window: now}
		return true
	}
	if b.count >= t.limit {
		return false
	}
	b.count++
	return true
}

// Cleanup removes locks and buckets not used within maxAge to prevent
// memory leaks.
func (t *Throttle) Cleanup(maxAge time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	for jid, dl := range t.locks {
		if now.Sub(dl.lastUsed) > maxAge {
			delete(t.locks, jid)
		}
	}
	for jid, b := range t.counters {
		if now.Sub(b.window) > maxAge {
			delete(t.counters, jid)
		}
	}
}
