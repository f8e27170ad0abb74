// Package ratelimit implements a fixed-window rate limiter keyed by client
// address, with a bounded FIFO wait queue per key. It gates every inbound
// request before authentication and business logic run.
package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/irodav/taskdeck-be/internal/config"
)

// ErrRejected is returned when a request exceeds both the window's permit
// limit and the wait queue capacity.
var ErrRejected = errors.New("rate limit exceeded")

// Limiter admits up to PermitLimit requests per fixed window and key,
// queues up to QueueLimit more in arrival order, and rejects the rest.
// Different keys operate fully independently; admission decisions for a
// single key are serialized by that key's own lock.
type Limiter struct {
	cfg config.RateLimitConfig

	mu   sync.Mutex
	keys map[string]*window

	now func() time.Time
}

type waiter struct {
	ready    chan struct{}
	canceled bool
}

type window struct {
	mu       sync.Mutex
	start    time.Time
	used     int
	waiters  []*waiter
	timer    *time.Timer
	lastSeen time.Time
}

// NewLimiter creates a limiter with the given window, permit and queue sizes.
func NewLimiter(cfg config.RateLimitConfig) *Limiter {
	return &Limiter{
		cfg:  cfg,
		keys: make(map[string]*window),
		now:  time.Now,
	}
}

func (l *Limiter) entry(key string) *window {
	l.mu.Lock()
	defer l.mu.Unlock()
	w, ok := l.keys[key]
	if !ok {
		w = &window{}
		l.keys[key] = w
	}
	return w
}

// Acquire admits the request immediately, blocks it in the wait queue until
// the window rolls over, or returns ErrRejected. A canceled context aborts a
// queued request with the context's error.
func (l *Limiter) Acquire(ctx context.Context, key string) error {
	w := l.entry(key)

	w.mu.Lock()
	now := l.now()
	w.lastSeen = now

	// Roll the window lazily, but only while nobody is queued: queued
	// requests must be admitted first, which the rollover timer does in
	// FIFO order.
	if len(w.waiters) == 0 && (w.start.IsZero() || !now.Before(w.start.Add(l.cfg.Window))) {
		w.start = now
		w.used = 0
	}

	if w.used < l.cfg.PermitLimit {
		w.used++
		w.mu.Unlock()
		return nil
	}

	if len(w.waiters) >= l.cfg.QueueLimit {
		w.mu.Unlock()
		return ErrRejected
	}

	wt := &waiter{ready: make(chan struct{})}
	w.waiters = append(w.waiters, wt)
	if w.timer == nil {
		delay := w.start.Add(l.cfg.Window).Sub(now)
		if delay < 0 {
			delay = 0
		}
		w.timer = time.AfterFunc(delay, func() { l.rollover(w) })
	}
	w.mu.Unlock()

	select {
	case <-wt.ready:
		return nil
	case <-ctx.Done():
		w.mu.Lock()
		wt.canceled = true
		w.mu.Unlock()
		return ctx.Err()
	}
}

// rollover starts a fresh window and admits queued requests in arrival order
// until the new permit budget is spent.
func (l *Limiter) rollover(w *window) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.start = l.now()
	w.used = 0

	for len(w.waiters) > 0 && w.used < l.cfg.PermitLimit {
		wt := w.waiters[0]
		w.waiters = w.waiters[1:]
		if wt.canceled {
			continue
		}
		w.used++
		close(wt.ready)
	}

	if len(w.waiters) > 0 {
		w.timer = time.AfterFunc(l.cfg.Window, func() { l.rollover(w) })
	} else {
		w.timer = nil
	}
}

// PruneIdle removes per-key state that has been untouched for at least
// maxIdle and has no queued requests. It returns the number of keys removed.
func (l *Limiter) PruneIdle(maxIdle time.Duration) int {
	cutoff := l.now().Add(-maxIdle)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, w := range l.keys {
		w.mu.Lock()
		idle := len(w.waiters) == 0 && w.timer == nil && w.lastSeen.Before(cutoff)
		w.mu.Unlock()
		if idle {
			delete(l.keys, key)
			removed++
		}
	}
	return removed
}

// Keys returns the number of client keys currently tracked.
func (l *Limiter) Keys() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.keys)
}
