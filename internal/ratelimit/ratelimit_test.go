package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irodav/taskdeck-be/internal/config"
)

func newTestLimiter(window time.Duration, permits, queue int) *Limiter {
	return NewLimiter(config.RateLimitConfig{
		Window:      window,
		PermitLimit: permits,
		QueueLimit:  queue,
	})
}

func TestAcquireWithinPermitLimit(t *testing.T) {
	l := newTestLimiter(time.Second, 4, 2)

	for i := 0; i < 4; i++ {
		require.NoError(t, l.Acquire(context.Background(), "1.2.3.4"))
	}
}

func TestBurstAdmitsQueuesAndRejects(t *testing.T) {
	l := newTestLimiter(200*time.Millisecond, 4, 2)
	key := "1.2.3.4"

	// First 4 admitted immediately.
	for i := 0; i < 4; i++ {
		require.NoError(t, l.Acquire(context.Background(), key))
	}

	// Next 2 are queued and admitted once the window rolls over.
	var wg sync.WaitGroup
	queued := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			queued <- l.Acquire(context.Background(), key)
		}()
		time.Sleep(20 * time.Millisecond)
	}

	// The 7th request exceeds the queue and is rejected immediately.
	start := time.Now()
	err := l.Acquire(context.Background(), key)
	assert.ErrorIs(t, err, ErrRejected)
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	wg.Wait()
	close(queued)
	for err := range queued {
		assert.NoError(t, err)
	}
}

func TestQueuedRequestsAdmittedOldestFirst(t *testing.T) {
	l := newTestLimiter(150*time.Millisecond, 1, 2)
	key := "1.2.3.4"

	require.NoError(t, l.Acquire(context.Background(), key))

	type result struct {
		id   int
		err  error
		when time.Time
	}
	results := make(chan result, 2)
	for i := 1; i <= 2; i++ {
		id := i
		go func() {
			err := l.Acquire(context.Background(), key)
			results <- result{id: id, err: err, when: time.Now()}
		}()
		time.Sleep(20 * time.Millisecond)
	}

	// With a permit limit of 1 each rollover admits a single waiter, so the
	// first queued request must finish a full window before the second.
	first := <-results
	second := <-results
	require.NoError(t, first.err)
	require.NoError(t, second.err)
	assert.Equal(t, 1, first.id)
	assert.Equal(t, 2, second.id)
	assert.GreaterOrEqual(t, second.when.Sub(first.when), 100*time.Millisecond)
}

func TestKeysAreIndependent(t *testing.T) {
	l := newTestLimiter(time.Second, 1, 0)

	require.NoError(t, l.Acquire(context.Background(), "1.1.1.1"))
	assert.ErrorIs(t, l.Acquire(context.Background(), "1.1.1.1"), ErrRejected)

	// A different key has its own fresh window.
	assert.NoError(t, l.Acquire(context.Background(), "2.2.2.2"))
}

func TestWindowRolloverResetsBudget(t *testing.T) {
	l := newTestLimiter(50*time.Millisecond, 2, 0)
	key := "1.2.3.4"

	require.NoError(t, l.Acquire(context.Background(), key))
	require.NoError(t, l.Acquire(context.Background(), key))
	assert.ErrorIs(t, l.Acquire(context.Background(), key), ErrRejected)

	time.Sleep(60 * time.Millisecond)
	assert.NoError(t, l.Acquire(context.Background(), key))
}

func TestQueuedAcquireHonorsContextCancel(t *testing.T) {
	l := newTestLimiter(time.Minute, 1, 2)
	key := "1.2.3.4"

	require.NoError(t, l.Acquire(context.Background(), key))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- l.Acquire(ctx, key)
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(time.Second):
		t.Fatal("canceled waiter never returned")
	}
}

func TestPruneIdle(t *testing.T) {
	l := newTestLimiter(10*time.Millisecond, 4, 0)

	require.NoError(t, l.Acquire(context.Background(), "1.1.1.1"))
	require.NoError(t, l.Acquire(context.Background(), "2.2.2.2"))
	assert.Equal(t, 2, l.Keys())

	// Nothing is old enough yet.
	assert.Equal(t, 0, l.PruneIdle(time.Minute))

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 2, l.PruneIdle(20*time.Millisecond))
	assert.Equal(t, 0, l.Keys())
}

func TestMiddlewareRejectsWithFixedBody(t *testing.T) {
	l := newTestLimiter(time.Minute, 1, 0)
	handler := l.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.RemoteAddr = "9.9.9.9:1234"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Too many requests!", rec.Body.String())
}

func TestClientKey(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		want       string
	}{
		{name: "host and port", remoteAddr: "10.0.0.7:51234", want: "10.0.0.7"},
		{name: "bare host", remoteAddr: "10.0.0.7", want: "10.0.0.7"},
		{name: "unknown address", remoteAddr: "", want: "global"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			assert.Equal(t, tt.want, ClientKey(req))
		})
	}
}
