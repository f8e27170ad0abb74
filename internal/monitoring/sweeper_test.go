package monitoring

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irodav/taskdeck-be/internal/config"
	"github.com/irodav/taskdeck-be/internal/models"
	"github.com/irodav/taskdeck-be/internal/ratelimit"
)

type fakeLister struct {
	tasks []models.Task
}

func (f *fakeLister) ListOverdue(cutoff time.Time) ([]models.Task, error) {
	return f.tasks, nil
}

type recordedEvent struct {
	eventType string
	userID    string
}

type fakeEvents struct {
	recorded []recordedEvent
}

func (f *fakeEvents) CreateEvent(eventType, level, message string, userID *string) {
	id := ""
	if userID != nil {
		id = *userID
	}
	f.recorded = append(f.recorded, recordedEvent{eventType: eventType, userID: id})
}

func (f *fakeEvents) GetRecentEventsForUser(userID string, limit int) ([]models.Event, error) {
	return nil, nil
}

func newTestLimiter() *ratelimit.Limiter {
	return ratelimit.NewLimiter(config.RateLimitConfig{
		Window:      time.Millisecond,
		PermitLimit: 1,
		QueueLimit:  0,
	})
}

func TestNewSweeperRejectsBadSchedule(t *testing.T) {
	_, err := NewSweeper("not a schedule", newTestLimiter(), &fakeLister{}, &fakeEvents{})
	assert.Error(t, err)
}

func TestSweepFlagsOverdueTasksOnce(t *testing.T) {
	lister := &fakeLister{tasks: []models.Task{
		{ID: "t1", UserID: "u1", Name: "Late task", DueDate: time.Now().Add(-time.Hour)},
	}}
	events := &fakeEvents{}

	s, err := NewSweeper("@every 1h", newTestLimiter(), lister, events)
	require.NoError(t, err)

	s.sweep()
	s.sweep()

	require.Len(t, events.recorded, 1)
	assert.Equal(t, "task.overdue", events.recorded[0].eventType)
	assert.Equal(t, "u1", events.recorded[0].userID)
}

func TestSweepPrunesIdleLimiterKeys(t *testing.T) {
	limiter := newTestLimiter()
	require.NoError(t, limiter.Acquire(context.Background(), "1.2.3.4"))
	require.Equal(t, 1, limiter.Keys())

	s, err := NewSweeper("@every 1h", limiter, &fakeLister{}, &fakeEvents{})
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	s.sweep()
	// Keys are pruned only after a long idle period, so a fresh key survives.
	assert.Equal(t, 1, limiter.Keys())
}
