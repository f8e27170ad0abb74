// Package monitoring runs the background housekeeping jobs: pruning idle
// rate-limiter state and flagging overdue tasks in the audit log.
package monitoring

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/irodav/taskdeck-be/internal/models"
	"github.com/irodav/taskdeck-be/internal/ratelimit"
	"github.com/irodav/taskdeck-be/internal/services"
)

// overdueLister is the slice of the task service the sweeper needs.
type overdueLister interface {
	ListOverdue(cutoff time.Time) ([]models.Task, error)
}

// Sweeper periodically prunes idle limiter keys and records an audit event
// for tasks that passed their due date without being completed.
type Sweeper struct {
	limiter  *ratelimit.Limiter
	tasks    overdueLister
	eventSvc services.EventServiceProvider
	cron     *cron.Cron

	// flagged remembers tasks already reported so each one produces a
	// single overdue event per process lifetime.
	flagged map[string]bool
}

// NewSweeper creates a sweeper running on the given cron schedule.
func NewSweeper(schedule string, limiter *ratelimit.Limiter, tasks overdueLister, eventSvc services.EventServiceProvider) (*Sweeper, error) {
	s := &Sweeper{
		limiter:  limiter,
		tasks:    tasks,
		eventSvc: eventSvc,
		cron:     cron.New(),
		flagged:  make(map[string]bool),
	}
	if _, err := s.cron.AddFunc(schedule, s.sweep); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Run starts the cron loop.
func (s *Sweeper) Run() {
	log.Info().Msg("Starting background sweeper")
	s.cron.Start()
}

// Stop halts the cron loop and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info().Msg("Stopped background sweeper")
}

func (s *Sweeper) sweep() {
	if removed := s.limiter.PruneIdle(10 * time.Minute); removed > 0 {
		log.Debug().Int("removed", removed).Msg("Pruned idle rate limiter keys")
	}

	overdue, err := s.tasks.ListOverdue(time.Now().UTC())
	if err != nil {
		log.Error().Err(err).Msg("Sweeper: failed to list overdue tasks")
		return
	}

	for _, task := range overdue {
		if s.flagged[task.ID] {
			continue
		}
		s.flagged[task.ID] = true
		msg := fmt.Sprintf("Task '%s' is overdue (due %s)", task.Name, task.DueDate.Format("2006-01-02"))
		s.eventSvc.CreateEvent("task.overdue", "warn", msg, &task.UserID)
	}
}
