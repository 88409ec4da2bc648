package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"rentaltoll-backend/internal/jobs"
	"rentaltoll-backend/internal/logger"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
}

// NewScheduler creates a scheduler in loc with every job registered.
func NewScheduler(jobRunner *jobs.JobRunner, loc *time.Location) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
	}
	if err := s.registerJobs(); err != nil {
		return nil, err
	}
	return s, nil
}

// registerJobs registers all scheduled jobs with the cron scheduler
func (s *Scheduler) registerJobs() error {
	cfg := s.jobs.Config().Scheduler

	schedule := []struct {
		name string
		spec string
		fn   func()
	}{
		{jobs.JobRematchUnmatchedTolls, cfg.RematchUnmatchedTolls, s.jobs.RematchUnmatchedTolls},
		{jobs.JobReportOutstandingBalances, cfg.ReportOutstandingBalances, s.jobs.ReportOutstandingBalances},
	}
	for _, job := range schedule {
		if _, err := s.cron.AddFunc(job.spec, job.fn); err != nil {
			return fmt.Errorf("register %s job: %w", job.name, err)
		}
		logger.Info("Registered cron job", "job", job.name, "schedule", job.spec)
	}
	return nil
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
}

// Stop gracefully stops the cron scheduler, waiting for running jobs
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}

// Entries returns the number of registered jobs
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// Next reports the earliest upcoming run. It is zero until Start.
func (s *Scheduler) Next() time.Time {
	var next time.Time
	for _, e := range s.cron.Entries() {
		if next.IsZero() || (!e.Next.IsZero() && e.Next.Before(next)) {
			next = e.Next
		}
	}
	return next
}
