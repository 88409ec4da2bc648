package jobs

import (
	"context"
	"fmt"
	"sort"
	"time"

	"rentaltoll-backend/internal/config"
	"rentaltoll-backend/internal/logger"
	"rentaltoll-backend/internal/service"
)

const (
	JobRematchUnmatchedTolls     = "RematchUnmatchedTolls"
	JobReportOutstandingBalances = "ReportOutstandingBalances"
)

const jobTimeout = 5 * time.Minute

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	services *Services
	config   *config.Config
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Toll   service.TollService
	Ledger service.LedgerService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(services *Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		services: services,
		config:   cfg,
	}
}

func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// Names lists the jobs Run accepts.
func (jr *JobRunner) Names() []string {
	names := make([]string, 0, len(jr.registry()))
	for name := range jr.registry() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run executes one job by name, for manual runs.
func (jr *JobRunner) Run(name string) error {
	job, ok := jr.registry()[name]
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	job()
	return nil
}

// RunAll runs every job once, in name order.
func (jr *JobRunner) RunAll() {
	for _, name := range jr.Names() {
		jr.registry()[name]()
	}
}

func (jr *JobRunner) registry() map[string]func() {
	return map[string]func(){
		JobRematchUnmatchedTolls:     jr.RematchUnmatchedTolls,
		JobReportOutstandingBalances: jr.ReportOutstandingBalances,
	}
}

// runWithRecovery wraps job execution with panic recovery and a deadline
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context) error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	logger.Info("Starting job", "job", jobName)
	err := jobFunc(ctx)
	logger.JobResult(jobName, time.Since(start), err)
}
