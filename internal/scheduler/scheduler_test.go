package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentaltoll-backend/internal/config"
	"rentaltoll-backend/internal/jobs"
)

func TestNewScheduler_RegistersJobs(t *testing.T) {
	cfg, err := config.Parse([]byte("database:\n  driver: memory\n"))
	require.NoError(t, err)

	s, err := NewScheduler(jobs.NewJobRunner(&jobs.Services{}, cfg), time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Entries())
	assert.True(t, s.Next().IsZero())

	s.Start()
	assert.True(t, s.Next().After(time.Now()))
	s.Stop()
}

func TestNewScheduler_BadSpec(t *testing.T) {
	cfg := &config.Config{Scheduler: config.SchedulerConfig{
		RematchUnmatchedTolls:     "not a schedule",
		ReportOutstandingBalances: "0 0 8 * * *",
	}}

	_, err := NewScheduler(jobs.NewJobRunner(&jobs.Services{}, cfg), nil)
	assert.ErrorContains(t, err, jobs.JobRematchUnmatchedTolls)
}
