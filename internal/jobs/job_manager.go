package jobs

import (
	"fmt"
	"log/slog"
)

// Job is a scheduled background task.
type Job interface {
	Start() error
	Stop()
}

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	jobs   []Job
	logger *slog.Logger
}

// NewJobManager creates a job manager running the state report on schedule.
func NewJobManager(counter StateCounter, schedule string, logger *slog.Logger) *JobManager {
	return NewJobManagerWith(logger, NewOrderStateReportJob(counter, schedule, logger))
}

// NewJobManagerWith creates a job manager over an explicit job list.
func NewJobManagerWith(logger *slog.Logger, jobs ...Job) *JobManager {
	return &JobManager{jobs: jobs, logger: logger}
}

// StartAll starts all scheduled jobs in order.
// If one fails, the jobs already started are stopped and the error is returned.
func (jm *JobManager) StartAll() error {
	for i, job := range jm.jobs {
		if err := job.Start(); err != nil {
			for _, started := range jm.jobs[:i] {
				started.Stop()
			}
			return fmt.Errorf("failed to start job %d: %w", i, err)
		}
	}
	jm.logger.Info("Scheduled jobs started", "count", len(jm.jobs))
	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	for _, job := range jm.jobs {
		job.Stop()
	}
}
