package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mssql-backup/internal/domain"
)

// DefaultPollInterval is how often a running engine job is polled.
const DefaultPollInterval = 2 * time.Second

// JobSupervisor watches one asynchronous engine job until it reaches a
// terminal state. It guarantees the job handle is released exactly once on
// every exit path, including caller cancellation, and it never retries a
// failed job; retrying is the caller's decision.
type JobSupervisor struct {
	interval time.Duration
	logger   Logger
}

func NewJobSupervisor(interval time.Duration, logger Logger) *JobSupervisor {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &JobSupervisor{interval: interval, logger: logger}
}

// Watch polls the job at a fixed interval and invokes onProgress once for
// each strictly higher percent value observed. Percents are never reported
// out of order. On terminal failure the underlying cause is returned.
func (s *JobSupervisor) Watch(ctx context.Context, job domain.BackupJob, onProgress func(percent int)) error {
	var once sync.Once
	release := func() {
		once.Do(func() {
			if err := job.Release(); err != nil && s.logger != nil {
				s.logger.Warnf("Releasing backup job: %v", err)
			}
		})
	}
	defer release()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	last := -1
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		status, err := job.Poll(ctx)
		if err != nil {
			return fmt.Errorf("poll backup job: %w", err)
		}

		switch status.State {
		case domain.JobRunning:
			if status.Percent > last {
				last = status.Percent
				if onProgress != nil {
					onProgress(status.Percent)
				}
			}
		case domain.JobSucceeded:
			return nil
		case domain.JobFailed:
			if status.Err != nil {
				return status.Err
			}
			return fmt.Errorf("backup job failed without a cause")
		}
	}
}
