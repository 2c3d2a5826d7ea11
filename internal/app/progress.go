package app

import (
	"mssql-backup/internal/domain"
	"mssql-backup/internal/infrastructure/logger"
)

// logSink renders progress events as log lines. The event already carries
// the combined percent plus the {batch, step, sub-job} coordinates, so any
// richer UI could reconstruct the hierarchy from the same payload.
type logSink struct {
	log *logger.Logger
}

func newLogSink(log *logger.Logger) domain.ProgressSink {
	return &logSink{log: log}
}

func (s *logSink) Publish(e domain.ProgressEvent) {
	if e.Completed {
		s.log.Infof("[100%%] %s: %s", e.Activity, e.Status)
		return
	}
	if e.CurrentOperation != "" {
		s.log.Infof("[%3.0f%%] %s: %s", e.Percent, e.Status, e.CurrentOperation)
		return
	}
	s.log.Infof("[%3.0f%%] %s", e.Percent, e.Status)
}
