package usecase

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"mssql-backup/internal/domain"
)

// Batch drives the per-database backup sequence for one batch run. A single
// goroutine walks databases and steps in order; each engine backup runs as
// one asynchronous job supervised for progress, with at most one job in
// flight at a time. One database failing never aborts its siblings.
type Batch struct {
	engine             domain.BackupEngine
	names              *NameBuilder
	supervisor         *JobSupervisor
	correlator         *Correlator
	uploader           *Uploader
	sink               domain.ProgressSink
	logger             Logger
	stopOnCheckFailure bool
	now                func() time.Time
}

func NewBatch(
	engine domain.BackupEngine,
	names *NameBuilder,
	supervisor *JobSupervisor,
	uploader *Uploader,
	sink domain.ProgressSink,
	logger Logger,
	stopOnCheckFailure bool,
) *Batch {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Batch{
		engine:             engine,
		names:              names,
		supervisor:         supervisor,
		correlator:         NewCorrelator(engine),
		uploader:           uploader,
		sink:               sink,
		logger:             logger,
		stopOnCheckFailure: stopOnCheckFailure,
		now:                time.Now,
	}
}

// Run processes every entry of the batch in order and returns how many
// entries were processed plus all recorded per-database errors. A completion
// progress signal is emitted even when every database failed; it reports
// orchestration completion, not success.
func (b *Batch) Run(ctx context.Context, batch domain.BatchRequest) (int, []error) {
	total := len(batch.Entries)
	reporter := newProgressReporter(b.sink, fmt.Sprintf("Backing up %d database(s)", total))

	if err := b.engine.Ping(ctx); err != nil {
		// Without a server connection no per-database work is possible.
		return 0, []error{domain.NewStepError(domain.ErrConnectionFailed, "", 0, err)}
	}

	var errs []error
	processed := 0
	for i, entry := range batch.Entries {
		if ctx.Err() != nil {
			return processed, append(errs, ctx.Err())
		}
		processed++

		req, err := domain.ResolveEntry(entry, batch.Defaults)
		if err != nil {
			b.logger.Errorf("Skipping invalid database entry: %v", err)
			errs = append(errs, err)
			continue
		}

		errs = append(errs, b.runDatabase(ctx, reporter, i, total, req)...)
	}

	reporter.complete("completed")
	return processed, errs
}

func (b *Batch) runDatabase(ctx context.Context, reporter *progressReporter, index, total int, req domain.BackupRequest) []error {
	title := req.Title()
	steps := req.Steps()
	stepsTotal := len(steps)

	if stepsTotal == 0 {
		b.logger.Infof("[%s] No steps enabled, nothing to do", req.DatabaseName)
		reporter.publish(domain.ProgressEvent{
			Status:     fmt.Sprintf("%s (%d/%d)", title, index+1, total),
			Percent:    AggregatePercent(total, index, 0, 0, 0),
			BatchIndex: index,
		})
		return nil
	}

	var errs []error
	var logArtifact, dbArtifact *domain.BackupArtifact

	for done, step := range steps {
		if ctx.Err() != nil {
			return append(errs, ctx.Err())
		}

		emit := func(sub int) {
			reporter.publish(domain.ProgressEvent{
				Status:           fmt.Sprintf("%s (%d/%d)", title, index+1, total),
				CurrentOperation: step.String(),
				Percent:          AggregatePercent(total, index, stepsTotal, done, sub),
				BatchIndex:       index,
				StepIndex:        done,
				SubJobPercent:    sub,
			})
		}
		emit(0)

		switch step {
		case domain.StepCheckDatabase:
			b.logger.Infof("[%s] Checking database integrity", req.DatabaseName)
			if err := b.engine.CheckIntegrity(ctx, req.DatabaseName); err != nil {
				errs = append(errs, domain.NewStepError(domain.ErrIntegrityCheckFailed, req.DatabaseName, step, err))
				if b.stopOnCheckFailure {
					b.logger.Warnf("[%s] Integrity check failed, remaining steps skipped", req.DatabaseName)
					return errs
				}
			}

		case domain.StepBackupTransactionLog:
			artifact, err := b.runBackupStep(ctx, req, domain.KindLog, step, emit)
			if err != nil {
				errs = append(errs, err)
			} else {
				logArtifact = artifact
			}

		case domain.StepVerifyLogBackup:
			if logArtifact == nil {
				b.logger.Warnf("[%s] Log backup did not succeed, skipping its verification", req.DatabaseName)
				continue
			}
			if err := b.correlator.VerifyArtifact(ctx, req.DatabaseName, *logArtifact, step); err != nil {
				errs = append(errs, err)
			} else {
				b.logger.Infof("[%s] Log backup verified", req.DatabaseName)
			}

		case domain.StepBackupDatabase:
			artifact, err := b.runBackupStep(ctx, req, req.DatabaseKind(), step, emit)
			if err != nil {
				errs = append(errs, err)
			} else {
				dbArtifact = artifact
			}

		case domain.StepVerifyDatabaseBackup:
			if dbArtifact == nil {
				b.logger.Warnf("[%s] Database backup did not succeed, skipping its verification", req.DatabaseName)
				continue
			}
			if err := b.correlator.VerifyArtifact(ctx, req.DatabaseName, *dbArtifact, step); err != nil {
				errs = append(errs, err)
			} else {
				b.logger.Infof("[%s] Database backup verified", req.DatabaseName)
			}
		}
	}

	return errs
}

// runBackupStep builds the destination path, launches the engine backup as
// an asynchronous job and watches it to completion, forwarding job progress
// into the combined batch percent.
func (b *Batch) runBackupStep(ctx context.Context, req domain.BackupRequest, kind domain.BackupKind, step domain.Step, emit func(int)) (*domain.BackupArtifact, error) {
	createdAt := b.now()
	path, err := b.names.BuildPath(req.Title(), req.UseSubfolder, kind, createdAt)
	if err != nil {
		return nil, domain.NewStepError(domain.ErrBackupEngineFailure, req.DatabaseName, step, err)
	}

	b.logger.Infof("[%s] Starting %s backup: %s", req.DatabaseName, kind, path)
	job, err := b.engine.StartBackup(ctx, domain.CreateBackupParams{
		Database:    req.DatabaseName,
		FilePath:    path,
		Kind:        kind,
		CopyOnly:    req.CopyOnly,
		Compression: req.Compression,
		Checksum:    req.CheckBackup,
		RetainDays:  req.RetainDays,
	})
	if err != nil {
		return nil, domain.NewStepError(domain.ErrBackupEngineFailure, req.DatabaseName, step, err)
	}

	if err := b.supervisor.Watch(ctx, job, emit); err != nil {
		return nil, domain.NewStepError(domain.ErrBackupEngineFailure, req.DatabaseName, step, err)
	}

	artifact := &domain.BackupArtifact{
		FilePath:     path,
		Kind:         kind,
		DatabaseName: req.DatabaseName,
		CreatedAt:    createdAt,
	}

	if info, statErr := os.Stat(path); statErr == nil {
		b.logger.Infof("[%s] Backup complete, size %s", req.DatabaseName, humanize.Bytes(uint64(info.Size())))
	}

	if b.uploader != nil {
		b.uploader.Upload(ctx, *artifact)
	}
	return artifact, nil
}
