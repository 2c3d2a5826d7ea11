package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"mssql-backup/internal/adapter/compressor"
	"mssql-backup/internal/adapter/engine"
	"mssql-backup/internal/adapter/notify"
	"mssql-backup/internal/adapter/storage"
	"mssql-backup/internal/config"
	"mssql-backup/internal/domain"
	"mssql-backup/internal/infrastructure/logger"
	"mssql-backup/internal/infrastructure/scheduler"
	"mssql-backup/internal/usecase"
)

type App struct {
	config    *config.Config
	logger    *logger.Logger
	engine    *engine.MSSQL
	batch     *usecase.Batch
	cleanup   *usecase.Cleanup
	notifier  domain.Notifier
	scheduler *scheduler.Scheduler
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log, err := logger.New(cfg.App.LogLevel, cfg.App.LogFile)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	log.Infof("Starting %s", cfg.App.Name)

	if err := os.MkdirAll(cfg.Backup.DestinationRoot, 0o755); err != nil {
		return nil, fmt.Errorf("create destination root: %w", err)
	}

	eng, err := engine.Connect(ctx, &cfg.Server)
	if err != nil {
		// No per-database work is possible without the server.
		return nil, fmt.Errorf("connect to %s: %w", cfg.Server.Host, err)
	}
	log.Infof("Connected to %s:%d", cfg.Server.Host, cfg.Server.Port)

	targets, notifier := initializeTargets(cfg, log)

	uploader := usecase.NewUploader(targets, compressor.NewGzip(), cfg.Backup.GzipUploads, log)
	names := usecase.NewNameBuilder(cfg.Backup.DestinationRoot)
	supervisor := usecase.NewJobSupervisor(cfg.Backup.PollInterval, log)
	batch := usecase.NewBatch(eng, names, supervisor, uploader,
		newLogSink(log.Named("progress")), log, cfg.Backup.StopOnCheckFailure)
	cleanup := usecase.NewCleanup(cfg.Backup.DestinationRoot, targets, log, cfg.Backup.RetentionDays)

	return &App{
		config:    cfg,
		logger:    log,
		engine:    eng,
		batch:     batch,
		cleanup:   cleanup,
		notifier:  notifier,
		scheduler: scheduler.New(log),
	}, nil
}

func initializeTargets(cfg *config.Config, log *logger.Logger) ([]usecase.UploadTarget, domain.Notifier) {
	var targets []usecase.UploadTarget
	var notifier domain.Notifier

	for _, targetCfg := range cfg.GetEnabledUploadTargets() {
		var stor domain.Storage
		var err error

		switch targetCfg.Type {
		case "mirror":
			stor, err = storage.NewMirror(targetCfg.Path)
		case "s3":
			stor, err = storage.NewS3(&targetCfg)
		case "gdrive":
			stor, err = storage.NewGDrive(&targetCfg)
		case "telegram":
			n, nerr := notify.NewTelegram(&targetCfg)
			if nerr != nil {
				log.Errorf("Failed to initialize telegram notifier: %v", nerr)
				continue
			}
			notifier = n
			log.Infof("Telegram notifications enabled")
			continue
		default:
			log.Warnf("Unknown upload target type: %s", targetCfg.Type)
			continue
		}

		if err != nil {
			log.Errorf("Failed to initialize %s target: %v", targetCfg.Type, err)
			continue
		}
		log.Infof("Upload target enabled: %s", targetCfg.Type)
		targets = append(targets, usecase.UploadTarget{Name: targetCfg.Type, Storage: stor})
	}

	return targets, notifier
}

// RunOnce executes one batch over all configured databases. Per-database
// failures are logged and summarized; the returned error only reflects
// whether any database failed.
func (a *App) RunOnce(ctx context.Context) error {
	batch := a.config.BatchRequest()
	processed, errs := a.batch.Run(ctx, batch)

	for _, err := range errs {
		a.logger.Errorf("%v", err)
	}

	summary := fmt.Sprintf("Backup run finished: %d database(s) processed, %d error(s)",
		processed, len(errs))
	a.logger.Infof("%s", summary)
	a.sendSummary(ctx, summary, errs)

	if len(errs) > 0 {
		return fmt.Errorf("%d error(s) across %d database(s)", len(errs), processed)
	}
	return nil
}

func (a *App) sendSummary(ctx context.Context, summary string, errs []error) {
	if a.notifier == nil {
		return
	}
	var b strings.Builder
	b.WriteString(summary)
	for _, err := range errs {
		fmt.Fprintf(&b, "\n- %v", err)
	}
	if err := a.notifier.Notify(ctx, b.String()); err != nil {
		a.logger.Errorf("Failed to send summary notification: %v", err)
	}
}

// RunScheduled registers the backup batch and retention cleanup on their
// cron schedules and blocks until the context is cancelled.
func (a *App) RunScheduled(ctx context.Context) error {
	if err := a.scheduler.AddJob("backup batch", a.config.Backup.Schedule, a.RunOnce); err != nil {
		return fmt.Errorf("schedule backup batch: %w", err)
	}
	if err := a.scheduler.AddJob("retention cleanup", a.config.Backup.CleanupSchedule, a.cleanup.Execute); err != nil {
		return fmt.Errorf("schedule cleanup: %w", err)
	}

	a.scheduler.Start()
	a.logger.Infof("Scheduler started: backups %q, cleanup %q",
		a.config.Backup.Schedule, a.config.Backup.CleanupSchedule)

	<-ctx.Done()
	return nil
}

// Cleanup runs the retention pass once.
func (a *App) Cleanup(ctx context.Context) error {
	return a.cleanup.Execute(ctx)
}

func (a *App) Shutdown() {
	a.logger.Infof("Shutting down")
	a.scheduler.Stop()
	if err := a.engine.Close(); err != nil {
		a.logger.Errorf("Closing server connection: %v", err)
	}
	a.logger.Close()
}
