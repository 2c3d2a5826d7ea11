package usecase

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"mssql-backup/internal/domain"
)

// UploadTarget pairs a configured offsite storage with its display name.
type UploadTarget struct {
	Name    string
	Storage domain.Storage
}

// Uploader ships completed backup artifacts to the configured offsite
// targets, optionally gzipping them first. Target failures are logged and
// never fail the backup itself; the artifact already exists locally.
type Uploader struct {
	targets    []UploadTarget
	compressor domain.Compressor
	gzip       bool
	logger     Logger
}

func NewUploader(targets []UploadTarget, compressor domain.Compressor, gzip bool, logger Logger) *Uploader {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Uploader{targets: targets, compressor: compressor, gzip: gzip, logger: logger}
}

// Upload fans the artifact out to all targets concurrently and waits for
// them to finish.
func (u *Uploader) Upload(ctx context.Context, artifact domain.BackupArtifact) {
	if len(u.targets) == 0 {
		return
	}

	localPath := artifact.FilePath
	remoteName := filepath.Base(localPath)

	if u.gzip && u.compressor != nil {
		compressed := filepath.Join(os.TempDir(), remoteName+".gz")
		if err := u.compressor.Compress(localPath, compressed); err != nil {
			u.logger.Errorf("[%s] Compressing artifact for upload: %v", artifact.DatabaseName, err)
		} else {
			defer os.Remove(compressed)
			localPath = compressed
			remoteName += ".gz"
		}
	}

	var wg sync.WaitGroup
	for _, target := range u.targets {
		wg.Add(1)
		go func(t UploadTarget) {
			defer wg.Done()
			if err := t.Storage.Upload(ctx, localPath, remoteName); err != nil {
				u.logger.Errorf("[%s] Upload to %s failed: %v", artifact.DatabaseName, t.Name, err)
				return
			}
			u.logger.Infof("[%s] Uploaded %s to %s", artifact.DatabaseName, remoteName, t.Name)
		}(target)
	}
	wg.Wait()
}
