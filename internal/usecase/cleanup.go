package usecase

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"
)

var artifactStamp = regexp.MustCompile(`_(\d{4}-\d{2}-\d{2}_\d{2}-\d{2})_(?:log|full|diff)\.(?:trn|bak)(?:\.gz)?$`)

// Cleanup removes backup artifacts older than the retention window from the
// destination root and from every offsite target.
type Cleanup struct {
	root          string
	targets       []UploadTarget
	logger        Logger
	retentionDays int
}

func NewCleanup(root string, targets []UploadTarget, logger Logger, retentionDays int) *Cleanup {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Cleanup{root: root, targets: targets, logger: logger, retentionDays: retentionDays}
}

func (uc *Cleanup) Execute(ctx context.Context) error {
	if uc.retentionDays <= 0 {
		uc.logger.Infof("Retention disabled, skipping cleanup")
		return nil
	}

	cutoff := time.Now().AddDate(0, 0, -uc.retentionDays)
	uc.logger.Infof("Starting cleanup, retention: %d days", uc.retentionDays)

	if err := uc.cleanupLocal(cutoff); err != nil {
		uc.logger.Errorf("Local cleanup failed: %v", err)
	}
	uc.cleanupTargets(ctx, cutoff)

	uc.logger.Infof("Cleanup completed")
	return nil
}

// cleanupLocal walks the destination root, including per-database
// subfolders, and deletes artifacts whose embedded timestamp is before the
// cutoff. Files that do not look like backup artifacts are left alone.
func (uc *Cleanup) cleanupLocal(cutoff time.Time) error {
	deleted := 0
	err := filepath.WalkDir(uc.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		ts, ok := artifactTimestamp(d.Name())
		if !ok || !ts.Before(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil {
			uc.logger.Errorf("Failed to delete %s: %v", path, err)
			return nil
		}
		deleted++
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk destination root: %w", err)
	}
	uc.logger.Infof("Deleted %d old artifact(s) from %s", deleted, uc.root)
	return nil
}

func (uc *Cleanup) cleanupTargets(ctx context.Context, cutoff time.Time) {
	var wg sync.WaitGroup
	for _, target := range uc.targets {
		wg.Add(1)
		go func(t UploadTarget) {
			defer wg.Done()
			if err := uc.cleanupTarget(ctx, t, cutoff); err != nil {
				uc.logger.Errorf("Cleanup failed for %s: %v", t.Name, err)
			}
		}(target)
	}
	wg.Wait()
}

func (uc *Cleanup) cleanupTarget(ctx context.Context, target UploadTarget, cutoff time.Time) error {
	files, err := target.Storage.GetOldFiles(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("list old files: %w", err)
	}

	deleted := 0
	for _, name := range files {
		if err := target.Storage.Delete(ctx, name); err != nil {
			uc.logger.Errorf("Failed to delete %s from %s: %v", name, target.Name, err)
			continue
		}
		deleted++
	}
	uc.logger.Infof("Deleted %d old artifact(s) from %s", deleted, target.Name)
	return nil
}

// artifactTimestamp extracts the minute-level timestamp embedded in an
// artifact file name.
func artifactTimestamp(name string) (time.Time, bool) {
	m := artifactStamp.FindStringSubmatch(name)
	if len(m) < 2 {
		return time.Time{}, false
	}
	ts, err := time.Parse("2006-01-02_15-04", m[1])
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
