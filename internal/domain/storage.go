package domain

import (
	"context"
	"time"
)

// Storage is an offsite destination for completed backup artifacts.
type Storage interface {
	Upload(ctx context.Context, localPath string, remoteName string) error
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, remoteName string) error
	GetOldFiles(ctx context.Context, cutoff time.Time) ([]string, error)
}

// Compressor squeezes artifacts before they travel offsite.
type Compressor interface {
	Compress(sourcePath, destPath string) error
	Decompress(sourcePath, destPath string) error
}

// Notifier delivers human-facing run summaries.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}
