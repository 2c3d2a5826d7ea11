package domain

import "context"

// JobState is the lifecycle state of one asynchronous engine invocation.
type JobState int

const (
	JobRunning JobState = iota
	JobSucceeded
	JobFailed
)

// JobStatus is one poll result. Percent is only meaningful while Running;
// Err is only set when Failed.
type JobStatus struct {
	State   JobState
	Percent int
	Err     error
}

// BackupJob is the ownership token for one in-flight backup. Whoever starts
// a job must call Release exactly once, on success, failure or abandonment.
type BackupJob interface {
	Poll(ctx context.Context) (JobStatus, error)
	Release() error
}

// CreateBackupParams are the engine-level options for one backup invocation.
type CreateBackupParams struct {
	Database    string
	FilePath    string
	Kind        BackupKind
	CopyOnly    bool
	Compression bool
	Checksum    bool
	RetainDays  int
}

// BackupEngine is the remote engine the orchestrator drives. Backup
// execution itself, integrity checking and restore verification all happen
// server-side; this interface only issues the commands and reads the
// catalog.
type BackupEngine interface {
	// Ping verifies the server connection is usable. A failing ping before
	// the batch aborts the whole run.
	Ping(ctx context.Context) error

	// CheckIntegrity runs the engine's database consistency check.
	CheckIntegrity(ctx context.Context, database string) error

	// StartBackup launches a backup as an asynchronous job. The write is
	// performed by the server; the returned job is polled for progress.
	StartBackup(ctx context.Context, params CreateBackupParams) (BackupJob, error)

	// LatestCatalogRecord returns the most recent backup history row for the
	// database, or nil when the catalog has none.
	LatestCatalogRecord(ctx context.Context, database string) (*CatalogRecord, error)

	// ReadBackupHeader reads the position recorded in the backup file's own
	// header. A value <= 0 means the header carries no usable position.
	ReadBackupHeader(ctx context.Context, filePath string) (int64, error)

	// VerifyBackup asks the engine to verify the backup set at the given
	// position inside the file.
	VerifyBackup(ctx context.Context, filePath string, position int64) error
}
