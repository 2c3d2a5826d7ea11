package domain

import (
	"time"
	"unicode"
)

// BackupKind identifies what a backup file contains.
type BackupKind int

const (
	KindFull BackupKind = iota
	KindDifferential
	KindLog
)

func (k BackupKind) String() string {
	switch k {
	case KindFull:
		return "full"
	case KindDifferential:
		return "differential"
	case KindLog:
		return "transaction log"
	default:
		return "unknown"
	}
}

// BackupRequest is the fully resolved set of per-database options for one
// batch element. DatabaseName is always set before any other field is read.
type BackupRequest struct {
	DatabaseName         string
	CheckDatabase        bool
	CheckBackup          bool
	CopyOnly             bool
	BackupDatabase       bool
	BackupTransactionLog bool
	Differential         bool
	Compression          bool
	UseSubfolder         bool
	RetainDays           int
}

// Title returns the database name with its first character upper-cased,
// used for file names and progress text.
func (r BackupRequest) Title() string {
	return Title(r.DatabaseName)
}

func Title(name string) string {
	runes := []rune(name)
	if len(runes) == 0 {
		return ""
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// Step is one unit of work within a single database's backup sequence.
type Step int

const (
	StepCheckDatabase Step = iota
	StepBackupTransactionLog
	StepVerifyLogBackup
	StepBackupDatabase
	StepVerifyDatabaseBackup
)

func (s Step) String() string {
	switch s {
	case StepCheckDatabase:
		return "check database"
	case StepBackupTransactionLog:
		return "backup transaction log"
	case StepVerifyLogBackup:
		return "verify log backup"
	case StepBackupDatabase:
		return "backup database"
	case StepVerifyDatabaseBackup:
		return "verify database backup"
	default:
		return "unknown"
	}
}

// Steps derives the ordered plan of enabled steps for this request. Each
// verification action counts as its own step, so the progress denominator is
// simply len(Steps()).
func (r BackupRequest) Steps() []Step {
	var steps []Step
	if r.CheckDatabase {
		steps = append(steps, StepCheckDatabase)
	}
	if r.BackupTransactionLog {
		steps = append(steps, StepBackupTransactionLog)
		if r.CheckBackup {
			steps = append(steps, StepVerifyLogBackup)
		}
	}
	if r.BackupDatabase {
		steps = append(steps, StepBackupDatabase)
		if r.CheckBackup {
			steps = append(steps, StepVerifyDatabaseBackup)
		}
	}
	return steps
}

// DatabaseKind returns the kind of the database backup this request would
// produce: differential if the flag is set, full otherwise.
func (r BackupRequest) DatabaseKind() BackupKind {
	if r.Differential {
		return KindDifferential
	}
	return KindFull
}

// BatchRequest is an ordered sequence of per-database entries sharing one
// server connection and destination root.
type BatchRequest struct {
	Entries         []BatchEntry
	Defaults        BackupRequest
	DestinationRoot string
}

// BackupArtifact describes one backup file created by the engine. It is
// built before the engine is invoked and only confirmed to exist after the
// backup job reports success.
type BackupArtifact struct {
	FilePath     string
	Kind         BackupKind
	DatabaseName string
	CreatedAt    time.Time
}

// CatalogRecord is the most recent backup history row the engine reports for
// a database.
type CatalogRecord struct {
	BackupSetID         int64
	Position            int64
	SizeBytes           int64
	CompressedSizeBytes int64
}
