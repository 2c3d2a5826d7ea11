package usecase

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mssql-backup/internal/domain"
)

// NameBuilder derives destination paths for backup artifacts under a fixed
// root. File names follow {Title}_{yyyy-MM-dd_HH-mm}_{suffix}.{ext}.
//
// The timestamp has minute resolution: two backups of the same database and
// kind within the same minute produce the same path and the later write
// wins. That is accepted behavior, not silently worked around.
type NameBuilder struct {
	root string
}

func NewNameBuilder(root string) *NameBuilder {
	return &NameBuilder{root: root}
}

// BuildPath returns the full destination path for one artifact. When
// useSubfolder is set, a directory named after the database title is created
// under the root first; creating it is idempotent.
func (b *NameBuilder) BuildPath(title string, useSubfolder bool, kind domain.BackupKind, ts time.Time) (string, error) {
	dir := b.root
	if useSubfolder {
		dir = filepath.Join(b.root, title)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create backup subfolder: %w", err)
		}
	}

	suffix, ext := kindSuffix(kind)
	name := fmt.Sprintf("%s_%s_%s.%s", title, ts.Format("2006-01-02_15-04"), suffix, ext)
	return filepath.Join(dir, name), nil
}

func kindSuffix(kind domain.BackupKind) (suffix, ext string) {
	switch kind {
	case domain.KindLog:
		return "log", "trn"
	case domain.KindDifferential:
		return "diff", "bak"
	default:
		return "full", "bak"
	}
}
