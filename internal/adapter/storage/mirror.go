package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Mirror keeps a second local copy of backup artifacts, typically on a
// different disk or mount than the destination root.
type Mirror struct {
	basePath string
}

func NewMirror(basePath string) (*Mirror, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create mirror directory: %w", err)
	}
	return &Mirror{basePath: basePath}, nil
}

// Upload copies the artifact into the mirror directory. The copy goes
// through a temp file and a rename, so a crashed copy never leaves a
// truncated artifact under the final name.
func (m *Mirror) Upload(ctx context.Context, localPath string, remoteName string) error {
	source, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}
	defer source.Close()

	tmp, err := os.CreateTemp(m.basePath, "."+remoteName+".*")
	if err != nil {
		return fmt.Errorf("create mirror temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, source); err != nil {
		tmp.Close()
		return fmt.Errorf("copy artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close mirror temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(m.basePath, remoteName)); err != nil {
		return fmt.Errorf("rename mirror file: %w", err)
	}
	return nil
}

func (m *Mirror) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(m.basePath)
	if err != nil {
		return nil, fmt.Errorf("read mirror directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}

func (m *Mirror) Delete(ctx context.Context, remoteName string) error {
	if err := os.Remove(filepath.Join(m.basePath, remoteName)); err != nil {
		return fmt.Errorf("delete mirror file: %w", err)
	}
	return nil
}

func (m *Mirror) GetOldFiles(ctx context.Context, cutoff time.Time) ([]string, error) {
	entries, err := os.ReadDir(m.basePath)
	if err != nil {
		return nil, fmt.Errorf("read mirror directory: %w", err)
	}

	var old []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", entry.Name(), err)
		}
		if info.ModTime().Before(cutoff) {
			old = append(old, entry.Name())
		}
	}
	return old, nil
}
