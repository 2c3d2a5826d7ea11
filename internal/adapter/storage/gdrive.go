package storage

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"mssql-backup/internal/config"
)

// GDrive stores backup artifacts in one Google Drive folder.
type GDrive struct {
	service  *drive.Service
	folderID string
}

func NewGDrive(cfg *config.UploadTarget) (*GDrive, error) {
	service, err := drive.NewService(context.Background(),
		option.WithCredentialsFile(cfg.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &GDrive{service: service, folderID: cfg.FolderID}, nil
}

func (g *GDrive) Upload(ctx context.Context, localPath string, remoteName string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}
	defer file.Close()

	meta := &drive.File{
		Name:    remoteName,
		Parents: []string{g.folderID},
	}
	if _, err := g.service.Files.Create(meta).Media(file).Context(ctx).Do(); err != nil {
		return fmt.Errorf("upload %s to drive: %w", remoteName, err)
	}
	return nil
}

func (g *GDrive) List(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf("'%s' in parents and trashed=false", g.folderID)
	list, err := g.service.Files.List().
		Q(query).
		Fields("files(id, name)").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list drive files: %w", err)
	}

	var files []string
	for _, f := range list.Files {
		files = append(files, f.Name)
	}
	return files, nil
}

func (g *GDrive) Delete(ctx context.Context, remoteName string) error {
	query := fmt.Sprintf("'%s' in parents and name='%s' and trashed=false",
		g.folderID, strings.ReplaceAll(remoteName, "'", `\'`))
	list, err := g.service.Files.List().
		Q(query).
		Fields("files(id)").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("find drive file: %w", err)
	}
	if len(list.Files) == 0 {
		return fmt.Errorf("drive file not found: %s", remoteName)
	}

	if err := g.service.Files.Delete(list.Files[0].Id).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete drive file: %w", err)
	}
	return nil
}

func (g *GDrive) GetOldFiles(ctx context.Context, cutoff time.Time) ([]string, error) {
	query := fmt.Sprintf("'%s' in parents and trashed=false and createdTime < '%s'",
		g.folderID, cutoff.Format(time.RFC3339))
	list, err := g.service.Files.List().
		Q(query).
		Fields("files(id, name)").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list old drive files: %w", err)
	}

	var files []string
	for _, f := range list.Files {
		files = append(files, f.Name)
	}
	return files, nil
}
