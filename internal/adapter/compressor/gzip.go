package compressor

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
)

// Gzip compresses backup artifacts before they travel to offsite targets.
// SQL Server's own backup compression is orthogonal; this only reduces
// upload size and storage cost.
type Gzip struct {
	level int
}

func NewGzip() *Gzip {
	return &Gzip{level: gzip.BestCompression}
}

func (g *Gzip) Compress(sourcePath, destPath string) error {
	source, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer source.Close()

	dest, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create dest file: %w", err)
	}
	defer dest.Close()

	writer, err := gzip.NewWriterLevel(dest, g.level)
	if err != nil {
		return fmt.Errorf("create gzip writer: %w", err)
	}

	if _, err := io.Copy(writer, source); err != nil {
		writer.Close()
		return fmt.Errorf("compress: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("flush gzip stream: %w", err)
	}
	return nil
}

func (g *Gzip) Decompress(sourcePath, destPath string) error {
	source, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer source.Close()

	reader, err := gzip.NewReader(source)
	if err != nil {
		return fmt.Errorf("create gzip reader: %w", err)
	}
	defer reader.Close()

	dest, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create dest file: %w", err)
	}
	defer dest.Close()

	if _, err := io.Copy(dest, reader); err != nil {
		return fmt.Errorf("decompress: %w", err)
	}
	return nil
}
