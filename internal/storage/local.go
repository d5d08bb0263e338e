package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// LocalStore writes attachments under a base directory, sharded by
// year/month. The returned path is relative to the process working
// directory and served statically under /uploads.
type LocalStore struct {
	baseDir string
}

func NewLocalStore(baseDir string) (*LocalStore, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{baseDir: baseDir}, nil
}

func (s *LocalStore) Save(ctx context.Context, filename, contentType string, r io.Reader, size int64) (string, error) {
	now := time.Now()
	dir := filepath.Join(s.baseDir, fmt.Sprintf("%d", now.Year()), fmt.Sprintf("%02d", now.Month()))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	fileID := uuid.New().String()[:32]
	savedName := fmt.Sprintf("%s_%s", fileID, filepath.Base(filename))
	savePath := filepath.Join(dir, savedName)

	dst, err := os.Create(savePath)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		os.Remove(savePath)
		return "", fmt.Errorf("write file: %w", err)
	}

	return savePath, nil
}
