package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/kidhasia/misty-ems/internal/config"
)

// Content types accepted for task attachments.
var allowedContentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"application/pdf": true,
}

// AllowedContentType reports whether an upload's content type is accepted.
func AllowedContentType(ct string) bool {
	return allowedContentTypes[ct]
}

// Store persists task attachments and returns the path (or object key)
// recorded on the task.
type Store interface {
	Save(ctx context.Context, filename, contentType string, r io.Reader, size int64) (string, error)
}

// New selects the attachment backend from configuration.
func New(cfg config.StorageConfig) (Store, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocalStore(cfg.LocalDir)
	case "minio":
		return NewMinioStore(cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
