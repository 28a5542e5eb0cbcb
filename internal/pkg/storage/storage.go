package storage

import (
	"context"
	"errors"
	"io"
)

var (
	ErrInvalidPath     = errors.New("invalid file path")
	ErrFileNotFound    = errors.New("file not found")
	ErrFileTooLarge    = errors.New("file exceeds maximum size")
	ErrContentTypeDeny = errors.New("file content type not allowed")
)

type FileStorage interface {
	// Upload writes file under path and returns the stored key.
	Upload(ctx context.Context, file io.Reader, path string, contentType string) (string, error)

	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete is a no-op for missing files.
	Delete(ctx context.Context, path string) error

	// URL returns the public address of a stored key.
	URL(path string) string

	Exists(ctx context.Context, path string) (bool, error)
}

// UploadOptions constrains what an upload may contain.
type UploadOptions struct {
	MaxSize             int64
	AllowedContentTypes []string
}
