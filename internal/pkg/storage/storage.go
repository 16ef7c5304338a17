package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrBucketNotFound is returned by Check when the configured bucket is missing
var ErrBucketNotFound = errors.New("storage bucket not found")

// Storage defines the minimal interface for file storage backends.
type Storage interface {
	// Put stores a file at the given key.
	Put(ctx context.Context, key string, reader io.Reader, contentType string) error

	// GetURL returns the public URL for a stored key.
	GetURL(key string) string

	// Check verifies the backend is reachable and writable.
	Check(ctx context.Context) error
}

// Config selects and configures a backend
type Config struct {
	Driver string // "local" or "s3"

	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3PublicURL string

	LocalPath string
	LocalURL  string
}

// New creates the backend named by cfg.Driver
func New(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Driver {
	case "s3":
		return NewS3Storage(ctx, cfg)
	case "local", "":
		return NewLocalStorage(cfg.LocalPath, cfg.LocalURL)
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Driver)
	}
}
