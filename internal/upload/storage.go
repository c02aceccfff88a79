package upload

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrInvalidName is returned when a stored blob name cannot be decoded.
	ErrInvalidName = errors.New("invalid blob name")
	// ErrNotFound is returned when a blob does not exist.
	ErrNotFound = errors.New("blob not found")
)

// FileInfo represents metadata about a stored blob.
type FileInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Storage is the byte store behind the upload service.
type Storage interface {
	// Write stores content from the reader with the given key. size is -1
	// when unknown.
	Write(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// Read retrieves content for the given key. Missing keys yield
	// ErrNotFound. The caller closes the returned reader.
	Read(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the content with the given key.
	Delete(ctx context.Context, key string) error

	// List returns every stored blob.
	List(ctx context.Context) ([]FileInfo, error)
}
