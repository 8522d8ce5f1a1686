package storage

import (
	"context"
	"io"
	"time"
)

// Blob is the metadata returned by an upload. The caller persists it as a
// StoredFile row.
type Blob struct {
	BlobName     string
	OriginalName string
	ContentType  string
	Size         int64
	URL          string
}

// FileStorage abstracts the blob backend. Upload and Delete fail loudly;
// TestConnection swallows errors into a boolean.
type FileStorage interface {
	Upload(ctx context.Context, path string, file io.Reader, size int64, originalName, contentType string) (*Blob, error)
	Delete(ctx context.Context, blobName string) error
	TemporaryURL(ctx context.Context, blobName string, ttl time.Duration) (string, error)
	PublicURL(blobName string) string
	TestConnection(ctx context.Context) bool
}
