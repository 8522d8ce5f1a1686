package storage

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// MemoryStorage is an in-memory FileStorage used in tests and local
// development when no Azure connection string is configured.
type MemoryStorage struct {
	mu    sync.Mutex
	seq   int
	blobs map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{blobs: make(map[string][]byte)}
}

func (s *MemoryStorage) Upload(_ context.Context, path string, file io.Reader, size int64, originalName, contentType string) (*Blob, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	blobName := fmt.Sprintf("%s/%06d-%s", path, s.seq, originalName)
	s.blobs[blobName] = data
	return &Blob{
		BlobName:     blobName,
		OriginalName: originalName,
		ContentType:  contentType,
		Size:         size,
		URL:          s.PublicURL(blobName),
	}, nil
}

func (s *MemoryStorage) Delete(_ context.Context, blobName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[blobName]; !ok {
		return fmt.Errorf("blob %s not found", blobName)
	}
	delete(s.blobs, blobName)
	return nil
}

func (s *MemoryStorage) TemporaryURL(_ context.Context, blobName string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[blobName]; !ok {
		return "", fmt.Errorf("blob %s not found", blobName)
	}
	return fmt.Sprintf("memory://%s?expires=%d", blobName, time.Now().Add(ttl).Unix()), nil
}

func (s *MemoryStorage) PublicURL(blobName string) string {
	return "memory://" + blobName
}

func (s *MemoryStorage) TestConnection(context.Context) bool { return true }

// Len reports how many blobs are held. Test helper.
func (s *MemoryStorage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs)
}
