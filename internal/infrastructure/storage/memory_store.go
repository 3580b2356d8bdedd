package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

const memoryURLPrefix = "memory://"

// MemoryFileStore keeps uploads in process for local runs without a bucket.
type MemoryFileStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemoryFileStore() *MemoryFileStore {
	return &MemoryFileStore{objects: make(map[string][]byte)}
}

func (s *MemoryFileStore) UploadFile(ctx context.Context, file io.Reader, contentType, folder string, isPublic bool) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return "", fmt.Errorf("failed to read upload: %v", err)
	}

	name := objectName(contentType, folder, isPublic)
	s.mu.Lock()
	s.objects[name] = buf.Bytes()
	s.mu.Unlock()

	return memoryURLPrefix + name, nil
}

func (s *MemoryFileStore) DeleteFile(ctx context.Context, fileURL string) error {
	name := strings.TrimPrefix(fileURL, memoryURLPrefix)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[name]; !ok {
		return fmt.Errorf("file %s not found", fileURL)
	}
	delete(s.objects, name)
	return nil
}

// Get returns a stored object by its URL.
func (s *MemoryFileStore) Get(fileURL string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[strings.TrimPrefix(fileURL, memoryURLPrefix)]
	return data, ok
}

func (s *MemoryFileStore) Close() error {
	return nil
}
