// Package dummystorage provides an in-memory core.FileStorage for tests.
package dummystorage

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/darasa-io/darasa/core"
)

type Storage struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

var _ core.FileStorage = (*Storage)(nil) // interface compliance check

func New() *Storage {
	return &Storage{objects: make(map[string][]byte)}
}

func (s *Storage) UploadFile(ctx context.Context, key string, content io.Reader, contentType string) error {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(content); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = buf.Bytes()
	return nil
}

func (s *Storage) DeleteObject(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *Storage) SignedReadURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "https://storage.local/" + key + "?signed=true", nil
}

// Object returns the stored content for assertions.
func (s *Storage) Object(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	content, ok := s.objects[key]
	return content, ok
}
