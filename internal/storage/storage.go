// Package storage holds the object store behind REST-API uploads. Bot
// uploads never touch it; their bytes stay on the messaging relay.
package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
)

// ErrObjectNotFound is returned when a named object does not exist.
var ErrObjectNotFound = errors.New("object not found")

type ObjectInfo struct {
	ObjectName string
	Size       int64
}

type PutOptions struct {
	ContentType string
}

// Store is the object-storage boundary.
type Store interface {
	PutObject(ctx context.Context, object string, reader io.Reader, size int64, opts PutOptions) error
	GetObject(ctx context.Context, object string) (io.ReadCloser, ObjectInfo, error)
	RemoveObject(ctx context.Context, object string) error
}

// Default is the process-wide store, set by InitMinio. Nil when object
// storage is not configured.
var Default Store

// MemoryStore is an in-memory Store for tests.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: map[string][]byte{}}
}

func (s *MemoryStore) PutObject(ctx context.Context, object string, reader io.Reader, size int64, opts PutOptions) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[object] = data
	return nil
}

func (s *MemoryStore) GetObject(ctx context.Context, object string) (io.ReadCloser, ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[object]
	if !ok {
		return nil, ObjectInfo{}, ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), ObjectInfo{ObjectName: object, Size: int64(len(data))}, nil
}

func (s *MemoryStore) RemoveObject(ctx context.Context, object string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, object)
	return nil
}
