package blobstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps blobs in a map. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	baseURL string
}

type memoryObject struct {
	data        []byte
	contentType string
}

// NewMemoryStore creates an empty store. When baseURL is non-empty,
// UploadURL returns baseURL joined with the blob path.
func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{objects: make(map[string]memoryObject), baseURL: baseURL}
}

// Get returns a copy of the blob at path.
func (s *MemoryStore) Get(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validatePath(path); err != nil {
		return nil, err
	}

	s.mu.RLock()
	obj, ok := s.objects[path]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, path)
	}
	return append([]byte(nil), obj.data...), nil
}

// Put stores a copy of data, replacing any existing blob.
func (s *MemoryStore) Put(ctx context.Context, path string, data []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validatePath(path); err != nil {
		return err
	}

	s.mu.Lock()
	s.objects[path] = memoryObject{data: append([]byte(nil), data...), contentType: contentType}
	s.mu.Unlock()
	return nil
}

// ContentType reports the content type stored with path.
func (s *MemoryStore) ContentType(path string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[path]
	return obj.contentType, ok
}

// Len returns the number of stored blobs.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// UploadURL returns baseURL/path. The ttl is not enforced.
func (s *MemoryStore) UploadURL(ctx context.Context, path string, _ time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := validatePath(path); err != nil {
		return "", err
	}
	if s.baseURL == "" {
		return "", ErrSigningUnsupported
	}
	return url.JoinPath(s.baseURL, path)
}

// Container returns a view of s scoped to one container. Blobs written
// through the view live at container/path in s, so a single MemoryStore can
// back every container the daemon uses.
func (s *MemoryStore) Container(name string) *MemoryContainer {
	return &MemoryContainer{store: s, prefix: strings.Trim(name, "/") + "/"}
}

// MemoryContainer is a container-scoped view of a MemoryStore.
type MemoryContainer struct {
	store  *MemoryStore
	prefix string
}

// Get reads container/path.
func (c *MemoryContainer) Get(ctx context.Context, path string) ([]byte, error) {
	if err := validatePath(path); err != nil {
		return nil, err
	}
	return c.store.Get(ctx, c.prefix+path)
}

// Put writes container/path.
func (c *MemoryContainer) Put(ctx context.Context, path string, data []byte, contentType string) error {
	if err := validatePath(path); err != nil {
		return err
	}
	return c.store.Put(ctx, c.prefix+path, data, contentType)
}

// UploadURL returns baseURL/container/path.
func (c *MemoryContainer) UploadURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	if err := validatePath(path); err != nil {
		return "", err
	}
	return c.store.UploadURL(ctx, c.prefix+path, ttl)
}
