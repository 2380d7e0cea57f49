package blobstore

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for blob operations.
var (
	ErrBlobNotFound       = errors.New("blob not found")
	ErrRead               = errors.New("blob read failed")
	ErrWrite              = errors.New("blob write failed")
	ErrSigningUnsupported = errors.New("store cannot issue upload URLs")
	ErrInvalidPath        = errors.New("invalid blob path")
)

// Store reads and overwrites blobs by path within one container.
type Store interface {
	Get(ctx context.Context, path string) ([]byte, error)
	Put(ctx context.Context, path string, data []byte, contentType string) error
}

// URLSigner issues pre-signed URLs that let a client upload one blob directly.
type URLSigner interface {
	UploadURL(ctx context.Context, path string, ttl time.Duration) (string, error)
}

// Compile-time interface checks
var (
	_ Store     = (*AzureStore)(nil)
	_ URLSigner = (*AzureStore)(nil)
	_ Store     = (*MemoryStore)(nil)
	_ URLSigner = (*MemoryStore)(nil)
	_ Store     = (*MemoryContainer)(nil)
	_ URLSigner = (*MemoryContainer)(nil)
)
