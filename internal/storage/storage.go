package storage

// Package storage contains object storage abstractions for S3-compatible
// backends. Document content never flows through this service: callers
// transfer bytes directly against presigned URLs, so the interface deals in
// keys and capabilities only.

import (
	"context"
	"time"
)

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is a reusable, S3-compatible object storage client interface.
type Storage interface {
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
	// List returns the objects stored under the given key prefix.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	// PresignPut returns a time-limited URL granting direct write access to
	// the key without credentials. The caller pushes bytes straight to the
	// backend; this service never proxies the content.
	PresignPut(ctx context.Context, key string, expiry time.Duration) (string, error)
	// PresignGet returns a time-limited URL that can be used to download the object without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}
