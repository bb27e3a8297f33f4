// Package storage is the blob store behind documents and contract PDFs
package storage

import (
	"context"
	"io"
	"time"
)

// Gateway is what the services need from object storage. Keys are opaque
// and Delete of a missing key must succeed.
type Gateway interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	// URL is the canonical, unsigned address of an object
	URL(key string) string
	PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}
