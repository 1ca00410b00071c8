// Package storage defines the object-storage capability used to hold
// large Blackboard blobs (analysis results, report artifacts) outside of
// Redis, grounded on the teacher's internal/storage abstraction.
package storage

import "context"

// Storage is a minimal blob store: upload, download, and bucket
// bootstrap.
type Storage interface {
	// Upload writes data under key in the jobs bucket.
	Upload(ctx context.Context, key string, data []byte, contentType string) error

	// Download reads the blob stored under key.
	Download(ctx context.Context, key string) ([]byte, error)

	// EnsureBucket creates the jobs bucket if it does not already exist.
	EnsureBucket(ctx context.Context) error

	// Close releases any underlying connection.
	Close() error
}
