package ports

import (
	"context"
	"io"
	"time"
)

// ObjectInfo is a single stored blob as reported by a bucket listing.
type ObjectInfo struct {
	Key          string
	LastModified time.Time
}

type ObjectStorage interface {
	Upload(ctx context.Context, bucket, objectName, contentType string, reader io.Reader, size int64) (string, error)
	Remove(ctx context.Context, bucket, objectName string) error
	List(ctx context.Context, bucket string) ([]ObjectInfo, error)
}
