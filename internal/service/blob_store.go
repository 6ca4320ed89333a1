package service

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/tourcat/tourism-api/internal/repository/ports"
)

var ErrStorageWrite = errors.New("storage write failed")

// BlobUpload is a fully buffered binary payload ready for the blob store.
type BlobUpload struct {
	Data        []byte
	FileName    string
	ContentType string
}

type BlobStoreConfig struct {
	Bucket        string
	PublicBaseURL string
	Timeout       time.Duration
	Retries       int
}

// BlobStore wraps an object-storage bucket behind two calls: Put uploads a
// payload under a fresh time-seeded object name and returns the public URL,
// Delete removes the blob a URL points at and swallows every failure. A
// missing or already-deleted blob is never an error for the caller.
type BlobStore struct {
	storage    ports.ObjectStorage
	bucket     string
	publicBase string
	timeout    time.Duration
	retries    int
	seq        atomic.Uint64
	now        func() time.Time
}

func NewBlobStore(storage ports.ObjectStorage, cfg BlobStoreConfig) *BlobStore {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	retries := cfg.Retries
	if retries < 0 {
		retries = 0
	}
	return &BlobStore{
		storage:    storage,
		bucket:     cfg.Bucket,
		publicBase: strings.TrimRight(cfg.PublicBaseURL, "/"),
		timeout:    timeout,
		retries:    retries,
		now:        time.Now,
	}
}

// Put uploads the payload and returns its public URL. Transient storage
// faults are retried with backoff; a final failure wraps ErrStorageWrite and
// leaves nothing for the caller to clean up.
func (b *BlobStore) Put(ctx context.Context, upload BlobUpload) (string, error) {
	if len(upload.Data) == 0 {
		return "", fmt.Errorf("%w: empty payload", ErrStorageWrite)
	}

	objectName := b.newObjectName(upload.FileName)
	size := int64(len(upload.Data))

	var lastErr error
	for attempt := 0; attempt <= b.retries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * 200 * time.Millisecond
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", ErrStorageWrite, ctx.Err())
			case <-time.After(backoff):
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, b.timeout)
		storedURL, err := b.storage.Upload(attemptCtx, b.bucket, objectName, upload.ContentType, bytes.NewReader(upload.Data), size)
		cancel()
		if err == nil {
			if b.publicBase != "" {
				return b.publicBase + "/" + b.bucket + "/" + objectName, nil
			}
			return storedURL, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return "", fmt.Errorf("%w: %v", ErrStorageWrite, lastErr)
}

// Delete removes the blob the URL points at, best-effort. Failures are
// logged and never propagated; blob cleanup must not block a record
// mutation.
func (b *BlobStore) Delete(ctx context.Context, blobURL string) {
	objectName := objectNameFromURL(blobURL)
	if objectName == "" {
		return
	}
	deleteCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	if err := b.storage.Remove(deleteCtx, b.bucket, objectName); err != nil {
		log.Printf("blob delete %s: %v", objectName, err)
	}
}

func (b *BlobStore) ListObjects(ctx context.Context) ([]ports.ObjectInfo, error) {
	return b.storage.List(ctx, b.bucket)
}

// RemoveObject deletes a blob by object name, best-effort.
func (b *BlobStore) RemoveObject(ctx context.Context, objectName string) {
	deleteCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	if err := b.storage.Remove(deleteCtx, b.bucket, objectName); err != nil {
		log.Printf("blob delete %s: %v", objectName, err)
	}
}

// newObjectName derives a collision-resistant name without a read-before-
// write: a hash of the current timestamp plus a process-local counter, with
// the original extension preserved.
func (b *BlobStore) newObjectName(fileName string) string {
	seed := fmt.Sprintf("%d-%d", b.now().UnixNano(), b.seq.Add(1))
	sum := md5.Sum([]byte(seed))
	ext := strings.ToLower(filepath.Ext(fileName))
	return hex.EncodeToString(sum[:]) + ext
}

// objectNameFromURL extracts the final path segment of a blob URL.
func objectNameFromURL(blobURL string) string {
	trimmed := strings.TrimSpace(blobURL)
	if trimmed == "" {
		return ""
	}
	if parsed, err := url.Parse(trimmed); err == nil && parsed.Path != "" {
		trimmed = parsed.Path
	}
	name := path.Base(trimmed)
	if name == "." || name == "/" {
		return ""
	}
	return name
}
