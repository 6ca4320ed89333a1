package minio

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/tourcat/tourism-api/internal/repository/ports"
)

func NewClient(endpoint, key, secret string, useSSL bool) (*minio.Client, error) {
	return minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(key, secret, ""),
		Secure: useSSL,
	})
}

// Storage implements ports.ObjectStorage on top of a MinIO (or any
// S3-compatible) endpoint.
type Storage struct {
	client *minio.Client
}

func NewStorage(client *minio.Client) *Storage {
	return &Storage{client: client}
}

func (s *Storage) Upload(ctx context.Context, bucket, objectName, contentType string, reader io.Reader, size int64) (string, error) {
	_, err := s.client.PutObject(ctx, bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object %s/%s: %w", bucket, objectName, err)
	}
	endpoint := s.client.EndpointURL()
	url := fmt.Sprintf("%s://%s/%s/%s", endpoint.Scheme, endpoint.Host, bucket, strings.TrimLeft(objectName, "/"))
	return url, nil
}

func (s *Storage) Remove(ctx context.Context, bucket, objectName string) error {
	if err := s.client.RemoveObject(ctx, bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s/%s: %w", bucket, objectName, err)
	}
	return nil
}

func (s *Storage) List(ctx context.Context, bucket string) ([]ports.ObjectInfo, error) {
	objects := make([]ports.ObjectInfo, 0)
	for object := range s.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Recursive: true}) {
		if object.Err != nil {
			return nil, fmt.Errorf("list objects in %s: %w", bucket, object.Err)
		}
		objects = append(objects, ports.ObjectInfo{Key: object.Key, LastModified: object.LastModified})
	}
	return objects, nil
}

var _ ports.ObjectStorage = (*Storage)(nil)
