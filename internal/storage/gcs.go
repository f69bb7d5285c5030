package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"TRIPPLANNER_BACK-END/internal/logger"
)

// GCSStore keeps objects in a Google Cloud Storage bucket.
type GCSStore struct {
	client *storage.Client
	bucket string
}

// NewGCSStore uses GCS_CREDENTIALS_JSON when set, application default credentials otherwise.
func NewGCSStore(ctx context.Context, bucket string) (*GCSStore, error) {
	if bucket == "" {
		return nil, errors.New("GCS_BUCKET is required")
	}

	var opts []option.ClientOption
	if credJSON := os.Getenv("GCS_CREDENTIALS_JSON"); strings.TrimSpace(credJSON) != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credJSON)))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}

	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("gcs bucket %q not found or not accessible: %w", bucket, err)
	}
	return &GCSStore{client: client, bucket: bucket}, nil
}

func (s *GCSStore) Save(ctx context.Context, key, contentType string, r io.Reader) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	wc := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	wc.ContentType = contentType
	if _, err := io.Copy(wc, r); err != nil {
		wc.Close()
		return err
	}
	return wc.Close()
}

func (s *GCSStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	key, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	rc, err := s.client.Bucket(s.bucket).Object(key).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, ErrNotFound
	}
	return rc, err
}

func (s *GCSStore) Delete(ctx context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	err = s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		logger.L().Debugf("gcs object %s already gone", key)
		return nil
	}
	return err
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
