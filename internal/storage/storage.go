// Package storage keeps uploaded attachment and photo bytes outside the database.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"TRIPPLANNER_BACK-END/internal/config"
)

// ErrNotFound is returned by Open when the key does not exist.
var ErrNotFound = errors.New("object not found")

// ErrInvalidKey is returned for keys that escape the store root.
var ErrInvalidKey = errors.New("invalid object key")

// Store saves and serves binary objects by key.
type Store interface {
	Save(ctx context.Context, key, contentType string, r io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// New selects the backend named by cfg.Provider.
func New(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Provider {
	case "", "local":
		return NewLocalStore(cfg.LocalRoot)
	case "gcs":
		return NewGCSStore(ctx, cfg.GCSBucket)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}

// NewKey builds a unique object key under prefix keeping the file extension.
func NewKey(prefix, filename string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(filename, `\`, "/"))))
	if len(ext) > 10 {
		ext = ""
	}
	return path.Join(prefix, uuid.NewString()+ext)
}

// cleanKey rejects absolute keys and keys containing "..".
func cleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return "", ErrInvalidKey
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return "", ErrInvalidKey
		}
	}
	cleaned := path.Clean(key)
	if cleaned == "." {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}
