// Package storage keeps uploaded media (post images and profile photos).
// Models hold an opaque key; the backend turns it into a public URL.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"inkwell/internal/config"

	"github.com/google/uuid"
)

const (
	PostImagesFolder    = "posts_photo"
	ProfilePhotosFolder = "profiles_photo"
	BodyImagesFolder    = "posts_body"
)

var ErrInvalidKey = errors.New("storage: invalid key")

type Storage interface {
	// Put stores data under key and returns the key actually used.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	// URL resolves a stored key to a URL a browser can fetch.
	URL(key string) string
}

// New builds the backend selected by cfg.Backend.
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Backend {
	case "local":
		return NewLocalStorage(cfg.MediaRoot, cfg.MediaURL)
	case "minio":
		return NewMinIOStorage(ctx, cfg.MinIO)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// NewKey returns a fresh key inside folder with the given extension.
func NewKey(folder, ext string) string {
	return path.Join(folder, uuid.NewString()+ext)
}

// cleanKey rejects keys that would escape the media root.
func cleanKey(key string) (string, error) {
	key = strings.TrimPrefix(path.Clean("/"+key), "/")
	if key == "" || key == "." || strings.HasPrefix(key, "..") {
		return "", ErrInvalidKey
	}
	return key, nil
}
