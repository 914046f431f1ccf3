package services

import (
	"context"
	"fmt"

	"inkwell/internal/storage"

	"github.com/rs/zerolog/log"
)

// storeImage resizes an upload and saves it under folder, returning the storage key.
func storeImage(ctx context.Context, st storage.Storage, up *Upload, folder string, bound int, field string) (string, error) {
	data, err := storage.PrepareImage(up.Data, bound)
	if err != nil {
		return "", fieldError(field, err)
	}
	key, err := st.Put(ctx, storage.NewKey(folder, ".jpg"), data, "image/jpeg")
	if err != nil {
		return "", fmt.Errorf("store %s: %w", field, err)
	}
	return key, nil
}

// dropImage removes a replaced or orphaned file. Failures leave garbage behind, nothing worse.
func dropImage(ctx context.Context, st storage.Storage, key string) {
	if key == "" {
		return
	}
	if err := st.Delete(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to delete media file")
	}
}
