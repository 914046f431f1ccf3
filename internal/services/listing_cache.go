package services

import (
	"context"
	"fmt"
	"time"

	"inkwell/internal/cache"

	"github.com/rs/zerolog/log"
)

const postCachePrefix = "posts:"

// listingCache keeps pages of the published listing. Keys carry the namespace generation,
// read before the query runs, so a page computed before a write is stored under a key
// nobody asks for once the write has bumped the generation.
type listingCache struct {
	cache cache.Cache
	ttl   time.Duration
}

func newListingCache(c cache.Cache, ttl time.Duration) *listingCache {
	return &listingCache{cache: c, ttl: ttl}
}

// load looks up page number. It returns the key a freshly built page should be stored
// under; an empty key means the cache is unavailable.
func (l *listingCache) load(ctx context.Context, number int, dest *PostPage) (string, bool) {
	gen, err := l.cache.Generation(ctx, postCachePrefix)
	if err != nil {
		log.Warn().Err(err).Msg("Post cache generation read failed")
		return "", false
	}
	key := fmt.Sprintf("%spublished:g%d:p%d", postCachePrefix, gen, number)

	ok, err := l.cache.Get(ctx, key, dest)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Post cache read failed")
		return key, false
	}
	return key, ok
}

func (l *listingCache) store(ctx context.Context, key string, page *PostPage) {
	if key == "" {
		return
	}
	if err := l.cache.Set(ctx, key, page, l.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Post cache write failed")
	}
}

// invalidate is called after any write that changes what the listing shows:
// posts, active comment counts, author names.
func (l *listingCache) invalidate(ctx context.Context) {
	if err := l.cache.Bump(ctx, postCachePrefix); err != nil {
		log.Warn().Err(err).Msg("Failed to bump post cache generation")
	}
	// Orphaned pages would expire anyway; dropping them frees the space now.
	if err := l.cache.DeletePrefix(ctx, postCachePrefix); err != nil {
		log.Warn().Err(err).Msg("Failed to invalidate post cache")
	}
}
