// internal/extraction/cache/cache.go
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tender-analyzer/internal/common/database"
	"tender-analyzer/internal/common/logger"
	"tender-analyzer/internal/models"
)

const keyPrefix = "requirements:extraction:"

// ExtractionCache stores per-document extraction results in Redis, keyed
// by a hash of the document text. Cache failures are logged and swallowed
// so a degraded Redis never blocks an analysis.
type ExtractionCache struct {
	redis *database.RedisClient
	ttl   time.Duration
	log   logger.Logger
}

// New builds a cache; redis may be nil, in which case every lookup misses.
func New(redisClient *database.RedisClient, ttl time.Duration, log logger.Logger) *ExtractionCache {
	return &ExtractionCache{
		redis: redisClient,
		ttl:   ttl,
		log:   log,
	}
}

// Key derives the cache key for a document text.
func Key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached extraction for the text, or (nil, false) on miss
// or any cache error.
func (c *ExtractionCache) Get(ctx context.Context, text string) (*models.DocumentExtraction, bool) {
	if c == nil || c.redis == nil {
		return nil, false
	}

	key := Key(text)
	raw, err := c.redis.Get(ctx, key)
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("extraction cache read failed", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
		return nil, false
	}

	var extraction models.DocumentExtraction
	if err := json.Unmarshal([]byte(raw), &extraction); err != nil {
		c.log.Warn("extraction cache entry corrupt, dropping", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		// Best effort; the entry will be rewritten on the next extraction.
		_ = c.redis.Del(ctx, key)
		return nil, false
	}

	return &extraction, true
}

// Set stores the extraction for the text. Errors are logged, never returned.
func (c *ExtractionCache) Set(ctx context.Context, text string, extraction *models.DocumentExtraction) {
	if c == nil || c.redis == nil || extraction == nil {
		return
	}

	payload, err := json.Marshal(extraction)
	if err != nil {
		c.log.Warn("extraction cache marshal failed", map[string]interface{}{
			"document_id": extraction.DocumentID,
			"error":       err.Error(),
		})
		return
	}

	key := Key(text)
	if err := c.redis.Set(ctx, key, payload, c.ttl); err != nil {
		c.log.Warn("extraction cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

// Invalidate removes the cached extraction for the text.
func (c *ExtractionCache) Invalidate(ctx context.Context, text string) error {
	if c == nil || c.redis == nil {
		return nil
	}
	if err := c.redis.Del(ctx, Key(text)); err != nil {
		return fmt.Errorf("invalidate extraction cache: %w", err)
	}
	return nil
}
