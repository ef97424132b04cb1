// internal/repository/cache/document_cache.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bakery-popup/internal/domain/popup"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DocumentCache is a read-through Redis cache in front of a DocumentStore.
// Writes go straight to the store and invalidate the affected keys. Keys
// share a hash tag per collection so invalidation works on a cluster. Redis
// failures never fail a read; the store is the source of truth.
type DocumentCache struct {
	next   popup.DocumentStore
	client redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

func NewDocumentCache(next popup.DocumentStore, client redis.Cmdable, ttl time.Duration, logger *zap.Logger) *DocumentCache {
	return &DocumentCache{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *DocumentCache) List(ctx context.Context, collection string) ([]popup.Document, error) {
	key := listKey(collection)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var docs []popup.Document
		if err := json.Unmarshal(data, &docs); err == nil {
			return docs, nil
		}
		c.logger.Warn("discarding corrupt cache entry", zap.String("key", key))
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	docs, err := c.next.List(ctx, collection)
	if err != nil {
		return nil, err
	}

	c.store(ctx, key, docs)
	return docs, nil
}

func (c *DocumentCache) Get(ctx context.Context, collection, id string) (*popup.Document, error) {
	key := docKey(collection, id)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var doc popup.Document
		if err := json.Unmarshal(data, &doc); err == nil {
			return &doc, nil
		}
		c.logger.Warn("discarding corrupt cache entry", zap.String("key", key))
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	// Misses are not cached so a newly created document shows up at once.
	doc, err := c.next.Get(ctx, collection, id)
	if err != nil {
		return nil, err
	}

	c.store(ctx, key, doc)
	return doc, nil
}

func (c *DocumentCache) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	if err := c.next.Update(ctx, collection, id, fields); err != nil {
		return err
	}
	c.invalidate(ctx, collection, id)
	return nil
}

func (c *DocumentCache) Create(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	if err := c.next.Create(ctx, collection, id, fields); err != nil {
		return err
	}
	c.invalidate(ctx, collection, id)
	return nil
}

func (c *DocumentCache) store(ctx context.Context, key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("failed to marshal cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *DocumentCache) invalidate(ctx context.Context, collection, id string) {
	if err := c.client.Del(ctx, listKey(collection), docKey(collection, id)).Err(); err != nil {
		c.logger.Warn("cache invalidation failed",
			zap.String("collection", collection),
			zap.String("id", id),
			zap.Error(err),
		)
	}
}

func listKey(collection string) string {
	return fmt.Sprintf("popup:{%s}:list", collection)
}

func docKey(collection, id string) string {
	return fmt.Sprintf("popup:{%s}:doc:%s", collection, id)
}
