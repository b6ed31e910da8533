package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/platinummonkey/protoboard/pkg/schema"
)

const documentKeyPrefix = "protoboard:document:"

// RedisCache stores encoded documents in Redis
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to Redis using the cache settings in config
func NewRedisCache(config Config) (*RedisCache, error) {
	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	// Override with config values if provided
	if config.RedisPassword != "" {
		opts.Password = config.RedisPassword
	}
	if config.RedisDB > 0 {
		opts.DB = config.RedisDB
	}
	if config.RedisMaxRetries > 0 {
		opts.MaxRetries = config.RedisMaxRetries
	}
	if config.RedisPoolSize > 0 {
		opts.PoolSize = config.RedisPoolSize
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolTimeout = 4 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{client: client, ttl: config.CacheTTL}, nil
}

func documentKey(id string) string {
	return documentKeyPrefix + id
}

// GetDocument returns nil, nil on a cache miss
func (c *RedisCache) GetDocument(ctx context.Context, id string) (*schema.Document, error) {
	key := documentKey(id)

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	doc, err := schema.DecodeDocument(data, schema.FormatJSON)
	if err != nil {
		// corrupt entries are dropped so the next read refills them
		c.client.Del(ctx, key)
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}

	return doc, nil
}

// SetDocument caches the document for the configured TTL
func (c *RedisCache) SetDocument(ctx context.Context, doc *schema.Document) error {
	data, err := schema.EncodeDocument(doc, schema.FormatJSON)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	return c.client.Set(ctx, documentKey(doc.ID), data, c.ttl).Err()
}

// InvalidateDocument removes a document from cache
func (c *RedisCache) InvalidateDocument(ctx context.Context, id string) error {
	return c.client.Del(ctx, documentKey(id)).Err()
}

// Ping checks Redis connectivity
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// GetClient returns the underlying Redis client for health checks
func (c *RedisCache) GetClient() *redis.Client {
	return c.client
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// CachedStore is a read-through cache in front of another Store. Cache
// failures never fail a read; they fall through to the backing store.
type CachedStore struct {
	store Store
	cache *RedisCache
}

// NewCachedStore wraps store with cache
func NewCachedStore(store Store, cache *RedisCache) *CachedStore {
	return &CachedStore{store: store, cache: cache}
}

// Save writes through and drops the cached copy
func (s *CachedStore) Save(ctx context.Context, doc *schema.Document) error {
	if err := s.store.Save(ctx, doc); err != nil {
		return err
	}
	if err := s.cache.InvalidateDocument(ctx, doc.ID); err != nil {
		return fmt.Errorf("failed to invalidate cached document: %w", err)
	}
	return nil
}

// Load serves from cache and fills it on a miss
func (s *CachedStore) Load(ctx context.Context, id string) (*schema.Document, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}

	if doc, err := s.cache.GetDocument(ctx, id); err == nil && doc != nil {
		return doc, nil
	}

	doc, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.SetDocument(ctx, doc)
	return doc, nil
}

// List always reads the backing store
func (s *CachedStore) List(ctx context.Context) ([]Summary, error) {
	return s.store.List(ctx)
}

// Delete removes from the backing store, then from cache
func (s *CachedStore) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.cache.InvalidateDocument(ctx, id); err != nil {
		return fmt.Errorf("failed to invalidate cached document: %w", err)
	}
	return nil
}

// HealthCheck requires both the store and Redis
func (s *CachedStore) HealthCheck(ctx context.Context) error {
	if err := s.store.HealthCheck(ctx); err != nil {
		return err
	}
	if err := s.cache.Ping(ctx); err != nil {
		return fmt.Errorf("redis unhealthy: %w", err)
	}
	return nil
}

// Close closes the backing store and the cache
func (s *CachedStore) Close() error {
	return errors.Join(s.store.Close(), s.cache.Close())
}

// Cache returns the Redis cache, for health checks
func (s *CachedStore) Cache() *RedisCache {
	return s.cache
}
