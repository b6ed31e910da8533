package main

import (
	"github.com/go-redis/redis/v8"

	"github.com/platinummonkey/protoboard/pkg/storage"
)

// redisClientFor returns the cache client behind store, if any
func redisClientFor(store storage.Store) *redis.Client {
	cached, ok := store.(*storage.CachedStore)
	if !ok {
		return nil
	}
	return cached.Cache().GetClient()
}
