package storage

import (
	"context"
	"fmt"
)

// New builds the backend named by config.Type and wraps it with the Redis
// cache when caching is enabled
func New(ctx context.Context, config Config) (Store, error) {
	var (
		store Store
		err   error
	)

	switch config.Type {
	case "", TypeFilesystem:
		store, err = NewFileSystemStore(config.FilesystemRoot)
	case TypePostgres:
		store, err = NewSQLStore(ctx, ConnectionConfig{
			Driver:      DriverPostgres,
			PrimaryURL:  config.PostgresURL,
			ReplicaURLs: config.PostgresReplicaURLs,
			MaxConns:    config.PostgresMaxConns,
			MinConns:    config.PostgresMinConns,
			Timeout:     config.PostgresTimeout,
		})
	case TypeSQLite:
		store, err = NewSQLStore(ctx, ConnectionConfig{
			Driver:     DriverSQLite,
			PrimaryURL: config.SQLitePath,
		})
	default:
		return nil, fmt.Errorf("unknown storage type: %s", config.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s storage: %w", config.Type, err)
	}

	if !config.CacheEnabled || config.RedisURL == "" {
		return store, nil
	}

	cache, err := NewRedisCache(config)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create redis cache: %w", err)
	}
	return NewCachedStore(store, cache), nil
}
