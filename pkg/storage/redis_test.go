package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/protoboard/pkg/schema"
)

func setupRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	cache, err := NewRedisCache(Config{
		RedisURL:        "redis://" + mr.Addr(),
		RedisMaxRetries: 1,
		RedisPoolSize:   5,
		CacheTTL:        time.Hour,
	})
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache, mr
}

// countingStore records how often the backing store is read
type countingStore struct {
	Store
	loads int
}

func (s *countingStore) Load(ctx context.Context, id string) (*schema.Document, error) {
	s.loads++
	return s.Store.Load(ctx, id)
}

func TestNewRedisCache_InvalidURL(t *testing.T) {
	_, err := NewRedisCache(Config{RedisURL: "invalid://url"})
	assert.Error(t, err)
}

func TestNewRedisCache_ConnectionFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisCache(Config{RedisURL: "redis://" + addr})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to redis")
}

func TestRedisCache_Documents(t *testing.T) {
	cache, mr := setupRedisCache(t)
	ctx := context.Background()

	doc, err := cache.GetDocument(ctx, "greeter")
	require.NoError(t, err)
	assert.Nil(t, doc, "miss returns nil")

	require.NoError(t, cache.SetDocument(ctx, testDocument("greeter", "Greeter")))
	assert.True(t, mr.Exists(documentKey("greeter")))
	assert.Equal(t, time.Hour, mr.TTL(documentKey("greeter")))

	doc, err = cache.GetDocument(ctx, "greeter")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "Greeter", doc.Name)
	assert.Len(t, doc.Elements, 2)

	require.NoError(t, cache.InvalidateDocument(ctx, "greeter"))
	assert.False(t, mr.Exists(documentKey("greeter")))
}

func TestRedisCache_CorruptEntryIsDropped(t *testing.T) {
	cache, mr := setupRedisCache(t)
	require.NoError(t, mr.Set(documentKey("broken"), "{not json"))

	_, err := cache.GetDocument(context.Background(), "broken")
	assert.Error(t, err)
	assert.False(t, mr.Exists(documentKey("broken")))
}

func TestCachedStore_Contract(t *testing.T) {
	cache, _ := setupRedisCache(t)
	backing, err := NewFileSystemStore(t.TempDir())
	require.NoError(t, err)

	testStoreContract(t, NewCachedStore(backing, cache))
}

func TestCachedStore_ReadThrough(t *testing.T) {
	cache, mr := setupRedisCache(t)
	fs, err := NewFileSystemStore(t.TempDir())
	require.NoError(t, err)
	backing := &countingStore{Store: fs}
	store := NewCachedStore(backing, cache)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testDocument("greeter", "Greeter")))
	assert.False(t, mr.Exists(documentKey("greeter")))

	_, err = store.Load(ctx, "greeter")
	require.NoError(t, err)
	_, err = store.Load(ctx, "greeter")
	require.NoError(t, err)
	assert.Equal(t, 1, backing.loads)
	assert.True(t, mr.Exists(documentKey("greeter")))

	// a save invalidates, so the next load goes back to the store
	require.NoError(t, store.Save(ctx, testDocument("greeter", "Renamed")))
	doc, err := store.Load(ctx, "greeter")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", doc.Name)
	assert.Equal(t, 2, backing.loads)

	require.NoError(t, store.Delete(ctx, "greeter"))
	assert.False(t, mr.Exists(documentKey("greeter")))
	_, err = store.Load(ctx, "greeter")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCachedStore_RedisDownFallsThrough(t *testing.T) {
	cache, mr := setupRedisCache(t)
	backing, err := NewFileSystemStore(t.TempDir())
	require.NoError(t, err)
	store := NewCachedStore(backing, cache)
	ctx := context.Background()

	require.NoError(t, backing.Save(ctx, testDocument("greeter", "Greeter")))
	mr.Close()

	doc, err := store.Load(ctx, "greeter")
	require.NoError(t, err)
	assert.Equal(t, "Greeter", doc.Name)

	assert.Error(t, store.HealthCheck(ctx))
}
