package observability

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(context.Context) error { return nil }

func failing(msg string) CheckFunc {
	return func(context.Context) error { return errors.New(msg) }
}

func newRedisClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestHealthChecker_Check(t *testing.T) {
	t.Run("no dependencies", func(t *testing.T) {
		status := NewHealthChecker("v1").Check(context.Background())
		assert.Equal(t, StatusHealthy, status.Status)
		assert.Equal(t, "v1", status.Version)
		assert.Empty(t, status.Dependencies)
	})

	t.Run("all healthy", func(t *testing.T) {
		client, _ := newRedisClient(t)
		status := NewHealthChecker("v1").
			Require("storage", ok).
			Optional("redis", RedisCheck(client)).
			Check(context.Background())
		assert.Equal(t, StatusHealthy, status.Status)
		assert.True(t, status.Dependencies["storage"].Required)
		assert.Equal(t, StatusHealthy, status.Dependencies["redis"].Status)
		assert.False(t, status.Dependencies["redis"].Required)
	})

	t.Run("required down", func(t *testing.T) {
		status := NewHealthChecker("").Require("storage", failing("disk gone")).Check(context.Background())
		assert.Equal(t, StatusUnhealthy, status.Status)
		assert.Equal(t, "disk gone", status.Dependencies["storage"].Message)
	})

	t.Run("optional down degrades", func(t *testing.T) {
		client, mr := newRedisClient(t)
		mr.Close()

		status := NewHealthChecker("").
			Require("storage", ok).
			Optional("redis", RedisCheck(client)).
			Check(context.Background())
		assert.Equal(t, StatusDegraded, status.Status)
		assert.Equal(t, StatusUnhealthy, status.Dependencies["redis"].Status)
	})

	t.Run("required down wins over optional", func(t *testing.T) {
		status := NewHealthChecker("").
			Optional("redis", failing("refused")).
			Require("storage", failing("x")).
			Check(context.Background())
		assert.Equal(t, StatusUnhealthy, status.Status)
	})
}

func TestHealthRoutes(t *testing.T) {
	router := mux.NewRouter()
	RegisterHealthRoutes(router, NewHealthChecker("").Require("storage", failing("down")))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, StatusUnhealthy, status.Status)
	assert.Equal(t, "down", status.Dependencies["storage"].Message)
}
