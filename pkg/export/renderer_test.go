package export

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/protoboard/pkg/diagram"
	"github.com/platinummonkey/protoboard/pkg/observability"
	"github.com/platinummonkey/protoboard/pkg/protogen"
	"github.com/platinummonkey/protoboard/pkg/schema"
)

func greeterElements() []schema.Element {
	greeter := schema.NewService("HelloWorldService")
	greeter.Methods = append(greeter.Methods, schema.NewRPCMethod("SayHello", "HelloRequest", "HelloReply"))
	request := schema.NewMessage("HelloRequest").AddField(schema.NewField("name", "string", 1))
	reply := schema.NewMessage("HelloReply").AddField(schema.NewField("message", "string", 1))
	return []schema.Element{greeter, request, reply}
}

func TestRender(t *testing.T) {
	elements := greeterElements()
	r := NewRenderer(0, 0, nil)

	artifacts, err := r.Render(context.Background(), elements)
	require.NoError(t, err)

	assert.Equal(t, "hello_world_service", artifacts.Stem)
	assert.Equal(t, protogen.Generate(elements), artifacts.Proto)
	assert.Equal(t, diagram.Generate(elements), artifacts.Diagram)
	assert.Equal(t, "hello_world_service.proto", artifacts.ProtoFileName())
	assert.Equal(t, "hello_world_service.mmd", artifacts.DiagramFileName())
}

func TestRender_EmptyForest(t *testing.T) {
	artifacts, err := NewRenderer(8, time.Minute, nil).Render(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, protogen.DefaultFileStem, artifacts.Stem)
	assert.Equal(t, "syntax = \"proto3\";\n", artifacts.Proto)
	assert.Equal(t, diagram.Header+"\n", artifacts.Diagram)
}

func TestRender_Cache(t *testing.T) {
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	r := NewRenderer(8, time.Minute, metrics)
	elements := greeterElements()
	ctx := context.Background()

	first, err := r.Render(ctx, elements)
	require.NoError(t, err)
	second, err := r.Render(ctx, schema.CloneElements(elements))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotSame(t, first, second)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheHitsTotal.WithLabelValues(cacheType)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheMissesTotal.WithLabelValues(cacheType)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RendersTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RendersTotal.WithLabelValues("cached")))

	// a changed forest misses
	elements[1].(*schema.Message).Name = "GreetRequest"
	third, err := r.Render(ctx, elements)
	require.NoError(t, err)
	assert.Contains(t, third.Proto, "message GreetRequest {")
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.CacheMissesTotal.WithLabelValues(cacheType)))

	// callers cannot poison the cache
	third.Proto = "garbage"
	fourth, err := r.Render(ctx, elements)
	require.NoError(t, err)
	assert.Contains(t, fourth.Proto, "message GreetRequest {")

	r.Purge()
	_, err = r.Render(ctx, elements)
	require.NoError(t, err)
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.CacheMissesTotal.WithLabelValues(cacheType)))
}

func TestRender_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRenderer(8, time.Minute, nil).Render(ctx, greeterElements())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRender_Concurrent(t *testing.T) {
	r := NewRenderer(8, time.Minute, nil)
	elements := greeterElements()
	want := protogen.Generate(elements)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			artifacts, err := r.Render(context.Background(), elements)
			assert.NoError(t, err)
			assert.Equal(t, want, artifacts.Proto)
		}()
	}
	wg.Wait()
}

func TestCacheKey(t *testing.T) {
	a, err := cacheKey(greeterElements())
	require.NoError(t, err)
	assert.Len(t, a, 64)

	elements := greeterElements()
	b, err := cacheKey(elements)
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "fresh ids give a different key")

	c, err := cacheKey(schema.CloneElements(elements))
	require.NoError(t, err)
	assert.Equal(t, b, c)
}

func TestRender_NilElement(t *testing.T) {
	r := NewRenderer(4, time.Minute, nil)
	var missing *schema.Message

	for _, elements := range [][]schema.Element{{nil}, {missing}, append(greeterElements(), nil)} {
		artifacts, err := r.Render(context.Background(), elements)
		require.Error(t, err)
		assert.Nil(t, artifacts)
		assert.Contains(t, err.Error(), "failed to encode element")
	}
}
