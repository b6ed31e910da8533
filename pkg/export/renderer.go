package export

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/protoboard/pkg/diagram"
	"github.com/platinummonkey/protoboard/pkg/observability"
	"github.com/platinummonkey/protoboard/pkg/protogen"
	"github.com/platinummonkey/protoboard/pkg/schema"
)

var exportTracer = observability.Tracer("export")

const cacheType = "render"

// Renderer produces Artifacts from a forest, caching results by content
type Renderer struct {
	cache   *lru.LRU[string, Artifacts]
	metrics *observability.Metrics
}

// NewRenderer creates a renderer holding up to size results for ttl. A
// size of zero or less disables caching. metrics may be nil.
func NewRenderer(size int, ttl time.Duration, metrics *observability.Metrics) *Renderer {
	r := &Renderer{metrics: metrics}
	if size > 0 {
		r.cache = lru.NewLRU[string, Artifacts](size, nil, ttl)
	}
	return r
}

// Render generates the proto3 source and the sequence diagram for
// elements. The elements must not be mutated while Render runs; pass a
// session snapshot.
func (r *Renderer) Render(ctx context.Context, elements []schema.Element) (*Artifacts, error) {
	ctx, span := exportTracer.Start(ctx, "Render",
		trace.WithAttributes(attribute.Int("elements.count", len(elements))),
	)
	defer span.End()

	key, err := cacheKey(elements)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to build cache key")
		r.recordRender("error")
		return nil, err
	}

	if r.cache != nil {
		if cached, ok := r.cache.Get(key); ok {
			r.recordCache(true)
			r.recordRender("cached")
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return &cached, nil
		}
		r.recordCache(false)
	}

	out := Artifacts{Stem: protogen.ServiceNameForFile(elements)}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		out.Proto = protogen.Generate(elements)
		r.observeDuration("proto", start)
		return nil
	})
	eg.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		out.Diagram = diagram.Generate(elements)
		r.observeDuration("diagram", start)
		return nil
	})

	if err := eg.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "render cancelled")
		r.recordRender("error")
		return nil, err
	}

	if r.cache != nil {
		r.cache.Add(key, out)
	}
	r.recordRender("success")
	span.SetAttributes(attribute.Bool("cache.hit", false), attribute.String("artifact.stem", out.Stem))
	return &out, nil
}

// Purge drops every cached result
func (r *Renderer) Purge() {
	if r.cache != nil {
		r.cache.Purge()
	}
}

// cacheKey hashes the canonical JSON encoding of the forest
func cacheKey(elements []schema.Element) (string, error) {
	h := sha256.New()
	for i, el := range elements {
		data, err := schema.MarshalElementJSON(el)
		if err != nil {
			return "", fmt.Errorf("failed to encode element %d (%T): %w", i, el, err)
		}
		h.Write(data)
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (r *Renderer) recordRender(status string) {
	if r.metrics != nil {
		r.metrics.RendersTotal.WithLabelValues(status).Inc()
	}
}

func (r *Renderer) recordCache(hit bool) {
	if r.metrics == nil {
		return
	}
	if hit {
		r.metrics.CacheHitsTotal.WithLabelValues(cacheType).Inc()
	} else {
		r.metrics.CacheMissesTotal.WithLabelValues(cacheType).Inc()
	}
}

func (r *Renderer) observeDuration(artifact string, start time.Time) {
	if r.metrics != nil {
		r.metrics.RenderDuration.WithLabelValues(artifact).Observe(time.Since(start).Seconds())
	}
}
