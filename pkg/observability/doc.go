// Package observability provides structured logging, Prometheus metrics, OpenTelemetry
// tracing, health checks and graceful shutdown for the protoboard server.
//
// # Structured Logging
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.WithField("document_id", id).Info("session opened")
//
// Request-scoped loggers pick up request, document and trace ids from the context:
//
//	observability.FromContext(ctx).WithError(err).Error("save failed")
//
// # Prometheus Metrics
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	router.Use(observability.HTTPMetricsMiddleware(metrics))
//	observability.RegisterMetricsEndpoint(router, registry)
//
// HTTP metrics are labelled by mux route template rather than raw path.
//
// # Health Checks
//
//	checker := observability.NewHealthChecker(version).
//		Require("storage", store.HealthCheck).
//		Optional("redis", observability.RedisCheck(redisClient))
//	observability.RegisterHealthRoutes(router, checker)
//
// # OpenTelemetry
//
//	telemetry, err := observability.InitOTel(ctx, observability.OTelConfig{
//		Enabled:     true,
//		Endpoint:    "otel-collector:4317",
//		SampleRatio: 0.1,
//	}, logger)
//	defer telemetry.Shutdown(ctx)
//
// Components take their tracer from Tracer, e.g. Tracer("session"), so spans
// are named protoboard/<component> and stay no-ops while telemetry is off.
//
// # Related Packages
//
//   - pkg/config: observability configuration
//   - pkg/session: emits spans and model operation metrics
package observability
