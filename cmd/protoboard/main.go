package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/platinummonkey/protoboard/pkg/api"
	"github.com/platinummonkey/protoboard/pkg/config"
	"github.com/platinummonkey/protoboard/pkg/export"
	"github.com/platinummonkey/protoboard/pkg/httputil"
	"github.com/platinummonkey/protoboard/pkg/observability"
	"github.com/platinummonkey/protoboard/pkg/session"
	"github.com/platinummonkey/protoboard/pkg/storage"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "protoboard: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Flags override the matching environment variables
	port := flag.String("port", "", "Port to listen on (overrides PROTOBOARD_PORT)")
	storageDir := flag.String("storage-dir", "", "Directory for filesystem storage (overrides PROTOBOARD_FILESYSTEM_ROOT)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *storageDir != "" {
		cfg.Storage.FilesystemRoot = *storageDir
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)
	ctx := context.Background()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	serviceVersion := cfg.Observability.OTelServiceVersion
	if serviceVersion == "" {
		serviceVersion = version
	}
	telemetry, err := observability.InitOTel(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: serviceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
		SampleRatio:    cfg.Observability.OTelSampleRatio,
		Attributes: map[string]string{
			"storage": cfg.Storage.Type,
			"publish": cfg.Export.PublishType,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	logger.WithField("type", cfg.Storage.Type).Info("Storage initialized")

	publisher, err := newPublisher(ctx, cfg.Export)
	if err != nil {
		store.Close()
		return err
	}

	sessions := session.NewManager(store, logger, metrics)
	renderer := export.NewRenderer(cfg.Export.CacheSize, cfg.Export.CacheTTL, metrics)

	server := api.NewServer(sessions, renderer, publisher, logger)
	router := server.Router()
	router.Use(observability.HTTPMetricsMiddleware(metrics))

	checker := observability.NewHealthChecker(version).Require("storage", store.HealthCheck)
	if redisClient := redisClientFor(store); redisClient != nil {
		checker.Optional("redis", observability.RedisCheck(redisClient))
	}
	observability.RegisterHealthRoutes(router, checker)
	if cfg.Observability.MetricsEnabled {
		observability.RegisterMetricsEndpoint(router, registry)
	}

	handler := httputil.Chain(
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(logger),
		httputil.RecoveryMiddleware(logger),
		httputil.ContentTypeMiddleware,
		httputil.MaxBytesMiddleware(cfg.Server.MaxBodyBytes),
	)(server)

	httpServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      otelhttp.NewHandler(handler, "protoboard"),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := observability.NewShutdownManager(logger, httpServer, cfg.Server.ShutdownTimeout)

	if cfg.Session.AutosaveEnabled {
		autosaver, err := session.NewAutosaver(sessions, cfg.Session.AutosaveSchedule, logger, metrics)
		if err != nil {
			store.Close()
			return err
		}
		autosaver.Start()
		shutdown.RegisterShutdownFunc("autosave", autosaver.Stop)
	} else {
		shutdown.RegisterShutdownFunc("flush sessions", func(ctx context.Context) error {
			_, err := sessions.SaveAll(ctx)
			return err
		})
	}
	shutdown.RegisterShutdownFunc("storage", func(context.Context) error {
		return store.Close()
	})
	shutdown.RegisterShutdownFunc("opentelemetry", telemetry.Shutdown)

	go func() {
		defer observability.RecoverPanic(logger, "http server")

		logger.WithFields(map[string]interface{}{
			"addr":    httpServer.Addr,
			"version": version,
			"publish": cfg.Export.PublishType,
		}).Info("Starting protoboard server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("HTTP server failed")
			os.Exit(1)
		}
	}()

	return shutdown.WaitForShutdown()
}

// newPublisher builds the configured artifact publisher. A nil publisher
// disables the publish endpoint.
func newPublisher(ctx context.Context, cfg config.ExportConfig) (export.Publisher, error) {
	switch cfg.PublishType {
	case config.PublishNone:
		return nil, nil
	case config.PublishDir:
		publisher, err := export.NewDirPublisher(cfg.PublishDir)
		if err != nil {
			return nil, err
		}
		return publisher, nil
	case config.PublishS3:
		publisher, err := export.NewS3Publisher(ctx, export.S3Config{
			Endpoint:     cfg.S3Endpoint,
			Region:       cfg.S3Region,
			Bucket:       cfg.S3Bucket,
			Prefix:       cfg.S3Prefix,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			UsePathStyle: cfg.S3UsePathStyle,
			CreateBucket: cfg.S3CreateBucket,
		})
		if err != nil {
			return nil, err
		}
		return publisher, nil
	default:
		return nil, fmt.Errorf("unknown publish type: %s", cfg.PublishType)
	}
}
