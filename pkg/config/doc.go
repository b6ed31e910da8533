// Package config loads protoboard server configuration from environment variables.
//
// Every variable carries the PROTOBOARD_ prefix and has a default.
//
// Server settings:
//
//	PROTOBOARD_HOST="0.0.0.0"
//	PROTOBOARD_PORT="8080"
//	PROTOBOARD_READ_TIMEOUT="15s"
//	PROTOBOARD_MAX_BODY_BYTES="1048576"
//
// Storage settings:
//
//	PROTOBOARD_STORAGE_TYPE="sqlite"  # filesystem, postgres, sqlite
//	PROTOBOARD_FILESYSTEM_ROOT="/var/lib/protoboard"
//	PROTOBOARD_POSTGRES_URL="postgres://localhost/protoboard"
//	PROTOBOARD_POSTGRES_REPLICA_URLS="postgres://replica1/protoboard,postgres://replica2/protoboard"
//	PROTOBOARD_SQLITE_PATH="protoboard.db"
//	PROTOBOARD_CACHE_ENABLED="true"
//	PROTOBOARD_REDIS_URL="redis://localhost:6379"
//
// Sessions and export:
//
//	PROTOBOARD_AUTOSAVE_SCHEDULE="@every 30s"
//	PROTOBOARD_RENDER_CACHE_SIZE="256"
//	PROTOBOARD_PUBLISH_TYPE="s3"  # dir, s3
//	PROTOBOARD_S3_BUCKET="schema-artifacts"
//
// Observability settings:
//
//	PROTOBOARD_LOG_LEVEL="info"  # debug, info, warn, error
//	PROTOBOARD_OTEL_ENABLED="true"
//	PROTOBOARD_OTEL_ENDPOINT="otel-collector:4317"
//
// Usage:
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
package config
