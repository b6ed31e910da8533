// Package storage persists schema documents for the editing server.
//
// # Overview
//
// The Store interface is composed from focused capabilities:
//
//   - DocumentReader: Load and List
//   - DocumentWriter: Save and Delete
//   - HealthChecker: backend availability
//
// All methods accept context.Context as the first parameter. A missing
// document is reported as ErrNotFound, and ids that could escape a storage
// root are rejected with ErrInvalidID:
//
//	doc, err := store.Load(ctx, id)
//	if errors.Is(err, storage.ErrNotFound) {
//		// create it
//	}
//
// # Backend Implementations
//
// FileSystemStore writes one JSON file per document under a root
// directory. Writes go through a temp file and rename.
//
//	store, err := storage.NewFileSystemStore("/var/lib/protoboard")
//
// SQLStore keeps documents in a schema_documents table on PostgreSQL
// (lib/pq) or SQLite (go-sqlite3). Reads are spread across read replicas
// when any are configured.
//
//	store, err := storage.NewSQLStore(ctx, storage.ConnectionConfig{
//		Driver:     storage.DriverPostgres,
//		PrimaryURL: "postgres://localhost/protoboard?sslmode=disable",
//	})
//
// CachedStore puts a Redis read-through cache in front of either backend.
// Save and Delete invalidate the cached copy.
//
// # Configuration
//
// New picks the backend from Config.Type and adds the cache when
// Config.CacheEnabled is set:
//
//	cfg := storage.DefaultConfig()
//	cfg.Type = storage.TypeSQLite
//	cfg.SQLitePath = "protoboard.db"
//	store, err := storage.New(ctx, cfg)
//
// # Related Packages
//
//   - pkg/schema: document model and JSON codec
//   - pkg/session: loads and autosaves documents through a Store
package storage
