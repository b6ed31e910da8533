package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/platinummonkey/protoboard/pkg/schema"
)

var (
	// ErrNotFound is returned when no document exists for an id
	ErrNotFound = errors.New("document not found")

	// ErrInvalidID is returned for ids that cannot name a document
	ErrInvalidID = errors.New("invalid document id")
)

// Summary describes a stored document without its elements
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DocumentReader reads persisted schema documents
type DocumentReader interface {
	Load(ctx context.Context, id string) (*schema.Document, error)
	List(ctx context.Context) ([]Summary, error)
}

// DocumentWriter persists and removes schema documents. Save stamps
// UpdatedAt on the document it is given.
type DocumentWriter interface {
	Save(ctx context.Context, doc *schema.Document) error
	Delete(ctx context.Context, id string) error
}

// HealthChecker reports backend availability
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Store is the full persistence contract used by sessions and the API
type Store interface {
	DocumentReader
	DocumentWriter
	HealthChecker
	Close() error
}

// Backend types accepted by Config.Type
const (
	TypeFilesystem = "filesystem"
	TypePostgres   = "postgres"
	TypeSQLite     = "sqlite"
)

// Config for storage backend
type Config struct {
	Type string // "filesystem", "postgres", "sqlite"

	// Filesystem config
	FilesystemRoot string

	// PostgreSQL config
	PostgresURL         string
	PostgresReplicaURLs []string
	PostgresMaxConns    int
	PostgresMinConns    int
	PostgresTimeout     time.Duration

	// SQLite config
	SQLitePath string

	// Redis config
	RedisURL        string
	RedisPassword   string
	RedisDB         int
	RedisMaxRetries int
	RedisPoolSize   int

	// Cache config
	CacheEnabled bool
	CacheTTL     time.Duration
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		Type:             TypeFilesystem,
		FilesystemRoot:   "/tmp/protoboard",
		PostgresMaxConns: 20,
		PostgresMinConns: 2,
		PostgresTimeout:  10 * time.Second,
		SQLitePath:       "protoboard.db",
		RedisDB:          0,
		RedisMaxRetries:  3,
		RedisPoolSize:    10,
		CacheEnabled:     false,
		CacheTTL:         30 * time.Minute,
	}
}

// ValidateID rejects ids that are empty, could escape a storage root, or
// start with a dot. Dot-prefixed names are reserved for the filesystem
// store's temp files and are skipped by List.
func ValidateID(id string) error {
	if id == "" || strings.HasPrefix(id, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	if strings.ContainsAny(id, `/\`) || strings.ContainsRune(id, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

func notFound(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}
