package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/platinummonkey/protoboard/pkg/schema"
)

const createDocumentsTable = `
	CREATE TABLE IF NOT EXISTS schema_documents (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL DEFAULT '',
		body       TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)
`

// SQLStore keeps documents in a single schema_documents table. Writes go
// to the primary, reads to a replica when one is configured.
type SQLStore struct {
	conns *ConnectionManager
}

// NewSQLStore opens the connections and creates the table if needed
func NewSQLStore(ctx context.Context, config ConnectionConfig) (*SQLStore, error) {
	conns, err := NewConnectionManager(config)
	if err != nil {
		return nil, err
	}

	s := NewSQLStoreWithConnections(conns)
	if err := s.Migrate(ctx); err != nil {
		conns.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLStoreWithConnections builds a store over existing connections
// without touching the database
func NewSQLStoreWithConnections(conns *ConnectionManager) *SQLStore {
	return &SQLStore{conns: conns}
}

// Migrate creates the documents table
func (s *SQLStore) Migrate(ctx context.Context) error {
	if _, err := s.conns.Primary().ExecContext(ctx, createDocumentsTable); err != nil {
		return fmt.Errorf("failed to create schema_documents table: %w", err)
	}
	return nil
}

// rebind rewrites $N placeholders into the driver's dialect
func (s *SQLStore) rebind(query string) string {
	if s.conns.Driver() != DriverSQLite {
		return query
	}

	var b strings.Builder
	for i := 0; i < len(query); i++ {
		if query[i] == '$' {
			j := i + 1
			for j < len(query) && query[j] >= '0' && query[j] <= '9' {
				j++
			}
			if j > i+1 {
				b.WriteByte('?')
				i = j - 1
				continue
			}
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// Save upserts the document
func (s *SQLStore) Save(ctx context.Context, doc *schema.Document) error {
	if err := ValidateID(doc.ID); err != nil {
		return err
	}

	doc.UpdatedAt = time.Now().UTC()
	body, err := schema.EncodeDocument(doc, schema.FormatJSON)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	query := s.rebind(`
		INSERT INTO schema_documents (id, name, body, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET name = excluded.name, body = excluded.body, updated_at = excluded.updated_at
	`)

	if _, err := s.conns.Primary().ExecContext(ctx, query, doc.ID, doc.Name, string(body), doc.UpdatedAt); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

// Load implements DocumentReader.Load
func (s *SQLStore) Load(ctx context.Context, id string) (*schema.Document, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}

	query := s.rebind(`SELECT body FROM schema_documents WHERE id = $1`)

	var body string
	err := s.conns.Replica().QueryRowContext(ctx, query, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	} else if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	doc, err := schema.DecodeDocument([]byte(body), schema.FormatJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal document %s: %w", id, err)
	}
	if doc.ID == "" {
		doc.ID = id
	}
	return doc, nil
}

// List implements DocumentReader.List
func (s *SQLStore) List(ctx context.Context) ([]Summary, error) {
	query := `
		SELECT id, name, updated_at
		FROM schema_documents
		ORDER BY updated_at DESC, id
	`

	rows, err := s.conns.Replica().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	summaries := []Summary{}
	for rows.Next() {
		var sum Summary
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		sum.UpdatedAt = sum.UpdatedAt.UTC()
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}

	return summaries, nil
}

// Delete implements DocumentWriter.Delete
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}

	query := s.rebind(`DELETE FROM schema_documents WHERE id = $1`)

	result, err := s.conns.Primary().ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return notFound(id)
	}
	return nil
}

// HealthCheck implements HealthChecker
func (s *SQLStore) HealthCheck(ctx context.Context) error {
	return s.conns.HealthCheck(ctx)
}

// Close implements Store.Close
func (s *SQLStore) Close() error {
	return s.conns.Close()
}
