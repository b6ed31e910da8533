package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/platinummonkey/protoboard/pkg/schema"
)

const documentExt = ".json"

// FileSystemStore keeps one JSON document per file under a root directory
type FileSystemStore struct {
	rootDir string
	mu      sync.RWMutex
}

// NewFileSystemStore creates a new filesystem-based store
func NewFileSystemStore(rootDir string) (*FileSystemStore, error) {
	if err := os.MkdirAll(rootDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root directory: %w", err)
	}
	return &FileSystemStore{rootDir: rootDir}, nil
}

func (s *FileSystemStore) path(id string) string {
	return filepath.Join(s.rootDir, id+documentExt)
}

// Save writes the document atomically through a temp file and rename
func (s *FileSystemStore) Save(ctx context.Context, doc *schema.Document) error {
	if err := ValidateID(doc.ID); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	doc.UpdatedAt = time.Now().UTC()
	data, err := schema.EncodeDocument(doc, schema.FormatJSON)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.rootDir, "."+doc.ID+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write document file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close document file: %w", err)
	}
	if err := os.Rename(tmpName, s.path(doc.ID)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to rename document file: %w", err)
	}

	return nil
}

// Load implements DocumentReader.Load
func (s *FileSystemStore) Load(ctx context.Context, id string) (*schema.Document, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	data, err := os.ReadFile(s.path(id))
	s.mu.RUnlock()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, notFound(id)
	} else if err != nil {
		return nil, fmt.Errorf("failed to read document file: %w", err)
	}

	doc, err := schema.DecodeDocument(data, schema.FormatJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal document %s: %w", id, err)
	}
	if doc.ID == "" {
		doc.ID = id
	}
	return doc, nil
}

// List returns summaries ordered by most recent update, then id
func (s *FileSystemStore) List(ctx context.Context) ([]Summary, error) {
	s.mu.RLock()
	entries, err := os.ReadDir(s.rootDir)
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("failed to read root directory: %w", err)
	}

	summaries := make([]Summary, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, documentExt) || strings.HasPrefix(name, ".") {
			continue
		}

		doc, err := s.Load(ctx, strings.TrimSuffix(name, documentExt))
		if err != nil {
			return nil, fmt.Errorf("failed to load document %s: %w", name, err)
		}
		summaries = append(summaries, Summary{ID: doc.ID, Name: doc.Name, UpdatedAt: doc.UpdatedAt})
	}

	sortSummaries(summaries)
	return summaries, nil
}

// Delete implements DocumentWriter.Delete
func (s *FileSystemStore) Delete(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return notFound(id)
	} else if err != nil {
		return fmt.Errorf("failed to delete document file: %w", err)
	}
	return nil
}

// HealthCheck verifies the root directory is still present
func (s *FileSystemStore) HealthCheck(ctx context.Context) error {
	info, err := os.Stat(s.rootDir)
	if err != nil {
		return fmt.Errorf("storage root unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("storage root %s is not a directory", s.rootDir)
	}
	return nil
}

// Close implements Store.Close
func (s *FileSystemStore) Close() error {
	return nil
}

func sortSummaries(summaries []Summary) {
	sort.Slice(summaries, func(i, j int) bool {
		if !summaries[i].UpdatedAt.Equal(summaries[j].UpdatedAt) {
			return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
		}
		return summaries[i].ID < summaries[j].ID
	})
}
