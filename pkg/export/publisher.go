package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/platinummonkey/protoboard/pkg/storage"
)

// Publisher delivers rendered artifacts for a document somewhere outside
// the editor. Publish returns the locations it wrote.
type Publisher interface {
	Publish(ctx context.Context, docID string, artifacts *Artifacts) ([]string, error)
}

// DirPublisher writes artifacts to <root>/<docID>/
type DirPublisher struct {
	root string
}

// NewDirPublisher creates a publisher rooted at root, creating it if needed
func NewDirPublisher(root string) (*DirPublisher, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create publish directory: %w", err)
	}
	return &DirPublisher{root: root}, nil
}

// Publish writes the proto source and the diagram, replacing earlier versions
func (p *DirPublisher) Publish(ctx context.Context, docID string, artifacts *Artifacts) ([]string, error) {
	if err := storage.ValidateID(docID); err != nil {
		return nil, err
	}

	dir := filepath.Join(p.root, docID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create document directory: %w", err)
	}

	files := artifacts.Files()
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	written := make([]string, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		path := filepath.Join(dir, name)
		if err := WriteFileAtomic(path, []byte(files[name])); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// WriteFileAtomic writes data to a temporary file next to path and renames
// it into place
func WriteFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to rename %s: %w", path, err)
	}
	return nil
}
