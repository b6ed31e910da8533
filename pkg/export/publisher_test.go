package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/protoboard/pkg/storage"
)

func testArtifacts() *Artifacts {
	return &Artifacts{
		Stem:    "greeter",
		Proto:   "syntax = \"proto3\";\n",
		Diagram: "sequenceDiagram\n",
	}
}

func TestDirPublisher(t *testing.T) {
	root := filepath.Join(t.TempDir(), "out")
	p, err := NewDirPublisher(root)
	require.NoError(t, err)

	written, err := p.Publish(context.Background(), "doc-1", testArtifacts())
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "doc-1", "greeter.mmd"),
		filepath.Join(root, "doc-1", "greeter.proto"),
	}, written)

	data, err := os.ReadFile(filepath.Join(root, "doc-1", "greeter.proto"))
	require.NoError(t, err)
	assert.Equal(t, "syntax = \"proto3\";\n", string(data))

	// republishing overwrites and leaves no temp files
	artifacts := testArtifacts()
	artifacts.Diagram = "sequenceDiagram\n  participant Client\n"
	_, err = p.Publish(context.Background(), "doc-1", artifacts)
	require.NoError(t, err)

	data, err = os.ReadFile(filepath.Join(root, "doc-1", "greeter.mmd"))
	require.NoError(t, err)
	assert.Equal(t, artifacts.Diagram, string(data))

	entries, err := os.ReadDir(filepath.Join(root, "doc-1"))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestDirPublisher_InvalidID(t *testing.T) {
	p, err := NewDirPublisher(t.TempDir())
	require.NoError(t, err)

	_, err = p.Publish(context.Background(), "../escape", testArtifacts())
	assert.ErrorIs(t, err, storage.ErrInvalidID)
}

func TestDirPublisher_Cancelled(t *testing.T) {
	p, err := NewDirPublisher(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	written, err := p.Publish(ctx, "doc", testArtifacts())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, written)
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")

	require.NoError(t, WriteFileAtomic(path, []byte("one")))
	require.NoError(t, WriteFileAtomic(path, []byte("two")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())

	assert.Error(t, WriteFileAtomic(filepath.Join(t.TempDir(), "missing", "file.txt"), []byte("x")))
}

func TestArtifactsFiles(t *testing.T) {
	files := testArtifacts().Files()
	assert.Equal(t, map[string]string{
		"greeter.proto": "syntax = \"proto3\";\n",
		"greeter.mmd":   "sequenceDiagram\n",
	}, files)
}
