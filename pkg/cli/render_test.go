package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/protoboard/pkg/export"
)

const greeterYAML = `name: greeter
elements:
  - kind: service
    name: HelloWorldService
    methods:
      - name: SayHello
        inputType: HelloRequest
        outputType: HelloReply
  - kind: message
    name: HelloRequest
    fields:
      - name: name
        type: string
        number: 1
  - kind: message
    name: HelloReply
    fields:
      - name: message
        type: string
        number: 1
`

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "greeter.yaml", greeterYAML)
	outDir := filepath.Join(dir, "gen")

	root, out := newTestRoot()
	require.NoError(t, root.ExecuteArgs(context.Background(), []string{"render", "-in", input, "-out", outDir}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, []string{
		filepath.Join(outDir, "hello_world_service.proto"),
		filepath.Join(outDir, "hello_world_service.mmd"),
	}, lines)

	proto, err := os.ReadFile(filepath.Join(outDir, "hello_world_service.proto"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(proto), "syntax = \"proto3\";\n\nservice HelloWorldService {\n"))

	mmd, err := os.ReadFile(filepath.Join(outDir, "hello_world_service.mmd"))
	require.NoError(t, err)
	assert.Contains(t, string(mmd), "  Client->>HelloWorldService: SayHello(HelloRequest)\n")
}

func TestRender_Selection(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "greeter.yaml", greeterYAML)
	renderer := export.NewRenderer(0, 0, nil)

	written, err := Render(context.Background(), renderer, RenderOptions{Input: input, OutputDir: dir, ProtoOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "hello_world_service.proto")}, written)

	written, err = Render(context.Background(), renderer, RenderOptions{Input: input, OutputDir: dir, DiagramOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "hello_world_service.mmd")}, written)
}

func TestRender_Errors(t *testing.T) {
	dir := t.TempDir()
	renderer := export.NewRenderer(0, 0, nil)
	ctx := context.Background()

	tests := map[string]RenderOptions{
		"missing input":  {OutputDir: dir},
		"missing output": {Input: "x.yaml"},
		"both only":      {Input: "x.yaml", OutputDir: dir, ProtoOnly: true, DiagramOnly: true},
		"no such file":   {Input: filepath.Join(dir, "missing.yaml"), OutputDir: dir},
		"bad extension":  {Input: writeInput(t, dir, "schema.txt", greeterYAML), OutputDir: dir},
		"bad document":   {Input: writeInput(t, dir, "bad.yaml", "elements:\n  - kind: oneof\n"), OutputDir: dir},
	}
	for name, opts := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Render(ctx, renderer, opts)
			assert.Error(t, err)
		})
	}
}

func TestNameCommand(t *testing.T) {
	dir := t.TempDir()

	root, out := newTestRoot()
	input := writeInput(t, dir, "greeter.yaml", greeterYAML)
	require.NoError(t, root.ExecuteArgs(context.Background(), []string{"name", "-in", input}))
	assert.Equal(t, "hello_world_service\n", out.String())

	root, out = newTestRoot()
	input = writeInput(t, dir, "enums.json", `{"elements": [{"kind": "enum", "name": "Color"}]}`)
	require.NoError(t, root.ExecuteArgs(context.Background(), []string{"name", "-in", input}))
	assert.Equal(t, "schema\n", out.String())

	root, _ = newTestRoot()
	assert.Error(t, root.ExecuteArgs(context.Background(), []string{"name"}))
}
