package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/protoboard/pkg/export"
	"github.com/platinummonkey/protoboard/pkg/schema"
)

// RenderOptions selects what a render writes
type RenderOptions struct {
	Input       string
	OutputDir   string
	ProtoOnly   bool
	DiagramOnly bool
}

func (o RenderOptions) validate() error {
	if o.Input == "" {
		return errors.New("-in is required")
	}
	if o.OutputDir == "" {
		return errors.New("-out is required")
	}
	if o.ProtoOnly && o.DiagramOnly {
		return errors.New("-proto-only and -diagram-only are mutually exclusive")
	}
	return nil
}

func newRenderCommand(out io.Writer, logger *logrus.Logger) *Command {
	cmd := &Command{
		Name:        "render",
		Description: "Render a schema document to .proto and .mmd files",
		Flags:       flag.NewFlagSet("render", flag.ContinueOnError),
		Out:         out,
		Logger:      logger,
	}

	var opts RenderOptions
	cmd.Flags.StringVar(&opts.Input, "in", "", "Schema document (.json, .yaml or .yml)")
	cmd.Flags.StringVar(&opts.OutputDir, "out", ".", "Output directory for generated files")
	cmd.Flags.BoolVar(&opts.ProtoOnly, "proto-only", false, "Only write the .proto file")
	cmd.Flags.BoolVar(&opts.DiagramOnly, "diagram-only", false, "Only write the sequence diagram")

	cmd.Run = func(ctx context.Context, args []string) error {
		if err := cmd.parseFlags(args); err != nil {
			return err
		}
		written, err := Render(ctx, export.NewRenderer(0, 0, nil), opts)
		if err != nil {
			return err
		}
		for _, path := range written {
			logger.WithField("file", path).Info("Wrote artifact")
			fmt.Fprintln(out, path)
		}
		return nil
	}
	return cmd
}

// Render loads the input document, renders it and writes the selected
// artifacts into the output directory. It returns the written paths.
func Render(ctx context.Context, renderer *export.Renderer, opts RenderOptions) ([]string, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	doc, err := schema.LoadDocumentFile(opts.Input)
	if err != nil {
		return nil, err
	}

	artifacts, err := renderer.Render(ctx, doc.Elements)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", opts.Input, err)
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var written []string
	if !opts.DiagramOnly {
		path := filepath.Join(opts.OutputDir, artifacts.ProtoFileName())
		if err := export.WriteFileAtomic(path, []byte(artifacts.Proto)); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	if !opts.ProtoOnly {
		path := filepath.Join(opts.OutputDir, artifacts.DiagramFileName())
		if err := export.WriteFileAtomic(path, []byte(artifacts.Diagram)); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}
