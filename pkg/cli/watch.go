package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/protoboard/pkg/export"
)

// DefaultDebounce is how long the watcher waits for writes to settle
const DefaultDebounce = 200 * time.Millisecond

func newWatchCommand(logger *logrus.Logger) *Command {
	cmd := &Command{
		Name:        "watch",
		Description: "Re-render a schema document whenever it changes",
		Flags:       flag.NewFlagSet("watch", flag.ContinueOnError),
		Logger:      logger,
	}

	var opts RenderOptions
	cmd.Flags.StringVar(&opts.Input, "in", "", "Schema document (.json, .yaml or .yml)")
	cmd.Flags.StringVar(&opts.OutputDir, "out", ".", "Output directory for generated files")
	cmd.Flags.BoolVar(&opts.ProtoOnly, "proto-only", false, "Only write the .proto file")
	cmd.Flags.BoolVar(&opts.DiagramOnly, "diagram-only", false, "Only write the sequence diagram")
	debounce := cmd.Flags.Duration("debounce", DefaultDebounce, "Quiet period before re-rendering")

	cmd.Run = func(ctx context.Context, args []string) error {
		if err := cmd.parseFlags(args); err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return NewWatcher(opts, *debounce, logger).Run(ctx)
	}
	return cmd
}

// Watcher re-renders a document after it changes on disk
type Watcher struct {
	opts     RenderOptions
	debounce time.Duration
	renderer *export.Renderer
	logger   *logrus.Logger
}

// NewWatcher creates a watcher for opts.Input
func NewWatcher(opts RenderOptions, debounce time.Duration, logger *logrus.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		opts:     opts,
		debounce: debounce,
		renderer: export.NewRenderer(16, time.Hour, nil),
		logger:   logger,
	}
}

// Run renders once, then again after every burst of changes to the input,
// until ctx is done. Render failures are logged and do not stop the watch.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.opts.validate(); err != nil {
		return err
	}

	input, err := filepath.Abs(w.opts.Input)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", w.opts.Input, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory so editors that replace the file are still seen
	dir := filepath.Dir(input)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	log := w.logger.WithFields(logrus.Fields{"input": input, "out": w.opts.OutputDir})
	log.Info("Watching schema document")
	w.render(ctx, log)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Stopped watching")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("watcher closed")
			}
			if filepath.Clean(event.Name) != input {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			log.WithField("op", event.Op.String()).Debug("Change detected")
			timer.Reset(w.debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("watcher closed")
			}
			log.WithError(err).Warn("Watcher error")
		case <-timer.C:
			w.render(ctx, log)
		}
	}
}

func (w *Watcher) render(ctx context.Context, log *logrus.Entry) {
	start := time.Now()
	written, err := Render(ctx, w.renderer, w.opts)
	if err != nil {
		log.WithError(err).Error("Render failed")
		return
	}
	log.WithFields(logrus.Fields{
		"files":    written,
		"duration": time.Since(start).String(),
	}).Info("Rendered")
}
