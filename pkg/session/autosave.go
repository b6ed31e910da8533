package session

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/platinummonkey/protoboard/pkg/observability"
)

// DefaultAutosaveSchedule flushes dirty sessions every thirty seconds
const DefaultAutosaveSchedule = "@every 30s"

// Autosaver periodically persists dirty sessions on a cron schedule
type Autosaver struct {
	cron    *cron.Cron
	manager *Manager
	logger  *observability.Logger
	metrics *observability.Metrics
	timeout time.Duration
}

// NewAutosaver registers a save pass on schedule. The job does not run
// until Start is called.
func NewAutosaver(manager *Manager, schedule string, logger *observability.Logger, metrics *observability.Metrics) (*Autosaver, error) {
	if schedule == "" {
		schedule = DefaultAutosaveSchedule
	}

	a := &Autosaver{
		cron:    cron.New(),
		manager: manager,
		logger:  logger,
		metrics: metrics,
		timeout: time.Minute,
	}

	if _, err := a.cron.AddFunc(schedule, func() {
		defer observability.RecoverPanic(logger, "autosave")

		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		a.RunOnce(ctx)
	}); err != nil {
		return nil, fmt.Errorf("invalid autosave schedule %q: %w", schedule, err)
	}

	return a, nil
}

// Start begins running the schedule in the background
func (a *Autosaver) Start() {
	a.cron.Start()
	a.logger.Info("Autosave scheduler started")
}

// Stop halts the schedule, waits for a running pass to finish and then
// flushes whatever is still dirty.
func (a *Autosaver) Stop(ctx context.Context) error {
	done := a.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		return ctx.Err()
	}

	_, err := a.RunOnce(ctx)
	return err
}

// RunOnce performs a single save pass and records its status
func (a *Autosaver) RunOnce(ctx context.Context) (int, error) {
	start := time.Now()
	saved, err := a.manager.SaveAll(ctx)

	status := "success"
	switch {
	case err != nil:
		status = "error"
		a.logger.WithError(err).WithField("saved", saved).Error("Autosave pass failed")
	case saved == 0:
		status = "noop"
	default:
		a.logger.WithFields(map[string]interface{}{
			"saved":       saved,
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("Autosave pass completed")
	}

	if a.metrics != nil {
		a.metrics.AutosaveRunsTotal.WithLabelValues(status).Inc()
	}
	return saved, err
}
