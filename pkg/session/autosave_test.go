package session

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/protoboard/pkg/observability"
	"github.com/platinummonkey/protoboard/pkg/schema"
)

func TestNewAutosaver_InvalidSchedule(t *testing.T) {
	m, _, metrics := newTestManager(t)
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)

	_, err := NewAutosaver(m, "not a schedule", logger, metrics)
	assert.Error(t, err)
}

func TestAutosaver_RunOnce(t *testing.T) {
	m, store, metrics := newTestManager(t)
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	ctx := context.Background()

	a, err := NewAutosaver(m, "", logger, metrics)
	require.NoError(t, err)

	s, err := m.Create(ctx, greeterDocument("greeter"))
	require.NoError(t, err)

	saved, err := a.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, saved)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AutosaveRunsTotal.WithLabelValues("noop")))

	s.AddElement(schema.NewEnum("Color"), "")
	saved, err = a.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, saved)
	assert.False(t, s.Dirty())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AutosaveRunsTotal.WithLabelValues("success")))

	store.failSave["greeter"] = true
	s.AddElement(schema.NewEnum("Shape"), "")
	_, err = a.RunOnce(ctx)
	assert.Error(t, err)
	assert.True(t, s.Dirty())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AutosaveRunsTotal.WithLabelValues("error")))
}

func TestAutosaver_StopFlushes(t *testing.T) {
	m, _, metrics := newTestManager(t)
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	ctx := context.Background()

	a, err := NewAutosaver(m, "@every 1h", logger, metrics)
	require.NoError(t, err)
	a.Start()

	s, err := m.Create(ctx, greeterDocument("greeter"))
	require.NoError(t, err)
	s.AddElement(schema.NewEnum("Color"), "")
	require.True(t, s.Dirty())

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, a.Stop(stopCtx))
	assert.False(t, s.Dirty())
}
