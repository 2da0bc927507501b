package core

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/glide-bridge/config"
	"github.com/wippyai/glide-bridge/core/logger"
	"github.com/wippyai/glide-bridge/core/otel"
	"github.com/wippyai/glide-bridge/errors"
	"github.com/wippyai/glide-bridge/resource"
)

func newCore(t *testing.T) *Core {
	t.Helper()
	cfg := config.Default()
	cfg.Logger.File = filepath.Join(t.TempDir(), "core.log")
	c, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestNew(t *testing.T) {
	c := newCore(t)
	assert.Equal(t, logger.LevelWarn, c.Logger.Level())
	assert.Nil(t, c.Telemetry())

	h, err := c.Handles.Insert(resource.KindReply, "x")
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.Stats.Snapshot().LiveHandles)

	_, err = c.Handles.Redeem(h, resource.KindReply)
	require.NoError(t, err)
	assert.Equal(t, int64(0), c.Stats.Snapshot().LiveHandles)
}

func TestNewBadLevel(t *testing.T) {
	cfg := config.Default()
	cfg.Logger.Level = "loud"
	_, err := New(cfg)
	assert.Equal(t, errors.KindLoggerConfig, errors.KindOf(err))
}

func TestCore_InitTelemetryOnce(t *testing.T) {
	c := newCore(t)
	dir := t.TempDir()

	exp, err := otel.ParseExporter("file://" + dir)
	require.NoError(t, err)

	cfg := otel.Config{Traces: &exp, FlushInterval: 10 * time.Millisecond, SamplePercentage: 100}
	require.NoError(t, c.InitTelemetry(context.Background(), cfg))
	first := c.Telemetry()
	require.NotNil(t, first)

	require.NoError(t, c.InitTelemetry(context.Background(), cfg))
	assert.Same(t, first, c.Telemetry(), "re-initialisation is ignored")

	c.NewSpan("core-span").End()
	require.NoError(t, c.Close())

	data, err := os.ReadFile(filepath.Join(dir, otel.DefaultFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "core-span")
	assert.Contains(t, string(data), config.DefaultServiceName)
}

func TestCore_InitTelemetryConfiguredFlushInterval(t *testing.T) {
	cfg := config.Default()
	cfg.Logger.File = filepath.Join(t.TempDir(), "core.log")
	cfg.Telemetry.ServiceName = "orders"
	cfg.Telemetry.FlushInterval = config.Duration(10 * time.Millisecond)
	c, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	dir := t.TempDir()
	exp, err := otel.ParseExporter("file://" + dir)
	require.NoError(t, err)

	// FlushInterval is left zero so the configured interval applies.
	require.NoError(t, c.InitTelemetry(context.Background(), otel.Config{Traces: &exp, SamplePercentage: 100}))
	c.NewSpan("configured-span").End()

	assert.Eventually(t, func() bool {
		data, err := os.ReadFile(filepath.Join(dir, otel.DefaultFileName))
		return err == nil && strings.Contains(string(data), "configured-span")
	}, 2*time.Second, 10*time.Millisecond)

	data, err := os.ReadFile(filepath.Join(dir, otel.DefaultFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "orders")
}

func TestCore_InitTelemetryInvalid(t *testing.T) {
	c := newCore(t)
	err := c.InitTelemetry(context.Background(), otel.Config{FlushInterval: time.Second})
	assert.Equal(t, errors.KindTelemetryConfig, errors.KindOf(err))
	assert.Nil(t, c.Telemetry())
}

func TestCore_HandshakeContext(t *testing.T) {
	c := newCore(t)

	ctx, cancel := c.HandshakeContext()
	_, ok := ctx.Deadline()
	assert.False(t, ok)
	cancel()

	c.Config.Listener.HandshakeTimeout = config.Duration(time.Minute)
	ctx, cancel = c.HandshakeContext()
	defer cancel()
	_, ok = ctx.Deadline()
	assert.True(t, ok)
}

func TestDefault(t *testing.T) {
	t.Setenv(ConfigEnv, "")

	c1, err := Default()
	require.NoError(t, err)
	c2, err := Default()
	require.NoError(t, err)
	assert.Same(t, c1, c2)
}
