// Package core assembles the native collaborators the bridge delegates
// to: the logger, script cache, scan cursors, statistics, the handle
// table, the socket listener and OpenTelemetry.
package core

import (
	"context"
	stderrors "errors"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/glide-bridge/config"
	"github.com/wippyai/glide-bridge/core/listener"
	"github.com/wippyai/glide-bridge/core/logger"
	"github.com/wippyai/glide-bridge/core/otel"
	"github.com/wippyai/glide-bridge/core/scan"
	"github.com/wippyai/glide-bridge/core/scripts"
	"github.com/wippyai/glide-bridge/core/stats"
	"github.com/wippyai/glide-bridge/errors"
	"github.com/wippyai/glide-bridge/guard"
	"github.com/wippyai/glide-bridge/handshake"
	"github.com/wippyai/glide-bridge/resource"
)

// ConfigEnv names the environment variable holding the config file path
// read by Default.
const ConfigEnv = "GLIDE_BRIDGE_CONFIG"

// shutdownTimeout bounds telemetry flushing in Close.
const shutdownTimeout = 5 * time.Second

// Core is the native side of the bridge.
type Core struct {
	Config   *config.Config
	Logger   *logger.Core
	Scripts  *scripts.Cache
	Scans    *scan.Store
	Stats    *stats.Stats
	Handles  *resource.Table
	Listener *listener.Listener

	tel   *otel.Telemetry
	telMu sync.Mutex
}

// New builds a Core from cfg. A nil cfg uses config.Default().
func New(cfg *config.Config) (*Core, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	lvl, err := logger.LevelFromString(cfg.Logger.Level)
	if err != nil {
		return nil, err
	}
	log := logger.New()
	if _, err := log.Init(&lvl, cfg.Logger.File); err != nil {
		return nil, err
	}
	log.OnChange(routeLoggers)

	st := stats.New()
	handles := resource.NewTable()
	handles.Subscribe(st)

	c := &Core{
		Config:   cfg,
		Logger:   log,
		Scripts:  scripts.New(),
		Scans:    scan.New(),
		Stats:    st,
		Handles:  handles,
		Listener: listener.New(cfg.Listener.SocketDir, st),
	}
	log.Zap().Debug("bridge core ready",
		zap.String("log_level", lvl.String()),
		zap.String("socket_dir", cfg.Listener.SocketDir))
	return c, nil
}

// routeLoggers points every package logger at z.
func routeLoggers(z *zap.Logger) {
	guard.SetLogger(z.Named("guard"))
	handshake.SetLogger(z.Named("handshake"))
	listener.SetLogger(z.Named("listener"))
	otel.SetLogger(z.Named("otel"))
}

// InitTelemetry starts OpenTelemetry export. Only the first successful
// call takes effect; later ones are logged and ignored. A zero service name
// or flush interval is taken from the loaded configuration.
func (c *Core) InitTelemetry(ctx context.Context, cfg otel.Config) error {
	c.telMu.Lock()
	defer c.telMu.Unlock()

	if c.tel != nil {
		c.Logger.Zap().Warn("OpenTelemetry already initialised, ignoring new configuration")
		return nil
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = c.Config.Telemetry.ServiceName
	}
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = c.Config.Telemetry.FlushInterval.Duration()
	}

	tel, err := otel.Init(ctx, cfg)
	if err != nil {
		c.Logger.Log(logger.LevelError, "OpenTelemetry", "Failed to initialize OpenTelemetry: "+errorMessage(err))
		return err
	}
	c.tel = tel
	return nil
}

// Telemetry returns the active telemetry, or nil before InitTelemetry.
func (c *Core) Telemetry() *otel.Telemetry {
	c.telMu.Lock()
	defer c.telMu.Unlock()
	return c.tel
}

// NewSpan starts a span on the active telemetry.
func (c *Core) NewSpan(name string) *otel.Span {
	return c.Telemetry().NewSpan(name)
}

// HandshakeContext returns the context StartSocketListener waits under.
func (c *Core) HandshakeContext() (context.Context, context.CancelFunc) {
	if d := c.Config.Listener.HandshakeTimeout.Duration(); d > 0 {
		return context.WithTimeout(context.Background(), d)
	}
	return context.WithCancel(context.Background())
}

// Close stops the listener, drops leaked handles, flushes telemetry and
// closes the log file.
func (c *Core) Close() error {
	var errs []error
	if err := c.Listener.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Handles.Close(); err != nil {
		errs = append(errs, err)
	}
	if tel := c.Telemetry(); tel != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := tel.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
		cancel()
	}
	if err := c.Logger.Close(); err != nil {
		errs = append(errs, err)
	}
	return stderrors.Join(errs...)
}

func errorMessage(err error) string {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return e.Message()
	}
	return err.Error()
}

var (
	defaultCore *Core
	defaultErr  error
	defaultOnce sync.Once
)

// Default returns the process-wide Core, built on first use from the
// file named by ConfigEnv and the environment. A failed build is
// remembered and reported on every call.
func Default() (*Core, error) {
	defaultOnce.Do(func() {
		cfg, err := config.Load(os.Getenv(ConfigEnv))
		if err != nil {
			defaultErr = errors.New(errors.KindBoundaryAPI).
				Detail("Failed to get or init runtime").
				Cause(err).
				Build()
			return
		}
		defaultCore, err = New(cfg)
		if err != nil {
			defaultErr = errors.New(errors.KindBoundaryAPI).
				Detail("Failed to get or init runtime").
				Cause(err).
				Build()
		}
	})
	return defaultCore, defaultErr
}
