// Package logger is the bridge's logging core. It owns the process zap
// logger, reconfigured by the host through Init, and forwards host log
// records through Log.
package logger

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/glide-bridge/errors"
)

// LogDir holds log files given by relative name.
const LogDir = "glide-logs"

// Core holds the active logger configuration.
type Core struct {
	zap       *zap.Logger
	file      *os.File
	listeners []func(*zap.Logger)
	mu        sync.RWMutex
	level     Level
}

// New returns a Core logging at DefaultLevel to stdout.
func New() *Core {
	c := &Core{}
	lvl := DefaultLevel
	if _, err := c.Init(&lvl, ""); err != nil {
		c.zap = zap.NewNop()
	}
	return c
}

// Init replaces the logger. A nil level means DefaultLevel; an empty file
// means console output on stdout. Otherwise records are written as JSON
// to file, with relative names placed under LogDir. It returns the level
// now in effect.
func (c *Core) Init(level *Level, file string) (Level, error) {
	lvl := DefaultLevel
	if level != nil {
		lvl = *level
	}

	var (
		ws  zapcore.WriteSyncer
		enc zapcore.Encoder
		out *os.File
	)

	if file == "" {
		ws = zapcore.Lock(os.Stdout)
		enc = newEncoder("console")
	} else {
		path := file
		if !filepath.IsAbs(path) {
			path = filepath.Join(LogDir, path)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return 0, errors.LoggerConfig("cannot create log directory", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return 0, errors.LoggerConfig("cannot open log file", err)
		}
		out = f
		ws = zapcore.AddSync(f)
		enc = newEncoder("json")
	}

	var core zapcore.Core
	if zl, ok := lvl.Zap(); ok {
		core = zapcore.NewCore(enc, ws, zap.NewAtomicLevelAt(zl))
	} else {
		core = zapcore.NewNopCore()
	}
	z := zap.New(core, zap.AddStacktrace(zapcore.ErrorLevel))

	c.mu.Lock()
	old, oldFile := c.zap, c.file
	c.zap, c.file, c.level = z, out, lvl
	listeners := append([]func(*zap.Logger){}, c.listeners...)
	c.mu.Unlock()

	if old != nil {
		_ = old.Sync()
	}
	if oldFile != nil {
		_ = oldFile.Close()
	}
	for _, fn := range listeners {
		fn(z)
	}
	return lvl, nil
}

func newEncoder(format string) zapcore.Encoder {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = encodeLevel

	if format == "console" {
		return zapcore.NewConsoleEncoder(encoderCfg)
	}
	return zapcore.NewJSONEncoder(encoderCfg)
}

func encodeLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	if l == TraceLevel {
		enc.AppendString("trace")
		return
	}
	zapcore.LowercaseLevelEncoder(l, enc)
}

// Log writes msg at level tagged with the host's log identifier.
func (c *Core) Log(level Level, id, msg string) {
	zl, ok := level.Zap()
	if !ok {
		return
	}
	c.Zap().Log(zl, msg, zap.String("log_identifier", id))
}

// Zap returns the active zap logger.
func (c *Core) Zap() *zap.Logger {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.zap
}

// Level returns the level in effect.
func (c *Core) Level() Level {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.level
}

// OnChange registers fn to receive the logger now and after every Init.
func (c *Core) OnChange(fn func(*zap.Logger)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	z := c.zap
	c.mu.Unlock()
	fn(z)
}

// Sync flushes buffered records.
func (c *Core) Sync() error {
	err := c.Zap().Sync()
	if err != nil && isStdoutSyncError(err) {
		return nil
	}
	return err
}

// Close flushes and releases the log file, if any.
func (c *Core) Close() error {
	err := c.Sync()

	c.mu.Lock()
	f := c.file
	c.file = nil
	c.mu.Unlock()

	if f != nil {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// isStdoutSyncError reports the harmless EINVAL/ENOTTY from syncing a
// terminal or pipe.
func isStdoutSyncError(err error) bool {
	var errno syscall.Errno
	if stderrors.As(err, &errno) {
		return errno == syscall.EINVAL || errno == syscall.ENOTTY
	}
	return false
}
