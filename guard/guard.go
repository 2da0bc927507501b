// Package guard runs boundary entry points so that neither a panic nor an
// error escapes into the host runtime as anything other than a single
// pending exception and a sentinel return value.
package guard

import (
	"go.uber.org/zap"

	"github.com/wippyai/glide-bridge/errors"
	"github.com/wippyai/glide-bridge/host"
)

// ClassFor returns the host exception class raised for an error kind.
func ClassFor(kind errors.Kind) host.ExceptionClass {
	switch kind {
	case errors.KindInvalidHandle, errors.KindLoggerConfig:
		return host.ClassIllegalArgument
	case errors.KindTelemetryConfig:
		return host.ClassConfiguration
	case errors.KindTransportStartup:
		return host.ClassClosing
	default:
		return host.ClassRuntime
	}
}

// Call runs body as the boundary operation op. If body panics or fails,
// the failure is raised on t and fallback is returned.
func Call[T any](t host.Thrower, op string, fallback T, body func() (T, error)) (result T) {
	defer func() {
		if r := recover(); r != nil {
			Logger().Error("native function panicked",
				zap.String("op", op),
				zap.Any("panic", r),
				zap.Stack("stack"))
			Throw(t, errors.Panic(op, r))
			result = fallback
		}
	}()

	v, err := body()
	if err != nil {
		e := errors.WithOp(err, op)
		Logger().Debug("native function failed",
			zap.String("op", op),
			zap.String("kind", string(e.Kind)),
			zap.Error(e))
		Throw(t, e)
		return fallback
	}
	return v
}

// Do is Call for operations without a result.
func Do(t host.Thrower, op string, body func() error) {
	Call(t, op, struct{}{}, func() (struct{}, error) {
		return struct{}{}, body()
	})
}

// Throw raises e on t. Failures while throwing are logged and dropped;
// there is nothing further the boundary can do with them.
func Throw(t host.Thrower, e *errors.Error) {
	if t == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			Logger().Error("raising host exception panicked",
				zap.String("op", e.Op),
				zap.Any("panic", r))
		}
	}()

	if err := t.Throw(ClassFor(e.Kind), e.Message()); err != nil {
		Logger().Warn("failed to raise host exception",
			zap.String("op", e.Op),
			zap.Error(err))
	}
}
