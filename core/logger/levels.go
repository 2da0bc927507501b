package logger

import (
	"fmt"

	"go.uber.org/zap/zapcore"

	"github.com/wippyai/glide-bridge/errors"
)

// Level is the bridge log level as exchanged with the host.
type Level int32

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
	LevelOff
)

// TraceLevel is the zap level below Debug used for LevelTrace.
const TraceLevel = zapcore.Level(-2)

// DefaultLevel applies when Init is called without a level.
const DefaultLevel = LevelWarn

// ParseLevel maps a host integer to a Level.
func ParseLevel(n int32) (Level, error) {
	if n < int32(LevelError) || n > int32(LevelOff) {
		return 0, errors.LoggerConfig(fmt.Sprintf("Invalid log level: %d", n), nil)
	}
	return Level(n), nil
}

func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarn:
		return "warn"
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "debug"
	case LevelTrace:
		return "trace"
	case LevelOff:
		return "off"
	default:
		return fmt.Sprintf("level(%d)", int32(l))
	}
}

// LevelFromString parses a level name, as used in configuration files.
func LevelFromString(s string) (Level, error) {
	for l := LevelError; l <= LevelOff; l++ {
		if l.String() == s {
			return l, nil
		}
	}
	return 0, errors.LoggerConfig(fmt.Sprintf("Invalid log level: %q", s), nil)
}

// Zap returns the zap level for l. LevelOff has none.
func (l Level) Zap() (zapcore.Level, bool) {
	switch l {
	case LevelError:
		return zapcore.ErrorLevel, true
	case LevelWarn:
		return zapcore.WarnLevel, true
	case LevelInfo:
		return zapcore.InfoLevel, true
	case LevelDebug:
		return zapcore.DebugLevel, true
	case LevelTrace:
		return TraceLevel, true
	default:
		return 0, false
	}
}
