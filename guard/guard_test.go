package guard

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/glide-bridge/errors"
	"github.com/wippyai/glide-bridge/host"
	"github.com/wippyai/glide-bridge/host/hosttest"
)

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(nil) })
	return logs
}

func TestCallSuccess(t *testing.T) {
	env := host.NewNative()

	got := Call(env, "valueFromPointer", "sentinel", func() (string, error) {
		return "value", nil
	})

	assert.Equal(t, "value", got)
	assert.Nil(t, env.Pending())
}

func TestCallError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		class host.ExceptionClass
		msg   string
	}{
		{
			name:  "invalid handle",
			err:   errors.InvalidHandle(0, "Received an invalid pointer value."),
			class: host.ClassIllegalArgument,
			msg:   "Received an invalid pointer value.",
		},
		{
			name:  "telemetry",
			err:   errors.TelemetryConfig("flushIntervalMs must be a positive integer (got: 0)", nil),
			class: host.ClassConfiguration,
			msg:   "flushIntervalMs must be a positive integer (got: 0)",
		},
		{
			name:  "transport",
			err:   errors.TransportStartup("bind failed", stderrors.New("address in use")),
			class: host.ClassClosing,
			msg:   "bind failed: address in use",
		},
		{
			name:  "untyped",
			err:   stderrors.New("plain failure"),
			class: host.ClassRuntime,
			msg:   "plain failure",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := host.NewNative()
			got := Call(env, "op", int64(0), func() (int64, error) {
				return 99, tt.err
			})

			assert.Equal(t, int64(0), got)
			exc := env.Pending()
			require.NotNil(t, exc)
			assert.Equal(t, tt.class, exc.Class)
			assert.Equal(t, tt.msg, exc.Message)
		})
	}
}

func TestCallErrorTagsOp(t *testing.T) {
	var seen *errors.Error
	err := errors.Decoding([]string{"[0]"}, "bad")

	Call(nil, "valueFromPointer", 0, func() (int, error) {
		return 0, err
	})

	require.True(t, stderrors.As(err, &seen))
	assert.Equal(t, "valueFromPointer", seen.Op)
}

func TestCallPanic(t *testing.T) {
	logs := observe(t)
	env := host.NewNative()

	got := Call(env, "createLeakedBytesVec", int64(-1), func() (int64, error) {
		panic("index out of range")
	})

	assert.Equal(t, int64(-1), got)
	exc := env.Pending()
	require.NotNil(t, exc)
	assert.Equal(t, host.ClassRuntime, exc.Class)
	assert.Equal(t, "Native function createLeakedBytesVec panicked: index out of range", exc.Message)

	entries := logs.FilterMessage("native function panicked").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "createLeakedBytesVec", entries[0].ContextMap()["op"])
	assert.Contains(t, entries[0].ContextMap(), "stack")
}

func TestCallPanicWithError(t *testing.T) {
	env := host.NewNative()

	Call[any](env, "valueFromPointer", nil, func() (any, error) {
		panic(errors.Unsupported(nil, "attribute replies are not supported"))
	})

	exc := env.Pending()
	require.NotNil(t, exc)
	assert.Equal(t, host.ClassRuntime, exc.Class)
	assert.Equal(t, "Native function valueFromPointer panicked: attribute replies are not supported", exc.Message)
}

func TestDo(t *testing.T) {
	env := host.NewNative()
	ran := false
	Do(env, "dropScript", func() error {
		ran = true
		return nil
	})
	assert.True(t, ran)
	assert.Nil(t, env.Pending())

	Do(env, "dropScript", func() error {
		panic(stderrors.New("boom"))
	})
	require.NotNil(t, env.Pending())
	assert.Equal(t, host.ClassRuntime, env.Pending().Class)
}

func TestThrowFailuresAreSwallowed(t *testing.T) {
	logs := observe(t)

	failing := hosttest.NewFaulty()
	failing.FailOn = "Throw"
	assert.NotPanics(t, func() {
		Call(failing, "op", 0, func() (int, error) { return 1, stderrors.New("x") })
	})
	assert.Equal(t, 1, logs.FilterMessage("failed to raise host exception").Len())

	panicking := hosttest.NewFaulty()
	panicking.PanicOn = "Throw"
	var got int
	assert.NotPanics(t, func() {
		got = Call(panicking, "op", 7, func() (int, error) { panic("first") })
	})
	assert.Equal(t, 7, got)
	assert.Equal(t, 1, logs.FilterMessage("raising host exception panicked").Len())
}

func TestClassFor(t *testing.T) {
	tests := map[errors.Kind]host.ExceptionClass{
		errors.KindDecoding:         host.ClassRuntime,
		errors.KindBoundaryAPI:      host.ClassRuntime,
		errors.KindPanic:            host.ClassRuntime,
		errors.KindUnsupported:      host.ClassRuntime,
		errors.KindInvalidHandle:    host.ClassIllegalArgument,
		errors.KindLoggerConfig:     host.ClassIllegalArgument,
		errors.KindTelemetryConfig:  host.ClassConfiguration,
		errors.KindTransportStartup: host.ClassClosing,
	}
	for kind, want := range tests {
		assert.Equal(t, want, ClassFor(kind), kind)
	}
}
