package wasmhost

import (
	"context"
	"fmt"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	glidebridge "github.com/wippyai/glide-bridge"
	"github.com/wippyai/glide-bridge/bridge"
	"github.com/wippyai/glide-bridge/errors"
	"github.com/wippyai/glide-bridge/guard"
	"github.com/wippyai/glide-bridge/host"
)

// DefaultModuleName is the import module name guests link against.
const DefaultModuleName = "glide_bridge"

// Config holds configuration for the wasm host.
type Config struct {
	// ModuleName is the host module name (default: "glide_bridge").
	ModuleName string

	// MemoryLimitPages sets the maximum memory per guest in pages (64KB each).
	// 0 means the wazero default.
	MemoryLimitPages uint32
}

// Option configures the host.
type Option func(*Config)

// WithModuleName sets the host module name.
func WithModuleName(name string) Option {
	return func(c *Config) {
		c.ModuleName = name
	}
}

// WithMemoryLimitPages caps guest memory.
func WithMemoryLimitPages(pages uint32) Option {
	return func(c *Config) {
		c.MemoryLimitPages = pages
	}
}

// Host runs guests against a bridge.
type Host struct {
	bridge  *bridge.Bridge
	runtime wazero.Runtime
	cfg     Config

	mu      sync.Mutex
	lastErr map[string]string
}

// New creates a wazero runtime and instantiates the bridge host module in it.
func New(ctx context.Context, b *bridge.Bridge, opts ...Option) (*Host, error) {
	cfg := Config{ModuleName: DefaultModuleName}
	for _, opt := range opts {
		opt(&cfg)
	}

	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}

	h := &Host{
		bridge:  b,
		runtime: wazero.NewRuntimeWithConfig(ctx, runtimeCfg),
		cfg:     cfg,
		lastErr: make(map[string]string),
	}
	b.Core().Logger.OnChange(func(z *zap.Logger) {
		SetLogger(z.Named("wasmhost"))
	})

	if err := h.register(ctx); err != nil {
		h.runtime.Close(ctx)
		return nil, fmt.Errorf("instantiate %s host module: %w", cfg.ModuleName, err)
	}
	return h, nil
}

// Runtime returns the underlying wazero runtime.
func (h *Host) Runtime() wazero.Runtime {
	return h.runtime
}

// Instantiate compiles and starts a guest under name.
func (h *Host) Instantiate(ctx context.Context, name string, wasmBytes []byte) (api.Module, error) {
	mod, err := h.runtime.InstantiateWithConfig(ctx, wasmBytes, wazero.NewModuleConfig().WithName(name))
	if err != nil {
		return nil, fmt.Errorf("instantiate guest %q: %w", name, err)
	}
	Logger().Debug("guest instantiated", zap.String("module", name))
	return mod, nil
}

// Close closes every guest and the runtime.
func (h *Host) Close(ctx context.Context) error {
	return h.runtime.Close(ctx)
}

// LastError returns the pending failure message for a guest without
// clearing it.
func (h *Host) LastError(module string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	msg, ok := h.lastErr[module]
	return msg, ok
}

var (
	i32 = api.ValueTypeI32
	i64 = api.ValueTypeI64
)

type export struct {
	fn      api.GoModuleFunc
	name    string
	params  []api.ValueType
	results []api.ValueType
}

func (h *Host) exports() []export {
	return []export{
		{name: "max_request_args_length", fn: h.maxRequestArgsLength, results: []api.ValueType{i64}},
		{name: "logger_init", fn: h.loggerInit, params: []api.ValueType{i32, i32, i32}, results: []api.ValueType{i32}},
		{name: "log", fn: h.log, params: []api.ValueType{i32, i32, i32, i32, i32}},
		{name: "span_create", fn: h.spanCreate, params: []api.ValueType{i32, i32}, results: []api.ValueType{i64}},
		{name: "span_drop", fn: h.spanDrop, params: []api.ValueType{i64}, results: []api.ValueType{i32}},
		{name: "script_store", fn: h.scriptStore, params: []api.ValueType{i32, i32, i32}, results: []api.ValueType{i32}},
		{name: "script_drop", fn: h.scriptDrop, params: []api.ValueType{i32, i32}},
		{name: "cursor_release", fn: h.cursorRelease, params: []api.ValueType{i32, i32}},
		{name: "last_error", fn: h.lastError, params: []api.ValueType{i32, i32}, results: []api.ValueType{i32}},
	}
}

func (h *Host) register(ctx context.Context) error {
	builder := h.runtime.NewHostModuleBuilder(h.cfg.ModuleName)
	for _, e := range h.exports() {
		builder.NewFunctionBuilder().
			WithGoModuleFunction(e.fn, e.params, e.results).
			Export(e.name)
	}
	_, err := builder.Instantiate(ctx)
	return err
}

// call runs fn with a fresh Env and records any exception it leaves for
// the calling module. It reports whether the call succeeded.
func (h *Host) call(mod api.Module, op string, fn func(env host.Env, mem glidebridge.Memory) error) bool {
	env := host.NewNative()
	guard.Do(env, op, func() error {
		mem, err := memoryOf(mod)
		if err != nil {
			return errors.BoundaryAPI(nil, "guest memory", err)
		}
		return fn(env, mem)
	})

	if ex := env.TakeException(); ex != nil {
		Logger().Debug("guest call failed",
			zap.String("module", mod.Name()),
			zap.String("op", op),
			zap.String("class", string(ex.Class)),
			zap.String("message", ex.Message))
		h.mu.Lock()
		h.lastErr[mod.Name()] = ex.Message
		h.mu.Unlock()
		return false
	}
	return true
}

func guestString(mem glidebridge.Memory, ptr, length uint64, what string) (host.Object, error) {
	s, err := readString(mem, api.DecodeU32(ptr), api.DecodeU32(length))
	if err != nil {
		return nil, errors.BoundaryAPI(nil, "read "+what, err)
	}
	return s, nil
}

func (h *Host) maxRequestArgsLength(_ context.Context, _ api.Module, stack []uint64) {
	stack[0] = uint64(h.bridge.MaxRequestArgsLengthInBytes())
}

func (h *Host) loggerInit(_ context.Context, mod api.Module, stack []uint64) {
	level := api.DecodeI32(stack[0])
	var result int32
	h.call(mod, "logger_init", func(env host.Env, mem glidebridge.Memory) error {
		file, err := guestString(mem, stack[1], stack[2], "log file name")
		if err != nil {
			return err
		}
		result = h.bridge.InitInternal(env, level, file)
		return nil
	})
	stack[0] = api.EncodeI32(result)
}

func (h *Host) log(_ context.Context, mod api.Module, stack []uint64) {
	level := api.DecodeI32(stack[0])
	h.call(mod, "log", func(env host.Env, mem glidebridge.Memory) error {
		id, err := guestString(mem, stack[1], stack[2], "log identifier")
		if err != nil {
			return err
		}
		msg, err := guestString(mem, stack[3], stack[4], "log message")
		if err != nil {
			return err
		}
		h.bridge.LogInternal(env, level, id, msg)
		return nil
	})
}

func (h *Host) spanCreate(_ context.Context, mod api.Module, stack []uint64) {
	var handle int64
	h.call(mod, "span_create", func(env host.Env, mem glidebridge.Memory) error {
		name, err := guestString(mem, stack[0], stack[1], "span name")
		if err != nil {
			return err
		}
		handle = h.bridge.CreateLeakedOtelSpan(env, name)
		return nil
	})
	stack[0] = api.EncodeI64(handle)
}

// spanDrop returns 1 when the reference was released, or 0 on failure.
func (h *Host) spanDrop(_ context.Context, mod api.Module, stack []uint64) {
	handle := int64(stack[0])
	ok := h.call(mod, "span_drop", func(env host.Env, _ glidebridge.Memory) error {
		h.bridge.DropOtelSpan(env, handle)
		return nil
	})
	stack[0] = boolResult(ok)
}

// scriptStore writes the 40 byte hex hash to out and returns 1, or 0 on
// failure.
func (h *Host) scriptStore(_ context.Context, mod api.Module, stack []uint64) {
	ok := h.call(mod, "script_store", func(env host.Env, mem glidebridge.Memory) error {
		code, err := mem.Read(api.DecodeU32(stack[0]), api.DecodeU32(stack[1]))
		if err != nil {
			return errors.BoundaryAPI(nil, "read script", err)
		}
		hash, isString := h.bridge.StoreScript(env, code).(string)
		if !isString {
			return nil
		}
		if err := mem.Write(api.DecodeU32(stack[2]), []byte(hash)); err != nil {
			h.bridge.DropScript(env, hash)
			return errors.BoundaryAPI(nil, "write script hash", err)
		}
		return nil
	})
	stack[0] = boolResult(ok)
}

func boolResult(ok bool) uint64 {
	if ok {
		return 1
	}
	return 0
}

func (h *Host) scriptDrop(_ context.Context, mod api.Module, stack []uint64) {
	h.call(mod, "script_drop", func(env host.Env, mem glidebridge.Memory) error {
		hash, err := guestString(mem, stack[0], stack[1], "script hash")
		if err != nil {
			return err
		}
		h.bridge.DropScript(env, hash)
		return nil
	})
}

func (h *Host) cursorRelease(_ context.Context, mod api.Module, stack []uint64) {
	h.call(mod, "cursor_release", func(env host.Env, mem glidebridge.Memory) error {
		cursor, err := guestString(mem, stack[0], stack[1], "cursor")
		if err != nil {
			return err
		}
		h.bridge.ReleaseNativeCursor(env, cursor)
		return nil
	})
}

func (h *Host) lastError(_ context.Context, mod api.Module, stack []uint64) {
	ptr, capacity := api.DecodeU32(stack[0]), api.DecodeU32(stack[1])

	h.mu.Lock()
	msg, ok := h.lastErr[mod.Name()]
	delete(h.lastErr, mod.Name())
	h.mu.Unlock()

	if !ok {
		stack[0] = 0
		return
	}

	data := []byte(msg)
	if uint32(len(data)) > capacity {
		data = data[:capacity]
	}
	if mem := mod.Memory(); mem == nil || !mem.Write(ptr, data) {
		Logger().Warn("dropping guest error, buffer out of bounds",
			zap.String("module", mod.Name()),
			zap.String("message", msg))
		stack[0] = 0
		return
	}
	stack[0] = api.EncodeI32(int32(len(msg)))
}
