package bridge

import (
	stderrors "errors"
	"strconv"

	"github.com/wippyai/glide-bridge/core/logger"
	"github.com/wippyai/glide-bridge/errors"
	"github.com/wippyai/glide-bridge/guard"
	"github.com/wippyai/glide-bridge/handshake"
	"github.com/wippyai/glide-bridge/host"
)

// StartSocketListener starts the background listener, waits for it to
// bind and returns the socket path.
func (b *Bridge) StartSocketListener(env host.Env) host.Object {
	return guard.Call[host.Object](env, "startSocketListener", nil, func() (host.Object, error) {
		hs := handshake.New()
		b.core.Listener.Start(hs.Callback())

		ctx, cancel := b.core.HandshakeContext()
		defer cancel()

		addr, err := hs.Wait(ctx)
		if err != nil {
			return nil, err
		}
		return newString(env, addr)
	})
}

// StoreScript caches a script body and returns its SHA1 hash.
func (b *Bridge) StoreScript(env host.Env, code host.Object) host.Object {
	return guard.Call[host.Object](env, "storeScript", nil, func() (host.Object, error) {
		data, err := env.ByteArrayValue(code)
		if err != nil {
			return nil, errors.BoundaryAPI(nil, "read script", err)
		}
		return newString(env, b.core.Scripts.Add(data))
	})
}

// DropScript releases one reference to a cached script.
func (b *Bridge) DropScript(env host.Env, hash host.Object) {
	guard.Do(env, "dropScript", func() error {
		h, err := readString(env, hash, "script hash")
		if err != nil {
			return err
		}
		b.core.Scripts.Remove(h)
		return nil
	})
}

// ReleaseNativeCursor releases the state behind a cluster scan cursor.
func (b *Bridge) ReleaseNativeCursor(env host.Env, cursor host.Object) {
	guard.Do(env, "releaseNativeCursor", func() error {
		id, err := readString(env, cursor, "cursor")
		if err != nil {
			return err
		}
		b.core.Scans.Remove(id)
		return nil
	})
}

// InitInternal configures the logger. A negative level selects the
// default; a null file name selects console output. It returns the level
// in effect.
func (b *Bridge) InitInternal(env host.Env, level int32, file host.Object) int32 {
	return guard.Call(env, "initInternal", int32(0), func() (int32, error) {
		var lvl *logger.Level
		if level >= 0 {
			l, err := logger.ParseLevel(level)
			if err != nil {
				return 0, err
			}
			lvl = &l
		}

		name, err := env.StringValue(file)
		if err != nil && !stderrors.Is(err, host.ErrNull) {
			return 0, errors.BoundaryAPI(nil, "read log file name", err)
		}

		got, err := b.core.Logger.Init(lvl, name)
		if err != nil {
			return 0, err
		}
		return int32(got), nil
	})
}

// LogInternal writes one host log record.
func (b *Bridge) LogInternal(env host.Env, level int32, id, message host.Object) {
	guard.Do(env, "logInternal", func() error {
		lvl, err := logger.ParseLevel(level)
		if err != nil {
			return err
		}
		ident, err := readString(env, id, "log identifier")
		if err != nil {
			return err
		}
		msg, err := readString(env, message, "log message")
		if err != nil {
			return err
		}
		b.core.Logger.Log(lvl, ident, msg)
		return nil
	})
}

// Statistics returns the process counters as an ordered map of strings.
func (b *Bridge) Statistics(env host.Env) host.Object {
	return guard.Call[host.Object](env, "getStatistics", nil, func() (host.Object, error) {
		snap := b.core.Stats.Snapshot()

		m, err := env.NewOrderedMap()
		if err != nil {
			return nil, errors.BoundaryAPI(nil, "new ordered map", err)
		}

		entries := []struct {
			key   string
			value int64
		}{
			{"total_connections", snap.TotalConnections},
			{"total_clients", snap.TotalClients},
			{"live_handles", snap.LiveHandles},
		}
		for _, e := range entries {
			k, err := newString(env, e.key)
			if err != nil {
				return nil, err
			}
			v, err := newString(env, strconv.FormatInt(e.value, 10))
			if err != nil {
				return nil, err
			}
			if err := env.MapPut(m, k, v); err != nil {
				return nil, errors.BoundaryAPI([]string{"{" + e.key + "}"}, "map put", err)
			}
		}
		return m, nil
	})
}
