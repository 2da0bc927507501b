package listener

import (
	"context"
	"sync/atomic"

	"google.golang.org/grpc/stats"
)

type connKey struct{}

type connState struct {
	attached atomic.Bool
}

// connStats counts connections, and clients as connections that have
// issued at least one call.
type connStats struct {
	counters Counters
}

var _ stats.Handler = (*connStats)(nil)

func (h *connStats) TagConn(ctx context.Context, _ *stats.ConnTagInfo) context.Context {
	return context.WithValue(ctx, connKey{}, &connState{})
}

func (h *connStats) HandleConn(ctx context.Context, s stats.ConnStats) {
	if h.counters == nil {
		return
	}
	switch s.(type) {
	case *stats.ConnBegin:
		h.counters.ConnectionOpened()
	case *stats.ConnEnd:
		h.counters.ConnectionClosed()
		if st, ok := ctx.Value(connKey{}).(*connState); ok && st.attached.Load() {
			h.counters.ClientDetached()
		}
	}
}

func (h *connStats) TagRPC(ctx context.Context, _ *stats.RPCTagInfo) context.Context {
	return ctx
}

func (h *connStats) HandleRPC(ctx context.Context, s stats.RPCStats) {
	if h.counters == nil {
		return
	}
	if _, ok := s.(*stats.Begin); !ok {
		return
	}
	if st, ok := ctx.Value(connKey{}).(*connState); ok && st.attached.CompareAndSwap(false, true) {
		h.counters.ClientAttached()
	}
}
