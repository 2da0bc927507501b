// Package handshake reports the outcome of a background startup back to
// the goroutine that requested it, exactly once.
package handshake

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/glide-bridge/errors"
)

// State is the lifecycle of a Handshake.
type State uint8

const (
	StateStarting State = iota
	StateReady
	StateFailed
	StateConsumed
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateConsumed:
		return "consumed"
	default:
		return "unknown"
	}
}

// ErrConsumed is returned by Wait after the result has been taken.
var ErrConsumed = errors.New(errors.KindTransportStartup).
	Detail("handshake result already consumed").
	Build()

// Handshake is a one-shot promise for a startup result.
type Handshake struct {
	done    chan struct{}
	err     error
	addr    string
	mu      sync.Mutex
	state   State
	waiting bool
}

// New returns a Handshake in StateStarting.
func New() *Handshake {
	return &Handshake{done: make(chan struct{})}
}

// Complete records the outcome. The first completion wins; later ones
// are dropped and report false.
func (h *Handshake) Complete(addr string, err error) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state != StateStarting {
		Logger().Debug("dropping late handshake completion",
			zap.String("state", h.state.String()),
			zap.String("addr", addr),
			zap.Error(err))
		return false
	}

	if err != nil {
		h.state = StateFailed
		h.err = err
	} else {
		h.state = StateReady
		h.addr = addr
	}
	close(h.done)
	return true
}

// Callback adapts Complete to a listener callback.
func (h *Handshake) Callback() func(addr string, err error) {
	return func(addr string, err error) {
		h.Complete(addr, err)
	}
}

// Abandon fails the handshake for a producer that will never complete it.
// It is a no-op once the handshake has completed.
func (h *Handshake) Abandon(cause error) bool {
	return h.Complete("", errors.TransportStartup("listener exited without reporting its address", cause))
}

// Wait blocks until the handshake completes or ctx is done, and returns
// the outcome. Only the first Wait receives it; any other returns
// ErrConsumed. When ctx ends first the handshake fails.
func (h *Handshake) Wait(ctx context.Context) (string, error) {
	h.mu.Lock()
	if h.waiting || h.state == StateConsumed {
		h.mu.Unlock()
		return "", ErrConsumed
	}
	h.waiting = true
	h.mu.Unlock()

	select {
	case <-h.done:
	case <-ctx.Done():
		h.Complete("", errors.TransportStartup("listener did not report its address", ctx.Err()))
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	addr, err := h.addr, h.err
	h.state = StateConsumed
	return addr, err
}

// Done is closed once the handshake completes.
func (h *Handshake) Done() <-chan struct{} {
	return h.done
}

// State returns the current state.
func (h *Handshake) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}
