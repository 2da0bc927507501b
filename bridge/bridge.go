// Package bridge implements the boundary entry points the host runtime
// calls. Each one runs under guard, so it returns either a value or its
// sentinel with a single pending host exception.
package bridge

import (
	stderrors "errors"

	"github.com/wippyai/glide-bridge/core"
	"github.com/wippyai/glide-bridge/core/otel"
	"github.com/wippyai/glide-bridge/errors"
	"github.com/wippyai/glide-bridge/host"
	"github.com/wippyai/glide-bridge/resource"
	"github.com/wippyai/glide-bridge/resp"
)

// SpanRef is a leaked span reference.
type SpanRef = *resource.Shared[*otel.Span]

// Bridge binds the entry points to a Core.
type Bridge struct {
	core    *core.Core
	replies *resource.Typed[resp.Value]
	args    *resource.Typed[[][]byte]
	spans   *resource.Typed[SpanRef]
}

// New returns a Bridge over c.
func New(c *core.Core) *Bridge {
	return &Bridge{
		core:    c,
		replies: resource.NewTyped[resp.Value](c.Handles, resource.KindReply),
		args:    resource.NewTyped[[][]byte](c.Handles, resource.KindBytesVec),
		spans:   resource.NewTyped[SpanRef](c.Handles, resource.KindSpan),
	}
}

// Default returns a Bridge over core.Default().
func Default() (*Bridge, error) {
	c, err := core.Default()
	if err != nil {
		return nil, err
	}
	return New(c), nil
}

// Core returns the Core the bridge delegates to.
func (b *Bridge) Core() *core.Core {
	return b.core
}

// LeakReply hands a decoded reply to the host as a handle, redeemed by
// ValueFromPointer or ValueFromPointerBinary.
func (b *Bridge) LeakReply(v resp.Value) (int64, error) {
	h, err := b.replies.Insert(v)
	return int64(h), err
}

// TakeArgs reclaims an argument vector leaked by CreateLeakedBytesVec.
func (b *Bridge) TakeArgs(handle int64) ([][]byte, error) {
	return b.args.Redeem(resource.Handle(handle))
}

// BorrowSpan returns a new reference to a span leaked by
// CreateLeakedOtelSpan, for use as a parent. The caller releases it.
func (b *Bridge) BorrowSpan(handle int64) (SpanRef, error) {
	ref, err := b.spans.Borrow(resource.Handle(handle))
	if err != nil {
		return nil, err
	}
	clone, ok := ref.Clone()
	if !ok {
		return nil, errors.InvalidHandle(handle, "span already released")
	}
	return clone, nil
}

// readString reads a required host string.
func readString(env host.Env, obj host.Object, what string) (string, error) {
	s, err := env.StringValue(obj)
	if err != nil {
		return "", errors.BoundaryAPI(nil, "read "+what, err)
	}
	return s, nil
}

// readOptionalString reads a host string where null means absent.
func readOptionalString(env host.Env, obj host.Object, what string) (*string, error) {
	s, err := env.StringValue(obj)
	if stderrors.Is(err, host.ErrNull) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.BoundaryAPI(nil, "read "+what, err)
	}
	return &s, nil
}

func newString(env host.Env, s string) (host.Object, error) {
	obj, err := env.NewString(s)
	if err != nil {
		return nil, errors.BoundaryAPI(nil, "new string", err)
	}
	return obj, nil
}
