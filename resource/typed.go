package resource

import "github.com/wippyai/glide-bridge/errors"

// Typed is a type-safe view over one kind of handle.
type Typed[T any] struct {
	table *Table
	kind  Kind
}

// NewTyped returns a view of t restricted to kind.
func NewTyped[T any](t *Table, kind Kind) *Typed[T] {
	return &Typed[T]{table: t, kind: kind}
}

// Insert leaks value.
func (v *Typed[T]) Insert(value T) (Handle, error) {
	return v.table.Insert(v.kind, value)
}

// Redeem reclaims the value behind handle.
func (v *Typed[T]) Redeem(handle Handle) (T, error) {
	raw, err := v.table.Redeem(handle, v.kind)
	if err != nil {
		var zero T
		return zero, err
	}
	return v.cast(handle, raw)
}

// Borrow returns the value behind handle without reclaiming it.
func (v *Typed[T]) Borrow(handle Handle) (T, error) {
	raw, err := v.table.Borrow(handle, v.kind)
	if err != nil {
		var zero T
		return zero, err
	}
	return v.cast(handle, raw)
}

// Len returns the number of live allocations of this kind.
func (v *Typed[T]) Len() int {
	n := 0
	v.table.Each(func(_ Handle, k Kind, _ any) bool {
		if k == v.kind {
			n++
		}
		return true
	})
	return n
}

// Each iterates over live allocations of this kind.
func (v *Typed[T]) Each(fn func(Handle, T) bool) {
	v.table.Each(func(h Handle, k Kind, raw any) bool {
		if k != v.kind {
			return true
		}
		value, ok := raw.(T)
		if !ok {
			return true
		}
		return fn(h, value)
	})
}

func (v *Typed[T]) cast(handle Handle, raw any) (T, error) {
	value, ok := raw.(T)
	if !ok {
		var zero T
		return zero, errors.New(errors.KindInvalidHandle).
			Value(int64(handle)).
			Detail("handle %d holds %T", int64(handle), raw).
			Build()
	}
	return value, nil
}
