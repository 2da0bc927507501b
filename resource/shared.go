package resource

import (
	"sync"
	"sync/atomic"
)

// Shared is a reference-counted value. The release function runs once,
// when the last reference is released.
type Shared[T any] struct {
	value   T
	release func(T)
	once    sync.Once
	refs    atomic.Int64
}

// NewShared returns a Shared holding one reference to value.
func NewShared[T any](value T, release func(T)) *Shared[T] {
	s := &Shared[T]{value: value, release: release}
	s.refs.Store(1)
	return s
}

// Value returns the shared value.
func (s *Shared[T]) Value() T {
	return s.value
}

// Clone takes another reference. It fails once the value has been
// released.
func (s *Shared[T]) Clone() (*Shared[T], bool) {
	for {
		n := s.refs.Load()
		if n <= 0 {
			return nil, false
		}
		if s.refs.CompareAndSwap(n, n+1) {
			return s, true
		}
	}
}

// Release drops one reference and reports whether it was the last.
func (s *Shared[T]) Release() bool {
	n := s.refs.Add(-1)
	if n > 0 {
		return false
	}
	if n == 0 {
		s.once.Do(func() {
			if s.release != nil {
				s.release(s.value)
			}
		})
		return true
	}
	s.refs.Store(0)
	return false
}

// Refs returns the current reference count.
func (s *Shared[T]) Refs() int64 {
	return s.refs.Load()
}

// Drop implements Dropper.
func (s *Shared[T]) Drop() {
	s.Release()
}
