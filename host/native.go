package host

import (
	"fmt"
	"math/big"
)

// Native is an Env backed by plain Go values.
type Native struct {
	pending *Exception
}

var _ Env = (*Native)(nil)

// NewNative returns an Env for one boundary call.
func NewNative() *Native {
	return &Native{}
}

// Throw records a pending exception, replacing any earlier one.
func (n *Native) Throw(class ExceptionClass, message string) error {
	n.pending = &Exception{Class: class, Message: message}
	return nil
}

// Pending returns the exception raised during the call, if any.
func (n *Native) Pending() *Exception {
	return n.pending
}

// TakeException returns and clears the pending exception.
func (n *Native) TakeException() *Exception {
	e := n.pending
	n.pending = nil
	return e
}

func (n *Native) NewString(s string) (Object, error)      { return s, nil }
func (n *Native) NewLong(v int64) (Object, error)         { return v, nil }
func (n *Native) NewDouble(f float64) (Object, error)     { return f, nil }
func (n *Native) NewBoolean(b bool) (Object, error)       { return b, nil }
func (n *Native) NewOrderedMap() (Object, error)          { return NewMap(), nil }
func (n *Native) NewSet() (Object, error)                 { return NewSet(), nil }
func (n *Native) NewObjectArray(size int) (Object, error) { return make([]any, size), nil }

func (n *Native) NewByteArray(b []byte) (Object, error) {
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

func (n *Native) NewBigInteger(v *big.Int) (Object, error) {
	if v == nil {
		return nil, fmt.Errorf("host: nil big integer")
	}
	return new(big.Int).Set(v), nil
}

func (n *Native) NewException(class ExceptionClass, message string) (Object, error) {
	return &Exception{Class: class, Message: message}, nil
}

func (n *Native) SetArrayElement(arr Object, i int, v Object) error {
	a, ok := arr.([]any)
	if !ok {
		return typeError("Object[]", arr)
	}
	if i < 0 || i >= len(a) {
		return fmt.Errorf("host: array index %d out of bounds (length %d)", i, len(a))
	}
	a[i] = v
	return nil
}

func (n *Native) MapPut(m, k, v Object) error {
	hm, ok := m.(*Map)
	if !ok {
		return typeError("Map", m)
	}
	hm.Put(k, v)
	return nil
}

func (n *Native) SetAdd(s, v Object) error {
	hs, ok := s.(*Set)
	if !ok {
		return typeError("Set", s)
	}
	hs.Add(v)
	return nil
}

func (n *Native) StringValue(obj Object) (string, error) {
	switch v := obj.(type) {
	case nil:
		return "", ErrNull
	case string:
		return v, nil
	default:
		return "", typeError("String", obj)
	}
}

func (n *Native) ByteArrayValue(obj Object) ([]byte, error) {
	switch v := obj.(type) {
	case nil:
		return nil, ErrNull
	case []byte:
		out := make([]byte, len(v))
		copy(out, v)
		return out, nil
	default:
		return nil, typeError("byte[]", obj)
	}
}

func (n *Native) ArrayLength(obj Object) (int, error) {
	switch v := obj.(type) {
	case nil:
		return 0, ErrNull
	case []any:
		return len(v), nil
	case [][]byte:
		return len(v), nil
	default:
		return 0, typeError("Object[]", obj)
	}
}

func (n *Native) ArrayElement(obj Object, i int) (Object, error) {
	switch v := obj.(type) {
	case nil:
		return nil, ErrNull
	case []any:
		if i < 0 || i >= len(v) {
			return nil, fmt.Errorf("host: array index %d out of bounds (length %d)", i, len(v))
		}
		return v[i], nil
	case [][]byte:
		if i < 0 || i >= len(v) {
			return nil, fmt.Errorf("host: array index %d out of bounds (length %d)", i, len(v))
		}
		return v[i], nil
	default:
		return nil, typeError("Object[]", obj)
	}
}

func typeError(want string, got Object) error {
	return fmt.Errorf("host: expected %s, got %T", want, got)
}
