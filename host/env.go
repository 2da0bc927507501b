package host

import (
	"errors"
	"math/big"
)

// Object is a reference to a value owned by the host runtime.
type Object = any

// ErrNull is returned when a host argument that must be read is null.
var ErrNull = errors.New("host: null object")

// ExceptionClass names the host exception type that is raised.
type ExceptionClass string

const (
	ClassRequest         ExceptionClass = "RequestException"
	ClassRuntime         ExceptionClass = "RuntimeException"
	ClassIllegalArgument ExceptionClass = "IllegalArgumentException"
	ClassConfiguration   ExceptionClass = "ConfigurationError"
	ClassClosing         ExceptionClass = "ClosingException"
)

// Thrower raises exceptions in the host runtime.
type Thrower interface {
	// Throw makes an exception pending for the current boundary call.
	Throw(class ExceptionClass, message string) error
}

// Env is the object-construction and argument-access surface of the host.
type Env interface {
	Thrower

	NewString(s string) (Object, error)
	NewByteArray(b []byte) (Object, error)
	NewLong(n int64) (Object, error)
	NewDouble(f float64) (Object, error)
	NewBoolean(b bool) (Object, error)
	NewBigInteger(n *big.Int) (Object, error)

	// NewObjectArray allocates an array of n nulls.
	NewObjectArray(n int) (Object, error)
	SetArrayElement(arr Object, i int, v Object) error

	// NewOrderedMap allocates an insertion-ordered map.
	NewOrderedMap() (Object, error)
	MapPut(m, k, v Object) error

	NewSet() (Object, error)
	SetAdd(s, v Object) error

	// NewException constructs, without throwing, an exception object.
	NewException(class ExceptionClass, message string) (Object, error)

	// StringValue reads a host string. Null yields ErrNull.
	StringValue(obj Object) (string, error)
	// ByteArrayValue copies a host byte array. Null yields ErrNull.
	ByteArrayValue(obj Object) ([]byte, error)
	ArrayLength(obj Object) (int, error)
	ArrayElement(obj Object, i int) (Object, error)
}
