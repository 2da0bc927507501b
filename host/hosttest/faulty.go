// Package hosttest provides host environments for exercising failure paths.
package hosttest

import (
	"errors"
	"math/big"

	"github.com/wippyai/glide-bridge/host"
)

// ErrInjected is returned by a Faulty env when a failure is injected.
var ErrInjected = errors.New("hosttest: injected failure")

// Faulty wraps host.Native and fails or panics on a chosen operation.
//
// Operation names match the Env method names ("NewString", "MapPut", ...).
// After counts down matching calls before the fault fires, so After = 2
// lets two calls succeed.
type Faulty struct {
	*host.Native

	FailOn  string
	PanicOn string
	After   int

	calls map[string]int
}

// NewFaulty returns a Faulty env with no fault armed.
func NewFaulty() *Faulty {
	return &Faulty{Native: host.NewNative(), calls: make(map[string]int)}
}

// Calls reports how many times op was invoked.
func (f *Faulty) Calls(op string) int {
	return f.calls[op]
}

func (f *Faulty) check(op string) error {
	f.calls[op]++
	if op != f.FailOn && op != f.PanicOn {
		return nil
	}
	if f.calls[op] <= f.After {
		return nil
	}
	if op == f.PanicOn {
		panic("hosttest: injected panic in " + op)
	}
	return ErrInjected
}

func (f *Faulty) Throw(class host.ExceptionClass, message string) error {
	if err := f.check("Throw"); err != nil {
		return err
	}
	return f.Native.Throw(class, message)
}

func (f *Faulty) NewString(s string) (host.Object, error) {
	if err := f.check("NewString"); err != nil {
		return nil, err
	}
	return f.Native.NewString(s)
}

func (f *Faulty) NewByteArray(b []byte) (host.Object, error) {
	if err := f.check("NewByteArray"); err != nil {
		return nil, err
	}
	return f.Native.NewByteArray(b)
}

func (f *Faulty) NewLong(n int64) (host.Object, error) {
	if err := f.check("NewLong"); err != nil {
		return nil, err
	}
	return f.Native.NewLong(n)
}

func (f *Faulty) NewDouble(v float64) (host.Object, error) {
	if err := f.check("NewDouble"); err != nil {
		return nil, err
	}
	return f.Native.NewDouble(v)
}

func (f *Faulty) NewBoolean(b bool) (host.Object, error) {
	if err := f.check("NewBoolean"); err != nil {
		return nil, err
	}
	return f.Native.NewBoolean(b)
}

func (f *Faulty) NewBigInteger(n *big.Int) (host.Object, error) {
	if err := f.check("NewBigInteger"); err != nil {
		return nil, err
	}
	return f.Native.NewBigInteger(n)
}

func (f *Faulty) NewObjectArray(n int) (host.Object, error) {
	if err := f.check("NewObjectArray"); err != nil {
		return nil, err
	}
	return f.Native.NewObjectArray(n)
}

func (f *Faulty) SetArrayElement(arr host.Object, i int, v host.Object) error {
	if err := f.check("SetArrayElement"); err != nil {
		return err
	}
	return f.Native.SetArrayElement(arr, i, v)
}

func (f *Faulty) NewOrderedMap() (host.Object, error) {
	if err := f.check("NewOrderedMap"); err != nil {
		return nil, err
	}
	return f.Native.NewOrderedMap()
}

func (f *Faulty) MapPut(m, k, v host.Object) error {
	if err := f.check("MapPut"); err != nil {
		return err
	}
	return f.Native.MapPut(m, k, v)
}

func (f *Faulty) NewSet() (host.Object, error) {
	if err := f.check("NewSet"); err != nil {
		return nil, err
	}
	return f.Native.NewSet()
}

func (f *Faulty) SetAdd(s, v host.Object) error {
	if err := f.check("SetAdd"); err != nil {
		return err
	}
	return f.Native.SetAdd(s, v)
}

func (f *Faulty) NewException(class host.ExceptionClass, message string) (host.Object, error) {
	if err := f.check("NewException"); err != nil {
		return nil, err
	}
	return f.Native.NewException(class, message)
}

func (f *Faulty) StringValue(obj host.Object) (string, error) {
	if err := f.check("StringValue"); err != nil {
		return "", err
	}
	return f.Native.StringValue(obj)
}

func (f *Faulty) ByteArrayValue(obj host.Object) ([]byte, error) {
	if err := f.check("ByteArrayValue"); err != nil {
		return nil, err
	}
	return f.Native.ByteArrayValue(obj)
}

func (f *Faulty) ArrayLength(obj host.Object) (int, error) {
	if err := f.check("ArrayLength"); err != nil {
		return 0, err
	}
	return f.Native.ArrayLength(obj)
}

func (f *Faulty) ArrayElement(obj host.Object, i int) (host.Object, error) {
	if err := f.check("ArrayElement"); err != nil {
		return nil, err
	}
	return f.Native.ArrayElement(obj, i)
}
