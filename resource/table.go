package resource

import (
	"sync"

	"github.com/wippyai/glide-bridge/errors"
)

// Table leaks values across the boundary as handles and reclaims them.
type Table struct {
	backend   *LocalBackend
	observers []Observer
	obsMu     sync.RWMutex
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		backend: NewLocalBackend(),
	}
}

// Insert leaks value and returns its handle.
func (t *Table) Insert(kind Kind, value any) (Handle, error) {
	handle, err := t.backend.Create(kind, value)
	if err != nil {
		return 0, errors.New(errors.KindInvalidHandle).
			Detail("cannot leak %s", kind).
			Cause(err).
			Build()
	}

	t.notify(Event{
		Type:   EventCreated,
		Handle: handle,
		Kind:   kind,
		Value:  value,
	})

	return handle, nil
}

// Redeem reclaims the value behind handle. A handle is redeemable once;
// every later attempt fails with an invalid handle error. A kind mismatch
// fails without reclaiming.
func (t *Table) Redeem(handle Handle, kind Kind) (any, error) {
	value, actual, res := t.backend.Take(handle, kind)
	if res != lookupOK {
		return nil, handleError(handle, kind, actual, res)
	}

	t.notify(Event{
		Type:   EventRedeemed,
		Handle: handle,
		Kind:   kind,
		Value:  value,
	})

	return value, nil
}

// Borrow returns the value behind handle without reclaiming it.
func (t *Table) Borrow(handle Handle, kind Kind) (any, error) {
	value, actual, res := t.backend.Get(handle, kind)
	if res != lookupOK {
		return nil, handleError(handle, kind, actual, res)
	}
	return value, nil
}

// Subscribe adds an observer for lifecycle events.
func (t *Table) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Unsubscribe removes an observer.
func (t *Table) Unsubscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

// Len returns the number of live allocations.
func (t *Table) Len() int {
	return t.backend.Len()
}

// Each iterates over live allocations.
func (t *Table) Each(fn func(Handle, Kind, any) bool) {
	t.backend.Each(fn)
}

// Close drops every live allocation and stops accepting inserts.
// Handles issued before Close fail to redeem afterwards.
func (t *Table) Close() error {
	for _, e := range t.backend.Close() {
		if d, ok := e.Value.(Dropper); ok {
			d.Drop()
		}
		t.notify(e)
	}
	return nil
}

func (t *Table) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnResourceEvent(e)
	}
}

func handleError(handle Handle, want, actual Kind, res lookup) error {
	switch res {
	case lookupNonPositive:
		return errors.InvalidHandle(int64(handle), "Received an invalid pointer value.")
	case lookupWrongKind:
		return errors.New(errors.KindInvalidHandle).
			Value(int64(handle)).
			Detail("handle %d refers to a %s, not a %s", int64(handle), actual, want).
			Build()
	case lookupStale:
		return errors.New(errors.KindInvalidHandle).
			Value(int64(handle)).
			Detail("handle %d was already reclaimed", int64(handle)).
			Build()
	default:
		return errors.New(errors.KindInvalidHandle).
			Value(int64(handle)).
			Detail("handle %d does not refer to a leaked %s", int64(handle), want).
			Build()
	}
}
