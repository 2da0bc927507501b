package resource

import (
	"errors"
	"sync"
)

// ErrClosed is returned when inserting into a closed table.
var ErrClosed = errors.New("resource table closed")

const maxGeneration = 1<<31 - 1

// LocalBackend is the slot arena behind a Table. Freed slots are reused
// with a bumped generation so stale handles never alias a new allocation.
type LocalBackend struct {
	entries  []entry
	freeList []int
	live     int
	mu       sync.Mutex
	closed   bool
}

type entry struct {
	value any
	gen   uint32
	kind  Kind
	valid bool
}

type lookup uint8

const (
	lookupOK lookup = iota
	lookupNonPositive
	lookupUnknown
	lookupStale
	lookupWrongKind
)

// NewLocalBackend creates an empty arena.
func NewLocalBackend() *LocalBackend {
	return &LocalBackend{
		entries:  make([]entry, 0, 64),
		freeList: make([]int, 0, 16),
	}
}

// Create stores value and returns its handle.
func (b *LocalBackend) Create(kind Kind, value any) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, ErrClosed
	}

	b.live++
	if n := len(b.freeList); n > 0 {
		slot := b.freeList[n-1]
		b.freeList = b.freeList[:n-1]
		e := &b.entries[slot]
		e.value = value
		e.kind = kind
		e.valid = true
		return makeHandle(slot, e.gen), nil
	}

	b.entries = append(b.entries, entry{value: value, kind: kind, valid: true})
	return makeHandle(len(b.entries)-1, 0), nil
}

// check classifies handle against the arena. Callers hold mu.
func (b *LocalBackend) check(handle Handle, kind Kind) (*entry, lookup) {
	if handle <= 0 {
		return nil, lookupNonPositive
	}
	slot := handle.slot()
	if slot < 0 || slot >= len(b.entries) {
		return nil, lookupUnknown
	}
	e := &b.entries[slot]
	if !e.valid || e.gen != handle.generation() {
		return nil, lookupStale
	}
	if e.kind != kind {
		return e, lookupWrongKind
	}
	return e, lookupOK
}

// Get returns the value behind handle without reclaiming it.
func (b *LocalBackend) Get(handle Handle, kind Kind) (any, Kind, lookup) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, res := b.check(handle, kind)
	if res != lookupOK {
		if e != nil {
			return nil, e.kind, res
		}
		return nil, 0, res
	}
	return e.value, e.kind, lookupOK
}

// Take reclaims handle. At most one caller observes lookupOK for a given
// handle.
func (b *LocalBackend) Take(handle Handle, kind Kind) (any, Kind, lookup) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, res := b.check(handle, kind)
	if res != lookupOK {
		if e != nil {
			return nil, e.kind, res
		}
		return nil, 0, res
	}

	value := e.value
	b.release(handle.slot())
	return value, kind, lookupOK
}

func (b *LocalBackend) release(slot int) {
	e := &b.entries[slot]
	e.value = nil
	e.valid = false
	e.gen = (e.gen + 1) & maxGeneration
	b.freeList = append(b.freeList, slot)
	b.live--
}

// Close empties the arena and returns what was still live.
func (b *LocalBackend) Close() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	var dropped []Event
	for i := range b.entries {
		e := b.entries[i]
		if e.valid {
			dropped = append(dropped, Event{
				Type:   EventDropped,
				Handle: makeHandle(i, e.gen),
				Kind:   e.kind,
				Value:  e.value,
			})
		}
	}

	b.entries = nil
	b.freeList = nil
	b.live = 0
	return dropped
}

// Len returns the number of live allocations.
func (b *LocalBackend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.live
}

// Each iterates over live allocations under the arena lock.
func (b *LocalBackend) Each(fn func(Handle, Kind, any) bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, e := range b.entries {
		if e.valid {
			if !fn(makeHandle(i, e.gen), e.kind, e.value) {
				break
			}
		}
	}
}
