package resource

import "fmt"

// Handle is an opaque reference to a leaked allocation.
// It encodes (generation << 32) | (slot + 1) and is always positive for a
// live allocation. Zero and negative values are never issued.
type Handle int64

func makeHandle(slot int, gen uint32) Handle {
	return Handle(int64(gen)<<32 | int64(slot+1))
}

func (h Handle) slot() int {
	return int(uint32(h)) - 1
}

func (h Handle) generation() uint32 {
	return uint32(uint64(h) >> 32)
}

// Kind tags what a handle refers to so one kind cannot be redeemed as
// another.
type Kind uint8

const (
	KindBytesVec Kind = iota + 1 // argument byte-buffer vector
	KindReply                    // decoded reply value
	KindSpan                     // shared telemetry span
)

func (k Kind) String() string {
	switch k {
	case KindBytesVec:
		return "bytes_vec"
	case KindReply:
		return "reply"
	case KindSpan:
		return "span"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// EventType identifies a lifecycle transition.
type EventType uint8

const (
	EventCreated  EventType = iota // leaked across the boundary
	EventRedeemed                  // reclaimed by its handle
	EventDropped                   // released by Close
)

// Event represents a resource lifecycle event.
type Event struct {
	Value  any
	Handle Handle
	Kind   Kind
	Type   EventType
}

// Observer receives notifications about resource lifecycle events.
type Observer interface {
	OnResourceEvent(Event)
}

// Dropper is optionally implemented by values that need cleanup when the
// table is closed with them still leaked.
type Dropper interface {
	Drop()
}
