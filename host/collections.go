package host

import (
	"math"
	"math/big"
	"reflect"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type (
	bytesKey string
	bigKey   string
	floatKey uint64
	identity struct{ _ byte }
)

var canonicalNaN = math.Float64bits(math.NaN())

// keyOf maps an object to the comparable key used for equality.
func keyOf(v Object) any {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		return bytesKey(x)
	case *big.Int:
		return bigKey(x.String())
	case float64:
		// Doubles compare by bit pattern with every NaN folded into one,
		// so NaN equals NaN and 0.0 differs from -0.0.
		if math.IsNaN(x) {
			return floatKey(canonicalNaN)
		}
		return floatKey(math.Float64bits(x))
	}
	if reflect.TypeOf(v).Comparable() {
		return v
	}
	return &identity{}
}

type mapEntry struct {
	key   Object
	value Object
}

// Map is an insertion-ordered map. Re-putting a key replaces the value and
// keeps the key's original position.
type Map struct {
	m *orderedmap.OrderedMap[any, mapEntry]
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{m: orderedmap.New[any, mapEntry]()}
}

// Put stores v under k.
func (m *Map) Put(k, v Object) {
	key := keyOf(k)
	if old, ok := m.m.Get(key); ok {
		m.m.Set(key, mapEntry{key: old.key, value: v})
		return
	}
	m.m.Set(key, mapEntry{key: k, value: v})
}

// Get returns the value stored under k.
func (m *Map) Get(k Object) (Object, bool) {
	e, ok := m.m.Get(keyOf(k))
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Len returns the number of entries.
func (m *Map) Len() int {
	return m.m.Len()
}

// Range calls fn for each entry in insertion order until fn returns false.
func (m *Map) Range(fn func(k, v Object) bool) {
	for p := m.m.Oldest(); p != nil; p = p.Next() {
		if !fn(p.Value.key, p.Value.value) {
			return
		}
	}
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []Object {
	keys := make([]Object, 0, m.Len())
	m.Range(func(k, _ Object) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

// Set is an unordered collection of distinct objects.
type Set struct {
	m map[any]Object
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{m: make(map[any]Object)}
}

// Add inserts v and reports whether it was not already present.
func (s *Set) Add(v Object) bool {
	key := keyOf(v)
	if _, ok := s.m[key]; ok {
		return false
	}
	s.m[key] = v
	return true
}

// Contains reports whether an object equal to v is present.
func (s *Set) Contains(v Object) bool {
	_, ok := s.m[keyOf(v)]
	return ok
}

// Len returns the number of elements.
func (s *Set) Len() int {
	return len(s.m)
}

// Elements returns the elements in unspecified order.
func (s *Set) Elements() []Object {
	out := make([]Object, 0, len(s.m))
	for _, v := range s.m {
		out = append(out, v)
	}
	return out
}
