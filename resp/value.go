package resp

import (
	"math/big"
)

// Kind discriminates the cases of a Value.
type Kind uint8

const (
	KindNil Kind = iota
	KindSimpleString
	KindOkay
	KindInt
	KindBulkString
	KindArray
	KindMap
	KindDouble
	KindBoolean
	KindVerbatimString
	KindBigNumber
	KindSet
	KindAttribute
	KindPush
	KindServerError
)

var kindNames = [...]string{
	KindNil:            "nil",
	KindSimpleString:   "simple-string",
	KindOkay:           "okay",
	KindInt:            "int",
	KindBulkString:     "bulk-string",
	KindArray:          "array",
	KindMap:            "map",
	KindDouble:         "double",
	KindBoolean:        "boolean",
	KindVerbatimString: "verbatim-string",
	KindBigNumber:      "big-number",
	KindSet:            "set",
	KindAttribute:      "attribute",
	KindPush:           "push",
	KindServerError:    "server-error",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Pair is one entry of a map or attribute table.
type Pair struct {
	Key   Value
	Value Value
}

// Value is a decoded reply. Only the fields that belong to Kind are set.
type Value struct {
	Big    *big.Int
	Err    *ServerError
	Data   *Value // attribute payload
	Str    string // simple and verbatim strings
	Format VerbatimFormat
	Bytes  []byte  // bulk strings
	Elems  []Value // array, set and push payloads
	Pairs  []Pair  // map entries and attributes
	Push   PushKind
	Int    int64
	Float  float64
	Kind   Kind
	Bool   bool
}

// Nil returns the null reply.
func Nil() Value { return Value{Kind: KindNil} }

// Okay returns the status marker reply.
func Okay() Value { return Value{Kind: KindOkay} }

// Simple returns a simple string reply.
func Simple(s string) Value { return Value{Kind: KindSimpleString, Str: s} }

// Bulk returns a binary string reply.
func Bulk(b []byte) Value { return Value{Kind: KindBulkString, Bytes: b} }

// Int returns an integer reply.
func Int(n int64) Value { return Value{Kind: KindInt, Int: n} }

// Double returns a floating point reply.
func Double(f float64) Value { return Value{Kind: KindDouble, Float: f} }

// Boolean returns a boolean reply.
func Boolean(b bool) Value { return Value{Kind: KindBoolean, Bool: b} }

// Verbatim returns a typed string reply.
func Verbatim(format VerbatimFormat, text string) Value {
	return Value{Kind: KindVerbatimString, Format: format, Str: text}
}

// BigNumber returns an arbitrary precision integer reply.
func BigNumber(n *big.Int) Value { return Value{Kind: KindBigNumber, Big: n} }

// Array returns an array reply.
func Array(elems ...Value) Value { return Value{Kind: KindArray, Elems: elems} }

// Set returns a set reply.
func Set(elems ...Value) Value { return Value{Kind: KindSet, Elems: elems} }

// Map returns a map reply; pair order is preserved.
func Map(pairs ...Pair) Value { return Value{Kind: KindMap, Pairs: pairs} }

// Attribute returns a reply carrying out-of-band attributes.
func Attribute(data Value, attrs ...Pair) Value {
	return Value{Kind: KindAttribute, Data: &data, Pairs: attrs}
}

// Push returns an out-of-band push message.
func Push(kind PushKind, data ...Value) Value {
	return Value{Kind: KindPush, Push: kind, Elems: data}
}

// Error returns a server error reply.
func Error(code, detail string) Value {
	return Value{Kind: KindServerError, Err: &ServerError{Code: code, Detail: detail}}
}

// KV is shorthand for building map entries.
func KV(k, v Value) Pair { return Pair{Key: k, Value: v} }
