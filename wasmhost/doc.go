// Package wasmhost exports the bridge to WebAssembly guests running on
// wazero.
//
// The host module (default name "glide_bridge") exposes the entry points
// that take only scalars and strings. Strings cross as a pointer and
// length into the guest's exported memory; a zero length with a zero
// pointer is a null string.
//
// Failures never trap the guest. A failing call returns its sentinel and
// records the exception message for the calling module, which the guest
// collects with last_error:
//
//	(import "glide_bridge" "span_create" (func (param i32 i32) (result i64)))
//	(import "glide_bridge" "last_error" (func (param i32 i32) (result i32)))
//
// last_error copies at most cap bytes of the message into the buffer,
// returns the full message length and clears the record. It returns 0
// when nothing failed.
package wasmhost
