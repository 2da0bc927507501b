// Package resp models the decoded protocol reply handed over by the native
// client core.
//
// A Value is a closed variant discriminated by Kind. The core builds values
// with the constructors in this package once a protocol exchange has
// finished; the bridge then consumes each value exactly once, translating it
// into a host object graph:
//
//	v := resp.Array(resp.Bulk([]byte("a")), resp.Int(2), resp.Nil())
//
// Values are plain data and hold no resources.
package resp
