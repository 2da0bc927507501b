// Package host defines the host-runtime side of the boundary.
//
// The bridge never builds host objects directly. Every allocation, array
// store, map insertion and exception goes through an Env, the same way a JNI
// bridge goes through JNIEnv. An Env is scoped to one boundary call and is
// not safe for concurrent use.
//
// Native is an in-process Env whose object graph is made of plain Go values:
//
//	Host object        Go value
//	────────────────────────────────────
//	null               nil
//	text               string
//	byte array         []byte
//	Long / Double      int64 / float64
//	Boolean            bool
//	BigInteger         *big.Int
//	Object[]           []any
//	ordered map        *Map
//	set                *Set
//	exception          *Exception
//
// Map keeps insertion order and Set is unordered. Both compare byte arrays
// and big integers by content; other non-comparable objects (arrays, maps)
// are compared by identity, so they never collapse.
package host
