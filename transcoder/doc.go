// Package transcoder translates decoded protocol replies into host object
// graphs.
//
//	┌───────────────────────────────────────────────────────────┐
//	│ resp.Value ──→ [Decoder] ──→ host.Env ──→ host objects    │
//	└───────────────────────────────────────────────────────────┘
//
// # Reply Mapping
//
//	Reply               Text mode              Binary mode
//	──────────────────────────────────────────────────────────────
//	nil                 null                   null
//	simple string       String                 byte[]
//	verbatim string     String                 byte[]
//	bulk string         String (UTF-8 checked) byte[]
//	okay                "OK"                   "OK"
//	int / double / bool Long / Double / Boolean
//	big number          BigInteger
//	array               Object[] (same length, same order)
//	map                 insertion-ordered map (last write wins)
//	set                 set (equal elements collapse)
//	push                {"kind": String, "values": Object[]}
//	server error        RequestException object (returned, not thrown)
//	attribute           unsupported, panics
//
// Attribute replies are a deliberate limitation: translating one panics with
// an *errors.Error of KindUnsupported. Boundary entry points run under the
// guard package, which contains the panic.
//
// # Errors
//
// Failures carry the path to the offending element:
//
//	decoding at [2]{0}: invalid utf-8 sequence: c328
//	boundary_api at .values[1]: new byte array (caused by: ...)
//
// # Thread Safety
//
// A Decoder is bound to one host.Env and therefore to one boundary call.
// Use a new Decoder per call.
package transcoder
