// Package glidebridge is the native side of a boundary layer that lets a
// managed host runtime drive a Valkey/Redis client core.
//
// The bridge moves four kinds of things across the boundary: reply values
// translated into host objects, native allocations leaked as opaque
// handles, failures contained as host exceptions, and the result of
// starting the background socket listener.
//
// # Architecture Overview
//
//	glidebridge/         Root package with boundary constants and guest memory
//	├── resp/            Decoded protocol reply values
//	├── host/            Host object model and the Env the bridge calls into
//	├── transcoder/      Reply value to host object translation
//	├── resource/        Handle table for leaked allocations
//	├── guard/           Panic and error containment for entry points
//	├── handshake/       One-shot startup result delivery
//	├── errors/          Structured error types
//	├── bridge/          Boundary entry points
//	├── core/            Native collaborators (logger, listener, telemetry, ...)
//	├── config/          File and environment configuration
//	├── wasmhost/        Entry points exported to WebAssembly guests
//	└── cmd/glide-bridge Command line front end
//
// # Quick Start
//
//	c, err := core.New(nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
//	b := bridge.New(c)
//	env := host.NewNative()
//
//	h, _ := b.LeakReply(resp.Array(resp.Simple("a"), resp.Int(1)))
//	obj := b.ValueFromPointer(env, h) // []any{"a", int64(1)}
//
//	if exc := env.TakeException(); exc != nil {
//	    log.Printf("%s", exc)
//	}
//
// # Failure Model
//
// Entry points never panic and never return an error to the host. A
// failure leaves exactly one pending exception on the Env and the entry
// point returns its sentinel: nil, zero, or nothing.
//
// # Thread Safety
//
// The Bridge and Core are safe for concurrent use. A host.Native Env
// belongs to one call and must not be shared between goroutines.
package glidebridge
