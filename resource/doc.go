// Package resource leaks native allocations across the boundary as opaque
// integer handles and reclaims them.
//
// # Leak and Reclaim
//
// A value that must outlive one boundary call is stored in a Table and the
// host receives its Handle. The matching reclaim entry point redeems the
// handle exactly once:
//
//	table := resource.NewTable()
//
//	h, err := table.Insert(resource.KindReply, value)
//
//	// later, from another boundary call
//	value, err := table.Redeem(h, resource.KindReply)
//
//	// a second redeem of the same handle fails
//	_, err = table.Redeem(h, resource.KindReply) // KindInvalidHandle
//
// # Handles
//
// A handle packs a slot index with the slot's generation. Reclaiming a slot
// bumps its generation, so a stale handle is reported instead of aliasing
// whatever was stored in the slot next. Handles are always positive; zero
// is the failure sentinel at the boundary.
//
// Handles carry a Kind. Redeeming a reply handle as a span fails without
// consuming it.
//
// # Typed Views
//
//	replies := resource.NewTyped[resp.Value](table, resource.KindReply)
//	h, _ := replies.Insert(v)
//	v, err := replies.Redeem(h)
//
// # Shared Values
//
// Shared wraps a value whose lifetime is split between the host and native
// code. Each side holds a reference; the release function runs when the
// last one is released. Spans are leaked as Shared values.
//
// # Observers
//
// Observers see every Created, Redeemed and Dropped event; the statistics
// collector uses them to track live handles per kind.
//
// Close drops every allocation still leaked, calling Drop on values that
// implement Dropper.
package resource
