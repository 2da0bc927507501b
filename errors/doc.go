// Package errors provides structured error types for the native bridge.
//
// Errors are categorized by Kind (the failure taxonomy the host runtime sees
// as an exception class) and tagged with Op, the boundary entry point that
// produced them. The Error type carries an element path for translation
// failures and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.KindDecoding).
//		Op("valueFromPointer").
//		Path("[2]", "{name}").
//		Detail("invalid utf-8 sequence").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.InvalidHandle(h, "handle already redeemed")
//	err := errors.TelemetryConfig("flushIntervalMs must be positive", nil)
//
// All errors implement the standard error interface and support errors.Is/As.
// A target built without an Op matches errors of the same Kind from any
// operation:
//
//	if errors.Is(err, &errors.Error{Kind: errors.KindInvalidHandle}) { ... }
package errors
