package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Kind categorizes the error
type Kind string

const (
	KindDecoding         Kind = "decoding"          // text validation failure
	KindInvalidHandle    Kind = "invalid_handle"    // bad, stale or reused handle
	KindTransportStartup Kind = "transport_startup" // listener failed to bind
	KindLoggerConfig     Kind = "logger_config"     // bad level or log path
	KindTelemetryConfig  Kind = "telemetry_config"  // bad endpoint, percentage or interval
	KindBoundaryAPI      Kind = "boundary_api"      // host runtime call failed
	KindPanic            Kind = "panic"             // contained native fault
	KindUnsupported      Kind = "unsupported"       // reply shape the translator does not handle
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Value  any
	Cause  error
	Kind   Kind
	Op     string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Op != "" {
		b.WriteByte('[')
		b.WriteString(e.Op)
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, ""))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Message is the human-readable text handed to the host runtime.
// It leaves out the operation tag and kind, which the host sees as the
// exception class.
func (e *Error) Message() string {
	msg := e.Detail
	if len(e.Path) > 0 {
		msg = strings.Join(e.Path, "") + ": " + msg
	}
	if e.Cause != nil {
		cause := e.Cause.Error()
		if inner, ok := e.Cause.(*Error); ok {
			cause = inner.Message()
		}
		if msg == "" {
			return cause
		}
		return msg + ": " + cause
	}
	if msg == "" {
		return string(e.Kind)
	}
	return msg
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// A target without an Op matches any operation.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Op != "" && t.Op != e.Op {
		return false
	}
	return e.Kind == t.Kind
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(kind Kind) *Builder {
	return &Builder{
		err: Error{
			Kind: kind,
		},
	}
}

// Op sets the boundary operation the error belongs to
func (b *Builder) Op(op string) *Builder {
	b.err.Op = op
	return b
}

// Path sets the element path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// KindOf returns the Kind of the first *Error in err's chain.
// Errors that are not bridge errors report KindBoundaryAPI.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindBoundaryAPI
}

// WithOp returns err as an *Error tagged with op. Untyped errors are
// wrapped as KindBoundaryAPI; an existing tag is kept.
func WithOp(err error, op string) *Error {
	var e *Error
	if stderrors.As(err, &e) {
		if e.Op == "" {
			e.Op = op
		}
		return e
	}
	return &Error{
		Kind:  KindBoundaryAPI,
		Op:    op,
		Cause: err,
	}
}

// Convenience constructors for common error patterns

// InvalidUTF8 creates a decoding error for bytes that are not valid UTF-8
func InvalidUTF8(path []string, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Kind:   KindDecoding,
		Path:   path,
		Detail: fmt.Sprintf("invalid utf-8 sequence: %x", preview),
	}
}

// Decoding creates a decoding error
func Decoding(path []string, detail string) *Error {
	return &Error{
		Kind:   KindDecoding,
		Path:   path,
		Detail: detail,
	}
}

// InvalidHandle creates an invalid handle error
func InvalidHandle(handle int64, detail string) *Error {
	return &Error{
		Kind:   KindInvalidHandle,
		Detail: detail,
		Value:  handle,
	}
}

// TransportStartup creates a listener startup error
func TransportStartup(detail string, cause error) *Error {
	return &Error{
		Kind:   KindTransportStartup,
		Detail: detail,
		Cause:  cause,
	}
}

// LoggerConfig creates a logger configuration error
func LoggerConfig(detail string, cause error) *Error {
	return &Error{
		Kind:   KindLoggerConfig,
		Detail: detail,
		Cause:  cause,
	}
}

// TelemetryConfig creates an OpenTelemetry configuration error
func TelemetryConfig(detail string, cause error) *Error {
	return &Error{
		Kind:   KindTelemetryConfig,
		Detail: detail,
		Cause:  cause,
	}
}

// BoundaryAPI wraps a failed host runtime call
func BoundaryAPI(path []string, detail string, cause error) *Error {
	return &Error{
		Kind:   KindBoundaryAPI,
		Path:   path,
		Detail: detail,
		Cause:  cause,
	}
}

// Panic converts a recovered panic value into an error for op
func Panic(op string, recovered any) *Error {
	e := &Error{
		Kind:   KindPanic,
		Op:     op,
		Detail: fmt.Sprintf("Native function %s panicked: %v", op, recovered),
		Value:  recovered,
	}
	if cause, ok := recovered.(error); ok {
		e.Cause = cause
		e.Detail = fmt.Sprintf("Native function %s panicked", op)
	}
	return e
}

// Unsupported creates an unsupported operation error
func Unsupported(path []string, what string) *Error {
	return &Error{
		Kind:   KindUnsupported,
		Path:   path,
		Detail: what,
	}
}
