package otel

import (
	"context"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Span is a span the host holds through a leaked handle.
type Span struct {
	span    trace.Span
	ctx     context.Context
	tracer  trace.Tracer
	created metric.Int64Counter
	ended   atomic.Bool
}

func newSpan(parent context.Context, tracer trace.Tracer, name string, created metric.Int64Counter) *Span {
	ctx, span := tracer.Start(parent, name)
	if created != nil {
		created.Add(ctx, 1, metric.WithAttributes(attribute.Bool("root", !trace.SpanFromContext(parent).SpanContext().IsValid())))
	}
	return &Span{span: span, ctx: ctx, tracer: tracer, created: created}
}

// Child starts a span under s.
func (s *Span) Child(name string) *Span {
	return newSpan(s.ctx, s.tracer, name, s.created)
}

// AddEvent records a named event.
func (s *Span) AddEvent(name string, attrs ...attribute.KeyValue) {
	s.span.AddEvent(name, trace.WithAttributes(attrs...))
}

// SetError marks the span failed.
func (s *Span) SetError(msg string) {
	s.span.SetStatus(codes.Error, msg)
}

// SetOK marks the span successful.
func (s *Span) SetOK() {
	s.span.SetStatus(codes.Ok, "")
}

// End ends the span. Only the first call has an effect.
func (s *Span) End() {
	if s.ended.CompareAndSwap(false, true) {
		s.span.End()
	}
}

// Ended reports whether End has been called.
func (s *Span) Ended() bool {
	return s.ended.Load()
}

// Context returns a context carrying the span.
func (s *Span) Context() context.Context {
	return s.ctx
}

// SpanContext returns the span's identity.
func (s *Span) SpanContext() trace.SpanContext {
	return s.span.SpanContext()
}
