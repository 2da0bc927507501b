package bridge

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/wippyai/glide-bridge/core/otel"
	"github.com/wippyai/glide-bridge/errors"
	"github.com/wippyai/glide-bridge/guard"
	"github.com/wippyai/glide-bridge/host"
	"github.com/wippyai/glide-bridge/resource"
)

var validate = validator.New()

// telemetryRequest is the host's OpenTelemetry configuration. Endpoint
// presence and the flush interval are checked first. The traces endpoint
// is parsed before its sample percentage is checked, and the metrics
// endpoint after.
type telemetryRequest struct {
	Traces           *string
	Metrics          *string `validate:"required_without=Traces"`
	FlushIntervalMs  int64   `validate:"gt=0"`
	SamplePercentage *int32
}

func (r *telemetryRequest) validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) || len(verrs) == 0 {
		return errors.TelemetryConfig("invalid OpenTelemetry configuration", err)
	}

	switch fe := verrs[0]; fe.StructField() {
	case "Metrics":
		return errors.TelemetryConfig("At least one of traces or metrics must be provided for OpenTelemetry configuration.", nil)
	case "FlushIntervalMs":
		return errors.TelemetryConfig(fmt.Sprintf("InvalidInput: flushIntervalMs must be a positive integer (got: %d)", r.FlushIntervalMs), nil)
	default:
		return errors.TelemetryConfig(fe.Error(), nil)
	}
}

func (r *telemetryRequest) config() (otel.Config, error) {
	cfg := otel.Config{FlushInterval: time.Duration(r.FlushIntervalMs) * time.Millisecond}

	if r.Traces != nil {
		exp, err := otel.ParseExporter(*r.Traces)
		if err != nil {
			return otel.Config{}, err
		}
		if pct := *r.SamplePercentage; validate.Var(pct, "gte=0") != nil {
			return otel.Config{}, errors.TelemetryConfig(fmt.Sprintf("InvalidInput: traces_sample_percentage must be a positive integer (got: %d)", pct), nil)
		}
		cfg.Traces = &exp
		cfg.SamplePercentage = uint32(*r.SamplePercentage)
	}
	if r.Metrics != nil {
		exp, err := otel.ParseExporter(*r.Metrics)
		if err != nil {
			return otel.Config{}, err
		}
		cfg.Metrics = &exp
	}
	if r.SamplePercentage != nil {
		if pct := *r.SamplePercentage; validate.Var(pct, "lte=100") != nil {
			return otel.Config{}, errors.TelemetryConfig(fmt.Sprintf("InvalidInput: traces_sample_percentage must be between 0 and 100 (got: %d)", pct), nil)
		}
	}
	return cfg, nil
}

// InitOpenTelemetry validates the host's configuration and starts export.
// Null endpoints are absent. It returns null.
func (b *Bridge) InitOpenTelemetry(env host.Env, traces host.Object, samplePercentage int32, metrics host.Object, flushIntervalMs int64) host.Object {
	return guard.Call[host.Object](env, "initOpenTelemetry", nil, func() (host.Object, error) {
		req := telemetryRequest{FlushIntervalMs: flushIntervalMs}

		var err error
		if req.Traces, err = readOptionalString(env, traces, "traces endpoint"); err != nil {
			return nil, err
		}
		if req.Metrics, err = readOptionalString(env, metrics, "metrics endpoint"); err != nil {
			return nil, err
		}
		if req.Traces != nil {
			req.SamplePercentage = &samplePercentage
		}

		if err := req.validate(); err != nil {
			return nil, err
		}
		cfg, err := req.config()
		if err != nil {
			return nil, err
		}
		return nil, b.core.InitTelemetry(context.Background(), cfg)
	})
}

// CreateLeakedOtelSpan starts a span and returns a handle holding one
// reference to it.
func (b *Bridge) CreateLeakedOtelSpan(env host.Env, name host.Object) int64 {
	return guard.Call(env, "createLeakedOtelSpan", int64(0), func() (int64, error) {
		n, err := readString(env, name, "span name")
		if err != nil {
			return 0, err
		}

		span := b.core.NewSpan(n)
		ref := resource.NewShared(span, (*otel.Span).End)
		h, err := b.spans.Insert(ref)
		if err != nil {
			span.End()
			return 0, err
		}
		return int64(h), nil
	})
}

// DropOtelSpan releases the host's reference to a span. The span ends
// when no references remain.
func (b *Bridge) DropOtelSpan(env host.Env, handle int64) {
	guard.Do(env, "dropOtelSpan", func() error {
		ref, err := b.spans.Redeem(resource.Handle(handle))
		if err != nil {
			return err
		}
		ref.Release()
		return nil
	})
}
