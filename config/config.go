// Package config loads bridge settings from an optional YAML file and
// GLIDE_BRIDGE_* environment variables.
package config

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Duration wraps time.Duration for text unmarshaling (YAML, env vars).
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	if parsed < 0 {
		return fmt.Errorf("duration cannot be negative: %s", text)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration().String()), nil
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Duration().String())
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Config is the bridge configuration.
type Config struct {
	Logger    LoggerConfig    `koanf:"logger"`
	Listener  ListenerConfig  `koanf:"listener"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// LoggerConfig sets the logger used until the host calls InitInternal.
type LoggerConfig struct {
	Level string `koanf:"level" validate:"oneof=error warn info debug trace off"`
	File  string `koanf:"file"`
}

// ListenerConfig configures the background socket listener.
type ListenerConfig struct {
	SocketDir string `koanf:"socket_dir"`
	// HandshakeTimeout bounds how long StartSocketListener waits for the
	// bind result. Zero waits indefinitely.
	HandshakeTimeout Duration `koanf:"handshake_timeout"`
}

// TelemetryConfig holds OpenTelemetry defaults not passed by the host.
type TelemetryConfig struct {
	// SamplePercentage is nil when unset, so an explicit 0 disables
	// sampling instead of selecting the default.
	SamplePercentage *uint32  `koanf:"sample_percentage" validate:"omitnil,lte=100"`
	ServiceName      string   `koanf:"service_name" validate:"required"`
	FlushInterval    Duration `koanf:"flush_interval"`
}

// Percentage returns the trace sample percentage, or the default when
// unset.
func (t TelemetryConfig) Percentage() uint32 {
	if t.SamplePercentage == nil {
		return DefaultSamplePercentage
	}
	return *t.SamplePercentage
}

const (
	DefaultLogLevel         = "warn"
	DefaultServiceName      = "glide-bridge"
	DefaultSamplePercentage = 1
	DefaultFlushInterval    = Duration(5 * time.Second)
)

var validate = validator.New()

// Default returns the configuration used when nothing is set.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = DefaultLogLevel
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = DefaultServiceName
	}
	if cfg.Telemetry.SamplePercentage == nil {
		pct := uint32(DefaultSamplePercentage)
		cfg.Telemetry.SamplePercentage = &pct
	}
	if cfg.Telemetry.FlushInterval == 0 {
		cfg.Telemetry.FlushInterval = DefaultFlushInterval
	}
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
