package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "warn", cfg.Logger.Level)
	assert.Equal(t, "glide-bridge", cfg.Telemetry.ServiceName)
	assert.Equal(t, uint32(1), cfg.Telemetry.Percentage())
	assert.Equal(t, 5*time.Second, cfg.Telemetry.FlushInterval.Duration())
	assert.Zero(t, cfg.Listener.HandshakeTimeout)
	require.NoError(t, cfg.Validate())
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
logger:
  level: debug
  file: bridge.log
listener:
  socket_dir: /run/glide
  handshake_timeout: 3s
telemetry:
  service_name: orders
  sample_percentage: 25
  flush_interval: 250ms
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "bridge.log", cfg.Logger.File)
	assert.Equal(t, "/run/glide", cfg.Listener.SocketDir)
	assert.Equal(t, 3*time.Second, cfg.Listener.HandshakeTimeout.Duration())
	assert.Equal(t, "orders", cfg.Telemetry.ServiceName)
	assert.Equal(t, uint32(25), cfg.Telemetry.Percentage())
	assert.Equal(t, 250*time.Millisecond, cfg.Telemetry.FlushInterval.Duration())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("GLIDE_BRIDGE_LOGGER_LEVEL", "trace")
	t.Setenv("GLIDE_BRIDGE_LISTENER_SOCKET_DIR", "/tmp/sockets")
	t.Setenv("GLIDE_BRIDGE_TELEMETRY_SAMPLE_PERCENTAGE", "50")
	t.Setenv("GLIDE_BRIDGE_LISTENER_HANDSHAKE_TIMEOUT", "1s")

	cfg, err := LoadBytes([]byte("logger:\n  level: error\n"))
	require.NoError(t, err)

	assert.Equal(t, "trace", cfg.Logger.Level)
	assert.Equal(t, "/tmp/sockets", cfg.Listener.SocketDir)
	assert.Equal(t, uint32(50), cfg.Telemetry.Percentage())
	assert.Equal(t, time.Second, cfg.Listener.HandshakeTimeout.Duration())
}

func TestLoadExplicitZeroSamplePercentage(t *testing.T) {
	cfg, err := LoadBytes([]byte("telemetry:\n  sample_percentage: 0\n"))
	require.NoError(t, err)
	require.NotNil(t, cfg.Telemetry.SamplePercentage)
	assert.Equal(t, uint32(0), cfg.Telemetry.Percentage())
}

func TestTelemetryConfig_PercentageUnset(t *testing.T) {
	assert.Equal(t, uint32(DefaultSamplePercentage), TelemetryConfig{}.Percentage())
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad level", "logger:\n  level: loud\n"},
		{"percentage", "telemetry:\n  sample_percentage: 101\n"},
		{"negative duration", "listener:\n  handshake_timeout: -1s\n"},
		{"malformed yaml", "logger: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadBytes([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "logger.level", envKey("GLIDE_BRIDGE_LOGGER_LEVEL"))
	assert.Equal(t, "telemetry.flush_interval", envKey("GLIDE_BRIDGE_TELEMETRY_FLUSH_INTERVAL"))
	assert.Equal(t, "verbose", envKey("GLIDE_BRIDGE_VERBOSE"))
}
