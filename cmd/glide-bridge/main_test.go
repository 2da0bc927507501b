package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/glide-bridge/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		statsJSON = false
		configPath = ""
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestStatsJSON(t *testing.T) {
	out, err := execute(t, "stats", "--json")
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, map[string]string{
		"total_connections": "0",
		"total_clients":     "0",
		"live_handles":      "0",
	}, got)
}

func TestStatsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logger:\n  level: info\n"), 0o600))

	out, err := execute(t, "--config", path, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "total_connections: 0")
}

func TestBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logger:\n  level: loud\n"), 0o600))

	_, err := execute(t, "--config", path, "stats")
	assert.Error(t, err)
}

func TestRunMissingFile(t *testing.T) {
	_, err := execute(t, "run", filepath.Join(t.TempDir(), "missing.wasm"))
	assert.ErrorContains(t, err, "read file")
}

func TestOptional(t *testing.T) {
	assert.Nil(t, optional(""))
	assert.Equal(t, "grpc://localhost:4317", optional("grpc://localhost:4317"))
}

func TestTelemetryFlagsFromConfig(t *testing.T) {
	cfg, err := config.LoadBytes([]byte("telemetry:\n  sample_percentage: 0\n  flush_interval: 250ms\n"))
	require.NoError(t, err)

	pct, interval := telemetryFlags(listenCmd, cfg.Telemetry)
	assert.Equal(t, int32(0), pct)
	assert.Equal(t, 250*time.Millisecond, interval)
}

func TestTelemetryFlagsOverrideConfig(t *testing.T) {
	require.NoError(t, listenCmd.Flags().Set("sample-percentage", "40"))
	require.NoError(t, listenCmd.Flags().Set("flush-interval", "2s"))
	t.Cleanup(func() {
		for _, name := range []string{"sample-percentage", "flush-interval"} {
			f := listenCmd.Flags().Lookup(name)
			f.Value.Set(f.DefValue)
			f.Changed = false
		}
	})

	cfg := config.Default()
	pct, interval := telemetryFlags(listenCmd, cfg.Telemetry)
	assert.Equal(t, int32(40), pct)
	assert.Equal(t, 2*time.Second, interval)
}
