// Package main implements glide-bridge, a command line front end that
// runs the bridge core outside a host runtime.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wippyai/glide-bridge/bridge"
	"github.com/wippyai/glide-bridge/config"
	"github.com/wippyai/glide-bridge/core"
)

var (
	// configPath is the YAML configuration file, if any
	configPath string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "glide-bridge",
	Short: "Run the native bridge core outside a host runtime",
	Long: `glide-bridge starts the native side of the client bridge without a
host runtime attached. It is useful for checking configuration, exposing
the socket listener and metrics, and driving the entry points by hand.`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv(core.ConfigEnv), "configuration file (YAML)")
	rootCmd.AddCommand(listenCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(consoleCmd)
}

// newBridge loads configuration and builds a bridge over a fresh core.
func newBridge() (*bridge.Bridge, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	c, err := core.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to init core: %w", err)
	}
	return bridge.New(c), nil
}
