package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wippyai/glide-bridge/config"
	"github.com/wippyai/glide-bridge/host"
)

var (
	metricsAddr   string
	tracesURL     string
	metricsURL    string
	samplePercent int32
	flushInterval time.Duration
)

// listenCmd starts the socket listener and serves until interrupted
var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Start the socket listener and serve until interrupted",
	Long: `Start the background socket listener and print its path.

Examples:
  # Listen with Prometheus metrics on :9464
  glide-bridge listen --metrics-addr :9464

  # Export traces to a local collector
  glide-bridge listen --otel-traces http://localhost:4318/v1/traces --sample-percentage 100`,
	Args: cobra.NoArgs,
	RunE: runListen,
}

func init() {
	listenCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	listenCmd.Flags().StringVar(&tracesURL, "otel-traces", "", "OpenTelemetry traces endpoint (grpc://, http(s)://, file://)")
	listenCmd.Flags().StringVar(&metricsURL, "otel-metrics", "", "OpenTelemetry metrics endpoint (grpc://, http(s)://, file://)")
	listenCmd.Flags().Int32Var(&samplePercent, "sample-percentage", config.DefaultSamplePercentage, "percentage of traces to sample, overriding telemetry.sample_percentage")
	listenCmd.Flags().DurationVar(&flushInterval, "flush-interval", config.DefaultFlushInterval.Duration(), "telemetry export interval, overriding telemetry.flush_interval")
}

// telemetryFlags returns the sample percentage and flush interval, taking
// each from cfg unless its flag was set on the command line.
func telemetryFlags(cmd *cobra.Command, cfg config.TelemetryConfig) (int32, time.Duration) {
	pct := int32(cfg.Percentage())
	if cmd.Flags().Changed("sample-percentage") {
		pct = samplePercent
	}
	interval := cfg.FlushInterval.Duration()
	if cmd.Flags().Changed("flush-interval") {
		interval = flushInterval
	}
	return pct, interval
}

func runListen(cmd *cobra.Command, _ []string) error {
	b, err := newBridge()
	if err != nil {
		return err
	}
	defer b.Core().Close()

	env := host.NewNative()

	if tracesURL != "" || metricsURL != "" {
		pct, interval := telemetryFlags(cmd, b.Core().Config.Telemetry)
		b.InitOpenTelemetry(env, optional(tracesURL), pct, optional(metricsURL), interval.Milliseconds())
		if ex := env.TakeException(); ex != nil {
			return ex
		}
	}

	path := b.StartSocketListener(env)
	if ex := env.TakeException(); ex != nil {
		return ex
	}
	fmt.Fprintf(cmd.OutOrStdout(), "listening on %s\n", path)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if metricsAddr != "" {
		srv := &http.Server{
			Addr:              metricsAddr,
			Handler:           b.Core().Stats.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				fmt.Fprintf(cmd.ErrOrStderr(), "metrics server: %v\n", err)
				stop()
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
		fmt.Fprintf(cmd.OutOrStdout(), "metrics on %s\n", metricsAddr)
	}

	<-ctx.Done()
	return nil
}

// optional maps an empty flag to a null host string.
func optional(s string) host.Object {
	if s == "" {
		return nil
	}
	return s
}
