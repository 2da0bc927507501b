package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wippyai/glide-bridge/host"
)

var statsJSON bool

// statsCmd prints the process counters
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print connection and handle counters",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "print as JSON")
}

func runStats(cmd *cobra.Command, _ []string) error {
	b, err := newBridge()
	if err != nil {
		return err
	}
	defer b.Core().Close()

	env := host.NewNative()
	obj := b.Statistics(env)
	if ex := env.TakeException(); ex != nil {
		return ex
	}
	m, ok := obj.(*host.Map)
	if !ok {
		return fmt.Errorf("unexpected statistics object %T", obj)
	}
	return printMap(cmd, m)
}

func printMap(cmd *cobra.Command, m *host.Map) error {
	out := cmd.OutOrStdout()
	if !statsJSON {
		m.Range(func(k, v host.Object) bool {
			fmt.Fprintf(out, "%v: %v\n", k, v)
			return true
		})
		return nil
	}

	fields := make(map[string]any, m.Len())
	m.Range(func(k, v host.Object) bool {
		fields[fmt.Sprint(k)] = v
		return true
	})
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(fields)
}
