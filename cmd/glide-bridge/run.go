package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wippyai/glide-bridge/wasmhost"
)

var (
	runFunc     string
	memoryPages uint32
	hostModule  string
)

// runCmd runs a WebAssembly guest linked against the bridge host module
var runCmd = &cobra.Command{
	Use:   "run <guest.wasm>",
	Short: "Run a WebAssembly guest against the bridge",
	Long: `Instantiate a WebAssembly module whose imports are satisfied by the
bridge host module, call one of its exports and report the guest's last
error, if any.

Examples:
  glide-bridge run guest.wasm --func main`,
	Args: cobra.ExactArgs(1),
	RunE: runGuest,
}

func init() {
	runCmd.Flags().StringVar(&runFunc, "func", "_start", "exported function to call")
	runCmd.Flags().Uint32Var(&memoryPages, "memory-pages", 0, "guest memory limit in 64KiB pages (0 = default)")
	runCmd.Flags().StringVar(&hostModule, "host-module", wasmhost.DefaultModuleName, "import module name of the bridge")
}

func runGuest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	b, err := newBridge()
	if err != nil {
		return err
	}
	defer b.Core().Close()

	h, err := wasmhost.New(ctx, b,
		wasmhost.WithModuleName(hostModule),
		wasmhost.WithMemoryLimitPages(memoryPages))
	if err != nil {
		return err
	}
	defer h.Close(ctx)

	name := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	mod, err := h.Instantiate(ctx, name, data)
	if err != nil {
		return err
	}

	fn := mod.ExportedFunction(runFunc)
	if fn == nil {
		return fmt.Errorf("guest %s does not export %q", name, runFunc)
	}
	results, err := fn.Call(ctx)
	if err != nil {
		return fmt.Errorf("call %s: %w", runFunc, err)
	}

	out := cmd.OutOrStdout()
	for i, r := range results {
		fmt.Fprintf(out, "result[%d] = %d\n", i, r)
	}
	if msg, ok := h.LastError(name); ok {
		fmt.Fprintf(out, "last error: %s\n", msg)
	}
	return nil
}
