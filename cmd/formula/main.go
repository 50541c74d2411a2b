package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"formula/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "formula",
	Short: "Type checker and signature help for formula calls",
	Long: `formula checks function calls written as call descriptors against the
builtin function catalog (plus any functions and properties declared in
formula.toml) and renders signature help the way an editor shows it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := setupProfiling(cmd); err != nil {
			return err
		}
		cleanup, err := setupTracing(cmd)
		if err != nil {
			return err
		}
		traceCleanup = cleanup
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		runTraceCleanup()
		stopProfiling()
	},
}

func init() {
	rootCmd.Version = version.Version

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "path to formula.toml (default: search from the working directory upwards)")
	flags.Bool("no-config", false, "ignore formula.toml and use the builtin catalog only")
	flags.String("catalog-snapshot", "", "load the catalog from a msgpack snapshot instead of builtins and config")
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Int("max-diagnostics", 100, "maximum number of diagnostics per descriptor")
	flags.String("trace", "", "trace output file (- for stderr)")
	flags.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	flags.String("trace-format", "auto", "trace encoding (auto|text|ndjson)")
	flags.Int("trace-ring-size", 4096, "events kept in memory by ring tracing")
	flags.String("cpu-profile", "", "write a CPU profile to file")
	flags.String("mem-profile", "", "write a heap profile to file on exit")
	flags.String("runtime-trace", "", "write a Go runtime trace to file")

	rootCmd.AddCommand(catalogCmd, checkCmd, sighelpCmd, lspCmd, versionCmd)
}

// main runs the root command and exits with status 1 when it fails.
func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		dumpTraceRing()
		runTraceCleanup()
		stopProfiling()
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "formula: %v\n", err)
		}
		os.Exit(1)
	}
}
