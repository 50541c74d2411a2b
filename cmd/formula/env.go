package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"formula/internal/catalog"
	"formula/internal/trace"
)

// errReported is returned after a command already printed why it failed.
var errReported = errors.New("errors reported")

// env is the catalog and output settings a command runs with.
type env struct {
	catalog        *catalog.Catalog
	configPath     string
	color          bool
	maxDiagnostics int
}

// loadEnv resolves the catalog (snapshot, config or builtins) and merges
// formula.toml [settings] under explicitly set flags.
func loadEnv(cmd *cobra.Command) (*env, error) {
	span := trace.Begin(trace.FromContext(cmd.Context()), trace.ScopePass, "load-catalog",
		trace.CurrentSpan(cmd.Context()).SpanID)
	defer span.End("")

	flags := cmd.Root().PersistentFlags()
	e := &env{}
	var settings catalog.Settings

	snapshot, _ := flags.GetString("catalog-snapshot")
	noConfig, _ := flags.GetBool("no-config")
	switch {
	case snapshot != "":
		cat, err := catalog.ReadSnapshotFile(snapshot)
		if err != nil {
			return nil, err
		}
		e.catalog = cat
		span.WithExtra("source", "snapshot")
	case noConfig:
		cat, err := catalog.Default()
		if err != nil {
			return nil, err
		}
		e.catalog = cat
		span.WithExtra("source", "builtins")
	default:
		cfg, err := findConfig(cmd)
		if err != nil {
			return nil, err
		}
		if cfg == nil {
			e.catalog, err = catalog.Default()
			span.WithExtra("source", "builtins")
		} else {
			e.catalog, err = catalog.FromConfig(cfg)
			e.configPath = cfg.Path
			settings = cfg.Settings
			span.WithExtra("source", cfg.Path)
		}
		if err != nil {
			return nil, err
		}
	}
	span.WithExtra("functions", fmt.Sprint(e.catalog.Len()))

	e.maxDiagnostics, _ = flags.GetInt("max-diagnostics")
	if !flags.Changed("max-diagnostics") && settings.MaxDiagnostics > 0 {
		e.maxDiagnostics = settings.MaxDiagnostics
	}
	colorMode, _ := flags.GetString("color")
	if !flags.Changed("color") && settings.Color != "" {
		colorMode = settings.Color
	}
	useColor, err := resolveColor(colorMode, os.Stdout)
	if err != nil {
		return nil, err
	}
	e.color = useColor
	color.NoColor = !useColor
	return e, nil
}

// findConfig loads --config, or the nearest formula.toml above the working
// directory. It returns nil when there is none.
func findConfig(cmd *cobra.Command) (*catalog.Config, error) {
	path, _ := cmd.Root().PersistentFlags().GetString("config")
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		found, ok, err := catalog.Discover(wd)
		if err != nil || !ok {
			return nil, err
		}
		path = found
	}
	return catalog.LoadConfig(path)
}

// resolveColor maps auto|on|off to a decision; auto colors terminals only.
func resolveColor(mode string, out *os.File) (bool, error) {
	switch strings.ToLower(mode) {
	case "on", "always", "true":
		return true, nil
	case "off", "never", "false":
		return false, nil
	case "auto", "":
		return os.Getenv("NO_COLOR") == "" && isTerminal(out), nil
	}
	return false, fmt.Errorf("invalid color mode: %q (expected: auto|on|off)", mode)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
