package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"formula/internal/diagfmt"
	"formula/internal/driver"
	"formula/internal/observ"
	"formula/internal/source"
	"formula/internal/types"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <descriptor>...",
	Short: "Infer and validate call descriptors",
	Long: `Check call descriptors such as

  formula check 'ifs(boolean, number, boolean, number, string)' 'abs(string)'

Each descriptor is a call whose arguments are type labels, _ for an argument
without a type yet, literals, or nested calls. The inferred result type is
printed with any diagnostics. Use --file to check one descriptor per line.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringP("file", "f", "", "read descriptors from a file, one per line (# starts a comment)")
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	checkCmd.Flags().Int("jobs", 0, "max parallel checks (0=auto)")
	checkCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	checkCmd.Flags().Bool("timings", false, "print phase timings to stderr")
	checkCmd.Flags().String("path-mode", "auto", "how to print file paths (auto|absolute|relative|basename)")
	checkCmd.Flags().String("ui", "auto", "progress view on stderr (auto|on|off)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")
	format, _ := cmd.Flags().GetString("format")
	jobs, _ := cmd.Flags().GetInt("jobs")
	withNotes, _ := cmd.Flags().GetBool("with-notes")
	showTimings, _ := cmd.Flags().GetBool("timings")
	pathModeStr, _ := cmd.Flags().GetString("path-mode")
	uiValue, _ := cmd.Flags().GetString("ui")
	format = strings.ToLower(format)
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
	pathMode, err := diagfmt.ParsePathMode(pathModeStr)
	if err != nil {
		return err
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	if file == "" && len(args) == 0 {
		return fmt.Errorf("nothing to check: pass descriptors or --file")
	}

	timer := observ.NewTimer()
	var e *env
	if err := timer.Time("load", func() (err error) {
		e, err = loadEnv(cmd)
		return err
	}); err != nil {
		return err
	}

	fs := source.NewFileSet()
	var spans []source.Span
	for i, text := range args {
		id := fs.AddVirtual(fmt.Sprintf("arg%d", i+1), []byte(text))
		spans = append(spans, source.SpanOf(id, 0, len(text)))
	}
	if file != "" {
		id, err := fs.Load(file)
		if err != nil {
			return err
		}
		spans = append(spans, driver.DescriptorLines(fs, id)...)
	}

	var results []driver.Result
	if err := timer.Time("check", func() (err error) {
		opts := driver.Options{
			Catalog:        e.catalog,
			MaxDiagnostics: e.maxDiagnostics,
			Jobs:           jobs,
		}
		if shouldUseTUI(mode, len(spans)) {
			results, err = runCheckWithUI(cmd.Context(), "formula check", fs, spans, opts)
			return err
		}
		results, err = driver.CheckAll(cmd.Context(), fs, spans, opts)
		return err
	}); err != nil {
		return err
	}

	baseDir, _ := os.Getwd()
	out := cmd.OutOrStdout()
	err = timer.Time("render", func() error {
		if format == "json" {
			return renderCheckJSON(out, fs, results, diagfmt.JSONOpts{
				IncludePositions: true, PathMode: pathMode, BaseDir: baseDir, IncludeNotes: withNotes,
			})
		}
		renderCheckPretty(out, fs, results, diagfmt.PrettyOpts{
			Color: e.color, PathMode: pathMode, BaseDir: baseDir, ShowNotes: withNotes,
		})
		return nil
	})
	if showTimings {
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}
	if err != nil {
		return err
	}

	failed := 0
	for i := range results {
		if !results[i].OK() {
			failed++
		}
	}
	if failed > 0 {
		if format == "pretty" {
			fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d descriptors have errors\n", failed, len(results))
		}
		return errReported
	}
	return nil
}

func renderCheckPretty(w io.Writer, fs *source.FileSet, results []driver.Result, opts diagfmt.PrettyOpts) {
	ok := color.New(color.FgGreen)
	bad := color.New(color.FgRed)
	for i := range results {
		r := &results[i]
		mark := ok.Sprint("✓")
		if !r.OK() {
			mark = bad.Sprint("✗")
		}
		fmt.Fprintf(w, "%s %s : %s\n", mark, r.Text, types.Label(r.Type))
		if r.Bag.Len() > 0 {
			diagfmt.Pretty(w, r.Bag, fs, opts)
		}
	}
}

type checkResultJSON struct {
	Descriptor  string                   `json:"descriptor"`
	Source      string                   `json:"source"`
	Line        uint32                   `json:"line"`
	Parsed      bool                     `json:"parsed"`
	Type        string                   `json:"type"`
	OK          bool                     `json:"ok"`
	Diagnostics []diagfmt.DiagnosticJSON `json:"diagnostics"`
}

func renderCheckJSON(w io.Writer, fs *source.FileSet, results []driver.Result, opts diagfmt.JSONOpts) error {
	doc := make([]checkResultJSON, 0, len(results))
	for i := range results {
		r := &results[i]
		start, _ := fs.Resolve(r.Span)
		src := ""
		if f := fs.Get(r.Span.File); f != nil {
			src = filepath.ToSlash(f.Path)
		}
		doc = append(doc, checkResultJSON{
			Descriptor:  r.Text,
			Source:      src,
			Line:        start.Line,
			Parsed:      r.Parsed,
			Type:        types.Label(r.Type),
			OK:          r.OK(),
			Diagnostics: diagfmt.BuildDiagnosticsOutput(r.Bag, fs, opts).Diagnostics,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(doc)
}
