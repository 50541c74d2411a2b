package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"formula/internal/diag"
	"formula/internal/diagfmt"
	"formula/internal/driver"
	"formula/internal/sighelp"
	"formula/internal/source"
)

var sighelpCmd = &cobra.Command{
	Use:   "sighelp [flags] <descriptor>",
	Short: "Show signature help for a call descriptor",
	Long: `Render the signature of the outermost call in a descriptor as an editor
would show it while the cursor is in argument --arg (0-based):

  formula sighelp 'ifs(boolean, number, _)' --arg 2

Arguments written as _ count as not typed yet.`,
	Args: cobra.ExactArgs(1),
	RunE: runSighelp,
}

func init() {
	sighelpCmd.Flags().IntP("arg", "a", 0, "index of the argument under the cursor")
	sighelpCmd.Flags().String("format", "text", "output format (text|json)")
}

func runSighelp(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	argIndex, _ := cmd.Flags().GetInt("arg")
	format, _ := cmd.Flags().GetString("format")
	format = strings.ToLower(format)
	if format != "text" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be text or json)", format)
	}
	if argIndex < 0 {
		return fmt.Errorf("--arg must not be negative, got %d", argIndex)
	}

	fs := source.NewFileSet()
	text := args[0]
	id := fs.AddVirtual("descriptor", []byte(text))
	bag := diag.NewBag(e.maxDiagnostics)
	h, err := driver.SignatureHelp(cmd.Context(), fs, source.SpanOf(id, 0, len(text)), e.catalog, argIndex, bag)
	if err != nil {
		return err
	}
	if h == nil {
		diagfmt.Pretty(cmd.ErrOrStderr(), bag, fs, diagfmt.PrettyOpts{Color: e.color && isTerminal(os.Stderr)})
		return errReported
	}

	if format == "json" {
		return renderHelpJSON(cmd.OutOrStdout(), h)
	}
	renderHelpText(cmd.OutOrStdout(), h)
	return nil
}

var (
	activeParamColor = color.New(color.FgYellow, color.Bold, color.Underline)
	nameColor        = color.New(color.FgCyan, color.Bold)
	returnColor      = color.New(color.FgGreen)
)

// renderHelpJSON writes h unescaped so arrows stay readable.
func renderHelpJSON(w io.Writer, h *sighelp.Help) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(h)
}

// renderHelpText prints the signature with the active parameter highlighted.
func renderHelpText(w io.Writer, h *sighelp.Help) {
	var sb strings.Builder
	for _, seg := range h.Segments {
		text := seg.String()
		switch {
		case seg.Kind == sighelp.SegParam && seg.ParamIndex != nil && int(*seg.ParamIndex) == h.ActiveParameter:
			sb.WriteString(activeParamColor.Sprint(text))
		case seg.Kind == sighelp.SegName:
			sb.WriteString(nameColor.Sprint(text))
		case seg.Kind == sighelp.SegReturnType:
			sb.WriteString(returnColor.Sprint(text))
		default:
			sb.WriteString(text)
		}
	}
	fmt.Fprintln(w, sb.String())
	if h.ActiveParameter >= 0 && h.ActiveParameter < len(h.Parameters) {
		fmt.Fprintf(w, "active parameter: %d (%s)\n", h.ActiveParameter, h.Parameters[h.ActiveParameter].Label)
	}
}
