package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"formula/internal/catalog"
	"formula/internal/signature"
	"formula/internal/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the function catalog",
	Long: `List every function the checker knows, grouped by category, with its
display signature and return type. Functions marked with • can also be
called postfix as receiver.fn(...).`,
	Args: cobra.NoArgs,
	RunE: runCatalog,
}

func init() {
	catalogCmd.Flags().String("category", "", "only list one category ("+strings.Join(categoryNames(), "|")+")")
	catalogCmd.Flags().String("format", "text", "output format (text|json|msgpack)")
	catalogCmd.Flags().String("write-snapshot", "", "also write the catalog as a msgpack snapshot to this file")
	catalogCmd.Flags().Bool("properties", false, "list properties instead of functions")
}

func categoryNames() []string {
	var out []string
	for _, c := range signature.Categories() {
		out = append(out, c.String())
	}
	return out
}

func runCatalog(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	categoryStr, _ := cmd.Flags().GetString("category")
	format, _ := cmd.Flags().GetString("format")
	snapshotPath, _ := cmd.Flags().GetString("write-snapshot")
	showProps, _ := cmd.Flags().GetBool("properties")

	cats := signature.Categories()
	if categoryStr != "" {
		c, err := signature.ParseCategory(categoryStr)
		if err != nil {
			return err
		}
		cats = []signature.Category{c}
	}

	if snapshotPath != "" {
		if err := e.catalog.WriteSnapshotFile(snapshotPath); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	switch strings.ToLower(format) {
	case "text":
		if showProps {
			renderPropertiesText(out, e.catalog.Properties())
			return nil
		}
		renderCatalogText(out, e.catalog, cats, e.color)
		return nil
	case "json":
		return renderCatalogJSON(out, e.catalog, cats)
	case "msgpack":
		return e.catalog.WriteSnapshot(out)
	default:
		return fmt.Errorf("unsupported format %q (must be text, json or msgpack)", format)
	}
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func renderCatalogText(w io.Writer, cat *catalog.Catalog, cats []signature.Category, useColor bool) {
	header := func(s string) string {
		if useColor {
			return headerStyle.Render(s)
		}
		return s
	}
	dim := func(s string) string {
		if useColor {
			return dimStyle.Render(s)
		}
		return s
	}

	for i, c := range cats {
		sigs := cat.ByCategory(c)
		if len(sigs) == 0 {
			continue
		}
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, header(strings.ToUpper(c.String())))

		width := 0
		for _, sig := range sigs {
			width = max(width, runewidth.StringWidth(sig.Name))
		}
		for _, sig := range sigs {
			marker := " "
			if cat.IsPostfixCapable(sig.Name) {
				marker = "•"
			}
			fmt.Fprintf(w, "  %s %s  %s %s\n",
				marker,
				runewidth.FillRight(sig.Name, width),
				sig.Detail,
				dim("-> "+types.Label(sig.Ret)))
		}
	}
}

func renderPropertiesText(w io.Writer, props []catalog.Property) {
	width := 0
	for _, p := range props {
		width = max(width, runewidth.StringWidth(p.Name))
	}
	for _, p := range props {
		line := runewidth.FillRight(p.Name, width) + "  " + types.Label(p.Ty)
		if p.DisabledReason != "" {
			line += "  (disabled: " + p.DisabledReason + ")"
		}
		fmt.Fprintln(w, line)
	}
}

type paramJSON struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Optional bool   `json:"optional,omitempty"`
	Group    string `json:"group"`
}

type functionJSON struct {
	Name     string      `json:"name"`
	Category string      `json:"category"`
	Detail   string      `json:"detail"`
	Params   []paramJSON `json:"params"`
	Returns  string      `json:"returns"`
	Postfix  bool        `json:"postfix"`
}

type propertyJSON struct {
	Name           string `json:"name"`
	Type           string `json:"type"`
	DisabledReason string `json:"disabled_reason,omitempty"`
}

type catalogJSON struct {
	Functions  []functionJSON `json:"functions"`
	Properties []propertyJSON `json:"properties"`
}

func renderCatalogJSON(w io.Writer, cat *catalog.Catalog, cats []signature.Category) error {
	doc := catalogJSON{Functions: []functionJSON{}, Properties: []propertyJSON{}}
	for _, c := range cats {
		for _, sig := range cat.ByCategory(c) {
			fn := functionJSON{
				Name:     sig.Name,
				Category: c.String(),
				Detail:   sig.Detail,
				Returns:  types.Label(sig.Ret),
				Postfix:  cat.IsPostfixCapable(sig.Name),
				Params:   []paramJSON{},
			}
			groups := []struct {
				name   string
				params []signature.ParamSig
			}{{"head", sig.Params.Head}, {"repeat", sig.Params.Repeat}, {"tail", sig.Params.Tail}}
			for _, g := range groups {
				for _, p := range g.params {
					fn.Params = append(fn.Params, paramJSON{Name: p.Name, Type: types.Label(p.Ty), Optional: p.Optional, Group: g.name})
				}
			}
			doc.Functions = append(doc.Functions, fn)
		}
	}
	for _, p := range cat.Properties() {
		doc.Properties = append(doc.Properties, propertyJSON{Name: p.Name, Type: types.Label(p.Ty), DisabledReason: p.DisabledReason})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(doc)
}
