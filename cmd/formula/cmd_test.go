package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"

	"formula/internal/catalog"
	"formula/internal/diag"
	"formula/internal/diagfmt"
	"formula/internal/driver"
	"formula/internal/signature"
	"formula/internal/source"
)

func TestResolveColor(t *testing.T) {
	tests := []struct {
		mode    string
		want    bool
		wantErr bool
	}{
		{"on", true, false},
		{"ALWAYS", true, false},
		{"off", false, false},
		{"never", false, false},
		{"rainbow", false, true},
	}
	for _, tt := range tests {
		got, err := resolveColor(tt.mode, nil)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Fatalf("resolveColor(%q) = %v, %v", tt.mode, got, err)
		}
	}
	t.Setenv("NO_COLOR", "1")
	if got, _ := resolveColor("auto", nil); got {
		t.Fatal("NO_COLOR must disable auto color")
	}
}

func TestRenderCatalogText(t *testing.T) {
	var buf bytes.Buffer
	renderCatalogText(&buf, catalog.MustDefault(), []signature.Category{signature.Text, signature.Number}, false)
	out := buf.String()
	for _, want := range []string{"TEXT\n", "NUMBER\n", "abs(value) -> number", "contains(text, search) -> boolean"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, " contains ") && !strings.HasPrefix(line, "  • ") {
			t.Fatalf("expected postfix marker on %q", line)
		}
	}
}

func TestRenderCatalogJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := renderCatalogJSON(&buf, catalog.MustDefault(), []signature.Category{signature.Number}); err != nil {
		t.Fatal(err)
	}
	var doc catalogJSON
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	var sum *functionJSON
	for i := range doc.Functions {
		if doc.Functions[i].Name == "sum" {
			sum = &doc.Functions[i]
		}
	}
	if sum == nil {
		t.Fatal("sum missing from number category")
	}
	want := []paramJSON{{Name: "values", Type: "number | number[]", Group: "repeat"}}
	if diff := cmp.Diff(want, sum.Params); diff != "" {
		t.Fatalf("sum params (-want +got):\n%s", diff)
	}
}

func TestRenderCheckPretty(t *testing.T) {
	fs := source.NewFileSet()
	var spans []source.Span
	for _, text := range []string{"abs(number)", "abs(string)"} {
		id := fs.AddVirtual("arg", []byte(text))
		spans = append(spans, source.SpanOf(id, 0, len(text)))
	}
	results, err := driver.CheckAll(context.Background(), fs, spans, driver.Options{})
	if err != nil {
		t.Fatal(err)
	}

	color.NoColor = true
	var buf bytes.Buffer
	renderCheckPretty(&buf, fs, results, diagfmt.PrettyOpts{PathMode: diagfmt.PathModeBasename})
	out := buf.String()
	if !strings.HasPrefix(out, "✓ abs(number) : number\n✗ abs(string) : number\n") {
		t.Fatalf("unexpected summary lines:\n%s", out)
	}
	if !strings.Contains(out, "SEM3") {
		t.Fatalf("expected a semantic diagnostic code:\n%s", out)
	}
}

func TestRenderHelpText(t *testing.T) {
	fs := source.NewFileSet()
	text := "ifs(boolean, number, _)"
	id := fs.AddVirtual("arg", []byte(text))
	h, err := driver.SignatureHelp(context.Background(), fs, source.SpanOf(id, 0, len(text)), nil, 2, diag.NewBag(10))
	if err != nil || h == nil {
		t.Fatalf("SignatureHelp: %v", err)
	}
	color.NoColor = true
	var buf bytes.Buffer
	renderHelpText(&buf, h)
	want := "ifs(condition1: boolean, value1: number, ..., default: number) -> number\nactive parameter: 2 (default: number)\n"
	if got := buf.String(); got != want {
		t.Fatalf("expected\n%s\ngot\n%s", want, got)
	}
}

func TestRenderHelpJSONKeepsArrows(t *testing.T) {
	fs := source.NewFileSet()
	text := "abs(number)"
	id := fs.AddVirtual("arg", []byte(text))
	h, err := driver.SignatureHelp(context.Background(), fs, source.SpanOf(id, 0, len(text)), nil, 0, diag.NewBag(10))
	if err != nil || h == nil {
		t.Fatalf("SignatureHelp: %v", err)
	}
	var buf bytes.Buffer
	if err := renderHelpJSON(&buf, h); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Contains(out, `>`) {
		t.Fatalf("arrow was escaped:\n%s", out)
	}
	if !strings.Contains(out, `"label": "abs(value: number) -> number"`) {
		t.Fatalf("missing label:\n%s", out)
	}
}

func TestReadUIMode(t *testing.T) {
	tests := []struct {
		value   string
		want    uiMode
		wantErr bool
	}{
		{"", uiModeAuto, false},
		{" AUTO ", uiModeAuto, false},
		{"on", uiModeOn, false},
		{"off", uiModeOff, false},
		{"sometimes", "", true},
	}
	for _, tt := range tests {
		got, err := readUIMode(tt.value)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Fatalf("readUIMode(%q) = %q, %v", tt.value, got, err)
		}
	}
	if !shouldUseTUI(uiModeOn, 1) || shouldUseTUI(uiModeOn, 0) || shouldUseTUI(uiModeOff, 1000) {
		t.Fatal("explicit ui modes not honored")
	}
	if shouldUseTUI(uiModeAuto, autoUIMinDescriptors-1) {
		t.Fatal("auto mode should skip small batches")
	}
}
