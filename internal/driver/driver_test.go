package driver

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"formula/internal/diag"
	"formula/internal/sighelp"
	"formula/internal/source"
	"formula/internal/trace"
	"formula/internal/types"
)

func TestDescriptorLines(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("batch", []byte("# header\n  abs(number)  \n\n\tlower(string)\r\nlast(_)"))
	var got []string
	for _, sp := range DescriptorLines(fs, id) {
		got = append(got, fs.Slice(sp))
	}
	want := []string{"abs(number)", "lower(string)", "last(_)"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckAllKeepsInputOrder(t *testing.T) {
	fs := source.NewFileSet()
	texts := []string{
		"ifs(boolean, number, boolean, number, string)",
		"abs(string)",
		"if(boolean, number)",
		"abs(numbr)",
		`"abc".contains(string)`,
	}
	var spans []source.Span
	for _, text := range texts {
		id := fs.AddVirtual("arg", []byte(text))
		spans = append(spans, source.SpanOf(id, 0, len(text)))
	}

	results, err := CheckAll(context.Background(), fs, spans, Options{MaxDiagnostics: 10, Jobs: 2})
	if err != nil {
		t.Fatalf("CheckAll: %v", err)
	}

	type summary struct {
		Text   string
		Parsed bool
		Type   string
		Codes  []diag.Code
	}
	var got []summary
	for _, r := range results {
		s := summary{Text: r.Text, Parsed: r.Parsed, Type: types.Label(r.Type)}
		for _, d := range r.Bag.Items() {
			s.Codes = append(s.Codes, d.Code)
		}
		got = append(got, s)
	}
	want := []summary{
		{texts[0], true, "number | string", nil},
		{texts[1], true, "number", []diag.Code{diag.SemaTypeMismatch}},
		{texts[2], true, "number", []diag.Code{diag.SemaArityExact}},
		{texts[3], false, "unknown", []diag.Code{diag.SynInvalidType}},
		{texts[4], true, "boolean", nil},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("results mismatch (-want +got):\n%s", diff)
	}
	if !results[0].OK() || results[1].OK() {
		t.Fatal("OK disagrees with diagnostics")
	}
}

func TestCheckAllTracesCalls(t *testing.T) {
	var buf bytes.Buffer
	tr := trace.NewStreamTracer(&buf, trace.LevelDetail, trace.FormatText)
	ctx := trace.WithTracer(context.Background(), tr)

	fs := source.NewFileSet()
	id := fs.AddVirtual("arg", []byte("abs(number)"))
	if _, err := CheckAll(ctx, fs, []source.Span{source.SpanOf(id, 0, 11)}, Options{}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "← call (abs(number) -> number) {diags=0") {
		t.Fatalf("expected call span in trace, got\n%s", out)
	}
	if !strings.Contains(out, "← check {calls=1") {
		t.Fatalf("expected check span in trace, got\n%s", out)
	}
}

func TestCheckAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fs := source.NewFileSet()
	id := fs.AddVirtual("arg", []byte("pi()"))
	_, err := CheckAll(ctx, fs, []source.Span{source.SpanOf(id, 0, 4)}, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSignatureHelp(t *testing.T) {
	tests := []struct {
		text     string
		argIndex int
		want     string
	}{
		{"ifs(boolean, number, _)", 2, "ifs(condition1: boolean, value1: number, ..., default: number) -> number"},
		{"string.contains(_)", 0, "(text: string).contains(search: string) -> boolean"},
		{"abs(toNumber(string))", 0, "abs(value: number) -> number"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			fs := source.NewFileSet()
			id := fs.AddVirtual("arg", []byte(tt.text))
			bag := diag.NewBag(10)
			h, err := SignatureHelp(context.Background(), fs, source.SpanOf(id, 0, len(tt.text)), nil, tt.argIndex, bag)
			if err != nil || h == nil {
				t.Fatalf("unexpected failure: %v %+v", err, bag.Items())
			}
			if h.Label != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, h.Label)
			}
		})
	}
}

func TestSignatureHelpErrors(t *testing.T) {
	run := func(text string) (*sighelp.Help, *diag.Bag, error) {
		fs := source.NewFileSet()
		id := fs.AddVirtual("arg", []byte(text))
		bag := diag.NewBag(10)
		h, err := SignatureHelp(context.Background(), fs, source.SpanOf(id, 0, len(text)), nil, 0, bag)
		return h, bag, err
	}
	if _, _, err := run("number"); !errors.Is(err, ErrNotACall) {
		t.Fatalf("expected ErrNotACall, got %v", err)
	}
	var unknown *sighelp.UnknownFunctionError
	if _, _, err := run("nope(number)"); !errors.As(err, &unknown) {
		t.Fatalf("expected unknown function error, got %v", err)
	}
	if h, bag, err := run("abs(("); h != nil || err != nil || bag.Len() != 1 {
		t.Fatalf("expected one syntax diagnostic, got %v %v %+v", h, err, bag.Items())
	}
}

func TestExpectedArgType(t *testing.T) {
	tests := []struct {
		text     string
		argIndex int
		want     types.Ty
		wantOK   bool
	}{
		{"ifs(_)", 0, types.Boolean(), true},
		{"ifs(boolean, string, _)", 2, types.String(), true},
		{"string.contains(_)", 0, types.String(), true},
		{"abs(_)", 1, types.None, false},
		{"nope(_)", 0, types.None, false},
		{"abs((", 0, types.None, false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			fs := source.NewFileSet()
			id := fs.AddVirtual("arg", []byte(tt.text))
			got, ok := ExpectedArgType(context.Background(), fs, source.SpanOf(id, 0, len(tt.text)), nil, tt.argIndex)
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("type mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInferType(t *testing.T) {
	fs := source.NewFileSet()
	text := `"abc".contains("a")`
	id := fs.AddVirtual("recv", []byte(text))
	got, ok := InferType(context.Background(), fs, source.SpanOf(id, 0, len(text)), nil)
	if !ok || types.Label(got) != "boolean" {
		t.Fatalf("expected boolean, got %s (ok=%v)", types.Label(got), ok)
	}
	bad := fs.AddVirtual("bad", []byte("abs(("))
	if _, ok := InferType(context.Background(), fs, source.SpanOf(bad, 0, 5), nil); ok {
		t.Fatal("expected syntax error to report ok=false")
	}
}

func TestCheckAllProgress(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("batch", []byte("abs(number)\nabs(string)\nabs(("))
	spans := DescriptorLines(fs, id)
	events := make(chan Event, 16)
	if _, err := CheckAll(context.Background(), fs, spans, Options{Progress: ChannelSink{Ch: events}, Jobs: 2}); err != nil {
		t.Fatal(err)
	}
	close(events)

	got := make(map[int][]string)
	for ev := range events {
		got[ev.Index] = append(got[ev.Index], string(ev.Stage)+":"+string(ev.Status))
	}
	want := map[int][]string{
		0: {"parse:working", "check:working", "check:done"},
		1: {"parse:working", "check:working", "check:error"},
		2: {"parse:working", "check:error"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("events (-want +got):\n%s", diff)
	}
}
