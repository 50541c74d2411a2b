package lsp

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"formula/internal/catalog"
	"formula/internal/types"
)

func newCompletionServer(t *testing.T) *Server {
	t.Helper()
	cat, err := catalog.MustDefault().WithProperties([]catalog.Property{
		{Name: "Title", Ty: types.String()},
		{Name: "Legacy", Ty: types.Number(), DisabledReason: "removed from the page"},
		{Name: "Done", Ty: types.Boolean()},
	})
	if err != nil {
		t.Fatal(err)
	}
	return NewServer(bytes.NewReader(nil), io.Discard, ServerOptions{Catalog: cat, Debounce: time.Hour, Log: io.Discard})
}

func findCompletion(items []completionItem, label string) *completionItem {
	for i := range items {
		if items[i].Label == label {
			return &items[i]
		}
	}
	return nil
}

func TestCompletionTrigger(t *testing.T) {
	tests := []struct {
		prefix   string
		want     completionPosition
		receiver string
	}{
		{"", completeExpr, ""},
		{"ab", completeExpr, ""},
		{"ifs(", completeExpr, ""},
		{"ifs(boolean, ", completeExpr, ""},
		{"ifs(boolean, num", completeExpr, ""},
		{`"abc".`, completeAfterDot, `"abc"`},
		{`"abc".con`, completeAfterDot, `"abc"`},
		{"string.contains(_).", completeAfterDot, "string.contains(_)"},
		{"abs(number ", completeAfterAtom, "number"},
		{"first(number[]", completeAfterAtom, "number[]"},
		{"concat((number | string)[]", completeAfterAtom, "(number | string)[]"},
		{"concat((number | ", completeTypeLabel, ""},
		{`contains("a.`, completeNone, ""},
		{"abs(number x", completeNone, ""},
		{"abs(.", completeNone, ""},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			got := completionTrigger(tt.prefix)
			if got.kind != tt.want || got.receiver != tt.receiver {
				t.Fatalf("expected (%d, %q), got (%d, %q)", tt.want, tt.receiver, got.kind, got.receiver)
			}
		})
	}
}

func TestCompletionGeneral(t *testing.T) {
	s := newCompletionServer(t)
	items := s.buildCompletion("ifs(boolean, number, ").Items
	if len(items) == 0 {
		t.Fatal("expected completion items")
	}
	if items[0].Label != "number" || items[0].Detail != "expected argument type" {
		t.Fatalf("expected the argument type first, got %+v", items[0])
	}
	count := 0
	for _, item := range items {
		if item.Label == "number" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected one number item, got %d", count)
	}
	fn := findCompletion(items, "abs")
	if fn == nil || fn.Kind != completionItemKindFunction || fn.InsertText != "abs()" {
		t.Fatalf("expected function completion for abs, got %+v", fn)
	}
	prop := findCompletion(items, "Title")
	if prop == nil || prop.Kind != completionItemKindProperty || prop.InsertText != `prop("Title")` {
		t.Fatalf("expected property completion for Title, got %+v", prop)
	}

	var props []string
	for _, item := range items {
		if item.Kind == completionItemKindProperty {
			props = append(props, item.Label)
		}
	}
	if diff := cmp.Diff([]string{"Title", "Done", "Legacy"}, props); diff != "" {
		t.Fatalf("property order (-want +got):\n%s", diff)
	}
	legacy := findCompletion(items, "Legacy")
	if diff := cmp.Diff([]int{completionItemTagDeprecated}, legacy.Tags); diff != "" {
		t.Fatalf("disabled property tags (-want +got):\n%s", diff)
	}
}

func TestCompletionWithoutCall(t *testing.T) {
	items := newCompletionServer(t).buildCompletion("").Items
	for _, item := range items {
		if item.Detail == "expected argument type" {
			t.Fatalf("unexpected expected-type item outside a call: %+v", item)
		}
	}
	if items[0].Label != "_" {
		t.Fatalf("expected literals first without a call, got %+v", items[0])
	}
}

func TestCompletionMembers(t *testing.T) {
	s := newCompletionServer(t)
	items := s.buildCompletion(`"abc".`).Items
	method := findCompletion(items, "contains")
	if method == nil || method.Kind != completionItemKindMethod || method.InsertText != "contains()" {
		t.Fatalf("expected method completion for contains, got %+v", method)
	}
	if want := "(text: string).contains(search: string) -> boolean"; method.Detail != want {
		t.Fatalf("expected detail %q, got %q", want, method.Detail)
	}
	if item := findCompletion(items, "pow"); item != nil {
		t.Fatalf("pow does not take a string receiver, got %+v", item)
	}
	if item := findCompletion(items, "lower"); item != nil {
		t.Fatalf("lower is not postfix-capable, got %+v", item)
	}

	items = s.buildCompletion("abs(number ").Items
	pow := findCompletion(items, "pow")
	if pow == nil || pow.InsertText != ".pow()" {
		t.Fatalf("expected .pow() after a number, got %+v", pow)
	}
	if item := findCompletion(items, "contains"); item != nil {
		t.Fatalf("contains does not take a number receiver, got %+v", item)
	}
}

func TestCompletionInsideString(t *testing.T) {
	got := newCompletionServer(t).buildCompletion(`contains("ab`)
	if got.Items == nil || len(got.Items) != 0 {
		t.Fatalf("expected an empty list, got %+v", got.Items)
	}
}

func TestHandleCompletion(t *testing.T) {
	var out bytes.Buffer
	s := newTestServer(&out)
	openDoc(t, s, "abs(number)\nifs(")
	err := s.handleCompletion(&rpcMessage{
		ID: json.RawMessage("7"),
		Params: mustParams(t, completionParams{
			TextDocument: textDocumentIdentifier{URI: testURI},
			Position:     position{Line: 1, Character: 4},
		}),
	})
	if err != nil {
		t.Fatal(err)
	}
	msgs := readAll(t, &out)
	if len(msgs) != 1 {
		t.Fatalf("expected one response, got %d", len(msgs))
	}
	var list completionList
	if err := json.Unmarshal(msgs[0].Result, &list); err != nil {
		t.Fatal(err)
	}
	if item := findCompletion(list.Items, "boolean"); item == nil || item.Detail != "expected argument type" {
		t.Fatalf("expected boolean as the expected type, got %+v", item)
	}
}
