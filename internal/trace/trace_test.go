package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelShouldEmit(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelError, ScopeDriver, false},
		{LevelPhase, ScopePass, true},
		{LevelPhase, ScopeCall, false},
		{LevelDetail, ScopeCall, true},
		{LevelDetail, ScopeNode, false},
		{LevelDebug, ScopeNode, true},
	}
	for _, tt := range tests {
		if got := tt.level.ShouldEmit(tt.scope); got != tt.want {
			t.Fatalf("%s.ShouldEmit(%s): expected %v, got %v", tt.level, tt.scope, tt.want, got)
		}
	}
}

func TestParseLevel(t *testing.T) {
	if l, err := ParseLevel("DETAIL"); err != nil || l != LevelDetail {
		t.Fatalf("expected detail, got %v %v", l, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestStreamTracerText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatText)
	ctx := WithTracer(context.Background(), tr)

	outer, ctx := BeginCtx(ctx, ScopePass, "check")
	inner, _ := BeginCtx(ctx, ScopeCall, "call:ifs")
	inner.WithExtra("diags", "0").End("number")
	skipped, _ := BeginCtx(ctx, ScopeNode, "node")
	skipped.End("")
	outer.End("")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[1], "  → call:ifs") {
		t.Fatalf("expected indented child begin, got %q", lines[1])
	}
	if !strings.Contains(lines[2], "← call:ifs (number) {diags=0, dur=") {
		t.Fatalf("expected end line with sorted extras, got %q", lines[2])
	}
	if skipped.ID() != 0 {
		t.Fatalf("expected inert span below level, got id %d", skipped.ID())
	}
}

func TestStreamTracerNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatNDJSON)
	s := Begin(tr, ScopeDriver, "catalog", 0)
	s.End("ok")

	var ev jsonEvent
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if err := json.Unmarshal([]byte(lines[1]), &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.Kind != "end" || ev.Scope != "driver" || ev.Name != "catalog" || ev.Detail != "ok" {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestRingTracerWraps(t *testing.T) {
	r := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(r, ScopeCall, name, "", 0)
	}
	var got []string
	for _, ev := range r.Snapshot() {
		got = append(got, ev.Name)
	}
	if strings.Join(got, ",") != "c,d,e" {
		t.Fatalf("expected c,d,e, got %v", got)
	}
}

func TestMultiTracerCopiesEvents(t *testing.T) {
	var buf bytes.Buffer
	stream := NewStreamTracer(&buf, LevelDebug, FormatText)
	ring := NewRingTracer(8, LevelDebug)
	m := NewMultiTracer(LevelDebug, stream, ring)
	Point(m, ScopeCall, "x", "", 0)

	if r, ok := m.Ring(); !ok || r != ring {
		t.Fatal("expected ring tracer to be found")
	}
	if n := len(ring.Snapshot()); n != 1 {
		t.Fatalf("expected 1 ring event, got %d", n)
	}
	if !strings.Contains(buf.String(), "• x") {
		t.Fatalf("expected stream output, got %q", buf.String())
	}
}

func TestNewOff(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr.Enabled() {
		t.Fatalf("expected disabled tracer, got %v %v", tr, err)
	}
	if FromContext(context.Background()) != Nop {
		t.Fatal("expected Nop from empty context")
	}
}
