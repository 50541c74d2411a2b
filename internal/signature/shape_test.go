package signature

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"formula/internal/generics"
	"formula/internal/types"
)

func p(name string) ParamSig   { return Param(name, types.Number()) }
func opt(name string) ParamSig { return Opt(name, types.Number()) }

func mustShape(t *testing.T, head, repeat, tail []ParamSig) ParamShape {
	t.Helper()
	s, err := NewParamShape(head, repeat, tail)
	if err != nil {
		t.Fatalf("NewParamShape: %v", err)
	}
	return s
}

func TestNewParamShapeInvariants(t *testing.T) {
	tests := []struct {
		name               string
		head, repeat, tail []ParamSig
		rule               ShapeRule
	}{
		{"optional repeat", nil, []ParamSig{opt("x")}, nil, ShapeOptionalRepeat},
		{"optional tail after repeat", nil, []ParamSig{p("x")}, []ParamSig{opt("t")}, ShapeOptionalTailAfterRepeat},
		{"required after optional", nil, nil, []ParamSig{opt("a"), p("b")}, ShapeRequiredAfterOptional},
		{"ok optional suffix", []ParamSig{p("a")}, nil, []ParamSig{p("b"), opt("c")}, 0},
		{"ok repeat with tail", []ParamSig{opt("a")}, []ParamSig{p("x"), p("y")}, []ParamSig{p("t")}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParamShape(tt.head, tt.repeat, tt.tail)
			if tt.rule == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var se *ShapeError
			if !errors.As(err, &se) {
				t.Fatalf("expected *ShapeError, got %v", err)
			}
			if se.Rule != tt.rule {
				t.Fatalf("expected rule %d, got %d (%v)", tt.rule, se.Rule, err)
			}
		})
	}
}

func TestRequiredMinArgs(t *testing.T) {
	tests := []struct {
		name  string
		shape ParamShape
		want  int
	}{
		{"empty", ParamShape{}, 0},
		{"flat", ParamShape{Head: []ParamSig{p("a"), p("b")}}, 2},
		{"optional suffix", ParamShape{Head: []ParamSig{p("a"), opt("b")}}, 1},
		// Required after optional still counts up to the last required index.
		{"out of order", ParamShape{Head: []ParamSig{opt("a"), p("b"), opt("c")}}, 2},
		{"head and tail", ParamShape{Head: []ParamSig{p("a")}, Tail: []ParamSig{opt("b"), p("c")}}, 3},
		{"variadic", ParamShape{Head: []ParamSig{opt("a"), p("b")}, Repeat: []ParamSig{p("x")}, Tail: []ParamSig{p("t")}}, 3},
		{"variadic pair", ParamShape{Repeat: []ParamSig{p("c"), p("v")}, Tail: []ParamSig{p("d")}}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.shape.RequiredMinArgs(); got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestResolveTailUsed(t *testing.T) {
	ifs := mustShape(t, nil, []ParamSig{p("condition"), p("value")}, []ParamSig{p("default")})
	tests := []struct {
		total  int
		want   int
		wantOK bool
	}{
		{0, 0, false},
		{1, 0, false},
		{2, 0, false},
		{3, 1, true},
		{4, 0, false},
		{5, 1, true},
		{7, 1, true},
	}
	for _, tt := range tests {
		got, ok := ifs.ResolveTailUsed(tt.total)
		if ok != tt.wantOK || (ok && got != tt.want) {
			t.Errorf("ResolveTailUsed(%d) = (%d, %v), want (%d, %v)", tt.total, got, ok, tt.want, tt.wantOK)
		}
	}

	flat := mustShape(t, []ParamSig{p("a")}, nil, []ParamSig{opt("b")})
	if got, ok := flat.ResolveTailUsed(1); !ok || got != 1 {
		t.Fatalf("non-variadic shape should consume the whole tail, got (%d, %v)", got, ok)
	}
}

func TestResolveTailUsedPrefersLargestTail(t *testing.T) {
	// Built directly: optional tail after a repeat is rejected by NewParamShape,
	// but the resolver's tie-break must stay deterministic.
	s := ParamShape{
		Repeat: []ParamSig{p("x"), p("y")},
		Tail:   []ParamSig{opt("t1"), opt("t2")},
	}
	if got, ok := s.ResolveTailUsed(4); !ok || got != 2 {
		t.Fatalf("expected tail_used=2, got (%d, %v)", got, ok)
	}
}

func TestResolveTailUsedWithMinGroups(t *testing.T) {
	s := mustShape(t, []ParamSig{p("h")}, []ParamSig{p("x")}, nil)
	if _, ok := s.ResolveTailUsedWithMinGroups(2, 2); ok {
		t.Fatal("expected one cycle to be rejected when two are required")
	}
	if got, ok := s.ResolveTailUsedWithMinGroups(1, 0); !ok || got != 0 {
		t.Fatalf("expected zero cycles to fit with minGroups=0, got (%d, %v)", got, ok)
	}
}

func TestComplete(t *testing.T) {
	pair := mustShape(t, nil, []ParamSig{p("x"), p("y")}, nil)
	ifs := mustShape(t, nil, []ParamSig{p("condition"), p("value")}, []ParamSig{p("default")})
	headed := mustShape(t, []ParamSig{p("h1"), p("h2")}, []ParamSig{p("x")}, []ParamSig{p("t")})

	tests := []struct {
		name  string
		shape ParamShape
		total int
		want  CompletedShape
	}{
		{"bumps to next multiple", pair, 3, CompletedShape{Total: 4, TailUsed: 0, TailStart: 4, RepeatGroups: 2}},
		{"already valid", ifs, 5, CompletedShape{Total: 5, TailUsed: 1, TailStart: 4, RepeatGroups: 2}},
		{"empty call", ifs, 0, CompletedShape{Total: 3, TailUsed: 1, TailStart: 2, RepeatGroups: 1}},
		{"one short of tail", ifs, 4, CompletedShape{Total: 5, TailUsed: 1, TailStart: 4, RepeatGroups: 2}},
		{"below head", headed, 1, CompletedShape{Total: 4, TailUsed: 1, TailStart: 3, RepeatGroups: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.shape.Complete(tt.total)
			if !ok {
				t.Fatal("expected completion")
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("Complete mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if _, ok := mustShape(t, []ParamSig{p("a")}, nil, nil).Complete(1); ok {
		t.Fatal("expected no completion for a non-variadic shape")
	}
}

// Every completion is resolvable and never shrinks the call.
func TestCompleteRoundTrips(t *testing.T) {
	shapes := []ParamShape{
		mustShape(t, nil, []ParamSig{p("x")}, nil),
		mustShape(t, nil, []ParamSig{p("c"), p("v")}, []ParamSig{p("d")}),
		mustShape(t, []ParamSig{opt("a"), p("b")}, []ParamSig{p("x"), p("y"), p("z")}, []ParamSig{p("t1"), p("t2")}),
		mustShape(t, []ParamSig{p("a")}, []ParamSig{p("x")}, nil),
	}
	for si, s := range shapes {
		for total := 0; total <= 12; total++ {
			c, ok := s.Complete(total)
			if !ok {
				t.Fatalf("shape %d total %d: expected completion", si, total)
			}
			if c.Total < total {
				t.Fatalf("shape %d total %d: completion shrank to %d", si, total, c.Total)
			}
			tailUsed, ok := s.ResolveTailUsed(c.Total)
			if !ok || tailUsed != c.TailUsed {
				t.Fatalf("shape %d total %d: resolve(%d) = (%d, %v), want %d", si, total, c.Total, tailUsed, ok, c.TailUsed)
			}
			if c.Total != len(s.Head)+c.RepeatGroups*len(s.Repeat)+c.TailUsed || c.RepeatGroups < 1 {
				t.Fatalf("shape %d total %d: inconsistent split %+v", si, total, c)
			}
			if c.TailStart != c.Total-c.TailUsed {
				t.Fatalf("shape %d total %d: tail start %d", si, total, c.TailStart)
			}
		}
	}
}

// Resolve succeeds exactly when some decomposition with k >= 1 exists.
func TestResolveMatchesBruteForce(t *testing.T) {
	s := ParamShape{
		Head:   []ParamSig{p("h")},
		Repeat: []ParamSig{p("x"), p("y")},
		Tail:   []ParamSig{p("t1"), p("t2")},
	}
	for total := 0; total <= 15; total++ {
		exists := false
		for k := 1; k <= total; k++ {
			if 1+2*k+2 == total {
				exists = true
			}
		}
		tailUsed, ok := s.ResolveTailUsed(total)
		if ok != exists {
			t.Fatalf("total %d: resolve ok=%v, brute force=%v", total, ok, exists)
		}
		if ok && (total-1-tailUsed)%2 != 0 {
			t.Fatalf("total %d: tail_used %d leaves a partial cycle", total, tailUsed)
		}
	}
}

func TestParamForArgIndex(t *testing.T) {
	shape := mustShape(t, nil, []ParamSig{p("condition"), p("value")}, []ParamSig{p("default")})
	sig := New(General, "", "ifs", shape, types.Number())

	names := func(total int) []string {
		var out []string
		for i := range total {
			ps, ok := sig.ParamForArgIndex(i, total)
			if !ok {
				out = append(out, "-")
				continue
			}
			out = append(out, ps.Name)
		}
		return out
	}
	want := []string{"condition", "value", "condition", "value", "default"}
	if diff := cmp.Diff(want, names(5)); diff != "" {
		t.Fatalf("mapping mismatch (-want +got):\n%s", diff)
	}
	if _, ok := sig.ParamForArgIndex(0, 4); ok {
		t.Fatal("expected no mapping for an unresolvable total")
	}

	flatShape := mustShape(t, []ParamSig{p("a")}, nil, []ParamSig{opt("b")})
	flat := New(General, "", "f", flatShape, types.Number())
	if ps, ok := flat.ParamForArgIndex(1, 2); !ok || ps.Name != "b" {
		t.Fatalf("expected tail param b, got %+v (%v)", ps, ok)
	}
	if _, ok := flat.ParamForArgIndex(2, 3); ok {
		t.Fatal("expected no param past the end")
	}
}

func TestNewBuiltinValidation(t *testing.T) {
	shape := mustShape(t, []ParamSig{Param("x", types.Generic(0))}, nil, nil)
	if _, err := NewBuiltin(General, "", "bad", shape, types.Generic(0)); err == nil {
		t.Fatal("expected undeclared generic error")
	}
	if _, err := NewBuiltin(General, "", "ok", shape, types.Generic(0), GenericParam{ID: 0, Kind: generics.Plain}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	unk := mustShape(t, []ParamSig{Param("x", types.List(types.Unknown()))}, nil, nil)
	_, err := NewBuiltin(General, "", "unk", unk, types.Number())
	var se *SigError
	if !errors.As(err, &se) || se.Undeclared || se.Param != "x" {
		t.Fatalf("expected unknown-type SigError for x, got %v", err)
	}
}

func TestFlatParams(t *testing.T) {
	flat := New(General, "", "f", mustShape(t, []ParamSig{p("a"), p("b")}, nil, nil), types.Number())
	if ps, ok := flat.FlatParams(); !ok || len(ps) != 2 {
		t.Fatalf("expected flat params, got %v (%v)", ps, ok)
	}
	variadic := New(General, "", "v", mustShape(t, nil, []ParamSig{p("x")}, nil), types.Number())
	if _, ok := variadic.FlatParams(); ok {
		t.Fatal("variadic signature must not be flat")
	}
	if variadic.MaxArgs() != -1 || flat.MaxArgs() != 2 {
		t.Fatalf("unexpected MaxArgs: %d %d", variadic.MaxArgs(), flat.MaxArgs())
	}
}
