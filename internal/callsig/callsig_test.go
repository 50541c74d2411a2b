package callsig

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"formula/internal/diag"
	"formula/internal/generics"
	"formula/internal/signature"
	"formula/internal/source"
	"formula/internal/types"
)

func mustSig(t *testing.T, name string, head, repeat, tail []signature.ParamSig, ret types.Ty, gens ...signature.GenericParam) *signature.FunctionSig {
	t.Helper()
	shape, err := signature.NewParamShape(head, repeat, tail)
	if err != nil {
		t.Fatalf("shape %s: %v", name, err)
	}
	sig, err := signature.NewBuiltin(signature.General, "", name, shape, ret, gens...)
	if err != nil {
		t.Fatalf("sig %s: %v", name, err)
	}
	return sig
}

func ifSig(t *testing.T, kind generics.Kind) *signature.FunctionSig {
	t0 := types.Generic(0)
	return mustSig(t, "if",
		[]signature.ParamSig{
			signature.Param("condition", types.Boolean()),
			signature.Param("then", t0),
			signature.Param("else", t0),
		}, nil, nil, t0,
		signature.GenericParam{ID: 0, Kind: kind})
}

func ifsSig(t *testing.T) *signature.FunctionSig {
	t0 := types.Generic(0)
	return mustSig(t, "ifs", nil,
		[]signature.ParamSig{
			signature.Param("condition", types.Boolean()),
			signature.Param("value", t0),
		},
		[]signature.ParamSig{signature.Param("default", t0)},
		t0,
		signature.GenericParam{ID: 0, Kind: generics.Variant})
}

func TestInstantiateIf(t *testing.T) {
	tests := []struct {
		name string
		kind generics.Kind
		args []types.Ty
		want types.Ty
	}{
		{"plain widens", generics.Plain, []types.Ty{types.Boolean(), types.Number(), types.String()},
			types.Union(types.Number(), types.String())},
		{"plain ignores unknown", generics.Plain, []types.Ty{types.Boolean(), types.Unknown(), types.Number()},
			types.Number()},
		{"variant widens", generics.Variant, []types.Ty{types.Boolean(), types.Number(), types.String()},
			types.Union(types.Number(), types.String())},
		{"variant poisoned", generics.Variant, []types.Ty{types.Boolean(), types.Unknown(), types.Number()},
			types.Unknown()},
		{"nothing known", generics.Variant, []types.Ty{types.Boolean()}, types.Unknown()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst := Instantiate(ifSig(t, tt.kind), tt.args)
			if diff := cmp.Diff(tt.want, inst.Ret); diff != "" {
				t.Fatalf("return type mismatch (-want +got):\n%s", diff)
			}
			if len(inst.Params) != 3 || !inst.Params[0].Equal(types.Boolean()) {
				t.Fatalf("unexpected params %v", inst.Params)
			}
		})
	}
}

func TestInstantiateIfs(t *testing.T) {
	sig := ifsSig(t)
	args := []types.Ty{types.Boolean(), types.Number(), types.Boolean(), types.Number(), types.String()}
	inst := Instantiate(sig, args)
	want := types.Union(types.Number(), types.String())
	if diff := cmp.Diff(want, inst.Ret); diff != "" {
		t.Fatalf("return type mismatch (-want +got):\n%s", diff)
	}
	wantParams := []types.Ty{types.Boolean(), want, want}
	if diff := cmp.Diff(wantParams, inst.Params); diff != "" {
		t.Fatalf("param types mismatch (-want +got):\n%s", diff)
	}
}

func TestInstantiatePartialCall(t *testing.T) {
	sig := ifsSig(t)
	// ifs(true, 1, <cursor>: only the first two arguments are typed, a third is being written.
	inst := InstantiateCall(sig, []types.Ty{types.Boolean(), types.Number(), types.None}, 3)
	if !inst.Ret.Equal(types.Number()) {
		t.Fatalf("expected number, got %s", inst.Ret)
	}

	// ifs(true, 1, false, "x": completed to five arguments, "x" is a repeat value.
	inst = InstantiateCall(sig, []types.Ty{types.Boolean(), types.Number(), types.Boolean(), types.String()}, 4)
	if !inst.Ret.Equal(types.Union(types.Number(), types.String())) {
		t.Fatalf("expected number | string, got %s", inst.Ret)
	}
}

func TestCheckArity(t *testing.T) {
	opt := mustSig(t, "substring",
		[]signature.ParamSig{
			signature.Param("text", types.String()),
			signature.Param("start", types.Number()),
			signature.Opt("end", types.Number()),
		}, nil, nil, types.String())
	one := mustSig(t, "abs", []signature.ParamSig{signature.Param("n", types.Number())}, nil, nil, types.Number())

	tests := []struct {
		name string
		sig  *signature.FunctionSig
		args int
		want string
	}{
		{"exact ok", ifSig(t, generics.Variant), 3, ""},
		{"exact plural", ifSig(t, generics.Variant), 2, "if() expects exactly 3 arguments"},
		{"exact singular", one, 0, "abs() expects exactly 1 argument"},
		{"range ok", opt, 2, ""},
		{"at least", opt, 1, "substring() expects at least 2 arguments"},
		{"at most", opt, 4, "substring() expects at most 3 arguments"},
		{"variadic ok", ifsSig(t), 5, ""},
		{"variadic short", ifsSig(t), 2, "ifs() expects at least 3 arguments"},
		{"variadic shape", ifsSig(t), 4, "ifs() has an invalid argument shape"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckArity(tt.sig, tt.args)
			got := ""
			if err != nil {
				got = err.Error()
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestReportArityEmitsOneDiagnostic(t *testing.T) {
	bag := diag.NewBag(10)
	span := source.Span{Start: 0, End: 19}
	if ReportArity(diag.BagReporter{Bag: bag}, span, ifsSig(t), 4) {
		t.Fatal("expected ifs with 4 arguments to be rejected")
	}
	if bag.Len() != 1 {
		t.Fatalf("expected exactly one diagnostic, got %d", bag.Len())
	}
	d := bag.Items()[0]
	if d.Code != diag.SemaInvalidShape || d.Primary != span {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
}

func TestParamForArg(t *testing.T) {
	sig := ifsSig(t)
	p, ok := ParamForArg(sig, 4, 5)
	if !ok || p.Name != "default" {
		t.Fatalf("expected default, got %+v (%v)", p, ok)
	}
	p, ok = ParamForArg(sig, 2, 5)
	if !ok || p.Name != "condition" {
		t.Fatalf("expected condition, got %+v (%v)", p, ok)
	}
}

func TestActiveParameter(t *testing.T) {
	ifs := ifsSig(t)
	tests := []struct {
		name        string
		sig         *signature.FunctionSig
		argIndex    int
		total       int
		methodStyle bool
		want        int
	}{
		// ifs(condition1, value1, ..., default)
		{"first condition", ifs, 0, 1, false, 0},
		{"first value", ifs, 1, 2, false, 1},
		// third argument of three is the default
		{"default after one cycle", ifs, 2, 3, false, 2},
		// fourth argument typed: completed to five, index 3 is value2
		{"second value", ifs, 3, 4, false, 3},
		{"default after two cycles", ifs, 4, 5, false, 4},
		{"flat clamps", ifSig(t, generics.Variant), 7, 8, false, 2},
		{"method style", ifSig(t, generics.Variant), 1, 2, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ActiveParameter(tt.sig, tt.argIndex, tt.total, tt.methodStyle); got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestExpectedArgType(t *testing.T) {
	num, str, bln, none := types.Number(), types.String(), types.Boolean(), types.None
	tests := []struct {
		name   string
		sig    *signature.FunctionSig
		args   []types.Ty
		idx    int
		want   types.Ty
		wantOK bool
	}{
		{"first condition", ifsSig(t), nil, 0, bln, true},
		{"default bound by value", ifsSig(t), []types.Ty{bln, num, none}, 2, num, true},
		{"value still unbound", ifsSig(t), []types.Ty{bln, none}, 1, types.Unknown(), true},
		{"three args end at default", ifsSig(t), []types.Ty{bln, str, none}, 2, str, true},
		{"flat head", ifSig(t, generics.Plain), []types.Ty{bln, num, none}, 2, num, true},
		{"past flat params", ifSig(t, generics.Plain), []types.Ty{bln, num, num}, 3, types.None, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExpectedArgType(tt.sig, tt.args, tt.idx)
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("expected type mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
