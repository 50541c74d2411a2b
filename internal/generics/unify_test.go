package generics

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"formula/internal/types"
)

const t0 types.GenericID = 0

func TestPlainAccumulatesIntoUnion(t *testing.T) {
	reg := Registry{t0: Plain}
	s := Subst{}
	s.Unify(reg, types.Generic(t0), types.Number())
	s.Unify(reg, types.Generic(t0), types.String())
	s.Unify(reg, types.Generic(t0), types.Number())

	want := types.Union(types.Number(), types.String())
	if diff := cmp.Diff(want, s.Lookup(t0)); diff != "" {
		t.Fatalf("binding mismatch (-want +got):\n%s", diff)
	}
}

func TestPlainIgnoresUnknown(t *testing.T) {
	reg := Registry{}
	s := Subst{}
	s.Unify(reg, types.Generic(t0), types.Unknown())
	if _, ok := s[t0]; ok {
		t.Fatalf("expected Unknown binding to be ignored, got %s", s[t0])
	}
	s.Unify(reg, types.Generic(t0), types.Number())
	s.Unify(reg, types.Generic(t0), types.Unknown())
	if got := s.Lookup(t0); !got.Equal(types.Number()) {
		t.Fatalf("expected number, got %s", got)
	}
}

func TestVariantPoisoning(t *testing.T) {
	reg := Registry{t0: Variant}
	tests := []struct {
		name    string
		actuals []types.Ty
		want    types.Ty
	}{
		{"concrete", []types.Ty{types.Number(), types.String()}, types.Union(types.Number(), types.String())},
		{"unknown first", []types.Ty{types.Unknown(), types.Number()}, types.Unknown()},
		{"unknown last", []types.Ty{types.Number(), types.Unknown()}, types.Unknown()},
		{"unknown inside union", []types.Ty{types.RawUnion(types.Number(), types.Unknown()), types.String()}, types.Unknown()},
		{"union expanded", []types.Ty{types.Union(types.Date(), types.Number()), types.Number()},
			types.Union(types.Number(), types.Date())},
		{"list of unknown is concrete", []types.Ty{types.List(types.Unknown())}, types.List(types.Unknown())},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Subst{}
			for _, a := range tt.actuals {
				s.Unify(reg, types.Generic(t0), a)
			}
			if diff := cmp.Diff(tt.want, s.Lookup(t0)); diff != "" {
				t.Fatalf("binding mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUnifyStructural(t *testing.T) {
	reg := Registry{}

	s := Subst{}
	s.Unify(reg, types.List(types.Generic(t0)), types.List(types.Date()))
	if got := s.Lookup(t0); !got.Equal(types.Date()) {
		t.Fatalf("expected list element binding date, got %s", got)
	}

	s = Subst{}
	s.Unify(reg, types.List(types.Generic(t0)), types.Number())
	if len(s) != 0 {
		t.Fatalf("expected no binding for non-list actual, got %v", s)
	}

	s = Subst{}
	s.Unify(reg, types.RawUnion(types.Generic(t0), types.List(types.Generic(t0))), types.List(types.String()))
	want := types.Union(types.String(), types.List(types.String()))
	if diff := cmp.Diff(want, s.Lookup(t0)); diff != "" {
		t.Fatalf("union template binding mismatch (-want +got):\n%s", diff)
	}
}

func TestApply(t *testing.T) {
	s := Subst{t0: types.Number()}
	tests := []struct {
		name     string
		template types.Ty
		want     types.Ty
	}{
		{"bound", types.Generic(t0), types.Number()},
		{"unbound", types.Generic(7), types.Unknown()},
		{"list", types.List(types.Generic(t0)), types.List(types.Number())},
		{"union renormalized", types.RawUnion(types.Generic(t0), types.Number(), types.String()),
			types.Union(types.Number(), types.String())},
		{"union with unbound", types.RawUnion(types.Generic(3), types.String()), types.Unknown()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, s.Apply(tt.template)); diff != "" {
				t.Fatalf("Apply mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApplyIsIdentityWithoutGenerics(t *testing.T) {
	s := Subst{t0: types.String()}
	for _, ty := range []types.Ty{
		types.Number(),
		types.List(types.Date()),
		types.Union(types.Null(), types.List(types.Boolean())),
		types.Unknown(),
	} {
		if got := s.Apply(ty); !got.Equal(ty) {
			t.Errorf("Apply(%s) = %s, want identity", ty, got)
		}
	}
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind("variant"); err != nil || k != Variant {
		t.Fatalf("expected variant, got %v (%v)", k, err)
	}
	if k, err := ParseKind(""); err != nil || k != Plain {
		t.Fatalf("expected plain default, got %v (%v)", k, err)
	}
	if _, err := ParseKind("loose"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
