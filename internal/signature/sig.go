package signature

import (
	"fmt"
	"slices"

	"formula/internal/generics"
	"formula/internal/types"
)

// Category groups builtins for listings and completion.
type Category uint8

const (
	General Category = iota
	Text
	Number
	Date
	People
	List
	Special
)

var categoryNames = [...]string{
	General: "general",
	Text:    "text",
	Number:  "number",
	Date:    "date",
	People:  "people",
	List:    "list",
	Special: "special",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("Category(%d)", c)
}

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{General, Text, Number, Date, People, List, Special}
}

// ParseCategory maps a lower-case category name back to its value.
func ParseCategory(s string) (Category, error) {
	for i, name := range categoryNames {
		if name == s {
			return Category(i), nil
		}
	}
	return General, fmt.Errorf("unknown category %q", s)
}

// GenericParam declares one generic id and its binding discipline.
type GenericParam struct {
	ID   types.GenericID `msgpack:"id"`
	Kind generics.Kind   `msgpack:"kind"`
}

// FunctionSig is the full declaration of a callable. Values are shared
// read-only after construction.
type FunctionSig struct {
	Name     string         `msgpack:"name"`
	Params   ParamShape     `msgpack:"params"`
	Ret      types.Ty       `msgpack:"ret"`
	Category Category       `msgpack:"category"`
	Detail   string         `msgpack:"detail,omitempty"`
	Generics []GenericParam `msgpack:"generics,omitempty"`
}

// New builds a signature without validating its type templates.
func New(category Category, detail, name string, params ParamShape, ret types.Ty, gens ...GenericParam) *FunctionSig {
	return &FunctionSig{
		Name:     name,
		Params:   params,
		Ret:      ret,
		Category: category,
		Detail:   detail,
		Generics: slices.Clone(gens),
	}
}

// SigError reports a builtin signature whose templates are malformed.
type SigError struct {
	Func  string
	Param string // empty for the return type
	Ty    types.Ty
	// Generic is set when an undeclared generic is referenced.
	Generic    types.GenericID
	Undeclared bool
}

func (e *SigError) Error() string {
	if e == nil {
		return "<nil>"
	}
	where := "return type"
	if e.Param != "" {
		where = fmt.Sprintf("param %q type", e.Param)
	}
	if e.Undeclared {
		return fmt.Sprintf("builtin %s: %s uses undeclared generic T%d", e.Func, where, e.Generic)
	}
	return fmt.Sprintf("builtin %s: %s must not contain unknown (found %s)", e.Func, where, e.Ty)
}

// NewBuiltin builds a signature and checks that no template contains Unknown
// and that every generic it references is declared.
func NewBuiltin(category Category, detail, name string, params ParamShape, ret types.Ty, gens ...GenericParam) (*FunctionSig, error) {
	sig := New(category, detail, name, params, ret, gens...)
	if err := sig.validateBuiltin(); err != nil {
		return nil, err
	}
	return sig, nil
}

func (f *FunctionSig) validateBuiltin() error {
	declared := make(map[types.GenericID]struct{}, len(f.Generics))
	for _, g := range f.Generics {
		declared[g.ID] = struct{}{}
	}
	check := func(param string, ty types.Ty) error {
		if types.ContainsUnknown(ty) {
			return &SigError{Func: f.Name, Param: param, Ty: ty}
		}
		for _, id := range types.CollectGenerics(ty) {
			if _, ok := declared[id]; !ok {
				return &SigError{Func: f.Name, Param: param, Ty: ty, Generic: id, Undeclared: true}
			}
		}
		return nil
	}
	for _, p := range f.Params.Display() {
		if err := check(p.Name, p.Ty); err != nil {
			return err
		}
	}
	return check("", f.Ret)
}

// Registry returns the binding discipline of every declared generic.
func (f *FunctionSig) Registry() generics.Registry {
	reg := make(generics.Registry, len(f.Generics))
	for _, g := range f.Generics {
		reg[g.ID] = g.Kind
	}
	return reg
}

// IsVariadic reports whether the signature has a repeat group.
func (f *FunctionSig) IsVariadic() bool { return f.Params.IsVariadic() }

// DisplayParamsLen counts head, repeat and tail slots.
func (f *FunctionSig) DisplayParamsLen() int { return f.Params.DisplayLen() }

// DisplayParams returns head ++ repeat ++ tail.
func (f *FunctionSig) DisplayParams() []ParamSig { return f.Params.Display() }

// FlatParams returns the head when the signature has neither repeat nor tail.
func (f *FunctionSig) FlatParams() ([]ParamSig, bool) {
	if len(f.Params.Repeat) == 0 && len(f.Params.Tail) == 0 {
		return f.Params.Head, true
	}
	return nil, false
}

// RequiredMinArgs forwards to the parameter shape.
func (f *FunctionSig) RequiredMinArgs() int { return f.Params.RequiredMinArgs() }

// MaxArgs returns the largest accepted argument count, or -1 when unbounded.
func (f *FunctionSig) MaxArgs() int {
	if f.IsVariadic() {
		return -1
	}
	return len(f.Params.Head) + len(f.Params.Tail)
}

// ParamForArgIndex maps argument idx of a call with total arguments to its
// declared parameter. Variadic signatures need a resolvable total.
func (f *FunctionSig) ParamForArgIndex(idx, total int) (ParamSig, bool) {
	p := f.Params
	if idx < 0 {
		return ParamSig{}, false
	}
	if !p.IsVariadic() {
		if idx < len(p.Head) {
			return p.Head[idx], true
		}
		if j := idx - len(p.Head); j < len(p.Tail) {
			return p.Tail[j], true
		}
		return ParamSig{}, false
	}
	tailUsed, ok := p.ResolveTailUsed(total)
	if !ok {
		return ParamSig{}, false
	}
	return p.ParamAt(idx, total-tailUsed)
}

// ParamAt maps argument idx to its declared parameter once the index at
// which tail arguments begin is known.
func (s ParamShape) ParamAt(idx, tailStart int) (ParamSig, bool) {
	switch {
	case idx < 0:
		return ParamSig{}, false
	case idx < len(s.Head):
		return s.Head[idx], true
	case idx >= tailStart:
		j := idx - tailStart
		if j < len(s.Tail) {
			return s.Tail[j], true
		}
		return ParamSig{}, false
	case len(s.Repeat) > 0:
		return s.Repeat[(idx-len(s.Head))%len(s.Repeat)], true
	default:
		return ParamSig{}, false
	}
}
