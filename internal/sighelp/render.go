package sighelp

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"formula/internal/signature"
	"formula/internal/types"
)

// slot is one entry between the parentheses: a parameter or the ellipsis
// that stands for further repeat cycles.
type slot struct {
	ellipsis bool
	name     string
	ty       string
	index    int
}

type receiverSlot struct {
	name, ty string
}

type rendered struct {
	receiver *receiverSlot
	slots    []slot
}

type renderer struct {
	methodStyle bool
	out         rendered
	next        int
}

func (r *renderer) param(name, ty string) {
	if r.methodStyle && r.out.receiver == nil {
		r.out.receiver = &receiverSlot{name: name, ty: ty}
		return
	}
	r.out.slots = append(r.out.slots, slot{name: name, ty: ty, index: r.next})
	r.next++
}

func (r *renderer) ellipsis() {
	r.out.slots = append(r.out.slots, slot{ellipsis: true})
}

// render lays out sig for a call whose argument types so far are argTys
// (types.None where an argument is still empty). inst holds the
// instantiated display parameter types.
func render(sig *signature.FunctionSig, argTys []types.Ty, total int, inst []types.Ty, methodStyle bool) rendered {
	r := renderer{methodStyle: methodStyle}
	p := sig.Params
	instAt := func(idx int, fallback types.Ty) types.Ty {
		if idx < len(inst) {
			return inst[idx]
		}
		return fallback
	}
	actualAt := func(idx int) types.Ty {
		if idx >= 0 && idx < len(argTys) {
			return argTys[idx]
		}
		return types.None
	}

	if !p.IsVariadic() {
		flat := append(append([]signature.ParamSig(nil), p.Head...), p.Tail...)
		for idx, param := range flat {
			ty := chooseDisplayTy(actualAt(idx), param.Ty, instAt(idx, param.Ty))
			r.param(param.Name, withOptional(ty, param.Optional))
		}
		return r.out
	}

	for idx, param := range p.Head {
		r.param(param.Name, withOptional(instAt(idx, param.Ty), param.Optional))
	}

	repeatStart := len(p.Head)
	repeatLen := len(p.Repeat)
	groups, tailStart := 1, math.MaxInt
	if shape, ok := p.Complete(total); ok {
		groups, tailStart = shape.RepeatGroups, shape.TailStart
	}
	offsets := make([]int, repeatLen)
	for rIdx, param := range p.Repeat {
		offsets[rIdx] = repeatOffset(p.Head, param.Name)
	}
	for n := 1; n <= groups; n++ {
		for rIdx, param := range p.Repeat {
			actualIdx := repeatStart + (n-1)*repeatLen + rIdx
			expected := instAt(repeatStart+rIdx, param.Ty)
			ty := chooseDisplayTy(actualAt(actualIdx), param.Ty, expected)
			r.param(repeatName(param.Name, n+offsets[rIdx]), withOptional(ty, param.Optional))
		}
	}
	r.ellipsis()
	for tIdx, param := range p.Tail {
		actualIdx := -1
		if tailStart != math.MaxInt {
			actualIdx = tailStart + tIdx
		}
		expected := instAt(repeatStart+repeatLen+tIdx, param.Ty)
		ty := chooseDisplayTy(actualAt(actualIdx), param.Ty, expected)
		r.param(param.Name, withOptional(ty, param.Optional))
	}
	return r.out
}

// chooseDisplayTy picks what to show for one parameter slot. Generic
// parameters show what the argument actually is; concrete union parameters
// show the accepted member the argument matched.
func chooseDisplayTy(actual, declared, expected types.Ty) types.Ty {
	if types.ContainsGeneric(declared) {
		if actual.IsNone() {
			return expected
		}
		return actual
	}
	if actual.IsNone() || actual.IsUnknown() {
		return expected
	}
	if expected.Kind == types.KindUnion && types.Accepts(expected, actual) {
		return actual
	}
	return expected
}

func withOptional(ty types.Ty, optional bool) string {
	s := types.Label(ty)
	if optional {
		s += "?"
	}
	return s
}

// repeatOffset counts the head parameters that already use the first
// numbered forms of a repeat name, so concat(lists1, listsN) continues at
// lists2 instead of repeating lists1.
func repeatOffset(head []signature.ParamSig, base string) int {
	offset := 0
	for slices.ContainsFunc(head, func(p signature.ParamSig) bool {
		return p.Name == repeatName(base, offset+1)
	}) {
		offset++
	}
	return offset
}

// repeatName numbers a repeat parameter for cycle n: a trailing "N" or a
// trailing "1" is replaced, anything else gets n appended.
func repeatName(base string, n int) string {
	num := strconv.Itoa(n)
	if prefix, ok := strings.CutSuffix(base, "N"); ok {
		return prefix + num
	}
	trimmed := strings.TrimRight(base, "0123456789")
	if len(trimmed) < len(base) && base[len(trimmed):] == "1" {
		return trimmed + num
	}
	return base + num
}
