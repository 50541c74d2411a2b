// Package callsig maps the arguments of one call onto a FunctionSig: which
// declared parameter each argument fills, whether the argument count is
// acceptable, and what the generic parameter and return templates instantiate
// to for the argument types seen so far.
//
// Type inference, call validation and signature help all go through this
// package, so the three agree on how repeat groups and tails are laid out.
package callsig

import (
	"formula/internal/generics"
	"formula/internal/signature"
	"formula/internal/types"
)

// Instantiation is the result of applying one call's argument types to a signature.
type Instantiation struct {
	// Params holds the instantiated type of every display parameter (head, repeat, tail).
	Params []types.Ty
	Ret    types.Ty
	Subst  generics.Subst
}

// Instantiate is InstantiateCall with total equal to len(args).
func Instantiate(sig *signature.FunctionSig, args []types.Ty) Instantiation {
	return InstantiateCall(sig, args, len(args))
}

// InstantiateCall unifies every known argument type with its declared
// parameter and applies the resulting substitution to the parameter and
// return templates.
//
// args may be shorter than total (later arguments not typed yet); absent
// entries (types.None) are skipped. For variadic signatures the layout comes
// from the shape completed against max(len(args), total).
func InstantiateCall(sig *signature.FunctionSig, args []types.Ty, total int) Instantiation {
	subst := generics.Subst{}
	reg := sig.Registry()
	tailStart, ok := TailStart(sig, max(len(args), total))
	if ok {
		for i, actual := range args {
			if actual.IsNone() {
				continue
			}
			param, found := sig.Params.ParamAt(i, tailStart)
			if !found {
				continue
			}
			subst.Unify(reg, param.Ty, actual)
		}
	}

	display := sig.DisplayParams()
	params := make([]types.Ty, len(display))
	for i, p := range display {
		params[i] = subst.Apply(p.Ty)
	}
	return Instantiation{
		Params: params,
		Ret:    subst.Apply(sig.Ret),
		Subst:  subst,
	}
}

// TailStart returns the index at which tail arguments begin in a call of
// total arguments. Non-variadic signatures put the tail right after the head.
func TailStart(sig *signature.FunctionSig, total int) (int, bool) {
	if !sig.IsVariadic() {
		return len(sig.Params.Head), true
	}
	shape, ok := sig.Params.Complete(total)
	if !ok {
		return 0, false
	}
	return shape.TailStart, true
}

// ParamForArg maps argument idx of a complete call with total arguments to its
// declared parameter. It reports false when idx is past the declared
// parameters or the variadic shape cannot be resolved.
func ParamForArg(sig *signature.FunctionSig, idx, total int) (signature.ParamSig, bool) {
	return sig.ParamForArgIndex(idx, total)
}

// ExpectedArgType returns what argument idx should be, with generics bound
// from the other arguments in args (types.None where not typed yet). The
// shape is completed the way InstantiateCall completes it, so a call still
// being written maps too. An unbound generic comes back as Unknown.
func ExpectedArgType(sig *signature.FunctionSig, args []types.Ty, idx int) (types.Ty, bool) {
	total := max(len(args), idx+1)
	tailStart, ok := TailStart(sig, total)
	if !ok {
		return types.None, false
	}
	param, ok := sig.Params.ParamAt(idx, tailStart)
	if !ok {
		return types.None, false
	}
	inst := InstantiateCall(sig, args, total)
	return inst.Subst.Apply(param.Ty), true
}
