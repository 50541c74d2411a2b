package callsig

import (
	"fmt"

	"formula/internal/diag"
	"formula/internal/signature"
	"formula/internal/source"
)

// ArityKind tells which arity rule a call broke.
type ArityKind uint8

const (
	ArityExact ArityKind = iota + 1
	ArityAtLeast
	ArityAtMost
	ArityShape
)

// ArityError describes a call whose argument count does not fit its signature.
type ArityError struct {
	Kind ArityKind
	Func string
	// Want is the bound the call violated; unused for ArityShape.
	Want int
	Got  int
}

func (e *ArityError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case ArityExact:
		return fmt.Sprintf("%s() expects exactly %d %s", e.Func, e.Want, plural(e.Want))
	case ArityAtLeast:
		return fmt.Sprintf("%s() expects at least %d %s", e.Func, e.Want, plural(e.Want))
	case ArityAtMost:
		return fmt.Sprintf("%s() expects at most %d %s", e.Func, e.Want, plural(e.Want))
	case ArityShape:
		return fmt.Sprintf("%s() has an invalid argument shape", e.Func)
	default:
		return fmt.Sprintf("%s(): arity error kind=%d", e.Func, e.Kind)
	}
}

// Code maps the error to its diagnostic code.
func (e *ArityError) Code() diag.Code {
	switch e.Kind {
	case ArityExact:
		return diag.SemaArityExact
	case ArityAtLeast:
		return diag.SemaArityAtLeast
	case ArityAtMost:
		return diag.SemaArityAtMost
	default:
		return diag.SemaInvalidShape
	}
}

func plural(n int) string {
	if n == 1 {
		return "argument"
	}
	return "arguments"
}

// CheckArity validates the argument count of a call to sig. It returns nil
// when argCount is acceptable.
//
// A call that is too short for even one repeat cycle reports "at least"
// before the shape check, so a variadic call yields one error either way.
func CheckArity(sig *signature.FunctionSig, argCount int) *ArityError {
	required := sig.RequiredMinArgs()
	if !sig.IsVariadic() {
		maxArgs := len(sig.Params.Head) + len(sig.Params.Tail)
		if required == maxArgs {
			if argCount != maxArgs {
				return &ArityError{Kind: ArityExact, Func: sig.Name, Want: maxArgs, Got: argCount}
			}
			return nil
		}
		if argCount < required {
			return &ArityError{Kind: ArityAtLeast, Func: sig.Name, Want: required, Got: argCount}
		}
		if argCount > maxArgs {
			return &ArityError{Kind: ArityAtMost, Func: sig.Name, Want: maxArgs, Got: argCount}
		}
		return nil
	}

	if argCount < required {
		return &ArityError{Kind: ArityAtLeast, Func: sig.Name, Want: required, Got: argCount}
	}
	if _, ok := sig.Params.ResolveTailUsed(argCount); !ok {
		return &ArityError{Kind: ArityShape, Func: sig.Name, Got: argCount}
	}
	return nil
}

// ReportArity checks the call and emits at most one diagnostic at span.
// It reports whether the arity was valid.
func ReportArity(r diag.Reporter, span source.Span, sig *signature.FunctionSig, argCount int) bool {
	err := CheckArity(sig, argCount)
	if err == nil {
		return true
	}
	diag.ReportError(r, err.Code(), span, err.Error()).Emit()
	return false
}
