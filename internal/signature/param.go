// Package signature describes the declared shape of callable builtins:
// parameters split into a fixed head, a cyclic repeat group and a fixed tail,
// plus the generic parameters and return template of a function.
package signature

import (
	"fmt"

	"formula/internal/types"
)

// ParamSig is a single declared parameter slot.
type ParamSig struct {
	Name     string   `msgpack:"name"`
	Ty       types.Ty `msgpack:"ty"`
	Optional bool     `msgpack:"opt,omitempty"`
}

// Param returns a required parameter.
func Param(name string, ty types.Ty) ParamSig {
	return ParamSig{Name: name, Ty: ty}
}

// Opt returns an optional parameter.
func Opt(name string, ty types.Ty) ParamSig {
	return ParamSig{Name: name, Ty: ty, Optional: true}
}

// ParamShape is the positional layout of a signature: head, then zero or more
// repeat cycles (at least one when Repeat is non-empty), then tail.
type ParamShape struct {
	Head   []ParamSig `msgpack:"head,omitempty"`
	Repeat []ParamSig `msgpack:"repeat,omitempty"`
	Tail   []ParamSig `msgpack:"tail,omitempty"`
}

// ShapeRule identifies the invariant a ParamShape violated.
type ShapeRule uint8

const (
	// ShapeOptionalRepeat: a repeat parameter is marked optional.
	ShapeOptionalRepeat ShapeRule = iota + 1
	// ShapeOptionalTailAfterRepeat: a repeat group is followed by an optional tail parameter.
	ShapeOptionalTailAfterRepeat
	// ShapeRequiredAfterOptional: a required tail parameter follows an optional one.
	ShapeRequiredAfterOptional
)

// ShapeError reports a ParamShape invariant violation.
type ShapeError struct {
	Rule  ShapeRule
	Param string
}

func (e *ShapeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Rule {
	case ShapeOptionalRepeat:
		return fmt.Sprintf("param shape: repeat param %q must not be optional", e.Param)
	case ShapeOptionalTailAfterRepeat:
		return fmt.Sprintf("param shape: tail param %q must be required when a repeat group exists", e.Param)
	case ShapeRequiredAfterOptional:
		return fmt.Sprintf("param shape: required tail param %q follows an optional one", e.Param)
	default:
		return fmt.Sprintf("param shape: rule=%d param %q", e.Rule, e.Param)
	}
}

// NewParamShape builds a ParamShape, rejecting layouts whose argument mapping
// would be ambiguous.
func NewParamShape(head, repeat, tail []ParamSig) (ParamShape, error) {
	for _, p := range repeat {
		if p.Optional {
			return ParamShape{}, &ShapeError{Rule: ShapeOptionalRepeat, Param: p.Name}
		}
	}
	if len(repeat) > 0 {
		for _, p := range tail {
			if p.Optional {
				return ParamShape{}, &ShapeError{Rule: ShapeOptionalTailAfterRepeat, Param: p.Name}
			}
		}
	}
	seenOptional := false
	for _, p := range tail {
		if seenOptional && !p.Optional {
			return ParamShape{}, &ShapeError{Rule: ShapeRequiredAfterOptional, Param: p.Name}
		}
		if p.Optional {
			seenOptional = true
		}
	}
	return ParamShape{
		Head:   cloneParams(head),
		Repeat: cloneParams(repeat),
		Tail:   cloneParams(tail),
	}, nil
}

func cloneParams(in []ParamSig) []ParamSig {
	if len(in) == 0 {
		return nil
	}
	out := make([]ParamSig, len(in))
	copy(out, in)
	return out
}

// IsVariadic reports whether the shape has a repeat group.
func (s ParamShape) IsVariadic() bool { return len(s.Repeat) > 0 }

// DisplayLen is len(Head)+len(Repeat)+len(Tail).
func (s ParamShape) DisplayLen() int { return len(s.Head) + len(s.Repeat) + len(s.Tail) }

// Display returns head, repeat and tail concatenated in declaration order.
func (s ParamShape) Display() []ParamSig {
	out := make([]ParamSig, 0, s.DisplayLen())
	out = append(out, s.Head...)
	out = append(out, s.Repeat...)
	out = append(out, s.Tail...)
	return out
}

// RequiredMinArgs returns the minimum argument count.
//
// Without a repeat group this is one past the last required parameter across
// head and tail, even if an optional parameter precedes it. With a repeat group
// one full cycle is always required.
func (s ParamShape) RequiredMinArgs() int {
	if len(s.Repeat) == 0 {
		required := 0
		for i, p := range s.Head {
			if !p.Optional {
				required = i + 1
			}
		}
		for i, p := range s.Tail {
			if !p.Optional {
				required = len(s.Head) + i + 1
			}
		}
		return required
	}
	return countRequired(s.Head) + len(s.Repeat) + countRequired(s.Tail)
}

func countRequired(params []ParamSig) int {
	n := 0
	for _, p := range params {
		if !p.Optional {
			n++
		}
	}
	return n
}

// requiredTailPrefix is one past the last required tail parameter.
func requiredTailPrefix(tail []ParamSig) int {
	required := 0
	for i, p := range tail {
		if !p.Optional {
			required = i + 1
		}
	}
	return required
}
