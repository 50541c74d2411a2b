// Package generics implements unification and substitution of generic type
// parameters for a single call-site instantiation.
//
// A Subst is created fresh for every call, filled by Unify against each
// (declared template, actual argument type) pair and then applied to the
// parameter and return templates. Neither step can fail: an unresolved
// generic simply becomes Unknown.
package generics

import (
	"fmt"

	"formula/internal/types"
)

// Kind selects how repeated bindings of one generic are merged.
type Kind uint8

const (
	// Plain generics widen into a union on conflicting bindings and ignore Unknown.
	Plain Kind = iota
	// Variant generics widen like Plain, but any binding that contains Unknown
	// makes the result Unknown for the rest of the call.
	Variant
)

func (k Kind) String() string {
	switch k {
	case Plain:
		return "plain"
	case Variant:
		return "variant"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// ParseKind converts a configuration string into a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "plain", "Plain", "":
		return Plain, nil
	case "variant", "Variant":
		return Variant, nil
	default:
		return Plain, fmt.Errorf("invalid generic kind: %q (expected: plain|variant)", s)
	}
}

// Registry maps generic ids to their declared kind. Undeclared ids bind as Plain.
type Registry map[types.GenericID]Kind

// KindOf returns the declared kind of id, defaulting to Plain.
func (r Registry) KindOf(id types.GenericID) Kind {
	if k, ok := r[id]; ok {
		return k
	}
	return Plain
}

// Subst maps generic ids to the concrete types inferred for one call.
type Subst map[types.GenericID]types.Ty

// Lookup returns the resolved type of id, or Unknown when it was never bound.
func (s Subst) Lookup(id types.GenericID) types.Ty {
	if t, ok := s[id]; ok {
		return t
	}
	return types.Unknown()
}
