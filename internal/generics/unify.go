package generics

import "formula/internal/types"

// Bind records actual as a binding of id using the discipline declared in reg.
func (s Subst) Bind(reg Registry, id types.GenericID, actual types.Ty) {
	if actual.IsNone() {
		return
	}
	switch reg.KindOf(id) {
	case Variant:
		s.bindVariant(id, actual)
	default:
		s.bindPlain(id, actual)
	}
}

func (s Subst) bindPlain(id types.GenericID, actual types.Ty) {
	if actual.IsUnknown() {
		return
	}
	prev, ok := s[id]
	if !ok {
		s[id] = types.NormalizeUnion([]types.Ty{actual})
		return
	}
	s[id] = types.NormalizeUnion([]types.Ty{prev, actual})
}

func (s Subst) bindVariant(id types.GenericID, actual types.Ty) {
	if containsUnknownMember(actual) {
		s[id] = types.Unknown()
		return
	}
	prev, ok := s[id]
	if ok && prev.IsUnknown() {
		return
	}

	var add []types.Ty
	if actual.Kind == types.KindUnion {
		add = append(add, actual.Members...)
	} else {
		add = append(add, actual)
	}
	if len(add) == 0 {
		return
	}
	if ok {
		add = append([]types.Ty{prev}, add...)
	}
	s[id] = types.NormalizeUnion(add)
}

// containsUnknownMember reports Unknown at the top level or inside a union.
// List elements are not inspected: a list of unknown is still a list.
func containsUnknownMember(t types.Ty) bool {
	switch t.Kind {
	case types.KindUnknown:
		return true
	case types.KindUnion:
		for _, m := range t.Members {
			if containsUnknownMember(m) {
				return true
			}
		}
	}
	return false
}

// Unify walks expected structurally and binds every generic it reaches.
//
// A List template only descends when actual is a list too. Every branch of a
// Union template is unified against actual independently. Mismatches bind
// nothing and are not errors.
func (s Subst) Unify(reg Registry, expected, actual types.Ty) {
	switch expected.Kind {
	case types.KindGeneric:
		s.Bind(reg, expected.Generic, actual)
	case types.KindList:
		if actual.Kind == types.KindList {
			s.Unify(reg, expected.ElemType(), actual.ElemType())
		}
	case types.KindUnion:
		for _, branch := range expected.Members {
			s.Unify(reg, branch, actual)
		}
	}
}

// Apply replaces every generic in template with its binding (Unknown when
// unbound), rebuilding lists and re-normalizing unions.
func (s Subst) Apply(template types.Ty) types.Ty {
	switch template.Kind {
	case types.KindGeneric:
		return s.Lookup(template.Generic)
	case types.KindList:
		return types.List(s.Apply(template.ElemType()))
	case types.KindUnion:
		members := make([]types.Ty, 0, len(template.Members))
		for _, m := range template.Members {
			members = append(members, s.Apply(m))
		}
		return types.NormalizeUnion(members)
	default:
		return template
	}
}
