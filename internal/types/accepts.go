package types

// Accepts reports whether a value of type actual may be passed where expected is declared.
//
// An Unknown actual is always accepted so that an inference gap never turns
// into a type error. A Generic or Unknown expected type is a wildcard; an
// inferred actual that is itself Generic gets no such pass. Unions are
// compared as sets and lists are covariant.
func Accepts(expected, actual Ty) bool {
	if actual.Kind == KindUnknown || actual.Kind == KindNone {
		return true
	}
	if expected.Kind == KindGeneric || expected.Kind == KindUnknown {
		return true
	}
	if actual.Kind == KindUnion {
		for _, m := range actual.Members {
			if !Accepts(expected, m) {
				return false
			}
		}
		return true
	}
	switch expected.Kind {
	case KindUnion:
		for _, branch := range expected.Members {
			if Accepts(branch, actual) {
				return true
			}
		}
		return false
	case KindList:
		if actual.Kind != KindList {
			return false
		}
		return Accepts(expected.ElemType(), actual.ElemType())
	default:
		return expected.Equal(actual)
	}
}
