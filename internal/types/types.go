package types

import "fmt"

// GenericID identifies a generic type parameter within one function signature.
// IDs are not unique across signatures.
type GenericID uint32

// Kind enumerates all supported shapes of a formula type.
type Kind uint8

const (
	// KindNone marks the absence of a type (an argument that could not be typed yet).
	KindNone Kind = iota
	KindNumber
	KindString
	KindBoolean
	KindDate
	KindNull
	KindUnknown
	KindGeneric
	KindList
	KindUnion
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBoolean:
		return "boolean"
	case KindDate:
		return "date"
	case KindNull:
		return "null"
	case KindUnknown:
		return "unknown"
	case KindGeneric:
		return "generic"
	case KindList:
		return "list"
	case KindUnion:
		return "union"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Ty is a formula type value. The zero value is the absent type.
//
// Ty values are immutable by convention: constructors copy their inputs and
// no function in this package mutates Elem or Members after construction.
type Ty struct {
	Kind    Kind      `msgpack:"k"`
	Generic GenericID `msgpack:"g,omitempty"`
	Elem    *Ty       `msgpack:"e,omitempty"`
	Members []Ty      `msgpack:"m,omitempty"`
}

// None is the absent type.
var None = Ty{}

// Number returns the number type.
func Number() Ty { return Ty{Kind: KindNumber} }

// String returns the string type.
func String() Ty { return Ty{Kind: KindString} }

// Boolean returns the boolean type.
func Boolean() Ty { return Ty{Kind: KindBoolean} }

// Date returns the date type.
func Date() Ty { return Ty{Kind: KindDate} }

// Null returns the null type.
func Null() Ty { return Ty{Kind: KindNull} }

// Unknown returns the wildcard "could not be inferred" type.
func Unknown() Ty { return Ty{Kind: KindUnknown} }

// Generic returns a reference to the generic parameter id.
func Generic(id GenericID) Ty { return Ty{Kind: KindGeneric, Generic: id} }

// List returns a list of elem.
func List(elem Ty) Ty {
	inner := elem
	return Ty{Kind: KindList, Elem: &inner}
}

// Union builds a normalized union of members. See NormalizeUnion.
func Union(members ...Ty) Ty {
	return NormalizeUnion(members)
}

// RawUnion builds a union without normalization. Signature tables use it for
// templates whose member order must be kept verbatim; most callers want Union.
func RawUnion(members ...Ty) Ty {
	out := make([]Ty, len(members))
	copy(out, members)
	return Ty{Kind: KindUnion, Members: out}
}

// IsNone reports whether t is the absent type.
func (t Ty) IsNone() bool { return t.Kind == KindNone }

// IsUnknown reports whether t is exactly Unknown.
func (t Ty) IsUnknown() bool { return t.Kind == KindUnknown }

// ElemType returns the element of a list type, or None.
func (t Ty) ElemType() Ty {
	if t.Kind != KindList || t.Elem == nil {
		return None
	}
	return *t.Elem
}

// Equal reports structural equality.
func (t Ty) Equal(other Ty) bool {
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case KindGeneric:
		return t.Generic == other.Generic
	case KindList:
		return t.ElemType().Equal(other.ElemType())
	case KindUnion:
		if len(t.Members) != len(other.Members) {
			return false
		}
		for i := range t.Members {
			if !t.Members[i].Equal(other.Members[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func (t Ty) String() string {
	return Label(t)
}

// ContainsUnknown reports whether Unknown appears anywhere inside t.
func ContainsUnknown(t Ty) bool {
	switch t.Kind {
	case KindUnknown:
		return true
	case KindList:
		return ContainsUnknown(t.ElemType())
	case KindUnion:
		for _, m := range t.Members {
			if ContainsUnknown(m) {
				return true
			}
		}
	}
	return false
}

// ContainsGeneric reports whether a Generic reference appears anywhere inside t.
func ContainsGeneric(t Ty) bool {
	switch t.Kind {
	case KindGeneric:
		return true
	case KindList:
		return ContainsGeneric(t.ElemType())
	case KindUnion:
		for _, m := range t.Members {
			if ContainsGeneric(m) {
				return true
			}
		}
	}
	return false
}

// CollectGenerics returns every generic id referenced by t in walk order,
// duplicates included.
func CollectGenerics(t Ty) []GenericID {
	var out []GenericID
	var walk func(Ty)
	walk = func(t Ty) {
		switch t.Kind {
		case KindGeneric:
			out = append(out, t.Generic)
		case KindList:
			walk(t.ElemType())
		case KindUnion:
			for _, m := range t.Members {
				walk(m)
			}
		}
	}
	walk(t)
	return out
}
