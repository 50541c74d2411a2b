package types

import (
	"slices"
	"strings"
)

// NormalizeUnion folds members into a deterministic type:
//   - nested unions are flattened;
//   - absent (None) members are dropped;
//   - any Unknown member makes the whole result Unknown;
//   - duplicates are removed and the rest sorted by a stable key;
//   - a single remaining member is returned as is;
//   - an empty input yields Unknown.
func NormalizeUnion(members []Ty) Ty {
	flat := make([]Ty, 0, len(members))
	for _, m := range members {
		flat = appendFlattened(flat, m)
	}

	unique := make([]Ty, 0, len(flat))
	for _, m := range flat {
		if m.Kind == KindUnknown {
			return Unknown()
		}
		if slices.ContainsFunc(unique, m.Equal) {
			continue
		}
		unique = append(unique, m)
	}

	slices.SortStableFunc(unique, compareTy)

	switch len(unique) {
	case 0:
		return Unknown()
	case 1:
		return unique[0]
	default:
		return Ty{Kind: KindUnion, Members: unique}
	}
}

func appendFlattened(out []Ty, t Ty) []Ty {
	switch t.Kind {
	case KindNone:
		return out
	case KindUnion:
		for _, m := range t.Members {
			out = appendFlattened(out, m)
		}
		return out
	default:
		return append(out, t)
	}
}

func compareTy(a, b Ty) int {
	ra, rb := sortRank(a.Kind), sortRank(b.Kind)
	if ra != rb {
		return int(ra) - int(rb)
	}
	return strings.Compare(Label(a), Label(b))
}

// sortRank orders scalar kinds first, then lists, then generics.
func sortRank(k Kind) uint8 {
	switch k {
	case KindNull:
		return 0
	case KindBoolean:
		return 1
	case KindNumber:
		return 2
	case KindString:
		return 3
	case KindDate:
		return 4
	case KindList:
		return 5
	case KindGeneric:
		return 6
	case KindUnion:
		return 7
	default:
		return 8
	}
}
