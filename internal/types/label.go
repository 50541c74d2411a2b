package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Label renders t the way editors display it: `number`, `T0`, `number[]`,
// `(number | string)[]`, `number | string`. The absent type renders as `_`.
func Label(t Ty) string {
	var sb strings.Builder
	writeLabel(&sb, t)
	return sb.String()
}

func writeLabel(sb *strings.Builder, t Ty) {
	switch t.Kind {
	case KindNone:
		sb.WriteString("_")
	case KindGeneric:
		sb.WriteString("T")
		sb.WriteString(strconv.FormatUint(uint64(t.Generic), 10))
	case KindList:
		elem := t.ElemType()
		if elem.Kind == KindUnion {
			sb.WriteByte('(')
			writeLabel(sb, elem)
			sb.WriteByte(')')
		} else {
			writeLabel(sb, elem)
		}
		sb.WriteString("[]")
	case KindUnion:
		for i, m := range t.Members {
			if i > 0 {
				sb.WriteString(" | ")
			}
			writeLabel(sb, m)
		}
	default:
		sb.WriteString(t.Kind.String())
	}
}

// ParseLabel parses the label syntax produced by Label. Unions are normalized.
func ParseLabel(s string) (Ty, error) {
	p := labelParser{src: s}
	t, err := p.parseUnion()
	if err != nil {
		return None, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return None, fmt.Errorf("type %q: unexpected %q at offset %d", s, p.src[p.pos:], p.pos)
	}
	return t, nil
}

type labelParser struct {
	src string
	pos int
}

func (p *labelParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *labelParser) eat(c byte) bool {
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *labelParser) parseUnion() (Ty, error) {
	first, err := p.parseMember()
	if err != nil {
		return None, err
	}
	members := []Ty{first}
	for p.eat('|') {
		next, err := p.parseMember()
		if err != nil {
			return None, err
		}
		members = append(members, next)
	}
	if len(members) == 1 {
		return first, nil
	}
	return NormalizeUnion(members), nil
}

func (p *labelParser) parseMember() (Ty, error) {
	t, err := p.parseAtom()
	if err != nil {
		return None, err
	}
	for {
		p.skipSpace()
		if !strings.HasPrefix(p.src[p.pos:], "[]") {
			return t, nil
		}
		p.pos += 2
		t = List(t)
	}
}

func (p *labelParser) parseAtom() (Ty, error) {
	if p.eat('(') {
		inner, err := p.parseUnion()
		if err != nil {
			return None, err
		}
		if !p.eat(')') {
			return None, fmt.Errorf("type %q: missing ')' at offset %d", p.src, p.pos)
		}
		return inner, nil
	}
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && isLabelChar(p.src[p.pos]) {
		p.pos++
	}
	word := p.src[start:p.pos]
	switch word {
	case "":
		return None, fmt.Errorf("type %q: expected a type at offset %d", p.src, start)
	case "number":
		return Number(), nil
	case "string":
		return String(), nil
	case "boolean":
		return Boolean(), nil
	case "date":
		return Date(), nil
	case "null":
		return Null(), nil
	case "unknown":
		return Unknown(), nil
	case "_":
		return None, nil
	}
	if len(word) > 1 && word[0] == 'T' {
		id, err := strconv.ParseUint(word[1:], 10, 32)
		if err == nil {
			return Generic(GenericID(id)), nil
		}
	}
	return None, fmt.Errorf("type %q: unknown type name %q", p.src, word)
}

func isLabelChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
