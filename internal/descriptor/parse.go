// Package descriptor parses call descriptors, the compact call notation the
// command line accepts in place of full formula source:
//
//	ifs(boolean, number, boolean, number, string)
//	"abc".contains(string)
//	abs(toNumber(_))
//	prop("Title")
//
// An argument is a type label (`number`, `number[]`, `(number | string)[]`),
// `_` for an argument that has not been typed yet, a string, number or
// boolean literal, or a nested call. Any argument may be followed by
// `.fn(...)` to form a postfix call. Type labels become ast.ExprTyped nodes so
// sema infers them to exactly that type.
package descriptor

import (
	"fmt"
	"strings"

	"formula/internal/ast"
	"formula/internal/diag"
	"formula/internal/source"
	"formula/internal/types"
)

// Result is one parsed descriptor.
type Result struct {
	File  source.FileID
	Exprs *ast.Exprs
	Root  ast.ExprID
}

// Parse parses the descriptor stored in file. On a syntax error it reports
// exactly one diagnostic through r and returns ok=false.
func Parse(fs *source.FileSet, file source.FileID, r diag.Reporter) (Result, bool) {
	f := fs.Get(file)
	if f == nil {
		panic(fmt.Sprintf("descriptor: unknown file %d", file))
	}
	return parseCursor(f, newCursor(f), r)
}

// ParseSpan parses the descriptor covering sp, such as one line of a file
// holding many descriptors. Spans in the result stay file-relative.
func ParseSpan(fs *source.FileSet, sp source.Span, r diag.Reporter) (Result, bool) {
	f := fs.Get(sp.File)
	if f == nil {
		panic(fmt.Sprintf("descriptor: unknown file %d", sp.File))
	}
	c := newCursor(f)
	c.off, c.end = min(sp.Start, c.end), min(sp.End, c.end)
	return parseCursor(f, c, r)
}

func parseCursor(f *source.File, c cursor, r diag.Reporter) (Result, bool) {
	p := parser{c: c, exprs: ast.NewExprs(0), reporter: r}
	res := Result{File: f.ID, Exprs: p.exprs, Root: ast.NoExprID}

	p.c.skipSpace()
	if p.c.eof() {
		p.errorf(diag.SynUnexpectedToken, p.c.here(), "empty call descriptor")
		return res, false
	}
	root, ok := p.expr()
	if !ok {
		return res, false
	}
	p.c.skipSpace()
	if !p.c.eof() {
		m := p.c.mark()
		p.c.reset(mark(p.c.end))
		sp := p.c.spanFrom(m)
		p.errorf(diag.SynUnexpectedToken, sp, "unexpected %q after descriptor", p.c.text(m))
		return res, false
	}
	res.Root = root
	return res, true
}

// ParseString adds text to fs as a virtual file named name and parses it.
func ParseString(fs *source.FileSet, name, text string, r diag.Reporter) (Result, bool) {
	return Parse(fs, fs.AddVirtual(name, []byte(text)), r)
}

type parser struct {
	c        cursor
	exprs    *ast.Exprs
	reporter diag.Reporter
}

func (p *parser) errorf(code diag.Code, sp source.Span, format string, args ...any) {
	if p.reporter == nil {
		return
	}
	diag.ReportError(p.reporter, code, sp, fmt.Sprintf(format, args...)).Emit()
}

// expr parses an atom followed by any number of `.fn(args)` suffixes.
func (p *parser) expr() (ast.ExprID, bool) {
	start := p.c.mark()
	recv, ok := p.atom()
	if !ok {
		return ast.NoExprID, false
	}
	for {
		p.c.skipSpace()
		if !p.c.eat('.') {
			return recv, true
		}
		p.c.skipSpace()
		nameStart := p.c.mark()
		name := p.ident()
		if name == "" {
			p.errorf(diag.SynUnexpectedToken, p.c.here(), "expected function name after '.'")
			return ast.NoExprID, false
		}
		nameSpan := p.c.spanFrom(nameStart)
		p.c.skipSpace()
		if !p.c.eat('(') {
			p.errorf(diag.SynUnexpectedToken, p.c.here(), "expected '(' after %s", name)
			return ast.NoExprID, false
		}
		args, ok := p.args(nameSpan)
		if !ok {
			return ast.NoExprID, false
		}
		recv = p.exprs.NewMemberCall(p.c.spanFrom(start), recv, name, nameSpan, args)
	}
}

func (p *parser) atom() (ast.ExprID, bool) {
	p.c.skipSpace()
	start := p.c.mark()
	switch b := p.c.peek(); {
	case b == '"':
		return p.stringLit()
	case isDigit(b) || b == '-':
		return p.numberLit()
	case isIdentStart(b):
		name := p.ident()
		after := p.c.mark()
		p.c.skipSpace()
		if p.c.eat('(') {
			nameSpan := source.Span{File: p.c.file.ID, Start: uint32(start), End: uint32(after)}
			args, ok := p.args(nameSpan)
			if !ok {
				return ast.NoExprID, false
			}
			return p.exprs.NewCall(p.c.spanFrom(start), name, nameSpan, args), true
		}
		p.c.reset(after)
		switch name {
		case "_":
			return p.exprs.NewTyped(p.c.spanFrom(start), types.None), true
		case "true", "false":
			return p.exprs.NewLiteral(p.c.spanFrom(start), ast.LitBool, name), true
		}
		p.c.reset(start)
		return p.label()
	case b == '(':
		return p.label()
	case p.c.eof():
		p.errorf(diag.SynUnexpectedToken, p.c.here(), "unexpected end of descriptor")
	default:
		p.c.bump()
		p.errorf(diag.SynUnexpectedToken, p.c.spanFrom(start), "unexpected %q", string(b))
	}
	return ast.NoExprID, false
}

// args parses a comma separated argument list; the opening parenthesis has
// been consumed. An empty slot between commas is an error, `_` marks a
// missing argument.
func (p *parser) args(callee source.Span) ([]ast.ExprID, bool) {
	var args []ast.ExprID
	p.c.skipSpace()
	if p.c.eat(')') {
		return args, true
	}
	for {
		p.c.skipSpace()
		if b := p.c.peek(); b == ',' || b == ')' {
			p.errorf(diag.SynEmptyArgument, p.c.here(), "empty argument; use _ for an argument without a type")
			return nil, false
		}
		arg, ok := p.expr()
		if !ok {
			return nil, false
		}
		args = append(args, arg)
		p.c.skipSpace()
		if p.c.eat(',') {
			continue
		}
		if p.c.eat(')') {
			return args, true
		}
		if p.c.eof() {
			p.errorf(diag.SynUnclosedParen, callee, "unclosed argument list")
		} else {
			p.errorf(diag.SynUnexpectedToken, p.c.here(), "expected ',' or ')', found %q", string(p.c.peek()))
		}
		return nil, false
	}
}

// label consumes a type label up to the next top-level ',', ')' or '.'.
func (p *parser) label() (ast.ExprID, bool) {
	start := p.c.mark()
	depth := 0
scan:
	for !p.c.eof() {
		switch p.c.peek() {
		case '(':
			depth++
		case ')':
			if depth == 0 {
				break scan
			}
			depth--
		case ',', '.':
			if depth == 0 {
				break scan
			}
		}
		p.c.bump()
	}
	raw := p.c.text(start)
	trimmed := strings.TrimRight(raw, " \t\r\n")
	p.c.reset(start + mark(len(trimmed)))
	sp := p.c.spanFrom(start)
	ty, err := types.ParseLabel(trimmed)
	if err != nil {
		p.errorf(diag.SynInvalidType, sp, "invalid type label %q", trimmed)
		return ast.NoExprID, false
	}
	return p.exprs.NewTyped(sp, ty), true
}

func (p *parser) stringLit() (ast.ExprID, bool) {
	start := p.c.mark()
	p.c.bump()
	var sb strings.Builder
	for !p.c.eof() {
		b := p.c.bump()
		switch b {
		case '"':
			return p.exprs.NewLiteral(p.c.spanFrom(start), ast.LitString, sb.String()), true
		case '\\':
			if p.c.eof() {
				continue
			}
			sb.WriteByte(p.c.bump())
		default:
			sb.WriteByte(b)
		}
	}
	p.errorf(diag.SynUnexpectedToken, p.c.spanFrom(start), "unterminated string literal")
	return ast.NoExprID, false
}

func (p *parser) numberLit() (ast.ExprID, bool) {
	start := p.c.mark()
	p.c.eat('-')
	digits := 0
	for isDigit(p.c.peek()) || p.c.peek() == '.' && digits > 0 && isDigitAt(p.c, 1) {
		p.c.bump()
		digits++
	}
	if digits == 0 {
		p.errorf(diag.SynUnexpectedToken, p.c.spanFrom(start), "expected digits after '-'")
		return ast.NoExprID, false
	}
	sp := p.c.spanFrom(start)
	return p.exprs.NewLiteral(sp, ast.LitNumber, p.c.text(start)), true
}

func (p *parser) ident() string {
	start := p.c.mark()
	if !isIdentStart(p.c.peek()) {
		return ""
	}
	for isIdentStart(p.c.peek()) || isDigit(p.c.peek()) {
		p.c.bump()
	}
	return p.c.text(start)
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// isDigitAt peeks n bytes past the cursor.
func isDigitAt(c cursor, n uint32) bool {
	if c.off+n >= c.end {
		return false
	}
	return isDigit(c.file.Content[c.off+n])
}

func isIdentStart(b byte) bool {
	return b == '_' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}
