package sema

import (
	"formula/internal/ast"
	"formula/internal/callsig"
	"formula/internal/catalog"
	"formula/internal/signature"
	"formula/internal/types"
)

// propFunc is the pseudo-function that reads a page property.
const propFunc = "prop"

// Infer computes the type of root and of every node below it, storing each
// into into. into must be non-nil.
func Infer(exprs *ast.Exprs, root ast.ExprID, cat *catalog.Catalog, into TypeMap) types.Ty {
	in := inferrer{exprs: exprs, cat: cat, types: into}
	return in.expr(root)
}

type inferrer struct {
	exprs *ast.Exprs
	cat   *catalog.Catalog
	types TypeMap
}

func (in *inferrer) expr(id ast.ExprID) types.Ty {
	ty := in.exprKind(id)
	in.types[id] = ty
	return ty
}

func (in *inferrer) exprKind(id ast.ExprID) types.Ty {
	expr := in.exprs.Get(id)
	if expr == nil {
		return types.Unknown()
	}
	switch expr.Kind {
	case ast.ExprLit:
		lit, _ := in.exprs.Literal(id)
		switch lit.Kind {
		case ast.LitNumber:
			return types.Number()
		case ast.LitString:
			return types.String()
		default:
			return types.Boolean()
		}
	case ast.ExprGroup:
		g, _ := in.exprs.Group(id)
		return in.expr(g.Inner)
	case ast.ExprList:
		l, _ := in.exprs.List(id)
		elems := make([]types.Ty, 0, len(l.Items))
		for _, item := range l.Items {
			elems = append(elems, in.expr(item))
		}
		return types.List(types.NormalizeUnion(elems))
	case ast.ExprUnary:
		return in.unary(id)
	case ast.ExprBinary:
		return in.binary(id)
	case ast.ExprTernary:
		t, _ := in.exprs.Ternary(id)
		in.expr(t.Cond)
		return join(in.expr(t.Then), in.expr(t.Else))
	case ast.ExprCall:
		c, _ := in.exprs.Call(id)
		if c.Callee == propFunc {
			return in.prop(c.Args)
		}
		sig, _ := in.cat.Lookup(c.Callee)
		return in.call(sig, c.Args)
	case ast.ExprMemberCall:
		return in.memberCall(id)
	case ast.ExprTyped:
		t, _ := in.exprs.TypedData(id)
		if t.Ty.IsNone() {
			return types.Unknown()
		}
		return t.Ty
	default:
		// identifiers and error nodes
		return types.Unknown()
	}
}

func (in *inferrer) unary(id ast.ExprID) types.Ty {
	u, _ := in.exprs.Unary(id)
	operand := in.expr(u.Operand)
	switch {
	case u.Op == ast.ExprUnaryNot && operand.Kind == types.KindBoolean:
		return types.Boolean()
	case u.Op == ast.ExprUnaryNeg && operand.Kind == types.KindNumber:
		return types.Number()
	default:
		return types.Unknown()
	}
}

func (in *inferrer) binary(id ast.ExprID) types.Ty {
	b, _ := in.exprs.Binary(id)
	left := in.expr(b.Left)
	right := in.expr(b.Right)
	switch {
	case b.Op.IsArithmetic():
		if left.Kind == types.KindNumber && right.Kind == types.KindNumber {
			return types.Number()
		}
	case b.Op.IsLogical():
		if left.Kind == types.KindBoolean && right.Kind == types.KindBoolean {
			return types.Boolean()
		}
	case b.Op.IsOrdering():
		if !left.IsUnknown() && !right.IsUnknown() {
			return types.Boolean()
		}
	case b.Op.IsEquality():
		if left.Equal(right) && !left.IsUnknown() {
			return types.Boolean()
		}
	}
	return types.Unknown()
}

func (in *inferrer) prop(args []ast.ExprID) types.Ty {
	for _, arg := range args {
		in.expr(arg)
	}
	name, ok := propName(in.exprs, args)
	if !ok {
		return types.Unknown()
	}
	p, found := in.cat.Property(name)
	if !found || p.DisabledReason != "" {
		return types.Unknown()
	}
	return p.Ty
}

// propName extracts the property name of prop("Name").
func propName(exprs *ast.Exprs, args []ast.ExprID) (string, bool) {
	if len(args) != 1 {
		return "", false
	}
	lit, ok := exprs.Literal(args[0])
	if !ok || lit.Kind != ast.LitString {
		return "", false
	}
	return lit.Value, true
}

func (in *inferrer) call(sig *signature.FunctionSig, args []ast.ExprID) types.Ty {
	argTys := make([]types.Ty, len(args))
	for i, arg := range args {
		argTys[i] = in.expr(arg)
	}
	if sig == nil {
		return types.Unknown()
	}
	return callsig.Instantiate(sig, argTys).Ret
}

func (in *inferrer) memberCall(id ast.ExprID) types.Ty {
	m, _ := in.exprs.MemberCall(id)
	sig, ok := postfixSig(in.cat, m.Method)
	if !ok {
		in.expr(m.Receiver)
		for _, arg := range m.Args {
			in.expr(arg)
		}
		return types.Unknown()
	}
	return in.call(sig, postfixArgs(m))
}

// postfixSig returns the signature receiver.method(...) desugars to. Only
// postfix-capable functions with a flat parameter list of two or more
// parameters qualify.
func postfixSig(cat *catalog.Catalog, method string) (*signature.FunctionSig, bool) {
	if !cat.IsPostfixCapable(method) {
		return nil, false
	}
	sig, ok := cat.Lookup(method)
	if !ok {
		return nil, false
	}
	flat, ok := sig.FlatParams()
	if !ok || len(flat) <= 1 {
		return nil, false
	}
	return sig, true
}

func postfixArgs(m *ast.ExprMemberCallData) []ast.ExprID {
	return append([]ast.ExprID{m.Receiver}, m.Args...)
}

// join is the type of a ternary: both branches must agree.
func join(a, b types.Ty) types.Ty {
	if a.IsUnknown() || b.IsUnknown() || !a.Equal(b) {
		return types.Unknown()
	}
	return a
}
