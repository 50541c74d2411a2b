package sema

import (
	"fmt"

	"formula/internal/ast"
	"formula/internal/callsig"
	"formula/internal/catalog"
	"formula/internal/diag"
	"formula/internal/signature"
	"formula/internal/source"
	"formula/internal/types"
)

// Validate reports semantic errors for the tree rooted at root. tm must hold
// the types computed by Infer for the same tree.
//
// A call with a bad argument count gets exactly one diagnostic and no
// per-argument type checks.
func Validate(exprs *ast.Exprs, root ast.ExprID, cat *catalog.Catalog, tm TypeMap, r diag.Reporter) {
	v := validator{exprs: exprs, cat: cat, types: tm, reporter: r}
	v.expr(root)
}

type validator struct {
	exprs    *ast.Exprs
	cat      *catalog.Catalog
	types    TypeMap
	reporter diag.Reporter
}

func (v *validator) errorf(code diag.Code, span source.Span, format string, args ...any) {
	diag.ReportError(v.reporter, code, span, fmt.Sprintf(format, args...)).Emit()
}

func (v *validator) expr(id ast.ExprID) {
	expr := v.exprs.Get(id)
	if expr == nil {
		return
	}
	switch expr.Kind {
	case ast.ExprCall:
		c, _ := v.exprs.Call(id)
		for _, arg := range c.Args {
			v.expr(arg)
		}
		if c.Callee == propFunc {
			v.prop(expr.Span, c.Args)
			return
		}
		sig, ok := v.cat.Lookup(c.Callee)
		if !ok {
			v.errorf(diag.SemaUnknownFunction, expr.Span, "unknown function: %s", c.Callee)
			return
		}
		v.call(expr.Span, sig, c.Args)
	case ast.ExprMemberCall:
		m, _ := v.exprs.MemberCall(id)
		v.expr(m.Receiver)
		for _, arg := range m.Args {
			v.expr(arg)
		}
		if sig, ok := postfixSig(v.cat, m.Method); ok {
			v.call(expr.Span, sig, postfixArgs(m))
		}
	default:
		for _, child := range v.exprs.Children(id) {
			v.expr(child)
		}
	}
}

func (v *validator) prop(span source.Span, args []ast.ExprID) {
	if len(args) != 1 {
		v.errorf(diag.SemaPropArity, span, "prop() expects exactly 1 argument")
		return
	}
	arg := v.exprs.Get(args[0])
	name, ok := propName(v.exprs, args)
	if !ok {
		v.errorf(diag.SemaPropNotLiteral, arg.Span, "prop() expects a string literal argument")
		return
	}
	p, found := v.cat.Property(name)
	switch {
	case !found:
		v.errorf(diag.SemaUnknownProperty, arg.Span, "Unknown property: %s", name)
	case p.DisabledReason != "":
		v.errorf(diag.SemaPropDisabled, arg.Span, "property %s is disabled: %s", name, p.DisabledReason)
	}
}

func (v *validator) call(span source.Span, sig *signature.FunctionSig, args []ast.ExprID) {
	if !callsig.ReportArity(v.reporter, span, sig, len(args)) {
		return
	}
	for idx, arg := range args {
		param, ok := callsig.ParamForArg(sig, idx, len(args))
		if !ok {
			continue
		}
		actual := v.types.Get(arg)
		if types.Accepts(param.Ty, actual) {
			continue
		}
		argSpan := v.exprs.Get(arg).Span
		if sig.Name == "sum" {
			v.errorf(diag.SemaTypeMismatch, argSpan, "sum() expects number arguments")
			continue
		}
		v.errorf(diag.SemaTypeMismatch, argSpan, "argument type mismatch: expected %s, got %s",
			types.Label(param.Ty), types.Label(actual))
	}
}
