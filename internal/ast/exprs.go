package ast

import (
	"slices"

	"formula/internal/source"
	"formula/internal/types"
)

// Exprs manages allocation of expressions.
type Exprs struct {
	Arena       *Arena[Expr]
	Idents      *Arena[ExprIdentData]
	Literals    *Arena[ExprLiteralData]
	Groups      *Arena[ExprGroupData]
	Lists       *Arena[ExprListData]
	Unaries     *Arena[ExprUnaryData]
	Binaries    *Arena[ExprBinaryData]
	Ternaries   *Arena[ExprTernaryData]
	Calls       *Arena[ExprCallData]
	MemberCalls *Arena[ExprMemberCallData]
	Typed       *Arena[ExprTypedData]
}

// NewExprs creates a new Exprs with per-kind arenas preallocated using capHint.
// If capHint is 0, a default capacity of 1<<6 is used.
func NewExprs(capHint uint) *Exprs {
	if capHint == 0 {
		capHint = 1 << 6
	}
	return &Exprs{
		Arena:       NewArena[Expr](capHint),
		Idents:      NewArena[ExprIdentData](capHint),
		Literals:    NewArena[ExprLiteralData](capHint),
		Groups:      NewArena[ExprGroupData](capHint),
		Lists:       NewArena[ExprListData](capHint),
		Unaries:     NewArena[ExprUnaryData](capHint),
		Binaries:    NewArena[ExprBinaryData](capHint),
		Ternaries:   NewArena[ExprTernaryData](capHint),
		Calls:       NewArena[ExprCallData](capHint),
		MemberCalls: NewArena[ExprMemberCallData](capHint),
		Typed:       NewArena[ExprTypedData](capHint),
	}
}

func (e *Exprs) new(kind ExprKind, span source.Span, payload PayloadID) ExprID {
	return ExprID(e.Arena.Allocate(Expr{
		Kind:    kind,
		Span:    span,
		Payload: payload,
	}))
}

// Get returns the expression with the given ID.
func (e *Exprs) Get(id ExprID) *Expr {
	return e.Arena.Get(uint32(id))
}

// Len returns the number of allocated expressions.
func (e *Exprs) Len() uint32 { return e.Arena.Len() }

func (e *Exprs) payload(id ExprID, kind ExprKind) (uint32, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != kind {
		return 0, false
	}
	return uint32(expr.Payload), true
}

// NewIdent creates a new identifier expression.
func (e *Exprs) NewIdent(span source.Span, name string) ExprID {
	payload := e.Idents.Allocate(ExprIdentData{Name: name})
	return e.new(ExprIdent, span, PayloadID(payload))
}

// Ident returns the identifier data for the given expression ID.
func (e *Exprs) Ident(id ExprID) (*ExprIdentData, bool) {
	p, ok := e.payload(id, ExprIdent)
	if !ok {
		return nil, false
	}
	return e.Idents.Get(p), true
}

// NewLiteral creates a new literal expression.
func (e *Exprs) NewLiteral(span source.Span, kind ExprLitKind, value string) ExprID {
	payload := e.Literals.Allocate(ExprLiteralData{Kind: kind, Value: value})
	return e.new(ExprLit, span, PayloadID(payload))
}

// Literal returns the literal data for the given expression ID.
func (e *Exprs) Literal(id ExprID) (*ExprLiteralData, bool) {
	p, ok := e.payload(id, ExprLit)
	if !ok {
		return nil, false
	}
	return e.Literals.Get(p), true
}

func (e *Exprs) NewGroup(span source.Span, inner ExprID) ExprID {
	payload := e.Groups.Allocate(ExprGroupData{Inner: inner})
	return e.new(ExprGroup, span, PayloadID(payload))
}

func (e *Exprs) Group(id ExprID) (*ExprGroupData, bool) {
	p, ok := e.payload(id, ExprGroup)
	if !ok {
		return nil, false
	}
	return e.Groups.Get(p), true
}

// NewList creates a list literal [a, b, ...].
func (e *Exprs) NewList(span source.Span, items []ExprID) ExprID {
	payload := e.Lists.Allocate(ExprListData{Items: slices.Clone(items)})
	return e.new(ExprList, span, PayloadID(payload))
}

func (e *Exprs) List(id ExprID) (*ExprListData, bool) {
	p, ok := e.payload(id, ExprList)
	if !ok {
		return nil, false
	}
	return e.Lists.Get(p), true
}

// NewUnary creates a new unary expression.
func (e *Exprs) NewUnary(span source.Span, op ExprUnaryOp, operand ExprID) ExprID {
	payload := e.Unaries.Allocate(ExprUnaryData{Op: op, Operand: operand})
	return e.new(ExprUnary, span, PayloadID(payload))
}

// Unary returns the unary data for the given expression ID.
func (e *Exprs) Unary(id ExprID) (*ExprUnaryData, bool) {
	p, ok := e.payload(id, ExprUnary)
	if !ok {
		return nil, false
	}
	return e.Unaries.Get(p), true
}

// NewBinary creates a new binary expression.
func (e *Exprs) NewBinary(span source.Span, op ExprBinaryOp, left, right ExprID) ExprID {
	payload := e.Binaries.Allocate(ExprBinaryData{Op: op, Left: left, Right: right})
	return e.new(ExprBinary, span, PayloadID(payload))
}

// Binary returns the binary data for the given expression ID.
func (e *Exprs) Binary(id ExprID) (*ExprBinaryData, bool) {
	p, ok := e.payload(id, ExprBinary)
	if !ok {
		return nil, false
	}
	return e.Binaries.Get(p), true
}

func (e *Exprs) NewTernary(span source.Span, cond, then, els ExprID) ExprID {
	payload := e.Ternaries.Allocate(ExprTernaryData{Cond: cond, Then: then, Else: els})
	return e.new(ExprTernary, span, PayloadID(payload))
}

func (e *Exprs) Ternary(id ExprID) (*ExprTernaryData, bool) {
	p, ok := e.payload(id, ExprTernary)
	if !ok {
		return nil, false
	}
	return e.Ternaries.Get(p), true
}

// NewCall creates a new function call expression.
func (e *Exprs) NewCall(span source.Span, callee string, calleeSpan source.Span, args []ExprID) ExprID {
	payload := e.Calls.Allocate(ExprCallData{
		Callee:     callee,
		CalleeSpan: calleeSpan,
		Args:       slices.Clone(args),
	})
	return e.new(ExprCall, span, PayloadID(payload))
}

// Call returns the call data for the given expression ID.
func (e *Exprs) Call(id ExprID) (*ExprCallData, bool) {
	p, ok := e.payload(id, ExprCall)
	if !ok {
		return nil, false
	}
	return e.Calls.Get(p), true
}

// NewMemberCall creates receiver.method(args...).
func (e *Exprs) NewMemberCall(span source.Span, receiver ExprID, method string, methodSpan source.Span, args []ExprID) ExprID {
	payload := e.MemberCalls.Allocate(ExprMemberCallData{
		Receiver:   receiver,
		Method:     method,
		MethodSpan: methodSpan,
		Args:       slices.Clone(args),
	})
	return e.new(ExprMemberCall, span, PayloadID(payload))
}

func (e *Exprs) MemberCall(id ExprID) (*ExprMemberCallData, bool) {
	p, ok := e.payload(id, ExprMemberCall)
	if !ok {
		return nil, false
	}
	return e.MemberCalls.Get(p), true
}

// NewTyped creates a placeholder whose type is ty.
func (e *Exprs) NewTyped(span source.Span, ty types.Ty) ExprID {
	payload := e.Typed.Allocate(ExprTypedData{Ty: ty})
	return e.new(ExprTyped, span, PayloadID(payload))
}

func (e *Exprs) TypedData(id ExprID) (*ExprTypedData, bool) {
	p, ok := e.payload(id, ExprTyped)
	if !ok {
		return nil, false
	}
	return e.Typed.Get(p), true
}

// NewError records an unparseable region.
func (e *Exprs) NewError(span source.Span) ExprID {
	return e.new(ExprError, span, 0)
}

// Children returns the direct sub-expressions of id in source order. For a
// member call the receiver comes first.
func (e *Exprs) Children(id ExprID) []ExprID {
	expr := e.Get(id)
	if expr == nil {
		return nil
	}
	switch expr.Kind {
	case ExprGroup:
		g, _ := e.Group(id)
		return []ExprID{g.Inner}
	case ExprList:
		l, _ := e.List(id)
		return slices.Clone(l.Items)
	case ExprUnary:
		u, _ := e.Unary(id)
		return []ExprID{u.Operand}
	case ExprBinary:
		b, _ := e.Binary(id)
		return []ExprID{b.Left, b.Right}
	case ExprTernary:
		t, _ := e.Ternary(id)
		return []ExprID{t.Cond, t.Then, t.Else}
	case ExprCall:
		c, _ := e.Call(id)
		return slices.Clone(c.Args)
	case ExprMemberCall:
		m, _ := e.MemberCall(id)
		return append([]ExprID{m.Receiver}, m.Args...)
	default:
		return nil
	}
}

// Walk visits id and its descendants depth-first, parents before children.
// Returning false from visit skips the node's children.
func (e *Exprs) Walk(id ExprID, visit func(ExprID, *Expr) bool) {
	expr := e.Get(id)
	if expr == nil {
		return
	}
	if !visit(id, expr) {
		return
	}
	for _, child := range e.Children(id) {
		e.Walk(child, visit)
	}
}
