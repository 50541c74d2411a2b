// Package ast is the expression tree the formula parser produces and the
// analyzers consume. Nodes live in per-kind arenas owned by Exprs and are
// addressed by ExprID.
package ast

import (
	"fmt"

	"formula/internal/source"
	"formula/internal/types"
)

// ExprID addresses one expression inside an Exprs.
type ExprID uint32

// NoExprID is the zero id; it never refers to a node.
const NoExprID ExprID = 0

func (id ExprID) IsValid() bool { return id != NoExprID }

// PayloadID indexes the kind-specific arena of a node.
type PayloadID uint32

// ExprKind enumerates the different kinds of expressions.
type ExprKind uint8

const (
	ExprIdent ExprKind = iota
	ExprLit
	ExprGroup
	ExprList
	ExprUnary
	ExprBinary
	ExprTernary
	// ExprCall is a direct call: name(args...).
	ExprCall
	// ExprMemberCall is postfix sugar: receiver.name(args...).
	ExprMemberCall
	// ExprTyped stands in for a sub-expression whose type is already known.
	ExprTyped
	// ExprError marks a region the parser could not make sense of.
	ExprError
)

var exprKindNames = [...]string{
	ExprIdent:      "ident",
	ExprLit:        "lit",
	ExprGroup:      "group",
	ExprList:       "list",
	ExprUnary:      "unary",
	ExprBinary:     "binary",
	ExprTernary:    "ternary",
	ExprCall:       "call",
	ExprMemberCall: "member-call",
	ExprTyped:      "typed",
	ExprError:      "error",
}

func (k ExprKind) String() string {
	if int(k) < len(exprKindNames) {
		return exprKindNames[k]
	}
	return fmt.Sprintf("ExprKind(%d)", k)
}

// Expr is the common header of every node.
type Expr struct {
	Kind    ExprKind
	Span    source.Span
	Payload PayloadID
}

// ExprLitKind enumerates literal kinds.
type ExprLitKind uint8

const (
	LitNumber ExprLitKind = iota
	LitString
	LitBool
)

// ExprUnaryOp enumerates prefix operators.
type ExprUnaryOp uint8

const (
	// ExprUnaryNot is logical negation (!).
	ExprUnaryNot ExprUnaryOp = iota
	// ExprUnaryNeg is arithmetic negation (-).
	ExprUnaryNeg
)

func (op ExprUnaryOp) String() string {
	switch op {
	case ExprUnaryNot:
		return "!"
	case ExprUnaryNeg:
		return "-"
	default:
		return fmt.Sprintf("ExprUnaryOp(%d)", op)
	}
}

// ExprBinaryOp enumerates infix operators.
type ExprBinaryOp uint8

const (
	ExprBinaryAdd ExprBinaryOp = iota
	ExprBinarySub
	ExprBinaryMul
	ExprBinaryDiv
	ExprBinaryMod
	// ExprBinaryPow is exponentiation (^).
	ExprBinaryPow

	ExprBinaryLogicalAnd
	ExprBinaryLogicalOr

	ExprBinaryEq
	ExprBinaryNotEq
	ExprBinaryLess
	ExprBinaryLessEq
	ExprBinaryGreater
	ExprBinaryGreaterEq
)

var binaryOpSymbols = [...]string{
	ExprBinaryAdd:        "+",
	ExprBinarySub:        "-",
	ExprBinaryMul:        "*",
	ExprBinaryDiv:        "/",
	ExprBinaryMod:        "%",
	ExprBinaryPow:        "^",
	ExprBinaryLogicalAnd: "&&",
	ExprBinaryLogicalOr:  "||",
	ExprBinaryEq:         "==",
	ExprBinaryNotEq:      "!=",
	ExprBinaryLess:       "<",
	ExprBinaryLessEq:     "<=",
	ExprBinaryGreater:    ">",
	ExprBinaryGreaterEq:  ">=",
}

func (op ExprBinaryOp) String() string {
	if int(op) < len(binaryOpSymbols) {
		return binaryOpSymbols[op]
	}
	return fmt.Sprintf("ExprBinaryOp(%d)", op)
}

// IsArithmetic reports + - * / % ^.
func (op ExprBinaryOp) IsArithmetic() bool { return op <= ExprBinaryPow }

// IsLogical reports && and ||.
func (op ExprBinaryOp) IsLogical() bool {
	return op == ExprBinaryLogicalAnd || op == ExprBinaryLogicalOr
}

// IsEquality reports == and !=.
func (op ExprBinaryOp) IsEquality() bool { return op == ExprBinaryEq || op == ExprBinaryNotEq }

// IsOrdering reports < <= > >=.
func (op ExprBinaryOp) IsOrdering() bool {
	return op >= ExprBinaryLess && op <= ExprBinaryGreaterEq
}

type ExprIdentData struct {
	Name string
}

type ExprLiteralData struct {
	Kind ExprLitKind
	// Value is the literal text with string quotes removed.
	Value string
}

type ExprGroupData struct {
	Inner ExprID
}

type ExprListData struct {
	Items []ExprID
}

type ExprUnaryData struct {
	Op      ExprUnaryOp
	Operand ExprID
}

type ExprBinaryData struct {
	Op    ExprBinaryOp
	Left  ExprID
	Right ExprID
}

type ExprTernaryData struct {
	Cond ExprID
	Then ExprID
	Else ExprID
}

// ExprCallData is name(args...).
type ExprCallData struct {
	Callee     string
	CalleeSpan source.Span
	Args       []ExprID
}

// ExprMemberCallData is receiver.method(args...).
type ExprMemberCallData struct {
	Receiver   ExprID
	Method     string
	MethodSpan source.Span
	Args       []ExprID
}

type ExprTypedData struct {
	Ty types.Ty
}
