// Package sema infers the type of every node of a formula expression and
// reports semantic errors: unknown functions and properties, arity and
// argument shape, and argument type mismatches.
package sema

import (
	"formula/internal/ast"
	"formula/internal/catalog"
	"formula/internal/diag"
	"formula/internal/types"
)

// Options configure a semantic pass over one expression.
type Options struct {
	Reporter diag.Reporter
	// Catalog supplies functions and properties; nil means the builtins.
	Catalog *catalog.Catalog
}

// TypeMap records the inferred type of each visited node.
type TypeMap map[ast.ExprID]types.Ty

// Get returns the type of id, or Unknown when the node was never typed.
func (m TypeMap) Get(id ast.ExprID) types.Ty {
	if t, ok := m[id]; ok {
		return t
	}
	return types.Unknown()
}

// Result stores semantic artefacts produced by the checker.
type Result struct {
	Root      types.Ty
	ExprTypes TypeMap
}

// Check infers types for the tree rooted at root, then validates it.
// Inference runs to completion first so that validation sees final types.
func Check(exprs *ast.Exprs, root ast.ExprID, opts Options) Result {
	res := Result{
		Root:      types.Unknown(),
		ExprTypes: make(TypeMap),
	}
	if exprs == nil || !root.IsValid() {
		return res
	}
	cat := opts.Catalog
	if cat == nil {
		cat = catalog.MustDefault()
	}
	res.Root = Infer(exprs, root, cat, res.ExprTypes)
	if opts.Reporter != nil {
		Validate(exprs, root, cat, res.ExprTypes, opts.Reporter)
	}
	return res
}
