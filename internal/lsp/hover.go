package lsp

import (
	"encoding/json"
	"fmt"
	"strings"

	"formula/internal/ast"
	"formula/internal/driver"
	"formula/internal/types"
)

func (s *Server) handleHover(msg *rpcMessage) error {
	var params textDocumentPositionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, codeInvalidParams, "invalid params")
	}
	text, _, ok := s.snapshot(params.TextDocument.URI)
	if !ok {
		return s.sendResponse(msg.ID, nil)
	}
	a, err := s.analyze(s.baseCtx, params.TextDocument.URI, text)
	if err != nil {
		return err
	}
	h := a.hover(s, offsetAt(a.file, params.Position))
	if h == nil {
		return s.sendResponse(msg.ID, nil)
	}
	return s.sendResponse(msg.ID, h)
}

// hover describes the innermost expression under offset: its source text
// and inferred type, plus the catalog entry when it is a call.
func (a *analysis) hover(s *Server, offset uint32) *hover {
	r := a.resultAt(offset)
	if r == nil || !r.Parsed {
		return nil
	}
	id := innermostAt(r, offset)
	if !id.IsValid() {
		return nil
	}
	expr := r.Exprs.Get(id)
	var sb strings.Builder
	fmt.Fprintf(&sb, "```formula\n%s : %s\n```", a.fs.Slice(expr.Span), types.Label(r.Types.Get(id)))

	callee := ""
	if c, ok := r.Exprs.Call(id); ok {
		callee = c.Callee
	} else if m, ok := r.Exprs.MemberCall(id); ok {
		callee = m.Method
	}
	if sig, ok := s.catalog.Lookup(callee); ok && callee != "" {
		fmt.Fprintf(&sb, "\n\n%s · %s -> %s", sig.Category, sig.Detail, types.Label(sig.Ret))
	}
	rng := rangeForSpan(a.file, expr.Span)
	return &hover{Contents: markupContent{Kind: "markdown", Value: sb.String()}, Range: &rng}
}

// innermostAt finds the smallest expression whose span contains offset.
func innermostAt(r *driver.Result, offset uint32) ast.ExprID {
	best := ast.NoExprID
	r.Exprs.Walk(r.Root, func(id ast.ExprID, e *ast.Expr) bool {
		if offset < e.Span.Start || offset > e.Span.End {
			return false
		}
		best = id
		return true
	})
	return best
}
