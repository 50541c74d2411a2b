package lsp

import (
	"encoding/json"

	"formula/internal/driver"
	"formula/internal/source"
	"formula/internal/types"
)

const (
	completionItemKindMethod    = 2
	completionItemKindFunction  = 3
	completionItemKindProperty  = 10
	completionItemKindKeyword   = 14
	completionItemKindTypeParam = 25

	completionItemTagDeprecated = 1
)

func (s *Server) handleCompletion(msg *rpcMessage) error {
	var params completionParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	text, _, ok := s.snapshot(params.TextDocument.URI)
	if !ok {
		return s.sendResponse(msg.ID, completionList{IsIncomplete: false, Items: []completionItem{}})
	}
	return s.sendResponse(msg.ID, s.buildCompletion(linePrefix(text, params.Position)))
}

// buildCompletion lists candidates for the cursor at the end of prefix, the
// line text left of it. Candidates keep catalog order; clients filter them.
func (s *Server) buildCompletion(prefix string) completionList {
	var items []completionItem
	switch ctx := completionTrigger(prefix); ctx.kind {
	case completeAfterDot:
		items = s.memberCompletions(ctx.receiver, false)
	case completeAfterAtom:
		items = s.memberCompletions(ctx.receiver, true)
	case completeTypeLabel:
		items = typeLabelCompletions()
	case completeExpr:
		expected, _ := s.expectedArgType(prefix)
		items = s.generalCompletions(expected)
	}
	if items == nil {
		items = []completionItem{}
	}
	return completionList{IsIncomplete: false, Items: items}
}

// expectedArgType is the type the argument under the cursor should have,
// taken from the innermost open call with that argument blanked out.
func (s *Server) expectedArgType(prefix string) (types.Ty, bool) {
	cc, ok := findOpenCall(prefix)
	if !ok {
		return types.None, false
	}
	text := cc.head + cc.committed + "_)"
	fs := source.NewFileSet()
	id := fs.AddVirtual("expected", []byte(text))
	return driver.ExpectedArgType(s.baseCtx, fs, source.SpanOf(id, 0, len(text)), s.catalog, cc.argIndex)
}
