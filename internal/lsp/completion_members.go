package lsp

import (
	"formula/internal/driver"
	"formula/internal/sighelp"
	"formula/internal/source"
	"formula/internal/types"
)

// memberCompletions lists the postfix-capable functions whose first
// parameter accepts the receiver. insertDot is set when the cursor follows
// the receiver without a dot yet.
func (s *Server) memberCompletions(receiver string, insertDot bool) []completionItem {
	recvTy := s.receiverType(receiver)
	var items []completionItem
	for _, name := range s.catalog.PostfixNames() {
		sig, ok := s.catalog.Lookup(name)
		if !ok {
			continue
		}
		params := sig.DisplayParams()
		if len(params) == 0 || !types.Accepts(params[0].Ty, recvTy) {
			continue
		}
		detail := sig.Detail
		if h, err := sighelp.Lookup(s.catalog, name, sighelp.Request{Receiver: recvTy, Postfix: true}); err == nil {
			detail = h.Label
		}
		insert := name + "()"
		if insertDot {
			insert = "." + insert
		}
		items = append(items, completionItem{
			Label:      name,
			Kind:       completionItemKindMethod,
			Detail:     detail,
			InsertText: insert,
			SortText:   "1_" + name,
		})
	}
	return items
}

// receiverType infers the receiver descriptor; Unknown when it does not parse.
func (s *Server) receiverType(receiver string) types.Ty {
	fs := source.NewFileSet()
	id := fs.AddVirtual("receiver", []byte(receiver))
	ty, _ := driver.InferType(s.baseCtx, fs, source.SpanOf(id, 0, len(receiver)), s.catalog)
	return ty
}
