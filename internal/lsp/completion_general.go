package lsp

import (
	"fmt"
	"strconv"

	"formula/internal/types"
)

// generalCompletions lists what may start an argument: the expected type
// when known, literals and type labels, page properties and functions.
func (s *Server) generalCompletions(expected types.Ty) []completionItem {
	var head []completionItem
	if !expected.IsNone() && !expected.IsUnknown() {
		label := types.Label(expected)
		head = append(head, completionItem{
			Label:      label,
			Kind:       completionItemKindTypeParam,
			Detail:     "expected argument type",
			InsertText: label,
			SortText:   "0_" + label,
		})
	}
	items := mergeCompletionItems(head, literalCompletions())
	items = append(items, s.propertyCompletions()...)
	return append(items, s.functionCompletions()...)
}

var typeLabels = []string{"number", "string", "boolean", "date"}

func typeLabelCompletions() []completionItem {
	items := make([]completionItem, 0, len(typeLabels))
	for _, label := range typeLabels {
		items = append(items, completionItem{
			Label:    label,
			Kind:     completionItemKindTypeParam,
			Detail:   "type",
			SortText: "2_" + label,
		})
	}
	return items
}

func literalCompletions() []completionItem {
	items := []completionItem{
		{Label: "_", Kind: completionItemKindKeyword, Detail: "argument not typed yet", SortText: "2__"},
		{Label: "true", Kind: completionItemKindKeyword, Detail: "boolean", SortText: "2_true"},
		{Label: "false", Kind: completionItemKindKeyword, Detail: "boolean", SortText: "2_false"},
	}
	return append(items, typeLabelCompletions()...)
}

// propertyCompletions inserts prop("Name"); disabled properties are listed
// after the usable ones and tagged deprecated.
func (s *Server) propertyCompletions() []completionItem {
	props := s.catalog.Properties()
	enabled := make([]completionItem, 0, len(props))
	var disabled []completionItem
	for _, p := range props {
		item := completionItem{
			Label:      p.Name,
			Kind:       completionItemKindProperty,
			Detail:     types.Label(p.Ty),
			InsertText: "prop(" + strconv.Quote(p.Name) + ")",
			SortText:   "1_" + p.Name,
		}
		if p.DisabledReason != "" {
			item.Detail = "disabled: " + p.DisabledReason
			item.Tags = []int{completionItemTagDeprecated}
			item.SortText = "4_" + p.Name
			disabled = append(disabled, item)
			continue
		}
		enabled = append(enabled, item)
	}
	return append(enabled, disabled...)
}

func (s *Server) functionCompletions() []completionItem {
	funcs := s.catalog.Functions()
	items := make([]completionItem, 0, len(funcs))
	for i, sig := range funcs {
		items = append(items, completionItem{
			Label:      sig.Name,
			Kind:       completionItemKindFunction,
			Detail:     fmt.Sprintf("%s · %s -> %s", sig.Category, sig.Detail, types.Label(sig.Ret)),
			InsertText: sig.Name + "()",
			SortText:   fmt.Sprintf("3_%04d", i),
		})
	}
	return items
}

func mergeCompletionItems(primary, secondary []completionItem) []completionItem {
	if len(primary) == 0 {
		return secondary
	}
	if len(secondary) == 0 {
		return primary
	}
	seen := make(map[string]struct{}, len(primary))
	out := make([]completionItem, 0, len(primary)+len(secondary))
	for _, item := range primary {
		out = append(out, item)
		seen[item.Label] = struct{}{}
	}
	for _, item := range secondary {
		if _, ok := seen[item.Label]; ok {
			continue
		}
		out = append(out, item)
	}
	return out
}
