package lsp

import (
	"encoding/json"
	"strings"
	"unicode/utf16"

	"formula/internal/diag"
	"formula/internal/driver"
	"formula/internal/sighelp"
	"formula/internal/source"
)

func (s *Server) handleSignatureHelp(msg *rpcMessage) error {
	var params signatureHelpParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, codeInvalidParams, "invalid params")
	}
	text, _, ok := s.snapshot(params.TextDocument.URI)
	if !ok {
		return s.sendResponse(msg.ID, nil)
	}
	result := s.signatureHelpFor(linePrefix(text, params.Position))
	if result == nil {
		return s.sendResponse(msg.ID, nil)
	}
	return s.sendResponse(msg.ID, result)
}

// linePrefix returns the text of pos's line left of pos.
func linePrefix(text string, pos position) string {
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("doc", []byte(text)))
	lineStart, _ := lineBounds(f, pos.Line)
	return string(f.Content[lineStart:offsetAt(f, pos)])
}

// signatureHelpFor computes help for the innermost open call at the end of
// prefix, the line text left of the cursor.
func (s *Server) signatureHelpFor(prefix string) *signatureHelp {
	cc, ok := findOpenCall(prefix)
	if !ok {
		return nil
	}
	for _, text := range cc.candidates() {
		fs := source.NewFileSet()
		id := fs.AddVirtual("signature", []byte(text))
		bag := diag.NewBag(1)
		h, err := driver.SignatureHelp(s.baseCtx, fs, source.SpanOf(id, 0, len(text)), s.catalog, cc.argIndex, bag)
		if err != nil {
			return nil
		}
		if h != nil {
			return toLSPSignatureHelp(h)
		}
	}
	return nil
}

// openCall is the call the cursor is inside.
type openCall struct {
	head      string // from the call expression start through '('
	committed string // completed arguments, each followed by ','
	current   string // the argument being typed
	argIndex  int
	closers   string // closes strings and label groups left open in current
}

// candidates lists descriptors to try: the current argument as typed, then
// with the current argument blanked out.
func (c openCall) candidates() []string {
	var out []string
	cur := strings.TrimSpace(c.current)
	if cur != "" {
		out = append(out, c.head+c.committed+c.current+c.closers+")")
	}
	switch {
	case c.argIndex == 0 && cur == "":
		out = append(out, c.head+")")
	default:
		out = append(out, c.head+c.committed+"_)")
	}
	return out
}

type frame struct {
	paren  int
	commas []int
}

func findOpenCall(prefix string) (openCall, bool) {
	var stack []frame
	inString := false
	for i := 0; i < len(prefix); i++ {
		c := prefix[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '(':
			stack = append(stack, frame{paren: i})
		case ')':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case ',':
			if len(stack) > 0 {
				top := &stack[len(stack)-1]
				top.commas = append(top.commas, i)
			}
		}
	}

	// the innermost open paren preceded by a name is the call; bare parens
	// belong to type labels such as (number | string)[]
	for k := len(stack) - 1; k >= 0; k-- {
		fr := stack[k]
		nameStart := identBefore(prefix, fr.paren)
		if nameStart == fr.paren {
			continue
		}
		start := exprStart(prefix, nameStart)
		argsStart := fr.paren + 1
		if n := len(fr.commas); n > 0 {
			argsStart = fr.commas[n-1] + 1
		}
		cc := openCall{
			head:      prefix[start : fr.paren+1],
			committed: prefix[fr.paren+1 : argsStart],
			current:   prefix[argsStart:],
			argIndex:  len(fr.commas),
		}
		if inString {
			cc.closers += `"`
		}
		cc.closers += strings.Repeat(")", len(stack)-1-k)
		return cc, true
	}
	return openCall{}, false
}

func isIdentByte(b byte) bool {
	return b == '_' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

// identBefore returns the start of the identifier ending at end, skipping
// spaces between it and end. It returns end when there is none.
func identBefore(s string, end int) int {
	i := end
	for i > 0 && s[i-1] == ' ' {
		i--
	}
	j := i
	for j > 0 && isIdentByte(s[j-1]) {
		j--
	}
	if j == i {
		return end
	}
	return j
}

// exprStart extends a call name backwards over a postfix receiver chain, so
// `"abc".contains(` starts at the string literal.
func exprStart(s string, nameStart int) int {
	start := nameStart
	for {
		i := start
		for i > 0 && s[i-1] == ' ' {
			i--
		}
		if i == 0 || s[i-1] != '.' {
			return start
		}
		i--
		for i > 0 && s[i-1] == ' ' {
			i--
		}
		atom := atomStart(s, i)
		if atom == i {
			return start
		}
		start = atom
	}
}

// atomStart finds where the receiver ending at end begins.
func atomStart(s string, end int) int {
	if end == 0 {
		return end
	}
	switch s[end-1] {
	case ')':
		depth := 0
		for i := end - 1; i >= 0; i-- {
			switch s[i] {
			case ')':
				depth++
			case '(':
				depth--
				if depth == 0 {
					return identBefore(s, i)
				}
			}
		}
		return end
	case '"':
		for i := end - 2; i >= 0; i-- {
			if s[i] == '"' && (i == 0 || s[i-1] != '\\') {
				return i
			}
		}
		return end
	}
	i := end
	for i > 0 && (isIdentByte(s[i-1]) || s[i-1] == '[' || s[i-1] == ']') {
		i--
	}
	return i
}

func toLSPSignatureHelp(h *sighelp.Help) *signatureHelp {
	info := signatureInformation{Label: h.Label}
	units := 0
	for _, seg := range h.Segments {
		text := seg.String()
		n := len(utf16.Encode([]rune(text)))
		if seg.Kind == sighelp.SegParam && seg.ParamIndex != nil {
			info.Parameters = append(info.Parameters, parameterInformation{Label: [2]int{units, units + n}})
		}
		units += n
	}
	return &signatureHelp{
		Signatures:      []signatureInformation{info},
		ActiveSignature: 0,
		ActiveParameter: h.ActiveParameter,
	}
}
