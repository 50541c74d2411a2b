package lsp

import "strings"

type completionPosition int

const (
	completeNone completionPosition = iota
	// completeExpr is the start of an argument or of the descriptor.
	completeExpr
	// completeAfterDot follows `recv.`; methods are inserted without a dot.
	completeAfterDot
	// completeAfterAtom follows a finished argument; methods get the dot.
	completeAfterAtom
	// completeTypeLabel follows `|` inside a union label.
	completeTypeLabel
)

type completionContext struct {
	kind     completionPosition
	receiver string
}

// completionTrigger classifies the cursor at the end of prefix. A word being
// typed is ignored so the client can filter on it.
func completionTrigger(prefix string) completionContext {
	if insideString(prefix) {
		return completionContext{}
	}
	wordStart := len(prefix)
	for wordStart > 0 && isIdentByte(prefix[wordStart-1]) {
		wordStart--
	}
	typing := wordStart < len(prefix)
	before := strings.TrimRight(prefix[:wordStart], " \t")

	switch {
	case before == "":
		return completionContext{kind: completeExpr}
	case strings.HasSuffix(before, "."):
		recv := receiverText(strings.TrimRight(before[:len(before)-1], " \t"))
		if recv == "" {
			return completionContext{}
		}
		return completionContext{kind: completeAfterDot, receiver: recv}
	case strings.HasSuffix(before, "("), strings.HasSuffix(before, ","):
		return completionContext{kind: completeExpr}
	case strings.HasSuffix(before, "|"):
		return completionContext{kind: completeTypeLabel}
	case typing:
		return completionContext{}
	}
	recv := receiverText(before)
	if recv == "" {
		return completionContext{}
	}
	return completionContext{kind: completeAfterAtom, receiver: recv}
}

// receiverText returns the postfix receiver ending at the end of s, or "".
func receiverText(s string) string {
	base := len(s)
	for strings.HasSuffix(s[:base], "[]") {
		base -= 2
	}
	start := atomStart(s, base)
	if start == base {
		return ""
	}
	return strings.TrimSpace(s[exprStart(s, start):])
}

// insideString reports whether prefix ends inside a string literal.
func insideString(prefix string) bool {
	in := false
	for i := 0; i < len(prefix); i++ {
		switch prefix[i] {
		case '\\':
			if in {
				i++
			}
		case '"':
			in = !in
		}
	}
	return in
}
