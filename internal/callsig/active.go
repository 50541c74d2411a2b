package callsig

import "formula/internal/signature"

// ActiveParameter returns the display parameter index to highlight while the
// cursor is in argument argIndex of a call that has (at least) total
// arguments. Repeat parameters are numbered per displayed cycle, so the index
// counts head, every displayed repeat cycle, then tail; the ellipsis slot has
// no index. In method style the receiver is argument 0 and is not displayed
// as a parameter.
func ActiveParameter(sig *signature.FunctionSig, argIndex, total int, methodStyle bool) int {
	p := sig.Params
	var idx int
	if !p.IsVariadic() {
		n := len(p.Head) + len(p.Tail)
		if n > 0 {
			idx = min(argIndex, n-1)
		}
	} else {
		shape, ok := p.Complete(total)
		if !ok {
			return 0
		}
		headLen, repeatLen := len(p.Head), len(p.Repeat)
		switch {
		case argIndex < headLen:
			idx = argIndex
		case argIndex >= shape.TailStart:
			tailIdx := min(argIndex-shape.TailStart, max(len(p.Tail)-1, 0))
			idx = headLen + repeatLen*shape.RepeatGroups + tailIdx
		default:
			inRepeat := argIndex - headLen
			idx = headLen + (inRepeat/repeatLen)*repeatLen + inRepeat%repeatLen
		}
	}
	if methodStyle {
		idx = max(idx-1, 0)
	}
	return max(idx, 0)
}
