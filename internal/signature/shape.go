package signature

// DefaultMinGroups is the number of repeat cycles every variadic call must supply.
const DefaultMinGroups = 1

// CompletedShape splits Total arguments into head, RepeatGroups cycles and
// TailUsed tail parameters. Tail arguments occupy [TailStart, Total).
type CompletedShape struct {
	Total        int
	TailUsed     int
	TailStart    int
	RepeatGroups int
}

// ResolveTailUsed returns how many tail parameters a call with total arguments
// consumes. ok is false when no head + k*repeat + tail split with k >= 1 fits.
// Among several valid splits the one using the most tail parameters wins.
func (s ParamShape) ResolveTailUsed(total int) (tailUsed int, ok bool) {
	return s.ResolveTailUsedWithMinGroups(total, DefaultMinGroups)
}

// ResolveTailUsedWithMinGroups is ResolveTailUsed with a custom minimum number of repeat cycles.
func (s ParamShape) ResolveTailUsedWithMinGroups(total, minGroups int) (int, bool) {
	if len(s.Repeat) == 0 {
		return len(s.Tail), true
	}
	headLen := len(s.Head)
	if total < headLen {
		return 0, false
	}
	repeatLen := len(s.Repeat)
	minMiddle := repeatLen * max(minGroups, 0)

	for tailUsed := len(s.Tail); tailUsed >= requiredTailPrefix(s.Tail); tailUsed-- {
		if total < headLen+tailUsed {
			continue
		}
		middle := total - headLen - tailUsed
		if middle >= minMiddle && middle%repeatLen == 0 {
			return tailUsed, true
		}
	}
	return 0, false
}

// Complete returns the resolved split for total, or when total does not fit,
// the split of the smallest larger total that does. Ties prefer more tail.
// ok is false for shapes without a repeat group.
func (s ParamShape) Complete(total int) (CompletedShape, bool) {
	return s.CompleteWithMinGroups(total, DefaultMinGroups)
}

// CompleteWithMinGroups is Complete with a custom minimum number of repeat cycles.
func (s ParamShape) CompleteWithMinGroups(total, minGroups int) (CompletedShape, bool) {
	if len(s.Repeat) == 0 {
		return CompletedShape{}, false
	}
	headLen := len(s.Head)
	repeatLen := len(s.Repeat)

	if tailUsed, ok := s.ResolveTailUsedWithMinGroups(total, minGroups); ok {
		middle := max(total-headLen-tailUsed, 0)
		return CompletedShape{
			Total:        total,
			TailUsed:     tailUsed,
			TailStart:    max(total-tailUsed, 0),
			RepeatGroups: middle / repeatLen,
		}, true
	}

	minMiddle := repeatLen * max(minGroups, 0)
	bestTotal, bestTail := -1, -1
	for tailUsed := requiredTailPrefix(s.Tail); tailUsed <= len(s.Tail); tailUsed++ {
		base := max(total, headLen+tailUsed+minMiddle)
		middle := ceilToMultiple(base-headLen-tailUsed, repeatLen)
		completed := headLen + tailUsed + middle
		if bestTotal < 0 || completed < bestTotal || (completed == bestTotal && tailUsed > bestTail) {
			bestTotal, bestTail = completed, tailUsed
		}
	}
	if bestTotal < 0 {
		return CompletedShape{}, false
	}
	middle := bestTotal - headLen - bestTail
	return CompletedShape{
		Total:        bestTotal,
		TailUsed:     bestTail,
		TailStart:    bestTotal - bestTail,
		RepeatGroups: middle / repeatLen,
	}, true
}

func ceilToMultiple(n, m int) int {
	if m <= 0 || n <= 0 {
		return max(n, 0)
	}
	if rem := n % m; rem != 0 {
		return n + (m - rem)
	}
	return n
}
