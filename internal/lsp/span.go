package lsp

import (
	"sort"
	"unicode/utf8"

	"fortio.org/safecast"

	"formula/internal/source"
)

func safeUint32(n int) uint32 {
	if n < 0 {
		return 0
	}
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		return ^uint32(0)
	}
	return v
}

// lineBounds returns the byte range of zero-based line n, newline excluded.
func lineBounds(f *source.File, n int) (start, end uint32) {
	size := safeUint32(len(f.Content))
	if n < 0 {
		return 0, 0
	}
	if n > len(f.LineIdx) {
		return size, size
	}
	if n > 0 {
		start = f.LineIdx[n-1] + 1
	}
	end = size
	if n < len(f.LineIdx) {
		end = f.LineIdx[n]
	}
	return start, end
}

// offsetAt converts an LSP position to a byte offset, clamping to the line.
func offsetAt(f *source.File, pos position) uint32 {
	if f == nil || pos.Line < 0 || pos.Character < 0 {
		return 0
	}
	off, end := lineBounds(f, pos.Line)
	units := 0
	for off < end && units < pos.Character {
		r, size := utf8.DecodeRune(f.Content[off:end])
		need := 1
		if r > 0xFFFF {
			need = 2
		}
		if units+need > pos.Character {
			break
		}
		units += need
		off += safeUint32(size)
	}
	return off
}

func positionAt(f *source.File, offset uint32) position {
	if f == nil {
		return position{}
	}
	offset = min(offset, safeUint32(len(f.Content)))
	line := sort.Search(len(f.LineIdx), func(i int) bool { return f.LineIdx[i] >= offset })
	start, _ := lineBounds(f, line)
	units := 0
	for off := start; off < offset; {
		r, size := utf8.DecodeRune(f.Content[off:offset])
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
		off += safeUint32(size)
	}
	return position{Line: line, Character: units}
}

func rangeForSpan(f *source.File, sp source.Span) lspRange {
	return lspRange{Start: positionAt(f, sp.Start), End: positionAt(f, sp.End)}
}

// applyChanges applies incremental and full-text edits in order.
func applyChanges(text string, changes []textDocumentContentChangeEvent) string {
	for _, change := range changes {
		if change.Range == nil {
			text = change.Text
			continue
		}
		f := &source.File{Content: []byte(text), LineIdx: newlineIndex(text)}
		start := int(offsetAt(f, change.Range.Start))
		end := max(int(offsetAt(f, change.Range.End)), start)
		text = text[:start] + change.Text + text[end:]
	}
	return text
}

func newlineIndex(text string) []uint32 {
	var idx []uint32
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			idx = append(idx, safeUint32(i))
		}
	}
	return idx
}
