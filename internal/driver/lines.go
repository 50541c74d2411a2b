package driver

import (
	"bytes"

	"formula/internal/source"
)

// DescriptorLines returns one span per descriptor line of file. Blank lines
// and lines starting with '#' are skipped; surrounding spaces are trimmed.
func DescriptorLines(fs *source.FileSet, file source.FileID) []source.Span {
	f := fs.Get(file)
	if f == nil {
		return nil
	}
	var out []source.Span
	content := f.Content
	start := 0
	for start <= len(content) {
		end := bytes.IndexByte(content[start:], '\n')
		if end < 0 {
			end = len(content)
		} else {
			end += start
		}
		lo, hi := start, end
		for lo < hi && isSpace(content[lo]) {
			lo++
		}
		for hi > lo && isSpace(content[hi-1]) {
			hi--
		}
		if lo < hi && content[lo] != '#' {
			out = append(out, source.SpanOf(file, lo, hi))
		}
		start = end + 1
	}
	return out
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r'
}
