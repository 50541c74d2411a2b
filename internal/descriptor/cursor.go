package descriptor

import (
	"fmt"

	"fortio.org/safecast"

	"formula/internal/source"
)

// cursor is a byte position inside one descriptor file.
type cursor struct {
	file *source.File
	off  uint32
	end  uint32
}

func newCursor(f *source.File) cursor {
	end, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("len file content overflow: %w", err))
	}
	return cursor{file: f, end: end}
}

func (c *cursor) eof() bool { return c.off >= c.end }

func (c *cursor) peek() byte {
	if c.eof() {
		return 0
	}
	return c.file.Content[c.off]
}

func (c *cursor) bump() byte {
	if c.eof() {
		return 0
	}
	b := c.file.Content[c.off]
	c.off++
	return b
}

func (c *cursor) eat(b byte) bool {
	if c.peek() == b && !c.eof() {
		c.off++
		return true
	}
	return false
}

func (c *cursor) skipSpace() {
	for !c.eof() {
		switch c.peek() {
		case ' ', '\t', '\n', '\r':
			c.off++
		default:
			return
		}
	}
}

type mark uint32

func (c *cursor) mark() mark { return mark(c.off) }

func (c *cursor) reset(m mark) { c.off = uint32(m) }

func (c *cursor) spanFrom(m mark) source.Span {
	return source.Span{File: c.file.ID, Start: uint32(m), End: c.off}
}

// here is the empty span at the current offset.
func (c *cursor) here() source.Span {
	return source.Span{File: c.file.ID, Start: c.off, End: c.off}
}

func (c *cursor) text(m mark) string {
	return string(c.file.Content[m:c.off])
}
