package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("calls.txt", []byte("sum(number)\nifs(boolean)\n"))

	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{4, LineCol{1, 5}},
		{11, LineCol{1, 12}},
		{12, LineCol{2, 1}},
		{16, LineCol{2, 5}},
	}
	for _, tt := range tests {
		got, _ := fs.Resolve(Span{File: id, Start: tt.off, End: tt.off})
		if got != tt.want {
			t.Errorf("offset %d: expected %+v, got %+v", tt.off, tt.want, got)
		}
	}

	f := fs.Get(id)
	if got := f.Line(2); got != "ifs(boolean)" {
		t.Fatalf("expected second line, got %q", got)
	}
	if got := f.Line(3); got != "" {
		t.Fatalf("expected empty trailing line, got %q", got)
	}
	if got := f.Line(4); got != "" {
		t.Fatalf("expected out-of-range line to be empty, got %q", got)
	}
	if got := fs.Slice(Span{File: id, Start: 12, End: 15}); got != "ifs" {
		t.Fatalf("expected slice ifs, got %q", got)
	}
}

func TestLoadNormalizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calls.txt")
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBFa()\r\nb()\r\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f := fs.Get(id)
	if string(f.Content) != "a()\nb()\n" {
		t.Fatalf("unexpected content %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("expected BOM and CRLF flags, got %b", f.Flags)
	}
	if got, ok := fs.Lookup(path); !ok || got != id {
		t.Fatalf("Lookup: expected %d, got %d (%v)", id, got, ok)
	}
}

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 4, End: 8}
	b := Span{File: 1, Start: 2, End: 6}
	if got := a.Cover(b); got != (Span{File: 1, Start: 2, End: 8}) {
		t.Fatalf("unexpected cover %v", got)
	}
	if got := a.Cover(Span{File: 2, Start: 0, End: 100}); got != a {
		t.Fatalf("cross-file cover must not change span, got %v", got)
	}
	if got := SpanOf(0, 3, 5).Shift(2); got != (Span{Start: 5, End: 7}) {
		t.Fatalf("unexpected shift %v", got)
	}
}
