package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"formula/internal/diag"
	"formula/internal/source"
)

func oneDiag(t *testing.T, path, content string, start, end int, msg string) (*diag.Bag, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual(path, []byte(content))
	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.SynInvalidType, source.SpanOf(id, start, end), msg).
		WithNote(source.SpanOf(id, 0, 3), "in this call"))
	return bag, fs
}

func TestPrettyLayout(t *testing.T) {
	bag, fs := oneDiag(t, "args", "abs(numbr)", 4, 9, `invalid type label "numbr"`)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{ShowNotes: true})

	want := strings.Join([]string{
		`args:1:5: ERROR SYN2003: invalid type label "numbr"`,
		"  1 | abs(numbr)",
		"    |     ^~~~~",
		"  note: args:1:1: in this call",
		"",
	}, "\n")
	if buf.String() != want {
		t.Fatalf("expected\n%s\ngot\n%s", want, buf.String())
	}
}

func TestPrettyWideCharacters(t *testing.T) {
	// "日本" occupies four display cells before the marked argument.
	bag, fs := oneDiag(t, "args", `f("日本", x)`, 12, 13, "bad")
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{})
	lines := strings.Split(buf.String(), "\n")
	if want := "    |           ^"; lines[2] != want {
		t.Fatalf("expected %q, got %q", want, lines[2])
	}
}

func TestPrettyColorAndMax(t *testing.T) {
	bag, fs := oneDiag(t, "args", "abs(numbr)", 4, 9, "first")
	bag.Add(diag.NewError(diag.SynInvalidType, source.SpanOf(0, 0, 1), "second"))

	var plain, colored bytes.Buffer
	Pretty(&plain, bag, fs, PrettyOpts{Max: 1})
	Pretty(&colored, bag, fs, PrettyOpts{Max: 1, Color: true})
	if strings.Contains(plain.String(), "second") {
		t.Fatalf("expected output truncated to one diagnostic, got\n%s", plain.String())
	}
	if strings.Contains(plain.String(), "\x1b[") {
		t.Fatal("expected no escape codes without color")
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Fatal("expected escape codes with color")
	}
}

func TestFormatPath(t *testing.T) {
	long := "/very/long/absolute/path/to/some/nested/directory/file.fx"
	tests := []struct {
		path string
		mode PathMode
		base string
		want string
	}{
		{"args", PathModeAuto, "", "args"},
		{long, PathModeAuto, "", "file.fx"},
		{long, PathModeBasename, "", "file.fx"},
		{"/home/u/proj/src/a.fx", PathModeRelative, "/home/u/proj", "src/a.fx"},
		{"/elsewhere/a.fx", PathModeRelative, "/home/u/proj", "/elsewhere/a.fx"},
		{"/abs/a.fx", PathModeAbsolute, "", "/abs/a.fx"},
	}
	for _, tt := range tests {
		if got := formatPath(tt.path, tt.mode, tt.base); got != tt.want {
			t.Fatalf("formatPath(%q, %d): expected %q, got %q", tt.path, tt.mode, tt.want, got)
		}
	}
}

func TestParsePathMode(t *testing.T) {
	if m, err := ParsePathMode("rel"); err != nil || m != PathModeRelative {
		t.Fatalf("expected relative, got %v %v", m, err)
	}
	if _, err := ParsePathMode("sideways"); err == nil {
		t.Fatal("expected error")
	}
}
