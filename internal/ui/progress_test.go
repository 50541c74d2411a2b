package ui

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"formula/internal/driver"
)

func TestProgressModelFollowsEvents(t *testing.T) {
	events := make(chan driver.Event)
	m := NewProgressModel("checking", []string{"abs(number)", "abs(string)", "pi()"}, events).(*progressModel)
	for _, ev := range []driver.Event{
		{Index: 0, Stage: driver.StageParse, Status: driver.StatusWorking},
		{Index: 0, Stage: driver.StageCheck, Status: driver.StatusDone},
		{Index: 1, Stage: driver.StageCheck, Status: driver.StatusWorking},
		{Index: 1, Stage: driver.StageCheck, Status: driver.StatusError},
		{Index: 9, Stage: driver.StageCheck, Status: driver.StatusDone},
	} {
		m.Update(eventMsg(ev))
	}
	if m.settled != 2 || m.failed != 1 || m.working != 0 {
		t.Fatalf("unexpected counters settled=%d failed=%d working=%d", m.settled, m.failed, m.working)
	}

	view := m.View()
	for _, want := range []string{"checking (2/3, 1 failed)", "abs(string)", "1 more"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
	if strings.Contains(view, "abs(number)") {
		t.Fatalf("finished descriptors should not be listed:\n%s", view)
	}

	if _, cmd := m.Update(doneMsg{}); cmd == nil || !m.done {
		t.Fatal("expected the model to quit once events close")
	}
	if view := m.View(); !strings.HasPrefix(stripStyle(view), "done: checking") {
		t.Fatalf("expected done header, got:\n%s", view)
	}
}

func TestProgressForStages(t *testing.T) {
	tests := []struct {
		item descriptorItem
		want float64
	}{
		{descriptorItem{status: driver.StatusQueued}, 0},
		{descriptorItem{status: driver.StatusWorking, stage: driver.StageParse}, 0.2},
		{descriptorItem{status: driver.StatusWorking, stage: driver.StageCheck}, 0.5},
		{descriptorItem{status: driver.StatusError, stage: driver.StageCheck}, 1},
	}
	for _, tt := range tests {
		if got := progressFor(tt.item); got != tt.want {
			t.Fatalf("progressFor(%+v) = %v, want %v", tt.item, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abs(number)", 20); got != "abs(number)" {
		t.Fatalf("short text changed: %q", got)
	}
	long := "ifs(boolean, number, boolean, number, boolean, number, string)"
	got := truncate(long, 16)
	if runewidth.StringWidth(got) > 16 || !strings.HasSuffix(got, "...") {
		t.Fatalf("expected at most 16 columns ending in ..., got %q", got)
	}
}

// stripStyle drops ANSI escapes lipgloss may add.
func stripStyle(s string) string {
	var b strings.Builder
	in := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			in = true
		case in && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			in = false
		case !in:
			b.WriteRune(r)
		}
	}
	return b.String()
}
