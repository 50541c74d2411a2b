package lsp

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestFramingRoundTripsMessages(t *testing.T) {
	var buf bytes.Buffer
	msgs := []string{`{"jsonrpc":"2.0","method":"one"}`, `{"jsonrpc":"2.0","method":"two"}`}
	for _, m := range msgs {
		if err := writeMessage(&buf, []byte(m)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	r := bufio.NewReader(&buf)
	for _, want := range msgs {
		got, err := readMessage(r)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if string(got) != want {
			t.Fatalf("expected %s, got %s", want, got)
		}
	}
}

func TestReadMessageHeaders(t *testing.T) {
	in := "Content-Type: application/vscode-jsonrpc\r\ncontent-length: 2\r\n\r\n{}"
	got, err := readMessage(bufio.NewReader(strings.NewReader(in)))
	if err != nil || string(got) != "{}" {
		t.Fatalf("expected {}, got %q %v", got, err)
	}
	_, err = readMessage(bufio.NewReader(strings.NewReader("X: 1\r\n\r\n{}")))
	if !errors.Is(err, errMissingLength) {
		t.Fatalf("expected missing length error, got %v", err)
	}
	if _, err := readMessage(bufio.NewReader(strings.NewReader("Content-Length: x\r\n\r\n"))); err == nil {
		t.Fatal("expected error for bad length")
	}
}
