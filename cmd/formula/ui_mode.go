package main

import (
	"fmt"
	"os"
	"strings"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

// autoUIMinDescriptors is the batch size from which auto mode shows progress.
const autoUIMinDescriptors = 64

func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

// shouldUseTUI decides whether a check of count descriptors shows the
// progress view. It draws on stderr, so stdout stays clean for --format json.
func shouldUseTUI(mode uiMode, count int) bool {
	switch mode {
	case uiModeOn:
		return count > 0
	case uiModeOff:
		return false
	default:
		return count >= autoUIMinDescriptors && isTerminal(os.Stderr)
	}
}
