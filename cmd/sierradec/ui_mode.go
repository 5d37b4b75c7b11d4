package main

import (
	"fmt"
	"os"
	"strings"

	"sierradec/internal/config"
)

type uiMode string

const (
	uiModeAuto uiMode = config.UIAuto
	uiModeOn   uiMode = config.UIOn
	uiModeOff  uiMode = config.UIOff
)

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

// shouldUseTUI decides on the progress view. It draws on stderr, so auto
// mode looks at stderr rather than stdout.
func shouldUseTUI(mode uiMode) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return isTerminal(os.Stderr)
	}
}
