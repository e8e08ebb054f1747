package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// checkStatus is the verdict shown next to a doctor line.
type checkStatus int

const (
	checkOK checkStatus = iota
	checkWarn
	checkFailed
)

var checkStyles = map[checkStatus]struct{ label, color string }{
	checkOK:     {"OK", "\x1b[32m"},
	checkWarn:   {"WARN", "\x1b[33m"},
	checkFailed: {"ERROR", "\x1b[31m"},
}

const (
	ansiReset   = "\x1b[0m"
	ansiHeading = "\x1b[1m"
	labelWidth  = 22
	lineIndent  = "  "
)

// renderCheckLine formats "  label:   [STATUS] detail", colored when colorize
// is set.
func renderCheckLine(label string, status checkStatus, detail string, colorize bool) string {
	style := checkStyles[status]
	line := fmt.Sprintf("%s%-*s [%s]", lineIndent, labelWidth, label+":", style.label)
	if detail != "" {
		line += " " + detail
	}
	if colorize {
		return style.color + line + ansiReset
	}
	return line
}

func renderHeading(title string, colorize bool) string {
	title = strings.TrimSpace(title)
	if colorize {
		return ansiHeading + title + ansiReset
	}
	return title
}

// shouldColorize reports whether writer is a terminal.
func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}
