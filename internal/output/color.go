// Package output renders brewfresh results for the terminal.
//
// This package includes:
//   - The outdated-executables report in text, JSON and YAML
//   - The warning shown while a background refresh failure is unresolved
//   - Tables for the findings log and the error records
//   - A spinner for the brew query
//
// Colors follow NO_COLOR and are only emitted on a terminal.
package output

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

var (
	Warning = color.New(color.FgYellow, color.Bold)
	Header  = color.New(color.Bold)
	Package = color.New(color.FgBlue, color.Bold)
	Stale   = color.New(color.FgRed)
	Fresh   = color.New(color.FgGreen)
	Dim     = color.New(color.Faint)
	Command = color.New(color.FgCyan)
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// ConfigureColor turns color output on or off for every palette entry.
func ConfigureColor(enabled bool) {
	color.NoColor = !enabled
}

// writerIsTTY returns true if the given writer exposes an Fd() method
// (e.g. *os.File) and that fd is a terminal. Falls back to false for
// plain io.Writer values such as *bytes.Buffer.
func writerIsTTY(w io.Writer) bool {
	type fder interface {
		Fd() uintptr
	}
	if f, ok := w.(fder); ok {
		return isatty.IsTerminal(f.Fd())
	}
	return false
}

// terminalWidth returns the column count of w's terminal, or 0 when w is
// not a terminal.
func terminalWidth(w io.Writer) int {
	type fder interface {
		Fd() uintptr
	}
	f, ok := w.(fder)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}
