// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/gogpu/sdrc/compiler"
	"github.com/gogpu/sdrc/config"
)

const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
)

// useColor reports whether diagnostics written to f are coloured.
func useColor(mode string, f *os.File) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

// report writes err to w. Source diagnostics are shown with their line.
func report(w io.Writer, err error, source, path string, color bool) {
	diags, ok := diagnosticsOf(err)
	if !ok {
		fmt.Fprintf(w, "%s: %s: %v\n", path, paint("error", ansiRed, color), err)
		return
	}
	for _, d := range diags {
		text := formatDiagnostic(d, source, color)
		if !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		fmt.Fprintf(w, "%s: %s", path, text)
	}
}

// formatDiagnostic renders d with its source line. The severity and
// message line is highlighted.
func formatDiagnostic(d *compiler.Diagnostic, source string, color bool) string {
	text := d.FormatWithContext(source)
	if !color {
		return text
	}
	code := ansiRed
	if d.Severity == compiler.SeverityWarning {
		code = ansiYellow
	}
	first, rest, found := strings.Cut(text, "\n")
	if !found {
		return paint(first, code, true)
	}
	return paint(first, code, true) + "\n" + rest
}

func paint(s, code string, color bool) string {
	if !color {
		return s
	}
	return ansiBold + code + s + ansiReset
}
