// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package compiler

import (
	"fmt"
	"strings"
)

// ErrorKind categorizes diagnostics.
type ErrorKind uint8

const (
	// ErrRate indicates a varying value where a uniform one is required.
	ErrRate ErrorKind = iota

	// ErrCategory indicates an illegal conversion or an operator that is not
	// defined for the operand category.
	ErrCategory

	// ErrBinding indicates an unresolved name, a wrong argument list, or a
	// recursive call.
	ErrBinding

	// ErrMutability indicates an assignment to read-only storage.
	ErrMutability

	// ErrUsage indicates suspicious but legal code, such as an expression
	// whose value is discarded.
	ErrUsage

	// ErrSyntax indicates a malformed source program.
	ErrSyntax

	// ErrInternal indicates a broken compiler invariant.
	ErrInternal
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrRate:
		return "Rate"
	case ErrCategory:
		return "Category"
	case ErrBinding:
		return "Binding"
	case ErrMutability:
		return "Mutability"
	case ErrUsage:
		return "Usage"
	case ErrSyntax:
		return "Syntax"
	case ErrInternal:
		return "Internal"
	default:
		return "Unknown"
	}
}

// Severity separates errors from warnings.
type Severity uint8

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Pos is a source position. The zero Pos means unknown.
type Pos struct {
	Line   int
	Column int
}

// IsValid reports whether the position is known.
func (p Pos) IsValid() bool { return p.Line > 0 }

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Diagnostic is an error or warning found while compiling.
type Diagnostic struct {
	Severity Severity
	Kind     ErrorKind
	Message  string
	Pos      Pos
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	prefix := ""
	if d.Severity == SeverityWarning {
		prefix = "warning: "
	}
	if !d.Pos.IsValid() {
		return prefix + d.Message
	}
	return fmt.Sprintf("%s: %s%s", d.Pos, prefix, d.Message)
}

// FormatWithContext returns the diagnostic with the offending source line
// and a caret under the reported column.
func (d *Diagnostic) FormatWithContext(source string) string {
	if source == "" || !d.Pos.IsValid() {
		return d.Error()
	}

	lines := strings.Split(source, "\n")
	lineNum := d.Pos.Line
	if lineNum > len(lines) {
		return d.Error()
	}

	line := lines[lineNum-1]
	col := d.Pos.Column
	if col < 1 {
		col = 1
	}
	if col > len(line)+1 {
		col = len(line) + 1
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s\n", d.Severity, d.Message)
	fmt.Fprintf(&sb, "  --> line %d:%d\n", lineNum, col)
	sb.WriteString("   |\n")
	fmt.Fprintf(&sb, "%3d| %s\n", lineNum, line)
	fmt.Fprintf(&sb, "   | %s^\n", strings.Repeat(" ", col-1))

	return sb.String()
}

// Diagnostics is the list of diagnostics of a compilation.
type Diagnostics []*Diagnostic

// Error implements the error interface.
func (dl Diagnostics) Error() string {
	errs := dl.Errors()
	if len(errs) == 0 {
		errs = dl
	}
	switch len(errs) {
	case 0:
		return "no errors"
	case 1:
		return errs[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", errs[0].Error(), len(errs)-1)
}

// FormatAll returns all diagnostics formatted with source context.
func (dl Diagnostics) FormatAll(source string) string {
	var sb strings.Builder
	for i, d := range dl {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(d.FormatWithContext(source))
	}
	return sb.String()
}

// Add adds a diagnostic to the list.
func (dl *Diagnostics) Add(d *Diagnostic) {
	*dl = append(*dl, d)
}

// Len returns the number of diagnostics.
func (dl Diagnostics) Len() int {
	return len(dl)
}

// HasErrors reports whether any diagnostic is an error.
func (dl Diagnostics) HasErrors() bool {
	for _, d := range dl {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns the error diagnostics.
func (dl Diagnostics) Errors() Diagnostics {
	return dl.filter(SeverityError)
}

// Warnings returns the warning diagnostics.
func (dl Diagnostics) Warnings() Diagnostics {
	return dl.filter(SeverityWarning)
}

func (dl Diagnostics) filter(s Severity) Diagnostics {
	var out Diagnostics
	for _, d := range dl {
		if d.Severity == s {
			out = append(out, d)
		}
	}
	return out
}

// InternalError reports a broken compiler invariant. It is raised with panic
// and recovered by Context.Compile.
type InternalError struct {
	Message string
	Pos     Pos
}

// Error implements the error interface.
func (e *InternalError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: internal compiler error: %s", e.Pos, e.Message)
	}
	return "internal compiler error: " + e.Message
}
