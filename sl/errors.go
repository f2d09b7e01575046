// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package sl

import (
	"fmt"

	"github.com/gogpu/sdrc/compiler"
)

// ParseError is a lexical or syntax error.
type ParseError struct {
	Message string
	Token   Token
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Token.Line, e.Token.Column, e.Message)
}

// Diagnostic converts the error to a syntax diagnostic.
func (e *ParseError) Diagnostic() *compiler.Diagnostic {
	return &compiler.Diagnostic{
		Severity: compiler.SeverityError,
		Kind:     compiler.ErrSyntax,
		Message:  e.Message,
		Pos:      e.Token.Position().pos(),
	}
}

// ParseErrors is the list of errors of one parse.
type ParseErrors []*ParseError

// Error implements the error interface.
func (el ParseErrors) Error() string {
	if len(el) == 0 {
		return "no errors"
	}
	if len(el) == 1 {
		return el[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", el[0].Error(), len(el)-1)
}

// Add adds an error to the list.
func (el *ParseErrors) Add(err *ParseError) {
	*el = append(*el, err)
}

// Len returns the number of errors.
func (el ParseErrors) Len() int {
	return len(el)
}

// Diagnostics converts the list for reporting with compiler diagnostics.
func (el ParseErrors) Diagnostics() compiler.Diagnostics {
	out := make(compiler.Diagnostics, 0, len(el))
	for _, e := range el {
		out.Add(e.Diagnostic())
	}
	return out
}
