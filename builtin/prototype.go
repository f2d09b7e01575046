// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package builtin

import (
	"fmt"
	"strings"

	"github.com/gogpu/sdrc/ir"
)

// Prototype codes with a special meaning. Every other code names a value
// type (see ir.TypeFromCode); uppercase codes require a bare variable or
// constant argument and force it uniform.
const (
	CodeAny      = '.' // argument keeps its own type
	CodePairs    = '!' // remaining arguments are (name, value) pairs
	CodeOneMore  = '+' // repeat the previous code
	CodeZeroMore = '*' // repeat the previous code
	CodeVoid     = 'o' // return code of built-ins without a value
)

// Prototype is one overload of a built-in function.
//
// Proto has the form "<return>=<params>", for example "c=SFff!".
type Prototype struct {
	Name  string
	Proto string

	// NonUniform built-ins produce varying results even for uniform
	// arguments (random, for instance).
	NonUniform bool

	// DSO built-ins are loaded dynamically by the VM.
	DSO bool
}

// Return returns the return code.
func (p *Prototype) Return() byte { return p.Proto[0] }

// Params returns the parameter codes.
func (p *Prototype) Params() string { return p.Proto[2:] }

// ReturnType returns the varying return type; CategoryNone for void.
func (p *Prototype) ReturnType() ir.Type {
	t, _ := ir.TypeFromCode(p.Return())
	return t
}

func (p *Prototype) String() string {
	return p.Name + " " + p.Proto
}

// ValidatePrototype checks the syntax of a prototype string.
func ValidatePrototype(proto string) error {
	if len(proto) < 2 || proto[1] != '=' {
		return fmt.Errorf("prototype %q: expected <return>=<params>", proto)
	}
	if _, ok := ir.TypeFromCode(proto[0]); !ok || isUpper(proto[0]) {
		return fmt.Errorf("prototype %q: invalid return code %q", proto, proto[0])
	}
	params := proto[2:]
	for i := 0; i < len(params); i++ {
		c := params[i]
		switch c {
		case CodeAny:
		case CodePairs:
			if i != len(params)-1 {
				return fmt.Errorf("prototype %q: %q must be the last code", proto, c)
			}
		case CodeOneMore, CodeZeroMore:
			if i == 0 || params[i-1] == CodePairs || params[i-1] == CodeOneMore || params[i-1] == CodeZeroMore {
				return fmt.Errorf("prototype %q: %q must follow a value code", proto, c)
			}
			if i != len(params)-1 {
				return fmt.Errorf("prototype %q: %q must be the last code", proto, c)
			}
		default:
			if _, ok := ir.TypeFromCode(c); !ok || c == CodeVoid {
				return fmt.Errorf("prototype %q: unknown code %q", proto, c)
			}
		}
	}
	return nil
}

// Match scores how well args fit the prototype. The second result is false
// when the argument list cannot bind at all. Higher scores are better.
func (p *Prototype) Match(args []ir.Type) (int, bool) {
	params := p.Params()
	score := 0
	pos := 0
	for i := 0; i < len(args); i++ {
		if pos >= len(params) {
			return 0, false
		}
		code := params[pos]
		if code == CodeOneMore || code == CodeZeroMore {
			pos--
			code = params[pos]
		}
		switch code {
		case CodePairs:
			rest := args[i:]
			if len(rest)%2 != 0 {
				return 0, false
			}
			for j := 0; j < len(rest); j += 2 {
				if rest[j].Category != ir.CategoryString && rest[j].Category != ir.CategoryNone {
					return 0, false
				}
			}
			return score + len(rest), true
		case CodeAny:
			score++
		default:
			want, _ := ir.TypeFromCode(code)
			s, ok := compatibility(args[i], want)
			if !ok {
				return 0, false
			}
			score += s
		}
		pos++
	}
	if pos < len(params) {
		switch params[pos] {
		case CodeOneMore, CodeZeroMore, CodePairs:
		default:
			return 0, false
		}
	}
	return score, true
}

// compatibility scores binding an argument of type have to a parameter of
// type want.
func compatibility(have, want ir.Type) (int, bool) {
	switch {
	case have.Category == ir.CategoryNone:
		return 0, true
	case have.Category == want.Category:
		if have.Category == ir.CategoryVector && have.Vector != want.Vector {
			return 3, true
		}
		return 4, true
	case have.Category == ir.CategoryFloat && want.Category == ir.CategoryVector,
		have.Category == ir.CategoryFloat && want.Category == ir.CategoryMatrix,
		have.Category == ir.CategoryVector && want.Category == ir.CategoryMatrix:
		return 1, true
	}
	return 0, false
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }

// IsForced reports whether a code requires a bare uniform argument.
func IsForced(code byte) bool { return isUpper(code) }

// Signature renders argument types for error messages, e.g. "(float, color)".
func Signature(args []ir.Type) string {
	names := make([]string, len(args))
	for i, a := range args {
		names[i] = a.Name()
	}
	return "(" + strings.Join(names, ", ") + ")"
}
