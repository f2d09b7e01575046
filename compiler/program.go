// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package compiler

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gogpu/sdrc/ir"
)

// Section headers of the program text form.
const (
	SectionInit = ".init"
	SectionCode = ".code"
)

// Program is a compiled shader: its declaration table and two instruction
// streams. Init computes parameter defaults that are not literals; Code is
// the shader body.
type Program struct {
	Kind      string
	Name      string
	Variables []*ir.Variable
	Init      *ir.Stream
	Code      *ir.Stream

	// Warnings holds the warnings of the compilation that produced the
	// program. They are not part of the program text.
	Warnings Diagnostics
}

// Lookup finds a declared variable by code name.
func (p *Program) Lookup(code string) *ir.Variable {
	for _, v := range p.Variables {
		if v.CodeName == code {
			return v
		}
	}
	return nil
}

// Parameters returns the shader parameters in declaration order.
func (p *Program) Parameters() []*ir.Variable {
	var params []*ir.Variable
	for _, v := range p.Variables {
		if v.Storage == ir.StorageParameter {
			params = append(params, v)
		}
	}
	return params
}

// WriteTo writes the program text:
//
//	shader <kind> <name>
//	<declarations>
//	.init
//	<init stream>
//	.code
//	<code stream>
func (p *Program) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "shader %s %s\n", p.Kind, p.Name)
	for _, v := range p.Variables {
		sb.WriteString(v.Declaration())
		sb.WriteByte('\n')
	}
	sb.WriteString(SectionInit + "\n")
	if p.Init != nil {
		sb.WriteString(p.Init.String())
	}
	sb.WriteString(SectionCode + "\n")
	if p.Code != nil {
		sb.WriteString(p.Code.String())
	}
	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}

// String returns the program text.
func (p *Program) String() string {
	var sb strings.Builder
	_, _ = p.WriteTo(&sb)
	return sb.String()
}

// ParseProgram parses the text form written by WriteTo.
func ParseProgram(text string) (*Program, error) {
	lines := strings.Split(text, "\n")
	i := 0
	next := func() (string, bool) {
		for i < len(lines) {
			line := strings.TrimSpace(lines[i])
			i++
			if line != "" && line[0] != '#' {
				return line, true
			}
		}
		return "", false
	}

	header, ok := next()
	if !ok {
		return nil, fmt.Errorf("empty program")
	}
	fields := strings.Fields(header)
	if len(fields) != 3 || fields[0] != "shader" {
		return nil, fmt.Errorf("line %d: expected \"shader <kind> <name>\", got %q", i, header)
	}
	p := &Program{Kind: fields[1], Name: fields[2]}

	for {
		line, ok := next()
		if !ok {
			return nil, fmt.Errorf("missing %s section", SectionInit)
		}
		if line == SectionInit {
			break
		}
		v, err := parseDeclaration(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		p.Variables = append(p.Variables, v)
	}

	start := i
	split := -1
	for j := i; j < len(lines); j++ {
		if strings.TrimSpace(lines[j]) == SectionCode {
			split = j
			break
		}
	}
	if split < 0 {
		return nil, fmt.Errorf("missing %s section", SectionCode)
	}

	var err error
	if p.Init, err = ir.ParseStream(strings.Join(lines[start:split], "\n")); err != nil {
		return nil, fmt.Errorf("%s: %w", SectionInit, err)
	}
	if p.Code, err = ir.ParseStream(strings.Join(lines[split+1:], "\n")); err != nil {
		return nil, fmt.Errorf("%s: %w", SectionCode, err)
	}
	return p, nil
}

// parseDeclaration parses "<storage> <rate> <type>[<n>] <code> [= <default>]".
func parseDeclaration(line string) (*ir.Variable, error) {
	decl, def, hasDefault := strings.Cut(line, " = ")
	fields := strings.Fields(decl)
	if len(fields) != 4 {
		return nil, fmt.Errorf("malformed declaration %q", line)
	}

	storage, ok := parseStorage(fields[0])
	if !ok {
		return nil, fmt.Errorf("unknown storage class %q", fields[0])
	}

	typeName := fields[2]
	n := 0
	array := false
	if open := strings.IndexByte(typeName, '['); open >= 0 {
		if !strings.HasSuffix(typeName, "]") {
			return nil, fmt.Errorf("malformed array type %q", typeName)
		}
		var err error
		if n, err = strconv.Atoi(typeName[open+1 : len(typeName)-1]); err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid array length in %q", typeName)
		}
		array = true
		typeName = typeName[:open]
	}
	t, ok := ir.ParseQualifiedType(fields[1] + " " + typeName)
	if !ok {
		return nil, fmt.Errorf("invalid type %q", fields[1]+" "+typeName)
	}

	v := ir.NewVariable(fields[3], t, storage)
	v.Array, v.Len = array, n
	if hasDefault {
		v.Default = strings.TrimSpace(def)
	}
	return v, nil
}

func parseStorage(s string) (ir.Storage, bool) {
	for _, st := range []ir.Storage{
		ir.StorageLocal, ir.StorageGlobal, ir.StorageParameter,
		ir.StorageExtern, ir.StorageTemporary, ir.StorageConstant,
	} {
		if st.String() == s {
			return st, true
		}
	}
	return 0, false
}
