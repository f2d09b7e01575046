// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package sdrc provides a Pure Go compiler for RenderMan-style shaders.
//
// sdrc compiles shading language source to programs for a SIMD shading
// virtual machine: a declaration table and two instruction streams, one
// computing parameter defaults and one running the shader body.
//
// Example usage:
//
//	source := `
//	surface matte(float Kd = 1) {
//	    Ci = Cs * Kd * diffuse(normalize(N));
//	}
//	`
//	prog, err := sdrc.Compile(source)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(prog)
//
// The stages are also available on their own: Parse produces the syntax
// tree, Lower resolves it into compiler nodes and Validate checks the
// emitted streams.
package sdrc

import (
	"fmt"

	"github.com/gogpu/sdrc/builtin"
	"github.com/gogpu/sdrc/compiler"
	"github.com/gogpu/sdrc/ir"
	"github.com/gogpu/sdrc/sl"
)

// Version is the compiler version. It is part of every cache key.
const Version = "0.1.0-dev"

// CompileOptions configures shader compilation.
type CompileOptions struct {
	// Builtins supplies built-in globals and functions (default:
	// builtin.Default()).
	Builtins *builtin.Registry

	// WarningsAsErrors fails the compilation when any warning is reported.
	WarningsAsErrors bool

	// Validate checks the emitted streams before returning them.
	Validate bool
}

// DefaultOptions returns sensible default options.
func DefaultOptions() CompileOptions {
	return CompileOptions{
		Builtins: builtin.Default(),
		Validate: true,
	}
}

// Compile compiles shader source using default options.
func Compile(source string) (*compiler.Program, error) {
	return CompileWithOptions(source, DefaultOptions())
}

// CompileWithOptions compiles shader source with custom options.
//
// The compilation pipeline is:
//  1. Parse source to a syntax tree
//  2. Lower the tree to compiler nodes
//  3. Emit the init and code streams
//  4. Validate the streams (if enabled)
//
// Syntax errors are returned as sl.ParseErrors and semantic errors as
// compiler.Diagnostics, both wrapped.
func CompileWithOptions(source string, opts CompileOptions) (*compiler.Program, error) {
	file, err := Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	c := compiler.New(compiler.Options{Builtins: opts.Builtins, WarningsAsErrors: opts.WarningsAsErrors})
	sh, err := sl.Lower(file, c)
	if err != nil {
		return nil, fmt.Errorf("lowering error: %w", err)
	}

	prog, err := c.Compile(sh)
	if err != nil {
		return nil, fmt.Errorf("compile error: %w", err)
	}

	if opts.Validate {
		if err := Validate(prog); err != nil {
			return nil, err
		}
	}
	return prog, nil
}

// Parse parses shader source to a syntax tree.
func Parse(source string) (*sl.File, error) {
	return sl.Parse(source)
}

// Lower resolves a syntax tree into the shader tree of compiler nodes. The
// returned context compiles it.
func Lower(file *sl.File, opts CompileOptions) (*compiler.Shader, *compiler.Context, error) {
	c := compiler.New(compiler.Options{Builtins: opts.Builtins, WarningsAsErrors: opts.WarningsAsErrors})
	sh, err := sl.Lower(file, c)
	if err != nil {
		return nil, nil, err
	}
	return sh, c, nil
}

// Validate checks both instruction streams of a program. It returns the
// first problem found.
func Validate(prog *compiler.Program) error {
	for _, s := range []struct {
		name   string
		stream *ir.Stream
	}{
		{compiler.SectionInit, prog.Init},
		{compiler.SectionCode, prog.Code},
	} {
		errs, err := ir.Validate(s.stream)
		if err != nil {
			return fmt.Errorf("validation error: %w", err)
		}
		if len(errs) > 0 {
			return fmt.Errorf("validation failed in %s: %w", s.name, &errs[0])
		}
	}
	return nil
}
