// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package compiler

import (
	"fmt"

	"github.com/gogpu/sdrc/builtin"
	"github.com/gogpu/sdrc/ir"
)

// Options configures a compilation.
type Options struct {
	// Builtins supplies built-in globals and functions. Nil means
	// builtin.Default().
	Builtins *builtin.Registry

	// WarningsAsErrors fails the compilation when any warning is reported.
	WarningsAsErrors bool
}

// DefaultOptions returns the default options.
func DefaultOptions() Options {
	return Options{Builtins: builtin.Default()}
}

// Function is a user function. Calls inline its body.
type Function struct {
	Name   string
	Params []*ir.Variable

	// Return receives the returned value; nil for void functions.
	Return *ir.Variable

	// Locals holds the variables declared in the body, including extern
	// references (storage ir.StorageExtern).
	Locals []*ir.Variable

	Body Expr
}

// Lookup finds a parameter or local by source name.
func (f *Function) Lookup(name string) *ir.Variable {
	for _, v := range f.Params {
		if v.Name == name {
			return v
		}
	}
	for _, v := range f.Locals {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// Shader is a shader definition ready to compile.
type Shader struct {
	Kind   string
	Name   string
	Params []*ir.Variable
	Locals []*ir.Variable

	// Init holds parameter initialization that could not be captured as
	// literal defaults. It may be nil.
	Init Expr
	Body Expr
}

// frame is one activation of an inlined function. bind maps the callee's
// parameters, externs and return slot to the caller's storage.
type frame struct {
	fn   *Function
	bind map[*ir.Variable]*ir.Variable
}

// Context holds the state of one compilation: diagnostics, temporaries,
// labels, declarations, the activation stack, and the instruction stream
// being written. Nodes are built through Context methods and emitted by
// Compile.
type Context struct {
	opts Options

	names *namer
	regs  *Registers
	diags Diagnostics
	pos   Pos

	out    *ir.Stream
	labels int
	frames []*frame

	globals  map[string]*ir.Variable
	declared map[*ir.Variable]bool
	vars     []*ir.Variable
}

// New returns a fresh compilation context.
func New(opts Options) *Context {
	if opts.Builtins == nil {
		opts.Builtins = builtin.Default()
	}
	names := newNamer()
	return &Context{
		opts:     opts,
		names:    names,
		regs:     newRegisters(names),
		globals:  make(map[string]*ir.Variable),
		declared: make(map[*ir.Variable]bool),
	}
}

// Builtins returns the built-in registry in use.
func (c *Context) Builtins() *builtin.Registry { return c.opts.Builtins }

// Registers returns the temporary allocator.
func (c *Context) Registers() *Registers { return c.regs }

// Diagnostics returns everything reported so far.
func (c *Context) Diagnostics() Diagnostics { return c.diags }

// At sets the source position attached to nodes built and diagnostics
// reported from now on.
func (c *Context) At(p Pos) { c.pos = p }

// Errorf reports an error at the current position.
func (c *Context) Errorf(kind ErrorKind, format string, args ...any) {
	c.diags.Add(&Diagnostic{
		Severity: SeverityError,
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Pos:      c.pos,
	})
}

// Warnf reports a warning at the current position.
func (c *Context) Warnf(kind ErrorKind, format string, args ...any) {
	c.diags.Add(&Diagnostic{
		Severity: SeverityWarning,
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Pos:      c.pos,
	})
}

// internal aborts the compilation.
func (c *Context) internal(format string, args ...any) {
	panic(&InternalError{Message: fmt.Sprintf(format, args...), Pos: c.pos})
}

// Global returns the descriptor of a built-in global, creating and declaring
// it on first use. It returns nil for unknown names.
func (c *Context) Global(name string) *ir.Variable {
	if v, ok := c.globals[name]; ok {
		return v
	}
	for _, g := range c.opts.Builtins.Globals() {
		if g.Name == name {
			v := g.Variable()
			c.globals[name] = v
			c.declare(v)
			return v
		}
	}
	return nil
}

// declare adds v to the program's declaration table and fixes its code name.
func (c *Context) declare(v *ir.Variable) {
	if c.declared[v] {
		return
	}
	switch v.Storage {
	case ir.StorageGlobal, ir.StorageParameter:
		if c.names.isUsed(v.Name) {
			c.Errorf(ErrBinding, "%s %s conflicts with another declaration", v.Storage, v.Name)
		}
		c.names.reserve(v.Name)
		v.CodeName = v.Name
	case ir.StorageLocal:
		v.CodeName = c.names.call(v.Name)
	default:
		return
	}
	c.declared[v] = true
	c.vars = append(c.vars, v)
}

// label returns a fresh label name.
func (c *Context) label() string {
	c.labels++
	return fmt.Sprintf("%sL%d", ir.LabelPrefix, c.labels)
}

// resolve maps a descriptor through the innermost activation's bindings.
func (c *Context) resolve(v *ir.Variable) *ir.Variable {
	if len(c.frames) == 0 {
		return v
	}
	if b, ok := c.frames[len(c.frames)-1].bind[v]; ok {
		return b
	}
	return v
}

// bindTop binds v in the innermost activation; a nil target removes the binding.
func (c *Context) bindTop(v, target *ir.Variable) {
	top := c.frames[len(c.frames)-1]
	if target == nil {
		delete(top.bind, v)
		return
	}
	top.bind[v] = target
}

// lookupExtern resolves an extern reference by searching the active frames
// from the innermost outward, then the built-in globals.
func (c *Context) lookupExtern(name string) *ir.Variable {
	for i := len(c.frames) - 1; i >= 0; i-- {
		f := c.frames[i]
		if w := f.fn.Lookup(name); w != nil {
			if b, ok := f.bind[w]; ok {
				return b
			}
			return w
		}
	}
	return c.Global(name)
}

// Compile emits the shader and returns the program. When errors were
// reported, during node construction or emission, the returned error is
// the Diagnostics list; otherwise the warnings travel in Program.Warnings.
// A broken invariant is returned as *InternalError.
func (c *Context) Compile(sh *Shader) (prog *Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			ie, ok := r.(*InternalError)
			if !ok {
				panic(r)
			}
			prog, err = nil, ie
		}
	}()

	root := &Function{Name: sh.Name, Params: sh.Params, Locals: sh.Locals}
	c.frames = []*frame{{fn: root, bind: make(map[*ir.Variable]*ir.Variable)}}
	for _, v := range sh.Params {
		c.declare(v)
	}
	for _, v := range sh.Locals {
		c.declare(v)
	}

	prog = &Program{Kind: sh.Kind, Name: sh.Name, Init: &ir.Stream{}, Code: &ir.Stream{}}

	c.out = prog.Init
	if sh.Init != nil {
		c.emit(sh.Init, nil)
	}
	c.out = prog.Code
	if sh.Body != nil {
		c.emit(sh.Body, nil)
	}
	c.out = nil

	if n := c.regs.Locked(); n != 0 {
		c.internal("%d temporaries still locked after %s", n, sh.Name)
	}

	prog.Variables = append(append([]*ir.Variable(nil), c.vars...), c.regs.Temporaries()...)

	if c.diags.HasErrors() || (c.opts.WarningsAsErrors && c.diags.Len() > 0) {
		return nil, c.diags
	}
	prog.Warnings = c.diags.Warnings()
	return prog, nil
}
