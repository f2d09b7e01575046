// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package compiler

import (
	"github.com/gogpu/sdrc/ir"
)

// Call builds a call of a user function. Arguments are converted to the
// parameter categories. A call with the wrong number of arguments is an
// error and compiles to nothing.
func (c *Context) Call(fn *Function, args []Expr) Expr {
	if len(args) != len(fn.Params) {
		c.Errorf(ErrBinding, "%s expects %d arguments, got %d", fn.Name, len(fn.Params), len(args))
		return c.null()
	}

	conv := make([]Expr, len(args))
	for i, a := range args {
		p := fn.Params[i]
		if p.Array {
			t, ok := a.(*Terminal)
			if !ok || !t.Var.Array || t.Var.Len != p.Len || t.Var.Type.Category != p.Type.Category {
				c.Errorf(ErrBinding, "argument %d of %s must be an array of %d %s", i+1, fn.Name, p.Len, p.Type.Name())
				return c.null()
			}
			if p.Type.IsUniform() && !t.Var.Type.IsUniform() {
				c.Errorf(ErrRate, "varying array %s passed to uniform parameter %s of %s", t.Var.Name, p.Name, fn.Name)
				return c.null()
			}
			conv[i] = a
			continue
		}
		if !c.scalar(a) {
			return c.null()
		}
		conv[i] = c.Convert(p.Type, a)
		if conv[i].Type().Category == ir.CategoryNone && a.Type().Category != ir.CategoryNone {
			return c.null()
		}
	}

	t := ir.None
	if fn.Return != nil {
		t = fn.Return.Type
	}
	return &Call{node: c.node(t), Fn: fn, Args: conv}
}

// emitCall inlines the callee under a new activation frame. Arguments that
// already are variables of the parameter's rate are bound directly, so
// assignments to a parameter reach the caller's storage.
func (c *Context) emitCall(n *Call, dest *ir.Variable) {
	fn := n.Fn
	for _, f := range c.frames {
		if f.fn == fn {
			c.Errorf(ErrBinding, "recursive call to %s", fn.Name)
			return
		}
	}
	if fn.Body == nil {
		c.Errorf(ErrBinding, "%s is declared but never defined", fn.Name)
		return
	}

	fr := &frame{fn: fn, bind: make(map[*ir.Variable]*ir.Variable)}
	var result *ir.Variable
	if fn.Return != nil {
		result = dest
		if result == nil {
			result = c.regs.Lock(fn.Return.Type)
			defer c.regs.Release(result)
		}
		fr.bind[fn.Return] = result
	} else if dest != nil {
		c.Errorf(ErrCategory, "%s does not return a value", fn.Name)
		return
	}

	ops := c.operands()
	defer ops.release()
	for i, p := range fn.Params {
		if p.Array {
			fr.bind[p] = c.variableOf(n.Args[i])
			continue
		}
		if v := ops.take(n.Args[i], p.Type.Rate); v != nil {
			fr.bind[p] = v
		}
	}
	if ops.failed {
		return
	}

	for _, v := range fn.Locals {
		if v.Storage != ir.StorageExtern {
			c.declare(v)
			continue
		}
		w := c.lookupExtern(v.Name)
		if w == nil {
			c.Errorf(ErrBinding, "extern %s of %s does not match any visible variable", v.Name, fn.Name)
			return
		}
		if w.Type.Category != v.Type.Category || w.Array != v.Array {
			c.Errorf(ErrBinding, "extern %s of %s is declared %s but the variable is %s", v.Name, fn.Name, v.Type.Name(), w.Type.Name())
			return
		}
		if v.Type.IsUniform() && !w.Type.IsUniform() {
			c.Errorf(ErrRate, "extern %s of %s is declared uniform but the variable is varying", v.Name, fn.Name)
			return
		}
		fr.bind[v] = w
	}

	c.frames = append(c.frames, fr)
	c.emit(fn.Body, nil)
	c.frames = c.frames[:len(c.frames)-1]
}
