// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package compiler

import (
	"github.com/gogpu/sdrc/ir"
)

// promotionOp returns the instruction that moves a value of category from
// into storage of category to, or "" when no implicit conversion exists.
func promotionOp(from, to ir.Category) string {
	switch {
	case from == to:
		return ir.MoveOp(to)
	case from == ir.CategoryFloat && to == ir.CategoryVector:
		return ir.OpVectorFromFloat
	case from == ir.CategoryFloat && to == ir.CategoryMatrix:
		return ir.OpMatrixFromFloat
	case from == ir.CategoryVector && to == ir.CategoryMatrix:
		return ir.OpMatrixFromVector
	}
	return ""
}

// systemOp returns the instruction converting from a named system into a
// value of type t.
func systemOp(t ir.Type) string {
	switch t.Category {
	case ir.CategoryVector:
		switch t.Vector {
		case ir.VectorPoint:
			return ir.OpPointFromSystem
		case ir.VectorColor:
			return ir.OpColorFromSystem
		default:
			return ir.OpVectorFromSystem
		}
	case ir.CategoryMatrix:
		return ir.OpMatrixFromSystem
	}
	return ""
}

// Convert converts e to the category of to. The rate of e is kept. The
// result is e itself when the categories already match, a promotion node
// for float to vector, float to matrix and vector to matrix, and a Null
// node with a reported error otherwise.
func (c *Context) Convert(to ir.Type, e Expr) Expr {
	from := e.Type()
	if from.Category == ir.CategoryNone || from.Category == to.Category {
		return e
	}
	if !c.scalar(e) {
		return c.null()
	}
	op := promotionOp(from.Category, to.Category)
	if op == "" {
		c.Errorf(ErrCategory, "cannot convert %s to %s", from.Name(), to.Name())
		return c.null()
	}
	t := to.WithRate(from.Rate)
	return &Unary{node: c.node(t), Op: op, A: e}
}

// SystemConvert builds an explicit conversion of e from the named system to
// type to, e.g. point "world" (0, 0, 0).
func (c *Context) SystemConvert(to ir.Type, system string, e Expr) Expr {
	op := systemOp(to)
	if op == "" {
		c.Errorf(ErrCategory, "%s cannot be converted from a named system", to.Name())
		return c.null()
	}
	e = c.Convert(to, e)
	if e.Type().Category == ir.CategoryNone {
		return c.null()
	}
	return &SystemConvert{node: c.node(to.WithRate(e.Type().Rate)), Op: op, System: system, A: e}
}

// scalar reports an error and returns false when e denotes a whole array.
func (c *Context) scalar(e Expr) bool {
	if t, ok := e.(*Terminal); ok && t.Var.Array {
		c.Errorf(ErrCategory, "array %s cannot be used as a value", t.Var.Name)
		return false
	}
	return true
}

// variableOf returns the storage equivalent to e, resolved through the
// current activation, or nil when e must be evaluated.
func (c *Context) variableOf(e Expr) *ir.Variable {
	switch n := e.(type) {
	case *Terminal:
		return c.resolve(n.Var)
	case *Constant:
		return n.Var
	}
	return nil
}

// move copies src into dest. Both have the same rate; the category may be
// promoted.
func (c *Context) move(dest, src *ir.Variable) {
	if dest.Type.Rate != src.Type.Rate {
		c.internal("move of %s %s into %s %s", src.Type.Rate, src.Name, dest.Type.Rate, dest.Name)
	}
	op := promotionOp(src.Type.Category, dest.Type.Category)
	if op == "" {
		c.Errorf(ErrCategory, "cannot convert %s to %s", src.Type.Name(), dest.Type.Name())
		return
	}
	c.out.Emit(op, dest.CodeName, src.CodeName)
}

// copyTo copies src into dest, broadcasting when dest is varying and src is
// uniform.
func (c *Context) copyTo(dest, src *ir.Variable) {
	switch {
	case dest.Type.Rate == src.Type.Rate:
		c.move(dest, src)
	case dest.Type.Rate == ir.Uniform:
		c.Errorf(ErrRate, "cannot assign varying to uniform %s", dest.Name)
	case dest.Type.Category == src.Type.Category:
		c.out.Emit(ir.BroadcastOp(dest.Type.Category), dest.CodeName, src.CodeName)
	default:
		tmp := c.regs.Lock(dest.Type.WithRate(src.Type.Rate))
		c.move(tmp, src)
		c.out.Emit(ir.BroadcastOp(dest.Type.Category), dest.CodeName, tmp.CodeName)
		c.regs.Release(tmp)
	}
}

// materialize evaluates e into dest, converting rate and category.
//
// When the rates differ, e is converted to dest's category, evaluated into
// a temporary of its own rate unless it already is a variable, and
// broadcast. A bare variable is moved. Anything else is emitted straight
// into dest, or through one temporary plus a promoting move when the
// categories differ.
func (c *Context) materialize(dest *ir.Variable, e Expr) {
	t := e.Type()
	if t.Category == ir.CategoryNone {
		return
	}

	if dest.Type.Rate != t.Rate {
		if dest.Type.Rate == ir.Uniform {
			c.Errorf(ErrRate, "cannot assign varying to uniform %s", dest.Name)
			return
		}
		conv := c.Convert(dest.Type, e)
		ops := c.operands()
		if src := ops.take(conv, t.Rate); src != nil {
			c.out.Emit(ir.BroadcastOp(dest.Type.Category), dest.CodeName, src.CodeName)
		}
		ops.release()
		return
	}

	if v := c.variableOf(e); v != nil {
		c.copyTo(dest, v)
		return
	}
	if dest.Type.Category == t.Category {
		c.emit(e, dest)
		return
	}
	if promotionOp(t.Category, dest.Type.Category) == "" {
		c.Errorf(ErrCategory, "cannot convert %s to %s", t.Name(), dest.Type.Name())
		return
	}
	tmp := c.regs.Lock(t)
	c.emit(e, tmp)
	c.move(dest, tmp)
	c.regs.Release(tmp)
}

// operands collects the operand storage of one instruction and releases the
// temporaries it locked, in reverse order.
type operands struct {
	c      *Context
	held   []*ir.Variable
	failed bool
}

func (c *Context) operands() *operands {
	return &operands{c: c}
}

func (o *operands) lock(t ir.Type) *ir.Variable {
	v := o.c.regs.Lock(t)
	o.held = append(o.held, v)
	return v
}

// take returns storage holding e's value at rate r. Variables and constants
// of that rate are used directly; everything else is evaluated into a
// locked temporary, broadcasting a uniform value when r is varying. It
// returns nil, and marks the operand list failed, when e has no value or is
// varying while r is uniform.
func (o *operands) take(e Expr, r ir.Rate) *ir.Variable {
	c := o.c
	t := e.Type()
	if t.Category == ir.CategoryNone {
		o.failed = true
		return nil
	}

	if v := c.variableOf(e); v != nil {
		if v.Type.Rate == r {
			return v
		}
		if r == ir.Uniform {
			c.Errorf(ErrRate, "varying %s used where a uniform value is required", v.Name)
			o.failed = true
			return nil
		}
		tmp := o.lock(v.Type.WithRate(r))
		c.out.Emit(ir.BroadcastOp(t.Category), tmp.CodeName, v.CodeName)
		return tmp
	}

	if t.Rate == r {
		tmp := o.lock(t)
		c.emit(e, tmp)
		return tmp
	}
	if r == ir.Uniform {
		c.Errorf(ErrRate, "varying value used where a uniform value is required")
		o.failed = true
		return nil
	}
	tmp := o.lock(t.WithRate(r))
	u := c.regs.Lock(t)
	c.emit(e, u)
	c.out.Emit(ir.BroadcastOp(t.Category), tmp.CodeName, u.CodeName)
	c.regs.Release(u)
	return tmp
}

func (o *operands) release() {
	for i := len(o.held) - 1; i >= 0; i-- {
		o.c.regs.Release(o.held[i])
	}
	o.held = nil
}
