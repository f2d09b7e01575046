// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package compiler

import (
	"strconv"

	"github.com/gogpu/sdrc/ir"
)

// emit writes the code of e. dest, when not nil, is resolved storage of e's
// category and rate that receives the value. Statements take a nil dest.
func (c *Context) emit(e Expr, dest *ir.Variable) {
	saved := c.pos
	c.pos = e.Pos()
	defer func() { c.pos = saved }()

	switch n := e.(type) {
	case *Null:
	case *Terminal:
		c.emitReference(c.resolve(n.Var), dest)
	case *Constant:
		c.emitReference(n.Var, dest)
	case *Vector:
		c.emitOperation(dest, ir.OpComposeVector, n.typ.Rate, n.X, n.Y, n.Z)
	case *Matrix:
		c.emitOperation(dest, ir.OpComposeMatrix, n.typ.Rate, n.Elements[:]...)
	case *Index:
		c.emitIndex(n, dest)
	case *IndexAssign:
		c.emitIndexAssign(n, dest)
	case *IndexUpdate:
		c.emitIndexUpdate(n, dest)
	case *ArrayMove:
		c.emitArrayMove(n, dest)
	case *Binary:
		c.emitOperation(dest, n.Op, n.typ.Rate, n.A, n.B)
	case *Unary:
		c.emitOperation(dest, n.Op, n.typ.Rate, n.A)
	case *SystemConvert:
		c.emitSystemConvert(n, dest)
	case *Conditional:
		c.emitConditional(n, dest)
	case *Assign:
		c.emitAssign(n, dest)
	case *Update:
		c.emitUpdate(n, dest)
	case *Sequence:
		c.statement(dest)
		c.emit(n.First, nil)
		c.emit(n.Second, nil)
	case *Block:
		c.statement(dest)
		for _, s := range n.Stmts {
			c.emit(s, nil)
		}
	case *Call:
		c.emitCall(n, dest)
	case *BuiltinCall:
		c.emitBuiltin(n, dest)
	case *If:
		c.statement(dest)
		c.emitIf(n)
	case *Loop:
		c.statement(dest)
		c.emitLoop(n)
	case *Illuminance:
		c.statement(dest)
		c.emitIlluminance(n)
	case *LightSource:
		c.statement(dest)
		c.emitLightSource(n)
	case *Gather:
		c.statement(dest)
		c.emitGather(n)
	case *Raw:
		c.statement(dest)
		c.out.Emit(n.Op, n.Operands...)
	default:
		c.internal("unknown node %T", e)
	}
}

// statement rejects a destination for nodes without a value.
func (c *Context) statement(dest *ir.Variable) {
	if dest != nil {
		c.internal("statement emitted into %s", dest.Name)
	}
}

// useless warns about a value nobody receives and reports whether dest is nil.
func (c *Context) useless(dest *ir.Variable) bool {
	if dest == nil {
		c.Warnf(ErrUsage, "useless expression")
		return true
	}
	return false
}

func (c *Context) emitReference(v, dest *ir.Variable) {
	if c.useless(dest) {
		return
	}
	c.copyTo(dest, v)
}

// emitOperation emits "op dest args..." with every argument taken at rate.
func (c *Context) emitOperation(dest *ir.Variable, op string, rate ir.Rate, args ...Expr) {
	if c.useless(dest) {
		return
	}
	ops := c.operands()
	operands := []string{dest.CodeName}
	for _, a := range args {
		if v := ops.take(a, rate); v != nil {
			operands = append(operands, v.CodeName)
		}
	}
	if !ops.failed {
		c.out.Emit(op, operands...)
	}
	ops.release()
}

func (c *Context) emitSystemConvert(n *SystemConvert, dest *ir.Variable) {
	if c.useless(dest) {
		return
	}
	ops := c.operands()
	if v := ops.take(n.A, n.typ.Rate); v != nil {
		c.out.Emit(n.Op, dest.CodeName, ir.Quote(n.System), v.CodeName)
	}
	ops.release()
}

func (c *Context) emitIndex(n *Index, dest *ir.Variable) {
	if c.useless(dest) {
		return
	}
	arr := c.resolve(n.Array)
	if !arr.Type.IsUniform() && n.typ.IsUniform() {
		c.internal("uniform read of varying array %s", arr.Name)
	}
	ops := c.operands()
	if idx := ops.take(n.Index, n.typ.Rate); idx != nil {
		crossing := arr.Type.Rate != n.typ.Rate
		c.out.Emit(ir.ArrayReadOp(arr.Type.Category, crossing), dest.CodeName, arr.CodeName, idx.CodeName)
	}
	ops.release()
}

func (c *Context) emitIndexAssign(n *IndexAssign, dest *ir.Variable) {
	arr := c.resolve(n.Array)
	if !c.writable(arr) {
		return
	}
	ops := c.operands()
	idx := ops.take(n.Index, arr.Type.Rate)
	val := ops.take(n.Value, arr.Type.Rate)
	if !ops.failed {
		c.out.Emit(ir.ArrayWriteOp(arr.Type.Category), arr.CodeName, idx.CodeName, val.CodeName)
		if dest != nil {
			c.copyTo(dest, val)
		}
	}
	ops.release()
}

func (c *Context) emitIndexUpdate(n *IndexUpdate, dest *ir.Variable) {
	arr := c.resolve(n.Write.Array)
	slot := c.regs.Lock(ir.Of(ir.CategoryFloat, arr.Type.Rate))
	c.materialize(slot, n.Index)
	c.bindTop(n.Slot, slot)
	c.emit(n.Write, dest)
	c.bindTop(n.Slot, nil)
	c.regs.Release(slot)
}

func (c *Context) emitArrayMove(n *ArrayMove, dest *ir.Variable) {
	if dest != nil {
		c.Errorf(ErrCategory, "array assignment to %s has no value", n.Array.Name)
		return
	}
	arr := c.resolve(n.Array)
	if !c.writable(arr) {
		return
	}
	op := ir.ArrayWriteOp(arr.Type.Category)
	for i := len(n.Items) - 1; i >= 0; i-- {
		ops := c.operands()
		if v := ops.take(n.Items[i], arr.Type.Rate); v != nil {
			c.out.Emit(op, arr.CodeName, strconv.Itoa(i), v.CodeName)
		}
		ops.release()
	}
}

func (c *Context) emitConditional(n *Conditional, dest *ir.Variable) {
	if c.useless(dest) {
		return
	}
	els, end := c.label(), c.label()
	ops := c.operands()
	cond := ops.take(n.Cond, n.Cond.Type().Rate)
	if cond == nil {
		ops.release()
		return
	}
	c.out.Emit(ir.OpIf, cond.CodeName, els)
	ops.release()

	c.materialize(dest, n.True)
	c.out.Label(els)
	c.out.Emit(ir.OpElse, end)
	c.materialize(dest, n.False)
	c.out.Label(end)
	c.out.Emit(ir.OpEndIf)
}

func (c *Context) emitAssign(n *Assign, dest *ir.Variable) {
	v := c.resolve(n.Var)
	if !c.writable(v) {
		return
	}
	c.materialize(v, n.Value)
	if dest != nil {
		c.copyTo(dest, v)
	}
}

func (c *Context) emitUpdate(n *Update, dest *ir.Variable) {
	v := c.resolve(n.Var)
	if !c.writable(v) {
		return
	}
	if dest != nil && !n.Pre {
		c.copyTo(dest, v)
	}
	ops := c.operands()
	if rhs := ops.take(n.Value, v.Type.Rate); rhs != nil {
		c.out.Emit(n.Op, v.CodeName, v.CodeName, rhs.CodeName)
	}
	ops.release()
	if dest != nil && n.Pre {
		c.copyTo(dest, v)
	}
}
