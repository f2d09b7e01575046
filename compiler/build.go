// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package compiler

import (
	"strconv"
	"strings"

	"github.com/gogpu/sdrc/ir"
)

func (c *Context) node(t ir.Type) node {
	return node{typ: t, pos: c.pos}
}

func (c *Context) null() Expr {
	return &Null{node: c.node(ir.None)}
}

// Null returns a node that emits nothing.
func (c *Context) Null() Expr { return c.null() }

// Terminal references a variable.
func (c *Context) Terminal(v *ir.Variable) Expr {
	return &Terminal{node: c.node(v.Type), Var: v}
}

// Constant builds a literal whose text is emitted verbatim.
func (c *Context) Constant(text string, t ir.Type) Expr {
	t = t.WithRate(ir.Uniform)
	return &Constant{node: c.node(t), Var: ir.NewConstant(text, t)}
}

// Float builds a float literal.
func (c *Context) Float(f float64) Expr {
	return c.Constant(strconv.FormatFloat(f, 'g', -1, 64), ir.UniformFloat)
}

// String builds a string literal.
func (c *Context) String(s string) Expr {
	return c.Constant(ir.Quote(s), ir.UniformString)
}

// Vector composes a vector of kind k from three values converted to float.
func (c *Context) Vector(k ir.VectorKind, x, y, z Expr) Expr {
	args := [3]Expr{x, y, z}
	for i, a := range args {
		if !c.scalar(a) {
			return c.null()
		}
		args[i] = c.Convert(ir.UniformFloat, a)
		if args[i].Type().Category != ir.CategoryFloat {
			c.Errorf(ErrCategory, "vector components must be float")
			return c.null()
		}
	}
	rate := combinedRate(args[0].Type(), args[1].Type(), args[2].Type())
	return &Vector{node: c.node(ir.VectorOf(k, rate)), X: args[0], Y: args[1], Z: args[2]}
}

// Matrix composes a matrix from sixteen values converted to float.
func (c *Context) Matrix(elems []Expr) Expr {
	if len(elems) != 16 {
		c.Errorf(ErrBinding, "matrix expects 16 components, got %d", len(elems))
		return c.null()
	}
	m := &Matrix{}
	types := make([]ir.Type, 16)
	for i, e := range elems {
		if !c.scalar(e) {
			return c.null()
		}
		m.Elements[i] = c.Convert(ir.UniformFloat, e)
		if m.Elements[i].Type().Category != ir.CategoryFloat {
			c.Errorf(ErrCategory, "matrix components must be float")
			return c.null()
		}
		types[i] = m.Elements[i].Type()
	}
	m.node = c.node(ir.Of(ir.CategoryMatrix, combinedRate(types...)))
	return m
}

// arrayIndex converts an index expression to float.
func (c *Context) arrayIndex(arr *ir.Variable, idx Expr) (Expr, bool) {
	if !arr.Array {
		c.Errorf(ErrCategory, "%s is not an array", arr.Name)
		return nil, false
	}
	if !c.scalar(idx) {
		return nil, false
	}
	idx = c.Convert(ir.UniformFloat, idx)
	if idx.Type().Category != ir.CategoryFloat {
		c.Errorf(ErrCategory, "array index must be float")
		return nil, false
	}
	return idx, true
}

// Index reads arr[idx]. The read is uniform iff both the array and the
// index are.
func (c *Context) Index(arr *ir.Variable, idx Expr) Expr {
	idx, ok := c.arrayIndex(arr, idx)
	if !ok {
		return c.null()
	}
	t := arr.Type.WithRate(combinedRate(arr.Type, idx.Type()))
	return &Index{node: c.node(t), Array: arr, Index: idx}
}

// writable reports an error when v cannot be assigned.
func (c *Context) writable(v *ir.Variable) bool {
	switch {
	case v.Storage == ir.StorageConstant:
		c.Errorf(ErrMutability, "cannot assign to the literal %s", v.CodeName)
		return false
	case v.ReadOnly:
		c.Errorf(ErrMutability, "cannot assign to read-only variable %s", v.Name)
		return false
	}
	return true
}

// AssignIndex writes value to arr[idx].
func (c *Context) AssignIndex(arr *ir.Variable, idx, value Expr) Expr {
	if !c.writable(arr) {
		return c.null()
	}
	idx, ok := c.arrayIndex(arr, idx)
	if !ok || !c.scalar(value) {
		return c.null()
	}
	value = c.Convert(arr.Type, value)
	if value.Type().Category == ir.CategoryNone {
		return c.null()
	}
	if arr.Type.Rate == ir.Uniform && combinedRate(idx.Type(), value.Type()) == ir.Varying {
		c.Errorf(ErrRate, "cannot write varying data into uniform array %s", arr.Name)
		return c.null()
	}
	return &IndexAssign{node: c.node(arr.Type), Array: arr, Index: idx, Value: value}
}

// UpdateIndex applies op to arr[idx] and value, storing the result back.
func (c *Context) UpdateIndex(op *Operator, arr *ir.Variable, idx, value Expr) Expr {
	if !c.writable(arr) {
		return c.null()
	}
	idx, ok := c.arrayIndex(arr, idx)
	if !ok {
		return c.null()
	}
	slot := ir.NewVariable("index", ir.Of(ir.CategoryFloat, arr.Type.Rate), ir.StorageTemporary)
	read := c.Index(arr, c.Terminal(slot))
	combined := c.Binary(op, read, value)
	if combined.Type().Category == ir.CategoryNone {
		return c.null()
	}
	write, ok := c.AssignIndex(arr, c.Terminal(slot), combined).(*IndexAssign)
	if !ok {
		return c.null()
	}
	return &IndexUpdate{node: c.node(arr.Type), Slot: slot, Index: idx, Write: write}
}

// AssignArray stores items into the whole array arr. Literal items
// initializing a shader parameter are also recorded as its default.
func (c *Context) AssignArray(arr *ir.Variable, items []Expr) Expr {
	if !arr.Array {
		c.Errorf(ErrCategory, "%s is not an array", arr.Name)
		return c.null()
	}
	if !c.writable(arr) {
		return c.null()
	}
	if len(items) != arr.Len {
		c.Errorf(ErrBinding, "array %s has %d elements, %d given", arr.Name, arr.Len, len(items))
		return c.null()
	}

	conv := make([]Expr, len(items))
	literals := make([]string, 0, len(items))
	captured := arr.Storage == ir.StorageParameter
	for i, item := range items {
		if !c.scalar(item) {
			return c.null()
		}
		if arr.Type.Rate == ir.Uniform && item.Type().Rate == ir.Varying {
			c.Errorf(ErrRate, "cannot assign varying to uniform %s", arr.Name)
			return c.null()
		}
		text, ok := literalText(item)
		if !ok || strings.HasPrefix(text, `"`) && arr.Type.Category != ir.CategoryString {
			captured = false
		}
		literals = append(literals, text)
		conv[i] = c.Convert(arr.Type, item)
		if conv[i].Type().Category == ir.CategoryNone {
			return c.null()
		}
	}
	if captured {
		arr.Default = "[ " + strings.Join(literals, " ") + " ]"
	}
	return &ArrayMove{node: c.node(ir.None), Array: arr, Items: conv}
}

// Binary builds a two-operand operation. Operands of different categories
// are promoted toward the higher of string, matrix, vector, float, boolean.
// Operands left without a value by earlier errors yield Null silently.
func (c *Context) Binary(op *Operator, a, b Expr) Expr {
	ta, tb := a.Type(), b.Type()
	if ta.Category == ir.CategoryNone || tb.Category == ir.CategoryNone {
		return c.null()
	}
	if !c.scalar(a) || !c.scalar(b) {
		return c.null()
	}

	rate := combinedRate(ta, tb)
	t := promoted(ta, tb, rate)
	opcode := op.Opcode(t.Category)
	if opcode == "" {
		c.Errorf(ErrCategory, "operator %s is not defined for %s", op.Name, t.Name())
		return c.null()
	}
	a, b = c.Convert(t, a), c.Convert(t, b)
	if a.Type().Category == ir.CategoryNone || b.Type().Category == ir.CategoryNone {
		return c.null()
	}
	if op.Result != ir.CategoryNone {
		t = ir.Of(op.Result, rate)
	}
	return &Binary{node: c.node(t), Op: opcode, A: a, B: b}
}

// Unary builds a one-operand operation.
func (c *Context) Unary(op *Operator, a Expr) Expr {
	t := a.Type()
	if t.Category == ir.CategoryNone || !c.scalar(a) {
		return c.null()
	}
	opcode := op.Opcode(t.Category)
	if opcode == "" {
		c.Errorf(ErrCategory, "operator %s is not defined for %s", op.Name, t.Name())
		return c.null()
	}
	if op.Result != ir.CategoryNone {
		t = ir.Of(op.Result, t.Rate)
	}
	return &Unary{node: c.node(t), Op: opcode, A: a}
}

// condition checks that e is a boolean.
func (c *Context) condition(e Expr) bool {
	switch e.Type().Category {
	case ir.CategoryBoolean:
		return true
	case ir.CategoryNone:
		return false
	}
	c.Errorf(ErrCategory, "condition must be a relation, not %s", e.Type().Name())
	return false
}

// Conditional builds cond ? a : b.
func (c *Context) Conditional(cond, a, b Expr) Expr {
	if !c.condition(cond) {
		return c.null()
	}
	ta, tb := a.Type(), b.Type()
	if ta.Category == ir.CategoryNone || tb.Category == ir.CategoryNone || !c.scalar(a) || !c.scalar(b) {
		return c.null()
	}
	rate := combinedRate(cond.Type(), ta, tb)
	t := promoted(ta, tb, rate)
	a, b = c.Convert(t, a), c.Convert(t, b)
	if a.Type().Category == ir.CategoryNone || b.Type().Category == ir.CategoryNone {
		return c.null()
	}
	return &Conditional{node: c.node(t), Cond: cond, True: a, False: b}
}

// literalText renders e as a literal when it is one: a constant, a vector
// or matrix of constants, or a system conversion of such.
func literalText(e Expr) (string, bool) {
	switch n := e.(type) {
	case *Constant:
		return n.Var.CodeName, true
	case *Vector:
		return literalList(n.X, n.Y, n.Z)
	case *Matrix:
		return literalList(n.Elements[:]...)
	case *SystemConvert:
		text, ok := literalText(n.A)
		if !ok {
			return "", false
		}
		return ir.Quote(n.System) + " " + text, true
	}
	return "", false
}

func literalList(elems ...Expr) (string, bool) {
	parts := make([]string, len(elems))
	for i, e := range elems {
		text, ok := literalText(e)
		if !ok {
			return "", false
		}
		parts[i] = text
	}
	return "[ " + strings.Join(parts, " ") + " ]", true
}

// Assign stores e into v.
//
// For shader parameters a literal e is recorded as the parameter's default;
// no code is produced for it unless it names a coordinate system.
func (c *Context) Assign(v *ir.Variable, e Expr) Expr {
	if e.Type().Category == ir.CategoryNone {
		if _, isNull := e.(*Null); !isNull {
			c.Errorf(ErrCategory, "expression assigned to %s has no value", v.Name)
		}
		return c.null()
	}
	if v.Array {
		c.Errorf(ErrCategory, "cannot assign to the whole array %s", v.Name)
		return c.null()
	}
	if !c.writable(v) || !c.scalar(e) {
		return c.null()
	}
	if v.Type.Rate == ir.Uniform && e.Type().Rate == ir.Varying {
		c.Errorf(ErrRate, "cannot assign varying to uniform %s", v.Name)
		return c.null()
	}

	if v.Storage == ir.StorageParameter {
		if text, ok := literalText(e); ok {
			if promotionOp(e.Type().Category, v.Type.Category) == "" {
				c.Errorf(ErrCategory, "default value of %s: cannot convert %s to %s", v.Name, e.Type().Name(), v.Type.Name())
				return c.null()
			}
			v.Default = text
			if v.Type.Category == ir.CategoryString || !strings.HasPrefix(text, `"`) {
				return c.null()
			}
		}
	}
	return &Assign{node: c.node(v.Type), Var: v, Value: e}
}

// AssignAll assigns e to every variable of vars, the last one first, each
// assignment feeding the next.
func (c *Context) AssignAll(vars []*ir.Variable, e Expr) Expr {
	for i := len(vars) - 1; i >= 0; i-- {
		e = c.Assign(vars[i], e)
	}
	return e
}

// Update builds a compound assignment v op= e. When pre is false the node's
// value is v before the update.
func (c *Context) Update(op *Operator, v *ir.Variable, e Expr, pre bool) Expr {
	if v.Array {
		c.Errorf(ErrCategory, "cannot update the whole array %s", v.Name)
		return c.null()
	}
	if !c.writable(v) || e.Type().Category == ir.CategoryNone || !c.scalar(e) {
		return c.null()
	}
	if v.Type.Rate == ir.Uniform && e.Type().Rate == ir.Varying {
		c.Errorf(ErrRate, "cannot assign varying to uniform %s", v.Name)
		return c.null()
	}
	opcode := op.Opcode(v.Type.Category)
	if opcode == "" {
		c.Errorf(ErrCategory, "operator %s= is not defined for %s", op.Name, v.Type.Name())
		return c.null()
	}
	e = c.Convert(v.Type, e)
	if e.Type().Category == ir.CategoryNone {
		return c.null()
	}
	return &Update{node: c.node(v.Type), Var: v, Op: opcode, Value: e, Pre: pre}
}

// Sequence emits a and then b.
func (c *Context) Sequence(a, b Expr) Expr {
	return &Sequence{node: c.node(ir.None.WithRate(combinedRate(a.Type(), b.Type()))), First: a, Second: b}
}

// Block emits stmts in order.
func (c *Context) Block(stmts ...Expr) Expr {
	types := make([]ir.Type, len(stmts))
	for i, s := range stmts {
		types[i] = s.Type()
	}
	return &Block{node: c.node(ir.None.WithRate(combinedRate(types...))), Stmts: stmts}
}

// Raw emits one instruction verbatim.
func (c *Context) Raw(op string, operands ...string) Expr {
	return &Raw{node: c.node(ir.None), Op: op, Operands: operands}
}

// Break leaves the innermost loop.
func (c *Context) Break() Expr { return c.Raw(ir.OpBreak) }

// Continue starts the next iteration of the innermost loop.
func (c *Context) Continue() Expr { return c.Raw(ir.OpContinue) }
