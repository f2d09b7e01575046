// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package compiler

import (
	"github.com/gogpu/sdrc/ir"
)

// If builds a conditional statement. els may be nil.
func (c *Context) If(cond, then, els Expr) Expr {
	if !c.condition(cond) {
		return c.null()
	}
	return &If{node: c.node(ir.None), Cond: cond, Then: then, Else: els}
}

// For builds a loop. init and update may be nil.
func (c *Context) For(init, cond, update, body Expr) Expr {
	if !c.condition(cond) {
		return c.null()
	}
	return &Loop{node: c.node(ir.None), Init: init, Cond: cond, Update: update, Body: body}
}

// While builds a loop without init and update.
func (c *Context) While(cond, body Expr) Expr {
	return c.For(nil, cond, nil, body)
}

// optional converts a present operand to t and reports whether the
// conversion succeeded.
func (c *Context) optional(e *Expr, t ir.Type) bool {
	if *e == nil {
		return true
	}
	if !c.scalar(*e) {
		return false
	}
	*e = c.Convert(t, *e)
	return (*e).Type().Category != ir.CategoryNone
}

var (
	anyString = ir.Of(ir.CategoryString, ir.Uniform)
	anyFloat  = ir.Of(ir.CategoryFloat, ir.Uniform)
	anyPoint  = ir.VectorOf(ir.VectorPoint, ir.Uniform)
	anyVector = ir.VectorOf(ir.VectorGeneric, ir.Uniform)
)

// Illuminance builds a loop over the light sources reaching a surface
// point. category, p, n and angle are independent optional filters.
func (c *Context) Illuminance(category, p, n, angle, body Expr) Expr {
	if !c.optional(&category, anyString) || !c.optional(&p, anyPoint) ||
		!c.optional(&n, anyVector) || !c.optional(&angle, anyFloat) {
		return c.null()
	}
	return &Illuminance{node: c.node(ir.None), Category: category, P: p, N: n, Angle: angle, Body: body}
}

// Illuminate builds the emission construct of a positional light. p, n and
// angle may be nil.
func (c *Context) Illuminate(p, n, angle, body Expr) Expr {
	return c.lightSource(ir.OpIlluminate, ir.OpEndIlluminate, p, n, angle, body)
}

// Solar builds the emission construct of a distant light. axis and angle
// may be nil.
func (c *Context) Solar(axis, angle, body Expr) Expr {
	return c.lightSource(ir.OpSolar, ir.OpEndSolar, nil, axis, angle, body)
}

func (c *Context) lightSource(begin, end string, p, n, angle, body Expr) Expr {
	if !c.optional(&p, anyPoint) || !c.optional(&n, anyVector) || !c.optional(&angle, anyFloat) {
		return c.null()
	}
	return &LightSource{node: c.node(ir.None), Begin: begin, End: end, P: p, N: n, Angle: angle, Body: body}
}

// Gather builds a ray sampling loop from its argument list: category,
// origin, direction, cone angle, sample count, then (name, variable)
// pairs. els may be nil.
func (c *Context) Gather(args []Expr, body, els Expr) Expr {
	if len(args) < 5 {
		c.Errorf(ErrBinding, "gather expects a category, a point, a direction, an angle and a sample count")
		return c.null()
	}
	if (len(args)-5)%2 != 0 {
		c.Errorf(ErrBinding, "gather expects name/value pairs after the sample count")
		return c.null()
	}

	g := &Gather{node: c.node(ir.None), Category: args[0], P: args[1], Dir: args[2], Angle: args[3], Samples: args[4], Body: body, Else: els}
	if !c.optional(&g.Category, anyString) || !c.optional(&g.P, anyPoint) || !c.optional(&g.Dir, anyVector) ||
		!c.optional(&g.Angle, anyFloat) || !c.optional(&g.Samples, anyFloat) {
		return c.null()
	}
	for i := 5; i < len(args); i += 2 {
		name := args[i]
		if !c.optional(&name, anyString) || !c.scalar(args[i+1]) {
			return c.null()
		}
		g.Pairs = append(g.Pairs, GatherPair{Name: name, Value: args[i+1]})
	}
	return g
}

func (c *Context) emitIf(n *If) {
	end := c.label()
	target := end
	var els string
	if n.Else != nil {
		els = c.label()
		target = els
	}

	ops := c.operands()
	defer ops.release()
	cond := ops.take(n.Cond, n.Cond.Type().Rate)
	if cond == nil {
		return
	}
	c.out.Emit(ir.OpIf, cond.CodeName, target)
	c.emit(n.Then, nil)
	if n.Else != nil {
		c.out.Label(els)
		c.out.Emit(ir.OpElse, end)
		c.emit(n.Else, nil)
	}
	c.out.Label(end)
	c.out.Emit(ir.OpEndIf)
}

// emitLoop writes:
//
//	init
//	forbegin @body @cont @end
//	@body: cond; for c
//	body
//	@cont: update
//	@end: forend @body
func (c *Context) emitLoop(n *Loop) {
	if n.Init != nil {
		c.emit(n.Init, nil)
	}
	body, cont, end := c.label(), c.label(), c.label()
	c.out.Emit(ir.OpForBegin, body, cont, end)
	c.out.Label(body)

	ops := c.operands()
	cond := ops.take(n.Cond, n.Cond.Type().Rate)
	if cond != nil {
		c.out.Emit(ir.OpFor, cond.CodeName)
	}
	ops.release()

	c.emit(n.Body, nil)
	c.out.Label(cont)
	if n.Update != nil {
		c.emit(n.Update, nil)
	}
	c.out.Label(end)
	c.out.Emit(ir.OpForEnd, body)
}

// takeOptional appends the storage of every present operand, each at its
// own rate.
func takeOptional(ops *operands, operands []string, exprs ...Expr) []string {
	for _, e := range exprs {
		if e == nil {
			continue
		}
		if v := ops.take(e, e.Type().Rate); v != nil {
			operands = append(operands, v.CodeName)
		}
	}
	return operands
}

func (c *Context) emitIlluminance(n *Illuminance) {
	begin, end := c.label(), c.label()
	ops := c.operands()
	defer ops.release()

	operands := takeOptional(ops, nil, n.P, n.N, n.Angle)
	operands = append(operands, begin, end)
	operands = takeOptional(ops, operands, n.Category)
	if ops.failed {
		return
	}

	c.out.Emit(ir.OpIlluminance, operands...)
	c.out.Label(begin)
	c.emit(n.Body, nil)
	c.out.Label(end)
	c.out.Emit(ir.OpEndIlluminance)
}

func (c *Context) emitLightSource(n *LightSource) {
	end := c.label()
	ops := c.operands()
	defer ops.release()

	operands := takeOptional(ops, nil, n.P, n.N, n.Angle)
	if ops.failed {
		return
	}
	c.out.Emit(n.Begin, append(operands, end)...)
	c.emit(n.Body, nil)
	c.out.Label(end)
	c.out.Emit(n.End)
}

// gatherPrototype is the fixed part of the gather header prototype:
// no result, category, origin, direction, angle, samples.
const gatherPrototype = "o=spnff"

func (c *Context) emitGather(n *Gather) {
	ops := c.operands()
	defer ops.release()

	header := takeOptional(ops, nil, n.Category, n.P, n.Dir, n.Angle, n.Samples)
	if ops.failed {
		return
	}

	proto := []byte(gatherPrototype)
	for i, pair := range n.Pairs {
		name := c.variableOf(pair.Name)
		if name == nil || name.Type.Rate != ir.Uniform {
			c.Errorf(ErrBinding, "gather output %d: the name must be a uniform variable or a literal", i+1)
			return
		}
		value := c.variableOf(pair.Value)
		if value == nil {
			c.Errorf(ErrBinding, "gather output %d: the destination must be a variable", i+1)
			return
		}
		switch code := value.Type.Code(); code {
		case 'f', 'v', 'n', 'p', 'c', 'm', 's':
			proto = append(proto, code)
		default:
			c.Errorf(ErrCategory, "gather output %d: unsupported type %s", i+1, value.Type.Name())
			return
		}
		header = append(header, name.CodeName, value.CodeName)
	}

	begin, end := c.label(), c.label()
	target := end
	var els string
	if n.Else != nil {
		els = c.label()
		target = els
	}

	c.out.Emit(ir.OpGatherHeader, append([]string{ir.Quote(string(proto))}, header...)...)
	c.out.Label(begin)
	c.out.Emit(ir.OpGather, target)
	c.emit(n.Body, nil)
	if n.Else != nil {
		c.out.Label(els)
		c.out.Emit(ir.OpGatherElse, end)
		c.emit(n.Else, nil)
	}
	c.out.Label(end)
	c.out.Emit(ir.OpGatherEnd, begin)
}
