// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package sl

import (
	"github.com/gogpu/sdrc/compiler"
	"github.com/gogpu/sdrc/ir"
)

var binaryOps = map[TokenKind]*compiler.Operator{
	TokenPlus:         compiler.OpAdd,
	TokenMinus:        compiler.OpSub,
	TokenStar:         compiler.OpMul,
	TokenSlash:        compiler.OpDiv,
	TokenDot:          compiler.OpDot,
	TokenCaret:        compiler.OpCross,
	TokenEqualEqual:   compiler.OpEqual,
	TokenBangEqual:    compiler.OpNotEqual,
	TokenLess:         compiler.OpLess,
	TokenGreater:      compiler.OpGreater,
	TokenLessEqual:    compiler.OpLessEqual,
	TokenGreaterEqual: compiler.OpGreaterEqual,
	TokenAmpAmp:       compiler.OpAnd,
	TokenPipePipe:     compiler.OpOr,
}

var compoundOps = map[TokenKind]*compiler.Operator{
	TokenPlusEqual:  compiler.OpAdd,
	TokenMinusEqual: compiler.OpSub,
	TokenStarEqual:  compiler.OpMul,
	TokenSlashEqual: compiler.OpDiv,
	TokenPlusPlus:   compiler.OpAdd,
	TokenMinusMinus: compiler.OpSub,
}

func (l *Lowerer) exprs(list []Expr) []compiler.Expr {
	out := make([]compiler.Expr, len(list))
	for i, e := range list {
		out[i] = l.expr(e, ir.None)
	}
	return out
}

// expr lowers an expression. want is the type the context expects; it picks
// built-in overloads and the kind of tuples, and is ir.None when the
// context expects nothing in particular.
func (l *Lowerer) expr(e Expr, want ir.Type) compiler.Expr {
	c := l.c
	switch e := e.(type) {
	case *NumberLit:
		l.at(e)
		return c.Float(e.Value)
	case *StringLit:
		l.at(e)
		return c.String(e.Value)
	case *Ident:
		l.at(e)
		v := l.variable(e.Name)
		if v == nil {
			return c.Null()
		}
		return c.Terminal(v)
	case *BinaryExpr:
		a := l.expr(e.Left, ir.None)
		b := l.expr(e.Right, ir.None)
		l.at(e)
		return c.Binary(binaryOps[e.Op], a, b)
	case *UnaryExpr:
		return l.unary(e, want)
	case *AssignExpr:
		return l.assign(e)
	case *IncDecExpr:
		return l.incDec(e)
	case *CondExpr:
		cond := l.expr(e.Cond, ir.None)
		a := l.expr(e.Then, want)
		b := l.expr(e.Else, want)
		l.at(e)
		return c.Conditional(cond, a, b)
	case *CallExpr:
		return l.call(e, want)
	case *IndexExpr:
		arr, idx := l.element(e)
		if arr == nil {
			return c.Null()
		}
		l.at(e)
		return c.Index(arr, idx)
	case *TupleExpr:
		return l.tuple(e, want)
	case *CastExpr:
		return l.cast(e)
	case *ArrayLit:
		l.at(e)
		c.Errorf(compiler.ErrCategory, "a {...} list can only initialize an array")
		return c.Null()
	}
	l.at(e)
	c.Errorf(compiler.ErrInternal, "unexpected expression %T", e)
	return c.Null()
}

// unary folds the negation of a number literal into the literal.
func (l *Lowerer) unary(e *UnaryExpr, want ir.Type) compiler.Expr {
	c := l.c
	if n, ok := e.Operand.(*NumberLit); ok && e.Op == TokenMinus {
		l.at(e)
		return c.Float(-n.Value)
	}
	if e.Op == TokenMinus {
		a := l.expr(e.Operand, want)
		l.at(e)
		return c.Unary(compiler.OpNeg, a)
	}
	a := l.expr(e.Operand, ir.None)
	l.at(e)
	return c.Unary(compiler.OpNot, a)
}

// element resolves the array and the index of x[i].
func (l *Lowerer) element(e *IndexExpr) (*ir.Variable, compiler.Expr) {
	base, ok := e.Base.(*Ident)
	if !ok {
		l.at(e)
		l.c.Errorf(compiler.ErrCategory, "only arrays can be indexed")
		return nil, nil
	}
	l.at(base)
	arr := l.variable(base.Name)
	if arr == nil {
		return nil, nil
	}
	if !arr.Array && arr.Type.Category == ir.CategoryString {
		l.at(e)
		l.c.Errorf(compiler.ErrCategory, "a channel can only be selected on the map name of a texture call")
		return nil, nil
	}
	return arr, l.expr(e.Index, ir.None)
}

// assign lowers = and the compound assignments. A chain a = b = e becomes a
// single multiple-target assignment.
func (l *Lowerer) assign(e *AssignExpr) compiler.Expr {
	c := l.c
	if index, ok := e.Target.(*IndexExpr); ok {
		arr, idx := l.element(index)
		if arr == nil {
			return c.Null()
		}
		value := l.expr(e.Value, arr.Type)
		l.at(e)
		if e.Op == TokenEqual {
			return c.AssignIndex(arr, idx, value)
		}
		return c.UpdateIndex(compoundOps[e.Op], arr, idx, value)
	}

	if e.Op != TokenEqual {
		l.at(e.Target)
		v := l.variable(e.Target.(*Ident).Name)
		if v == nil {
			return c.Null()
		}
		value := l.expr(e.Value, v.Type)
		l.at(e)
		return c.Update(compoundOps[e.Op], v, value, true)
	}

	var vars []*ir.Variable
	var value Expr = e
	for {
		a, ok := value.(*AssignExpr)
		if !ok || a.Op != TokenEqual {
			break
		}
		id, ok := a.Target.(*Ident)
		if !ok {
			break
		}
		l.at(id)
		v := l.variable(id.Name)
		if v == nil {
			return c.Null()
		}
		vars = append(vars, v)
		value = a.Value
	}
	rhs := l.expr(value, vars[len(vars)-1].Type)
	l.at(e)
	return c.AssignAll(vars, rhs)
}

// incDec lowers ++ and --. The postfix form yields the value before the
// update.
func (l *Lowerer) incDec(e *IncDecExpr) compiler.Expr {
	c := l.c
	op := compoundOps[e.Op]
	if index, ok := e.Target.(*IndexExpr); ok {
		arr, idx := l.element(index)
		if arr == nil {
			return c.Null()
		}
		l.at(e)
		return c.UpdateIndex(op, arr, idx, c.Float(1))
	}
	l.at(e.Target)
	v := l.variable(e.Target.(*Ident).Name)
	if v == nil {
		return c.Null()
	}
	l.at(e)
	return c.Update(op, v, c.Float(1), e.Prefix)
}

// tuple lowers (x, y, z) to a vector of the expected kind and a 16-tuple
// to a matrix.
func (l *Lowerer) tuple(e *TupleExpr, want ir.Type) compiler.Expr {
	c := l.c
	elems := make([]compiler.Expr, len(e.Elems))
	for i, x := range e.Elems {
		elems[i] = l.expr(x, ir.UniformFloat)
	}
	l.at(e)
	switch len(elems) {
	case 3:
		kind := ir.VectorGeneric
		if want.Category == ir.CategoryVector {
			kind = want.Vector
		}
		return c.Vector(kind, elems[0], elems[1], elems[2])
	case 16:
		return c.Matrix(elems)
	}
	c.Errorf(compiler.ErrCategory, "a tuple must have 3 or 16 components, not %d", len(elems))
	return c.Null()
}

// cast lowers type ["system"] expr. A named system converts the operand
// from that coordinate system; otherwise the operand is promoted. Casts
// within the vector family keep the operand as it is.
func (l *Lowerer) cast(e *CastExpr) compiler.Expr {
	c := l.c
	t, _ := ir.ParseType(e.Type.String())
	operand := l.expr(e.Expr, t)
	l.at(e)
	if e.System != "" {
		return c.SystemConvert(t, e.System, operand)
	}
	if operand.Type().Category == ir.CategoryNone {
		return operand
	}
	return c.Convert(t, operand)
}

// call lowers a call of a user function or a built-in. User functions
// shadow built-ins of the same name.
func (l *Lowerer) call(e *CallExpr, want ir.Type) compiler.Expr {
	c := l.c
	if sym, _ := l.lookup(e.Name); sym.fn != nil {
		args := make([]compiler.Expr, len(e.Args))
		for i, a := range e.Args {
			pt := ir.None
			if i < len(sym.fn.Params) {
				pt = sym.fn.Params[i].Type
			}
			args[i] = l.expr(a, pt)
		}
		l.at(e)
		return c.Call(sym.fn, args)
	}

	l.at(e)
	if !c.Builtins().Has(e.Name) {
		c.Errorf(compiler.ErrBinding, "undefined function %s", e.Name)
		return c.Null()
	}

	args := l.builtinArgs(e)
	types := make([]ir.Type, len(args))
	for i, a := range args {
		if _, failed := a.(*compiler.Null); failed {
			return c.Null()
		}
		types[i] = a.Type()
	}
	l.at(e)
	p, err := c.Builtins().Resolve(e.Name, types, want)
	if err != nil {
		c.Errorf(compiler.ErrBinding, "%v", err)
		return c.Null()
	}
	return c.Builtin(p, args)
}

// builtinArgs lowers the arguments of a built-in call. The map name of a
// texture call is split into the name and its channel, which defaults to 0.
func (l *Lowerer) builtinArgs(e *CallExpr) []compiler.Expr {
	c := l.c
	if !textureCalls[e.Name] || len(e.Args) == 0 {
		return l.exprs(e.Args)
	}

	var name, channel compiler.Expr
	if sel, ok := e.Args[0].(*IndexExpr); ok {
		name = l.expr(sel.Base, ir.UniformString)
		channel = l.expr(sel.Index, ir.UniformFloat)
	} else {
		name = l.expr(e.Args[0], ir.UniformString)
		l.at(e)
		channel = c.Float(0)
	}
	return append([]compiler.Expr{name, channel}, l.exprs(e.Args[1:])...)
}
