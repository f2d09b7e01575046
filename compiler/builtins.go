// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package compiler

import (
	"github.com/gogpu/sdrc/builtin"
	"github.com/gogpu/sdrc/ir"
)

// rewriteKey identifies an overload that receives implicit arguments.
type rewriteKey struct {
	name  string
	proto string
}

// rewrite replaces the prototype of an overload and inserts the implicit
// arguments it adds.
type rewrite struct {
	proto string
	apply func(c *Context, args []Expr) ([]Expr, bool)
}

// rewrites is the closed set of overloads with implicit arguments.
var rewrites = map[rewriteKey]rewrite{
	// texture("map", chan) samples at the surface texture coordinates.
	{"texture", "c=SF!"}: {"c=SFff!", insertCoordinates(2)},
	{"texture", "f=SF!"}: {"f=SFff!", insertCoordinates(2)},

	// Four-corner texture lookups without a channel read channel 0.
	{"texture", "f=SFfffffff!"}: {"f=SFffffffff!", insertChannel},
	{"texture", "c=SFfffffff!"}: {"c=SFffffffff!", insertChannel},

	// bump("map", chan, N, dPdu, dPdv) also takes the texture coordinates.
	{"bump", "n=SFnvv!"}: {"n=SFnvvff!", insertCoordinates(5)},
}

// insertCoordinates inserts the globals s and t before argument at.
func insertCoordinates(at int) func(*Context, []Expr) ([]Expr, bool) {
	return func(c *Context, args []Expr) ([]Expr, bool) {
		s, t := c.Global("s"), c.Global("t")
		if s == nil || t == nil {
			c.Errorf(ErrBinding, "texture coordinates s and t are not available")
			return args, false
		}
		if at > len(args) {
			return args, false
		}
		out := make([]Expr, 0, len(args)+2)
		out = append(out, args[:at]...)
		out = append(out, c.Terminal(s), c.Terminal(t))
		return append(out, args[at:]...), true
	}
}

// insertChannel inserts channel 0 after the map name.
func insertChannel(c *Context, args []Expr) ([]Expr, bool) {
	if len(args) == 0 {
		return args, false
	}
	out := make([]Expr, 0, len(args)+1)
	out = append(out, args[0], c.Float(0))
	return append(out, args[1:]...), true
}

// Builtin builds a call of a built-in overload. The call is uniform iff
// every argument is uniform and the built-in is not NonUniform. A malformed
// prototype is a binding error.
func (c *Context) Builtin(p *builtin.Prototype, args []Expr) Expr {
	if err := builtin.ValidatePrototype(p.Proto); err != nil {
		c.Errorf(ErrBinding, "built-in %s: %v", p.Name, err)
		return c.null()
	}
	proto := p.Proto
	if rw, ok := rewrites[rewriteKey{p.Name, proto}]; ok {
		if args, ok = rw.apply(c, args); !ok {
			return c.null()
		}
		proto = rw.proto
	}

	types := make([]ir.Type, len(args))
	for i, a := range args {
		if !c.scalar(a) {
			return c.null()
		}
		types[i] = a.Type()
	}
	rate := combinedRate(types...)
	if p.NonUniform {
		rate = ir.Varying
	}
	ret, _ := ir.TypeFromCode(proto[0])
	return &BuiltinCall{node: c.node(ret.WithRate(rate)), Builtin: p, Proto: proto, Args: args}
}

// bindBuiltin matches the arguments of n against its prototype. It returns
// the used prototype, which records one code per argument after the return
// code, the converted arguments, and the index where (name, value) pairs
// start, or len(args) when there are none.
func (c *Context) bindBuiltin(n *BuiltinCall) (string, []Expr, int, bool) {
	params := n.Proto[2:]
	used := []byte{n.Proto[0], '='}
	args := make([]Expr, len(n.Args))
	pairs := len(n.Args)

	pos := 0
	for i := 0; i < len(n.Args); i++ {
		a := n.Args[i]
		if pos >= len(params) {
			c.Errorf(ErrBinding, "too many arguments to %s", n.Builtin.Name)
			return "", nil, 0, false
		}
		code := params[pos]
		if code == builtin.CodeOneMore || code == builtin.CodeZeroMore {
			pos--
			code = params[pos]
		}

		switch code {
		case builtin.CodePairs:
			if (len(n.Args)-i)%2 != 0 {
				c.Errorf(ErrBinding, "%s expects name/value pairs after argument %d", n.Builtin.Name, i)
				return "", nil, 0, false
			}
			pairs = i
			for j := i; j < len(n.Args); j += 2 {
				args[j] = c.Convert(ir.UniformString, n.Args[j])
				args[j+1] = n.Args[j+1]
				if args[j].Type().Category != ir.CategoryString {
					c.Errorf(ErrCategory, "parameter name of %s must be a string", n.Builtin.Name)
					return "", nil, 0, false
				}
				used = append(used, 'S', args[j+1].Type().Code())
			}
			return string(used), args, pairs, true
		case builtin.CodeAny:
			args[i] = a
			used = append(used, a.Type().Code())
		default:
			want, _ := ir.TypeFromCode(code)
			args[i] = c.Convert(want, a)
			if args[i].Type().Category == ir.CategoryNone {
				return "", nil, 0, false
			}
			if builtin.IsForced(code) && c.variableOf(args[i]) == nil {
				c.Errorf(ErrBinding, "argument %d of %s must be an identifier or a constant", i+1, n.Builtin.Name)
				return "", nil, 0, false
			}
			used = append(used, code)
		}
		pos++
	}

	if pos < len(params) {
		switch params[pos] {
		case builtin.CodeOneMore, builtin.CodeZeroMore, builtin.CodePairs:
		default:
			c.Errorf(ErrBinding, "too few arguments to %s", n.Builtin.Name)
			return "", nil, 0, false
		}
	}
	return string(used), args, pairs, true
}

// emitBuiltin emits "name "used" [dest] args...". Arguments bound to
// uppercase codes, and (name, value) pairs, are taken uniform unless they
// are variables of another rate, which are taken at the call's rate; all
// others at the call's rate. A discarded result goes to a temporary.
func (c *Context) emitBuiltin(n *BuiltinCall, dest *ir.Variable) {
	used, args, pairs, ok := c.bindBuiltin(n)
	if !ok {
		return
	}

	out := dest
	switch {
	case n.typ.Category == ir.CategoryNone && dest != nil:
		c.Errorf(ErrCategory, "%s does not return a value", n.Builtin.Name)
		return
	case n.typ.Category != ir.CategoryNone && dest == nil:
		out = c.regs.Lock(n.typ)
		defer c.regs.Release(out)
	}

	ops := c.operands()
	defer ops.release()
	operands := []string{ir.Quote(used)}
	if out != nil {
		operands = append(operands, out.CodeName)
	}
	for i, a := range args {
		rate := n.typ.Rate
		if i >= pairs || builtin.IsForced(used[i+2]) {
			if v := c.variableOf(a); v == nil || v.Type.IsUniform() {
				rate = ir.Uniform
			}
		}
		if v := ops.take(a, rate); v != nil {
			operands = append(operands, v.CodeName)
		}
	}
	if ops.failed {
		return
	}

	if n.Builtin.DSO {
		c.out.EmitDSO(n.Builtin.Name, operands...)
	} else {
		c.out.Emit(n.Builtin.Name, operands...)
	}
}
