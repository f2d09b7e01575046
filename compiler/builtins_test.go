// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package compiler

import (
	"testing"

	"github.com/gogpu/sdrc/builtin"
	"github.com/gogpu/sdrc/ir"
)

// resolve looks up the overload the front end would pick.
func resolve(t *testing.T, c *Context, name string, want ir.Type, args ...Expr) *builtin.Prototype {
	t.Helper()
	types := make([]ir.Type, len(args))
	for i, a := range args {
		types[i] = a.Type()
	}
	p, err := c.Builtins().Resolve(name, types, want)
	if err != nil {
		t.Fatalf("Resolve(%s): %v", name, err)
	}
	return p
}

func customBuiltins(t *testing.T, protos ...*builtin.Prototype) Options {
	t.Helper()
	reg := builtin.NewRegistry()
	for _, p := range protos {
		if err := builtin.ValidatePrototype(p.Proto); err != nil {
			t.Fatalf("ValidatePrototype(%q): %v", p.Proto, err)
		}
		reg.Add(p)
	}
	return Options{Builtins: reg}
}

// =============================================================================
// Used prototypes
// =============================================================================

func TestCompile_ForcedUniformArguments(t *testing.T) {
	lookup := &builtin.Prototype{Name: "lookup", Proto: "f=SFff!"}

	ts := newTestShader()
	ts.c = New(customBuiltins(t, lookup))
	c := ts.c
	name := ts.param("mapname", ir.UniformString)
	x := ts.local("x", ir.VaryingFloat)
	y := ts.local("y", ir.VaryingFloat)

	call := c.Builtin(lookup, []Expr{c.Terminal(name), c.Float(1), c.Terminal(x), c.Float(2)})
	if call.Type().Rate != ir.Varying {
		t.Fatalf("call rate = %s, want varying", call.Type().Rate)
	}
	prog := ts.compile(t, c.Assign(y, call))

	// mapname and 1 stay uniform although the call is varying.
	expectCode(t, prog.Code,
		"vufloat _vf 2",
		`lookup "f=SFff" y mapname 1 x _vf`,
	)
}

func TestCompile_ForcedVaryingVariable(t *testing.T) {
	lookup := &builtin.Prototype{Name: "lookup", Proto: "f=SFff!"}

	ts := newTestShader()
	ts.c = New(customBuiltins(t, lookup))
	c := ts.c
	name := ts.local("mapname", ir.Of(ir.CategoryString, ir.Varying))
	x := ts.local("x", ir.VaryingFloat)
	y := ts.local("y", ir.VaryingFloat)

	call := c.Builtin(lookup, []Expr{c.Terminal(name), c.Float(0), c.Terminal(x), c.Terminal(x)})
	prog := ts.compile(t, c.Assign(y, call))

	// A varying variable at an uppercase code is taken at the call's rate.
	expectCode(t, prog.Code, `lookup "f=SFff" y mapname 0 x x`)
}

func TestCompile_ForcedArgumentErrors(t *testing.T) {
	lookup := &builtin.Prototype{Name: "lookup", Proto: "f=SFff!"}

	tests := []struct {
		name  string
		build func(ts *testShader) Expr
		kind  ErrorKind
		want  string
	}{
		{
			name: "varying computed option",
			build: func(ts *testShader) Expr {
				c := ts.c
				blur := c.Binary(OpMul, c.Float(0.5), c.Terminal(c.Global("s")))
				return c.Builtin(lookup, []Expr{c.String("map"), c.Float(0), c.Float(1), c.Float(2), c.String("blur"), blur})
			},
			kind: ErrRate,
			want: "varying value used where a uniform value is required",
		},
		{
			name: "expression for an identifier",
			build: func(ts *testShader) Expr {
				c := ts.c
				channel := c.Binary(OpAdd, c.Float(1), c.Float(2))
				return c.Builtin(lookup, []Expr{c.String("map"), channel, c.Float(1), c.Float(2)})
			},
			kind: ErrBinding,
			want: "must be an identifier or a constant",
		},
		{
			name: "too few arguments",
			build: func(ts *testShader) Expr {
				c := ts.c
				return c.Builtin(lookup, []Expr{c.String("map"), c.Float(0), c.Float(1)})
			},
			kind: ErrBinding,
			want: "too few arguments",
		},
		{
			name: "unpaired option",
			build: func(ts *testShader) Expr {
				c := ts.c
				return c.Builtin(lookup, []Expr{c.String("map"), c.Float(0), c.Float(1), c.Float(2), c.String("blur")})
			},
			kind: ErrBinding,
			want: "name/value pairs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestShader()
			ts.c = New(customBuiltins(t, lookup))
			y := ts.local("y", ir.VaryingFloat)
			diags := ts.compileError(t, ts.c.Assign(y, tt.build(ts)))
			expectKind(t, diags, tt.kind, tt.want)
		})
	}
}

// The repetition markers only rewind the prototype cursor, so every extra
// argument repeats the previous code. This is an assumption: no built-in
// relies on anything more.
func TestBuiltin_MalformedPrototype(t *testing.T) {
	tests := []string{"f=+", "f=*", "f", "", "F=f", "f=!f"}

	for _, proto := range tests {
		t.Run(proto, func(t *testing.T) {
			ts := newTestShader()
			c := ts.c
			y := ts.local("y", ir.VaryingFloat)

			p := &builtin.Prototype{Name: "broken", Proto: proto}
			call := c.Builtin(p, []Expr{c.Float(1)})
			if _, ok := call.(*Null); !ok {
				t.Fatalf("Builtin returned %T, want *Null", call)
			}
			diags := ts.compileError(t, c.Assign(y, call))
			expectKind(t, diags, ErrBinding, "built-in broken")
		})
	}
}

func TestCompile_RepetitionRewindsCursor(t *testing.T) {
	ts := newTestShader()
	c := ts.c
	a := ts.local("a", ir.VaryingFloat)
	b := ts.local("b", ir.VaryingFloat)
	y := ts.local("y", ir.VaryingFloat)

	args := []Expr{c.Terminal(a), c.Terminal(b), c.Float(1)}
	p := resolve(t, c, "max", ir.VaryingFloat, args...)
	if p.Proto != "f=ff+" {
		t.Fatalf("resolved %s, want f=ff+", p.Proto)
	}
	prog := ts.compile(t, c.Assign(y, c.Builtin(p, args)))

	expectCode(t, prog.Code,
		"vufloat _vf 1",
		`max "f=fff" y a b _vf`,
	)
}

func TestCompile_DiscardedResult(t *testing.T) {
	ts := newTestShader()
	c := ts.c

	args := []Expr{c.Terminal(c.Global("P"))}
	prog := ts.compile(t, c.Builtin(resolve(t, c, "noise", ir.None, args...), args))

	expectCode(t, prog.Code, `noise "f=p" _vf P`)
}

func TestCompile_VoidBuiltin(t *testing.T) {
	ts := newTestShader()
	c := ts.c
	k := ts.param("k", ir.UniformFloat)

	args := []Expr{c.String("k = %f\n"), c.Terminal(k)}
	call := c.Builtin(resolve(t, c, "printf", ir.None, args...), args)
	prog := ts.compile(t, call)

	expectCode(t, prog.Code, `printf "o=sf" "k = %f\n" k`)

	ts = newTestShader()
	y := ts.local("y", ir.VaryingFloat)
	args = []Expr{ts.c.String("hello")}
	call = ts.c.Builtin(resolve(t, ts.c, "printf", ir.None, args...), args)
	diags := ts.compileError(t, ts.c.Assign(y, call))
	expectKind(t, diags, ErrCategory, "has no value")
}

func TestCompile_DSOBuiltin(t *testing.T) {
	voronoi := &builtin.Prototype{Name: "voronoi", Proto: "f=p", DSO: true}

	ts := newTestShader()
	ts.c = New(customBuiltins(t, voronoi))
	c := ts.c
	p := ts.local("p", ir.VaryingPoint)
	y := ts.local("y", ir.VaryingFloat)

	prog := ts.compile(t, c.Assign(y, c.Builtin(voronoi, []Expr{c.Terminal(p)})))

	expectCode(t, prog.Code, `DSO voronoi "f=p" y p`)
}

func TestBuiltin_NonUniformIsVarying(t *testing.T) {
	c := New(DefaultOptions())
	p := resolve(t, c, "random", ir.VaryingFloat)
	if got := c.Builtin(p, nil).Type(); got != ir.VaryingFloat {
		t.Errorf("random() type = %s, want varying float", got)
	}

	p = resolve(t, c, "sin", ir.VaryingFloat, c.Float(1))
	if got := c.Builtin(p, []Expr{c.Float(1)}).Type(); got != ir.UniformFloat {
		t.Errorf("sin(1) type = %s, want uniform float", got)
	}
}

// =============================================================================
// Implicit arguments
// =============================================================================

func TestCompile_TextureCoordinates(t *testing.T) {
	ts := newTestShader()
	c := ts.c
	y := ts.local("y", ir.VaryingFloat)

	args := []Expr{c.String("grid.tex"), c.Float(0)}
	p := resolve(t, c, "texture", ir.VaryingFloat, args...)
	if p.Proto != "f=SF!" {
		t.Fatalf("resolved %s, want f=SF!", p.Proto)
	}
	prog := ts.compile(t, c.Assign(y, c.Builtin(p, args)))

	expectCode(t, prog.Code, `texture "f=SFff" y "grid.tex" 0 s t`)
}

func TestCompile_TextureOptions(t *testing.T) {
	ts := newTestShader()
	c := ts.c
	y := ts.local("y", ir.VaryingFloat)
	blur := ts.local("blur", ir.UniformFloat)

	args := []Expr{c.String("grid.tex"), c.Float(0), c.String("blur"), c.Terminal(blur)}
	prog := ts.compile(t, c.Assign(y, c.Builtin(resolve(t, c, "texture", ir.VaryingFloat, args...), args)))

	expectCode(t, prog.Code, `texture "f=SFffSf" y "grid.tex" 0 s t "blur" blur`)

	// A varying option variable passes at the call's rate.
	ts = newTestShader()
	c = ts.c
	y = ts.local("y", ir.VaryingFloat)
	vblur := ts.local("vblur", ir.VaryingFloat)
	args = []Expr{c.String("grid.tex"), c.Float(0), c.String("blur"), c.Terminal(vblur)}
	prog = ts.compile(t, c.Assign(y, c.Builtin(resolve(t, c, "texture", ir.VaryingFloat, args...), args)))

	expectCode(t, prog.Code, `texture "f=SFffSf" y "grid.tex" 0 s t "blur" vblur`)
}

func TestCompile_TextureCornersChannel(t *testing.T) {
	ts := newTestShader()
	c := ts.c
	y := ts.local("y", ir.VaryingFloat)

	args := []Expr{c.String("grid.tex")}
	for _, f := range []float64{0, 0, 1, 0, 0, 1, 1, 1} {
		args = append(args, c.Float(f))
	}
	p := resolve(t, c, "texture", ir.VaryingFloat, args...)
	if p.Proto != "f=SFfffffff!" {
		t.Fatalf("resolved %s, want f=SFfffffff!", p.Proto)
	}
	prog := ts.compile(t, c.Assign(y, c.Builtin(p, args)))

	expectCode(t, prog.Code,
		`texture "f=SFffffffff" _uf "grid.tex" 0 0 0 1 0 0 1 1 1`,
		"vufloat y _uf",
	)
}

func TestCompile_BumpCoordinates(t *testing.T) {
	ts := newTestShader()
	c := ts.c
	nn := ts.local("nn", ir.VectorOf(ir.VectorNormal, ir.Varying))

	args := []Expr{
		c.String("bumps.tex"), c.Float(0),
		c.Terminal(c.Global("N")), c.Terminal(c.Global("dPdu")), c.Terminal(c.Global("dPdv")),
	}
	p := resolve(t, c, "bump", nn.Type, args...)
	prog := ts.compile(t, c.Assign(nn, c.Builtin(p, args)))

	expectCode(t, prog.Code, `bump "n=SFnvvff" nn "bumps.tex" 0 N dPdu dPdv s t`)
}
