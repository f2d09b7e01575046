// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package compiler

import (
	"testing"

	"github.com/gogpu/sdrc/ir"
)

// newDouble returns "float double(float a) { return a * 2; }".
func newDouble(c *Context) *Function {
	a := ir.NewVariable("a", ir.VaryingFloat, ir.StorageLocal)
	ret := ir.NewVariable("double", ir.VaryingFloat, ir.StorageLocal)
	fn := &Function{Name: "double", Params: []*ir.Variable{a}, Return: ret}
	fn.Body = c.Assign(ret, c.Binary(OpMul, c.Terminal(a), c.Float(2)))
	return fn
}

func TestCompile_InlineCall(t *testing.T) {
	ts := newTestShader()
	c := ts.c
	x := ts.local("x", ir.VaryingFloat)
	y := ts.local("y", ir.VaryingFloat)

	fn := newDouble(c)
	prog := ts.compile(t, c.Assign(y, c.Call(fn, []Expr{c.Terminal(x)})))

	expectCode(t, prog.Code,
		"vufloat _vf 2",
		"mulf y x _vf",
	)
	for _, v := range prog.Variables {
		if v.Name == "a" || v.Name == "double" {
			t.Errorf("function slot %s was declared", v.Name)
		}
	}
}

func TestCompile_InlineCallConvertsArgument(t *testing.T) {
	ts := newTestShader()
	c := ts.c
	k := ts.param("k", ir.UniformFloat)
	y := ts.local("y", ir.VaryingFloat)

	fn := newDouble(c)
	prog := ts.compile(t, c.Assign(y, c.Call(fn, []Expr{c.Terminal(k)})))

	expectCode(t, prog.Code,
		"vufloat _vf k",
		"vufloat _vf_1 2",
		"mulf y _vf _vf_1",
	)
}

func TestCompile_InlineLocals(t *testing.T) {
	ts := newTestShader()
	c := ts.c
	ts.local("y", ir.VaryingFloat)
	tmp := ts.local("tmp", ir.VaryingFloat)

	// void bump() { float tmp = 1; y = tmp; } with y visible as an extern.
	ftmp := ir.NewVariable("tmp", ir.VaryingFloat, ir.StorageLocal)
	ext := ir.NewVariable("y", ir.VaryingFloat, ir.StorageExtern)
	fn := &Function{Name: "bump", Locals: []*ir.Variable{ftmp, ext}}
	fn.Body = c.Block(c.Assign(ftmp, c.Float(1)), c.Assign(ext, c.Terminal(ftmp)))

	prog := ts.compile(t,
		c.Assign(tmp, c.Float(0)),
		c.Call(fn, nil),
	)

	expectCode(t, prog.Code,
		"vufloat tmp 0",
		"vufloat tmp_1 1",
		"movff y tmp_1",
	)
}

func TestCompile_NestedExtern(t *testing.T) {
	ts := newTestShader()
	c := ts.c
	ts.local("x", ir.VaryingFloat)

	// outer(float x) calls inner(), whose extern x is outer's parameter.
	innerX := ir.NewVariable("x", ir.VaryingFloat, ir.StorageExtern)
	inner := &Function{Name: "inner", Locals: []*ir.Variable{innerX}}
	inner.Body = c.Update(OpAdd, innerX, c.Float(1), true)

	outerX := ir.NewVariable("x", ir.VaryingFloat, ir.StorageLocal)
	outer := &Function{Name: "outer", Params: []*ir.Variable{outerX}}
	outer.Body = c.Call(inner, nil)

	q := ts.local("q", ir.VaryingFloat)
	prog := ts.compile(t, c.Call(outer, []Expr{c.Terminal(q)}))

	expectCode(t, prog.Code,
		"vufloat _vf 1",
		"addf q q _vf",
	)
}

func TestCompile_VaryingExternOfUniform(t *testing.T) {
	ts := newTestShader()
	c := ts.c
	ts.param("k", ir.UniformFloat)
	y := ts.local("y", ir.VaryingFloat)

	// The callee reads k as varying; the caller's k is uniform.
	ext := ir.NewVariable("k", ir.VaryingFloat, ir.StorageExtern)
	ret := ir.NewVariable("g", ir.VaryingFloat, ir.StorageLocal)
	fn := &Function{Name: "g", Locals: []*ir.Variable{ext}, Return: ret}
	fn.Body = c.Assign(ret, c.Terminal(ext))

	prog := ts.compile(t, c.Assign(y, c.Call(fn, nil)))

	expectCode(t, prog.Code, "vufloat y k")
}

func TestCompile_ArrayParameter(t *testing.T) {
	ts := newTestShader()
	c := ts.c
	w := ir.NewArray("w", ir.VaryingFloat, ir.StorageLocal, 2)
	ts.sh.Locals = append(ts.sh.Locals, w)
	y := ts.local("y", ir.VaryingFloat)

	arr := ir.NewArray("arr", ir.VaryingFloat, ir.StorageLocal, 2)
	ret := ir.NewVariable("sum", ir.VaryingFloat, ir.StorageLocal)
	fn := &Function{Name: "sum", Params: []*ir.Variable{arr}, Return: ret}
	fn.Body = c.Assign(ret, c.Binary(OpAdd, c.Index(arr, c.Float(0)), c.Index(arr, c.Float(1))))

	prog := ts.compile(t, c.Assign(y, c.Call(fn, []Expr{c.Terminal(w)})))

	expectCode(t, prog.Code,
		"vufloat _vf_1 0",
		"ffromarray _vf w _vf_1",
		"vufloat _vf_2 1",
		"ffromarray _vf_1 w _vf_2",
		"addf y _vf _vf_1",
	)
}

func TestCompile_CallErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func(ts *testShader) Expr
		kind  ErrorKind
		want  string
	}{
		{
			name: "arity",
			build: func(ts *testShader) Expr {
				return ts.c.Call(newDouble(ts.c), nil)
			},
			kind: ErrBinding,
			want: "expects 1 arguments, got 0",
		},
		{
			name: "recursion",
			build: func(ts *testShader) Expr {
				fn := &Function{Name: "forever"}
				fn.Body = ts.c.Call(fn, nil)
				return ts.c.Call(fn, nil)
			},
			kind: ErrBinding,
			want: "recursive call to forever",
		},
		{
			name: "undefined",
			build: func(ts *testShader) Expr {
				return ts.c.Call(&Function{Name: "later"}, nil)
			},
			kind: ErrBinding,
			want: "declared but never defined",
		},
		{
			name: "scalar for array",
			build: func(ts *testShader) Expr {
				arr := ir.NewArray("arr", ir.VaryingFloat, ir.StorageLocal, 2)
				fn := &Function{Name: "first", Params: []*ir.Variable{arr}, Body: ts.c.Block()}
				return ts.c.Call(fn, []Expr{ts.c.Float(1)})
			},
			kind: ErrBinding,
			want: "must be an array of 2 float",
		},
		{
			name: "unresolved extern",
			build: func(ts *testShader) Expr {
				ext := ir.NewVariable("nowhere", ir.VaryingFloat, ir.StorageExtern)
				fn := &Function{Name: "f", Locals: []*ir.Variable{ext}, Body: ts.c.Block()}
				return ts.c.Call(fn, nil)
			},
			kind: ErrBinding,
			want: "extern nowhere of f",
		},
		{
			name: "extern category mismatch",
			build: func(ts *testShader) Expr {
				ext := ir.NewVariable("Ci", ir.VaryingFloat, ir.StorageExtern)
				fn := &Function{Name: "f", Locals: []*ir.Variable{ext}, Body: ts.c.Block()}
				return ts.c.Call(fn, nil)
			},
			kind: ErrBinding,
			want: "declared float but the variable is color",
		},
		{
			name: "uniform extern bound to varying",
			build: func(ts *testShader) Expr {
				ts.local("k", ir.VaryingFloat)
				ext := ir.NewVariable("k", ir.UniformFloat, ir.StorageExtern)
				q := ir.NewVariable("q", ir.UniformFloat, ir.StorageLocal)
				fn := &Function{Name: "g", Locals: []*ir.Variable{ext, q}}
				fn.Body = ts.c.Assign(q, ts.c.Terminal(ext))
				return ts.c.Call(fn, nil)
			},
			kind: ErrRate,
			want: "extern k of g is declared uniform but the variable is varying",
		},
		{
			name: "varying array for uniform parameter",
			build: func(ts *testShader) Expr {
				v := ir.NewArray("v", ir.VaryingFloat, ir.StorageLocal, 2)
				ts.sh.Locals = append(ts.sh.Locals, v)
				arr := ir.NewArray("a", ir.UniformFloat, ir.StorageLocal, 2)
				fn := &Function{Name: "first", Params: []*ir.Variable{arr}, Body: ts.c.Block()}
				return ts.c.Call(fn, []Expr{ts.c.Terminal(v)})
			},
			kind: ErrRate,
			want: "varying array v passed to uniform parameter a of first",
		},
		{
			name: "void result used",
			build: func(ts *testShader) Expr {
				y := ts.local("y", ir.VaryingFloat)
				fn := &Function{Name: "nothing", Body: ts.c.Block()}
				return ts.c.Assign(y, ts.c.Call(fn, nil))
			},
			kind: ErrCategory,
			want: "has no value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestShader()
			diags := ts.compileError(t, tt.build(ts))
			expectKind(t, diags, tt.kind, tt.want)
		})
	}
}
