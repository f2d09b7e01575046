// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package sl

import (
	"errors"
	"strconv"
	"strings"
	"testing"
)

// parseSource parses source and fails the test on any error.
func parseSource(t *testing.T, source string) *File {
	t.Helper()
	file, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	return file
}

// shaderBody parses a surface shader around body and returns its statements.
func shaderBody(t *testing.T, body string) []Stmt {
	t.Helper()
	file := parseSource(t, "surface test() {\n"+body+"\n}")
	return file.Decls[0].(*ShaderDecl).Body.Stmts
}

func TestParseShader(t *testing.T) {
	source := `surface plastic(float Ka = 1, Kd = .5; varying color tint = 1;
	                string texname = ""; float weights[3] = {1, 2, 3})
	{
	    Ci = Cs * Ka;
	}`

	file := parseSource(t, source)
	if len(file.Decls) != 1 {
		t.Fatalf("expected 1 declaration, got %d", len(file.Decls))
	}
	sh, ok := file.Decls[0].(*ShaderDecl)
	if !ok {
		t.Fatalf("expected *ShaderDecl, got %T", file.Decls[0])
	}
	if sh.Kind != TokenSurface || sh.Name != "plastic" {
		t.Errorf("got %v %s", sh.Kind, sh.Name)
	}

	want := []struct {
		name string
		kind TokenKind
		rate Qualifier
		len  int
	}{
		{"Ka", TokenFloat, QualifierNone, 0},
		{"Kd", TokenFloat, QualifierNone, 0},
		{"tint", TokenColor, QualifierVarying, 0},
		{"texname", TokenStringType, QualifierNone, 0},
		{"weights", TokenFloat, QualifierNone, 3},
	}
	if len(sh.Params) != len(want) {
		t.Fatalf("expected %d parameters, got %d", len(want), len(sh.Params))
	}
	for i, w := range want {
		p := sh.Params[i]
		if p.Name != w.name || p.Type.Kind != w.kind || p.Type.Rate != w.rate || p.Len != w.len {
			t.Errorf("param %d = %s %v %v [%d], want %+v", i, p.Name, p.Type.Rate, p.Type.Kind, p.Len, w)
		}
		if p.Init == nil {
			t.Errorf("param %s has no default", p.Name)
		}
	}
	if lit, ok := sh.Params[4].Init.(*ArrayLit); !ok || len(lit.Elems) != 3 {
		t.Errorf("weights default = %#v", sh.Params[4].Init)
	}
}

func TestParseFunction(t *testing.T) {
	source := `float scale(float x; output varying float y) {
	    y = x;
	    return x * 2;
	}
	void nothing() { }
	light pointlight(float intensity = 1) { }`

	file := parseSource(t, source)
	if len(file.Decls) != 3 {
		t.Fatalf("expected 3 declarations, got %d", len(file.Decls))
	}

	fn := file.Decls[0].(*FuncDecl)
	if fn.Name != "scale" || fn.Return.Kind != TokenFloat {
		t.Errorf("got %v %s", fn.Return.Kind, fn.Name)
	}
	if len(fn.Params) != 2 || fn.Params[0].Output || !fn.Params[1].Output {
		t.Errorf("params = %+v", fn.Params)
	}
	if _, ok := fn.Body.Stmts[1].(*ReturnStmt); !ok {
		t.Errorf("expected return, got %T", fn.Body.Stmts[1])
	}

	if void := file.Decls[1].(*FuncDecl); void.Return.Kind != TokenVoid {
		t.Errorf("nothing returns %v", void.Return.Kind)
	}
	if sh := file.Decls[2].(*ShaderDecl); sh.Kind != TokenLight || sh.Name != "pointlight" {
		t.Errorf("got %v %s", sh.Kind, sh.Name)
	}
}

func TestParseDeclarations(t *testing.T) {
	stmts := shaderBody(t, `
	    uniform float i = 0, j;
	    color c[2] = {0, 1};
	    extern point P;
	    float twice(float a) { return a * 2; }`)

	d := stmts[0].(*DeclStmt)
	if len(d.Vars) != 2 || d.Vars[0].Type.Rate != QualifierUniform || d.Vars[1].Init != nil {
		t.Errorf("uniform float i = 0, j: %+v", d.Vars)
	}
	if arr := stmts[1].(*DeclStmt).Vars[0]; arr.Len != 2 || arr.Type.Kind != TokenColor {
		t.Errorf("color c[2]: %+v", arr)
	}
	if ext := stmts[2].(*DeclStmt).Vars[0]; !ext.Extern || ext.Name != "P" {
		t.Errorf("extern point P: %+v", ext)
	}
	if fn, ok := stmts[3].(*FuncDecl); !ok || fn.Name != "twice" {
		t.Errorf("nested function: %#v", stmts[3])
	}
}

func TestParsePrecedence(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"a + b * c;", "(a + (b * c))"},
		{"a * b + c;", "((a * b) + c)"},
		{"a - b - c;", "((a - b) - c)"},
		{"a + N.I * b;", "(a + ((N . I) * b))"},
		{"a ^ b . c;", "(a ^ (b . c))"},
		{"a < b && c || d;", "(((a < b) && c) || d)"},
		{"a == b != c;", "((a == b) != c)"},
		{"-a * b;", "((-a) * b)"},
		{"a = b = c + 1;", "(a = (b = (c + 1)))"},
		{"a += b ? c : d;", "(a += (b ? c : d))"},
		{"x[i + 1] = y++;", "(x[(i + 1)] = (y++))"},
		{"++x;", "(++x)"},
		{"c = color \"rgb\" (1, 0, 0);", "(c = color \"rgb\" (1, 0, 0))"},
		{"f(a, (b, c, d));", "f(a, (b, c, d))"},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			stmts := shaderBody(t, tt.source)
			if len(stmts) != 1 {
				t.Fatalf("expected 1 statement, got %d", len(stmts))
			}
			got := render(stmts[0].(*ExprStmt).Expr)
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParseControlFlow(t *testing.T) {
	stmts := shaderBody(t, `
	    if (a > 0) b = 1; else { b = 2; }
	    while (a < 1) a += 1;
	    for (i = 0; i < 10; i += 1) { if (i > 5) break; continue; }
	    illuminance("specular", P, N, PI / 2) { Ci += Cl; }
	    illuminate(from) Cl = 1;
	    solar() ;
	    gather("illuminance", P, N, 0, 4, "ray:length", d) hits += 1; else misses += 1;`)

	if len(stmts) != 7 {
		t.Fatalf("expected 7 statements, got %d", len(stmts))
	}
	if s := stmts[0].(*IfStmt); s.Else == nil {
		t.Error("if lost its else branch")
	}
	if _, ok := stmts[1].(*WhileStmt); !ok {
		t.Errorf("expected while, got %T", stmts[1])
	}
	if s := stmts[2].(*ForStmt); s.Init == nil || s.Cond == nil || s.Update == nil {
		t.Errorf("for clauses: %+v", s)
	}
	if s := stmts[3].(*LightStmt); s.Tok != TokenIlluminance || len(s.Args) != 4 {
		t.Errorf("illuminance: %v with %d args", s.Tok, len(s.Args))
	}
	if s := stmts[4].(*LightStmt); s.Tok != TokenIlluminate || len(s.Args) != 1 {
		t.Errorf("illuminate: %v with %d args", s.Tok, len(s.Args))
	}
	if s := stmts[5].(*LightStmt); s.Tok != TokenSolar || len(s.Args) != 0 {
		t.Errorf("solar: %v with %d args", s.Tok, len(s.Args))
	} else if b, ok := s.Body.(*BlockStmt); !ok || len(b.Stmts) != 0 {
		t.Errorf("empty solar body = %#v", s.Body)
	}
	if s := stmts[6].(*GatherStmt); len(s.Args) != 7 || s.Else == nil {
		t.Errorf("gather: %d args, else %v", len(s.Args), s.Else)
	}
}

func TestParseTextureChannel(t *testing.T) {
	stmts := shaderBody(t, `c = texture("grid.tex"[1], s, t);`)
	call := stmts[0].(*ExprStmt).Expr.(*AssignExpr).Value.(*CallExpr)
	sel, ok := call.Args[0].(*IndexExpr)
	if !ok {
		t.Fatalf("expected channel selection, got %T", call.Args[0])
	}
	if name, ok := sel.Base.(*StringLit); !ok || name.Value != "grid.tex" {
		t.Errorf("map name = %#v", sel.Base)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"missing semicolon", "surface s() { a = 1 }", "expected ;"},
		{"bad target", "surface s() { a + b = 1; }", "invalid assignment target"},
		{"void variable", "surface s() { void x; }", "variables cannot be void"},
		{"void parameter", "void f(void x) { }", "parameters cannot be void"},
		{"array length", "surface s(float a[0] = {}) { }", "invalid array length 0"},
		{"extern initializer", "void f() { extern float x = 1; }", "cannot have an initializer"},
		{"top level statement", "x = 1;", "expected a shader or function definition"},
		{"qualified void", "uniform void f() { }", "void cannot be qualified"},
		{"expression", "surface s() { a = ; }", "unexpected ; in expression"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.source)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestParseRecovery(t *testing.T) {
	source := `surface s() {
	    a = ;
	    b = 1;
	    c = ) ;
	}
	float f() { return 1; }`

	file, err := Parse(source)
	var errs ParseErrors
	if !errors.As(err, &errs) {
		t.Fatalf("expected ParseErrors, got %v", err)
	}
	if len(errs) != 2 {
		t.Errorf("expected 2 errors, got %d: %v", len(errs), errs)
	}
	if errs[0].Token.Line != 2 || errs[1].Token.Line != 4 {
		t.Errorf("errors at lines %d and %d, want 2 and 4", errs[0].Token.Line, errs[1].Token.Line)
	}
	if len(file.Decls) != 2 {
		t.Fatalf("expected both declarations to survive, got %d", len(file.Decls))
	}
	if n := len(file.Decls[0].(*ShaderDecl).Body.Stmts); n != 1 {
		t.Errorf("expected the valid statement to survive, got %d statements", n)
	}

	diags := errs.Diagnostics()
	if len(diags) != 2 || diags[0].Pos.Line != 2 {
		t.Errorf("diagnostics = %v", diags)
	}
}

// render prints an expression fully parenthesized.
func render(e Expr) string {
	switch e := e.(type) {
	case *Ident:
		return e.Name
	case *NumberLit:
		return strings.TrimSuffix(strings.TrimSuffix(formatNumber(e.Value), ".0"), ".")
	case *StringLit:
		return `"` + e.Value + `"`
	case *BinaryExpr:
		return "(" + render(e.Left) + " " + e.Op.String() + " " + render(e.Right) + ")"
	case *UnaryExpr:
		return "(" + e.Op.String() + render(e.Operand) + ")"
	case *AssignExpr:
		return "(" + render(e.Target) + " " + e.Op.String() + " " + render(e.Value) + ")"
	case *IncDecExpr:
		if e.Prefix {
			return "(" + e.Op.String() + render(e.Target) + ")"
		}
		return "(" + render(e.Target) + e.Op.String() + ")"
	case *CondExpr:
		return "(" + render(e.Cond) + " ? " + render(e.Then) + " : " + render(e.Else) + ")"
	case *IndexExpr:
		return render(e.Base) + "[" + render(e.Index) + "]"
	case *CallExpr:
		return e.Name + renderList(e.Args)
	case *TupleExpr:
		return renderList(e.Elems)
	case *CastExpr:
		s := e.Type.String() + " "
		if e.System != "" {
			s += `"` + e.System + `" `
		}
		return s + render(e.Expr)
	}
	return "?"
}

func renderList(list []Expr) string {
	parts := make([]string, len(list))
	for i, e := range list {
		parts[i] = render(e)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
