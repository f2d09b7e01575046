// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package sl

import (
	"github.com/gogpu/sdrc/compiler"
	"github.com/gogpu/sdrc/ir"
)

// symbol is what a name in scope refers to.
type symbol struct {
	v  *ir.Variable
	fn *compiler.Function
}

// scope is one level of name bindings. A function scope hides the
// variables of every enclosing scope; functions stay visible.
type scope struct {
	names    map[string]symbol
	function bool
}

// funcState is the function whose body is being lowered.
type funcState struct {
	fn    *compiler.Function
	outer *funcState
}

// Lowerer converts the AST of a shader into compiler nodes. It is the scope
// manager of the language: it resolves every name to a variable descriptor,
// a user function or a built-in overload.
type Lowerer struct {
	c      *compiler.Context
	shader *compiler.Shader
	fn     *funcState
	scopes []*scope
	loops  int
}

// textureCalls take "map"[channel] as their first argument.
var textureCalls = map[string]bool{
	"texture":     true,
	"environment": true,
	"shadow":      true,
	"bump":        true,
}

// Lower builds the shader defined in file. File-scope functions are visible
// to every declaration that follows them. Problems are reported to c; when
// any error was reported the returned error is c's Diagnostics.
func Lower(file *File, c *compiler.Context) (*compiler.Shader, error) {
	l := &Lowerer{c: c}
	l.push(false)
	defer l.pop()

	var shader *compiler.Shader
	for _, d := range file.Decls {
		switch d := d.(type) {
		case *FuncDecl:
			l.lowerFunction(d)
		case *ShaderDecl:
			if shader != nil {
				l.at(d)
				c.Errorf(compiler.ErrBinding, "%s %s: only one shader can be defined per file", d.Kind, d.Name)
				continue
			}
			shader = l.lowerShader(d)
		}
	}
	if shader == nil {
		c.Errorf(compiler.ErrBinding, "no shader defined")
	}

	if diags := c.Diagnostics(); diags.HasErrors() {
		return nil, diags
	}
	return shader, nil
}

func (l *Lowerer) at(n Node) {
	l.c.At(n.Pos().pos())
}

func (l *Lowerer) push(function bool) {
	l.scopes = append(l.scopes, &scope{names: make(map[string]symbol), function: function})
}

func (l *Lowerer) pop() {
	l.scopes = l.scopes[:len(l.scopes)-1]
}

func (l *Lowerer) define(name string, s symbol) {
	top := l.scopes[len(l.scopes)-1]
	if _, dup := top.names[name]; dup {
		l.c.Errorf(compiler.ErrBinding, "%s is already declared in this scope", name)
		return
	}
	top.names[name] = s
}

// lookup resolves name from the innermost scope outward. Variables of
// scopes outside the current function are reported as hidden.
func (l *Lowerer) lookup(name string) (s symbol, hidden bool) {
	crossed := false
	for i := len(l.scopes) - 1; i >= 0; i-- {
		sc := l.scopes[i]
		if sym, ok := sc.names[name]; ok {
			if sym.v != nil && crossed {
				return symbol{}, true
			}
			return sym, false
		}
		if sc.function {
			crossed = true
		}
	}
	return symbol{}, false
}

// variable resolves name to a variable, falling back to built-in globals.
func (l *Lowerer) variable(name string) *ir.Variable {
	sym, hidden := l.lookup(name)
	switch {
	case sym.v != nil:
		return sym.v
	case sym.fn != nil:
		l.c.Errorf(compiler.ErrBinding, "function %s used as a variable", name)
		return nil
	}
	if g := l.c.Global(name); g != nil {
		return g
	}
	if hidden {
		l.c.Errorf(compiler.ErrBinding, "%s is not visible in %s; declare it extern", name, l.fn.fn.Name)
		return nil
	}
	l.c.Errorf(compiler.ErrBinding, "undefined variable %s", name)
	return nil
}

// addLocal records v as a local of the shader or of the current function.
func (l *Lowerer) addLocal(v *ir.Variable) {
	if l.fn != nil {
		l.fn.fn.Locals = append(l.fn.fn.Locals, v)
		return
	}
	l.shader.Locals = append(l.shader.Locals, v)
}

// declType maps a declared type to an ir type. rate applies when the
// declaration has no qualifier.
func declType(spec TypeSpec, rate ir.Rate) ir.Type {
	t, _ := ir.ParseType(spec.Kind.String())
	switch spec.Rate {
	case QualifierUniform:
		rate = ir.Uniform
	case QualifierVarying:
		rate = ir.Varying
	}
	return t.WithRate(rate)
}

func newVariable(d *VarDecl, t ir.Type, storage ir.Storage) *ir.Variable {
	if d.Len > 0 {
		return ir.NewArray(d.Name, t, storage, d.Len)
	}
	return ir.NewVariable(d.Name, t, storage)
}

// lowerShader lowers the parameters and body of a shader. Parameters are
// uniform unless declared varying; each needs a default value.
func (l *Lowerer) lowerShader(d *ShaderDecl) *compiler.Shader {
	sh := &compiler.Shader{Kind: d.Kind.String(), Name: d.Name}
	l.shader = sh
	l.push(true)
	defer l.pop()

	var init []compiler.Expr
	for _, p := range d.Params {
		l.at(p)
		v := newVariable(p, declType(p.Type, ir.Uniform), ir.StorageParameter)
		if p.Init == nil {
			l.c.Errorf(compiler.ErrBinding, "shader parameter %s needs a default value", p.Name)
		} else {
			init = append(init, l.initializer(v, p.Init))
		}
		l.define(p.Name, symbol{v: v})
		sh.Params = append(sh.Params, v)
	}
	l.at(d)
	sh.Init = l.c.Block(init...)
	sh.Body = l.block(d.Body)
	return sh
}

// lowerFunction defines a user function in the current scope. The name is
// bound before the body is lowered so that recursion is diagnosed by the
// compiler.
func (l *Lowerer) lowerFunction(d *FuncDecl) {
	l.at(d)
	fn := &compiler.Function{Name: d.Name}
	if d.Return.Kind != TokenVoid {
		fn.Return = ir.NewVariable(d.Name, declType(d.Return, ir.Varying), ir.StorageLocal)
	}
	l.define(d.Name, symbol{fn: fn})

	l.fn = &funcState{fn: fn, outer: l.fn}
	l.push(true)
	loops := l.loops
	l.loops = 0
	defer func() {
		l.pop()
		l.fn = l.fn.outer
		l.loops = loops
	}()

	for _, p := range d.Params {
		l.at(p)
		if p.Init != nil {
			l.c.Errorf(compiler.ErrBinding, "parameter %s of %s: default values are only allowed for shader parameters", p.Name, d.Name)
		}
		v := newVariable(p, declType(p.Type, ir.Varying), ir.StorageLocal)
		l.define(p.Name, symbol{v: v})
		fn.Params = append(fn.Params, v)
	}

	// A return is only allowed as the last statement of the body.
	l.push(false)
	defer l.pop()
	stmts := make([]compiler.Expr, 0, len(d.Body.Stmts))
	for i, s := range d.Body.Stmts {
		if ret, ok := s.(*ReturnStmt); ok && i == len(d.Body.Stmts)-1 {
			stmts = append(stmts, l.lowerReturn(ret))
			continue
		}
		stmts = append(stmts, l.stmt(s))
	}
	if fn.Return != nil {
		if n := len(d.Body.Stmts); n == 0 || !isReturn(d.Body.Stmts[n-1]) {
			l.c.Errorf(compiler.ErrBinding, "%s must end with a return statement", d.Name)
		}
	}
	l.at(d.Body)
	fn.Body = l.c.Block(stmts...)
}

func isReturn(s Stmt) bool {
	_, ok := s.(*ReturnStmt)
	return ok
}

func (l *Lowerer) lowerReturn(s *ReturnStmt) compiler.Expr {
	l.at(s)
	fn := l.fn.fn
	switch {
	case fn.Return == nil && s.Value != nil:
		l.c.Errorf(compiler.ErrBinding, "void function %s cannot return a value", fn.Name)
		return l.c.Null()
	case fn.Return == nil:
		return l.c.Block()
	case s.Value == nil:
		l.c.Errorf(compiler.ErrBinding, "%s must return a %s", fn.Name, fn.Return.Type.Name())
		return l.c.Null()
	}
	value := l.expr(s.Value, fn.Return.Type)
	l.at(s)
	return l.c.Assign(fn.Return, value)
}

// initializer assigns the initial value of a declared variable.
func (l *Lowerer) initializer(v *ir.Variable, init Expr) compiler.Expr {
	lit, isList := init.(*ArrayLit)
	switch {
	case v.Array && !isList:
		l.at(init)
		l.c.Errorf(compiler.ErrCategory, "array %s must be initialized with a {...} list", v.Name)
		return l.c.Null()
	case !v.Array && isList:
		l.at(init)
		l.c.Errorf(compiler.ErrCategory, "%s is not an array", v.Name)
		return l.c.Null()
	case isList:
		items := make([]compiler.Expr, len(lit.Elems))
		for i, e := range lit.Elems {
			items[i] = l.expr(e, v.Type)
		}
		l.at(init)
		return l.c.AssignArray(v, items)
	}
	value := l.expr(init, v.Type)
	l.at(init)
	return l.c.Assign(v, value)
}

// =============================================================================
// Statements
// =============================================================================

func (l *Lowerer) block(b *BlockStmt) compiler.Expr {
	l.push(false)
	defer l.pop()

	stmts := make([]compiler.Expr, 0, len(b.Stmts))
	for _, s := range b.Stmts {
		stmts = append(stmts, l.stmt(s))
	}
	l.at(b)
	return l.c.Block(stmts...)
}

// body lowers the statement controlled by a branch or loop in its own scope.
func (l *Lowerer) body(s Stmt) compiler.Expr {
	if b, ok := s.(*BlockStmt); ok {
		return l.block(b)
	}
	l.push(false)
	defer l.pop()
	return l.stmt(s)
}

func (l *Lowerer) stmt(s Stmt) compiler.Expr {
	c := l.c
	switch s := s.(type) {
	case *BlockStmt:
		return l.block(s)
	case *DeclStmt:
		return l.declStmt(s)
	case *FuncDecl:
		l.lowerFunction(s)
		return c.Block()
	case *ExprStmt:
		return l.expr(s.Expr, ir.None)
	case *IfStmt:
		cond := l.expr(s.Cond, ir.None)
		then := l.body(s.Then)
		var els compiler.Expr
		if s.Else != nil {
			els = l.body(s.Else)
		}
		l.at(s)
		return c.If(cond, then, els)
	case *WhileStmt:
		cond := l.expr(s.Cond, ir.None)
		body := l.loopBody(s.Body)
		l.at(s)
		return c.While(cond, body)
	case *ForStmt:
		return l.forStmt(s)
	case *BranchStmt:
		l.at(s)
		if l.loops == 0 {
			c.Errorf(compiler.ErrBinding, "%s outside a loop", s.Tok)
			return c.Null()
		}
		if s.Tok == TokenBreak {
			return c.Break()
		}
		return c.Continue()
	case *ReturnStmt:
		l.at(s)
		if l.fn == nil {
			c.Errorf(compiler.ErrBinding, "return outside a function")
		} else {
			c.Errorf(compiler.ErrBinding, "return must be the last statement of %s", l.fn.fn.Name)
		}
		return c.Null()
	case *LightStmt:
		return l.lightStmt(s)
	case *GatherStmt:
		return l.gatherStmt(s)
	}
	l.at(s)
	c.Errorf(compiler.ErrInternal, "unexpected statement %T", s)
	return c.Null()
}

func (l *Lowerer) loopBody(s Stmt) compiler.Expr {
	l.loops++
	defer func() { l.loops-- }()
	return l.body(s)
}

func (l *Lowerer) forStmt(s *ForStmt) compiler.Expr {
	c := l.c
	var init, update compiler.Expr
	if s.Init != nil {
		init = l.expr(s.Init, ir.None)
	}
	if s.Cond == nil {
		l.at(s)
		c.Errorf(compiler.ErrBinding, "for loop needs a condition")
		return c.Null()
	}
	cond := l.expr(s.Cond, ir.None)
	if s.Update != nil {
		update = l.expr(s.Update, ir.None)
	}
	body := l.loopBody(s.Body)
	l.at(s)
	return c.For(init, cond, update, body)
}

// declStmt declares locals and extern references. Locals are varying
// unless declared uniform.
func (l *Lowerer) declStmt(d *DeclStmt) compiler.Expr {
	var inits []compiler.Expr
	for _, vd := range d.Vars {
		l.at(vd)
		t := declType(vd.Type, ir.Varying)
		if vd.Extern {
			l.externDecl(vd, t)
			continue
		}
		if vd.Output {
			l.c.Errorf(compiler.ErrBinding, "output is only allowed on parameters")
		}
		v := newVariable(vd, t, ir.StorageLocal)
		if vd.Init != nil {
			inits = append(inits, l.initializer(v, vd.Init))
		}
		l.addLocal(v)
		l.at(vd)
		l.define(vd.Name, symbol{v: v})
	}
	l.at(d)
	return l.c.Block(inits...)
}

// externDecl binds a name declared extern. Inside a function it becomes an
// extern reference resolved at each call; in the shader body it must name a
// built-in global.
func (l *Lowerer) externDecl(vd *VarDecl, t ir.Type) {
	if l.fn != nil {
		v := newVariable(vd, t, ir.StorageExtern)
		l.fn.fn.Locals = append(l.fn.fn.Locals, v)
		l.define(vd.Name, symbol{v: v})
		return
	}
	g := l.c.Global(vd.Name)
	if g == nil {
		l.c.Errorf(compiler.ErrBinding, "extern %s does not name a global variable", vd.Name)
		return
	}
	if g.Type.Category != t.Category {
		l.c.Errorf(compiler.ErrBinding, "extern %s declared %s but the variable is %s", vd.Name, t.Name(), g.Type.Name())
		return
	}
	l.define(vd.Name, symbol{v: g})
}

// lightStmt lowers illuminance, illuminate and solar. A leading string
// argument of illuminance is the light category.
func (l *Lowerer) lightStmt(s *LightStmt) compiler.Expr {
	c := l.c
	args := l.exprs(s.Args)

	var category compiler.Expr
	if s.Tok == TokenIlluminance && len(args) > 0 && args[0].Type().Category == ir.CategoryString {
		category, args = args[0], args[1:]
	}

	l.at(s)
	switch s.Tok {
	case TokenIlluminance:
		if len(args) < 1 || len(args) > 3 {
			c.Errorf(compiler.ErrBinding, "illuminance expects a position, an axis and an angle")
			return c.Null()
		}
	case TokenIlluminate:
		if len(args) != 1 && len(args) != 3 {
			c.Errorf(compiler.ErrBinding, "illuminate expects a position, optionally followed by an axis and an angle")
			return c.Null()
		}
	case TokenSolar:
		if len(args) != 0 && len(args) != 2 {
			c.Errorf(compiler.ErrBinding, "solar expects no arguments or an axis and an angle")
			return c.Null()
		}
	}
	var p, n, angle compiler.Expr
	operands := []*compiler.Expr{&p, &n, &angle}
	if s.Tok == TokenSolar {
		operands = operands[1:]
	}
	for i, a := range args {
		*operands[i] = a
	}

	body := l.body(s.Body)
	l.at(s)
	switch s.Tok {
	case TokenIlluminance:
		return c.Illuminance(category, p, n, angle, body)
	case TokenIlluminate:
		return c.Illuminate(p, n, angle, body)
	}
	return c.Solar(n, angle, body)
}

func (l *Lowerer) gatherStmt(s *GatherStmt) compiler.Expr {
	args := l.exprs(s.Args)
	body := l.body(s.Body)
	var els compiler.Expr
	if s.Else != nil {
		els = l.body(s.Else)
	}
	l.at(s)
	return l.c.Gather(args, body, els)
}
