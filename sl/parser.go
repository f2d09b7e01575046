// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package sl

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser parses shading language tokens into an AST.
type Parser struct {
	tokens  []Token
	current int
	errors  ParseErrors
}

// NewParser creates a new parser for the given tokens.
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse parses the tokens and returns the file AST. On syntax errors the
// partial AST is returned together with a ParseErrors list.
func (p *Parser) Parse() (*File, error) {
	file := &File{}

	for !p.isAtEnd() {
		decl, err := p.declaration()
		if err != nil {
			p.errors.Add(err)
			p.synchronizeDecl()
			continue
		}
		file.Decls = append(file.Decls, decl)
	}

	if len(p.errors) > 0 {
		return file, p.errors
	}
	return file, nil
}

// declaration parses a shader or a file-scope function.
func (p *Parser) declaration() (Decl, *ParseError) {
	if p.peek().Kind.IsShaderKind() {
		return p.shaderDecl()
	}
	if p.isTypeStart() {
		spec, err := p.typeSpec()
		if err != nil {
			return nil, err
		}
		return p.funcDecl(spec)
	}
	return nil, p.errorf("expected a shader or function definition, got %s", p.peek().Kind)
}

func (p *Parser) shaderDecl() (*ShaderDecl, *ParseError) {
	kind := p.advance()
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	params, err := p.formals()
	if err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return &ShaderDecl{Kind: kind.Kind, Name: name.Lexeme, Params: params, Body: body, At: kind.Position()}, nil
}

// funcDecl parses the rest of a function definition after its return type.
func (p *Parser) funcDecl(ret TypeSpec) (*FuncDecl, *ParseError) {
	if ret.Rate != QualifierNone && ret.Kind == TokenVoid {
		return nil, &ParseError{Message: "void cannot be qualified", Token: p.previous()}
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	params, err := p.formals()
	if err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return &FuncDecl{Return: ret, Name: name.Lexeme, Params: params, Body: body, At: ret.At}, nil
}

// formals parses a parenthesized parameter list. Parameters are separated
// by ';' or ','; after ',' a parameter without a type shares the previous
// one's.
func (p *Parser) formals() ([]*VarDecl, *ParseError) {
	if err := p.expectErr(TokenLeftParen); err != nil {
		return nil, err
	}

	var params []*VarDecl
	var spec TypeSpec
	output := false
	typed := false
	for !p.check(TokenRightParen) && !p.isAtEnd() {
		if !typed || p.isTypeStart() || p.check(TokenOutput) {
			output = p.match(TokenOutput)
			s, err := p.typeSpec()
			if err != nil {
				return nil, err
			}
			if s.Kind == TokenVoid {
				return nil, &ParseError{Message: "parameters cannot be void", Token: p.previous()}
			}
			spec, typed = s, true
		}
		v, err := p.declarator(spec)
		if err != nil {
			return nil, err
		}
		v.Output = output
		params = append(params, v)

		if p.match(TokenSemicolon) {
			typed = false
			continue
		}
		if !p.match(TokenComma) {
			break
		}
	}

	if err := p.expectErr(TokenRightParen); err != nil {
		return nil, err
	}
	return params, nil
}

// typeSpec parses [uniform|varying] type.
func (p *Parser) typeSpec() (TypeSpec, *ParseError) {
	start := p.peek()
	spec := TypeSpec{At: start.Position()}
	if p.match(TokenUniform) {
		spec.Rate = QualifierUniform
	} else if p.match(TokenVarying) {
		spec.Rate = QualifierVarying
	}
	if !p.peek().Kind.IsType() {
		return spec, p.errorf("expected a type, got %s", p.peek().Kind)
	}
	spec.Kind = p.advance().Kind
	return spec, nil
}

// declarator parses name [ '[' N ']' ] [ = init ].
func (p *Parser) declarator(spec TypeSpec) (*VarDecl, *ParseError) {
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	v := &VarDecl{Type: spec, Name: name.Lexeme, At: name.Position()}

	if p.match(TokenLeftBracket) {
		size := p.peek()
		if err := p.expectErr(TokenNumber); err != nil {
			return nil, err
		}
		n, convErr := strconv.Atoi(size.Lexeme)
		if convErr != nil || n <= 0 {
			return nil, &ParseError{Message: fmt.Sprintf("invalid array length %s", size.Lexeme), Token: size}
		}
		v.Len = n
		if err := p.expectErr(TokenRightBracket); err != nil {
			return nil, err
		}
	}

	if p.match(TokenEqual) {
		var init Expr
		if p.check(TokenLeftBrace) {
			init, err = p.arrayLit()
		} else {
			init, err = p.conditional()
		}
		if err != nil {
			return nil, err
		}
		v.Init = init
	}
	return v, nil
}

func (p *Parser) arrayLit() (*ArrayLit, *ParseError) {
	start := p.advance() // consume '{'
	lit := &ArrayLit{At: start.Position()}
	for !p.check(TokenRightBrace) && !p.isAtEnd() {
		e, err := p.conditional()
		if err != nil {
			return nil, err
		}
		lit.Elems = append(lit.Elems, e)
		if !p.match(TokenComma) {
			break
		}
	}
	if err := p.expectErr(TokenRightBrace); err != nil {
		return nil, err
	}
	return lit, nil
}

// block parses a braced statement list. A malformed statement is recorded
// and skipped so that the rest of the block is still checked.
func (p *Parser) block() (*BlockStmt, *ParseError) {
	start := p.peek()
	if err := p.expectErr(TokenLeftBrace); err != nil {
		return nil, err
	}

	stmts := make([]Stmt, 0, 4)
	for !p.check(TokenRightBrace) && !p.isAtEnd() {
		stmt, err := p.statement()
		if err != nil {
			p.errors.Add(err)
			p.synchronizeStmt()
			continue
		}
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}

	if err := p.expectErr(TokenRightBrace); err != nil {
		return nil, err
	}
	return &BlockStmt{Stmts: stmts, At: start.Position()}, nil
}

// statement parses a statement. An empty statement yields nil.
func (p *Parser) statement() (Stmt, *ParseError) {
	switch {
	case p.check(TokenLeftBrace):
		return p.block()
	case p.match(TokenSemicolon):
		return nil, nil
	case p.check(TokenIf):
		return p.ifStmt()
	case p.check(TokenWhile):
		return p.whileStmt()
	case p.check(TokenFor):
		return p.forStmt()
	case p.check(TokenBreak), p.check(TokenContinue):
		tok := p.advance()
		if err := p.expectErr(TokenSemicolon); err != nil {
			return nil, err
		}
		return &BranchStmt{Tok: tok.Kind, At: tok.Position()}, nil
	case p.check(TokenReturn):
		return p.returnStmt()
	case p.check(TokenIlluminance), p.check(TokenIlluminate), p.check(TokenSolar):
		return p.lightStmt()
	case p.check(TokenGather):
		return p.gatherStmt()
	case p.check(TokenExtern), p.check(TokenOutput), p.isTypeStart():
		return p.declStmt()
	default:
		start := p.peek()
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		if err := p.expectErr(TokenSemicolon); err != nil {
			return nil, err
		}
		return &ExprStmt{Expr: e, At: start.Position()}, nil
	}
}

// declStmt parses a local declaration, an extern reference, or a nested
// function definition.
func (p *Parser) declStmt() (Stmt, *ParseError) {
	start := p.peek()
	extern := p.match(TokenExtern)
	output := p.match(TokenOutput)
	spec, err := p.typeSpec()
	if err != nil {
		return nil, err
	}

	if !extern && !output && p.check(TokenIdent) && p.peekAt(1).Kind == TokenLeftParen {
		return p.funcDecl(spec)
	}
	if spec.Kind == TokenVoid {
		return nil, &ParseError{Message: "variables cannot be void", Token: p.previous()}
	}

	d := &DeclStmt{At: start.Position()}
	for {
		v, err := p.declarator(spec)
		if err != nil {
			return nil, err
		}
		v.Extern = extern
		v.Output = output
		if extern && v.Init != nil {
			return nil, &ParseError{Message: fmt.Sprintf("extern %s cannot have an initializer", v.Name), Token: start}
		}
		d.Vars = append(d.Vars, v)
		if !p.match(TokenComma) {
			break
		}
	}
	if err := p.expectErr(TokenSemicolon); err != nil {
		return nil, err
	}
	return d, nil
}

func (p *Parser) ifStmt() (*IfStmt, *ParseError) {
	start := p.advance() // consume 'if'

	cond, err := p.parenExpr()
	if err != nil {
		return nil, err
	}
	then, err := p.body()
	if err != nil {
		return nil, err
	}

	s := &IfStmt{Cond: cond, Then: then, At: start.Position()}
	if p.match(TokenElse) {
		if s.Else, err = p.body(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (p *Parser) whileStmt() (*WhileStmt, *ParseError) {
	start := p.advance() // consume 'while'

	cond, err := p.parenExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.body()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{Cond: cond, Body: body, At: start.Position()}, nil
}

func (p *Parser) forStmt() (*ForStmt, *ParseError) {
	start := p.advance() // consume 'for'
	s := &ForStmt{At: start.Position()}

	if err := p.expectErr(TokenLeftParen); err != nil {
		return nil, err
	}
	clauses := []*Expr{&s.Init, &s.Cond, &s.Update}
	closers := []TokenKind{TokenSemicolon, TokenSemicolon, TokenRightParen}
	for i, clause := range clauses {
		if !p.check(closers[i]) {
			e, err := p.expression()
			if err != nil {
				return nil, err
			}
			*clause = e
		}
		if err := p.expectErr(closers[i]); err != nil {
			return nil, err
		}
	}

	body, err := p.body()
	if err != nil {
		return nil, err
	}
	s.Body = body
	return s, nil
}

func (p *Parser) returnStmt() (*ReturnStmt, *ParseError) {
	start := p.advance() // consume 'return'

	s := &ReturnStmt{At: start.Position()}
	if !p.check(TokenSemicolon) {
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		s.Value = e
	}
	if err := p.expectErr(TokenSemicolon); err != nil {
		return nil, err
	}
	return s, nil
}

func (p *Parser) lightStmt() (*LightStmt, *ParseError) {
	start := p.advance()

	args, err := p.arguments()
	if err != nil {
		return nil, err
	}
	body, err := p.body()
	if err != nil {
		return nil, err
	}
	return &LightStmt{Tok: start.Kind, Args: args, Body: body, At: start.Position()}, nil
}

func (p *Parser) gatherStmt() (*GatherStmt, *ParseError) {
	start := p.advance() // consume 'gather'

	args, err := p.arguments()
	if err != nil {
		return nil, err
	}
	body, err := p.body()
	if err != nil {
		return nil, err
	}

	s := &GatherStmt{Args: args, Body: body, At: start.Position()}
	if p.match(TokenElse) {
		if s.Else, err = p.body(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// body parses the statement controlled by if, else or a loop. An empty
// statement becomes an empty block.
func (p *Parser) body() (Stmt, *ParseError) {
	at := p.peek().Position()
	s, err := p.statement()
	if err != nil {
		return nil, err
	}
	if s == nil {
		return &BlockStmt{At: at}, nil
	}
	return s, nil
}

func (p *Parser) parenExpr() (Expr, *ParseError) {
	if err := p.expectErr(TokenLeftParen); err != nil {
		return nil, err
	}
	e, err := p.expression()
	if err != nil {
		return nil, err
	}
	if err := p.expectErr(TokenRightParen); err != nil {
		return nil, err
	}
	return e, nil
}

// arguments parses a parenthesized, possibly empty, argument list.
func (p *Parser) arguments() ([]Expr, *ParseError) {
	if err := p.expectErr(TokenLeftParen); err != nil {
		return nil, err
	}
	args := make([]Expr, 0, 4)
	for !p.check(TokenRightParen) && !p.isAtEnd() {
		arg, err := p.conditional()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.match(TokenComma) {
			break
		}
	}
	if err := p.expectErr(TokenRightParen); err != nil {
		return nil, err
	}
	return args, nil
}

// expression parses an assignment expression.
func (p *Parser) expression() (Expr, *ParseError) {
	left, err := p.conditional()
	if err != nil {
		return nil, err
	}

	if !isAssignOp(p.peek().Kind) {
		return left, nil
	}
	op := p.advance()
	switch left.(type) {
	case *Ident, *IndexExpr:
	default:
		return nil, &ParseError{Message: "invalid assignment target", Token: op}
	}
	right, err := p.expression()
	if err != nil {
		return nil, err
	}
	return &AssignExpr{Op: op.Kind, Target: left, Value: right, At: op.Position()}, nil
}

// conditional parses cond ? a : b.
func (p *Parser) conditional() (Expr, *ParseError) {
	cond, err := p.logicalOr()
	if err != nil {
		return nil, err
	}
	if !p.check(TokenQuestion) {
		return cond, nil
	}
	q := p.advance()
	then, err := p.expression()
	if err != nil {
		return nil, err
	}
	if err := p.expectErr(TokenColon); err != nil {
		return nil, err
	}
	els, err := p.conditional()
	if err != nil {
		return nil, err
	}
	return &CondExpr{Cond: cond, Then: then, Else: els, At: q.Position()}, nil
}

// binaryLevels lists the binary operators from the loosest binding to the
// tightest. All are left associative.
var binaryLevels = [][]TokenKind{
	{TokenPipePipe},
	{TokenAmpAmp},
	{TokenEqualEqual, TokenBangEqual},
	{TokenLess, TokenGreater, TokenLessEqual, TokenGreaterEqual},
	{TokenPlus, TokenMinus},
	{TokenStar, TokenSlash},
	{TokenCaret},
	{TokenDot},
}

func (p *Parser) logicalOr() (Expr, *ParseError) {
	return p.binary(0)
}

// binary parses the operators of binaryLevels[level] and tighter.
func (p *Parser) binary(level int) (Expr, *ParseError) {
	if level == len(binaryLevels) {
		return p.unary()
	}

	left, err := p.binary(level + 1)
	if err != nil {
		return nil, err
	}
	for p.matchAny(binaryLevels[level]) {
		op := p.previous()
		right, err := p.binary(level + 1)
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op.Kind, Left: left, Right: right, At: op.Position()}
	}
	return left, nil
}

func (p *Parser) unary() (Expr, *ParseError) {
	switch {
	case p.check(TokenMinus), p.check(TokenBang):
		op := p.advance()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: op.Kind, Operand: operand, At: op.Position()}, nil
	case p.check(TokenPlusPlus), p.check(TokenMinusMinus):
		op := p.advance()
		target, err := p.unary()
		if err != nil {
			return nil, err
		}
		if !isTarget(target) {
			return nil, &ParseError{Message: fmt.Sprintf("invalid operand of %s", op.Kind), Token: op}
		}
		return &IncDecExpr{Op: op.Kind, Target: target, Prefix: true, At: op.Position()}, nil
	case p.peek().Kind.IsType() && p.peek().Kind != TokenVoid:
		return p.cast()
	}
	return p.postfix()
}

// cast parses type ["system"] operand.
func (p *Parser) cast() (Expr, *ParseError) {
	tok := p.advance()
	c := &CastExpr{Type: tok.Kind, At: tok.Position()}
	if p.check(TokenString) {
		c.System = unquote(p.advance().Lexeme)
	}
	operand, err := p.unary()
	if err != nil {
		return nil, err
	}
	c.Expr = operand
	return c, nil
}

func (p *Parser) postfix() (Expr, *ParseError) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}

	for {
		switch {
		case p.check(TokenLeftBracket):
			open := p.advance()
			index, err := p.expression()
			if err != nil {
				return nil, err
			}
			if err := p.expectErr(TokenRightBracket); err != nil {
				return nil, err
			}
			expr = &IndexExpr{Base: expr, Index: index, At: open.Position()}
		case p.check(TokenPlusPlus), p.check(TokenMinusMinus):
			if !isTarget(expr) {
				return expr, nil
			}
			op := p.advance()
			expr = &IncDecExpr{Op: op.Kind, Target: expr, At: op.Position()}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) primary() (Expr, *ParseError) {
	tok := p.peek()

	switch tok.Kind {
	case TokenNumber:
		p.advance()
		f, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, &ParseError{Message: fmt.Sprintf("invalid number %s", tok.Lexeme), Token: tok}
		}
		return &NumberLit{Value: f, At: tok.Position()}, nil

	case TokenString:
		p.advance()
		return &StringLit{Value: unquote(tok.Lexeme), At: tok.Position()}, nil

	case TokenIdent:
		p.advance()
		if p.check(TokenLeftParen) {
			args, err := p.arguments()
			if err != nil {
				return nil, err
			}
			return &CallExpr{Name: tok.Lexeme, Args: args, At: tok.Position()}, nil
		}
		return &Ident{Name: tok.Lexeme, At: tok.Position()}, nil

	case TokenLeftParen:
		p.advance()
		first, err := p.expression()
		if err != nil {
			return nil, err
		}
		if !p.check(TokenComma) {
			if err := p.expectErr(TokenRightParen); err != nil {
				return nil, err
			}
			return first, nil
		}
		tuple := &TupleExpr{Elems: []Expr{first}, At: tok.Position()}
		for p.match(TokenComma) {
			e, err := p.conditional()
			if err != nil {
				return nil, err
			}
			tuple.Elems = append(tuple.Elems, e)
		}
		if err := p.expectErr(TokenRightParen); err != nil {
			return nil, err
		}
		return tuple, nil
	}

	return nil, &ParseError{
		Message: fmt.Sprintf("unexpected %s in expression", tok.Kind),
		Token:   tok,
	}
}

// unquote strips the quotes of a string literal and resolves its escapes.
// Escapes Go does not know are kept verbatim.
func unquote(lexeme string) string {
	if s, err := strconv.Unquote(lexeme); err == nil {
		return s
	}
	return strings.TrimSuffix(strings.TrimPrefix(lexeme, `"`), `"`)
}

func isTarget(e Expr) bool {
	switch e.(type) {
	case *Ident, *IndexExpr:
		return true
	}
	return false
}

func isAssignOp(kind TokenKind) bool {
	switch kind {
	case TokenEqual, TokenPlusEqual, TokenMinusEqual, TokenStarEqual, TokenSlashEqual:
		return true
	}
	return false
}

// Helper methods

func (p *Parser) advance() Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) peek() Token {
	return p.tokens[p.current]
}

func (p *Parser) peekAt(n int) Token {
	if p.current+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.current+n]
}

func (p *Parser) previous() Token {
	return p.tokens[p.current-1]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Kind == TokenEOF
}

func (p *Parser) check(kind TokenKind) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Kind == kind
}

func (p *Parser) match(kind TokenKind) bool {
	if p.check(kind) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) matchAny(kinds []TokenKind) bool {
	for _, k := range kinds {
		if p.match(k) {
			return true
		}
	}
	return false
}

func (p *Parser) isTypeStart() bool {
	k := p.peek().Kind
	return k.IsType() || k == TokenUniform || k == TokenVarying
}

func (p *Parser) expectIdent() (Token, *ParseError) {
	tok := p.peek()
	if err := p.expectErr(TokenIdent); err != nil {
		return tok, err
	}
	return tok, nil
}

func (p *Parser) expectErr(kind TokenKind) *ParseError {
	if p.check(kind) {
		p.advance()
		return nil
	}
	return p.errorf("expected %s, got %s", kind, p.peek().Kind)
}

func (p *Parser) errorf(format string, args ...any) *ParseError {
	return &ParseError{Message: fmt.Sprintf(format, args...), Token: p.peek()}
}

// synchronizeStmt skips to the end of the current statement, leaving a
// closing brace for the enclosing block.
func (p *Parser) synchronizeStmt() {
	depth := 0
	for !p.isAtEnd() {
		switch p.peek().Kind {
		case TokenSemicolon:
			if depth == 0 {
				p.advance()
				return
			}
		case TokenLeftBrace:
			depth++
		case TokenRightBrace:
			if depth == 0 {
				return
			}
			depth--
			if depth == 0 {
				p.advance()
				return
			}
		}
		p.advance()
	}
}

// synchronizeDecl skips to the next token that can start a file-scope
// declaration outside any braces.
func (p *Parser) synchronizeDecl() {
	depth := 0
	p.advance()
	for !p.isAtEnd() {
		switch {
		case p.check(TokenLeftBrace):
			depth++
		case p.check(TokenRightBrace):
			if depth > 0 {
				depth--
			}
			if depth == 0 {
				p.advance()
				return
			}
		case depth == 0 && (p.peek().Kind.IsShaderKind() || p.isTypeStart()):
			return
		}
		p.advance()
	}
}
