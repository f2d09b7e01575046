// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package sl

// File is a parsed source file: file-scope functions and shader
// declarations in source order.
type File struct {
	Decls []Decl
}

// Node is the base interface for all AST nodes.
type Node interface {
	Pos() Position
}

// Decl is a file-scope declaration.
type Decl interface {
	Node
	declNode()
}

// Stmt is the interface for statements.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is the interface for expressions.
type Expr interface {
	Node
	exprNode()
}

// Qualifier is the rate qualifier written in a declaration.
type Qualifier uint8

const (
	QualifierNone Qualifier = iota
	QualifierUniform
	QualifierVarying
)

// TypeSpec is a declared type: an optional rate qualifier and a type
// keyword. Kind is TokenVoid for functions without a value.
type TypeSpec struct {
	Rate Qualifier
	Kind TokenKind
	At   Position
}

// ShaderDecl is a shader definition such as `surface plastic(...) {...}`.
type ShaderDecl struct {
	Kind   TokenKind
	Name   string
	Params []*VarDecl
	Body   *BlockStmt
	At     Position
}

func (s *ShaderDecl) Pos() Position { return s.At }
func (s *ShaderDecl) declNode()     {}

// FuncDecl is a function definition. It may appear at file scope or inside
// a body.
type FuncDecl struct {
	Return TypeSpec
	Name   string
	Params []*VarDecl
	Body   *BlockStmt
	At     Position
}

func (f *FuncDecl) Pos() Position { return f.At }
func (f *FuncDecl) declNode()     {}
func (f *FuncDecl) stmtNode()     {}

// VarDecl declares one variable: a parameter, a local or an extern
// reference. Len is the element count of arrays and 0 for scalars.
type VarDecl struct {
	Type   TypeSpec
	Name   string
	Len    int
	Output bool
	Extern bool
	Init   Expr
	At     Position
}

func (v *VarDecl) Pos() Position { return v.At }
func (v *VarDecl) stmtNode()     {}

// DeclStmt groups the variables of one declaration statement.
type DeclStmt struct {
	Vars []*VarDecl
	At   Position
}

func (d *DeclStmt) Pos() Position { return d.At }
func (d *DeclStmt) stmtNode()     {}

// BlockStmt is a braced statement list with its own scope.
type BlockStmt struct {
	Stmts []Stmt
	At    Position
}

func (b *BlockStmt) Pos() Position { return b.At }
func (b *BlockStmt) stmtNode()     {}

// ExprStmt is an expression evaluated for its side effects.
type ExprStmt struct {
	Expr Expr
	At   Position
}

func (e *ExprStmt) Pos() Position { return e.At }
func (e *ExprStmt) stmtNode()     {}

// IfStmt is a conditional with an optional else branch.
type IfStmt struct {
	Cond Expr
	Then Stmt
	Else Stmt
	At   Position
}

func (s *IfStmt) Pos() Position { return s.At }
func (s *IfStmt) stmtNode()     {}

// WhileStmt is a while loop.
type WhileStmt struct {
	Cond Expr
	Body Stmt
	At   Position
}

func (s *WhileStmt) Pos() Position { return s.At }
func (s *WhileStmt) stmtNode()     {}

// ForStmt is a for loop; each clause may be nil.
type ForStmt struct {
	Init   Expr
	Cond   Expr
	Update Expr
	Body   Stmt
	At     Position
}

func (s *ForStmt) Pos() Position { return s.At }
func (s *ForStmt) stmtNode()     {}

// BranchStmt is break or continue.
type BranchStmt struct {
	Tok TokenKind
	At  Position
}

func (s *BranchStmt) Pos() Position { return s.At }
func (s *BranchStmt) stmtNode()     {}

// ReturnStmt returns from a function; Value is nil for a bare return.
type ReturnStmt struct {
	Value Expr
	At    Position
}

func (s *ReturnStmt) Pos() Position { return s.At }
func (s *ReturnStmt) stmtNode()     {}

// LightStmt is one of the light loops: illuminance, illuminate or solar.
type LightStmt struct {
	Tok  TokenKind
	Args []Expr
	Body Stmt
	At   Position
}

func (s *LightStmt) Pos() Position { return s.At }
func (s *LightStmt) stmtNode()     {}

// GatherStmt is a ray-sampling loop with an optional miss branch.
type GatherStmt struct {
	Args []Expr
	Body Stmt
	Else Stmt
	At   Position
}

func (s *GatherStmt) Pos() Position { return s.At }
func (s *GatherStmt) stmtNode()     {}

// Ident references a variable.
type Ident struct {
	Name string
	At   Position
}

func (e *Ident) Pos() Position { return e.At }
func (e *Ident) exprNode()     {}

// NumberLit is a numeric literal.
type NumberLit struct {
	Value float64
	At    Position
}

func (e *NumberLit) Pos() Position { return e.At }
func (e *NumberLit) exprNode()     {}

// StringLit is a string literal; Value is unquoted.
type StringLit struct {
	Value string
	At    Position
}

func (e *StringLit) Pos() Position { return e.At }
func (e *StringLit) exprNode()     {}

// BinaryExpr is a binary operation.
type BinaryExpr struct {
	Op    TokenKind
	Left  Expr
	Right Expr
	At    Position
}

func (e *BinaryExpr) Pos() Position { return e.At }
func (e *BinaryExpr) exprNode()     {}

// UnaryExpr is a prefix - or !.
type UnaryExpr struct {
	Op      TokenKind
	Operand Expr
	At      Position
}

func (e *UnaryExpr) Pos() Position { return e.At }
func (e *UnaryExpr) exprNode()     {}

// AssignExpr is = or a compound assignment. Target is an *Ident or an
// *IndexExpr.
type AssignExpr struct {
	Op     TokenKind
	Target Expr
	Value  Expr
	At     Position
}

func (e *AssignExpr) Pos() Position { return e.At }
func (e *AssignExpr) exprNode()     {}

// IncDecExpr is ++ or --, prefix or postfix.
type IncDecExpr struct {
	Op     TokenKind
	Target Expr
	Prefix bool
	At     Position
}

func (e *IncDecExpr) Pos() Position { return e.At }
func (e *IncDecExpr) exprNode()     {}

// CondExpr is cond ? a : b.
type CondExpr struct {
	Cond Expr
	Then Expr
	Else Expr
	At   Position
}

func (e *CondExpr) Pos() Position { return e.At }
func (e *CondExpr) exprNode()     {}

// CallExpr calls a user function or a built-in.
type CallExpr struct {
	Name string
	Args []Expr
	At   Position
}

func (e *CallExpr) Pos() Position { return e.At }
func (e *CallExpr) exprNode()     {}

// IndexExpr is x[i]. On a texture name it selects the channel.
type IndexExpr struct {
	Base  Expr
	Index Expr
	At    Position
}

func (e *IndexExpr) Pos() Position { return e.At }
func (e *IndexExpr) exprNode()     {}

// TupleExpr is a parenthesized list of 3 or 16 components.
type TupleExpr struct {
	Elems []Expr
	At    Position
}

func (e *TupleExpr) Pos() Position { return e.At }
func (e *TupleExpr) exprNode()     {}

// ArrayLit is a braced array initializer.
type ArrayLit struct {
	Elems []Expr
	At    Position
}

func (e *ArrayLit) Pos() Position { return e.At }
func (e *ArrayLit) exprNode()     {}

// CastExpr is a type cast such as `color (1, 0, 0)`, optionally naming
// the coordinate system of the operand: `point "world" (0, 0, 0)`.
type CastExpr struct {
	Type   TokenKind
	System string
	Expr   Expr
	At     Position
}

func (e *CastExpr) Pos() Position { return e.At }
func (e *CastExpr) exprNode()     {}
