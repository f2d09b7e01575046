// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package compiler

import (
	"github.com/gogpu/sdrc/builtin"
	"github.com/gogpu/sdrc/ir"
)

// Expr is a node of the expression tree. The set of node kinds is closed;
// emit switches over all of them.
//
// Statements are expressions of category None.
type Expr interface {
	// Type returns the value type, fixed at construction.
	Type() ir.Type
	// Pos returns the source position the node was built at.
	Pos() Pos
	exprNode()
}

type node struct {
	typ ir.Type
	pos Pos
}

func (n *node) Type() ir.Type { return n.typ }
func (n *node) Pos() Pos      { return n.pos }
func (*node) exprNode()       {}

// Null is a node that emits nothing. Failed constructions produce it.
type Null struct {
	node
}

// Terminal is a reference to a variable.
type Terminal struct {
	node
	Var *ir.Variable
}

// Constant is a literal.
type Constant struct {
	node
	Var *ir.Variable
}

// Vector composes a vector from three floats.
type Vector struct {
	node
	X, Y, Z Expr
}

// Matrix composes a matrix from sixteen floats.
type Matrix struct {
	node
	Elements [16]Expr
}

// Index reads an array element.
type Index struct {
	node
	Array *ir.Variable
	Index Expr
}

// IndexAssign writes an array element. Its value is the written value.
type IndexAssign struct {
	node
	Array *ir.Variable
	Index Expr
	Value Expr
}

// IndexUpdate applies a compound operator to an array element. The index is
// evaluated once into a temporary bound to Slot while Write is emitted.
type IndexUpdate struct {
	node
	Slot  *ir.Variable
	Index Expr
	Write *IndexAssign
}

// ArrayMove stores a list of values into a whole array.
type ArrayMove struct {
	node
	Array *ir.Variable
	Items []Expr
}

// Binary applies a two-operand instruction to operands of equal category.
type Binary struct {
	node
	Op   string
	A, B Expr
}

// Unary applies a one-operand instruction. Category promotions are unary
// nodes as well.
type Unary struct {
	node
	Op string
	A  Expr
}

// SystemConvert transforms a value from a named coordinate or color system.
type SystemConvert struct {
	node
	Op     string
	System string
	A      Expr
}

// Conditional is the ternary operator.
type Conditional struct {
	node
	Cond, True, False Expr
}

// Assign stores a value into a variable. Its value is the stored value.
type Assign struct {
	node
	Var   *ir.Variable
	Value Expr
}

// Update applies a compound operator such as += to a variable.
type Update struct {
	node
	Var   *ir.Variable
	Op    string
	Value Expr

	// Pre makes the node's value the updated value rather than the old one.
	Pre bool
}

// Sequence emits two statements in order.
type Sequence struct {
	node
	First, Second Expr
}

// Block emits a list of statements in order.
type Block struct {
	node
	Stmts []Expr
}

// Call is a call of a user function.
type Call struct {
	node
	Fn   *Function
	Args []Expr
}

// BuiltinCall is a call of a built-in. Proto is the prototype after implicit
// argument rewrites; Args already contains the implicit arguments.
type BuiltinCall struct {
	node
	Builtin *builtin.Prototype
	Proto   string
	Args    []Expr
}

// If is a conditional statement. Else may be nil.
type If struct {
	node
	Cond, Then, Else Expr
}

// Loop is a for or while loop. Init and Update may be nil.
type Loop struct {
	node
	Init, Cond, Update, Body Expr
}

// Illuminance loops over the lights reaching a point. Each filter may be nil.
type Illuminance struct {
	node
	Category, P, N, Angle Expr
	Body                  Expr
}

// LightSource is the illuminate or solar construct of a light shader.
type LightSource struct {
	node
	Begin, End  string
	P, N, Angle Expr
	Body        Expr
}

// GatherPair is one (output name, destination) pair of a gather loop.
type GatherPair struct {
	Name  Expr
	Value Expr
}

// Gather samples rays around a direction. Else may be nil.
type Gather struct {
	node
	Category, P, Dir, Angle, Samples Expr
	Pairs                            []GatherPair
	Body, Else                       Expr
}

// Raw emits a single instruction, e.g. break or continue.
type Raw struct {
	node
	Op       string
	Operands []string
}
