// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package compiler

import "github.com/gogpu/sdrc/ir"

// Operator lists the instruction an operator compiles to for each operand
// category. An empty entry means the operator is not defined for that
// category.
type Operator struct {
	Name string

	Float   string
	Vector  string
	Matrix  string
	String  string
	Boolean string

	// Result, when not None, overrides the category of the result.
	Result ir.Category
}

// Opcode returns the instruction for operands of category cat.
func (o *Operator) Opcode(cat ir.Category) string {
	switch cat {
	case ir.CategoryFloat:
		return o.Float
	case ir.CategoryVector:
		return o.Vector
	case ir.CategoryMatrix:
		return o.Matrix
	case ir.CategoryString:
		return o.String
	case ir.CategoryBoolean:
		return o.Boolean
	}
	return ""
}

// The operators of the shading language.
var (
	OpAdd = &Operator{Name: "+", Float: ir.OpAddFloat, Vector: ir.OpAddVector, Matrix: ir.OpAddMatrix}
	OpSub = &Operator{Name: "-", Float: ir.OpSubFloat, Vector: ir.OpSubVector, Matrix: ir.OpSubMatrix}
	OpMul = &Operator{Name: "*", Float: ir.OpMulFloat, Vector: ir.OpMulVector, Matrix: ir.OpMulMatrix}
	OpDiv = &Operator{Name: "/", Float: ir.OpDivFloat, Vector: ir.OpDivVector, Matrix: ir.OpDivMatrix}

	OpDot   = &Operator{Name: ".", Vector: ir.OpDot, Result: ir.CategoryFloat}
	OpCross = &Operator{Name: "^", Vector: ir.OpCross}

	OpEqual = &Operator{Name: "==", Float: ir.OpEqualFloat, Vector: ir.OpEqualVector, Matrix: ir.OpEqualMatrix,
		String: ir.OpEqualString, Boolean: ir.OpEqualBoolean, Result: ir.CategoryBoolean}
	OpNotEqual = &Operator{Name: "!=", Float: ir.OpNotEqualFloat, Vector: ir.OpNotEqualVector, Matrix: ir.OpNotEqualMatrix,
		String: ir.OpNotEqualString, Boolean: ir.OpNotEqualBoolean, Result: ir.CategoryBoolean}
	OpLess         = &Operator{Name: "<", Float: ir.OpLess, Result: ir.CategoryBoolean}
	OpGreater      = &Operator{Name: ">", Float: ir.OpGreater, Result: ir.CategoryBoolean}
	OpLessEqual    = &Operator{Name: "<=", Float: ir.OpLessEqual, Result: ir.CategoryBoolean}
	OpGreaterEqual = &Operator{Name: ">=", Float: ir.OpGreaterEqual, Result: ir.CategoryBoolean}

	OpAnd = &Operator{Name: "&&", Boolean: ir.OpAnd}
	OpOr  = &Operator{Name: "||", Boolean: ir.OpOr}

	OpNeg = &Operator{Name: "-", Float: ir.OpNegFloat, Vector: ir.OpNegVector, Matrix: ir.OpNegMatrix}
	OpNot = &Operator{Name: "!", Boolean: ir.OpNot}
)

// rank orders categories for binary promotion; the higher rank wins.
func rank(c ir.Category) int {
	switch c {
	case ir.CategoryString:
		return 5
	case ir.CategoryMatrix:
		return 4
	case ir.CategoryVector:
		return 3
	case ir.CategoryFloat:
		return 2
	case ir.CategoryBoolean:
		return 1
	}
	return 0
}

// promoted returns the type two operands are promoted to: the operand type
// of the higher-ranked category, with the given rate.
func promoted(a, b ir.Type, rate ir.Rate) ir.Type {
	t := a
	if rank(b.Category) > rank(a.Category) {
		t = b
	}
	return t.WithRate(rate)
}

// combinedRate is uniform iff every type is uniform.
func combinedRate(types ...ir.Type) ir.Rate {
	for _, t := range types {
		if t.Rate == ir.Varying {
			return ir.Varying
		}
	}
	return ir.Uniform
}
