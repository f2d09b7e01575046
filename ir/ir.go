// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

import "strings"

// Category is the value category of an expression or variable.
type Category uint8

const (
	// CategoryNone marks a value-less expression (statements, void calls,
	// and nodes that failed to compile).
	CategoryNone Category = iota
	CategoryBoolean
	CategoryFloat
	CategoryVector
	CategoryMatrix
	CategoryString
)

// String returns the source-level name of the category.
func (c Category) String() string {
	switch c {
	case CategoryBoolean:
		return "boolean"
	case CategoryFloat:
		return "float"
	case CategoryVector:
		return "vector"
	case CategoryMatrix:
		return "matrix"
	case CategoryString:
		return "string"
	default:
		return "none"
	}
}

// VectorKind tags members of the vector family. It does not take part in
// category compatibility: a point moves into a color without conversion.
type VectorKind uint8

const (
	VectorGeneric VectorKind = iota
	VectorNormal
	VectorPoint
	VectorColor
)

// String returns the source-level name of the vector kind.
func (k VectorKind) String() string {
	switch k {
	case VectorNormal:
		return "normal"
	case VectorPoint:
		return "point"
	case VectorColor:
		return "color"
	default:
		return "vector"
	}
}

// Rate says how often a value is computed: once per batch or once per point.
type Rate uint8

const (
	Varying Rate = iota
	Uniform
)

// String returns "uniform" or "varying".
func (r Rate) String() string {
	if r == Uniform {
		return "uniform"
	}
	return "varying"
}

// Type is the full value type of an expression: category, vector kind and rate.
type Type struct {
	Category Category
	Vector   VectorKind
	Rate     Rate
}

// Common types.
var (
	None          = Type{Category: CategoryNone, Rate: Uniform}
	UniformFloat  = Type{Category: CategoryFloat, Rate: Uniform}
	VaryingFloat  = Type{Category: CategoryFloat, Rate: Varying}
	UniformString = Type{Category: CategoryString, Rate: Uniform}
	VaryingPoint  = Type{Category: CategoryVector, Vector: VectorPoint, Rate: Varying}
	VaryingColor  = Type{Category: CategoryVector, Vector: VectorColor, Rate: Varying}
)

// Of returns a type with the given category and rate.
func Of(c Category, r Rate) Type {
	return Type{Category: c, Rate: r}
}

// VectorOf returns a vector family type.
func VectorOf(k VectorKind, r Rate) Type {
	return Type{Category: CategoryVector, Vector: k, Rate: r}
}

// IsUniform reports whether the type is uniform.
func (t Type) IsUniform() bool { return t.Rate == Uniform }

// WithRate returns t with its rate replaced.
func (t Type) WithRate(r Rate) Type {
	t.Rate = r
	return t
}

// Base returns the type stripped of its vector kind, as used for register keys.
func (t Type) Base() Type {
	return Type{Category: t.Category, Rate: t.Rate}
}

// Name returns the type name without its rate, e.g. "color" or "float".
func (t Type) Name() string {
	if t.Category == CategoryVector {
		return t.Vector.String()
	}
	return t.Category.String()
}

// String returns "<rate> <name>".
func (t Type) String() string {
	return t.Rate.String() + " " + t.Name()
}

// Code returns the single-character prototype code for t.
func (t Type) Code() byte {
	switch t.Category {
	case CategoryFloat:
		return 'f'
	case CategoryVector:
		switch t.Vector {
		case VectorNormal:
			return 'n'
		case VectorPoint:
			return 'p'
		case VectorColor:
			return 'c'
		default:
			return 'v'
		}
	case CategoryMatrix:
		return 'm'
	case CategoryString:
		return 's'
	case CategoryBoolean:
		return 'b'
	default:
		return 'o'
	}
}

// TypeFromCode maps a prototype code (either case) to its type. The rate of
// the result is varying; callers apply rate rules themselves. The second
// result is false for codes that do not name a value type.
func TypeFromCode(code byte) (Type, bool) {
	switch code {
	case 'f', 'F':
		return VaryingFloat, true
	case 'v', 'V':
		return VectorOf(VectorGeneric, Varying), true
	case 'n', 'N':
		return VectorOf(VectorNormal, Varying), true
	case 'p', 'P':
		return VectorOf(VectorPoint, Varying), true
	case 'c', 'C':
		return VectorOf(VectorColor, Varying), true
	case 'm', 'M':
		return Of(CategoryMatrix, Varying), true
	case 's', 'S':
		return Of(CategoryString, Varying), true
	case 'b', 'B':
		return Of(CategoryBoolean, Varying), true
	case 'o':
		return Of(CategoryNone, Varying), true
	}
	return Type{}, false
}

// ParseType parses a source type name such as "float" or "normal".
func ParseType(name string) (Type, bool) {
	switch name {
	case "float":
		return VaryingFloat, true
	case "vector":
		return VectorOf(VectorGeneric, Varying), true
	case "normal":
		return VectorOf(VectorNormal, Varying), true
	case "point":
		return VectorOf(VectorPoint, Varying), true
	case "color":
		return VectorOf(VectorColor, Varying), true
	case "matrix":
		return Of(CategoryMatrix, Varying), true
	case "string":
		return Of(CategoryString, Varying), true
	case "boolean":
		return Of(CategoryBoolean, Varying), true
	}
	return Type{}, false
}

// ParseQualifiedType parses "[uniform|varying] name".
func ParseQualifiedType(s string) (Type, bool) {
	fields := strings.Fields(s)
	rate := Varying
	switch {
	case len(fields) == 2 && fields[0] == "uniform":
		rate = Uniform
		fields = fields[1:]
	case len(fields) == 2 && fields[0] == "varying":
		fields = fields[1:]
	case len(fields) != 1:
		return Type{}, false
	}
	t, ok := ParseType(fields[0])
	if !ok {
		return Type{}, false
	}
	return t.WithRate(rate), true
}
