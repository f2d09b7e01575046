// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

import (
	"fmt"
	"strings"
)

// Storage is the storage class of a variable.
type Storage uint8

const (
	StorageLocal Storage = iota
	StorageGlobal
	StorageParameter
	StorageExtern
	StorageTemporary
	StorageConstant
)

// String returns the declaration keyword for the storage class.
func (s Storage) String() string {
	switch s {
	case StorageGlobal:
		return "global"
	case StorageParameter:
		return "parameter"
	case StorageExtern:
		return "extern"
	case StorageTemporary:
		return "temporary"
	case StorageConstant:
		return "constant"
	default:
		return "local"
	}
}

// Variable describes a piece of typed storage.
//
// Name is the source name; CodeName is the operand text used in the
// instruction stream. For constants CodeName holds the literal itself.
type Variable struct {
	Name     string
	CodeName string
	Type     Type
	Storage  Storage

	// Array is set for array variables; Len is their element count.
	Array bool
	Len   int

	ReadOnly bool

	// Locked is set while a temporary is checked out of the register allocator.
	Locked bool

	// Default holds the literal default value of a parameter, or "".
	Default string
}

// NewVariable returns a scalar variable.
func NewVariable(name string, t Type, s Storage) *Variable {
	return &Variable{Name: name, CodeName: name, Type: t, Storage: s}
}

// NewArray returns an array variable of n elements.
func NewArray(name string, t Type, s Storage, n int) *Variable {
	v := NewVariable(name, t, s)
	v.Array = true
	v.Len = n
	return v
}

// NewConstant returns the descriptor of a literal. text is emitted verbatim.
func NewConstant(text string, t Type) *Variable {
	return &Variable{Name: text, CodeName: text, Type: t, Storage: StorageConstant, ReadOnly: true}
}

// IsTemporary reports whether v is owned by the register allocator.
func (v *Variable) IsTemporary() bool { return v.Storage == StorageTemporary }

// Declaration renders v as a declaration line:
//
//	<storage> <rate> <type>[<n>] <codename> [= <default>]
func (v *Variable) Declaration() string {
	var sb strings.Builder
	sb.WriteString(v.Storage.String())
	sb.WriteByte(' ')
	sb.WriteString(v.Type.String())
	if v.Array {
		fmt.Fprintf(&sb, "[%d]", v.Len)
	}
	sb.WriteByte(' ')
	sb.WriteString(v.CodeName)
	if v.Default != "" {
		sb.WriteString(" = ")
		sb.WriteString(v.Default)
	}
	return sb.String()
}

func (v *Variable) String() string {
	if v == nil {
		return "<nil>"
	}
	return v.Name
}
