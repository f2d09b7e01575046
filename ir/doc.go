// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package ir defines the data the shading compiler produces and the VM
// consumes.
//
// # Types
//
// Every value has a Category (float, vector family, matrix, string, boolean)
// and a Rate. Uniform values are computed once per shading batch, varying
// values once per point of the batch. Vector family members are tagged with
// a VectorKind (vector, normal, point, color) that never affects
// compatibility.
//
// # Variables
//
// A Variable describes typed storage: globals, shader parameters, locals,
// extern references, compiler temporaries and literal constants.
//
// # Instruction stream
//
// A Stream is an append-only list of label definitions and operations. Its
// text form is one record per line:
//
//	if cond @L1
//	movff x 1
//	@L1:
//	endif
//
// Label names start with LabelPrefix, so label operands are recognized
// without an opcode table. Validate checks label and block structure.
package ir
