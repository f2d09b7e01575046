// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

import (
	"fmt"
)

// ValidationError represents a validation error.
type ValidationError struct {
	Message string
	// Index of the offending record, or -1.
	Instruction int
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Instruction >= 0 {
		return fmt.Sprintf("instruction %d: %s", e.Instruction, e.Message)
	}
	return e.Message
}

// blockEnds pairs each block-opening mnemonic with its closing mnemonic.
var blockEnds = map[string]string{
	OpIf:           OpEndIf,
	OpForBegin:     OpForEnd,
	OpIlluminance:  OpEndIlluminance,
	OpIlluminate:   OpEndIlluminate,
	OpSolar:        OpEndSolar,
	OpGatherHeader: OpGatherEnd,
}

// loopBlocks are the blocks that break and continue may leave.
var loopBlocks = map[string]bool{
	OpForBegin:     true,
	OpIlluminance:  true,
	OpGatherHeader: true,
}

// Validator checks an instruction stream for structural consistency.
type Validator struct {
	stream *Stream
	errors []ValidationError

	defined map[string]int
	blocks  []string
}

// Validate checks that every label is defined exactly once, that every label
// operand refers to a defined label, and that block instructions nest.
// Returns validation errors if any, or nil if the stream is valid.
func Validate(stream *Stream) ([]ValidationError, error) {
	if stream == nil {
		return nil, fmt.Errorf("stream is nil")
	}

	v := &Validator{
		stream:  stream,
		defined: make(map[string]int),
	}
	v.validateLabels()
	v.validateReferences()
	v.validateNesting()

	if len(v.errors) > 0 {
		return v.errors, nil
	}
	return nil, nil
}

func (v *Validator) addError(i int, format string, args ...any) {
	v.errors = append(v.errors, ValidationError{
		Message:     fmt.Sprintf(format, args...),
		Instruction: i,
	})
}

func (v *Validator) validateLabels() {
	for i, in := range v.stream.Instructions() {
		if !in.IsLabel() {
			continue
		}
		if prev, ok := v.defined[in.Label]; ok {
			v.addError(i, "label %s already defined at instruction %d", in.Label, prev)
			continue
		}
		v.defined[in.Label] = i
	}
}

func (v *Validator) validateReferences() {
	for i, in := range v.stream.Instructions() {
		for _, op := range in.Operands {
			if IsLabelOperand(op) {
				if _, ok := v.defined[op]; !ok {
					v.addError(i, "%s references undefined label %s", in.Op, op)
				}
			}
		}
	}
}

func (v *Validator) validateNesting() {
	for i, in := range v.stream.Instructions() {
		if in.IsLabel() {
			continue
		}
		if _, ok := blockEnds[in.Op]; ok {
			v.blocks = append(v.blocks, in.Op)
			continue
		}
		switch in.Op {
		case OpElse:
			v.expectInside(i, in.Op, OpIf)
		case OpGather, OpGatherElse:
			v.expectInside(i, in.Op, OpGatherHeader)
		case OpBreak, OpContinue:
			if !v.insideLoop() {
				v.addError(i, "%s outside of a loop", in.Op)
			}
		default:
			v.closeBlock(i, in.Op)
		}
	}
	for _, open := range v.blocks {
		v.addError(-1, "%s is never closed by %s", open, blockEnds[open])
	}
}

func (v *Validator) expectInside(i int, op, block string) {
	if len(v.blocks) == 0 || v.blocks[len(v.blocks)-1] != block {
		v.addError(i, "%s outside of %s", op, block)
	}
}

func (v *Validator) insideLoop() bool {
	for _, b := range v.blocks {
		if loopBlocks[b] {
			return true
		}
	}
	return false
}

func (v *Validator) closeBlock(i int, op string) {
	for open, end := range blockEnds {
		if op != end {
			continue
		}
		if len(v.blocks) == 0 || v.blocks[len(v.blocks)-1] != open {
			v.addError(i, "%s without matching %s", op, open)
			return
		}
		v.blocks = v.blocks[:len(v.blocks)-1]
		return
	}
}
