// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// LabelPrefix starts every label name. Source identifiers never contain it,
// so label operands are recognizable without knowing the opcode.
const LabelPrefix = "@"

// DSOPrefix marks an instruction that calls a dynamically loaded built-in.
const DSOPrefix = "DSO"

// Instruction is one record of the stream: a label definition when Label is
// set, an operation otherwise.
type Instruction struct {
	Label    string
	Op       string
	DSO      bool
	Operands []string
}

// IsLabel reports whether the record defines a label.
func (in Instruction) IsLabel() bool { return in.Label != "" }

// String renders the record as a single line.
func (in Instruction) String() string {
	if in.IsLabel() {
		return in.Label + ":"
	}
	var sb strings.Builder
	if in.DSO {
		sb.WriteString(DSOPrefix)
		sb.WriteByte(' ')
	}
	sb.WriteString(in.Op)
	for _, o := range in.Operands {
		sb.WriteByte(' ')
		sb.WriteString(o)
	}
	return sb.String()
}

// IsLabelOperand reports whether an operand names a label.
func IsLabelOperand(s string) bool {
	return strings.HasPrefix(s, LabelPrefix)
}

// Quote renders s as a quoted operand.
func Quote(s string) string {
	return strconv.Quote(s)
}

// Stream is an append-only instruction sequence.
type Stream struct {
	code []Instruction
}

// Emit appends an operation.
func (s *Stream) Emit(op string, operands ...string) {
	s.code = append(s.code, Instruction{Op: op, Operands: operands})
}

// EmitDSO appends a call to a dynamically loaded built-in.
func (s *Stream) EmitDSO(op string, operands ...string) {
	s.code = append(s.code, Instruction{Op: op, DSO: true, Operands: operands})
}

// Label appends a label definition.
func (s *Stream) Label(name string) {
	s.code = append(s.code, Instruction{Label: name})
}

// Len returns the number of records.
func (s *Stream) Len() int { return len(s.code) }

// At returns the i-th record.
func (s *Stream) At(i int) Instruction { return s.code[i] }

// Instructions returns the records. The slice must not be modified.
func (s *Stream) Instructions() []Instruction { return s.code }

// WriteTo writes one record per line.
func (s *Stream) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, in := range s.code {
		n, err := io.WriteString(w, in.String()+"\n")
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// String returns the stream text.
func (s *Stream) String() string {
	var sb strings.Builder
	_, _ = s.WriteTo(&sb)
	return sb.String()
}

// ParseStream parses the text form written by WriteTo. Blank lines and lines
// starting with '#' are skipped.
func ParseStream(text string) (*Stream, error) {
	s := &Stream{}
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line[0] == '#' {
			continue
		}
		in, err := ParseInstruction(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		s.code = append(s.code, in)
	}
	return s, nil
}

// ParseInstruction parses one line of stream text.
func ParseInstruction(line string) (Instruction, error) {
	fields, err := splitOperands(line)
	if err != nil {
		return Instruction{}, err
	}
	if len(fields) == 0 {
		return Instruction{}, fmt.Errorf("empty instruction")
	}
	if len(fields) == 1 && strings.HasSuffix(fields[0], ":") {
		label := strings.TrimSuffix(fields[0], ":")
		if !IsLabelOperand(label) {
			return Instruction{}, fmt.Errorf("invalid label %q", label)
		}
		return Instruction{Label: label}, nil
	}
	in := Instruction{}
	if fields[0] == DSOPrefix {
		in.DSO = true
		fields = fields[1:]
		if len(fields) == 0 {
			return Instruction{}, fmt.Errorf("DSO without a built-in name")
		}
	}
	in.Op = fields[0]
	if len(fields) > 1 {
		in.Operands = fields[1:]
	}
	return in, nil
}

// splitOperands splits on spaces, keeping quoted strings (with their quotes)
// as single fields.
func splitOperands(line string) ([]string, error) {
	var fields []string
	i := 0
	for i < len(line) {
		switch {
		case line[i] == ' ' || line[i] == '\t':
			i++
		case line[i] == '"':
			j := i + 1
			for j < len(line) && line[j] != '"' {
				if line[j] == '\\' {
					j++
				}
				j++
			}
			if j >= len(line) {
				return nil, fmt.Errorf("unterminated string in %q", line)
			}
			fields = append(fields, line[i:j+1])
			i = j + 1
		default:
			j := i
			for j < len(line) && line[j] != ' ' && line[j] != '\t' {
				j++
			}
			fields = append(fields, line[i:j])
			i = j
		}
	}
	return fields, nil
}
