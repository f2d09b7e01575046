// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package compiler

import (
	"testing"

	"github.com/gogpu/sdrc/ir"
)

func TestNamer_Call(t *testing.T) {
	n := newNamer()

	if got := n.call("x"); got != "x" {
		t.Errorf("call(\"x\") = %q, want \"x\"", got)
	}
	if got := n.call("x"); got != "x_1" {
		t.Errorf("second call(\"x\") = %q, want \"x_1\"", got)
	}
	if got := n.call("X"); got != "X" {
		t.Errorf("call(\"X\") = %q, want \"X\" (names are case-sensitive)", got)
	}
	if got := n.call(""); got != "_" {
		t.Errorf("call(\"\") = %q, want \"_\"", got)
	}
}

func TestNamer_Reserve(t *testing.T) {
	n := newNamer()
	n.reserve("Ci")

	if !n.isUsed("Ci") {
		t.Fatal("reserved name is not marked used")
	}
	if got := n.call("Ci"); got == "Ci" {
		t.Error("call returned a reserved name")
	}
}

// =============================================================================
// Registers
// =============================================================================

func TestRegisters_Reuse(t *testing.T) {
	r := newRegisters(newNamer())

	a := r.Lock(ir.VaryingFloat)
	if a.CodeName != "_vf" {
		t.Errorf("first varying float = %q, want \"_vf\"", a.CodeName)
	}
	if !a.Locked || r.Locked() != 1 {
		t.Fatalf("Locked() = %d, want 1", r.Locked())
	}
	r.Release(a)

	b := r.Lock(ir.VaryingFloat)
	if b != a {
		t.Errorf("released temporary was not reused: got %s, want %s", b.CodeName, a.CodeName)
	}
	c := r.Lock(ir.VaryingFloat)
	if c == b || c.CodeName != "_vf_1" {
		t.Errorf("second locked varying float = %q, want a fresh \"_vf_1\"", c.CodeName)
	}
	r.Release(c)
	r.Release(b)

	if r.Locked() != 0 {
		t.Errorf("Locked() = %d after releasing everything, want 0", r.Locked())
	}
	if len(r.Temporaries()) != 2 {
		t.Errorf("Temporaries() has %d entries, want 2", len(r.Temporaries()))
	}
}

func TestRegisters_KeyIgnoresVectorKind(t *testing.T) {
	r := newRegisters(newNamer())

	p := r.Lock(ir.VaryingPoint)
	r.Release(p)
	c := r.Lock(ir.VaryingColor)
	if c != p {
		t.Errorf("point and color temporaries should share a key")
	}
	if c.CodeName != "_vv" {
		t.Errorf("vector temporary = %q, want \"_vv\"", c.CodeName)
	}
	r.Release(c)

	u := r.Lock(ir.UniformFloat)
	if u.CodeName != "_uf" {
		t.Errorf("uniform float temporary = %q, want \"_uf\"", u.CodeName)
	}
	r.Release(u)
}

func TestRegisters_ReleaseErrors(t *testing.T) {
	tests := []struct {
		name string
		run  func(r *Registers)
	}{
		{"non-temporary", func(r *Registers) {
			r.Release(ir.NewVariable("x", ir.VaryingFloat, ir.StorageLocal))
		}},
		{"double release", func(r *Registers) {
			v := r.Lock(ir.VaryingFloat)
			r.Release(v)
			r.Release(v)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if _, ok := recover().(*InternalError); !ok {
					t.Error("expected an *InternalError panic")
				}
			}()
			tt.run(newRegisters(newNamer()))
		})
	}
}
