// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package compiler

import (
	"fmt"

	"github.com/gogpu/sdrc/ir"
)

// Registers hands out compiler temporaries. Temporaries are keyed by
// category and rate; a released temporary is reused by the next Lock of the
// same key. Lifetimes nest: whatever a node locks it releases before it
// returns.
type Registers struct {
	names  *namer
	free   map[ir.Type][]*ir.Variable
	all    []*ir.Variable
	locked int
}

func newRegisters(names *namer) *Registers {
	return &Registers{
		names: names,
		free:  make(map[ir.Type][]*ir.Variable),
	}
}

// Lock returns a temporary whose category and rate match t.
func (r *Registers) Lock(t ir.Type) *ir.Variable {
	key := t.Base()
	r.locked++
	if list := r.free[key]; len(list) > 0 {
		v := list[len(list)-1]
		r.free[key] = list[:len(list)-1]
		v.Locked = true
		return v
	}

	v := ir.NewVariable("", key, ir.StorageTemporary)
	v.CodeName = r.names.call(registerPrefix(key))
	v.Name = v.CodeName
	v.Locked = true
	r.all = append(r.all, v)
	return v
}

// Release returns a temporary to its free list. Releasing anything but a
// locked temporary panics with an *InternalError.
func (r *Registers) Release(v *ir.Variable) {
	if !v.IsTemporary() {
		panic(&InternalError{Message: fmt.Sprintf("release of non-temporary %s", v.Name)})
	}
	if !v.Locked {
		panic(&InternalError{Message: fmt.Sprintf("double release of %s", v.CodeName)})
	}
	v.Locked = false
	r.locked--
	key := v.Type.Base()
	r.free[key] = append(r.free[key], v)
}

// Locked returns the number of temporaries currently checked out.
func (r *Registers) Locked() int { return r.locked }

// Temporaries returns every temporary created so far, in creation order.
func (r *Registers) Temporaries() []*ir.Variable { return r.all }

// registerPrefix names temporaries after their key, e.g. "_vf" for a
// varying float.
func registerPrefix(t ir.Type) string {
	rate := byte('v')
	if t.Rate == ir.Uniform {
		rate = 'u'
	}
	return string([]byte{'_', rate, t.Code()})
}
