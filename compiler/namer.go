// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package compiler

import (
	"fmt"
)

// namer generates unique code names for the flat declaration table of a
// program. Locals of inlined functions and temporaries all share one
// namespace with the shader's globals and parameters.
type namer struct {
	usedNames map[string]struct{}

	// counter is used to generate unique suffixes.
	counter uint32
}

func newNamer() *namer {
	return &namer{usedNames: make(map[string]struct{})}
}

// call returns base if it is free, otherwise base with a numeric suffix.
func (n *namer) call(base string) string {
	if base == "" {
		base = "_"
	}
	if !n.isUsed(base) {
		n.usedNames[base] = struct{}{}
		return base
	}
	for {
		n.counter++
		candidate := fmt.Sprintf("%s_%d", base, n.counter)
		if !n.isUsed(candidate) {
			n.usedNames[candidate] = struct{}{}
			return candidate
		}
	}
}

// isUsed checks if a name has already been handed out or reserved.
func (n *namer) isUsed(name string) bool {
	_, used := n.usedNames[name]
	return used
}

// reserve marks a name as used without returning it. Globals and parameters
// keep their source names since the renderer binds them by name.
func (n *namer) reserve(name string) {
	n.usedNames[name] = struct{}{}
}
