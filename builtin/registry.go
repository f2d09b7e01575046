// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package builtin holds the table of built-in functions and global variables
// known to the shading compiler.
//
// The default table is embedded as YAML. Projects can merge additional
// tables, for instance to declare DSO shadeops:
//
//	functions:
//	  - name: voronoi
//	    dso: true
//	    prototypes: ["f=pf", "c=pf"]
package builtin

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/sdrc/ir"
)

//go:embed builtins.yaml
var defaultTable []byte

// Global is a predeclared shader variable such as P or Ci.
type Global struct {
	Name     string
	Type     ir.Type
	ReadOnly bool
}

// Variable returns a fresh descriptor for the global.
func (g Global) Variable() *ir.Variable {
	v := ir.NewVariable(g.Name, g.Type, ir.StorageGlobal)
	v.ReadOnly = g.ReadOnly
	return v
}

// Registry maps built-in names to their overloads.
type Registry struct {
	functions map[string][]*Prototype
	globals   []Global
}

// table is the YAML layout of a built-in table.
type table struct {
	Globals []struct {
		Name     string `yaml:"name"`
		Type     string `yaml:"type"`
		ReadOnly bool   `yaml:"readonly,omitempty"`
	} `yaml:"globals"`
	Functions []struct {
		Name       string   `yaml:"name"`
		Prototypes []string `yaml:"prototypes"`
		NonUniform bool     `yaml:"nonuniform,omitempty"`
		DSO        bool     `yaml:"dso,omitempty"`
	} `yaml:"functions"`
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{functions: make(map[string][]*Prototype)}
}

// Default returns a registry loaded from the embedded table.
func Default() *Registry {
	r, err := Parse(defaultTable, "builtins.yaml")
	if err != nil {
		panic(fmt.Sprintf("builtin: embedded table: %v", err))
	}
	return r
}

// Load reads a table from a YAML file.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading built-in table %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses a table. The name is used only for error messages.
func Parse(data []byte, name string) (*Registry, error) {
	var tbl table
	if err := yaml.Unmarshal(data, &tbl); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}

	r := NewRegistry()
	for i, g := range tbl.Globals {
		if g.Name == "" {
			return nil, fmt.Errorf("%s: globals[%d]: name is required", name, i)
		}
		t, ok := ir.ParseQualifiedType(g.Type)
		if !ok {
			return nil, fmt.Errorf("%s: global %s: invalid type %q", name, g.Name, g.Type)
		}
		r.globals = append(r.globals, Global{Name: g.Name, Type: t, ReadOnly: g.ReadOnly})
	}
	for i, f := range tbl.Functions {
		if f.Name == "" {
			return nil, fmt.Errorf("%s: functions[%d]: name is required", name, i)
		}
		if len(f.Prototypes) == 0 {
			return nil, fmt.Errorf("%s: function %s: no prototypes", name, f.Name)
		}
		for _, proto := range f.Prototypes {
			if err := ValidatePrototype(proto); err != nil {
				return nil, fmt.Errorf("%s: function %s: %w", name, f.Name, err)
			}
			r.Add(&Prototype{Name: f.Name, Proto: proto, NonUniform: f.NonUniform, DSO: f.DSO})
		}
	}
	return r, nil
}

// Add registers an overload.
func (r *Registry) Add(p *Prototype) {
	r.functions[p.Name] = append(r.functions[p.Name], p)
}

// Merge adds all overloads and globals of other. Globals of other replace
// globals of the same name.
func (r *Registry) Merge(other *Registry) {
	for name, protos := range other.functions {
		r.functions[name] = append(r.functions[name], protos...)
	}
	for _, g := range other.globals {
		replaced := false
		for i := range r.globals {
			if r.globals[i].Name == g.Name {
				r.globals[i] = g
				replaced = true
			}
		}
		if !replaced {
			r.globals = append(r.globals, g)
		}
	}
}

// Lookup returns the overloads of a built-in in declaration order.
func (r *Registry) Lookup(name string) []*Prototype {
	return r.functions[name]
}

// Has reports whether name is a built-in function.
func (r *Registry) Has(name string) bool {
	return len(r.functions[name]) > 0
}

// Globals returns the predeclared variables.
func (r *Registry) Globals() []Global {
	return r.globals
}

// Resolve picks the overload of name that best fits the argument types.
// want is the type the caller expects back; a want of category None leaves
// the result unconstrained. Ties go to the overload declared first.
func (r *Registry) Resolve(name string, args []ir.Type, want ir.Type) (*Prototype, error) {
	protos := r.functions[name]
	if len(protos) == 0 {
		return nil, fmt.Errorf("unknown function %s", name)
	}

	var best *Prototype
	bestScore := -1
	for _, p := range protos {
		score, ok := p.Match(args)
		if !ok {
			continue
		}
		if ret := p.ReturnType(); want.Category != ir.CategoryNone && ret.Category == want.Category {
			score += 4 * (len(args) + 1)
			if ret.Vector == want.Vector {
				score += 2
			}
		}
		if score > bestScore {
			best, bestScore = p, score
		}
	}
	if best == nil {
		return nil, fmt.Errorf("no overload of %s matches %s%s", name, name, Signature(args))
	}
	return best, nil
}
