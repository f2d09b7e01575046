// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package builtin

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/sdrc/ir"
)

var (
	uf = ir.UniformFloat
	vf = ir.VaryingFloat
	us = ir.UniformString
	vp = ir.VaryingPoint
	vc = ir.VaryingColor
)

func TestDefault(t *testing.T) {
	r := Default()

	for _, name := range []string{"texture", "bump", "noise", "printf", "fresnel"} {
		if !r.Has(name) {
			t.Errorf("default table lacks %s", name)
		}
	}

	var foundP bool
	for _, g := range r.Globals() {
		if g.Name == "P" {
			foundP = true
			if g.Type != ir.VaryingPoint || g.ReadOnly {
				t.Errorf("P = %+v", g)
			}
		}
		if g.Name == "Ng" && !g.ReadOnly {
			t.Error("Ng should be read-only")
		}
	}
	if !foundP {
		t.Error("default table lacks global P")
	}
}

func TestValidatePrototype(t *testing.T) {
	valid := []string{"f=f", "c=SFff!", "o=s.*", "f=ff+", "c=", "n=SFnvv!"}
	for _, p := range valid {
		if err := ValidatePrototype(p); err != nil {
			t.Errorf("ValidatePrototype(%q): %v", p, err)
		}
	}

	invalid := []string{"", "f", "fx", "x=f", "F=f", "f=+", "f=f!f", "f=fq", "f=f+f", "f=!+", "f=fo"}
	for _, p := range invalid {
		if err := ValidatePrototype(p); err == nil {
			t.Errorf("ValidatePrototype(%q): expected error", p)
		}
	}
}

func TestPrototypeMatch(t *testing.T) {
	tests := []struct {
		proto string
		args  []ir.Type
		ok    bool
	}{
		{"f=ff+", []ir.Type{vf}, false},
		{"f=ff+", []ir.Type{vf, vf}, true},
		{"f=ff+", []ir.Type{vf, vf, uf, vf}, true},
		{"f=ff+", []ir.Type{vf, vp}, false},
		{"c=SFff!", []ir.Type{us, uf, vf, vf}, true},
		{"c=SFff!", []ir.Type{us, uf, vf, vf, us, vf}, true},
		{"c=SFff!", []ir.Type{us, uf, vf, vf, us}, false},
		{"c=SFff!", []ir.Type{us, uf, vf, vf, vf, vf}, false},
		{"f=SF!", []ir.Type{us, uf}, true},
		{"o=s.*", []ir.Type{us, vp, vc, vf}, true},
		{"o=s.*", []ir.Type{us}, false},
		{"v=vv", []ir.Type{vf, vp}, true},
		{"f=v", []ir.Type{vp, vp}, false},
		{"f=", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.proto, func(t *testing.T) {
			p := &Prototype{Name: "fn", Proto: tt.proto}
			_, ok := p.Match(tt.args)
			if ok != tt.ok {
				t.Errorf("Match(%s) = %v, want %v", Signature(tt.args), ok, tt.ok)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	r := Default()

	tests := []struct {
		name  string
		args  []ir.Type
		want  ir.Type
		proto string
	}{
		{"noise", []ir.Type{vp}, ir.None, "f=p"},
		{"noise", []ir.Type{vp}, vc, "c=p"},
		{"noise", []ir.Type{vp}, vp, "p=p"},
		{"noise", []ir.Type{vf, vf}, vf, "f=ff"},
		{"mix", []ir.Type{vc, vc, uf}, ir.None, "c=ccf"},
		{"texture", []ir.Type{us, uf}, ir.Of(ir.CategoryVector, ir.Varying), "c=SF!"},
		{"texture", []ir.Type{us, uf, vf, vf}, vf, "f=SFff!"},
		{"normalize", []ir.Type{ir.VectorOf(ir.VectorNormal, ir.Varying)}, ir.None, "n=n"},
		{"printf", []ir.Type{us}, ir.None, "o=s"},
		{"printf", []ir.Type{us, vc}, ir.None, "o=s.*"},
	}

	for _, tt := range tests {
		t.Run(tt.name+Signature(tt.args), func(t *testing.T) {
			p, err := r.Resolve(tt.name, tt.args, tt.want)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if p.Proto != tt.proto {
				t.Errorf("Resolve = %s, want %s", p.Proto, tt.proto)
			}
		})
	}
}

func TestResolve_Errors(t *testing.T) {
	r := Default()
	if _, err := r.Resolve("nosuch", nil, ir.None); err == nil || !strings.Contains(err.Error(), "unknown function") {
		t.Errorf("unknown function: got %v", err)
	}
	if _, err := r.Resolve("sin", []ir.Type{us}, ir.None); err == nil || !strings.Contains(err.Error(), "sin(string)") {
		t.Errorf("bad arguments: got %v", err)
	}
}

func TestLoadAndMerge(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "extra.yaml")
	data := `
globals:
  - {name: time, type: varying float}
functions:
  - name: voronoi
    dso: true
    prototypes: ["f=pf"]
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	extra, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	r := Default()
	r.Merge(extra)

	protos := r.Lookup("voronoi")
	if len(protos) != 1 || !protos[0].DSO {
		t.Fatalf("voronoi = %v", protos)
	}
	for _, g := range r.Globals() {
		if g.Name == "time" && g.Type != ir.VaryingFloat {
			t.Errorf("time not replaced: %v", g.Type)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"bad yaml", "functions: [", "parsing"},
		{"missing name", "functions:\n  - prototypes: [\"f=f\"]", "name is required"},
		{"no prototypes", "functions:\n  - name: f", "no prototypes"},
		{"bad prototype", "functions:\n  - {name: f, prototypes: [\"f=q\"]}", "unknown code"},
		{"bad global type", "globals:\n  - {name: g, type: int}", "invalid type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), "test.yaml")
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Parse error = %v, want %q", err, tt.want)
			}
		})
	}
}
