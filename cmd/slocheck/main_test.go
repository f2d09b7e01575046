// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/sdrc"
)

func writeProgram(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shader.slo")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCheck(t *testing.T) {
	prog, err := sdrc.Compile(`surface glow(float Kd = .5; string name = "x") {
	    float i;
	    for (i = 0; i < 2; i += 1)
	        Ci += Cs * Kd;
	}`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	path := writeProgram(t, prog.String())

	*ops = true
	defer func() { *ops = false }()

	var buf bytes.Buffer
	if err := check(&buf, path); err != nil {
		t.Fatalf("check: %v\n%s", err, buf.String())
	}
	out := buf.String()
	for _, want := range []string{"surface glow", "param uniform float Kd = 0.5", `param uniform string name = "x"`, "forbegin"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary lacks %q:\n%s", want, out)
		}
	}
}

func TestCheckInvalid(t *testing.T) {
	path := writeProgram(t, "shader surface broken\n.init\n.code\nif _ub @L1\n")

	var buf bytes.Buffer
	err := check(&buf, path)
	if err == nil {
		t.Fatalf("expected validation errors, got none:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), ".code:") {
		t.Errorf("errors not attributed to .code:\n%s", buf.String())
	}
}
