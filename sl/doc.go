// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package sl is the front end of the shading language: a lexer, a
// recursive-descent parser and a lowerer that builds compiler nodes.
//
// # Usage
//
//	file, err := sl.Parse(source)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	c := compiler.New(compiler.DefaultOptions())
//	shader, err := sl.Lower(file, c)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	prog, err := c.Compile(shader)
//
// # Language
//
// A file holds functions and one shader:
//
//	float attenuate(float d) { return 1 / (d * d); }
//
//	surface matte(float Ka = 1; float Kd = 1) {
//	    normal Nf = faceforward(normalize(N), I);
//	    Oi = Os;
//	    Ci = Os * Cs * (Ka * ambient() + Kd * diffuse(Nf));
//	}
//
// Shader parameters are uniform and function parameters and locals are
// varying unless qualified otherwise. Functions see their own parameters
// and locals, built-in globals, and variables of enclosing scopes declared
// extern. Calls are inlined.
package sl

// Parse tokenizes and parses source. Lexical and syntax errors are returned
// together as ParseErrors.
func Parse(source string) (*File, error) {
	tokens, lexErr := NewLexer(source).Tokenize()
	file, err := NewParser(tokens).Parse()

	var errs ParseErrors
	if el, ok := lexErr.(ParseErrors); ok {
		errs = append(errs, el...)
	}
	if el, ok := err.(ParseErrors); ok {
		errs = append(errs, el...)
	}
	if len(errs) > 0 {
		return file, errs
	}
	return file, nil
}
