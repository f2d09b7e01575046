// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// slocheck - compiled shader checker
// Parses compiled program files, validates their instruction streams and
// prints a summary of each.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/gogpu/sdrc/compiler"
	"github.com/gogpu/sdrc/ir"
)

var ops = flag.Bool("ops", false, "print an opcode histogram")

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: slocheck [-ops] <file.slo>...")
	}
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	failed := false
	for _, path := range flag.Args() {
		if err := check(os.Stdout, path); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

// check parses and validates one program file and prints its summary to w.
func check(w io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	prog, err := compiler.ParseProgram(string(data))
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s: %s %s\n", path, prog.Kind, prog.Name)
	summarize(w, prog)

	invalid := 0
	for _, s := range []struct {
		name   string
		stream *ir.Stream
	}{
		{compiler.SectionInit, prog.Init},
		{compiler.SectionCode, prog.Code},
	} {
		errs, err := ir.Validate(s.stream)
		if err != nil {
			return err
		}
		for _, e := range errs {
			fmt.Fprintf(w, "  %s: %s\n", s.name, e.Error())
		}
		invalid += len(errs)
	}
	if invalid > 0 {
		return fmt.Errorf("%d validation errors", invalid)
	}
	return nil
}

func summarize(w io.Writer, prog *compiler.Program) {
	counts := make(map[ir.Storage]int)
	for _, v := range prog.Variables {
		counts[v.Storage]++
	}
	storages := make([]ir.Storage, 0, len(counts))
	for s := range counts {
		storages = append(storages, s)
	}
	sort.Slice(storages, func(i, j int) bool { return storages[i] < storages[j] })
	for _, s := range storages {
		fmt.Fprintf(w, "  %-10s %d\n", s, counts[s])
	}

	for _, p := range prog.Parameters() {
		def := p.Default
		if def == "" {
			def = "(computed)"
		}
		fmt.Fprintf(w, "  param %s %s = %s\n", p.Type, p.Name, def)
	}
	fmt.Fprintf(w, "  %s %d instructions\n", compiler.SectionInit, prog.Init.Len())
	fmt.Fprintf(w, "  %s %d instructions\n", compiler.SectionCode, prog.Code.Len())

	if *ops {
		printHistogram(w, prog.Init, prog.Code)
	}
}

func printHistogram(w io.Writer, streams ...*ir.Stream) {
	hist := make(map[string]int)
	for _, s := range streams {
		for _, in := range s.Instructions() {
			if in.IsLabel() {
				continue
			}
			op := in.Op
			if in.DSO {
				op = "DSO " + op
			}
			hist[op]++
		}
	}
	names := make([]string, 0, len(hist))
	for op := range hist {
		names = append(names, op)
	}
	sort.Slice(names, func(i, j int) bool {
		if hist[names[i]] != hist[names[j]] {
			return hist[names[i]] > hist[names[j]]
		}
		return names[i] < names[j]
	})
	for _, op := range names {
		fmt.Fprintf(w, "  %6d %s\n", hist[op], op)
	}
}
