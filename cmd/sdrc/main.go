// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Command sdrc is the shader compiler CLI.
//
// Usage:
//
//	sdrc [options] <input.sl>
//
// Examples:
//
//	sdrc plastic.sl                      # Compile to stdout
//	sdrc -o plastic.slo plastic.sl       # Compile to file
//	sdrc -cache off -werror plastic.sl   # No cache, warnings fail
//
// Settings come from the nearest sdrc.yaml above the input file, then from
// the environment, then from the flags.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gogpu/sdrc"
	"github.com/gogpu/sdrc/cache"
	"github.com/gogpu/sdrc/compiler"
	"github.com/gogpu/sdrc/config"
	"github.com/gogpu/sdrc/sl"
)

var (
	output     = flag.String("o", "", "output file (default: stdout)")
	configPath = flag.String("config", "", "configuration file (default: nearest sdrc.yaml)")
	cachePath  = flag.String("cache", "", `program cache database ("off" disables)`)
	prune      = flag.Duration("prune", 0, "remove cache entries older than this before compiling")
	werror     = flag.Bool("werror", false, "treat warnings as errors")
	color      = flag.String("color", "", "colour diagnostics: auto, always or never")
	validate   = flag.Bool("validate", true, "validate the emitted streams")
	version    = flag.Bool("version", false, "print version")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	if *version {
		fmt.Printf("sdrc version %s\n", sdrc.Version)
		return
	}

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		usage()
		os.Exit(1)
	}
	inputPath := args[0]

	source, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	cfg, err := loadConfig(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	text, warnings, err := build(context.Background(), cfg, string(source))
	if len(warnings) > 0 {
		report(os.Stderr, warnings, string(source), inputPath, useColor(cfg.Color, os.Stderr))
	}
	if err != nil {
		report(os.Stderr, err, string(source), inputPath, useColor(cfg.Color, os.Stderr))
		os.Exit(1)
	}

	if *output != "" {
		if err := os.WriteFile(*output, []byte(text), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Successfully compiled %s to %s\n", inputPath, *output)
		return
	}
	if _, err := os.Stdout.WriteString(text); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration for inputPath and applies the
// environment and the flags over it.
func loadConfig(inputPath string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadConfig(*configPath)
	} else {
		cfg, err = config.Discover(filepath.Dir(inputPath))
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	switch *cachePath {
	case "":
	case "off":
		cfg.Cache = ""
	default:
		cfg.Cache = *cachePath
	}
	if *werror {
		cfg.Werror = true
	}
	if *color != "" {
		cfg.Color = *color
	}
	return cfg, nil
}

// build compiles source, going through the cache when one is configured.
// It returns the program text and the warnings of the compilation. Programs
// compiled with warnings are not cached, so a cache hit has none.
func build(ctx context.Context, cfg *config.Config, source string) (string, compiler.Diagnostics, error) {
	opts, err := cfg.CompilerOptions()
	if err != nil {
		return "", nil, err
	}
	compileOpts := sdrc.CompileOptions{
		Builtins:         opts.Builtins,
		WarningsAsErrors: opts.WarningsAsErrors,
		Validate:         *validate,
	}

	if cfg.Cache == "" {
		prog, err := sdrc.CompileWithOptions(source, compileOpts)
		if err != nil {
			return "", nil, err
		}
		return prog.String(), prog.Warnings, nil
	}

	db, err := cache.Open(ctx, cfg.Cache)
	if err != nil {
		return "", nil, err
	}
	defer db.Close()

	if *prune > 0 {
		if _, err := db.Prune(ctx, time.Now().Add(-*prune)); err != nil {
			return "", nil, err
		}
	}

	key, err := cacheKey(cfg, source)
	if err != nil {
		return "", nil, err
	}
	if e, ok, err := db.Get(ctx, key); err != nil {
		return "", nil, err
	} else if ok {
		return e.Program, nil, nil
	}

	prog, err := sdrc.CompileWithOptions(source, compileOpts)
	if err != nil {
		return "", nil, err
	}
	text := prog.String()
	if len(prog.Warnings) > 0 {
		return text, prog.Warnings, nil
	}
	if _, err := db.Put(ctx, key, prog.Name, text); err != nil {
		return "", nil, err
	}
	return text, nil, nil
}

// cacheKey covers the compiler version, the settings that change the
// output and the content of every extra built-in table.
func cacheKey(cfg *config.Config, source string) (string, error) {
	parts := []string{sdrc.Version, fmt.Sprintf("werror=%t validate=%t", cfg.Werror, *validate)}
	for _, path := range cfg.Builtins {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading built-in table %s: %w", path, err)
		}
		parts = append(parts, path, string(data))
	}
	return cache.Key([]byte(source), parts...), nil
}

// diagnosticsOf extracts the source diagnostics carried by err.
func diagnosticsOf(err error) (compiler.Diagnostics, bool) {
	var perrs sl.ParseErrors
	if errors.As(err, &perrs) {
		return perrs.Diagnostics(), true
	}
	var diags compiler.Diagnostics
	if errors.As(err, &diags) {
		return diags, true
	}
	return nil, false
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: sdrc [options] <input.sl>\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nEnvironment:\n")
	fmt.Fprintf(os.Stderr, "  SDRC_CACHE, SDRC_COLOR, SDRC_WERROR, NO_COLOR\n")
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  sdrc plastic.sl                  Compile to stdout\n")
	fmt.Fprintf(os.Stderr, "  sdrc -o plastic.slo plastic.sl   Compile to file\n")
	fmt.Fprintf(os.Stderr, "  sdrc -cache off plastic.sl       Bypass the program cache\n")
}
