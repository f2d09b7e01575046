// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package config loads the project configuration of the shader compiler.
//
// A project is configured by an sdrc.yaml file, found by walking up from the
// directory of the shader being compiled:
//
//	cache: .sdrc/cache.db
//	builtins:
//	  - shadeops.yaml
//	werror: true
//	color: auto
//
// Relative paths are resolved against the directory of the file.
// Environment variables override the file; see ApplyEnv.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xyproto/env/v2"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/sdrc/builtin"
	"github.com/gogpu/sdrc/compiler"
)

// FileNames are the names FindConfig looks for, in order.
var FileNames = []string{"sdrc.yaml", "sdrc.yml"}

// Colour modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config is the project configuration.
type Config struct {
	// Cache is the path of the compiled shader cache. Empty disables it.
	Cache string `yaml:"cache,omitempty"`

	// Builtins lists additional built-in tables merged over the default
	// table, for instance DSO shadeop declarations.
	Builtins []string `yaml:"builtins,omitempty"`

	// Werror turns warnings into errors.
	Werror bool `yaml:"werror,omitempty"`

	// Color selects diagnostic colouring: auto, always or never.
	Color string `yaml:"color,omitempty"`

	// Path is the file the configuration was read from, if any.
	Path string `yaml:"-"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// LoadConfig reads and parses an sdrc.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses sdrc.yaml content. The path is used for error messages
// and to resolve relative paths.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.Path = path
	cfg.setDefaults()
	cfg.resolve(filepath.Dir(path))
	return &cfg, nil
}

// FindConfig searches for a configuration file starting from dir and
// walking up to the filesystem root. It returns "" and a nil error when
// there is none.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Discover loads the configuration that applies to files in dir, or the
// default configuration when there is none.
func Discover(dir string) (*Config, error) {
	path, err := FindConfig(dir)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return Default(), nil
	}
	return LoadConfig(path)
}

func (c *Config) validate(path string) error {
	switch c.Color {
	case "", ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%s: color must be auto, always or never, not %q", path, c.Color)
	}
	for i, b := range c.Builtins {
		if b == "" {
			return fmt.Errorf("%s: builtins[%d]: path is empty", path, i)
		}
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Color == "" {
		c.Color = ColorAuto
	}
}

// resolve makes relative paths relative to dir.
func (c *Config) resolve(dir string) {
	if c.Cache != "" && !filepath.IsAbs(c.Cache) {
		c.Cache = filepath.Join(dir, c.Cache)
	}
	for i, b := range c.Builtins {
		if !filepath.IsAbs(b) {
			c.Builtins[i] = filepath.Join(dir, b)
		}
	}
}

// ApplyEnv overrides the configuration from the environment:
//
//	SDRC_CACHE   cache path ("off" disables the cache)
//	SDRC_COLOR   auto, always or never
//	SDRC_WERROR  treat warnings as errors
//	NO_COLOR     disables colouring unless SDRC_COLOR is set
func (c *Config) ApplyEnv() error {
	if env.Has("SDRC_CACHE") {
		c.Cache = env.ExpandUser(env.Str("SDRC_CACHE"))
		if c.Cache == "off" {
			c.Cache = ""
		}
	}
	if env.Has("SDRC_WERROR") {
		c.Werror = env.Bool("SDRC_WERROR")
	}
	switch {
	case env.Has("SDRC_COLOR"):
		c.Color = env.Str("SDRC_COLOR")
	case env.Has("NO_COLOR"):
		c.Color = ColorNever
	}
	return c.validate("environment")
}

// Registry returns the default built-in table merged with the tables
// listed in Builtins.
func (c *Config) Registry() (*builtin.Registry, error) {
	reg := builtin.Default()
	for _, path := range c.Builtins {
		extra, err := builtin.Load(path)
		if err != nil {
			return nil, err
		}
		reg.Merge(extra)
	}
	return reg, nil
}

// CompilerOptions returns the compiler options the configuration selects.
func (c *Config) CompilerOptions() (compiler.Options, error) {
	reg, err := c.Registry()
	if err != nil {
		return compiler.Options{}, err
	}
	return compiler.Options{Builtins: reg, WarningsAsErrors: c.Werror}, nil
}
