// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestParseConfig(t *testing.T) {
	data := []byte(`
cache: .sdrc/cache.db
builtins:
  - shadeops.yaml
  - /opt/shaders/extra.yaml
werror: true
`)
	cfg, err := ParseConfig(data, "/project/sdrc.yaml")
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}

	if want := filepath.Join("/project", ".sdrc", "cache.db"); cfg.Cache != want {
		t.Errorf("cache = %q, want %q", cfg.Cache, want)
	}
	want := []string{filepath.Join("/project", "shadeops.yaml"), "/opt/shaders/extra.yaml"}
	if len(cfg.Builtins) != 2 || cfg.Builtins[0] != want[0] || cfg.Builtins[1] != want[1] {
		t.Errorf("builtins = %v, want %v", cfg.Builtins, want)
	}
	if !cfg.Werror {
		t.Error("werror not set")
	}
	if cfg.Color != ColorAuto {
		t.Errorf("color = %q, want default %q", cfg.Color, ColorAuto)
	}
	if cfg.Path != "/project/sdrc.yaml" {
		t.Errorf("path = %q", cfg.Path)
	}
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"bad yaml", "cache: [", "parsing"},
		{"bad color", "color: sometimes", "color must be auto, always or never"},
		{"empty builtin", "builtins: ['']", "builtins[0]: path is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.data), "sdrc.yaml")
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestFindConfig(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "sdrc.yml"), "werror: true\n")
	deep := filepath.Join(root, "shaders", "surface")
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatal(err)
	}

	path, err := FindConfig(deep)
	if err != nil {
		t.Fatalf("FindConfig: %v", err)
	}
	if path != filepath.Join(root, "sdrc.yml") {
		t.Errorf("found %q", path)
	}

	// sdrc.yaml wins over sdrc.yml in the same directory.
	writeFile(t, filepath.Join(deep, "sdrc.yaml"), "")
	writeFile(t, filepath.Join(deep, "sdrc.yml"), "")
	path, err = FindConfig(deep)
	if err != nil {
		t.Fatalf("FindConfig: %v", err)
	}
	if path != filepath.Join(deep, "sdrc.yaml") {
		t.Errorf("found %q, want the nearer sdrc.yaml", path)
	}
}

func TestDiscoverDefault(t *testing.T) {
	// TempDir sits below the system temp directory, which is not expected
	// to hold an sdrc.yaml.
	dir := t.TempDir()
	path, err := FindConfig(dir)
	if err != nil {
		t.Fatalf("FindConfig: %v", err)
	}
	if path != "" {
		t.Skipf("a configuration file exists above the temp directory: %s", path)
	}

	cfg, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if cfg.Path != "" || cfg.Cache != "" || cfg.Color != ColorAuto {
		t.Errorf("default config = %+v", cfg)
	}
}

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		check func(t *testing.T, cfg *Config)
	}{
		{
			name: "cache path",
			env:  map[string]string{"SDRC_CACHE": "/tmp/shaders.db"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Cache != "/tmp/shaders.db" {
					t.Errorf("cache = %q", cfg.Cache)
				}
			},
		},
		{
			name: "cache off",
			env:  map[string]string{"SDRC_CACHE": "off"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Cache != "" {
					t.Errorf("cache = %q, want disabled", cfg.Cache)
				}
			},
		},
		{
			name: "werror",
			env:  map[string]string{"SDRC_WERROR": "1"},
			check: func(t *testing.T, cfg *Config) {
				if !cfg.Werror {
					t.Error("werror not set")
				}
			},
		},
		{
			name: "no color",
			env:  map[string]string{"NO_COLOR": "1"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Color != ColorNever {
					t.Errorf("color = %q, want never", cfg.Color)
				}
			},
		},
		{
			name: "explicit color beats NO_COLOR",
			env:  map[string]string{"NO_COLOR": "1", "SDRC_COLOR": "always"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Color != ColorAlways {
					t.Errorf("color = %q, want always", cfg.Color)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, name := range []string{"SDRC_CACHE", "SDRC_COLOR", "SDRC_WERROR", "NO_COLOR"} {
				t.Setenv(name, "")
				os.Unsetenv(name)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg := &Config{Cache: "project.db"}
			cfg.setDefaults()
			if err := cfg.ApplyEnv(); err != nil {
				t.Fatalf("ApplyEnv: %v", err)
			}
			tt.check(t, cfg)
		})
	}

	t.Run("invalid color", func(t *testing.T) {
		t.Setenv("SDRC_COLOR", "rainbow")
		if err := Default().ApplyEnv(); err == nil {
			t.Error("expected an error for SDRC_COLOR=rainbow")
		}
	})
}

func TestCompilerOptions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "shadeops.yaml"), `
functions:
  - name: voronoi
    dso: true
    prototypes: ["f=p"]
`)
	writeFile(t, filepath.Join(dir, "sdrc.yaml"), "builtins: [shadeops.yaml]\nwerror: true\n")

	cfg, err := LoadConfig(filepath.Join(dir, "sdrc.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	opts, err := cfg.CompilerOptions()
	if err != nil {
		t.Fatalf("CompilerOptions: %v", err)
	}
	if !opts.WarningsAsErrors {
		t.Error("WarningsAsErrors not set")
	}
	if !opts.Builtins.Has("voronoi") {
		t.Error("extra table was not merged")
	}
	if !opts.Builtins.Has("texture") {
		t.Error("default table was lost")
	}

	cfg.Builtins = append(cfg.Builtins, filepath.Join(dir, "missing.yaml"))
	if _, err := cfg.CompilerOptions(); err == nil {
		t.Error("expected an error for a missing table")
	}
}
