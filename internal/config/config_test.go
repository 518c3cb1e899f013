package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != CurrentVersion {
		t.Errorf("Version = %d, want %d", cfg.Version, CurrentVersion)
	}
	if cfg.Engine.DtoSuffix != "DTO" {
		t.Errorf("DtoSuffix = %q, want %q", cfg.Engine.DtoSuffix, "DTO")
	}
	if cfg.Engine.AccessorPrefix != "get" {
		t.Errorf("AccessorPrefix = %q, want %q", cfg.Engine.AccessorPrefix, "get")
	}
	if cfg.Engine.VisitedScope != "run" {
		t.Errorf("VisitedScope = %q, want %q", cfg.Engine.VisitedScope, "run")
	}
	if cfg.Resolver.Backend != "fs" {
		t.Errorf("Resolver.Backend = %q, want %q", cfg.Resolver.Backend, "fs")
	}
	if len(cfg.Engine.RoutingAnnotations) == 0 {
		t.Error("RoutingAnnotations should not be empty")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.RepoRoot != dir {
		t.Errorf("RepoRoot = %q, want %q", cfg.RepoRoot, dir)
	}
	if cfg.Engine.DtoSuffix != "DTO" {
		t.Errorf("DtoSuffix = %q, want default", cfg.Engine.DtoSuffix)
	}
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".swagfill"), 0755); err != nil {
		t.Fatal(err)
	}
	content := `{
  "version": 1,
  "searchRoot": "services",
  "engine": {"dtoSuffix": "Dto", "visitedScope": "service"},
  "resolver": {"backend": "scip", "scipIndexPath": "out/index.scip"}
}`
	if err := os.WriteFile(filepath.Join(dir, ".swagfill", "config.json"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Engine.DtoSuffix != "Dto" {
		t.Errorf("DtoSuffix = %q, want %q", cfg.Engine.DtoSuffix, "Dto")
	}
	if cfg.Engine.VisitedScope != "service" {
		t.Errorf("VisitedScope = %q, want %q", cfg.Engine.VisitedScope, "service")
	}
	if cfg.Engine.AccessorPrefix != "get" {
		t.Errorf("AccessorPrefix = %q, want default %q", cfg.Engine.AccessorPrefix, "get")
	}
	if cfg.Resolver.Backend != "scip" || cfg.Resolver.ScipIndexPath != "out/index.scip" {
		t.Errorf("Resolver = %+v", cfg.Resolver)
	}
	if got, want := cfg.EffectiveSearchRoot(), filepath.Join(dir, "services"); got != want {
		t.Errorf("EffectiveSearchRoot() = %q, want %q", got, want)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SWAGFILL_RESOLVER_BACKEND", "scip")

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Resolver.Backend != "scip" {
		t.Errorf("Resolver.Backend = %q, want env override %q", cfg.Resolver.Backend, "scip")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Engine.DtoSuffix = "Model"

	if err := cfg.Save(dir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if loaded.Engine.DtoSuffix != "Model" {
		t.Errorf("DtoSuffix = %q, want %q", loaded.Engine.DtoSuffix, "Model")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad version", func(c *Config) { c.Version = 9 }, "version"},
		{"empty suffix", func(c *Config) { c.Engine.DtoSuffix = "" }, "engine.dtoSuffix"},
		{"empty prefix", func(c *Config) { c.Engine.AccessorPrefix = "" }, "engine.accessorPrefix"},
		{"no routing", func(c *Config) { c.Engine.RoutingAnnotations = nil }, "engine.routingAnnotations"},
		{"bad scope", func(c *Config) { c.Engine.VisitedScope = "global" }, "engine.visitedScope"},
		{"bad backend", func(c *Config) { c.Resolver.Backend = "lsp" }, "resolver.backend"},
		{"scip without index", func(c *Config) {
			c.Resolver.Backend = "scip"
			c.Resolver.ScipIndexPath = ""
		}, "resolver.scipIndexPath"},
		{"negative cache", func(c *Config) { c.Resolver.CacheSize = -1 }, "resolver.cacheSize"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"bad log size", func(c *Config) { c.Logging.MaxSize = "lots" }, "logging.maxSize"},
		{"no rotation", func(c *Config) { c.Logging.MaxSize = "" }, ""},
		{"negative backups", func(c *Config) { c.Logging.MaxBackups = -1 }, "logging.maxBackups"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.field == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			cerr, ok := err.(*ConfigError)
			if !ok {
				t.Fatalf("Validate() = %v, want *ConfigError", err)
			}
			if cerr.Field != tt.field {
				t.Errorf("Field = %q, want %q", cerr.Field, tt.field)
			}
		})
	}
}
