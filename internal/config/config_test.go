package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValues(t *testing.T) {
	cfg := Default()
	if cfg.StackSize != 1024 {
		t.Fatalf("StackSize = %d, want 1024", cfg.StackSize)
	}
	if cfg.Trace {
		t.Fatal("Trace = true, want false")
	}
}

func TestLoadWithMissingFilesReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "minako.yaml"), filepath.Join(dir, ".env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("got %+v, want defaults %+v", cfg, Default())
	}
}

func TestLoadYamlOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "minako.yaml")
	writeFile(t, yamlPath, "stack_size: 2048\ntrace: true\n")

	cfg, err := Load(yamlPath, filepath.Join(dir, ".env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StackSize != 2048 || !cfg.Trace {
		t.Fatalf("got %+v, want {2048 true}", cfg)
	}
}

func TestEnvironmentOverridesYaml(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "minako.yaml")
	writeFile(t, yamlPath, "stack_size: 2048\n")

	t.Setenv("MINAKO_STACK_SIZE", "4096")
	t.Setenv("MINAKO_TRACE", "true")

	cfg, err := Load(yamlPath, filepath.Join(dir, ".env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StackSize != 4096 || !cfg.Trace {
		t.Fatalf("got %+v, want {4096 true}", cfg)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}
