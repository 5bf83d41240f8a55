package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Flatten.FixedOverhead != 3 {
		t.Errorf("expected default FixedOverhead 3, got %d", cfg.Flatten.FixedOverhead)
	}
	if cfg.Flatten.DuplicationWeight != 1 {
		t.Errorf("expected default DuplicationWeight 1, got %d", cfg.Flatten.DuplicationWeight)
	}
	if cfg.Analysis.StrictCrossSectionGoto {
		t.Error("expected StrictCrossSectionGoto to default false")
	}
	if !cfg.Analysis.Recursive {
		t.Error("expected Recursive to default true")
	}
	if cfg.Output.Format != "text" {
		t.Errorf("expected default output format text, got %q", cfg.Output.Format)
	}
}

func TestLoadFromFileTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.toml")
	content := `
[flatten]
fixed_overhead = 5
duplication_weight = 2

[analysis]
strict_cross_section_goto = true

[output]
format = "dot"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if cfg.Flatten.FixedOverhead != 5 {
		t.Errorf("expected FixedOverhead 5, got %d", cfg.Flatten.FixedOverhead)
	}
	if cfg.Flatten.DuplicationWeight != 2 {
		t.Errorf("expected DuplicationWeight 2, got %d", cfg.Flatten.DuplicationWeight)
	}
	if !cfg.Analysis.StrictCrossSectionGoto {
		t.Error("expected StrictCrossSectionGoto true")
	}
	if cfg.Output.Format != "dot" {
		t.Errorf("expected output format dot, got %q", cfg.Output.Format)
	}
}

func TestLoadFromFileYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	content := "flatten:\n  fixed_overhead: 7\noutput:\n  format: json\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if cfg.Flatten.FixedOverhead != 7 {
		t.Errorf("expected FixedOverhead 7, got %d", cfg.Flatten.FixedOverhead)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("expected output format json, got %q", cfg.Output.Format)
	}
}

func TestLoadFromFileUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.ini")
	if err := os.WriteFile(path, []byte("whatever"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := LoadFromFile(path); err == nil {
		t.Fatal("expected an error for an unsupported config extension")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestLoadWithEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.toml")
	content := "[flatten]\nfixed_overhead = 5\nduplication_weight = 2\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	t.Setenv("COBOLSTRUCT_FLATTEN_FIXED_OVERHEAD", "9")

	cfg, err := LoadWithEnv(path)
	if err != nil {
		t.Fatalf("LoadWithEnv() error = %v", err)
	}
	if cfg.Flatten.FixedOverhead != 9 {
		t.Errorf("expected env override to set FixedOverhead to 9, got %d", cfg.Flatten.FixedOverhead)
	}
	if cfg.Flatten.DuplicationWeight != 2 {
		t.Errorf("expected DuplicationWeight to remain the file's value 2, got %d", cfg.Flatten.DuplicationWeight)
	}
}

func TestLoadWithEnvNoFile(t *testing.T) {
	cfg, err := LoadWithEnv("")
	if err != nil {
		t.Fatalf("LoadWithEnv() error = %v", err)
	}
	if cfg.Flatten.FixedOverhead != 3 {
		t.Errorf("expected the package default when no file or env override is given, got %d", cfg.Flatten.FixedOverhead)
	}
}

func TestFindDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	if _, ok := FindDefaultConfig(dir); ok {
		t.Fatal("expected no default config to be found in an empty directory")
	}

	path := filepath.Join(dir, ".cobolstruct.toml")
	if err := os.WriteFile(path, []byte("[output]\nformat = \"text\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	found, ok := FindDefaultConfig(dir)
	if !ok {
		t.Fatal("expected FindDefaultConfig to find .cobolstruct.toml")
	}
	if found != path {
		t.Errorf("expected %q, got %q", path, found)
	}
}
