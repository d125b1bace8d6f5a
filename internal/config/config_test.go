package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("/proj", "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ProjectRoot != "/proj" {
		t.Fatalf("got project root %q", cfg.ProjectRoot)
	}
	if cfg.FuzzyMinLength != 3 {
		t.Fatalf("got fuzzy min length %d, want 3", cfg.FuzzyMinLength)
	}
	if cfg.CachePath != filepath.Join("/proj", ".symbolcore", "symbols.db") {
		t.Fatalf("got cache path %q", cfg.CachePath)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "symbolcore.json")
	data, _ := json.Marshal(map[string]interface{}{"fuzzy_min_length": 5})
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(dir, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.FuzzyMinLength != 5 {
		t.Fatalf("got %d, want 5", cfg.FuzzyMinLength)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("SYMBOLCORE_FUZZY_MIN_LENGTH", "7")
	dir := t.TempDir()
	path := filepath.Join(dir, "symbolcore.json")
	data, _ := json.Marshal(map[string]interface{}{"fuzzy_min_length": 5})
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(dir, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.FuzzyMinLength != 7 {
		t.Fatalf("got %d, want 7", cfg.FuzzyMinLength)
	}
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	if _, err := Load("/proj", "/does/not/exist.json"); err != nil {
		t.Fatalf("expected missing config file to be ignored, got %v", err)
	}
}
