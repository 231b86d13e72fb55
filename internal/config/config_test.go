package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	v := New("")
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := Defaults()
	if cfg != want {
		t.Fatalf("Load() with no overrides = %+v, want %+v", cfg, want)
	}
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"max_time":"5s","bogus_key":true}`), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	v := New(path)
	_, err := Load(v)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Load() error = %v, want ErrInvalidConfig", err)
	}
}

func TestLoadRejectsInvalidUnitCosts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"unit_costs":"maybe"}`), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	v := New(path)
	if _, err := Load(v); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Load() error = %v, want ErrInvalidConfig", err)
	}
}

func TestLoadRejectsNegativeEagerLayers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"eager_layers":-3}`), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	v := New(path)
	if _, err := Load(v); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Load() error = %v, want ErrInvalidConfig", err)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	body := `{"max_time":"30s","max_cost":3,"unit_costs":"true","sampling_time":"2s","eager_layers":4,"visualize":true}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	v := New(path)
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxTime != 30*time.Second {
		t.Fatalf("MaxTime = %v, want 30s", cfg.MaxTime)
	}
	if cfg.MaxCost != 3 {
		t.Fatalf("MaxCost = %v, want 3", cfg.MaxCost)
	}
	if cfg.UnitCosts != UnitCostsTrue {
		t.Fatalf("UnitCosts = %v, want true", cfg.UnitCosts)
	}
	if cfg.EagerLayers != 4 {
		t.Fatalf("EagerLayers = %d, want 4", cfg.EagerLayers)
	}
	if !cfg.Visualize {
		t.Fatal("Visualize = false, want true")
	}
}

func TestLoadUnboundedMaxTimeSentinel(t *testing.T) {
	v := New("")
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxTime != -1 {
		t.Fatalf("MaxTime default = %v, want -1 (unbounded)", cfg.MaxTime)
	}
}

func TestLoadEffortWeightAbsentByDefault(t *testing.T) {
	v := New("")
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.EffortWeight != nil {
		t.Fatalf("EffortWeight = %v, want nil", cfg.EffortWeight)
	}
}
