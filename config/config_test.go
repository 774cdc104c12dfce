package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if cfg.World.Width != 20 || cfg.World.Height != 10 {
		t.Errorf("world = %gx%g, want 20x10", cfg.World.Width, cfg.World.Height)
	}
	if cfg.Physics.Gravity >= 0 {
		t.Errorf("gravity = %g, want negative (downward)", cfg.Physics.Gravity)
	}
	if cfg.Drag.Damping <= 0 || cfg.Drag.Damping >= 1 {
		t.Errorf("damping = %g, want in (0,1)", cfg.Drag.Damping)
	}
	if cfg.Manipulator.MaxLoad <= cfg.Manipulator.Strength {
		t.Errorf("max load %g must exceed strength %g", cfg.Manipulator.MaxLoad, cfg.Manipulator.Strength)
	}
}

func TestLoadOverrideMergesWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	data := `physics:
  gravity: -100.0
drag:
  stiffness: 10.0
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Physics.Gravity != -100 {
		t.Errorf("gravity = %g, want override -100", cfg.Physics.Gravity)
	}
	if cfg.Drag.Stiffness != 10 {
		t.Errorf("stiffness = %g, want override 10", cfg.Drag.Stiffness)
	}
	// Untouched sections keep their defaults.
	if cfg.World.Width != 20 {
		t.Errorf("world width = %g, want default 20", cfg.World.Width)
	}
	if cfg.Bin.Width == 0 {
		t.Error("bin defaults lost after merge")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for a missing config file")
	}
}

func TestComputeDerived(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Derived.ScreenW32 != float32(cfg.Screen.Width) {
		t.Errorf("ScreenW32 = %g", cfg.Derived.ScreenW32)
	}
	if cfg.Physics.DT <= 0 {
		t.Errorf("DT = %g, want positive", cfg.Physics.DT)
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if back.Physics.Gravity != cfg.Physics.Gravity || back.Drag.Stiffness != cfg.Drag.Stiffness {
		t.Error("round-tripped config differs")
	}
}
