package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oceanbotics/helmsman/internal/config"
)

func TestInitConfigWritesValidDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfgPath = path
	defer func() { cfgPath = "" }()

	if err := runInitConfig(initConfigCmd, nil); err != nil {
		t.Fatalf("init-config: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(data), "critical_low_threshold") {
		t.Fatal("expected threshold keys in generated config")
	}

	// The generated file must round-trip through the loader.
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load generated config: %v", err)
	}
	if cfg.Engine.LowThreshold != 0.6 {
		t.Fatalf("unexpected low threshold %v", cfg.Engine.LowThreshold)
	}
}

func TestInitConfigRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfgPath = path
	defer func() { cfgPath = "" }()

	if err := os.WriteFile(path, []byte("engine: {}\n"), 0o644); err != nil {
		t.Fatalf("write existing: %v", err)
	}
	if err := runInitConfig(initConfigCmd, nil); err == nil {
		t.Fatal("expected refusal without --force")
	}

	initForce = true
	defer func() { initForce = false }()
	if err := runInitConfig(initConfigCmd, nil); err != nil {
		t.Fatalf("init-config --force: %v", err)
	}
}
