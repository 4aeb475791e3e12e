package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadMissingPathReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Dtpg.Engine != "ffr" {
		t.Errorf("expected default engine %q, got %q", "ffr", cfg.Dtpg.Engine)
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Rtpg.PatternBudget != 1000 {
		t.Errorf("expected default pattern budget 1000, got %d", cfg.Rtpg.PatternBudget)
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dtpg.Engine = "mffc"
	cfg.Dtpg.SolverTimeout = 30 * time.Second
	cfg.Logging.Level = "debug"

	path := filepath.Join(t.TempDir(), "satpg.yaml")
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Dtpg.Engine != "mffc" {
		t.Errorf("expected engine %q, got %q", "mffc", loaded.Dtpg.Engine)
	}
	if loaded.Dtpg.SolverTimeout != 30*time.Second {
		t.Errorf("expected solver timeout 30s, got %v", loaded.Dtpg.SolverTimeout)
	}
	if loaded.Logging.Level != "debug" {
		t.Errorf("expected logging level %q, got %q", "debug", loaded.Logging.Level)
	}
}

func TestValidateRejectsUnknownEngine(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dtpg.Engine = "bogus"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for an unknown dtpg.engine")
	}
}

func TestValidateRejectsUnknownBacktraceMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dtpg.BacktraceMode = "bogus"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for an unknown dtpg.backtrace_mode")
	}
}

func TestValidateRejectsNegativePatternBudget(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rtpg.PatternBudget = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for a negative rtpg.pattern_budget")
	}
}
