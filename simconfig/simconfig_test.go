package simconfig

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestInitResolvesFileReferences(t *testing.T) {
	dir := t.TempDir()

	sinksPath := filepath.Join(dir, "sinks.json")
	if err := os.WriteFile(sinksPath, []byte(`{"console": {"type": "stdout"}}`), 0644); err != nil {
		t.Fatalf("failed to write sinks file: %s", err)
	}

	mainPath := filepath.Join(dir, "config.json")
	mainDoc := `{"driver": {"machine_config": "dual_core"}, "sinks-file": "` + sinksPath + `"}`
	if err := os.WriteFile(mainPath, []byte(mainDoc), 0644); err != nil {
		t.Fatalf("failed to write main config: %s", err)
	}

	Reset()
	if err := Init(mainPath); err != nil {
		t.Fatalf("Init failed: %s", err)
	}

	if !HasSection("driver") {
		t.Fatal("expected a 'driver' section")
	}
	if !HasSection("sinks") {
		t.Fatal("expected 'sinks-file' to resolve into a 'sinks' section")
	}
	if HasSection("sinks-file") {
		t.Fatal("the raw 'sinks-file' key should not itself be a retained section")
	}

	var sinks map[string]json.RawMessage
	if err := json.Unmarshal(GetSection("sinks"), &sinks); err != nil {
		t.Fatalf("failed to decode resolved sinks section: %s", err)
	}
	if _, ok := sinks["console"]; !ok {
		t.Fatal("expected the resolved sinks section to contain 'console'")
	}
}

func TestInitMissingFileIsNotAnError(t *testing.T) {
	Reset()
	if err := Init(filepath.Join(t.TempDir(), "does-not-exist.json")); err != nil {
		t.Fatalf("a missing config file should not be an error, got: %s", err)
	}
	if len(Keys()) != 0 {
		t.Fatalf("expected no sections loaded, got %v", Keys())
	}
}

func TestLoadDriverConfigDefaultsAndRequired(t *testing.T) {
	Reset()
	if _, err := LoadDriverConfig(); err == nil {
		t.Fatal("expected an error when no 'driver' section is configured")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"driver": {"machine_config": "dual_core"}}`), 0644); err != nil {
		t.Fatalf("failed to write config: %s", err)
	}
	Reset()
	if err := Init(path); err != nil {
		t.Fatalf("Init failed: %s", err)
	}

	cfg, err := LoadDriverConfig()
	if err != nil {
		t.Fatalf("LoadDriverConfig failed: %s", err)
	}
	if cfg.CacheConfigType != "auto" {
		t.Fatalf("expected default cache_config_type 'auto', got %q", cfg.CacheConfigType)
	}
	if cfg.CoresPerWorker != 1 {
		t.Fatalf("expected default cores_per_worker 1, got %d", cfg.CoresPerWorker)
	}
}

func TestLoadDriverConfigEmptyMachineConfigIsFatal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"driver": {"machine_config": ""}}`), 0644); err != nil {
		t.Fatalf("failed to write config: %s", err)
	}
	Reset()
	if err := Init(path); err != nil {
		t.Fatalf("Init failed: %s", err)
	}
	if _, err := LoadDriverConfig(); err == nil {
		t.Fatal("expected an error for an empty machine_config")
	}
}
