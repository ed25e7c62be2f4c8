package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.Listen == "" {
		t.Error("Listen should not be empty")
	}
	if cfg.Requirements == "" {
		t.Error("Requirements path should not be empty")
	}
	if cfg.Database.Path == "" {
		t.Error("Database.Path should not be empty")
	}
	if cfg.Probe.Enabled {
		t.Error("probing should be opt-in")
	}
	if cfg.Probe.SSHPort != 22 {
		t.Errorf("Probe.SSHPort = %d, want 22", cfg.Probe.SSHPort)
	}
}

func TestLoadFromPath(t *testing.T) {
	content := `
version: 1
listen: ":8090"
requirements: /etc/gridwarden/requirements.yaml
database:
  path: /var/lib/gridwarden/reports.db
probe:
  enabled: true
  ssh_user: ops
  timeout: 45s
`
	path := filepath.Join(t.TempDir(), "gridwarden.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, loadedPath, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loadedPath != path {
		t.Errorf("loaded path = %q, want %q", loadedPath, path)
	}
	if cfg.Listen != ":8090" {
		t.Errorf("Listen = %q, want :8090", cfg.Listen)
	}
	if cfg.Requirements != "/etc/gridwarden/requirements.yaml" {
		t.Errorf("Requirements = %q", cfg.Requirements)
	}
	if !cfg.Probe.Enabled {
		t.Error("Probe.Enabled should be true")
	}
	if cfg.Probe.SSHUser != "ops" {
		t.Errorf("Probe.SSHUser = %q, want ops", cfg.Probe.SSHUser)
	}
	if cfg.ProbeTimeout() != 45*time.Second {
		t.Errorf("ProbeTimeout() = %s, want 45s", cfg.ProbeTimeout())
	}

	// unspecified values fall back to defaults
	if cfg.Probe.SSHPort != 22 {
		t.Errorf("Probe.SSHPort = %d, want default 22", cfg.Probe.SSHPort)
	}
	if cfg.Probe.MaxConcurrent != 4 {
		t.Errorf("Probe.MaxConcurrent = %d, want default 4", cfg.Probe.MaxConcurrent)
	}
}

func TestLoadFromPathErrors(t *testing.T) {
	if _, _, err := LoadFromPath(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("listen: [broken"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadFromPath(bad); err == nil {
		t.Error("expected error for broken YAML")
	}
}

func TestProbeTimeoutDefault(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.ProbeTimeout() != 30*time.Second {
		t.Errorf("default ProbeTimeout() = %s, want 30s", cfg.ProbeTimeout())
	}
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Listen = ":9999"

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, _, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if loaded.Listen != ":9999" {
		t.Errorf("Listen = %q, want :9999", loaded.Listen)
	}
}

func TestFindConfigPathEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "explicit.yaml")
	if err := os.WriteFile(path, []byte("version: 1"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvConfigPath, path)
	if got := FindConfigPath(); got != path {
		t.Errorf("FindConfigPath() = %q, want %q", got, path)
	}

	t.Setenv(EnvConfigPath, filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	// a dangling env path is skipped, not returned
	if got := FindConfigPath(); got == filepath.Join(t.TempDir(), "does-not-exist.yaml") {
		t.Errorf("FindConfigPath() returned non-existent path %q", got)
	}
}
