package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/quarkc-go/quark/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Devtools.Port != DefaultPort {
		t.Errorf("Devtools.Port = %d, want %d", cfg.Devtools.Port, DefaultPort)
	}
	if cfg.Devtools.Host != DefaultHost {
		t.Errorf("Devtools.Host = %q, want %q", cfg.Devtools.Host, DefaultHost)
	}
	if cfg.Render.Container != DefaultContainer {
		t.Errorf("Render.Container = %q, want %q", cfg.Render.Container, DefaultContainer)
	}
	if cfg.Metrics.Namespace != DefaultNamespace {
		t.Errorf("Metrics.Namespace = %q, want %q", cfg.Metrics.Namespace, DefaultNamespace)
	}
	if cfg.Bench.Iterations != 200 || cfg.Bench.Rows != 1000 {
		t.Errorf("Bench = %+v, want 200 iterations of 1000 rows", cfg.Bench)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	// Test loading non-existent config
	_, err := Load(tmpDir)
	if !errors.HasCode(err, "Q120") {
		t.Errorf("Load() error = %v, want Q120", err)
	}

	configPath := filepath.Join(tmpDir, ConfigFileName)
	configJSON := `{
  "name": "demo",
  "render": {
    "debug": true,
    "pretty": true
  },
  "devtools": {
    "host": "0.0.0.0",
    "port": 8080
  },
  "metrics": {
    "enabled": true,
    "namespace": "demo"
  },
  "snapshot": {
    "bucket": "snaps",
    "prefix": "/site/"
  }
}
`
	if err := os.WriteFile(configPath, []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if !cfg.Render.Debug || !cfg.Render.Pretty {
		t.Errorf("Render = %+v, want debug and pretty", cfg.Render)
	}
	if cfg.Render.Container != DefaultContainer {
		t.Errorf("Render.Container = %q, want default %q", cfg.Render.Container, DefaultContainer)
	}
	if got := cfg.DevtoolsAddress(); got != "0.0.0.0:8080" {
		t.Errorf("DevtoolsAddress = %q, want %q", got, "0.0.0.0:8080")
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Namespace != "demo" {
		t.Errorf("Metrics = %+v", cfg.Metrics)
	}
	if got := cfg.SnapshotTarget(); got != "s3://snaps/site" {
		t.Errorf("SnapshotTarget = %q, want %q", got, "s3://snaps/site")
	}
	if cfg.Dir() != tmpDir {
		t.Errorf("Dir = %q, want %q", cfg.Dir(), tmpDir)
	}
}

func TestLoadFile_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)

	if err := os.WriteFile(configPath, []byte("not valid json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFile(configPath)
	if err == nil {
		t.Fatal("Expected error for invalid JSON")
	}
	if !strings.Contains(err.Error(), "Q121") {
		t.Errorf("Expected Q121 error, got: %v", err)
	}
}

func TestLoadFile_InvalidValue(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)

	if err := os.WriteFile(configPath, []byte(`{"devtools": {"port": 70000}}`), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFile(configPath); !errors.HasCode(err, "Q122") {
		t.Errorf("LoadFile() error = %v, want Q122", err)
	}
}

func TestSave(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)

	cfg := New()
	cfg.Devtools.Port = 9000
	cfg.Snapshot.Dir = "out"

	// Save should fail without configPath set
	if err := cfg.Save(); err == nil {
		t.Error("Expected error when saving without path")
	}

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("SaveTo error: %v", err)
	}

	loaded, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if loaded.Devtools.Port != 9000 {
		t.Errorf("Devtools.Port = %d, want %d", loaded.Devtools.Port, 9000)
	}
	if got, want := loaded.SnapshotTarget(), filepath.Join(tmpDir, "out"); got != want {
		t.Errorf("SnapshotTarget = %q, want %q", got, want)
	}

	loaded.Devtools.Port = 9001
	if err := loaded.Save(); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	reloaded, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if reloaded.Devtools.Port != 9001 {
		t.Errorf("Devtools.Port = %d, want %d", reloaded.Devtools.Port, 9001)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		valid  bool
	}{
		{"defaults", func(*Config) {}, true},
		{"negative port", func(c *Config) { c.Devtools.Port = -1 }, false},
		{"port too large", func(c *Config) { c.Devtools.Port = 70000 }, false},
		{"negative rows", func(c *Config) { c.Bench.Rows = -5 }, false},
		{"container markup", func(c *Config) { c.Render.Container = "<main>" }, false},
		{"custom container", func(c *Config) { c.Render.Container = "x-root" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.valid && err != nil {
				t.Errorf("Validate() error = %v, want nil", err)
			}
			if !tt.valid && !errors.HasCode(err, "Q122") {
				t.Errorf("Validate() error = %v, want Q122", err)
			}
		})
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, ConfigFileName), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatalf("FindProjectRoot error: %v", err)
	}
	want, _ := filepath.Abs(root)
	if got != want {
		t.Errorf("FindProjectRoot = %q, want %q", got, want)
	}
	if !Exists(root) || Exists(nested) {
		t.Error("Exists reports the wrong directories")
	}
}
