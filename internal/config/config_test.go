package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8787" {
		t.Fatalf("port=%q", cfg.Port)
	}
	if cfg.APIMasterKey != DefaultAPIMasterKey {
		t.Fatalf("key=%q", cfg.APIMasterKey)
	}
	if cfg.UpstreamURL != "https://chat.hackaigc.com" {
		t.Fatalf("upstream=%q", cfg.UpstreamURL)
	}
	if cfg.RequestTimeout != 300 {
		t.Fatalf("timeout=%d", cfg.RequestTimeout)
	}
}

func TestLoadJSONFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	data := `{"port":"9000","api_master_key":"sk-custom","debug_enabled":true}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9000" || cfg.APIMasterKey != "sk-custom" || !cfg.DebugEnabled {
		t.Fatalf("cfg=%+v", cfg)
	}
	// Unset fields still get defaults.
	if cfg.UpstreamURL != "https://chat.hackaigc.com" {
		t.Fatalf("upstream=%q", cfg.UpstreamURL)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "port: \"9100\"\napi_master_key: sk-yaml\nrequest_timeout: 60\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9100" || cfg.APIMasterKey != "sk-yaml" || cfg.RequestTimeout != 60 {
		t.Fatalf("cfg=%+v", cfg)
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatalf("want error for missing explicit path")
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("port = 1"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("want error for unsupported extension")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"port":"9000","api_master_key":"sk-file"}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	t.Setenv("PORT", "9999")
	t.Setenv("API_MASTER_KEY", "sk-env")
	t.Setenv("DEBUG_ENABLED", "true")
	t.Setenv("REQUEST_TIMEOUT", "42")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9999" {
		t.Fatalf("port=%q, env must win over file", cfg.Port)
	}
	if cfg.APIMasterKey != "sk-env" {
		t.Fatalf("key=%q", cfg.APIMasterKey)
	}
	if !cfg.DebugEnabled {
		t.Fatalf("debug not enabled from env")
	}
	if cfg.RequestTimeout != 42 {
		t.Fatalf("timeout=%d", cfg.RequestTimeout)
	}
}

func TestProbeConfigInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yml"), []byte("port: \"7000\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	chdir(t, dir)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "7000" {
		t.Fatalf("port=%q, config.yml in cwd not picked up", cfg.Port)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(old) })
}
