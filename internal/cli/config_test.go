package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "givelife.yaml")
	data := []byte("api_base_url: https://api.givelife.rw\napi_timeout: 5s\npage_size: 20\nsession_file: /tmp/gl.json\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("GIVELIFE_API_RETRY_COUNT", "2")
	t.Setenv("GIVELIFE_PAGE_SIZE", "15")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.APIBaseURL != "https://api.givelife.rw" || cfg.APITimeout != 5*time.Second {
		t.Fatalf("unexpected api settings %+v", cfg)
	}
	if cfg.APIRetryCount != 2 || cfg.PageSize != 15 {
		t.Fatalf("expected env overrides, got %+v", cfg)
	}
	if cfg.SessionFile != "/tmp/gl.json" || cfg.LogLevel != "warn" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadConfigWithoutFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GIVELIFE_API_BASE_URL", "")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.APITimeout != 10*time.Second || cfg.SessionFile == "" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected missing api_base_url to fail validation")
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}
