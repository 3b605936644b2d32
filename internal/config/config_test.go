package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestRuntimeConfigDefaults(t *testing.T) {
	cfg := DefaultRuntimeConfig()
	if cfg.Backend != "sqlite" || cfg.MaxPasses != 16 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Remote.FetchInterval != 5*time.Minute || cfg.Remote.ProbeInterval != 30*time.Second {
		t.Fatalf("unexpected remote defaults: %+v", cfg.Remote)
	}
	if cfg.RemoteEnabled() {
		t.Fatal("remote must be disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoadLayersFileThenEnv(t *testing.T) {
	path := writeConfig(t, `
backend = "file"
timezone = "Asia/Tokyo"

[remote]
url = "https://sync.example.com"
token = "from-file"
fetch-interval = "90s"

[log]
level = "debug"
`)
	t.Setenv("DAYBOOK_REMOTE_TOKEN", "from-env")
	t.Setenv("DAYBOOK_REMOTE_PROBE_INTERVAL", "5s")
	t.Setenv("DAYBOOK_MAX_PASSES", "4")

	v := NewViper()
	v.Set("config", path)
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend != "file" || cfg.Remote.URL != "https://sync.example.com" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Remote.Token != "from-env" || cfg.Remote.ProbeInterval != 5*time.Second || cfg.MaxPasses != 4 {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.Remote.FetchInterval != 90*time.Second {
		t.Fatalf("unexpected fetch interval %s", cfg.Remote.FetchInterval)
	}
	if cfg.Log.Format != "text" {
		t.Fatalf("undefined keys must keep defaults, got %q", cfg.Log.Format)
	}
	loc, err := cfg.Location()
	if err != nil || loc.String() != "Asia/Tokyo" {
		t.Fatalf("location = %v, %v", loc, err)
	}
	if !cfg.RemoteEnabled() {
		t.Fatal("expected remote enabled")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"backend":  `backend = "postgres"`,
		"duration": "[remote]\nfetch-interval = \"soon\"",
		"timezone": `timezone = "Mars/Olympus"`,
		"level":    "[log]\nlevel = \"loud\"",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			v := NewViper()
			v.Set("config", writeConfig(t, body))
			if _, err := Load(v); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoadToleratesMissingFile(t *testing.T) {
	v := NewViper()
	v.Set("config", filepath.Join(t.TempDir(), "absent.toml"))
	if _, err := Load(v); err != nil {
		t.Fatalf("missing file must be fine: %v", err)
	}
}

func TestNewLoggerHonoursFormat(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultRuntimeConfig()
	cfg.Log.Format = "json"
	cfg.NewLogger(&buf).Info("hello")
	if !strings.HasPrefix(buf.String(), "{") {
		t.Fatalf("expected JSON output, got %q", buf.String())
	}
}
