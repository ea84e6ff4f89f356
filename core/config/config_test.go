package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNormalizeDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.Discord.Token = "token-123"
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Discord.Prefix != DefaultPrefix {
		t.Fatalf("prefix = %q, want %q", cfg.Discord.Prefix, DefaultPrefix)
	}
	if cfg.Website.APIURL != DefaultAPIURL {
		t.Fatalf("api url = %q, want %q", cfg.Website.APIURL, DefaultAPIURL)
	}
	if cfg.Web.Port != DefaultWebPort {
		t.Fatalf("port = %d, want %d", cfg.Web.Port, DefaultWebPort)
	}
}

func TestNormalizeMissingToken(t *testing.T) {
	err := Normalize(&Config{})
	if err == nil || !strings.Contains(err.Error(), "token") {
		t.Fatalf("expected token error, got %v", err)
	}
}

func TestNormalizeRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad api url", func(c *Config) { c.Website.APIURL = "::not-a-url" }},
		{"negative timeout", func(c *Config) { c.Website.UploadTimeoutSeconds = -1 }},
		{"port out of range", func(c *Config) { c.Web.Port = 70000 }},
		{"negative rate limit", func(c *Config) { c.RateLimit.IntervalMS = -5 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.Discord.Token = "t"
			tc.mutate(cfg)
			if err := Normalize(cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadYAMLWithEnvOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
discord:
  token: from-file
channels:
  Education: "  1413881799322636319 "
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DISCORD_TOKEN", "from-env")
	t.Setenv("API_URL", "https://nexon.example/api/upload")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Discord.Token != "from-env" {
		t.Fatalf("token = %q, env must win", cfg.Discord.Token)
	}
	if cfg.Website.APIURL != "https://nexon.example/api/upload" {
		t.Fatalf("api url = %q", cfg.Website.APIURL)
	}
	if got := cfg.Channels["Education"]; got != "1413881799322636319" {
		t.Fatalf("channel id not trimmed: %q", got)
	}
}

func TestLoadMissingFileFallsBackToEnv(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "env-only")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Discord.Token != "env-only" {
		t.Fatalf("token = %q", cfg.Discord.Token)
	}
}
