package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "collector.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: http://localhost:8000
  freshness_seconds: 60
server:
  listen: 127.0.0.1:9000
scrape:
  pages:
    - https://www.instagram.com/creator/
  source: browser
  interval_seconds: 120
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Backend.BaseURL != "http://localhost:8000" {
		t.Errorf("base_url = %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.Freshness() != time.Minute {
		t.Errorf("freshness = %v", cfg.Backend.Freshness())
	}
	if cfg.Server.Listen != "127.0.0.1:9000" {
		t.Errorf("listen = %q", cfg.Server.Listen)
	}
	if len(cfg.Scrape.Pages) != 1 {
		t.Errorf("pages = %v", cfg.Scrape.Pages)
	}
	if cfg.Scrape.Interval() != 2*time.Minute {
		t.Errorf("interval = %v", cfg.Scrape.Interval())
	}
}

func TestLoadFile_Defaults(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: http://localhost:8000
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Backend.Freshness() != 30*time.Second {
		t.Errorf("freshness default = %v", cfg.Backend.Freshness())
	}
	if cfg.Scrape.Source != "http" {
		t.Errorf("source default = %q", cfg.Scrape.Source)
	}
	if cfg.Scrape.MaxTextLen != 3000 {
		t.Errorf("max_text_len default = %d", cfg.Scrape.MaxTextLen)
	}
	if cfg.Storage.RetentionDays != 14 {
		t.Errorf("retention default = %d", cfg.Storage.RetentionDays)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level default = %q", cfg.Log.Level)
	}
}

func TestLoadFile_MissingBaseURL(t *testing.T) {
	path := writeConfig(t, `
scrape:
  source: http
`)
	_, err := LoadFile(path)
	if err == nil || !strings.Contains(err.Error(), "base_url") {
		t.Fatalf("err = %v, want base_url validation error", err)
	}
}

func TestLoadFile_BadSource(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: http://localhost:8000
scrape:
  source: carrier-pigeon
`)
	_, err := LoadFile(path)
	if err == nil || !strings.Contains(err.Error(), "scrape.source") {
		t.Fatalf("err = %v, want source validation error", err)
	}
}

func TestLoadFile_NotFound(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
