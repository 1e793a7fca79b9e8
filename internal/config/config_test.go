package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Source != SourceRecords {
		t.Errorf("expected default source %q, got %q", SourceRecords, cfg.Source)
	}
	if cfg.Prefix != "/unity-game/" {
		t.Errorf("expected default prefix %q, got %q", "/unity-game/", cfg.Prefix)
	}
	if cfg.Index != "index.html" {
		t.Errorf("expected default index %q, got %q", "index.html", cfg.Index)
	}
	if cfg.Bridge.Timeout != 10*time.Second {
		t.Errorf("expected default bridge timeout 10s, got %s", cfg.Bridge.Timeout)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.webglserve.yml")

	original := DefaultConfig()
	original.Source = SourceBridge
	original.Prefix = "/game/"
	original.Include = []string{"Build/**", "index.html"}
	original.Bridge.Timeout = 3 * time.Second
	original.Bridge.Secret = "s3cret"
	original.Log.Format = "json"

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Source != original.Source {
		t.Errorf("source: got %q, want %q", loaded.Source, original.Source)
	}
	if loaded.Prefix != original.Prefix {
		t.Errorf("prefix: got %q, want %q", loaded.Prefix, original.Prefix)
	}
	if loaded.Bridge.Timeout != original.Bridge.Timeout {
		t.Errorf("bridge.timeout: got %s, want %s", loaded.Bridge.Timeout, original.Bridge.Timeout)
	}
	if loaded.Bridge.Secret != original.Bridge.Secret {
		t.Errorf("bridge.secret: got %q, want %q", loaded.Bridge.Secret, original.Bridge.Secret)
	}
	if loaded.Log.Format != "json" {
		t.Errorf("log.format: got %q, want json", loaded.Log.Format)
	}
	if len(loaded.Include) != len(original.Include) {
		t.Fatalf("include length: got %d, want %d", len(loaded.Include), len(original.Include))
	}
	for i, v := range loaded.Include {
		if v != original.Include[i] {
			t.Errorf("include[%d]: got %q, want %q", i, v, original.Include[i])
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Source != SourceRecords {
		t.Errorf("expected default source, got %q", cfg.Source)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yml")

	cfg := DefaultConfig()
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv("WEBGLSERVE_SOURCE", "directory")
	t.Setenv("WEBGLSERVE_BRIDGE__TIMEOUT", "2s")
	t.Setenv("WEBGLSERVE_OPEN_BROWSER", "true")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Source != SourceDirectory {
		t.Errorf("env override failed: got %q, want %q", loaded.Source, SourceDirectory)
	}
	if loaded.Bridge.Timeout != 2*time.Second {
		t.Errorf("nested env override failed: got %s, want 2s", loaded.Bridge.Timeout)
	}
	if !loaded.OpenBrowser {
		t.Error("expected open_browser from env")
	}
}

func TestValidateValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig should be valid, got: %v", err)
	}
}

func TestValidateInvalid(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"empty listen", func(c *Config) { c.Listen = "" }},
		{"prefix without leading slash", func(c *Config) { c.Prefix = "game/" }},
		{"prefix without trailing slash", func(c *Config) { c.Prefix = "/game" }},
		{"empty index", func(c *Config) { c.Index = "" }},
		{"unknown source", func(c *Config) { c.Source = "s3" }},
		{"directory source without directory", func(c *Config) {
			c.Source = SourceDirectory
			c.Directory = ""
		}},
		{"records source without database", func(c *Config) { c.Database = "" }},
		{"zero bridge timeout", func(c *Config) { c.Bridge.Timeout = 0 }},
		{"unknown log level", func(c *Config) { c.Log.Level = "loud" }},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.modify(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b , c ", []string{"a", "b", "c"}},
		{"**/*.map", []string{"**/*.map"}},
		{"", nil},
		{"  ,  , ", nil},
	}
	for _, tt := range tests {
		got := splitAndTrim(tt.input)
		if len(got) != len(tt.want) {
			t.Errorf("splitAndTrim(%q) len = %d, want %d", tt.input, len(got), len(tt.want))
			continue
		}
		for i, v := range got {
			if v != tt.want[i] {
				t.Errorf("splitAndTrim(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
			}
		}
	}
}
