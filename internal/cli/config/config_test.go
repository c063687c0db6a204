package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    string
		shouldError bool
	}{
		{name: "http with port", input: "http://localhost:3000", expected: "http://localhost:3000"},
		{name: "trailing slash", input: "https://api.realworld.io/", expected: "https://api.realworld.io"},
		{name: "bare host", input: "api.realworld.io", expected: "https://api.realworld.io"},
		{name: "path prefix", input: "https://example.com/conduit/", expected: "https://example.com/conduit"},
		{name: "surrounding spaces", input: "  http://localhost:3000  ", expected: "http://localhost:3000"},
		{name: "empty", input: "", shouldError: true},
		{name: "unsupported scheme", input: "ftp://example.com", shouldError: true},
		{name: "missing host", input: "http://", shouldError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeURL(tt.input)
			if tt.shouldError {
				if err == nil {
					t.Fatalf("expected error for %q, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestConfig_Lookup(t *testing.T) {
	cfg := &Config{Servers: []Server{
		{URL: "http://localhost:3000", Alias: "local"},
		{URL: "https://api.realworld.io", Alias: "demo"},
	}}

	server, err := cfg.GetServerByAlias("demo")
	if err != nil {
		t.Fatalf("GetServerByAlias failed: %v", err)
	}
	if server.URL != "https://api.realworld.io" {
		t.Errorf("expected demo URL, got %q", server.URL)
	}

	server, err = cfg.GetServerByURL("http://localhost:3000/")
	if err != nil {
		t.Fatalf("GetServerByURL failed: %v", err)
	}
	if server.Alias != "local" {
		t.Errorf("expected alias 'local', got %q", server.Alias)
	}

	if _, err := cfg.GetServerByAlias("missing"); err == nil {
		t.Error("expected error for unknown alias")
	}

	server, err = cfg.GetDefaultServer()
	if err != nil || server.Alias != "local" {
		t.Errorf("expected first server as default, got %v (err %v)", server, err)
	}

	if _, err := (&Config{}).GetDefaultServer(); err == nil {
		t.Error("expected error for empty config")
	}
}

func TestLoadFromCurrentDir_SearchesParents(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	want := &Config{Servers: []Server{{URL: "http://localhost:3000", Alias: "local"}}}
	if err := Save(filepath.Join(root, ConfigFileName), want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	testChdir(t, nested)

	got, err := LoadFromCurrentDir()
	if err != nil {
		t.Fatalf("LoadFromCurrentDir failed: %v", err)
	}
	if len(got.Servers) != 1 || got.Servers[0].Alias != "local" {
		t.Errorf("unexpected config: %+v", got)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(path, []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}
