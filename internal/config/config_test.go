package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if len(cfg.SearchPath) == 0 || cfg.SearchPath[0] != "." {
		t.Errorf("search path = %v, want it to start with .", cfg.SearchPath)
	}
	if strings.Join(cfg.Ignore.Names, " ") != "venv" {
		t.Errorf("ignore = %v, want [venv]", cfg.Ignore.Names)
	}
	if strings.Join(cfg.Tests.Packages, " ") != "tests ftests" {
		t.Errorf("test packages = %v", cfg.Tests.Packages)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("debounce = %v", cfg.Watch.Debounce)
	}
}

func TestLoad(t *testing.T) {
	content := `
search_path = ["/srv/app", "/srv/libs.zip"]
extensions = [".pyx"]
stdlib_table = "/etc/importgraph/stdlib.txt"
rm_prefixes = ["company"]

[ignore]
names = ["venv", "node_modules"]

[tests]
packages = ["tests"]

[watch]
debounce = 250000000

[cache]
path = "graph.importcache"

[observability]
metrics_addr = ":9102"
otlp_endpoint = "collector:4317"
otlp_insecure = true
`
	path := filepath.Join(t.TempDir(), "importgraph.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if strings.Join(cfg.SearchPath, " ") != "/srv/app /srv/libs.zip" {
		t.Errorf("search path = %v", cfg.SearchPath)
	}
	if strings.Join(cfg.Extensions, " ") != ".pyx" {
		t.Errorf("extensions = %v", cfg.Extensions)
	}
	if cfg.StdlibTable != "/etc/importgraph/stdlib.txt" {
		t.Errorf("stdlib table = %q", cfg.StdlibTable)
	}
	if strings.Join(cfg.RemovePrefixes, " ") != "company" {
		t.Errorf("rm prefixes = %v", cfg.RemovePrefixes)
	}
	if strings.Join(cfg.Ignore.Names, " ") != "venv node_modules" {
		t.Errorf("ignore = %v", cfg.Ignore.Names)
	}
	if cfg.Watch.Debounce != 250*time.Millisecond {
		t.Errorf("debounce = %v", cfg.Watch.Debounce)
	}
	if cfg.Cache.Path != "graph.importcache" {
		t.Errorf("cache path = %q", cfg.Cache.Path)
	}
	if cfg.Observability.MetricsAddr != ":9102" || !cfg.Observability.OTLPInsecure {
		t.Errorf("observability = %+v", cfg.Observability)
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(cfg.Ignore.Names, " ") != "venv" {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoad_BadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("search_path = [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected a decode error")
	}
}
