package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	// SearchPath lists the roots probed during module resolution:
	// directories or zip archives, in order.
	SearchPath []string `toml:"search_path"`

	// Extensions adds recognized module file suffixes beyond .py/.so/.dll.
	Extensions []string `toml:"extensions"`

	// StdlibTable optionally replaces the embedded standard-library
	// module-name snapshot with a file, one name per line.
	StdlibTable string `toml:"stdlib_table"`

	// RemovePrefixes lists module-name prefixes stripped from the final
	// graph, in addition to any given on the command line.
	RemovePrefixes []string `toml:"rm_prefixes"`

	Ignore        Ignore        `toml:"ignore"`
	Tests         Tests         `toml:"tests"`
	Watch         Watch         `toml:"watch"`
	Cache         Cache         `toml:"cache"`
	Observability Observability `toml:"observability"`
}

type Ignore struct {
	// Names are file or directory basenames (or glob patterns) skipped
	// during enumeration.
	Names []string `toml:"names"`
}

type Tests struct {
	// Packages are the segment names folded by the test-collapse transform.
	Packages []string `toml:"packages"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
}

type Cache struct {
	Path string `toml:"path"`
}

type Observability struct {
	MetricsAddr  string `toml:"metrics_addr"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
	OTLPInsecure bool   `toml:"otlp_insecure"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// LoadOrDefault loads path if it exists and falls back to defaults when it
// does not.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if len(c.SearchPath) == 0 {
		c.SearchPath = defaultSearchPath()
	}
	if len(c.Ignore.Names) == 0 {
		c.Ignore.Names = []string{"venv"}
	}
	if len(c.Tests.Packages) == 0 {
		c.Tests.Packages = []string{"tests", "ftests"}
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = 500 * time.Millisecond
	}
}

// defaultSearchPath mirrors the interpreter's: the working directory plus
// any PYTHONPATH entries.
func defaultSearchPath() []string {
	path := []string{"."}
	if env := os.Getenv("PYTHONPATH"); env != "" {
		path = append(path, filepath.SplitList(env)...)
	}
	return path
}
