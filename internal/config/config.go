// Package config loads the on-disk configuration from .drift/config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Dir is the per-repository metadata directory.
const Dir = ".drift"

// FileName is the config file name inside Dir.
const FileName = "config.yaml"

// StateFileName is the SQLite state database inside Dir.
const StateFileName = "state.db"

// Config holds the user-tunable scan settings.
type Config struct {
	// Languages restricts scanning to the listed language tags. Empty means
	// all supported languages.
	Languages []string `yaml:"languages,omitempty"`

	// Ignore is a list of doublestar glob patterns, relative to the
	// repository root, excluded from discovery.
	Ignore []string `yaml:"ignore,omitempty"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{}
}

// Path returns the config file path for a repository root.
func Path(root string) string {
	return filepath.Join(root, Dir, FileName)
}

// StatePath returns the state database path for a repository root.
func StatePath(root string) string {
	return filepath.Join(root, Dir, StateFileName)
}

// Load reads the config file under root. A missing file yields the default
// configuration; a malformed file or invalid glob pattern is an error.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(Path(root))
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	for _, pattern := range cfg.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid ignore pattern %q", pattern)
		}
	}
	return &cfg, nil
}

// Write saves the config file under root, creating Dir if needed.
func (c *Config) Write(root string) error {
	if err := os.MkdirAll(filepath.Join(root, Dir), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", Dir, err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(Path(root), data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Ignored reports whether a repo-relative path matches an ignore glob.
func (c *Config) Ignored(rel string) bool {
	for _, pattern := range c.Ignore {
		if ok, err := doublestar.Match(pattern, filepath.ToSlash(rel)); err == nil && ok {
			return true
		}
	}
	return false
}
