/*
Package config loads kvsctl's YAML configuration file, the base layer
underneath the CLI's persistent flags (flags always win; see cmd/kvsctl).
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk shape of ~/.kvsctl.yaml.
type Config struct {
	// DataDir is the base directory stores are resolved under. Empty means
	// use the platform default (see pkg/pathprovider).
	DataDir string `yaml:"data_dir"`

	// DefaultTTL is the store-wide default TTL applied to a ttl put that
	// specifies no override, parsed with time.ParseDuration. Empty means
	// TTL entries never expire unless given an explicit per-put TTL.
	DefaultTTL string `yaml:"default_ttl"`

	// PassphraseEnv names the environment variable kvsctl reads the
	// encryption passphrase from when --encrypt is set and --passphrase is
	// not given directly. The passphrase itself is never written to this
	// file.
	PassphraseEnv string `yaml:"passphrase_env"`

	LogLevel string `yaml:"log_level"`
	LogJSON  bool   `yaml:"log_json"`

	MetricsAddr string `yaml:"metrics_addr"`
}

// Default returns a Config with kvsctl's built-in defaults, used when no
// config file is present.
func Default() Config {
	return Config{
		PassphraseEnv: "KVS_PASSPHRASE",
		LogLevel:      "info",
		MetricsAddr:   "127.0.0.1:9090",
	}
}

// DefaultPath returns ~/.kvsctl.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve home directory: %w", err)
	}
	return filepath.Join(home, ".kvsctl.yaml"), nil
}

// Load reads and parses the YAML config file at path. A missing file is not
// an error: Load returns Default() unchanged, since every field is
// overridable by a CLI flag.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// ParseDefaultTTL parses DefaultTTL into a *time.Duration, returning nil if
// DefaultTTL is unset.
func (c Config) ParseDefaultTTL() (*time.Duration, error) {
	if c.DefaultTTL == "" {
		return nil, nil
	}
	d, err := time.ParseDuration(c.DefaultTTL)
	if err != nil {
		return nil, fmt.Errorf("config: invalid default_ttl %q: %w", c.DefaultTTL, err)
	}
	return &d, nil
}
