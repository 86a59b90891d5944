// Package wbconfig reads and writes Windbag's YAML configuration file and
// resolves the platform-appropriate default config directory.
package wbconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/2mac/windbag/pkg/callsign"
)

// Default file names within the config directory.
const (
	FileName         = "windbag.yaml"
	DefaultPubkey    = "ed25519.pub"
	DefaultSeckey    = "ed25519.sec"
	DefaultKeyring   = "keyring.dat"
	DefaultTTYSpeed  = 9600
	MaxDigipeaters   = 2
)

// Config is Windbag's persisted configuration.
type Config struct {
	MyCall   string   `yaml:"mycall"`
	DigiPath []string `yaml:"digi-path,omitempty"`
	TTY      string   `yaml:"tty"`
	TTYSpeed int      `yaml:"tty-speed"`

	PublicKeyPath string `yaml:"public-key,omitempty"`
	SecretKeyPath string `yaml:"secret-key,omitempty"`
	KeyringPath   string `yaml:"keyring-path,omitempty"`
}

// SignMessages reports whether both halves of a keypair are configured, the
// same condition the original client used to enable message signing.
func (c *Config) SignMessages() bool {
	return c.PublicKeyPath != "" && c.SecretKeyPath != ""
}

// Validate checks and canonicalizes the call signs in c.
func (c *Config) Validate() error {
	if c.MyCall == "" {
		return errors.New("wbconfig: mycall is required")
	}

	cs, err := callsign.Parse(c.MyCall)
	if err != nil {
		return fmt.Errorf("wbconfig: mycall: %w", err)
	}

	c.MyCall = cs.String()

	if len(c.DigiPath) > MaxDigipeaters {
		return fmt.Errorf("wbconfig: at most %d digipeaters are supported", MaxDigipeaters)
	}

	for i, d := range c.DigiPath {
		dcs, err := callsign.Parse(d)
		if err != nil {
			return fmt.Errorf("wbconfig: digi-path[%d]: %w", i, err)
		}

		c.DigiPath[i] = dcs.String()
	}

	return nil
}

// Load reads and parses the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{TTYSpeed: DefaultTTYSpeed}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("wbconfig: parsing %s: %w", path, err)
	}

	if cfg.TTYSpeed == 0 {
		cfg.TTYSpeed = DefaultTTYSpeed
	}

	return cfg, nil
}

// Save writes cfg to path as YAML, creating its parent directory if needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("wbconfig: creating %s: %w", filepath.Dir(path), err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("wbconfig: marshaling config: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// DefaultDir resolves the platform default directory for Windbag's config,
// keys, and keyring: %APPDATA%\windbag on Windows; /etc/windbag when run as
// root; otherwise $XDG_DATA_HOME/windbag or $HOME/.local/share/windbag.
func DefaultDir() (string, error) {
	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", errors.New("wbconfig: APPDATA is not set")
		}

		return filepath.Join(appData, "windbag"), nil
	}

	if os.Geteuid() == 0 {
		return filepath.Join(string(filepath.Separator), "etc", "windbag"), nil
	}

	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "windbag"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("wbconfig: resolving home directory: %w", err)
	}

	return filepath.Join(home, ".local", "share", "windbag"), nil
}
