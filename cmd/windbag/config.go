package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/2mac/windbag/internal/wbconfig"
)

// resolveConfigPath returns explicitPath if set, else the default config
// file location.
func resolveConfigPath(explicitPath string) (string, error) {
	if explicitPath != "" {
		return explicitPath, nil
	}

	dir, err := wbconfig.DefaultDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, wbconfig.FileName), nil
}

// loadOrDefaultConfig loads the config file at path, returning a bare
// default config (not an error) if the file simply doesn't exist yet.
func loadOrDefaultConfig(path string) (*wbconfig.Config, error) {
	cfg, err := wbconfig.Load(path)
	if err == nil {
		return cfg, nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return &wbconfig.Config{TTYSpeed: wbconfig.DefaultTTYSpeed}, nil
	}

	return nil, err
}

func defaultKeyringPath(cfg *wbconfig.Config) (string, error) {
	if cfg.KeyringPath != "" {
		return cfg.KeyringPath, nil
	}

	dir, err := wbconfig.DefaultDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, wbconfig.DefaultKeyring), nil
}
