package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/2mac/windbag/internal/wbconfig"
	"github.com/2mac/windbag/internal/wbkeyfile"
)

func runKeygen(args []string) error {
	fs := pflag.NewFlagSet("keygen", pflag.ContinueOnError)
	configPath := fs.StringP("config", "f", "", "path to config file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	path, err := resolveConfigPath(*configPath)
	if err != nil {
		return err
	}

	cfg, err := loadOrDefaultConfig(path)
	if err != nil {
		return err
	}

	defaultDir, err := wbconfig.DefaultDir()
	if err != nil {
		return err
	}

	in := bufio.NewReader(os.Stdin)

	pubPath, err := promptPath(in, "public", defaultDir, wbconfig.DefaultPubkey)
	if err != nil {
		return err
	}

	secPath, err := promptPath(in, "secret", defaultDir, wbconfig.DefaultSeckey)
	if err != nil {
		return err
	}

	pub, priv, err := wbkeyfile.GenerateKeypair()
	if err != nil {
		return fmt.Errorf("generating keypair: %w", err)
	}

	if err := wbkeyfile.WriteKey(pubPath, pub, 0o644); err != nil {
		return err
	}

	if err := wbkeyfile.WriteKey(secPath, priv, 0o600); err != nil {
		return err
	}

	if promptYN(in, "Save to default config? [Y/n] ", true) {
		cfg.PublicKeyPath = pubPath
		cfg.SecretKeyPath = secPath

		if err := wbconfig.Save(path, cfg); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
	}

	fmt.Printf("Keypair written to %s and %s.\n", pubPath, secPath)
	return nil
}

func promptPath(in *bufio.Reader, keyType, defaultDir, defaultFile string) (string, error) {
	defaultPath := filepath.Join(defaultDir, defaultFile)
	fmt.Printf("Enter location for the new %s key [%s]: ", keyType, defaultPath)

	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading %s key path: %w", keyType, err)
	}

	line = strings.TrimSpace(line)
	if line == "" {
		line = defaultPath
	}

	if _, err := os.Stat(line); err == nil {
		if !promptYN(in, fmt.Sprintf("%s exists. Overwrite? [y/N] ", line), false) {
			return "", fmt.Errorf("not overwriting %s", line)
		}
	}

	return line, nil
}

func promptYN(in *bufio.Reader, prompt string, defaultYes bool) bool {
	fmt.Print(prompt)

	line, _ := in.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return defaultYes
	}

	return strings.ToLower(line)[0] == 'y'
}
