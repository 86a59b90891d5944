package main

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/2mac/windbag/internal/wbconfig"
	"github.com/2mac/windbag/internal/wbkeyfile"
	"github.com/2mac/windbag/pkg/callsign"
	"github.com/2mac/windbag/pkg/keyring"
)

func loadChatConfigAndKeyring(configPath string) (*wbconfig.Config, *keyring.Keyring, string, error) {
	path, err := resolveConfigPath(configPath)
	if err != nil {
		return nil, nil, "", err
	}

	cfg, err := loadOrDefaultConfig(path)
	if err != nil {
		return nil, nil, "", err
	}

	krPath, err := defaultKeyringPath(cfg)
	if err != nil {
		return nil, nil, "", err
	}

	kr := keyring.New()
	if err := kr.Load(krPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, nil, "", fmt.Errorf("loading keyring: %w", err)
	}

	return cfg, kr, krPath, nil
}

func runImportKey(args []string) error {
	fs := pflag.NewFlagSet("import-key", pflag.ContinueOnError)
	configPath := fs.StringP("config", "f", "", "path to config file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) != 2 {
		return errors.New("usage: windbag import-key <callsign> <key>")
	}

	cs, err := callsign.Parse(rest[0])
	if err != nil {
		return fmt.Errorf("call sign: %w", err)
	}

	pub, err := base64.StdEncoding.DecodeString(rest[1])
	if err != nil {
		return fmt.Errorf("decoding key: %w", err)
	}

	_, kr, krPath, err := loadChatConfigAndKeyring(*configPath)
	if err != nil {
		return err
	}

	if err := kr.Add(cs, pub); err != nil {
		return fmt.Errorf("adding key: %w", err)
	}

	if err := kr.Save(krPath); err != nil {
		return fmt.Errorf("saving keyring: %w", err)
	}

	fmt.Println("Key successfully imported.")
	return nil
}

func runExportKey(args []string) error {
	fs := pflag.NewFlagSet("export-key", pflag.ContinueOnError)
	configPath := fs.StringP("config", "f", "", "path to config file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	rest := fs.Args()

	cfg, kr, _, err := loadChatConfigAndKeyring(*configPath)
	if err != nil {
		return err
	}

	switch len(rest) {
	case 0:
		if cfg.PublicKeyPath == "" {
			return errors.New("no public key file specified in the config file")
		}

		pub, err := wbkeyfile.ReadPublicKey(cfg.PublicKeyPath)
		if err != nil {
			return err
		}

		fmt.Println(base64.StdEncoding.EncodeToString(pub))

	case 1:
		cs, err := callsign.Parse(rest[0])
		if err != nil {
			return fmt.Errorf("call sign: %w", err)
		}

		id, ok := kr.Search(cs)
		if !ok {
			return fmt.Errorf("no key found for %s", cs)
		}

		fmt.Printf("%s\t%s\n", cs, base64.StdEncoding.EncodeToString(id.PublicKey))

	default:
		return errors.New("usage: windbag export-key [callsign]")
	}

	return nil
}

func runDeleteKey(args []string) error {
	fs := pflag.NewFlagSet("delete-key", pflag.ContinueOnError)
	configPath := fs.StringP("config", "f", "", "path to config file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) != 1 {
		return errors.New("usage: windbag delete-key <callsign>")
	}

	cs, err := callsign.Parse(rest[0])
	if err != nil {
		return fmt.Errorf("call sign: %w", err)
	}

	_, kr, krPath, err := loadChatConfigAndKeyring(*configPath)
	if err != nil {
		return err
	}

	kr.Delete(cs)

	if err := kr.Save(krPath); err != nil {
		return fmt.Errorf("saving keyring: %w", err)
	}

	fmt.Println("Key successfully deleted.")
	return nil
}
