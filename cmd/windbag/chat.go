package main

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/2mac/windbag/internal/chatapp"
	"github.com/2mac/windbag/internal/transport"
	"github.com/2mac/windbag/internal/wbkeyfile"
	"github.com/2mac/windbag/pkg/callsign"
	"github.com/2mac/windbag/pkg/keyring"
)

func runChat(args []string) error {
	fs := pflag.NewFlagSet("chat", pflag.ContinueOnError)
	configPath := fs.StringP("config", "f", "", "path to config file")
	callsignFlag := fs.StringP("callsign", "c", "", "call sign to use (overrides config)")
	ttyFlag := fs.StringP("tty", "t", "", "serial device (overrides config)")
	baudFlag := fs.IntP("baud", "b", 0, "baud rate (overrides config)")
	tsFormat := fs.StringP("timestamp-format", "T", "", "strftime format for received timestamps")
	verbose := fs.BoolP("verbose", "v", false, "enable debug logging")

	if err := fs.Parse(args); err != nil {
		return err
	}

	path, err := resolveConfigPath(*configPath)
	if err != nil {
		return err
	}

	cfg, err := loadOrDefaultConfig(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if *callsignFlag != "" {
		cfg.MyCall = *callsignFlag
	}

	if *ttyFlag != "" {
		cfg.TTY = *ttyFlag
	}

	if *baudFlag != 0 {
		cfg.TTYSpeed = *baudFlag
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.TTY == "" {
		return errors.New("no TNC device set; use -t or the config file's tty option")
	}

	myCall, err := callsign.Parse(cfg.MyCall)
	if err != nil {
		return err
	}

	digis := make([]callsign.Callsign, 0, len(cfg.DigiPath))
	for _, d := range cfg.DigiPath {
		dc, err := callsign.Parse(d)
		if err != nil {
			return err
		}

		digis = append(digis, dc)
	}

	krPath, err := defaultKeyringPath(cfg)
	if err != nil {
		return err
	}

	kr := keyring.New()
	if err := kr.Load(krPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading keyring: %w", err)
	}

	var signer ed25519.PrivateKey
	if cfg.SignMessages() {
		priv, err := wbkeyfile.ReadPrivateKey(cfg.SecretKeyPath)
		if err != nil {
			return fmt.Errorf("loading secret key: %w", err)
		}

		signer = priv
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.WarnLevel)
	}

	link, err := transport.OpenSerial(cfg.TTY, cfg.TTYSpeed)
	if err != nil {
		return fmt.Errorf("opening %s: %w", cfg.TTY, err)
	}
	defer link.Close()

	sess := &chatapp.Session{
		MyCall:          myCall,
		DigiPath:        digis,
		Signer:          signer,
		Keyring:         kr,
		Link:            link,
		Logger:          logger,
		TimestampFormat: *tsFormat,
		Stdin:           os.Stdin,
		Stdout:          os.Stdout,
	}

	return sess.Run()
}
