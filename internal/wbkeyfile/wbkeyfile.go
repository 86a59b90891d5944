// Package wbkeyfile reads and writes the base64-encoded Ed25519 key files
// Windbag stores on disk: one line of base64 per file, a public key file
// and a secret key file.
package wbkeyfile

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GenerateKeypair creates a fresh Ed25519 keypair.
func GenerateKeypair() (ed25519.PublicKey, ed25519.PrivateKey, error) {
	return ed25519.GenerateKey(rand.Reader)
}

// ReadPublicKey loads a base64-encoded public key from path.
func ReadPublicKey(path string) (ed25519.PublicKey, error) {
	key, err := readKey(path, ed25519.PublicKeySize)
	if err != nil {
		return nil, err
	}

	return ed25519.PublicKey(key), nil
}

// ReadPrivateKey loads a base64-encoded private key from path.
func ReadPrivateKey(path string) (ed25519.PrivateKey, error) {
	key, err := readKey(path, ed25519.PrivateKeySize)
	if err != nil {
		return nil, err
	}

	return ed25519.PrivateKey(key), nil
}

func readKey(path string, expected int) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	line := strings.TrimRight(string(data), "\r\n")

	decoded, err := base64.StdEncoding.DecodeString(line)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	if len(decoded) != expected {
		return nil, fmt.Errorf("%s: expected %d key bytes, got %d", path, expected, len(decoded))
	}

	return decoded, nil
}

// WriteKey base64-encodes key and writes it to path as a single line,
// creating path's parent directory if needed. perm sets the file's
// permissions, 0600 for a secret key and 0644 for a public one.
func WriteKey(path string, key []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}

	encoded := base64.StdEncoding.EncodeToString(key)
	if err := os.WriteFile(path, []byte(encoded+"\n"), perm); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return nil
}
