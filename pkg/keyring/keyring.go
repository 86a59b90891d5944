// Package keyring maintains the set of known correspondents' Ed25519
// public keys, keyed by call sign, and persists them as fixed-width binary
// records.
package keyring

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/2mac/windbag/pkg/callsign"
)

// recordLength is the on-disk width of one identity record: a
// zero-padded 6-byte call sign base, a 1-byte SSID, and a 32-byte Ed25519
// public key.
const recordLength = callsign.MaxBaseLength + 1 + ed25519.PublicKeySize

// ErrCorruptKeyring is returned by Load when the file's size isn't an exact
// multiple of the record length, or a record's SSID is out of range.
var ErrCorruptKeyring = errors.New("keyring: corrupt keyring file")

// ErrBadPublicKey is returned by Add when the given key isn't
// ed25519.PublicKeySize bytes long.
var ErrBadPublicKey = errors.New("keyring: wrong public key length")

// Identity is one known correspondent: their call sign and public key.
type Identity struct {
	Callsign  callsign.Callsign
	PublicKey ed25519.PublicKey
}

// Keyring is an ordered, mutex-protected set of Identities, searchable by
// call sign. The zero value is an empty, usable keyring, which is what New
// returns.
type Keyring struct {
	mu    sync.RWMutex
	items []Identity
}

// New returns an empty Keyring.
func New() *Keyring {
	return &Keyring{}
}

// Add records pub as callsign's public key, replacing any existing entry
// for the same call sign, or appending a new one.
func (k *Keyring) Add(cs callsign.Callsign, pub ed25519.PublicKey) error {
	if len(pub) != ed25519.PublicKeySize {
		return ErrBadPublicKey
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if i := k.indexOf(cs); i >= 0 {
		k.items[i].PublicKey = append(ed25519.PublicKey(nil), pub...)
		return nil
	}

	k.items = append(k.items, Identity{Callsign: cs, PublicKey: append(ed25519.PublicKey(nil), pub...)})
	return nil
}

// Delete removes callsign's entry, if any.
func (k *Keyring) Delete(cs callsign.Callsign) {
	k.mu.Lock()
	defer k.mu.Unlock()

	i := k.indexOf(cs)
	if i < 0 {
		return
	}

	k.items = append(k.items[:i], k.items[i+1:]...)
}

// Search returns the identity recorded for cs, if any.
func (k *Keyring) Search(cs callsign.Callsign) (Identity, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	i := k.indexOf(cs)
	if i < 0 {
		return Identity{}, false
	}

	return k.items[i], true
}

// Lookup parses raw as a call sign and searches for its public key. It
// satisfies windbag.KeyLookup.
func (k *Keyring) Lookup(raw string) (ed25519.PublicKey, bool) {
	cs, err := callsign.Parse(raw)
	if err != nil {
		return nil, false
	}

	id, ok := k.Search(cs)
	if !ok {
		return nil, false
	}

	return id.PublicKey, true
}

// Len reports the number of identities in the keyring.
func (k *Keyring) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()

	return len(k.items)
}

func (k *Keyring) indexOf(cs callsign.Callsign) int {
	for i, id := range k.items {
		if id.Callsign == cs {
			return i
		}
	}

	return -1
}

// Load replaces the keyring's contents with the records read from path.
func (k *Keyring) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if len(data)%recordLength != 0 {
		return fmt.Errorf("%w: %s", ErrCorruptKeyring, path)
	}

	n := len(data) / recordLength
	items := make([]Identity, 0, n)

	for i := 0; i < n; i++ {
		rec := data[i*recordLength : (i+1)*recordLength]

		id, err := unmarshalRecord(rec)
		if err != nil {
			return fmt.Errorf("%w: record %d: %v", ErrCorruptKeyring, i, err)
		}

		items = append(items, id)
	}

	k.mu.Lock()
	k.items = items
	k.mu.Unlock()

	return nil
}

// Save writes the keyring's contents to path, creating its parent
// directory if needed.
func (k *Keyring) Save(path string) error {
	k.mu.RLock()
	defer k.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	out := make([]byte, 0, len(k.items)*recordLength)
	for _, id := range k.items {
		rec, err := marshalRecord(id)
		if err != nil {
			return err
		}

		out = append(out, rec...)
	}

	return os.WriteFile(path, out, 0o644)
}

func marshalRecord(id Identity) ([]byte, error) {
	if len(id.Callsign.Base) > callsign.MaxBaseLength {
		return nil, fmt.Errorf("keyring: call sign base %q too long", id.Callsign.Base)
	}

	if id.Callsign.SSID < 0 || id.Callsign.SSID > callsign.MaxSSID {
		return nil, fmt.Errorf("keyring: ssid %d out of range", id.Callsign.SSID)
	}

	if len(id.PublicKey) != ed25519.PublicKeySize {
		return nil, ErrBadPublicKey
	}

	rec := make([]byte, recordLength)
	copy(rec[:callsign.MaxBaseLength], id.Callsign.Base)
	rec[callsign.MaxBaseLength] = byte(id.Callsign.SSID)
	copy(rec[callsign.MaxBaseLength+1:], id.PublicKey)

	return rec, nil
}

func unmarshalRecord(rec []byte) (Identity, error) {
	base := strings.TrimRight(string(rec[:callsign.MaxBaseLength]), "\x00")
	ssid := int(rec[callsign.MaxBaseLength])
	if ssid > callsign.MaxSSID {
		return Identity{}, fmt.Errorf("ssid %d out of range", ssid)
	}

	pub := make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(pub, rec[callsign.MaxBaseLength+1:])

	return Identity{Callsign: callsign.Callsign{Base: base, SSID: ssid}, PublicKey: pub}, nil
}
