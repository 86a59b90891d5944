package keyring_test

import (
	"crypto/ed25519"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2mac/windbag/pkg/callsign"
	"github.com/2mac/windbag/pkg/keyring"
)

func genKey(t *testing.T) ed25519.PublicKey {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return pub
}

func TestAddSearchDelete(t *testing.T) {
	k := keyring.New()
	cs := callsign.Callsign{Base: "N0CALL", SSID: 5}
	pub := genKey(t)

	require.NoError(t, k.Add(cs, pub))
	assert.Equal(t, 1, k.Len())

	id, ok := k.Search(cs)
	require.True(t, ok)
	assert.Equal(t, cs, id.Callsign)
	assert.Equal(t, pub, id.PublicKey)

	k.Delete(cs)
	assert.Equal(t, 0, k.Len())

	_, ok = k.Search(cs)
	assert.False(t, ok)
}

func TestAddReplacesExisting(t *testing.T) {
	k := keyring.New()
	cs := callsign.Callsign{Base: "N0CALL"}

	require.NoError(t, k.Add(cs, genKey(t)))
	second := genKey(t)
	require.NoError(t, k.Add(cs, second))

	assert.Equal(t, 1, k.Len())

	id, ok := k.Search(cs)
	require.True(t, ok)
	assert.Equal(t, second, id.PublicKey)
}

func TestAddRejectsBadKeyLength(t *testing.T) {
	k := keyring.New()
	err := k.Add(callsign.Callsign{Base: "N0CALL"}, []byte{1, 2, 3})
	assert.ErrorIs(t, err, keyring.ErrBadPublicKey)
}

func TestLookupParsesRawCallsign(t *testing.T) {
	k := keyring.New()
	cs := callsign.Callsign{Base: "N0CALL", SSID: 7}
	pub := genKey(t)
	require.NoError(t, k.Add(cs, pub))

	got, ok := k.Lookup("N0CALL-7")
	require.True(t, ok)
	assert.Equal(t, pub, got)

	_, ok = k.Lookup("not a callsign!!")
	assert.False(t, ok)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "keyring.dat")

	k := keyring.New()
	require.NoError(t, k.Add(callsign.Callsign{Base: "N0CALL", SSID: 1}, genKey(t)))
	require.NoError(t, k.Add(callsign.Callsign{Base: "K9XYZ"}, genKey(t)))

	require.NoError(t, k.Save(path))

	loaded := keyring.New()
	require.NoError(t, loaded.Load(path))

	assert.Equal(t, k.Len(), loaded.Len())

	for _, cs := range []callsign.Callsign{{Base: "N0CALL", SSID: 1}, {Base: "K9XYZ"}} {
		want, ok := k.Search(cs)
		require.True(t, ok)

		got, ok := loaded.Search(cs)
		require.True(t, ok)

		assert.Equal(t, want.PublicKey, got.PublicKey)
	}
}

func TestLoadRejectsTruncatedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keyring.dat")

	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3}, 0o644))

	k := keyring.New()
	err := k.Load(path)
	assert.ErrorIs(t, err, keyring.ErrCorruptKeyring)
}

func TestLoadRejectsBadSSID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keyring.dat")

	rec := make([]byte, callsign.MaxBaseLength+1+ed25519.PublicKeySize)
	copy(rec, "N0CALL")
	rec[callsign.MaxBaseLength] = byte(callsign.MaxSSID + 1)

	require.NoError(t, os.WriteFile(path, rec, 0o644))

	k := keyring.New()
	err := k.Load(path)
	assert.ErrorIs(t, err, keyring.ErrCorruptKeyring)
}

func TestLoadEmptyFileYieldsEmptyKeyring(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keyring.dat")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	k := keyring.New()
	require.NoError(t, k.Load(path))
	assert.Equal(t, 0, k.Len())
}
