package kiss_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2mac/windbag/pkg/kiss"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	frame := []byte{0x01, 0x02, 0x03}

	encoded := kiss.Encode(frame)

	d := kiss.NewDecoder()
	var got []byte
	for _, b := range encoded {
		if f, ok := d.Feed(b); ok {
			got = f
		}
	}

	assert.Equal(t, frame, got)
}

func TestEncodeEscapesFENDAndFESC(t *testing.T) {
	frame := []byte{0xC0, 0xDB, 0x41}

	encoded := kiss.Encode(frame)

	// FEND DATA_FRAME ESC TFEND ESC TFESC 0x41 FEND
	expected := []byte{0xC0, 0x00, 0xDB, 0xDC, 0xDB, 0xDD, 0x41, 0xC0}
	assert.Equal(t, expected, encoded)
}

func TestDecodeIsResumableAcrossFeedCalls(t *testing.T) {
	frame := []byte{0xAA, 0xBB, 0xCC}
	encoded := kiss.Encode(frame)

	d := kiss.NewDecoder()

	// Feed it one byte per call, confirming the decoder carries state
	// between calls and reports a frame only on the closing FEND.
	var got []byte
	var ok bool
	for _, b := range encoded[:len(encoded)-1] {
		got, ok = d.Feed(b)
		require.False(t, ok)
	}

	got, ok = d.Feed(encoded[len(encoded)-1])
	require.True(t, ok)
	assert.Equal(t, frame, got)
}

func TestNonDataCommandIsSkipped(t *testing.T) {
	d := kiss.NewDecoder()

	// FEND, a non-data command (TXDelay=1), some bytes, FEND -- should
	// never produce a frame, and should resynchronize for the next one.
	skip := []byte{0xC0, 0x01, 0x99, 0x98, 0xC0}
	for _, b := range skip {
		_, ok := d.Feed(b)
		require.False(t, ok)
	}

	good := kiss.Encode([]byte{0x11, 0x22})
	var got []byte
	for _, b := range good {
		if f, ok := d.Feed(b); ok {
			got = f
		}
	}

	assert.Equal(t, []byte{0x11, 0x22}, got)
}

func TestDecodeHandlesEmptyFrame(t *testing.T) {
	d := kiss.NewDecoder()

	encoded := kiss.Encode(nil)
	var got []byte
	var ok bool
	for _, b := range encoded {
		got, ok = d.Feed(b)
	}

	require.True(t, ok)
	assert.Empty(t, got)
}
