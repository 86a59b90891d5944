package callsign_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2mac/windbag/pkg/callsign"
)

func TestParseBaseOnly(t *testing.T) {
	cs, err := callsign.Parse("n0call")
	require.NoError(t, err)
	assert.Equal(t, "N0CALL", cs.Base)
	assert.Equal(t, 0, cs.SSID)
	assert.Equal(t, "N0CALL", cs.String())
}

func TestParseWithSSID(t *testing.T) {
	cs, err := callsign.Parse("kb1xyz-7")
	require.NoError(t, err)
	assert.Equal(t, "KB1XYZ", cs.Base)
	assert.Equal(t, 7, cs.SSID)
	assert.Equal(t, "KB1XYZ-7", cs.String())
}

func TestValidateEmpty(t *testing.T) {
	err := callsign.Validate("")
	assert.True(t, errors.Is(err, callsign.ErrSyntax))
}

func TestValidateTooLongBase(t *testing.T) {
	err := callsign.Validate("TOOLONGCALL")
	assert.True(t, errors.Is(err, callsign.ErrTooLong))
}

func TestValidateBaseTooLongWithSSID(t *testing.T) {
	err := callsign.Validate("TOOLONG-1")
	assert.True(t, errors.Is(err, callsign.ErrTooLong))
}

func TestValidateSSIDOutOfRange(t *testing.T) {
	err := callsign.Validate("N0CALL-16")
	assert.True(t, errors.Is(err, callsign.ErrSSID))
}

func TestValidateMalformedSSID(t *testing.T) {
	err := callsign.Validate("N0CALL-")
	assert.True(t, errors.Is(err, callsign.ErrSyntax))
}

func TestValidateRejectsEmptyBaseWithSSID(t *testing.T) {
	err := callsign.Validate("-5")
	assert.True(t, errors.Is(err, callsign.ErrSyntax))
}

func TestSanitizeUppercases(t *testing.T) {
	assert.Equal(t, "N0CALL", callsign.Sanitize("n0call"))
}
