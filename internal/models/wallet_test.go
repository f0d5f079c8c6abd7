package models

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateWallet_Valid(t *testing.T) {
	assert.NoError(t, ValidateWallet("rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh"))
	assert.NoError(t, ValidateWallet("rrrrrrrrrrrrrrrrrrrrrhoLvTp"))
}

func TestValidateWallet_Invalid(t *testing.T) {
	cases := []string{
		"",
		"rXYZ1234567890ABCDEF",
		"xHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh",
		"rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTi",
		"rHb9CJAWyB4rj91VRWn96DkukG4bwdty0h",
	}
	for _, c := range cases {
		err := ValidateWallet(c)
		assert.True(t, errors.Is(err, ErrInvalidIdentity), "expected %q to be rejected", c)
	}
}

func TestEncodeWallet(t *testing.T) {
	addr, err := EncodeWallet(make([]byte, 20))
	require.NoError(t, err)
	assert.Equal(t, "rrrrrrrrrrrrrrrrrrrrrhoLvTp", addr)

	addr, err = EncodeWallet(bytes.Repeat([]byte{0xab}, 20))
	require.NoError(t, err)
	assert.NoError(t, ValidateWallet(addr))

	_, err = EncodeWallet([]byte{1, 2, 3})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}
