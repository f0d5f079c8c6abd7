package models

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"github.com/mr-tron/base58"
)

var rippleAlphabet = base58.NewAlphabet("rpshnaf39wBUDNEGHJKLM4PQRST7VWXYZ2bcdeCg65jkm8oFqi1tuvAxyz")

const (
	accountIDPrefix  = 0x00
	accountIDLen     = 20
	checksumLen      = 4
	classicAddrBytes = 1 + accountIDLen + checksumLen
)

// ValidateWallet checks that s is an XRPL classic address: base58 with the
// Ripple alphabet, account prefix and double-SHA256 checksum.
func ValidateWallet(s string) error {
	if len(s) < 25 || len(s) > 35 || s[0] != 'r' {
		return fmt.Errorf("%w: %q is not a classic address", ErrInvalidIdentity, s)
	}
	raw, err := base58.DecodeAlphabet(s, rippleAlphabet)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidIdentity, err)
	}
	if len(raw) != classicAddrBytes || raw[0] != accountIDPrefix {
		return fmt.Errorf("%w: %q has wrong payload length", ErrInvalidIdentity, s)
	}
	payload, sum := raw[:classicAddrBytes-checksumLen], raw[classicAddrBytes-checksumLen:]
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	if !bytes.Equal(second[:checksumLen], sum) {
		return fmt.Errorf("%w: %q checksum mismatch", ErrInvalidIdentity, s)
	}
	return nil
}

// EncodeWallet renders a 20-byte account ID as a classic address.
func EncodeWallet(accountID []byte) (string, error) {
	if len(accountID) != accountIDLen {
		return "", fmt.Errorf("%w: account id must be %d bytes, got %d", ErrInvalidInput, accountIDLen, len(accountID))
	}
	payload := make([]byte, 0, classicAddrBytes)
	payload = append(payload, accountIDPrefix)
	payload = append(payload, accountID...)
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	payload = append(payload, second[:checksumLen]...)
	return base58.EncodeAlphabet(payload, rippleAlphabet), nil
}
