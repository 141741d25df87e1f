// Package otp generates short-lived numeric one-time codes.
//
// Codes are uniformly random, zero-padded decimal strings. Business code
// should depend on the Generator interface so tests can script the codes.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Generator produces one-time codes.
type Generator interface {
	// Generate returns a new code.
	Generate() (string, error)
}

// Numeric generates zero-padded decimal codes of a fixed length.
type Numeric struct {
	digits int
	max    *big.Int
}

// NewNumeric returns a generator for codes of the given length. Lengths
// outside 4..10 fall back to 6.
func NewNumeric(digits int) *Numeric {
	if digits < 4 || digits > 10 {
		digits = 6
	}

	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)

	return &Numeric{digits: digits, max: max}
}

// Generate returns a uniformly random code, zero-padded to the configured
// length. "012345" is a valid code.
func (n *Numeric) Generate() (string, error) {
	v, err := rand.Int(rand.Reader, n.max)
	if err != nil {
		return "", fmt.Errorf("otp: generate random code: %w", err)
	}
	return fmt.Sprintf("%0*d", n.digits, v), nil
}
