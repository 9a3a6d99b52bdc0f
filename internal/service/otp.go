package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const DefaultOTPLength = 6

// GenerateOTP returns a random numeric code of exactly length digits.
// The leading digit is never zero, so a 6 digit code falls in [100000, 999999].
func GenerateOTP(length int) (string, error) {
	if length < 1 || length > 18 {
		return "", fmt.Errorf("invalid code length %d", length)
	}

	lower := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length-1)), nil)
	upper := new(big.Int).Mul(lower, big.NewInt(10))
	span := new(big.Int).Sub(upper, lower)

	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return n.Add(n, lower).String(), nil
}
