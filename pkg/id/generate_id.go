package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

// NewID32 returns exactly 32 hex characters (no separators/prefixes).
func NewID32() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// NewNumericCode returns a fixed-width numeric code, leading zeros kept.
func NewNumericCode(width int) string {
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(width)), nil)
	n, _ := rand.Int(rand.Reader, max)
	return fmt.Sprintf("%0*d", width, n)
}
