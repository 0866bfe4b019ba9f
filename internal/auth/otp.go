package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateOTPCode returns a 6-digit code using crypto/rand.
func GenerateOTPCode() string {
	max := big.NewInt(1000000)
	n, _ := rand.Int(rand.Reader, max)
	return fmt.Sprintf("%06d", n.Int64())
}
