package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math/big"
)

// GenerateSecureOTP returns a numeric code of the given length drawn from crypto/rand.
func GenerateSecureOTP(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("otp length must be positive")
	}

	const otpChars = "0123456789"
	max := big.NewInt(int64(len(otpChars)))
	buffer := make([]byte, length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buffer[i] = otpChars[n.Int64()]
	}

	return string(buffer), nil
}

// HashToken returns the hex SHA-256 of a token, used to store refresh tokens at rest.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
