package utils

import (
	"crypto/rand"
	"fmt"
)

// GenerateNumericCode returns a zero-padded one-time code, e.g. "042913".
func GenerateNumericCode(length int) (string, error) {
	return randomFrom("0123456789", length)
}

func randomFrom(charset string, length int) (string, error) {
	b := make([]byte, length)

	// 🔒 Use crypto/rand for secure random generation
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random string: %w", err)
	}

	for i := 0; i < length; i++ {
		b[i] = charset[int(b[i])%len(charset)]
	}

	return string(b), nil
}
