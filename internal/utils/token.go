package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateResetToken generates a 64-character random hex token for
// password resets.
func GenerateResetToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return hex.EncodeToString(bytes), nil
}
