package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// TokenKeyBytes is the entropy of an auth token; keys are twice as many hex chars.
const TokenKeyBytes = 20

// GenerateTokenKey returns a random 40-character lowercase hex key
func GenerateTokenKey() (string, error) {
	b := make([]byte, TokenKeyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
